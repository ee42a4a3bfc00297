package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database/models"
)

// ProfileRepository defines the interface for profile data operations
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository instance
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Upsert creates the profile of profile.UserID or overwrites its details,
// returning the stored row.
func (r *profileRepository) Upsert(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	profile.UpdatedAt = time.Now().UTC()

	err := r.db.WithContext(ctx).
		Omit("User").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"phone", "bio", "avatar_url", "updated_at"}),
		}).
		Create(profile).Error
	if err != nil {
		return nil, translateError(err, ErrProfileNotFound, ErrDuplicateRecord)
	}

	return r.FindByUserID(ctx, profile.UserID)
}

func (r *profileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, translateError(err, ErrProfileNotFound, ErrDuplicateRecord)
	}
	return &profile, nil
}
