package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database/models"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, page, pageSize int) ([]models.User, int64, error)
	Update(ctx context.Context, user *models.User) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	HasSuperuser(ctx context.Context) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Omit("Profile", "EmailSetting", "SentEmailLogs", "EmailLogs").Create(user).Error
	return translateError(err, ErrUserNotFound, ErrDuplicateEmail)
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Preload("EmailSetting").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, translateError(err, ErrUserNotFound, ErrDuplicateEmail)
	}
	return &user, nil
}

// FindByEmail also returns soft-deleted users, since their address stays reserved
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&user).Error
	if err != nil {
		return nil, translateError(err, ErrUserNotFound, ErrDuplicateEmail)
	}
	return &user, nil
}

// List returns one page of users that are not soft-deleted, newest first, and the total count
func (r *userRepository) List(ctx context.Context, page, pageSize int) ([]models.User, int64, error) {
	p := NewPagination(page, pageSize)
	query := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("is_deleted = ?", false).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := query.
		Order("created_at DESC").
		Offset(p.Offset()).
		Limit(p.PageSize).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Update writes every mutable column. The id is only used to locate the row.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	user.Email = models.NormalizeEmail(user.Email)
	user.UpdatedAt = time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"email":        user.Email,
			"password":     user.Password,
			"first_name":   user.FirstName,
			"last_name":    user.LastName,
			"role":         user.Role,
			"is_active":    user.IsActive,
			"is_superuser": user.IsSuperuser,
			"is_deleted":   user.IsDeleted,
			"updated_at":   user.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error, ErrUserNotFound, ErrDuplicateEmail)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SoftDelete flags the user as deleted and inactive, keeping its rows
func (r *userRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"is_active":  false,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes the row; the database cascades to the profile and email
// setting and clears email log references.
func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("is_deleted = ?", false).Count(&count).Error
	return count, err
}

func (r *userRepository) HasSuperuser(ctx context.Context) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("is_superuser = ? AND is_deleted = ?", true, false).
		Count(&count).Error
	return count > 0, err
}
