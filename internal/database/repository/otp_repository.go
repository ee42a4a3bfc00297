package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database/models"
)

// OTPRepository stores the outstanding one-time passcode of each email
type OTPRepository interface {
	Upsert(ctx context.Context, otp *models.TempUserOTP) (*models.TempUserOTP, error)
	FindByEmail(ctx context.Context, email string) (*models.TempUserOTP, error)
	Consume(ctx context.Context, otp *models.TempUserOTP) error
	DeleteByEmail(ctx context.Context, email string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type otpRepository struct {
	db *gorm.DB
}

// NewOTPRepository creates a new OTP repository instance
func NewOTPRepository(db *gorm.DB) OTPRepository {
	return &otpRepository{db: db}
}

// Upsert replaces the code and creation time of the existing row for the email
// in a single statement, so there is never more than one row per address.
func (r *otpRepository) Upsert(ctx context.Context, otp *models.TempUserOTP) (*models.TempUserOTP, error) {
	if otp.CreatedAt.IsZero() {
		otp.CreatedAt = time.Now().UTC()
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"otp", "created_at"}),
		}).
		Create(otp).Error
	if err != nil {
		return nil, translateError(err, ErrOTPNotFound, ErrDuplicateRecord)
	}

	return r.FindByEmail(ctx, otp.Email)
}

func (r *otpRepository) FindByEmail(ctx context.Context, email string) (*models.TempUserOTP, error) {
	var otp models.TempUserOTP
	err := r.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&otp).Error
	if err != nil {
		return nil, translateError(err, ErrOTPNotFound, ErrDuplicateRecord)
	}
	return &otp, nil
}

// Consume deletes the row only while it still holds the code and creation
// time that were read. A concurrent consume, or an Upsert that replaced the
// code in place, leaves nothing to match and yields ErrOTPNotFound.
func (r *otpRepository) Consume(ctx context.Context, otp *models.TempUserOTP) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND otp = ? AND created_at = ?", otp.ID, otp.OTP, otp.CreatedAt).
		Delete(&models.TempUserOTP{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOTPNotFound
	}
	return nil
}

func (r *otpRepository) DeleteByEmail(ctx context.Context, email string) error {
	result := r.db.WithContext(ctx).
		Where("email = ?", models.NormalizeEmail(email)).
		Delete(&models.TempUserOTP{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOTPNotFound
	}
	return nil
}

// DeleteOlderThan removes codes created before cutoff and returns how many went
func (r *otpRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff.UTC()).Delete(&models.TempUserOTP{})
	return result.RowsAffected, result.Error
}
