package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database/models"
)

// EmailSettingRepository defines the interface for outgoing mail account data operations
type EmailSettingRepository interface {
	Create(ctx context.Context, setting *models.EmailSetting) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.EmailSetting, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.EmailSetting, error)
	FindByEmail(ctx context.Context, email string) (*models.EmailSetting, error)
	FindAdminMail(ctx context.Context) (*models.EmailSetting, error)
	Update(ctx context.Context, setting *models.EmailSetting) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type emailSettingRepository struct {
	db *gorm.DB
}

// NewEmailSettingRepository creates a new email setting repository instance
func NewEmailSettingRepository(db *gorm.DB) EmailSettingRepository {
	return &emailSettingRepository{db: db}
}

func (r *emailSettingRepository) Create(ctx context.Context, setting *models.EmailSetting) error {
	err := r.db.WithContext(ctx).Omit("User").Create(setting).Error
	return translateError(err, ErrEmailSettingNotFound, ErrDuplicateRecord)
}

func (r *emailSettingRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.EmailSetting, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *emailSettingRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.EmailSetting, error) {
	return r.findOne(ctx, "user_id = ?", userID)
}

func (r *emailSettingRepository) FindByEmail(ctx context.Context, email string) (*models.EmailSetting, error) {
	return r.findOne(ctx, "email = ?", models.NormalizeEmail(email))
}

// FindAdminMail returns the setting flagged as the system sender, active or not
func (r *emailSettingRepository) FindAdminMail(ctx context.Context) (*models.EmailSetting, error) {
	return r.findOne(ctx, "is_admin_mail = ?", true)
}

func (r *emailSettingRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.EmailSetting, error) {
	var setting models.EmailSetting
	err := r.db.WithContext(ctx).Where(query, args...).First(&setting).Error
	if err != nil {
		return nil, translateError(err, ErrEmailSettingNotFound, ErrDuplicateRecord)
	}
	return &setting, nil
}

// Update writes every mutable column; user_id and created_at are left untouched
func (r *emailSettingRepository) Update(ctx context.Context, setting *models.EmailSetting) error {
	setting.Email = models.NormalizeEmail(setting.Email)

	result := r.db.WithContext(ctx).
		Model(&models.EmailSetting{}).
		Where("id = ?", setting.ID).
		Updates(map[string]interface{}{
			"email":         setting.Email,
			"email_type":    setting.EmailType,
			"password":      setting.Password,
			"host":          setting.Host,
			"port":          setting.Port,
			"is_active":     setting.IsActive,
			"is_admin_mail": setting.IsAdminMail,
		})
	if result.Error != nil {
		return translateError(result.Error, ErrEmailSettingNotFound, ErrDuplicateRecord)
	}
	if result.RowsAffected == 0 {
		return ErrEmailSettingNotFound
	}
	return nil
}

func (r *emailSettingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.EmailSetting{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEmailSettingNotFound
	}
	return nil
}
