package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database/models"
	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database/repository"
)

// EmailSettingService manages the outgoing mail account of each user and the
// single account flagged as the system sender.
type EmailSettingService interface {
	Create(ctx context.Context, userID uuid.UUID, input EmailSettingInput) (*models.EmailSetting, error)
	Get(ctx context.Context, id uuid.UUID) (*models.EmailSetting, error)
	GetForUser(ctx context.Context, userID uuid.UUID) (*models.EmailSetting, error)
	GetAdminMail(ctx context.Context) (*models.EmailSetting, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateEmailSettingInput) (*models.EmailSetting, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// EmailSettingInput describes a new outgoing mail account
type EmailSettingInput struct {
	Email       string `validate:"required,email,max=254"`
	EmailType   string `validate:"omitempty,emailtype"`
	Password    string `validate:"required,max=255"`
	Host        string `validate:"required,hostname_rfc1123|ip,max=255"`
	Port        int    `validate:"required,min=1,max=65535"`
	IsActive    *bool
	IsAdminMail bool
}

// UpdateEmailSettingInput changes the fields that are set
type UpdateEmailSettingInput struct {
	Email       *string `validate:"omitempty,email,max=254"`
	EmailType   *string `validate:"omitempty,emailtype"`
	Password    *string `validate:"omitempty,min=1,max=255"`
	Host        *string `validate:"omitempty,hostname_rfc1123|ip,max=255"`
	Port        *int    `validate:"omitempty,min=1,max=65535"`
	IsActive    *bool
	IsAdminMail *bool
}

type emailSettingService struct {
	settingRepo repository.EmailSettingRepository
	userRepo    repository.UserRepository
	validator   *Validator
	logger      *slog.Logger
}

// NewEmailSettingService creates a new email setting service instance
func NewEmailSettingService(
	settingRepo repository.EmailSettingRepository,
	userRepo repository.UserRepository,
	validator *Validator,
	logger *slog.Logger,
) EmailSettingService {
	return &emailSettingService{
		settingRepo: settingRepo,
		userRepo:    userRepo,
		validator:   validator,
		logger:      logger,
	}
}

func (s *emailSettingService) Create(ctx context.Context, userID uuid.UUID, input EmailSettingInput) (*models.EmailSetting, error) {
	s.logger.Info("📮 [EmailSettingService] Creating email setting", "user_id", userID, "email", input.Email)

	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	if _, err := s.settingRepo.FindByUserID(ctx, userID); err == nil {
		return nil, ErrEmailSettingExists
	} else if !errors.Is(err, repository.ErrEmailSettingNotFound) {
		return nil, err
	}

	if input.IsAdminMail {
		if err := s.ensureNoOtherAdminMail(ctx, uuid.Nil); err != nil {
			return nil, err
		}
	}

	setting := &models.EmailSetting{
		Email:       input.Email,
		EmailType:   models.EmailType(strings.ToUpper(input.EmailType)),
		UserID:      userID,
		Password:    input.Password,
		Host:        input.Host,
		Port:        input.Port,
		IsActive:    true,
		IsAdminMail: input.IsAdminMail,
	}

	if err := s.settingRepo.Create(ctx, setting); err != nil {
		s.logger.Error("❌ [EmailSettingService] Failed to create email setting", "user_id", userID, "error", err)
		return nil, s.translateConflict(ctx, err, setting)
	}

	// A false is_active on insert falls back to the column default
	if input.IsActive != nil && !*input.IsActive {
		setting.IsActive = false
		if err := s.settingRepo.Update(ctx, setting); err != nil {
			s.logger.Error("❌ [EmailSettingService] Failed to deactivate new email setting", "setting_id", setting.ID, "error", err)
			return nil, err
		}
	}

	s.logger.Info("✅ [EmailSettingService] Email setting created", "setting_id", setting.ID, "admin_mail", setting.IsAdminMail)
	return setting, nil
}

func (s *emailSettingService) Get(ctx context.Context, id uuid.UUID) (*models.EmailSetting, error) {
	return s.settingRepo.FindByID(ctx, id)
}

func (s *emailSettingService) GetForUser(ctx context.Context, userID uuid.UUID) (*models.EmailSetting, error) {
	return s.settingRepo.FindByUserID(ctx, userID)
}

// GetAdminMail returns the active system sender account
func (s *emailSettingService) GetAdminMail(ctx context.Context) (*models.EmailSetting, error) {
	setting, err := s.settingRepo.FindAdminMail(ctx)
	if err != nil {
		return nil, err
	}
	if !setting.IsActive {
		return nil, repository.ErrEmailSettingNotFound
	}
	return setting, nil
}

func (s *emailSettingService) Update(ctx context.Context, id uuid.UUID, input UpdateEmailSettingInput) (*models.EmailSetting, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	setting, err := s.settingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.IsAdminMail != nil && *input.IsAdminMail && !setting.IsAdminMail {
		if err := s.ensureNoOtherAdminMail(ctx, setting.ID); err != nil {
			return nil, err
		}
	}

	if input.Email != nil {
		setting.Email = *input.Email
	}
	if input.EmailType != nil {
		setting.EmailType = models.EmailType(strings.ToUpper(*input.EmailType))
	}
	if input.Password != nil {
		setting.Password = *input.Password
	}
	if input.Host != nil {
		setting.Host = *input.Host
	}
	if input.Port != nil {
		setting.Port = *input.Port
	}
	if input.IsActive != nil {
		setting.IsActive = *input.IsActive
	}
	if input.IsAdminMail != nil {
		setting.IsAdminMail = *input.IsAdminMail
	}

	if err := s.settingRepo.Update(ctx, setting); err != nil {
		s.logger.Error("❌ [EmailSettingService] Failed to update email setting", "setting_id", id, "error", err)
		return nil, s.translateConflict(ctx, err, setting)
	}

	s.logger.Info("✅ [EmailSettingService] Email setting updated", "setting_id", id)
	return setting, nil
}

func (s *emailSettingService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	_, err := s.Update(ctx, id, UpdateEmailSettingInput{IsActive: &active})
	return err
}

func (s *emailSettingService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.settingRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("🗑️ [EmailSettingService] Email setting deleted", "setting_id", id)
	return nil
}

// ensureNoOtherAdminMail fails when an admin mail other than exceptID exists
func (s *emailSettingService) ensureNoOtherAdminMail(ctx context.Context, exceptID uuid.UUID) error {
	current, err := s.settingRepo.FindAdminMail(ctx)
	if errors.Is(err, repository.ErrEmailSettingNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if current.ID != exceptID {
		s.logger.Warn("⚠️ [EmailSettingService] Admin mail already configured", "setting_id", current.ID)
		return ErrAdminMailExists
	}
	return nil
}

// translateConflict maps a unique violation onto the admin slot or the email/user clash
func (s *emailSettingService) translateConflict(ctx context.Context, err error, setting *models.EmailSetting) error {
	if !errors.Is(err, repository.ErrDuplicateRecord) {
		return err
	}
	if setting.IsAdminMail {
		if current, findErr := s.settingRepo.FindAdminMail(ctx); findErr == nil && current.ID != setting.ID {
			return ErrAdminMailExists
		}
	}
	return ErrEmailSettingExists
}

// Email setting errors
var (
	ErrAdminMailExists    = errors.New("an admin mail setting already exists")
	ErrEmailSettingExists = errors.New("email setting already exists")
)
