package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database/models"
	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database/repository"
)

// UserService defines the interface for user business logic
type UserService interface {
	// Accounts
	Register(ctx context.Context, input RegisterUserInput) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, page, pageSize int) (*UserPage, error)
	UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*models.User, error)
	ChangePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword string) error
	DeactivateUser(ctx context.Context, id uuid.UUID) error
	DeleteUser(ctx context.Context, id uuid.UUID) error

	// Profiles
	UpsertProfile(ctx context.Context, userID uuid.UUID, input ProfileInput) (*models.Profile, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)

	// Bootstrap
	EnsureSuperuser(ctx context.Context, input RegisterUserInput) (*models.User, bool, error)
}

// RegisterUserInput is the data needed to create an account
type RegisterUserInput struct {
	Email       string          `validate:"required,email,max=254"`
	Password    string          `validate:"required,min=8,max=72"`
	FirstName   string          `validate:"required,max=100"`
	LastName    string          `validate:"required,max=100"`
	Role        models.UserRole `validate:"omitempty,userrole"`
	IsSuperuser bool
}

// UpdateUserInput changes the fields that are set. Email and id cannot be changed here.
type UpdateUserInput struct {
	FirstName   *string          `validate:"omitempty,min=1,max=100"`
	LastName    *string          `validate:"omitempty,min=1,max=100"`
	Role        *models.UserRole `validate:"omitempty,userrole"`
	IsActive    *bool
	IsSuperuser *bool
}

// ProfileInput replaces the optional personal details of a user
type ProfileInput struct {
	Phone     *string `validate:"omitempty,max=32"`
	Bio       *string `validate:"omitempty,max=1000"`
	AvatarURL *string `validate:"omitempty,url,max=2048"`
}

// UserPage is one page of ListUsers
type UserPage struct {
	Users    []models.User
	Total    int64
	Page     int
	PageSize int
}

type userService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	validator   *Validator
	logger      *slog.Logger
}

// NewUserService creates a new user service instance
func NewUserService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	validator *Validator,
	logger *slog.Logger,
) UserService {
	return &userService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		validator:   validator,
		logger:      logger,
	}
}

// ==================== Accounts ====================

func (s *userService) Register(ctx context.Context, input RegisterUserInput) (*models.User, error) {
	s.logger.Info("📝 [UserService] Registration attempt", "email", input.Email)

	if err := s.validator.Struct(input); err != nil {
		s.logger.Warn("⚠️ [UserService] Invalid registration input", "error", err)
		return nil, err
	}

	// Check if email already exists
	existingUser, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		s.logger.Error("❌ [UserService] Database error", "error", err)
		return nil, err
	}
	if existingUser != nil {
		s.logger.Warn("⚠️ [UserService] Email already registered", "email", input.Email)
		return nil, ErrEmailAlreadyExists
	}

	user := &models.User{
		Email:       input.Email,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Role:        input.Role,
		IsActive:    true,
		IsSuperuser: input.IsSuperuser,
	}

	// Hash password
	if err := user.SetPassword(input.Password); err != nil {
		s.logger.Error("❌ [UserService] Failed to hash password", "error", err)
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailAlreadyExists
		}
		s.logger.Error("❌ [UserService] Failed to create user", "error", err)
		return nil, err
	}

	s.logger.Info("✅ [UserService] User registered successfully", "user_id", user.ID)
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.userRepo.FindByEmail(ctx, email)
}

func (s *userService) ListUsers(ctx context.Context, page, pageSize int) (*UserPage, error) {
	p := repository.NewPagination(page, pageSize)

	users, total, err := s.userRepo.List(ctx, p.Page, p.PageSize)
	if err != nil {
		s.logger.Error("❌ [UserService] Failed to list users", "error", err)
		return nil, err
	}

	return &UserPage{
		Users:    users,
		Total:    total,
		Page:     p.Page,
		PageSize: p.PageSize,
	}, nil
}

func (s *userService) UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*models.User, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("❌ [UserService] Failed to find user", "user_id", id, "error", err)
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.IsSuperuser != nil {
		user.IsSuperuser = *input.IsSuperuser
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("❌ [UserService] Failed to update user", "user_id", id, "error", err)
		return nil, err
	}

	s.logger.Info("✅ [UserService] User updated", "user_id", id)
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword string) error {
	if err := s.validator.Var("Password", newPassword, "required,min=8,max=72"); err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !user.CheckPassword(oldPassword) {
		s.logger.Warn("⚠️ [UserService] Password change rejected", "user_id", id)
		return ErrInvalidPassword
	}

	if err := user.SetPassword(newPassword); err != nil {
		return err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("❌ [UserService] Failed to store new password", "user_id", id, "error", err)
		return err
	}

	s.logger.Info("🔑 [UserService] Password changed", "user_id", id)
	return nil
}

func (s *userService) DeactivateUser(ctx context.Context, id uuid.UUID) error {
	if err := s.userRepo.SoftDelete(ctx, id); err != nil {
		s.logger.Error("❌ [UserService] Failed to deactivate user", "user_id", id, "error", err)
		return err
	}

	s.logger.Info("🚫 [UserService] User deactivated", "user_id", id)
	return nil
}

func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		s.logger.Error("❌ [UserService] Failed to delete user", "user_id", id, "error", err)
		return err
	}

	s.logger.Info("🗑️ [UserService] User deleted", "user_id", id)
	return nil
}

// ==================== Profiles ====================

func (s *userService) UpsertProfile(ctx context.Context, userID uuid.UUID, input ProfileInput) (*models.Profile, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.Upsert(ctx, &models.Profile{
		UserID:    userID,
		Phone:     input.Phone,
		Bio:       input.Bio,
		AvatarURL: input.AvatarURL,
	})
	if err != nil {
		if errors.Is(err, repository.ErrForeignKeyViolation) {
			return nil, repository.ErrUserNotFound
		}
		s.logger.Error("❌ [UserService] Failed to save profile", "user_id", userID, "error", err)
		return nil, err
	}

	return profile, nil
}

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	return s.profileRepo.FindByUserID(ctx, userID)
}

// ==================== Bootstrap ====================

// EnsureSuperuser makes sure an active ADMIN superuser with input.Email exists.
// An existing account is promoted without touching its password. The bool
// reports whether a new account was created.
func (s *userService) EnsureSuperuser(ctx context.Context, input RegisterUserInput) (*models.User, bool, error) {
	input.Role = models.RoleAdmin
	input.IsSuperuser = true

	existing, err := s.userRepo.FindByEmail(ctx, input.Email)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		user, err := s.Register(ctx, input)
		if err != nil {
			return nil, false, err
		}
		s.logger.Info("👑 [UserService] Superuser created", "user_id", user.ID)
		return user, true, nil
	case err != nil:
		return nil, false, err
	}

	if existing.IsSuperuser && existing.Role == models.RoleAdmin && existing.IsActive && !existing.IsDeleted {
		return existing, false, nil
	}

	existing.Role = models.RoleAdmin
	existing.IsSuperuser = true
	existing.IsActive = true
	existing.IsDeleted = false

	if err := s.userRepo.Update(ctx, existing); err != nil {
		return nil, false, err
	}

	s.logger.Info("👑 [UserService] Existing user promoted to superuser", "user_id", existing.ID)
	return existing, false, nil
}

// Service errors
var (
	ErrValidation         = errors.New("validation failed")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidPassword    = errors.New("invalid password")
)
