package testutil

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database/models"
)

// NewTestLogger returns a logger that discards everything
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ==================== MOCK USER REPOSITORY ====================

// MockUserRepository implements repository.UserRepository for testing
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, page, pageSize int) ([]models.User, int64, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) HasSuperuser(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// ==================== MOCK PROFILE REPOSITORY ====================

// MockProfileRepository implements repository.ProfileRepository for testing
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Upsert(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	args := m.Called(ctx, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

// ==================== MOCK OTP REPOSITORY ====================

// MockOTPRepository implements repository.OTPRepository for testing
type MockOTPRepository struct {
	mock.Mock
}

func (m *MockOTPRepository) Upsert(ctx context.Context, otp *models.TempUserOTP) (*models.TempUserOTP, error) {
	args := m.Called(ctx, otp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TempUserOTP), args.Error(1)
}

func (m *MockOTPRepository) FindByEmail(ctx context.Context, email string) (*models.TempUserOTP, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TempUserOTP), args.Error(1)
}

func (m *MockOTPRepository) Consume(ctx context.Context, otp *models.TempUserOTP) error {
	args := m.Called(ctx, otp)
	return args.Error(0)
}

func (m *MockOTPRepository) DeleteByEmail(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockOTPRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// ==================== MOCK EMAIL SETTING REPOSITORY ====================

// MockEmailSettingRepository implements repository.EmailSettingRepository for testing
type MockEmailSettingRepository struct {
	mock.Mock
}

func (m *MockEmailSettingRepository) Create(ctx context.Context, setting *models.EmailSetting) error {
	args := m.Called(ctx, setting)
	return args.Error(0)
}

func (m *MockEmailSettingRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.EmailSetting, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EmailSetting), args.Error(1)
}

func (m *MockEmailSettingRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.EmailSetting, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EmailSetting), args.Error(1)
}

func (m *MockEmailSettingRepository) FindByEmail(ctx context.Context, email string) (*models.EmailSetting, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EmailSetting), args.Error(1)
}

func (m *MockEmailSettingRepository) FindAdminMail(ctx context.Context) (*models.EmailSetting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EmailSetting), args.Error(1)
}

func (m *MockEmailSettingRepository) Update(ctx context.Context, setting *models.EmailSetting) error {
	args := m.Called(ctx, setting)
	return args.Error(0)
}

func (m *MockEmailSettingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ==================== MOCK EMAIL LOG REPOSITORY ====================

// MockEmailLogRepository implements repository.EmailLogRepository for testing
type MockEmailLogRepository struct {
	mock.Mock
}

func (m *MockEmailLogRepository) Create(ctx context.Context, log *models.EmailLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockEmailLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.EmailLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EmailLog), args.Error(1)
}

func (m *MockEmailLogRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]models.EmailLog, int64, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.EmailLog), args.Get(1).(int64), args.Error(2)
}

func (m *MockEmailLogRepository) ListBySender(ctx context.Context, senderID uuid.UUID, page, pageSize int) ([]models.EmailLog, int64, error) {
	args := m.Called(ctx, senderID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.EmailLog), args.Get(1).(int64), args.Error(2)
}

func (m *MockEmailLogRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.EmailStatus, errorMessage *string) error {
	args := m.Called(ctx, id, status, errorMessage)
	return args.Error(0)
}

// ==================== MOCK RATE LIMITER ====================

// MockLimiter implements ratelimit.Limiter for testing
type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allow(ctx context.Context, key string) (bool, int64, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}

func (m *MockLimiter) Remaining(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLimiter) Reset(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockLimiter) Close() error {
	args := m.Called()
	return args.Error(0)
}
