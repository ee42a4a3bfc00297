package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database/models"
	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database/repository"
	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/testutil"
)

func newEmailSettingServiceWithMocks() (EmailSettingService, *testutil.MockEmailSettingRepository, *testutil.MockUserRepository) {
	settingRepo := new(testutil.MockEmailSettingRepository)
	userRepo := new(testutil.MockUserRepository)
	svc := NewEmailSettingService(settingRepo, userRepo, NewValidator(), testutil.NewTestLogger())
	return svc, settingRepo, userRepo
}

func validSettingInput() EmailSettingInput {
	return EmailSettingInput{
		Email:    "smtp@example.com",
		Password: "app-password",
		Host:     "smtp.example.com",
		Port:     587,
	}
}

// ==================== EMAIL SETTING SERVICE ====================

func TestEmailSettingService_Create(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		input      func() EmailSettingInput
		setupMocks func(*testutil.MockEmailSettingRepository, *testutil.MockUserRepository)
		wantErr    error
		check      func(*testing.T, *models.EmailSetting)
	}{
		{
			name:  "success with defaults",
			input: validSettingInput,
			setupMocks: func(settingRepo *testutil.MockEmailSettingRepository, userRepo *testutil.MockUserRepository) {
				userRepo.On("FindByID", mock.Anything, userID).Return(&models.User{ID: userID}, nil)
				settingRepo.On("FindByUserID", mock.Anything, userID).Return(nil, repository.ErrEmailSettingNotFound)
				settingRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.EmailSetting")).Return(nil)
			},
			check: func(t *testing.T, s *models.EmailSetting) {
				assert.True(t, s.IsActive)
				assert.False(t, s.IsAdminMail)
				assert.Equal(t, userID, s.UserID)
			},
		},
		{
			name: "lowercase email type accepted",
			input: func() EmailSettingInput {
				in := validSettingInput()
				in.EmailType = "other"
				return in
			},
			setupMocks: func(settingRepo *testutil.MockEmailSettingRepository, userRepo *testutil.MockUserRepository) {
				userRepo.On("FindByID", mock.Anything, userID).Return(&models.User{ID: userID}, nil)
				settingRepo.On("FindByUserID", mock.Anything, userID).Return(nil, repository.ErrEmailSettingNotFound)
				settingRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			check: func(t *testing.T, s *models.EmailSetting) {
				assert.Equal(t, models.EmailTypeOther, s.EmailType)
			},
		},
		{
			name: "inactive setting written after create",
			input: func() EmailSettingInput {
				in := validSettingInput()
				inactive := false
				in.IsActive = &inactive
				return in
			},
			setupMocks: func(settingRepo *testutil.MockEmailSettingRepository, userRepo *testutil.MockUserRepository) {
				userRepo.On("FindByID", mock.Anything, userID).Return(&models.User{ID: userID}, nil)
				settingRepo.On("FindByUserID", mock.Anything, userID).Return(nil, repository.ErrEmailSettingNotFound)
				settingRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *models.EmailSetting) bool {
					return s.IsActive
				})).Return(nil)
				settingRepo.On("Update", mock.Anything, mock.MatchedBy(func(s *models.EmailSetting) bool {
					return !s.IsActive
				})).Return(nil)
			},
			check: func(t *testing.T, s *models.EmailSetting) {
				assert.False(t, s.IsActive)
			},
		},
		{
			name: "second admin mail rejected",
			input: func() EmailSettingInput {
				in := validSettingInput()
				in.IsAdminMail = true
				return in
			},
			setupMocks: func(settingRepo *testutil.MockEmailSettingRepository, userRepo *testutil.MockUserRepository) {
				userRepo.On("FindByID", mock.Anything, userID).Return(&models.User{ID: userID}, nil)
				settingRepo.On("FindByUserID", mock.Anything, userID).Return(nil, repository.ErrEmailSettingNotFound)
				settingRepo.On("FindAdminMail", mock.Anything).Return(&models.EmailSetting{ID: uuid.New(), IsAdminMail: true}, nil)
			},
			wantErr: ErrAdminMailExists,
		},
		{
			name:  "user already has a setting",
			input: validSettingInput,
			setupMocks: func(settingRepo *testutil.MockEmailSettingRepository, userRepo *testutil.MockUserRepository) {
				userRepo.On("FindByID", mock.Anything, userID).Return(&models.User{ID: userID}, nil)
				settingRepo.On("FindByUserID", mock.Anything, userID).Return(&models.EmailSetting{ID: uuid.New()}, nil)
			},
			wantErr: ErrEmailSettingExists,
		},
		{
			name:  "unknown user",
			input: validSettingInput,
			setupMocks: func(settingRepo *testutil.MockEmailSettingRepository, userRepo *testutil.MockUserRepository) {
				userRepo.On("FindByID", mock.Anything, userID).Return(nil, repository.ErrUserNotFound)
			},
			wantErr: repository.ErrUserNotFound,
		},
		{
			name: "port out of range",
			input: func() EmailSettingInput {
				in := validSettingInput()
				in.Port = 70000
				return in
			},
			setupMocks: func(*testutil.MockEmailSettingRepository, *testutil.MockUserRepository) {},
			wantErr:    ErrValidation,
		},
		{
			name: "unknown email type",
			input: func() EmailSettingInput {
				in := validSettingInput()
				in.EmailType = "IMAP"
				return in
			},
			setupMocks: func(*testutil.MockEmailSettingRepository, *testutil.MockUserRepository) {},
			wantErr:    ErrValidation,
		},
		{
			name:  "email taken by another setting",
			input: validSettingInput,
			setupMocks: func(settingRepo *testutil.MockEmailSettingRepository, userRepo *testutil.MockUserRepository) {
				userRepo.On("FindByID", mock.Anything, userID).Return(&models.User{ID: userID}, nil)
				settingRepo.On("FindByUserID", mock.Anything, userID).Return(nil, repository.ErrEmailSettingNotFound)
				settingRepo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicateRecord)
			},
			wantErr: ErrEmailSettingExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, settingRepo, userRepo := newEmailSettingServiceWithMocks()
			tt.setupMocks(settingRepo, userRepo)

			setting, err := svc.Create(context.Background(), userID, tt.input())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, setting)
			} else {
				require.NoError(t, err)
				tt.check(t, setting)
			}
			settingRepo.AssertExpectations(t)
		})
	}
}

func TestEmailSettingService_Update(t *testing.T) {
	id := uuid.New()
	current := func() *models.EmailSetting {
		return &models.EmailSetting{ID: id, Email: "smtp@example.com", Host: "smtp.example.com", Port: 25, IsActive: true}
	}

	t.Run("promote to admin mail when the slot is free", func(t *testing.T) {
		svc, settingRepo, _ := newEmailSettingServiceWithMocks()
		settingRepo.On("FindByID", mock.Anything, id).Return(current(), nil)
		settingRepo.On("FindAdminMail", mock.Anything).Return(nil, repository.ErrEmailSettingNotFound)
		settingRepo.On("Update", mock.Anything, mock.MatchedBy(func(s *models.EmailSetting) bool {
			return s.IsAdminMail && s.Port == 465
		})).Return(nil)

		admin := true
		port := 465
		setting, err := svc.Update(context.Background(), id, UpdateEmailSettingInput{IsAdminMail: &admin, Port: &port})
		require.NoError(t, err)
		assert.True(t, setting.IsAdminMail)
	})

	t.Run("promote rejected when another admin mail exists", func(t *testing.T) {
		svc, settingRepo, _ := newEmailSettingServiceWithMocks()
		settingRepo.On("FindByID", mock.Anything, id).Return(current(), nil)
		settingRepo.On("FindAdminMail", mock.Anything).Return(&models.EmailSetting{ID: uuid.New(), IsAdminMail: true}, nil)

		admin := true
		_, err := svc.Update(context.Background(), id, UpdateEmailSettingInput{IsAdminMail: &admin})
		assert.ErrorIs(t, err, ErrAdminMailExists)
		settingRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("set inactive", func(t *testing.T) {
		svc, settingRepo, _ := newEmailSettingServiceWithMocks()
		settingRepo.On("FindByID", mock.Anything, id).Return(current(), nil)
		settingRepo.On("Update", mock.Anything, mock.MatchedBy(func(s *models.EmailSetting) bool {
			return !s.IsActive
		})).Return(nil)

		require.NoError(t, svc.SetActive(context.Background(), id, false))
		settingRepo.AssertExpectations(t)
	})
}

func TestEmailSettingService_GetAdminMail(t *testing.T) {
	t.Run("active", func(t *testing.T) {
		svc, settingRepo, _ := newEmailSettingServiceWithMocks()
		settingRepo.On("FindAdminMail", mock.Anything).Return(&models.EmailSetting{ID: uuid.New(), IsAdminMail: true, IsActive: true}, nil)

		setting, err := svc.GetAdminMail(context.Background())
		require.NoError(t, err)
		assert.True(t, setting.IsAdminMail)
	})

	t.Run("inactive counts as missing", func(t *testing.T) {
		svc, settingRepo, _ := newEmailSettingServiceWithMocks()
		settingRepo.On("FindAdminMail", mock.Anything).Return(&models.EmailSetting{ID: uuid.New(), IsAdminMail: true}, nil)

		_, err := svc.GetAdminMail(context.Background())
		assert.ErrorIs(t, err, repository.ErrEmailSettingNotFound)
	})
}

// ==================== EMAIL LOG SERVICE ====================

func newEmailLogServiceWithMocks() (EmailLogService, *testutil.MockEmailLogRepository, *testutil.MockUserRepository) {
	logRepo := new(testutil.MockEmailLogRepository)
	userRepo := new(testutil.MockUserRepository)
	svc := NewEmailLogService(logRepo, userRepo, NewValidator(), testutil.NewTestLogger())
	return svc, logRepo, userRepo
}

func TestEmailLogService_Record(t *testing.T) {
	sender := uuid.New()
	recipient := uuid.New()

	t.Run("links a known recipient", func(t *testing.T) {
		svc, logRepo, userRepo := newEmailLogServiceWithMocks()
		userRepo.On("FindByEmail", mock.Anything, "to@example.com").Return(&models.User{ID: recipient}, nil)
		logRepo.On("Create", mock.Anything, mock.MatchedBy(func(l *models.EmailLog) bool {
			return l.UserID != nil && *l.UserID == recipient && *l.SendByID == sender && l.Status == models.EmailStatusPending
		})).Return(nil)

		log, err := svc.Record(context.Background(), RecordEmailInput{SendByID: &sender, Recipient: "to@example.com", Subject: "hello"})
		require.NoError(t, err)
		assert.Equal(t, models.EmailStatusPending, log.Status)
	})

	t.Run("external recipient", func(t *testing.T) {
		svc, logRepo, userRepo := newEmailLogServiceWithMocks()
		userRepo.On("FindByEmail", mock.Anything, "ext@example.org").Return(nil, repository.ErrUserNotFound)
		logRepo.On("Create", mock.Anything, mock.MatchedBy(func(l *models.EmailLog) bool {
			return l.UserID == nil
		})).Return(nil)

		_, err := svc.Record(context.Background(), RecordEmailInput{SendByID: &sender, Recipient: "ext@example.org", Subject: "hello"})
		require.NoError(t, err)
	})

	t.Run("missing subject", func(t *testing.T) {
		svc, _, _ := newEmailLogServiceWithMocks()

		_, err := svc.Record(context.Background(), RecordEmailInput{Recipient: "to@example.com"})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestEmailLogService_Status(t *testing.T) {
	svc, logRepo, _ := newEmailLogServiceWithMocks()
	id := uuid.New()

	logRepo.On("UpdateStatus", mock.Anything, id, models.EmailStatusSent, (*string)(nil)).Return(nil)
	logRepo.On("UpdateStatus", mock.Anything, id, models.EmailStatusFailed, mock.MatchedBy(func(reason *string) bool {
		return reason != nil && *reason == "timeout"
	})).Return(nil)

	require.NoError(t, svc.MarkSent(context.Background(), id))
	require.NoError(t, svc.MarkFailed(context.Background(), id, "timeout"))
	logRepo.AssertExpectations(t)
}

func TestEmailLogService_Lists(t *testing.T) {
	svc, logRepo, _ := newEmailLogServiceWithMocks()
	userID := uuid.New()

	logRepo.On("ListByUser", mock.Anything, userID, 2, 5).Return([]models.EmailLog{{ID: uuid.New()}}, int64(6), nil)
	logRepo.On("ListBySender", mock.Anything, userID, 1, repository.DefaultPageSize).Return([]models.EmailLog{}, int64(0), nil)

	received, err := svc.ListReceived(context.Background(), userID, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(6), received.Total)
	assert.Len(t, received.Logs, 1)

	sent, err := svc.ListSent(context.Background(), userID, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, sent.Total)
	assert.Equal(t, repository.DefaultPageSize, sent.PageSize)
}
