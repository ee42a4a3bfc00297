package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database"
	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database/models"
	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database/repository"
	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/ratelimit"
	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/testutil"
)

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	logger := testutil.NewTestLogger()
	target, err := database.ParseDatabaseURL("sqlite://" + filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)

	db, err := database.Open(target, 1, time.Millisecond, logger)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	require.NoError(t, database.Migrate(context.Background(), db, target.Dialect, logger))
	return db.Session(&gorm.Session{Logger: gormlogger.Discard})
}

func TestIntegration_UserLifecycle(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	validator := NewValidator()
	logger := testutil.NewTestLogger()

	userRepo := repository.NewUserRepository(db)
	users := NewUserService(userRepo, repository.NewProfileRepository(db), validator, logger)
	settings := NewEmailSettingService(repository.NewEmailSettingRepository(db), userRepo, validator, logger)
	logs := NewEmailLogService(repository.NewEmailLogRepository(db), userRepo, validator, logger)

	owner, err := users.Register(ctx, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, owner.Role)

	_, err = users.Register(ctx, RegisterUserInput{
		Email: "TEST@example.com", Password: "password123", FirstName: "Copy", LastName: "Cat",
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	peer, err := users.Register(ctx, RegisterUserInput{
		Email: "peer@example.com", Password: "password123", FirstName: "Peer", LastName: "User",
	})
	require.NoError(t, err)

	bio := "owner"
	_, err = users.UpsertProfile(ctx, owner.ID, ProfileInput{Bio: &bio})
	require.NoError(t, err)

	input := validSettingInput()
	input.IsAdminMail = true
	setting, err := settings.Create(ctx, owner.ID, input)
	require.NoError(t, err)

	second := validSettingInput()
	second.Email = "peer-smtp@example.com"
	second.IsAdminMail = true
	_, err = settings.Create(ctx, peer.ID, second)
	assert.ErrorIs(t, err, ErrAdminMailExists)

	sent, err := logs.Record(ctx, RecordEmailInput{SendByID: &owner.ID, Recipient: "peer@example.com", Subject: "welcome"})
	require.NoError(t, err)
	require.NotNil(t, sent.UserID)
	assert.Equal(t, peer.ID, *sent.UserID)
	require.NoError(t, logs.MarkSent(ctx, sent.ID))

	require.NoError(t, users.DeleteUser(ctx, owner.ID))

	_, err = users.GetProfile(ctx, owner.ID)
	assert.ErrorIs(t, err, repository.ErrProfileNotFound)

	_, err = settings.Get(ctx, setting.ID)
	assert.ErrorIs(t, err, repository.ErrEmailSettingNotFound)

	received, err := logs.ListReceived(ctx, peer.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, received.Logs, 1)
	assert.Nil(t, received.Logs[0].SendByID)
	assert.Equal(t, models.EmailStatusSent, received.Logs[0].Status)

	// The admin slot is free again
	_, err = settings.Create(ctx, peer.ID, second)
	assert.NoError(t, err)
}

func TestIntegration_OTPFlow(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	logger := testutil.NewTestLogger()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := testOTPConfig()
	cfg.OTPMaxRequestsPerHour = 3
	limiter := ratelimit.New(client, "otp", cfg.OTPMaxRequestsPerHour, time.Hour, logger)

	repo := repository.NewOTPRepository(db)
	svc := NewOTPService(repo, limiter, NewValidator(), cfg, logger).(*otpService)
	now := time.Now().UTC()
	svc.now = func() time.Time { return now }

	first, err := svc.Issue(ctx, "otp@example.com")
	require.NoError(t, err)
	second, err := svc.Issue(ctx, "otp@example.com")
	require.NoError(t, err)

	var rows int64
	require.NoError(t, db.Model(&models.TempUserOTP{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	if first != second {
		assert.ErrorIs(t, svc.Verify(ctx, "otp@example.com", first), ErrInvalidOTP)
	}
	require.NoError(t, svc.Verify(ctx, "otp@example.com", second))
	assert.ErrorIs(t, svc.Verify(ctx, "otp@example.com", second), ErrInvalidOTP)

	// Third request in the hour is still allowed, the fourth is not
	code, err := svc.Issue(ctx, "otp@example.com")
	require.NoError(t, err)
	_, err = svc.Issue(ctx, "otp@example.com")
	assert.ErrorIs(t, err, ErrOTPRateLimited)

	later := now.Add(11 * time.Minute)
	svc.now = func() time.Time { return later }
	assert.ErrorIs(t, svc.Verify(ctx, "otp@example.com", code), ErrOTPExpired)

	_, err = svc.Issue(ctx, "other@example.com")
	require.NoError(t, err)

	evenLater := later.Add(time.Hour)
	svc.now = func() time.Time { return evenLater }
	purged, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

// reissuingOTPRepository runs beforeConsume once, between Verify's read and its delete
type reissuingOTPRepository struct {
	repository.OTPRepository
	beforeConsume func()
}

func (r *reissuingOTPRepository) Consume(ctx context.Context, otp *models.TempUserOTP) error {
	if r.beforeConsume != nil {
		hook := r.beforeConsume
		r.beforeConsume = nil
		hook()
	}
	return r.OTPRepository.Consume(ctx, otp)
}

func TestIntegration_OTPReissuedDuringVerify(t *testing.T) {
	ctx := context.Background()
	logger := testutil.NewTestLogger()

	repo := &reissuingOTPRepository{OTPRepository: repository.NewOTPRepository(newSQLiteDB(t))}
	svc := NewOTPService(repo, ratelimit.NewNoOpLimiter(logger), NewValidator(), testOTPConfig(), logger).(*otpService)
	now := time.Now().UTC()
	svc.now = func() time.Time { return now }

	first, err := svc.Issue(ctx, "race@example.com")
	require.NoError(t, err)

	var newer string
	repo.beforeConsume = func() {
		now = now.Add(time.Second)
		newer, err = svc.Issue(ctx, "race@example.com")
		require.NoError(t, err)
	}

	assert.ErrorIs(t, svc.Verify(ctx, "race@example.com", first), ErrInvalidOTP)
	require.NotEmpty(t, newer)
	assert.NoError(t, svc.Verify(ctx, "race@example.com", newer))
}
