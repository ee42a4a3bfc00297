package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/config"
	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database/models"
	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database/repository"
	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/ratelimit"
)

// OTPService issues and verifies one-time passcodes sent to an email address
type OTPService interface {
	// Issue creates a fresh code for email, replacing any outstanding one
	Issue(ctx context.Context, email string) (string, error)

	// Verify checks code against the outstanding one and consumes it on success
	Verify(ctx context.Context, email, code string) error

	// PurgeExpired deletes every expired code and returns how many were removed
	PurgeExpired(ctx context.Context) (int64, error)
}

type otpService struct {
	otpRepo   repository.OTPRepository
	limiter   ratelimit.Limiter
	validator *Validator
	length    int
	ttl       time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewOTPService creates a new OTP service instance. Code length and lifetime
// come from OTP_LENGTH and OTP_EXPIRE_MINUTES.
func NewOTPService(
	otpRepo repository.OTPRepository,
	limiter ratelimit.Limiter,
	validator *Validator,
	cfg *config.Config,
	logger *slog.Logger,
) OTPService {
	return &otpService{
		otpRepo:   otpRepo,
		limiter:   limiter,
		validator: validator,
		length:    int(cfg.OTPLength),
		ttl:       cfg.OTPTTL(),
		now:       time.Now,
		logger:    logger,
	}
}

func (s *otpService) Issue(ctx context.Context, email string) (string, error) {
	email = models.NormalizeEmail(email)
	if err := s.validator.Var("Email", email, "required,email"); err != nil {
		return "", err
	}

	allowed, remaining, err := s.limiter.Allow(ctx, email)
	if err != nil {
		s.logger.Warn("⚠️ [OTPService] Rate limiter unavailable, allowing request", "email", email, "error", err)
	}
	if !allowed {
		s.logger.Warn("⚠️ [OTPService] OTP request throttled", "email", email)
		return "", ErrOTPRateLimited
	}

	code, err := generateCode(s.length)
	if err != nil {
		s.logger.Error("❌ [OTPService] Failed to generate code", "error", err)
		return "", err
	}

	otp, err := s.otpRepo.Upsert(ctx, &models.TempUserOTP{
		Email:     email,
		OTP:       code,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		s.logger.Error("❌ [OTPService] Failed to store code", "email", email, "error", err)
		return "", err
	}

	s.logger.Info("✉️ [OTPService] OTP issued",
		"email", email,
		"expires_at", otp.ExpiresAt(s.ttl),
		"remaining_requests", remaining,
	)
	return code, nil
}

func (s *otpService) Verify(ctx context.Context, email, code string) error {
	email = models.NormalizeEmail(email)

	otp, err := s.otpRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return ErrInvalidOTP
		}
		return err
	}

	if otp.IsExpired(s.ttl, s.now()) {
		if err := s.otpRepo.Consume(ctx, otp); err != nil && !errors.Is(err, repository.ErrOTPNotFound) {
			s.logger.Warn("⚠️ [OTPService] Failed to drop expired code", "email", email, "error", err)
		}
		return ErrOTPExpired
	}

	if subtle.ConstantTimeCompare([]byte(otp.OTP), []byte(code)) != 1 {
		s.logger.Warn("⚠️ [OTPService] OTP mismatch", "email", email)
		return ErrInvalidOTP
	}

	// The code counts only if this call removes the exact row it compared against
	if err := s.otpRepo.Consume(ctx, otp); err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return ErrInvalidOTP
		}
		return err
	}

	s.logger.Info("✅ [OTPService] OTP verified", "email", email)
	return nil
}

func (s *otpService) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.ttl)

	purged, err := s.otpRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("❌ [OTPService] Failed to purge expired codes", "error", err)
		return 0, err
	}

	if purged > 0 {
		s.logger.Info("🧹 [OTPService] Expired codes purged", "count", purged)
	}
	return purged, nil
}

const otpDigits = "0123456789"

// generateCode returns a numeric code of length digits drawn from crypto/rand
func generateCode(length int) (string, error) {
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(otpDigits))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		code[i] = otpDigits[n.Int64()]
	}
	return string(code), nil
}

// OTP errors
var (
	ErrInvalidOTP     = errors.New("invalid otp")
	ErrOTPExpired     = errors.New("otp expired")
	ErrOTPRateLimited = errors.New("too many otp requests")
)
