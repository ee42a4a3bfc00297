package scheduler

import (
	"context"
	"time"

	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database/service"
)

const PurgeExpiredOTPsJobID = "purge-expired-otps"

// RegisterOTPPurge schedules the removal of expired one-time passcodes
func RegisterOTPPurge(s *Scheduler, otpService service.OTPService, every time.Duration) error {
	return s.AddSingletonJob(
		PurgeExpiredOTPsJobID,
		"Purge expired OTPs",
		"Deletes one-time passcodes older than OTP_EXPIRE_MINUTES",
		every,
		func(ctx context.Context) error {
			_, err := otpService.PurgeExpired(ctx)
			return err
		},
	)
}
