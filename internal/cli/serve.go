package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/config"
	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database/models"
	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database/service"
	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/scheduler"
)

type serveFlags struct {
	AdminEmail    string
	AdminPassword string
}

func newServeCommand() *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the background services until interrupted",
		Long: `Connect and migrate the database, optionally bootstrap a superuser when
ENABLE_ADMIN is set, and run the expired OTP purge every OTP_PURGE_INTERVAL_MINUTES.`,
		Example: `mailroom serve
  ENABLE_ADMIN=true mailroom serve --admin-email admin@example.com --admin-password change-me`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, flags)
		},
	}

	cmd.Flags().StringVar(&flags.AdminEmail, "admin-email", "", "Superuser email to ensure when ENABLE_ADMIN is set (default: ADMIN_EMAIL)")
	cmd.Flags().StringVar(&flags.AdminPassword, "admin-password", "", "Password for a newly created superuser (default: ADMIN_PASSWORD)")

	return cmd
}

// resolve falls back to ADMIN_EMAIL and ADMIN_PASSWORD, which are only known
// once the configuration (and its dotenv file) has been loaded
func (f *serveFlags) resolve(cfg *config.Config) (string, string) {
	email, password := f.AdminEmail, f.AdminPassword
	if email == "" {
		email = cfg.AdminEmail
	}
	if password == "" {
		password = cfg.AdminPassword
	}
	return email, password
}

func runServe(ctx context.Context, flags *serveFlags) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	// 1. Superuser bootstrap
	adminEmail, adminPassword := flags.resolve(a.cfg)
	if a.cfg.EnableAdmin && adminEmail != "" {
		if _, _, err := a.users.EnsureSuperuser(ctx, service.RegisterUserInput{
			Email:     adminEmail,
			Password:  adminPassword,
			FirstName: "Admin",
			LastName:  "User",
			Role:      models.RoleAdmin,
		}); err != nil {
			a.logger.Error("❌ Failed to bootstrap superuser", "error", err)
			return err
		}
	}

	// 2. Scheduler
	sched, err := scheduler.New(a.logger)
	if err != nil {
		return err
	}
	if err := scheduler.RegisterOTPPurge(sched, a.otps, a.cfg.OTPPurgeEvery()); err != nil {
		return err
	}

	sched.Start()
	if err := sched.RunJobNow(scheduler.PurgeExpiredOTPsJobID); err != nil {
		a.logger.Warn("⚠️ Initial OTP purge could not be triggered", "error", err)
	}

	a.logger.Info("✅ [Mailroom] Started successfully", "purge_every", a.cfg.OTPPurgeEvery())

	// Wait for interrupt signal to gracefully shutdown
	<-ctx.Done()
	a.logger.Info("🛑 [Mailroom] Shutting down gracefully...")

	if err := sched.Stop(); err != nil {
		a.logger.Warn("⚠️ Scheduler did not stop cleanly", "error", err)
	}
	return nil
}
