package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/config"
	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database"
	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database/repository"
	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database/service"
	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/logger"
	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/ratelimit"
)

// app holds the wired dependencies shared by the commands
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *gorm.DB
	redis  *redis.Client

	limiter ratelimit.Limiter
	users   service.UserService
	otps    service.OTPService
}

// loadConfig loads the configuration and builds the logger. A configuration
// error is returned before anything else is initialized.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, logger.New(cfg), nil
}

// newApp connects the database (running migrations), optionally Redis for the
// OTP throttle, and wires repositories into services.
func newApp(withRedis bool) (*app, error) {
	cfg, appLogger, err := loadConfig()
	if err != nil {
		return nil, err
	}

	appLogger.Info("🚀 [Mailroom] Starting...", "environment", cfg.Env)

	// 1. Connect to Database
	db, err := database.Connect(cfg, appLogger)
	if err != nil {
		appLogger.Error("❌ Failed to connect to database", "error", err)
		return nil, err
	}

	a := &app{cfg: cfg, logger: appLogger, db: db}

	// 2. Initialize Redis Client
	if withRedis {
		client, err := database.NewRedisClient(cfg, appLogger)
		switch {
		case errors.Is(err, database.ErrRedisNotConfigured):
			appLogger.Info("💡 REDIS_URL not set, OTP throttling disabled")
		case err != nil:
			appLogger.Warn("⚠️ Failed to connect to Redis, OTP throttling disabled", "error", err)
		default:
			a.redis = client
		}
	}
	a.limiter = ratelimit.New(a.redis, "otp", cfg.OTPMaxRequestsPerHour, time.Hour, appLogger)

	// 3. Initialize Repositories
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	otpRepo := repository.NewOTPRepository(db)

	// 4. Initialize Services
	validator := service.NewValidator()
	a.users = service.NewUserService(userRepo, profileRepo, validator, appLogger)
	a.otps = service.NewOTPService(otpRepo, a.limiter, validator, cfg, appLogger)

	return a, nil
}

// Close releases Redis and the database pool
func (a *app) Close() {
	if err := a.limiter.Close(); err != nil {
		a.logger.Warn("⚠️ Failed to close Redis client", "error", err)
	}
	if err := database.Close(a.db); err != nil {
		a.logger.Warn("⚠️ Failed to close database", "error", err)
	}
}

// openTarget parses DATABASE_URL and connects without migrating
func openTarget(cfg *config.Config, appLogger *slog.Logger) (*gorm.DB, *database.Target, error) {
	target, err := database.ParseDatabaseURL(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	db, err := database.Open(target, cfg.DBMaxRetries, 2*time.Second, appLogger)
	if err != nil {
		return nil, nil, err
	}
	return db, target, nil
}
