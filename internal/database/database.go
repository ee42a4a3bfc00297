package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/config"
)

//go:embed migrations/*/*.sql
var embedMigrations embed.FS

// Dialect names the storage engine behind DATABASE_URL
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// Target is a parsed DATABASE_URL
type Target struct {
	Dialect Dialect
	DSN     string
	Host    string // empty for sqlite
	Name    string // database name or sqlite file path
}

// ParseDatabaseURL maps DATABASE_URL onto a driver DSN. SQLAlchemy style
// driver suffixes ("sqlite+aiosqlite", "postgresql+asyncpg") are accepted.
func ParseDatabaseURL(raw string) (*Target, error) {
	schemeEnd := strings.Index(raw, "://")
	if schemeEnd <= 0 {
		return nil, fmt.Errorf("%w: missing scheme", ErrUnsupportedDatabaseURL)
	}

	scheme := strings.ToLower(raw[:schemeEnd])
	withDriver := false
	if plus := strings.Index(scheme, "+"); plus > 0 {
		scheme = scheme[:plus]
		withDriver = true
	}
	rest := raw[schemeEnd+3:]

	switch scheme {
	case "sqlite", "sqlite3":
		if withDriver {
			// SQLAlchemy form: sqlite+driver:///rel/path and sqlite+driver:////abs/path
			rest = strings.TrimPrefix(rest, "/")
		}
		return parseSQLite(rest)
	case "postgres", "postgresql":
		return parsePostgres("postgres://" + rest)
	default:
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedDatabaseURL, scheme)
	}
}

func parseSQLite(rest string) (*Target, error) {
	path, query, _ := strings.Cut(rest, "?")
	if path == "" {
		return nil, fmt.Errorf("%w: empty sqlite path", ErrUnsupportedDatabaseURL)
	}

	params, err := url.ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedDatabaseURL, err)
	}
	// Cascades depend on foreign key enforcement, which sqlite leaves off per connection
	if params.Get("_foreign_keys") == "" && params.Get("_fk") == "" {
		params.Set("_foreign_keys", "on")
	}

	return &Target{
		Dialect: DialectSQLite,
		DSN:     path + "?" + params.Encode(),
		Name:    path,
	}, nil
}

func parsePostgres(raw string) (*Target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedDatabaseURL, err)
	}

	dsn, err := pq.ParseURL(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedDatabaseURL, err)
	}
	if u.Query().Get("TimeZone") == "" {
		dsn += " TimeZone=UTC"
	}

	return &Target{
		Dialect: DialectPostgres,
		DSN:     dsn,
		Host:    u.Hostname(),
		Name:    strings.TrimPrefix(u.Path, "/"),
	}, nil
}

// Connect opens DATABASE_URL, retrying while the server comes up, and applies
// pending migrations.
func Connect(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	target, err := ParseDatabaseURL(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	logger.Info("🔌 [Database] Connecting...",
		"dialect", target.Dialect,
		"host", target.Host,
		"database", target.Name,
	)

	db, err := Open(target, cfg.DBMaxRetries, 2*time.Second, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("✅ [Database] Database connection established")

	// Run migrations using goose
	logger.Info("🔄 [Database] Running migrations...")
	if err := Migrate(context.Background(), db, target.Dialect, logger); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("✅ [Database] Migrations completed successfully")

	return db, nil
}

// Open connects to target without migrating
func Open(target *Target, maxRetries int64, retryDelay time.Duration, logger *slog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch target.Dialect {
	case DialectSQLite:
		if err := ensureSQLiteDir(target.Name); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(target.DSN)
	case DialectPostgres:
		dialector = postgres.Open(target.DSN)
	default:
		return nil, fmt.Errorf("%w: dialect %q", ErrUnsupportedDatabaseURL, target.Dialect)
	}

	if maxRetries < 1 {
		maxRetries = 1
	}

	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var db *gorm.DB
	var err error

	for i := int64(0); i < maxRetries; i++ {
		db, err = gorm.Open(dialector, gormCfg)
		if err == nil {
			// Test the connection
			sqlDB, dbErr := db.DB()
			if dbErr == nil {
				if err = sqlDB.Ping(); err == nil {
					break
				}
			} else {
				err = dbErr
			}
		}

		if i < maxRetries-1 {
			logger.Warn("⏳ [Database] Connection failed, retrying...",
				"attempt", i+1,
				"max_retries", maxRetries,
				"retry_in", retryDelay,
				"error", err,
			)
			time.Sleep(retryDelay)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s after %d attempts: %w", target.Dialect, maxRetries, err)
	}

	if target.Dialect == DialectSQLite {
		// A single writer avoids "database is locked" under concurrent requests
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func ensureSQLiteDir(path string) error {
	if path == ":memory:" || strings.HasPrefix(path, "file::memory:") {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create sqlite directory %s: %w", dir, err)
	}
	return nil
}

// Migrate applies the embedded migrations for dialect
func Migrate(ctx context.Context, gormDB *gorm.DB, dialect Dialect, logger *slog.Logger) error {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	dir, err := prepareGoose(dialect, logger)
	if err != nil {
		return err
	}

	if err := goose.UpContext(ctx, sqlDB, dir); err != nil {
		return fmt.Errorf("failed to run goose migrations: %w", err)
	}

	return nil
}

// MigrationStatus logs the applied state of every migration and returns the current version
func MigrationStatus(ctx context.Context, gormDB *gorm.DB, dialect Dialect, logger *slog.Logger) (int64, error) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return 0, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	dir, err := prepareGoose(dialect, logger)
	if err != nil {
		return 0, err
	}

	if err := goose.StatusContext(ctx, sqlDB, dir); err != nil {
		return 0, fmt.Errorf("failed to read migration status: %w", err)
	}

	return goose.GetDBVersionContext(ctx, sqlDB)
}

func prepareGoose(dialect Dialect, logger *slog.Logger) (string, error) {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(&gooseLogger{logger: logger})

	var gooseDialect string
	switch dialect {
	case DialectPostgres:
		gooseDialect = "postgres"
	case DialectSQLite:
		gooseDialect = "sqlite3"
	default:
		return "", fmt.Errorf("%w: dialect %q", ErrUnsupportedDatabaseURL, dialect)
	}

	if err := goose.SetDialect(gooseDialect); err != nil {
		return "", fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return "migrations/" + string(dialect), nil
}

// gooseLogger routes goose output through slog
type gooseLogger struct {
	logger *slog.Logger
}

func (l *gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info("🗂️ [Goose] " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error("❌ [Goose] " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Close releases the connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Database errors
var (
	ErrUnsupportedDatabaseURL = errors.New("unsupported DATABASE_URL")
)
