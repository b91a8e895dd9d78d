// Package sqlstore implements store.Repository on gorm, backed by sqlite for
// single-node deployments or postgres.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aTrapDeer/portfolio-backend/internal/logger"
	"github.com/aTrapDeer/portfolio-backend/internal/models"
	"github.com/aTrapDeer/portfolio-backend/internal/store"
)

// AllModels is the migration set.
var AllModels = []any{
	&models.User{},
	&models.Project{},
	&models.Blog{},
	&models.SkillCategory{},
	&models.Skill{},
	&models.Service{},
	&models.Education{},
	&models.Experience{},
	&models.Testimonial{},
	&models.ContactMessage{},
	&models.PasswordResetToken{},
}

// Open connects with the named driver ("sqlite" or "postgres"), migrates the
// schema and returns a Store.
func Open(driver, dsn string, log *logger.Logger) (*store.Store, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case "", "sqlite":
		driver = "sqlite"
		if dsn == "" {
			dsn = "portfolio.db"
		}
		dialector = sqlite.Open(dsn)
	case "postgres", "postgresql":
		driver = "postgres"
		if dsn == "" {
			return nil, errors.New("sqlstore: DATABASE_URL is required for postgres")
		}
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("sqlstore: connect %s: %w", driver, err)
	}

	if driver == "sqlite" {
		// sqlite serializes writers; one connection also keeps ":memory:"
		// databases alive for the life of the pool.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(AllModels...); err != nil {
		return nil, fmt.Errorf("sqlstore: migrate: %w", err)
	}
	if log != nil {
		log.Info("SQL store ready", "driver", driver)
	}
	return New(db, driver), nil
}

// New wraps an already migrated gorm handle.
func New(db *gorm.DB, driver string) *store.Store {
	return &store.Store{
		Users:           newRepo[models.User](db),
		Projects:        newRepo[models.Project](db),
		Blogs:           newRepo[models.Blog](db),
		SkillCategories: newRepo[models.SkillCategory](db),
		Skills:          newRepo[models.Skill](db),
		Services:        newRepo[models.Service](db),
		Education:       newRepo[models.Education](db),
		Experience:      newRepo[models.Experience](db),
		Testimonials:    newRepo[models.Testimonial](db),
		ContactMessages: newRepo[models.ContactMessage](db),
		ResetTokens:     newRepo[models.PasswordResetToken](db),
		Backend:         &backend{db: db, driver: driver},
	}
}

type backend struct {
	db     *gorm.DB
	driver string
}

func (b *backend) Name() string { return b.driver }

func (b *backend) Ping(ctx context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (b *backend) Close(context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func newGormLogger(log *logger.Logger) gormlogger.Interface {
	if log == nil {
		return gormlogger.Default.LogMode(gormlogger.Silent)
	}
	return gormlogger.New(
		zap.NewStdLog(log.SugaredLogger.Desugar()),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return store.ErrDuplicate
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key") {
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return err
}
