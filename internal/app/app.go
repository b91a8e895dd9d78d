package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aTrapDeer/portfolio-backend/internal/auth"
	"github.com/aTrapDeer/portfolio-backend/internal/cache"
	"github.com/aTrapDeer/portfolio-backend/internal/config"
	apihttp "github.com/aTrapDeer/portfolio-backend/internal/http"
	"github.com/aTrapDeer/portfolio-backend/internal/logger"
	"github.com/aTrapDeer/portfolio-backend/internal/revalidate"
	"github.com/aTrapDeer/portfolio-backend/internal/services"
	"github.com/aTrapDeer/portfolio-backend/internal/store"
	"github.com/aTrapDeer/portfolio-backend/internal/store/mongostore"
	"github.com/aTrapDeer/portfolio-backend/internal/store/sqlstore"
)

const connectTimeout = 15 * time.Second

type App struct {
	Log      *logger.Logger
	Cfg      config.Config
	Store    *store.Store
	Cache    cache.Cache
	Services *services.Services
	Router   http.Handler
}

// New wires the store, cache, services and router from cfg.
func New(ctx context.Context, cfg config.Config, log *logger.Logger) (*App, error) {
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	c, err := cache.New(cfg.CacheDriver, cfg.RedisAddr, cfg.CacheTTL, log)
	if err != nil {
		_ = st.Close(ctx)
		return nil, fmt.Errorf("init cache: %w", err)
	}

	svc := services.New(services.Deps{
		Store:       st,
		Cache:       c,
		Revalidator: revalidate.New(cfg.RevalidationURL, cfg.RevalidationSecret, log),
		Tokens:      auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL),
		Notifier:    services.LogNotifier{Log: log.With("service", "OTPNotifier")},
		Log:         log,
	}, services.Options{
		SiteOwnerEmail:       cfg.SiteOwnerEmail,
		HomeTestimonialLimit: cfg.HomeTestimonialLimit,
	})

	router := apihttp.NewRouter(apihttp.RouterConfig{
		Services:     svc,
		Store:        st,
		FrontendURLs: cfg.FrontendURLs,
		Log:          log,
	})

	return &App{
		Log:      log,
		Cfg:      cfg,
		Store:    st,
		Cache:    c,
		Services: svc,
		Router:   router,
	}, nil
}

func openStore(ctx context.Context, cfg config.Config, log *logger.Logger) (*store.Store, error) {
	switch cfg.DBDriver {
	case "mongo", "mongodb":
		ctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		return mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDB, log)
	case "postgres", "postgresql":
		return sqlstore.Open("postgres", cfg.DatabaseURL, log)
	default:
		return sqlstore.Open(cfg.DBDriver, cfg.SQLitePath, log)
	}
}

// WarnIfNoAdmin mirrors the startup check for a missing admin account.
func (a *App) WarnIfNoAdmin(ctx context.Context) {
	has, err := a.Services.Auth.HasAdmin(ctx)
	if err != nil {
		a.Log.Warn("Could not check for admin user", "error", err)
		return
	}
	if !has {
		a.Log.Warn("Admin user does not exist. Please create it with `portfolio create-admin`.")
	}
}

func (a *App) Close(ctx context.Context) {
	if err := a.Store.Close(ctx); err != nil {
		a.Log.Warn("store close failed", "error", err)
	}
	a.Log.Sync()
}
