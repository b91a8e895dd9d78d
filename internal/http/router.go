package http

import (
	"net/http"

	httpH "github.com/aTrapDeer/portfolio-backend/internal/http/handlers"
	httpMW "github.com/aTrapDeer/portfolio-backend/internal/http/middleware"
	"github.com/aTrapDeer/portfolio-backend/internal/logger"
	"github.com/aTrapDeer/portfolio-backend/internal/services"
	"github.com/aTrapDeer/portfolio-backend/internal/store"
)

type RouterConfig struct {
	Services     *services.Services
	Store        *store.Store
	FrontendURLs []string
	Log          *logger.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	svc := cfg.Services
	authn := svc.Auth

	health := httpH.NewHealthHandler(cfg.Store, cfg.Store.Backend.Name())
	site := httpH.NewSiteHandler(log, svc.Site)
	projects := httpH.NewProjectHandler(log, svc.Projects)
	blogs := httpH.NewBlogHandler(log, svc.Blogs)
	testimonials := httpH.NewTestimonialHandler(log, svc.Testimonials)
	contact := httpH.NewContactHandler(log, svc.Contact)
	authH := httpH.NewAuthHandler(log, svc.Auth)

	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /api/health", health.HealthCheck)
	mux.HandleFunc("GET /api/home", site.Home)
	mux.HandleFunc("GET /api/about", site.About)
	mux.HandleFunc("GET /api/profile", site.Profile)
	mux.HandleFunc("GET /api/projects", projects.List)
	mux.HandleFunc("GET /api/projects/{slug}", projects.Get)
	mux.HandleFunc("GET /api/blogs", blogs.List)
	mux.HandleFunc("GET /api/blogs/{slug}", blogs.Get)
	mux.HandleFunc("GET /api/testimonials", testimonials.List)
	mux.HandleFunc("POST /api/testimonials", testimonials.Submit)
	mux.HandleFunc("POST /api/contact", contact.Submit)

	// Auth
	mux.HandleFunc("POST /api/auth/login", authH.Login)
	mux.Handle("GET /api/auth/me", httpMW.RequireAuth(authn, http.HandlerFunc(authH.Me)))
	mux.HandleFunc("POST /api/auth/password_reset", authH.RequestReset)
	mux.HandleFunc("PUT /api/auth/password_reset", authH.ResetPassword)

	// Admin
	admin := http.NewServeMux()
	admin.HandleFunc("PUT /api/admin/profile", site.UpdateProfile)
	httpH.NewResource(log, "projects", svc.Projects.Collection).Mount(admin, "/api/admin/projects")
	httpH.NewResource(log, "blogs", svc.Blogs.Collection).Mount(admin, "/api/admin/blogs")
	httpH.NewResource(log, "skill-categories", svc.SkillCategories).Mount(admin, "/api/admin/skill-categories")
	httpH.NewResource(log, "skills", svc.Skills).Mount(admin, "/api/admin/skills")
	httpH.NewResource(log, "services", svc.ServiceOffers).Mount(admin, "/api/admin/services")
	httpH.NewResource(log, "education", svc.Education).Mount(admin, "/api/admin/education")
	httpH.NewResource(log, "experience", svc.Experience).Mount(admin, "/api/admin/experience")
	httpH.NewResource(log, "testimonials", svc.Testimonials.Collection).Mount(admin, "/api/admin/testimonials")
	admin.HandleFunc("PATCH /api/admin/testimonials/{id}/status", testimonials.SetStatus)
	admin.HandleFunc("GET /api/admin/contact", contact.List)
	admin.HandleFunc("PATCH /api/admin/contact/{id}/read", contact.MarkRead)
	admin.HandleFunc("DELETE /api/admin/contact/{id}", contact.Delete)
	mux.Handle("/api/admin/", httpMW.RequireAdmin(authn, admin))

	var h http.Handler = mux
	h = httpMW.RequestLogger(log)(h)
	h = httpMW.Recover(log)(h)
	h = httpMW.RequestID(h)
	h = httpMW.CORS(cfg.FrontendURLs)(h)
	return h
}
