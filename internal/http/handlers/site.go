package handlers

import (
	"net/http"

	"github.com/aTrapDeer/portfolio-backend/internal/http/response"
	"github.com/aTrapDeer/portfolio-backend/internal/logger"
	"github.com/aTrapDeer/portfolio-backend/internal/services"
)

// SiteHandler serves the aggregated page payloads.
type SiteHandler struct {
	log  *logger.Logger
	site *services.SiteService
}

func NewSiteHandler(log *logger.Logger, site *services.SiteService) *SiteHandler {
	return &SiteHandler{log: log.With("handler", "SiteHandler"), site: site}
}

func (h *SiteHandler) Home(w http.ResponseWriter, r *http.Request) {
	page, err := h.site.Home(r.Context())
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	response.OK(w, page)
}

func (h *SiteHandler) About(w http.ResponseWriter, r *http.Request) {
	page, err := h.site.About(r.Context())
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	response.OK(w, page)
}

func (h *SiteHandler) Profile(w http.ResponseWriter, r *http.Request) {
	page, err := h.site.Profile(r.Context())
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	response.OK(w, page)
}

func (h *SiteHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in services.ProfileInput
	if err := decodeJSON(w, r, &in); err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	u, err := h.site.UpdateProfile(r.Context(), in)
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	response.OK(w, u)
}
