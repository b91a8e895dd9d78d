package handlers

import (
	"net/http"

	"github.com/aTrapDeer/portfolio-backend/internal/http/response"
	"github.com/aTrapDeer/portfolio-backend/internal/logger"
	"github.com/aTrapDeer/portfolio-backend/internal/models"
	"github.com/aTrapDeer/portfolio-backend/internal/services"
)

type TestimonialHandler struct {
	log          *logger.Logger
	testimonials *services.TestimonialService
}

func NewTestimonialHandler(log *logger.Logger, testimonials *services.TestimonialService) *TestimonialHandler {
	return &TestimonialHandler{log: log.With("handler", "TestimonialHandler"), testimonials: testimonials}
}

func (h *TestimonialHandler) List(w http.ResponseWriter, r *http.Request) {
	cards, err := h.testimonials.ListApproved(r.Context())
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	response.OK(w, cards)
}

func (h *TestimonialHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var in services.TestimonialInput
	if err := decodeJSON(w, r, &in); err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	t, err := h.testimonials.Submit(r.Context(), in)
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]any{
		"message":     "Thank you! Your testimonial will appear once it has been reviewed.",
		"testimonial": t.Card(),
	})
}

func (h *TestimonialHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status models.TestimonialStatus `json:"status"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	t, err := h.testimonials.SetStatus(r.Context(), r.PathValue("id"), body.Status)
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	response.OK(w, t)
}
