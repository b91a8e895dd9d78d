package handlers

import (
	"net/http"

	"github.com/aTrapDeer/portfolio-backend/internal/http/response"
	"github.com/aTrapDeer/portfolio-backend/internal/logger"
	"github.com/aTrapDeer/portfolio-backend/internal/services"
)

type ContactHandler struct {
	log     *logger.Logger
	contact *services.ContactService
}

func NewContactHandler(log *logger.Logger, contact *services.ContactService) *ContactHandler {
	return &ContactHandler{log: log.With("handler", "ContactHandler"), contact: contact}
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var in services.ContactInput
	if err := decodeJSON(w, r, &in); err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	if _, err := h.contact.Submit(r.Context(), in); err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	response.Message(w, http.StatusCreated, "Message sent successfully")
}

// List handles GET /api/admin/contact?unread=true.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.contact.List(r.Context(), queryBool(r, "unread"))
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	response.OK(w, msgs)
}

func (h *ContactHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	msg, err := h.contact.MarkRead(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	response.OK(w, msg)
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.contact.Delete(r.Context(), r.PathValue("id")); err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	response.Message(w, http.StatusOK, "Message deleted successfully")
}
