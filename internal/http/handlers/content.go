package handlers

import (
	"net/http"
	"strings"

	"github.com/aTrapDeer/portfolio-backend/internal/http/response"
	"github.com/aTrapDeer/portfolio-backend/internal/logger"
	"github.com/aTrapDeer/portfolio-backend/internal/services"
)

type ProjectHandler struct {
	log      *logger.Logger
	projects *services.ProjectService
}

func NewProjectHandler(log *logger.Logger, projects *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{log: log.With("handler", "ProjectHandler"), projects: projects}
}

// List handles GET /api/projects?featured=true&tag=go.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	cards, err := h.projects.ListPublic(r.Context(), queryBool(r, "featured"), strings.TrimSpace(r.URL.Query().Get("tag")))
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	response.OK(w, cards)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.projects.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	response.OK(w, p)
}

type BlogHandler struct {
	log   *logger.Logger
	blogs *services.BlogService
}

func NewBlogHandler(log *logger.Logger, blogs *services.BlogService) *BlogHandler {
	return &BlogHandler{log: log.With("handler", "BlogHandler"), blogs: blogs}
}

// List handles GET /api/blogs?tag=go&limit=10&page=2.
func (h *BlogHandler) List(w http.ResponseWriter, r *http.Request) {
	cards, err := h.blogs.ListPublished(r.Context(), services.BlogListOptions{
		Tag:   strings.TrimSpace(r.URL.Query().Get("tag")),
		Limit: queryInt(r, "limit", 0),
		Page:  queryInt(r, "page", 1),
	})
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	response.OK(w, cards)
}

func (h *BlogHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.blogs.GetBySlug(r.Context(), r.PathValue("slug"), false)
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	response.OK(w, b)
}

// Resource exposes admin CRUD for one collection.
type Resource[T any, PT services.Record[T]] struct {
	log  *logger.Logger
	name string
	coll *services.Collection[T, PT]
}

func NewResource[T any, PT services.Record[T]](log *logger.Logger, name string, coll *services.Collection[T, PT]) *Resource[T, PT] {
	return &Resource[T, PT]{log: log.With("handler", name), name: name, coll: coll}
}

func (h *Resource[T, PT]) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.coll.List(r.Context())
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	response.OK(w, docs)
}

func (h *Resource[T, PT]) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.coll.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	response.OK(w, doc)
}

func (h *Resource[T, PT]) Create(w http.ResponseWriter, r *http.Request) {
	doc := new(T)
	if err := decodeJSON(w, r, doc); err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	if err := h.coll.Create(r.Context(), doc); err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	h.log.Info("Created", "id", PT(doc).Base().ID)
	response.Created(w, doc)
}

func (h *Resource[T, PT]) Update(w http.ResponseWriter, r *http.Request) {
	doc := new(T)
	if err := decodeJSON(w, r, doc); err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	if err := h.coll.Update(r.Context(), r.PathValue("id"), doc); err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	response.OK(w, doc)
}

func (h *Resource[T, PT]) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.coll.Delete(r.Context(), id); err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	h.log.Info("Deleted", "id", id)
	response.Message(w, http.StatusOK, "Deleted successfully")
}

// Mount registers the CRUD routes under prefix, e.g. /api/admin/projects.
func (h *Resource[T, PT]) Mount(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("GET "+prefix, h.List)
	mux.HandleFunc("POST "+prefix, h.Create)
	mux.HandleFunc("GET "+prefix+"/{id}", h.Get)
	mux.HandleFunc("PUT "+prefix+"/{id}", h.Update)
	mux.HandleFunc("DELETE "+prefix+"/{id}", h.Delete)
}
