// internal/api/handlers.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/arhont375/articlevec/internal/embedder"
	"github.com/arhont375/articlevec/internal/service"
	"github.com/arhont375/articlevec/internal/types"
)

// Handlers holds HTTP handler dependencies
type Handlers struct {
	svc         *service.Service
	healthCheck func() error
}

// NewHandlers creates new API handlers
func NewHandlers(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

// SetHealthCheck installs a storage connectivity probe for /health
func (h *Handlers) SetHealthCheck(check func() error) {
	h.healthCheck = check
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondJSON(w, status, ErrorResponse{Error: msg})
}

// respondServiceError maps domain errors onto HTTP status codes. Only
// absence translates to 404; unknown models and bad input are the
// caller's fault, everything else is ours.
func (h *Handlers) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		h.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, embedder.ErrModelNotFound):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, types.ErrModelMismatch):
		h.respondError(w, http.StatusConflict, err.Error())
	default:
		h.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// requestModel applies the default model when the request omits one
func requestModel(s string) embedder.Model {
	if s == "" {
		return embedder.ModelMiniLM
	}
	return embedder.Model(s)
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.healthCheck != nil {
		if err := h.healthCheck(); err != nil {
			h.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
			return
		}
	}
	h.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Create handles POST /articles
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" || req.Excerpt == "" || req.Body == "" {
		h.respondError(w, http.StatusBadRequest, "title, excerpt, and body are required")
		return
	}

	art, err := h.svc.Create(r.Context(), types.Article{
		Title:   req.Title,
		Excerpt: req.Excerpt,
		Body:    req.Body,
	}, requestModel(req.Model))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, ArticleResponse{Article: art})
}

// Get handles GET /articles/{id}
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid article ID")
		return
	}

	art, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, ArticleResponse{Article: art})
}

// Patch handles PATCH /articles/{id}
func (h *Handlers) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid article ID")
		return
	}

	var req PatchArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := types.ArticlePatch{
		Title:     req.Title,
		Excerpt:   req.Excerpt,
		Body:      req.Body,
		UpdatedAt: req.UpdatedAt,
	}
	if err := patch.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	art, err := h.svc.Patch(r.Context(), id, patch, requestModel(req.Model))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, ArticleResponse{Article: art})
}

// Delete handles DELETE /articles/{id}
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid article ID")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, DeleteResponse{ID: id})
}

// Search handles GET /search?user_query=...&model=...&limit=...
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("user_query")
	if query == "" {
		h.respondError(w, http.StatusBadRequest, "user_query is required")
		return
	}

	model := requestModel(r.URL.Query().Get("model"))

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			h.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	articles, err := h.svc.Search(r.Context(), query, model, limit)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	if articles == nil {
		articles = []types.Article{}
	}
	h.respondJSON(w, http.StatusOK, SearchResponse{Articles: articles})
}
