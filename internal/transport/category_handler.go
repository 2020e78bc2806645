package transport

import (
	"net/http"

	"shopapp/internal/domain"
	"shopapp/internal/middleware"
	"shopapp/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CategoryRequest is the create and update payload of a category
type CategoryRequest struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// CategoryHandler handles HTTP requests for category operations
type CategoryHandler struct {
	categoryService service.CategoryService
	logger          *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, logger: logger}
}

// RegisterRoutes registers all category routes
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Put("/", h.Update)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	category, err := h.categoryService.Create(r.Context(), &domain.Category{Name: req.Name})
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	category, err := h.categoryService.Update(r.Context(), &domain.Category{ID: req.ID, Name: req.Name})
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondBadParam(w, err)
		return
	}

	category, err := h.categoryService.Get(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondBadParam(w, err)
		return
	}

	if err := h.categoryService.Delete(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r)
	if err != nil {
		respondBadParam(w, err)
		return
	}

	result, err := h.categoryService.List(r.Context(), page)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}
