package transport

import (
	"net/http"

	"shopapp/internal/domain"
	"shopapp/internal/middleware"
	"shopapp/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// OpeningHoursRequest is one interval of a shop payload
type OpeningHoursRequest struct {
	Day     int               `json:"day" validate:"required,min=1,max=7"`
	OpenAt  *domain.ClockTime `json:"openAt" validate:"required"`
	CloseAt *domain.ClockTime `json:"closeAt" validate:"required"`
}

// ShopRequest is the create and update payload of a shop
type ShopRequest struct {
	ID           int64                 `json:"id"`
	Name         string                `json:"name" validate:"required,min=1,max=255"`
	InVacations  *bool                 `json:"inVacations" validate:"required"`
	OpeningHours []OpeningHoursRequest `json:"openingHours" validate:"dive"`
}

func (req *ShopRequest) toDomain() *domain.Shop {
	shop := &domain.Shop{
		ID:           req.ID,
		Name:         req.Name,
		InVacations:  *req.InVacations,
		OpeningHours: make([]domain.OpeningHours, 0, len(req.OpeningHours)),
	}
	for _, h := range req.OpeningHours {
		shop.OpeningHours = append(shop.OpeningHours, domain.OpeningHours{
			Day:     domain.Weekday(h.Day),
			OpenAt:  *h.OpenAt,
			CloseAt: *h.CloseAt,
		})
	}
	return shop
}

// ReindexResponse reports the number of shops written to the index
type ReindexResponse struct {
	Indexed int `json:"indexed"`
}

// ShopHandler handles HTTP requests for shop operations
type ShopHandler struct {
	shopService service.ShopService
	logger      *zap.Logger
}

// NewShopHandler creates a new ShopHandler
func NewShopHandler(shopService service.ShopService, logger *zap.Logger) *ShopHandler {
	return &ShopHandler{
		shopService: shopService,
		logger:      logger,
	}
}

// RegisterRoutes registers all shop routes
func (h *ShopHandler) RegisterRoutes(r chi.Router) {
	r.Route("/shops", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Put("/", h.Update)
		r.Get("/", h.List)
		r.Get("/search", h.Search)
		r.Post("/reindex", h.Reindex)
		r.Get("/{id}", h.Get)
		r.Delete("/{id}", h.Delete)
	})
}

// Create handles shop creation
func (h *ShopHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ShopRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	shop, err := h.shopService.Create(r.Context(), req.toDomain())
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, shop)
}

// Update handles shop update, the id comes from the body
func (h *ShopHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ShopRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	shop, err := h.shopService.Update(r.Context(), req.toDomain())
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, shop)
}

// Get handles retrieval of a single shop
func (h *ShopHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondBadParam(w, err)
		return
	}

	shop, err := h.shopService.Get(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, shop)
}

// Delete handles shop removal
func (h *ShopHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondBadParam(w, err)
		return
	}

	if err := h.shopService.Delete(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List handles the filtered and sorted shop listing
func (h *ShopHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r)
	if err != nil {
		respondBadParam(w, err)
		return
	}

	params := service.ShopListParams{SortBy: optionalString(r, "sortBy")}
	if params.InVacations, err = optionalBool(r, "inVacations"); err != nil {
		respondBadParam(w, err)
		return
	}
	if params.CreatedAfter, err = optionalDate(r, "createdAfter"); err != nil {
		respondBadParam(w, err)
		return
	}
	if params.CreatedBefore, err = optionalDate(r, "createdBefore"); err != nil {
		respondBadParam(w, err)
		return
	}

	result, err := h.shopService.List(r.Context(), params, page)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// Search handles full text shop search
func (h *ShopHandler) Search(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r)
	if err != nil {
		respondBadParam(w, err)
		return
	}

	params := service.ShopSearchParams{Query: r.URL.Query().Get("query")}
	if params.InVacations, err = optionalBool(r, "inVacations"); err != nil {
		respondBadParam(w, err)
		return
	}
	if params.CreatedAfter, err = optionalDate(r, "createdAfter"); err != nil {
		respondBadParam(w, err)
		return
	}
	if params.CreatedBefore, err = optionalDate(r, "createdBefore"); err != nil {
		respondBadParam(w, err)
		return
	}

	result, err := h.shopService.Search(r.Context(), params, page)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// Reindex rebuilds the search index from the database
func (h *ShopHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	n, err := h.shopService.Reindex(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ReindexResponse{Indexed: n})
}
