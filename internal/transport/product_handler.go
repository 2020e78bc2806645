package transport

import (
	"net/http"

	"shopapp/internal/domain"
	"shopapp/internal/middleware"
	"shopapp/internal/repository"
	"shopapp/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LocalizedProductRequest is a name and description in one locale
type LocalizedProductRequest struct {
	Locale      string `json:"locale" validate:"required,max=10"`
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
}

// RefRequest points at an existing entity by id
type RefRequest struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}

// ProductRequest is the create and update payload of a product. Price sign
// and the non empty localized list are checked by the domain.
type ProductRequest struct {
	ID                int64                     `json:"id"`
	Price             *int64                    `json:"price" validate:"required"`
	LocalizedProducts []LocalizedProductRequest `json:"localizedProducts" validate:"dive"`
	Categories        []RefRequest              `json:"categories" validate:"dive"`
	Shop              *RefRequest               `json:"shop"`
}

func (req *ProductRequest) toDomain() *domain.Product {
	product := &domain.Product{
		ID:                req.ID,
		Price:             *req.Price,
		LocalizedProducts: make([]domain.LocalizedProduct, 0, len(req.LocalizedProducts)),
		Categories:        make([]domain.Category, 0, len(req.Categories)),
	}
	for _, lp := range req.LocalizedProducts {
		product.LocalizedProducts = append(product.LocalizedProducts, domain.LocalizedProduct{
			Locale:      lp.Locale,
			Name:        lp.Name,
			Description: lp.Description,
		})
	}
	for _, c := range req.Categories {
		product.Categories = append(product.Categories, domain.Category{ID: c.ID})
	}
	if req.Shop != nil {
		product.Shop = &domain.ShopRef{ID: req.Shop.ID}
	}
	return product
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Put("/", h.Update)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Delete("/{id}", h.Delete)
		r.Get("/{productId}/shop/{shopId}", h.AssignToShop)
	})
}

// Create handles product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	product, err := h.productService.Create(r.Context(), req.toDomain())
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Update handles product update, the id comes from the body
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	product, err := h.productService.Update(r.Context(), req.toDomain())
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Get handles retrieval of a single product
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondBadParam(w, err)
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete handles product removal
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondBadParam(w, err)
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List handles product listing with optional shop and category filters
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r)
	if err != nil {
		respondBadParam(w, err)
		return
	}

	var filter repository.ProductFilter
	if filter.ShopID, err = optionalInt64(r, "shopId"); err != nil {
		respondBadParam(w, err)
		return
	}
	if filter.CategoryID, err = optionalInt64(r, "categoryId"); err != nil {
		respondBadParam(w, err)
		return
	}

	result, err := h.productService.List(r.Context(), filter, page)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// AssignToShop moves a product to a shop
func (h *ProductHandler) AssignToShop(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productId")
	if err != nil {
		respondBadParam(w, err)
		return
	}
	shopID, err := pathID(r, "shopId")
	if err != nil {
		respondBadParam(w, err)
		return
	}

	product, err := h.productService.AssignToShop(r.Context(), productID, shopID)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}
