package transport

import (
	"context"
	"net/http"

	"shopapp/internal/domain"
	"shopapp/internal/repository"
	"shopapp/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type mockShopService struct {
	err error

	created      *domain.Shop
	listParams   *service.ShopListParams
	searchParams *service.ShopSearchParams
	page         domain.PageRequest
	deleted      []int64
	reindexed    int
}

func (m *mockShopService) Create(ctx context.Context, shop *domain.Shop) (*domain.Shop, error) {
	if m.err != nil {
		return nil, m.err
	}
	shop.ID = 1
	shop.CreatedAt = domain.NewDate(2024, 3, 1)
	m.created = shop
	return shop, nil
}

func (m *mockShopService) Update(ctx context.Context, shop *domain.Shop) (*domain.Shop, error) {
	if m.err != nil {
		return nil, m.err
	}
	return shop, nil
}

func (m *mockShopService) Delete(ctx context.Context, id int64) error {
	m.deleted = append(m.deleted, id)
	return m.err
}

func (m *mockShopService) Get(ctx context.Context, id int64) (*domain.Shop, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Shop{ID: id, Name: "Cafe", OpeningHours: []domain.OpeningHours{}}, nil
}

func (m *mockShopService) List(ctx context.Context, params service.ShopListParams, page domain.PageRequest) (*domain.Page[domain.Shop], error) {
	m.listParams = &params
	m.page = page
	if m.err != nil {
		return nil, m.err
	}
	return domain.NewPage([]domain.Shop{{ID: 1, Name: "Cafe"}}, page, 1), nil
}

func (m *mockShopService) Search(ctx context.Context, params service.ShopSearchParams, page domain.PageRequest) (*domain.Page[domain.Shop], error) {
	m.searchParams = &params
	m.page = page
	if m.err != nil {
		return nil, m.err
	}
	return domain.NewPage([]domain.Shop{}, page, 0), nil
}

func (m *mockShopService) Reindex(ctx context.Context) (int, error) {
	m.reindexed++
	return 3, m.err
}

type mockProductService struct {
	err error

	created  *domain.Product
	filter   repository.ProductFilter
	assigned [2]int64
}

func (m *mockProductService) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	p.ID = 1
	m.created = p
	return p, nil
}

func (m *mockProductService) Update(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	return p, m.err
}

func (m *mockProductService) Delete(ctx context.Context, id int64) error { return m.err }

func (m *mockProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Product{ID: id}, nil
}

func (m *mockProductService) List(ctx context.Context, f repository.ProductFilter, page domain.PageRequest) (*domain.Page[domain.Product], error) {
	m.filter = f
	return domain.NewPage([]domain.Product{}, page, 0), m.err
}

func (m *mockProductService) AssignToShop(ctx context.Context, productID, shopID int64) (*domain.Product, error) {
	m.assigned = [2]int64{productID, shopID}
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Product{ID: productID, Shop: &domain.ShopRef{ID: shopID}}, nil
}

type mockCategoryService struct {
	err error
}

func (m *mockCategoryService) Create(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	c.ID = 1
	return c, m.err
}

func (m *mockCategoryService) Update(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	return c, m.err
}

func (m *mockCategoryService) Delete(ctx context.Context, id int64) error { return m.err }

func (m *mockCategoryService) Get(ctx context.Context, id int64) (*domain.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Category{ID: id, Name: "Drinks"}, nil
}

func (m *mockCategoryService) List(ctx context.Context, page domain.PageRequest) (*domain.Page[domain.Category], error) {
	return domain.NewPage([]domain.Category{}, page, 0), m.err
}

func newTestRouter(shops service.ShopService, products service.ProductService, categories service.CategoryService) http.Handler {
	logger := zap.NewNop()
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		NewShopHandler(shops, logger).RegisterRoutes(r)
		NewProductHandler(products, logger).RegisterRoutes(r)
		NewCategoryHandler(categories, logger).RegisterRoutes(r)
	})
	return r
}
