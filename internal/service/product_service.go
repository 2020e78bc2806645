package service

import (
	"context"
	"errors"

	"shopapp/internal/database"
	"shopapp/internal/domain"
	"shopapp/internal/repository"
)

// ProductService defines the interface for product business logic
type ProductService interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, filter repository.ProductFilter, page domain.PageRequest) (*domain.Page[domain.Product], error)
	AssignToShop(ctx context.Context, productID, shopID int64) (*domain.Product, error)
}

type productService struct {
	tx           database.TxManager
	productRepo  repository.ProductRepository
	shopRepo     repository.ShopRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	tx database.TxManager,
	productRepo repository.ProductRepository,
	shopRepo repository.ShopRepository,
	categoryRepo repository.CategoryRepository,
) ProductService {
	return &productService{
		tx:           tx,
		productRepo:  productRepo,
		shopRepo:     shopRepo,
		categoryRepo: categoryRepo,
	}
}

func productNotFound(id int64, err error) error {
	if errors.Is(err, repository.ErrProductNotFound) {
		return &domain.NotFoundError{Entity: "Product", ID: id}
	}
	return err
}

// Create stores a product with its localized names and category links
func (s *productService) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := product.Validate(); err != nil {
		return nil, err
	}

	var created *domain.Product
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checkReferences(ctx, product); err != nil {
			return err
		}
		if err := s.productRepo.Create(ctx, product); err != nil {
			return err
		}
		var err error
		created, err = s.productRepo.FindByID(ctx, product.ID)
		return err
	})
	if err != nil {
		return nil, domain.Wrap("create product", err)
	}
	return created, nil
}

// Update overwrites an existing product after the same checks as Create
func (s *productService) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	var updated *domain.Product
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.productRepo.FindByID(ctx, product.ID); err != nil {
			return productNotFound(product.ID, err)
		}
		if err := product.Validate(); err != nil {
			return err
		}
		if err := s.checkReferences(ctx, product); err != nil {
			return err
		}
		if err := s.productRepo.Update(ctx, product); err != nil {
			return productNotFound(product.ID, err)
		}
		var err error
		updated, err = s.productRepo.FindByID(ctx, product.ID)
		return err
	})
	if err != nil {
		return nil, domain.Wrap("update product", err)
	}
	return updated, nil
}

// checkReferences makes sure the shop and every category exist
func (s *productService) checkReferences(ctx context.Context, product *domain.Product) error {
	if product.Shop != nil {
		if _, err := s.shopRepo.FindByID(ctx, product.Shop.ID); err != nil {
			return shopNotFound(product.Shop.ID, err)
		}
	}

	ids := product.CategoryIDs()
	found, err := s.categoryRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(found) == len(ids) {
		return nil
	}

	known := make(map[int64]bool, len(found))
	for _, c := range found {
		known[c.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return &domain.NotFoundError{Entity: "Category", ID: id}
		}
	}
	return nil
}

// Delete removes a product
func (s *productService) Delete(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return productNotFound(id, s.productRepo.Delete(ctx, id))
	})
	return domain.Wrap("delete product", err)
}

// Get retrieves one product
func (s *productService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	var product *domain.Product
	err := s.tx.WithinReadOnlyTx(ctx, func(ctx context.Context) error {
		var err error
		product, err = s.productRepo.FindByID(ctx, id)
		return productNotFound(id, err)
	})
	if err != nil {
		return nil, domain.Wrap("get product", err)
	}
	return product, nil
}

// List retrieves products, optionally restricted to a shop and a category
func (s *productService) List(ctx context.Context, filter repository.ProductFilter, page domain.PageRequest) (*domain.Page[domain.Product], error) {
	var result *domain.Page[domain.Product]
	err := s.tx.WithinReadOnlyTx(ctx, func(ctx context.Context) error {
		products, total, err := s.productRepo.List(ctx, filter, page)
		if err != nil {
			return err
		}
		content := make([]domain.Product, 0, len(products))
		for _, p := range products {
			content = append(content, *p)
		}
		result = domain.NewPage(content, page, total)
		return nil
	})
	if err != nil {
		return nil, domain.Wrap("list products", err)
	}
	return result, nil
}

// AssignToShop moves a product to a shop
func (s *productService) AssignToShop(ctx context.Context, productID, shopID int64) (*domain.Product, error) {
	var product *domain.Product
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
			return productNotFound(productID, err)
		}
		if _, err := s.shopRepo.FindByID(ctx, shopID); err != nil {
			return shopNotFound(shopID, err)
		}
		if err := s.productRepo.SetShop(ctx, productID, &shopID); err != nil {
			return productNotFound(productID, err)
		}
		var err error
		product, err = s.productRepo.FindByID(ctx, productID)
		return err
	})
	if err != nil {
		return nil, domain.Wrap("assign product to shop", err)
	}
	return product, nil
}
