package service

import (
	"context"
	"errors"
	"time"

	"shopapp/internal/database"
	"shopapp/internal/domain"
	"shopapp/internal/metrics"
	"shopapp/internal/repository"
	"shopapp/internal/search"

	"go.uber.org/zap"
)

// ShopIndex is the search index as seen by the shop service
type ShopIndex interface {
	Put(shop *domain.Shop) error
	Remove(id int64) error
	Rebuild(ctx context.Context, shops []*domain.Shop) (int, error)
	Search(ctx context.Context, criteria search.Criteria, page domain.PageRequest) (*search.Result, error)
}

// ShopSearchParams are the optional inputs of a full text search
type ShopSearchParams struct {
	Query         string
	InVacations   *bool
	CreatedAfter  *domain.Date
	CreatedBefore *domain.Date
}

// ShopService defines the interface for shop business logic
type ShopService interface {
	Create(ctx context.Context, shop *domain.Shop) (*domain.Shop, error)
	Update(ctx context.Context, shop *domain.Shop) (*domain.Shop, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Shop, error)
	List(ctx context.Context, params ShopListParams, page domain.PageRequest) (*domain.Page[domain.Shop], error)
	Search(ctx context.Context, params ShopSearchParams, page domain.PageRequest) (*domain.Page[domain.Shop], error)
	Reindex(ctx context.Context) (int, error)
}

type shopService struct {
	tx       database.TxManager
	shopRepo repository.ShopRepository
	index    ShopIndex
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewShopService creates a new instance of ShopService
func NewShopService(
	tx database.TxManager,
	shopRepo repository.ShopRepository,
	index ShopIndex,
	m *metrics.Metrics,
	logger *zap.Logger,
) ShopService {
	return &shopService{
		tx:       tx,
		shopRepo: shopRepo,
		index:    index,
		metrics:  m,
		logger:   logger,
	}
}

func shopNotFound(id int64, err error) error {
	if errors.Is(err, repository.ErrShopNotFound) {
		return &domain.NotFoundError{Entity: "Shop", ID: id}
	}
	return err
}

// Create validates the opening hours, stores the shop and returns it as
// re-read from the store
func (s *shopService) Create(ctx context.Context, shop *domain.Shop) (*domain.Shop, error) {
	if err := shop.Validate(); err != nil {
		return nil, err
	}
	if err := domain.ValidateOpeningHours(shop.OpeningHours); err != nil {
		return nil, err
	}

	var created *domain.Shop
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.shopRepo.Create(ctx, shop); err != nil {
			return err
		}
		var err error
		created, err = s.shopRepo.FindByID(ctx, shop.ID)
		return err
	})
	if err != nil {
		return nil, domain.Wrap("create shop", err)
	}

	s.syncIndex("put", func() error { return s.index.Put(created) })
	return created, nil
}

// Update overwrites an existing shop after the same checks as Create
func (s *shopService) Update(ctx context.Context, shop *domain.Shop) (*domain.Shop, error) {
	var updated *domain.Shop
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.shopRepo.FindByID(ctx, shop.ID); err != nil {
			return shopNotFound(shop.ID, err)
		}
		if err := shop.Validate(); err != nil {
			return err
		}
		if err := domain.ValidateOpeningHours(shop.OpeningHours); err != nil {
			return err
		}
		if err := s.shopRepo.Update(ctx, shop); err != nil {
			return shopNotFound(shop.ID, err)
		}
		var err error
		updated, err = s.shopRepo.FindByID(ctx, shop.ID)
		return err
	})
	if err != nil {
		return nil, domain.Wrap("update shop", err)
	}

	s.syncIndex("put", func() error { return s.index.Put(updated) })
	return updated, nil
}

// Delete detaches the products of the shop, then removes it together with
// its opening hours
func (s *shopService) Delete(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.shopRepo.FindByID(ctx, id); err != nil {
			return shopNotFound(id, err)
		}
		detached, err := s.shopRepo.DetachProducts(ctx, id)
		if err != nil {
			return err
		}
		s.logger.Debug("Detached products from shop", zap.Int64("shop_id", id), zap.Int64("products", detached))
		return shopNotFound(id, s.shopRepo.Delete(ctx, id))
	})
	if err != nil {
		return domain.Wrap("delete shop", err)
	}

	s.syncIndex("remove", func() error { return s.index.Remove(id) })
	return nil
}

// Get retrieves one shop
func (s *shopService) Get(ctx context.Context, id int64) (*domain.Shop, error) {
	var shop *domain.Shop
	err := s.tx.WithinReadOnlyTx(ctx, func(ctx context.Context) error {
		var err error
		shop, err = s.shopRepo.FindByID(ctx, id)
		return shopNotFound(id, err)
	})
	if err != nil {
		return nil, domain.Wrap("get shop", err)
	}
	return shop, nil
}

// List runs the single query selected by the rule table, then refreshes
// each shop of the page from the store
func (s *shopService) List(ctx context.Context, params ShopListParams, page domain.PageRequest) (*domain.Page[domain.Shop], error) {
	rule, query := resolveShopQuery(params)
	s.logger.Debug("Resolved shop query", zap.String("rule", rule), zap.String("order_by", string(query.OrderBy)))

	var result *domain.Page[domain.Shop]
	err := s.tx.WithinReadOnlyTx(ctx, func(ctx context.Context) error {
		shops, total, err := s.shopRepo.Find(ctx, query, page)
		if err != nil {
			return err
		}

		content := make([]domain.Shop, 0, len(shops))
		for _, shop := range shops {
			if err := s.shopRepo.Refresh(ctx, shop); err != nil {
				return err
			}
			content = append(content, *shop)
		}

		result = domain.NewPage(content, page, total)
		return nil
	})
	if err != nil {
		return nil, domain.Wrap("list shops", err)
	}
	return result, nil
}

// Search queries the index, then loads the hits from the store in hit
// order. Hits the store no longer knows are dropped.
func (s *shopService) Search(ctx context.Context, params ShopSearchParams, page domain.PageRequest) (*domain.Page[domain.Shop], error) {
	criteria := search.Criteria{
		Query:         params.Query,
		InVacations:   params.InVacations,
		CreatedAfter:  dayOf(params.CreatedAfter),
		CreatedBefore: dayOf(params.CreatedBefore),
	}

	kind := "criteria"
	if criteria.IsEmpty() {
		kind = "match_all"
	}
	s.metrics.SearchQueriesTotal.WithLabelValues(kind).Inc()

	hits, err := s.index.Search(ctx, criteria, page)
	if err != nil {
		return nil, domain.Wrap("search shops", err)
	}

	var result *domain.Page[domain.Shop]
	err = s.tx.WithinReadOnlyTx(ctx, func(ctx context.Context) error {
		shops, err := s.shopRepo.FindByIDs(ctx, hits.IDs)
		if err != nil {
			return err
		}

		byID := make(map[int64]*domain.Shop, len(shops))
		for _, shop := range shops {
			byID[shop.ID] = shop
		}

		content := make([]domain.Shop, 0, len(hits.IDs))
		for _, id := range hits.IDs {
			if shop, ok := byID[id]; ok {
				content = append(content, *shop)
			}
		}

		result = domain.NewPage(content, page, hits.Total)
		return nil
	})
	if err != nil {
		return nil, domain.Wrap("search shops", err)
	}
	return result, nil
}

// Reindex rebuilds the search index from the relational store
func (s *shopService) Reindex(ctx context.Context) (int, error) {
	start := time.Now()

	var shops []*domain.Shop
	err := s.tx.WithinReadOnlyTx(ctx, func(ctx context.Context) error {
		var err error
		shops, err = s.shopRepo.ListAll(ctx)
		return err
	})
	if err != nil {
		return 0, domain.Wrap("reindex shops", err)
	}

	n, err := s.index.Rebuild(ctx, shops)
	if err != nil {
		return 0, domain.Wrap("reindex shops", err)
	}

	s.metrics.IndexRebuildDuration.Observe(time.Since(start).Seconds())
	s.metrics.IndexDocuments.Set(float64(n))
	s.logger.Info("Search index rebuilt", zap.Int("shops", n), zap.Duration("duration", time.Since(start)))
	return n, nil
}

// syncIndex applies a post-commit index update. Failures leave the index
// stale until the next rebuild and never fail the request.
func (s *shopService) syncIndex(operation string, fn func() error) {
	if err := fn(); err != nil {
		s.metrics.IndexSyncFailures.WithLabelValues(operation).Inc()
		s.logger.Warn("Search index update failed", zap.String("operation", operation), zap.Error(err))
	}
}
