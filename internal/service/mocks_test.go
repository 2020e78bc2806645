package service

import (
	"context"
	"errors"
	"sort"

	"shopapp/internal/domain"
	"shopapp/internal/repository"
	"shopapp/internal/search"
)

// mockTxManager runs fn directly and counts the transactions it was asked for
type mockTxManager struct {
	writes int
	reads  int
}

func (m *mockTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.writes++
	return fn(ctx)
}

func (m *mockTxManager) WithinReadOnlyTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.reads++
	return fn(ctx)
}

type mockShopRepository struct {
	shops    map[int64]*domain.Shop
	products map[int64]int64 // product id -> shop id
	nextID   int64

	lastQuery  *repository.ShopQuery
	refreshed  []int64
	detached   []int64
	creates    int
	findResult []*domain.Shop
}

func newMockShopRepository() *mockShopRepository {
	return &mockShopRepository{
		shops:    make(map[int64]*domain.Shop),
		products: make(map[int64]int64),
	}
}

func copyShop(s *domain.Shop) *domain.Shop {
	c := *s
	c.OpeningHours = append([]domain.OpeningHours{}, s.OpeningHours...)
	return &c
}

func (m *mockShopRepository) add(shop *domain.Shop) *domain.Shop {
	m.nextID++
	shop.ID = m.nextID
	m.shops[shop.ID] = copyShop(shop)
	return shop
}

func (m *mockShopRepository) Create(ctx context.Context, shop *domain.Shop) error {
	m.creates++
	shop.CreatedAt = domain.NewDate(2024, 1, 15)
	m.add(shop)
	return nil
}

func (m *mockShopRepository) Update(ctx context.Context, shop *domain.Shop) error {
	existing, ok := m.shops[shop.ID]
	if !ok {
		return repository.ErrShopNotFound
	}
	shop.CreatedAt = existing.CreatedAt
	m.shops[shop.ID] = copyShop(shop)
	return nil
}

func (m *mockShopRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.shops[id]; !ok {
		return repository.ErrShopNotFound
	}
	delete(m.shops, id)
	return nil
}

func (m *mockShopRepository) FindByID(ctx context.Context, id int64) (*domain.Shop, error) {
	shop, ok := m.shops[id]
	if !ok {
		return nil, repository.ErrShopNotFound
	}
	c := copyShop(shop)
	for _, sid := range m.products {
		if sid == id {
			c.NbProducts++
		}
	}
	return c, nil
}

func (m *mockShopRepository) FindByIDs(ctx context.Context, ids []int64) ([]*domain.Shop, error) {
	out := []*domain.Shop{}
	for _, id := range ids {
		if shop, err := m.FindByID(ctx, id); err == nil {
			out = append(out, shop)
		}
	}
	// the store gives no ordering guarantee
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *mockShopRepository) Find(ctx context.Context, q repository.ShopQuery, page domain.PageRequest) ([]*domain.Shop, int64, error) {
	m.lastQuery = &q
	if m.findResult != nil {
		return m.findResult, int64(len(m.findResult)), nil
	}
	all, _ := m.ListAll(ctx)
	return all, int64(len(all)), nil
}

func (m *mockShopRepository) Refresh(ctx context.Context, shop *domain.Shop) error {
	m.refreshed = append(m.refreshed, shop.ID)
	fresh, err := m.FindByID(ctx, shop.ID)
	if err != nil {
		return err
	}
	*shop = *fresh
	return nil
}

func (m *mockShopRepository) DetachProducts(ctx context.Context, shopID int64) (int64, error) {
	m.detached = append(m.detached, shopID)
	var n int64
	for pid, sid := range m.products {
		if sid == shopID {
			delete(m.products, pid)
			n++
		}
	}
	return n, nil
}

func (m *mockShopRepository) ListAll(ctx context.Context) ([]*domain.Shop, error) {
	out := []*domain.Shop{}
	for id := range m.shops {
		shop, _ := m.FindByID(ctx, id)
		out = append(out, shop)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type mockShopIndex struct {
	docs    map[int64]*domain.Shop
	hits    *search.Result
	failing bool

	lastCriteria *search.Criteria
	rebuilt      int
}

func newMockShopIndex() *mockShopIndex {
	return &mockShopIndex{docs: make(map[int64]*domain.Shop)}
}

var errIndexDown = errors.New("index unavailable")

func (m *mockShopIndex) Put(shop *domain.Shop) error {
	if m.failing {
		return errIndexDown
	}
	m.docs[shop.ID] = shop
	return nil
}

func (m *mockShopIndex) Remove(id int64) error {
	if m.failing {
		return errIndexDown
	}
	delete(m.docs, id)
	return nil
}

func (m *mockShopIndex) Rebuild(ctx context.Context, shops []*domain.Shop) (int, error) {
	m.rebuilt++
	m.docs = make(map[int64]*domain.Shop, len(shops))
	for _, s := range shops {
		m.docs[s.ID] = s
	}
	return len(shops), nil
}

func (m *mockShopIndex) Search(ctx context.Context, c search.Criteria, page domain.PageRequest) (*search.Result, error) {
	m.lastCriteria = &c
	if m.failing {
		return nil, errIndexDown
	}
	if m.hits != nil {
		return m.hits, nil
	}
	return &search.Result{IDs: []int64{}}, nil
}

type mockProductRepository struct {
	products map[int64]*domain.Product
	nextID   int64
	shops    *mockShopRepository
}

func newMockProductRepository(shops *mockShopRepository) *mockProductRepository {
	return &mockProductRepository{products: make(map[int64]*domain.Product), shops: shops}
}

func (m *mockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	m.nextID++
	p.ID = m.nextID
	c := *p
	m.products[p.ID] = &c
	if p.Shop != nil {
		m.shops.products[p.ID] = p.Shop.ID
	}
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, p *domain.Product) error {
	if _, ok := m.products[p.ID]; !ok {
		return repository.ErrProductNotFound
	}
	c := *p
	m.products[p.ID] = &c
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	delete(m.shops.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	c := *p
	return &c, nil
}

func (m *mockProductRepository) List(ctx context.Context, f repository.ProductFilter, page domain.PageRequest) ([]*domain.Product, int64, error) {
	out := []*domain.Product{}
	for _, p := range m.products {
		if f.ShopID != nil && (p.Shop == nil || p.Shop.ID != *f.ShopID) {
			continue
		}
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (m *mockProductRepository) SetShop(ctx context.Context, productID int64, shopID *int64) error {
	p, ok := m.products[productID]
	if !ok {
		return repository.ErrProductNotFound
	}
	if shopID == nil {
		p.Shop = nil
		delete(m.shops.products, productID)
		return nil
	}
	p.Shop = &domain.ShopRef{ID: *shopID, Name: m.shops.shops[*shopID].Name}
	m.shops.products[productID] = *shopID
	return nil
}

type mockCategoryRepository struct {
	categories map[int64]*domain.Category
	nextID     int64
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{categories: make(map[int64]*domain.Category)}
}

func (m *mockCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	m.nextID++
	c.ID = m.nextID
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	if _, ok := m.categories[c.ID]; !ok {
		return repository.ErrCategoryNotFound
	}
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context, page domain.PageRequest) ([]*domain.Category, int64, error) {
	out := []*domain.Category{}
	for _, c := range m.categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCategoryRepository) FindByIDs(ctx context.Context, ids []int64) ([]*domain.Category, error) {
	out := []*domain.Category{}
	for _, id := range ids {
		if c, ok := m.categories[id]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}
