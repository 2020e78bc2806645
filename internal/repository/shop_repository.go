package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"shopapp/internal/database"
	"shopapp/internal/domain"
)

var (
	ErrShopNotFound = errors.New("shop not found")
)

// ShopOrder is a whitelisted ordering key for shop listings
type ShopOrder string

const (
	ShopOrderID         ShopOrder = "id"
	ShopOrderName       ShopOrder = "name"
	ShopOrderCreatedAt  ShopOrder = "createdAt"
	ShopOrderNbProducts ShopOrder = "nbProducts"
)

var shopOrderColumns = map[ShopOrder]string{
	ShopOrderID:         "s.id",
	ShopOrderName:       "s.name",
	ShopOrderCreatedAt:  "s.created_at",
	ShopOrderNbProducts: "nb_products",
}

// ShopQuery selects shops. Nil fields are not filtered on; date bounds
// are strict.
type ShopQuery struct {
	InVacations   *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	OrderBy       ShopOrder
}

// ShopRepository defines the interface for shop data access
type ShopRepository interface {
	Create(ctx context.Context, shop *domain.Shop) error
	Update(ctx context.Context, shop *domain.Shop) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Shop, error)
	FindByIDs(ctx context.Context, ids []int64) ([]*domain.Shop, error)
	Find(ctx context.Context, query ShopQuery, page domain.PageRequest) ([]*domain.Shop, int64, error)
	Refresh(ctx context.Context, shop *domain.Shop) error
	DetachProducts(ctx context.Context, shopID int64) (int64, error)
	ListAll(ctx context.Context) ([]*domain.Shop, error)
}

type shopRepository struct {
	db *sql.DB
}

// NewShopRepository creates a new instance of ShopRepository
func NewShopRepository(db *sql.DB) ShopRepository {
	return &shopRepository{db: db}
}

// shopColumns computes the derived counts on every read
const shopColumns = `
	s.id, s.name, s.created_at, s.in_vacations,
	(SELECT COUNT(*) FROM products p WHERE p.shop_id = s.id) AS nb_products,
	(SELECT COUNT(DISTINCT pc.category_id)
	   FROM products p
	   JOIN products_categories pc ON pc.product_id = p.id
	  WHERE p.shop_id = s.id) AS nb_categories
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanShop(row rowScanner) (*domain.Shop, error) {
	shop := &domain.Shop{}
	err := row.Scan(
		&shop.ID,
		&shop.Name,
		&shop.CreatedAt.Time,
		&shop.InVacations,
		&shop.NbProducts,
		&shop.NbCategories,
	)
	if err != nil {
		return nil, err
	}
	shop.OpeningHours = []domain.OpeningHours{}
	return shop, nil
}

// Create inserts the shop row and its opening hours. The store assigns id
// and creation date.
func (r *shopRepository) Create(ctx context.Context, shop *domain.Shop) error {
	query := `
		INSERT INTO shops (name, in_vacations)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := database.Conn(ctx, r.db).QueryRowContext(ctx, query, shop.Name, shop.InVacations).
		Scan(&shop.ID, &shop.CreatedAt.Time)
	if err != nil {
		return fmt.Errorf("failed to create shop: %w", err)
	}

	return r.insertOpeningHours(ctx, shop)
}

// Update overwrites name and vacation flag and replaces the opening hours.
// The creation date is never touched.
func (r *shopRepository) Update(ctx context.Context, shop *domain.Shop) error {
	query := `
		UPDATE shops
		SET name = $2, in_vacations = $3
		WHERE id = $1
		RETURNING created_at
	`

	err := database.Conn(ctx, r.db).QueryRowContext(ctx, query, shop.ID, shop.Name, shop.InVacations).
		Scan(&shop.CreatedAt.Time)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrShopNotFound
		}
		return fmt.Errorf("failed to update shop: %w", err)
	}

	if _, err := database.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM opening_hours WHERE shop_id = $1`, shop.ID); err != nil {
		return fmt.Errorf("failed to clear opening hours: %w", err)
	}

	return r.insertOpeningHours(ctx, shop)
}

func (r *shopRepository) insertOpeningHours(ctx context.Context, shop *domain.Shop) error {
	query := `
		INSERT INTO opening_hours (shop_id, position, day, open_at, close_at)
		VALUES ($1, $2, $3, $4::time, $5::time)
		RETURNING id
	`

	for i := range shop.OpeningHours {
		h := &shop.OpeningHours[i]
		err := database.Conn(ctx, r.db).QueryRowContext(ctx, query, shop.ID, i, int(h.Day), h.OpenAt, h.CloseAt).
			Scan(&h.ID)
		if err != nil {
			return fmt.Errorf("failed to create opening hours: %w", err)
		}
	}

	if shop.OpeningHours == nil {
		shop.OpeningHours = []domain.OpeningHours{}
	}
	return nil
}

// Delete removes the shop row. Opening hours are removed by the foreign key
// cascade.
func (r *shopRepository) Delete(ctx context.Context, id int64) error {
	result, err := database.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM shops WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shop: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrShopNotFound
	}

	return nil
}

// DetachProducts nulls the shop reference of every product of the shop
func (r *shopRepository) DetachProducts(ctx context.Context, shopID int64) (int64, error) {
	result, err := database.Conn(ctx, r.db).ExecContext(ctx, `UPDATE products SET shop_id = NULL WHERE shop_id = $1`, shopID)
	if err != nil {
		return 0, fmt.Errorf("failed to detach products: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// FindByID retrieves a shop with its derived counts and opening hours
func (r *shopRepository) FindByID(ctx context.Context, id int64) (*domain.Shop, error) {
	query := `SELECT ` + shopColumns + ` FROM shops s WHERE s.id = $1`

	shop, err := scanShop(database.Conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShopNotFound
		}
		return nil, fmt.Errorf("failed to find shop by ID: %w", err)
	}

	if err := r.loadOpeningHours(ctx, shop); err != nil {
		return nil, err
	}
	return shop, nil
}

// FindByIDs retrieves the shops that still exist among ids, hydrated, in
// no particular order
func (r *shopRepository) FindByIDs(ctx context.Context, ids []int64) ([]*domain.Shop, error) {
	if len(ids) == 0 {
		return []*domain.Shop{}, nil
	}

	query := `SELECT ` + shopColumns + ` FROM shops s WHERE s.id = ANY($1)`

	shops, err := r.queryShops(ctx, query, ids)
	if err != nil {
		return nil, err
	}

	for _, shop := range shops {
		if err := r.loadOpeningHours(ctx, shop); err != nil {
			return nil, err
		}
	}
	return shops, nil
}

// Refresh re-reads the row, derived counts and opening hours of shop in place
func (r *shopRepository) Refresh(ctx context.Context, shop *domain.Shop) error {
	fresh, err := r.FindByID(ctx, shop.ID)
	if err != nil {
		return err
	}
	*shop = *fresh
	return nil
}

// Find retrieves one page of shops matching query. Opening hours are not
// loaded.
func (r *shopRepository) Find(ctx context.Context, q ShopQuery, page domain.PageRequest) ([]*domain.Shop, int64, error) {
	orderColumn, ok := shopOrderColumns[q.OrderBy]
	if !ok {
		orderColumn = shopOrderColumns[ShopOrderID]
	}

	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if q.InVacations != nil {
		conditions = append(conditions, fmt.Sprintf("s.in_vacations = $%d", argIndex))
		args = append(args, *q.InVacations)
		argIndex++
	}
	if q.CreatedAfter != nil {
		conditions = append(conditions, fmt.Sprintf("s.created_at > $%d::date", argIndex))
		args = append(args, *q.CreatedAfter)
		argIndex++
	}
	if q.CreatedBefore != nil {
		conditions = append(conditions, fmt.Sprintf("s.created_at < $%d::date", argIndex))
		args = append(args, *q.CreatedBefore)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Count total shops
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM shops s %s", whereClause)
	var total int64
	if err := database.Conn(ctx, r.db).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count shops: %w", err)
	}

	tieBreak := ""
	if orderColumn != shopOrderColumns[ShopOrderID] {
		tieBreak = ", s.id ASC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM shops s
		%s
		ORDER BY %s ASC%s
		LIMIT $%d OFFSET $%d
	`, shopColumns, whereClause, orderColumn, tieBreak, argIndex, argIndex+1)

	args = append(args, page.Size, page.Offset())

	shops, err := r.queryShops(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return shops, total, nil
}

// ListAll retrieves every shop without opening hours
func (r *shopRepository) ListAll(ctx context.Context) ([]*domain.Shop, error) {
	return r.queryShops(ctx, `SELECT `+shopColumns+` FROM shops s ORDER BY s.id ASC`)
}

func (r *shopRepository) queryShops(ctx context.Context, query string, args ...interface{}) ([]*domain.Shop, error) {
	rows, err := database.Conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}
	defer rows.Close()

	shops := []*domain.Shop{}
	for rows.Next() {
		shop, err := scanShop(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shop: %w", err)
		}
		shops = append(shops, shop)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shops: %w", err)
	}

	return shops, nil
}

func (r *shopRepository) loadOpeningHours(ctx context.Context, shop *domain.Shop) error {
	query := `
		SELECT id, day, open_at::text, close_at::text
		FROM opening_hours
		WHERE shop_id = $1
		ORDER BY position ASC, id ASC
	`

	rows, err := database.Conn(ctx, r.db).QueryContext(ctx, query, shop.ID)
	if err != nil {
		return fmt.Errorf("failed to load opening hours: %w", err)
	}
	defer rows.Close()

	hours := []domain.OpeningHours{}
	for rows.Next() {
		var h domain.OpeningHours
		var day int
		if err := rows.Scan(&h.ID, &day, &h.OpenAt, &h.CloseAt); err != nil {
			return fmt.Errorf("failed to scan opening hours: %w", err)
		}
		h.Day = domain.Weekday(day)
		hours = append(hours, h)
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating opening hours: %w", err)
	}

	shop.OpeningHours = hours
	return nil
}
