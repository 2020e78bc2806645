package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"shopapp/internal/database"
	"shopapp/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductFilter narrows a product listing. Both fields are optional.
type ProductFilter struct {
	ShopID     *int64
	CategoryID *int64
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter, page domain.PageRequest) ([]*domain.Product, int64, error)
	SetShop(ctx context.Context, productID int64, shopID *int64) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

func shopIDArg(p *domain.Product) interface{} {
	if p.Shop == nil {
		return nil
	}
	return p.Shop.ID
}

// Create inserts the product row, its localized names and its category links
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (price, shop_id)
		VALUES ($1, $2)
		RETURNING id
	`

	err := database.Conn(ctx, r.db).QueryRowContext(ctx, query, product.Price, shopIDArg(product)).Scan(&product.ID)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return r.writeChildren(ctx, product)
}

// Update overwrites price and shop and replaces localized names and
// category links
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET price = $2, shop_id = $3
		WHERE id = $1
	`

	result, err := database.Conn(ctx, r.db).ExecContext(ctx, query, product.ID, product.Price, shopIDArg(product))
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	// Orphaned localized rows go away with the replacement
	if _, err := database.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM localized_products WHERE product_id = $1`, product.ID); err != nil {
		return fmt.Errorf("failed to clear localized products: %w", err)
	}
	if _, err := database.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM products_categories WHERE product_id = $1`, product.ID); err != nil {
		return fmt.Errorf("failed to clear product categories: %w", err)
	}

	return r.writeChildren(ctx, product)
}

func (r *productRepository) writeChildren(ctx context.Context, product *domain.Product) error {
	localizedQuery := `
		INSERT INTO localized_products (product_id, locale, name, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	for i := range product.LocalizedProducts {
		lp := &product.LocalizedProducts[i]
		err := database.Conn(ctx, r.db).QueryRowContext(ctx, localizedQuery, product.ID, lp.Locale, lp.Name, lp.Description).
			Scan(&lp.ID)
		if err != nil {
			return fmt.Errorf("failed to create localized product: %w", err)
		}
	}

	categoryQuery := `
		INSERT INTO products_categories (product_id, category_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`

	for _, c := range product.Categories {
		if _, err := database.Conn(ctx, r.db).ExecContext(ctx, categoryQuery, product.ID, c.ID); err != nil {
			return fmt.Errorf("failed to link product category: %w", err)
		}
	}

	return nil
}

// Delete removes a product. Localized names and category links cascade.
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	result, err := database.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// SetShop points the product at shopID, nil detaches it
func (r *productRepository) SetShop(ctx context.Context, productID int64, shopID *int64) error {
	var arg interface{}
	if shopID != nil {
		arg = *shopID
	}

	result, err := database.Conn(ctx, r.db).ExecContext(ctx, `UPDATE products SET shop_id = $2 WHERE id = $1`, productID, arg)
	if err != nil {
		return fmt.Errorf("failed to set product shop: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

const productColumns = `p.id, p.price, s.id, s.name`

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	var shopID sql.NullInt64
	var shopName sql.NullString

	if err := row.Scan(&product.ID, &product.Price, &shopID, &shopName); err != nil {
		return nil, err
	}

	if shopID.Valid {
		product.Shop = &domain.ShopRef{ID: shopID.Int64, Name: shopName.String}
	}
	product.LocalizedProducts = []domain.LocalizedProduct{}
	product.Categories = []domain.Category{}
	return product, nil
}

// FindByID retrieves a product with its localized names and categories
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN shops s ON s.id = p.shop_id
		WHERE p.id = $1
	`

	product, err := scanProduct(database.Conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	if err := r.hydrate(ctx, []*domain.Product{product}); err != nil {
		return nil, err
	}
	return product, nil
}

// List retrieves products with optional shop and category filtering and
// pagination, ordered by id
func (r *productRepository) List(ctx context.Context, filter ProductFilter, page domain.PageRequest) ([]*domain.Product, int64, error) {
	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if filter.ShopID != nil {
		conditions = append(conditions, fmt.Sprintf("p.shop_id = $%d", argIndex))
		args = append(args, *filter.ShopID)
		argIndex++
	}
	if filter.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM products_categories pc WHERE pc.product_id = p.id AND pc.category_id = $%d)", argIndex))
		args = append(args, *filter.CategoryID)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Count total products
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products p %s", whereClause)
	var total int64
	if err := database.Conn(ctx, r.db).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		LEFT JOIN shops s ON s.id = p.shop_id
		%s
		ORDER BY p.id ASC
		LIMIT $%d OFFSET $%d
	`, productColumns, whereClause, argIndex, argIndex+1)

	args = append(args, page.Size, page.Offset())

	rows, err := database.Conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	if err := r.hydrate(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// hydrate loads localized names and categories for all products in two
// queries
func (r *productRepository) hydrate(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Product, len(products))
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	rows, err := database.Conn(ctx, r.db).QueryContext(ctx, `
		SELECT product_id, id, locale, name, description
		FROM localized_products
		WHERE product_id = ANY($1)
		ORDER BY id ASC
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to load localized products: %w", err)
	}
	for rows.Next() {
		var productID int64
		var lp domain.LocalizedProduct
		if err := rows.Scan(&productID, &lp.ID, &lp.Locale, &lp.Name, &lp.Description); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan localized product: %w", err)
		}
		byID[productID].LocalizedProducts = append(byID[productID].LocalizedProducts, lp)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("error iterating localized products: %w", err)
	}
	rows.Close()

	rows, err = database.Conn(ctx, r.db).QueryContext(ctx, `
		SELECT pc.product_id, c.id, c.name
		FROM products_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.product_id = ANY($1)
		ORDER BY c.id ASC
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to load product categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var productID int64
		var c domain.Category
		if err := rows.Scan(&productID, &c.ID, &c.Name); err != nil {
			return fmt.Errorf("failed to scan product category: %w", err)
		}
		byID[productID].Categories = append(byID[productID].Categories, c)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating product categories: %w", err)
	}

	return nil
}
