package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shopapp/internal/database"
	"shopapp/internal/domain"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page domain.PageRequest) ([]*domain.Category, int64, error)
	FindByID(ctx context.Context, id int64) (*domain.Category, error)
	FindByIDs(ctx context.Context, ids []int64) ([]*domain.Category, error)
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create inserts a new category into the database using parameterized queries
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (name)
		VALUES ($1)
		RETURNING id
	`

	if err := database.Conn(ctx, r.db).QueryRowContext(ctx, query, category.Name).Scan(&category.ID); err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// Update renames an existing category
func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	result, err := database.Conn(ctx, r.db).ExecContext(ctx, `UPDATE categories SET name = $2 WHERE id = $1`, category.ID, category.Name)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// Delete removes a category. Product links cascade, products stay.
func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	result, err := database.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// List retrieves one page of categories ordered by id
func (r *categoryRepository) List(ctx context.Context, page domain.PageRequest) ([]*domain.Category, int64, error) {
	var total int64
	if err := database.Conn(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	query := `
		SELECT id, name
		FROM categories
		ORDER BY id ASC
		LIMIT $1 OFFSET $2
	`

	categories, err := r.query(ctx, query, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

// FindByID retrieves a category by ID using parameterized queries
func (r *categoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	category := &domain.Category{}
	err := database.Conn(ctx, r.db).QueryRowContext(ctx, `SELECT id, name FROM categories WHERE id = $1`, id).
		Scan(&category.ID, &category.Name)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}

	return category, nil
}

// FindByIDs retrieves the existing categories among ids
func (r *categoryRepository) FindByIDs(ctx context.Context, ids []int64) ([]*domain.Category, error) {
	if len(ids) == 0 {
		return []*domain.Category{}, nil
	}
	return r.query(ctx, `SELECT id, name FROM categories WHERE id = ANY($1) ORDER BY id ASC`, ids)
}

func (r *categoryRepository) query(ctx context.Context, query string, args ...interface{}) ([]*domain.Category, error) {
	rows, err := database.Conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category := &domain.Category{}
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}
