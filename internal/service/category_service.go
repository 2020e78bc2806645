package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"shopapp/internal/database"
	"shopapp/internal/domain"
	"shopapp/internal/repository"
)

// CategoryService defines the interface for category business logic
type CategoryService interface {
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Update(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Category, error)
	List(ctx context.Context, page domain.PageRequest) (*domain.Page[domain.Category], error)
}

type categoryService struct {
	tx           database.TxManager
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(tx database.TxManager, categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{tx: tx, categoryRepo: categoryRepo}
}

func categoryNotFound(id int64, err error) error {
	if errors.Is(err, repository.ErrCategoryNotFound) {
		return &domain.NotFoundError{Entity: "Category", ID: id}
	}
	return err
}

func validateCategory(c *domain.Category) error {
	if n := utf8.RuneCountInString(c.Name); n < 1 || n > domain.MaxNameLength {
		return domain.ValidationErrors{{Field: "name", Message: "Name must be between 1 and 255 characters"}}
	}
	return nil
}

func (s *categoryService) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if err := validateCategory(category); err != nil {
		return nil, err
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.categoryRepo.Create(ctx, category)
	})
	if err != nil {
		return nil, domain.Wrap("create category", err)
	}
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.categoryRepo.FindByID(ctx, category.ID); err != nil {
			return categoryNotFound(category.ID, err)
		}
		if err := validateCategory(category); err != nil {
			return err
		}
		return categoryNotFound(category.ID, s.categoryRepo.Update(ctx, category))
	})
	if err != nil {
		return nil, domain.Wrap("update category", err)
	}
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return categoryNotFound(id, s.categoryRepo.Delete(ctx, id))
	})
	return domain.Wrap("delete category", err)
}

func (s *categoryService) Get(ctx context.Context, id int64) (*domain.Category, error) {
	var category *domain.Category
	err := s.tx.WithinReadOnlyTx(ctx, func(ctx context.Context) error {
		var err error
		category, err = s.categoryRepo.FindByID(ctx, id)
		return categoryNotFound(id, err)
	})
	if err != nil {
		return nil, domain.Wrap("get category", err)
	}
	return category, nil
}

func (s *categoryService) List(ctx context.Context, page domain.PageRequest) (*domain.Page[domain.Category], error) {
	var result *domain.Page[domain.Category]
	err := s.tx.WithinReadOnlyTx(ctx, func(ctx context.Context) error {
		categories, total, err := s.categoryRepo.List(ctx, page)
		if err != nil {
			return err
		}
		content := make([]domain.Category, 0, len(categories))
		for _, c := range categories {
			content = append(content, *c)
		}
		result = domain.NewPage(content, page, total)
		return nil
	})
	if err != nil {
		return nil, domain.Wrap("list categories", err)
	}
	return result, nil
}
