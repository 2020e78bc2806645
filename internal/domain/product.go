package domain

import "fmt"

// Product represents a product in the catalog. Price is expressed in minor
// currency units.
type Product struct {
	ID                int64              `json:"id"`
	Price             int64              `json:"price"`
	LocalizedProducts []LocalizedProduct `json:"localizedProducts"`
	Categories        []Category         `json:"categories"`
	Shop              *ShopRef           `json:"shop"`
}

// LocalizedProduct is a name and description in one locale
type LocalizedProduct struct {
	ID          int64  `json:"id"`
	Locale      string `json:"locale"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Category represents a product category
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ShopRef is the light view of the shop a product belongs to
type ShopRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Validate checks the field constraints of a product
func (p *Product) Validate() error {
	var errs ValidationErrors
	if p.Price < 0 {
		errs = append(errs, FieldError{Field: "price", Message: "Price must be positive"})
	}
	if len(p.LocalizedProducts) == 0 {
		errs = append(errs, FieldError{Field: "localizedProducts", Message: "At least one name and one description must be provided"})
	}
	for i, lp := range p.LocalizedProducts {
		if lp.Name == "" {
			errs = append(errs, FieldError{Field: fmt.Sprintf("localizedProducts[%d].name", i), Message: "Name may not be empty"})
		}
		if lp.Locale == "" {
			errs = append(errs, FieldError{Field: fmt.Sprintf("localizedProducts[%d].locale", i), Message: "Locale may not be empty"})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CategoryIDs returns the distinct category ids in their first seen order
func (p *Product) CategoryIDs() []int64 {
	seen := make(map[int64]bool, len(p.Categories))
	ids := make([]int64, 0, len(p.Categories))
	for _, c := range p.Categories {
		if !seen[c.ID] {
			seen[c.ID] = true
			ids = append(ids, c.ID)
		}
	}
	return ids
}
