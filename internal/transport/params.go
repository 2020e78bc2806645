package transport

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"shopapp/internal/domain"

	"github.com/go-chi/chi/v5"
)

// queryError is a malformed query or path parameter
type queryError struct {
	name  string
	value string
}

func (e *queryError) Error() string {
	return fmt.Sprintf("invalid value %q for parameter %s", e.value, e.name)
}

func pageRequest(r *http.Request) (domain.PageRequest, error) {
	page, err := intParam(r, "page", 0)
	if err != nil {
		return domain.PageRequest{}, err
	}
	size, err := intParam(r, "size", domain.DefaultPageSize)
	if err != nil {
		return domain.PageRequest{}, err
	}
	return domain.NewPageRequest(page, size), nil
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &queryError{name: name, value: raw}
	}
	return v, nil
}

func optionalString(r *http.Request, name string) *string {
	if !r.URL.Query().Has(name) {
		return nil
	}
	v := r.URL.Query().Get(name)
	return &v
}

func optionalBool(r *http.Request, name string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, &queryError{name: name, value: raw}
	}
	return &v, nil
}

func optionalInt64(r *http.Request, name string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, &queryError{name: name, value: raw}
	}
	return &v, nil
}

func optionalDate(r *http.Request, name string) (*domain.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return nil, &queryError{name: name, value: raw}
	}
	return &d, nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &queryError{name: name, value: raw}
	}
	return id, nil
}
