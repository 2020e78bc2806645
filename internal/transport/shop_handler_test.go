package transport

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shopapp/internal/domain"
	"shopapp/internal/middleware"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var response middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response.Error.Message
}

func shopBody() map[string]interface{} {
	return map[string]interface{}{
		"name":        "Cafe",
		"inVacations": false,
		"openingHours": []map[string]interface{}{
			{"day": 1, "openAt": "08:00", "closeAt": "12:00"},
			{"day": 1, "openAt": "14:00:00", "closeAt": "18:30:00"},
		},
	}
}

func TestShopHandler_Create(t *testing.T) {
	shops := &mockShopService{}
	router := newTestRouter(shops, &mockProductService{}, &mockCategoryService{})

	w := do(t, router, http.MethodPost, "/api/v1/shops", shopBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NotNil(t, shops.created)
	require.Len(t, shops.created.OpeningHours, 2)
	assert.Equal(t, domain.Monday, shops.created.OpeningHours[0].Day)
	assert.Equal(t, domain.NewClockTime(18, 30, 0), shops.created.OpeningHours[1].CloseAt)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "2024-03-01", got["createdAt"])
	hours := got["openingHours"].([]interface{})
	assert.Equal(t, "08:00:00", hours[0].(map[string]interface{})["openAt"])
}

func TestShopHandler_CreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b map[string]interface{})
	}{
		{"missing name", func(b map[string]interface{}) { delete(b, "name") }},
		{"missing vacation flag", func(b map[string]interface{}) { delete(b, "inVacations") }},
		{"day out of range", func(b map[string]interface{}) {
			b["openingHours"] = []map[string]interface{}{{"day": 8, "openAt": "08:00", "closeAt": "09:00"}}
		}},
		{"missing close time", func(b map[string]interface{}) {
			b["openingHours"] = []map[string]interface{}{{"day": 2, "openAt": "08:00"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shops := &mockShopService{}
			router := newTestRouter(shops, &mockProductService{}, &mockCategoryService{})

			body := shopBody()
			tt.mutate(body)

			w := do(t, router, http.MethodPost, "/api/v1/shops", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "validation failed", errorMessage(t, w))
			assert.Nil(t, shops.created)
		})
	}
}

func TestShopHandler_CreateInVacations(t *testing.T) {
	shops := &mockShopService{}
	router := newTestRouter(shops, &mockProductService{}, &mockCategoryService{})

	body := shopBody()
	body["inVacations"] = true
	w := do(t, router, http.MethodPost, "/api/v1/shops", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, shops.created)
	assert.True(t, shops.created.InVacations)

	// an explicit false is a value, not a missing field
	shops.created = nil
	w = do(t, router, http.MethodPost, "/api/v1/shops", shopBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, shops.created)
	assert.False(t, shops.created.InVacations)
}

func TestShopHandler_CreateMalformedTime(t *testing.T) {
	router := newTestRouter(&mockShopService{}, &mockProductService{}, &mockCategoryService{})

	body := shopBody()
	body["openingHours"] = []map[string]interface{}{{"day": 1, "openAt": "8 o'clock", "closeAt": "09:00"}}

	w := do(t, router, http.MethodPost, "/api/v1/shops", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request body", errorMessage(t, w))
}

func TestShopHandler_BusinessRuleIs400(t *testing.T) {
	shops := &mockShopService{err: &domain.OverlapError{
		Day:    domain.Monday,
		First:  domain.OpeningHours{OpenAt: domain.NewClockTime(8, 0, 0), CloseAt: domain.NewClockTime(12, 0, 0)},
		Second: domain.OpeningHours{OpenAt: domain.NewClockTime(11, 0, 0), CloseAt: domain.NewClockTime(15, 0, 0)},
	}}
	router := newTestRouter(shops, &mockProductService{}, &mockCategoryService{})

	w := do(t, router, http.MethodPost, "/api/v1/shops", shopBody())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorMessage(t, w), "Monday")
}

func TestShopHandler_GetNotFoundIs400(t *testing.T) {
	shops := &mockShopService{err: &domain.NotFoundError{Entity: "Shop", ID: 7}}
	router := newTestRouter(shops, &mockProductService{}, &mockCategoryService{})

	w := do(t, router, http.MethodGet, "/api/v1/shops/7", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Shop with id 7 not found", errorMessage(t, w))
}

func TestShopHandler_BadPathID(t *testing.T) {
	router := newTestRouter(&mockShopService{}, &mockProductService{}, &mockCategoryService{})

	w := do(t, router, http.MethodGet, "/api/v1/shops/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShopHandler_Delete(t *testing.T) {
	shops := &mockShopService{}
	router := newTestRouter(shops, &mockProductService{}, &mockCategoryService{})

	w := do(t, router, http.MethodDelete, "/api/v1/shops/4", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []int64{4}, shops.deleted)
}

func TestShopHandler_ListParsesParameters(t *testing.T) {
	shops := &mockShopService{}
	router := newTestRouter(shops, &mockProductService{}, &mockCategoryService{})

	w := do(t, router, http.MethodGet,
		"/api/v1/shops?page=2&size=10&sortBy=name&inVacations=true&createdAfter=2024-01-01&createdBefore=2024-06-30", nil)
	require.Equal(t, http.StatusOK, w.Code)

	p := shops.listParams
	require.NotNil(t, p)
	require.NotNil(t, p.SortBy)
	assert.Equal(t, "name", *p.SortBy)
	require.NotNil(t, p.InVacations)
	assert.True(t, *p.InVacations)
	assert.Equal(t, "2024-01-01", p.CreatedAfter.String())
	assert.Equal(t, "2024-06-30", p.CreatedBefore.String())
	assert.Equal(t, domain.PageRequest{Page: 2, Size: 10}, shops.page)

	var page map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	for _, key := range []string{"content", "totalElements", "totalPages", "size", "number"} {
		assert.Contains(t, page, key)
	}
}

func TestShopHandler_ListDefaults(t *testing.T) {
	shops := &mockShopService{}
	router := newTestRouter(shops, &mockProductService{}, &mockCategoryService{})

	w := do(t, router, http.MethodGet, "/api/v1/shops", nil)
	require.Equal(t, http.StatusOK, w.Code)

	p := shops.listParams
	assert.Nil(t, p.SortBy)
	assert.Nil(t, p.InVacations)
	assert.Nil(t, p.CreatedAfter)
	assert.Nil(t, p.CreatedBefore)
	assert.Equal(t, domain.PageRequest{Page: 0, Size: domain.DefaultPageSize}, shops.page)
}

func TestShopHandler_ListCapsPageSize(t *testing.T) {
	shops := &mockShopService{}
	router := newTestRouter(shops, &mockProductService{}, &mockCategoryService{})

	do(t, router, http.MethodGet, "/api/v1/shops?size=100000", nil)
	assert.Equal(t, domain.MaxPageSize, shops.page.Size)
}

func TestProperty_MalformedQueryParametersAre400(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("unparsable parameters never reach the service", prop.ForAll(
		func(param string, value string) bool {
			shops := &mockShopService{}
			router := newTestRouter(shops, &mockProductService{}, &mockCategoryService{})

			w := do(t, router, http.MethodGet, "/api/v1/shops?"+param+"="+value, nil)
			return w.Code == http.StatusBadRequest && shops.listParams == nil
		},
		gen.OneConstOf("page", "size", "inVacations", "createdAfter", "createdBefore"),
		gen.OneConstOf("abc", "2024-13-45", "yes-please", "1.5x"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestShopHandler_Search(t *testing.T) {
	shops := &mockShopService{}
	router := newTestRouter(shops, &mockProductService{}, &mockCategoryService{})

	w := do(t, router, http.MethodGet, "/api/v1/shops/search?query=caffe&inVacations=false&createdBefore=2025-01-01", nil)
	require.Equal(t, http.StatusOK, w.Code)

	p := shops.searchParams
	require.NotNil(t, p)
	assert.Equal(t, "caffe", p.Query)
	require.NotNil(t, p.InVacations)
	assert.False(t, *p.InVacations)
	assert.Nil(t, p.CreatedAfter)
	assert.Equal(t, "2025-01-01", p.CreatedBefore.String())
	assert.Nil(t, shops.listParams, "search must not hit the query resolver")
}

func TestShopHandler_Reindex(t *testing.T) {
	shops := &mockShopService{}
	router := newTestRouter(shops, &mockProductService{}, &mockCategoryService{})

	w := do(t, router, http.MethodPost, "/api/v1/shops/reindex", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"indexed":3}`, w.Body.String())
	assert.Equal(t, 1, shops.reindexed)
}
