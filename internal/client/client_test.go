package client

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movelaria/search-service/internal/domain"
	"github.com/movelaria/search-service/pkg/httpclient"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestClientSearch(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/public/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"products": []any{},
				"metadata": map[string]any{
					"totalResults": 0,
					"page":         1,
					"pageSize":     24,
					"totalPages":   0,
				},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, discardLogger())

	term := "sofá"
	page, err := c.Search(context.Background(), domain.SearchQuery{
		SearchTerm: &term,
		Filters:    domain.SearchFilters{Categories: []string{"Sofás"}},
		PageSize:   24,
		Page:       1,
	}, "sess-1")

	require.NoError(t, err)
	assert.Equal(t, 0, page.TotalResults)
	assert.Equal(t, 24, page.PageSize)

	assert.Equal(t, "sofá", gotBody["searchTerm"])
	assert.Equal(t, "sess-1", gotBody["sessionId"])
	assert.Equal(t, []any{"Sofás"}, gotBody["categories"])
}

func TestClientProducts_EncodesQuery(t *testing.T) {
	var gotQuery map[string]string
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/search/products", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"products": []any{}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, discardLogger(), WithToken("secret"))

	term := "mesa"
	priceMax := 2000.0
	_, err := c.Products(context.Background(), domain.SearchQuery{
		SearchTerm: &term,
		Filters: domain.SearchFilters{
			Categories: []string{"Mesas", "Cadeiras"},
			PriceMax:   &priceMax,
		},
		SortBy:   domain.SortPriceAsc,
		Page:     2,
		PageSize: 12,
	})

	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "mesa", gotQuery["searchTerm"])
	assert.Equal(t, `["Mesas","Cadeiras"]`, gotQuery["categories"])
	assert.Equal(t, "2000", gotQuery["priceMax"])
	assert.Equal(t, "preco_asc", gotQuery["sortBy"])
	assert.Equal(t, "2", gotQuery["pageNumber"])
	assert.Equal(t, "12", gotQuery["pageSize"])
}

func TestClientErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "validationError",
			"details": map[string]string{"searchTerm": "is required"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, discardLogger())

	_, err := c.Autocomplete(context.Background(), "x", 0)
	require.Error(t, err)

	var apiErr *httpclient.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "validationError", apiErr.Message)
}

func TestClientHistoryCreate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/search/history", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sofá", body["searchTerm"])
		assert.Equal(t, float64(7), body["resultCount"])
		assert.Equal(t, `{"categories":["Sofás"]}`, body["filters"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"idSearchHistory": 42},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, discardLogger(), WithToken("secret"))

	filters := `{"categories":["Sofás"]}`
	id, err := c.HistoryCreate(context.Background(), "sofá", &filters, 7)

	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestClientRecentSearches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/public/search/recent", r.URL.Path)
		require.Equal(t, "sess-9", r.URL.Query().Get("sessionId"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"terms": []string{"sofá", "mesa"}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, discardLogger())

	terms, err := c.RecentSearches(context.Background(), "sess-9")
	require.NoError(t, err)
	assert.Equal(t, []string{"sofá", "mesa"}, terms)
}

func TestClientFilterOptions_EncodesAppliedFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/public/search/filter-options", r.URL.Path)
		assert.Equal(t, `["Sofás"]`, r.URL.Query().Get("appliedCategories"))
		assert.False(t, r.URL.Query().Has("appliedMaterials"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"categories": []string{"Sofás"},
				"materials":  []string{"Suede", "Veludo"},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, discardLogger())

	options, err := c.FilterOptions(context.Background(), domain.SearchFilters{
		Categories: []string{"Sofás"},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"Suede", "Veludo"}, options.Materials)
}
