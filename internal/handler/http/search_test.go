package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestInternalProducts_RequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/search/products", "", nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)
}

func TestInternalProducts_RejectsUnknownToken(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doRequest(t, router, http.MethodGet, "/api/v1/search/products", "",
		authHeader("bogus"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInternalProducts(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet,
		"/api/v1/search/products?searchTerm=sof%C3%A1&sortBy=preco_asc", "",
		authHeader(testTokenFull))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	var page searchPage
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.NotEmpty(t, page.Products)
	assert.Equal(t, 24, page.PageSize)
}

func TestInternalProducts_JSONArrayFilters(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet,
		"/api/v1/search/products?categories=%5B%22Mesas%22%5D", "",
		authHeader(testTokenFull))

	require.Equal(t, http.StatusOK, rec.Code)

	var page searchPage
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.NotEmpty(t, page.Products)

	for _, raw := range page.Products {
		var p struct {
			Category string `json:"category"`
		}
		require.NoError(t, json.Unmarshal(raw, &p))
		assert.Equal(t, "Mesas", p.Category)
	}
}

func TestInternalProducts_BadJSONArray(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet,
		"/api/v1/search/products?categories=Mesas", "",
		authHeader(testTokenFull))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validationError", env.Error)
	assert.Contains(t, env.Details, "categories")
}

func TestInternalProducts_ReportsAllInvalidFields(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet,
		"/api/v1/search/products?categories=bad&priceMin=abc&sortBy=price_asc", "",
		authHeader(testTokenFull))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Details, "categories")
	assert.Contains(t, env.Details, "priceMin")
	assert.Contains(t, env.Details, "SortBy")
}

func TestInternalSuggestions(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet,
		"/api/v1/search/suggestions?partialTerm=sof", "",
		authHeader(testTokenFull))

	require.Equal(t, http.StatusOK, rec.Code)

	var suggestions []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &suggestions))
	assert.NotEmpty(t, suggestions)
}

func TestInternalSuggestions_PartialTermRequired(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet,
		"/api/v1/search/suggestions", "",
		authHeader(testTokenFull))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Details, "PartialTerm")
}

func TestInternalFilterOptions(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet,
		"/api/v1/search/filter-options?categories=%5B%22Sof%C3%A1s%22%5D", "",
		authHeader(testTokenFull))

	require.Equal(t, http.StatusOK, rec.Code)

	var options struct {
		Materials []string `json:"materials"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &options))
	assert.NotEmpty(t, options.Materials)
}

func TestInternalHistoryCreate(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/search/history",
		`{"searchTerm":"sofá retrátil","resultCount":3}`,
		authHeader(testTokenFull))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	var data struct {
		ID int64 `json:"idSearchHistory"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.GreaterOrEqual(t, data.ID, int64(1))

	rec, env = doRequest(t, router, http.MethodGet, "/api/v1/search/history", "",
		authHeader(testTokenFull))
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []struct {
		SearchTerm  string `json:"searchTerm"`
		ResultCount int    `json:"resultCount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "sofá retrátil", entries[0].SearchTerm)
	assert.Equal(t, 3, entries[0].ResultCount)
}

func TestInternalHistoryCreate_ResultCountRequired(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/search/history",
		`{"searchTerm":"sofá"}`,
		authHeader(testTokenFull))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Details, "ResultCount")
}

func TestInternalHistoryCreate_ZeroResultCountAccepted(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doRequest(t, router, http.MethodPost, "/api/v1/search/history",
		`{"searchTerm":"sofá","resultCount":0}`,
		authHeader(testTokenFull))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInternalHistoryCreate_RequiresCreateGrant(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/search/history",
		`{"searchTerm":"sofá","resultCount":0}`,
		authHeader(testTokenReadOnly))

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, env.Success)
}

func TestInternalHistoryList_ReadOnlyTokenAllowed(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doRequest(t, router, http.MethodGet, "/api/v1/search/history", "",
		authHeader(testTokenReadOnly))

	assert.Equal(t, http.StatusOK, rec.Code)
}
