package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movelaria/search-service/internal/engine/memory"
	"github.com/movelaria/search-service/internal/service"
	"github.com/movelaria/search-service/pkg/health"
	"github.com/movelaria/search-service/pkg/middleware"
)

const (
	testTokenFull     = "token-full"
	testTokenReadOnly = "token-read-only"
)

func testValidator(token string) (*middleware.Principal, error) {
	switch token {
	case testTokenFull:
		return &middleware.Principal{
			AccountID: 1,
			Grants:    map[string][]string{"SEARCH": {"READ", "CREATE"}},
		}, nil
	case testTokenReadOnly:
		return &middleware.Principal{
			AccountID: 1,
			Grants:    map[string][]string{"SEARCH": {"READ"}},
		}, nil
	default:
		return nil, errors.New("unknown token")
	}
}

// sessionRecent is an in-memory stand-in for the redis store.
type sessionRecent struct {
	terms map[string][]string
}

func (s *sessionRecent) Add(_ context.Context, sessionID, term string) error {
	if s.terms == nil {
		s.terms = make(map[string][]string)
	}
	s.terms[sessionID] = append([]string{term}, s.terms[sessionID]...)
	return nil
}

func (s *sessionRecent) List(_ context.Context, sessionID string) ([]string, error) {
	return s.terms[sessionID], nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	svc := service.NewSearchService(memory.New(), logger,
		service.WithRecentSearchStore(&sessionRecent{}))
	return NewRouter(RouterConfig{
		Service:         svc,
		Health:          health.NewHandler(),
		TokenValidator:  testValidator,
		PublicAccountID: 1,
		CORS:            middleware.DefaultCORSConfig(),
		Logger:          logger,
	})
}

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func doRequest(t *testing.T, router http.Handler, method, target, body string, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

// searchPage is the flat page shape of the internal surface.
type searchPage struct {
	Products     []json.RawMessage `json:"products"`
	TotalResults int               `json:"totalResults"`
	PageNumber   int               `json:"pageNumber"`
	PageSize     int               `json:"pageSize"`
	TotalPages   int               `json:"totalPages"`
}

// publicPage is the public surface's shape: pagination nested under metadata.
type publicPage struct {
	Products []json.RawMessage `json:"products"`
	Metadata struct {
		TotalResults int `json:"totalResults"`
		Page         int `json:"page"`
		PageSize     int `json:"pageSize"`
		TotalPages   int `json:"totalPages"`
	} `json:"metadata"`
}

func TestPublicSearch(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/public/search",
		`{"searchTerm":"sofá"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	var page publicPage
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.NotEmpty(t, page.Products)
	assert.Equal(t, len(page.Products), page.Metadata.TotalResults)
	assert.Equal(t, 1, page.Metadata.Page)
	assert.Equal(t, 24, page.Metadata.PageSize)
	assert.Equal(t, 1, page.Metadata.TotalPages)
}

func TestPublicSearch_NestsPaginationUnderMetadata(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/public/search",
		`{"searchTerm":"sofá","pageSize":24,"page":1}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var data map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Contains(t, data, "metadata")
	require.Contains(t, data, "products")
	assert.NotContains(t, data, "totalResults")
	assert.NotContains(t, data, "pageNumber")

	var metadata map[string]int
	require.NoError(t, json.Unmarshal(data["metadata"], &metadata))
	assert.Contains(t, metadata, "totalResults")
	assert.Contains(t, metadata, "page")
	assert.Contains(t, metadata, "pageSize")
	assert.Contains(t, metadata, "totalPages")
}

func TestPublicSearch_DefaultsApplied(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/public/search", `{}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var page publicPage
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 1, page.Metadata.Page)
	assert.Equal(t, 24, page.Metadata.PageSize)
}

func TestPublicSearch_InvalidSortBy(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/public/search",
		`{"sortBy":"price_asc"}`, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "validationError", env.Error)
	assert.Contains(t, env.Details, "SortBy")
}

func TestPublicSearch_InvalidPageSize(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doRequest(t, router, http.MethodPost, "/api/v1/public/search",
		`{"pageSize":25}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublicSearch_TermTooShortAfterTrim(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/public/search",
		`{"searchTerm":"  a  "}`, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validationError", env.Error)
	assert.Contains(t, env.Details, "searchTerm")
}

func TestPublicSearch_NoResultsIsZeroPages(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/public/search",
		`{"searchTerm":"zzzzzz"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var page publicPage
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Empty(t, page.Products)
	assert.Equal(t, 0, page.Metadata.TotalResults)
	assert.Equal(t, 0, page.Metadata.TotalPages)
}

func TestPublicSearch_SessionRecordsRecent(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doRequest(t, router, http.MethodPost, "/api/v1/public/search",
		`{"searchTerm":"sofá","sessionId":"sess-1"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/public/search/recent?sessionId=sess-1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Terms []string `json:"terms"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, []string{"sofá"}, data.Terms)
}

func TestPublicRecent_RequiresSession(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/public/search/recent", "", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validationError", env.Error)
}

func TestPublicAutocomplete(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet,
		"/api/v1/public/search/autocomplete?searchTerm=sof", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var suggestions []struct {
		Suggestion string `json:"suggestion"`
		Type       string `json:"type"`
		Priority   int    `json:"priority"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &suggestions))
	assert.NotEmpty(t, suggestions)
}

func TestPublicAutocomplete_TermRequired(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet,
		"/api/v1/public/search/autocomplete", "", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Details, "SearchTerm")
}

func TestPublicAutocomplete_MaxSuggestionsBounds(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doRequest(t, router, http.MethodGet,
		"/api/v1/public/search/autocomplete?searchTerm=sof&maxSuggestions=21", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublicFilterOptions(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet,
		"/api/v1/public/search/filter-options", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var options struct {
		Categories []string `json:"categories"`
		PriceRange struct {
			MinPrice float64 `json:"minPrice"`
			MaxPrice float64 `json:"maxPrice"`
		} `json:"priceRange"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &options))
	assert.NotEmpty(t, options.Categories)
	assert.Greater(t, options.PriceRange.MaxPrice, options.PriceRange.MinPrice)
}

func TestPublicFilterOptions_BadAppliedArray(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet,
		"/api/v1/public/search/filter-options?appliedCategories=not-json", "", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validationError", env.Error)
	assert.Contains(t, env.Details, "appliedCategories")
}

func TestPublicAlternatives(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet,
		"/api/v1/public/search/alternatives?searchTerm=sofa+inexistente", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var alternatives struct {
		Suggestions     []string          `json:"suggestions"`
		RelatedProducts []json.RawMessage `json:"relatedProducts"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &alternatives))
	assert.NotNil(t, alternatives.Suggestions)
	assert.NotEmpty(t, alternatives.RelatedProducts)
	assert.LessOrEqual(t, len(alternatives.RelatedProducts), 8)
}
