// Package client provides a Go client for the search service REST surfaces
// and the state container backing storefront search UIs.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/movelaria/search-service/internal/domain"
	"github.com/movelaria/search-service/pkg/httpclient"
)

// Client calls the search service. Public endpoints need no credentials;
// internal endpoints require a bearer token set via WithToken.
type Client struct {
	baseURL string
	token   string
	http    *httpclient.CircuitBreakerClient
}

// Option customizes the client.
type Option func(*Client)

// WithToken sets the bearer token for the internal surface.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default circuit-breaker HTTP client.
func WithHTTPClient(hc *httpclient.CircuitBreakerClient) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a search service client for the given base URL
// (e.g. "http://localhost:8010").
func New(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http: httpclient.NewCircuitBreakerClient(
			httpclient.DefaultConfig(),
			httpclient.DefaultCircuitBreakerConfig("search-service"),
			logger,
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// searchRequest is the flat wire shape of the public search body. Keeping an
// explicit mapping from the domain query avoids silent drift between the
// client and the server-side validator.
type searchRequest struct {
	SearchTerm  *string  `json:"searchTerm,omitempty"`
	ProductCode *string  `json:"productCode,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	PriceMin    *float64 `json:"priceMin,omitempty"`
	PriceMax    *float64 `json:"priceMax,omitempty"`
	Materials   []string `json:"materials,omitempty"`
	Colors      []string `json:"colors,omitempty"`
	Styles      []string `json:"styles,omitempty"`
	HeightMin   *float64 `json:"heightMin,omitempty"`
	HeightMax   *float64 `json:"heightMax,omitempty"`
	WidthMin    *float64 `json:"widthMin,omitempty"`
	WidthMax    *float64 `json:"widthMax,omitempty"`
	DepthMin    *float64 `json:"depthMin,omitempty"`
	DepthMax    *float64 `json:"depthMax,omitempty"`
	SortBy      string   `json:"sortBy,omitempty"`
	Page        int      `json:"page,omitempty"`
	PageSize    int      `json:"pageSize,omitempty"`
	SessionID   string   `json:"sessionId,omitempty"`
}

func toSearchRequest(q domain.SearchQuery, sessionID string) searchRequest {
	return searchRequest{
		SearchTerm:  q.SearchTerm,
		ProductCode: q.ProductCode,
		Categories:  q.Filters.Categories,
		PriceMin:    q.Filters.PriceMin,
		PriceMax:    q.Filters.PriceMax,
		Materials:   q.Filters.Materials,
		Colors:      q.Filters.Colors,
		Styles:      q.Filters.Styles,
		HeightMin:   q.Filters.Dimensions.HeightMin,
		HeightMax:   q.Filters.Dimensions.HeightMax,
		WidthMin:    q.Filters.Dimensions.WidthMin,
		WidthMax:    q.Filters.Dimensions.WidthMax,
		DepthMin:    q.Filters.Dimensions.DepthMin,
		DepthMax:    q.Filters.Dimensions.DepthMax,
		SortBy:      q.SortBy,
		Page:        q.Page,
		PageSize:    q.PageSize,
		SessionID:   sessionID,
	}
}

// --- Public surface ---

// searchResponse is the public surface's wire shape: pagination nested
// under a metadata object.
type searchResponse struct {
	Products []domain.Product `json:"products"`
	Metadata struct {
		TotalResults int `json:"totalResults"`
		Page         int `json:"page"`
		PageSize     int `json:"pageSize"`
		TotalPages   int `json:"totalPages"`
	} `json:"metadata"`
}

// Search runs a product search on the public surface. The session ID is
// optional; when present the server records the term in the session's
// recent searches.
func (c *Client) Search(ctx context.Context, query domain.SearchQuery, sessionID string) (*domain.SearchResultPage, error) {
	var resp searchResponse
	err := c.post(ctx, "/api/v1/public/search", toSearchRequest(query, sessionID), &resp)
	if err != nil {
		return nil, err
	}
	return &domain.SearchResultPage{
		Products:     resp.Products,
		TotalResults: resp.Metadata.TotalResults,
		PageNumber:   resp.Metadata.Page,
		PageSize:     resp.Metadata.PageSize,
		TotalPages:   resp.Metadata.TotalPages,
	}, nil
}

// Autocomplete fetches typed-ahead suggestions for a partial term.
func (c *Client) Autocomplete(ctx context.Context, term string, maxSuggestions int) ([]domain.Suggestion, error) {
	q := url.Values{}
	q.Set("searchTerm", term)
	if maxSuggestions > 0 {
		q.Set("maxSuggestions", strconv.Itoa(maxSuggestions))
	}

	var suggestions []domain.Suggestion
	if err := c.get(ctx, "/api/v1/public/search/autocomplete", q, &suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}

// FilterOptions fetches the facet options available given the already
// applied filters. Array filters travel JSON-encoded on query transports.
func (c *Client) FilterOptions(ctx context.Context, applied domain.SearchFilters) (*domain.FilterOptions, error) {
	q := url.Values{}
	setJSONArray(q, "appliedCategories", applied.Categories)
	setJSONArray(q, "appliedMaterials", applied.Materials)
	setJSONArray(q, "appliedColors", applied.Colors)
	setJSONArray(q, "appliedStyles", applied.Styles)

	var options domain.FilterOptions
	if err := c.get(ctx, "/api/v1/public/search/filter-options", q, &options); err != nil {
		return nil, err
	}
	return &options, nil
}

// Alternatives fetches the zero-result fallback: alternative terms plus
// related products.
func (c *Client) Alternatives(ctx context.Context, term string, maxSuggestions, maxProducts int) (*domain.SearchAlternatives, error) {
	q := url.Values{}
	q.Set("searchTerm", term)
	if maxSuggestions > 0 {
		q.Set("maxSuggestions", strconv.Itoa(maxSuggestions))
	}
	if maxProducts > 0 {
		q.Set("maxProducts", strconv.Itoa(maxProducts))
	}

	var alternatives domain.SearchAlternatives
	if err := c.get(ctx, "/api/v1/public/search/alternatives", q, &alternatives); err != nil {
		return nil, err
	}
	return &alternatives, nil
}

// RecentSearches fetches the session's recent search terms, newest first.
func (c *Client) RecentSearches(ctx context.Context, sessionID string) ([]string, error) {
	q := url.Values{}
	q.Set("sessionId", sessionID)

	var data struct {
		Terms []string `json:"terms"`
	}
	if err := c.get(ctx, "/api/v1/public/search/recent", q, &data); err != nil {
		return nil, err
	}
	return data.Terms, nil
}

// --- Internal surface ---

// Products runs an account-scoped product search on the internal surface.
func (c *Client) Products(ctx context.Context, query domain.SearchQuery) (*domain.SearchResultPage, error) {
	q := url.Values{}
	if query.SearchTerm != nil {
		q.Set("searchTerm", *query.SearchTerm)
	}
	if query.ProductCode != nil {
		q.Set("productCode", *query.ProductCode)
	}
	setJSONArray(q, "categories", query.Filters.Categories)
	setJSONArray(q, "materials", query.Filters.Materials)
	setJSONArray(q, "colors", query.Filters.Colors)
	setJSONArray(q, "styles", query.Filters.Styles)
	setFloat(q, "priceMin", query.Filters.PriceMin)
	setFloat(q, "priceMax", query.Filters.PriceMax)
	setFloat(q, "heightMin", query.Filters.Dimensions.HeightMin)
	setFloat(q, "heightMax", query.Filters.Dimensions.HeightMax)
	setFloat(q, "widthMin", query.Filters.Dimensions.WidthMin)
	setFloat(q, "widthMax", query.Filters.Dimensions.WidthMax)
	setFloat(q, "depthMin", query.Filters.Dimensions.DepthMin)
	setFloat(q, "depthMax", query.Filters.Dimensions.DepthMax)
	if query.SortBy != "" {
		q.Set("sortBy", query.SortBy)
	}
	if query.Page > 0 {
		q.Set("pageNumber", strconv.Itoa(query.Page))
	}
	if query.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(query.PageSize))
	}

	var page domain.SearchResultPage
	if err := c.get(ctx, "/api/v1/search/products", q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Suggestions fetches suggestions on the internal surface.
func (c *Client) Suggestions(ctx context.Context, partialTerm string, maxSuggestions int) ([]domain.Suggestion, error) {
	q := url.Values{}
	q.Set("partialTerm", partialTerm)
	if maxSuggestions > 0 {
		q.Set("maxSuggestions", strconv.Itoa(maxSuggestions))
	}

	var suggestions []domain.Suggestion
	if err := c.get(ctx, "/api/v1/search/suggestions", q, &suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}

// HistoryList fetches the account's most recent searches.
func (c *Client) HistoryList(ctx context.Context) ([]domain.SearchHistoryEntry, error) {
	var entries []domain.SearchHistoryEntry
	if err := c.get(ctx, "/api/v1/search/history", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// HistoryCreate records a completed search and returns the new entry's ID.
// Filters is an opaque serialized string; the server stores it verbatim.
func (c *Client) HistoryCreate(ctx context.Context, searchTerm string, filters *string, resultCount int) (int64, error) {
	body := map[string]any{
		"searchTerm":  searchTerm,
		"resultCount": resultCount,
	}
	if filters != nil {
		body["filters"] = *filters
	}

	var data struct {
		ID int64 `json:"idSearchHistory"`
	}
	if err := c.post(ctx, "/api/v1/search/history", body, &data); err != nil {
		return 0, err
	}
	return data.ID, nil
}

// --- Transport helpers ---

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(ctx, req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(ctx, req, out)
}

func (c *Client) do(ctx context.Context, req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpclient.ParseResponseError(resp)
	}

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		return &httpclient.APIError{StatusCode: resp.StatusCode, Message: env.Error}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

func setJSONArray(q url.Values, name string, values []string) {
	if len(values) == 0 {
		return
	}
	// Marshaling a []string cannot fail.
	encoded, _ := json.Marshal(values)
	q.Set(name, string(encoded))
}

func setFloat(q url.Values, name string, v *float64) {
	if v == nil {
		return
	}
	q.Set(name, strconv.FormatFloat(*v, 'f', -1, 64))
}
