package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/movelaria/search-service/internal/domain"
	"github.com/movelaria/search-service/internal/engine"
	"github.com/movelaria/search-service/internal/event"
)

// Limits applied when callers omit the optional maximums.
const (
	defaultMaxSuggestions  = 10
	defaultMaxAlternatives = 5
	defaultMaxRelated      = 8
	historyListMax         = 10
)

// EventPublisher publishes search domain events. Publishing is best-effort:
// failures are logged, never surfaced to the caller.
type EventPublisher interface {
	SearchPerformed(ctx context.Context, e event.SearchPerformed) error
}

// RecentSearchStore keeps per-session recent search terms.
type RecentSearchStore interface {
	Add(ctx context.Context, sessionID, term string) error
	List(ctx context.Context, sessionID string) ([]string, error)
}

// SearchService forwards validated search requests to the engine and
// reshapes its row-oriented results into API responses. It performs no
// matching, ranking, or pagination arithmetic of its own beyond lifting the
// engine's embedded metadata.
type SearchService struct {
	engine engine.Engine
	events EventPublisher
	recent RecentSearchStore
	logger *slog.Logger
}

// Option configures optional service dependencies.
type Option func(*SearchService)

// WithEventPublisher enables search.performed events on history create.
func WithEventPublisher(p EventPublisher) Option {
	return func(s *SearchService) { s.events = p }
}

// WithRecentSearchStore enables session-scoped recent searches on the
// public surface.
func WithRecentSearchStore(r RecentSearchStore) Option {
	return func(s *SearchService) { s.recent = r }
}

// NewSearchService creates a new search service.
func NewSearchService(eng engine.Engine, logger *slog.Logger, opts ...Option) *SearchService {
	s := &SearchService{
		engine: eng,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SearchProducts executes a product search. Defaults are applied here so
// every transport (internal API, public API) shares them: sort by relevance,
// first page, 24 items per page.
func (s *SearchService) SearchProducts(ctx context.Context, query domain.SearchQuery) (*domain.SearchResultPage, error) {
	if query.SortBy == "" {
		query.SortBy = domain.SortRelevance
	}
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize == 0 {
		query.PageSize = domain.DefaultPageSize
	}

	rows, err := s.engine.ProductSearch(ctx, engine.ProductSearchParams{
		AccountID:   query.AccountID,
		SearchTerm:  query.SearchTerm,
		ProductCode: query.ProductCode,
		Categories:  query.Filters.Categories,
		PriceMin:    query.Filters.PriceMin,
		PriceMax:    query.Filters.PriceMax,
		Materials:   query.Filters.Materials,
		Colors:      query.Filters.Colors,
		Styles:      query.Filters.Styles,
		HeightMin:   query.Filters.Dimensions.HeightMin,
		HeightMax:   query.Filters.Dimensions.HeightMax,
		WidthMin:    query.Filters.Dimensions.WidthMin,
		WidthMax:    query.Filters.Dimensions.WidthMax,
		DepthMin:    query.Filters.Dimensions.DepthMin,
		DepthMax:    query.Filters.Dimensions.DepthMax,
		SortBy:      query.SortBy,
		Page:        query.Page,
		PageSize:    query.PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}

	page := reshapeSearchPage(rows, query.Page, query.PageSize)

	s.logger.DebugContext(ctx, "search executed",
		slog.Int("total_results", page.TotalResults),
		slog.Int("page", page.PageNumber),
		slog.Int("page_size", page.PageSize),
	)
	return page, nil
}

// reshapeSearchPage lifts the per-row pagination metadata into the page
// envelope. The metadata is read from the first row only; zero rows means a
// zero-page result, not an error.
func reshapeSearchPage(rows []engine.ProductRow, requestPage, requestPageSize int) *domain.SearchResultPage {
	if len(rows) == 0 {
		return &domain.SearchResultPage{
			Products:     []domain.Product{},
			TotalResults: 0,
			PageNumber:   requestPage,
			PageSize:     requestPageSize,
			TotalPages:   0,
		}
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, mapProduct(row))
	}

	return &domain.SearchResultPage{
		Products:     products,
		TotalResults: rows[0].TotalResults,
		PageNumber:   rows[0].CurrentPage,
		PageSize:     requestPageSize,
		TotalPages:   rows[0].TotalPages,
	}
}

// PublicSearch executes a search for the public storefront. When the visitor
// carries a session ID, the term is recorded as a recent search; that write
// is best-effort and never fails the search itself.
func (s *SearchService) PublicSearch(ctx context.Context, query domain.SearchQuery, sessionID string) (*domain.SearchResultPage, error) {
	page, err := s.SearchProducts(ctx, query)
	if err != nil {
		return nil, err
	}

	if s.recent != nil && sessionID != "" && query.SearchTerm != nil && *query.SearchTerm != "" {
		if err := s.recent.Add(ctx, sessionID, *query.SearchTerm); err != nil {
			s.logger.WarnContext(ctx, "record recent search failed",
				slog.String("error", err.Error()),
			)
		}
	}
	return page, nil
}

// RecentSearches returns the recent terms for a session, newest first.
func (s *SearchService) RecentSearches(ctx context.Context, sessionID string) ([]string, error) {
	if s.recent == nil {
		return []string{}, nil
	}
	terms, err := s.recent.List(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("recent searches: %w", err)
	}
	if terms == nil {
		terms = []string{}
	}
	return terms, nil
}

// Suggestions returns autocomplete suggestions for a partial term.
func (s *SearchService) Suggestions(ctx context.Context, accountID int64, partialTerm string, maxSuggestions int) ([]domain.Suggestion, error) {
	if maxSuggestions <= 0 {
		maxSuggestions = defaultMaxSuggestions
	}

	rows, err := s.engine.Suggestions(ctx, engine.SuggestionsParams{
		AccountID:      accountID,
		PartialTerm:    partialTerm,
		MaxSuggestions: maxSuggestions,
	})
	if err != nil {
		return nil, fmt.Errorf("suggestions: %w", err)
	}

	suggestions := make([]domain.Suggestion, 0, len(rows))
	for _, row := range rows {
		suggestions = append(suggestions, domain.Suggestion{
			Suggestion: row.Suggestion,
			Type:       row.Type,
			Priority:   row.Priority,
		})
	}
	return suggestions, nil
}

// FilterOptions returns the available filter values for the current
// refinement.
func (s *SearchService) FilterOptions(ctx context.Context, query domain.FilterOptionsQuery) (*domain.FilterOptions, error) {
	result, err := s.engine.FilterOptions(ctx, engine.FilterOptionsParams{
		AccountID:  query.AccountID,
		Categories: query.Categories,
		PriceMin:   query.PriceMin,
		PriceMax:   query.PriceMax,
		Materials:  query.Materials,
		Colors:     query.Colors,
		Styles:     query.Styles,
	})
	if err != nil {
		return nil, fmt.Errorf("filter options: %w", err)
	}

	return &domain.FilterOptions{
		Categories: result.Categories,
		Materials:  result.Materials,
		Colors:     result.Colors,
		Styles:     result.Styles,
		PriceRange: domain.PriceRange{
			MinPrice: result.PriceRange.MinPrice,
			MaxPrice: result.PriceRange.MaxPrice,
		},
		DimensionRanges: domain.DimensionRanges{
			MinHeight: result.DimensionRanges.MinHeight,
			MaxHeight: result.DimensionRanges.MaxHeight,
			MinWidth:  result.DimensionRanges.MinWidth,
			MaxWidth:  result.DimensionRanges.MaxWidth,
			MinDepth:  result.DimensionRanges.MinDepth,
			MaxDepth:  result.DimensionRanges.MaxDepth,
		},
	}, nil
}

// Alternatives returns alternative terms and related products for a term
// that produced no results.
func (s *SearchService) Alternatives(ctx context.Context, accountID int64, searchTerm string, maxSuggestions, maxProducts int) (*domain.SearchAlternatives, error) {
	if maxSuggestions <= 0 {
		maxSuggestions = defaultMaxAlternatives
	}
	if maxProducts <= 0 {
		maxProducts = defaultMaxRelated
	}

	result, err := s.engine.Alternatives(ctx, engine.AlternativesParams{
		AccountID:      accountID,
		SearchTerm:     searchTerm,
		MaxSuggestions: maxSuggestions,
		MaxProducts:    maxProducts,
	})
	if err != nil {
		return nil, fmt.Errorf("alternatives: %w", err)
	}

	related := make([]domain.Product, 0, len(result.RelatedProducts))
	for _, row := range result.RelatedProducts {
		related = append(related, mapProduct(row))
	}

	suggestions := result.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}

	return &domain.SearchAlternatives{
		Suggestions:     suggestions,
		RelatedProducts: related,
	}, nil
}

// HistoryCreate records a performed search and emits a search.performed
// event. The event is best-effort; the history entry is the source of truth.
func (s *SearchService) HistoryCreate(ctx context.Context, accountID int64, searchTerm string, filters *string, resultCount int) (int64, error) {
	id, err := s.engine.HistoryCreate(ctx, engine.HistoryCreateParams{
		AccountID:   accountID,
		SearchTerm:  searchTerm,
		Filters:     filters,
		ResultCount: resultCount,
	})
	if err != nil {
		return 0, fmt.Errorf("history create: %w", err)
	}

	if s.events != nil {
		evt := event.SearchPerformed{
			SearchHistoryID: id,
			AccountID:       accountID,
			SearchTerm:      searchTerm,
			Filters:         filters,
			ResultCount:     resultCount,
		}
		if err := s.events.SearchPerformed(ctx, evt); err != nil {
			s.logger.WarnContext(ctx, "publish search.performed failed",
				slog.Int64("search_history_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "search history recorded",
		slog.Int64("search_history_id", id),
		slog.Int("result_count", resultCount),
	)
	return id, nil
}

// HistoryList returns the account's most recent searches, capped at 10.
func (s *SearchService) HistoryList(ctx context.Context, accountID int64) ([]domain.SearchHistoryEntry, error) {
	rows, err := s.engine.HistoryList(ctx, accountID, historyListMax)
	if err != nil {
		return nil, fmt.Errorf("history list: %w", err)
	}

	entries := make([]domain.SearchHistoryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, domain.SearchHistoryEntry{
			ID:          row.ID,
			SearchTerm:  row.SearchTerm,
			Filters:     row.Filters,
			ResultCount: row.ResultCount,
			DateCreated: row.DateCreated,
		})
	}
	return entries, nil
}

func mapProduct(row engine.ProductRow) domain.Product {
	return domain.Product{
		ID:          row.ID,
		ProductCode: row.ProductCode,
		Name:        row.Name,
		Description: row.Description,
		Category:    row.Category,
		Material:    row.Material,
		Color:       row.Color,
		Style:       row.Style,
		Price:       row.Price,
		Height:      row.Height,
		Width:       row.Width,
		Depth:       row.Depth,
		DateCreated: row.DateCreated,
	}
}
