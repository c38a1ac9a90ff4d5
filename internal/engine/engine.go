package engine

import (
	"context"
	"fmt"
	"time"
)

// Engine is the contract with the external search engine. Each operation
// maps to a named procedure: the engine owns matching, ranking, synonym
// expansion, facet aggregation, and pagination; callers forward validated
// parameters and reshape rows.
type Engine interface {
	// ProductSearch executes the product search procedure. Every returned
	// row carries the pagination metadata for the whole result.
	ProductSearch(ctx context.Context, params ProductSearchParams) ([]ProductRow, error)

	// Suggestions returns autocomplete suggestions for a partial term.
	Suggestions(ctx context.Context, params SuggestionsParams) ([]SuggestionRow, error)

	// FilterOptions returns the available filter values for the current
	// refinement as six positional result sets.
	FilterOptions(ctx context.Context, params FilterOptionsParams) (*FilterOptionsResult, error)

	// Alternatives returns alternative terms and related products for a
	// term that produced no results, as two positional result sets.
	Alternatives(ctx context.Context, params AlternativesParams) (*AlternativesResult, error)

	// HistoryCreate records a performed search and returns the new entry ID.
	HistoryCreate(ctx context.Context, params HistoryCreateParams) (int64, error)

	// HistoryList returns the most recent history entries, newest first.
	HistoryList(ctx context.Context, accountID int64, maxResults int) ([]HistoryRow, error)
}

// ProductSearchParams are the parameters of the product search procedure.
// Nil pointers and nil slices are passed to the engine as NULL; slices are
// serialized as JSON array text on the wire.
type ProductSearchParams struct {
	AccountID   int64
	SearchTerm  *string
	ProductCode *string
	Categories  []string
	PriceMin    *float64
	PriceMax    *float64
	Materials   []string
	Colors      []string
	Styles      []string
	HeightMin   *float64
	HeightMax   *float64
	WidthMin    *float64
	WidthMax    *float64
	DepthMin    *float64
	DepthMax    *float64
	SortBy      string
	Page        int
	PageSize    int
}

// SuggestionsParams are the parameters of the suggestions procedure.
type SuggestionsParams struct {
	AccountID      int64
	PartialTerm    string
	MaxSuggestions int
}

// FilterOptionsParams are the parameters of the filter-options procedure.
type FilterOptionsParams struct {
	AccountID  int64
	Categories []string
	PriceMin   *float64
	PriceMax   *float64
	Materials  []string
	Colors     []string
	Styles     []string
}

// AlternativesParams are the parameters of the alternatives procedure.
type AlternativesParams struct {
	AccountID      int64
	SearchTerm     string
	MaxSuggestions int
	MaxProducts    int
}

// HistoryCreateParams are the parameters of the history create procedure.
type HistoryCreateParams struct {
	AccountID   int64
	SearchTerm  string
	Filters     *string
	ResultCount int
}

// ProductRow is one row of the product search result set. TotalResults,
// TotalPages and CurrentPage repeat the same values on every row; callers
// read them from the first row only.
type ProductRow struct {
	ID           int64
	ProductCode  string
	Name         string
	Description  *string
	Category     *string
	Material     *string
	Color        *string
	Style        *string
	Price        float64
	Height       *float64
	Width        *float64
	Depth        *float64
	DateCreated  time.Time
	TotalResults int
	TotalPages   int
	CurrentPage  int
}

// SuggestionRow is one row of the suggestions result set.
type SuggestionRow struct {
	Suggestion string
	Type       string
	Priority   int
}

// PriceRangeRow is the single row of the price range result set.
type PriceRangeRow struct {
	MinPrice float64
	MaxPrice float64
}

// DimensionRangesRow is the single row of the dimension ranges result set.
type DimensionRangesRow struct {
	MinHeight *float64
	MaxHeight *float64
	MinWidth  *float64
	MaxWidth  *float64
	MinDepth  *float64
	MaxDepth  *float64
}

// FilterOptionsResult is the unpacked six-set result of the filter-options
// procedure, in positional order.
type FilterOptionsResult struct {
	Categories      []string
	Materials       []string
	Colors          []string
	Styles          []string
	PriceRange      PriceRangeRow
	DimensionRanges DimensionRangesRow
}

// AlternativesResult is the unpacked two-set result of the alternatives
// procedure.
type AlternativesResult struct {
	Suggestions     []string
	RelatedProducts []ProductRow
}

// HistoryRow is one row of the history list result set.
type HistoryRow struct {
	ID          int64
	SearchTerm  string
	Filters     *string
	ResultCount int
	DateCreated time.Time
}

// BusinessError is a rule violation raised inside the engine. The engine
// signals these with a dedicated error code and a caller-facing message;
// handlers surface the message verbatim with HTTP 400.
type BusinessError struct {
	Message string
}

func (e *BusinessError) Error() string {
	return e.Message
}

// ResultShapeError reports a procedure that returned a different number of
// result sets than its contract declares. This always indicates a deploy
// mismatch between the service and the engine, never bad user input.
type ResultShapeError struct {
	Procedure string
	Want      int
	Got       int
}

func (e *ResultShapeError) Error() string {
	return fmt.Sprintf("procedure %s returned %d result sets, want %d", e.Procedure, e.Got, e.Want)
}
