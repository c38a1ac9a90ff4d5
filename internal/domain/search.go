package domain

import (
	"time"
)

// Sort options for search results. The wire values are fixed by the search
// procedures and surface unchanged in the API.
const (
	SortRelevance = "relevancia"
	SortNameAsc   = "nome_asc"
	SortNameDesc  = "nome_desc"
	SortPriceAsc  = "preco_asc"
	SortPriceDesc = "preco_desc"
	SortNewest    = "data_cadastro_desc"
)

// ValidSortOptions returns the list of valid sort options.
func ValidSortOptions() []string {
	return []string{SortRelevance, SortNameAsc, SortNameDesc, SortPriceAsc, SortPriceDesc, SortNewest}
}

// IsValidSort checks whether the given sort string is a valid sort option.
func IsValidSort(sort string) bool {
	for _, s := range ValidSortOptions() {
		if s == sort {
			return true
		}
	}
	return false
}

// Page size options.
const DefaultPageSize = 24

// ValidPageSizes returns the allowed page sizes.
func ValidPageSizes() []int {
	return []int{12, 24, 36, 48}
}

// IsValidPageSize checks whether the given page size is allowed.
func IsValidPageSize(size int) bool {
	for _, s := range ValidPageSizes() {
		if s == size {
			return true
		}
	}
	return false
}

// View modes for the result list presentation.
const (
	ViewModeGrid = "grade"
	ViewModeList = "lista"
)

// Suggestion types returned by the suggestion procedures.
const (
	SuggestionTypeProduct  = "product"
	SuggestionTypeCategory = "category"
	SuggestionTypeSynonym  = "synonym"
)

// DimensionFilters holds optional dimension bounds in centimeters.
type DimensionFilters struct {
	HeightMin *float64 `json:"heightMin,omitempty"`
	HeightMax *float64 `json:"heightMax,omitempty"`
	WidthMin  *float64 `json:"widthMin,omitempty"`
	WidthMax  *float64 `json:"widthMax,omitempty"`
	DepthMin  *float64 `json:"depthMin,omitempty"`
	DepthMax  *float64 `json:"depthMax,omitempty"`
}

// SearchFilters holds all optional filter criteria for a product search.
// Absent filters stay nil and are forwarded to the engine as NULL.
type SearchFilters struct {
	Categories []string         `json:"categories,omitempty"`
	PriceMin   *float64         `json:"priceMin,omitempty"`
	PriceMax   *float64         `json:"priceMax,omitempty"`
	Materials  []string         `json:"materials,omitempty"`
	Colors     []string         `json:"colors,omitempty"`
	Styles     []string         `json:"styles,omitempty"`
	Dimensions DimensionFilters `json:"dimensions,omitempty"`
}

// SearchQuery holds all validated parameters for a product search.
type SearchQuery struct {
	AccountID   int64         `json:"-"`
	SearchTerm  *string       `json:"searchTerm,omitempty"`
	ProductCode *string       `json:"productCode,omitempty"`
	Filters     SearchFilters `json:"filters"`
	SortBy      string        `json:"sortBy"`
	Page        int           `json:"page"`
	PageSize    int           `json:"pageSize"`
}

// Product is a single search result row. The engine embeds the pagination
// metadata on every row; the service lifts it into SearchResultPage and it
// is not serialized here.
type Product struct {
	ID          int64     `json:"idProduct"`
	ProductCode string    `json:"productCode"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Material    *string   `json:"material"`
	Color       *string   `json:"color"`
	Style       *string   `json:"style"`
	Price       float64   `json:"price"`
	Height      *float64  `json:"height"`
	Width       *float64  `json:"width"`
	Depth       *float64  `json:"depth"`
	DateCreated time.Time `json:"dateCreated"`
}

// SearchResultPage is the paginated search response.
type SearchResultPage struct {
	Products     []Product `json:"products"`
	TotalResults int       `json:"totalResults"`
	PageNumber   int       `json:"pageNumber"`
	PageSize     int       `json:"pageSize"`
	TotalPages   int       `json:"totalPages"`
}

// Suggestion is a single autocomplete suggestion.
type Suggestion struct {
	Suggestion string `json:"suggestion"`
	Type       string `json:"type"`
	Priority   int    `json:"priority"`
}

// PriceRange is the catalog-wide price range for the current refinement.
type PriceRange struct {
	MinPrice float64 `json:"minPrice"`
	MaxPrice float64 `json:"maxPrice"`
}

// DimensionRanges holds the catalog-wide dimension ranges for the current
// refinement. Bounds are nil when no product in scope carries the dimension.
type DimensionRanges struct {
	MinHeight *float64 `json:"minHeight"`
	MaxHeight *float64 `json:"maxHeight"`
	MinWidth  *float64 `json:"minWidth"`
	MaxWidth  *float64 `json:"maxWidth"`
	MinDepth  *float64 `json:"minDepth"`
	MaxDepth  *float64 `json:"maxDepth"`
}

// FilterOptions is the set of available filter values for progressive
// refinement, assembled from the six positional result sets of the
// filter-options procedure.
type FilterOptions struct {
	Categories      []string        `json:"categories"`
	Materials       []string        `json:"materials"`
	Colors          []string        `json:"colors"`
	Styles          []string        `json:"styles"`
	PriceRange      PriceRange      `json:"priceRange"`
	DimensionRanges DimensionRanges `json:"dimensionRanges"`
}

// FilterOptionsQuery holds the currently applied filters for progressive
// refinement of the available options.
type FilterOptionsQuery struct {
	AccountID  int64
	Categories []string
	PriceMin   *float64
	PriceMax   *float64
	Materials  []string
	Colors     []string
	Styles     []string
}

// SearchAlternatives holds alternative terms and related products for
// no-results scenarios.
type SearchAlternatives struct {
	Suggestions     []string  `json:"suggestions"`
	RelatedProducts []Product `json:"relatedProducts"`
}

// SearchHistoryEntry is a recorded search.
type SearchHistoryEntry struct {
	ID          int64     `json:"idSearchHistory"`
	SearchTerm  string    `json:"searchTerm"`
	Filters     *string   `json:"filters"`
	ResultCount int       `json:"resultCount"`
	DateCreated time.Time `json:"dateCreated"`
}
