// Package memory implements the engine contract in memory over a small
// seeded furniture catalog. It exists for local development and for
// deterministic tests; it reproduces the wire contract of the real engine,
// including per-row pagination metadata and positional result sets.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/movelaria/search-service/internal/domain"
	"github.com/movelaria/search-service/internal/engine"
)

// product is a catalog entry. Zero-valued optional fields are surfaced as
// NULL (nil pointers) like the real engine does.
type product struct {
	ID          int64
	ProductCode string
	Name        string
	Description string
	Category    string
	Material    string
	Color       string
	Style       string
	Price       float64
	Height      float64
	Width       float64
	Depth       float64
	DateCreated time.Time
}

// Engine is the in-memory engine. Thread-safe via sync.RWMutex.
type Engine struct {
	mu            sync.RWMutex
	products      []product
	synonyms      map[string][]string
	history       map[int64][]engine.HistoryRow
	nextHistoryID int64
}

// New creates an in-memory engine seeded with the demo furniture catalog.
func New() *Engine {
	return &Engine{
		products:      seedCatalog(),
		synonyms:      seedSynonyms(),
		history:       make(map[int64][]engine.HistoryRow),
		nextHistoryID: 1,
	}
}

// NewEmpty creates an in-memory engine without the seeded catalog.
func NewEmpty() *Engine {
	return &Engine{
		synonyms:      seedSynonyms(),
		history:       make(map[int64][]engine.HistoryRow),
		nextHistoryID: 1,
	}
}

// Load replaces the catalog contents.
func (e *Engine) Load(products []Product) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.products = make([]product, 0, len(products))
	for _, p := range products {
		e.products = append(e.products, product(p))
	}
}

// Product is the exported catalog entry shape accepted by Load.
type Product struct {
	ID          int64
	ProductCode string
	Name        string
	Description string
	Category    string
	Material    string
	Color       string
	Style       string
	Price       float64
	Height      float64
	Width       float64
	Depth       float64
	DateCreated time.Time
}

// ProductSearch mirrors the search procedure: filter, sort, paginate, and
// embed the pagination metadata on every returned row.
func (e *Engine) ProductSearch(_ context.Context, params engine.ProductSearchParams) ([]engine.ProductRow, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var matched []product
	for _, p := range e.products {
		if e.matches(p, params) {
			matched = append(matched, p)
		}
	}

	sortProducts(matched, params.SortBy)

	total := len(matched)
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	page := params.Page
	if page < 1 {
		page = 1
	}

	totalPages := (total + pageSize - 1) / pageSize

	offset := (page - 1) * pageSize
	if offset > total {
		offset = total
	}
	end := offset + pageSize
	if end > total {
		end = total
	}

	rows := make([]engine.ProductRow, 0, end-offset)
	for _, p := range matched[offset:end] {
		row := toRow(p)
		row.TotalResults = total
		row.TotalPages = totalPages
		row.CurrentPage = page
		rows = append(rows, row)
	}
	return rows, nil
}

// Suggestions returns prefix and substring matches over product names,
// categories, and the synonym table, ranked by type.
func (e *Engine) Suggestions(_ context.Context, params engine.SuggestionsParams) ([]engine.SuggestionRow, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	term := strings.ToLower(strings.TrimSpace(params.PartialTerm))
	seen := make(map[string]bool)
	var suggestions []engine.SuggestionRow

	add := func(text, kind string, priority int) {
		key := strings.ToLower(text)
		if seen[key] {
			return
		}
		seen[key] = true
		suggestions = append(suggestions, engine.SuggestionRow{Suggestion: text, Type: kind, Priority: priority})
	}

	for _, p := range e.products {
		if strings.Contains(strings.ToLower(p.Name), term) {
			add(p.Name, domain.SuggestionTypeProduct, 100)
		}
	}
	for _, p := range e.products {
		if p.Category != "" && strings.Contains(strings.ToLower(p.Category), term) {
			add(p.Category, domain.SuggestionTypeCategory, 80)
		}
	}
	for word, alts := range e.synonyms {
		if !strings.Contains(word, term) {
			continue
		}
		for _, alt := range alts {
			add(alt, domain.SuggestionTypeSynonym, 60)
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Priority > suggestions[j].Priority
	})

	if params.MaxSuggestions > 0 && len(suggestions) > params.MaxSuggestions {
		suggestions = suggestions[:params.MaxSuggestions]
	}
	return suggestions, nil
}

// FilterOptions returns the distinct facet values and ranges for the catalog
// narrowed by the currently applied filters.
func (e *Engine) FilterOptions(_ context.Context, params engine.FilterOptionsParams) (*engine.FilterOptionsResult, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var scoped []product
	for _, p := range e.products {
		if !matchList(params.Categories, p.Category) {
			continue
		}
		if !matchList(params.Materials, p.Material) {
			continue
		}
		if !matchList(params.Colors, p.Color) {
			continue
		}
		if !matchList(params.Styles, p.Style) {
			continue
		}
		if params.PriceMin != nil && p.Price < *params.PriceMin {
			continue
		}
		if params.PriceMax != nil && p.Price > *params.PriceMax {
			continue
		}
		scoped = append(scoped, p)
	}

	result := &engine.FilterOptionsResult{
		Categories: distinct(scoped, func(p product) string { return p.Category }),
		Materials:  distinct(scoped, func(p product) string { return p.Material }),
		Colors:     distinct(scoped, func(p product) string { return p.Color }),
		Styles:     distinct(scoped, func(p product) string { return p.Style }),
	}

	for i, p := range scoped {
		if i == 0 || p.Price < result.PriceRange.MinPrice {
			result.PriceRange.MinPrice = p.Price
		}
		if i == 0 || p.Price > result.PriceRange.MaxPrice {
			result.PriceRange.MaxPrice = p.Price
		}
		accumulateRange(&result.DimensionRanges.MinHeight, &result.DimensionRanges.MaxHeight, p.Height)
		accumulateRange(&result.DimensionRanges.MinWidth, &result.DimensionRanges.MaxWidth, p.Width)
		accumulateRange(&result.DimensionRanges.MinDepth, &result.DimensionRanges.MaxDepth, p.Depth)
	}

	return result, nil
}

// Alternatives returns synonym-based alternative terms and related products
// for a term that produced no results.
func (e *Engine) Alternatives(_ context.Context, params engine.AlternativesParams) (*engine.AlternativesResult, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	term := strings.ToLower(strings.TrimSpace(params.SearchTerm))

	suggestions := []string{}
	for word, alts := range e.synonyms {
		if strings.Contains(term, word) {
			suggestions = append(suggestions, alts...)
		}
	}
	sort.Strings(suggestions)
	if params.MaxSuggestions > 0 && len(suggestions) > params.MaxSuggestions {
		suggestions = suggestions[:params.MaxSuggestions]
	}

	// Related products: loose match on any word of the term, falling back
	// to the newest catalog entries.
	var related []product
	words := strings.Fields(term)
	for _, p := range e.products {
		haystack := strings.ToLower(p.Name + " " + p.Description + " " + p.Category)
		for _, w := range words {
			if len(w) >= 3 && strings.Contains(haystack, w) {
				related = append(related, p)
				break
			}
		}
	}
	if len(related) == 0 {
		related = append(related, e.products...)
		sortProducts(related, domain.SortNewest)
	}
	if params.MaxProducts > 0 && len(related) > params.MaxProducts {
		related = related[:params.MaxProducts]
	}

	rows := make([]engine.ProductRow, 0, len(related))
	for _, p := range related {
		rows = append(rows, toRow(p))
	}

	return &engine.AlternativesResult{Suggestions: suggestions, RelatedProducts: rows}, nil
}

// HistoryCreate records a search, enforcing the same rules the procedure does.
func (e *Engine) HistoryCreate(_ context.Context, params engine.HistoryCreateParams) (int64, error) {
	term := strings.TrimSpace(params.SearchTerm)
	if term == "" {
		return 0, &engine.BusinessError{Message: "Termo de busca é obrigatório"}
	}
	if len([]rune(term)) > 100 {
		return 0, &engine.BusinessError{Message: "Termo de busca excede o tamanho máximo"}
	}
	if params.ResultCount < 0 {
		return 0, &engine.BusinessError{Message: "Quantidade de resultados inválida"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextHistoryID
	e.nextHistoryID++

	e.history[params.AccountID] = append(e.history[params.AccountID], engine.HistoryRow{
		ID:          id,
		SearchTerm:  term,
		Filters:     params.Filters,
		ResultCount: params.ResultCount,
		DateCreated: time.Now().UTC(),
	})
	return id, nil
}

// HistoryList returns the most recent entries for the account, newest first.
func (e *Engine) HistoryList(_ context.Context, accountID int64, maxResults int) ([]engine.HistoryRow, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	entries := e.history[accountID]
	out := make([]engine.HistoryRow, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i])
		if maxResults > 0 && len(out) >= maxResults {
			break
		}
	}
	return out, nil
}

// matches checks a product against all search filters.
func (e *Engine) matches(p product, params engine.ProductSearchParams) bool {
	if params.ProductCode != nil && *params.ProductCode != "" {
		if !strings.EqualFold(p.ProductCode, *params.ProductCode) {
			return false
		}
	}

	if params.SearchTerm != nil {
		term := strings.ToLower(strings.TrimSpace(*params.SearchTerm))
		if term != "" && !e.termMatches(p, term) {
			return false
		}
	}

	if !matchList(params.Categories, p.Category) {
		return false
	}
	if !matchList(params.Materials, p.Material) {
		return false
	}
	if !matchList(params.Colors, p.Color) {
		return false
	}
	if !matchList(params.Styles, p.Style) {
		return false
	}

	if params.PriceMin != nil && p.Price < *params.PriceMin {
		return false
	}
	if params.PriceMax != nil && p.Price > *params.PriceMax {
		return false
	}

	if !inRange(p.Height, params.HeightMin, params.HeightMax) {
		return false
	}
	if !inRange(p.Width, params.WidthMin, params.WidthMax) {
		return false
	}
	if !inRange(p.Depth, params.DepthMin, params.DepthMax) {
		return false
	}

	return true
}

// termMatches checks the term against name, description, and category, with
// synonym expansion.
func (e *Engine) termMatches(p product, term string) bool {
	haystack := strings.ToLower(p.Name + " " + p.Description + " " + p.Category)
	if strings.Contains(haystack, term) {
		return true
	}
	for _, alt := range e.synonyms[term] {
		if strings.Contains(haystack, strings.ToLower(alt)) {
			return true
		}
	}
	return false
}

func matchList(wanted []string, value string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, w := range wanted {
		if strings.EqualFold(w, value) {
			return true
		}
	}
	return false
}

func inRange(value float64, min, max *float64) bool {
	if value == 0 {
		// Products without the dimension are not excluded by dimension filters.
		return true
	}
	if min != nil && value < *min {
		return false
	}
	if max != nil && value > *max {
		return false
	}
	return true
}

func sortProducts(products []product, sortBy string) {
	switch sortBy {
	case domain.SortNameAsc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	case domain.SortNameDesc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Name > products[j].Name })
	case domain.SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price < products[j].Price })
	case domain.SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price > products[j].Price })
	case domain.SortNewest:
		sort.SliceStable(products, func(i, j int) bool { return products[i].DateCreated.After(products[j].DateCreated) })
	default:
		// SortRelevance: keep catalog order.
	}
}

func distinct(products []product, field func(product) string) []string {
	seen := make(map[string]bool)
	values := []string{}
	for _, p := range products {
		v := field(p)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

func accumulateRange(min, max **float64, value float64) {
	if value == 0 {
		return
	}
	v := value
	if *min == nil || v < **min {
		*min = &v
	}
	w := value
	if *max == nil || w > **max {
		*max = &w
	}
}

func toRow(p product) engine.ProductRow {
	row := engine.ProductRow{
		ID:          p.ID,
		ProductCode: p.ProductCode,
		Name:        p.Name,
		Price:       p.Price,
		DateCreated: p.DateCreated,
	}
	row.Description = optStr(p.Description)
	row.Category = optStr(p.Category)
	row.Material = optStr(p.Material)
	row.Color = optStr(p.Color)
	row.Style = optStr(p.Style)
	row.Height = optFloat(p.Height)
	row.Width = optFloat(p.Width)
	row.Depth = optFloat(p.Depth)
	return row
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optFloat(f float64) *float64 {
	if f == 0 {
		return nil
	}
	return &f
}
