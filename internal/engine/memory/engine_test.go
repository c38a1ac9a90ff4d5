package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movelaria/search-service/internal/domain"
	"github.com/movelaria/search-service/internal/engine"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func TestProductSearch_TermAndMetadata(t *testing.T) {
	eng := New()

	rows, err := eng.ProductSearch(context.Background(), engine.ProductSearchParams{
		AccountID:  1,
		SearchTerm: strPtr("sofá"),
		SortBy:     domain.SortRelevance,
		Page:       1,
		PageSize:   24,
	})

	require.NoError(t, err)
	require.NotEmpty(t, rows)
	for _, row := range rows {
		assert.Equal(t, len(rows), row.TotalResults)
		assert.Equal(t, 1, row.TotalPages)
		assert.Equal(t, 1, row.CurrentPage)
	}
}

func TestProductSearch_SynonymExpansion(t *testing.T) {
	eng := New()

	// "divã" is not in any product text; the synonym table maps it to sofá.
	rows, err := eng.ProductSearch(context.Background(), engine.ProductSearchParams{
		AccountID:  1,
		SearchTerm: strPtr("divã"),
		SortBy:     domain.SortRelevance,
		Page:       1,
		PageSize:   24,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, rows)
}

func TestProductSearch_Pagination(t *testing.T) {
	eng := New()

	page1, err := eng.ProductSearch(context.Background(), engine.ProductSearchParams{
		AccountID: 1,
		SortBy:    domain.SortNameAsc,
		Page:      1,
		PageSize:  12,
	})
	require.NoError(t, err)
	require.Len(t, page1, 12)
	assert.Equal(t, 12, page1[0].TotalResults)
	assert.Equal(t, 1, page1[0].TotalPages)

	// Page beyond the result set yields no rows.
	page2, err := eng.ProductSearch(context.Background(), engine.ProductSearchParams{
		AccountID: 1,
		SortBy:    domain.SortNameAsc,
		Page:      2,
		PageSize:  12,
	})
	require.NoError(t, err)
	assert.Empty(t, page2)
}

func TestProductSearch_Filters(t *testing.T) {
	eng := New()

	rows, err := eng.ProductSearch(context.Background(), engine.ProductSearchParams{
		AccountID:  1,
		Categories: []string{"Sofás"},
		PriceMax:   f64Ptr(3000),
		SortBy:     domain.SortPriceAsc,
		Page:       1,
		PageSize:   24,
	})

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "SOF-001", rows[0].ProductCode)
}

func TestProductSearch_MissingDimensionNotExcluded(t *testing.T) {
	eng := NewEmpty()
	eng.Load([]Product{
		{ID: 1, ProductCode: "ESP-100", Name: "Espelho Adnet", Category: "Espelhos", Price: 299.90, Height: 60, Width: 60},
		{ID: 2, ProductCode: "EST-100", Name: "Estante Alta", Category: "Estantes", Price: 899.90, Height: 180, Width: 80, Depth: 35},
	})

	// The mirror has no depth; a depth filter must not exclude it.
	rows, err := eng.ProductSearch(context.Background(), engine.ProductSearchParams{
		AccountID: 1,
		DepthMin:  f64Ptr(30),
		DepthMax:  f64Ptr(40),
		SortBy:    domain.SortNameAsc,
		Page:      1,
		PageSize:  24,
	})

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ESP-100", rows[0].ProductCode)
	assert.Equal(t, "EST-100", rows[1].ProductCode)
}

func TestProductSearch_ProductCode(t *testing.T) {
	eng := New()

	rows, err := eng.ProductSearch(context.Background(), engine.ProductSearchParams{
		AccountID:   1,
		ProductCode: strPtr("mes-001"),
		SortBy:      domain.SortRelevance,
		Page:        1,
		PageSize:    24,
	})

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Mesa de Jantar Lisboa", rows[0].Name)
}

func TestProductSearch_SortOrders(t *testing.T) {
	eng := New()

	byPrice, err := eng.ProductSearch(context.Background(), engine.ProductSearchParams{
		AccountID: 1, SortBy: domain.SortPriceAsc, Page: 1, PageSize: 48,
	})
	require.NoError(t, err)
	for i := 1; i < len(byPrice); i++ {
		assert.LessOrEqual(t, byPrice[i-1].Price, byPrice[i].Price)
	}

	byNewest, err := eng.ProductSearch(context.Background(), engine.ProductSearchParams{
		AccountID: 1, SortBy: domain.SortNewest, Page: 1, PageSize: 48,
	})
	require.NoError(t, err)
	for i := 1; i < len(byNewest); i++ {
		assert.False(t, byNewest[i-1].DateCreated.Before(byNewest[i].DateCreated))
	}
}

func TestProductSearch_NoResults(t *testing.T) {
	eng := New()

	rows, err := eng.ProductSearch(context.Background(), engine.ProductSearchParams{
		AccountID:  1,
		SearchTerm: strPtr("zzzzzz"),
		SortBy:     domain.SortRelevance,
		Page:       1,
		PageSize:   24,
	})

	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSuggestions(t *testing.T) {
	eng := New()

	suggestions, err := eng.Suggestions(context.Background(), engine.SuggestionsParams{
		AccountID:      1,
		PartialTerm:    "sof",
		MaxSuggestions: 10,
	})

	require.NoError(t, err)
	require.NotEmpty(t, suggestions)
	assert.LessOrEqual(t, len(suggestions), 10)
	// Product suggestions rank above categories and synonyms.
	assert.Equal(t, domain.SuggestionTypeProduct, suggestions[0].Type)
	for i := 1; i < len(suggestions); i++ {
		assert.GreaterOrEqual(t, suggestions[i-1].Priority, suggestions[i].Priority)
	}
}

func TestSuggestions_MaxCap(t *testing.T) {
	eng := New()

	suggestions, err := eng.Suggestions(context.Background(), engine.SuggestionsParams{
		AccountID:      1,
		PartialTerm:    "a",
		MaxSuggestions: 3,
	})

	require.NoError(t, err)
	assert.LessOrEqual(t, len(suggestions), 3)
}

func TestFilterOptions_Unfiltered(t *testing.T) {
	eng := New()

	result, err := eng.FilterOptions(context.Background(), engine.FilterOptionsParams{AccountID: 1})

	require.NoError(t, err)
	assert.Contains(t, result.Categories, "Sofás")
	assert.Contains(t, result.Materials, "Madeira")
	assert.Contains(t, result.Colors, "Azul")
	assert.Contains(t, result.Styles, "Industrial")
	assert.Equal(t, 189.90, result.PriceRange.MinPrice)
	assert.Equal(t, 3199.00, result.PriceRange.MaxPrice)
	require.NotNil(t, result.DimensionRanges.MinHeight)
	require.NotNil(t, result.DimensionRanges.MaxWidth)
}

func TestFilterOptions_ProgressiveRefinement(t *testing.T) {
	eng := New()

	result, err := eng.FilterOptions(context.Background(), engine.FilterOptionsParams{
		AccountID:  1,
		Categories: []string{"Sofás"},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"Sofás"}, result.Categories)
	assert.ElementsMatch(t, []string{"Suede", "Veludo"}, result.Materials)
	assert.Equal(t, 2499.90, result.PriceRange.MinPrice)
	assert.Equal(t, 3199.00, result.PriceRange.MaxPrice)
}

func TestAlternatives(t *testing.T) {
	eng := New()

	result, err := eng.Alternatives(context.Background(), engine.AlternativesParams{
		AccountID:      1,
		SearchTerm:     "sofa futurista",
		MaxSuggestions: 5,
		MaxProducts:    8,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.Suggestions)
	assert.LessOrEqual(t, len(result.Suggestions), 5)
	assert.NotEmpty(t, result.RelatedProducts)
	assert.LessOrEqual(t, len(result.RelatedProducts), 8)
}

func TestAlternatives_FallsBackToNewest(t *testing.T) {
	eng := New()

	result, err := eng.Alternatives(context.Background(), engine.AlternativesParams{
		AccountID:      1,
		SearchTerm:     "zzzzzz",
		MaxSuggestions: 5,
		MaxProducts:    4,
	})

	require.NoError(t, err)
	assert.Empty(t, result.Suggestions)
	require.Len(t, result.RelatedProducts, 4)
}

func TestHistoryCreateAndList(t *testing.T) {
	eng := New()
	ctx := context.Background()

	id1, err := eng.HistoryCreate(ctx, engine.HistoryCreateParams{
		AccountID: 7, SearchTerm: "sofá", ResultCount: 2,
	})
	require.NoError(t, err)

	id2, err := eng.HistoryCreate(ctx, engine.HistoryCreateParams{
		AccountID: 7, SearchTerm: "mesa", Filters: strPtr(`{"categories":["Mesas"]}`), ResultCount: 2,
	})
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	entries, err := eng.HistoryList(ctx, 7, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Newest first.
	assert.Equal(t, "mesa", entries[0].SearchTerm)
	assert.Equal(t, "sofá", entries[1].SearchTerm)

	// Other accounts see nothing.
	other, err := eng.HistoryList(ctx, 8, 10)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestHistoryList_CapsResults(t *testing.T) {
	eng := New()
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		_, err := eng.HistoryCreate(ctx, engine.HistoryCreateParams{
			AccountID: 7, SearchTerm: "busca", ResultCount: i,
		})
		require.NoError(t, err)
	}

	entries, err := eng.HistoryList(ctx, 7, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 10)
	assert.Equal(t, 14, entries[0].ResultCount)
}

func TestHistoryCreate_Invalid(t *testing.T) {
	eng := New()
	ctx := context.Background()

	_, err := eng.HistoryCreate(ctx, engine.HistoryCreateParams{AccountID: 7, SearchTerm: "   "})
	var bizErr *engine.BusinessError
	require.ErrorAs(t, err, &bizErr)

	_, err = eng.HistoryCreate(ctx, engine.HistoryCreateParams{AccountID: 7, SearchTerm: "ok", ResultCount: -1})
	require.ErrorAs(t, err, &bizErr)
}
