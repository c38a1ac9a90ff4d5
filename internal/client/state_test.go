package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movelaria/search-service/internal/domain"
)

func TestStateDefaults(t *testing.T) {
	s := NewState()

	assert.Equal(t, domain.SortRelevance, s.SortBy())
	assert.Equal(t, domain.ViewModeGrid, s.ViewMode())
	assert.Equal(t, domain.DefaultPageSize, s.PageSize())
	assert.Equal(t, 1, s.Page())
	assert.Nil(t, s.Results())
}

func TestStateTermChangeResetsPage(t *testing.T) {
	s := NewState()
	s.SetPage(3)
	require.Equal(t, 3, s.Page())

	s.SetTerm("sofá")

	assert.Equal(t, 1, s.Page())
	assert.Equal(t, "sofá", s.Term())
}

func TestStateFilterChangeResetsPage(t *testing.T) {
	s := NewState()
	s.SetPage(2)

	s.UpdateFilters(func(f *domain.SearchFilters) {
		f.Categories = []string{"Sofás"}
	})

	assert.Equal(t, 1, s.Page())
	assert.Equal(t, []string{"Sofás"}, s.Filters().Categories)
}

func TestStateSortChangeResetsPage(t *testing.T) {
	s := NewState()
	s.SetPage(2)

	s.SetSort(domain.SortPriceAsc)

	assert.Equal(t, 1, s.Page())
	assert.Equal(t, domain.SortPriceAsc, s.SortBy())
}

func TestStatePageSizeChangeResetsPage(t *testing.T) {
	s := NewState()
	s.SetPage(4)

	s.SetPageSize(48)

	assert.Equal(t, 1, s.Page())
	assert.Equal(t, 48, s.PageSize())
}

func TestStatePageNavigationKeepsEverythingElse(t *testing.T) {
	s := NewState()
	s.SetTerm("mesa")
	s.SetSort(domain.SortNameAsc)
	s.SetFilters(domain.SearchFilters{Categories: []string{"Mesas"}})

	s.SetPage(2)

	assert.Equal(t, 2, s.Page())
	assert.Equal(t, "mesa", s.Term())
	assert.Equal(t, domain.SortNameAsc, s.SortBy())
	assert.Equal(t, []string{"Mesas"}, s.Filters().Categories)
}

func TestStateInvalidSortFallsBackToRelevance(t *testing.T) {
	s := NewState()

	s.SetSort("price_asc")

	assert.Equal(t, domain.SortRelevance, s.SortBy())
}

func TestStateInvalidPageSizeFallsBackToDefault(t *testing.T) {
	s := NewState()

	s.SetPageSize(25)

	assert.Equal(t, domain.DefaultPageSize, s.PageSize())
}

func TestStateViewModeDoesNotResetPage(t *testing.T) {
	s := NewState()
	s.SetPage(3)

	s.SetViewMode(domain.ViewModeList)

	assert.Equal(t, 3, s.Page())
	assert.Equal(t, domain.ViewModeList, s.ViewMode())

	s.SetViewMode("carousel")
	assert.Equal(t, domain.ViewModeList, s.ViewMode())
}

func TestStateQueryReflectsState(t *testing.T) {
	s := NewState()
	s.SetTerm("poltrona")
	s.SetPageSize(12)
	s.SetPage(2)

	q := s.Query()

	require.NotNil(t, q.SearchTerm)
	assert.Equal(t, "poltrona", *q.SearchTerm)
	assert.Equal(t, 12, q.PageSize)
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, domain.SortRelevance, q.SortBy)
}

func TestStateStaleResponseDiscarded(t *testing.T) {
	s := NewState()
	s.SetTerm("sofá")

	_, tag := s.BeginRequest()

	// The user types again while the first request is in flight.
	s.SetTerm("sofá retrátil")
	_, newTag := s.BeginRequest()

	stale := &domain.SearchResultPage{TotalResults: 5}
	fresh := &domain.SearchResultPage{TotalResults: 2}

	// Out-of-order arrival: the fresh response lands first.
	assert.True(t, s.ApplyResults(newTag, fresh))
	assert.False(t, s.ApplyResults(tag, stale))
	assert.Equal(t, 2, s.Results().TotalResults)
}

func TestStateRefresh(t *testing.T) {
	s := NewState()
	s.SetTerm("sofá")

	searcher := &fakeSearcher{page: &domain.SearchResultPage{TotalResults: 3}}
	require.NoError(t, s.Refresh(context.Background(), searcher, "sess-1"))

	require.NotNil(t, s.Results())
	assert.Equal(t, 3, s.Results().TotalResults)
	assert.Equal(t, []string{"sofá"}, s.History())
	require.NotNil(t, searcher.lastQuery.SearchTerm)
	assert.Equal(t, "sofá", *searcher.lastQuery.SearchTerm)
	assert.Equal(t, "sess-1", searcher.lastSession)
}

type fakeSearcher struct {
	page        *domain.SearchResultPage
	lastQuery   domain.SearchQuery
	lastSession string
}

func (f *fakeSearcher) Search(_ context.Context, query domain.SearchQuery, sessionID string) (*domain.SearchResultPage, error) {
	f.lastQuery = query
	f.lastSession = sessionID
	return f.page, nil
}

func TestStateHistoryDedupesAndCaps(t *testing.T) {
	s := NewState()

	terms := []string{"sofá", "mesa", "cadeira", "sofá", "estante", "rack",
		"poltrona", "cama", "escrivaninha", "banqueta", "aparador", "espelho"}
	for _, term := range terms {
		s.RecordSearch(term)
	}

	history := s.History()
	assert.Len(t, history, localHistoryMax)
	assert.Equal(t, "espelho", history[0])

	// "sofá" was re-searched mid-sequence, so it moved forward and appears once.
	count := 0
	for _, term := range history {
		if term == "sofá" {
			count++
		}
	}
	assert.LessOrEqual(t, count, 1)
}

func TestStateFavorites(t *testing.T) {
	s := NewState()
	s.SetTerm("sofá")
	s.SetFilters(domain.SearchFilters{Categories: []string{"Sofás"}})
	s.SetSort(domain.SortPriceDesc)
	s.SaveFavorite("sofás caros")

	s.SetTerm("mesa")
	s.SetFilters(domain.SearchFilters{})
	s.SetSort(domain.SortRelevance)
	s.SetPage(2)

	require.True(t, s.ApplyFavorite("sofás caros"))
	assert.Equal(t, "sofá", s.Term())
	assert.Equal(t, []string{"Sofás"}, s.Filters().Categories)
	assert.Equal(t, domain.SortPriceDesc, s.SortBy())
	assert.Equal(t, 1, s.Page())

	assert.False(t, s.ApplyFavorite("inexistente"))

	s.RemoveFavorite("sofás caros")
	assert.Empty(t, s.Favorites())
}

func TestStateSaveFavoriteReplacesSameName(t *testing.T) {
	s := NewState()
	s.SetTerm("sofá")
	s.SaveFavorite("favorito")

	s.SetTerm("mesa")
	s.SaveFavorite("favorito")

	favorites := s.Favorites()
	require.Len(t, favorites, 1)
	assert.Equal(t, "mesa", favorites[0].Term)
}

func TestStateExportRestore(t *testing.T) {
	s := NewState()
	s.RecordSearch("sofá")
	s.RecordSearch("mesa")
	s.SetTerm("cadeira")
	s.SaveFavorite("cadeiras")

	data, err := s.Export()
	require.NoError(t, err)

	restored := NewState()
	require.NoError(t, restored.Restore(data))

	assert.Equal(t, []string{"mesa", "sofá"}, restored.History())
	require.Len(t, restored.Favorites(), 1)
	assert.Equal(t, "cadeira", restored.Favorites()[0].Term)

	// Ephemeral fields are not persisted.
	assert.Empty(t, restored.Term())
	assert.Equal(t, 1, restored.Page())
}
