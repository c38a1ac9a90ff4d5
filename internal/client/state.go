package client

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/movelaria/search-service/internal/domain"
)

const localHistoryMax = 10

// SavedSearch is a named search a user favorited, persisted across sessions.
type SavedSearch struct {
	Name    string               `json:"name"`
	Term    string               `json:"term"`
	Filters domain.SearchFilters `json:"filters"`
	SortBy  string               `json:"sortBy"`
}

// PersistedState is the subset of the search state that survives sessions.
// Everything else (term, filters, pagination, results) is ephemeral.
type PersistedState struct {
	History   []string      `json:"history"`
	Favorites []SavedSearch `json:"favorites"`
}

// Searcher issues product searches. *Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, query domain.SearchQuery, sessionID string) (*domain.SearchResultPage, error)
}

// State is the single source of truth for a storefront search UI: current
// term, filter selection, sort key, view mode, pagination, and the persisted
// history and favorites. Mutations are synchronous and local; results are
// always a deterministic function of the current state, so there is no
// optimistic update or conflict resolution.
//
// Each mutation bumps an internal sequence number. Responses are applied
// through that tag, so a slow response from a superseded state is discarded
// instead of overwriting newer results (last-write-wins on the rendered
// state).
type State struct {
	mu sync.Mutex

	term     string
	filters  domain.SearchFilters
	sortBy   string
	viewMode string
	pageSize int
	page     int

	seq     uint64
	results *domain.SearchResultPage

	history   []string
	favorites []SavedSearch
}

// NewState creates a search state with default sort, view mode, and paging.
func NewState() *State {
	return &State{
		sortBy:   domain.SortRelevance,
		viewMode: domain.ViewModeGrid,
		pageSize: domain.DefaultPageSize,
		page:     1,
	}
}

// --- Mutations ---

// SetTerm changes the search term and resets to the first page.
func (s *State) SetTerm(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.term = strings.TrimSpace(term)
	s.resetPageLocked()
}

// SetFilters replaces the filter selection and resets to the first page.
func (s *State) SetFilters(filters domain.SearchFilters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = filters
	s.resetPageLocked()
}

// UpdateFilters applies fn to the current filters and resets to the first page.
func (s *State) UpdateFilters(fn func(*domain.SearchFilters)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.filters)
	s.resetPageLocked()
}

// SetSort changes the sort key and resets to the first page. Unknown sort
// keys fall back to relevance.
func (s *State) SetSort(sortBy string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !domain.IsValidSort(sortBy) {
		sortBy = domain.SortRelevance
	}
	s.sortBy = sortBy
	s.resetPageLocked()
}

// SetPageSize changes the page size and resets to the first page. Sizes
// outside the allowed set fall back to the default.
func (s *State) SetPageSize(size int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !domain.IsValidPageSize(size) {
		size = domain.DefaultPageSize
	}
	s.pageSize = size
	s.resetPageLocked()
}

// SetPage navigates to a page. Explicit page navigation leaves term,
// filters, and sort untouched.
func (s *State) SetPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page < 1 {
		page = 1
	}
	s.page = page
	s.seq++
}

// SetViewMode switches between grid and list rendering. A pure presentation
// toggle: it does not reset the page and does not trigger a re-fetch.
func (s *State) SetViewMode(mode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mode != domain.ViewModeGrid && mode != domain.ViewModeList {
		return
	}
	s.viewMode = mode
}

func (s *State) resetPageLocked() {
	s.page = 1
	s.seq++
}

// --- Reads ---

// Term returns the current search term.
func (s *State) Term() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term
}

// Filters returns the current filter selection.
func (s *State) Filters() domain.SearchFilters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// Page returns the current page number.
func (s *State) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// PageSize returns the current page size.
func (s *State) PageSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageSize
}

// SortBy returns the current sort key.
func (s *State) SortBy() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortBy
}

// ViewMode returns the current view mode.
func (s *State) ViewMode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewMode
}

// Results returns the last applied result page, or nil before the first
// successful fetch.
func (s *State) Results() *domain.SearchResultPage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results
}

// Query builds the search query for the current state.
func (s *State) Query() domain.SearchQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryLocked()
}

func (s *State) queryLocked() domain.SearchQuery {
	q := domain.SearchQuery{
		Filters:  s.filters,
		SortBy:   s.sortBy,
		Page:     s.page,
		PageSize: s.pageSize,
	}
	if s.term != "" {
		term := s.term
		q.SearchTerm = &term
	}
	return q
}

// --- Fetch coordination ---

// BeginRequest snapshots the current query and returns the sequence tag it
// was issued for. Pass the tag to ApplyResults when the response arrives.
func (s *State) BeginRequest() (domain.SearchQuery, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryLocked(), s.seq
}

// ApplyResults installs a result page if the state has not changed since the
// request was issued. Stale responses are discarded and reported as false.
func (s *State) ApplyResults(tag uint64, page *domain.SearchResultPage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tag != s.seq {
		return false
	}
	s.results = page
	return true
}

// Refresh issues a search for the current state through the searcher and
// applies the results, unless the state changed while the request was in
// flight. Records the term in local history on success.
func (s *State) Refresh(ctx context.Context, searcher Searcher, sessionID string) error {
	query, tag := s.BeginRequest()

	page, err := searcher.Search(ctx, query, sessionID)
	if err != nil {
		return err
	}

	if s.ApplyResults(tag, page) && query.SearchTerm != nil {
		s.RecordSearch(*query.SearchTerm)
	}
	return nil
}

// --- History & favorites ---

// RecordSearch pushes a term to the front of the local history, deduplicated
// and capped at the ten most recent.
func (s *State) RecordSearch(term string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]string, 0, len(s.history)+1)
	history = append(history, term)
	for _, t := range s.history {
		if !strings.EqualFold(t, term) {
			history = append(history, t)
		}
	}
	if len(history) > localHistoryMax {
		history = history[:localHistoryMax]
	}
	s.history = history
}

// History returns the local search history, newest first.
func (s *State) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// SaveFavorite stores the current term, filters, and sort under a name.
// Saving under an existing name replaces it.
func (s *State) SaveFavorite(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := SavedSearch{
		Name:    name,
		Term:    s.term,
		Filters: s.filters,
		SortBy:  s.sortBy,
	}
	for i, f := range s.favorites {
		if f.Name == name {
			s.favorites[i] = saved
			return
		}
	}
	s.favorites = append(s.favorites, saved)
}

// ApplyFavorite restores a saved search into the current state and resets to
// the first page. Returns false if no favorite has that name.
func (s *State) ApplyFavorite(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.favorites {
		if f.Name == name {
			s.term = f.Term
			s.filters = f.Filters
			s.sortBy = f.SortBy
			s.resetPageLocked()
			return true
		}
	}
	return false
}

// RemoveFavorite deletes a saved search by name.
func (s *State) RemoveFavorite(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, f := range s.favorites {
		if f.Name == name {
			s.favorites = append(s.favorites[:i], s.favorites[i+1:]...)
			return
		}
	}
}

// Favorites returns the saved searches in insertion order.
func (s *State) Favorites() []SavedSearch {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SavedSearch, len(s.favorites))
	copy(out, s.favorites)
	return out
}

// --- Persistence ---

// Export serializes the persisted fields (history and favorites) for
// storage between sessions.
func (s *State) Export() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.Marshal(PersistedState{
		History:   s.history,
		Favorites: s.favorites,
	})
}

// Restore loads previously exported persisted fields. Ephemeral fields are
// left untouched.
func (s *State) Restore(data []byte) error {
	var persisted PersistedState
	if err := json.Unmarshal(data, &persisted); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(persisted.History) > localHistoryMax {
		persisted.History = persisted.History[:localHistoryMax]
	}
	s.history = persisted.History
	s.favorites = persisted.Favorites
	return nil
}
