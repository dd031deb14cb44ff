package repositories

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/recipebox/internal/debounce"
	"github.com/desertthunder/recipebox/internal/models"
)

// DefaultSearchDelay is the quiet period before a typed query is sent.
const DefaultSearchDelay = 300 * time.Millisecond

// RecipeSearcher runs an immediate search. [*RecipeRepository] satisfies it.
type RecipeSearcher interface {
	Search(ctx context.Context, who *models.Identity, query string) ([]*models.Recipe, error)
}

var _ RecipeSearcher = (*RecipeRepository)(nil)

// SearchState is what a live search view renders.
type SearchState struct {
	Query   string
	Results []*models.Recipe
	Loading bool
	Err     error
}

// Searcher debounces queries typed into a search box. Only the last query of a burst reaches the backend,
// and results of superseded queries are discarded when they arrive.
type Searcher struct {
	repo      RecipeSearcher
	debouncer *debounce.Debouncer
	onChange  func(SearchState)

	mu     sync.Mutex
	state  SearchState
	closed bool
}

// NewSearcher creates a [Searcher]. A non-positive delay uses [DefaultSearchDelay].
//
// onChange, when set, receives every new state. It is called with the searcher locked
// and must not call back into it.
func NewSearcher(repo RecipeSearcher, delay time.Duration, onChange func(SearchState)) *Searcher {
	if delay <= 0 {
		delay = DefaultSearchDelay
	}
	return &Searcher{
		repo:      repo,
		debouncer: debounce.New(delay),
		onChange:  onChange,
		state:     SearchState{Results: []*models.Recipe{}},
	}
}

// Search records query as the current query and schedules it.
//
// A blank query or nil identity clears the results immediately, without a backend
// call, and supersedes any search still pending or running.
func (s *Searcher) Search(ctx context.Context, who *models.Identity, query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.state.Query = query
	q := strings.TrimSpace(query)

	if q == "" || who == nil {
		s.debouncer.Supersede()
		s.state.Results = []*models.Recipe{}
		s.state.Loading = false
		s.state.Err = nil
		s.emitLocked()
		return
	}

	s.state.Loading = true
	s.state.Err = nil
	s.debouncer.Schedule(ctx, func(ctx context.Context, tok debounce.Token) {
		results, err := s.repo.Search(ctx, who, q)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || !tok.Current() {
			return
		}

		s.state.Loading = false
		s.state.Err = err
		if err != nil || results == nil {
			results = []*models.Recipe{}
		}
		s.state.Results = results
		s.emitLocked()
	})
	s.emitLocked()
}

// State returns a snapshot of the current state.
func (s *Searcher) State() SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Results = make([]*models.Recipe, len(s.state.Results))
	copy(st.Results, s.state.Results)
	return st
}

// Close cancels pending and running searches. Later calls and late results are ignored.
func (s *Searcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.debouncer.Stop()
}

func (s *Searcher) emitLocked() {
	if s.onChange != nil {
		s.onChange(s.state)
	}
}
