package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/recipebox/internal/backend"
	tu "github.com/desertthunder/recipebox/internal/testing"
)

// stateLog collects searcher states and lets tests wait for a settled one.
type stateLog struct {
	mu     sync.Mutex
	states []SearchState
	ch     chan SearchState
}

func newStateLog() *stateLog {
	return &stateLog{ch: make(chan SearchState, 64)}
}

func (l *stateLog) record(s SearchState) {
	l.mu.Lock()
	l.states = append(l.states, s)
	l.mu.Unlock()
	l.ch <- s
}

// waitSettled returns the first state that finished loading.
func (l *stateLog) waitSettled(t *testing.T) SearchState {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case s := <-l.ch:
			if !s.Loading {
				return s
			}
		case <-timeout:
			t.Fatal("search never settled")
			return SearchState{}
		}
	}
}

func TestSearcher(t *testing.T) {
	ctx := context.Background()

	t.Run("burst of keystrokes sends one query for the last", func(t *testing.T) {
		repo, counting, _ := setupRecipeRepo(t)
		mustCreate(t, repo, alice, "Chocolate Cake")
		mustCreate(t, repo, alice, "Banana Bread")

		log := newStateLog()
		searcher := NewSearcher(repo, 50*time.Millisecond, log.record)
		defer searcher.Close()

		for _, q := range []string{"c", "ch", "cho"} {
			searcher.Search(ctx, alice, q)
		}

		state := log.waitSettled(t)
		if state.Query != "cho" || state.Err != nil {
			t.Fatalf("unexpected state: %+v", state)
		}
		if len(state.Results) != 1 || state.Results[0].Title != "Chocolate Cake" {
			t.Errorf("unexpected results: %+v", state.Results)
		}

		time.Sleep(100 * time.Millisecond)
		queries := counting.Queries()
		if len(queries) != 1 {
			t.Fatalf("expected exactly one backend query, got %d", len(queries))
		}
		if term := tu.SearchTerm(queries[0]); term != "cho" {
			t.Errorf("expected query for cho, got %q", term)
		}
	})

	t.Run("query is visible before the search runs", func(t *testing.T) {
		repo, _, _ := setupRecipeRepo(t)
		searcher := NewSearcher(repo, time.Hour, nil)
		defer searcher.Close()

		searcher.Search(ctx, alice, "soup")
		state := searcher.State()
		if state.Query != "soup" || !state.Loading {
			t.Errorf("expected pending search for soup, got %+v", state)
		}
	})

	t.Run("blank query clears synchronously and cancels pending work", func(t *testing.T) {
		repo, counting, _ := setupRecipeRepo(t)
		mustCreate(t, repo, alice, "Chocolate Cake")

		searcher := NewSearcher(repo, 30*time.Millisecond, nil)
		defer searcher.Close()

		searcher.Search(ctx, alice, "choc")
		searcher.Search(ctx, alice, "  ")

		state := searcher.State()
		if state.Loading || len(state.Results) != 0 || state.Err != nil {
			t.Errorf("expected cleared state, got %+v", state)
		}

		time.Sleep(80 * time.Millisecond)
		if counting.Calls("select") != 0 {
			t.Errorf("expected no backend calls, got %d", counting.Calls("select"))
		}
	})

	t.Run("empty results are never nil", func(t *testing.T) {
		repo, _, _ := setupRecipeRepo(t)
		mustCreate(t, repo, alice, "Chocolate Cake")

		log := newStateLog()
		searcher := NewSearcher(repo, 10*time.Millisecond, log.record)
		defer searcher.Close()

		searcher.Search(ctx, alice, "")
		if searcher.State().Results == nil {
			t.Error("expected non-nil results after a blank query")
		}
		<-log.ch

		searcher.Search(ctx, alice, "lasagne")
		if settled := log.waitSettled(t); len(settled.Results) != 0 {
			t.Fatalf("expected no matches, got %+v", settled.Results)
		}
		if state := searcher.State(); state.Results == nil || len(state.Results) != 0 {
			t.Errorf("expected empty non-nil results, got %#v", state.Results)
		}
	})

	t.Run("signed out callers get no results", func(t *testing.T) {
		repo, counting, _ := setupRecipeRepo(t)
		searcher := NewSearcher(repo, time.Millisecond, nil)
		defer searcher.Close()

		searcher.Search(ctx, nil, "choc")
		time.Sleep(20 * time.Millisecond)

		if state := searcher.State(); state.Loading || len(state.Results) != 0 {
			t.Errorf("expected empty state, got %+v", state)
		}
		if counting.Total() != 0 {
			t.Errorf("expected no backend calls, got %d", counting.Total())
		}
	})

	t.Run("results of a superseded search are discarded", func(t *testing.T) {
		repo, counting, _ := setupRecipeRepo(t)
		mustCreate(t, repo, alice, "Chocolate Cake")
		mustCreate(t, repo, alice, "Banana Bread")

		started := make(chan struct{}, 1)
		release := make(chan struct{})
		var once sync.Once
		counting.BeforeSelect = func(ctx context.Context, q backend.Query) error {
			if tu.SearchTerm(q) != "choc" {
				return nil
			}
			once.Do(func() { started <- struct{}{} })
			<-release
			return nil
		}

		log := newStateLog()
		searcher := NewSearcher(repo, time.Millisecond, log.record)
		defer searcher.Close()

		searcher.Search(ctx, alice, "choc")
		<-started

		searcher.Search(ctx, alice, "banana")
		settled := log.waitSettled(t)
		close(release)
		time.Sleep(50 * time.Millisecond)

		if settled.Query != "banana" || len(settled.Results) != 1 || settled.Results[0].Title != "Banana Bread" {
			t.Fatalf("unexpected settled state: %+v", settled)
		}

		final := searcher.State()
		if final.Query != "banana" || len(final.Results) != 1 || final.Results[0].Title != "Banana Bread" {
			t.Errorf("stale results replaced the latest ones: %+v", final)
		}
	})

	t.Run("errors are reported in state", func(t *testing.T) {
		repo, counting, _ := setupRecipeRepo(t)
		counting.Err = &backend.Error{Op: "select", Table: "recipes", Message: "offline"}

		log := newStateLog()
		searcher := NewSearcher(repo, time.Millisecond, log.record)
		defer searcher.Close()

		searcher.Search(ctx, alice, "choc")
		state := log.waitSettled(t)
		if state.Err == nil || len(state.Results) != 0 {
			t.Errorf("expected error state, got %+v", state)
		}
	})

	t.Run("Close drops late results", func(t *testing.T) {
		repo, counting, _ := setupRecipeRepo(t)
		mustCreate(t, repo, alice, "Chocolate Cake")

		started := make(chan struct{})
		release := make(chan struct{})
		counting.BeforeSelect = func(ctx context.Context, q backend.Query) error {
			close(started)
			<-release
			return nil
		}

		var mu sync.Mutex
		var calls int
		searcher := NewSearcher(repo, time.Millisecond, func(SearchState) {
			mu.Lock()
			calls++
			mu.Unlock()
		})

		searcher.Search(ctx, alice, "choc")
		<-started
		searcher.Close()
		close(release)
		time.Sleep(50 * time.Millisecond)

		mu.Lock()
		defer mu.Unlock()
		if calls != 1 {
			t.Errorf("expected only the loading state to be emitted, got %d", calls)
		}

		searcher.Search(ctx, alice, "more")
		if searcher.State().Query != "choc" {
			t.Error("Search after Close should be ignored")
		}
	})

	t.Run("default delay", func(t *testing.T) {
		searcher := NewSearcher(nil, 0, nil)
		defer searcher.Close()
		if searcher.debouncer.Delay() != DefaultSearchDelay {
			t.Errorf("expected default delay, got %v", searcher.debouncer.Delay())
		}
		if state := searcher.State(); state.Results == nil {
			t.Error("expected empty non-nil results initially")
		}
	})
}
