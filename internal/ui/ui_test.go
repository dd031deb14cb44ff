package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/recipebox/internal/models"
	"github.com/desertthunder/recipebox/internal/notify"
	"github.com/desertthunder/recipebox/internal/repositories"
	"github.com/desertthunder/recipebox/internal/shared"
)

type fakeStore struct {
	mu        sync.Mutex
	recipes   []*models.Recipe
	lists     int
	searches  []string
	deleteErr error
}

func (s *fakeStore) List(context.Context, *models.Identity) ([]*models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	return append([]*models.Recipe(nil), s.recipes...), nil
}

func (s *fakeStore) Search(_ context.Context, _ *models.Identity, q string) ([]*models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searches = append(s.searches, q)
	var out []*models.Recipe
	for _, r := range s.recipes {
		if strings.Contains(strings.ToLower(r.Title), strings.ToLower(q)) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) Delete(_ context.Context, _ *models.Identity, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return false, s.deleteErr
	}
	for i, r := range s.recipes {
		if r.ID == id {
			s.recipes = append(s.recipes[:i], s.recipes[i+1:]...)
			return true, nil
		}
	}
	return false, shared.ErrRecipeNotFound
}

func (s *fakeStore) listCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lists
}

func (s *fakeStore) searchQueries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.searches...)
}

func newFakeStore() *fakeStore {
	now := time.Date(2024, time.March, 5, 12, 0, 0, 0, time.Local)
	return &fakeStore{recipes: []*models.Recipe{
		{ID: "r2", Title: "Chocolate Cake", Steps: "Mix\nBake", CreatedAt: now, UserID: "u1"},
		{ID: "r1", Title: "Chili", Steps: "Brown\nSimmer", Keywords: strPtr("spicy, beans"), CreatedAt: now.Add(-time.Hour), UserID: "u1"},
	}}
}

func strPtr(s string) *string { return &s }

func setupModel(t *testing.T, store *fakeStore, toasts <-chan notify.Notification) *Model {
	t.Helper()
	m := NewModel(context.Background(), &models.Identity{ID: "u1", Email: "cook@example.com"}, store, 10*time.Millisecond, toasts)
	t.Cleanup(m.Close)

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m.Update(m.fetchRecipes()())
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(keyRunes(string(r)))
	}
}

// settle feeds search states to the model until one for query is no longer loading.
func settle(t *testing.T, m *Model, query string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st := <-m.states:
			m.Update(searchStateMsg(st))
			if st.Query == query && !st.Loading {
				return
			}
		case <-deadline:
			t.Fatalf("search for %q never settled", query)
		}
	}
}

func TestListView(t *testing.T) {
	t.Run("shows fetched recipes", func(t *testing.T) {
		req := require.New(t)
		m := setupModel(t, newFakeStore(), nil)

		req.Equal(ListView, m.view)
		req.Len(m.recipes.Items(), 2)
		view := m.View()
		req.Contains(view, "Chocolate Cake")
		req.Contains(view, "Chili")
	})

	t.Run("enter opens detail", func(t *testing.T) {
		req := require.New(t)
		m := setupModel(t, newFakeStore(), nil)

		m.Update(keyRunes("j"))
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		req.Equal(DetailView, m.view)
		req.Equal("r1", m.selected.ID)

		view := m.View()
		req.Contains(view, "1.")
		req.Contains(view, "Simmer")
		req.Contains(view, "spicy")
		req.Contains(view, "Mar")

		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		req.Equal(ListView, m.view)
	})

	t.Run("refresh refetches", func(t *testing.T) {
		req := require.New(t)
		store := newFakeStore()
		m := setupModel(t, store, nil)

		_, cmd := m.Update(keyRunes("r"))
		req.NotNil(cmd)
		m.Update(cmd())
		req.Equal(2, store.listCalls())
	})
}

func TestDeleteFlow(t *testing.T) {
	t.Run("confirm deletes then refetches", func(t *testing.T) {
		req := require.New(t)
		store := newFakeStore()
		m := setupModel(t, store, nil)

		m.Update(keyRunes("d"))
		req.Equal(ConfirmView, m.view)
		req.Contains(m.View(), "Delete 'Chocolate Cake'?")

		_, cmd := m.Update(keyRunes("y"))
		req.NotNil(cmd)
		msg := cmd()
		req.IsType(recipeDeletedMsg{}, msg)
		req.Equal(1, store.listCalls(), "no refetch before the delete completes")

		_, cmd = m.Update(msg)
		req.Equal(ListView, m.view)
		req.NotNil(cmd)
		m.Update(cmd())

		req.Equal(2, store.listCalls())
		req.Len(m.recipes.Items(), 1)
	})

	t.Run("cancel keeps the recipe", func(t *testing.T) {
		req := require.New(t)
		store := newFakeStore()
		m := setupModel(t, store, nil)

		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m.Update(keyRunes("d"))
		req.Equal(ConfirmView, m.view)

		m.Update(keyRunes("n"))
		req.Equal(DetailView, m.view)
		req.Len(store.recipes, 2)
	})

	t.Run("failure is shown and nothing is refetched", func(t *testing.T) {
		req := require.New(t)
		store := newFakeStore()
		store.deleteErr = errors.New("service down")
		m := setupModel(t, store, nil)

		m.Update(keyRunes("d"))
		_, cmd := m.Update(keyRunes("y"))
		_, next := m.Update(cmd())

		req.Nil(next)
		req.Equal(ListView, m.view)
		req.Contains(m.View(), "service down")
		req.Equal(1, store.listCalls())
	})
}

func TestSearchView(t *testing.T) {
	t.Run("only the last query of a burst runs", func(t *testing.T) {
		req := require.New(t)
		store := newFakeStore()
		m := setupModel(t, store, nil)

		m.Update(keyRunes("/"))
		req.Equal(SearchView, m.view)

		typeText(m, "cho")
		settle(t, m, "cho")

		req.Equal([]string{"cho"}, store.searchQueries())
		req.Len(m.results.Items(), 1)
		req.Contains(m.View(), "Chocolate Cake")
	})

	t.Run("q is typed, not quit", func(t *testing.T) {
		req := require.New(t)
		m := setupModel(t, newFakeStore(), nil)

		m.Update(keyRunes("/"))
		m.Update(keyRunes("q"))
		req.Equal("q", m.input.Value())
		req.Equal(SearchView, m.view)
	})

	t.Run("stale states are ignored", func(t *testing.T) {
		req := require.New(t)
		m := setupModel(t, newFakeStore(), nil)

		m.Update(keyRunes("/"))
		m.input.SetValue("chili")
		m.Update(searchStateMsg{Query: "ch", Results: newFakeStore().recipes})

		req.Empty(m.results.Items())
	})

	t.Run("no matches", func(t *testing.T) {
		req := require.New(t)
		m := setupModel(t, newFakeStore(), nil)

		m.Update(keyRunes("/"))
		typeText(m, "zz")
		settle(t, m, "zz")
		req.Contains(m.View(), "No recipes match")
	})

	t.Run("esc clears and returns to list", func(t *testing.T) {
		req := require.New(t)
		store := newFakeStore()
		m := setupModel(t, store, nil)

		m.Update(keyRunes("/"))
		typeText(m, "c")
		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		settle(t, m, "")

		req.Equal(ListView, m.view)
		req.Empty(m.input.Value())
		time.Sleep(30 * time.Millisecond)
		req.Empty(store.searchQueries(), "cleared query must not reach the store")
	})

	t.Run("enter opens a result and esc returns to search", func(t *testing.T) {
		req := require.New(t)
		m := setupModel(t, newFakeStore(), nil)

		m.Update(keyRunes("/"))
		typeText(m, "chi")
		settle(t, m, "chi")

		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		req.Equal(DetailView, m.view)
		req.Equal("Chili", m.selected.Title)

		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		req.Equal(SearchView, m.view)
	})
}

func TestToasts(t *testing.T) {
	req := require.New(t)
	ch := notify.NewChannel(4)
	m := setupModel(t, newFakeStore(), ch.C)

	ch.Notify(notify.Notification{Kind: notify.Success, Title: repositories.TitleDeleted, Message: "Recipe has been removed successfully"})

	msg := m.waitForToast()()
	_, cmd := m.Update(msg)
	req.NotNil(cmd)
	req.Contains(m.View(), repositories.TitleDeleted)

	m.Update(clearToastMsg{seq: m.toastSeq - 1})
	req.NotNil(m.toast, "an older timer must not clear a newer toast")

	m.Update(clearToastMsg{seq: m.toastSeq})
	req.Nil(m.toast)
	req.NotContains(m.View(), repositories.TitleDeleted)
}

func TestLatest(t *testing.T) {
	req := require.New(t)
	ch := make(chan repositories.SearchState, 1)
	publish := latest(ch)

	publish(repositories.SearchState{Query: "a"})
	publish(repositories.SearchState{Query: "ab"})
	publish(repositories.SearchState{Query: "abc"})

	req.Equal("abc", (<-ch).Query)
	req.Empty(ch)
}
