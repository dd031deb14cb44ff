package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/recipebox/internal/models"
	"github.com/desertthunder/recipebox/internal/notify"
	"github.com/desertthunder/recipebox/internal/repositories"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ListView ViewState = iota
	SearchView
	DetailView
	ConfirmView
)

// RecipeStore is the part of the recipe repository the TUI uses. [*repositories.RecipeRepository] satisfies it.
type RecipeStore interface {
	repositories.RecipeSearcher
	List(ctx context.Context, who *models.Identity) ([]*models.Recipe, error)
	Delete(ctx context.Context, who *models.Identity, id string) (bool, error)
}

var _ RecipeStore = (*repositories.RecipeRepository)(nil)

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	who      *models.Identity
	store    RecipeStore
	searcher *repositories.Searcher
	states   chan repositories.SearchState
	toasts   <-chan notify.Notification

	view        ViewState
	returnTo    ViewState // view behind DetailView
	confirmFrom ViewState // view behind ConfirmView
	width       int
	height      int

	recipes  list.Model
	results  list.Model
	input    textinput.Model
	search   repositories.SearchState
	selected *models.Recipe
	loading  bool

	toast    *notify.Notification
	toastSeq int
	err      error

	help help.Model
	keys keyMap
}

// NewModel creates a TUI for who's recipes.
//
// Searches are debounced by delay. Notifications sent on toasts are shown in the footer; toasts may be nil.
func NewModel(ctx context.Context, who *models.Identity, store RecipeStore, delay time.Duration, toasts <-chan notify.Notification) *Model {
	states := make(chan repositories.SearchState, 1)

	input := textinput.New()
	input.Prompt = "Search: "
	input.Placeholder = "title or keywords"
	input.CharLimit = 100

	return &Model{
		ctx:      ctx,
		who:      who,
		store:    store,
		searcher: repositories.NewSearcher(store, delay, latest(states)),
		states:   states,
		toasts:   toasts,
		view:     ListView,
		recipes:  newRecipeList(fmt.Sprintf("Recipes of %s", who)),
		results:  newRecipeList("Results"),
		input:    input,
		search:   repositories.SearchState{Results: []*models.Recipe{}},
		loading:  true,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init fetches the recipe list and starts listening for search states and notifications.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchRecipes(), m.waitForSearch(), m.waitForToast())
}

// Close stops the live searcher. Call it after the program exits.
func (m *Model) Close() {
	m.searcher.Close()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recipes.SetSize(msg.Width-4, msg.Height-6)
		m.results.SetSize(msg.Width-4, msg.Height-8)
		m.input.Width = msg.Width - 12
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ListView:
			return m.handleListKeys(msg)
		case SearchView:
			return m.handleSearchKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}

	case recipesFetchedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		return m, m.recipes.SetItems(recipeItems(msg.recipes))

	case recipeDeletedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = m.confirmFrom
			return m, nil
		}
		m.selected = nil
		m.view = ListView
		m.input.Reset()
		m.input.Blur()
		m.searcher.Search(m.ctx, m.who, "")
		return m, m.fetchRecipes()

	case searchStateMsg:
		st := repositories.SearchState(msg)
		if st.Query == m.input.Value() {
			m.search = st
			m.results.ResetSelected()
			return m, tea.Batch(m.results.SetItems(recipeItems(st.Results)), m.waitForSearch())
		}
		return m, m.waitForSearch()

	case toastMsg:
		n := notify.Notification(msg)
		m.toast = &n
		m.toastSeq++
		return m, tea.Batch(m.waitForToast(), clearToastAfter(m.toastSeq))

	case clearToastMsg:
		if msg.seq == m.toastSeq {
			m.toast = nil
		}
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case ListView:
		body = m.renderList()
	case SearchView:
		body = m.renderSearch()
	case DetailView:
		body = m.renderDetail()
	case ConfirmView:
		body = m.renderConfirm()
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderFooter())
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if r := selectedRecipe(m.recipes); r != nil {
			m.open(r, ListView)
		}
		return m, nil
	case key.Matches(msg, m.keys.search):
		m.view = SearchView
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.del):
		if r := selectedRecipe(m.recipes); r != nil {
			m.selected = r
			m.confirmFrom = ListView
			m.view = ConfirmView
		}
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		m.loading = true
		return m, m.fetchRecipes()
	}

	var cmd tea.Cmd
	m.recipes, cmd = m.recipes.Update(msg)
	return m, cmd
}

// handleSearchKeys sends printable keys to the input. Only arrow keys move the result selection.
func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.input.Reset()
		m.input.Blur()
		m.searcher.Search(m.ctx, m.who, "")
		m.view = ListView
		return m, nil
	case tea.KeyEnter:
		if r := selectedRecipe(m.results); r != nil {
			m.input.Blur()
			m.open(r, SearchView)
		}
		return m, nil
	case tea.KeyUp, tea.KeyDown:
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.searcher.Search(m.ctx, m.who, m.input.Value())
	}
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = m.returnTo
		if m.view == SearchView {
			return m, m.input.Focus()
		}
		return m, nil
	case key.Matches(msg, m.keys.del):
		m.confirmFrom = DetailView
		m.view = ConfirmView
		return m, nil
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		return m, m.deleteRecipe(m.selected.ID)
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.view = m.confirmFrom
		return m, nil
	}
	return m, nil
}

func (m *Model) open(r *models.Recipe, from ViewState) {
	m.selected = r
	m.returnTo = from
	m.view = DetailView
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ListView:
		m.recipes, cmd = m.recipes.Update(msg)
	case SearchView:
		var listCmd, inputCmd tea.Cmd
		m.results, listCmd = m.results.Update(msg)
		m.input, inputCmd = m.input.Update(msg)
		cmd = tea.Batch(listCmd, inputCmd)
	}
	return m, cmd
}

func (m *Model) fetchRecipes() tea.Cmd {
	return func() tea.Msg {
		recipes, err := m.store.List(m.ctx, m.who)
		return recipesFetchedMsg{recipes: recipes, err: err}
	}
}

func (m *Model) deleteRecipe(id string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.store.Delete(m.ctx, m.who, id)
		return recipeDeletedMsg{id: id, err: err}
	}
}

func (m *Model) waitForSearch() tea.Cmd {
	return func() tea.Msg {
		return searchStateMsg(<-m.states)
	}
}

func (m *Model) waitForToast() tea.Cmd {
	if m.toasts == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-m.toasts
		if !ok {
			return nil
		}
		return toastMsg(n)
	}
}

func (m *Model) renderList() string {
	if m.loading {
		return styles.title.Render("Loading recipes...")
	}
	return m.recipes.View()
}

func (m *Model) renderSearch() string {
	var status string
	switch {
	case m.search.Loading:
		status = styles.help.Render("Searching...")
	case m.search.Err != nil:
		status = styles.err.Render(fmt.Sprintf("Search failed: %v", m.search.Err))
	case strings.TrimSpace(m.input.Value()) == "":
		status = styles.help.Render("Type to search your recipes")
	case len(m.search.Results) == 0:
		status = styles.warn.Render("No recipes match")
	default:
		return fmt.Sprintf("%s\n\n%s", m.input.View(), m.results.View())
	}
	return fmt.Sprintf("%s\n\n%s", m.input.View(), status)
}

func (m *Model) renderDetail() string {
	r := m.selected
	var b strings.Builder

	b.WriteString(styles.title.Render(r.Title))
	b.WriteString("\n")
	b.WriteString(styles.help.Render("Created " + r.FormattedDate()))
	b.WriteString("\n")

	if keywords := r.KeywordList(); len(keywords) > 0 {
		chips := make([]string, len(keywords))
		for i, k := range keywords {
			chips[i] = styles.chip.Render(k)
		}
		b.WriteString("\n" + strings.Join(chips, " ") + "\n")
	}

	b.WriteString("\n")
	steps := r.StepsList()
	if len(steps) == 0 {
		b.WriteString(styles.warn.Render("No steps"))
	}
	for i, step := range steps {
		b.WriteString(fmt.Sprintf("%s %s\n", styles.step.Render(fmt.Sprintf("%d.", i+1)), step))
	}

	return b.String()
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Delete '%s'?", m.selected.Title))
	return fmt.Sprintf("%s\n%s\n", title, styles.warn.Render("This cannot be undone."))
}

func (m *Model) renderFooter() string {
	var keys []key.Binding
	switch m.view {
	case ListView:
		keys = []key.Binding{m.keys.enter, m.keys.search, m.keys.del, m.keys.refresh, m.keys.quit}
	case SearchView:
		keys = []key.Binding{m.keys.enter, m.keys.back}
	case DetailView:
		keys = []key.Binding{m.keys.back, m.keys.del, m.keys.quit}
	case ConfirmView:
		keys = []key.Binding{m.keys.yes, m.keys.no}
	}

	lines := []string{}
	switch {
	case m.toast != nil:
		lines = append(lines, notify.Render(*m.toast))
	case m.err != nil:
		lines = append(lines, styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	lines = append(lines, m.help.ShortHelpView(keys))
	return "\n" + strings.Join(lines, "\n")
}
