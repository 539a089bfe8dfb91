// Package dashboard is the interactive terminal view of a user's todos.
package dashboard

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/biosecret/go-todo/client"
	"github.com/biosecret/go-todo/models"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrNotLoggedIn is returned by Run when there is no usable session.
var ErrNotLoggedIn = errors.New("not logged in")

const (
	fetchFailed  = "Failed to fetch todos"
	addFailed    = "Failed to add todo"
	updateFailed = "Failed to update todo"
	deleteFailed = "Failed to delete todo"
)

// API is the part of client.Client the dashboard calls.
type API interface {
	Me() (*models.PublicUser, error)
	ListTodos() ([]models.Todo, error)
	CreateTodo(title, description string) (*models.Todo, error)
	UpdateTodo(id string, patch models.TodoPatch) (*models.Todo, error)
	DeleteTodo(id string) error
}

// Sessions loads and clears the stored token.
type Sessions interface {
	Load() (*client.Session, error)
	Clear() error
}

type (
	userMsg struct {
		user *models.PublicUser
		err  error
	}
	todosMsg struct {
		todos []models.Todo
		err   error
	}
	createdMsg struct {
		todo *models.Todo
		err  error
	}
	updatedMsg struct {
		todo *models.Todo
		err  error
	}
	deletedMsg struct {
		id  string
		err error
	}
	loggedOutMsg struct{ err error }
)

// todoItem adapts a todo to bubbles/list.Item.
type todoItem struct{ todo models.Todo }

func (i todoItem) Title() string       { return i.todo.Title }
func (i todoItem) Description() string { return i.todo.Description }
func (i todoItem) FilterValue() string { return i.todo.Title }

type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(todoItem)
	if !ok {
		return
	}

	box := mutedStyle.Render(boxUnchecked)
	text := it.todo.Title
	if it.todo.Completed {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}
	line := box + " " + text
	if it.todo.Description != "" {
		line += "  " + mutedStyle.Render(it.todo.Description)
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render(">") + " "
	}
	fmt.Fprintln(w, prefix+line)
}

// Model is the bubbletea model behind the dashboard. Every change is applied
// only after the server answers.
type Model struct {
	api      API
	sessions Sessions
	keys     keyMap

	user  *models.PublicUser
	todos []models.Todo
	list  list.Model

	title       textinput.Model
	description textinput.Model
	inputOpen   bool

	loading bool
	adding  bool
	err     string

	loggedOut bool
}

// New builds a dashboard that starts by loading the user and their todos.
func New(api API, sessions Sessions) Model {
	keys := defaultKeyMap()

	l := list.New(nil, itemDelegate{}, 80, 14)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.KeyMap.Quit.SetEnabled(false)
	l.AdditionalShortHelpKeys = keys.listKeys
	l.AdditionalFullHelpKeys = keys.listKeys

	title := textinput.New()
	title.Prompt = "Title: "
	title.Placeholder = "What needs doing?"
	title.CharLimit = 200

	description := textinput.New()
	description.Prompt = "Notes: "
	description.Placeholder = "optional"
	description.CharLimit = 500

	return Model{
		api:         api,
		sessions:    sessions,
		keys:        keys,
		list:        l,
		title:       title,
		description: description,
		loading:     true,
	}
}

// Run starts the dashboard for the stored session.
func Run(c *client.Client, sessions Sessions, opts ...tea.ProgramOption) error {
	sess, err := sessions.Load()
	if err != nil {
		return err
	}
	if sess == nil || sess.Expired(time.Now()) {
		return ErrNotLoggedIn
	}
	c.SetToken(sess.Token)

	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	_, err = tea.NewProgram(New(c, sessions), opts...).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchUser, m.fetchTodos)
}

func (m Model) fetchUser() tea.Msg {
	user, err := m.api.Me()
	return userMsg{user: user, err: err}
}

func (m Model) fetchTodos() tea.Msg {
	todos, err := m.api.ListTodos()
	return todosMsg{todos: todos, err: err}
}

func (m Model) createTodo(title, description string) tea.Cmd {
	return func() tea.Msg {
		todo, err := m.api.CreateTodo(title, description)
		return createdMsg{todo: todo, err: err}
	}
}

func (m Model) toggleTodo(t models.Todo) tea.Cmd {
	return func() tea.Msg {
		completed := !t.Completed
		todo, err := m.api.UpdateTodo(t.ID, models.TodoPatch{Completed: &completed})
		return updatedMsg{todo: todo, err: err}
	}
}

func (m Model) deleteTodo(id string) tea.Cmd {
	return func() tea.Msg {
		return deletedMsg{id: id, err: m.api.DeleteTodo(id)}
	}
}

func (m Model) logout() tea.Msg {
	return loggedOutMsg{err: m.sessions.Clear()}
}

// errorText prefers the server's message; without a response it falls back
// to the per-action message.
func errorText(err error, fallback string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case userMsg:
		// The header just hides the user; the todo fetch reports errors.
		m.user = msg.user
		if msg.err != nil {
			m.user = nil
		}
		return m, nil

	case todosMsg:
		m.loading = false
		if msg.err != nil {
			m.err = errorText(msg.err, fetchFailed)
			return m, nil
		}
		m.todos = msg.todos
		return m, m.syncList()

	case createdMsg:
		m.adding = false
		if msg.err != nil {
			m.err = errorText(msg.err, addFailed)
			return m, nil
		}
		m.todos = append(m.todos[:len(m.todos):len(m.todos)], *msg.todo)
		m.closeInput()
		return m, m.syncList()

	case updatedMsg:
		if msg.err != nil {
			m.err = errorText(msg.err, updateFailed)
			return m, nil
		}
		todos := make([]models.Todo, len(m.todos))
		for i, t := range m.todos {
			if t.ID == msg.todo.ID {
				t = *msg.todo
			}
			todos[i] = t
		}
		m.todos = todos
		return m, m.syncList()

	case deletedMsg:
		if msg.err != nil {
			m.err = errorText(msg.err, deleteFailed)
			return m, nil
		}
		kept := make([]models.Todo, 0, len(m.todos))
		for _, t := range m.todos {
			if t.ID != msg.id {
				kept = append(kept, t)
			}
		}
		m.todos = kept
		return m, m.syncList()

	case loggedOutMsg:
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.loggedOut = true
		return m, tea.Quit

	case tea.KeyMsg:
		if m.inputOpen {
			return m.updateInput(msg)
		}
		if m.list.FilterState() != list.Filtering {
			if model, cmd, handled := m.handleKey(msg); handled {
				return model, cmd
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Add):
		m.inputOpen = true
		m.title.SetValue("")
		m.description.SetValue("")
		m.description.Blur()
		return m, m.title.Focus(), true

	case key.Matches(msg, m.keys.Toggle):
		t, ok := m.selected()
		if !ok {
			return m, nil, true
		}
		m.err = ""
		return m, m.toggleTodo(t), true

	case key.Matches(msg, m.keys.Delete):
		t, ok := m.selected()
		if !ok {
			return m, nil, true
		}
		m.err = ""
		return m, m.deleteTodo(t.ID), true

	case key.Matches(msg, m.keys.Refresh):
		m.err = ""
		m.loading = true
		return m, m.fetchTodos, true

	case key.Matches(msg, m.keys.Logout):
		return m, m.logout, true
	}
	return m, nil, false
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		m.closeInput()
		return m, nil

	case key.Matches(msg, m.keys.NextField):
		if m.title.Focused() {
			m.title.Blur()
			return m, m.description.Focus()
		}
		m.description.Blur()
		return m, m.title.Focus()

	case key.Matches(msg, m.keys.Submit):
		if m.adding {
			return m, nil
		}
		m.err = ""
		title := strings.TrimSpace(m.title.Value())
		if title == "" {
			m.err = "Please add a title"
			return m, nil
		}
		m.adding = true
		return m, m.createTodo(title, strings.TrimSpace(m.description.Value()))
	}

	var cmd tea.Cmd
	if m.description.Focused() {
		m.description, cmd = m.description.Update(msg)
	} else {
		m.title, cmd = m.title.Update(msg)
	}
	return m, cmd
}

func (m *Model) closeInput() {
	m.inputOpen = false
	m.title.SetValue("")
	m.description.SetValue("")
	m.title.Blur()
	m.description.Blur()
}

func (m *Model) syncList() tea.Cmd {
	items := make([]list.Item, 0, len(m.todos))
	for _, t := range m.todos {
		items = append(items, todoItem{todo: t})
	}
	return m.list.SetItems(items)
}

func (m Model) selected() (models.Todo, bool) {
	it, ok := m.list.SelectedItem().(todoItem)
	if !ok {
		return models.Todo{}, false
	}
	return it.todo, true
}

// counts is recomputed from the todos on every render.
func (m Model) counts() (total, completed, pending int) {
	for _, t := range m.todos {
		if t.Completed {
			completed++
		}
	}
	total = len(m.todos)
	return total, completed, total - completed
}

// LoggedOut reports whether the session was cleared before quitting.
func (m Model) LoggedOut() bool {
	return m.loggedOut
}

func (m Model) View() string {
	if m.loggedOut {
		return ""
	}

	var b strings.Builder

	header := titleStyle.Render("Todos")
	if m.user != nil {
		header += "  " + mutedStyle.Render(fmt.Sprintf("%s <%s>", m.user.Name, m.user.Email))
	}
	total, completed, pending := m.counts()
	fmt.Fprintf(&b, "%s\n%s %d  %s %d  %s %d\n\n", header,
		accentStyle.Render("Total"), total,
		successStyle.Render("✔"), completed,
		pendingStyle.Render("•"), pending,
	)

	switch {
	case m.loading:
		b.WriteString(mutedStyle.Render("Loading todos..."))
	case len(m.todos) == 0:
		b.WriteString(mutedStyle.Render("No todos yet."))
		b.WriteString("\n\n" + helpStyle.Render("a add • L logout • q quit"))
	default:
		b.WriteString(m.list.View())
	}

	if m.inputOpen {
		heading := "Add new todo"
		if m.adding {
			heading += " " + mutedStyle.Render("(saving...)")
		}
		form := heading + "\n" + m.title.View() + "\n" + m.description.View()
		b.WriteString("\n" + panelStyle.Render(form))
	}

	if m.err != "" {
		b.WriteString("\n" + errorStyle.Render("✖ "+m.err))
	}

	return panelStyle.Render(b.String())
}
