// Package ui provides the interactive terminal interface.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"todosync/internal/engine"
	"todosync/internal/todo"
)

// snapInterval is how often the view re-reads engine state, so banner
// expiry and in-flight markers stay fresh between operations.
const snapInterval = 500 * time.Millisecond

// inputMode tracks what the text input is being used for.
type inputMode int

const (
	modeList inputMode = iota
	modeAdd
	modeRename
)

type tickMsg time.Time

// opDoneMsg signals that an engine operation settled.
type opDoneMsg struct{}

// Run starts the TUI over the given engine.
func Run(ctx context.Context, eng *engine.Engine, ownerID int) error {
	model := newModel(ctx, eng, ownerID)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// Model is the Bubble Tea model over the sync engine. All mutations go
// through engine operations dispatched as commands; the model itself only
// holds view state.
type Model struct {
	ctx    context.Context
	engine *engine.Engine
	owner  int

	snap     engine.Snapshot
	cursor   int
	mode     inputMode
	renameID int
	input    textinput.Model
	spin     spinner.Model
	width    int
}

func newModel(ctx context.Context, eng *engine.Engine, ownerID int) *Model {
	input := textinput.New()
	input.Placeholder = "What needs to be done?"
	input.CharLimit = 200

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot

	return &Model{
		ctx:    ctx,
		engine: eng,
		owner:  ownerID,
		input:  input,
		spin:   spin,
	}
}

func (m *Model) Init() tea.Cmd {
	m.snap = m.engine.Snapshot()
	return tea.Batch(
		m.spin.Tick,
		tickCmd(),
		m.op(func() { m.engine.Reload(m.ctx) }),
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tickCmd()

	case opDoneMsg:
		m.refresh()
		// A cleared draft means the add went through; mirror it into
		// the input so a failed add keeps its text for retry.
		if m.mode == modeAdd {
			m.input.SetValue(m.snap.Draft)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.mode != modeList {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	}

	return m, nil
}

// updateList handles keys in list mode.
func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows())-1 {
			m.cursor++
		}
	case "a":
		m.mode = modeAdd
		m.input.SetValue(m.snap.Draft)
		m.input.Focus()
	case "e":
		if t, ok := m.cursorRow(); ok {
			m.mode = modeRename
			m.renameID = t.ID
			m.input.SetValue(t.Title)
			m.input.Focus()
		}
	case " ", "x":
		if t, ok := m.cursorRow(); ok {
			id := t.ID
			return m, m.op(func() { m.engine.Toggle(m.ctx, id) })
		}
	case "d":
		if t, ok := m.cursorRow(); ok {
			id := t.ID
			return m, m.op(func() { m.engine.Remove(m.ctx, id) })
		}
	case "D":
		return m, m.op(func() { m.engine.RemoveCompleted(m.ctx) })
	case "t":
		return m, m.op(func() { m.engine.ToggleAll(m.ctx) })
	case "1":
		m.engine.SetFilter(todo.FilterAll)
		m.refresh()
	case "2":
		m.engine.SetFilter(todo.FilterActive)
		m.refresh()
	case "3":
		m.engine.SetFilter(todo.FilterCompleted)
		m.refresh()
	case "r", "f5":
		return m, m.op(func() { m.engine.Reload(m.ctx) })
	case "ctrl+x":
		m.engine.DismissError()
		m.refresh()
	}
	return m, nil
}

// updateInput handles keys while the text input is focused.
func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.leaveInput()
		return m, nil
	case "enter":
		value := m.input.Value()
		switch m.mode {
		case modeAdd:
			m.engine.SetDraft(value)
			return m, m.op(func() { m.engine.Add(m.ctx, value) })
		case modeRename:
			id := m.renameID
			m.leaveInput()
			return m, m.op(func() { m.engine.Rename(m.ctx, id, value) })
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == modeAdd {
		m.engine.SetDraft(m.input.Value())
	}
	return m, cmd
}

func (m *Model) leaveInput() {
	m.mode = modeList
	m.renameID = 0
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) refresh() {
	m.snap = m.engine.Snapshot()
	if n := len(m.rows()); m.cursor >= n && n > 0 {
		m.cursor = n - 1
	} else if n == 0 {
		m.cursor = 0
	}
}

// rows returns the renderable rows: the visible subset minus todos with an
// in-flight delete, which are suppressed until the reload settles.
func (m *Model) rows() []todo.Todo {
	var out []todo.Todo
	for _, t := range m.snap.VisibleTodos {
		if containsID(m.snap.PendingIDs, t.ID) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (m *Model) cursorRow() (todo.Todo, bool) {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return todo.Todo{}, false
	}
	return rows[m.cursor], true
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("todosync - owner %d", m.owner)))
	b.WriteString("\n\n")

	if m.snap.ErrActive {
		b.WriteString(errorStyle.Render(m.snap.ErrMessage + " (ctrl+x to dismiss)"))
		b.WriteString("\n\n")
	}

	m.writeFilterLine(&b)
	m.writeRows(&b)
	m.writeInput(&b)
	m.writeFooter(&b)

	return b.String()
}

func (m *Model) writeFilterLine(b *strings.Builder) {
	active := 0
	for _, t := range m.snap.Todos {
		if !t.Completed {
			active++
		}
	}

	names := []struct {
		f     todo.Filter
		label string
	}{
		{todo.FilterAll, "1:all"},
		{todo.FilterActive, "2:active"},
		{todo.FilterCompleted, "3:completed"},
	}
	parts := make([]string, 0, len(names))
	for _, n := range names {
		if n.f == m.snap.Filter {
			parts = append(parts, filterActiveStyle.Render(n.label))
		} else {
			parts = append(parts, filterStyle.Render(n.label))
		}
	}
	b.WriteString(strings.Join(parts, "  "))
	b.WriteString(filterStyle.Render(fmt.Sprintf("   %d item(s) left", active)))
	b.WriteString("\n\n")
}

func (m *Model) writeRows(b *strings.Builder) {
	rows := m.rows()
	if len(rows) == 0 {
		b.WriteString(helpStyle.Render("  Nothing here. Press a to add a todo."))
		b.WriteString("\n")
	}
	for i, t := range rows {
		cursor := "  "
		if i == m.cursor && m.mode == modeList {
			cursor = cursorStyle.Render("> ")
		}

		check := "[ ]"
		if t.Completed {
			check = "[x]"
		}

		busy := " "
		if containsID(m.snap.SelectedIDs, t.ID) {
			busy = m.spin.View()
		}

		title := t.Title
		if t.Completed {
			title = completedStyle.Render(title)
		}

		b.WriteString(fmt.Sprintf("%s%s %s %s\n", cursor, check, busy, title))
	}
	b.WriteString("\n")
}

func (m *Model) writeInput(b *strings.Builder) {
	switch m.mode {
	case modeAdd:
		label := "Add: "
		if m.snap.IsAdding {
			label = "Add " + m.spin.View() + " "
		}
		b.WriteString(label + m.input.View() + "\n\n")
	case modeRename:
		b.WriteString("Rename: " + m.input.View() + "\n\n")
	}
}

func (m *Model) writeFooter(b *strings.Builder) {
	if m.mode != modeList {
		b.WriteString(helpStyle.Render("enter save | esc cancel"))
		b.WriteString("\n")
		return
	}
	b.WriteString(helpStyle.Render("a add | e edit | space toggle | d delete | D clear done | t toggle all | 1/2/3 filter | r reload | q quit"))
	b.WriteString("\n")
}

func tickCmd() tea.Cmd {
	return tea.Tick(snapInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// op wraps a blocking engine call in a command.
func (m *Model) op(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return opDoneMsg{}
	}
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
