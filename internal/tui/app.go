// Package tui is the single-screen task list. It renders the store's current
// snapshot and forwards user actions to the store.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/jasktodo/internal/config"
	"github.com/jask/jasktodo/internal/store"
)

// mode is the dialog state. nil means no dialog is open.
type mode interface{ dialogTitle() string }

type creating struct{}

type editing struct{ task store.Task }

func (creating) dialogTitle() string { return "New task" }
func (editing) dialogTitle() string  { return "Edit task" }

// App is the tea.Model for the task screen.
type App struct {
	ctx    context.Context
	store  *store.Store
	cfg    config.UIConfig
	snap   store.Snapshot
	cursor int
	mode   mode
	input  textinput.Model
	keys   keyMap
	dkeys  dialogKeyMap
	help   help.Model
	status string
	level  statusLevel
	width  int
	height int

	updates     chan store.Snapshot
	unsubscribe func()
}

type statusLevel int

const (
	levelInfo statusLevel = iota
	levelWarn
	levelError
)

// New subscribes to st. Call Close when the program exits.
func New(ctx context.Context, st *store.Store, cfg config.UIConfig) *App {
	in := textinput.New()
	in.Placeholder = cfg.Placeholder
	in.CharLimit = 0
	in.Width = 40

	a := &App{
		ctx:     ctx,
		store:   st,
		cfg:     cfg,
		input:   in,
		keys:    newKeyMap(),
		dkeys:   newDialogKeyMap(),
		help:    help.New(),
		updates: make(chan store.Snapshot, 1),
	}
	a.unsubscribe = st.Subscribe(latestOnly(a.updates))
	return a
}

// latestOnly keeps only the newest undelivered snapshot in ch.
func latestOnly(ch chan store.Snapshot) store.Listener {
	return func(s store.Snapshot) {
		for {
			select {
			case ch <- s:
				return
			default:
			}
			select {
			case <-ch:
			default:
			}
		}
	}
}

// Close detaches the app from the store.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadSnapshot(), a.waitForSnapshot())
}

// messages
type snapshotMsg struct {
	snap       store.Snapshot
	subscribed bool
}

type createdMsg struct{ task store.Task }

type updatedMsg struct{ found bool }

type deletedMsg struct{ found bool }

type errMsg struct{ error }

func (a *App) loadSnapshot() tea.Cmd {
	return func() tea.Msg {
		snap, err := a.store.List(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return snapshotMsg{snap: snap}
	}
}

func (a *App) waitForSnapshot() tea.Cmd {
	ch := a.updates
	return func() tea.Msg {
		return snapshotMsg{snap: <-ch, subscribed: true}
	}
}

func (a *App) createCmd(text string) tea.Cmd {
	return func() tea.Msg {
		t, err := a.store.Create(a.ctx, text)
		if err != nil {
			return errMsg{err}
		}
		return createdMsg{task: t}
	}
}

func (a *App) updateCmd(id store.ID, text string) tea.Cmd {
	return func() tea.Msg {
		found, err := a.store.Update(a.ctx, id, text)
		if err != nil {
			return errMsg{err}
		}
		return updatedMsg{found: found}
	}
}

func (a *App) deleteCmd(id store.ID) tea.Cmd {
	return func() tea.Msg {
		found, err := a.store.Delete(a.ctx, id)
		if err != nil {
			return errMsg{err}
		}
		return deletedMsg{found: found}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.help.Width = m.Width
	case tea.KeyMsg:
		if a.mode != nil {
			return a.handleDialogKey(m)
		}
		return a.handleListKey(m)
	case snapshotMsg:
		a.applySnapshot(m.snap)
		if m.subscribed {
			return a, a.waitForSnapshot()
		}
	case createdMsg:
		a.setStatus(levelInfo, "added")
		if match, ok := nearDuplicate(a.snap, m.task.ID, m.task.Text); ok {
			a.setStatus(levelWarn, fmt.Sprintf("added (similar to %q)", match))
		}
	case updatedMsg:
		if m.found {
			a.setStatus(levelInfo, "saved")
		} else {
			a.setStatus(levelWarn, "task no longer exists")
		}
	case deletedMsg:
		if m.found {
			a.setStatus(levelInfo, "deleted")
		} else {
			a.setStatus(levelWarn, "task already deleted")
		}
	case errMsg:
		a.setStatus(levelError, "error: "+m.Error())
	default:
		if a.mode != nil {
			var cmd tea.Cmd
			a.input, cmd = a.input.Update(msg)
			return a, cmd
		}
	}
	return a, nil
}

func (a *App) applySnapshot(snap store.Snapshot) {
	if snap.Version() < a.snap.Version() {
		return
	}
	var selected store.ID
	if a.cursor < a.snap.Len() {
		selected = a.snap.At(a.cursor).ID
	}
	a.snap = snap
	// follow the selected task if rows above it moved
	if i := snap.Index(selected); selected != "" && i >= 0 {
		a.cursor = i
	}
	if a.cursor >= a.snap.Len() {
		a.cursor = max(a.snap.Len()-1, 0)
	}
}

func (a *App) handleListKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Quit):
		a.Close()
		return a, tea.Quit
	case key.Matches(m, a.keys.New):
		return a, a.openDialog(creating{})
	case key.Matches(m, a.keys.Edit):
		if a.snap.Len() == 0 {
			a.setStatus(levelWarn, "no tasks to edit")
			return a, nil
		}
		return a, a.openDialog(editing{task: a.snap.At(a.cursor)})
	case key.Matches(m, a.keys.Delete):
		if a.snap.Len() == 0 {
			return a, nil
		}
		return a, a.deleteCmd(a.snap.At(a.cursor).ID)
	case key.Matches(m, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
	case key.Matches(m, a.keys.Down):
		if a.cursor < a.snap.Len()-1 {
			a.cursor++
		}
	}
	return a, nil
}

func (a *App) openDialog(md mode) tea.Cmd {
	a.mode = md
	a.status = ""
	switch md := md.(type) {
	case editing:
		a.input.SetValue(md.task.Text)
		a.input.CursorEnd()
	default:
		a.input.SetValue("")
	}
	return a.input.Focus()
}

func (a *App) closeDialog() {
	a.mode = nil
	a.input.Blur()
	a.input.SetValue("")
}

func (a *App) handleDialogKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.dkeys.Cancel):
		a.closeDialog()
		return a, nil
	case key.Matches(m, a.dkeys.Save):
		text := a.input.Value()
		md := a.mode
		a.closeDialog()
		switch md := md.(type) {
		case creating:
			return a, a.createCmd(text)
		case editing:
			return a, a.updateCmd(md.task.ID, text)
		}
		return a, nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(m)
	return a, cmd
}

func (a *App) setStatus(level statusLevel, text string) {
	a.level = level
	a.status = text
}

func (a *App) View() string {
	base := a.renderList()
	if a.mode == nil {
		return base
	}
	return overlayCenter(base, a.renderDialog(), a.width, a.height)
}

func (a *App) renderList() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(a.cfg.Title))
	b.WriteString("\n")
	if a.snap.Len() == 0 {
		b.WriteString(emptyStyle.Render("No tasks yet. Press n to add one."))
		b.WriteString("\n")
	}
	for i, t := range a.snap.Tasks() {
		if i == a.cursor {
			b.WriteString(selectedStyle.Render("▶ " + t.Text))
		} else {
			b.WriteString(rowStyle.Render("  " + t.Text))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if a.status != "" {
		b.WriteString(a.renderStatus())
		b.WriteString("\n")
	}
	b.WriteString(a.help.View(a.keys))
	return b.String()
}

func (a *App) renderStatus() string {
	switch a.level {
	case levelError:
		return errorStyle.Render(a.status)
	case levelWarn:
		return warnStyle.Render(a.status)
	default:
		return statusStyle.Render(a.status)
	}
}

func (a *App) renderDialog() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		dialogTitleStyle.Render(a.mode.dialogTitle()),
		"",
		a.input.View(),
		"",
		hintStyle.Render(a.help.View(a.dkeys)),
	)
	return dialogStyle.Render(body)
}
