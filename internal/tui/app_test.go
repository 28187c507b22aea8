package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jask/jasktodo/internal/config"
	"github.com/jask/jasktodo/internal/store"
)

func newTestApp(t *testing.T) (*App, *store.Store) {
	t.Helper()
	ctx := context.Background()
	st, err := store.New(ctx, nil, store.WithIDGenerator(store.SequenceGenerator()))
	require.NoError(t, err)
	a := New(ctx, st, config.UIConfig{Title: "Tasks", Placeholder: "Enter task"})
	t.Cleanup(a.Close)
	a.Update(a.loadSnapshot()())
	return a, st
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(a *App, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, m := range msgs {
		_, cmd = a.Update(m)
	}
	return cmd
}

// commit runs a store command and feeds both its result and the published
// snapshot back into the app.
func commit(t *testing.T, a *App, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	a.Update(msg)
	a.Update(a.waitForSnapshot()())
	return msg
}

func texts(a *App) []string {
	var out []string
	for _, task := range a.snap.Tasks() {
		out = append(out, task.Text)
	}
	return out
}

func TestCreateThroughDialog(t *testing.T) {
	t.Parallel()
	a, st := newTestApp(t)

	send(a, runes("n"))
	require.IsType(t, creating{}, a.mode)
	require.Contains(t, a.View(), "New task")

	cmd := send(a, runes("Buy milk"), tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, a.mode)
	msg := commit(t, a, cmd)
	require.IsType(t, createdMsg{}, msg)

	require.Equal(t, 1, st.Len())
	require.Equal(t, []string{"Buy milk"}, texts(a))
	require.Equal(t, "added", a.status)
	require.Contains(t, a.View(), "Buy milk")
}

func TestEditThroughDialog(t *testing.T) {
	t.Parallel()
	a, st := newTestApp(t)
	ctx := context.Background()
	_, err := st.Create(ctx, "Buy milk")
	require.NoError(t, err)
	_, err = st.Create(ctx, "Walk dog")
	require.NoError(t, err)
	a.Update(a.waitForSnapshot()())

	send(a, runes("e"))
	ed, ok := a.mode.(editing)
	require.True(t, ok)
	require.Equal(t, "Buy milk", ed.task.Text)
	require.Equal(t, "Buy milk", a.input.Value())

	cmd := send(a, tea.KeyMsg{Type: tea.KeyCtrlU}, runes("Buy oat milk"), tea.KeyMsg{Type: tea.KeyEnter})
	msg := commit(t, a, cmd)
	require.Equal(t, updatedMsg{found: true}, msg)
	require.Equal(t, []string{"Buy oat milk", "Walk dog"}, texts(a))
	require.Equal(t, "saved", a.status)
}

func TestUnchangedEditKeepsLongText(t *testing.T) {
	t.Parallel()
	a, st := newTestApp(t)
	long := strings.Repeat("x", 300)
	task, err := st.Create(context.Background(), long)
	require.NoError(t, err)
	a.Update(a.waitForSnapshot()())

	send(a, runes("e"))
	require.Equal(t, long, a.input.Value())
	msg := commit(t, a, send(a, tea.KeyMsg{Type: tea.KeyEnter}))
	require.Equal(t, updatedMsg{found: true}, msg)

	snap, err := st.List(context.Background())
	require.NoError(t, err)
	got, ok := snap.Find(task.ID)
	require.True(t, ok)
	require.Equal(t, long, got.Text)
}

func TestNewTaskKeys(t *testing.T) {
	t.Parallel()
	for _, k := range []string{"n", "+"} {
		a, _ := newTestApp(t)
		send(a, runes(k))
		require.IsType(t, creating{}, a.mode, k)
	}

	a, _ := newTestApp(t)
	send(a, runes("a"))
	require.Nil(t, a.mode)
}

func TestCancelLeavesStoreUntouched(t *testing.T) {
	t.Parallel()
	a, st := newTestApp(t)

	send(a, runes("n"), runes("never saved"))
	cmd := send(a, tea.KeyMsg{Type: tea.KeyEsc})
	require.Nil(t, cmd)
	require.Nil(t, a.mode)
	require.Equal(t, 0, st.Len())
	require.Empty(t, a.input.Value())
}

func TestDeleteSelected(t *testing.T) {
	t.Parallel()
	a, st := newTestApp(t)
	ctx := context.Background()
	for _, s := range []string{"one", "two", "three"} {
		_, err := st.Create(ctx, s)
		require.NoError(t, err)
	}
	a.Update(a.waitForSnapshot()())

	send(a, runes("j"))
	require.Equal(t, 1, a.cursor)
	msg := commit(t, a, send(a, runes("d")))
	require.Equal(t, deletedMsg{found: true}, msg)
	require.Equal(t, []string{"one", "three"}, texts(a))

	// cursor is clamped once the last row disappears
	send(a, runes("j"))
	commit(t, a, send(a, runes("d")))
	require.Equal(t, []string{"one"}, texts(a))
	require.Equal(t, 0, a.cursor)
}

func TestEditOfDeletedTaskIsNoop(t *testing.T) {
	t.Parallel()
	a, st := newTestApp(t)
	ctx := context.Background()
	task, err := st.Create(ctx, "Buy milk")
	require.NoError(t, err)
	a.Update(a.waitForSnapshot()())

	send(a, runes("e"))
	// another surface deletes the task while the dialog is open
	_, err = st.Delete(ctx, task.ID)
	require.NoError(t, err)

	msg := commit(t, a, send(a, runes("!"), tea.KeyMsg{Type: tea.KeyEnter}))
	require.Equal(t, updatedMsg{found: false}, msg)
	require.Equal(t, 0, st.Len())
	require.Equal(t, "task no longer exists", a.status)
}

func TestEditWithNoTasks(t *testing.T) {
	t.Parallel()
	a, _ := newTestApp(t)

	cmd := send(a, runes("e"))
	require.Nil(t, cmd)
	require.Nil(t, a.mode)
	require.Equal(t, "no tasks to edit", a.status)
	require.Nil(t, send(a, runes("d")))
}

func TestEmptyTextIsSaved(t *testing.T) {
	t.Parallel()
	a, st := newTestApp(t)

	commit(t, a, send(a, runes("n"), tea.KeyMsg{Type: tea.KeyEnter}))
	require.Equal(t, 1, st.Len())
	require.Equal(t, []string{""}, texts(a))
}

func TestNearDuplicateHint(t *testing.T) {
	t.Parallel()
	a, st := newTestApp(t)
	_, err := st.Create(context.Background(), "Buy milk")
	require.NoError(t, err)
	a.Update(a.waitForSnapshot()())

	commit(t, a, send(a, runes("n"), runes("buy  milks"), tea.KeyMsg{Type: tea.KeyEnter}))
	require.Equal(t, levelWarn, a.level)
	require.Contains(t, a.status, `similar to "Buy milk"`)
}

func TestStaleSnapshotIgnored(t *testing.T) {
	t.Parallel()
	a, st := newTestApp(t)
	ctx := context.Background()
	old, err := st.List(ctx)
	require.NoError(t, err)
	_, err = st.Create(ctx, "fresh")
	require.NoError(t, err)
	a.Update(a.waitForSnapshot()())

	a.Update(snapshotMsg{snap: old})
	require.Equal(t, []string{"fresh"}, texts(a))
}

func TestDialogOverlayFitsWindow(t *testing.T) {
	t.Parallel()
	a, _ := newTestApp(t)
	send(a, tea.WindowSizeMsg{Width: 80, Height: 20}, runes("n"))

	view := a.View()
	require.Contains(t, view, "New task")
	lines := strings.Split(view, "\n")
	require.Len(t, lines, 20)
}

func TestQuitDetachesFromStore(t *testing.T) {
	t.Parallel()
	a, st := newTestApp(t)

	cmd := send(a, runes("q"))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())

	_, err := st.Create(context.Background(), "after quit")
	require.NoError(t, err)
	select {
	case <-a.updates:
		t.Fatal("snapshot delivered after quit")
	default:
	}
}

func TestCursorFollowsSelectedTask(t *testing.T) {
	t.Parallel()
	a, st := newTestApp(t)
	ctx := context.Background()
	first, err := st.Create(ctx, "first")
	require.NoError(t, err)
	_, err = st.Create(ctx, "second")
	require.NoError(t, err)
	a.Update(a.waitForSnapshot()())

	send(a, runes("j"))
	require.Equal(t, "second", a.snap.At(a.cursor).Text)

	_, err = st.Delete(ctx, first.ID)
	require.NoError(t, err)
	a.Update(a.waitForSnapshot()())
	require.Equal(t, 0, a.cursor)
	require.Equal(t, "second", a.snap.At(a.cursor).Text)
}
