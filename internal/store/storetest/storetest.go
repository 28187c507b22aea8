// Package storetest checks that a store.Backend, driven through store.Store,
// keeps the collection contract: unique ids, insertion order, targeted
// update and delete, and no-ops on unknown ids.
package storetest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/jasktodo/internal/store"
)

// NewBackend returns an empty backend for one subtest.
type NewBackend func(t *testing.T) store.Backend

// Run executes the contract suite against backends produced by newBackend.
func Run(t *testing.T, newBackend NewBackend) {
	t.Helper()
	tests := []struct {
		name string
		fn   func(t *testing.T, st *store.Store)
	}{
		{"Scenario", testScenario},
		{"Uniqueness", testUniqueness},
		{"OrderPreservation", testOrderPreservation},
		{"UpdateTargeting", testUpdateTargeting},
		{"DeleteTargeting", testDeleteTargeting},
		{"MissingIDIsNoop", testMissingIDIsNoop},
		{"DeleteIdempotent", testDeleteIdempotent},
		{"EmptyAndDuplicateText", testEmptyAndDuplicateText},
		{"SnapshotIsolation", testSnapshotIsolation},
		{"EveryMutationPublishes", testEveryMutationPublishes},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st, err := store.New(context.Background(), newBackend(t))
			require.NoError(t, err)
			tc.fn(t, st)
		})
	}
}

type row struct {
	ID   store.ID
	Text string
}

func rows(t *testing.T, st *store.Store) []row {
	t.Helper()
	snap, err := st.List(context.Background())
	require.NoError(t, err)
	out := []row{}
	for _, task := range snap.Tasks() {
		out = append(out, row{task.ID, task.Text})
	}
	return out
}

func mustCreate(t *testing.T, st *store.Store, text string) store.Task {
	t.Helper()
	task, err := st.Create(context.Background(), text)
	require.NoError(t, err)
	return task
}

func testScenario(t *testing.T, st *store.Store) {
	ctx := context.Background()

	x := mustCreate(t, st, "Buy milk")
	require.Equal(t, []row{{x.ID, "Buy milk"}}, rows(t, st))

	y := mustCreate(t, st, "Walk dog")
	require.NotEqual(t, x.ID, y.ID)
	require.Equal(t, []row{{x.ID, "Buy milk"}, {y.ID, "Walk dog"}}, rows(t, st))

	found, err := st.Update(ctx, x.ID, "Buy oat milk")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []row{{x.ID, "Buy oat milk"}, {y.ID, "Walk dog"}}, rows(t, st))

	found, err = st.Delete(ctx, y.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []row{{x.ID, "Buy oat milk"}}, rows(t, st))

	found, err = st.Delete(ctx, y.ID)
	require.NoError(t, err)
	require.False(t, found)
	require.Equal(t, []row{{x.ID, "Buy oat milk"}}, rows(t, st))

	found, err = st.Update(ctx, "no-such-task", "x")
	require.NoError(t, err)
	require.False(t, found)
	require.Equal(t, []row{{x.ID, "Buy oat milk"}}, rows(t, st))
}

func testUniqueness(t *testing.T, st *store.Store) {
	seen := map[store.ID]struct{}{}
	for i := 0; i < 200; i++ {
		task := mustCreate(t, st, "same text")
		_, dup := seen[task.ID]
		require.False(t, dup, "duplicate id %s", task.ID)
		seen[task.ID] = struct{}{}
		// deleted ids must not come back either
		if i%3 == 0 {
			_, err := st.Delete(context.Background(), task.ID)
			require.NoError(t, err)
		}
	}
}

func testOrderPreservation(t *testing.T, st *store.Store) {
	ctx := context.Background()
	var want []row
	for i := 0; i < 10; i++ {
		task := mustCreate(t, st, fmt.Sprintf("task %d", i))
		want = append(want, row{task.ID, task.Text})
	}
	// drop evens, edit odds
	var kept []row
	for i, r := range want {
		if i%2 == 0 {
			_, err := st.Delete(ctx, r.ID)
			require.NoError(t, err)
			continue
		}
		r.Text += " (edited)"
		_, err := st.Update(ctx, r.ID, r.Text)
		require.NoError(t, err)
		kept = append(kept, r)
	}
	tail := mustCreate(t, st, "tail")
	kept = append(kept, row{tail.ID, "tail"})
	require.Equal(t, kept, rows(t, st))
}

func testUpdateTargeting(t *testing.T, st *store.Store) {
	a := mustCreate(t, st, "a")
	b := mustCreate(t, st, "b")
	c := mustCreate(t, st, "c")
	_, err := st.Update(context.Background(), b.ID, "B")
	require.NoError(t, err)
	require.Equal(t, []row{{a.ID, "a"}, {b.ID, "B"}, {c.ID, "c"}}, rows(t, st))
}

func testDeleteTargeting(t *testing.T, st *store.Store) {
	a := mustCreate(t, st, "a")
	b := mustCreate(t, st, "b")
	c := mustCreate(t, st, "c")
	_, err := st.Delete(context.Background(), a.ID)
	require.NoError(t, err)
	require.Equal(t, []row{{b.ID, "b"}, {c.ID, "c"}}, rows(t, st))
	_, err = st.Delete(context.Background(), c.ID)
	require.NoError(t, err)
	require.Equal(t, []row{{b.ID, "b"}}, rows(t, st))
}

func testMissingIDIsNoop(t *testing.T, st *store.Store) {
	ctx := context.Background()
	mustCreate(t, st, "a")
	mustCreate(t, st, "b")
	before := rows(t, st)

	found, err := st.Update(ctx, "missing", "x")
	require.NoError(t, err)
	require.False(t, found)
	found, err = st.Delete(ctx, "missing")
	require.NoError(t, err)
	require.False(t, found)
	found, err = st.Update(ctx, "", "x")
	require.NoError(t, err)
	require.False(t, found)

	require.Equal(t, before, rows(t, st))
}

func testDeleteIdempotent(t *testing.T, st *store.Store) {
	ctx := context.Background()
	a := mustCreate(t, st, "a")
	mustCreate(t, st, "b")

	_, err := st.Delete(ctx, a.ID)
	require.NoError(t, err)
	once := rows(t, st)
	_, err = st.Delete(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, once, rows(t, st))
}

func testEmptyAndDuplicateText(t *testing.T, st *store.Store) {
	a := mustCreate(t, st, "")
	b := mustCreate(t, st, "dup")
	c := mustCreate(t, st, "dup")
	require.Equal(t, []row{{a.ID, ""}, {b.ID, "dup"}, {c.ID, "dup"}}, rows(t, st))

	_, err := st.Update(context.Background(), b.ID, "")
	require.NoError(t, err)
	require.Equal(t, []row{{a.ID, ""}, {b.ID, ""}, {c.ID, "dup"}}, rows(t, st))
}

func testSnapshotIsolation(t *testing.T, st *store.Store) {
	ctx := context.Background()
	a := mustCreate(t, st, "a")
	snap, err := st.List(ctx)
	require.NoError(t, err)

	tasks := snap.Tasks()
	tasks[0].Text = "mutated by caller"
	_, err = st.Update(ctx, a.ID, "changed")
	require.NoError(t, err)
	mustCreate(t, st, "b")

	require.Equal(t, 1, snap.Len())
	require.Equal(t, "a", snap.At(0).Text)
	now := rows(t, st)
	require.Len(t, now, 2)
	require.Equal(t, row{a.ID, "changed"}, now[0])
	require.Equal(t, "b", now[1].Text)
}

func testEveryMutationPublishes(t *testing.T, st *store.Store) {
	ctx := context.Background()
	var got []store.Snapshot
	cancel := st.Subscribe(func(s store.Snapshot) { got = append(got, s) })

	a := mustCreate(t, st, "a")
	_, err := st.Update(ctx, a.ID, "b")
	require.NoError(t, err)
	_, err = st.Update(ctx, "missing", "x")
	require.NoError(t, err)
	_, err = st.Delete(ctx, "missing")
	require.NoError(t, err)
	_, err = st.Delete(ctx, a.ID)
	require.NoError(t, err)

	require.Len(t, got, 5)
	for i := 1; i < len(got); i++ {
		require.Greater(t, got[i].Version(), got[i-1].Version())
	}
	require.Equal(t, 1, got[0].Len())
	require.Equal(t, "b", got[1].At(0).Text)
	require.Equal(t, 0, got[4].Len())

	cancel()
	mustCreate(t, st, "unseen")
	require.Len(t, got, 5)
}
