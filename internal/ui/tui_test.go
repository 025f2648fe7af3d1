package ui

import (
	"context"
	"strings"
	"testing"

	"todosync/internal/engine"
	"todosync/internal/testutil"
	"todosync/internal/todo"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	eng := engine.New(testutil.NewFakeStore(), 7)
	return newModel(context.Background(), eng, 7)
}

func TestRowsSuppressInFlightDeletes(t *testing.T) {
	m := newTestModel(t)
	m.snap = engine.Snapshot{
		VisibleTodos: []todo.Todo{
			{ID: 1, Title: "A"},
			{ID: 2, Title: "B"},
			{ID: 3, Title: "C"},
		},
		PendingIDs: []int{2},
	}

	rows := m.rows()
	if len(rows) != 2 {
		t.Fatalf("rows: got %d, want 2", len(rows))
	}
	for _, r := range rows {
		if r.ID == 2 {
			t.Error("row with an in-flight delete should be suppressed")
		}
	}
}

func TestCursorRowClamps(t *testing.T) {
	m := newTestModel(t)
	m.snap = engine.Snapshot{
		VisibleTodos: []todo.Todo{{ID: 1, Title: "A"}},
	}

	m.cursor = 5
	if _, ok := m.cursorRow(); ok {
		t.Error("out-of-range cursor should yield no row")
	}

	m.refresh()
	m.snap.VisibleTodos = []todo.Todo{{ID: 1, Title: "A"}}
	m.cursor = 0
	if row, ok := m.cursorRow(); !ok || row.ID != 1 {
		t.Errorf("cursorRow: got (%+v, %v)", row, ok)
	}
}

func TestViewShowsErrorBanner(t *testing.T) {
	m := newTestModel(t)
	m.snap = engine.Snapshot{
		ErrMessage: "Unable to load todos",
		ErrActive:  true,
	}

	view := m.View()
	if !strings.Contains(view, "Unable to load todos") {
		t.Errorf("view should contain the error banner:\n%s", view)
	}
}

func TestViewHidesInactiveError(t *testing.T) {
	m := newTestModel(t)
	m.snap = engine.Snapshot{
		ErrMessage: "",
		ErrActive:  false,
		VisibleTodos: []todo.Todo{
			{ID: 1, Title: "A"},
		},
	}

	view := m.View()
	if strings.Contains(view, "dismiss") {
		t.Errorf("view should not render a banner without an active error:\n%s", view)
	}
}

func TestViewMarksCompletedTodos(t *testing.T) {
	m := newTestModel(t)
	m.snap = engine.Snapshot{
		VisibleTodos: []todo.Todo{
			{ID: 1, Title: "open item"},
			{ID: 2, Title: "done item", Completed: true},
		},
	}

	view := m.View()
	if !strings.Contains(view, "[ ]") {
		t.Error("view should contain an unchecked box")
	}
	if !strings.Contains(view, "[x]") {
		t.Error("view should contain a checked box")
	}
}

func TestViewItemsLeftCount(t *testing.T) {
	m := newTestModel(t)
	m.snap = engine.Snapshot{
		Todos: []todo.Todo{
			{ID: 1, Title: "A"},
			{ID: 2, Title: "B", Completed: true},
			{ID: 3, Title: "C"},
		},
		VisibleTodos: []todo.Todo{{ID: 1, Title: "A"}},
		Filter:       todo.FilterActive,
	}

	view := m.View()
	if !strings.Contains(view, "2 item(s) left") {
		t.Errorf("view should count active todos from the full list:\n%s", view)
	}
}

func TestContainsID(t *testing.T) {
	ids := []int{1, 3, 5}
	if !containsID(ids, 3) {
		t.Error("containsID(3): got false")
	}
	if containsID(ids, 2) {
		t.Error("containsID(2): got true")
	}
	if containsID(nil, 1) {
		t.Error("containsID on nil: got true")
	}
}
