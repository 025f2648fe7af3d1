// Package engine keeps an in-memory todo list consistent with a remote
// store across concurrent, fallible mutations.
//
// Every mutation follows the same cycle: set an in-flight marker, call the
// store, re-fetch the full list, clear the marker. The cached list is never
// patched in place; it always reflects the last successful read, so local
// and remote state cannot drift. Failures are reported through a transient
// error banner and reset the in-flight markers wholesale.
package engine

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"todosync/internal/store"
	"todosync/internal/todo"
)

// Fixed user-facing messages. Failures surface one of these, never the
// underlying cause.
const (
	MsgLoadFailed   = "Unable to load todos"
	MsgAddFailed    = "Unable to add a todo"
	MsgEmptyTitle   = "Title can't be empty"
	MsgDeleteFailed = "Unable to delete a todo"
	MsgUpdateFailed = "Unable to update a todo"
)

// Engine owns the authoritative in-memory todo list and orchestrates
// mutations against the remote store. It is safe for concurrent use;
// the lock is released around network calls, so independent operations
// interleave and the last-settling reload wins.
type Engine struct {
	store  store.Store
	owner  int
	notify *Notifier
	log    *log.Logger

	mu       sync.Mutex
	todos    []todo.Todo
	pending  map[int]struct{} // in-flight deletes
	selected map[int]struct{} // in-flight updates
	adding   bool
	draft    string
	filter   todo.Filter
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithErrorWindow sets the error banner display window.
func WithErrorWindow(d time.Duration) Option {
	return func(e *Engine) {
		e.notify = NewNotifier(d)
	}
}

// New creates an engine for the given owner. An owner id of zero disables
// every operation; there is no ambient session context.
func New(s store.Store, ownerID int, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		owner:    ownerID,
		notify:   NewNotifier(0),
		log:      log.New(io.Discard),
		pending:  make(map[int]struct{}),
		selected: make(map[int]struct{}),
		filter:   todo.FilterAll,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot is the state exposed to the presentation layer.
type Snapshot struct {
	Todos        []todo.Todo
	VisibleTodos []todo.Todo
	PendingIDs   []int
	SelectedIDs  []int
	IsAdding     bool
	Draft        string
	Filter       todo.Filter
	ErrMessage   string
	ErrActive    bool
}

// Snapshot returns a copy of the current presentation state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	todos := make([]todo.Todo, len(e.todos))
	copy(todos, e.todos)

	snap := Snapshot{
		Todos:        todos,
		VisibleTodos: todo.Visible(todos, e.filter),
		PendingIDs:   sortedIDs(e.pending),
		SelectedIDs:  sortedIDs(e.selected),
		IsAdding:     e.adding,
		Draft:        e.draft,
		Filter:       e.filter,
	}
	snap.ErrMessage, snap.ErrActive = e.notify.State()
	return snap
}

// SetFilter sets the visible subset. No network effect.
func (e *Engine) SetFilter(f todo.Filter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filter = f
}

// SetDraft updates the new-todo input buffer.
func (e *Engine) SetDraft(s string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft = s
}

// DismissError clears the error banner before its timer fires.
func (e *Engine) DismissError() {
	e.notify.Dismiss()
}

// Reload replaces the cached list with a fresh read. On failure the list
// keeps its last known value.
func (e *Engine) Reload(ctx context.Context) {
	if e.owner == 0 {
		return
	}
	if err := e.refresh(ctx); err != nil {
		e.log.Warn("reload failed", "err", err)
		e.notify.Raise(MsgLoadFailed)
	}
}

// Add creates a todo from the trimmed title, then reloads. Concurrent adds
// are rejected while one is in flight. Empty titles are rejected before any
// store call. The draft is cleared only when the whole operation succeeds,
// so a failed add can be retried without retyping.
func (e *Engine) Add(ctx context.Context, title string) {
	if e.owner == 0 {
		return
	}

	e.mu.Lock()
	if e.adding {
		e.mu.Unlock()
		return
	}
	e.adding = true
	e.mu.Unlock()
	defer e.setAdding(false)

	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		e.notify.Raise(MsgEmptyTitle)
		return
	}

	created, err := e.store.Create(ctx, trimmed, e.owner)
	if err != nil {
		e.log.Warn("create failed", "err", err)
		e.notify.Raise(MsgAddFailed)
		return
	}
	e.log.Debug("created todo", "id", created.ID)

	if err := e.refresh(ctx); err != nil {
		e.log.Warn("reload after create failed", "err", err)
		e.notify.Raise(MsgAddFailed)
		return
	}

	e.mu.Lock()
	e.draft = ""
	e.mu.Unlock()
}

// Remove deletes one todo. The id is marked pending for the whole cycle.
// On failure the pending set is reset to empty, not just stripped of the
// failed id.
func (e *Engine) Remove(ctx context.Context, id int) {
	if e.owner == 0 {
		return
	}

	e.mu.Lock()
	e.pending[id] = struct{}{}
	e.mu.Unlock()

	if err := e.store.Delete(ctx, id); err != nil {
		e.log.Warn("delete failed", "id", id, "err", err)
		e.failDelete()
		return
	}
	if err := e.refresh(ctx); err != nil {
		e.log.Warn("reload after delete failed", "err", err)
		e.failDelete()
		return
	}

	e.mu.Lock()
	delete(e.pending, id)
	e.mu.Unlock()
}

// RemoveCompleted deletes every completed todo. All deletes are dispatched
// concurrently and all settle before the reload; the first failure wins the
// error report but never orphans an in-flight call.
func (e *Engine) RemoveCompleted(ctx context.Context) {
	if e.owner == 0 {
		return
	}

	e.mu.Lock()
	ids := todo.CompletedIDs(e.todos)
	for _, id := range ids {
		e.pending[id] = struct{}{}
	}
	e.mu.Unlock()

	if len(ids) == 0 {
		return
	}

	if err := e.settleAll(ids, func(id int) error {
		return e.store.Delete(ctx, id)
	}); err != nil {
		e.log.Warn("bulk delete failed", "err", err)
		e.failDelete()
		return
	}
	if err := e.refresh(ctx); err != nil {
		e.log.Warn("reload after bulk delete failed", "err", err)
		e.failDelete()
		return
	}

	e.mu.Lock()
	for _, id := range ids {
		delete(e.pending, id)
	}
	e.mu.Unlock()
}

// Toggle flips one todo's completion flag. Unknown ids are ignored.
func (e *Engine) Toggle(ctx context.Context, id int) {
	if e.owner == 0 {
		return
	}

	e.mu.Lock()
	var flipped bool
	found := false
	for _, t := range e.todos {
		if t.ID == id {
			flipped = !t.Completed
			found = true
			break
		}
	}
	if !found {
		e.mu.Unlock()
		return
	}
	e.selected[id] = struct{}{}
	e.mu.Unlock()

	if _, err := e.store.Update(ctx, id, store.Patch{Completed: &flipped}); err != nil {
		e.log.Warn("toggle failed", "id", id, "err", err)
		e.failUpdate()
		return
	}
	if err := e.refresh(ctx); err != nil {
		e.log.Warn("reload after toggle failed", "err", err)
		e.failUpdate()
		return
	}

	e.mu.Lock()
	delete(e.selected, id)
	e.mu.Unlock()
}

// ToggleAll completes every incomplete todo; when the whole list is already
// completed it flips every todo back to incomplete. Updates are dispatched
// concurrently and all settle before the reload.
func (e *Engine) ToggleAll(ctx context.Context) {
	if e.owner == 0 {
		return
	}

	e.mu.Lock()
	allCompleted := todo.AllCompleted(e.todos)
	targets := make(map[int]bool)
	var ids []int
	for _, t := range e.todos {
		if !t.Completed || allCompleted {
			targets[t.ID] = !t.Completed
			ids = append(ids, t.ID)
			e.selected[t.ID] = struct{}{}
		}
	}
	e.mu.Unlock()

	if len(ids) == 0 {
		return
	}

	if err := e.settleAll(ids, func(id int) error {
		completed := targets[id]
		_, err := e.store.Update(ctx, id, store.Patch{Completed: &completed})
		return err
	}); err != nil {
		e.log.Warn("bulk toggle failed", "err", err)
		e.failUpdate()
		return
	}
	if err := e.refresh(ctx); err != nil {
		e.log.Warn("reload after bulk toggle failed", "err", err)
		e.failUpdate()
		return
	}

	e.mu.Lock()
	for _, id := range ids {
		delete(e.selected, id)
	}
	e.mu.Unlock()
}

// Rename changes one todo's title.
func (e *Engine) Rename(ctx context.Context, id int, title string) {
	if e.owner == 0 {
		return
	}

	e.mu.Lock()
	e.selected = map[int]struct{}{id: {}}
	e.mu.Unlock()

	if _, err := e.store.Update(ctx, id, store.Patch{Title: &title}); err != nil {
		e.log.Warn("rename failed", "id", id, "err", err)
		e.failUpdate()
		return
	}
	if err := e.refresh(ctx); err != nil {
		e.log.Warn("reload after rename failed", "err", err)
		e.failUpdate()
		return
	}

	e.mu.Lock()
	delete(e.selected, id)
	e.mu.Unlock()
}

// refresh replaces the cached list with a fresh authoritative read.
func (e *Engine) refresh(ctx context.Context) error {
	list, err := e.store.List(ctx, e.owner)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.todos = list
	e.mu.Unlock()
	e.log.Debug("reloaded", "count", len(list))
	return nil
}

// settleAll runs fn for every id concurrently and waits for all of them.
// It returns the first error observed.
func (e *Engine) settleAll(ids []int, fn func(id int) error) error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, id := range ids {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if err := fn(id); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()
	return firstErr
}

// failDelete applies the broad-rollback policy for delete operations:
// the whole pending set is reset, not just the failed id.
func (e *Engine) failDelete() {
	e.notify.Raise(MsgDeleteFailed)
	e.mu.Lock()
	e.pending = make(map[int]struct{})
	e.mu.Unlock()
}

// failUpdate applies the broad-rollback policy for update operations.
func (e *Engine) failUpdate() {
	e.notify.Raise(MsgUpdateFailed)
	e.mu.Lock()
	e.selected = make(map[int]struct{})
	e.mu.Unlock()
}

func (e *Engine) setAdding(v bool) {
	e.mu.Lock()
	e.adding = v
	e.mu.Unlock()
}

func sortedIDs(set map[int]struct{}) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
