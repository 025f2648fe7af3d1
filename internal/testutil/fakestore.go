// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"sync"

	"todosync/internal/store"
	"todosync/internal/todo"
)

// ErrNotFound is returned when a todo does not exist.
var ErrNotFound = errors.New("not found")

// FakeStore is an in-memory implementation of store.Store for testing.
// Bulk engine operations hit it from several goroutines, so all state is
// mutex-guarded.
type FakeStore struct {
	mu     sync.Mutex
	todos  []todo.Todo
	nextID int

	// Error injection.
	ListErr      error
	CreateErr    error
	UpdateErr    error
	DeleteErr    error
	UpdateErrFor map[int]error // id -> error
	DeleteErrFor map[int]error // id -> error

	// Call counters.
	ListCalls   int
	CreateCalls int
	UpdateCalls int
	DeleteCalls int
}

// NewFakeStore creates an empty fake store.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		nextID:       1,
		UpdateErrFor: make(map[int]error),
		DeleteErrFor: make(map[int]error),
	}
}

// Seed replaces the stored todos and bumps the id counter past them.
func (f *FakeStore) Seed(todos ...todo.Todo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.todos = append([]todo.Todo(nil), todos...)
	for _, t := range todos {
		if t.ID >= f.nextID {
			f.nextID = t.ID + 1
		}
	}
}

// Todos returns a copy of the stored todos.
func (f *FakeStore) Todos() []todo.Todo {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]todo.Todo, len(f.todos))
	copy(out, f.todos)
	return out
}

// List implements store.Store.
func (f *FakeStore) List(ctx context.Context, ownerID int) ([]todo.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	var out []todo.Todo
	for _, t := range f.todos {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

// Create implements store.Store.
func (f *FakeStore) Create(ctx context.Context, title string, ownerID int) (todo.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls++
	if f.CreateErr != nil {
		return todo.Todo{}, f.CreateErr
	}
	t := todo.Todo{ID: f.nextID, Title: title, OwnerID: ownerID}
	f.nextID++
	f.todos = append(f.todos, t)
	return t, nil
}

// Update implements store.Store.
func (f *FakeStore) Update(ctx context.Context, id int, p store.Patch) (todo.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateCalls++
	if f.UpdateErr != nil {
		return todo.Todo{}, f.UpdateErr
	}
	if err := f.UpdateErrFor[id]; err != nil {
		return todo.Todo{}, err
	}
	for i := range f.todos {
		if f.todos[i].ID == id {
			if p.Title != nil {
				f.todos[i].Title = *p.Title
			}
			if p.Completed != nil {
				f.todos[i].Completed = *p.Completed
			}
			return f.todos[i], nil
		}
	}
	return todo.Todo{}, ErrNotFound
}

// Delete implements store.Store.
func (f *FakeStore) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DeleteCalls++
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	if err := f.DeleteErrFor[id]; err != nil {
		return err
	}
	for i, t := range f.todos {
		if t.ID == id {
			f.todos = append(f.todos[:i], f.todos[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
