// Package store defines the remote todo store and its HTTP implementation.
package store

import (
	"context"

	"todosync/internal/todo"
)

// Patch is a partial update to a todo. Nil fields are left untouched.
type Patch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Store is the remote CRUD contract. All engine calls go through this
// interface; the engine never touches the transport directly.
type Store interface {
	// List returns all todos belonging to the owner, in server order.
	List(ctx context.Context, ownerID int) ([]todo.Todo, error)

	// Create creates a todo with the given title and returns the
	// server-assigned record.
	Create(ctx context.Context, title string, ownerID int) (todo.Todo, error)

	// Update applies a partial update and returns the updated record.
	Update(ctx context.Context, id int, p Patch) (todo.Todo, error)

	// Delete removes a todo by id.
	Delete(ctx context.Context, id int) error
}
