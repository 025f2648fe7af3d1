// Package todo defines the todo model and pure list derivations.
package todo

import "fmt"

// Todo is a single list item as the server returns it. IDs are
// server-assigned and immutable; the wire name for the owner is "userId".
type Todo struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	OwnerID   int    `json:"userId"`
}

// Filter selects which subset of the list is visible.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ParseFilter parses a filter name. The empty string means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch s {
	case "", string(FilterAll):
		return FilterAll, nil
	case string(FilterActive):
		return FilterActive, nil
	case string(FilterCompleted):
		return FilterCompleted, nil
	}
	return "", fmt.Errorf("invalid filter %q, must be one of: all, active, completed", s)
}

func (f Filter) String() string {
	return string(f)
}

// Visible returns the subset of todos matching the filter, preserving
// order. FilterAll returns the input slice unchanged.
func Visible(todos []Todo, f Filter) []Todo {
	if f == FilterAll || f == "" {
		return todos
	}
	want := f == FilterCompleted
	var out []Todo
	for _, t := range todos {
		if t.Completed == want {
			out = append(out, t)
		}
	}
	return out
}

// AllCompleted reports whether every todo in the list is completed.
// An empty list counts as all-completed.
func AllCompleted(todos []Todo) bool {
	for _, t := range todos {
		if !t.Completed {
			return false
		}
	}
	return true
}

// CompletedIDs returns the ids of all completed todos, in list order.
func CompletedIDs(todos []Todo) []int {
	var ids []int
	for _, t := range todos {
		if t.Completed {
			ids = append(ids, t.ID)
		}
	}
	return ids
}
