package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"todosync/internal/todo"
)

// newTestServer routes the CRUD surface the client speaks and records the
// last request seen.
func newTestServer(t *testing.T) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}

	r := mux.NewRouter()
	r.HandleFunc("/todos", func(w http.ResponseWriter, req *http.Request) {
		rec.capture(req)
		json.NewEncoder(w).Encode([]todo.Todo{
			{ID: 1, Title: "A", OwnerID: 7},
			{ID: 2, Title: "B", Completed: true, OwnerID: 7},
		})
	}).Methods(http.MethodGet)

	r.HandleFunc("/todos", func(w http.ResponseWriter, req *http.Request) {
		rec.capture(req)
		var body map[string]interface{}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rec.body = body
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(todo.Todo{ID: 201, Title: body["title"].(string), OwnerID: 7})
	}).Methods(http.MethodPost)

	r.HandleFunc("/todos/{id}", func(w http.ResponseWriter, req *http.Request) {
		rec.capture(req)
		rec.pathID = mux.Vars(req)["id"]
		var body map[string]interface{}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rec.body = body
		json.NewEncoder(w).Encode(todo.Todo{ID: 1, Title: "A", Completed: true, OwnerID: 7})
	}).Methods(http.MethodPatch)

	r.HandleFunc("/todos/{id}", func(w http.ResponseWriter, req *http.Request) {
		rec.capture(req)
		rec.pathID = mux.Vars(req)["id"]
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("{}"))
	}).Methods(http.MethodDelete)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, rec
}

type recorded struct {
	method    string
	query     string
	auth      string
	requestID string
	pathID    string
	body      map[string]interface{}
}

func (r *recorded) capture(req *http.Request) {
	r.method = req.Method
	r.query = req.URL.RawQuery
	r.auth = req.Header.Get("Authorization")
	r.requestID = req.Header.Get("X-Request-Id")
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(ClientOptions{
		BaseURL:   baseURL,
		AuthToken: "sekrit",
		Timeout:   5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestClientList(t *testing.T) {
	srv, rec := newTestServer(t)
	c := newTestClient(t, srv.URL)

	todos, err := c.List(context.Background(), 7)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(todos) != 2 || todos[0].Title != "A" {
		t.Errorf("todos: got %+v", todos)
	}
	if rec.query != "userId=7" {
		t.Errorf("query: got %q, want %q", rec.query, "userId=7")
	}
	if rec.auth != "Bearer sekrit" {
		t.Errorf("auth header: got %q", rec.auth)
	}
	if rec.requestID == "" {
		t.Error("X-Request-Id header missing")
	}
}

func TestClientCreate(t *testing.T) {
	srv, rec := newTestServer(t)
	c := newTestClient(t, srv.URL)

	created, err := c.Create(context.Background(), "Buy milk", 7)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != 201 {
		t.Errorf("created id: got %d, want 201", created.ID)
	}
	if rec.body["title"] != "Buy milk" {
		t.Errorf("body title: got %v", rec.body["title"])
	}
	if rec.body["completed"] != false {
		t.Errorf("body completed: got %v", rec.body["completed"])
	}
	if rec.body["userId"] != float64(7) {
		t.Errorf("body userId: got %v", rec.body["userId"])
	}
}

func TestClientUpdate(t *testing.T) {
	srv, rec := newTestServer(t)
	c := newTestClient(t, srv.URL)

	completed := true
	updated, err := c.Update(context.Background(), 1, Patch{Completed: &completed})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.Completed {
		t.Error("updated todo should be completed")
	}
	if rec.pathID != "1" {
		t.Errorf("path id: got %q, want %q", rec.pathID, "1")
	}
	if rec.body["completed"] != true {
		t.Errorf("body completed: got %v", rec.body["completed"])
	}
	// Nil patch fields stay off the wire.
	if _, ok := rec.body["title"]; ok {
		t.Errorf("body should not contain title: %v", rec.body)
	}
}

func TestClientDelete(t *testing.T) {
	srv, rec := newTestServer(t)
	c := newTestClient(t, srv.URL)

	if err := c.Delete(context.Background(), 2); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if rec.method != http.MethodDelete || rec.pathID != "2" {
		t.Errorf("request: got %s /todos/%s", rec.method, rec.pathID)
	}
}

func TestClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	c := newTestClient(t, srv.URL)

	if _, err := c.List(context.Background(), 7); err == nil {
		t.Error("List should fail on a 500")
	}
	if err := c.Delete(context.Background(), 1); err == nil {
		t.Error("Delete should fail on a 500")
	}
}

func TestClientValidateResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode([]todo.Todo{{ID: -1, Title: "bad", OwnerID: 7}})
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(ClientOptions{BaseURL: srv.URL, ValidateResponses: true})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := c.List(context.Background(), 7); err == nil {
		t.Error("List should reject a payload that fails schema validation")
	}
}

func TestNewClientLeavesCallerClientAlone(t *testing.T) {
	caller := &http.Client{}
	c, err := NewClient(ClientOptions{
		BaseURL:    "https://todos.example.com",
		HTTPClient: caller,
		Timeout:    5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if caller.Timeout != 0 {
		t.Errorf("caller's client was mutated: timeout %v", caller.Timeout)
	}
	if c.http.Timeout != 5*time.Second {
		t.Errorf("client timeout: got %v, want 5s", c.http.Timeout)
	}
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	for _, u := range []string{"", "not-a-url", "/just/a/path"} {
		if _, err := NewClient(ClientOptions{BaseURL: u}); err == nil {
			t.Errorf("NewClient(%q): expected error", u)
		}
	}
}
