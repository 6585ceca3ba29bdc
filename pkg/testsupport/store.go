package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned by Store for GET paths with no served record.
var ErrNotFound = errors.New("testsupport: not found")

// Call is one request seen by Store.
type Call struct {
	Method string
	Path   string
	Body   any
}

// Store is an in-memory backend. GET answers served records; every other
// method answers {"id": NextID}. Responses are round-tripped through JSON so
// callers decode the shapes a real transport would produce.
type Store struct {
	mu       sync.Mutex
	records  map[string]any
	failures map[string]failure
	calls    []Call

	NextID any
}

type failure struct {
	err       error
	remaining int
}

// NewStore returns an empty store answering writes with id 99.
func NewStore() *Store {
	return &Store{
		records:  make(map[string]any),
		failures: make(map[string]failure),
		NextID:   99,
	}
}

// Serve registers the GET response for path.
func (s *Store) Serve(path string, record any) {
	s.mu.Lock()
	s.records[path] = record
	s.mu.Unlock()
}

// Fail makes method+path fail times times; times <= 0 fails forever.
func (s *Store) Fail(method, path string, times int) {
	s.mu.Lock()
	s.failures[method+" "+path] = failure{err: fmt.Errorf("testsupport: %s %s: backend unavailable", method, path), remaining: times}
	s.mu.Unlock()
}

// Do implements the record transport used by engines and grids.
func (s *Store) Do(_ context.Context, method, path string, body, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Method: method, Path: path, Body: body})

	key := method + " " + path
	if f, ok := s.failures[key]; ok {
		switch {
		case f.remaining <= 0:
			return f.err
		case f.remaining == 1:
			delete(s.failures, key)
		default:
			f.remaining--
			s.failures[key] = f
		}
		return f.err
	}

	var response any = map[string]any{"id": s.NextID}
	if method == "GET" {
		record, ok := s.records[path]
		if !ok {
			return fmt.Errorf("%w: GET %s", ErrNotFound, path)
		}
		response = record
	}
	if out == nil {
		return nil
	}
	raw, err := json.Marshal(response)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// Calls returns every request in arrival order.
func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Writes returns the non-GET requests in arrival order.
func (s *Store) Writes() []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method != "GET" {
			out = append(out, c)
		}
	}
	return out
}
