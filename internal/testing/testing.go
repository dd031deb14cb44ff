// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/recipebox/internal/backend"
)

// CountingTable wraps a [backend.Table] and records every call made through it.
type CountingTable[T any] struct {
	Table backend.Table[T]

	// Err, when set, fails every call without reaching Table.
	Err error
	// BeforeSelect runs before each Select reaches Table. A returned error fails the call.
	BeforeSelect func(ctx context.Context, q backend.Query) error

	mu      sync.Mutex
	calls   map[string]int
	queries []backend.Query
	values  []backend.Values
}

// NewCountingTable wraps inner.
func NewCountingTable[T any](inner backend.Table[T]) *CountingTable[T] {
	return &CountingTable[T]{Table: inner, calls: map[string]int{}}
}

func (c *CountingTable[T]) record(op string, q *backend.Query, v backend.Values) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = map[string]int{}
	}
	c.calls[op]++
	if q != nil {
		c.queries = append(c.queries, *q)
	}
	if v != nil {
		c.values = append(c.values, v)
	}
}

// Calls returns how many times op ("select", "insert", "update", "delete") was called.
func (c *CountingTable[T]) Calls(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[op]
}

// Total returns the number of calls of any kind.
func (c *CountingTable[T]) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

// Queries returns the select queries seen, in order.
func (c *CountingTable[T]) Queries() []backend.Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]backend.Query(nil), c.queries...)
}

// Values returns the values passed to insert and update, in order.
func (c *CountingTable[T]) Values() []backend.Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]backend.Values(nil), c.values...)
}

func (c *CountingTable[T]) Select(ctx context.Context, q backend.Query) ([]*T, error) {
	c.record("select", &q, nil)
	if c.Err != nil {
		return nil, c.Err
	}
	if c.BeforeSelect != nil {
		if err := c.BeforeSelect(ctx, q); err != nil {
			return nil, err
		}
	}
	return c.Table.Select(ctx, q)
}

func (c *CountingTable[T]) Insert(ctx context.Context, values backend.Values) (*T, error) {
	c.record("insert", nil, values)
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Table.Insert(ctx, values)
}

func (c *CountingTable[T]) Update(ctx context.Context, filters []backend.Filter, values backend.Values) ([]*T, error) {
	c.record("update", nil, values)
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Table.Update(ctx, filters, values)
}

func (c *CountingTable[T]) Delete(ctx context.Context, filters []backend.Filter) (int64, error) {
	c.record("delete", nil, nil)
	if c.Err != nil {
		return 0, c.Err
	}
	return c.Table.Delete(ctx, filters)
}

// SearchTerm returns the term of the first contains filter in q, or "".
func SearchTerm(q backend.Query) string {
	for _, f := range q.Filters {
		if or, ok := f.(backend.Or); ok && len(or) > 0 {
			if like, ok := or[0].(backend.ILike); ok && len(like.Pattern) >= 2 {
				return like.Pattern[1 : len(like.Pattern)-1]
			}
		}
	}
	return ""
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
