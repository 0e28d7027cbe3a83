// Package search holds the single free-text query shared by every list screen
// of a workspace.
package search

import (
	"strings"
	"sync"
)

// Container is the workspace's current search term.
type Container struct {
	mu    sync.RWMutex
	query string
}

func NewContainer() *Container { return &Container{} }

func (c *Container) Set(q string) {
	c.mu.Lock()
	c.query = q
	c.mu.Unlock()
}

func (c *Container) Query() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.query
}

func (c *Container) Clear() { c.Set("") }

// Matches reports whether any field contains term, ignoring case. A blank
// term matches everything.
func Matches(term string, fields ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// Filter returns the items whose fields match term, preserving order.
func Filter[T any](items []T, term string, fields func(T) []string) []T {
	if strings.TrimSpace(term) == "" {
		out := make([]T, len(items))
		copy(out, items)
		return out
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if Matches(term, fields(it)...) {
			out = append(out, it)
		}
	}
	return out
}
