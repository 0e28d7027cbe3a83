package session

import "sync"

// History is a workspace's navigation stack: the current path plus the
// entries behind and ahead of it.
type History struct {
	mu      sync.Mutex
	current string
	back    []string
	forward []string
}

func NewHistory(start string) *History {
	if start == "" {
		start = "/"
	}
	return &History{current: start}
}

func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Navigate makes path current, pushing the previous entry and discarding the
// forward stack. Navigating to the current path is a no-op.
func (h *History) Navigate(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if path == h.current {
		return
	}
	h.back = append(h.back, h.current)
	h.current = path
	h.forward = nil
}

// Back moves one entry back. ok is false at the start of history.
func (h *History) Back() (path string, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.back) == 0 {
		return h.current, false
	}
	h.forward = append(h.forward, h.current)
	h.current = h.back[len(h.back)-1]
	h.back = h.back[:len(h.back)-1]
	return h.current, true
}

// Forward moves one entry forward. ok is false at the end of history.
func (h *History) Forward() (path string, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.forward) == 0 {
		return h.current, false
	}
	h.back = append(h.back, h.current)
	h.current = h.forward[len(h.forward)-1]
	h.forward = h.forward[:len(h.forward)-1]
	return h.current, true
}

// Reset clears history and starts over at path.
func (h *History) Reset(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = path
	h.back = nil
	h.forward = nil
}
