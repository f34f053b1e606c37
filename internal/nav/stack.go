package nav

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dialdeck/dialdeck/internal/tile"
)

// Stack is one overlay's folder-descent history.
//
// The dashboard instantiates two independent stacks - one for the picker
// overlay, one for the read-only viewer - sharing nothing but the adapter.
// Frames form a strict root-to-current path: Enter pushes the previous
// current frame, Back pops it, and an empty stack with a nil current means
// the overlay is showing the root listing.
//
// STALE-RESPONSE GUARD:
// Enter resolves the target via the adapter outside the lock, so a lookup
// may still be in flight when the owning overlay is dismissed. Reset bumps
// a generation counter; a resolution carrying an older generation is
// discarded on arrival instead of resurrecting a dead overlay.
type Stack struct {
	name    string
	adapter TreeAdapter
	logger  *slog.Logger

	mu      sync.Mutex
	history []*tile.Node
	current *tile.Node // nil = root listing
	gen     uint64
}

// Option configures a Stack.
type Option func(*Stack)

// WithLogger sets the logger used for degraded-path reporting.
func WithLogger(l *slog.Logger) Option {
	return func(s *Stack) { s.logger = l }
}

// NewStack creates a navigation stack for one overlay context.
// The name tags log lines ("picker", "viewer"); it carries no behavior.
func NewStack(name string, adapter TreeAdapter, opts ...Option) *Stack {
	s := &Stack{
		name:    name,
		adapter: adapter,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enter descends into a folder.
//
// On success the previous current frame is pushed and the resolved node
// becomes current. A missing node (TreeLookupMiss) leaves the stack
// unchanged. A resolution arriving after Reset is discarded.
func (s *Stack) Enter(ctx context.Context, nodeID string) {
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	node, err := Snapshot(ctx, s.adapter, nodeID)
	if err != nil {
		s.logger.Warn("tree lookup failed",
			"overlay", s.name,
			"node_id", nodeID,
			"error", err)
		return
	}
	if node == nil {
		s.logger.Debug("tree node missing, navigation unchanged",
			"overlay", s.name,
			"node_id", nodeID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		s.logger.Debug("discarding stale navigation response",
			"overlay", s.name,
			"node_id", nodeID)
		return
	}
	if s.current != nil {
		s.history = append(s.history, s.current)
	}
	s.current = node
}

// Back pops one frame. With an empty history the overlay returns to the
// root listing (current = nil).
func (s *Stack) Back() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.history); n > 0 {
		s.current = s.history[n-1]
		s.history[n-1] = nil // release the frame
		s.history = s.history[:n-1]
		return
	}
	s.current = nil
}

// Reset clears history and current unconditionally and invalidates any
// in-flight Enter. Called when the owning overlay is dismissed.
func (s *Stack) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.current = nil
	s.gen++
}

// Current returns the current folder frame, or nil when at root.
func (s *Stack) Current() *tile.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Depth returns the number of history frames below current.
func (s *Stack) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// Listing returns what the owning overlay should render: the current
// folder's children, or the adapter's root listing when at root.
func (s *Stack) Listing(ctx context.Context) ([]*tile.Node, error) {
	s.mu.Lock()
	cur := s.current
	s.mu.Unlock()

	if cur != nil {
		return cur.Children, nil
	}
	return s.adapter.Root(ctx)
}
