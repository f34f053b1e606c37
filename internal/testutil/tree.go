package testutil

import (
	"context"
	"sync"

	"github.com/dialdeck/dialdeck/internal/tile"
)

// FakeTree is an in-memory tree adapter over a fixed node forest.
//
// Subtree resolution is by id across the whole forest. Missing ids resolve
// to (nil, nil) - absent, not an error - matching the host contract.
//
// BeforeSubtree, when set, runs synchronously before each Subtree resolution.
// Navigation tests use it to reset a stack mid-lookup and exercise the
// stale-response guard.
type FakeTree struct {
	mu            sync.Mutex
	roots         []*tile.Node
	index         map[string]*tile.Node
	BeforeSubtree func(id string)
}

// NewFakeTree builds an adapter over the given root nodes.
// The forest is indexed iteratively; depth is unbounded.
func NewFakeTree(roots ...*tile.Node) *FakeTree {
	f := &FakeTree{roots: roots, index: make(map[string]*tile.Node)}
	stack := append([]*tile.Node(nil), roots...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}
		f.index[n.ID] = n
		stack = append(stack, n.Children...)
	}
	return f
}

// Root returns the top-level node listing.
func (f *FakeTree) Root(ctx context.Context) ([]*tile.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*tile.Node(nil), f.roots...), nil
}

// Subtree resolves a node by id anywhere in the forest.
func (f *FakeTree) Subtree(ctx context.Context, id string) (*tile.Node, error) {
	f.mu.Lock()
	hook := f.BeforeSubtree
	f.mu.Unlock()
	if hook != nil {
		hook(id)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.index[id], nil
}

// Folder is a convenience constructor for a folder node.
func Folder(id, title string, children ...*tile.Node) *tile.Node {
	if children == nil {
		children = []*tile.Node{}
	}
	return &tile.Node{ID: id, Title: title, Children: children}
}

// Bookmark is a convenience constructor for a leaf node.
func Bookmark(id, title, url string) *tile.Node {
	return &tile.Node{ID: id, Title: title, URL: url}
}
