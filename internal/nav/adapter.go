// Package nav implements folder navigation over an external tree source:
// the TreeAdapter contract the host must satisfy, a per-overlay navigation
// stack, and a detaching subtree snapshot.
package nav

import (
	"context"

	"github.com/dialdeck/dialdeck/internal/tile"
)

// TreeAdapter is the read-only view of the host's hierarchical item source.
//
// Subtree returns (nil, nil) for an unknown id - absence is an expected
// outcome (the host may have deleted the node since it was bound), not an
// error. Errors are reserved for transport-level failures.
//
// The core never mutates the tree; no write capability is exposed here.
type TreeAdapter interface {
	Root(ctx context.Context) ([]*tile.Node, error)
	Subtree(ctx context.Context, id string) (*tile.Node, error)
}

// Snapshot resolves a node and returns a deep copy detached from the
// adapter's backing storage.
//
// The walk is iterative with an explicit stack: bookmark trees can be
// arbitrarily deep and a recursive copy would put their depth on the
// goroutine stack.
func Snapshot(ctx context.Context, adapter TreeAdapter, id string) (*tile.Node, error) {
	src, err := adapter.Subtree(ctx, id)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, nil
	}
	return CopyTree(src), nil
}

// CopyTree deep-copies a node tree iteratively.
func CopyTree(src *tile.Node) *tile.Node {
	if src == nil {
		return nil
	}
	dst := &tile.Node{ID: src.ID, Title: src.Title, URL: src.URL}

	type frame struct {
		src *tile.Node
		dst *tile.Node
	}
	stack := []frame{{src, dst}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.src.Children == nil {
			continue
		}
		f.dst.Children = make([]*tile.Node, len(f.src.Children))
		for i, child := range f.src.Children {
			if child == nil {
				continue
			}
			cp := &tile.Node{ID: child.ID, Title: child.Title, URL: child.URL}
			f.dst.Children[i] = cp
			stack = append(stack, frame{child, cp})
		}
	}
	return dst
}
