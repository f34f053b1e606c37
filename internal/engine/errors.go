package engine

import (
	"errors"
	"fmt"

	"github.com/dialdeck/dialdeck/internal/tile"
)

// ErrIndexOutOfRange is returned when a slot index falls outside
// [0, tile.Capacity). It is the only error a mutation can return: every
// other failure mode (corrupt load, store write failure, unresolvable
// reorder tag) degrades to a safe default and is logged instead of
// propagated.
var ErrIndexOutOfRange = errors.New("slot index out of range")

// indexError wraps ErrIndexOutOfRange with the offending value.
func indexError(index int) error {
	return fmt.Errorf("%w: %d (capacity %d)", ErrIndexOutOfRange, index, tile.Capacity)
}
