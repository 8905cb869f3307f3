package ikbd

import (
	"log/slog"

	"github.com/nevisdale/ikbd/internal/input"
)

const (
	matrixColumns = 15
	matrixRows    = 8
)

// keyMatrix is the set of keys held down, one row mask per column.
type keyMatrix struct {
	cols    [matrixColumns]uint8
	pending []input.Transition
}

func (k *keyMatrix) apply(tr input.Transition) {
	col, row := int(tr.Code/matrixRows), tr.Code%matrixRows
	if col >= matrixColumns {
		slog.Debug("ikbd: key code outside the matrix", "code", tr.Code)
		return
	}
	if tr.Pressed {
		k.cols[col] |= 1 << row
	} else {
		k.cols[col] &^= 1 << row
	}
}

// drain applies every transition queued by the host since the last call.
func (k *keyMatrix) drain(in input.Provider) {
	k.pending = in.KeyTransitions(k.pending[:0])
	for _, tr := range k.pending {
		k.apply(tr)
	}
}

// flush forgets held keys and anything still queued.
func (k *keyMatrix) flush(in input.Provider) {
	k.pending = in.KeyTransitions(k.pending[:0])
	k.cols = [matrixColumns]uint8{}
}

// rows returns the active-low row lines with the columns in cols
// driven low.
func (k *keyMatrix) rows(cols uint16) uint8 {
	var pressed uint8
	for col := range matrixColumns {
		if cols&(1<<col) > 0 {
			pressed |= k.cols[col]
		}
	}
	return ^pressed
}

func (k *keyMatrix) held(code uint8) bool {
	col, row := int(code/matrixRows), code%matrixRows
	return col < matrixColumns && k.cols[col]&(1<<row) > 0
}
