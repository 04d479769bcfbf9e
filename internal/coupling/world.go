package coupling

import (
	"fmt"
	"strings"
)

// #region possible-world
// PossibleWorld is a dense truth assignment over atoms 0..n-1.
// It is not safe for concurrent writers.
type PossibleWorld struct {
	state []bool
}

var _ World = (*PossibleWorld)(nil)

// NewPossibleWorld returns a world of n atoms, all false.
func NewPossibleWorld(n int) *PossibleWorld {
	return &PossibleWorld{state: make([]bool, n)}
}

// Len returns the number of atoms.
func (w *PossibleWorld) Len() int {
	return len(w.state)
}

// Get panics on an index outside the world, like a slice access.
func (w *PossibleWorld) Get(idx int) bool {
	return w.state[idx]
}

// Set assigns value to atom idx.
func (w *PossibleWorld) Set(idx int, value bool) {
	w.state[idx] = value
}

// Clone returns an independent copy.
func (w *PossibleWorld) Clone() *PossibleWorld {
	state := make([]bool, len(w.state))
	copy(state, w.state)
	return &PossibleWorld{state: state}
}

// String renders the world as a bit string, atom 0 first.
func (w *PossibleWorld) String() string {
	var sb strings.Builder
	sb.Grow(len(w.state))
	for _, v := range w.state {
		if v {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// #endregion possible-world

// #region atom-table
// AtomTable is a WorldVariables backed by atoms stored at their own index.
type AtomTable []GroundAtom

// Atom returns the atom at idx if its handle matches idx.
func (t AtomTable) Atom(idx int) (GroundAtom, bool) {
	if idx < 0 || idx >= len(t) || t[idx].Index != idx {
		return GroundAtom{}, false
	}
	return t[idx], true
}

// #endregion atom-table

// #region literal
// GroundLiteral is a ground atom with a polarity.
type GroundLiteral struct {
	Positive bool
	Atom     GroundAtom
}

// IsTrue reports whether the literal holds in w.
func (l GroundLiteral) IsTrue(w World) bool {
	return w.Get(l.Atom.Index) == l.Positive
}

// String renders negative literals with a leading "!".
func (l GroundLiteral) String() string {
	if l.Positive {
		return l.Atom.String()
	}
	return "!" + l.Atom.String()
}

// String formats the atom as label(arg, ...), using the identity slot as label.
func (a GroundAtom) String() string {
	if len(a.Args) == 0 {
		return fmt.Sprintf("atom#%d", a.Index)
	}
	return a.Args[0] + "(" + strings.Join(a.Args[1:], ",") + ")"
}

// #endregion literal
