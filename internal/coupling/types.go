package coupling

import (
	"errors"
	"iter"
)

var (
	ErrInvalidDomainIndex = errors.New("invalid domain index")
	ErrUnknownAtom        = errors.New("unknown ground atom")
)

// #region collaborators
// World is an assignment of truth values to ground atoms, addressed by atom index.
type World interface {
	Get(idx int) bool
	Set(idx int, value bool)
}

// GroundAtom is a handle into an externally owned atom table. Args[0] is an
// identity slot and not a predicate argument.
type GroundAtom struct {
	Index int
	Args  []string
}

// WorldVariables resolves atom indices to ground atoms.
type WorldVariables interface {
	Atom(idx int) (GroundAtom, bool)
}

// #endregion collaborators

// #region coupler
// VariableLogicCoupler translates between a logical world and the value
// index of a discrete variable.
type VariableLogicCoupler interface {
	DomainSize() int
	ValueIndex(w World) int
	SetValueIndex(w World, domIdx int) error
	Literal(domIdx int, vars WorldVariables) (GroundLiteral, error)
	OriginalArguments() iter.Seq[string]
}

// #endregion coupler
