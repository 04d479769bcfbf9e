package coupling

import (
	"fmt"
	"iter"
)

// Domain indices of a boolean variable. True comes first.
const (
	IndexTrue  = 0
	IndexFalse = 1
)

// BooleanDomain lists the value labels in domain-index order.
var BooleanDomain = []string{"True", "False"}

// BooleanVariable couples a boolean ground atom to a two-valued domain.
type BooleanVariable struct {
	atom GroundAtom
}

var _ VariableLogicCoupler = (*BooleanVariable)(nil)

// NewBooleanVariable couples atom, copied by value.
func NewBooleanVariable(atom GroundAtom) *BooleanVariable {
	return &BooleanVariable{atom: atom}
}

// Atom returns the coupled atom handle.
func (b *BooleanVariable) Atom() GroundAtom {
	return b.atom
}

// DomainSize is always 2.
func (b *BooleanVariable) DomainSize() int {
	return len(BooleanDomain)
}

// ValueIndex returns IndexTrue if the atom holds in w and IndexFalse otherwise.
func (b *BooleanVariable) ValueIndex(w World) int {
	if w.Get(b.atom.Index) {
		return IndexTrue
	}
	return IndexFalse
}

// SetValueIndex writes the truth value selected by domIdx into w.
func (b *BooleanVariable) SetValueIndex(w World, domIdx int) error {
	value, err := truthOf(domIdx)
	if err != nil {
		return err
	}
	w.Set(b.atom.Index, value)
	return nil
}

// Literal returns the literal over the coupled atom, positive iff domIdx is IndexTrue.
func (b *BooleanVariable) Literal(domIdx int, vars WorldVariables) (GroundLiteral, error) {
	positive, err := truthOf(domIdx)
	if err != nil {
		return GroundLiteral{}, err
	}
	atom, ok := vars.Atom(b.atom.Index)
	if !ok {
		return GroundLiteral{}, fmt.Errorf("atom %d: %w", b.atom.Index, ErrUnknownAtom)
	}
	return GroundLiteral{Positive: positive, Atom: atom}, nil
}

// OriginalArguments yields the atom's arguments after the identity slot.
func (b *BooleanVariable) OriginalArguments() iter.Seq[string] {
	args := b.atom.Args
	return func(yield func(string) bool) {
		for i := 1; i < len(args); i++ {
			if !yield(args[i]) {
				return
			}
		}
	}
}

func truthOf(domIdx int) (bool, error) {
	switch domIdx {
	case IndexTrue:
		return true, nil
	case IndexFalse:
		return false, nil
	default:
		return false, fmt.Errorf("boolean variable index %d: %w", domIdx, ErrInvalidDomainIndex)
	}
}
