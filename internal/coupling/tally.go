package coupling

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/danielpatrickdp/srl-toolkit/internal/distribution"
)

var ErrInvalidWeight = errors.New("invalid sample weight")

// TallyVariable names a coupler and its domain labels for a Tally.
type TallyVariable struct {
	Name    string
	Domain  []string
	Coupler VariableLogicCoupler
}

// BooleanTallyVariable names a boolean coupler after its atom.
func BooleanTallyVariable(b *BooleanVariable) TallyVariable {
	return TallyVariable{
		Name:    b.Atom().String(),
		Domain:  slices.Clone(BooleanDomain),
		Coupler: b,
	}
}

// Tally accumulates weighted worlds into per-variable value counts.
type Tally struct {
	vars   []TallyVariable
	counts [][]float64
	total  float64
}

// NewTally prepares zeroed counts for vars. Names must be unique.
func NewTally(vars []TallyVariable) (*Tally, error) {
	counts := make([][]float64, len(vars))
	seen := make(map[string]struct{}, len(vars))
	for i, v := range vars {
		if _, dup := seen[v.Name]; dup {
			return nil, fmt.Errorf("variable %q: %w", v.Name, distribution.ErrDuplicateVariable)
		}
		seen[v.Name] = struct{}{}
		if v.Coupler == nil {
			return nil, fmt.Errorf("variable %q has no coupler", v.Name)
		}
		if len(v.Domain) != v.Coupler.DomainSize() {
			return nil, fmt.Errorf("variable %q: %d labels for domain of size %d: %w",
				v.Name, len(v.Domain), v.Coupler.DomainSize(), distribution.ErrShapeMismatch)
		}
		counts[i] = make([]float64, len(v.Domain))
	}
	return &Tally{vars: vars, counts: counts}, nil
}

// Add records w with the given weight. A failed Add leaves the tally unchanged.
func (t *Tally) Add(w World, weight float64) error {
	if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return fmt.Errorf("weight %v: %w", weight, ErrInvalidWeight)
	}
	idx := make([]int, len(t.vars))
	for i, v := range t.vars {
		k := v.Coupler.ValueIndex(w)
		if k < 0 || k >= len(t.counts[i]) {
			return fmt.Errorf("variable %q value %d: %w", v.Name, k, ErrInvalidDomainIndex)
		}
		idx[i] = k
	}
	for i, k := range idx {
		t.counts[i][k] += weight
	}
	t.total += weight
	return nil
}

// Total returns the summed weight of all added worlds.
func (t *Tally) Total() float64 {
	return t.total
}

// Distribution snapshots the tally. Z is the total weight, or absent when
// nothing has been added.
func (t *Tally) Distribution() (*distribution.Distribution, error) {
	names := make([]string, len(t.vars))
	domains := make([][]string, len(t.vars))
	values := make([][]float64, len(t.vars))
	for i, v := range t.vars {
		names[i] = v.Name
		domains[i] = slices.Clone(v.Domain)
		values[i] = slices.Clone(t.counts[i])
	}
	var z *float64
	if t.total > 0 {
		total := t.total
		z = &total
	}
	return distribution.New(values, z, names, domains)
}
