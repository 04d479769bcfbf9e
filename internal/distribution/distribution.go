package distribution

import (
	"fmt"
	"slices"
)

// #region constructor
// New builds a distribution from caller-supplied arrays. The arrays are kept
// as given; only the name index is derived here. z may be nil when the
// producer did not record a normalization constant.
func New(values [][]float64, z *float64, names []string, domains [][]string) (*Distribution, error) {
	if len(names) != len(domains) {
		return nil, fmt.Errorf("%d names for %d domains: %w", len(names), len(domains), ErrShapeMismatch)
	}
	index := make(map[string]int, len(names))
	for i, name := range names {
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("%q: %w", name, ErrDuplicateVariable)
		}
		index[name] = i
	}
	var zc *float64
	if z != nil {
		v := *z
		zc = &v
	}
	return &Distribution{
		values:  values,
		z:       zc,
		names:   names,
		domains: domains,
		index:   index,
	}, nil
}

// #endregion constructor

// #region accessors
// NumVariables returns the number of variables.
func (d *Distribution) NumVariables() int {
	return len(d.names)
}

// VariableNames returns a copy of the ordered variable names.
func (d *Distribution) VariableNames() []string {
	return slices.Clone(d.names)
}

// DomainOf returns the ordered value labels of variable idx.
func (d *Distribution) DomainOf(idx int) ([]string, error) {
	if err := d.checkIndex(idx); err != nil {
		return nil, err
	}
	return slices.Clone(d.domains[idx]), nil
}

// VariableName returns the name of variable idx.
func (d *Distribution) VariableName(idx int) (string, error) {
	if err := d.checkIndex(idx); err != nil {
		return "", err
	}
	return d.names[idx], nil
}

// VariableIndex returns the position of the named variable.
func (d *Distribution) VariableIndex(name string) (int, error) {
	idx, ok := d.index[name]
	if !ok {
		return 0, fmt.Errorf("%q: %w", name, ErrVariableNotFound)
	}
	return idx, nil
}

// Values returns a deep copy of the value matrix.
func (d *Distribution) Values() [][]float64 {
	out := make([][]float64, len(d.values))
	for i, row := range d.values {
		out[i] = slices.Clone(row)
	}
	return out
}

// Z returns the normalization constant and whether one was recorded.
func (d *Distribution) Z() (float64, bool) {
	if d.z == nil {
		return 0, false
	}
	return *d.z, true
}

func (d *Distribution) checkIndex(idx int) error {
	if idx < 0 || idx >= len(d.names) {
		return fmt.Errorf("index %d of %d: %w", idx, len(d.names), ErrIndexOutOfRange)
	}
	return nil
}

// #endregion accessors

// #region probability
// Probability returns values[varIdx][valueIdx] divided by Z, or the raw
// value when no normalization constant is present.
func (d *Distribution) Probability(varIdx, valueIdx int) (float64, error) {
	if varIdx < 0 || varIdx >= len(d.values) {
		return 0, fmt.Errorf("row %d of %d: %w", varIdx, len(d.values), ErrIndexOutOfRange)
	}
	row := d.values[varIdx]
	if valueIdx < 0 || valueIdx >= len(row) {
		return 0, fmt.Errorf("value %d of %d: %w", valueIdx, len(row), ErrIndexOutOfRange)
	}
	if d.z == nil {
		return row[valueIdx], nil
	}
	return row[valueIdx] / *d.z, nil
}

// Marginal maps each domain label of the named variable to its probability.
func (d *Distribution) Marginal(name string) (map[string]float64, error) {
	idx, err := d.VariableIndex(name)
	if err != nil {
		return nil, err
	}
	domain := d.domains[idx]
	if idx >= len(d.values) || len(d.values[idx]) != len(domain) {
		return nil, fmt.Errorf("marginal %q: %w", name, ErrShapeMismatch)
	}
	out := make(map[string]float64, len(domain))
	for i, label := range domain {
		p, err := d.Probability(idx, i)
		if err != nil {
			return nil, err
		}
		out[label] = p
	}
	return out, nil
}

// #endregion probability
