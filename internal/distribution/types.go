package distribution

import "errors"

var (
	ErrIndexOutOfRange   = errors.New("variable index out of range")
	ErrVariableNotFound  = errors.New("variable not found")
	ErrShapeMismatch     = errors.New("shape mismatch")
	ErrDuplicateVariable = errors.New("duplicate variable name")
	ErrFormat            = errors.New("invalid distribution format")
)

// #region distribution-struct
// Distribution is a sampled distribution over named discrete variables.
// It is read-only once built by New or Decode.
type Distribution struct {
	values  [][]float64
	z       *float64
	names   []string
	domains [][]string
	index   map[string]int
}

// #endregion distribution-struct
