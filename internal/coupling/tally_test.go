package coupling

import (
	"math"
	"testing"

	"github.com/danielpatrickdp/srl-toolkit/internal/distribution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTallyBuildsDistribution(t *testing.T) {
	atoms, w := fixture()
	tally, err := NewTally([]TallyVariable{
		BooleanTallyVariable(NewBooleanVariable(atoms[0])),
		BooleanTallyVariable(NewBooleanVariable(atoms[2])),
	})
	require.NoError(t, err)

	w.Set(0, true)
	require.NoError(t, tally.Add(w, 3))
	w.Set(2, true)
	require.NoError(t, tally.Add(w, 1))

	assert.Equal(t, 4.0, tally.Total())

	d, err := tally.Distribution()
	require.NoError(t, err)
	assert.Equal(t, []string{"smokes(anna)", "friends(anna,bob)"}, d.VariableNames())

	z, ok := d.Z()
	require.True(t, ok)
	assert.Equal(t, 4.0, z)

	m, err := d.Marginal("friends(anna,bob)")
	require.NoError(t, err)
	assert.InDelta(t, 0.25, m["True"], 1e-12)
	assert.InDelta(t, 0.75, m["False"], 1e-12)
}

func TestTallyEmptyHasNoZ(t *testing.T) {
	atoms, _ := fixture()
	tally, err := NewTally([]TallyVariable{BooleanTallyVariable(NewBooleanVariable(atoms[0]))})
	require.NoError(t, err)

	d, err := tally.Distribution()
	require.NoError(t, err)
	_, ok := d.Z()
	assert.False(t, ok)
}

func TestTallyRejectsBadWeight(t *testing.T) {
	atoms, w := fixture()
	tally, err := NewTally([]TallyVariable{BooleanTallyVariable(NewBooleanVariable(atoms[0]))})
	require.NoError(t, err)

	for _, weight := range []float64{-1, math.NaN(), math.Inf(1)} {
		assert.ErrorIs(t, tally.Add(w, weight), ErrInvalidWeight)
	}
	assert.Zero(t, tally.Total())
}

func TestNewTallyRejectsDomainMismatch(t *testing.T) {
	atoms, _ := fixture()
	_, err := NewTally([]TallyVariable{{
		Name:    "x",
		Domain:  []string{"only"},
		Coupler: NewBooleanVariable(atoms[0]),
	}})
	require.Error(t, err)

	_, err = NewTally([]TallyVariable{{Name: "y", Domain: []string{"a", "b"}}})
	require.Error(t, err)
}

func TestNewTallyRejectsDuplicateNames(t *testing.T) {
	atoms, _ := fixture()
	_, err := NewTally([]TallyVariable{
		BooleanTallyVariable(NewBooleanVariable(atoms[0])),
		BooleanTallyVariable(NewBooleanVariable(atoms[0])),
	})
	require.ErrorIs(t, err, distribution.ErrDuplicateVariable)
}

type brokenCoupler struct{ *BooleanVariable }

func (brokenCoupler) ValueIndex(World) int { return 5 }

func TestTallyRejectsOutOfDomainValue(t *testing.T) {
	atoms, w := fixture()
	tally, err := NewTally([]TallyVariable{
		BooleanTallyVariable(NewBooleanVariable(atoms[0])),
		{Name: "broken", Domain: []string{"True", "False"}, Coupler: brokenCoupler{NewBooleanVariable(atoms[1])}},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, tally.Add(w, 1), ErrInvalidDomainIndex)
	assert.Zero(t, tally.Total())

	d, err := tally.Distribution()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, d.Values()[0])
}
