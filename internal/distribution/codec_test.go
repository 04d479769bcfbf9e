package distribution

import (
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func assertSameDistribution(t *testing.T, want, got *Distribution) {
	t.Helper()
	if diff := cmp.Diff(want.VariableNames(), got.VariableNames()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	for i := 0; i < want.NumVariables(); i++ {
		wd, _ := want.DomainOf(i)
		gd, err := got.DomainOf(i)
		require.NoError(t, err)
		if diff := cmp.Diff(wd, gd); diff != "" {
			t.Fatalf("domain %d mismatch (-want +got):\n%s", i, diff)
		}
	}
	if diff := cmp.Diff(want.Values(), got.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	wz, wok := want.Z()
	gz, gok := got.Z()
	assert.Equal(t, wok, gok)
	assert.Equal(t, wz, gz)
}

func TestFileRoundTrip(t *testing.T) {
	d, err := New(
		[][]float64{{0.3, 0.7}},
		ptr(1.0),
		[]string{"A", "B"},
		[][]string{{"t", "f"}, {"lo", "hi"}},
	)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dist.bin")
	require.NoError(t, d.WriteFile(path))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assertSameDistribution(t, d, got)

	idx, err := got.VariableIndex("B")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	dom, err := got.DomainOf(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"lo", "hi"}, dom)
}

func TestRoundTripWithoutZAndRaggedRows(t *testing.T) {
	d, err := New(
		[][]float64{{1, 2, 3}, {}, {4}},
		nil,
		[]string{"color", "size", "on"},
		[][]string{{"red", "green", "blue"}, {"s", "m"}, {"True", "False"}},
	)
	require.NoError(t, err)

	got, err := Decode(d.Encode())
	require.NoError(t, err)
	assertSameDistribution(t, d, got)
}

func TestWriteFileOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dist.bin")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	d := sample(t)
	require.NoError(t, d.WriteFile(path))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assertSameDistribution(t, d, got)

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFileUnwritablePath(t *testing.T) {
	d := sample(t)
	err := d.WriteFile(filepath.Join(t.TempDir(), "missing", "dir", "dist.bin"))
	require.Error(t, err)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.bin"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestReadFileForeignFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foreign.bin")
	require.NoError(t, os.WriteFile(path, []byte("\xac\xed\x00\x05blob"), 0o644))

	_, err := ReadFile(path)
	require.ErrorIs(t, err, ErrFormat)
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	valid := sample(t).Encode()

	header := func(version uint64) []byte {
		b := []byte(magic)
		b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
		return protowire.AppendVarint(b, version)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "magic only", data: []byte(magic)},
		{name: "future version", data: header(FormatVersion + 1)},
		{name: "truncated", data: valid[:len(valid)-1]},
		{name: "variable count mismatch", data: protowire.AppendVarint(
			protowire.AppendTag(header(FormatVersion), fieldVarCount, protowire.VarintType), 3)},
		{name: "row not multiple of eight", data: protowire.AppendBytes(
			protowire.AppendTag(header(FormatVersion), fieldRow, protowire.BytesType), []byte{1, 2, 3})},
		{name: "z flagged without value", data: protowire.AppendVarint(
			protowire.AppendTag(header(FormatVersion), fieldHasZ, protowire.VarintType), 1)},
		{name: "z flag out of range", data: protowire.AppendVarint(
			protowire.AppendTag(header(FormatVersion), fieldHasZ, protowire.VarintType), 2)},
		{name: "z value without flag", data: protowire.AppendFixed64(
			protowire.AppendTag(
				protowire.AppendVarint(
					protowire.AppendTag(header(FormatVersion), fieldHasZ, protowire.VarintType), 0),
				fieldZ, protowire.Fixed64Type),
			math.Float64bits(4))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	d := sample(t)
	data := d.Encode()
	data = protowire.AppendTag(data, 42, protowire.BytesType)
	data = protowire.AppendString(data, "annotation")

	got, err := Decode(data)
	require.NoError(t, err)
	assertSameDistribution(t, d, got)
}
