package distribution

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// #region format
// File layout: the magic bytes followed by protobuf-wire tagged records.
const (
	magic         = "SDST"
	FormatVersion = 1
)

const (
	fieldVersion  protowire.Number = 1
	fieldVarCount protowire.Number = 2
	fieldVariable protowire.Number = 3
	fieldRowCount protowire.Number = 4
	fieldRow      protowire.Number = 5
	fieldHasZ     protowire.Number = 6
	fieldZ        protowire.Number = 7
)

// nested in fieldVariable
const (
	fieldVarName  protowire.Number = 1
	fieldVarLabel protowire.Number = 2
)

// #endregion format

// #region encode
// Encode serializes the distribution into the versioned binary format.
func (d *Distribution) Encode() []byte {
	b := append([]byte(nil), magic...)
	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, FormatVersion)
	b = protowire.AppendTag(b, fieldVarCount, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(len(d.names)))

	for i, name := range d.names {
		var rec []byte
		rec = protowire.AppendTag(rec, fieldVarName, protowire.BytesType)
		rec = protowire.AppendString(rec, name)
		for _, label := range d.domains[i] {
			rec = protowire.AppendTag(rec, fieldVarLabel, protowire.BytesType)
			rec = protowire.AppendString(rec, label)
		}
		b = protowire.AppendTag(b, fieldVariable, protowire.BytesType)
		b = protowire.AppendBytes(b, rec)
	}

	b = protowire.AppendTag(b, fieldRowCount, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(len(d.values)))
	for _, row := range d.values {
		b = protowire.AppendTag(b, fieldRow, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeRow(row))
	}

	b = protowire.AppendTag(b, fieldHasZ, protowire.VarintType)
	if d.z == nil {
		return protowire.AppendVarint(b, 0)
	}
	b = protowire.AppendVarint(b, 1)
	b = protowire.AppendTag(b, fieldZ, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(*d.z))
}

func encodeRow(row []float64) []byte {
	buf := make([]byte, len(row)*8)
	for i, f := range row {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

// #endregion encode

// #region decode
// Decode parses data produced by Encode. Structural problems are reported
// as ErrFormat.
func Decode(data []byte) (*Distribution, error) {
	if !bytes.HasPrefix(data, []byte(magic)) {
		return nil, fmt.Errorf("bad magic: %w", ErrFormat)
	}
	b := data[len(magic):]

	var (
		version    uint64
		varCount   uint64
		rowCount   uint64
		hasZ       bool
		z          float64
		seenZ      bool
		names      []string
		domains    [][]string
		values     [][]float64
		seenHeader bool
	)

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("read tag: %v: %w", protowire.ParseError(n), ErrFormat)
		}
		b = b[n:]

		switch {
		case num == fieldVersion && typ == protowire.VarintType:
			version, n = protowire.ConsumeVarint(b)
			if n >= 0 && version != FormatVersion {
				return nil, fmt.Errorf("unsupported version %d: %w", version, ErrFormat)
			}
			seenHeader = true
		case num == fieldVarCount && typ == protowire.VarintType:
			varCount, n = protowire.ConsumeVarint(b)
		case num == fieldVariable && typ == protowire.BytesType:
			var rec []byte
			rec, n = protowire.ConsumeBytes(b)
			if n >= 0 {
				name, labels, err := decodeVariable(rec)
				if err != nil {
					return nil, err
				}
				names = append(names, name)
				domains = append(domains, labels)
			}
		case num == fieldRowCount && typ == protowire.VarintType:
			rowCount, n = protowire.ConsumeVarint(b)
		case num == fieldRow && typ == protowire.BytesType:
			var raw []byte
			raw, n = protowire.ConsumeBytes(b)
			if n >= 0 {
				row, err := decodeRow(raw)
				if err != nil {
					return nil, err
				}
				values = append(values, row)
			}
		case num == fieldHasZ && typ == protowire.VarintType:
			var flag uint64
			flag, n = protowire.ConsumeVarint(b)
			if n >= 0 && flag > 1 {
				return nil, fmt.Errorf("normalization flag %d: %w", flag, ErrFormat)
			}
			hasZ = flag == 1
		case num == fieldZ && typ == protowire.Fixed64Type:
			var bits uint64
			bits, n = protowire.ConsumeFixed64(b)
			z = math.Float64frombits(bits)
			seenZ = true
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return nil, fmt.Errorf("read field %d: %v: %w", num, protowire.ParseError(n), ErrFormat)
		}
		b = b[n:]
	}

	if !seenHeader {
		return nil, fmt.Errorf("missing version: %w", ErrFormat)
	}
	if uint64(len(names)) != varCount {
		return nil, fmt.Errorf("expected %d variables, found %d: %w", varCount, len(names), ErrFormat)
	}
	if uint64(len(values)) != rowCount {
		return nil, fmt.Errorf("expected %d rows, found %d: %w", rowCount, len(values), ErrFormat)
	}
	if hasZ && !seenZ {
		return nil, fmt.Errorf("normalization constant flagged but missing: %w", ErrFormat)
	}
	if seenZ && !hasZ {
		return nil, fmt.Errorf("normalization constant present but not flagged: %w", ErrFormat)
	}

	var zp *float64
	if hasZ {
		zp = &z
	}
	d, err := New(values, zp, names, domains)
	if err != nil {
		return nil, fmt.Errorf("rebuild distribution: %v: %w", err, ErrFormat)
	}
	return d, nil
}

func decodeVariable(rec []byte) (string, []string, error) {
	var (
		name    string
		hasName bool
		labels  = []string{}
	)
	for len(rec) > 0 {
		num, typ, n := protowire.ConsumeTag(rec)
		if n < 0 {
			return "", nil, fmt.Errorf("variable tag: %v: %w", protowire.ParseError(n), ErrFormat)
		}
		rec = rec[n:]
		switch {
		case num == fieldVarName && typ == protowire.BytesType:
			name, n = protowire.ConsumeString(rec)
			hasName = true
		case num == fieldVarLabel && typ == protowire.BytesType:
			var label string
			label, n = protowire.ConsumeString(rec)
			labels = append(labels, label)
		default:
			n = protowire.ConsumeFieldValue(num, typ, rec)
		}
		if n < 0 {
			return "", nil, fmt.Errorf("variable field %d: %v: %w", num, protowire.ParseError(n), ErrFormat)
		}
		rec = rec[n:]
	}
	if !hasName {
		return "", nil, fmt.Errorf("variable without name: %w", ErrFormat)
	}
	return name, labels, nil
}

func decodeRow(raw []byte) ([]float64, error) {
	if len(raw)%8 != 0 {
		return nil, fmt.Errorf("row of %d bytes: %w", len(raw), ErrFormat)
	}
	row := make([]float64, len(raw)/8)
	for i := range row {
		row[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
	}
	return row, nil
}

// #endregion decode
