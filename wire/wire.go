// Package wire implements the record-batch codec: a compact little-endian
// columnar wire format for fixed-width, variable-length UTF-8, and nested
// UTF-8 list columns. Encode takes a resolved schema and a finite ordered
// sequence of row records and produces one contiguous buffer; Parse takes
// a buffer and produces typed column views over its sub-ranges.
//
// The little-endian read/write primitives are grounded on mebo's
// endian.EndianEngine (binary.ByteOrder + binary.AppendByteOrder composed
// into one interface); the wire format itself is always little-endian,
// so Encode and Parse always construct the engine via
// endian.GetLittleEndianEngine internally.
package wire

import (
	"math"

	"github.com/corestability/engine/endian"
	"github.com/corestability/engine/format"
	"github.com/corestability/engine/internal/pool"
)

// Magic opens every valid wire buffer.
const Magic uint32 = 0xAC1DC0DE

const (
	HeaderSize     = 16
	DescriptorSize = 8
)

// Row is a single record: column name to input value. Values are coerced
// per column type on encode (see coerce.go); missing keys coerce the same
// as an explicit nil.
type Row map[string]any

// Encode encodes rows under schema into one contiguous wire buffer, tagged
// with seq. Row values are coerced per column type: missing/null numeric
// -> 0, non-boolean input to bool -> 1 iff truthy, missing utf8 -> "",
// non-array input to list_utf8 -> [], fractional input to integer columns
// truncated toward zero.
func Encode(schema Schema, rows []Row, seq uint32) ([]byte, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	engine := endian.GetLittleEndianEngine()
	rowCount := len(rows)

	blocks := make([][]byte, len(schema))
	for i, entry := range schema {
		blocks[i] = encodeColumn(entry, rows, engine)
	}

	total := HeaderSize + len(schema)*DescriptorSize
	for _, b := range blocks {
		total += len(b)
	}

	out := make([]byte, total)
	engine.PutUint32(out[0:4], Magic)
	engine.PutUint32(out[4:8], seq)
	engine.PutUint32(out[8:12], uint32(rowCount)) //nolint:gosec
	engine.PutUint32(out[12:16], uint32(len(schema)))

	descOff := HeaderSize
	dataOff := HeaderSize + len(schema)*DescriptorSize
	for i, entry := range schema {
		engine.PutUint32(out[descOff:descOff+4], uint32(entry.Type))
		engine.PutUint32(out[descOff+4:descOff+8], uint32(len(blocks[i]))) //nolint:gosec
		descOff += DescriptorSize

		copy(out[dataOff:], blocks[i])
		dataOff += len(blocks[i])
	}

	return out, nil
}

// encodeColumn builds the data block for one schema column across all rows.
func encodeColumn(entry SchemaEntry, rows []Row, engine endian.EndianEngine) []byte {
	switch entry.Type {
	case format.Float64, format.TimestampMs:
		return encodeFixed(rows, entry.Name, 8, func(bb *pool.ByteBuffer, v any) {
			appendFloat64(bb, engine, coerceFloat64(v))
		})
	case format.Int32:
		return encodeFixed(rows, entry.Name, 4, func(bb *pool.ByteBuffer, v any) {
			appendUint32(bb, engine, uint32(coerceInt32(v))) //nolint:gosec
		})
	case format.Uint32:
		return encodeFixed(rows, entry.Name, 4, func(bb *pool.ByteBuffer, v any) {
			appendUint32(bb, engine, coerceUint32(v))
		})
	case format.Bool:
		return encodeFixed(rows, entry.Name, 1, func(bb *pool.ByteBuffer, v any) {
			appendBool(bb, coerceBool(v))
		})
	case format.Utf8:
		return encodeUtf8(rows, entry.Name, engine)
	case format.ListUtf8:
		return encodeListUtf8(rows, entry.Name, engine)
	default:
		return nil
	}
}

func encodeFixed(rows []Row, name string, elemSize int, write func(*pool.ByteBuffer, any)) []byte {
	bb := pool.GetBlobBuffer()
	defer pool.PutBlobBuffer(bb)

	bb.Grow(len(rows) * elemSize)
	for _, row := range rows {
		write(bb, row[name])
	}

	out := make([]byte, bb.Len())
	copy(out, bb.Bytes())

	return out
}

func encodeUtf8(rows []Row, name string, engine endian.EndianEngine) []byte {
	offsets := pool.GetBlobBuffer()
	data := pool.GetBlobBuffer()
	defer pool.PutBlobBuffer(offsets)
	defer pool.PutBlobBuffer(data)

	offsets.Grow((len(rows) + 1) * 4)
	appendUint32(offsets, engine, 0)

	running := uint32(0)
	for _, row := range rows {
		s := coerceString(row[name])
		data.MustWrite([]byte(s))
		running += uint32(len(s)) //nolint:gosec
		appendUint32(offsets, engine, running)
	}

	out := make([]byte, offsets.Len()+data.Len())
	copy(out, offsets.Bytes())
	copy(out[offsets.Len():], data.Bytes())

	return out
}

func encodeListUtf8(rows []Row, name string, engine endian.EndianEngine) []byte {
	rowOffsets := pool.GetBlobBuffer()
	itemOffsets := pool.GetBlobBuffer()
	data := pool.GetBlobBuffer()
	defer pool.PutBlobBuffer(rowOffsets)
	defer pool.PutBlobBuffer(itemOffsets)
	defer pool.PutBlobBuffer(data)

	appendUint32(rowOffsets, engine, 0)
	appendUint32(itemOffsets, engine, 0)

	itemsTotal := uint32(0)
	byteRunning := uint32(0)
	for _, row := range rows {
		items := coerceStringSlice(row[name])
		for _, s := range items {
			data.MustWrite([]byte(s))
			byteRunning += uint32(len(s)) //nolint:gosec
			appendUint32(itemOffsets, engine, byteRunning)
		}

		itemsTotal += uint32(len(items)) //nolint:gosec
		appendUint32(rowOffsets, engine, itemsTotal)
	}

	out := make([]byte, 4+rowOffsets.Len()+itemOffsets.Len()+data.Len())
	engine.PutUint32(out[0:4], itemsTotal)

	off := 4
	copy(out[off:], rowOffsets.Bytes())
	off += rowOffsets.Len()
	copy(out[off:], itemOffsets.Bytes())
	off += itemOffsets.Len()
	copy(out[off:], data.Bytes())

	return out
}

func appendFloat64(bb *pool.ByteBuffer, engine endian.EndianEngine, v float64) {
	bb.Grow(8)
	start := bb.Len()
	bb.SetLength(start + 8)
	engine.PutUint64(bb.Slice(start, start+8), math.Float64bits(v))
}

func appendUint32(bb *pool.ByteBuffer, engine endian.EndianEngine, v uint32) {
	bb.Grow(4)
	start := bb.Len()
	bb.SetLength(start + 4)
	engine.PutUint32(bb.Slice(start, start+4), v)
}

func appendBool(bb *pool.ByteBuffer, v bool) {
	bb.Grow(1)
	if v {
		bb.MustWrite([]byte{1})
	} else {
		bb.MustWrite([]byte{0})
	}
}
