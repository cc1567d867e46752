package wire

import (
	"math"

	"github.com/corestability/engine/endian"
	"github.com/corestability/engine/errs"
	"github.com/corestability/engine/format"
)

// ParsedColumn is a typed view over one column's sub-range of a parsed
// buffer. The byte slices alias the source buffer (no copy); callers that
// need to retain data past the source buffer's lifetime must copy it
// themselves (the column store does this on Append).
type ParsedColumn struct {
	Type     format.ColumnType
	RowCount uint32

	// Fixed-width columns (f64, i32, u32, bool, timestamp_ms): RowCount
	// elements of ElemSize bytes each, little-endian.
	Raw []byte

	// Utf8: Offsets is (RowCount+1) little-endian u32 values, Data is the
	// concatenated UTF-8 bytes.
	Offsets []byte
	Data    []byte

	// ListUtf8: RowOffsets is (RowCount+1) u32 batch-relative item indices,
	// ItemOffsets is (TotalItems+1) u32 batch-relative byte offsets, Data is the
	// concatenated UTF-8 item bytes.
	TotalItems  uint32
	RowOffsets  []byte
	ItemOffsets []byte
}

// ParsedBatch is the result of Parse: a batch's header fields plus one
// ParsedColumn per schema column, in schema order.
type ParsedBatch struct {
	Seq      uint32
	RowCount uint32
	Columns  []ParsedColumn
}

// Parse decodes a wire buffer's header, descriptors, and column data
// blocks into typed views. It fails with ErrInvalidMagic if the leading
// word doesn't match Magic, ErrUnknownTypeTag on an unrecognized
// descriptor tag, and ErrTruncated if any declared length extends past
// the buffer.
func Parse(buf []byte) (ParsedBatch, error) {
	if len(buf) < HeaderSize {
		return ParsedBatch{}, errs.ErrTruncated
	}

	engine := endian.GetLittleEndianEngine()

	magic := engine.Uint32(buf[0:4])
	if magic != Magic {
		return ParsedBatch{}, errs.ErrInvalidMagic
	}

	seq := engine.Uint32(buf[4:8])
	rowCount := engine.Uint32(buf[8:12])
	colCount := engine.Uint32(buf[12:16])

	descStart := HeaderSize
	descEnd := descStart + int(colCount)*DescriptorSize
	if descEnd > len(buf) {
		return ParsedBatch{}, errs.ErrTruncated
	}

	cols := make([]ParsedColumn, colCount)
	dataOff := descEnd

	for i := 0; i < int(colCount); i++ {
		descOff := descStart + i*DescriptorSize
		tag := engine.Uint32(buf[descOff : descOff+4])
		byteLen := engine.Uint32(buf[descOff+4 : descOff+8])

		typ := format.ColumnType(tag)
		if !typ.Valid() {
			return ParsedBatch{}, errs.ErrUnknownTypeTag
		}

		end := dataOff + int(byteLen)
		if end > len(buf) {
			return ParsedBatch{}, errs.ErrTruncated
		}

		pc, err := parseColumnBlock(typ, buf[dataOff:end], rowCount, engine)
		if err != nil {
			return ParsedBatch{}, err
		}

		cols[i] = pc
		dataOff = end
	}

	return ParsedBatch{Seq: seq, RowCount: rowCount, Columns: cols}, nil
}

func parseColumnBlock(typ format.ColumnType, block []byte, rowCount uint32, engine endian.EndianEngine) (ParsedColumn, error) {
	if typ.IsFixedWidth() {
		need := int(rowCount) * typ.ElemSize()
		if len(block) < need {
			return ParsedColumn{}, errs.ErrTruncated
		}

		return ParsedColumn{Type: typ, RowCount: rowCount, Raw: block[:need]}, nil
	}

	switch typ {
	case format.Utf8:
		offsetsLen := int(rowCount+1) * 4
		if len(block) < offsetsLen {
			return ParsedColumn{}, errs.ErrTruncated
		}

		offsets := block[:offsetsLen]
		data := block[offsetsLen:]

		last := engine.Uint32(offsets[len(offsets)-4:])
		if int(last) != len(data) {
			return ParsedColumn{}, errs.ErrTruncated
		}

		return ParsedColumn{Type: typ, RowCount: rowCount, Offsets: offsets, Data: data}, nil

	case format.ListUtf8:
		if len(block) < 4 {
			return ParsedColumn{}, errs.ErrTruncated
		}

		totalItems := engine.Uint32(block[0:4])
		rest := block[4:]

		rowOffsetsLen := int(rowCount+1) * 4
		if len(rest) < rowOffsetsLen {
			return ParsedColumn{}, errs.ErrTruncated
		}

		rowOffsets := rest[:rowOffsetsLen]
		rest2 := rest[rowOffsetsLen:]

		itemOffsetsLen := int(totalItems+1) * 4
		if len(rest2) < itemOffsetsLen {
			return ParsedColumn{}, errs.ErrTruncated
		}

		itemOffsets := rest2[:itemOffsetsLen]
		data := rest2[itemOffsetsLen:]

		last := engine.Uint32(itemOffsets[len(itemOffsets)-4:])
		if int(last) != len(data) {
			return ParsedColumn{}, errs.ErrTruncated
		}

		return ParsedColumn{
			Type: typ, RowCount: rowCount, TotalItems: totalItems,
			RowOffsets: rowOffsets, ItemOffsets: itemOffsets, Data: data,
		}, nil

	default:
		return ParsedColumn{}, errs.ErrUnknownTypeTag
	}
}

// Float64At decodes the float64 (or timestamp_ms) at row index i.
func (pc ParsedColumn) Float64At(i int) float64 {
	engine := endian.GetLittleEndianEngine()
	bits := engine.Uint64(pc.Raw[i*8 : i*8+8])

	return math.Float64frombits(bits)
}

// Int32At decodes the i32 at row index i.
func (pc ParsedColumn) Int32At(i int) int32 {
	engine := endian.GetLittleEndianEngine()

	return int32(engine.Uint32(pc.Raw[i*4 : i*4+4])) //nolint:gosec
}

// Uint32At decodes the u32 at row index i.
func (pc ParsedColumn) Uint32At(i int) uint32 {
	engine := endian.GetLittleEndianEngine()

	return engine.Uint32(pc.Raw[i*4 : i*4+4])
}

// BoolAt decodes the bool at row index i.
func (pc ParsedColumn) BoolAt(i int) bool {
	return pc.Raw[i] != 0
}

// Utf8At decodes the string at row index i of a utf8 column.
func (pc ParsedColumn) Utf8At(i int) string {
	engine := endian.GetLittleEndianEngine()
	start := engine.Uint32(pc.Offsets[i*4 : i*4+4])
	end := engine.Uint32(pc.Offsets[(i+1)*4 : (i+1)*4+4])

	return string(pc.Data[start:end])
}

// ListUtf8At decodes the string list at row index i of a list_utf8 column.
func (pc ParsedColumn) ListUtf8At(i int) []string {
	engine := endian.GetLittleEndianEngine()
	itemStart := engine.Uint32(pc.RowOffsets[i*4 : i*4+4])
	itemEnd := engine.Uint32(pc.RowOffsets[(i+1)*4 : (i+1)*4+4])

	out := make([]string, 0, itemEnd-itemStart)
	for item := itemStart; item < itemEnd; item++ {
		start := engine.Uint32(pc.ItemOffsets[item*4 : item*4+4])
		end := engine.Uint32(pc.ItemOffsets[(item+1)*4 : (item+1)*4+4])
		out = append(out, string(pc.Data[start:end]))
	}

	return out
}

// DecodeRows materializes a ParsedBatch back into row records, matching
// schema column order. Intended for tests and the CLI's human-readable
// window dump, not for the hot ingest/window path.
func DecodeRows(schema Schema, batch ParsedBatch) []Row {
	rows := make([]Row, batch.RowCount)
	for r := range rows {
		rows[r] = make(Row, len(schema))
	}

	for c, entry := range schema {
		if c >= len(batch.Columns) {
			break
		}

		pc := batch.Columns[c]
		for r := 0; r < int(batch.RowCount); r++ {
			switch entry.Type {
			case format.Float64, format.TimestampMs:
				rows[r][entry.Name] = pc.Float64At(r)
			case format.Int32:
				rows[r][entry.Name] = pc.Int32At(r)
			case format.Uint32:
				rows[r][entry.Name] = pc.Uint32At(r)
			case format.Bool:
				rows[r][entry.Name] = pc.BoolAt(r)
			case format.Utf8:
				rows[r][entry.Name] = pc.Utf8At(r)
			case format.ListUtf8:
				rows[r][entry.Name] = pc.ListUtf8At(r)
			}
		}
	}

	return rows
}
