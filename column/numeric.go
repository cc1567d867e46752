package column

import (
	"github.com/corestability/engine/format"
	"github.com/corestability/engine/internal/pool"
	"github.com/corestability/engine/wire"
)

// numericColumn backs f64, i32, u32, bool, and timestamp_ms columns. It
// stores the already-little-endian raw bytes produced by the codec
// directly, so a commit's Append is a single memcpy and a window's
// CopySlice is a single byte-range copy — no value-level re-encoding ever
// happens after the initial Encode.
type numericColumn struct {
	typ      format.ColumnType
	elemSize int
	buf      *pool.ByteBuffer
	rows     int
}

var _ Column = (*numericColumn)(nil)

func newNumericColumn(typ format.ColumnType) *numericColumn {
	return &numericColumn{
		typ:      typ,
		elemSize: typ.ElemSize(),
		buf:      pool.NewByteBuffer(pool.BlobBufferDefaultSize),
	}
}

func (c *numericColumn) ColumnType() format.ColumnType { return c.typ }
func (c *numericColumn) RowCount() int                 { return c.rows }

func (c *numericColumn) Append(pc wire.ParsedColumn) error {
	need := int(pc.RowCount) * c.elemSize
	if len(pc.Raw) < need {
		return errShortFragment
	}

	c.buf.Grow(need)
	c.buf.MustWrite(pc.Raw[:need])
	c.rows += int(pc.RowCount)

	return nil
}

func (c *numericColumn) CopySlice(start, count int) []byte {
	byteStart := start * c.elemSize
	byteEnd := (start + count) * c.elemSize

	out := make([]byte, byteEnd-byteStart)
	copy(out, c.buf.Bytes()[byteStart:byteEnd])

	return out
}
