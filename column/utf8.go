package column

import (
	"github.com/corestability/engine/endian"
	"github.com/corestability/engine/format"
	"github.com/corestability/engine/internal/pool"
	"github.com/corestability/engine/wire"
)

// utf8Column backs a utf8 schema column: a store-absolute offsets array
// (rows+1 little-endian u32 values, offsets[0]=0) parallel to a
// concatenated UTF-8 byte buffer.
type utf8Column struct {
	offsets *pool.ByteBuffer
	data    *pool.ByteBuffer
	rows    int
	engine  endian.EndianEngine
}

var _ Column = (*utf8Column)(nil)

func newUtf8Column() *utf8Column {
	c := &utf8Column{
		offsets: pool.NewByteBuffer(pool.BlobBufferDefaultSize),
		data:    pool.NewByteBuffer(pool.BlobBufferDefaultSize),
		engine:  endian.GetLittleEndianEngine(),
	}
	appendU32(c.offsets, c.engine, 0)

	return c
}

func (c *utf8Column) ColumnType() format.ColumnType { return format.Utf8 }
func (c *utf8Column) RowCount() int                 { return c.rows }

// Append remaps the fragment's batch-relative offsets to store-absolute
// offsets by adding the pre-append byte length, then appends the raw
// string bytes.
func (c *utf8Column) Append(pc wire.ParsedColumn) error {
	batchRows := int(pc.RowCount)
	if len(pc.Offsets) < (batchRows+1)*4 {
		return errShortFragment
	}

	preDataLen := uint32(c.data.Len()) //nolint:gosec

	c.data.Grow(len(pc.Data))
	c.data.MustWrite(pc.Data)

	c.offsets.Grow(batchRows * 4)
	for i := 1; i <= batchRows; i++ {
		v := c.engine.Uint32(pc.Offsets[i*4 : i*4+4])
		appendU32(c.offsets, c.engine, v+preDataLen)
	}

	c.rows += batchRows

	return nil
}

// CopySlice returns a data block: a rebased offsets array of length
// actual+1 followed by a byte copy of the covered string range.
func (c *utf8Column) CopySlice(start, count int) []byte {
	offBytes := c.offsets.Bytes()
	base := c.engine.Uint32(offBytes[start*4 : start*4+4])

	newOffsets := make([]byte, (count+1)*4)
	for i := 0; i <= count; i++ {
		v := c.engine.Uint32(offBytes[(start+i)*4 : (start+i)*4+4])
		c.engine.PutUint32(newOffsets[i*4:i*4+4], v-base)
	}

	end := c.engine.Uint32(offBytes[(start+count)*4 : (start+count)*4+4])
	dataOut := make([]byte, end-base)
	copy(dataOut, c.data.Bytes()[base:end])

	block := make([]byte, len(newOffsets)+len(dataOut))
	copy(block, newOffsets)
	copy(block[len(newOffsets):], dataOut)

	return block
}

func appendU32(bb *pool.ByteBuffer, engine endian.EndianEngine, v uint32) {
	bb.Grow(4)
	start := bb.Len()
	bb.SetLength(start + 4)
	engine.PutUint32(bb.Slice(start, start+4), v)
}
