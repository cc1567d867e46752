package column

import (
	"github.com/corestability/engine/endian"
	"github.com/corestability/engine/format"
	"github.com/corestability/engine/internal/pool"
	"github.com/corestability/engine/wire"
)

// listUtf8Column backs a list_utf8 schema column: a store-absolute
// rowOffsets array (rows+1 u32 item indices) over a store-absolute
// itemOffsets array (items+1 u32 byte offsets) over a concatenated
// UTF-8 item buffer.
type listUtf8Column struct {
	rowOffsets  *pool.ByteBuffer
	itemOffsets *pool.ByteBuffer
	data        *pool.ByteBuffer
	rows        int
	totalItems  int
	engine      endian.EndianEngine
}

var _ Column = (*listUtf8Column)(nil)

func newListUtf8Column() *listUtf8Column {
	c := &listUtf8Column{
		rowOffsets:  pool.NewByteBuffer(pool.BlobBufferDefaultSize),
		itemOffsets: pool.NewByteBuffer(pool.BlobBufferDefaultSize),
		data:        pool.NewByteBuffer(pool.BlobBufferDefaultSize),
		engine:      endian.GetLittleEndianEngine(),
	}
	appendU32(c.rowOffsets, c.engine, 0)
	appendU32(c.itemOffsets, c.engine, 0)

	return c
}

func (c *listUtf8Column) ColumnType() format.ColumnType { return format.ListUtf8 }
func (c *listUtf8Column) RowCount() int                 { return c.rows }

func (c *listUtf8Column) Append(pc wire.ParsedColumn) error {
	batchRows := int(pc.RowCount)
	if len(pc.RowOffsets) < (batchRows+1)*4 || len(pc.ItemOffsets) < int(pc.TotalItems+1)*4 {
		return errShortFragment
	}

	preItems := uint32(c.totalItems)  //nolint:gosec
	preDataLen := uint32(c.data.Len()) //nolint:gosec

	c.data.Grow(len(pc.Data))
	c.data.MustWrite(pc.Data)

	c.itemOffsets.Grow(int(pc.TotalItems) * 4)
	for i := 1; i <= int(pc.TotalItems); i++ {
		v := c.engine.Uint32(pc.ItemOffsets[i*4 : i*4+4])
		appendU32(c.itemOffsets, c.engine, v+preDataLen)
	}

	c.rowOffsets.Grow(batchRows * 4)
	for i := 1; i <= batchRows; i++ {
		v := c.engine.Uint32(pc.RowOffsets[i*4 : i*4+4])
		appendU32(c.rowOffsets, c.engine, v+preItems)
	}

	c.rows += batchRows
	c.totalItems += int(pc.TotalItems)

	return nil
}

// CopySlice returns a data block: rebased rowOffsets (count+1), rebased
// itemOffsets (items-in-range+1), then the covered item bytes.
func (c *listUtf8Column) CopySlice(start, count int) []byte {
	rowOffBytes := c.rowOffsets.Bytes()
	itemBase := c.engine.Uint32(rowOffBytes[start*4 : start*4+4])
	itemEndIdx := c.engine.Uint32(rowOffBytes[(start+count)*4 : (start+count)*4+4])
	itemCount := int(itemEndIdx - itemBase)

	newRowOffsets := make([]byte, (count+1)*4)
	for i := 0; i <= count; i++ {
		v := c.engine.Uint32(rowOffBytes[(start+i)*4 : (start+i)*4+4])
		c.engine.PutUint32(newRowOffsets[i*4:i*4+4], v-itemBase)
	}

	itemOffBytes := c.itemOffsets.Bytes()
	dataBase := c.engine.Uint32(itemOffBytes[int(itemBase)*4 : int(itemBase)*4+4])

	newItemOffsets := make([]byte, (itemCount+1)*4)
	for i := 0; i <= itemCount; i++ {
		v := c.engine.Uint32(itemOffBytes[(int(itemBase)+i)*4 : (int(itemBase)+i)*4+4])
		c.engine.PutUint32(newItemOffsets[i*4:i*4+4], v-dataBase)
	}

	dataEnd := c.engine.Uint32(itemOffBytes[(int(itemBase)+itemCount)*4 : (int(itemBase)+itemCount)*4+4])
	dataOut := make([]byte, dataEnd-dataBase)
	copy(dataOut, c.data.Bytes()[dataBase:dataEnd])

	block := make([]byte, 4+len(newRowOffsets)+len(newItemOffsets)+len(dataOut))
	c.engine.PutUint32(block[0:4], uint32(itemCount)) //nolint:gosec
	off := 4
	copy(block[off:], newRowOffsets)
	off += len(newRowOffsets)
	copy(block[off:], newItemOffsets)
	off += len(newItemOffsets)
	copy(block[off:], dataOut)

	return block
}
