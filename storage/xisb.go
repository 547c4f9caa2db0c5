package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"

	"github.com/arloliu/xisf/endian"
	"github.com/arloliu/xisf/errs"
	"github.com/arloliu/xisf/stream"
)

// BlockID derives a unique block id from a name using xxHash64. Callers
// without numeric ids of their own get deterministic, collision-resistant
// ids for Append and ReadBlock.
func BlockID(name string) uint64 {
	return xxhash.Sum64String(name)
}

// IndexElement is one entry of a data blocks file index. A zero Position
// marks a free slot.
type IndexElement struct {
	UniqueID           uint64
	Position           uint64
	Length             uint64
	UncompressedLength uint64
}

// BlocksFile is an opened .xisb data blocks file. The index node list is
// loaded once on open and treated as read-mostly; block payloads are read
// on demand through bounded substream views.
//
// A BlocksFile owns its carrier once Own is called and is not internally
// synchronized.
type BlocksFile struct {
	carrier io.ReadSeeker
	closer  io.Closer
	index   []IndexElement
}

// OpenBlocksFile validates the .xisb framing and loads the whole index
// node list into memory.
func OpenBlocksFile(ctx context.Context, carrier io.ReadSeeker) (*BlocksFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrCancelled, err)
	}

	var head [FileHeaderSize]byte
	if _, err := carrier.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
	}
	if _, err := io.ReadFull(carrier, head[:]); err != nil {
		return nil, fmt.Errorf("%w: file header: %w", errs.ErrEndOfStream, err)
	}

	if string(head[:8]) != BlocksSignature {
		return nil, fmt.Errorf("%w: % x", errs.ErrInvalidSignature, head[:8])
	}

	f := &BlocksFile{carrier: carrier}
	if err := f.loadIndex(FileHeaderSize); err != nil {
		return nil, err
	}

	return f, nil
}

// loadIndex walks the index node linked list starting at the given offset,
// concatenating the elements of every node. The list terminates at a zero
// next pointer.
func (f *BlocksFile) loadIndex(offset uint64) error {
	engine := endian.GetLittleEndianEngine()

	for offset != 0 {
		if _, err := f.carrier.Seek(int64(offset), io.SeekStart); err != nil {
			return fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
		}

		var nodeHead [IndexNodeHeaderSize]byte
		if _, err := io.ReadFull(f.carrier, nodeHead[:]); err != nil {
			return fmt.Errorf("%w: index node at %d: %w", errs.ErrInvalidIndexNode, offset, err)
		}

		length := engine.Uint32(nodeHead[0:4])
		next := engine.Uint64(nodeHead[8:16])

		raw := make([]byte, int(length)*IndexElementSize)
		if _, err := io.ReadFull(f.carrier, raw); err != nil {
			return fmt.Errorf("%w: %d elements at %d: %w", errs.ErrInvalidIndexNode, length, offset, err)
		}

		for i := 0; i < int(length); i++ {
			el := raw[i*IndexElementSize:]
			f.index = append(f.index, IndexElement{
				UniqueID:           engine.Uint64(el[0:8]),
				Position:           engine.Uint64(el[8:16]),
				Length:             engine.Uint64(el[16:24]),
				UncompressedLength: engine.Uint64(el[24:32]),
			})
		}

		offset = next
	}

	return nil
}

// Elements returns the loaded index, free slots included.
func (f *BlocksFile) Elements() []IndexElement {
	return f.index
}

// Lookup finds the index element with the given unique id. Free slots never
// match.
func (f *BlocksFile) Lookup(uniqueID uint64) (IndexElement, bool) {
	for _, el := range f.index {
		if el.Position != 0 && el.UniqueID == uniqueID {
			return el, true
		}
	}

	return IndexElement{}, false
}

// ReadBlock reads the payload of the block with the given unique id.
func (f *BlocksFile) ReadBlock(ctx context.Context, uniqueID uint64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrCancelled, err)
	}

	el, ok := f.Lookup(uniqueID)
	if !ok {
		return nil, fmt.Errorf("%w: unique id %d", errs.ErrBlockNotFound, uniqueID)
	}

	view, err := stream.NewSubstream(f.carrier, int64(el.Position), int64(el.Length))
	if err != nil {
		return nil, err
	}

	out := make([]byte, el.Length)
	if _, err := io.ReadFull(view, out); err != nil {
		return nil, fmt.Errorf("%w: block %d: %w", errs.ErrEndOfStream, uniqueID, err)
	}

	return out, nil
}

// Own transfers carrier ownership to the blocks file; Close will close it.
func (f *BlocksFile) Own(c io.Closer) {
	f.closer = c
}

// Close releases the carrier if owned.
func (f *BlocksFile) Close() error {
	if f.closer != nil {
		return f.closer.Close()
	}

	return nil
}

// BlocksFileWriter creates .xisb data blocks files.
//
// The writer is append-only: payloads go to the end of the file and claim
// the first free index slot, chaining a fresh node at the end of the file
// when every node is full. The on-disk node format matches the reader
// bit for bit.
type BlocksFileWriter struct {
	target io.WriteSeeker
	nodes  []writerNode
	ids    map[uint64]bool
	end    int64
}

type writerNode struct {
	offset   int64
	capacity int
	used     int
}

// CreateBlocksFile writes the .xisb framing and one empty index node of
// DefaultIndexNodeCapacity elements.
func CreateBlocksFile(ctx context.Context, target io.WriteSeeker) (*BlocksFileWriter, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrCancelled, err)
	}

	engine := endian.GetLittleEndianEngine()

	head := make([]byte, 0, FileHeaderSize)
	head = append(head, BlocksSignature...)
	head = engine.AppendUint64(head, 0)

	if _, err := target.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
	}
	if _, err := target.Write(head); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
	}

	w := &BlocksFileWriter{
		target: target,
		ids:    map[uint64]bool{},
		end:    FileHeaderSize,
	}

	if err := w.appendNode(0); err != nil {
		return nil, err
	}

	return w, nil
}

// appendNode writes a zeroed index node at the end of the file. prevIndex
// names the node whose next pointer must chain to it; the first node has no
// predecessor, and prevIndex is then ignored.
func (w *BlocksFileWriter) appendNode(prevIndex int) error {
	engine := endian.GetLittleEndianEngine()

	offset := w.end

	node := make([]byte, 0, IndexNodeHeaderSize+DefaultIndexNodeCapacity*IndexElementSize)
	node = engine.AppendUint32(node, DefaultIndexNodeCapacity)
	node = engine.AppendUint32(node, 0)
	node = engine.AppendUint64(node, 0)
	node = append(node, make([]byte, DefaultIndexNodeCapacity*IndexElementSize)...)

	if _, err := w.target.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
	}
	if _, err := w.target.Write(node); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
	}

	w.end = offset + int64(len(node))

	if len(w.nodes) > 0 {
		prev := w.nodes[prevIndex]

		var next [8]byte
		engine.PutUint64(next[:], uint64(offset))

		// The next pointer sits after the length and reserved fields.
		if _, err := w.target.Seek(prev.offset+8, io.SeekStart); err != nil {
			return fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
		}
		if _, err := w.target.Write(next[:]); err != nil {
			return fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
		}
	}

	w.nodes = append(w.nodes, writerNode{offset: offset, capacity: DefaultIndexNodeCapacity})

	return nil
}

// Append writes a block payload at the end of the file and records it in
// the first free index slot under the given unique id.
//
// uncompressedLength records the payload's original size when the caller
// stored it compressed; pass len(payload) for uncompressed blocks.
func (w *BlocksFileWriter) Append(ctx context.Context, uniqueID uint64, payload []byte, uncompressedLength uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrCancelled, err)
	}

	if uniqueID == 0 {
		return fmt.Errorf("%w: unique id must be non-zero", errs.ErrBlockNotFound)
	}
	if w.ids[uniqueID] {
		return fmt.Errorf("%w: %d", errs.ErrDuplicateBlockID, uniqueID)
	}

	position := w.end

	if _, err := w.target.Seek(position, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
	}
	if _, err := w.target.Write(payload); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
	}
	w.end = position + int64(len(payload))

	nodeIndex := len(w.nodes) - 1
	if w.nodes[nodeIndex].used == w.nodes[nodeIndex].capacity {
		if err := w.appendNode(nodeIndex); err != nil {
			return err
		}
		nodeIndex++
	}

	node := &w.nodes[nodeIndex]
	slot := node.offset + IndexNodeHeaderSize + int64(node.used)*IndexElementSize

	engine := endian.GetLittleEndianEngine()

	el := make([]byte, 0, IndexElementSize)
	el = engine.AppendUint64(el, uniqueID)
	el = engine.AppendUint64(el, uint64(position))
	el = engine.AppendUint64(el, uint64(len(payload)))
	el = engine.AppendUint64(el, uncompressedLength)
	el = engine.AppendUint64(el, 0)

	if _, err := w.target.Seek(slot, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
	}
	if _, err := w.target.Write(el); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
	}

	node.used++
	w.ids[uniqueID] = true

	return nil
}
