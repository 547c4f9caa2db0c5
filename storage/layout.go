package storage

import (
	"fmt"

	"github.com/arloliu/xisf/errs"
	"github.com/arloliu/xisf/header"
	"github.com/arloliu/xisf/unit"
)

// ownedBlock pairs a data block with the sample width of its owner, which
// the shuffle preconditioner needs.
type ownedBlock struct {
	blk       *unit.DataBlock
	itemSize  int
	thumbnail bool
}

// enumerateBlocks lists every data block of a header in payload order:
// image pixel blocks and their associated element blocks in image order,
// then header-level element blocks. Attached payloads are laid out and
// written in exactly this order.
func enumerateBlocks(h *unit.Header) []ownedBlock {
	var blocks []ownedBlock

	appendElement := func(el unit.CoreElement) {
		switch e := el.(type) {
		case unit.Thumbnail:
			blocks = append(blocks, ownedBlock{blk: e.Block, itemSize: e.SampleFormat.ItemSize(), thumbnail: true})
		case unit.ICCProfile:
			blocks = append(blocks, ownedBlock{blk: e.Block, itemSize: 1})
		}
	}

	for i := range h.Images {
		img := &h.Images[i]
		if img.Block != nil {
			blocks = append(blocks, ownedBlock{blk: img.Block, itemSize: img.SampleFormat.ItemSize()})
		}

		for _, el := range img.Elements {
			appendElement(el)
		}
	}

	for _, el := range h.Elements {
		appendElement(el)
	}

	return blocks
}

// attachedBlocks filters the enumeration down to attached blocks.
func attachedBlocks(blocks []ownedBlock) []*unit.DataBlock {
	var out []*unit.DataBlock
	for _, ob := range blocks {
		if ob.blk.Kind == unit.BlockAttached {
			out = append(out, ob.blk)
		}
	}

	return out
}

// layoutHeader solves the attachment layout fixed point.
//
// Each attached block's position depends on the XML length, and the XML
// length depends on the decimal width of every position. Starting from
// placeholder zero positions, positions are recomputed from the candidate
// length and the header re-emitted until the length stops changing.
//
// The stored block sizes must be final before the call; compression runs
// before layout.
func layoutHeader(h *unit.Header, attached []*unit.DataBlock, opts header.EmitOptions) ([]byte, error) {
	for _, blk := range attached {
		blk.Position = 0
	}

	xml := header.Emit(h, opts)

	for iter := 0; iter < maxLayoutIterations; iter++ {
		pos := uint64(FileHeaderSize + len(xml))
		for _, blk := range attached {
			blk.Position = pos
			pos += blk.Size
		}

		next := header.Emit(h, opts)
		if len(next) == len(xml) {
			return next, nil
		}

		xml = next
	}

	return nil, fmt.Errorf("%w: after %d iterations", errs.ErrLayoutUnstable, maxLayoutIterations)
}
