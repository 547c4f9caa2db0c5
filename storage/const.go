package storage

// File framing constants. All file header and index node integers are
// little-endian.
const (
	// MonolithicSignature opens a monolithic .xisf file.
	MonolithicSignature = "XISF0100"
	// BlocksSignature opens a .xisb data blocks file.
	BlocksSignature = "XISB0100"

	// FileHeaderSize is the fixed framing header size shared by .xisf and
	// .xisb files: 8 signature bytes plus 8 bytes of length and reserved
	// fields.
	FileHeaderSize = 16

	// IndexNodeHeaderSize precedes the elements of a .xisb index node:
	// length (u32), reserved (u32), next node offset (u64).
	IndexNodeHeaderSize = 16
	// IndexElementSize is the fixed size of one .xisb index element:
	// unique id, position, length, uncompressed length and a reserved
	// field, each u64.
	IndexElementSize = 40

	// DefaultIndexNodeCapacity is the element capacity of index nodes
	// allocated by the blocks file writer.
	DefaultIndexNodeCapacity = 256
)

// maxLayoutIterations bounds the attachment layout fixed point. The only
// changing field widths are decimal offsets, monotonically non-decreasing,
// so the loop settles in at most five passes.
const maxLayoutIterations = 5
