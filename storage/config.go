package storage

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/arloliu/xisf/block"
	"github.com/arloliu/xisf/format"
)

// ReaderConfig carries the resolved options of a read operation.
type ReaderConfig struct {
	// ValidateChecksums verifies declared block checksums during
	// materialization.
	ValidateChecksums bool
	// LoadThumbnails materializes thumbnail pixel blocks.
	LoadThumbnails bool
	// LoadExternalReferences fetches external block payloads through the
	// stream providers.
	LoadExternalReferences bool

	// FileProvider resolves path(...) references.
	FileProvider block.StreamProvider
	// URIProvider resolves url(...) references.
	URIProvider block.StreamProvider

	Logger *log.Logger
}

// Processor builds the block processor configured by the options.
func (c *ReaderConfig) Processor() *block.Processor {
	return &block.Processor{
		Files:             c.FileProvider,
		URIs:              c.URIProvider,
		ValidateChecksums: c.ValidateChecksums,
	}
}

func (c *ReaderConfig) logger() *log.Logger {
	if c.Logger == nil {
		return log.New(io.Discard)
	}

	return c.Logger
}

// WriterConfig carries the resolved options of a write operation.
type WriterConfig struct {
	// DefaultCompression is applied to every pixel and profile block.
	// CodecNone writes uncompressed payloads.
	DefaultCompression format.CodecType
	// CalculateChecksums attaches digests over the stored block bytes.
	CalculateChecksums bool
	// ChecksumAlgorithm selects the digest algorithm, SHA-256 by default.
	ChecksumAlgorithm format.ChecksumType
	// PrettyPrint indents the emitted XML with two spaces.
	PrettyPrint bool

	Logger *log.Logger
}

func (c *WriterConfig) checksumAlgorithm() format.ChecksumType {
	if c.ChecksumAlgorithm == 0 {
		return format.ChecksumSHA256
	}

	return c.ChecksumAlgorithm
}

func (c *WriterConfig) logger() *log.Logger {
	if c.Logger == nil {
		return log.New(io.Discard)
	}

	return c.Logger
}
