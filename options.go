package xisf

import (
	"github.com/charmbracelet/log"

	"github.com/arloliu/xisf/block"
	"github.com/arloliu/xisf/format"
	"github.com/arloliu/xisf/storage"
)

// Format hints the storage shape of a carrier when sniffing is undesirable
// or impossible.
type Format uint8

const (
	// FormatAuto sniffs the first eight bytes of the carrier.
	FormatAuto Format = iota
	// FormatMonolithic forces the .xisf single-file form.
	FormatMonolithic
	// FormatDistributed forces the .xish XML-only form.
	FormatDistributed
)

type readerOptions struct {
	cfg  storage.ReaderConfig
	hint Format
}

// ReaderOption configures a read operation.
type ReaderOption func(*readerOptions)

// WithValidateChecksums enables digest verification of declared block
// checksums during materialization.
func WithValidateChecksums() ReaderOption {
	return func(o *readerOptions) {
		o.cfg.ValidateChecksums = true
	}
}

// WithLoadThumbnails materializes thumbnail pixel blocks alongside image
// pixel data.
func WithLoadThumbnails() ReaderOption {
	return func(o *readerOptions) {
		o.cfg.LoadThumbnails = true
	}
}

// WithLoadExternalReferences fetches external block payloads through the
// stream providers.
func WithLoadExternalReferences() ReaderOption {
	return func(o *readerOptions) {
		o.cfg.LoadExternalReferences = true
	}
}

// WithFileStreamProvider replaces the provider resolving path(...) block
// references. The default resolves relative paths against the current
// directory; ReadFile anchors them at the header file's directory instead.
func WithFileStreamProvider(p block.StreamProvider) ReaderOption {
	return func(o *readerOptions) {
		o.cfg.FileProvider = p
	}
}

// WithURIStreamProvider replaces the provider resolving url(...) block
// references. The default fetches over HTTP(S).
func WithURIStreamProvider(p block.StreamProvider) ReaderOption {
	return func(o *readerOptions) {
		o.cfg.URIProvider = p
	}
}

// WithFormatHint bypasses format sniffing.
func WithFormatHint(hint Format) ReaderOption {
	return func(o *readerOptions) {
		o.hint = hint
	}
}

// WithReaderLogger attaches a logger for read-side debug traces. Reads are
// silent without one.
func WithReaderLogger(l *log.Logger) ReaderOption {
	return func(o *readerOptions) {
		o.cfg.Logger = l
	}
}

func resolveReaderOptions(opts []ReaderOption) *readerOptions {
	o := &readerOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if o.cfg.FileProvider == nil {
		o.cfg.FileProvider = block.FileProvider{}
	}
	if o.cfg.URIProvider == nil {
		o.cfg.URIProvider = block.HTTPProvider{}
	}

	return o
}

// WriterOption configures a write operation.
type WriterOption func(*storage.WriterConfig)

// WithDefaultCompression compresses every pixel and profile block with the
// given codec. Shuffled variants pick their item size from the owning
// element's sample format.
func WithDefaultCompression(codec format.CodecType) WriterOption {
	return func(c *storage.WriterConfig) {
		c.DefaultCompression = codec
	}
}

// WithChecksums attaches a digest over the stored bytes of every block,
// computed with the given algorithm.
func WithChecksums(algo format.ChecksumType) WriterOption {
	return func(c *storage.WriterConfig) {
		c.CalculateChecksums = true
		c.ChecksumAlgorithm = algo
	}
}

// WithPrettyXML indents the emitted header with two spaces.
func WithPrettyXML() WriterOption {
	return func(c *storage.WriterConfig) {
		c.PrettyPrint = true
	}
}

// WithWriterLogger attaches a logger for write-side debug traces. Writes
// are silent without one.
func WithWriterLogger(l *log.Logger) WriterOption {
	return func(c *storage.WriterConfig) {
		c.Logger = l
	}
}

func resolveWriterOptions(opts []WriterOption) *storage.WriterConfig {
	cfg := &storage.WriterConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}
