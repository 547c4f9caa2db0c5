// Package compress implements the XISF data block compression pipeline.
//
// Supported codecs are zlib, lz4, lz4hc and zstd, each with a +sh variant
// that applies byte shuffle preconditioning before encoding and its inverse
// after decoding. Payloads larger than a codec's single block limit are
// split into sub-blocks recorded in the compression attribute.
//
// The Codec implementations reuse pooled encoder state and are safe for
// concurrent use. The pipeline functions Compress and Decompress take a
// context and poll it between sub-blocks.
package compress
