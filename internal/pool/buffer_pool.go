// Package pool provides pooled scratch buffers for the compression and
// header emission paths.
package pool

import (
	"bytes"
	"sync"
)

const (
	// bufferDefaultSize sizes freshly allocated scratch buffers.
	bufferDefaultSize = 64 * 1024
	// bufferMaxThreshold caps the capacity of buffers returned to the pool.
	// Larger ones are dropped so a single huge payload does not pin memory.
	bufferMaxThreshold = 8 * 1024 * 1024
)

var bufferPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, bufferDefaultSize))
	},
}

// GetBuffer retrieves an empty scratch buffer from the pool.
func GetBuffer() *bytes.Buffer {
	buf, _ := bufferPool.Get().(*bytes.Buffer)
	return buf
}

// PutBuffer returns a scratch buffer to the pool for reuse.
func PutBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > bufferMaxThreshold {
		return
	}

	buf.Reset()
	bufferPool.Put(buf)
}
