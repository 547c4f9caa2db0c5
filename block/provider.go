package block

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/arloliu/xisf/errs"
)

// StreamProvider opens a seekable stream for a path or URI naming an
// external block resource. Implementations are supplied by the caller; the
// defaults cover the local filesystem and HTTP(S).
type StreamProvider interface {
	Open(ctx context.Context, ref string) (io.ReadSeekCloser, error)
}

// FileProvider resolves path(...) references against a base directory,
// usually the directory of the header file of a distributed unit.
type FileProvider struct {
	// BaseDir replaces the @header_dir placeholder and anchors relative
	// paths. Empty means the current directory.
	BaseDir string
}

// Open opens the referenced file read-only.
func (p FileProvider) Open(_ context.Context, ref string) (io.ReadSeekCloser, error) {
	path := strings.TrimPrefix(ref, "@header_dir/")
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.BaseDir, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
	}

	return f, nil
}

// HTTPProvider fetches url(...) references over HTTP(S). The response body
// is buffered in memory to present a seekable stream.
type HTTPProvider struct {
	// Client defaults to http.DefaultClient.
	Client *http.Client
}

// Open fetches the resource and returns an in-memory seekable view of it.
func (p HTTPProvider) Open(ctx context.Context, ref string) (io.ReadSeekCloser, error) {
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s: %s", errs.ErrStreamIO, ref, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
	}

	return memStream{Reader: bytes.NewReader(body)}, nil
}

type memStream struct {
	*bytes.Reader
}

func (memStream) Close() error { return nil }
