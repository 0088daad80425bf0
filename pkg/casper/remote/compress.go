package remote

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// acceptEncoding is sent with menu requests. Menu documents are large JSON
// files served pre-compressed by the static file server.
const acceptEncoding = "zstd, gzip"

// decodedBody wraps the response body in the decoder named by its
// Content-Encoding. The caller closes the returned reader and the
// response body.
func decodedBody(resp *http.Response) (io.ReadCloser, error) {
	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	switch encoding {
	case "", "identity":
		return io.NopCloser(resp.Body), nil
	case "gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("open gzip body: %w", err)
		}
		return zr, nil
	case "zstd":
		dec, err := zstd.NewReader(resp.Body, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("open zstd body: %w", err)
		}
		return dec.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}
}
