package app

import (
	"bytes"
	"errors"
	"io"
)

const uploadChunkSize = 64 * 1024

var errPayloadTooLarge = errors.New("upload size limit exceeded")

// readBounded reads r chunk by chunk and gives up as soon as more than limit
// bytes have been seen.
func readBounded(r io.Reader, limit int64) ([]byte, error) {
	var (
		buf  bytes.Buffer
		size int64
	)
	chunk := make([]byte, uploadChunkSize)

	for {
		n, err := r.Read(chunk)
		if n > 0 {
			size += int64(n)
			if size > limit {
				return nil, errPayloadTooLarge
			}
			buf.Write(chunk[:n])
		}
		if errors.Is(err, io.EOF) {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
	}
}
