package tarball

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
)

// gzipHeader is the canonical 10-byte gzip header: magic, deflate method,
// no flags, zero mtime, no extra flags, unknown OS. Writing it by hand
// keeps the stream free of timestamps and environment metadata.
var gzipHeader = [10]byte{0x1f, 0x8b, 0x08, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

// gzipCompress produces a reproducible gzip stream: the canonical header,
// raw deflate at the default level, then little-endian CRC-32 and size.
func gzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(gzipHeader[:])

	fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("tarball: deflate: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return nil, fmt.Errorf("tarball: deflate: %w", err)
	}
	if err := fw.Close(); err != nil {
		return nil, fmt.Errorf("tarball: deflate: %w", err)
	}

	var trailer [8]byte
	binary.LittleEndian.PutUint32(trailer[0:4], crc32.ChecksumIEEE(data))
	binary.LittleEndian.PutUint32(trailer[4:8], uint32(len(data)))
	buf.Write(trailer[:])
	return buf.Bytes(), nil
}

// gunzip decompresses data, failing with ErrTooBig once the output would
// exceed max bytes.
func gunzip(data []byte, max int64) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, max))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) == max {
		// Anything left means the payload is over the cap.
		var scratch [1]byte
		if n, err := zr.Read(scratch[:]); n > 0 {
			return nil, ErrTooBig
		} else if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	}
	return out, nil
}
