package archive

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression is a streaming compression codec selected by name. The
// name is recorded in the archive header so Unpack never needs to be
// told which codec was used.
type Compression interface {
	Name() string
	Compress(w io.Writer) (io.WriteCloser, error)
	Decompress(r io.Reader) (io.ReadCloser, error)
}

// ByName returns the compression codec registered under name:
// "zstd", "s2", "lz4" or "none".
func ByName(name string) (Compression, error) {
	switch name {
	case "zstd":
		return zstdCompression{}, nil
	case "s2":
		return s2Compression{}, nil
	case "lz4":
		return lz4Compression{}, nil
	case "none", "":
		return noCompression{}, nil
	}
	return nil, fmt.Errorf("unknown compression codec: %s", name)
}

type zstdCompression struct{}

func (zstdCompression) Name() string { return "zstd" }

func (zstdCompression) Compress(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w)
}

func (zstdCompression) Decompress(r io.Reader) (io.ReadCloser, error) {
	d, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return d.IOReadCloser(), nil
}

type s2Compression struct{}

func (s2Compression) Name() string { return "s2" }

func (s2Compression) Compress(w io.Writer) (io.WriteCloser, error) {
	return s2.NewWriter(w), nil
}

func (s2Compression) Decompress(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(s2.NewReader(r)), nil
}

type lz4Compression struct{}

func (lz4Compression) Name() string { return "lz4" }

func (lz4Compression) Compress(w io.Writer) (io.WriteCloser, error) {
	return lz4.NewWriter(w), nil
}

func (lz4Compression) Decompress(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}

type noCompression struct{}

func (noCompression) Name() string { return "none" }

func (noCompression) Compress(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

func (noCompression) Decompress(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
