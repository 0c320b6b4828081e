//go:build !unix

package mmap

import (
	"io"
	"os"
)

// The fallback reads the whole file into memory on Open and writes it
// back on Sync/Close. Semantics match the mapped path; only the
// zero-copy property is lost.

func mapFile(f *os.File, size int, writable bool) ([]byte, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, err
	}
	return data, nil
}

func unmap(data []byte) error {
	return nil
}

func sync(f *os.File, data []byte) error {
	if _, err := f.WriteAt(data, 0); err != nil {
		return err
	}
	return f.Sync()
}

func advise(data []byte, pattern AccessPattern) error {
	return nil
}
