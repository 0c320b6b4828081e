// Package mmap provides memory-mapped access to payload files.
//
// Reads map a file read-only for zero-copy array views; the returned
// bytes stay valid until Close. Writes go through Create, which
// pre-sizes the file and maps it read-write so a caller can fill the
// array in place before committing it with Sync.
//
// On platforms without mmap support the package falls back to plain
// file reads and writes.
package mmap

import (
	"errors"
	"io"
	"os"
)

// AccessPattern hints to the kernel how the mapped data will be
// accessed.
type AccessPattern int

const (
	AccessDefault AccessPattern = iota
	AccessSequential
	AccessRandom
	AccessWillNeed
	AccessDontNeed
)

var (
	// ErrClosed is returned when accessing a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned for a negative or overflowing size.
	ErrInvalidSize = errors.New("mmap: invalid size")
	// ErrInvalidOffset is returned for a negative read offset.
	ErrInvalidOffset = errors.New("mmap: invalid offset")
)

// File is a memory-mapped file. Data aliases the mapped region
// directly; it is valid only until Close.
type File struct {
	Data     []byte
	f        *os.File
	writable bool
}

// Open maps the file at path into memory as read-only. An empty file
// maps to nil Data.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	size := fi.Size()
	if size < 0 || size != int64(int(size)) {
		f.Close()
		return nil, ErrInvalidSize
	}
	if size == 0 {
		return &File{f: f}, nil
	}
	data, err := mapFile(f, int(size), false)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &File{Data: data, f: f}, nil
}

// Create creates (or truncates) the file at path, extends it to size
// bytes and maps it read-write. The mapped bytes are zero until
// filled.
func Create(path string, size int) (*File, error) {
	if size < 0 {
		return nil, ErrInvalidSize
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return &File{f: f, writable: true}, nil
	}
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		return nil, err
	}
	data, err := mapFile(f, size, true)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &File{Data: data, f: f, writable: true}, nil
}

// Sync flushes a writable mapping to its file.
func (m *File) Sync() error {
	if m.f == nil {
		return ErrClosed
	}
	if !m.writable || m.Data == nil {
		return nil
	}
	return sync(m.f, m.Data)
}

// Advise hints the kernel about the access pattern of the mapping.
func (m *File) Advise(pattern AccessPattern) error {
	if m.f == nil {
		return ErrClosed
	}
	if m.Data == nil {
		return nil
	}
	return advise(m.Data, pattern)
}

// ReadAt implements io.ReaderAt over the mapped bytes.
func (m *File) ReadAt(p []byte, off int64) (int, error) {
	if m.f == nil {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, ErrInvalidOffset
	}
	if off >= int64(len(m.Data)) {
		return 0, io.EOF
	}
	n := copy(p, m.Data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close unmaps the memory and closes the underlying file. It is
// idempotent.
func (m *File) Close() error {
	if m == nil || m.f == nil {
		return nil
	}
	var err error
	if m.Data != nil {
		if m.writable {
			err = sync(m.f, m.Data)
		}
		if unmapErr := unmap(m.Data); unmapErr != nil && err == nil {
			err = unmapErr
		}
		m.Data = nil
	}
	if closeErr := m.f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	m.f = nil
	return err
}
