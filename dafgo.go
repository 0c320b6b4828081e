package dafgo

import (
	"log/slog"

	"github.com/tanaylab/dafgo/storage"
	"github.com/tanaylab/dafgo/storage/files"
	"github.com/tanaylab/dafgo/storage/memory"
)

// Version is the dafgo release version.
const Version = "0.1.0"

type options struct {
	logger *slog.Logger
}

// Option configures a dataset constructor.
type Option func(*options)

// WithLogger sets the structured logger used for mutation logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func wrapOptions(optFns []Option) []storage.Option {
	o := options{}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		return nil
	}
	return []storage.Option{storage.WithLogger(o.logger)}
}

// MemoryDaf returns a mutable in-memory dataset. Arrays are stored by
// reference, so it is also the natural target for zero-duplication
// views of other datasets' data.
func MemoryDaf(name string, optFns ...Option) *storage.Dataset {
	return storage.Wrap(memory.New(name), wrapOptions(optFns)...)
}

// FilesDaf is a dataset stored in a multi-file directory. Close
// releases the payload mappings; arrays fetched from the dataset must
// not be used afterwards.
type FilesDaf struct {
	*storage.Dataset
	backend *files.Files
}

// CreateFilesDaf initializes an empty dataset directory and returns
// the mutable dataset over it.
func CreateFilesDaf(dir string, optFns ...Option) (*FilesDaf, error) {
	backend, err := files.Create(dir)
	if err != nil {
		return nil, err
	}
	return &FilesDaf{Dataset: storage.Wrap(backend, wrapOptions(optFns)...), backend: backend}, nil
}

// OpenFilesDaf opens an existing dataset directory, refusing
// incompatible format versions.
func OpenFilesDaf(dir string, optFns ...Option) (*FilesDaf, error) {
	backend, err := files.Open(dir)
	if err != nil {
		return nil, err
	}
	return &FilesDaf{Dataset: storage.Wrap(backend, wrapOptions(optFns)...), backend: backend}, nil
}

// Dir returns the dataset directory.
func (d *FilesDaf) Dir() string { return d.backend.Dir() }

// Close releases every open payload mapping.
func (d *FilesDaf) Close() error { return d.backend.Close() }
