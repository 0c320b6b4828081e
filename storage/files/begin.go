package files

import (
	"os"
	"path/filepath"

	"github.com/tanaylab/dafgo/array"
	"github.com/tanaylab/dafgo/internal/mmap"
	"github.com/tanaylab/dafgo/model"
	"github.com/tanaylab/dafgo/storage"
)

// The pre-allocate/fill protocol maps freshly pre-sized payload files
// read-write so the caller fills the array directly in page cache,
// with no intermediate copy. The sidecar is written only on commit,
// so an abandoned or half-filled property is never visible: presence
// is defined by the sidecar's existence.

// beginPayload pre-sizes and maps one payload file.
func (d *Files) beginPayload(path string, kind model.Kind, n int) (array.Data, *mmap.File, error) {
	m, err := mmap.Create(path, n*kind.Size())
	if err != nil {
		return nil, nil, err
	}
	data, err := array.FromBytes(kind, m.Data)
	if err != nil {
		m.Close()
		os.Remove(path)
		return nil, nil, err
	}
	return data, m, nil
}

func (d *Files) beginIndexPayload(path string, kind model.Kind, n int) (array.Ints, *mmap.File, error) {
	m, err := mmap.Create(path, n*kind.Size())
	if err != nil {
		return nil, nil, err
	}
	indices, err := array.IntsFromBytes(kind, m.Data)
	if err != nil {
		m.Close()
		os.Remove(path)
		return nil, nil, err
	}
	return indices, m, nil
}

// finish builds the Commit for a set of pre-sized payloads. On ok the
// mappings are flushed, retained for reads and the sidecar is
// written; otherwise everything is unwound.
func (d *Files) finish(base string, meta arrayMeta, paths []string, maps []*mmap.File) storage.Commit {
	return func(ok bool) error {
		if !ok {
			for i, m := range maps {
				_ = m.Close()
				_ = os.Remove(paths[i])
			}
			return nil
		}
		for _, m := range maps {
			if err := m.Sync(); err != nil {
				return err
			}
		}
		d.mu.Lock()
		for i, m := range maps {
			d.maps[paths[i]] = m
		}
		d.mu.Unlock()
		return d.writeMeta(base, meta)
	}
}

func (d *Files) BeginDenseVector(axis, name string, kind model.Kind, size int) (array.Data, storage.Commit, error) {
	d.base.AssertWrite("BeginDenseVector")
	if err := checkName(name); err != nil {
		return nil, nil, err
	}
	base := d.vectorBase(axis, name)
	values, m, err := d.beginPayload(base+".data", kind, size)
	if err != nil {
		return nil, nil, err
	}
	commit := d.finish(base, arrayMeta{Format: "dense", Eltype: kind.String()},
		[]string{base + ".data"}, []*mmap.File{m})
	return values, commit, nil
}

func (d *Files) BeginSparseVector(axis, name string, kind model.Kind, size, nnz int, indKind model.Kind) (array.Ints, array.Data, storage.Commit, error) {
	d.base.AssertWrite("BeginSparseVector")
	if err := checkName(name); err != nil {
		return nil, nil, nil, err
	}
	base := d.vectorBase(axis, name)
	indices, indMap, err := d.beginIndexPayload(base+".nzind", indKind, nnz)
	if err != nil {
		return nil, nil, nil, err
	}
	values, valMap, err := d.beginPayload(base+".nzval", kind, nnz)
	if err != nil {
		indMap.Close()
		os.Remove(base + ".nzind")
		return nil, nil, nil, err
	}
	commit := d.finish(base,
		arrayMeta{Format: "sparse", Eltype: kind.String(), Indtype: indKind.String()},
		[]string{base + ".nzind", base + ".nzval"}, []*mmap.File{indMap, valMap})
	return indices, values, commit, nil
}

func (d *Files) BeginDenseMatrix(rowsAxis, columnsAxis, name string, kind model.Kind, rows, cols int) (array.Data, storage.Commit, error) {
	d.base.AssertWrite("BeginDenseMatrix")
	if err := checkName(name); err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Join(d.dir, "matrices", rowsAxis, columnsAxis), 0o755); err != nil {
		return nil, nil, err
	}
	base := d.matrixBase(rowsAxis, columnsAxis, name)
	values, m, err := d.beginPayload(base+".data", kind, rows*cols)
	if err != nil {
		return nil, nil, err
	}
	commit := d.finish(base, arrayMeta{Format: "dense", Eltype: kind.String()},
		[]string{base + ".data"}, []*mmap.File{m})
	return values, commit, nil
}

func (d *Files) BeginSparseMatrix(rowsAxis, columnsAxis, name string, kind model.Kind, rows, cols, nnz int, indKind model.Kind) (array.Ints, array.Ints, array.Data, storage.Commit, error) {
	d.base.AssertWrite("BeginSparseMatrix")
	if err := checkName(name); err != nil {
		return nil, nil, nil, nil, err
	}
	if err := os.MkdirAll(filepath.Join(d.dir, "matrices", rowsAxis, columnsAxis), 0o755); err != nil {
		return nil, nil, nil, nil, err
	}
	base := d.matrixBase(rowsAxis, columnsAxis, name)
	paths := []string{base + ".colptr", base + ".rowval", base + ".nzval"}
	colptr, colMap, err := d.beginIndexPayload(paths[0], indKind, cols+1)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	rowval, rowMap, err := d.beginIndexPayload(paths[1], indKind, nnz)
	if err != nil {
		colMap.Close()
		os.Remove(paths[0])
		return nil, nil, nil, nil, err
	}
	values, valMap, err := d.beginPayload(paths[2], kind, nnz)
	if err != nil {
		colMap.Close()
		rowMap.Close()
		os.Remove(paths[0])
		os.Remove(paths[1])
		return nil, nil, nil, nil, err
	}
	commit := d.finish(base,
		arrayMeta{Format: "sparse", Eltype: kind.String(), Indtype: indKind.String()},
		paths, []*mmap.File{colMap, rowMap, valMap})
	return colptr, rowval, values, commit, nil
}
