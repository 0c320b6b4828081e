package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tanaylab/dafgo/array"
	"github.com/tanaylab/dafgo/codec"
	"github.com/tanaylab/dafgo/internal/mmap"
	"github.com/tanaylab/dafgo/layout"
	"github.com/tanaylab/dafgo/model"
)

// arrayMeta is the JSON sidecar describing a vector or matrix
// property. The payload files live next to it.
type arrayMeta struct {
	Format  string `json:"format"`
	Eltype  string `json:"eltype"`
	Indtype string `json:"indtype,omitempty"`
}

// payloadExts lists every payload suffix a property may own.
var payloadExts = []string{".json", ".data", ".txt", ".nzind", ".nzval", ".colptr", ".rowval", ".nztxt"}

// sparseStringSaving is the fraction of bytes a sparse rendering of a
// dense string payload must save to be preferred on disk.
const sparseStringSaving = 0.25

func (d *Files) readMeta(base string) (*arrayMeta, model.Kind, model.Kind, error) {
	raw, err := os.ReadFile(base + ".json")
	if err != nil {
		return nil, 0, 0, err
	}
	var meta arrayMeta
	if err := codec.Default.Unmarshal(raw, &meta); err != nil {
		return nil, 0, 0, err
	}
	kind, err := model.ParseKind(meta.Eltype)
	if err != nil {
		return nil, 0, 0, err
	}
	indKind := model.Kind(0)
	if meta.Indtype != "" {
		if indKind, err = model.ParseKind(meta.Indtype); err != nil {
			return nil, 0, 0, err
		}
	}
	return &meta, kind, indKind, nil
}

func (d *Files) writeMeta(base string, meta arrayMeta) error {
	raw, err := codec.Default.Marshal(meta)
	if err != nil {
		return err
	}
	return os.WriteFile(base+".json", raw, 0o644)
}

// mapPayload memory-maps a binary payload file, reusing an already
// open mapping. The returned bytes stay valid until the property is
// dropped or the backend is closed.
func (d *Files) mapPayload(path string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if m, ok := d.maps[path]; ok {
		return m.Data, nil
	}
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	d.maps[path] = m
	return m.Data, nil
}

func (d *Files) dropPayloads(base string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, ext := range payloadExts {
		path := base + ext
		if m, ok := d.maps[path]; ok {
			_ = m.Close()
			delete(d.maps, path)
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func stringsOf(values array.Data) []string {
	if s, ok := values.(array.Strings); ok {
		return s
	}
	out := make([]string, values.Len())
	for i := range out {
		out[i] = values.Value(i).Str()
	}
	return out
}

// readValues loads the value payload of a sparse property: text for
// strings, an omitted value file for uniformly-true booleans, a
// mapped binary file otherwise.
func (d *Files) readValues(base string, kind model.Kind, nnz int) (array.Data, error) {
	if kind == model.String {
		raw, err := os.ReadFile(base + ".nztxt")
		if err != nil {
			return nil, err
		}
		return array.Strings(splitLines(string(raw))), nil
	}
	if kind == model.Bool && !exists(base+".nzval") {
		trues := make([]bool, nnz)
		for i := range trues {
			trues[i] = true
		}
		return array.Of(trues), nil
	}
	raw, err := d.mapPayload(base + ".nzval")
	if err != nil {
		return nil, err
	}
	return array.FromBytes(kind, raw)
}

// writeValues stores the value payload of a sparse property,
// omitting the file entirely for uniformly-true booleans.
func writeValues(base string, values array.Data) error {
	if values.Kind() == model.String {
		return os.WriteFile(base+".nztxt", []byte(joinLines(stringsOf(values))), 0o644)
	}
	if values.Kind() == model.Bool && values.Len() > 0 && layout.AllTrue(values) {
		return nil
	}
	return os.WriteFile(base+".nzval", array.AsBytes(values), 0o644)
}

// --- vectors ---

func (d *Files) vectorBase(axis, name string) string {
	return filepath.Join(d.dir, "vectors", axis, name)
}

func (d *Files) HasVector(axis, name string) bool {
	d.base.AssertRead("HasVector")
	return checkName(name) == nil && exists(d.vectorBase(axis, name)+".json")
}

func (d *Files) VectorNames(axis string) []string {
	d.base.AssertRead("VectorNames")
	return namesIn(filepath.Join(d.dir, "vectors", axis), ".json")
}

func (d *Files) Vector(axis, name string) (*array.Vector, error) {
	d.base.AssertRead("Vector")
	size, err := d.AxisLen(axis)
	if err != nil {
		return nil, err
	}
	base := d.vectorBase(axis, name)
	meta, kind, indKind, err := d.readMeta(base)
	if err != nil {
		return nil, err
	}
	switch meta.Format {
	case "dense":
		if kind == model.String {
			raw, err := os.ReadFile(base + ".txt")
			if err != nil {
				return nil, err
			}
			return array.DenseVector(array.Strings(splitLines(string(raw)))), nil
		}
		raw, err := d.mapPayload(base + ".data")
		if err != nil {
			return nil, err
		}
		values, err := array.FromBytes(kind, raw)
		if err != nil {
			return nil, err
		}
		return array.DenseVector(values), nil
	case "sparse":
		raw, err := d.mapPayload(base + ".nzind")
		if err != nil {
			return nil, err
		}
		indices, err := array.IntsFromBytes(indKind, raw)
		if err != nil {
			return nil, err
		}
		values, err := d.readValues(base, kind, indices.Len())
		if err != nil {
			return nil, err
		}
		return array.SparseVector(size, indices, values), nil
	}
	return nil, fmt.Errorf("unknown storage format: %s in: %s", meta.Format, base+".json")
}

func (d *Files) PutVector(axis, name string, vector *array.Vector) error {
	d.base.AssertWrite("PutVector")
	if err := checkName(name); err != nil {
		return err
	}
	base := d.vectorBase(axis, name)
	if vector.Form() == array.FormDense && vector.Kind() == model.String {
		if sparse := sparsifyStrings(vector); sparse != nil {
			vector = sparse
		}
	}
	switch vector.Form() {
	case array.FormDense:
		if vector.Kind() == model.String {
			if err := os.WriteFile(base+".txt", []byte(joinLines(stringsOf(vector.Values))), 0o644); err != nil {
				return err
			}
		} else {
			if err := os.WriteFile(base+".data", array.AsBytes(vector.Values), 0o644); err != nil {
				return err
			}
		}
		return d.writeMeta(base, arrayMeta{Format: "dense", Eltype: vector.Kind().String()})
	default:
		if err := os.WriteFile(base+".nzind", array.IntsAsBytes(vector.Indices), 0o644); err != nil {
			return err
		}
		if err := writeValues(base, vector.Values); err != nil {
			return err
		}
		return d.writeMeta(base, arrayMeta{
			Format:  "sparse",
			Eltype:  vector.Kind().String(),
			Indtype: vector.Indices.Kind().String(),
		})
	}
}

func (d *Files) DropVector(axis, name string) error {
	d.base.AssertWrite("DropVector")
	return d.dropPayloads(d.vectorBase(axis, name))
}

// sparsifyStrings converts a dense string vector to its sparse form
// when storing only the non-empty strings saves enough space, and
// returns nil when the dense form should stay.
func sparsifyStrings(vector *array.Vector) *array.Vector {
	values := stringsOf(vector.Values)
	denseBytes := 0
	sparseBytes := 0
	nnz := 0
	for _, value := range values {
		denseBytes += len(value) + 1
		if value != "" {
			sparseBytes += len(value) + 1 + model.Int64.Size()
			nnz++
		}
	}
	if denseBytes == 0 || float64(denseBytes-sparseBytes) < sparseStringSaving*float64(denseBytes) {
		return nil
	}
	indices := make([]int64, 0, nnz)
	nonEmpty := make(array.Strings, 0, nnz)
	for i, value := range values {
		if value != "" {
			indices = append(indices, int64(i))
			nonEmpty = append(nonEmpty, value)
		}
	}
	return array.SparseVector(len(values), array.IndicesOf(indices), nonEmpty)
}

// --- matrices ---

func (d *Files) matrixBase(rowsAxis, columnsAxis, name string) string {
	return filepath.Join(d.dir, "matrices", rowsAxis, columnsAxis, name)
}

func (d *Files) HasMatrix(rowsAxis, columnsAxis, name string) bool {
	d.base.AssertRead("HasMatrix")
	return checkName(name) == nil && exists(d.matrixBase(rowsAxis, columnsAxis, name)+".json")
}

func (d *Files) MatrixNames(rowsAxis, columnsAxis string) []string {
	d.base.AssertRead("MatrixNames")
	return namesIn(filepath.Join(d.dir, "matrices", rowsAxis, columnsAxis), ".json")
}

func (d *Files) Matrix(rowsAxis, columnsAxis, name string) (*array.Matrix, error) {
	d.base.AssertRead("Matrix")
	rows, err := d.AxisLen(rowsAxis)
	if err != nil {
		return nil, err
	}
	cols, err := d.AxisLen(columnsAxis)
	if err != nil {
		return nil, err
	}
	base := d.matrixBase(rowsAxis, columnsAxis, name)
	meta, kind, indKind, err := d.readMeta(base)
	if err != nil {
		return nil, err
	}
	switch meta.Format {
	case "dense":
		if kind == model.String {
			// Dense string payloads are newline-delimited in row-major
			// iteration order.
			raw, err := os.ReadFile(base + ".txt")
			if err != nil {
				return nil, err
			}
			return array.DenseMatrix(rows, cols, array.MajorRows, array.Strings(splitLines(string(raw)))), nil
		}
		raw, err := d.mapPayload(base + ".data")
		if err != nil {
			return nil, err
		}
		values, err := array.FromBytes(kind, raw)
		if err != nil {
			return nil, err
		}
		return array.DenseMatrix(rows, cols, array.MajorColumns, values), nil
	case "sparse":
		rawColptr, err := d.mapPayload(base + ".colptr")
		if err != nil {
			return nil, err
		}
		colptr, err := array.IntsFromBytes(indKind, rawColptr)
		if err != nil {
			return nil, err
		}
		rawRowval, err := d.mapPayload(base + ".rowval")
		if err != nil {
			return nil, err
		}
		rowval, err := array.IntsFromBytes(indKind, rawRowval)
		if err != nil {
			return nil, err
		}
		values, err := d.readValues(base, kind, rowval.Len())
		if err != nil {
			return nil, err
		}
		return array.SparseMatrix(rows, cols, colptr, rowval, values), nil
	}
	return nil, fmt.Errorf("unknown storage format: %s in: %s", meta.Format, base+".json")
}

func (d *Files) PutMatrix(rowsAxis, columnsAxis, name string, matrix *array.Matrix) error {
	d.base.AssertWrite("PutMatrix")
	if err := checkName(name); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(d.dir, "matrices", rowsAxis, columnsAxis), 0o755); err != nil {
		return err
	}
	base := d.matrixBase(rowsAxis, columnsAxis, name)
	switch matrix.Form() {
	case array.FormDense:
		if matrix.Kind() == model.String {
			lines := make([]string, 0, matrix.Rows*matrix.Cols)
			for row := 0; row < matrix.Rows; row++ {
				for col := 0; col < matrix.Cols; col++ {
					lines = append(lines, matrix.At(row, col).Str())
				}
			}
			if err := os.WriteFile(base+".txt", []byte(joinLines(lines)), 0o644); err != nil {
				return err
			}
		} else {
			values, err := columnMajorValues(matrix)
			if err != nil {
				return err
			}
			if err := os.WriteFile(base+".data", array.AsBytes(values), 0o644); err != nil {
				return err
			}
		}
		return d.writeMeta(base, arrayMeta{Format: "dense", Eltype: matrix.Kind().String()})
	default:
		if err := os.WriteFile(base+".colptr", array.IntsAsBytes(matrix.Colptr), 0o644); err != nil {
			return err
		}
		if err := os.WriteFile(base+".rowval", array.IntsAsBytes(matrix.Rowval), 0o644); err != nil {
			return err
		}
		if err := writeValues(base, matrix.Values); err != nil {
			return err
		}
		return d.writeMeta(base, arrayMeta{
			Format:  "sparse",
			Eltype:  matrix.Kind().String(),
			Indtype: matrix.Colptr.Kind().String(),
		})
	}
}

func (d *Files) DropMatrix(rowsAxis, columnsAxis, name string) error {
	d.base.AssertWrite("DropMatrix")
	return d.dropPayloads(d.matrixBase(rowsAxis, columnsAxis, name))
}

// columnMajorValues returns the matrix's values in column-major
// order, transposing a row-major buffer as needed. Dense matrix
// payloads are column-major on disk regardless of the in-memory
// layout they were stored from.
func columnMajorValues(matrix *array.Matrix) (array.Data, error) {
	if matrix.Major == array.MajorColumns {
		return matrix.Values, nil
	}
	values, err := array.Make(matrix.Kind(), matrix.Rows*matrix.Cols)
	if err != nil {
		return nil, err
	}
	for col := 0; col < matrix.Cols; col++ {
		for row := 0; row < matrix.Rows; row++ {
			values.SetValue(col*matrix.Rows+row, matrix.At(row, col))
		}
	}
	return values, nil
}
