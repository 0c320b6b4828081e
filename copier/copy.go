package copier

import (
	"errors"
	"sort"

	"github.com/tanaylab/dafgo/array"
	"github.com/tanaylab/dafgo/model"
	"github.com/tanaylab/dafgo/storage"
)

type options struct {
	rename    string
	kind      model.Kind
	hasKind   bool
	empty     model.Value
	hasEmpty  bool
	overwrite bool
}

// Option configures a single copy operation.
type Option func(*options)

// WithRename stores the property under a different name in the
// destination.
func WithRename(name string) Option {
	return func(o *options) { o.rename = name }
}

// WithKind converts the copied values to a different element type.
func WithKind(kind model.Kind) Option {
	return func(o *options) {
		o.kind = kind
		o.hasKind = true
	}
}

// WithEmpty supplies the fill value for destination entries absent
// from the source. Required when the source axis is a strict subset
// of the destination axis.
func WithEmpty(value model.Value) Option {
	return func(o *options) {
		o.empty = value
		o.hasEmpty = true
	}
}

// WithOverwrite allows replacing an existing destination property.
func WithOverwrite() Option {
	return func(o *options) { o.overwrite = true }
}

func buildOptions(name string, optFns []Option) options {
	o := options{rename: name}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// CopyScalar copies a scalar from src into dst.
func CopyScalar(dst storage.Writer, src storage.Reader, name string, optFns ...Option) error {
	o := buildOptions(name, optFns)
	value, err := src.GetScalar(name)
	if err != nil {
		return err
	}
	if o.hasKind {
		if value, err = value.Convert(o.kind); err != nil {
			return err
		}
	}
	return dst.SetScalar(o.rename, value, o.overwrite)
}

// CopyAxis copies an axis from src into dst. If the destination
// already has the axis its entries must be identical; otherwise the
// axis is created verbatim.
func CopyAxis(dst storage.Writer, src storage.Reader, axis string, optFns ...Option) error {
	o := buildOptions(axis, optFns)
	entries, err := src.GetAxis(axis)
	if err != nil {
		return err
	}
	if dst.HasAxis(o.rename) {
		existing, err := dst.GetAxis(o.rename)
		if err != nil {
			return err
		}
		if !sameEntries(entries, existing) {
			return &DisjointAxisError{Axis: o.rename, Source: src.Name(), Destination: dst.Name()}
		}
		return nil
	}
	return dst.AddAxis(o.rename, entries)
}

// classifyAxis classifies a shared axis between the datasets, naming
// them in the failure. A destination without the axis gets it created
// verbatim and classifies as Same.
func classifyAxis(dst storage.Writer, src storage.Reader, axis string) (*axisRelation, []string, error) {
	source, err := src.GetAxis(axis)
	if err != nil {
		return nil, nil, err
	}
	var destination []string
	if dst.HasAxis(axis) {
		destination, err = dst.GetAxis(axis)
		if err != nil {
			return nil, nil, err
		}
	} else {
		if err := dst.AddAxis(axis, source); err != nil {
			return nil, nil, err
		}
		destination = source
	}
	rel, err := classify(source, destination)
	if err != nil {
		var disjoint *DisjointAxisError
		if errors.As(err, &disjoint) {
			disjoint.Axis = axis
			disjoint.Source = src.Name()
			disjoint.Destination = dst.Name()
		}
		return nil, nil, err
	}
	return rel, destination, nil
}

// needsEmpty reports whether aligning to the destination leaves
// positions no source entry covers.
func needsEmpty(rel *axisRelation, dstLen int) bool {
	return int(rel.covered.GetCardinality()) < dstLen
}

// CopyVector copies a vector from src into dst, aligning it to the
// destination axis's entries.
func CopyVector(dst storage.Writer, src storage.Reader, axis, name string, optFns ...Option) error {
	o := buildOptions(name, optFns)
	rel, dstEntries, err := classifyAxis(dst, src, axis)
	if err != nil {
		return err
	}
	vector, err := src.GetVector(axis, name)
	if err != nil {
		return err
	}
	kind := vector.Kind()
	if o.hasKind {
		kind = o.kind
	}
	if needsEmpty(rel, len(dstEntries)) && !o.hasEmpty {
		return &MissingEmptyError{Axis: axis, Property: name, Source: src.Name(), Destination: dst.Name()}
	}
	out, err := alignVector(vector, rel, len(dstEntries), kind, o)
	if err != nil {
		return err
	}
	return dst.SetVector(axis, o.rename, out, o.overwrite)
}

// alignVector produces the destination-shaped copy of a vector.
func alignVector(vector *array.Vector, rel *axisRelation, dstLen int, kind model.Kind, o options) (*array.Vector, error) {
	if rel.relation == Same {
		return convertVector(vector, kind)
	}
	if vector.Form() == array.FormSparse && (!o.hasEmpty || o.empty.IsDefault()) {
		return projectSparseVector(vector, rel, dstLen, kind)
	}
	values, err := array.Make(kind, dstLen)
	if err != nil {
		return nil, err
	}
	if o.hasEmpty {
		if err := array.Fill(values, o.empty); err != nil {
			return nil, err
		}
	}
	for dstPos := 0; dstPos < dstLen; dstPos++ {
		srcPos := rel.source(dstPos)
		if srcPos < 0 {
			continue
		}
		v, err := vector.Value(srcPos).Convert(kind)
		if err != nil {
			return nil, err
		}
		values.SetValue(dstPos, v)
	}
	return array.DenseVector(values), nil
}

// convertVector returns the vector itself when no conversion is
// needed, or a structure-preserving copy with converted values.
func convertVector(vector *array.Vector, kind model.Kind) (*array.Vector, error) {
	if kind == vector.Kind() {
		return vector, nil
	}
	values, err := array.Make(kind, vector.Values.Len())
	if err != nil {
		return nil, err
	}
	if err := array.Convert(values, vector.Values); err != nil {
		return nil, err
	}
	if vector.Form() == array.FormSparse {
		return array.SparseVector(vector.Size, vector.Indices, values), nil
	}
	return array.DenseVector(values), nil
}

// projectSparseVector realigns a sparse vector's stored entries to
// the destination positions, staying sparse. The uncovered
// destination entries keep the default value.
func projectSparseVector(vector *array.Vector, rel *axisRelation, dstLen int, kind model.Kind) (*array.Vector, error) {
	// dstOf inverts the relation for the source positions that carry
	// stored entries.
	dstOf := make(map[int]int, dstLen)
	for dstPos := 0; dstPos < dstLen; dstPos++ {
		if srcPos := rel.source(dstPos); srcPos >= 0 {
			dstOf[srcPos] = dstPos
		}
	}
	type entry struct {
		pos int
		src int
	}
	entries := make([]entry, 0, vector.NNZ())
	for i := 0; i < vector.NNZ(); i++ {
		srcPos := vector.Indices.Index(i)
		if dstPos, ok := dstOf[srcPos]; ok {
			entries = append(entries, entry{pos: dstPos, src: i})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].pos < entries[j].pos })
	indices := make([]int64, len(entries))
	values, err := array.Make(kind, len(entries))
	if err != nil {
		return nil, err
	}
	for i, e := range entries {
		indices[i] = int64(e.pos)
		v, err := vector.Values.Value(e.src).Convert(kind)
		if err != nil {
			return nil, err
		}
		values.SetValue(i, v)
	}
	return array.SparseVector(dstLen, array.IndicesOf(indices), values), nil
}

// CopyMatrix copies a matrix from src into dst, aligning both axes to
// the destination's entries. Each axis is classified independently.
func CopyMatrix(dst storage.Writer, src storage.Reader, rowsAxis, columnsAxis, name string, optFns ...Option) error {
	o := buildOptions(name, optFns)
	rowRel, dstRows, err := classifyAxis(dst, src, rowsAxis)
	if err != nil {
		return err
	}
	colRel, dstCols, err := classifyAxis(dst, src, columnsAxis)
	if err != nil {
		return err
	}
	matrix, err := src.GetMatrix(rowsAxis, columnsAxis, name)
	if err != nil {
		return err
	}
	kind := matrix.Kind()
	if o.hasKind {
		kind = o.kind
	}
	if (needsEmpty(rowRel, len(dstRows)) || needsEmpty(colRel, len(dstCols))) && !o.hasEmpty {
		return &MissingEmptyError{Axis: rowsAxis + ":" + columnsAxis, Property: name,
			Source: src.Name(), Destination: dst.Name()}
	}
	out, err := alignMatrix(matrix, rowRel, colRel, len(dstRows), len(dstCols), kind, o)
	if err != nil {
		return err
	}
	return dst.SetMatrix(rowsAxis, columnsAxis, o.rename, out, o.overwrite)
}

func alignMatrix(matrix *array.Matrix, rowRel, colRel *axisRelation, dstRows, dstCols int, kind model.Kind, o options) (*array.Matrix, error) {
	if rowRel.relation == Same && colRel.relation == Same {
		return convertMatrix(matrix, kind)
	}
	if matrix.Form() == array.FormSparse && rowRel.relation == Same && (!o.hasEmpty || o.empty.IsDefault()) {
		return projectSparseColumns(matrix, colRel, dstCols, kind)
	}
	values, err := array.Make(kind, dstRows*dstCols)
	if err != nil {
		return nil, err
	}
	if o.hasEmpty {
		if err := array.Fill(values, o.empty); err != nil {
			return nil, err
		}
	}
	for dstCol := 0; dstCol < dstCols; dstCol++ {
		srcCol := colRel.source(dstCol)
		if srcCol < 0 {
			continue
		}
		for dstRow := 0; dstRow < dstRows; dstRow++ {
			srcRow := rowRel.source(dstRow)
			if srcRow < 0 {
				continue
			}
			v, err := matrix.At(srcRow, srcCol).Convert(kind)
			if err != nil {
				return nil, err
			}
			values.SetValue(dstCol*dstRows+dstRow, v)
		}
	}
	return array.DenseMatrix(dstRows, dstCols, array.MajorColumns, values), nil
}

func convertMatrix(matrix *array.Matrix, kind model.Kind) (*array.Matrix, error) {
	if kind == matrix.Kind() {
		return matrix, nil
	}
	values, err := array.Make(kind, matrix.Values.Len())
	if err != nil {
		return nil, err
	}
	if err := array.Convert(values, matrix.Values); err != nil {
		return nil, err
	}
	if matrix.Form() == array.FormSparse {
		return array.SparseMatrix(matrix.Rows, matrix.Cols, matrix.Colptr, matrix.Rowval, values), nil
	}
	return array.DenseMatrix(matrix.Rows, matrix.Cols, matrix.Major, values), nil
}

// projectSparseColumns realigns a compressed-sparse-column matrix to
// the destination columns axis while the rows axis is unchanged. Row
// indices within every kept column stay sorted, so the result is
// built column by column.
func projectSparseColumns(matrix *array.Matrix, colRel *axisRelation, dstCols int, kind model.Kind) (*array.Matrix, error) {
	nnz := 0
	for dstCol := 0; dstCol < dstCols; dstCol++ {
		if srcCol := colRel.source(dstCol); srcCol >= 0 {
			nnz += matrix.Colptr.Index(srcCol+1) - matrix.Colptr.Index(srcCol)
		}
	}
	colptr := make([]int64, dstCols+1)
	rowval := make([]int64, 0, nnz)
	values, err := array.Make(kind, nnz)
	if err != nil {
		return nil, err
	}
	at := 0
	for dstCol := 0; dstCol < dstCols; dstCol++ {
		colptr[dstCol] = int64(at)
		srcCol := colRel.source(dstCol)
		if srcCol < 0 {
			continue
		}
		for i := matrix.Colptr.Index(srcCol); i < matrix.Colptr.Index(srcCol + 1); i++ {
			rowval = append(rowval, int64(matrix.Rowval.Index(i)))
			v, err := matrix.Values.Value(i).Convert(kind)
			if err != nil {
				return nil, err
			}
			values.SetValue(at, v)
			at++
		}
	}
	colptr[dstCols] = int64(at)
	return array.SparseMatrix(matrix.Rows, dstCols, array.IndicesOf(colptr), array.IndicesOf(rowval), values), nil
}
