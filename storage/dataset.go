package storage

import (
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/tanaylab/dafgo/array"
	"github.com/tanaylab/dafgo/layout"
	"github.com/tanaylab/dafgo/model"
)

// Dataset layers the public Reader/Writer API over a backend Format:
// argument validation, the read/write lock discipline, and the
// dependency-tracked cache. All lock acquisition happens here; the
// wrapped Format only ever runs under a held lock.
type Dataset struct {
	f      Format
	cache  *depCache
	logger *slog.Logger
}

type options struct {
	logger *slog.Logger
}

// Option configures a Dataset wrapper.
type Option func(*options)

// WithLogger sets the structured logger used for mutation logging.
// Pass nil to disable logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Wrap creates the public dataset over a backend format.
func Wrap(f Format, optFns ...Option) *Dataset {
	o := options{}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		// Unreachable level, so the default is no output.
		o.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.Level(1000),
		}))
	}
	return &Dataset{f: f, cache: newDepCache(), logger: o.logger}
}

// Name returns the dataset's display name.
func (d *Dataset) Name() string { return d.f.Base().Name() }

// ReadOnly returns a read-only handle over the same dataset. The
// handle exposes no mutating methods at the type level.
func (d *Dataset) ReadOnly() *ReadOnly { return &ReadOnly{d: d} }

var _ Writer = (*Dataset)(nil)

// --- scalars ---

// HasScalar reports whether a scalar exists.
func (d *Dataset) HasScalar(name string) bool {
	lk := d.f.Base().Lock()
	lk.BeginRead()
	defer lk.EndRead()
	return d.f.HasScalar(name)
}

// ScalarNames returns the sorted names of all scalars.
func (d *Dataset) ScalarNames() []string {
	lk := d.f.Base().Lock()
	lk.BeginRead()
	defer lk.EndRead()
	return sorted(d.f.ScalarNames())
}

// GetScalar returns a scalar's value.
func (d *Dataset) GetScalar(name string) (model.Value, error) {
	lk := d.f.Base().Lock()
	lk.BeginRead()
	defer lk.EndRead()
	if !d.f.HasScalar(name) {
		return model.Value{}, &NoScalarError{Dataset: d.Name(), Scalar: name}
	}
	v, err := d.cache.getOrCompute(ScalarKey(name), RetainMemory, nil, func() (any, error) {
		return d.f.Scalar(name)
	})
	if err != nil {
		return model.Value{}, err
	}
	return v.(model.Value), nil
}

// SetScalar creates or (with overwrite) replaces a scalar.
func (d *Dataset) SetScalar(name string, value model.Value, overwrite bool) error {
	lk := d.f.Base().Lock()
	lk.BeginWrite()
	defer lk.EndWrite()
	if d.f.HasScalar(name) {
		if !overwrite {
			return &ExistsError{Dataset: d.Name(), What: "scalar", Name: name}
		}
		if err := d.f.DropScalar(name); err != nil {
			return err
		}
	}
	if err := d.f.PutScalar(name, value); err != nil {
		return err
	}
	d.cache.invalidate(ScalarKey(name))
	d.logger.Debug("set scalar", "dataset", d.Name(), "scalar", name)
	return nil
}

// DeleteScalar removes a scalar.
func (d *Dataset) DeleteScalar(name string, mustExist bool) error {
	lk := d.f.Base().Lock()
	lk.BeginWrite()
	defer lk.EndWrite()
	if !d.f.HasScalar(name) {
		if mustExist {
			return &NoScalarError{Dataset: d.Name(), Scalar: name}
		}
		return nil
	}
	if err := d.f.DropScalar(name); err != nil {
		return err
	}
	d.cache.invalidate(ScalarKey(name))
	d.logger.Debug("delete scalar", "dataset", d.Name(), "scalar", name)
	return nil
}

// --- axes ---

// HasAxis reports whether an axis exists.
func (d *Dataset) HasAxis(axis string) bool {
	lk := d.f.Base().Lock()
	lk.BeginRead()
	defer lk.EndRead()
	return d.f.HasAxis(axis)
}

// AxisNames returns the sorted names of all axes.
func (d *Dataset) AxisNames() []string {
	lk := d.f.Base().Lock()
	lk.BeginRead()
	defer lk.EndRead()
	return sorted(d.f.AxisNames())
}

// GetAxis returns an axis's entry names in order.
func (d *Dataset) GetAxis(axis string) ([]string, error) {
	lk := d.f.Base().Lock()
	lk.BeginRead()
	defer lk.EndRead()
	return d.axisEntries(axis)
}

// axisEntries is the locked-path axis lookup shared by vector and
// matrix operations. The caller must hold the lock.
func (d *Dataset) axisEntries(axis string) ([]string, error) {
	if !d.f.HasAxis(axis) {
		return nil, &NoAxisError{Dataset: d.Name(), Axis: axis}
	}
	v, err := d.cache.getOrCompute(AxisKey(axis), d.axisRetention(), nil, func() (any, error) {
		return d.f.AxisEntries(axis)
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// AxisLength returns the number of entries of an axis.
func (d *Dataset) AxisLength(axis string) (int, error) {
	lk := d.f.Base().Lock()
	lk.BeginRead()
	defer lk.EndRead()
	if !d.f.HasAxis(axis) {
		return 0, &NoAxisError{Dataset: d.Name(), Axis: axis}
	}
	return d.f.AxisLen(axis)
}

// AddAxis creates an axis from its entry names, which must be unique
// and must not embed newlines (entry names are stored one per line by
// disk backends).
func (d *Dataset) AddAxis(axis string, entries []string) error {
	lk := d.f.Base().Lock()
	lk.BeginWrite()
	defer lk.EndWrite()
	if d.f.HasAxis(axis) {
		return &ExistsError{Dataset: d.Name(), What: "axis", Name: axis}
	}
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if strings.ContainsRune(entry, '\n') {
			return &InvalidEntryError{Dataset: d.Name(), Axis: axis, Entry: entry}
		}
		if _, ok := seen[entry]; ok {
			return &DuplicateEntryError{Dataset: d.Name(), Axis: axis, Entry: entry}
		}
		seen[entry] = struct{}{}
	}
	if err := d.f.PutAxis(axis, entries); err != nil {
		return err
	}
	d.logger.Debug("add axis", "dataset", d.Name(), "axis", axis, "entries", len(entries))
	return nil
}

// DeleteAxis removes an axis and cascades to every vector and matrix
// keyed by it.
func (d *Dataset) DeleteAxis(axis string, mustExist bool) error {
	lk := d.f.Base().Lock()
	lk.BeginWrite()
	defer lk.EndWrite()
	if !d.f.HasAxis(axis) {
		if mustExist {
			return &NoAxisError{Dataset: d.Name(), Axis: axis}
		}
		return nil
	}
	for _, name := range d.f.VectorNames(axis) {
		if err := d.f.DropVector(axis, name); err != nil {
			return err
		}
		d.cache.invalidate(VectorKey(axis, name))
	}
	for _, other := range d.f.AxisNames() {
		for _, pair := range [][2]string{{axis, other}, {other, axis}} {
			if pair[0] == pair[1] && other != axis {
				continue
			}
			for _, name := range d.f.MatrixNames(pair[0], pair[1]) {
				if err := d.f.DropMatrix(pair[0], pair[1], name); err != nil {
					return err
				}
				d.cache.invalidate(MatrixKey(pair[0], pair[1], name))
			}
		}
	}
	if err := d.f.DropAxis(axis); err != nil {
		return err
	}
	d.cache.invalidate(AxisKey(axis))
	d.logger.Debug("delete axis", "dataset", d.Name(), "axis", axis)
	return nil
}

// --- vectors ---

// HasVector reports whether a vector exists. The reserved name is
// always present for an existing axis.
func (d *Dataset) HasVector(axis, name string) (bool, error) {
	lk := d.f.Base().Lock()
	lk.BeginRead()
	defer lk.EndRead()
	if !d.f.HasAxis(axis) {
		return false, &NoAxisError{Dataset: d.Name(), Axis: axis}
	}
	if name == ReservedName {
		return true, nil
	}
	return d.f.HasVector(axis, name), nil
}

// VectorNames returns the sorted property names of an axis's vectors.
func (d *Dataset) VectorNames(axis string) ([]string, error) {
	lk := d.f.Base().Lock()
	lk.BeginRead()
	defer lk.EndRead()
	if !d.f.HasAxis(axis) {
		return nil, &NoAxisError{Dataset: d.Name(), Axis: axis}
	}
	return sorted(d.f.VectorNames(axis)), nil
}

// GetVector returns a vector. Asking for the reserved name returns
// the axis's entry names as a dense string vector.
func (d *Dataset) GetVector(axis, name string) (*array.Vector, error) {
	lk := d.f.Base().Lock()
	lk.BeginRead()
	defer lk.EndRead()
	entries, err := d.axisEntries(axis)
	if err != nil {
		return nil, err
	}
	if name == ReservedName {
		return array.DenseVector(array.Strings(entries)), nil
	}
	if !d.f.HasVector(axis, name) {
		return nil, &NoVectorError{Dataset: d.Name(), Axis: axis, Vector: name}
	}
	v, err := d.cache.getOrCompute(VectorKey(axis, name), d.dataRetention(),
		[]CacheKey{AxisKey(axis)},
		func() (any, error) {
			return d.f.Vector(axis, name)
		})
	if err != nil {
		return nil, err
	}
	return v.(*array.Vector), nil
}

// SetVector creates or replaces a vector, length-checked against its
// axis.
func (d *Dataset) SetVector(axis, name string, vector *array.Vector, overwrite bool) error {
	lk := d.f.Base().Lock()
	lk.BeginWrite()
	defer lk.EndWrite()
	size, err := d.checkVectorWrite(axis, name, overwrite)
	if err != nil {
		return err
	}
	if err := vector.Validate(); err != nil {
		return &InvalidArrayError{Dataset: d.Name(), Property: name, cause: err}
	}
	if vector.Size != size {
		return &LengthError{Dataset: d.Name(), Axis: axis, Property: name, Expected: size, Actual: vector.Size}
	}
	if d.f.HasVector(axis, name) {
		if err := d.f.DropVector(axis, name); err != nil {
			return err
		}
	}
	if err := d.f.PutVector(axis, name, vector); err != nil {
		return err
	}
	d.cache.invalidate(VectorKey(axis, name))
	d.logger.Debug("set vector", "dataset", d.Name(), "axis", axis, "vector", name,
		"form", vector.Form().String(), "eltype", vector.Kind().String())
	return nil
}

// SetVectorFill materializes a vector uniformly filled with a scalar.
// A default fill (zero, false, empty string) yields an empty sparse
// vector for fixed-width kinds.
func (d *Dataset) SetVectorFill(axis, name string, fill model.Value, overwrite bool) error {
	lk := d.f.Base().Lock()
	lk.BeginWrite()
	defer lk.EndWrite()
	size, err := d.checkVectorWrite(axis, name, overwrite)
	if err != nil {
		return err
	}
	vector, err := fillVector(size, fill)
	if err != nil {
		return err
	}
	if d.f.HasVector(axis, name) {
		if err := d.f.DropVector(axis, name); err != nil {
			return err
		}
	}
	if err := d.f.PutVector(axis, name, vector); err != nil {
		return err
	}
	d.cache.invalidate(VectorKey(axis, name))
	d.logger.Debug("set vector", "dataset", d.Name(), "axis", axis, "vector", name,
		"fill", fill.String())
	return nil
}

// DeleteVector removes a vector.
func (d *Dataset) DeleteVector(axis, name string, mustExist bool) error {
	lk := d.f.Base().Lock()
	lk.BeginWrite()
	defer lk.EndWrite()
	if !d.f.HasAxis(axis) {
		return &NoAxisError{Dataset: d.Name(), Axis: axis}
	}
	if name == ReservedName {
		return &ReservedNameError{Dataset: d.Name(), Axis: axis}
	}
	if !d.f.HasVector(axis, name) {
		if mustExist {
			return &NoVectorError{Dataset: d.Name(), Axis: axis, Vector: name}
		}
		return nil
	}
	if err := d.f.DropVector(axis, name); err != nil {
		return err
	}
	d.cache.invalidate(VectorKey(axis, name))
	d.logger.Debug("delete vector", "dataset", d.Name(), "axis", axis, "vector", name)
	return nil
}

// checkVectorWrite validates the common preconditions of vector
// writes and returns the axis length. The caller must hold the write
// lock.
func (d *Dataset) checkVectorWrite(axis, name string, overwrite bool) (int, error) {
	if !d.f.HasAxis(axis) {
		return 0, &NoAxisError{Dataset: d.Name(), Axis: axis}
	}
	if name == ReservedName {
		return 0, &ReservedNameError{Dataset: d.Name(), Axis: axis}
	}
	if d.f.HasVector(axis, name) && !overwrite {
		return 0, &ExistsError{Dataset: d.Name(), What: "vector", Name: axis + ":" + name}
	}
	return d.f.AxisLen(axis)
}

// --- matrices ---

// HasMatrix reports whether a matrix is stored under this exact axis
// order.
func (d *Dataset) HasMatrix(rowsAxis, columnsAxis, name string) (bool, error) {
	lk := d.f.Base().Lock()
	lk.BeginRead()
	defer lk.EndRead()
	if err := d.checkAxes(rowsAxis, columnsAxis); err != nil {
		return false, err
	}
	return d.f.HasMatrix(rowsAxis, columnsAxis, name), nil
}

// MatrixNames returns the sorted property names of the matrices
// stored under this exact axis order.
func (d *Dataset) MatrixNames(rowsAxis, columnsAxis string) ([]string, error) {
	lk := d.f.Base().Lock()
	lk.BeginRead()
	defer lk.EndRead()
	if err := d.checkAxes(rowsAxis, columnsAxis); err != nil {
		return nil, err
	}
	return sorted(d.f.MatrixNames(rowsAxis, columnsAxis)), nil
}

// GetMatrix returns a matrix stored under this exact axis order.
func (d *Dataset) GetMatrix(rowsAxis, columnsAxis, name string) (*array.Matrix, error) {
	lk := d.f.Base().Lock()
	lk.BeginRead()
	defer lk.EndRead()
	if err := d.checkAxes(rowsAxis, columnsAxis); err != nil {
		return nil, err
	}
	if !d.f.HasMatrix(rowsAxis, columnsAxis, name) {
		return nil, &NoMatrixError{Dataset: d.Name(), RowsAxis: rowsAxis, ColumnsAxis: columnsAxis, Matrix: name}
	}
	v, err := d.cache.getOrCompute(MatrixKey(rowsAxis, columnsAxis, name), d.dataRetention(),
		[]CacheKey{AxisKey(rowsAxis), AxisKey(columnsAxis)},
		func() (any, error) {
			return d.f.Matrix(rowsAxis, columnsAxis, name)
		})
	if err != nil {
		return nil, err
	}
	return v.(*array.Matrix), nil
}

// SetMatrix creates or replaces a matrix, shape-checked against its
// axes. The matrix must have a well-defined major axis.
func (d *Dataset) SetMatrix(rowsAxis, columnsAxis, name string, matrix *array.Matrix, overwrite bool) error {
	lk := d.f.Base().Lock()
	lk.BeginWrite()
	defer lk.EndWrite()
	rows, cols, err := d.checkMatrixWrite(rowsAxis, columnsAxis, name, overwrite)
	if err != nil {
		return err
	}
	if err := matrix.Validate(); err != nil {
		return &InvalidArrayError{Dataset: d.Name(), Property: name, cause: err}
	}
	if matrix.Rows != rows {
		return &LengthError{Dataset: d.Name(), Axis: rowsAxis, Property: name, Expected: rows, Actual: matrix.Rows}
	}
	if matrix.Cols != cols {
		return &LengthError{Dataset: d.Name(), Axis: columnsAxis, Property: name, Expected: cols, Actual: matrix.Cols}
	}
	if d.f.HasMatrix(rowsAxis, columnsAxis, name) {
		if err := d.f.DropMatrix(rowsAxis, columnsAxis, name); err != nil {
			return err
		}
	}
	if err := d.f.PutMatrix(rowsAxis, columnsAxis, name, matrix); err != nil {
		return err
	}
	d.cache.invalidate(MatrixKey(rowsAxis, columnsAxis, name))
	d.logger.Debug("set matrix", "dataset", d.Name(), "rows_axis", rowsAxis, "columns_axis", columnsAxis,
		"matrix", name, "form", matrix.Form().String(), "eltype", matrix.Kind().String())
	return nil
}

// SetMatrixFill materializes a matrix uniformly filled with a scalar.
// A default fill yields an empty sparse matrix for fixed-width kinds.
func (d *Dataset) SetMatrixFill(rowsAxis, columnsAxis, name string, fill model.Value, overwrite bool) error {
	lk := d.f.Base().Lock()
	lk.BeginWrite()
	defer lk.EndWrite()
	rows, cols, err := d.checkMatrixWrite(rowsAxis, columnsAxis, name, overwrite)
	if err != nil {
		return err
	}
	matrix, err := fillMatrix(rows, cols, fill)
	if err != nil {
		return err
	}
	if d.f.HasMatrix(rowsAxis, columnsAxis, name) {
		if err := d.f.DropMatrix(rowsAxis, columnsAxis, name); err != nil {
			return err
		}
	}
	if err := d.f.PutMatrix(rowsAxis, columnsAxis, name, matrix); err != nil {
		return err
	}
	d.cache.invalidate(MatrixKey(rowsAxis, columnsAxis, name))
	d.logger.Debug("set matrix", "dataset", d.Name(), "rows_axis", rowsAxis, "columns_axis", columnsAxis,
		"matrix", name, "fill", fill.String())
	return nil
}

// DeleteMatrix removes a matrix (this exact axis order only; a stored
// flipped-layout copy is an independent property).
func (d *Dataset) DeleteMatrix(rowsAxis, columnsAxis, name string, mustExist bool) error {
	lk := d.f.Base().Lock()
	lk.BeginWrite()
	defer lk.EndWrite()
	if err := d.checkAxes(rowsAxis, columnsAxis); err != nil {
		return err
	}
	if !d.f.HasMatrix(rowsAxis, columnsAxis, name) {
		if mustExist {
			return &NoMatrixError{Dataset: d.Name(), RowsAxis: rowsAxis, ColumnsAxis: columnsAxis, Matrix: name}
		}
		return nil
	}
	if err := d.f.DropMatrix(rowsAxis, columnsAxis, name); err != nil {
		return err
	}
	d.cache.invalidate(MatrixKey(rowsAxis, columnsAxis, name))
	d.logger.Debug("delete matrix", "dataset", d.Name(), "rows_axis", rowsAxis, "columns_axis", columnsAxis,
		"matrix", name)
	return nil
}

func (d *Dataset) checkAxes(rowsAxis, columnsAxis string) error {
	if !d.f.HasAxis(rowsAxis) {
		return &NoAxisError{Dataset: d.Name(), Axis: rowsAxis}
	}
	if !d.f.HasAxis(columnsAxis) {
		return &NoAxisError{Dataset: d.Name(), Axis: columnsAxis}
	}
	return nil
}

func (d *Dataset) checkMatrixWrite(rowsAxis, columnsAxis, name string, overwrite bool) (rows, cols int, err error) {
	if err := d.checkAxes(rowsAxis, columnsAxis); err != nil {
		return 0, 0, err
	}
	if d.f.HasMatrix(rowsAxis, columnsAxis, name) && !overwrite {
		return 0, 0, &ExistsError{Dataset: d.Name(), What: "matrix",
			Name: rowsAxis + ":" + columnsAxis + ":" + name}
	}
	rows, err = d.f.AxisLen(rowsAxis)
	if err != nil {
		return 0, 0, err
	}
	cols, err = d.f.AxisLen(columnsAxis)
	if err != nil {
		return 0, 0, err
	}
	return rows, cols, nil
}

// --- pre-allocate/fill ---

// CreateDenseVector pre-allocates an uninitialized dense vector
// buffer and passes it to fill. The vector becomes present only if
// fill returns nil; on error or panic the property stays absent.
func (d *Dataset) CreateDenseVector(axis, name string, kind model.Kind, overwrite bool, fill func(array.Data) error) error {
	lk := d.f.Base().Lock()
	lk.BeginWrite()
	defer lk.EndWrite()
	size, err := d.checkVectorWrite(axis, name, overwrite)
	if err != nil {
		return err
	}
	if !kind.IsFixed() {
		return &NotFixedKindError{Dataset: d.Name(), Property: name, Kind: kind}
	}
	if d.f.HasVector(axis, name) {
		if err := d.f.DropVector(axis, name); err != nil {
			return err
		}
	}
	buf, commit, err := d.f.BeginDenseVector(axis, name, kind, size)
	if err != nil {
		return err
	}
	if err := runFill(commit, func() error { return fill(buf) }); err != nil {
		return err
	}
	d.cache.invalidate(VectorKey(axis, name))
	d.logger.Debug("create vector", "dataset", d.Name(), "axis", axis, "vector", name,
		"eltype", kind.String())
	return nil
}

// CreateSparseVector pre-allocates uninitialized index and value
// buffers for a sparse vector with nnz stored elements.
func (d *Dataset) CreateSparseVector(axis, name string, kind model.Kind, nnz int, indKind model.Kind, overwrite bool,
	fill func(indices array.Ints, values array.Data) error) error {
	lk := d.f.Base().Lock()
	lk.BeginWrite()
	defer lk.EndWrite()
	size, err := d.checkVectorWrite(axis, name, overwrite)
	if err != nil {
		return err
	}
	if !kind.IsFixed() {
		return &NotFixedKindError{Dataset: d.Name(), Property: name, Kind: kind}
	}
	if !indKind.IsIndex() {
		return &NotFixedKindError{Dataset: d.Name(), Property: name, Kind: indKind}
	}
	if d.f.HasVector(axis, name) {
		if err := d.f.DropVector(axis, name); err != nil {
			return err
		}
	}
	indices, values, commit, err := d.f.BeginSparseVector(axis, name, kind, size, nnz, indKind)
	if err != nil {
		return err
	}
	if err := runFill(commit, func() error { return fill(indices, values) }); err != nil {
		return err
	}
	d.cache.invalidate(VectorKey(axis, name))
	d.logger.Debug("create vector", "dataset", d.Name(), "axis", axis, "vector", name,
		"eltype", kind.String(), "nnz", nnz)
	return nil
}

// CreateDenseMatrix pre-allocates an uninitialized column-major dense
// matrix buffer.
func (d *Dataset) CreateDenseMatrix(rowsAxis, columnsAxis, name string, kind model.Kind, overwrite bool,
	fill func(array.Data) error) error {
	lk := d.f.Base().Lock()
	lk.BeginWrite()
	defer lk.EndWrite()
	rows, cols, err := d.checkMatrixWrite(rowsAxis, columnsAxis, name, overwrite)
	if err != nil {
		return err
	}
	if !kind.IsFixed() {
		return &NotFixedKindError{Dataset: d.Name(), Property: name, Kind: kind}
	}
	if d.f.HasMatrix(rowsAxis, columnsAxis, name) {
		if err := d.f.DropMatrix(rowsAxis, columnsAxis, name); err != nil {
			return err
		}
	}
	buf, commit, err := d.f.BeginDenseMatrix(rowsAxis, columnsAxis, name, kind, rows, cols)
	if err != nil {
		return err
	}
	if err := runFill(commit, func() error { return fill(buf) }); err != nil {
		return err
	}
	d.cache.invalidate(MatrixKey(rowsAxis, columnsAxis, name))
	d.logger.Debug("create matrix", "dataset", d.Name(), "rows_axis", rowsAxis, "columns_axis", columnsAxis,
		"matrix", name, "eltype", kind.String())
	return nil
}

// CreateSparseMatrix pre-allocates uninitialized
// compressed-sparse-column buffers with nnz stored elements.
func (d *Dataset) CreateSparseMatrix(rowsAxis, columnsAxis, name string, kind model.Kind, nnz int, indKind model.Kind,
	overwrite bool, fill func(colptr, rowval array.Ints, values array.Data) error) error {
	lk := d.f.Base().Lock()
	lk.BeginWrite()
	defer lk.EndWrite()
	rows, cols, err := d.checkMatrixWrite(rowsAxis, columnsAxis, name, overwrite)
	if err != nil {
		return err
	}
	if !kind.IsFixed() {
		return &NotFixedKindError{Dataset: d.Name(), Property: name, Kind: kind}
	}
	if !indKind.IsIndex() {
		return &NotFixedKindError{Dataset: d.Name(), Property: name, Kind: indKind}
	}
	if d.f.HasMatrix(rowsAxis, columnsAxis, name) {
		if err := d.f.DropMatrix(rowsAxis, columnsAxis, name); err != nil {
			return err
		}
	}
	colptr, rowval, values, commit, err := d.f.BeginSparseMatrix(rowsAxis, columnsAxis, name, kind, rows, cols, nnz, indKind)
	if err != nil {
		return err
	}
	if err := runFill(commit, func() error { return fill(colptr, rowval, values) }); err != nil {
		return err
	}
	d.cache.invalidate(MatrixKey(rowsAxis, columnsAxis, name))
	d.logger.Debug("create matrix", "dataset", d.Name(), "rows_axis", rowsAxis, "columns_axis", columnsAxis,
		"matrix", name, "eltype", kind.String(), "nnz", nnz)
	return nil
}

// runFill invokes the caller's fill closure and commits or abandons
// the pre-allocated buffers. The abandon path runs on every failure
// exit, including a panic inside fill, so an unfilled property is
// never observable.
func runFill(commit Commit, fill func() error) (err error) {
	committed := false
	defer func() {
		if !committed {
			_ = commit(false)
		}
	}()
	if err := fill(); err != nil {
		return err
	}
	committed = true
	return commit(true)
}

// --- relayout ---

// RelayoutMatrix derives the flipped-layout copy of a stored matrix,
// stores it under the flipped axis order and returns it. If the
// flipped copy already exists it is returned as-is. Square matrices
// are refused: flipping a matrix whose two axes are the same changes
// its meaning, not its layout.
func (d *Dataset) RelayoutMatrix(rowsAxis, columnsAxis, name string) (*array.Matrix, error) {
	lk := d.f.Base().Lock()
	lk.BeginWrite()
	defer lk.EndWrite()
	if err := d.checkAxes(rowsAxis, columnsAxis); err != nil {
		return nil, err
	}
	if rowsAxis == columnsAxis {
		return nil, &SquareRelayoutError{Dataset: d.Name(), Axis: rowsAxis, Matrix: name}
	}
	if !d.f.HasMatrix(rowsAxis, columnsAxis, name) {
		return nil, &NoMatrixError{Dataset: d.Name(), RowsAxis: rowsAxis, ColumnsAxis: columnsAxis, Matrix: name}
	}
	if d.f.HasMatrix(columnsAxis, rowsAxis, name) {
		return d.f.Matrix(columnsAxis, rowsAxis, name)
	}
	src, err := d.f.Matrix(rowsAxis, columnsAxis, name)
	if err != nil {
		return nil, err
	}
	flipped, err := layout.Relayout(src)
	if err != nil {
		return nil, &InvalidArrayError{Dataset: d.Name(), Property: name, cause: err}
	}
	if err := d.f.PutMatrix(columnsAxis, rowsAxis, name, flipped); err != nil {
		return nil, err
	}
	d.cache.put(RelayoutKey(rowsAxis, columnsAxis, name), flipped, d.dataRetention(),
		[]CacheKey{MatrixKey(rowsAxis, columnsAxis, name), AxisKey(rowsAxis), AxisKey(columnsAxis)})
	d.logger.Debug("relayout matrix", "dataset", d.Name(), "rows_axis", rowsAxis,
		"columns_axis", columnsAxis, "matrix", name)
	return flipped, nil
}

// --- cache surface ---

// GetCached returns a cached derived value, if present.
func (d *Dataset) GetCached(key CacheKey) (any, bool) {
	return d.cache.get(key)
}

// Memoize caches a derived value (e.g. a query result) computed at
// most once per key, recording the primitive properties it depends
// on; any write to one of them evicts the entry.
func (d *Dataset) Memoize(key CacheKey, retention Retention, deps []CacheKey, compute func() (any, error)) (any, error) {
	return d.cache.getOrCompute(key, retention, deps, compute)
}

// InvalidateCache evicts the entry cached under key and everything
// that depends on it.
func (d *Dataset) InvalidateCache(key CacheKey) {
	d.cache.invalidate(key)
}

// EmptyCache drops all cached values; with keepMapped the entries
// backed by memory-mapped storage are spared.
func (d *Dataset) EmptyCache(keepMapped bool) {
	d.cache.empty(keepMapped)
}

// dataRetention classifies freshly cached vector/matrix entries by
// whether the backend serves them from memory-mapped files.
func (d *Dataset) dataRetention() Retention {
	if d.f.Base().Mapped() {
		return RetainMapped
	}
	return RetainMemory
}

func (d *Dataset) axisRetention() Retention {
	return RetainMemory
}

// --- helpers ---

func sorted(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	sort.Strings(out)
	return out
}

// fillVector materializes a uniformly filled vector: an empty sparse
// vector for default fills of fixed-width kinds, a dense buffer
// otherwise.
func fillVector(size int, fill model.Value) (*array.Vector, error) {
	if fill.IsDefault() && fill.Kind().IsFixed() {
		indices, err := array.MakeInts(model.Int64, 0)
		if err != nil {
			return nil, err
		}
		values, err := array.Make(fill.Kind(), 0)
		if err != nil {
			return nil, err
		}
		return array.SparseVector(size, indices, values), nil
	}
	values, err := array.Make(fill.Kind(), size)
	if err != nil {
		return nil, err
	}
	if err := array.Fill(values, fill); err != nil {
		return nil, err
	}
	return array.DenseVector(values), nil
}

// fillMatrix materializes a uniformly filled matrix: an empty sparse
// matrix for default fills of fixed-width kinds, a dense column-major
// buffer otherwise.
func fillMatrix(rows, cols int, fill model.Value) (*array.Matrix, error) {
	if fill.IsDefault() && fill.Kind().IsFixed() {
		colptr, err := array.MakeInts(model.Int64, cols+1)
		if err != nil {
			return nil, err
		}
		rowval, err := array.MakeInts(model.Int64, 0)
		if err != nil {
			return nil, err
		}
		values, err := array.Make(fill.Kind(), 0)
		if err != nil {
			return nil, err
		}
		return array.SparseMatrix(rows, cols, colptr, rowval, values), nil
	}
	values, err := array.Make(fill.Kind(), rows*cols)
	if err != nil {
		return nil, err
	}
	if err := array.Fill(values, fill); err != nil {
		return nil, err
	}
	return array.DenseMatrix(rows, cols, array.MajorColumns, values), nil
}
