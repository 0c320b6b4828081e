package storage

import (
	"fmt"

	"github.com/tanaylab/dafgo/model"
)

// The contract defines every error condition once; backends signal
// plain I/O failures and the Dataset layer wraps them into these
// types. All messages name the dataset so multi-dataset pipeline
// failures are locatable.

// NoScalarError indicates a missing scalar where one is required.
type NoScalarError struct {
	Dataset string
	Scalar  string
}

func (e *NoScalarError) Error() string {
	return fmt.Sprintf("missing scalar: %s in the dataset: %s", e.Scalar, e.Dataset)
}

// NoAxisError indicates a missing axis where one is required.
type NoAxisError struct {
	Dataset string
	Axis    string
}

func (e *NoAxisError) Error() string {
	return fmt.Sprintf("missing axis: %s in the dataset: %s", e.Axis, e.Dataset)
}

// NoVectorError indicates a missing vector where one is required.
type NoVectorError struct {
	Dataset string
	Axis    string
	Vector  string
}

func (e *NoVectorError) Error() string {
	return fmt.Sprintf("missing vector: %s of the axis: %s in the dataset: %s", e.Vector, e.Axis, e.Dataset)
}

// NoMatrixError indicates a missing matrix where one is required.
type NoMatrixError struct {
	Dataset     string
	RowsAxis    string
	ColumnsAxis string
	Matrix      string
}

func (e *NoMatrixError) Error() string {
	return fmt.Sprintf("missing matrix: %s of the rows axis: %s and the columns axis: %s in the dataset: %s",
		e.Matrix, e.RowsAxis, e.ColumnsAxis, e.Dataset)
}

// ExistsError indicates an overwrite attempted without the overwrite
// flag. What is "scalar", "axis", "vector" or "matrix".
type ExistsError struct {
	Dataset string
	What    string
	Name    string
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf("existing %s: %s in the dataset: %s", e.What, e.Name, e.Dataset)
}

// InvalidEntryError indicates an axis entry name that cannot be
// stored (entry names are written one per line by disk backends).
type InvalidEntryError struct {
	Dataset string
	Axis    string
	Entry   string
}

func (e *InvalidEntryError) Error() string {
	return fmt.Sprintf("invalid entry: %q in the axis: %s in the dataset: %s", e.Entry, e.Axis, e.Dataset)
}

// DuplicateEntryError indicates a repeated entry name in a new axis.
type DuplicateEntryError struct {
	Dataset string
	Axis    string
	Entry   string
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("duplicated entry: %s in the axis: %s in the dataset: %s", e.Entry, e.Axis, e.Dataset)
}

// LengthError indicates a vector or matrix whose shape does not match
// its axis or axes.
type LengthError struct {
	Dataset  string
	Axis     string
	Property string
	Expected int
	Actual   int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("length: %d of the property: %s is different from the length: %d of the axis: %s in the dataset: %s",
		e.Actual, e.Property, e.Expected, e.Axis, e.Dataset)
}

// ReservedNameError indicates a write to the per-axis reserved vector
// name that holds the axis's own entry names.
type ReservedNameError struct {
	Dataset string
	Axis    string
}

func (e *ReservedNameError) Error() string {
	return fmt.Sprintf("setting the reserved vector: %s of the axis: %s in the dataset: %s",
		ReservedName, e.Axis, e.Dataset)
}

// NotFixedKindError indicates a pre-allocated buffer requested for an
// element kind without a fixed byte width.
type NotFixedKindError struct {
	Dataset  string
	Property string
	Kind     model.Kind
}

func (e *NotFixedKindError) Error() string {
	return fmt.Sprintf("non-bits element type: %s for the pre-allocated property: %s in the dataset: %s",
		e.Kind, e.Property, e.Dataset)
}

// SquareRelayoutError indicates a relayout requested for a matrix
// whose rows and columns axes are the same. Flipping such a matrix
// changes its meaning, not just its storage layout, so it is never
// derived automatically.
type SquareRelayoutError struct {
	Dataset string
	Axis    string
	Matrix  string
}

func (e *SquareRelayoutError) Error() string {
	return fmt.Sprintf("relayout of the square matrix: %s of the axis: %s in the dataset: %s",
		e.Matrix, e.Axis, e.Dataset)
}

// InvalidArrayError wraps an array representation rejected by
// validation (e.g. a matrix with no detectable major axis).
type InvalidArrayError struct {
	Dataset  string
	Property string
	cause    error
}

func (e *InvalidArrayError) Error() string {
	return fmt.Sprintf("invalid array for the property: %s in the dataset: %s: %v", e.Property, e.Dataset, e.cause)
}

func (e *InvalidArrayError) Unwrap() error { return e.cause }
