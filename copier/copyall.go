package copier

import (
	"github.com/tanaylab/dafgo/model"
	"github.com/tanaylab/dafgo/storage"
)

// EmptyKey identifies a property in the EmptyValues table.
// ColumnsAxis is empty for vector properties.
type EmptyKey struct {
	Axis        string
	ColumnsAxis string
	Name        string
}

// EmptyValues declares per-property fill values for a whole-dataset
// copy. Matrix keys may be written in either axis order.
type EmptyValues map[EmptyKey]model.Value

func (t EmptyValues) vector(axis, name string) (model.Value, bool) {
	v, ok := t[EmptyKey{Axis: axis, Name: name}]
	return v, ok
}

func (t EmptyValues) matrix(rowsAxis, columnsAxis, name string) (model.Value, bool) {
	if v, ok := t[EmptyKey{Axis: rowsAxis, ColumnsAxis: columnsAxis, Name: name}]; ok {
		return v, true
	}
	v, ok := t[EmptyKey{Axis: columnsAxis, ColumnsAxis: rowsAxis, Name: name}]
	return v, ok
}

type allOptions struct {
	empties   EmptyValues
	overwrite bool
	relayout  bool
}

// AllOption configures a whole-dataset copy.
type AllOption func(*allOptions)

// WithEmptyValues supplies the per-property fill table.
func WithEmptyValues(empties EmptyValues) AllOption {
	return func(o *allOptions) { o.empties = empties }
}

// WithOverwriteAll allows replacing existing destination properties.
func WithOverwriteAll() AllOption {
	return func(o *allOptions) { o.overwrite = true }
}

// WithRelayout additionally stores the flipped-layout copy of every
// copied matrix whose flipped orientation the source does not hold.
func WithRelayout() AllOption {
	return func(o *allOptions) { o.relayout = true }
}

// CopyAll copies every scalar, axis, vector and matrix from src into
// dst. Source-only axes are created in the destination; shared axes
// are classified once and the relation drives every property copy.
// Matrices stored in both orientations are copied per orientation, so
// no relayout work is repeated.
func CopyAll(dst storage.Writer, src storage.Reader, optFns ...AllOption) error {
	o := allOptions{}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	for _, name := range src.ScalarNames() {
		opts := []Option{}
		if o.overwrite {
			opts = append(opts, WithOverwrite())
		}
		if err := CopyScalar(dst, src, name, opts...); err != nil {
			return err
		}
	}
	// Source-only axes are created verbatim; shared axes only need to
	// nest in one direction. The per-property copies align to the
	// destination entries, so no relation is rejected here.
	axes := src.AxisNames()
	for _, axis := range axes {
		if _, _, err := classifyAxis(dst, src, axis); err != nil {
			return err
		}
	}
	for _, axis := range axes {
		names, err := src.VectorNames(axis)
		if err != nil {
			return err
		}
		for _, name := range names {
			opts := []Option{}
			if o.overwrite {
				opts = append(opts, WithOverwrite())
			}
			if empty, ok := o.empties.vector(axis, name); ok {
				opts = append(opts, WithEmpty(empty))
			}
			if err := CopyVector(dst, src, axis, name, opts...); err != nil {
				return err
			}
		}
	}
	for _, rowsAxis := range axes {
		for _, columnsAxis := range axes {
			names, err := src.MatrixNames(rowsAxis, columnsAxis)
			if err != nil {
				return err
			}
			for _, name := range names {
				opts := []Option{}
				if o.overwrite {
					opts = append(opts, WithOverwrite())
				}
				if empty, ok := o.empties.matrix(rowsAxis, columnsAxis, name); ok {
					opts = append(opts, WithEmpty(empty))
				}
				if err := CopyMatrix(dst, src, rowsAxis, columnsAxis, name, opts...); err != nil {
					return err
				}
				if o.relayout && rowsAxis != columnsAxis {
					flipped, err := src.HasMatrix(columnsAxis, rowsAxis, name)
					if err != nil {
						return err
					}
					if !flipped {
						if _, err := dst.RelayoutMatrix(rowsAxis, columnsAxis, name); err != nil {
							return err
						}
					}
				}
			}
		}
	}
	return nil
}
