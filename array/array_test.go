package array

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanaylab/dafgo/model"
)

func TestData_MakeAndFill(t *testing.T) {
	values, err := Make(model.Int32, 4)
	require.NoError(t, err)
	require.Equal(t, 4, values.Len())
	require.Equal(t, model.Int32, values.Kind())

	require.NoError(t, Fill(values, model.IntValue(model.Int64, 7)))
	for i := 0; i < values.Len(); i++ {
		assert.Equal(t, int64(7), values.Value(i).Int())
	}

	strs, err := Make(model.String, 2)
	require.NoError(t, err)
	require.NoError(t, Fill(strs, model.StringValue("x")))
	assert.Equal(t, "x", strs.Value(1).Str())
}

func TestData_Convert(t *testing.T) {
	src := Of([]int32{1, 2, 3})
	dst, err := Make(model.Float64, 3)
	require.NoError(t, err)
	require.NoError(t, Convert(dst, src))
	assert.Equal(t, 2.0, dst.Value(1).Float())

	short, err := Make(model.Float64, 2)
	require.NoError(t, err)
	require.Error(t, Convert(short, src))
}

func TestData_BytesRoundTrip(t *testing.T) {
	src := Of([]float32{1.5, -2.5, 0})
	raw := AsBytes(src)
	require.Len(t, raw, 3*4)

	back, err := FromBytes(model.Float32, raw)
	require.NoError(t, err)
	require.Equal(t, 3, back.Len())
	assert.Equal(t, float64(-2.5), back.Value(1).Float())

	// The cast aliases the same memory.
	src.SetValue(0, model.FloatValue(model.Float32, 9))
	assert.Equal(t, 9.0, back.Value(0).Float())

	_, err = FromBytes(model.Float32, raw[:5])
	require.Error(t, err)
}

func TestInts_RoundTrip(t *testing.T) {
	ix := IndicesOf([]int32{0, 5, 9})
	assert.Equal(t, model.Int32, ix.Kind())
	assert.Equal(t, 5, ix.Index(1))

	back, err := IntsFromBytes(model.Int32, IntsAsBytes(ix))
	require.NoError(t, err)
	require.Equal(t, 3, back.Len())
	assert.Equal(t, 9, back.Index(2))
}

func TestVector_Dense(t *testing.T) {
	v := DenseVector(Of([]int64{10, 20, 30}))
	require.NoError(t, v.Validate())
	assert.Equal(t, FormDense, v.Form())
	assert.Equal(t, 3, v.Size)
	assert.Equal(t, int64(20), v.Value(1).Int())
}

func TestVector_Sparse(t *testing.T) {
	v := SparseVector(6, IndicesOf([]int64{1, 4}), Of([]float64{0.5, 0.25}))
	require.NoError(t, v.Validate())
	assert.Equal(t, FormSparse, v.Form())
	assert.Equal(t, 2, v.NNZ())

	assert.Equal(t, 0.5, v.Value(1).Float())
	assert.Equal(t, 0.0, v.Value(2).Float())
	assert.Equal(t, 0.25, v.Value(4).Float())

	dense, err := v.Dense()
	require.NoError(t, err)
	assert.Equal(t, 0.25, dense.Value(4).Float())
	assert.Equal(t, 0.0, dense.Value(0).Float())
}

func TestVector_ValidateRejectsUnsortedIndices(t *testing.T) {
	v := SparseVector(6, IndicesOf([]int64{4, 1}), Of([]float64{1, 2}))
	require.Error(t, v.Validate())

	v = SparseVector(3, IndicesOf([]int64{1, 5}), Of([]float64{1, 2}))
	require.Error(t, v.Validate())
}

func TestMatrix_DenseAt(t *testing.T) {
	// gene x cell, column-major: [[1,2,3],[4,5,6]].
	m := DenseMatrix(2, 3, MajorColumns, Of([]int64{1, 4, 2, 5, 3, 6}))
	require.NoError(t, m.Validate())
	assert.Equal(t, int64(1), m.At(0, 0).Int())
	assert.Equal(t, int64(3), m.At(0, 2).Int())
	assert.Equal(t, int64(5), m.At(1, 1).Int())

	rowMajor := DenseMatrix(2, 3, MajorRows, Of([]int64{1, 2, 3, 4, 5, 6}))
	require.NoError(t, rowMajor.Validate())
	for row := 0; row < 2; row++ {
		for col := 0; col < 3; col++ {
			assert.Equal(t, m.At(row, col), rowMajor.At(row, col))
		}
	}
}

func TestMatrix_ValidateRejectsNoMajorAxis(t *testing.T) {
	m := DenseMatrix(2, 2, MajorNone, Of([]int64{1, 2, 3, 4}))
	require.Error(t, m.Validate())
}

func TestMatrix_SparseAt(t *testing.T) {
	// 3x3 with stored entries (0,0)=1, (2,0)=2, (1,2)=3.
	m := SparseMatrix(3, 3,
		IndicesOf([]int64{0, 2, 2, 3}),
		IndicesOf([]int64{0, 2, 1}),
		Of([]int64{1, 2, 3}))
	require.NoError(t, m.Validate())
	assert.Equal(t, 3, m.NNZ())
	assert.Equal(t, MajorColumns, m.MajorAxis())

	assert.Equal(t, int64(1), m.At(0, 0).Int())
	assert.Equal(t, int64(2), m.At(2, 0).Int())
	assert.Equal(t, int64(3), m.At(1, 2).Int())
	assert.Equal(t, int64(0), m.At(1, 1).Int())
}

func TestMatrix_ValidateRejectsBadBoundaries(t *testing.T) {
	m := SparseMatrix(3, 2,
		IndicesOf([]int64{0, 1}), // Cols+1 boundaries missing
		IndicesOf([]int64{0}),
		Of([]int64{1}))
	require.Error(t, m.Validate())

	m = SparseMatrix(3, 2,
		IndicesOf([]int64{0, 2, 2}),
		IndicesOf([]int64{1, 1}), // repeated row within a column
		Of([]int64{1, 2}))
	require.Error(t, m.Validate())
}

func TestMatrix_TransposeView(t *testing.T) {
	m := DenseMatrix(2, 3, MajorColumns, Of([]int64{1, 4, 2, 5, 3, 6}))
	tr, err := m.Transpose()
	require.NoError(t, err)
	assert.Equal(t, 3, tr.Rows)
	assert.Equal(t, 2, tr.Cols)
	assert.Equal(t, MajorRows, tr.Major)
	for row := 0; row < 2; row++ {
		for col := 0; col < 3; col++ {
			assert.Equal(t, m.At(row, col), tr.At(col, row))
		}
	}

	sparse := SparseMatrix(2, 2, IndicesOf([]int64{0, 0, 0}), IndicesOf([]int64{}), Of([]int64{}))
	_, err = sparse.Transpose()
	require.Error(t, err)
}

func TestMatrix_Column(t *testing.T) {
	m := DenseMatrix(2, 3, MajorColumns, Of([]int64{1, 4, 2, 5, 3, 6}))
	col, err := m.Column(1)
	require.NoError(t, err)
	require.Equal(t, 2, col.Len())
	assert.Equal(t, int64(2), col.Value(0).Int())
	assert.Equal(t, int64(5), col.Value(1).Int())

	_, err = DenseMatrix(2, 3, MajorRows, Of(make([]int64, 6))).Column(0)
	require.Error(t, err)
}
