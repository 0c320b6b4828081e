package copier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanaylab/dafgo/array"
	"github.com/tanaylab/dafgo/copier"
	"github.com/tanaylab/dafgo/model"
	"github.com/tanaylab/dafgo/storage"
	"github.com/tanaylab/dafgo/storage/memory"
)

func pairOfDatasets(t *testing.T) (src, dst *storage.Dataset) {
	t.Helper()
	return storage.Wrap(memory.New("source!")), storage.Wrap(memory.New("destination!"))
}

func TestClassify(t *testing.T) {
	for _, tc := range []struct {
		name        string
		source      []string
		destination []string
		want        copier.Relation
		disjoint    bool
	}{
		{"identical", []string{"A", "B"}, []string{"A", "B"}, copier.Same, false},
		{"reordered", []string{"A", "B"}, []string{"B", "A"}, copier.SourceSubset, false},
		{"source subset", []string{"A"}, []string{"A", "B"}, copier.SourceSubset, false},
		{"destination subset", []string{"A", "B"}, []string{"B"}, copier.DestinationSubset, false},
		{"disjoint", []string{"A"}, []string{"B"}, 0, true},
		{"partial overlap", []string{"A", "B"}, []string{"B", "C"}, 0, true},
		{"empty source", []string{}, []string{"A"}, copier.SourceSubset, false},
		{"empty destination", []string{"A"}, []string{}, copier.DestinationSubset, false},
		{"both empty", []string{}, []string{}, copier.Same, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rel, err := copier.Classify(tc.source, tc.destination)
			if tc.disjoint {
				var disjoint *copier.DisjointAxisError
				require.ErrorAs(t, err, &disjoint)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, rel)
		})
	}
}

func TestCopyScalar(t *testing.T) {
	src, dst := pairOfDatasets(t)
	require.NoError(t, src.SetScalar("depth", model.IntValue(model.Int64, 7), false))

	require.NoError(t, copier.CopyScalar(dst, src, "depth"))
	v, err := dst.GetScalar("depth")
	require.NoError(t, err)
	assert.Equal(t, int64(7), v.Int())

	// Existing values need the overwrite option.
	var exists *storage.ExistsError
	require.ErrorAs(t, copier.CopyScalar(dst, src, "depth"), &exists)
	require.NoError(t, copier.CopyScalar(dst, src, "depth", copier.WithOverwrite()))

	require.NoError(t, copier.CopyScalar(dst, src, "depth",
		copier.WithRename("coverage"), copier.WithKind(model.Float32)))
	v, err = dst.GetScalar("coverage")
	require.NoError(t, err)
	assert.Equal(t, model.Float32, v.Kind())
	assert.Equal(t, float64(7), v.Float())
}

func TestCopyAxis(t *testing.T) {
	src, dst := pairOfDatasets(t)
	require.NoError(t, src.AddAxis("cell", []string{"A", "B"}))

	require.NoError(t, copier.CopyAxis(dst, src, "cell"))
	entries, err := dst.GetAxis("cell")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, entries)

	// Copying again onto identical entries is a no-op.
	require.NoError(t, copier.CopyAxis(dst, src, "cell"))

	// Conflicting entries are refused.
	require.NoError(t, dst.AddAxis("gene", []string{"FOXP1"}))
	require.NoError(t, src.AddAxis("gene", []string{"SOX2"}))
	var disjoint *copier.DisjointAxisError
	require.ErrorAs(t, copier.CopyAxis(dst, src, "gene"), &disjoint)
}

func TestCopyVector_SameAxis(t *testing.T) {
	src, dst := pairOfDatasets(t)
	require.NoError(t, src.AddAxis("cell", []string{"A", "B", "C"}))
	require.NoError(t, dst.AddAxis("cell", []string{"A", "B", "C"}))
	require.NoError(t, src.SetVector("cell", "age", array.DenseVector(array.Of([]int32{9, 7, 5})), false))

	require.NoError(t, copier.CopyVector(dst, src, "cell", "age"))
	v, err := dst.GetVector("cell", "age")
	require.NoError(t, err)
	assert.Equal(t, model.Int32, v.Kind())
	assert.Equal(t, int64(7), v.Value(1).Int())

	require.NoError(t, copier.CopyVector(dst, src, "cell", "age",
		copier.WithRename("age_f"), copier.WithKind(model.Float64)))
	v, err = dst.GetVector("cell", "age_f")
	require.NoError(t, err)
	assert.Equal(t, model.Float64, v.Kind())
	assert.Equal(t, float64(5), v.Value(2).Float())
}

func TestCopyVector_CreatesMissingAxis(t *testing.T) {
	src, dst := pairOfDatasets(t)
	require.NoError(t, src.AddAxis("cell", []string{"A", "B"}))
	require.NoError(t, src.SetVector("cell", "age", array.DenseVector(array.Of([]int32{9, 7})), false))

	require.NoError(t, copier.CopyVector(dst, src, "cell", "age"))
	entries, err := dst.GetAxis("cell")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, entries)
	v, err := dst.GetVector("cell", "age")
	require.NoError(t, err)
	assert.Equal(t, int64(9), v.Value(0).Int())
}

func TestCopyVector_SourceSubset(t *testing.T) {
	src, dst := pairOfDatasets(t)
	require.NoError(t, src.AddAxis("cell", []string{"A", "C"}))
	require.NoError(t, dst.AddAxis("cell", []string{"A", "B", "C"}))
	require.NoError(t, src.SetVector("cell", "age", array.DenseVector(array.Of([]int32{9, 5})), false))

	// Uncovered destination entries require an explicit fill.
	var missing *copier.MissingEmptyError
	require.ErrorAs(t, copier.CopyVector(dst, src, "cell", "age"), &missing)
	assert.Equal(t, "age", missing.Property)

	require.NoError(t, copier.CopyVector(dst, src, "cell", "age",
		copier.WithEmpty(model.IntValue(model.Int32, -1))))
	v, err := dst.GetVector("cell", "age")
	require.NoError(t, err)
	assert.Equal(t, int64(9), v.Value(0).Int())
	assert.Equal(t, int64(-1), v.Value(1).Int())
	assert.Equal(t, int64(5), v.Value(2).Int())
}

func TestCopyVector_Reordered(t *testing.T) {
	src, dst := pairOfDatasets(t)
	require.NoError(t, src.AddAxis("cell", []string{"B", "A", "C"}))
	require.NoError(t, dst.AddAxis("cell", []string{"A", "B", "C"}))
	require.NoError(t, src.SetVector("cell", "age", array.DenseVector(array.Of([]int32{7, 9, 5})), false))

	// Every destination entry is covered, so no fill value is needed.
	require.NoError(t, copier.CopyVector(dst, src, "cell", "age"))
	v, err := dst.GetVector("cell", "age")
	require.NoError(t, err)
	assert.Equal(t, int64(9), v.Value(0).Int())
	assert.Equal(t, int64(7), v.Value(1).Int())
	assert.Equal(t, int64(5), v.Value(2).Int())
}

func TestCopyVector_DestinationSubset(t *testing.T) {
	src, dst := pairOfDatasets(t)
	require.NoError(t, src.AddAxis("cell", []string{"A", "B", "C"}))
	require.NoError(t, dst.AddAxis("cell", []string{"C", "A"}))
	require.NoError(t, src.SetVector("cell", "age", array.DenseVector(array.Of([]int32{9, 7, 5})), false))

	require.NoError(t, copier.CopyVector(dst, src, "cell", "age"))
	v, err := dst.GetVector("cell", "age")
	require.NoError(t, err)
	assert.Equal(t, int64(5), v.Value(0).Int())
	assert.Equal(t, int64(9), v.Value(1).Int())
}

func TestCopyVector_SparseProjection(t *testing.T) {
	src, dst := pairOfDatasets(t)
	require.NoError(t, src.AddAxis("cell", []string{"A", "B", "C", "D"}))
	require.NoError(t, dst.AddAxis("cell", []string{"D", "B"}))
	require.NoError(t, src.SetVector("cell", "marker",
		array.SparseVector(4, array.IndicesOf([]int64{1, 2}), array.Of([]float32{0.5, 0.25})), false))

	// Selecting a subset of a sparse vector stays sparse.
	require.NoError(t, copier.CopyVector(dst, src, "cell", "marker"))
	v, err := dst.GetVector("cell", "marker")
	require.NoError(t, err)
	assert.Equal(t, array.FormSparse, v.Form())
	assert.Equal(t, 1, v.NNZ())
	assert.Equal(t, float64(0), v.Value(0).Float())
	assert.Equal(t, 0.5, v.Value(1).Float())

	// A non-default fill forces densification.
	require.NoError(t, copier.CopyVector(dst, src, "cell", "marker",
		copier.WithRename("dense_marker"), copier.WithEmpty(model.FloatValue(model.Float32, -1))))
	v, err = dst.GetVector("cell", "dense_marker")
	require.NoError(t, err)
	assert.Equal(t, array.FormDense, v.Form())
	assert.Equal(t, float64(0), v.Value(0).Float())
}

func TestCopyMatrix(t *testing.T) {
	src, dst := pairOfDatasets(t)
	require.NoError(t, src.AddAxis("gene", []string{"FOXP1", "SOX2"}))
	require.NoError(t, src.AddAxis("cell", []string{"A", "B", "C"}))
	require.NoError(t, dst.AddAxis("gene", []string{"FOXP1", "SOX2"}))
	require.NoError(t, dst.AddAxis("cell", []string{"C", "A"}))

	umis := array.DenseMatrix(2, 3, array.MajorColumns, array.Of([]int64{1, 4, 2, 5, 3, 6}))
	require.NoError(t, src.SetMatrix("gene", "cell", "UMIs", umis, false))

	// Rows are identical, columns select C then A.
	require.NoError(t, copier.CopyMatrix(dst, src, "gene", "cell", "UMIs"))
	m, err := dst.GetMatrix("gene", "cell", "UMIs")
	require.NoError(t, err)
	require.Equal(t, 2, m.Rows)
	require.Equal(t, 2, m.Cols)
	assert.Equal(t, int64(3), m.At(0, 0).Int())
	assert.Equal(t, int64(6), m.At(1, 0).Int())
	assert.Equal(t, int64(1), m.At(0, 1).Int())
	assert.Equal(t, int64(4), m.At(1, 1).Int())
}

func TestCopyMatrix_SparseColumns(t *testing.T) {
	src, dst := pairOfDatasets(t)
	require.NoError(t, src.AddAxis("gene", []string{"FOXP1", "SOX2"}))
	require.NoError(t, src.AddAxis("cell", []string{"A", "B", "C"}))
	require.NoError(t, dst.AddAxis("gene", []string{"FOXP1", "SOX2"}))
	require.NoError(t, dst.AddAxis("cell", []string{"C", "A"}))

	// Entries (1,0)=2.5 and (0,2)=7.5.
	folds := array.SparseMatrix(2, 3,
		array.IndicesOf([]int64{0, 1, 1, 2}),
		array.IndicesOf([]int64{1, 0}),
		array.Of([]float64{2.5, 7.5}))
	require.NoError(t, src.SetMatrix("gene", "cell", "folds", folds, false))

	require.NoError(t, copier.CopyMatrix(dst, src, "gene", "cell", "folds"))
	m, err := dst.GetMatrix("gene", "cell", "folds")
	require.NoError(t, err)
	assert.Equal(t, array.FormSparse, m.Form())
	assert.Equal(t, 2, m.NNZ())
	assert.Equal(t, 7.5, m.At(0, 0).Float())
	assert.Equal(t, 2.5, m.At(1, 1).Float())
	assert.Equal(t, float64(0), m.At(0, 1).Float())
}

func TestCopyMatrix_MissingEmpty(t *testing.T) {
	src, dst := pairOfDatasets(t)
	require.NoError(t, src.AddAxis("gene", []string{"FOXP1"}))
	require.NoError(t, src.AddAxis("cell", []string{"A"}))
	require.NoError(t, dst.AddAxis("gene", []string{"FOXP1"}))
	require.NoError(t, dst.AddAxis("cell", []string{"A", "B"}))
	require.NoError(t, src.SetMatrixFill("gene", "cell", "UMIs", model.IntValue(model.Int32, 1), false))

	var missing *copier.MissingEmptyError
	require.ErrorAs(t, copier.CopyMatrix(dst, src, "gene", "cell", "UMIs"), &missing)

	require.NoError(t, copier.CopyMatrix(dst, src, "gene", "cell", "UMIs",
		copier.WithEmpty(model.IntValue(model.Int32, 0))))
	m, err := dst.GetMatrix("gene", "cell", "UMIs")
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.At(0, 0).Int())
	assert.Equal(t, int64(0), m.At(0, 1).Int())
}

func TestCopyAll(t *testing.T) {
	src, dst := pairOfDatasets(t)
	require.NoError(t, src.SetScalar("organism", model.StringValue("human"), false))
	require.NoError(t, src.AddAxis("gene", []string{"FOXP1", "SOX2"}))
	require.NoError(t, src.AddAxis("cell", []string{"A", "B", "C"}))
	require.NoError(t, src.SetVector("cell", "age", array.DenseVector(array.Of([]int32{9, 7, 5})), false))
	require.NoError(t, src.SetMatrix("gene", "cell", "UMIs",
		array.DenseMatrix(2, 3, array.MajorColumns, array.Of([]int64{1, 4, 2, 5, 3, 6})), false))

	require.NoError(t, copier.CopyAll(dst, src))

	v, err := dst.GetScalar("organism")
	require.NoError(t, err)
	assert.Equal(t, "human", v.Str())
	assert.Equal(t, []string{"cell", "gene"}, dst.AxisNames())

	vec, err := dst.GetVector("cell", "age")
	require.NoError(t, err)
	assert.Equal(t, int64(9), vec.Value(0).Int())

	m, err := dst.GetMatrix("gene", "cell", "UMIs")
	require.NoError(t, err)
	assert.Equal(t, int64(5), m.At(1, 1).Int())

	// Copying into a populated destination needs the overwrite option.
	require.Error(t, copier.CopyAll(dst, src))
	require.NoError(t, copier.CopyAll(dst, src, copier.WithOverwriteAll()))
}

func TestCopyAll_SubsetAxes(t *testing.T) {
	src, dst := pairOfDatasets(t)
	require.NoError(t, src.AddAxis("cell", []string{"A"}))
	require.NoError(t, dst.AddAxis("cell", []string{"A", "B"}))
	require.NoError(t, src.AddAxis("gene", []string{"FOXP1", "SOX2"}))
	require.NoError(t, dst.AddAxis("gene", []string{"SOX2"}))
	require.NoError(t, src.SetVector("cell", "age", array.DenseVector(array.Of([]int32{9})), false))
	require.NoError(t, src.SetVector("gene", "score", array.DenseVector(array.Of([]float64{0.5, 0.25})), false))

	// Nesting axes do not block the bulk copy; alignment happens per
	// property.
	empties := copier.EmptyValues{}
	empties[copier.EmptyKey{Axis: "cell", Name: "age"}] = model.IntValue(model.Int32, -1)
	require.NoError(t, copier.CopyAll(dst, src, copier.WithEmptyValues(empties)))

	ages, err := dst.GetVector("cell", "age")
	require.NoError(t, err)
	assert.Equal(t, int64(9), ages.Value(0).Int())
	assert.Equal(t, int64(-1), ages.Value(1).Int())

	scores, err := dst.GetVector("gene", "score")
	require.NoError(t, err)
	require.Equal(t, 1, scores.Size)
	assert.Equal(t, 0.25, scores.Value(0).Float())
}

func TestCopyAll_DisjointAxis(t *testing.T) {
	src, dst := pairOfDatasets(t)
	require.NoError(t, src.AddAxis("cell", []string{"A"}))
	require.NoError(t, dst.AddAxis("cell", []string{"B"}))

	var disjoint *copier.DisjointAxisError
	require.ErrorAs(t, copier.CopyAll(dst, src), &disjoint)
	assert.Equal(t, "cell", disjoint.Axis)
}

func TestCopyVector_EmptySourceAxis(t *testing.T) {
	src, dst := pairOfDatasets(t)
	require.NoError(t, src.AddAxis("cell", []string{}))
	require.NoError(t, dst.AddAxis("cell", []string{"A", "B"}))
	require.NoError(t, src.SetVector("cell", "age", array.DenseVector(array.Of([]int32{})), false))

	// Nothing is covered, so the fill value decides every entry.
	var missing *copier.MissingEmptyError
	require.ErrorAs(t, copier.CopyVector(dst, src, "cell", "age"), &missing)

	require.NoError(t, copier.CopyVector(dst, src, "cell", "age",
		copier.WithEmpty(model.IntValue(model.Int32, -1))))
	v, err := dst.GetVector("cell", "age")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), v.Value(0).Int())
	assert.Equal(t, int64(-1), v.Value(1).Int())
}

func TestCopyAll_EmptyValuesAndRelayout(t *testing.T) {
	src, dst := pairOfDatasets(t)
	require.NoError(t, src.AddAxis("gene", []string{"FOXP1"}))
	require.NoError(t, src.AddAxis("cell", []string{"A"}))
	require.NoError(t, dst.AddAxis("gene", []string{"FOXP1"}))
	require.NoError(t, dst.AddAxis("cell", []string{"A", "B"}))
	require.NoError(t, src.SetVector("cell", "age", array.DenseVector(array.Of([]int32{9})), false))
	require.NoError(t, src.SetMatrix("gene", "cell", "UMIs",
		array.DenseMatrix(1, 1, array.MajorColumns, array.Of([]int64{7})), false))

	empties := copier.EmptyValues{}
	empties[copier.EmptyKey{Axis: "cell", Name: "age"}] = model.IntValue(model.Int32, -1)
	empties[copier.EmptyKey{Axis: "gene", ColumnsAxis: "cell", Name: "UMIs"}] = model.IntValue(model.Int64, 0)
	require.NoError(t, copier.CopyAll(dst, src,
		copier.WithEmptyValues(empties), copier.WithRelayout()))

	vec, err := dst.GetVector("cell", "age")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), vec.Value(1).Int())

	// The flipped orientation was derived in the destination.
	has, err := dst.HasMatrix("cell", "gene", "UMIs")
	require.NoError(t, err)
	assert.True(t, has)
	flipped, err := dst.GetMatrix("cell", "gene", "UMIs")
	require.NoError(t, err)
	assert.Equal(t, int64(7), flipped.At(0, 0).Int())
}
