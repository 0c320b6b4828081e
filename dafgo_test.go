package dafgo_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dafgo "github.com/tanaylab/dafgo"
	"github.com/tanaylab/dafgo/copier"
	"github.com/tanaylab/dafgo/testutil"
)

func TestMemoryDaf(t *testing.T) {
	ds := dafgo.MemoryDaf("test!", dafgo.WithLogger(dafgo.NoopLogger()))
	assert.Equal(t, "test!", ds.Name())

	rng := testutil.NewRNG(1)
	require.NoError(t, rng.PopulateDataset(ds))

	v, err := ds.GetScalar("organism")
	require.NoError(t, err)
	assert.Equal(t, "human", v.Str())

	n, err := ds.AxisLength("cell")
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	umis, err := ds.GetMatrix("gene", "cell", "UMIs")
	require.NoError(t, err)
	assert.Equal(t, 5, umis.Rows)
	assert.Equal(t, 7, umis.Cols)
}

func TestFilesDaf(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "test.daf")

	ds, err := dafgo.CreateFilesDaf(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, ds.Dir())

	rng := testutil.NewRNG(1)
	require.NoError(t, rng.PopulateDataset(ds))
	require.NoError(t, ds.Close())

	reopened, err := dafgo.OpenFilesDaf(dir)
	require.NoError(t, err)
	defer reopened.Close()

	v, err := reopened.GetScalar("depth")
	require.NoError(t, err)
	assert.Equal(t, 2.5, v.Float())

	ages, err := reopened.GetVector("cell", "age")
	require.NoError(t, err)
	assert.Equal(t, 7, ages.Size)

	// The same seed regenerates the same data.
	expected := dafgo.MemoryDaf("expected!")
	require.NoError(t, testutil.NewRNG(1).PopulateDataset(expected))
	want, err := expected.GetVector("cell", "age")
	require.NoError(t, err)
	for i := 0; i < want.Size; i++ {
		assert.Equal(t, want.Value(i).Int(), ages.Value(i).Int())
	}
}

func TestCopyBetweenBackends(t *testing.T) {
	src := dafgo.MemoryDaf("source!")
	require.NoError(t, testutil.NewRNG(1).PopulateDataset(src))

	dst, err := dafgo.CreateFilesDaf(filepath.Join(t.TempDir(), "copy.daf"))
	require.NoError(t, err)
	defer dst.Close()

	require.NoError(t, copier.CopyAll(dst, src))

	v, err := dst.GetScalar("organism")
	require.NoError(t, err)
	assert.Equal(t, "human", v.Str())

	srcUMIs, err := src.GetMatrix("gene", "cell", "UMIs")
	require.NoError(t, err)
	dstUMIs, err := dst.GetMatrix("gene", "cell", "UMIs")
	require.NoError(t, err)
	for row := 0; row < srcUMIs.Rows; row++ {
		for col := 0; col < srcUMIs.Cols; col++ {
			assert.Equal(t, srcUMIs.At(row, col).Float(), dstUMIs.At(row, col).Float())
		}
	}
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, dafgo.Version)
}
