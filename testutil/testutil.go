// Package testutil provides testing utilities for dafgo.
//
// This package is intended for use in tests and benchmarks only. It
// provides a seeded random source and helpers for generating random
// axes, vectors, matrices and whole datasets.
package testutil

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/tanaylab/dafgo/array"
	"github.com/tanaylab/dafgo/model"
	"github.com/tanaylab/dafgo/storage"
)

// RNG encapsulates a seeded random number generator. It is
// thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Intn returns a random int in [0, n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Entries generates n unique axis entry names with the given prefix.
func Entries(prefix string, n int) []string {
	entries := make([]string, n)
	for i := range entries {
		entries[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return entries
}

// FillRandom fills a buffer with random values of its kind: uniform
// floats in [0, 1), small non-negative integers, fair booleans, short
// strings.
func (r *RNG) FillRandom(values array.Data) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := 0; i < values.Len(); i++ {
		switch {
		case values.Kind().IsFloat():
			values.SetValue(i, model.FloatValue(values.Kind(), r.rand.Float64()))
		case values.Kind() == model.Bool:
			values.SetValue(i, model.BoolValue(r.rand.Intn(2) == 1))
		case values.Kind() == model.String:
			values.SetValue(i, model.StringValue(fmt.Sprintf("s%d", r.rand.Intn(1000))))
		default:
			v, err := model.IntValue(model.Int64, int64(r.rand.Intn(100))).Convert(values.Kind())
			if err != nil {
				panic(err)
			}
			values.SetValue(i, v)
		}
	}
}

// DenseVector generates a random dense vector of the given kind and
// size.
func (r *RNG) DenseVector(kind model.Kind, size int) *array.Vector {
	values, err := array.Make(kind, size)
	if err != nil {
		panic(err)
	}
	r.FillRandom(values)
	return array.DenseVector(values)
}

// SparseVector generates a random sparse vector with nnz stored
// entries at distinct sorted positions.
func (r *RNG) SparseVector(kind model.Kind, size, nnz int) *array.Vector {
	indices := r.positions(size, nnz)
	values, err := array.Make(kind, nnz)
	if err != nil {
		panic(err)
	}
	r.FillRandom(values)
	return array.SparseVector(size, array.IndicesOf(indices), values)
}

// DenseMatrix generates a random column-major dense matrix.
func (r *RNG) DenseMatrix(kind model.Kind, rows, cols int) *array.Matrix {
	values, err := array.Make(kind, rows*cols)
	if err != nil {
		panic(err)
	}
	r.FillRandom(values)
	return array.DenseMatrix(rows, cols, array.MajorColumns, values)
}

// SparseMatrix generates a random compressed-sparse-column matrix
// with roughly nnz stored entries.
func (r *RNG) SparseMatrix(kind model.Kind, rows, cols, nnz int) *array.Matrix {
	perCol := make([][]int64, cols)
	for i := 0; i < nnz; i++ {
		col := r.Intn(cols)
		perCol[col] = append(perCol[col], int64(r.Intn(rows)))
	}
	colptr := make([]int64, cols+1)
	var rowval []int64
	for col, picked := range perCol {
		colptr[col] = int64(len(rowval))
		sort.Slice(picked, func(i, j int) bool { return picked[i] < picked[j] })
		last := int64(-1)
		for _, row := range picked {
			if row == last {
				continue
			}
			rowval = append(rowval, row)
			last = row
		}
	}
	colptr[cols] = int64(len(rowval))
	values, err := array.Make(kind, len(rowval))
	if err != nil {
		panic(err)
	}
	r.FillRandom(values)
	return array.SparseMatrix(rows, cols, array.IndicesOf(colptr), array.IndicesOf(rowval), values)
}

// positions picks nnz distinct sorted positions in [0, size).
func (r *RNG) positions(size, nnz int) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	picked := r.rand.Perm(size)[:nnz]
	sort.Ints(picked)
	positions := make([]int64, nnz)
	for i, p := range picked {
		positions[i] = int64(p)
	}
	return positions
}

// PopulateDataset fills a dataset with a deterministic mix of
// scalars, axes, vectors and matrices for round-trip and copy tests.
func (r *RNG) PopulateDataset(ds storage.Writer) error {
	if err := ds.SetScalar("organism", model.StringValue("human"), false); err != nil {
		return err
	}
	if err := ds.SetScalar("depth", model.FloatValue(model.Float64, 2.5), false); err != nil {
		return err
	}
	if err := ds.AddAxis("cell", Entries("cell-", 7)); err != nil {
		return err
	}
	if err := ds.AddAxis("gene", Entries("gene-", 5)); err != nil {
		return err
	}
	if err := ds.SetVector("cell", "age", r.DenseVector(model.Int32, 7), false); err != nil {
		return err
	}
	if err := ds.SetVector("gene", "marker", r.SparseVector(model.Bool, 5, 2), false); err != nil {
		return err
	}
	if err := ds.SetMatrix("gene", "cell", "UMIs", r.DenseMatrix(model.Float32, 5, 7), false); err != nil {
		return err
	}
	return ds.SetMatrix("cell", "gene", "folds", r.SparseMatrix(model.Float64, 7, 5, 9), false)
}
