// Package dafgo is a storage engine for axis-indexed scientific data:
// named scalars, named axes (ordered sets of uniquely-named entries),
// and vector/matrix properties keyed by an axis (or a pair of axes)
// plus a property name.
//
// Interchangeable backends sit behind one read/write contract: an
// in-memory backend for scratch data and a multi-file disk backend
// with memory-mapped binary payloads. Copying between datasets
// handles axes that are identical, supersets or subsets of each
// other, with renaming, element type conversion and fill values.
//
// # Quick Start
//
// In-memory dataset:
//
//	ds := dafgo.MemoryDaf("scratch")
//	_ = ds.AddAxis("cell", []string{"c1", "c2", "c3"})
//	_ = ds.SetScalar("organism", model.StringValue("human"), false)
//	_ = ds.SetVector("cell", "age", array.DenseVector(array.Of([]int32{1, 2, 3})), false)
//
// Disk-backed dataset:
//
//	ds, err := dafgo.CreateFilesDaf("./data.daf")
//	if err != nil { ... }
//	defer ds.Close()
//
// Matrices are dense (with a declared major axis) or
// compressed-sparse-column. A matrix stored under (rows, columns) can
// additionally be stored under the flipped axis order as an
// independent copy:
//
//	flipped, err := ds.RelayoutMatrix("gene", "cell", "UMIs")
//
// Copy between datasets, aligning overlapping axes:
//
//	err := copier.CopyAll(dst, src.ReadOnly(),
//	    copier.WithEmptyValues(copier.EmptyValues{
//	        {Axis: "cell", Name: "age"}: model.IntValue(model.Int64, 0),
//	    }))
//
// Pack a disk dataset into a single compressed archive, or transfer
// it to S3-compatible object storage, with the archive package.
package dafgo
