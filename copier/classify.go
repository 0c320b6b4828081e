// Package copier copies scalars, axes, vectors and matrices between
// datasets whose axes may be identical, supersets or subsets of each
// other, with optional renaming, element type conversion and fill
// values for entries absent on one side.
package copier

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Relation classifies a shared axis between a source and a
// destination dataset.
type Relation uint8

const (
	// Same means identical entries in identical order.
	Same Relation = iota
	// SourceSubset means every source entry exists in the destination,
	// which has more (or reordered) entries; copying needs a fill
	// value for the uncovered destination entries.
	SourceSubset
	// DestinationSubset means every destination entry exists in the
	// source; copying is a pure projection.
	DestinationSubset
)

func (r Relation) String() string {
	switch r {
	case Same:
		return "same"
	case SourceSubset:
		return "source_subset"
	case DestinationSubset:
		return "destination_subset"
	}
	return "unknown"
}

// axisRelation is a classified axis with the position mapping needed
// to align copied arrays.
type axisRelation struct {
	relation Relation
	// srcOf maps each destination position to its source position, or
	// -1 for a destination entry absent from the source. nil for Same.
	srcOf []int
	// covered marks the destination positions present in the source.
	// Full for Same and DestinationSubset.
	covered *roaring.Bitmap
}

func (r *axisRelation) source(dstPos int) int {
	if r.relation == Same {
		return dstPos
	}
	return r.srcOf[dstPos]
}

// Classify determines the relation between a source axis's entries
// and a destination axis's entries, or fails when the sets do not
// nest. Equal sets in a different order classify as SourceSubset,
// since the destination has entries at positions the source order
// does not cover directly.
func Classify(source, destination []string) (Relation, error) {
	rel, err := classify(source, destination)
	if err != nil {
		return 0, err
	}
	return rel.relation, nil
}

func classify(source, destination []string) (*axisRelation, error) {
	if sameEntries(source, destination) {
		covered := roaring.New()
		covered.AddRange(0, uint64(len(destination)))
		return &axisRelation{relation: Same, covered: covered}, nil
	}
	srcPos := make(map[string]int, len(source))
	for i, entry := range source {
		srcPos[entry] = i
	}
	srcOf := make([]int, len(destination))
	covered := roaring.New()
	shared := 0
	for i, entry := range destination {
		if p, ok := srcPos[entry]; ok {
			srcOf[i] = p
			covered.Add(uint32(i))
			shared++
		} else {
			srcOf[i] = -1
		}
	}
	switch {
	// The empty set nests in every set, so an empty axis on either
	// side is never disjoint.
	case len(source) == 0:
		return &axisRelation{relation: SourceSubset, srcOf: srcOf, covered: covered}, nil
	case len(destination) == 0:
		return &axisRelation{relation: DestinationSubset, srcOf: srcOf, covered: covered}, nil
	case shared == 0:
		return nil, &DisjointAxisError{}
	case shared == len(source) && shared <= len(destination):
		return &axisRelation{relation: SourceSubset, srcOf: srcOf, covered: covered}, nil
	case shared == len(destination) && shared < len(source):
		return &axisRelation{relation: DestinationSubset, srcOf: srcOf, covered: covered}, nil
	default:
		// Partial overlap nests in neither direction.
		return nil, &DisjointAxisError{}
	}
}

func sameEntries(source, destination []string) bool {
	if len(source) != len(destination) {
		return false
	}
	for i := range source {
		if source[i] != destination[i] {
			return false
		}
	}
	return true
}
