package copier

import "fmt"

// DisjointAxisError indicates a shared axis whose source and
// destination entry sets do not nest: neither side is a subset of the
// other, so there is no meaningful way to align the copied data.
type DisjointAxisError struct {
	Axis        string
	Source      string
	Destination string
}

func (e *DisjointAxisError) Error() string {
	return fmt.Sprintf("disjoint entries of the axis: %s between the source dataset: %s and the destination dataset: %s",
		e.Axis, e.Source, e.Destination)
}

// MissingEmptyError indicates a copy into a superset axis attempted
// without a fill value for the destination entries absent from the
// source.
type MissingEmptyError struct {
	Axis        string
	Property    string
	Source      string
	Destination string
}

func (e *MissingEmptyError) Error() string {
	return fmt.Sprintf("no empty value for the property: %s of the subset axis: %s copied from the dataset: %s into the dataset: %s",
		e.Property, e.Axis, e.Source, e.Destination)
}
