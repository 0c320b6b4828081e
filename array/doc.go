// Package array provides the concrete vector and matrix
// representations stored by dafgo backends: dense buffers over any
// supported element kind, sparse vectors, and compressed-sparse-column
// matrices.
//
// Fixed-width buffers can be viewed as raw little-endian bytes (and
// vice versa) so backends can serve them zero-copy from memory-mapped
// files.
package array
