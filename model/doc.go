// Package model defines the element type system shared by every dafgo
// component: the closed Kind enumeration and the tagged scalar Value.
package model
