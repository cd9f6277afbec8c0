package binsparse

import "errors"

var (
	// ErrUnsupportedFormat means a group's format tag is not the kind the
	// caller asked for (CSR for matrices, DVEC for vectors).
	ErrUnsupportedFormat = errors.New("binsparse: unsupported format")

	// ErrUnsupportedType means a declared element or index type does not
	// match the instantiated kernel types, or no kernel exists for it.
	ErrUnsupportedType = errors.New("binsparse: unsupported data type")

	// ErrShape means array lengths disagree with the declared shape.
	ErrShape = errors.New("binsparse: shape mismatch")
)
