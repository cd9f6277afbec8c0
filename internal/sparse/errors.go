package sparse

import "errors"

// ErrMalformed is returned by Validate when the index arrays of a matrix are
// inconsistent with its shape.
var ErrMalformed = errors.New("sparse: malformed matrix")
