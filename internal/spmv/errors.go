package spmv

import "errors"

// ErrUnknownMethod is returned by Lookup for a name no strategy registers.
var ErrUnknownMethod = errors.New("spmv: unknown method")
