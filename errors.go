package xlgraph

import "errors"

// Error kinds. Every error returned by this package wraps exactly one of
// these, so callers can classify failures with errors.Is.
var (
	// ErrAddress reports a malformed or out-of-bounds cell or range reference.
	ErrAddress = errors.New("xlgraph: address error")
	// ErrInput reports a caller-supplied value that violates a precondition.
	ErrInput = errors.New("xlgraph: input error")
	// ErrInternal reports a broken package invariant: a missing part, a
	// corrupt XML document or an archive failure.
	ErrInternal = errors.New("xlgraph: internal error")
	// ErrProperty reports a document property value with an invalid format.
	ErrProperty = errors.New("xlgraph: property error")
)
