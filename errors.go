package img2ascii

import "errors"

// Error kinds returned by the conversion pipeline. Every error returned by
// this package wraps exactly one of these; match them with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrIO           = errors.New("i/o error")
	ErrClustering   = errors.New("clustering error")
)
