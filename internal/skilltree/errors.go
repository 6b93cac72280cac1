package skilltree

import "errors"

var (
	ErrMissingStructuralContext = errors.New("path is not nested under a composition and skilltree")
	ErrMalformedPath            = errors.New("malformed record path")
	ErrIncompleteInput          = errors.New("incomplete input")
	ErrStoreOperationFailed     = errors.New("store operation failed")
	ErrOrderConflict            = errors.New("sibling order changed concurrently")
	ErrDepthLimitExceeded       = errors.New("skill depth limit exceeded")
	ErrNotFound                 = errors.New("record not found")
)
