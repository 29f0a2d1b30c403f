package params

import "errors"

var (
	ErrCountChanged = errors.New("item count changed; table must be rebuilt")
	ErrNotBuilt     = errors.New("table has not been built")
	ErrOutOfRange   = errors.New("item index out of range")
)
