package prompt

import "errors"

// Sentinel errors for prompt store operations. Adapters translate their
// storage-level "no rows" conditions into these; transport maps them to HTTP
// statuses with errors.Is. Anything else is a storage failure and propagates
// wrapped.
var (
	ErrNotFound        = errors.New("prompt not found")
	ErrVersionNotFound = errors.New("prompt version not found")
	ErrInvalidVersion  = errors.New("invalid version number")
	ErrNoOpRevert      = errors.New("revert target is already the current version")
)
