package cli

import "errors"

// Common CLI errors
var (
	ErrStubsInvalid     = errors.New("stub fixtures failed validation")
	ErrNoStubFiles      = errors.New("no stub files given - pass globs or set stubFiles")
	ErrPruneNeedsForce  = errors.New("refusing to prune without --force in a non-interactive session")
	ErrPruneCancelled   = errors.New("prune cancelled")
	ErrCassetteNotFound = errors.New("cassette not found")
)
