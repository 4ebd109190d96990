package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotLoaded = errors.New("catalog not loaded")
)
