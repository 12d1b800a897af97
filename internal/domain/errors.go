package domain

import "errors"

var (
	// ErrJobNotFound means the referenced job does not exist in the store.
	ErrJobNotFound = errors.New("job not found")
	// ErrNotConfigured marks a provider skipped for missing credentials. It
	// is not a failure and is not logged as one.
	ErrNotConfigured = errors.New("provider not configured")
	// ErrProviderFailure wraps remote generation failures inside a chain.
	ErrProviderFailure = errors.New("provider failure")
	// ErrPersistence marks a failed final write after generation succeeded.
	// Assets uploaded during the pass may be orphaned at that point.
	ErrPersistence = errors.New("persistence failure")
)
