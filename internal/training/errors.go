package training

import "errors"

var (
	// ErrInsufficientIdentities means the catalog holds too few distinct
	// identities for the requested exercise type.
	ErrInsufficientIdentities = errors.New("not enough identities for this exercise")

	// ErrCatalogUnavailable means the identity catalog could not be read.
	ErrCatalogUnavailable = errors.New("identity catalog unavailable")

	// ErrStimulusUnavailable means a required face image could not be produced.
	ErrStimulusUnavailable = errors.New("stimulus unavailable")

	// ErrGenerationFailed covers exercise construction failures that are not
	// attributable to the catalog or the stimulus source.
	ErrGenerationFailed = errors.New("failed to generate exercise")
)
