// Package catalog assembles the set of identities a training session can
// draw from. Exercises are built from the user's registered identities, and
// from a built-in practice set when the user has not registered any yet.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/memora-app/memora/internal/config"
	"github.com/memora-app/memora/internal/database"
	"github.com/memora-app/memora/internal/identity"
)

// ErrUnavailable means the identity store could not be reached. An empty
// catalog is not an error.
var ErrUnavailable = errors.New("identity catalog unavailable")

// Catalog lists the identities available to one user for training.
type Catalog interface {
	Entries(ctx context.Context, userID string) ([]identity.Identity, error)
}

// StoreCatalog reads the catalog from the identity store.
type StoreCatalog struct {
	reader database.IdentityReader
}

// NewStoreCatalog creates a catalog backed by the identity store.
func NewStoreCatalog(reader database.IdentityReader) *StoreCatalog {
	return &StoreCatalog{reader: reader}
}

func (c *StoreCatalog) Entries(ctx context.Context, userID string) ([]identity.Identity, error) {
	entries, err := c.reader.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return entries, nil
}

// FallbackCatalog wraps another catalog and substitutes a built-in practice
// set when the user has no identities of their own. Store failures still
// surface as errors, only emptiness triggers the fallback.
type FallbackCatalog struct {
	inner   Catalog
	samples []identity.Identity
}

// NewFallbackCatalog creates a catalog that falls back to the given built-in
// practice identities.
func NewFallbackCatalog(inner Catalog, samples []identity.Identity) *FallbackCatalog {
	return &FallbackCatalog{inner: inner, samples: samples}
}

func (c *FallbackCatalog) Entries(ctx context.Context, userID string) ([]identity.Identity, error) {
	entries, err := c.inner.Entries(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		return entries, nil
	}
	out := make([]identity.Identity, len(c.samples))
	copy(out, c.samples)
	return out, nil
}

// SampleIdentities converts the embedded sample catalog into identities.
// IDs are stable slugs so repeated calls agree with each other.
func SampleIdentities(entries []config.SampleEntry) []identity.Identity {
	out := make([]identity.Identity, 0, len(entries))
	for _, e := range entries {
		out = append(out, identity.Identity{
			ID:          "sample-" + strings.ReplaceAll(identity.NormalizeName(e.Name), " ", "-"),
			Name:        e.Name,
			Role:        e.Role,
			Traits:      append([]string(nil), e.Traits...),
			StimulusRef: e.StimulusURL,
		})
	}
	return out
}
