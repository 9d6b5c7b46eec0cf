// Package stimulus produces the face images exercises are built from. A
// provider resolves an identity to normalized image pixels, the warp
// functions then distort them per exercise.
package stimulus

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/memora-app/memora/internal/config"
	"github.com/memora-app/memora/internal/identity"
	"github.com/memora-app/memora/internal/logging"
)

// ErrUnavailable means no stimulus image could be produced for an identity.
var ErrUnavailable = errors.New("stimulus unavailable")

// maxStimulusBytes caps a single fetched image.
const maxStimulusBytes = 16 << 20

// Stimulus is a face image normalized to the provider's canvas, together
// with the reference it was loaded from.
type Stimulus struct {
	Image     *image.RGBA
	SourceRef string
}

// Provider resolves an identity to its stimulus image.
type Provider interface {
	StimulusFor(ctx context.Context, id *identity.Identity) (*Stimulus, error)
}

// HTTPProvider fetches stimulus images over HTTP and caches the decoded,
// normalized result per source reference. Identities without a stored
// reference fall back to the configured placeholder URL.
type HTTPProvider struct {
	client      *http.Client
	fallbackURL string
	canvasSize  int

	mu    sync.Mutex
	cache map[string]*image.RGBA
}

// NewHTTPProvider creates a provider from the stimulus configuration.
func NewHTTPProvider(cfg *config.StimulusConfig) *HTTPProvider {
	return &HTTPProvider{
		client: &http.Client{
			Timeout: time.Duration(cfg.FetchTimeoutMS) * time.Millisecond,
		},
		fallbackURL: cfg.FallbackURL,
		canvasSize:  cfg.CanvasSize,
		cache:       make(map[string]*image.RGBA),
	}
}

// StimulusFor returns the normalized stimulus image for an identity. Results
// are cached by source reference, so two identities sharing the fallback URL
// cost one fetch. Fetch failures are not cached and surface as
// ErrUnavailable.
func (p *HTTPProvider) StimulusFor(ctx context.Context, id *identity.Identity) (*Stimulus, error) {
	ref := id.StimulusRef
	if ref == "" {
		ref = p.fallbackURL
	}
	if ref == "" {
		return nil, fmt.Errorf("%w: identity %q has no image and no fallback is configured", ErrUnavailable, id.Name)
	}

	p.mu.Lock()
	cached, ok := p.cache[ref]
	p.mu.Unlock()
	if ok {
		return &Stimulus{Image: cached, SourceRef: ref}, nil
	}

	img, err := p.fetch(ctx, ref)
	if err != nil {
		logging.WithError(err).Warnf("stimulus fetch failed for %q", ref)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	normalized := Normalize(img, p.canvasSize)

	p.mu.Lock()
	p.cache[ref] = normalized
	p.mu.Unlock()

	return &Stimulus{Image: normalized, SourceRef: ref}, nil
}

// CacheSize returns the number of cached stimulus images.
func (p *HTTPProvider) CacheSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cache)
}

func (p *HTTPProvider) fetch(ctx context.Context, url string) (*image.RGBA, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stimulus: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching stimulus", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxStimulusBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read stimulus body: %w", err)
	}

	return Decode(data)
}
