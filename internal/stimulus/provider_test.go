package stimulus

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/memora-app/memora/internal/config"
	"github.com/memora-app/memora/internal/identity"
)

func testPNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestStimulusFor(t *testing.T) {
	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		switch r.URL.Path {
		case "/elena.png":
			w.Write(testPNG(t, 100, 60, color.RGBA{R: 200, A: 255}))
		case "/fallback.png":
			w.Write(testPNG(t, 40, 40, color.RGBA{B: 200, A: 255}))
		case "/broken.png":
			w.Write([]byte("not an image"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	provider := NewHTTPProvider(&config.StimulusConfig{
		FallbackURL:    srv.URL + "/fallback.png",
		CanvasSize:     64,
		FetchTimeoutMS: 5000,
	})
	ctx := context.Background()

	t.Run("StoredRef", func(t *testing.T) {
		stim, err := provider.StimulusFor(ctx, &identity.Identity{Name: "Elena", StimulusRef: srv.URL + "/elena.png"})
		if err != nil {
			t.Fatalf("Failed to get stimulus: %v", err)
		}
		if got := stim.Image.Bounds(); got.Dx() != 64 || got.Dy() != 64 {
			t.Errorf("Expected 64x64 canvas, got %dx%d", got.Dx(), got.Dy())
		}
	})

	t.Run("CachedByRef", func(t *testing.T) {
		before := fetches.Load()
		_, err := provider.StimulusFor(ctx, &identity.Identity{Name: "Elena", StimulusRef: srv.URL + "/elena.png"})
		if err != nil {
			t.Fatalf("Failed to get stimulus: %v", err)
		}
		if fetches.Load() != before {
			t.Error("Expected cached result, got a second fetch")
		}
	})

	t.Run("Fallback", func(t *testing.T) {
		stim, err := provider.StimulusFor(ctx, &identity.Identity{Name: "Marcus"})
		if err != nil {
			t.Fatalf("Failed to get fallback stimulus: %v", err)
		}
		if stim.SourceRef != srv.URL+"/fallback.png" {
			t.Errorf("Expected fallback source ref, got '%s'", stim.SourceRef)
		}
	})

	t.Run("FetchFailureNotCached", func(t *testing.T) {
		id := &identity.Identity{Name: "Ghost", StimulusRef: srv.URL + "/missing.png"}
		before := fetches.Load()

		_, err := provider.StimulusFor(ctx, id)
		if !errors.Is(err, ErrUnavailable) {
			t.Fatalf("Expected ErrUnavailable, got %v", err)
		}

		_, err = provider.StimulusFor(ctx, id)
		if !errors.Is(err, ErrUnavailable) {
			t.Fatalf("Expected ErrUnavailable, got %v", err)
		}
		if fetches.Load() != before+2 {
			t.Error("Expected failed fetches to be retried, not cached")
		}
	})

	t.Run("UndecodableBody", func(t *testing.T) {
		_, err := provider.StimulusFor(ctx, &identity.Identity{Name: "Bad", StimulusRef: srv.URL + "/broken.png"})
		if !errors.Is(err, ErrUnavailable) {
			t.Errorf("Expected ErrUnavailable, got %v", err)
		}
	})
}

func TestStimulusForNoRefNoFallback(t *testing.T) {
	provider := NewHTTPProvider(&config.StimulusConfig{CanvasSize: 64, FetchTimeoutMS: 5000})

	_, err := provider.StimulusFor(context.Background(), &identity.Identity{Name: "Elena"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		size   int
	}{
		{"landscape", 100, 60, 64},
		{"portrait", 60, 100, 64},
		{"square", 50, 50, 32},
		{"upscale", 10, 10, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := image.NewRGBA(image.Rect(0, 0, tt.w, tt.h))
			got := Normalize(src, tt.size)
			if b := got.Bounds(); b.Dx() != tt.size || b.Dy() != tt.size {
				t.Errorf("Expected %dx%d canvas, got %dx%d", tt.size, tt.size, b.Dx(), b.Dy())
			}
		})
	}
}

func TestDecodeInvalid(t *testing.T) {
	if _, err := Decode([]byte("garbage")); err == nil {
		t.Error("Expected error for undecodable data")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	data, err := Encode(img)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 8 || b.Dy() != 8 {
		t.Errorf("Expected 8x8, got %dx%d", b.Dx(), b.Dy())
	}
}
