package stimulus

import (
	"image"
	"image/color"
	"testing"

	"github.com/memora-app/memora/internal/identity"
)

// testLandmarks builds a full-length landmark set with feature groups placed
// at plausible face positions.
func testLandmarks() identity.LandmarkSet {
	points := make([]identity.Point, 478)
	for i := range points {
		points[i] = identity.Point{X: 0.5, Y: 0.5}
	}
	lm := identity.LandmarkSet{Points: points, Width: 256, Height: 256}

	place := func(f identity.Feature, cx, cy, spread float64) {
		indices := lm.FeatureIndices(f)
		for n, idx := range indices {
			offset := spread * (float64(n%5) - 2) / 2
			points[idx] = identity.Point{X: cx + offset, Y: cy + offset/2}
		}
	}
	place(identity.FeatureLeftEye, 0.35, 0.4, 0.04)
	place(identity.FeatureRightEye, 0.65, 0.4, 0.04)
	place(identity.FeatureNose, 0.5, 0.55, 0.05)
	place(identity.FeatureMouth, 0.5, 0.72, 0.06)
	place(identity.FeatureJaw, 0.5, 0.85, 0.15)
	place(identity.FeatureFaceOval, 0.5, 0.5, 0.3)

	return lm
}

func gradientImage(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 255 / size), G: uint8(y * 255 / size), B: 100, A: 255})
		}
	}
	return img
}

func TestApplyFeatureEmphasis(t *testing.T) {
	img := gradientImage(64)
	lm := testLandmarks()

	t.Run("ZeroMagnitudeUntouched", func(t *testing.T) {
		got := ApplyFeatureEmphasis(img, lm, identity.EmphasisFeatures, 0)
		if got != img {
			t.Error("Expected the input image back for zero magnitude")
		}
	})

	t.Run("EmptyLandmarksUntouched", func(t *testing.T) {
		got := ApplyFeatureEmphasis(img, identity.LandmarkSet{}, identity.EmphasisFeatures, 0.5)
		if got != img {
			t.Error("Expected the input image back without landmarks")
		}
	})

	t.Run("DistortsFeatureRegion", func(t *testing.T) {
		got := ApplyFeatureEmphasis(img, lm, []identity.Feature{identity.FeatureEyes}, 0.6)
		if got == img {
			t.Fatal("Expected a new image")
		}
		if got.Bounds() != img.Bounds() {
			t.Errorf("Expected bounds preserved, got %v", got.Bounds())
		}
		changed := false
		for y := 0; y < 64 && !changed; y++ {
			for x := 0; x < 64; x++ {
				if got.RGBAAt(x, y) != img.RGBAAt(x, y) {
					changed = true
					break
				}
			}
		}
		if !changed {
			t.Error("Expected at least one pixel to change")
		}
	})

	t.Run("ShortLandmarkSetDegrades", func(t *testing.T) {
		short := identity.LandmarkSet{Points: []identity.Point{{X: 0.5, Y: 0.5}, {X: 0.6, Y: 0.6}}}
		got := ApplyFeatureEmphasis(img, short, identity.EmphasisFeatures, 0.6)
		if got.Bounds() != img.Bounds() {
			t.Errorf("Expected bounds preserved, got %v", got.Bounds())
		}
	})
}

func TestBlend(t *testing.T) {
	a := image.NewRGBA(image.Rect(0, 0, 4, 4))
	b := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			a.SetRGBA(x, y, color.RGBA{R: 200, A: 255})
			b.SetRGBA(x, y, color.RGBA{B: 100, A: 255})
		}
	}

	tests := []struct {
		name   string
		weight float64
		wantR  uint8
		wantB  uint8
	}{
		{"all first", 0, 200, 0},
		{"all second", 1, 0, 100},
		{"halfway", 0.5, 100, 50},
		{"clamped low", -2, 200, 0},
		{"clamped high", 2, 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Blend(a, b, tt.weight).RGBAAt(2, 2)
			if got.R != tt.wantR || got.B != tt.wantB {
				t.Errorf("Blend(%v) = R%d B%d, want R%d B%d", tt.weight, got.R, got.B, tt.wantR, tt.wantB)
			}
		})
	}
}

func TestAdjustBrightness(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 100, G: 100, B: 100, A: 255})
	img.SetRGBA(1, 1, color.RGBA{R: 240, G: 240, B: 240, A: 255})

	brighter := AdjustBrightness(img, 0.2)
	if got := brighter.RGBAAt(0, 0).R; got != 120 {
		t.Errorf("Expected channel 120, got %d", got)
	}
	if got := brighter.RGBAAt(1, 1).R; got != 255 {
		t.Errorf("Expected channel clamped to 255, got %d", got)
	}

	darker := AdjustBrightness(img, -0.5)
	if got := darker.RGBAAt(0, 0).R; got != 50 {
		t.Errorf("Expected channel 50, got %d", got)
	}
}

func TestStretchWidth(t *testing.T) {
	img := gradientImage(32)

	for _, factor := range []float64{0.8, 1.0, 1.3} {
		got := StretchWidth(img, factor)
		if got.Bounds() != img.Bounds() {
			t.Errorf("StretchWidth(%v) changed bounds to %v", factor, got.Bounds())
		}
	}

	if got := StretchWidth(img, 0); got != img {
		t.Error("Expected non-positive factor to return the input image")
	}
}

func TestBoxBlur(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.SetRGBA(4, 4, color.RGBA{R: 255, A: 255})

	blurred := BoxBlur(img, 1)
	if blurred.Bounds() != img.Bounds() {
		t.Errorf("Expected bounds preserved, got %v", blurred.Bounds())
	}
	center := blurred.RGBAAt(4, 4)
	if center.R >= 255 || center.R == 0 {
		t.Errorf("Expected blurred center between 0 and 255 exclusive, got %d", center.R)
	}
	neighbor := blurred.RGBAAt(5, 4)
	if neighbor.R == 0 {
		t.Error("Expected blur to spread into neighboring pixels")
	}

	if got := BoxBlur(img, 0); got != img {
		t.Error("Expected zero radius to return the input image")
	}
}

func TestShiftEyeSpacing(t *testing.T) {
	img := gradientImage(64)
	lm := testLandmarks()

	t.Run("NoLandmarks", func(t *testing.T) {
		if got := ShiftEyeSpacing(img, identity.LandmarkSet{}, 0.1); got != img {
			t.Error("Expected the input image back without landmarks")
		}
	})

	t.Run("ZeroShift", func(t *testing.T) {
		if got := ShiftEyeSpacing(img, lm, 0); got != img {
			t.Error("Expected the input image back for zero shift")
		}
	})

	t.Run("ShiftPreservesBounds", func(t *testing.T) {
		for _, shift := range []float64{-0.1, 0.1} {
			got := ShiftEyeSpacing(img, lm, shift)
			if got.Bounds() != img.Bounds() {
				t.Errorf("ShiftEyeSpacing(%v) changed bounds to %v", shift, got.Bounds())
			}
		}
	})
}
