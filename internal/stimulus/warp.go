package stimulus

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/memora-app/memora/internal/identity"
)

// ApplyFeatureEmphasis exaggerates facial features by rescaling each feature
// region about its landmark centroid. Magnitude is the fractional size change
// of the region, 0 leaves the image untouched. Features whose landmarks are
// missing from the set are skipped, a short landmark set degrades the effect
// rather than failing.
func ApplyFeatureEmphasis(img *image.RGBA, lm identity.LandmarkSet, features []identity.Feature, magnitude float64) *image.RGBA {
	if magnitude <= 0 || lm.IsEmpty() {
		return img
	}

	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)

	w := float64(img.Bounds().Dx())
	h := float64(img.Bounds().Dy())

	for _, feature := range features {
		points := lm.FeaturePoints(feature)
		if len(points) == 0 {
			continue
		}

		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for _, p := range points {
			minX = math.Min(minX, p.X)
			maxX = math.Max(maxX, p.X)
			minY = math.Min(minY, p.Y)
			maxY = math.Max(maxY, p.Y)
		}

		// pad the region so the scaled feature blends into its surroundings
		padX := (maxX - minX) * 0.25
		padY := (maxY - minY) * 0.25
		region := clampRect(image.Rect(
			int((minX-padX)*w), int((minY-padY)*h),
			int((maxX+padX)*w)+1, int((maxY+padY)*h)+1,
		), img.Bounds())
		if region.Dx() < 2 || region.Dy() < 2 {
			continue
		}

		scale := 1 + magnitude
		cx := float64(region.Min.X+region.Max.X) / 2
		cy := float64(region.Min.Y+region.Max.Y) / 2
		grown := clampRect(image.Rect(
			int(cx-float64(region.Dx())*scale/2), int(cy-float64(region.Dy())*scale/2),
			int(cx+float64(region.Dx())*scale/2), int(cy+float64(region.Dy())*scale/2),
		), img.Bounds())
		if grown.Dx() < 2 || grown.Dy() < 2 {
			continue
		}

		patch := image.NewRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
		draw.Draw(patch, patch.Bounds(), img, region.Min, draw.Src)
		draw.CatmullRom.Scale(out, grown, patch, patch.Bounds(), draw.Over, nil)
	}

	return out
}

// Blend alpha-composites two equally sized images. Weight is the share of the
// second image, clamped to [0, 1].
func Blend(a, b *image.RGBA, weight float64) *image.RGBA {
	weight = math.Max(0, math.Min(1, weight))
	bounds := a.Bounds()
	out := image.NewRGBA(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			pa := a.RGBAAt(x, y)
			pb := b.RGBAAt(x, y)
			out.SetRGBA(x, y, mix(pa, pb, weight))
		}
	}
	return out
}

// AdjustBrightness scales pixel intensity by 1+delta. Negative delta darkens.
func AdjustBrightness(img *image.RGBA, delta float64) *image.RGBA {
	factor := 1 + delta
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			p := img.RGBAAt(x, y)
			out.SetRGBA(x, y, clampRGBA(
				float64(p.R)*factor,
				float64(p.G)*factor,
				float64(p.B)*factor,
				p.A,
			))
		}
	}
	return out
}

// StretchWidth rescales the image horizontally about its center by the given
// factor, keeping the canvas size. Factors above 1 widen the face, below 1
// narrow it.
func StretchWidth(img *image.RGBA, factor float64) *image.RGBA {
	if factor <= 0 {
		return img
	}
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)

	newWidth := int(float64(bounds.Dx()) * factor)
	if newWidth < 1 {
		newWidth = 1
	}
	// widening overflows the canvas and is cropped, narrowing leaves the
	// original visible in the margins
	offsetX := bounds.Min.X + (bounds.Dx()-newWidth)/2
	target := image.Rect(offsetX, bounds.Min.Y, offsetX+newWidth, bounds.Max.Y)
	draw.CatmullRom.Scale(out, target, img, bounds, draw.Src, nil)
	return out
}

// BoxBlur applies a box blur with the given radius.
func BoxBlur(img *image.RGBA, radius int) *image.RGBA {
	if radius <= 0 {
		return img
	}
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			var r, g, b, a, n float64
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					px, py := x+dx, y+dy
					if px < bounds.Min.X || px >= bounds.Max.X || py < bounds.Min.Y || py >= bounds.Max.Y {
						continue
					}
					p := img.RGBAAt(px, py)
					r += float64(p.R)
					g += float64(p.G)
					b += float64(p.B)
					a += float64(p.A)
					n++
				}
			}
			out.SetRGBA(x, y, clampRGBA(r/n, g/n, b/n, uint8(a/n)))
		}
	}
	return out
}

// ShiftEyeSpacing moves the two eye regions horizontally apart (positive
// shift) or together (negative shift). Shift is a fraction of the canvas
// width. Without eye landmarks the image is returned unchanged.
func ShiftEyeSpacing(img *image.RGBA, lm identity.LandmarkSet, shift float64) *image.RGBA {
	if shift == 0 || lm.IsEmpty() {
		return img
	}

	left := lm.FeaturePoints(identity.FeatureLeftEye)
	right := lm.FeaturePoints(identity.FeatureRightEye)
	if len(left) == 0 || len(right) == 0 {
		return img
	}

	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)

	dx := int(shift * float64(img.Bounds().Dx()) / 2)
	shiftRegion(out, img, eyeRegion(left, img.Bounds()), -dx)
	shiftRegion(out, img, eyeRegion(right, img.Bounds()), dx)
	return out
}

func eyeRegion(points []identity.Point, bounds image.Rectangle) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())
	padX := (maxX - minX) * 0.3
	padY := (maxY - minY) * 0.5
	return clampRect(image.Rect(
		int((minX-padX)*w), int((minY-padY)*h),
		int((maxX+padX)*w)+1, int((maxY+padY)*h)+1,
	), bounds)
}

func shiftRegion(dst *image.RGBA, src *image.RGBA, region image.Rectangle, dx int) {
	if region.Empty() {
		return
	}
	target := clampRect(region.Add(image.Point{X: dx}), dst.Bounds())
	draw.Draw(dst, target, src, region.Min, draw.Src)
}

func clampRect(r, bounds image.Rectangle) image.Rectangle {
	return r.Intersect(bounds)
}

func mix(a, b color.RGBA, weight float64) color.RGBA {
	inv := 1 - weight
	return clampRGBA(
		float64(a.R)*inv+float64(b.R)*weight,
		float64(a.G)*inv+float64(b.G)*weight,
		float64(a.B)*inv+float64(b.B)*weight,
		uint8(float64(a.A)*inv+float64(b.A)*weight),
	)
}

func clampRGBA(r, g, b float64, a uint8) color.RGBA {
	return color.RGBA{R: clampChannel(r), G: clampChannel(g), B: clampChannel(b), A: a}
}

func clampChannel(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
