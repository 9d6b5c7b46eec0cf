package stimulus

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// Decode decodes stimulus bytes into an RGBA image.
func Decode(data []byte) (*image.RGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return toRGBA(img), nil
}

// Encode encodes a stimulus image as JPEG.
func Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// Normalize scales an image onto a square canvas of the given size, keeping
// aspect ratio and centering it. Every stimulus in an exercise ends up on the
// same canvas so distortions are comparable between options.
func Normalize(img image.Image, size int) *image.RGBA {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	canvas := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	if width <= 0 || height <= 0 {
		return canvas
	}

	var newWidth, newHeight int
	if width > height {
		newWidth = size
		newHeight = int(float64(height) * float64(size) / float64(width))
	} else {
		newHeight = size
		newWidth = int(float64(width) * float64(size) / float64(height))
	}
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	offsetX := (size - newWidth) / 2
	offsetY := (size - newHeight) / 2
	target := image.Rect(offsetX, offsetY, offsetX+newWidth, offsetY+newHeight)
	draw.CatmullRom.Scale(canvas, target, img, bounds, draw.Over, nil)

	return canvas
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}
