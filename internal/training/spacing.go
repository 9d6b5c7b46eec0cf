package training

import (
	"context"
	"fmt"
	"image"
	"math/rand"

	"github.com/memora-app/memora/internal/identity"
	"github.com/memora-app/memora/internal/stimulus"
)

// spacingDistortions are the perturbation kinds the spacing module draws
// from. Eye spacing needs landmarks and is skipped without them.
var spacingDistortions = []string{"brightness", "face_width", "blur", "eye_spacing"}

// spacingExercise shows the target's pristine face among distorted variants
// and asks which one has the correct proportions. Exactly one option is the
// unmodified image, and it is always the correct one.
func (g *Generator) spacingExercise(ctx context.Context, rng *rand.Rand, target *identity.Identity, level int, params Params) (*Exercise, error) {
	stim, err := g.stimulusFor(ctx, target)
	if err != nil {
		return nil, err
	}

	distortion := spacingDistortions[rng.Intn(len(spacingDistortions))]
	if distortion == "eye_spacing" && !hasEyeLandmarks(target.Landmarks) {
		distortion = "face_width"
	}

	pristine, err := encodeDataURI(stim.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	type option struct {
		image   string
		label   string
		correct bool
	}

	correctLabel := "Correct"
	if params.ShowOriginal {
		correctLabel = "Original"
	}
	options := []option{{image: pristine, label: correctLabel, correct: true}}

	for i := 1; i < params.OptionCount; i++ {
		// each distractor gets a distinct strength so the options differ
		// from each other, not only from the original
		magnitude := params.DistortionMagnitude * (1 + 0.4*float64(i-1))
		distorted := g.distort(stim.Image, target.Landmarks, distortion, magnitude, rng)
		encoded, err := encodeDataURI(distorted)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}
		if encoded == pristine {
			// a distortion that left the pixels unchanged would duplicate
			// the correct option; darkening separates it on any face image
			distorted = stimulus.AdjustBrightness(stim.Image, -(0.2 + 0.1*float64(i)))
			encoded, err = encodeDataURI(distorted)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
			}
		}
		options = append(options, option{image: encoded, label: fmt.Sprintf("Option %d", i)})
	}

	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	// recover the correct position by comparing payloads to the pristine
	// image, not by remembering a pre-shuffle index
	correct := -1
	images := make([]string, len(options))
	labels := make([]string, len(options))
	for i, opt := range options {
		images[i] = opt.image
		labels[i] = opt.label
		if opt.image == pristine {
			correct = i
		}
	}
	if correct < 0 {
		return nil, fmt.Errorf("%w: pristine option lost during shuffle", ErrGenerationFailed)
	}

	return &Exercise{
		Type:           identity.ModuleSpacing,
		Level:          level,
		Question:       fmt.Sprintf("Which image shows %s with correct facial proportions?", target.Name),
		Options:        images,
		OptionLabels:   labels,
		CorrectIndex:   correct,
		TargetName:     target.Name,
		DistortionType: distortion,
		ShowOriginal:   params.ShowOriginal,
	}, nil
}

// hasEyeLandmarks reports whether both eye groups resolve to at least one
// in-bounds point. A non-empty set can still be too short for the eye
// indices, and shifting zero points leaves the image untouched.
func hasEyeLandmarks(lm identity.LandmarkSet) bool {
	return len(lm.FeaturePoints(identity.FeatureLeftEye)) > 0 &&
		len(lm.FeaturePoints(identity.FeatureRightEye)) > 0
}

func (g *Generator) distort(img *image.RGBA, lm identity.LandmarkSet, kind string, magnitude float64, rng *rand.Rand) *image.RGBA {
	sign := 1.0
	if rng.Intn(2) == 0 {
		sign = -1
	}

	switch kind {
	case "brightness":
		return stimulus.AdjustBrightness(img, sign*magnitude)
	case "face_width":
		return stimulus.StretchWidth(img, 1+sign*magnitude)
	case "blur":
		radius := 1 + int(magnitude*10)
		return stimulus.BoxBlur(img, radius)
	case "eye_spacing":
		return stimulus.ShiftEyeSpacing(img, lm, sign*magnitude)
	default:
		return stimulus.AdjustBrightness(img, sign*magnitude)
	}
}
