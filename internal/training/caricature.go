package training

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/memora-app/memora/internal/identity"
	"github.com/memora-app/memora/internal/stimulus"
)

// caricatureExercise shows the target's face next to a version with one
// feature group exaggerated and asks for the person's name.
func (g *Generator) caricatureExercise(ctx context.Context, rng *rand.Rand, target *identity.Identity, entries []identity.Identity, level int, params Params) (*Exercise, error) {
	stim, err := g.stimulusFor(ctx, target)
	if err != nil {
		return nil, err
	}

	feature := identity.EmphasisFeatures[rng.Intn(len(identity.EmphasisFeatures))]
	modified := stimulus.ApplyFeatureEmphasis(stim.Image, target.Landmarks, []identity.Feature{feature}, params.DistortionMagnitude)

	original, err := encodeDataURI(stim.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	exaggerated, err := encodeDataURI(modified)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	distractors, err := g.distractorNames(rng, target, entries, level, params.DistractorCount)
	if err != nil {
		return nil, err
	}
	options, correct := buildNameOptions(rng, target.Name, distractors)

	var hints []string
	if params.ShowHints {
		if len(target.Traits) > 0 {
			hints = target.Traits[:min(2, len(target.Traits))]
		} else {
			hints = []string{
				fmt.Sprintf("Look for distinctive %s", featureLabel(feature)),
				"Focus on facial proportions",
			}
		}
	}

	return &Exercise{
		Type:               identity.ModuleCaricature,
		Level:              level,
		Question:           fmt.Sprintf("Who is this person? (Focus on the %s)", featureLabel(feature)),
		Options:            options,
		CorrectIndex:       correct,
		Hints:              hints,
		ShowHints:          params.ShowHints,
		OriginalImage:      original,
		ModifiedImage:      exaggerated,
		TargetName:         target.Name,
		ExaggeratedFeature: string(feature),
	}, nil
}

func featureLabel(f identity.Feature) string {
	switch f {
	case identity.FeatureLeftEye, identity.FeatureRightEye, identity.FeatureEyes:
		return "eyes"
	case identity.FeatureFaceOval:
		return "face shape"
	default:
		return string(f)
	}
}
