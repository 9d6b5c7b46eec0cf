package training

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/memora-app/memora/internal/identity"
	"github.com/memora-app/memora/internal/stimulus"
)

// morphExercise blends the target's face with a second identity and asks who
// the dominant contributor is. The target always keeps the majority share,
// so the target's name is the correct answer by construction.
func (g *Generator) morphExercise(ctx context.Context, rng *rand.Rand, target *identity.Identity, entries []identity.Identity, level int, params Params) (*Exercise, error) {
	var others []identity.Identity
	for _, e := range entries {
		if e.ID != target.ID && !identity.SameName(e.Name, target.Name) {
			others = append(others, e)
		}
	}
	if len(others) == 0 {
		return nil, fmt.Errorf("%w: morph matching needs at least 2 identities", ErrInsufficientIdentities)
	}
	partner := others[rng.Intn(len(others))]

	targetStim, err := g.stimulusFor(ctx, target)
	if err != nil {
		return nil, err
	}
	partnerStim, err := g.stimulusFor(ctx, &partner)
	if err != nil {
		return nil, err
	}

	// the partner contributes the minority share
	morphed := stimulus.Blend(targetStim.Image, partnerStim.Image, float64(100-params.MorphPercentage)/100)
	morphedURI, err := encodeDataURI(morphed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	distractors := []string{partner.Name}
	if extra := params.OptionCount - 2; extra > 0 {
		var pool []string
		for _, o := range others {
			if o.ID != partner.ID {
				pool = append(pool, o.Name)
			}
		}
		distractors = append(distractors, sampleNames(rng, pool, target.Name, distractors, extra)...)
	}
	options, correct := buildNameOptions(rng, target.Name, distractors)

	question := "Who is the primary person in this morphed face?"
	if params.ShowPercentage {
		question = fmt.Sprintf("This face is %d%% one person and %d%% another. Who is the primary person?",
			params.MorphPercentage, 100-params.MorphPercentage)
	}

	return &Exercise{
		Type:            identity.ModuleMorphMatching,
		Level:           level,
		Question:        question,
		Options:         options,
		CorrectIndex:    correct,
		ModifiedImage:   morphedURI,
		MorphPercentage: params.MorphPercentage,
		ShowPercentage:  params.ShowPercentage,
		PrimaryPerson:   target.Name,
		SecondaryPerson: partner.Name,
	}, nil
}
