package training

import (
	"fmt"
	"math/rand"

	"github.com/memora-app/memora/internal/identity"
)

// traitExercise asks which trait phrases describe the target. The correct
// phrases come from the identity's stored traits, its landmark geometry, or
// the generic pool, in that order of preference. Higher levels show fewer
// correct traits and mix in distractor phrases.
func (g *Generator) traitExercise(rng *rand.Rand, target *identity.Identity, entries []identity.Identity, level int, params Params) (*Exercise, error) {
	traits := target.Traits
	if len(traits) == 0 && !target.Landmarks.IsEmpty() {
		traits = identity.DescribeTraits(identity.AnalyzeProportions(target.Landmarks))
	}
	if len(traits) == 0 {
		traits = g.training.GenericTraits[:min(4, len(g.training.GenericTraits))]
	}
	if len(traits) == 0 {
		return nil, fmt.Errorf("%w: no trait phrases available", ErrGenerationFailed)
	}

	selected := traits[:min(params.NumTraitsShown, len(traits))]
	options := append([]string(nil), selected...)

	if params.IncludeDistractors {
		var pool []string
		for _, e := range entries {
			if e.ID != target.ID {
				pool = append(pool, e.Traits...)
			}
		}
		pool = append(pool, g.training.GenericTraits...)
		options = append(options, sampleTraits(rng, pool, selected, params.DistractorCount)...)
	}

	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	correctSet := make(map[string]bool, len(selected))
	for _, t := range selected {
		correctSet[t] = true
	}
	var correctIndices []int
	for i, opt := range options {
		if correctSet[opt] {
			correctIndices = append(correctIndices, i)
		}
	}

	var hints []string
	if params.ShowHints {
		for _, t := range selected[:min(2, len(selected))] {
			hints = append(hints, fmt.Sprintf("Look for %s", t))
		}
	}

	ex := &Exercise{
		Type:           identity.ModuleTraitIdentification,
		Level:          level,
		Question:       fmt.Sprintf("Which traits best describe %s?", target.Name),
		Options:        options,
		CorrectIndices: correctIndices,
		MultipleChoice: len(correctIndices) > 1,
		Hints:          hints,
		ShowHints:      params.ShowHints,
		TargetName:     target.Name,
	}
	if len(correctIndices) == 1 {
		ex.CorrectIndex = correctIndices[0]
	}
	return ex, nil
}

// sampleTraits draws up to count distractor phrases from the pool, skipping
// duplicates and anything that collides with a correct trait.
func sampleTraits(rng *rand.Rand, pool, correct []string, count int) []string {
	seen := make(map[string]bool, len(correct))
	for _, t := range correct {
		seen[t] = true
	}

	var candidates []string
	for _, t := range pool {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		candidates = append(candidates, t)
	}

	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > count {
		candidates = candidates[:count]
	}
	return candidates
}
