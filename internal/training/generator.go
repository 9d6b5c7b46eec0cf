package training

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/memora-app/memora/internal/catalog"
	"github.com/memora-app/memora/internal/config"
	"github.com/memora-app/memora/internal/database"
	"github.com/memora-app/memora/internal/identity"
	"github.com/memora-app/memora/internal/stimulus"
)

// hardDistractorLevel is the level from which distractors are picked by
// embedding similarity instead of at random.
const hardDistractorLevel = 6

// Generator builds exercises from the catalog and the stimulus provider.
// A similarity index is optional; when present, high levels draw distractor
// names from the target's nearest embedding neighbors.
type Generator struct {
	catalog    catalog.Catalog
	stimuli    stimulus.Provider
	index      *database.IdentityIndex
	difficulty *DifficultyManager
	training   *config.TrainingConfig
}

// NewGenerator creates an exercise generator.
func NewGenerator(cat catalog.Catalog, stimuli stimulus.Provider, index *database.IdentityIndex, difficulty *DifficultyManager, training *config.TrainingConfig) *Generator {
	return &Generator{
		catalog:    cat,
		stimuli:    stimuli,
		index:      index,
		difficulty: difficulty,
		training:   training,
	}
}

// Generate builds one exercise for a user at the given level. The random
// source is threaded in by the caller so shuffles are reproducible.
func (g *Generator) Generate(ctx context.Context, rng *rand.Rand, userID string, module identity.ModuleType, level int) (*Exercise, error) {
	if !module.Valid() {
		return nil, fmt.Errorf("%w: unknown module %q", ErrGenerationFailed, module)
	}

	entries, err := g.catalog.Entries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: catalog is empty", ErrInsufficientIdentities)
	}

	params := g.difficulty.ParametersFor(module, level)
	level = clampLevel(level)
	target := entries[rng.Intn(len(entries))]

	switch module {
	case identity.ModuleCaricature:
		return g.caricatureExercise(ctx, rng, &target, entries, level, params)
	case identity.ModuleSpacing:
		return g.spacingExercise(ctx, rng, &target, level, params)
	case identity.ModuleTraitIdentification:
		return g.traitExercise(rng, &target, entries, level, params)
	case identity.ModuleMorphMatching:
		return g.morphExercise(ctx, rng, &target, entries, level, params)
	default:
		return nil, fmt.Errorf("%w: unknown module %q", ErrGenerationFailed, module)
	}
}

// distractorNames picks wrong-answer names for a target. Real catalog names
// come first; at high levels with an available similarity index they are the
// target's nearest embedding neighbors, otherwise random. Filler names pad
// the list when the catalog runs short.
func (g *Generator) distractorNames(rng *rand.Rand, target *identity.Identity, entries []identity.Identity, level, count int) ([]string, error) {
	var names []string

	if g.index != nil && level >= hardDistractorLevel && target.HasEmbedding() {
		// index lookup failures degrade to random distractors
		neighbors, err := g.index.Nearest(target.Embedding, target.UserID, target.ID, count)
		if err == nil {
			for _, neighbor := range neighbors {
				if !identity.SameName(neighbor.Name, target.Name) {
					names = append(names, neighbor.Name)
				}
			}
		}
	}

	if len(names) < count {
		pool := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.ID != target.ID {
				pool = append(pool, e.Name)
			}
		}
		names = append(names, sampleNames(rng, pool, target.Name, names, count-len(names))...)
	}

	if len(names) < count {
		names = append(names, sampleNames(rng, g.training.FillerNames, target.Name, names, count-len(names))...)
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no distractor names available", ErrInsufficientIdentities)
	}
	return names, nil
}

func (g *Generator) stimulusFor(ctx context.Context, id *identity.Identity) (*stimulus.Stimulus, error) {
	stim, err := g.stimuli.StimulusFor(ctx, id)
	if err != nil {
		if errors.Is(err, stimulus.ErrUnavailable) {
			return nil, fmt.Errorf("%w: %v", ErrStimulusUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return stim, nil
}
