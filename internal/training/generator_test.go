package training

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memora-app/memora/internal/catalog"
	"github.com/memora-app/memora/internal/config"
	"github.com/memora-app/memora/internal/identity"
	"github.com/memora-app/memora/internal/stimulus"
)

// stubProvider serves per-identity checkerboard images without any network.
// The high-contrast pattern guarantees every spacing distortion changes the
// encoded bytes, which a flat color would not.
type stubProvider struct {
	err error
}

func (s *stubProvider) StimulusFor(ctx context.Context, id *identity.Identity) (*stimulus.Stimulus, error) {
	if s.err != nil {
		return nil, s.err
	}
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	shade := uint8(37 * (len(id.Name) + 1))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			c := color.RGBA{R: shade, G: 255 - shade, B: 128, A: 255}
			if (x/4+y/4)%2 == 1 {
				c = color.RGBA{R: 255 - shade, G: shade, B: 32, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return &stimulus.Stimulus{Image: img, SourceRef: "stub://" + id.Name}, nil
}

type staticCatalog struct {
	entries []identity.Identity
	err     error
}

func (c *staticCatalog) Entries(ctx context.Context, userID string) ([]identity.Identity, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.entries, nil
}

func testEntries(n int) []identity.Identity {
	names := []string{"Elena", "Marcus", "Priya", "Tomas", "Amara", "Henrik"}
	entries := make([]identity.Identity, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, identity.Identity{
			ID:     fmt.Sprintf("id-%d", i),
			UserID: "user1",
			Name:   names[i%len(names)],
			Traits: []string{
				fmt.Sprintf("trait a of %s", names[i%len(names)]),
				fmt.Sprintf("trait b of %s", names[i%len(names)]),
			},
		})
	}
	return entries
}

func testTrainingConfig() *config.TrainingConfig {
	return &config.TrainingConfig{
		Thresholds:   config.Thresholds{Advance: 0.8, Regress: 0.5},
		TotalLessons: 10,
		FillerNames:  []string{"Alex", "Jordan", "Taylor", "Casey", "Morgan", "Riley"},
		GenericTraits: []string{
			"round face", "square jaw", "thin eyebrows", "wide smile",
			"small eyes", "large nose", "full lips", "high cheekbones",
		},
	}
}

func newTestGenerator(t *testing.T, cat catalog.Catalog, provider stimulus.Provider) *Generator {
	t.Helper()
	return NewGenerator(cat, provider, nil, testManager(), testTrainingConfig())
}

func TestGenerateShuffleLocate(t *testing.T) {
	entries := testEntries(5)
	gen := newTestGenerator(t, &staticCatalog{entries: entries}, &stubProvider{})
	ctx := context.Background()

	// the correct index must address the designated answer for any shuffle
	// permutation, so hammer it with many seeds
	for trial := 0; trial < 1000; trial++ {
		rng := rand.New(rand.NewSource(int64(trial)))
		module := identity.Modules[trial%len(identity.Modules)]
		level := MinLevel + trial%MaxLevel

		ex, err := gen.Generate(ctx, rng, "user1", module, level)
		require.NoError(t, err, "trial %d module %s", trial, module)
		require.Greater(t, len(ex.Options), 1)

		switch module {
		case identity.ModuleCaricature:
			require.Less(t, ex.CorrectIndex, len(ex.Options))
			assert.Equal(t, ex.TargetName, ex.Options[ex.CorrectIndex])
		case identity.ModuleMorphMatching:
			require.Less(t, ex.CorrectIndex, len(ex.Options))
			assert.Equal(t, ex.PrimaryPerson, ex.Options[ex.CorrectIndex])
		case identity.ModuleSpacing:
			require.Less(t, ex.CorrectIndex, len(ex.Options))
			wantLabel := "Correct"
			if ex.ShowOriginal {
				wantLabel = "Original"
			}
			assert.Equal(t, wantLabel, ex.OptionLabels[ex.CorrectIndex])
		case identity.ModuleTraitIdentification:
			require.NotEmpty(t, ex.CorrectIndices)
			for _, idx := range ex.CorrectIndices {
				require.Less(t, idx, len(ex.Options))
			}
		}
	}
}

func TestGenerateDistractorExclusivity(t *testing.T) {
	entries := testEntries(6)
	gen := newTestGenerator(t, &staticCatalog{entries: entries}, &stubProvider{})
	ctx := context.Background()

	for trial := 0; trial < 200; trial++ {
		rng := rand.New(rand.NewSource(int64(trial)))
		for _, module := range []identity.ModuleType{identity.ModuleCaricature, identity.ModuleMorphMatching} {
			ex, err := gen.Generate(ctx, rng, "user1", module, 1+trial%10)
			require.NoError(t, err)

			correct := ex.Options[ex.CorrectIndex]
			seen := 0
			for _, opt := range ex.Options {
				if identity.SameName(opt, correct) {
					seen++
				}
			}
			assert.Equal(t, 1, seen, "correct answer %q appears %d times in %v", correct, seen, ex.Options)
		}
	}
}

func TestGenerateMorphNeedsTwoIdentities(t *testing.T) {
	gen := newTestGenerator(t, &staticCatalog{entries: testEntries(1)}, &stubProvider{})
	rng := rand.New(rand.NewSource(1))

	_, err := gen.Generate(context.Background(), rng, "user1", identity.ModuleMorphMatching, 1)
	assert.ErrorIs(t, err, ErrInsufficientIdentities)
}

func TestGenerateEmptyCatalogUsesFallback(t *testing.T) {
	cfg := config.Load()
	samples := catalog.SampleIdentities(cfg.Training.SampleCatalog)
	require.GreaterOrEqual(t, len(samples), 5)

	cat := catalog.NewFallbackCatalog(&staticCatalog{}, samples)
	gen := NewGenerator(cat, &stubProvider{}, nil, testManager(), &cfg.Training)
	rng := rand.New(rand.NewSource(42))

	ex, err := gen.Generate(context.Background(), rng, "user1", identity.ModuleCaricature, 1)
	require.NoError(t, err)
	assert.Equal(t, identity.ModuleCaricature, ex.Type)
	assert.Equal(t, 1, ex.Level)
	assert.NotEmpty(t, ex.Options)
	assert.NotEmpty(t, ex.OriginalImage)
	assert.NotEmpty(t, ex.ModifiedImage)
}

func TestGenerateEmptyCatalogWithoutFallback(t *testing.T) {
	gen := newTestGenerator(t, &staticCatalog{}, &stubProvider{})
	rng := rand.New(rand.NewSource(1))

	_, err := gen.Generate(context.Background(), rng, "user1", identity.ModuleCaricature, 1)
	assert.ErrorIs(t, err, ErrInsufficientIdentities)
}

func TestGenerateCatalogUnavailable(t *testing.T) {
	gen := newTestGenerator(t, &staticCatalog{err: errors.New("connection refused")}, &stubProvider{})
	rng := rand.New(rand.NewSource(1))

	_, err := gen.Generate(context.Background(), rng, "user1", identity.ModuleCaricature, 1)
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestGenerateStimulusUnavailable(t *testing.T) {
	provider := &stubProvider{err: fmt.Errorf("%w: fetch failed", stimulus.ErrUnavailable)}
	gen := newTestGenerator(t, &staticCatalog{entries: testEntries(3)}, provider)
	rng := rand.New(rand.NewSource(1))

	_, err := gen.Generate(context.Background(), rng, "user1", identity.ModuleCaricature, 1)
	assert.ErrorIs(t, err, ErrStimulusUnavailable)
}

func TestGenerateUnknownModule(t *testing.T) {
	gen := newTestGenerator(t, &staticCatalog{entries: testEntries(3)}, &stubProvider{})
	rng := rand.New(rand.NewSource(1))

	_, err := gen.Generate(context.Background(), rng, "user1", identity.ModuleType("telepathy"), 1)
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestGenerateTraitExercise(t *testing.T) {
	entries := testEntries(4)
	gen := newTestGenerator(t, &staticCatalog{entries: entries}, &stubProvider{})
	ctx := context.Background()

	t.Run("level 5 mixes distractors", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		ex, err := gen.Generate(ctx, rng, "user1", identity.ModuleTraitIdentification, 5)
		require.NoError(t, err)

		params := testManager().ParametersFor(identity.ModuleTraitIdentification, 5)
		// each test identity has two traits, so the correct set is capped
		wantCorrect := min(params.NumTraitsShown, 2)
		assert.Len(t, ex.CorrectIndices, wantCorrect)
		assert.Len(t, ex.Options, wantCorrect+params.DistractorCount)
		assert.False(t, ex.ShowHints)
		assert.Empty(t, ex.Hints)
	})

	t.Run("level 4 still shows hints", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		ex, err := gen.Generate(ctx, rng, "user1", identity.ModuleTraitIdentification, 4)
		require.NoError(t, err)
		assert.True(t, ex.ShowHints)
		assert.NotEmpty(t, ex.Hints)
	})

	t.Run("correct indices address target traits", func(t *testing.T) {
		for trial := 0; trial < 100; trial++ {
			rng := rand.New(rand.NewSource(int64(trial)))
			ex, err := gen.Generate(ctx, rng, "user1", identity.ModuleTraitIdentification, 6)
			require.NoError(t, err)
			for _, idx := range ex.CorrectIndices {
				assert.Contains(t, ex.Options[idx], "trait")
				assert.Contains(t, ex.Options[idx], ex.TargetName)
			}
		}
	})

	t.Run("low level has no distractors", func(t *testing.T) {
		rng := rand.New(rand.NewSource(3))
		ex, err := gen.Generate(ctx, rng, "user1", identity.ModuleTraitIdentification, 1)
		require.NoError(t, err)
		assert.Len(t, ex.Options, len(ex.CorrectIndices))
	})
}

func TestGenerateSpacingExercise(t *testing.T) {
	entries := testEntries(2)
	gen := newTestGenerator(t, &staticCatalog{entries: entries}, &stubProvider{})
	rng := rand.New(rand.NewSource(11))

	ex, err := gen.Generate(context.Background(), rng, "user1", identity.ModuleSpacing, 4)
	require.NoError(t, err)

	params := testManager().ParametersFor(identity.ModuleSpacing, 4)
	assert.Len(t, ex.Options, params.OptionCount)
	assert.Len(t, ex.OptionLabels, params.OptionCount)
	assert.Contains(t, spacingDistortions, ex.DistortionType)
	assert.False(t, ex.ShowOriginal)

	// exactly one option carries the pristine payload
	pristine := ex.Options[ex.CorrectIndex]
	count := 0
	for _, opt := range ex.Options {
		if opt == pristine {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestGenerateSpacingShortLandmarks(t *testing.T) {
	// a 5-point detector output: non-empty, but every eye index in the
	// feature table is out of bounds
	short := identity.LandmarkSet{
		Points: []identity.Point{
			{X: 0.3, Y: 0.4}, {X: 0.7, Y: 0.4}, {X: 0.5, Y: 0.55},
			{X: 0.35, Y: 0.75}, {X: 0.65, Y: 0.75},
		},
		Width:  16,
		Height: 16,
	}
	require.False(t, short.IsEmpty())
	require.Empty(t, short.FeaturePoints(identity.FeatureLeftEye))

	entries := testEntries(2)
	for i := range entries {
		entries[i].Landmarks = short
	}
	gen := newTestGenerator(t, &staticCatalog{entries: entries}, &stubProvider{})
	ctx := context.Background()

	// enough seeds that every distortion kind, eye_spacing included, gets drawn
	for trial := 0; trial < 200; trial++ {
		rng := rand.New(rand.NewSource(int64(trial)))
		ex, err := gen.Generate(ctx, rng, "user1", identity.ModuleSpacing, MinLevel+trial%MaxLevel)
		require.NoError(t, err)

		assert.NotEqual(t, "eye_spacing", ex.DistortionType,
			"eye spacing needs in-bounds eye points")

		pristine := ex.Options[ex.CorrectIndex]
		count := 0
		for _, opt := range ex.Options {
			if opt == pristine {
				count++
			}
		}
		require.Equal(t, 1, count, "trial %d: pristine payload duplicated", trial)
	}
}

func TestGenerateReproducibleWithSeed(t *testing.T) {
	entries := testEntries(5)
	gen := newTestGenerator(t, &staticCatalog{entries: entries}, &stubProvider{})
	ctx := context.Background()

	a, err := gen.Generate(ctx, rand.New(rand.NewSource(99)), "user1", identity.ModuleCaricature, 3)
	require.NoError(t, err)
	b, err := gen.Generate(ctx, rand.New(rand.NewSource(99)), "user1", identity.ModuleCaricature, 3)
	require.NoError(t, err)

	assert.Equal(t, a.Options, b.Options)
	assert.Equal(t, a.CorrectIndex, b.CorrectIndex)
	assert.Equal(t, a.ExaggeratedFeature, b.ExaggeratedFeature)
}
