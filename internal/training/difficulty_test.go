package training

import (
	"testing"

	"github.com/memora-app/memora/internal/config"
	"github.com/memora-app/memora/internal/identity"
)

func testManager() *DifficultyManager {
	return NewDifficultyManager(config.Thresholds{Advance: 0.8, Regress: 0.5})
}

func TestNextLevel(t *testing.T) {
	m := testManager()

	tests := []struct {
		name     string
		level    int
		accuracy float64
		want     int
	}{
		{"advance", 3, 0.9, 4},
		{"advance at threshold", 3, 0.8, 4},
		{"capped at max", 10, 1.0, 10},
		{"regress", 4, 0.3, 3},
		{"floored at min", 1, 0.2, 1},
		{"stay between thresholds", 5, 0.6, 5},
		{"stay just below advance", 5, 0.79, 5},
		{"regress just below threshold", 5, 0.49, 4},
		{"out of range level clamped", 99, 0.6, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.NextLevel(tt.level, tt.accuracy); got != tt.want {
				t.Errorf("NextLevel(%d, %v) = %d, want %d", tt.level, tt.accuracy, got, tt.want)
			}
		})
	}
}

func TestParametersMonotonic(t *testing.T) {
	m := testManager()

	for _, module := range identity.Modules {
		t.Run(string(module), func(t *testing.T) {
			prev := m.ParametersFor(module, MinLevel)
			for level := MinLevel + 1; level <= MaxLevel; level++ {
				cur := m.ParametersFor(module, level)
				if cur.DistortionMagnitude > prev.DistortionMagnitude {
					t.Errorf("Distortion magnitude grew from level %d (%v) to %d (%v)",
						level-1, prev.DistortionMagnitude, level, cur.DistortionMagnitude)
				}
				if cur.OptionCount < prev.OptionCount {
					t.Errorf("Option count shrank from level %d (%d) to %d (%d)",
						level-1, prev.OptionCount, level, cur.OptionCount)
				}
				prev = cur
			}
		})
	}
}

func TestParametersDeterministic(t *testing.T) {
	m := testManager()
	for _, module := range identity.Modules {
		for level := MinLevel; level <= MaxLevel; level++ {
			if m.ParametersFor(module, level) != m.ParametersFor(module, level) {
				t.Errorf("Parameters for (%s, %d) are not deterministic", module, level)
			}
		}
	}
}

func TestParametersPerModule(t *testing.T) {
	m := testManager()

	t.Run("caricature", func(t *testing.T) {
		p1 := m.ParametersFor(identity.ModuleCaricature, 1)
		if p1.DistortionMagnitude != 0.8 {
			t.Errorf("Expected magnitude 0.8 at level 1, got %v", p1.DistortionMagnitude)
		}
		if !p1.ShowHints {
			t.Error("Expected hints at level 1")
		}
		if m.ParametersFor(identity.ModuleCaricature, 4).ShowHints {
			t.Error("Expected no hints above level 3")
		}
		p10 := m.ParametersFor(identity.ModuleCaricature, 10)
		if p10.DistractorCount != 4 {
			t.Errorf("Expected 4 distractors at level 10, got %d", p10.DistractorCount)
		}
		if p10.OptionCount != p10.DistractorCount+1 {
			t.Errorf("Option count %d does not fit %d distractors plus the answer",
				p10.OptionCount, p10.DistractorCount)
		}
	})

	t.Run("spacing", func(t *testing.T) {
		if !m.ParametersFor(identity.ModuleSpacing, 2).ShowOriginal {
			t.Error("Expected original labeled at level 2")
		}
		if m.ParametersFor(identity.ModuleSpacing, 3).ShowOriginal {
			t.Error("Expected original unlabeled above level 2")
		}
		if got := m.ParametersFor(identity.ModuleSpacing, 10).OptionCount; got != 5 {
			t.Errorf("Expected 5 options at level 10, got %d", got)
		}
	})

	t.Run("trait identification", func(t *testing.T) {
		p5 := m.ParametersFor(identity.ModuleTraitIdentification, 5)
		if p5.ShowHints {
			t.Error("Expected hints disabled at level 5")
		}
		if !p5.IncludeDistractors {
			t.Error("Expected distractors above level 3")
		}
		if p5.NumTraitsShown != 3 {
			t.Errorf("Expected 3 traits at level 5, got %d", p5.NumTraitsShown)
		}
		if !m.ParametersFor(identity.ModuleTraitIdentification, 4).ShowHints {
			t.Error("Expected hints below level 5")
		}
		if got := m.ParametersFor(identity.ModuleTraitIdentification, 10).NumTraitsShown; got != 1 {
			t.Errorf("Expected 1 trait at level 10, got %d", got)
		}
	})

	t.Run("morph matching", func(t *testing.T) {
		p1 := m.ParametersFor(identity.ModuleMorphMatching, 1)
		if p1.MorphPercentage != 90 {
			t.Errorf("Expected 90%% at level 1, got %d", p1.MorphPercentage)
		}
		if !p1.ShowPercentage {
			t.Error("Expected percentage shown at level 1")
		}
		if m.ParametersFor(identity.ModuleMorphMatching, 5).ShowPercentage {
			t.Error("Expected percentage hidden above level 4")
		}
		for level := MinLevel; level <= MaxLevel; level++ {
			if pct := m.ParametersFor(identity.ModuleMorphMatching, level).MorphPercentage; pct <= 50 {
				t.Errorf("Dominant share %d%% at level %d is not a majority", pct, level)
			}
		}
	})
}
