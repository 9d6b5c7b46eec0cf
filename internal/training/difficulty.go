// Package training generates adaptive face recognition exercises and tracks
// per-module learner progress.
package training

import (
	"math"

	"github.com/memora-app/memora/internal/config"
	"github.com/memora-app/memora/internal/identity"
)

// Level bounds shared by every module.
const (
	MinLevel = 1
	MaxLevel = 10
)

// Params are the difficulty knobs for one (module, level) pair. Not every
// field applies to every module; DistortionMagnitude is meaningful for all
// of them and never grows with level.
type Params struct {
	DistortionMagnitude float64 // visual distortion strength, shrinks as level grows
	OptionCount         int     // number of answer options presented
	DistractorCount     int     // wrong-name options mixed in
	ShowHints           bool
	ShowOriginal        bool // spacing: label the pristine option as such
	MorphPercentage     int  // morph: blend share of the dominant identity
	ShowPercentage      bool // morph: include the blend ratio in the question
	NumTraitsShown      int  // traits: correct trait phrases in the option set
	IncludeDistractors  bool // traits: mix in wrong trait phrases
}

// DifficultyManager computes level transitions and per-level parameters.
// Parameters are a pure function of (module, level).
type DifficultyManager struct {
	advanceThreshold float64
	regressThreshold float64
}

// NewDifficultyManager creates a manager with the configured accuracy
// thresholds.
func NewDifficultyManager(cfg config.Thresholds) *DifficultyManager {
	return &DifficultyManager{
		advanceThreshold: cfg.Advance,
		regressThreshold: cfg.Regress,
	}
}

// AdvanceThreshold is the accuracy needed to move up a level. A lesson only
// counts as completed at or above it.
func (m *DifficultyManager) AdvanceThreshold() float64 {
	return m.advanceThreshold
}

// NextLevel returns the level after a submitted result. High accuracy moves
// up one level, very low accuracy moves down one, anything between keeps the
// level. The result always stays within [MinLevel, MaxLevel].
func (m *DifficultyManager) NextLevel(currentLevel int, accuracy float64) int {
	currentLevel = clampLevel(currentLevel)
	switch {
	case accuracy >= m.advanceThreshold:
		return clampLevel(currentLevel + 1)
	case accuracy < m.regressThreshold:
		return clampLevel(currentLevel - 1)
	default:
		return currentLevel
	}
}

// ParametersFor returns the difficulty knobs for one module at one level.
func (m *DifficultyManager) ParametersFor(module identity.ModuleType, level int) Params {
	level = clampLevel(level)

	switch module {
	case identity.ModuleCaricature:
		distractors := min(2+level/3, 4)
		return Params{
			DistortionMagnitude: math.Max(0.1, 0.8-float64(level-1)*0.07),
			DistractorCount:     distractors,
			OptionCount:         distractors + 1,
			ShowHints:           level <= 3,
		}
	case identity.ModuleSpacing:
		return Params{
			DistortionMagnitude: math.Max(0.05, 0.3-float64(level-1)*0.025),
			OptionCount:         min(2+level/2, 5),
			ShowOriginal:        level <= 2,
		}
	case identity.ModuleTraitIdentification:
		return Params{
			NumTraitsShown:     max(1, 4-level/3),
			IncludeDistractors: level > 3,
			DistractorCount:    2,
			ShowHints:          level < 5,
		}
	case identity.ModuleMorphMatching:
		// the dominant identity always keeps over half the blend, so the
		// "primary person" phrasing stays truthful at every level
		pct := max(55, 90-(level-1)*6)
		return Params{
			MorphPercentage: pct,
			// how far the blend is pushed toward the dominant face, an
			// easier exercise is further from an even mix
			DistortionMagnitude: float64(pct-50) / 50,
			OptionCount:         min(2+level/2, 4),
			ShowPercentage:      level <= 4,
		}
	default:
		return Params{}
	}
}

func clampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}
