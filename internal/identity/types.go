// Package identity defines the person records a learner trains against and
// the geometry helpers used to reason about their facial landmarks.
package identity

import "time"

// ModuleType names one of the four training modules.
type ModuleType string

const (
	ModuleCaricature          ModuleType = "caricature"
	ModuleSpacing             ModuleType = "spacing"
	ModuleTraitIdentification ModuleType = "trait_identification"
	ModuleMorphMatching       ModuleType = "morph_matching"
)

// Modules lists every training module in a fixed order.
var Modules = []ModuleType{
	ModuleCaricature,
	ModuleSpacing,
	ModuleTraitIdentification,
	ModuleMorphMatching,
}

// Valid reports whether m names a known training module.
func (m ModuleType) Valid() bool {
	switch m {
	case ModuleCaricature, ModuleSpacing, ModuleTraitIdentification, ModuleMorphMatching:
		return true
	}
	return false
}

// Identity is a person record the learner is training to recognize.
// Embedding, Landmarks and StimulusRef are optional: they are populated by
// external vision collaborators before the record reaches this core and may
// be absent for manually entered connections.
type Identity struct {
	ID          string
	UserID      string
	Name        string
	Role        string   // optional context (e.g., "coworker", "neighbor")
	Traits      []string // ordered trait phrases, small (≤ ~10)
	Embedding   []float32
	Landmarks   LandmarkSet
	StimulusRef string // stored image reference (URL or storage key)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasEmbedding reports whether a face embedding has been stored.
func (id *Identity) HasEmbedding() bool {
	return len(id.Embedding) > 0
}

// HasStimulus reports whether a stored image reference exists.
func (id *Identity) HasStimulus() bool {
	return id.StimulusRef != ""
}

// ProgressRecord tracks a learner's standing in one training module.
type ProgressRecord struct {
	Module           ModuleType `json:"module_type"`
	Level            int        `json:"level"`
	Accuracy         float64    `json:"accuracy"`
	CompletedLessons int        `json:"completed_lessons"`
	TotalLessons     int        `json:"total_lessons"`
}

// PercentComplete returns floor(100 * completed / total), clamped to [0, 100].
func (p ProgressRecord) PercentComplete() int {
	if p.TotalLessons <= 0 {
		return 0
	}
	pct := p.CompletedLessons * 100 / p.TotalLessons
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
