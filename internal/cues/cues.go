// Package cues generates memory aids for a registered identity: a short
// facial description plus a mnemonic tying the person's features to their
// name. The template provider works offline; the OpenAI and Gemini providers
// produce personalized cues when an API key is configured.
package cues

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/memora-app/memora/internal/identity"
)

// Cue is one generated memory aid.
type Cue struct {
	Description string `json:"description"`
	Mnemonic    string `json:"mnemonic"`
}

// Provider generates a memory cue for an identity.
type Provider interface {
	Name() string
	GenerateCue(ctx context.Context, id *identity.Identity) (*Cue, error)
}

var facialFeatures = []string{
	"thick eyebrows", "thin eyebrows", "arched eyebrows", "straight eyebrows",
	"square jaw", "round jaw", "pointed chin", "dimpled chin",
	"high cheekbones", "full cheeks", "hollow cheeks",
	"wide nose", "narrow nose", "button nose", "aquiline nose",
	"large eyes", "small eyes", "deep-set eyes", "prominent eyes",
	"full lips", "thin lips", "wide smile", "crooked smile",
	"freckles", "moles", "wrinkles around eyes", "smooth skin",
	"broad forehead", "narrow forehead", "receding hairline",
	"curly hair", "straight hair", "wavy hair", "short hair", "long hair",
}

var descriptiveWords = []string{
	"distinctive", "prominent", "subtle", "striking", "gentle", "sharp",
	"soft", "angular", "rounded", "defined", "expressive", "kind",
}

var comparisons = []string{
	"a movie star", "your friend", "a family member", "someone famous",
	"a character from TV", "an old photo", "a painting",
}

var associations = []string{
	"strength", "kindness", "wisdom", "youth", "confidence", "warmth",
	"intelligence", "friendliness", "determination", "gentleness",
}

var characteristics = []string{
	"friendly", "serious", "approachable", "distinguished", "youthful",
	"wise", "confident", "gentle", "strong", "kind",
}

// TemplateProvider builds cues from fixed phrase pools. An identity's stored
// traits take precedence over pool features, so the description reflects the
// actual person when trait data exists.
type TemplateProvider struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewTemplateProvider creates a template cue provider using the given random
// source.
func NewTemplateProvider(rng *rand.Rand) *TemplateProvider {
	return &TemplateProvider{rng: rng}
}

func (p *TemplateProvider) Name() string {
	return "template"
}

func (p *TemplateProvider) GenerateCue(ctx context.Context, id *identity.Identity) (*Cue, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	features := p.pickFeatures(id)
	name := id.Name
	if name == "" {
		name = "this person"
	}

	return &Cue{
		Description: describeFeatures(name, features),
		Mnemonic:    p.mnemonic(name, features),
	}, nil
}

func (p *TemplateProvider) pickFeatures(id *identity.Identity) []string {
	n := 2 + p.rng.Intn(3)

	if len(id.Traits) >= 2 {
		features := append([]string(nil), id.Traits...)
		p.rng.Shuffle(len(features), func(i, j int) {
			features[i], features[j] = features[j], features[i]
		})
		if len(features) > n {
			features = features[:n]
		}
		return features
	}

	picked := p.rng.Perm(len(facialFeatures))[:n]
	features := make([]string, 0, n)
	for _, idx := range picked {
		feature := facialFeatures[idx]
		if p.rng.Intn(2) == 0 {
			feature = descriptiveWords[p.rng.Intn(len(descriptiveWords))] + " " + feature
		}
		features = append(features, feature)
	}
	return features
}

func (p *TemplateProvider) mnemonic(name string, features []string) string {
	feature1 := features[0]
	feature2 := feature1
	if len(features) > 1 {
		feature2 = features[1]
	}

	switch p.rng.Intn(5) {
	case 0:
		return fmt.Sprintf("Think: %s + %s = %s", feature1, feature2, name)
	case 1:
		return fmt.Sprintf("Remember: %s like %s", feature1, comparisons[p.rng.Intn(len(comparisons))])
	case 2:
		return fmt.Sprintf("Key feature: %s - think %s", feature1, associations[p.rng.Intn(len(associations))])
	case 3:
		return fmt.Sprintf("Focus on: %s and %s", feature1, feature2)
	default:
		return fmt.Sprintf("Memorable: %s gives them a %s look", feature1, characteristics[p.rng.Intn(len(characteristics))])
	}
}

func describeFeatures(name string, features []string) string {
	switch len(features) {
	case 0:
		return fmt.Sprintf("%s has a memorable face.", name)
	case 1:
		return fmt.Sprintf("%s has %s.", name, features[0])
	case 2:
		return fmt.Sprintf("%s has %s and %s.", name, features[0], features[1])
	default:
		return fmt.Sprintf("%s has %s, and %s.", name,
			strings.Join(features[:len(features)-1], ", "), features[len(features)-1])
	}
}
