package training

import (
	"encoding/base64"
	"image"
	"math/rand"

	"github.com/memora-app/memora/internal/identity"
	"github.com/memora-app/memora/internal/stimulus"
)

// Exercise is one generated training round. It is built per request and
// never persisted; CorrectIndex and CorrectIndices always refer to the
// final, post-shuffle option order.
type Exercise struct {
	Type     identity.ModuleType `json:"exercise_type"`
	Level    int                 `json:"level"`
	Question string              `json:"question"`

	// Options are answer texts for name-based modules and image payloads
	// for the spacing module.
	Options        []string `json:"options"`
	OptionLabels   []string `json:"option_labels,omitempty"`
	CorrectIndex   int      `json:"correct_index"`
	CorrectIndices []int    `json:"correct_indices,omitempty"`
	MultipleChoice bool     `json:"is_multiple_choice,omitempty"`

	Hints     []string `json:"hints,omitempty"`
	ShowHints bool     `json:"show_hints"`

	OriginalImage string `json:"original_image,omitempty"`
	ModifiedImage string `json:"modified_image,omitempty"`

	TargetName         string `json:"target_name,omitempty"`
	ExaggeratedFeature string `json:"exaggerated_feature,omitempty"`
	DistortionType     string `json:"distortion_type,omitempty"`
	ShowOriginal       bool   `json:"show_original,omitempty"`

	MorphPercentage int    `json:"morph_percentage,omitempty"`
	ShowPercentage  bool   `json:"show_percentage,omitempty"`
	PrimaryPerson   string `json:"primary_person,omitempty"`
	SecondaryPerson string `json:"secondary_person,omitempty"`
}

// shuffleTracked shuffles options in place and returns the post-shuffle
// position of the element that started at marked.
func shuffleTracked(rng *rand.Rand, options []string, marked int) int {
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
		switch marked {
		case i:
			marked = j
		case j:
			marked = i
		}
	})
	return marked
}

// buildNameOptions assembles the option list for a name-answer exercise:
// the target's name plus distractor names, shuffled, with the target's final
// position recovered. Distractors never duplicate the target or each other.
func buildNameOptions(rng *rand.Rand, target string, distractors []string) ([]string, int) {
	options := append([]string{target}, distractors...)
	correct := shuffleTracked(rng, options, 0)
	return options, correct
}

// sampleNames draws up to count names from the pool, skipping the target's
// name and anything already taken. Comparison ignores case and diacritics.
func sampleNames(rng *rand.Rand, pool []string, target string, taken []string, count int) []string {
	var candidates []string
	for _, name := range pool {
		if identity.SameName(name, target) {
			continue
		}
		duplicate := false
		for _, t := range taken {
			if identity.SameName(name, t) {
				duplicate = true
				break
			}
		}
		for _, c := range candidates {
			if identity.SameName(name, c) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			candidates = append(candidates, name)
		}
	}

	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > count {
		candidates = candidates[:count]
	}
	return candidates
}

// encodeDataURI encodes an image as an inline JPEG data URI, the payload
// format the web client renders directly.
func encodeDataURI(img image.Image) (string, error) {
	data, err := stimulus.Encode(img)
	if err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data), nil
}
