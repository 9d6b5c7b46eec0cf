package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed training.yaml
var trainingYAML []byte

type Config struct {
	Database DatabaseConfig
	Web      WebConfig
	Stimulus StimulusConfig
	OpenAI   OpenAIConfig
	Gemini   GeminiConfig
	Training TrainingConfig
}

type WebConfig struct {
	AllowedOrigins []string // CORS origin whitelist; localhost is always allowed
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type StimulusConfig struct {
	FallbackURL    string // portrait asset served when an identity has no stored image
	CanvasSize     int    // square canvas size stimuli are normalized to (default 256)
	FetchTimeoutMS int    // per-fetch timeout in milliseconds (default 10000)
}

type OpenAIConfig struct {
	Token string
}

type GeminiConfig struct {
	APIKey string
}

// TrainingConfig holds the tuning values from the embedded training.yaml.
type TrainingConfig struct {
	Thresholds    Thresholds    `yaml:"thresholds"`
	TotalLessons  int           `yaml:"total_lessons"`
	FillerNames   []string      `yaml:"filler_names"`
	GenericTraits []string      `yaml:"generic_traits"`
	SampleCatalog []SampleEntry `yaml:"sample_catalog"`
}

type Thresholds struct {
	Advance float64 `yaml:"advance"`
	Regress float64 `yaml:"regress"`
}

// SampleEntry is one built-in practice identity from the embedded catalog.
type SampleEntry struct {
	Name        string   `yaml:"name"`
	Role        string   `yaml:"role"`
	Traits      []string `yaml:"traits"`
	StimulusURL string   `yaml:"stimulus_url"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envList reads a comma-separated environment variable into a slice,
// dropping empty entries.
func envList(key string) []string {
	var values []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

func Load() *Config {
	var training TrainingConfig
	if err := yaml.Unmarshal(trainingYAML, &training); err != nil {
		// Embedded file, so this can only fail on a bad edit at build time.
		panic("failed to unmarshal embedded training.yaml: " + err.Error())
	}

	return &Config{
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Web: WebConfig{
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
		},
		Stimulus: StimulusConfig{
			FallbackURL:    os.Getenv("STIMULUS_FALLBACK_URL"),
			CanvasSize:     envInt("STIMULUS_CANVAS_SIZE", 256),
			FetchTimeoutMS: envInt("STIMULUS_FETCH_TIMEOUT_MS", 10000),
		},
		OpenAI: OpenAIConfig{
			Token: os.Getenv("OPENAI_TOKEN"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
		},
		Training: training,
	}
}
