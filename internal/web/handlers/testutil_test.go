package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"math/rand"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/memora-app/memora/internal/catalog"
	"github.com/memora-app/memora/internal/config"
	"github.com/memora-app/memora/internal/database/mock"
	"github.com/memora-app/memora/internal/identity"
	"github.com/memora-app/memora/internal/stimulus"
	"github.com/memora-app/memora/internal/training"
	"github.com/memora-app/memora/internal/web/middleware"
)

var (
	errListBroken = errors.New("identity store down")
	errSaveBroken = errors.New("progress store down")
)

// fixedStimuli serves a small checkerboard canvas whose shade depends on the
// name, so distorted variants never collide with the pristine image.
type fixedStimuli struct{}

func (fixedStimuli) StimulusFor(ctx context.Context, id *identity.Identity) (*stimulus.Stimulus, error) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	shade := uint8(80 + 10*(len(id.Name)%8))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			c := color.RGBA{R: shade, G: shade / 2, B: 255 - shade, A: 255}
			if (x/4+y/4)%2 == 1 {
				c = color.RGBA{R: 255 - shade, G: shade, B: 40, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return &stimulus.Stimulus{Image: img, SourceRef: "test://" + id.Name}, nil
}

func testTrainingConfig() *config.TrainingConfig {
	return &config.TrainingConfig{
		Thresholds:   config.Thresholds{Advance: 0.8, Regress: 0.5},
		TotalLessons: 10,
		FillerNames:  []string{"Alex", "Jordan", "Taylor", "Casey", "Morgan", "Riley"},
		GenericTraits: []string{
			"round face", "square jaw", "thin eyebrows", "wide smile",
		},
	}
}

type testEnv struct {
	identities *mock.MockIdentityStore
	progress   *mock.MockProgressStore
	router     *chi.Mux
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	identities := mock.NewMockIdentityStore()
	progress := mock.NewMockProgressStore()
	cfg := testTrainingConfig()
	difficulty := training.NewDifficultyManager(cfg.Thresholds)
	generator := training.NewGenerator(catalog.NewStoreCatalog(identities), fixedStimuli{}, nil, difficulty, cfg)
	tracker := training.NewTracker(progress, difficulty, cfg.TotalLessons)

	trainingHandler := NewTrainingHandler(generator, tracker)
	trainingHandler.newRand = func() *rand.Rand { return rand.New(rand.NewSource(1)) }
	identitiesHandler := NewIdentitiesHandler(identities, identities, nil)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.UserScope)
		r.Get("/identities", identitiesHandler.List)
		r.Post("/identities", identitiesHandler.Create)
		r.Get("/identities/{id}", identitiesHandler.Get)
		r.Put("/identities/{id}", identitiesHandler.Update)
		r.Delete("/identities/{id}", identitiesHandler.Delete)
		r.Post("/training/exercise", trainingHandler.GenerateExercise)
		r.Post("/training/result", trainingHandler.SubmitResult)
		r.Get("/training/progress", trainingHandler.GetProgress)
	})

	return &testEnv{identities: identities, progress: progress, router: r}
}

func (e *testEnv) request(t *testing.T, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
}

func (e *testEnv) addIdentity(userID, name string) identity.Identity {
	id := identity.Identity{
		ID:     "id-" + name,
		UserID: userID,
		Name:   name,
		Traits: []string{"distinctive " + name + " trait"},
	}
	e.identities.AddIdentity(id)
	return id
}
