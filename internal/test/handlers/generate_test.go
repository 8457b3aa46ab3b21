package handlers_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"sketchmachine-backend/internal/dispatch"
	"sketchmachine-backend/internal/handlers"
	"sketchmachine-backend/internal/models"
	"sketchmachine-backend/internal/packets"
	"sketchmachine-backend/internal/seedbank"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSeeds struct {
	result *seedbank.Result
	err    error
	called bool
}

func (f *fakeSeeds) Resolve(category, sessionID string) (*seedbank.Result, error) {
	f.called = true
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakePackets struct {
	imageErr error
	videoErr error
}

func (f *fakePackets) SelectImage(vector string, sketchType *string) (*models.ImagePacket, error) {
	if f.imageErr != nil {
		return nil, f.imageErr
	}
	return &models.ImagePacket{ID: uuid.New(), Vector: vector, AestheticPreset: "handheld"}, nil
}

func (f *fakePackets) SelectVideo(vector string, sketchType *string) (*models.VideoPacket, error) {
	if f.videoErr != nil {
		return nil, f.videoErr
	}
	return &models.VideoPacket{ID: uuid.New(), Vector: vector, MotionProfile: "slow_push"}, nil
}

type fakeNarrative struct{}

func (f *fakeNarrative) Compose(ctx context.Context, premise, role, vector string) models.Narrative {
	return models.Narrative{Title: "t", Verdict: "v", Captions: []string{"a", "b", "c"}}
}

type fakeJobCreator struct {
	created *models.Job
	err     error
}

func (f *fakeJobCreator) CreateJob(job *models.Job) error {
	if f.err != nil {
		return f.err
	}
	f.created = job
	return nil
}

type fakeDispatcher struct {
	name    string
	input   *dispatch.SubmitInput
	outcome *dispatch.Outcome
	err     error
}

func (f *fakeDispatcher) Submit(ctx context.Context, in *dispatch.SubmitInput) (*dispatch.Outcome, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	if f.outcome != nil {
		return f.outcome, nil
	}
	return &dispatch.Outcome{Provider: f.name, TaskID: "task-" + f.name}, nil
}

type generateFixture struct {
	seeds    *fakeSeeds
	store    *fakeJobCreator
	standard *fakeDispatcher
	premium  *fakeDispatcher
	handler  *handlers.GenerateHandler
}

func newGenerateFixture(premiumEnabled bool) *generateFixture {
	f := &generateFixture{
		seeds:    &fakeSeeds{err: seedbank.ErrNoSeedAvailable},
		store:    &fakeJobCreator{},
		standard: &fakeDispatcher{name: "kie"},
		premium:  &fakeDispatcher{name: "higgsfield"},
	}
	f.handler = handlers.NewGenerateHandler(
		f.seeds, &fakePackets{}, &fakeNarrative{}, f.store,
		f.standard, f.premium, premiumEnabled,
		"https://project.supabase.co", zerolog.Nop(),
	)
	return f
}

func postGenerate(t *testing.T, h *handlers.GenerateHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.POST("/api/v1/sketches/generate", h.Generate)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sketches/generate", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGenerate_ViralRequestRunsStandardLane(t *testing.T) {
	f := newGenerateFixture(true)
	jobID := uuid.New()

	w := postGenerate(t, f.handler, `{
		"sketchId": "`+jobID.String()+`",
		"userId": "`+uuid.New().String()+`",
		"type": "celit_viral",
		"reality_vectors": ["WORK_VECTOR"],
		"cinema_lane": false
	}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.GenerateResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, jobID.String(), resp.JobID)
	assert.Equal(t, "task-kie", resp.TaskID)

	assert.NotNil(t, f.standard.input)
	assert.Nil(t, f.premium.input)
	assert.Equal(t, "WORK_VECTOR", f.standard.input.Vector)

	if assert.NotNil(t, f.store.created) {
		assert.Equal(t, jobID, f.store.created.ID)
		assert.Equal(t, models.JobStatusPending, f.store.created.Status)
	}
}

func TestGenerate_CinemaLaneWithoutFlagStaysStandard(t *testing.T) {
	f := newGenerateFixture(false)

	w := postGenerate(t, f.handler, `{
		"reality_vectors": ["LIFE_VECTOR"],
		"cinema_lane": true
	}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, f.standard.input)
	assert.Nil(t, f.premium.input)
}

func TestGenerate_CinemaLaneWithFlagRunsPremium(t *testing.T) {
	f := newGenerateFixture(true)

	w := postGenerate(t, f.handler, `{
		"reality_vectors": ["LIFE_VECTOR"],
		"cinema_lane": true,
		"avatarId": "avatar-7"
	}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, f.standard.input)
	if assert.NotNil(t, f.premium.input) {
		assert.Equal(t, "https://project.supabase.co/storage/v1/object/public/avatars/avatar-7.png", f.premium.input.AvatarURL)
	}
}

func TestGenerate_InvalidSketchID(t *testing.T) {
	f := newGenerateFixture(true)

	w := postGenerate(t, f.handler, `{"sketchId": "not-a-uuid"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, f.store.created)
	assert.Nil(t, f.standard.input)
}

func TestGenerate_MalformedBody(t *testing.T) {
	f := newGenerateFixture(true)

	w := postGenerate(t, f.handler, `{`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerate_SuppliedPremiseSkipsSeedBank(t *testing.T) {
	f := newGenerateFixture(true)

	w := postGenerate(t, f.handler, `{
		"premise": "a man argues with a vending machine",
		"reality_vectors": ["WORK_VECTOR"]
	}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, f.seeds.called)
	assert.Equal(t, "a man argues with a vending machine", f.standard.input.Premise)
}

func TestGenerate_EmptySeedBankDegradesToFallbackPremise(t *testing.T) {
	f := newGenerateFixture(true)
	f.seeds.err = seedbank.ErrNoSeedAvailable

	w := postGenerate(t, f.handler, `{"reality_vectors": ["WORK_VECTOR"]}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, f.seeds.called)
	assert.Contains(t, f.standard.input.Premise, "open-plan office")
}

func TestGenerate_SeedResultFillsRoleAndType(t *testing.T) {
	f := newGenerateFixture(true)
	premiseID := uuid.New()
	f.seeds.err = nil
	f.seeds.result = &seedbank.Result{
		Premise: models.Premise{
			ID:         premiseID,
			Category:   "WORK_VECTOR",
			Premise:    "a quarterly review conducted entirely in mime",
			Role:       sql.NullString{String: "a regional manager", Valid: true},
			SketchType: sql.NullString{String: "breaking_news", Valid: true},
		},
		Scene: models.Scene{ID: uuid.New(), PremiseID: premiseID, Setting: "a conference room"},
	}

	w := postGenerate(t, f.handler, `{"reality_vectors": ["WORK_VECTOR"]}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a quarterly review conducted entirely in mime", f.standard.input.Premise)
	assert.Equal(t, "a regional manager", f.standard.input.Role)
}

func TestGenerate_NoVectorsDefaultsToUniversal(t *testing.T) {
	f := newGenerateFixture(true)

	w := postGenerate(t, f.handler, `{"premise": "p"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.VectorUniversal, f.standard.input.Vector)
}

func TestGenerate_PacketSelectionFailure(t *testing.T) {
	f := newGenerateFixture(true)
	f.handler = handlers.NewGenerateHandler(
		f.seeds, &fakePackets{imageErr: packets.ErrNoFallbackPacket}, &fakeNarrative{}, f.store,
		f.standard, f.premium, true, "https://project.supabase.co", zerolog.Nop(),
	)

	w := postGenerate(t, f.handler, `{"premise": "p"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Nil(t, f.store.created)
}

func TestGenerate_DispatchFailure(t *testing.T) {
	f := newGenerateFixture(true)
	f.standard.err = errors.New("provider down")

	w := postGenerate(t, f.handler, `{"premise": "p"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// The job row exists; the dispatcher owns marking it failed.
	assert.NotNil(t, f.store.created)
}
