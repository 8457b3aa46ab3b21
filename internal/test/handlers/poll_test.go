package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"sketchmachine-backend/internal/handlers"
)

type fakePollStarter struct {
	jobID     uuid.UUID
	statusURL string
	called    bool
}

func (f *fakePollStarter) StartPoll(jobID uuid.UUID, statusURL string) {
	f.called = true
	f.jobID = jobID
	f.statusURL = statusURL
}

func postPoll(h *handlers.PollHandler, body string) *httptest.ResponseRecorder {
	router := gin.New()
	router.POST("/internal/poll", h.TriggerPoll)

	req := httptest.NewRequest(http.MethodPost, "/internal/poll", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTriggerPoll_Accepted(t *testing.T) {
	starter := &fakePollStarter{}
	h := handlers.NewPollHandler(starter)
	jobID := uuid.New()

	w := postPoll(h, `{"job_id":"`+jobID.String()+`","status_url":"https://provider/job-sets/set-1"}`)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, starter.called)
	assert.Equal(t, jobID, starter.jobID)
	assert.Equal(t, "https://provider/job-sets/set-1", starter.statusURL)
}

func TestTriggerPoll_InvalidJobID(t *testing.T) {
	starter := &fakePollStarter{}
	h := handlers.NewPollHandler(starter)

	w := postPoll(h, `{"job_id":"nope","status_url":"https://provider/job-sets/set-1"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, starter.called)
}

func TestTriggerPoll_MissingStatusURL(t *testing.T) {
	starter := &fakePollStarter{}
	h := handlers.NewPollHandler(starter)

	w := postPoll(h, `{"job_id":"`+uuid.New().String()+`"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, starter.called)
}

func TestTriggerPoll_MalformedBody(t *testing.T) {
	starter := &fakePollStarter{}
	h := handlers.NewPollHandler(starter)

	w := postPoll(h, `{`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, starter.called)
}
