package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-insights/internal/usecase/presentation"
	"github.com/johnquangdev/meeting-insights/internal/usecase/summary"
)

const stubMetadataJSON = `{
  "title": "Q2 Planning",
  "shortDescription": "Quarterly planning session.",
  "description": "The team walked through the Q2 roadmap and assigned owners for each initiative.",
  "takeaways": ["Billing flow ships first"],
  "actionItems": [
    {"id": "a1", "description": "Draft migration plan", "assignee": "Alice", "deadline": "2025-02-01T00:00:00Z", "status": "pending"}
  ],
  "moodGraph": {"aspects": [{"mood": "focused", "score": 0.8}], "timestamp": "2025-01-15T10:30:00Z"},
  "timeline": [{"startTime": "2025-01-15T10:00:00Z", "endTime": "2025-01-15T10:20:00Z", "topic": "Roadmap", "speaker": "Alice"}],
  "participantEngagement": [{"participantId": "Alice", "speakingTime": 600, "interventionCount": 12, "engagementScore": 0.9}],
  "sentimentOverTime": {"overallSentiment": 0.6, "sentimentPoints": [{"timestamp": "2025-01-15T10:10:00Z", "sentiment": 0.5}]},
  "questionTracker": [{"id": "q1", "text": "When does billing ship?", "askedBy": "Bob", "timestamp": "2025-01-15T10:05:00Z", "answered": true}],
  "resourceLinks": [{"id": "r1", "url": "https://example.com/roadmap", "title": "Roadmap doc", "type": "document", "mentionedAt": "2025-01-15T10:02:00Z"}],
  "meetingEfficiencyScore": 0.75
}`

const validWebhookBody = `{
  "id": "m1",
  "email": "a@b.com",
  "startTime": "2025-01-15T10:00:00Z",
  "endTime": "2025-01-15T11:00:00Z",
  "participants": ["Alice"],
  "transcript": [{"personName": "Alice", "timestamp": "2025-01-15T10:00:00Z", "text": "hello"}]
}`

type stubAI struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
}

func (s *stubAI) Complete(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.response, s.err
}

func (s *stubAI) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubBackend struct {
	mu        sync.Mutex
	upsertErr error
	uploadErr error
	upserts   int
	uploads   int
}

func (s *stubBackend) UpsertMeeting(ctx context.Context, payload map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	return s.upsertErr
}

func (s *stubBackend) Upload(ctx context.Context, objectName string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads++
	return s.uploadErr
}

func (s *stubBackend) counts() (upserts, uploads int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upserts, s.uploads
}

type webhookFixture struct {
	handler *Webhook
	ai      *stubAI
	backend *stubBackend
	store   cache.Store
}

func newWebhookFixture() *webhookFixture {
	ai := &stubAI{response: stubMetadataJSON}
	backend := &stubBackend{}
	store := cache.NewMemoryStore()
	pipeline := summary.NewPipeline(summary.NewSchemaValidator(), ai, backend, presentation.NewRenderer(), backend, nil, zap.NewNop())
	return &webhookFixture{
		handler: NewWebhook(pipeline, store, zap.NewNop()),
		ai:      ai,
		backend: backend,
		store:   store,
	}
}

func postWebhook(t *testing.T, h *Webhook, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/meeting-summary", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h.HandleMeetingSummary(c))
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWebhookEndToEndSuccess(t *testing.T) {
	f := newWebhookFixture()

	rec := postWebhook(t, f.handler, validWebhookBody)
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeResponse(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Nil(t, body["error"])
	upserts, uploads := f.backend.counts()
	assert.Equal(t, 1, upserts)
	assert.Equal(t, 1, uploads)
}

func TestWebhookInvalidRequest(t *testing.T) {
	f := newWebhookFixture()
	body := strings.Replace(validWebhookBody, `"a@b.com"`, `"not-an-email"`, 1)

	rec := postWebhook(t, f.handler, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "Invalid request", resp["error"])
	assert.Equal(t, 0, f.ai.callCount())
}

func TestWebhookMalformedBody(t *testing.T) {
	f := newWebhookFixture()

	rec := postWebhook(t, f.handler, `{"id": 42}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "Invalid request", resp["error"])
}

func TestWebhookAIOutputRejected(t *testing.T) {
	f := newWebhookFixture()
	f.ai.response = `{"title": "only a title"}`

	rec := postWebhook(t, f.handler, validWebhookBody)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, false, resp["success"])
	assert.NotNil(t, resp["error"])
	upserts, _ := f.backend.counts()
	assert.Equal(t, 0, upserts)
}

func TestWebhookUploadFailureAfterPersist(t *testing.T) {
	f := newWebhookFixture()
	f.backend.uploadErr = errors.New("presign denied")

	rec := postWebhook(t, f.handler, validWebhookBody)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, "Failed to upload presentation", resp["error"])
	upserts, _ := f.backend.counts()
	assert.Equal(t, 1, upserts, "upsert must happen exactly once before the failed upload")
}

func TestWebhookIdempotentReplay(t *testing.T) {
	f := newWebhookFixture()

	first := postWebhook(t, f.handler, validWebhookBody)
	assert.Equal(t, http.StatusOK, first.Code)

	second := postWebhook(t, f.handler, validWebhookBody)
	assert.Equal(t, http.StatusOK, second.Code)
	resp := decodeResponse(t, second)
	assert.Equal(t, true, resp["success"])

	assert.Equal(t, 1, f.ai.callCount(), "duplicate delivery must not re-run the pipeline")
	upserts, _ := f.backend.counts()
	assert.Equal(t, 1, upserts)
}

func TestWebhookFailuresAreNotCached(t *testing.T) {
	f := newWebhookFixture()
	f.backend.upsertErr = errors.New("backend down")

	first := postWebhook(t, f.handler, validWebhookBody)
	assert.Equal(t, http.StatusBadGateway, first.Code)

	f.backend.upsertErr = nil
	second := postWebhook(t, f.handler, validWebhookBody)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 2, f.ai.callCount(), "failed runs must not block a retry delivery")
}

func TestWebhookConcurrentRequestsAreIndependent(t *testing.T) {
	f := newWebhookFixture()

	bodyA := validWebhookBody
	bodyB := strings.Replace(validWebhookBody, `"m1"`, `"m2"`, 1)

	done := make(chan struct{}, 2)
	for _, body := range []string{bodyA, bodyB} {
		go func(b string) {
			defer func() { done <- struct{}{} }()
			rec := postWebhook(t, f.handler, b)
			assert.Equal(t, http.StatusOK, rec.Code)
		}(body)
	}
	<-done
	<-done

	upserts, _ := f.backend.counts()
	assert.Equal(t, 2, upserts)
}

func TestRunResponseMapping(t *testing.T) {
	run := entities.NewPipelineRun("m1", "a@b.com")
	run.Fail("persisted", "Failed to update meeting metadata")

	resp := runResponse(*run)
	assert.Equal(t, "m1", resp.MeetingID)
	assert.Equal(t, "failed", resp.Status)
	assert.Equal(t, "persisted", resp.Stage)
	assert.Equal(t, "Failed to update meeting metadata", resp.Error)
	assert.NotEmpty(t, resp.FinishedAt)
}
