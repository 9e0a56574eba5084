package summary

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

type stubSummarizer struct {
	response string
	err      error
	calls    int
}

func (s *stubSummarizer) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	return s.response, s.err
}

type stubStore struct {
	err      error
	calls    int
	lastBody map[string]interface{}
}

func (s *stubStore) UpsertMeeting(ctx context.Context, payload map[string]interface{}) error {
	s.calls++
	s.lastBody = payload
	return s.err
}

type stubRenderer struct {
	data []byte
	err  error
}

func (s *stubRenderer) Render(meta *entities.MeetingMetadata, meetingID string) ([]byte, error) {
	return s.data, s.err
}

type stubUploader struct {
	err        error
	calls      int
	lastObject string
}

func (s *stubUploader) Upload(ctx context.Context, objectName string, data []byte) error {
	s.calls++
	s.lastObject = objectName
	return s.err
}

type pipelineFixture struct {
	pipeline *Pipeline
	ai       *stubSummarizer
	store    *stubStore
	uploader *stubUploader
}

func newPipelineFixture() *pipelineFixture {
	ai := &stubSummarizer{response: validMetadataJSON}
	store := &stubStore{}
	uploader := &stubUploader{}
	renderer := &stubRenderer{data: []byte("pptx-bytes")}
	return &pipelineFixture{
		pipeline: NewPipeline(NewSchemaValidator(), ai, store, renderer, uploader, nil, zap.NewNop()),
		ai:       ai,
		store:    store,
		uploader: uploader,
	}
}

func TestProcessHappyPath(t *testing.T) {
	f := newPipelineFixture()

	res := f.pipeline.Process(context.Background(), validRequest())
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Error != nil {
		t.Errorf("expected nil error on success, got %v", res.Error)
	}
	if f.store.calls != 1 {
		t.Errorf("expected one upsert, got %d", f.store.calls)
	}
	if f.uploader.lastObject != "presentation-m1.pptx" {
		t.Errorf("unexpected artifact name %q", f.uploader.lastObject)
	}
}

func TestProcessUpsertPayloadShape(t *testing.T) {
	f := newPipelineFixture()

	f.pipeline.Process(context.Background(), validRequest())
	body := f.store.lastBody
	if body["id"] != "m1" || body["email"] != "a@b.com" {
		t.Errorf("expected identity fields in upsert body, got id=%v email=%v", body["id"], body["email"])
	}
	if body["title"] != "Q2 Planning" {
		t.Errorf("expected metadata flattened into upsert body, got title=%v", body["title"])
	}
}

func TestProcessInvalidRequestShortCircuits(t *testing.T) {
	f := newPipelineFixture()
	req := validRequest()
	req.Email = "nope"

	res := f.pipeline.Process(context.Background(), req)
	if res.Success {
		t.Fatal("expected failure for invalid request")
	}
	if res.Error != "Invalid request" {
		t.Errorf("unexpected error %v", res.Error)
	}
	if f.ai.calls != 0 {
		t.Error("AI must not be invoked for an invalid request")
	}
	if f.store.calls != 0 {
		t.Error("store must not be called for an invalid request")
	}
}

func TestProcessAIError(t *testing.T) {
	f := newPipelineFixture()
	f.ai.err = errors.New("upstream 503")
	f.ai.response = ""

	res := f.pipeline.Process(context.Background(), validRequest())
	if res.Success {
		t.Fatal("expected failure when AI call errors")
	}
	if res.Error != "Failed to generate meeting metadata" {
		t.Errorf("unexpected error %v", res.Error)
	}
	if f.store.calls != 0 {
		t.Error("store must not be called when the AI call fails")
	}
}

func TestProcessAIOutputNotJSON(t *testing.T) {
	f := newPipelineFixture()
	f.ai.response = "Sure, here is your summary!"

	res := f.pipeline.Process(context.Background(), validRequest())
	if res.Success {
		t.Fatal("expected failure for non-JSON AI output")
	}
	if res.Error == nil {
		t.Error("expected non-nil error")
	}
	if f.store.calls != 0 {
		t.Error("store must not be called for invalid AI output")
	}
}

func TestProcessAIOutputMissingField(t *testing.T) {
	f := newPipelineFixture()
	f.ai.response = `{"title": "only a title"}`

	res := f.pipeline.Process(context.Background(), validRequest())
	if res.Success {
		t.Fatal("expected failure for AI output missing required fields")
	}
	if f.store.calls != 0 {
		t.Error("store must not be called when strict validation fails")
	}
}

func TestProcessPersistFailure(t *testing.T) {
	f := newPipelineFixture()
	f.store.err = errors.New("backend 500")

	res := f.pipeline.Process(context.Background(), validRequest())
	if res.Success {
		t.Fatal("expected failure when upsert fails")
	}
	if res.Error != "Failed to update meeting metadata" {
		t.Errorf("unexpected error %v", res.Error)
	}
	if f.uploader.calls != 0 {
		t.Error("upload must not run after a failed upsert")
	}
}

func TestProcessUploadFailureAfterPersist(t *testing.T) {
	f := newPipelineFixture()
	f.uploader.err = errors.New("presign denied")

	res := f.pipeline.Process(context.Background(), validRequest())
	if res.Success {
		t.Fatal("expected failure when upload fails")
	}
	if res.Error != "Failed to upload presentation" {
		t.Errorf("unexpected error %v", res.Error)
	}
	// The store write is not compensated; it must have happened
	// exactly once before the upload attempt.
	if f.store.calls != 1 {
		t.Errorf("expected exactly one upsert before upload failure, got %d", f.store.calls)
	}
}

func TestProcessRenderFailure(t *testing.T) {
	ai := &stubSummarizer{response: validMetadataJSON}
	store := &stubStore{}
	uploader := &stubUploader{}
	renderer := &stubRenderer{err: errors.New("template broken")}
	p := NewPipeline(NewSchemaValidator(), ai, store, renderer, uploader, nil, zap.NewNop())

	res := p.Process(context.Background(), validRequest())
	if res.Success {
		t.Fatal("expected failure when rendering fails")
	}
	if res.Error != "Failed to generate presentation" {
		t.Errorf("unexpected error %v", res.Error)
	}
	if uploader.calls != 0 {
		t.Error("upload must not run when rendering fails")
	}
}

type recordingRecorder struct {
	runs []entities.PipelineRun
}

func (r *recordingRecorder) Record(ctx context.Context, run *entities.PipelineRun) error {
	r.runs = append(r.runs, *run)
	return nil
}

func TestProcessRecordsStageTransitions(t *testing.T) {
	rec := &recordingRecorder{}
	ai := &stubSummarizer{response: validMetadataJSON}
	p := NewPipeline(NewSchemaValidator(), ai, &stubStore{}, &stubRenderer{data: []byte("x")}, &stubUploader{}, rec, zap.NewNop())

	p.Process(context.Background(), validRequest())
	if len(rec.runs) == 0 {
		t.Fatal("expected stage transitions to be recorded")
	}
	last := rec.runs[len(rec.runs)-1]
	if last.Status != entities.PipelineRunStatusSucceeded {
		t.Errorf("expected final record to be succeeded, got %s", last.Status)
	}
	if last.FinishedAt == nil {
		t.Error("expected finished timestamp on terminal record")
	}
}

func TestProcessRecorderErrorsDoNotFailRun(t *testing.T) {
	ai := &stubSummarizer{response: validMetadataJSON}
	p := NewPipeline(NewSchemaValidator(), ai, &stubStore{}, &stubRenderer{data: []byte("x")}, &stubUploader{}, failingRecorder{}, zap.NewNop())

	res := p.Process(context.Background(), validRequest())
	if !res.Success {
		t.Fatalf("recorder errors must not affect the run, got %+v", res)
	}
}

type failingRecorder struct{}

func (failingRecorder) Record(ctx context.Context, run *entities.PipelineRun) error {
	return errors.New("db down")
}
