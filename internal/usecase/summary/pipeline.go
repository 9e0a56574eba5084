package summary

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// Stage identifies where in the pipeline a run currently is.
type Stage string

const (
	StageReceivedRequest       Stage = "received_request"
	StageRequestValidated      Stage = "request_validated"
	StageAIInvoked             Stage = "ai_invoked"
	StageOutputValidated       Stage = "output_validated"
	StagePersisted             Stage = "persisted"
	StagePresentationGenerated Stage = "presentation_generated"
	StageUploaded              Stage = "uploaded"
	StageSucceeded             Stage = "succeeded"
	StageFailed                Stage = "failed"
)

const (
	msgInvalidRequest     = "Invalid request"
	msgAIFailed           = "Failed to generate meeting metadata"
	msgPersistFailed      = "Failed to update meeting metadata"
	msgPresentationFailed = "Failed to generate presentation"
	msgUploadFailed       = "Failed to upload presentation"
)

// Result is the terminal outcome of a pipeline run. Error is nil on
// success, a fixed string for upstream failures, or a *ValidationError
// when the request or the generated metadata failed schema validation.
type Result struct {
	Success  bool        `json:"success"`
	Error    interface{} `json:"error"`
	FailedAt Stage       `json:"-"`
}

// Summarizer produces the raw model output for a prompt.
type Summarizer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// MetadataStore upserts meeting metadata into the backend of record.
type MetadataStore interface {
	UpsertMeeting(ctx context.Context, payload map[string]interface{}) error
}

// Renderer turns validated metadata into a presentation binary.
type Renderer interface {
	Render(meta *entities.MeetingMetadata, meetingID string) ([]byte, error)
}

// ArtifactUploader transfers a rendered artifact to storage.
type ArtifactUploader interface {
	Upload(ctx context.Context, objectName string, data []byte) error
}

// RunRecorder persists stage transitions for auditing. Implementations
// must tolerate being called from a failing pipeline; recording errors
// are logged and never affect the run outcome.
type RunRecorder interface {
	Record(ctx context.Context, run *entities.PipelineRun) error
}

// Pipeline drives a summary request through validation, AI analysis,
// persistence, rendering and upload. Stages run strictly in order and
// a failed stage terminates the run with no retry or compensation.
type Pipeline struct {
	schema   *SchemaValidator
	ai       Summarizer
	store    MetadataStore
	renderer Renderer
	uploader ArtifactUploader
	recorder RunRecorder
	logger   *zap.Logger
}

func NewPipeline(schema *SchemaValidator, ai Summarizer, store MetadataStore, renderer Renderer, uploader ArtifactUploader, recorder RunRecorder, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		schema:   schema,
		ai:       ai,
		store:    store,
		renderer: renderer,
		uploader: uploader,
		recorder: recorder,
		logger:   logger,
	}
}

// Process runs the full pipeline for one request and returns the
// terminal result. It never panics on collaborator failure; every
// failure path maps to a Result with Success=false.
func (p *Pipeline) Process(ctx context.Context, req *entities.SummaryRequest) Result {
	run := entities.NewPipelineRun(req.ID, req.Email)
	log := p.logger.With(zap.String("meetingId", req.ID))

	if verr := p.schema.ValidateRequest(req); verr != nil {
		log.Warn("request validation failed", zap.Any("fields", verr.Fields))
		// The caller gets the fixed string; field detail stays in the
		// log and the run record.
		res := p.fail(ctx, run, StageReceivedRequest, verr.WithMessage(msgInvalidRequest))
		res.Error = msgInvalidRequest
		return res
	}
	p.advance(ctx, run, StageRequestValidated)

	prompt := BuildPrompt(req.Transcript)
	raw, err := p.ai.Complete(ctx, prompt)
	if err != nil {
		log.Error("ai completion failed", zap.Error(err))
		return p.fail(ctx, run, StageAIInvoked, msgAIFailed)
	}
	p.advance(ctx, run, StageAIInvoked)

	meta, verr := p.schema.ValidateStrictMetadata([]byte(raw))
	if verr != nil {
		log.Warn("ai output failed validation", zap.Any("fields", verr.Fields))
		return p.fail(ctx, run, StageOutputValidated, verr)
	}
	p.advance(ctx, run, StageOutputValidated)

	payload, err := upsertPayload(req, meta)
	if err != nil {
		log.Error("building upsert payload failed", zap.Error(err))
		return p.fail(ctx, run, StagePersisted, msgPersistFailed)
	}
	if err := p.store.UpsertMeeting(ctx, payload); err != nil {
		log.Error("metadata upsert failed", zap.Error(err))
		return p.fail(ctx, run, StagePersisted, msgPersistFailed)
	}
	p.advance(ctx, run, StagePersisted)

	deck, err := p.renderer.Render(meta, req.ID)
	if err != nil {
		log.Error("presentation rendering failed", zap.Error(err))
		return p.fail(ctx, run, StagePresentationGenerated, msgPresentationFailed)
	}
	p.advance(ctx, run, StagePresentationGenerated)

	objectName := fmt.Sprintf("presentation-%s.pptx", req.ID)
	if err := p.uploader.Upload(ctx, objectName, deck); err != nil {
		log.Error("presentation upload failed", zap.String("object", objectName), zap.Error(err))
		return p.fail(ctx, run, StageUploaded, msgUploadFailed)
	}
	p.advance(ctx, run, StageUploaded)

	run.Succeed()
	p.record(ctx, run)
	log.Info("pipeline succeeded", zap.String("object", objectName))
	return Result{Success: true, Error: nil}
}

func (p *Pipeline) advance(ctx context.Context, run *entities.PipelineRun, stage Stage) {
	run.Stage = string(stage)
	p.record(ctx, run)
}

func (p *Pipeline) fail(ctx context.Context, run *entities.PipelineRun, at Stage, reason interface{}) Result {
	run.Fail(string(at), reason)
	p.record(ctx, run)
	return Result{Success: false, Error: reason, FailedAt: at}
}

func (p *Pipeline) record(ctx context.Context, run *entities.PipelineRun) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.Record(ctx, run); err != nil {
		p.logger.Warn("recording pipeline run failed", zap.String("meetingId", run.MeetingID), zap.Error(err))
	}
}

// upsertPayload flattens the validated metadata next to the request
// identity fields, matching the backend upsert body {id, email, ...}.
func upsertPayload(req *entities.SummaryRequest, meta *entities.MeetingMetadata) (map[string]interface{}, error) {
	flat, err := meta.AsMap()
	if err != nil {
		return nil, err
	}
	flat["id"] = req.ID
	flat["email"] = req.Email
	return flat, nil
}
