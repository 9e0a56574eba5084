package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PipelineRunStatus is the terminal disposition of a pipeline run.
type PipelineRunStatus string

const (
	PipelineRunStatusRunning   PipelineRunStatus = "running"
	PipelineRunStatusSucceeded PipelineRunStatus = "succeeded"
	PipelineRunStatusFailed    PipelineRunStatus = "failed"
)

// PipelineRun is the audit record of one summarization pipeline
// invocation. It is written as the pipeline advances and never read
// back by the pipeline itself.
type PipelineRun struct {
	ID          uuid.UUID         `json:"id" gorm:"type:uuid;primary_key"`
	MeetingID   string            `json:"meeting_id" gorm:"type:varchar(255);not null;index"`
	Email       string            `json:"email" gorm:"type:varchar(255)"`
	Stage       string            `json:"stage" gorm:"type:varchar(50);not null"`
	Status      PipelineRunStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	ErrorDetail datatypes.JSON    `json:"error_detail,omitempty" gorm:"type:jsonb"`
	StartedAt   time.Time         `json:"started_at" gorm:"not null"`
	FinishedAt  *time.Time        `json:"finished_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time         `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for PipelineRun
func (PipelineRun) TableName() string {
	return "pipeline_runs"
}

// NewPipelineRun creates a run record in the running state.
func NewPipelineRun(meetingID, email string) *PipelineRun {
	return &PipelineRun{
		ID:        uuid.New(),
		MeetingID: meetingID,
		Email:     email,
		Status:    PipelineRunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
}

// Succeed marks the run as finished successfully.
func (r *PipelineRun) Succeed() {
	now := time.Now().UTC()
	r.Status = PipelineRunStatusSucceeded
	r.FinishedAt = &now
}

// Fail marks the run as terminally failed at the given stage. The
// reason may be a plain string or any JSON-serializable error detail.
func (r *PipelineRun) Fail(stage string, reason interface{}) {
	now := time.Now().UTC()
	r.Stage = stage
	r.Status = PipelineRunStatusFailed
	r.FinishedAt = &now
	if reason != nil {
		if detail, err := json.Marshal(reason); err == nil {
			r.ErrorDetail = datatypes.JSON(detail)
		}
	}
}
