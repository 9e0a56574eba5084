package runcontext

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type keyContext string

var (
	keyRunID        keyContext = "run_id"
	keyMeetingID    keyContext = "meeting_id"
	keyRunStartTime keyContext = "run_start_time"
)

// defaultDeadline bounds the whole sequential pipeline chain. The
// pipeline itself defines no per-stage timeout; the caller imposes
// one on the full run.
const defaultDeadline = 2 * time.Minute

// RunMetadata holds metadata for one pipeline run
type RunMetadata struct {
	RunID     uuid.UUID
	MeetingID string
	StartTime time.Time
}

// Begin derives a context carrying run metadata and the whole-run
// deadline. The returned cancel must be called when the run ends.
func Begin(parentCtx context.Context, runID uuid.UUID, meetingID string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parentCtx, defaultDeadline)

	ctx = context.WithValue(ctx, keyRunID, runID)
	ctx = context.WithValue(ctx, keyMeetingID, meetingID)
	ctx = context.WithValue(ctx, keyRunStartTime, time.Now())

	return ctx, cancel
}

// RunID extracts the run ID from context
func RunID(ctx context.Context) (uuid.UUID, bool) {
	runID, ok := ctx.Value(keyRunID).(uuid.UUID)
	return runID, ok
}

// MeetingID extracts the meeting ID from context
func MeetingID(ctx context.Context) (string, bool) {
	meetingID, ok := ctx.Value(keyMeetingID).(string)
	return meetingID, ok
}

// StartTime extracts the run start time from context
func StartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyRunStartTime).(time.Time)
	return startTime, ok
}

// Metadata extracts all run metadata from context
func Metadata(ctx context.Context) *RunMetadata {
	runID, _ := RunID(ctx)
	meetingID, _ := MeetingID(ctx)
	startTime, _ := StartTime(ctx)

	return &RunMetadata{
		RunID:     runID,
		MeetingID: meetingID,
		StartTime: startTime,
	}
}
