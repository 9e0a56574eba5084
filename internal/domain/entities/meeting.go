package entities

// TranscriptBlock is a single utterance in a meeting transcript.
// Blocks are immutable and ordered chronologically.
type TranscriptBlock struct {
	PersonName string `json:"personName" validate:"required"`
	Timestamp  string `json:"timestamp" validate:"required"`
	Text       string `json:"text" validate:"required"`
}

// SummaryRequest is the inbound webhook payload asking for a meeting
// to be summarized. It is consumed once per pipeline invocation and
// never persisted by this service.
type SummaryRequest struct {
	ID           string            `json:"id" validate:"required"`
	Email        string            `json:"email" validate:"required,email"`
	StartTime    string            `json:"startTime" validate:"required"`
	EndTime      string            `json:"endTime" validate:"required"`
	Participants []string          `json:"participants" validate:"dive,required"`
	Transcript   []TranscriptBlock `json:"transcript" validate:"dive"`
}
