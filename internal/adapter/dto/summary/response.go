package summary

// WebhookResponse is the terminal response of the summarization
// webhook: success carries a null error, failure carries either a
// fixed message string or a structured validation error.
type WebhookResponse struct {
	Success bool        `json:"success"`
	Error   interface{} `json:"error"`
}

// RunResponse is one audit record returned by the runs endpoint.
type RunResponse struct {
	ID         string      `json:"id"`
	MeetingID  string      `json:"meetingId"`
	Stage      string      `json:"stage"`
	Status     string      `json:"status"`
	Error      interface{} `json:"error,omitempty"`
	StartedAt  string      `json:"startedAt"`
	FinishedAt string      `json:"finishedAt,omitempty"`
}
