package entities

import "encoding/json"

// MeetingMetadata is the structured analysis the LLM produces for one
// meeting. It is validated once after generation and then forwarded
// unmodified to the metadata store and the presentation renderer.
//
// All timestamp/date fields are ISO-8601 strings. That contract is
// communicated to the model in the prompt; here they are only checked
// for non-emptiness.
type MeetingMetadata struct {
	Title                  string                  `json:"title"`
	ShortDescription       string                  `json:"shortDescription"`
	Description            string                  `json:"description"`
	Takeaways              []string                `json:"takeaways"`
	ActionItems            []ActionItem            `json:"actionItems" validate:"dive"`
	MoodGraph              MoodGraph               `json:"moodGraph"`
	Timeline               []TimelineEntry         `json:"timeline" validate:"dive"`
	ParticipantEngagement  []ParticipantEngagement `json:"participantEngagement" validate:"dive"`
	SentimentOverTime      SentimentOverTime       `json:"sentimentOverTime"`
	QuestionTracker        []TrackedQuestion       `json:"questionTracker" validate:"dive"`
	ResourceLinks          []ResourceLink          `json:"resourceLinks" validate:"dive"`
	MeetingEfficiencyScore float64                 `json:"meetingEfficiencyScore"`
}

// AsMap round-trips the metadata through JSON into a generic map,
// keyed by the wire field names. Used to splice identity fields into
// the backend upsert body.
func (m *MeetingMetadata) AsMap() (map[string]interface{}, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	out := make(map[string]interface{}, len(MetadataFieldNames)+2)
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MeetingMetadataPatch is the partial variant of MeetingMetadata:
// every top-level field is optional, but a present field must still
// satisfy the same inner constraints as the strict shape. Used to
// validate partial metadata updates forwarded to the backend.
type MeetingMetadataPatch struct {
	Title                  *string                 `json:"title,omitempty"`
	ShortDescription       *string                 `json:"shortDescription,omitempty"`
	Description            *string                 `json:"description,omitempty"`
	Takeaways              []string                `json:"takeaways,omitempty"`
	ActionItems            []ActionItem            `json:"actionItems,omitempty" validate:"omitempty,dive"`
	MoodGraph              *MoodGraph              `json:"moodGraph,omitempty" validate:"omitempty"`
	Timeline               []TimelineEntry         `json:"timeline,omitempty" validate:"omitempty,dive"`
	ParticipantEngagement  []ParticipantEngagement `json:"participantEngagement,omitempty" validate:"omitempty,dive"`
	SentimentOverTime      *SentimentOverTime      `json:"sentimentOverTime,omitempty" validate:"omitempty"`
	QuestionTracker        []TrackedQuestion       `json:"questionTracker,omitempty" validate:"omitempty,dive"`
	ResourceLinks          []ResourceLink          `json:"resourceLinks,omitempty" validate:"omitempty,dive"`
	MeetingEfficiencyScore *float64                `json:"meetingEfficiencyScore,omitempty"`
}

// ActionItem is a task extracted from the meeting.
type ActionItem struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Assignee    string `json:"assignee"`
	Deadline    string `json:"deadline" validate:"required"`
	Status      string `json:"status" validate:"required,oneof=pending in_progress completed"`
}

// ActionItem status values. Closed set; anything else fails validation.
const (
	ActionItemStatusPending    = "pending"
	ActionItemStatusInProgress = "in_progress"
	ActionItemStatusCompleted  = "completed"
)

// MoodAspect scores one mood dimension of the meeting.
type MoodAspect struct {
	Mood  string  `json:"mood"`
	Score float64 `json:"score"`
}

// MoodGraph captures the overall mood of the meeting at a point in time.
type MoodGraph struct {
	Aspects   []MoodAspect `json:"aspects" validate:"dive"`
	Timestamp string       `json:"timestamp" validate:"required"`
}

// TimelineEntry is one topic segment of the meeting.
type TimelineEntry struct {
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime" validate:"required"`
	Topic     string `json:"topic"`
	Speaker   string `json:"speaker"`
}

// ParticipantEngagement holds per-participant engagement metrics.
type ParticipantEngagement struct {
	ParticipantID     string  `json:"participantId"`
	SpeakingTime      float64 `json:"speakingTime"`
	InterventionCount float64 `json:"interventionCount"`
	EngagementScore   float64 `json:"engagementScore"`
}

// SentimentPoint is sentiment measured at one moment of the meeting.
type SentimentPoint struct {
	Timestamp string  `json:"timestamp" validate:"required"`
	Sentiment float64 `json:"sentiment"`
}

// SentimentOverTime tracks sentiment across the whole meeting.
type SentimentOverTime struct {
	OverallSentiment float64          `json:"overallSentiment"`
	SentimentPoints  []SentimentPoint `json:"sentimentPoints" validate:"dive"`
}

// TrackedQuestion is a question raised during the meeting.
type TrackedQuestion struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	AskedBy   string `json:"askedBy"`
	Timestamp string `json:"timestamp" validate:"required"`
	Answered  bool   `json:"answered"`
}

// ResourceLink is a resource mentioned during the meeting.
type ResourceLink struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Type        string `json:"type" validate:"required,oneof=document website video other"`
	MentionedAt string `json:"mentionedAt" validate:"required"`
}

// ResourceLink type values. Closed set.
const (
	ResourceTypeDocument = "document"
	ResourceTypeWebsite  = "website"
	ResourceTypeVideo    = "video"
	ResourceTypeOther    = "other"
)

// MetadataFieldNames lists the top-level JSON keys the strict shape
// requires. The strict validator checks presence against this list
// before the typed unmarshal, since absent numbers and absent strings
// are indistinguishable from zero values afterwards.
var MetadataFieldNames = []string{
	"title",
	"shortDescription",
	"description",
	"takeaways",
	"actionItems",
	"moodGraph",
	"timeline",
	"participantEngagement",
	"sentimentOverTime",
	"questionTracker",
	"resourceLinks",
	"meetingEfficiencyScore",
}
