package summary

import (
	"encoding/json"
	"strings"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// BuildPrompt renders a transcript into the instruction string sent
// to the LLM. Pure function of its input: identical transcripts yield
// byte-identical prompts.
func BuildPrompt(transcript []entities.TranscriptBlock) string {
	if transcript == nil {
		transcript = []entities.TranscriptBlock{}
	}
	transcriptJSON, _ := json.MarshalIndent(transcript, "", "  ")

	var sb strings.Builder
	sb.WriteString("You are an assistant that analyzes meeting transcripts and produces structured meeting metadata.\n\n")
	sb.WriteString("The transcript is an ordered list of utterances. Each entry has:\n")
	sb.WriteString("- personName: the name of the person speaking\n")
	sb.WriteString("- timestamp: when the utterance happened, as an ISO-8601 string\n")
	sb.WriteString("- text: what was said\n\n")
	sb.WriteString("Transcript:\n")
	sb.Write(transcriptJSON)
	sb.WriteString("\n\n")
	sb.WriteString("Analyze the transcript and respond with a single JSON object with exactly these fields:\n")
	sb.WriteString(`{
  "title": string, a concise title for the meeting,
  "shortDescription": string, a one-sentence summary,
  "description": string, a detailed summary of at least 400 characters,
  "takeaways": array of strings, the key takeaways,
  "actionItems": array of {"id": string, "description": string, "assignee": string, "deadline": ISO-8601 string, "status": "pending" | "in_progress" | "completed"},
  "moodGraph": {"aspects": array of {"mood": string, "score": number}, "timestamp": ISO-8601 string},
  "timeline": array of {"startTime": ISO-8601 string, "endTime": ISO-8601 string, "topic": string, "speaker": string},
  "participantEngagement": array of {"participantId": string, "speakingTime": number, "interventionCount": number, "engagementScore": number},
  "sentimentOverTime": {"overallSentiment": number, "sentimentPoints": array of {"timestamp": ISO-8601 string, "sentiment": number}},
  "questionTracker": array of {"id": string, "text": string, "askedBy": string, "timestamp": ISO-8601 string, "answered": boolean},
  "resourceLinks": array of {"id": string, "url": string, "title": string, "type": "document" | "website" | "video" | "other", "mentionedAt": ISO-8601 string},
  "meetingEfficiencyScore": number
}`)
	sb.WriteString("\n\nConstraints:\n")
	sb.WriteString("- Every field is required. Use empty arrays when nothing applies.\n")
	sb.WriteString("- All timestamps and date-like fields must be ISO-8601 strings.\n")
	sb.WriteString("- All scores must be numeric values.\n")
	sb.WriteString("- Do not fabricate facts that are not supported by the transcript.\n")
	sb.WriteString("- Do not include personal data beyond what already appears in the transcript.\n")
	sb.WriteString("- Do not produce offensive content.\n")
	sb.WriteString("- Respond with the JSON object only, no surrounding prose.\n")

	return sb.String()
}
