package presentation

import (
	"fmt"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// Slide is one rendered slide: a title and a list of body lines.
type Slide struct {
	Title string
	Lines []string
}

// Renderer turns meeting metadata into a PowerPoint deck. Layout is
// fixed: positions, sizes and fonts are constants, and long lists may
// overflow the slide. That is accepted behavior.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// BuildDeck lays out the fixed four-slide sequence for a meeting:
// title, summary, key points, action items. The slide count never
// varies with content; empty lists produce slides with no bullets.
func (r *Renderer) BuildDeck(meta *entities.MeetingMetadata) []Slide {
	takeaways := make([]string, 0, len(meta.Takeaways))
	takeaways = append(takeaways, meta.Takeaways...)

	actions := make([]string, 0, len(meta.ActionItems))
	for _, item := range meta.ActionItems {
		actions = append(actions, item.Description)
	}

	return []Slide{
		{Title: meta.Title, Lines: []string{meta.ShortDescription}},
		{Title: "Summary", Lines: []string{meta.Description}},
		{Title: "Key Points", Lines: takeaways},
		{Title: "Action Items", Lines: actions},
	}
}

// Render produces the serialized .pptx artifact for a meeting.
func (r *Renderer) Render(meta *entities.MeetingMetadata, meetingID string) ([]byte, error) {
	if meta == nil {
		return nil, fmt.Errorf("render presentation for %s: nil metadata", meetingID)
	}
	deck := r.BuildDeck(meta)
	data, err := writePptx(deck)
	if err != nil {
		return nil, fmt.Errorf("render presentation for %s: %w", meetingID, err)
	}
	return data, nil
}
