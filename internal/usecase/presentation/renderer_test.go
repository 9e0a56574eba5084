package presentation

import (
	"archive/zip"
	"bytes"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

func sampleMetadata() *entities.MeetingMetadata {
	return &entities.MeetingMetadata{
		Title:            "Q2 Planning",
		ShortDescription: "Quarterly planning session.",
		Description:      "The team walked through the Q2 roadmap and assigned owners.",
		Takeaways:        []string{"Billing ships first", "Alice owns migration"},
		ActionItems: []entities.ActionItem{
			{ID: "a1", Description: "Draft migration plan", Assignee: "Alice", Deadline: "2025-02-01T00:00:00Z", Status: entities.ActionItemStatusPending},
			{ID: "a2", Description: "Review rollout order", Assignee: "Bob", Deadline: "2025-02-03T00:00:00Z", Status: entities.ActionItemStatusInProgress},
		},
	}
}

func TestBuildDeckFixedOrder(t *testing.T) {
	r := NewRenderer()
	deck := r.BuildDeck(sampleMetadata())

	if len(deck) != 4 {
		t.Fatalf("expected 4 slides, got %d", len(deck))
	}
	if deck[0].Title != "Q2 Planning" {
		t.Errorf("slide 1 should carry the meeting title, got %q", deck[0].Title)
	}
	if deck[1].Title != "Summary" || deck[1].Lines[0] == "" {
		t.Errorf("slide 2 should carry the description, got %+v", deck[1])
	}
	if deck[2].Title != "Key Points" || len(deck[2].Lines) != 2 {
		t.Errorf("slide 3 should list takeaways, got %+v", deck[2])
	}
	if deck[3].Title != "Action Items" || deck[3].Lines[1] != "Review rollout order" {
		t.Errorf("slide 4 should list action item descriptions, got %+v", deck[3])
	}
}

func TestBuildDeckEmptyListsStillFourSlides(t *testing.T) {
	r := NewRenderer()
	meta := sampleMetadata()
	meta.Takeaways = nil
	meta.ActionItems = nil

	deck := r.BuildDeck(meta)
	if len(deck) != 4 {
		t.Fatalf("expected 4 slides regardless of list lengths, got %d", len(deck))
	}
	if len(deck[2].Lines) != 0 || len(deck[3].Lines) != 0 {
		t.Error("expected empty bullet lists for empty metadata lists")
	}
}

func TestRenderProducesValidArchive(t *testing.T) {
	r := NewRenderer()
	data, err := r.Render(sampleMetadata(), "m1")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("output is not a zip archive: %v", err)
	}

	slidePattern := regexp.MustCompile(`^ppt/slides/slide\d+\.xml$`)
	slides := 0
	seen := map[string]bool{}
	for _, f := range zr.File {
		seen[f.Name] = true
		if slidePattern.MatchString(f.Name) {
			slides++
		}
	}
	if slides != 4 {
		t.Errorf("expected 4 slide parts, got %d", slides)
	}
	for _, required := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"ppt/presentation.xml",
		"ppt/slideMasters/slideMaster1.xml",
		"ppt/slideLayouts/slideLayout1.xml",
		"ppt/theme/theme1.xml",
	} {
		if !seen[required] {
			t.Errorf("missing package part %s", required)
		}
	}
}

func TestRenderEscapesContent(t *testing.T) {
	r := NewRenderer()
	meta := sampleMetadata()
	meta.Title = `Budget <review> & "sync"`

	data, err := r.Render(meta, "m1")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("output is not a zip archive: %v", err)
	}
	var slide1 string
	for _, f := range zr.File {
		if f.Name == "ppt/slides/slide1.xml" {
			rc, err := f.Open()
			if err != nil {
				t.Fatalf("open slide part: %v", err)
			}
			raw, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				t.Fatalf("read slide part: %v", err)
			}
			slide1 = string(raw)
		}
	}
	if !strings.Contains(slide1, "Budget &lt;review&gt; &amp; &quot;sync&quot;") {
		t.Error("expected escaped title text in slide XML")
	}
}

func TestRenderNilMetadata(t *testing.T) {
	r := NewRenderer()
	if _, err := r.Render(nil, "m1"); err == nil {
		t.Fatal("expected error for nil metadata")
	}
}

func TestRenderDeterministicSlideCountAcrossSizes(t *testing.T) {
	r := NewRenderer()
	meta := sampleMetadata()
	for i := 0; i < 40; i++ {
		meta.Takeaways = append(meta.Takeaways, "Another takeaway that will overflow the slide")
	}

	data, err := r.Render(meta, "m1")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("output is not a zip archive: %v", err)
	}
	slides := 0
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			slides++
		}
	}
	if slides != 4 {
		t.Errorf("overflowing content must not add slides, got %d", slides)
	}
}
