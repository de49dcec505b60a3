package model

import "strings"

// TimelineItemType is a closed set; every switch over it must carry a default
// arm that treats unknown values as plain timed content.
type TimelineItemType string

const (
	ItemAIScript   TimelineItemType = "ai-script"
	ItemContent    TimelineItemType = "content"
	ItemQuiz       TimelineItemType = "quiz"
	ItemPoll       TimelineItemType = "poll"
	ItemBreakout   TimelineItemType = "breakout"
	ItemBreak      TimelineItemType = "break"
	ItemGoogleForm TimelineItemType = "google-form"
)

// CourseAEPM is the one course whose breakout rounds loop twice before the
// session halts on a simulation-complete card.
const CourseAEPM = "course-aepm"

type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type Question struct {
	ID              string   `json:"id"`
	Text            string   `json:"text"`
	Options         []Option `json:"options"`
	CorrectOptionID string   `json:"correctOptionId"`
}

// TimelineItem is one entry of a module's playback timeline. Fields beyond
// ID/Type/Title are type-specific and optional.
type TimelineItem struct {
	ID              string           `json:"id"`
	Type            TimelineItemType `json:"type"`
	Title           string           `json:"title"`
	DurationMinutes float64          `json:"duration,omitempty"`
	Questions       []Question       `json:"questions,omitempty"`
	FileName        string           `json:"fileName,omitempty"`
	VideoFileName   string           `json:"videoFileName,omitempty"`
	GoogleFormURL   string           `json:"googleFormUrl,omitempty"`
}

type CourseModule struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Items []TimelineItem `json:"items"`
}

type Course struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Modules         []CourseModule `json:"modules"`
	MakeupFeeCents  int            `json:"makeupFeeCents,omitempty"`
	TermsVideoFile  string         `json:"termsVideoFile,omitempty"`
	DefaultLanguage string         `json:"defaultLanguage,omitempty"`
}

// Timeline flattens all modules' items into the single session playback
// order. The flattened order is fixed for the duration of a session.
func (c *Course) Timeline() []TimelineItem {
	var items []TimelineItem
	for _, m := range c.Modules {
		items = append(items, m.Items...)
	}
	return items
}

// FindModule returns the module with the given id, or nil.
func (c *Course) FindModule(moduleID string) *CourseModule {
	for i := range c.Modules {
		if c.Modules[i].ID == moduleID {
			return &c.Modules[i]
		}
	}
	return nil
}

// IsDWIProgram reports whether the course runs under the DWI/AEPM paperwork
// regime (the stricter field-completeness rule).
func IsDWIProgram(courseName string) bool {
	n := strings.ToLower(courseName)
	return strings.Contains(n, "dwi") || strings.Contains(n, "aepm")
}
