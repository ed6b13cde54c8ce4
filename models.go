package main

import (
	"strings"
	"time"
)

// Entry is one archived prediction record from data/doom.json.
// The collection is loaded once at startup and never mutated at runtime;
// new entries arrive only through the out-of-band review process.
type Entry struct {
	ID         string   `json:"id"`
	Year       int      `json:"year"`
	Prediction string   `json:"prediction"`
	Source     string   `json:"source"`
	Reality    string   `json:"reality"`
	Category   string   `json:"category"`
	Tags       []string `json:"tags,omitempty"`
	Harvested  bool     `json:"_harvested,omitempty"` // unreviewed harvester output
}

// Candidate is a harvested entry waiting in the review queue.
type Candidate struct {
	ID          int64
	EntryID     string
	Year        int
	Prediction  string
	Source      string
	Reality     string
	Category    string
	Tags        string // comma-separated
	PageTitle   string // Wikipedia article the row came from
	Status      string // "pending", "approved", or "rejected"
	HarvestedAt time.Time
}

const (
	CandidatePending  = "pending"
	CandidateApproved = "approved"
	CandidateRejected = "rejected"
)

// categoryOrder is the fixed set of catalog categories, in display order.
// An entry outside this set is a catalog format error.
var categoryOrder = []string{
	"Economic Collapse",
	"Tech Apocalypse",
	"Environmental Doom",
	"Political Catastrophe",
	"Health Crisis",
	"Social Breakdown",
	"Food & Resource Scarcity",
	"War & Conflict",
}

var categoryEmoji = map[string]string{
	"Economic Collapse":        "📉",
	"Tech Apocalypse":          "🤖",
	"Environmental Doom":       "🌪️",
	"Political Catastrophe":    "🏛️",
	"Health Crisis":            "🦠",
	"Social Breakdown":         "🏚️",
	"Food & Resource Scarcity": "🌾",
	"War & Conflict":           "💥",
}

func ValidCategory(category string) bool {
	_, ok := categoryEmoji[category]
	return ok
}

// CategoryEmoji returns the display emoji for a category. The catalog loader
// rejects unknown categories, so the fallback only shows up in dry-run
// previews of harvested rows.
func CategoryEmoji(category string) string {
	if e, ok := categoryEmoji[category]; ok {
		return e
	}
	return "❓"
}

func (c Candidate) Entry() Entry {
	return Entry{
		ID:         c.EntryID,
		Year:       c.Year,
		Prediction: c.Prediction,
		Source:     c.Source,
		Reality:    c.Reality,
		Category:   c.Category,
		Tags:       splitTags(c.Tags),
		Harvested:  true,
	}
}

func splitTags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
