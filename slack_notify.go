package main

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"
)

// FormatCandidatePreview renders the first few candidates of a harvest run
// for the review channel.
func FormatCandidatePreview(cands []Candidate, max int) string {
	if len(cands) == 0 {
		return ""
	}
	var sb strings.Builder
	n := len(cands)
	if n > max {
		n = max
	}
	for _, c := range cands[:n] {
		source := c.Source
		if len(source) > 30 {
			source = source[:30]
		}
		prediction := c.Prediction
		if len(prediction) > 60 {
			prediction = prediction[:60] + "..."
		}
		sb.WriteString(fmt.Sprintf("%s [%d] %s — %s\n", CategoryEmoji(c.Category), c.Year, source, prediction))
	}
	if len(cands) > max {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(cands)-max))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// PostHarvestSummary posts a harvest run summary and a short candidate
// preview to the review channel.
func PostHarvestSummary(api *slack.Client, channelID string, result HarvestResult, cands []Candidate) error {
	msg := FormatHarvestSummary(result, true)
	if preview := FormatCandidatePreview(cands, 5); preview != "" {
		msg += "\n\n" + preview
	}
	_, _, err := api.PostMessage(channelID, slack.MsgOptionText(msg, false))
	if err != nil {
		return fmt.Errorf("post harvest summary: %w", err)
	}
	return nil
}
