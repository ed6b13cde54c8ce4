package main

import (
	"fmt"
	"strings"
)

// FeedFilter narrows the feed before ranking. Query is free-text search, Tag
// is an exact tag match. Both empty means the whole catalog.
type FeedFilter struct {
	Query string
	Tag   string
}

// BuildFeed returns the filtered catalog ranked by the current weights.
// Search results come back relevance-ordered; ranking reorders them by
// category weight with relevance as the tie-break.
func BuildFeed(catalog *Catalog, index *SearchIndex, weights WeightTable, filter FeedFilter) []Entry {
	var entries []Entry
	if filter.Query != "" {
		entries = index.Search(filter.Query, catalog.Len())
	} else {
		entries = catalog.Entries()
	}
	if filter.Tag != "" {
		entries = FilterByTag(entries, filter.Tag)
	}
	return RankEntries(entries, weights)
}

func FilterByTag(entries []Entry, tag string) []Entry {
	var out []Entry
	for _, e := range entries {
		for _, t := range e.Tags {
			if strings.EqualFold(t, tag) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// FormatFeedEntry renders one entry as a feed card.
func FormatFeedEntry(e Entry, weight int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s [%d] %s", CategoryEmoji(e.Category), e.Year, e.Category))
	if weight > 0 {
		sb.WriteString(fmt.Sprintf(" (weight %d)", weight))
	}
	sb.WriteString("\n")
	sb.WriteString("  " + e.Prediction + "\n")
	if e.Source != "" {
		sb.WriteString("  — " + e.Source + "\n")
	}
	if e.Reality != "" {
		sb.WriteString("  What happened: " + e.Reality + "\n")
	}
	if len(e.Tags) > 0 {
		sb.WriteString("  tags: " + strings.Join(e.Tags, ", ") + "\n")
	}
	return sb.String()
}

// FormatFeed renders one page of entries.
func FormatFeed(entries []Entry, weights WeightTable, offset, pageSize int) string {
	if len(entries) == 0 {
		return "Nothing to show.\n"
	}
	if offset >= len(entries) {
		return "End of feed.\n"
	}
	end := offset + pageSize
	if end > len(entries) {
		end = len(entries)
	}

	var sb strings.Builder
	for i := offset; i < end; i++ {
		e := entries[i]
		sb.WriteString(fmt.Sprintf("%d. %s", i+1, FormatFeedEntry(e, weights[e.Category])))
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("— %d-%d of %d —\n", offset+1, end, len(entries)))
	return sb.String()
}

// FormatWeightSummary renders the weight table in display order, skipping
// zero-weight categories.
func FormatWeightSummary(weights WeightTable) string {
	var sb strings.Builder
	total := 0
	for _, cat := range categoryOrder {
		if w := weights[cat]; w > 0 {
			sb.WriteString(fmt.Sprintf("  %s %-24s %d\n", CategoryEmoji(cat), cat, w))
			total += w
		}
	}
	if total == 0 {
		return "No preferences recorded yet.\n"
	}
	return "Reassurance weights:\n" + sb.String()
}
