package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/slack-go/slack"
)

// curatorTarget is one line of curator.txt: a Wikipedia article title plus an
// optional hint phrase that nudges category guessing.
type curatorTarget struct {
	Title string
	Hint  string
}

// parseCurator reads curator.txt. One target per line, "Title | hint", hint
// optional, # lines and blanks ignored.
func parseCurator(path string) ([]curatorTarget, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read curator file: %w", err)
	}

	var targets []curatorTarget
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		title, hint, _ := strings.Cut(line, "|")
		targets = append(targets, curatorTarget{
			Title: strings.TrimSpace(title),
			Hint:  strings.TrimSpace(hint),
		})
	}
	return targets, nil
}

var (
	yearRe     = regexp.MustCompile(`\b(1[0-9]{3}|20[0-2][0-9])\b`)
	citationRe = regexp.MustCompile(`\[\d+\]|\[note \d+\]|\[a\]`)
	wsRe       = regexp.MustCompile(`\s+`)
	slugRe     = regexp.MustCompile(`[^a-z0-9]+`)
)

// cleanCell strips citation markers like [1] and [note 2] and collapses
// whitespace.
func cleanCell(s string) string {
	s = citationRe.ReplaceAllString(s, "")
	s = wsRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func slugify(text string, year int) string {
	if len(text) > 40 {
		text = text[:40]
	}
	s := strconv.Itoa(year) + "-" + text
	s = slugRe.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// headerWords mark table rows that are column headings, not data.
var headerWords = []string{"date", "year", "century", "event", "prediction"}

// rowToCandidate tries to turn one table row into a review candidate.
// Two common table shapes are supported:
//
//	Shape A: Date | Claimant | Claim | Outcome
//	Shape B: Year | Prediction | Outcome
//
// Returns false if the row doesn't look usable. The entry id is the base
// slug; the caller resolves collisions.
func rowToCandidate(row []string, hint, pageTitle string) (Candidate, bool) {
	if len(row) < 3 {
		return Candidate{}, false
	}

	cells := make([]string, len(row))
	for i, c := range row {
		cells[i] = cleanCell(c)
	}

	// Skip header rows.
	first := strings.ToLower(cells[0])
	for _, h := range headerWords {
		if strings.Contains(first, h) {
			return Candidate{}, false
		}
	}
	if cells[0] == "" {
		return Candidate{}, false
	}

	m := yearRe.FindString(cells[0])
	if m == "" {
		return Candidate{}, false
	}
	year, _ := strconv.Atoi(m)
	if year >= 2026 {
		return Candidate{}, false
	}

	var claimant, prediction, outcome string
	if len(cells) >= 4 {
		claimant = cells[1]
		prediction = cells[2]
		outcome = cells[3]
	} else {
		claimant = cells[1]
		prediction = cells[1]
		outcome = cells[2]
	}

	if len(prediction) < 15 {
		return Candidate{}, false
	}

	slugText := claimant + "-" + prediction
	if len(prediction) > 20 {
		slugText = claimant + "-" + prediction[:20]
	}
	entryID := slugify(slugText, year)

	category := guessCategory(prediction + " " + outcome + " " + hint)

	reality := realityFallback(year)
	lower := strings.ToLower(outcome)
	if len(outcome) > 20 && lower != "no" && lower != "yes" && lower != "none" && lower != "n/a" && lower != "—" && lower != "-" {
		reality = outcome
	}

	source := "Unknown"
	if claimant != "" && claimant != prediction {
		source = claimant
	}

	return Candidate{
		EntryID:    entryID,
		Year:       year,
		Prediction: prediction,
		Source:     source,
		Reality:    reality,
		Category:   category,
		PageTitle:  pageTitle,
		Status:     CandidatePending,
	}, true
}

// realityFallback covers rows whose outcome cell carries no usable text. Old
// predictions get a five-year grace window; recent ones are judged as of 2025.
func realityFallback(year int) string {
	by := 2025
	if year < 2020 {
		by = year + 5
	}
	return fmt.Sprintf("The predicted event did not occur as described by %d.", by)
}

// HarvestResult tracks separate counters for each outcome of a harvest run.
type HarvestResult struct {
	Pages          int
	Tables         int
	NewCandidates  int
	AlreadyTracked int
	Errors         []string
}

// HarvestCandidates fetches every curator target, parses its tables, and
// collects new review candidates. With write=true they land in the candidates
// table; otherwise it is a dry run. limit caps new candidates (0 = unlimited),
// sourceFilter keeps only targets whose title contains the given string.
func HarvestCandidates(cfg *Config, db *sql.DB, catalog *Catalog, write bool, limit int, sourceFilter string) (HarvestResult, []Candidate, error) {
	var result HarvestResult

	targets, err := parseCurator(cfg.CuratorPath)
	if err != nil {
		return result, nil, err
	}
	if sourceFilter != "" {
		var kept []curatorTarget
		for _, t := range targets {
			if strings.Contains(strings.ToLower(t.Title), strings.ToLower(sourceFilter)) {
				kept = append(kept, t)
			}
		}
		targets = kept
	}
	if len(targets) == 0 {
		return result, nil, fmt.Errorf("no curator targets to process")
	}

	// Dedup against the catalog and everything already harvested.
	existingIDs := make(map[string]bool)
	for _, e := range catalog.Entries() {
		existingIDs[e.ID] = true
	}
	harvested, err := GetCandidateEntryIDs(db)
	if err != nil {
		return result, nil, fmt.Errorf("load harvested ids: %w", err)
	}
	for id := range harvested {
		existingIDs[id] = true
	}

	var newCands []Candidate
	newIDs := make(map[string]bool)

targets:
	for _, target := range targets {
		log.Printf("harvest fetching %q", target.Title)
		body, err := FetchArticleHTML(target.Title)
		if err != nil {
			log.Printf("harvest error: %v", err)
			result.Errors = append(result.Errors, err.Error())
			time.Sleep(time.Second)
			continue
		}
		tables, err := extractTables(body)
		if err != nil {
			log.Printf("harvest error: %v", err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", target.Title, err))
			continue
		}
		result.Pages++
		result.Tables += len(tables)

		for _, table := range tables {
			for _, row := range table {
				cand, ok := rowToCandidate(row, target.Hint+" "+target.Title, target.Title)
				if !ok {
					continue
				}
				if existingIDs[cand.EntryID] {
					result.AlreadyTracked++
					continue
				}
				// Distinct rows can collapse to the same slug within a run;
				// suffix them instead of dropping data.
				baseID := cand.EntryID
				for counter := 1; newIDs[cand.EntryID] || existingIDs[cand.EntryID]; counter++ {
					cand.EntryID = fmt.Sprintf("%s-%d", baseID, counter)
				}
				newCands = append(newCands, cand)
				newIDs[cand.EntryID] = true
				if limit > 0 && len(newCands) >= limit {
					break targets
				}
			}
		}

		// Be polite to Wikipedia.
		time.Sleep(500 * time.Millisecond)
	}

	result.NewCandidates = len(newCands)

	if len(result.Errors) > 0 && result.Pages == 0 {
		return result, nil, fmt.Errorf("all fetches failed: %s", strings.Join(result.Errors, "; "))
	}

	if len(newCands) > 0 && cfg.LLMConfigured() {
		usage, err := CategorizeCandidates(cfg, newCands)
		if err != nil {
			log.Printf("harvest categorize error (keyword guesses kept): %v", err)
			result.Errors = append(result.Errors, fmt.Sprintf("categorize: %v", err))
		} else {
			log.Printf("harvest categorize tokens in=%d out=%d", usage.InputTokens, usage.OutputTokens)
		}
	}

	if write && len(newCands) > 0 {
		inserted, err := InsertCandidates(db, newCands)
		if err != nil {
			return result, newCands, fmt.Errorf("store candidates: %v", err)
		}
		result.NewCandidates = inserted
	}

	return result, newCands, nil
}

// FormatHarvestSummary returns a human-readable summary of a harvest run.
func FormatHarvestSummary(result HarvestResult, wrote bool) string {
	if len(result.Errors) > 0 && result.Pages == 0 {
		return fmt.Sprintf("Harvest failed:\n%s", strings.Join(result.Errors, "\n"))
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d page(s)", result.Pages))
	parts = append(parts, fmt.Sprintf("%d table(s)", result.Tables))
	if result.AlreadyTracked > 0 {
		parts = append(parts, fmt.Sprintf("%d already tracked", result.AlreadyTracked))
	}

	var msg string
	if result.NewCandidates == 0 {
		msg = fmt.Sprintf("Harvested %s, nothing new to review.", strings.Join(parts, ", "))
	} else if wrote {
		msg = fmt.Sprintf("Harvested %s: %d new candidate(s) queued for review.",
			strings.Join(parts, ", "), result.NewCandidates)
	} else {
		msg = fmt.Sprintf("Harvested %s: %d new candidate(s) found (dry run, nothing stored).",
			strings.Join(parts, ", "), result.NewCandidates)
	}
	if len(result.Errors) > 0 {
		msg += fmt.Sprintf("\nWarnings:\n%s", strings.Join(result.Errors, "\n"))
	}
	return msg
}

// StartHarvestScheduler starts a cron-based scheduler that periodically runs
// the harvester and, if Slack is configured, posts the summary to the review
// channel. The schedule is a standard 5-field cron expression.
// Examples: "0 6 * * *" (daily 6am), "0 6 * * 1" (Mondays 6am).
func StartHarvestScheduler(cfg *Config, db *sql.DB, catalog *Catalog, api *slack.Client) {
	schedule := strings.TrimSpace(cfg.HarvestSchedule)
	if schedule == "" {
		log.Println("Scheduled harvest disabled (harvest_schedule not set)")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid harvest_schedule '%s': %v — scheduled harvest disabled", schedule, err)
		return
	}

	log.Printf("Harvest scheduled (cron: %s)", schedule)

	go func() {
		for {
			now := time.Now().In(cfg.Location)
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next harvest at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			time.Sleep(wait)

			result, cands, harvestErr := HarvestCandidates(cfg, db, catalog, true, cfg.HarvestLimit, "")
			summary := FormatHarvestSummary(result, true)
			if harvestErr != nil {
				log.Printf("Scheduled harvest error: %v", harvestErr)
			}
			log.Printf("Scheduled harvest complete: %s", summary)

			if api != nil && cfg.SlackConfigured() {
				if err := PostHarvestSummary(api, cfg.ReviewChannelID, result, cands); err != nil {
					log.Printf("Harvest summary post error: %v", err)
				}
			}
		}
	}()
}
