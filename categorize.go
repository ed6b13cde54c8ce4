package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultLLMModel = "claude-sonnet-4-5-20250929"

// categoryKeywords drives the offline category guesser for harvested rows
// that don't come with one.
var categoryKeywords = map[string][]string{
	"Economic Collapse":        {"economy", "financial", "stock", "crash", "bank", "depression", "debt", "dollar", "inflation", "recession"},
	"Tech Apocalypse":          {"computer", "internet", "ai", "robot", "nuclear plant", "technology", "software", "cyber", "y2k"},
	"Environmental Doom":       {"climate", "ozone", "pollution", "asteroid", "comet", "flood", "ice age", "warming", "cooling", "sea level", "extinction", "biodiversity"},
	"Political Catastrophe":    {"war", "election", "government", "fascism", "communism", "dictatorship", "coup", "democracy"},
	"Health Crisis":            {"pandemic", "plague", "virus", "disease", "epidemic", "flu", "cancer", "aids", "ebola", "bacteria"},
	"Social Breakdown":         {"crime", "drugs", "violence", "moral", "youth", "media", "society", "culture"},
	"Food & Resource Scarcity": {"food", "famine", "hunger", "water", "oil", "energy", "resource", "population", "starvation"},
	"War & Conflict":           {"nuclear war", "world war", "armageddon", "invasion", "missile", "bomb", "military"},
}

// guessCategory scores each category by keyword hits. Ties go to the category
// listed first in display order; no hits at all default to Political
// Catastrophe.
func guessCategory(text string) string {
	text = strings.ToLower(text)
	best := ""
	bestScore := 0
	for _, cat := range categoryOrder {
		score := 0
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(text, kw) {
				score++
			}
		}
		if score > bestScore {
			best = cat
			bestScore = score
		}
	}
	if best == "" {
		return "Political Catastrophe"
	}
	return best
}

type LLMUsage struct {
	InputTokens              int64
	OutputTokens             int64
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}

func (u *LLMUsage) Add(other LLMUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheCreationInputTokens += other.CacheCreationInputTokens
	u.CacheReadInputTokens += other.CacheReadInputTokens
}

type categorizedItem struct {
	ID       int    `json:"id"`
	Category string `json:"category"`
}

// CategorizeCandidates asks the model to assign each candidate a category
// from the fixed set, overwriting the keyword guess in place. Batches run
// concurrently. A batch failure keeps the keyword guesses for that batch.
func CategorizeCandidates(cfg *Config, cands []Candidate) (LLMUsage, error) {
	if len(cands) == 0 {
		return LLMUsage{}, nil
	}

	batchSize := cfg.LLMBatchSize
	if batchSize < 1 {
		batchSize = 20
	}

	type span struct{ start, end int }
	var batches []span
	for start := 0; start < len(cands); start += batchSize {
		end := start + batchSize
		if end > len(cands) {
			end = len(cands)
		}
		batches = append(batches, span{start, end})
	}

	type batchResult struct {
		categories map[int]string // index within batch -> category
		usage      LLMUsage
		err        error
	}
	results := make([]batchResult, len(batches))

	var wg sync.WaitGroup
	for i, b := range batches {
		wg.Add(1)
		go func(idx int, batch []Candidate) {
			defer wg.Done()
			systemPrompt, userPrompt := buildCategoryPrompts(batch)
			log.Printf("llm categorize model=%s items=%d batch=%d", cfg.LLMModel, len(batch), idx)
			responseText, usage, err := callAnthropic(cfg.AnthropicAPIKey, cfg.LLMModel, systemPrompt, userPrompt)
			if err != nil {
				results[idx] = batchResult{usage: usage, err: err}
				return
			}
			categories, err := parseCategorizedResponse(responseText)
			results[idx] = batchResult{categories: categories, usage: usage, err: err}
		}(i, cands[b.start:b.end])
	}
	wg.Wait()

	totalUsage := LLMUsage{}
	var firstErr error
	for i, r := range results {
		totalUsage.Add(r.usage)
		if r.err != nil {
			log.Printf("llm categorize batch=%d error: %v", i, r.err)
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		for j, cat := range r.categories {
			if j < 0 || j >= batches[i].end-batches[i].start {
				continue
			}
			cands[batches[i].start+j].Category = cat
		}
	}

	return totalUsage, firstErr
}

func buildCategoryPrompts(cands []Candidate) (string, string) {
	var categoryLines strings.Builder
	for _, cat := range categoryOrder {
		categoryLines.WriteString("- " + cat + "\n")
	}

	var itemLines strings.Builder
	for i, c := range cands {
		itemLines.WriteString(fmt.Sprintf("ID:%d - [%d] %s (source: %s)\n",
			i, c.Year, strings.TrimSpace(c.Prediction), strings.TrimSpace(c.Source)))
	}

	systemPrompt := fmt.Sprintf(`You classify failed doomsday predictions into one category.
Choose exactly one category for each prediction from:
%s
Use the category name verbatim.

Respond with JSON only (no markdown):
[{"id": 0, "category": "Environmental Doom"}, ...]`, categoryLines.String())

	userPrompt := "Classify these predictions:\n\n" + itemLines.String()
	return systemPrompt, userPrompt
}

// parseCategorizedResponse maps batch index -> category. Unknown category
// names are dropped so the keyword guess survives.
func parseCategorizedResponse(responseText string) (map[int]string, error) {
	responseText = strings.TrimSpace(responseText)
	responseText = strings.TrimPrefix(responseText, "```json")
	responseText = strings.TrimPrefix(responseText, "```")
	responseText = strings.TrimSuffix(responseText, "```")
	responseText = strings.TrimSpace(responseText)

	var classified []categorizedItem
	if err := json.Unmarshal([]byte(responseText), &classified); err != nil {
		return nil, fmt.Errorf("parsing LLM category response: %w (response: %s)", err, responseText)
	}

	categories := make(map[int]string)
	for _, c := range classified {
		cat := strings.TrimSpace(c.Category)
		if !ValidCategory(cat) {
			log.Printf("llm categorize dropped unknown category %q for id=%d", cat, c.ID)
			continue
		}
		categories[c.ID] = cat
	}
	return categories, nil
}

func callAnthropic(apiKey, model, systemPrompt, userPrompt string) (string, LLMUsage, error) {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	message, err := client.Messages.New(context.Background(), anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		log.Printf("llm anthropic error: %v", err)
		return "", LLMUsage{}, fmt.Errorf("Anthropic API error: %w", err)
	}
	usage := LLMUsage{
		InputTokens:              message.Usage.InputTokens,
		OutputTokens:             message.Usage.OutputTokens,
		CacheCreationInputTokens: message.Usage.CacheCreationInputTokens,
		CacheReadInputTokens:     message.Usage.CacheReadInputTokens,
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("llm anthropic response size=%d tokens_in=%d tokens_out=%d cache_create=%d cache_read=%d", len(block.Text), usage.InputTokens, usage.OutputTokens, usage.CacheCreationInputTokens, usage.CacheReadInputTokens)
			return block.Text, usage, nil
		}
	}
	return "", usage, fmt.Errorf("no text content in Anthropic response")
}
