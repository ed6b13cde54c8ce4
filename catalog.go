package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

// ErrCatalogFormat marks catalog files the app cannot render from: missing
// required fields (everything but tags) or categories outside the fixed set.
// Fatal at startup.
var ErrCatalogFormat = errors.New("invalid catalog entry")

type DuplicateIDError struct {
	ID string
}

func (e DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate catalog entry id %q", e.ID)
}

type catalogFile struct {
	Entries []Entry `json:"entries"`
}

// Catalog holds the immutable entry collection. Entries keep source order;
// that order carries no ranking meaning but is the tie-break baseline.
type Catalog struct {
	entries    []Entry
	byID       map[string]Entry
	byCategory map[string][]Entry
}

func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var cf catalogFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog json: %w", err)
	}

	cat := &Catalog{
		entries:    cf.Entries,
		byID:       make(map[string]Entry, len(cf.Entries)),
		byCategory: make(map[string][]Entry),
	}
	for i, e := range cf.Entries {
		if e.ID == "" {
			return nil, fmt.Errorf("%w: entry %d has no id", ErrCatalogFormat, i)
		}
		if e.Year == 0 {
			return nil, fmt.Errorf("%w: entry %q has no year", ErrCatalogFormat, e.ID)
		}
		if e.Prediction == "" {
			return nil, fmt.Errorf("%w: entry %q has no prediction", ErrCatalogFormat, e.ID)
		}
		if !ValidCategory(e.Category) {
			return nil, fmt.Errorf("%w: entry %q has unknown category %q", ErrCatalogFormat, e.ID, e.Category)
		}
		if e.Source == "" {
			return nil, fmt.Errorf("%w: entry %q has no source", ErrCatalogFormat, e.ID)
		}
		if e.Reality == "" {
			return nil, fmt.Errorf("%w: entry %q has no reality", ErrCatalogFormat, e.ID)
		}
		if _, exists := cat.byID[e.ID]; exists {
			return nil, DuplicateIDError{ID: e.ID}
		}
		cat.byID[e.ID] = e
		cat.byCategory[e.Category] = append(cat.byCategory[e.Category], e)
	}

	return cat, nil
}

// Entries returns all entries in source order.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

// ByCategory returns entries of one category in source order.
func (c *Catalog) ByCategory(category string) []Entry {
	return c.byCategory[category]
}

func (c *Catalog) ByID(id string) (Entry, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// Tags returns the distinct tags across the collection, sorted.
func (c *Catalog) Tags() []string {
	seen := make(map[string]bool)
	for _, e := range c.entries {
		for _, t := range e.Tags {
			seen[t] = true
		}
	}
	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// AppendCatalogEntry appends one reviewed entry to the data file. This is the
// out-of-band merge step (`review approve`); the viewer itself never writes
// the catalog. Read whole file, append, write whole file.
func AppendCatalogEntry(path string, entry Entry) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}
	var cf catalogFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return fmt.Errorf("parse catalog json: %w", err)
	}
	for _, e := range cf.Entries {
		if e.ID == entry.ID {
			return DuplicateIDError{ID: entry.ID}
		}
	}
	cf.Entries = append(cf.Entries, entry)
	out, err := json.MarshalIndent(&cf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	return os.WriteFile(path, append(out, '\n'), 0644)
}
