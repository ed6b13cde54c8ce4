package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
)

// prefsKey is the single namespaced key the weight table lives under in the
// preferences store, the Go stand-in for the site's localStorage slot.
const prefsKey = "doomscroll.reassurance.v1"

// ErrPrefsNotSaved is returned when a weight change could not be persisted.
// The in-memory table still reflects the change for the rest of the session.
var ErrPrefsNotSaved = errors.New("preferences not saved")

// WeightTable maps category -> accumulated reassuring votes. Absent key
// means weight 0. Weights only grow, except for a full reset.
type WeightTable map[string]int

// PrefStore is the key-value persistence substrate for the weight table.
// The sqlite-backed implementation lives in db.go.
type PrefStore interface {
	GetPreference(key string) (value string, ok bool, err error)
	PutPreference(key, value string) error
	DeletePreference(key string) error
}

// PrefEngine owns the weight table: it restores persisted state at startup,
// folds feedback signals in, and persists every change synchronously.
type PrefEngine struct {
	store   PrefStore
	weights WeightTable
}

func NewPrefEngine(store PrefStore) *PrefEngine {
	return &PrefEngine{
		store:   store,
		weights: LoadWeights(store),
	}
}

// LoadWeights reads the persisted table. It fails open: a missing key, a
// store error, or an unparsable value all mean "no preferences yet", never
// an error the caller has to handle.
func LoadWeights(store PrefStore) WeightTable {
	weights := WeightTable{}

	value, ok, err := store.GetPreference(prefsKey)
	if err != nil {
		log.Printf("prefs read failed, starting empty: %v", err)
		return weights
	}
	if !ok {
		return weights
	}

	var raw map[string]int
	if err := json.Unmarshal([]byte(value), &raw); err != nil {
		log.Printf("prefs value unparsable, starting empty: %v", err)
		return weights
	}
	// Only known categories with positive weight survive a restore; anything
	// else is indistinguishable from weight 0.
	for category, w := range raw {
		if w > 0 && ValidCategory(category) {
			weights[category] = w
		}
	}
	return weights
}

// Weights returns a copy of the current table.
func (e *PrefEngine) Weights() WeightTable {
	out := make(WeightTable, len(e.weights))
	for k, v := range e.weights {
		out[k] = v
	}
	return out
}

func (e *PrefEngine) Weight(category string) int {
	return e.weights[category]
}

// RecordSignal registers one reassuring vote for a category and persists the
// updated table before returning. On a write failure the increment is kept
// in memory and the error wraps ErrPrefsNotSaved.
func (e *PrefEngine) RecordSignal(category string) error {
	if !ValidCategory(category) {
		return fmt.Errorf("unknown category %q", category)
	}
	e.weights[category]++
	return e.persist()
}

// Reset clears all weights and removes the persisted key.
func (e *PrefEngine) Reset() error {
	e.weights = WeightTable{}
	if err := e.store.DeletePreference(prefsKey); err != nil {
		return fmt.Errorf("%w: %v", ErrPrefsNotSaved, err)
	}
	return nil
}

func (e *PrefEngine) persist() error {
	value, err := json.Marshal(e.weights)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPrefsNotSaved, err)
	}
	if err := e.store.PutPreference(prefsKey, string(value)); err != nil {
		return fmt.Errorf("%w: %v", ErrPrefsNotSaved, err)
	}
	return nil
}

// PrefCommand is the explicit message type the UI layer feeds into the
// engine, so the wiring stays testable without any UI present.
type PrefCommand interface {
	isPrefCommand()
}

// Signal is one reassuring vote for a category.
type Signal struct {
	Category string
}

func (Signal) isPrefCommand() {}

// ResetPrefs clears the table.
type ResetPrefs struct{}

func (ResetPrefs) isPrefCommand() {}

// Apply is the single reducer consuming UI commands.
func (e *PrefEngine) Apply(cmd PrefCommand) error {
	switch c := cmd.(type) {
	case Signal:
		return e.RecordSignal(c.Category)
	case ResetPrefs:
		return e.Reset()
	default:
		return fmt.Errorf("unknown pref command %T", cmd)
	}
}
