package main

import (
	"errors"
	"fmt"
	"testing"
)

// memPrefStore is an in-memory PrefStore with injectable failures.
type memPrefStore struct {
	values  map[string]string
	readErr error
	putErr  error
	delErr  error
}

func newMemPrefStore() *memPrefStore {
	return &memPrefStore{values: make(map[string]string)}
}

func (s *memPrefStore) GetPreference(key string) (string, bool, error) {
	if s.readErr != nil {
		return "", false, s.readErr
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memPrefStore) PutPreference(key, value string) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.values[key] = value
	return nil
}

func (s *memPrefStore) DeletePreference(key string) error {
	if s.delErr != nil {
		return s.delErr
	}
	delete(s.values, key)
	return nil
}

func TestLoadWeightsEmptyStore(t *testing.T) {
	weights := LoadWeights(newMemPrefStore())
	if len(weights) != 0 {
		t.Fatalf("expected empty table, got %v", weights)
	}
}

func TestLoadWeightsFailsOpen(t *testing.T) {
	store := newMemPrefStore()
	store.readErr = fmt.Errorf("disk on fire")
	if weights := LoadWeights(store); len(weights) != 0 {
		t.Fatalf("expected empty table on read error, got %v", weights)
	}

	store = newMemPrefStore()
	store.values[prefsKey] = "not json at all {{{"
	if weights := LoadWeights(store); len(weights) != 0 {
		t.Fatalf("expected empty table on corrupt value, got %v", weights)
	}
}

func TestLoadWeightsDropsUnknownAndNonPositive(t *testing.T) {
	store := newMemPrefStore()
	store.values[prefsKey] = `{"Tech Apocalypse": 3, "Not A Category": 7, "Health Crisis": 0, "War & Conflict": -2}`

	weights := LoadWeights(store)
	if len(weights) != 1 {
		t.Fatalf("expected exactly one surviving weight, got %v", weights)
	}
	if weights["Tech Apocalypse"] != 3 {
		t.Fatalf("expected Tech Apocalypse=3, got %d", weights["Tech Apocalypse"])
	}
}

func TestRecordSignalIncrementsAndPersists(t *testing.T) {
	store := newMemPrefStore()
	engine := NewPrefEngine(store)

	for i := 0; i < 3; i++ {
		if err := engine.RecordSignal("Economic Collapse"); err != nil {
			t.Fatalf("RecordSignal failed: %v", err)
		}
	}
	if err := engine.RecordSignal("Health Crisis"); err != nil {
		t.Fatalf("RecordSignal failed: %v", err)
	}

	if w := engine.Weight("Economic Collapse"); w != 3 {
		t.Fatalf("expected weight 3, got %d", w)
	}
	if w := engine.Weight("Environmental Doom"); w != 0 {
		t.Fatalf("expected absent category weight 0, got %d", w)
	}

	// A fresh engine over the same store sees the persisted table.
	restored := NewPrefEngine(store)
	if w := restored.Weight("Economic Collapse"); w != 3 {
		t.Fatalf("expected restored weight 3, got %d", w)
	}
	if w := restored.Weight("Health Crisis"); w != 1 {
		t.Fatalf("expected restored weight 1, got %d", w)
	}
}

func TestRecordSignalRejectsUnknownCategory(t *testing.T) {
	engine := NewPrefEngine(newMemPrefStore())
	if err := engine.RecordSignal("Alien Invasion"); err == nil {
		t.Fatal("expected error for unknown category")
	}
	if len(engine.Weights()) != 0 {
		t.Fatalf("rejected signal must not touch the table: %v", engine.Weights())
	}
}

func TestRecordSignalKeepsIncrementOnWriteFailure(t *testing.T) {
	store := newMemPrefStore()
	store.putErr = fmt.Errorf("readonly fs")
	engine := NewPrefEngine(store)

	err := engine.RecordSignal("War & Conflict")
	if !errors.Is(err, ErrPrefsNotSaved) {
		t.Fatalf("expected ErrPrefsNotSaved, got %v", err)
	}
	if w := engine.Weight("War & Conflict"); w != 1 {
		t.Fatalf("in-memory increment must survive a write failure, got %d", w)
	}
}

func TestReset(t *testing.T) {
	store := newMemPrefStore()
	engine := NewPrefEngine(store)
	if err := engine.RecordSignal("Tech Apocalypse"); err != nil {
		t.Fatalf("RecordSignal failed: %v", err)
	}

	if err := engine.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if len(engine.Weights()) != 0 {
		t.Fatalf("expected empty table after reset, got %v", engine.Weights())
	}
	if _, ok := store.values[prefsKey]; ok {
		t.Fatal("expected persisted key to be deleted")
	}

	// Restored state after a reset is empty too.
	if weights := LoadWeights(store); len(weights) != 0 {
		t.Fatalf("expected empty restore after reset, got %v", weights)
	}
}

func TestWeightsReturnsCopy(t *testing.T) {
	engine := NewPrefEngine(newMemPrefStore())
	if err := engine.RecordSignal("Health Crisis"); err != nil {
		t.Fatalf("RecordSignal failed: %v", err)
	}

	snapshot := engine.Weights()
	snapshot["Health Crisis"] = 99
	if w := engine.Weight("Health Crisis"); w != 1 {
		t.Fatalf("mutating the snapshot must not affect the engine, got %d", w)
	}
}

func TestApplyReducer(t *testing.T) {
	engine := NewPrefEngine(newMemPrefStore())

	if err := engine.Apply(Signal{Category: "Social Breakdown"}); err != nil {
		t.Fatalf("Apply(Signal) failed: %v", err)
	}
	if w := engine.Weight("Social Breakdown"); w != 1 {
		t.Fatalf("expected weight 1 after signal, got %d", w)
	}

	if err := engine.Apply(ResetPrefs{}); err != nil {
		t.Fatalf("Apply(ResetPrefs) failed: %v", err)
	}
	if len(engine.Weights()) != 0 {
		t.Fatalf("expected empty table after reset command, got %v", engine.Weights())
	}
}
