package main

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "doomscroll-test.db")
	db, err := InitDB(dbPath)
	if err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestPreferenceRoundTrip(t *testing.T) {
	db := newTestDB(t)

	_, ok, err := GetPreference(db, "missing")
	if err != nil {
		t.Fatalf("GetPreference failed: %v", err)
	}
	if ok {
		t.Fatal("expected missing key to report ok=false")
	}

	if err := PutPreference(db, "k", "v1"); err != nil {
		t.Fatalf("PutPreference failed: %v", err)
	}
	value, ok, err := GetPreference(db, "k")
	if err != nil || !ok {
		t.Fatalf("GetPreference after put: value=%q ok=%v err=%v", value, ok, err)
	}
	if value != "v1" {
		t.Fatalf("unexpected value: %q", value)
	}

	// Upsert overwrites.
	if err := PutPreference(db, "k", "v2"); err != nil {
		t.Fatalf("PutPreference overwrite failed: %v", err)
	}
	value, _, _ = GetPreference(db, "k")
	if value != "v2" {
		t.Fatalf("expected overwritten value, got %q", value)
	}

	if err := DeletePreference(db, "k"); err != nil {
		t.Fatalf("DeletePreference failed: %v", err)
	}
	if _, ok, _ := GetPreference(db, "k"); ok {
		t.Fatal("expected key gone after delete")
	}

	// Deleting a missing key is not an error.
	if err := DeletePreference(db, "k"); err != nil {
		t.Fatalf("DeletePreference of missing key failed: %v", err)
	}
}

func TestPrefEngineOverSqlite(t *testing.T) {
	db := newTestDB(t)
	engine := NewPrefEngine(NewDBPrefStore(db))

	if err := engine.RecordSignal("Environmental Doom"); err != nil {
		t.Fatalf("RecordSignal failed: %v", err)
	}
	if err := engine.RecordSignal("Environmental Doom"); err != nil {
		t.Fatalf("RecordSignal failed: %v", err)
	}

	restored := NewPrefEngine(NewDBPrefStore(db))
	if w := restored.Weight("Environmental Doom"); w != 2 {
		t.Fatalf("expected restored weight 2, got %d", w)
	}
}

func TestCandidateQueue(t *testing.T) {
	db := newTestDB(t)

	cands := []Candidate{
		{EntryID: "1999-one", Year: 1999, Prediction: "Computers fail everywhere at once", Source: "Media", Category: "Tech Apocalypse", PageTitle: "Y2K"},
		{EntryID: "1968-two", Year: 1968, Prediction: "Mass starvation within a decade", Source: "Ehrlich", Category: "Food & Resource Scarcity", PageTitle: "Predictions"},
	}
	inserted, err := InsertCandidates(db, cands)
	if err != nil {
		t.Fatalf("InsertCandidates failed: %v", err)
	}
	if inserted != 2 {
		t.Fatalf("expected inserted=2, got %d", inserted)
	}

	exists, err := CandidateEntryIDExists(db, "1999-one")
	if err != nil || !exists {
		t.Fatalf("expected 1999-one to exist: exists=%v err=%v", exists, err)
	}

	ids, err := GetCandidateEntryIDs(db)
	if err != nil {
		t.Fatalf("GetCandidateEntryIDs failed: %v", err)
	}
	if len(ids) != 2 || !ids["1968-two"] {
		t.Fatalf("unexpected entry ids: %v", ids)
	}

	pending, err := GetPendingCandidates(db, 10)
	if err != nil {
		t.Fatalf("GetPendingCandidates failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}
	if pending[0].Status != CandidatePending {
		t.Fatalf("expected default status pending, got %q", pending[0].Status)
	}

	got, err := GetCandidateByID(db, pending[0].ID)
	if err != nil {
		t.Fatalf("GetCandidateByID failed: %v", err)
	}
	if got.EntryID != pending[0].EntryID {
		t.Fatalf("unexpected candidate: %q", got.EntryID)
	}

	if err := UpdateCandidateStatus(db, pending[0].ID, CandidateApproved); err != nil {
		t.Fatalf("UpdateCandidateStatus failed: %v", err)
	}
	pending, err = GetPendingCandidates(db, 10)
	if err != nil {
		t.Fatalf("GetPendingCandidates failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending after approval, got %d", len(pending))
	}

	counts, err := CountCandidatesByStatus(db)
	if err != nil {
		t.Fatalf("CountCandidatesByStatus failed: %v", err)
	}
	if counts[CandidateApproved] != 1 || counts[CandidatePending] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestInsertCandidatesEmpty(t *testing.T) {
	db := newTestDB(t)
	inserted, err := InsertCandidates(db, nil)
	if err != nil {
		t.Fatalf("InsertCandidates(nil) failed: %v", err)
	}
	if inserted != 0 {
		t.Fatalf("expected 0 inserted, got %d", inserted)
	}
}
