package main

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS preferences (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS candidates (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		entry_id     TEXT NOT NULL,
		year         INTEGER NOT NULL,
		prediction   TEXT NOT NULL,
		source       TEXT DEFAULT '',
		reality      TEXT DEFAULT '',
		category     TEXT DEFAULT '',
		tags         TEXT DEFAULT '',
		page_title   TEXT DEFAULT '',
		status       TEXT DEFAULT 'pending',
		harvested_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_candidates_entry_id ON candidates(entry_id);
	CREATE INDEX IF NOT EXISTS idx_candidates_status ON candidates(status);
	`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// --- Preferences (key-value) ---

func GetPreference(db *sql.DB, key string) (string, bool, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func PutPreference(db *sql.DB, key, value string) error {
	_, err := db.Exec(
		`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	return err
}

func DeletePreference(db *sql.DB, key string) error {
	_, err := db.Exec(`DELETE FROM preferences WHERE key = ?`, key)
	return err
}

// DBPrefStore adapts the sqlite preferences table to the PrefStore interface.
type DBPrefStore struct {
	db *sql.DB
}

func NewDBPrefStore(db *sql.DB) *DBPrefStore {
	return &DBPrefStore{db: db}
}

func (s *DBPrefStore) GetPreference(key string) (string, bool, error) {
	return GetPreference(s.db, key)
}

func (s *DBPrefStore) PutPreference(key, value string) error {
	return PutPreference(s.db, key, value)
}

func (s *DBPrefStore) DeletePreference(key string) error {
	return DeletePreference(s.db, key)
}

// --- Candidates (harvest review queue) ---

func InsertCandidates(db *sql.DB, cands []Candidate) (int, error) {
	if len(cands) == 0 {
		return 0, nil
	}
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO candidates (entry_id, year, prediction, source, reality, category, tags, page_title, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, c := range cands {
		status := c.Status
		if status == "" {
			status = CandidatePending
		}
		_, err := stmt.Exec(
			c.EntryID, c.Year, c.Prediction, c.Source, c.Reality,
			c.Category, c.Tags, c.PageTitle, status,
		)
		if err != nil {
			return inserted, err
		}
		inserted++
	}

	return inserted, tx.Commit()
}

func CandidateEntryIDExists(db *sql.DB, entryID string) (bool, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM candidates WHERE entry_id = ?`, entryID).Scan(&count)
	return count > 0, err
}

// GetCandidateEntryIDs returns every entry_id ever harvested, regardless of
// review status, for dedup against new harvest runs.
func GetCandidateEntryIDs(db *sql.DB) (map[string]bool, error) {
	rows, err := db.Query(`SELECT entry_id FROM candidates`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func GetPendingCandidates(db *sql.DB, limit int) ([]Candidate, error) {
	rows, err := db.Query(
		`SELECT id, entry_id, year, prediction, source, reality, category, tags, page_title, status, harvested_at
		 FROM candidates WHERE status = ? ORDER BY harvested_at, id LIMIT ?`,
		CandidatePending, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var c Candidate
		err := rows.Scan(
			&c.ID, &c.EntryID, &c.Year, &c.Prediction, &c.Source, &c.Reality,
			&c.Category, &c.Tags, &c.PageTitle, &c.Status, &c.HarvestedAt,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func GetCandidateByID(db *sql.DB, id int64) (Candidate, error) {
	var c Candidate
	err := db.QueryRow(
		`SELECT id, entry_id, year, prediction, source, reality, category, tags, page_title, status, harvested_at
		 FROM candidates WHERE id = ?`,
		id,
	).Scan(
		&c.ID, &c.EntryID, &c.Year, &c.Prediction, &c.Source, &c.Reality,
		&c.Category, &c.Tags, &c.PageTitle, &c.Status, &c.HarvestedAt,
	)
	return c, err
}

func UpdateCandidateStatus(db *sql.DB, id int64, status string) error {
	_, err := db.Exec(`UPDATE candidates SET status = ? WHERE id = ?`, status, id)
	return err
}

func CountCandidatesByStatus(db *sql.DB) (map[string]int, error) {
	rows, err := db.Query(`SELECT status, COUNT(*) FROM candidates GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
