package index

import (
	"fmt"
	"strconv"
	"time"

	"github.com/starford/kneeview/internal/kneeboard"
)

// SearchResult represents one catalog hit.
type SearchResult struct {
	Scenario string `json:"scenario"`
	Path     string `json:"path"`
	FileName string `json:"file_name"`
	Group    string `json:"group"`
	Subgroup string `json:"subgroup,omitempty"`
	Night    bool   `json:"night"`
	Page     int    `json:"page"`
	Title    string `json:"title"`
}

// State is the persisted viewer state restored on startup.
type State struct {
	Aircraft  string
	Theater   string
	NightMode bool
}

const (
	stateAircraft  = "aircraft"
	stateTheater   = "theater"
	stateNightMode = "night_mode"
)

// ReplaceScenario swaps the catalog rows of one scenario for pages within a
// transaction, so readers see either the old or the new set.
func (db *DB) ReplaceScenario(scenario string, pages []kneeboard.FileMetadata) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM pages WHERE scenario = ?`, scenario); err != nil {
		return fmt.Errorf("index: clear scenario: %w", err)
	}

	if len(pages) > 0 {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO pages
				(scenario, path, file_name, group_name, subgroup, night, page, title, indexed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("index: prepare page insert: %w", err)
		}
		defer stmt.Close()

		now := time.Now()
		for _, p := range pages {
			if _, err := stmt.Exec(scenario, p.Path, p.FileName, p.Group, p.Subgroup.Name,
				p.IsNight, p.Page, p.DisplayName, now); err != nil {
				return fmt.Errorf("index: insert page: %w", err)
			}
		}
	}

	return tx.Commit()
}

// Search performs a LIKE-based search over file names, groups and titles.
// An empty scenario searches every scenario.
func (db *DB) Search(scenario, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT scenario, path, file_name, group_name, subgroup, night, page, title
		FROM pages
		WHERE (? = '' OR scenario = ?)
		  AND (file_name LIKE ? OR group_name LIKE ? OR subgroup LIKE ? OR title LIKE ?)
		ORDER BY group_name, subgroup, night, page, path
		LIMIT ?
	`, scenario, scenario, like, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Scenario, &r.Path, &r.FileName, &r.Group, &r.Subgroup, &r.Night, &r.Page, &r.Title); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountPages returns the number of catalog rows for scenario.
func (db *DB) CountPages(scenario string) (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM pages WHERE scenario = ?`, scenario).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count pages: %w", err)
	}
	return n, nil
}

// SaveState persists the viewer state.
func (db *DB) SaveState(s State) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	values := map[string]string{
		stateAircraft:  s.Aircraft,
		stateTheater:   s.Theater,
		stateNightMode: strconv.FormatBool(s.NightMode),
	}
	for k, v := range values {
		if _, err := tx.Exec(`
			INSERT INTO state (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, k, v); err != nil {
			return fmt.Errorf("index: save state %s: %w", k, err)
		}
	}
	return tx.Commit()
}

// LoadState returns the persisted viewer state. ok is false when nothing has
// been saved yet.
func (db *DB) LoadState() (State, bool, error) {
	rows, err := db.conn.Query(`SELECT key, value FROM state`)
	if err != nil {
		return State{}, false, fmt.Errorf("index: load state: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return State{}, false, err
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return State{}, false, err
	}
	if _, ok := values[stateAircraft]; !ok {
		return State{}, false, nil
	}

	// An unreadable flag falls back to day mode.
	night, _ := strconv.ParseBool(values[stateNightMode])
	return State{
		Aircraft:  values[stateAircraft],
		Theater:   values[stateTheater],
		NightMode: night,
	}, true, nil
}
