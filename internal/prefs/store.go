package prefs

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Documented preference names. Nothing else is stored here. In particular,
// active-session and timer state never is; a restart refetches the latest
// session from the server.
const (
	KeyAuthToken = "workout_token"
	KeyUser      = "workout_user"
	KeyTheme     = "theme"
	KeyLocale    = "locale"
)

// Store persists a small set of named user preferences outside the process
// lifecycle, in a SQLite file.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the preference database at dir/prefs.db.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating prefs dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "prefs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening prefs db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS preferences (
		name  TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating preferences table: %w", err)
	}

	return &Store{db: db}, nil
}

// Get returns the stored value and whether it exists.
func (s *Store) Get(name string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM preferences WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set creates or overwrites a preference.
func (s *Store) Set(name, value string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO preferences (name, value) VALUES (?, ?)`,
		name, value,
	)
	return err
}

// Delete removes one preference; removing an absent name is not an error.
func (s *Store) Delete(name string) error {
	_, err := s.db.Exec(`DELETE FROM preferences WHERE name = ?`, name)
	return err
}

// Clear removes every preference in a single statement, so the auth token
// can never be observed after a partially-applied logout.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM preferences`)
	return err
}

// Close closes the preference database.
func (s *Store) Close() error {
	return s.db.Close()
}
