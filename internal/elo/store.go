// Package elo keeps the zero-sum rating ladder. Each game type gets
// its own table of integer ratings; a shared user_data table caches
// usernames and avatars for presentation only.
package elo

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"gamesbot/internal/platform"
)

// DefaultRating is assigned on a player's first rated game.
const DefaultRating = 1200

// Store handles SQLite persistence for ratings and profiles.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	ensured map[string]bool // rating tables already migrated
}

// Open opens (or creates) the database and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// WAL mode for better concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	s := &Store{db: db, ensured: make(map[string]bool)}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS user_data (
			id         TEXT PRIMARY KEY,
			username   TEXT,
			avatar_url TEXT
		);
	`)
	return err
}

// tableName maps a game's command name onto its rating table. Only
// [a-z0-9_] survives; table names are interpolated into SQL and must
// never carry anything else.
func tableName(game string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(game) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}

func (s *Store) ensureTable(game string) (string, error) {
	table := tableName(game)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensured[table] {
		return table, nil
	}
	_, err := s.db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id  TEXT PRIMARY KEY,
			elo INTEGER NOT NULL
		)
	`, table))
	if err != nil {
		return "", fmt.Errorf("create rating table %s: %w", table, err)
	}
	s.ensured[table] = true
	return table, nil
}

// Rating returns the stored rating for a user in a game type,
// initializing it to DefaultRating on first access.
func (s *Store) Rating(game string, id platform.UserID) (int, error) {
	table, err := s.ensureTable(game)
	if err != nil {
		return 0, err
	}
	var rating int
	err = s.db.QueryRow(fmt.Sprintf("SELECT elo FROM %s WHERE id = ?", table), string(id)).Scan(&rating)
	if errors.Is(err, sql.ErrNoRows) {
		if err := s.setRating(table, id, DefaultRating); err != nil {
			return 0, err
		}
		return DefaultRating, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read rating: %w", err)
	}
	return rating, nil
}

func (s *Store) setRating(table string, id platform.UserID, rating int) error {
	_, err := s.db.Exec(
		fmt.Sprintf("INSERT OR REPLACE INTO %s (id, elo) VALUES (?, ?)", table),
		string(id), rating,
	)
	if err != nil {
		return fmt.Errorf("write rating: %w", err)
	}
	return nil
}

// RatingIn is a read-only lookup across game types for the summary
// view. It reports false when the user has never played the game.
func (s *Store) RatingIn(game string, id platform.UserID) (int, bool, error) {
	table, err := s.ensureTable(game)
	if err != nil {
		return 0, false, err
	}
	var rating int
	err = s.db.QueryRow(fmt.Sprintf("SELECT elo FROM %s WHERE id = ?", table), string(id)).Scan(&rating)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read rating: %w", err)
	}
	return rating, true, nil
}

// TypeCount pairs a rating table with its player count.
type TypeCount struct {
	Game    string
	Players int
}

// GameTypes lists every rating table with how many players it holds.
func (s *Store) GameTypes() ([]TypeCount, error) {
	rows, err := s.db.Query(
		"SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' AND name != 'user_data' ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var result []TypeCount
	for _, name := range names {
		var count int
		if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", name)).Scan(&count); err != nil {
			return nil, fmt.Errorf("count %s: %w", name, err)
		}
		result = append(result, TypeCount{Game: name, Players: count})
	}
	return result, nil
}

// StoreProfile upserts a user's presentation data. Called
// opportunistically whenever an interaction carries a fresh profile.
func (s *Store) StoreProfile(u platform.User) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO user_data (id, username, avatar_url)
		VALUES (?, ?, ?)
	`, string(u.ID), u.DisplayName(), u.AvatarURL)
	if err != nil {
		return fmt.Errorf("store profile: %w", err)
	}
	return nil
}

// Profile reads a cached user profile. It reports false when the user
// has never been seen.
func (s *Store) Profile(id platform.UserID) (platform.User, bool, error) {
	var u platform.User
	var username, avatar sql.NullString
	err := s.db.QueryRow(
		"SELECT id, username, avatar_url FROM user_data WHERE id = ?", string(id),
	).Scan(&u.ID, &username, &avatar)
	if errors.Is(err, sql.ErrNoRows) {
		return platform.User{}, false, nil
	}
	if err != nil {
		return platform.User{}, false, fmt.Errorf("read profile: %w", err)
	}
	u.Username = username.String
	u.AvatarURL = avatar.String
	return u, true, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
