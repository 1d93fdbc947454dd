package store

import (
	"database/sql"
	"fmt"
)

// Keys recognized by the settings API. Unknown keys are rejected at the
// handler layer so the table stays bounded.
var KnownSettingKeys = []string{
	"language",
	"theme",
}

// SettingsStore holds per-user preferences as key/value pairs.
type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) Get(userID int64, key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE user_id = ? AND key = ?`, userID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *SettingsStore) All(userID int64) (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings WHERE user_id = ? ORDER BY key`, userID)
	if err != nil {
		return nil, fmt.Errorf("get all settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

func (s *SettingsStore) Set(userID int64, key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (user_id, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(user_id, key) DO UPDATE SET value = excluded.value`,
		userID, key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}
