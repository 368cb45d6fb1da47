package repository

import (
	"database/sql"
	"encoding/json"
	"time"
)

// SettingsRepository handles persisted application settings and user
// preferences. Values are stored JSON-encoded.
type SettingsRepository struct {
	db *DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// SetSetting stores a setting value
func (r *SettingsRepository) SetSetting(key string, value any, description string) error {
	valueJSON, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`
		INSERT INTO settings (key, value, description, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value,
			description = excluded.description, updated_at = excluded.updated_at
	`, key, string(valueJSON), description, time.Now())
	return err
}

// GetSetting loads a setting into out (a pointer). Returns false when the
// key does not exist.
func (r *SettingsRepository) GetSetting(key string, out any) (bool, error) {
	var valueJSON string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&valueJSON)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal([]byte(valueJSON), out)
}

// AllSettings returns every stored setting as raw JSON values
func (r *SettingsRepository) AllSettings() (map[string]json.RawMessage, error) {
	rows, err := r.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]json.RawMessage)
	for rows.Next() {
		var key, valueJSON string
		if err := rows.Scan(&key, &valueJSON); err != nil {
			return nil, err
		}
		settings[key] = json.RawMessage(valueJSON)
	}
	return settings, rows.Err()
}

// SetPreference stores a user preference
func (r *SettingsRepository) SetPreference(key string, value any) error {
	valueJSON, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`
		INSERT INTO user_preferences (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(valueJSON), time.Now())
	return err
}

// GetPreference loads a user preference into out. Returns false when unset.
func (r *SettingsRepository) GetPreference(key string, out any) (bool, error) {
	var valueJSON string
	err := r.db.QueryRow(`SELECT value FROM user_preferences WHERE key = ?`, key).Scan(&valueJSON)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal([]byte(valueJSON), out)
}
