// Copyright 2025 Arion Yau
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// CredentialKey is the settings key the pairing credential is stored under
const CredentialKey = "authCode"

// SQLiteStore keeps per-device settings in a SQLite database
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the settings database at dbPath
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer keeps get/set atomic without busy retries
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	query := `CREATE TABLE IF NOT EXISTS settings (
		device TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (device, key)
	)`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	return nil
}

// Get returns the value stored for device/key and whether it exists
func (s *SQLiteStore) Get(ctx context.Context, device, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE device = ? AND key = ?`, device, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %s/%s: %w", device, key, err)
	}
	return value, true, nil
}

// Set upserts the value for device/key
func (s *SQLiteStore) Set(ctx context.Context, device, key, value string) error {
	query := `INSERT INTO settings (device, key, value) VALUES (?, ?, ?)
		ON CONFLICT(device, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`
	if _, err := s.db.ExecContext(ctx, query, device, key, value); err != nil {
		return fmt.Errorf("failed to write setting %s/%s: %w", device, key, err)
	}
	return nil
}

// Delete removes device/key if present
func (s *SQLiteStore) Delete(ctx context.Context, device, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE device = ? AND key = ?`, device, key); err != nil {
		return fmt.Errorf("failed to delete setting %s/%s: %w", device, key, err)
	}
	return nil
}

func (s *SQLiteStore) GetCredential(ctx context.Context, instance string) (string, error) {
	value, _, err := s.Get(ctx, instance, CredentialKey)
	return value, err
}

func (s *SQLiteStore) SetCredential(ctx context.Context, instance, credential string) error {
	return s.Set(ctx, instance, CredentialKey, credential)
}
