// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jmoiron/sqlx"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS session_info (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	run_id TEXT NOT NULL,
	engine_version TEXT NOT NULL,
	template_name TEXT NOT NULL,
	template_hash INTEGER NOT NULL,
	start_index INTEGER NOT NULL,
	current_index INTEGER NOT NULL,
	end_index INTEGER NOT NULL,
	start_time TEXT NOT NULL,
	failure_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS reports (
	test_index INTEGER PRIMARY KEY,
	body TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value BLOB NOT NULL
);
`

// SQLiteStore is an alternate Store backend over an embedded SQLite
// database: one database file per session, holding a single session_info
// row (id = 1). The template hash is a stored column that the driver
// compares on resume; it is not used as a key. It exercises a real
// embedded SQL engine (mattn/go-sqlite3 + jmoiron/sqlx) in place of the
// teacher's unfetchable vendored CozoDB binding (pkg/cozodb); see DESIGN.md
// for why that dependency could not be carried forward.
type SQLiteStore struct {
	logger *slog.Logger
	path   string
	db     *sqlx.DB
}

// NewSQLiteStore builds a SQLiteStore backed by the database file at path.
// path is created on Start if it does not already exist.
func NewSQLiteStore(path string, logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteStore{path: path, logger: logger}
}

func (s *SQLiteStore) Start() error {
	db, err := sqlx.Connect("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", s.path))
	if err != nil {
		return fmt.Errorf("session.store_start: open sqlite3: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return fmt.Errorf("session.store_start: create schema: %w", err)
	}
	s.db = db
	s.logger.Info("session.store_start", "path", s.path)
	return nil
}

type sessionInfoRow struct {
	RunID         string `db:"run_id"`
	EngineVersion string `db:"engine_version"`
	TemplateName  string `db:"template_name"`
	TemplateHash  int64  `db:"template_hash"`
	StartIndex    int    `db:"start_index"`
	CurrentIndex  int    `db:"current_index"`
	EndIndex      int    `db:"end_index"`
	StartTime     string `db:"start_time"`
	FailureCount  int    `db:"failure_count"`
}

func (s *SQLiteStore) GetSessionInfo() (Info, bool, error) {
	var row sessionInfoRow
	err := s.db.Get(&row, `SELECT run_id, engine_version, template_name, template_hash,
		start_index, current_index, end_index, start_time, failure_count
		FROM session_info WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return Info{}, false, nil
	}
	if err != nil {
		return Info{}, false, fmt.Errorf("session.get_session_info: %w", err)
	}
	info, err := row.toInfo()
	if err != nil {
		return Info{}, false, fmt.Errorf("session.get_session_info: %w", err)
	}
	return info, true, nil
}

func (s *SQLiteStore) SetSessionInfo(info Info) error {
	row := fromInfo(info)
	_, err := s.db.NamedExec(`INSERT INTO session_info
		(id, run_id, engine_version, template_name, template_hash, start_index, current_index, end_index, start_time, failure_count)
		VALUES (1, :run_id, :engine_version, :template_name, :template_hash, :start_index, :current_index, :end_index, :start_time, :failure_count)
		ON CONFLICT(id) DO UPDATE SET
			run_id = excluded.run_id,
			engine_version = excluded.engine_version,
			template_name = excluded.template_name,
			template_hash = excluded.template_hash,
			start_index = excluded.start_index,
			current_index = excluded.current_index,
			end_index = excluded.end_index,
			start_time = excluded.start_time,
			failure_count = excluded.failure_count`, row)
	if err != nil {
		return fmt.Errorf("session.set_session_info: %w", err)
	}
	return nil
}

func (s *SQLiteStore) StoreReport(testIndex int, report Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("session.store_report: marshal: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO reports (test_index, body) VALUES (?, ?)
		ON CONFLICT(test_index) DO UPDATE SET body = excluded.body`, testIndex, string(body))
	if err != nil {
		return fmt.Errorf("session.store_report: %w", err)
	}
	s.logger.Debug("session.store_report", "test_index", testIndex, "status", report.Status)
	return nil
}

func (s *SQLiteStore) GetReport(testIndex int) (Report, bool, error) {
	var body string
	err := s.db.Get(&body, `SELECT body FROM reports WHERE test_index = ?`, testIndex)
	if errors.Is(err, sql.ErrNoRows) {
		return Report{}, false, nil
	}
	if err != nil {
		return Report{}, false, fmt.Errorf("session.get_report: %w", err)
	}
	var report Report
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		return Report{}, false, fmt.Errorf("session.get_report: parse: %w", err)
	}
	return report, true, nil
}

func (s *SQLiteStore) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.Get(&value, `SELECT value FROM kv WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("session.get(%q): %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(key string, value []byte) error {
	_, err := s.db.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("session.set(%q): %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func fromInfo(info Info) sessionInfoRow {
	return sessionInfoRow{
		RunID:         info.RunID,
		EngineVersion: info.EngineVersion,
		TemplateName:  info.TemplateName,
		TemplateHash:  int64(info.TemplateHash),
		StartIndex:    info.StartIndex,
		CurrentIndex:  info.CurrentIndex,
		EndIndex:      info.EndIndex,
		StartTime:     info.StartTime.Format(timeLayout),
		FailureCount:  info.FailureCount,
	}
}

func (r sessionInfoRow) toInfo() (Info, error) {
	t, err := parseTime(r.StartTime)
	if err != nil {
		return Info{}, fmt.Errorf("parse start_time: %w", err)
	}
	return Info{
		RunID:         r.RunID,
		EngineVersion: r.EngineVersion,
		TemplateName:  r.TemplateName,
		TemplateHash:  uint64(r.TemplateHash),
		StartIndex:    r.StartIndex,
		CurrentIndex:  r.CurrentIndex,
		EndIndex:      r.EndIndex,
		StartTime:     t,
		FailureCount:  r.FailureCount,
	}, nil
}
