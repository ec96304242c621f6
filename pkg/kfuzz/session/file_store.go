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
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// FileStore is the on-disk directory Store backend: a plain directory holding a small
// JSON SessionInfo file, a generic key/value subdirectory, and a subdirectory
// of zstd-compressed per-test reports. Reports are the one part of a session
// expected to grow large (arbitrary Target-supplied key/value trees across
// potentially thousands of tests), so only that subdirectory is compressed -
// the same "compress the bulky part, leave metadata plain" shape as the
// teacher's manifest persistence (pkg/ingestion/manifest.go), with zstd added
// because report blobs are larger and more repetitive than a manifest.
type FileStore struct {
	logger *slog.Logger
	dir    string

	mu  sync.Mutex
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewFileStore builds a FileStore rooted at dir. dir is created on Start.
func NewFileStore(dir string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{dir: dir, logger: logger}
}

func (s *FileStore) Start() error {
	if err := os.MkdirAll(filepath.Join(s.dir, "kv"), 0750); err != nil {
		return fmt.Errorf("session.store_start: create kv dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(s.dir, "reports"), 0750); err != nil {
		return fmt.Errorf("session.store_start: create reports dir: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return fmt.Errorf("session.store_start: init zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return fmt.Errorf("session.store_start: init zstd decoder: %w", err)
	}
	s.mu.Lock()
	s.enc, s.dec = enc, dec
	s.mu.Unlock()
	s.logger.Info("session.store_start", "dir", s.dir)
	return nil
}

func (s *FileStore) infoPath() string { return filepath.Join(s.dir, "session.json") }

func (s *FileStore) GetSessionInfo() (Info, bool, error) {
	data, err := os.ReadFile(s.infoPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Info{}, false, nil
		}
		return Info{}, false, fmt.Errorf("session.get_session_info: %w", err)
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return Info{}, false, fmt.Errorf("session.get_session_info: parse: %w", err)
	}
	return info, true, nil
}

func (s *FileStore) SetSessionInfo(info Info) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("session.set_session_info: marshal: %w", err)
	}
	if err := writeFileAtomic(s.infoPath(), data, 0600); err != nil {
		return fmt.Errorf("session.set_session_info: %w", err)
	}
	return nil
}

func (s *FileStore) reportPath(testIndex int) string {
	return filepath.Join(s.dir, "reports", fmt.Sprintf("%d.json.zst", testIndex))
}

func (s *FileStore) StoreReport(testIndex int, report Report) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("session.store_report: marshal: %w", err)
	}

	s.mu.Lock()
	compressed := s.enc.EncodeAll(raw, nil)
	s.mu.Unlock()

	if err := writeFileAtomic(s.reportPath(testIndex), compressed, 0600); err != nil {
		return fmt.Errorf("session.store_report: %w", err)
	}
	s.logger.Debug("session.store_report", "test_index", testIndex, "status", report.Status)
	return nil
}

func (s *FileStore) GetReport(testIndex int) (Report, bool, error) {
	compressed, err := os.ReadFile(s.reportPath(testIndex))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Report{}, false, nil
		}
		return Report{}, false, fmt.Errorf("session.get_report: %w", err)
	}

	s.mu.Lock()
	raw, err := s.dec.DecodeAll(compressed, nil)
	s.mu.Unlock()
	if err != nil {
		return Report{}, false, fmt.Errorf("session.get_report: decompress: %w", err)
	}

	var report Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return Report{}, false, fmt.Errorf("session.get_report: parse: %w", err)
	}
	return report, true, nil
}

func (s *FileStore) kvPath(key string) string {
	return filepath.Join(s.dir, "kv", sanitizeKey(key)+".bin")
}

func (s *FileStore) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.kvPath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("session.get(%q): %w", key, err)
	}
	return data, true, nil
}

func (s *FileStore) Set(key string, value []byte) error {
	if err := writeFileAtomic(s.kvPath(key), value, 0600); err != nil {
		return fmt.Errorf("session.set(%q): %w", key, err)
	}
	return nil
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enc != nil {
		s.enc.Close()
	}
	if s.dec != nil {
		s.dec.Close()
	}
	return nil
}

// writeFileAtomic writes data via a temp file + rename, matching the
// teacher's manifest persistence (pkg/ingestion/manifest.go's SaveManifest).
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// sanitizeKey keeps a caller-supplied key from escaping the kv directory via
// path separators.
func sanitizeKey(key string) string {
	return filepath.Base(filepath.Clean("/" + key))
}
