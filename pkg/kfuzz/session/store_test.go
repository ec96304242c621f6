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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// storeFactories exercises every Store implementation against the same
// contract, so a new backend only needs an entry here.
func storeFactories(t *testing.T) map[string]func() Store {
	t.Helper()
	dir := t.TempDir()
	return map[string]func() Store{
		"memory": func() Store { return NewMemoryStore() },
		"file":   func() Store { return NewFileStore(filepath.Join(dir, "file-store"), nil) },
		"sqlite": func() Store { return NewSQLiteStore(filepath.Join(dir, "session.db"), nil) },
	}
}

func TestStoreSessionInfoRoundTrip(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory()
			require.NoError(t, s.Start())
			defer s.Close()

			_, ok, err := s.GetSessionInfo()
			require.NoError(t, err)
			require.False(t, ok)

			info := NewInfo("1.0.0", "T", 0xDEADBEEF, 0, 100)
			info.CurrentIndex = 5
			info.FailureCount = 2
			require.NoError(t, s.SetSessionInfo(info))

			got, ok, err := s.GetSessionInfo()
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, info.RunID, got.RunID)
			require.Equal(t, info.TemplateHash, got.TemplateHash)
			require.Equal(t, info.CurrentIndex, got.CurrentIndex)
			require.Equal(t, info.FailureCount, got.FailureCount)
			require.WithinDuration(t, info.StartTime, got.StartTime, 0)
		})
	}
}

func TestStoreReportRoundTrip(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory()
			require.NoError(t, s.Start())
			defer s.Close()

			_, ok, err := s.GetReport(7)
			require.NoError(t, err)
			require.False(t, ok)

			report := Report{Status: StatusFailed, Reason: "timeout", Extra: map[string]any{"latency_ms": float64(12)}}
			require.NoError(t, s.StoreReport(7, report))

			got, ok, err := s.GetReport(7)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, report.Status, got.Status)
			require.Equal(t, report.Reason, got.Reason)
			require.Equal(t, report.Extra["latency_ms"], got.Extra["latency_ms"])
		})
	}
}

func TestStoreKVRoundTrip(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory()
			require.NoError(t, s.Start())
			defer s.Close()

			_, ok, err := s.Get("nope")
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, s.Set("widget", []byte("payload")))
			got, ok, err := s.Get("widget")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, []byte("payload"), got)
		})
	}
}

func TestCheckCompatible(t *testing.T) {
	info := NewInfo("1.0.0", "T", 111, 0, 10)

	require.NoError(t, info.CheckCompatible("T", 111))

	err := info.CheckCompatible("T2", 222)
	require.Error(t, err)
	var incompatible *IncompatibleError
	require.ErrorAs(t, err, &incompatible)
	require.Equal(t, uint64(111), incompatible.StoredHash)
	require.Equal(t, uint64(222), incompatible.CurrentHash)
}
