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

package driver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseCLIDefaults(t *testing.T) {
	opts, err := ParseCLI(nil)
	require.NoError(t, err)
	require.Equal(t, time.Duration(0), opts.Delay)
	require.Equal(t, 0, opts.Start)
	require.False(t, opts.HasEnd)
	require.Empty(t, opts.Session)
	require.False(t, opts.NoEnvTest)
}

func TestParseCLIAllFlags(t *testing.T) {
	opts, err := ParseCLI([]string{
		"--delay", "0.5",
		"--start", "10",
		"--end", "20",
		"--session", "/tmp/sess",
		"--no-env-test",
	})
	require.NoError(t, err)
	require.Equal(t, 500*time.Millisecond, opts.Delay)
	require.Equal(t, 10, opts.Start)
	require.True(t, opts.HasEnd)
	require.Equal(t, 20, opts.End)
	require.Equal(t, "/tmp/sess", opts.Session)
	require.True(t, opts.NoEnvTest)
}

func TestParseCLIUnknownOptionFails(t *testing.T) {
	_, err := ParseCLI([]string{"--bogus-flag"})
	require.Error(t, err)
}

func TestParseCLINegativeDelayFails(t *testing.T) {
	_, err := ParseCLI([]string{"--delay", "-1"})
	require.Error(t, err)
}

func TestCLIOptionsToConfig(t *testing.T) {
	opts := CLIOptions{Delay: time.Second, Start: 5, End: 50, HasEnd: true, NoEnvTest: true}
	cfg := opts.ToConfig(true, false)
	require.Equal(t, time.Second, cfg.Delay)
	require.Equal(t, 5, cfg.Start)
	require.Equal(t, 50, cfg.End)
	require.True(t, cfg.NoEnvTest)
	require.True(t, cfg.ShowProgress)
	require.False(t, cfg.NoColor)
}
