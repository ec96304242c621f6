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
	"fmt"
	"time"

	flag "github.com/spf13/pflag"
)

// CLIOptions is the parsed form of the driver CLI surface (spec.md §6
// "Driver CLI surface"): --delay, --start, --end, --session, --no-env-test.
type CLIOptions struct {
	Delay     time.Duration
	Start     int
	End       int
	HasEnd    bool
	Session   string
	NoEnvTest bool
}

// ParseCLI parses args the same way cmd/kfuzz's demo binary does (mirroring
// cmd/cie/main.go's pflag-based parsing), failing construction on any flag
// it does not recognise (spec.md §6 "Unknown options fail construction").
func ParseCLI(args []string) (CLIOptions, error) {
	fs := flag.NewFlagSet("kfuzz", flag.ContinueOnError)
	fs.Usage = func() {}

	delaySeconds := fs.Float64("delay", 0, "seconds to sleep after each post_test")
	start := fs.Int("start", 0, "first mutation index to run (inclusive)")
	end := fs.Int("end", -1, "last mutation index to run (exclusive); defaults to num_mutations()")
	session := fs.String("session", "", "path to the session store")
	noEnvTest := fs.Bool("no-env-test", false, "skip the pristine-render environment self-test")

	if err := fs.Parse(args); err != nil {
		return CLIOptions{}, fmt.Errorf("parse driver flags: %w", err)
	}

	if *delaySeconds < 0 {
		return CLIOptions{}, fmt.Errorf("parse driver flags: --delay must be non-negative, got %v", *delaySeconds)
	}
	if *start < 0 {
		return CLIOptions{}, fmt.Errorf("parse driver flags: --start must be non-negative, got %d", *start)
	}

	opts := CLIOptions{
		Delay:     time.Duration(*delaySeconds * float64(time.Second)),
		Start:     *start,
		Session:   *session,
		NoEnvTest: *noEnvTest,
	}
	if *end >= 0 {
		opts.End, opts.HasEnd = *end, true
	}
	return opts, nil
}

// ToConfig builds a driver Config from the parsed CLI surface. showProgress
// and noColor are not part of the CLI surface named in spec.md §6; callers
// (cmd/kfuzz) thread them in from their own interactivity detection.
func (o CLIOptions) ToConfig(showProgress, noColor bool) Config {
	cfg := Config{
		Delay:        o.Delay,
		Start:        o.Start,
		NoEnvTest:    o.NoEnvTest,
		ShowProgress: showProgress,
		NoColor:      noColor,
	}
	if o.HasEnd {
		cfg.End = o.End
	}
	return cfg
}
