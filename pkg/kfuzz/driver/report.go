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
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/kraklabs/kfuzz/pkg/kfuzz/session"
)

// reportPrinter prints a one-line, human-facing summary of each test's
// report, colored by status. Color is disabled when stdout is not a TTY or
// NO_COLOR is set, the same check cmd/cie/main.go applies to its own
// --no-color flag.
type reportPrinter struct {
	out     io.Writer
	passed  *color.Color
	failed  *color.Color
	errored *color.Color
}

func newReportPrinter(out *os.File, noColor bool) *reportPrinter {
	disabled := noColor || os.Getenv("NO_COLOR") != "" || !isatty.IsTerminal(out.Fd())

	passed := color.New(color.FgGreen)
	failed := color.New(color.FgRed, color.Bold)
	errored := color.New(color.FgYellow)
	if disabled {
		passed.DisableColor()
		failed.DisableColor()
		errored.DisableColor()
	}
	return &reportPrinter{out: out, passed: passed, failed: failed, errored: errored}
}

func (p *reportPrinter) Print(index int, report session.Report) {
	switch report.Status {
	case session.StatusPassed:
		p.passed.Fprintf(p.out, "[%d] passed\n", index)
	case session.StatusFailed:
		p.failed.Fprintf(p.out, "[%d] FAILED: %s\n", index, report.Reason)
	case session.StatusError:
		p.errored.Fprintf(p.out, "[%d] error: %s\n", index, report.Reason)
	default:
		fmt.Fprintf(p.out, "[%d] %s: %s\n", index, report.Status, report.Reason)
	}
}
