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

package model

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"sync"
)

// The bulky static payload tables below are computed once per field class
// and cached behind a sync.Once, matching the "class-level shared
// libraries" design note in spec.md §9: per-instance filtering (max_size,
// range) never mutates this shared data, it only narrows the MutationLibrary
// built on top of it.

var (
	stringPayloadsOnce sync.Once
	stringPayloads     [][]byte

	integerPayloadsOnce sync.Once
	integerPayloads     []int64
)

// StringClassLibrary returns the shared payload table for String fields:
// format-string payloads, NUL sequences, command-injection strings,
// SQL-injection strings, path-traversal strings, UTF edge bytes, plus any
// lines from ./kitty_strings.txt (spec.md §4.2, §6).
func StringClassLibrary() [][]byte {
	stringPayloadsOnce.Do(func() {
		stringPayloads = buildStringClassLibrary()
	})
	return stringPayloads
}

func buildStringClassLibrary() [][]byte {
	var out [][]byte
	add := func(s string) { out = append(out, []byte(s)) }

	// Format-string payloads.
	add("%s%s%s%s%s%s%s%s%s%s")
	add("%n%n%n%n%n%n%n%n%n%n")
	add("%x%x%x%x%x%x%x%x%x%x")
	add("%p%p%p%p%p%p%p%p%p%p")
	add("%.1024d")
	add("%99999999999s")

	// NUL sequences.
	add("")
	add("\x00")
	add(strings.Repeat("\x00", 8))
	add(strings.Repeat("\x00", 256))

	// Command-injection strings.
	add("; ls -la")
	add("| cat /etc/passwd")
	add("`id`")
	add("$(id)")
	add("&& whoami")

	// SQL-injection strings.
	add("' OR '1'='1")
	add("' OR 1=1 --")
	add("'; DROP TABLE users; --")
	add("\" OR \"\"=\"")

	// Path-traversal strings.
	add("../../../../../../../../../../../../etc/passwd")
	add("..\\..\\..\\..\\..\\..\\..\\..\\windows\\win.ini")
	add("/../../../../../../../../../../../../etc/passwd")

	// UTF-8 edge bytes.
	add("\xc0\xaf")
	add("\xe0\x80\xaf")
	add("\xed\xa0\x80")
	add(strings.Repeat("\xf4\x8f\xbf\xbf", 4))

	if extra, err := readLines("kitty_strings.txt"); err == nil {
		for _, line := range extra {
			add(line)
		}
	}
	return out
}

// IntegerClassLibrary returns the shared decimal/hex literals read from
// ./kitty_integers.txt, if present (spec.md §4.2, §6). Lines may be
// decimal or 0x-prefixed hex, optionally signed.
func IntegerClassLibrary() []int64 {
	integerPayloadsOnce.Do(func() {
		integerPayloads = buildIntegerClassLibrary()
	})
	return integerPayloads
}

func buildIntegerClassLibrary() []int64 {
	lines, err := readLines("kitty_integers.txt")
	if err != nil {
		return nil
	}
	out := make([]int64, 0, len(lines))
	for _, line := range lines {
		v, err := parseIntLiteral(line)
		if err == nil {
			out = append(out, v)
		}
	}
	return out
}

func parseIntLiteral(s string) (int64, error) {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	base := 10
	if strings.HasPrefix(strings.ToLower(s), "0x") {
		base = 16
		s = s[2:]
	}
	v, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		uv, uerr := strconv.ParseUint(s, base, 64)
		if uerr != nil {
			return 0, err
		}
		v = int64(uv)
	}
	if neg {
		v = -v
	}
	return v, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

// delimiterPayloads returns single- and double-power combinations of
// common delimiter characters plus newline sequences, for the Delimiter
// field's shared library (spec.md §4.2).
func delimiterPayloads(defaults ...string) [][]byte {
	chars := []string{" ", ",", ";", ":", "|", "\t", "\n", "\r\n", "=", "&"}
	var out [][]byte
	for _, c := range chars {
		out = append(out, []byte(c))
		out = append(out, []byte(strings.Repeat(c, 2)))
	}
	out = append(out, []byte("\n\n"), []byte("\r\n\r\n"))
	for _, d := range defaults {
		out = append(out, []byte(d+d))
	}
	return out
}
