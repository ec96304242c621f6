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

package target

import (
	"context"
	"sync"

	"github.com/kraklabs/kfuzz/pkg/bitstring"
	"github.com/kraklabs/kfuzz/pkg/kfuzz/session"
)

// StubTarget is a server-style reference Target: it records every
// transmitted payload and always reports passed, unless Fail is set. It is
// used by the driver and target package tests (cmd/kfuzz's demo binary uses
// its own TCP target), the same role a hand-rolled fake SUT plays in an
// integration test.
type StubTarget struct {
	// Fail, if non-nil, is called with the test index and decides whether
	// that test should be reported as failed.
	Fail func(index int) (bool, string)

	mu          sync.Mutex
	transmitted []bitstring.Bitstring
	lastIndex   int
	setupCount  int
	teardownOK  bool
}

func NewStubTarget() *StubTarget { return &StubTarget{} }

func (t *StubTarget) Setup(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setupCount++
	return nil
}

func (t *StubTarget) PreTest(ctx context.Context, index int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastIndex = index
	return nil
}

func (t *StubTarget) Transmit(ctx context.Context, payload bitstring.Bitstring) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.transmitted = append(t.transmitted, payload)
	return nil
}

func (t *StubTarget) Trigger(ctx context.Context) error { return ErrNotSupported }

func (t *StubTarget) PostTest(ctx context.Context, index int) error { return nil }

func (t *StubTarget) GetReport(ctx context.Context) (session.Report, error) {
	t.mu.Lock()
	index := t.lastIndex
	t.mu.Unlock()

	if t.Fail != nil {
		if failed, reason := t.Fail(index); failed {
			return session.Report{Status: session.StatusFailed, Reason: reason}, nil
		}
	}
	return session.Report{Status: session.StatusPassed}, nil
}

func (t *StubTarget) Teardown(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.teardownOK = true
	return nil
}

// Transmitted returns every payload recorded by Transmit so far, in order.
func (t *StubTarget) Transmitted() []bitstring.Bitstring {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]bitstring.Bitstring, len(t.transmitted))
	copy(out, t.transmitted)
	return out
}

var _ Target = (*StubTarget)(nil)
