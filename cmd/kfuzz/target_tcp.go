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

package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/kraklabs/kfuzz/pkg/bitstring"
	"github.com/kraklabs/kfuzz/pkg/kfuzz/session"
	"github.com/kraklabs/kfuzz/pkg/kfuzz/target"
)

// tcpTarget is the reference server-style Target: it connects to host:port
// fresh for every test, writes the rendered payload, and reads up to one
// response line within a deadline. This is the demo SUT driver for
// cmd/kfuzz's "run" subcommand - not a product surface, a worked example of
// the Target contract (spec.md §6).
type tcpTarget struct {
	logger  *slog.Logger
	addr    string
	timeout time.Duration

	conn     net.Conn
	response string
	connErr  error
}

func newTCPTarget(addr string, timeout time.Duration, logger *slog.Logger) *tcpTarget {
	if logger == nil {
		logger = slog.Default()
	}
	return &tcpTarget{logger: logger, addr: addr, timeout: timeout}
}

func (t *tcpTarget) Setup(ctx context.Context) error {
	return nil
}

func (t *tcpTarget) PreTest(ctx context.Context, index int) error {
	conn, err := net.DialTimeout("tcp", t.addr, t.timeout)
	if err != nil {
		return fmt.Errorf("tcp_target.pre_test: dial %s: %w", t.addr, err)
	}
	t.conn = conn
	t.response = ""
	t.connErr = nil
	return nil
}

func (t *tcpTarget) Transmit(ctx context.Context, payload bitstring.Bitstring) error {
	if t.conn == nil {
		return fmt.Errorf("tcp_target.transmit: no connection")
	}
	_ = t.conn.SetWriteDeadline(time.Now().Add(t.timeout))
	if _, err := t.conn.Write(payload.Bytes()); err != nil {
		t.connErr = err
		return fmt.Errorf("tcp_target.transmit: %w", err)
	}
	return nil
}

func (t *tcpTarget) Trigger(ctx context.Context) error {
	return target.ErrNotSupported
}

func (t *tcpTarget) PostTest(ctx context.Context, index int) error {
	if t.conn == nil {
		return nil
	}
	_ = t.conn.SetReadDeadline(time.Now().Add(t.timeout))
	line, err := bufio.NewReader(t.conn).ReadString('\n')
	if err != nil && t.connErr == nil {
		// A read timeout or EOF is expected and not itself a failure; the
		// SUT's liveness is judged in GetReport, not here.
		t.logger.Debug("tcp_target.post_test_read", "index", index, "error", err)
	}
	t.response = line
	return nil
}

func (t *tcpTarget) GetReport(ctx context.Context) (session.Report, error) {
	if t.connErr != nil {
		return session.Report{Status: session.StatusFailed, Reason: t.connErr.Error()}, nil
	}
	return session.Report{
		Status: session.StatusPassed,
		Extra:  map[string]any{"response": t.response},
	}, nil
}

func (t *tcpTarget) Teardown(ctx context.Context) error {
	if t.conn != nil {
		err := t.conn.Close()
		t.conn = nil
		return err
	}
	return nil
}

var _ target.Target = (*tcpTarget)(nil)
