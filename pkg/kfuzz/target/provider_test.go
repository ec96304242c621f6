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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/kfuzz/pkg/bitstring"
)

func TestStageProviderMatchesNameCaseInsensitive(t *testing.T) {
	p := &StageProvider{Name: "Username", Payload: []byte("payload")}

	got, ok := p.GetMutation("username", nil)
	require.True(t, ok)
	require.Equal(t, []byte("payload"), got)

	_, ok = p.GetMutation("password", nil)
	require.False(t, ok)
}

func TestStageProviderMatchesStageAny(t *testing.T) {
	p := &StageProvider{Name: "Username", Payload: []byte("payload")}

	got, ok := p.GetMutation("stage_any", nil)
	require.True(t, ok)
	require.Equal(t, []byte("payload"), got)
}

func TestStageProviderNoMatchWhenNameEmpty(t *testing.T) {
	p := &StageProvider{Payload: []byte("payload")}
	_, ok := p.GetMutation("anything", nil)
	require.False(t, ok)
}

func TestStubTargetServerMode(t *testing.T) {
	ctx := context.Background()
	tgt := NewStubTarget()

	require.NoError(t, tgt.Setup(ctx))
	require.NoError(t, tgt.PreTest(ctx, 0))
	require.NoError(t, tgt.Transmit(ctx, bitstring.FromBytes([]byte{0x01})))
	require.ErrorIs(t, tgt.Trigger(ctx), ErrNotSupported)
	require.NoError(t, tgt.PostTest(ctx, 0))

	report, err := tgt.GetReport(ctx)
	require.NoError(t, err)
	require.Equal(t, "passed", string(report.Status))

	require.NoError(t, tgt.Teardown(ctx))
	require.Len(t, tgt.Transmitted(), 1)
}

func TestStubTargetFailHook(t *testing.T) {
	ctx := context.Background()
	tgt := NewStubTarget()
	tgt.Fail = func(index int) (bool, string) {
		return index == 3, "boom"
	}

	require.NoError(t, tgt.PreTest(ctx, 3))
	report, err := tgt.GetReport(ctx)
	require.NoError(t, err)
	require.Equal(t, "failed", string(report.Status))
	require.Equal(t, "boom", report.Reason)
}
