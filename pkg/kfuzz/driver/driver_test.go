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
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/kfuzz/pkg/kfuzz/encode"
	"github.com/kraklabs/kfuzz/pkg/kfuzz/model"
	"github.com/kraklabs/kfuzz/pkg/kfuzz/session"
	"github.com/kraklabs/kfuzz/pkg/kfuzz/target"
)

func newFuzzableTemplate(name string) *model.Template {
	field := model.NewString(name+"_field", []byte("AAAA"), encode.Identity(), true, 64)
	root := model.NewGroupContainer(name, field)
	return model.NewTemplate(root)
}

func TestDriverRunHappyPath(t *testing.T) {
	tmpl := newFuzzableTemplate("happy")
	tgt := target.NewStubTarget()
	store := session.NewMemoryStore()

	d := New(tmpl, tgt, store, Config{End: 3, NoColor: true}, nil)
	result, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, result.Status)
	require.Equal(t, 3, result.TestsRun)
	require.Equal(t, 0, result.FailureCount)
}

func TestDriverEnvironmentNotReady(t *testing.T) {
	tmpl := newFuzzableTemplate("unready")
	tgt := target.NewStubTarget()
	tgt.Fail = func(index int) (bool, string) { return true, "boom" }
	store := session.NewMemoryStore()

	d := New(tmpl, tgt, store, Config{End: 3, NoColor: true}, nil)
	result, err := d.Run(context.Background())
	require.Error(t, err)
	require.Equal(t, StatusEnvironmentNotReady, result.Status)

	var notReady *EnvironmentNotReadyError
	require.ErrorAs(t, err, &notReady)
}

func TestDriverSessionIncompatibleResume(t *testing.T) {
	tmpl := newFuzzableTemplate("incompatible")
	tgt := target.NewStubTarget()
	store := session.NewMemoryStore()

	stale := session.NewInfo(EngineVersion, tmpl.Name(), tmpl.Hash()+1, 0, 3)
	require.NoError(t, store.Start())
	require.NoError(t, store.SetSessionInfo(stale))

	d := New(tmpl, tgt, store, Config{End: 3, NoColor: true}, nil)
	result, err := d.Run(context.Background())
	require.Error(t, err)
	require.Equal(t, StatusSessionIncompatible, result.Status)

	var incompatible *session.IncompatibleError
	require.ErrorAs(t, err, &incompatible)
}

func TestDriverMaxFailuresStops(t *testing.T) {
	tmpl := newFuzzableTemplate("failing")
	tgt := target.NewStubTarget()
	tgt.Fail = func(index int) (bool, string) {
		return index >= 0, "always fails"
	}
	store := session.NewMemoryStore()

	d := New(tmpl, tgt, store, Config{End: 10, MaxFailures: 2, NoEnvTest: true, NoColor: true}, nil)
	result, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusMaxFailuresReached, result.Status)
	require.Equal(t, 2, result.FailureCount)
	require.Less(t, result.TestsRun, 10)
}

func TestDriverRunCompletesAfterPauseResume(t *testing.T) {
	tmpl := newFuzzableTemplate("paused")
	tgt := target.NewStubTarget()
	store := session.NewMemoryStore()

	d := New(tmpl, tgt, store, Config{End: 1, NoEnvTest: true, NoColor: true}, nil)
	d.Pause()
	d.Resume()

	result, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, result.Status)
}

func TestDriverRunOnly(t *testing.T) {
	tmpl := newFuzzableTemplate("runonly")
	tgt := target.NewStubTarget()
	store := session.NewMemoryStore()

	d := New(tmpl, tgt, store, Config{NoEnvTest: true, NoColor: true}, nil)
	result, err := d.RunOnly(context.Background(), []int{0, 2, 1})
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, result.Status)
	require.Equal(t, 3, result.TestsRun)
	require.Equal(t, 1, result.LastIndex)
}
