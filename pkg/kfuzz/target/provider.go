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

import "strings"

// StageAny is the sentinel stage a client-style SUT's protocol handler can
// pass to match any currently-fuzzed field, regardless of name (spec.md §6
// "the sentinel stage STAGE_ANY is used").
const StageAny = "STAGE_ANY"

// Provider is the session-data callback contract: a client-style SUT's own
// protocol handler calls GetMutation when it reaches a named protocol stage
// (spec.md §6 "Session-data callback (client mode)"). The reference driver
// in pkg/kfuzz/driver does not register or update a Provider; its client
// mode only calls Target.Trigger.
type Provider interface {
	// GetMutation returns the current mutation's payload when stage matches
	// the deepest fuzzed field's name (case-insensitive) or StageAny, and
	// ok=false otherwise - the engine never fabricates a payload for a
	// stage it doesn't recognise.
	GetMutation(stage string, data []byte) (payload []byte, ok bool)
}

// StageProvider is a minimal Provider backed by a single (name, payload)
// pair. Name and Payload are plain fields that its owner sets between
// tests; nothing in this module sets them.
type StageProvider struct {
	// Name is the deepest currently-fuzzed field's name, or "" if the
	// current mutation index mutates no single leaf (e.g. a pristine
	// render at index -1).
	Name string
	// Payload is the bytes to hand back when a stage matches.
	Payload []byte
}

func (p *StageProvider) GetMutation(stage string, _ []byte) ([]byte, bool) {
	if strings.EqualFold(stage, StageAny) {
		return p.Payload, true
	}
	if p.Name != "" && strings.EqualFold(stage, p.Name) {
		return p.Payload, true
	}
	return nil, false
}
