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
	"time"

	"github.com/google/uuid"
)

// Status classifies a single test's outcome (spec.md §6 "get_report").
type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
	StatusError  Status = "error"
)

// Report is the structured tree of key/value pairs a Target returns from
// get_report() for a single test index.
type Report struct {
	Status Status         `json:"status"`
	Reason string         `json:"reason,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// Info is the persisted identity and progress record for one fuzzing run
// (spec.md §3 "Session info", §6 "Persisted state layout"). RunID namespaces
// the record the way the teacher's IngestionResult.RunID namespaces an
// ingestion run.
type Info struct {
	RunID         string    `json:"run_id"`
	EngineVersion string    `json:"engine_version"`
	TemplateName  string    `json:"template_name"`
	TemplateHash  uint64    `json:"template_hash"`
	StartIndex    int       `json:"start_index"`
	CurrentIndex  int       `json:"current_index"`
	EndIndex      int       `json:"end_index"`
	StartTime     time.Time `json:"start_time"`
	FailureCount  int       `json:"failure_count"`
}

// NewInfo builds a fresh run record for templateName/templateHash, starting
// at startIndex with a freshly minted run ID (mirroring the teacher's
// IngestionResult.RunID: "unique identifier for this ingestion run (UUID)").
func NewInfo(engineVersion, templateName string, templateHash uint64, startIndex, endIndex int) Info {
	return Info{
		RunID:         uuid.NewString(),
		EngineVersion: engineVersion,
		TemplateName:  templateName,
		TemplateHash:  templateHash,
		StartIndex:    startIndex,
		CurrentIndex:  startIndex - 1,
		EndIndex:      endIndex,
		StartTime:     time.Now(),
	}
}

// CheckCompatible verifies that a resumed Info record matches the template
// currently being run (spec.md §8 scenario 6).
func (info Info) CheckCompatible(templateName string, templateHash uint64) error {
	if info.TemplateHash != templateHash {
		return &IncompatibleError{
			StoredHash: info.TemplateHash, CurrentHash: templateHash,
			StoredName: info.TemplateName, CurrentName: templateName,
		}
	}
	return nil
}
