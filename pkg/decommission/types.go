/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package decommission decides which interface selectors of down ports can
// be deleted and applies the resulting batch.
package decommission

import (
	"github.com/carverauto/portradar/pkg/apic"
	"github.com/carverauto/portradar/pkg/models"
)

// Decision is the outcome for one selector group.
type Decision string

const (
	DecisionPending        Decision = "pending"
	DecisionSafeToDelete   Decision = "safe_to_delete"
	DecisionRejected       Decision = "rejected"
	DecisionAlreadyRemoved Decision = "already_removed"
)

// MemberState is what the live re-check found for one port.
type MemberState string

const (
	MemberDown          MemberState = "down"
	MemberUp            MemberState = "up"
	MemberNotFound      MemberState = "not_found"
	MemberIndeterminate MemberState = "indeterminate"
)

// Rejection reasons.
const (
	ReasonPortUp           = "port is up"
	ReasonIndeterminate    = "port status is neither up nor down"
	ReasonNotFoundStrict   = "port not found and strict mode is on"
	ReasonNoVerifiedMember = "no member port could be verified down"
	ReasonSelectorLookup   = "selector lookup failed"
)

// Candidate is a port flagged as down whose configuration traces to one
// selector.
type Candidate struct {
	Port     models.PortKey     `json:"port"`
	Selector models.SelectorRef `json:"selector"`
}

// Interface returns the interface name of the candidate port.
func (c Candidate) Interface() string {
	return c.Port.Interface()
}

// MemberResult is the live status of one group member.
type MemberResult struct {
	Port       models.PortKey `json:"port"`
	State      MemberState    `json:"state"`
	LiveStatus string         `json:"live_status,omitempty"`
}

// GroupResult is the decision for one selector and every port it covers.
type GroupResult struct {
	Selector   models.SelectorRef `json:"selector"`
	SelectorDN string             `json:"selector_dn"`
	Decision   Decision           `json:"decision"`
	Reason     string             `json:"reason,omitempty"`
	Members    []MemberResult     `json:"members"`

	object *apic.Object
}

// Summary holds the counters a caller renders after planning.
type Summary struct {
	PortsVerifiedDown       int `json:"ports_verified_down"`
	PortsSkippedAsUp        int `json:"ports_skipped_as_up"`
	PortsNotFound           int `json:"ports_not_found"`
	PortsIndeterminate      int `json:"ports_indeterminate"`
	SelectorsQueued         int `json:"selectors_queued_for_deletion"`
	SelectorsAlreadyRemoved int `json:"selectors_already_removed"`
	SelectorsRejected       int `json:"selectors_rejected"`
}

// Plan is the output of one planning pass.
type Plan struct {
	Groups  []GroupResult        `json:"groups"`
	Queued  []models.SelectorRef `json:"queued"`
	Summary Summary              `json:"summary"`
	Batch   *apic.ConfigRequest  `json:"-"`
}
