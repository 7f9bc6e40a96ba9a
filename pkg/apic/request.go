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

package apic

import (
	"encoding/json"
)

// MutationStatus is the status attribute sent with an intent.
type MutationStatus string

const (
	StatusDeleted MutationStatus = "deleted"
)

// MutationIntent is one object change inside a ConfigRequest.
type MutationIntent struct {
	Class  string         `json:"class"`
	DN     string         `json:"dn"`
	Status MutationStatus `json:"status"`
}

// ConfigRequest batches mutations that are committed together. It is not
// safe for concurrent use.
type ConfigRequest struct {
	intents []MutationIntent
	seen    map[string]struct{}
}

// NewConfigRequest returns an empty batch.
func NewConfigRequest() *ConfigRequest {
	return &ConfigRequest{seen: make(map[string]struct{})}
}

// Delete marks obj for deletion. It returns false when the DN is already
// part of the batch.
func (r *ConfigRequest) Delete(obj *Object) bool {
	if _, dup := r.seen[obj.DN]; dup {
		return false
	}

	r.seen[obj.DN] = struct{}{}
	r.intents = append(r.intents, MutationIntent{Class: obj.Class, DN: obj.DN, Status: StatusDeleted})

	return true
}

// Len returns the number of intents in the batch.
func (r *ConfigRequest) Len() int {
	if r == nil {
		return 0
	}

	return len(r.intents)
}

// Intents returns a copy of the batched intents in insertion order.
func (r *ConfigRequest) Intents() []MutationIntent {
	if r == nil {
		return nil
	}

	return append([]MutationIntent(nil), r.intents...)
}

// Payload renders the batch as a single polUni document so the controller
// applies it in one transaction.
func (r *ConfigRequest) Payload() ([]byte, error) {
	if r.Len() == 0 {
		return nil, ErrEmptyBatch
	}

	children := make([]map[string]interface{}, 0, len(r.intents))
	for _, in := range r.intents {
		children = append(children, map[string]interface{}{
			in.Class: map[string]interface{}{
				"attributes": map[string]string{
					"dn":     in.DN,
					"status": string(in.Status),
				},
			},
		})
	}

	doc := map[string]interface{}{
		ClassUniverse: map[string]interface{}{
			"attributes": map[string]string{"dn": "uni", "status": "modified"},
			"children":   children,
		},
	}

	return json.Marshal(doc)
}
