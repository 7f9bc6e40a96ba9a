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

package topology

import (
	"github.com/carverauto/portradar/pkg/models"
)

// Snapshot is the immutable input of one correlation run.
type Snapshot struct {
	Status         StatusIndex
	Bindings       BindingIndex
	Selectors      SelectorIndex
	SwitchProfiles []models.SwitchProfile
	Stats          Stats
}

// Options tune how missing data is rendered.
type Options struct {
	// StatusFallback is used when no status object exists for a port.
	// Defaults to models.StatusNotAvailable.
	StatusFallback string
}

// Correlate joins the snapshot into one record per configured port. Records
// are emitted switch profile by switch profile, then per linked interface
// profile, node, selector, block and port. The result depends only on the
// snapshot.
func Correlate(s *Snapshot, opts Options) []models.PortRecord {
	fallback := opts.StatusFallback
	if fallback == "" {
		fallback = models.StatusNotAvailable
	}

	var records []models.PortRecord

	for i := range s.SwitchProfiles {
		sp := &s.SwitchProfiles[i]
		nodes := sp.Nodes()

		for _, ipName := range sp.InterfaceProfiles {
			selectors := s.Selectors[ipName]

			for _, node := range nodes {
				for _, sel := range selectors {
					for _, block := range sel.Blocks {
						for _, port := range block.Ports() {
							key := models.NewPortKey(node, models.DefaultCard, port)

							records = append(records, models.PortRecord{
								Node:             node,
								Interface:        key.Interface(),
								Status:           statusOf(s.Status, key, fallback),
								DeployedEPGs:     epgsOf(s.Bindings, key),
								InterfaceProfile: ipName,
								Selector:         sel.Name,
								PolicyGroup:      sel.PolicyGroup,
								SwitchProfile:    sp.Name,
							})
						}
					}
				}
			}
		}
	}

	return records
}

func statusOf(index StatusIndex, key models.PortKey, fallback string) string {
	if st, ok := index[key]; ok {
		return string(st)
	}

	return fallback
}

func epgsOf(index BindingIndex, key models.PortKey) []string {
	bindings := index[key]
	if len(bindings) == 0 {
		return []string{models.UnboundEPG}
	}

	out := make([]string, len(bindings))
	for i, b := range bindings {
		out[i] = b.String()
	}

	return out
}
