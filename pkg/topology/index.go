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
	"sort"

	"github.com/carverauto/portradar/pkg/apic"
	"github.com/carverauto/portradar/pkg/dn"
	"github.com/carverauto/portradar/pkg/logger"
	"github.com/carverauto/portradar/pkg/models"
)

// StatusIndex maps a port to its operational status.
type StatusIndex map[models.PortKey]models.OperStatus

// BindingIndex maps a port to its static EPG bindings, sorted and unique.
type BindingIndex map[models.PortKey][]models.EndpointGroupBinding

// SelectorIndex maps an interface profile name to its selectors.
type SelectorIndex map[string][]models.Selector

// Stats counts what each build step kept and dropped.
type Stats struct {
	StatusParsed      int `json:"status_parsed"`
	StatusSkipped     int `json:"status_skipped"`
	BindingsParsed    int `json:"bindings_parsed"`
	BindingsSkipped   int `json:"bindings_skipped"`
	InterfaceProfiles int `json:"interface_profiles"`
	Selectors         int `json:"selectors"`
	SwitchProfiles    int `json:"switch_profiles"`
	ChildrenSkipped   int `json:"children_skipped"`
}

// BuildStatusIndex indexes physical interface status objects. Objects whose
// DN does not parse are logged and counted in skipped.
func BuildStatusIndex(objects []*apic.Object, log logger.Logger) (index StatusIndex, skipped int) {
	index = make(StatusIndex, len(objects))

	for _, obj := range objects {
		key, err := dn.ParsePhysicalPort(obj.DN)
		if err != nil {
			log.Debug().Err(err).Msg("Skipping status object")

			skipped++

			continue
		}

		index[key] = models.ParseOperStatus(obj.Attr("operSt"))
	}

	return index, skipped
}

// BuildBindingIndex indexes static path bindings by the port they target.
func BuildBindingIndex(objects []*apic.Object, log logger.Logger) (index BindingIndex, skipped int) {
	index = make(BindingIndex)
	seen := make(map[models.PortKey]map[models.EndpointGroupBinding]struct{})

	for _, obj := range objects {
		binding, key, err := dn.ParseBinding(obj.DN, obj.Attr("tDn"))
		if err != nil {
			log.Debug().Err(err).Msg("Skipping binding object")

			skipped++

			continue
		}

		if seen[key] == nil {
			seen[key] = make(map[models.EndpointGroupBinding]struct{})
		}

		if _, dup := seen[key][binding]; dup {
			continue
		}

		seen[key][binding] = struct{}{}
		index[key] = append(index[key], binding)
	}

	for _, bindings := range index {
		sort.Slice(bindings, func(i, j int) bool {
			return bindings[i].String() < bindings[j].String()
		})
	}

	return index, skipped
}

// BuildSelectorIndex walks interface profile subtrees and collects each
// selector with its port blocks and policy group.
func BuildSelectorIndex(profiles []*apic.Object, log logger.Logger) (index SelectorIndex, skipped int) {
	index = make(SelectorIndex, len(profiles))

	for _, profile := range profiles {
		name := profile.Name()
		if name == "" {
			var err error

			if name, err = dn.InterfaceProfileFromTarget(profile.DN); err != nil {
				log.Debug().Err(err).Msg("Skipping unnamed interface profile")

				skipped++

				continue
			}
		}

		if _, dup := index[name]; dup {
			log.Warn().Str("interface_profile", name).Msg("Duplicate interface profile name, keeping the last one")
		}

		selectors := make([]models.Selector, 0, len(profile.Children))

		for _, obj := range profile.Children {
			child, err := DecodeChild(obj)
			if err != nil {
				log.Debug().Err(err).Str("interface_profile", name).Msg("Skipping profile child")

				skipped++

				continue
			}

			if child.Kind != KindPortSelector {
				continue
			}

			sel, n := decodeSelector(child, log)
			skipped += n

			selectors = append(selectors, sel)
		}

		index[name] = selectors
	}

	return index, skipped
}

func decodeSelector(sel Child, log logger.Logger) (selector models.Selector, skipped int) {
	selector = models.Selector{Name: sel.Name, PolicyGroup: models.NoPolicyGroup}

	for _, obj := range sel.Object.Children {
		child, err := DecodeChild(obj)
		if err != nil {
			log.Debug().Err(err).Str("selector", sel.Name).Msg("Skipping selector child")

			skipped++

			continue
		}

		switch child.Kind {
		case KindPortBlock:
			selector.Blocks = append(selector.Blocks, child.PortBlock)
		case KindPolicyGroupRef:
			selector.PolicyGroup = child.Target
		case KindOther, KindNodeBlock, KindProfileLink, KindLeafSelector, KindPortSelector:
		}
	}

	return selector, skipped
}

// BuildSwitchProfiles walks switch profile subtrees, expanding leaf
// selectors into node blocks and collecting linked interface profiles.
func BuildSwitchProfiles(profiles []*apic.Object, log logger.Logger) (out []models.SwitchProfile, skipped int) {
	out = make([]models.SwitchProfile, 0, len(profiles))

	for _, profile := range profiles {
		sp := models.SwitchProfile{Name: profile.Name()}

		for _, obj := range profile.Children {
			child, err := DecodeChild(obj)
			if err != nil {
				log.Debug().Err(err).Str("switch_profile", sp.Name).Msg("Skipping profile child")

				skipped++

				continue
			}

			switch child.Kind {
			case KindLeafSelector:
				blocks, n := decodeNodeBlocks(child, log)
				sp.NodeBlocks = append(sp.NodeBlocks, blocks...)
				skipped += n
			case KindProfileLink:
				sp.InterfaceProfiles = append(sp.InterfaceProfiles, child.Target)
			case KindOther, KindPortBlock, KindPolicyGroupRef, KindNodeBlock, KindPortSelector:
			}
		}

		out = append(out, sp)
	}

	return out, skipped
}

func decodeNodeBlocks(leaf Child, log logger.Logger) (blocks []models.NodeBlock, skipped int) {
	for _, obj := range leaf.Object.Children {
		child, err := DecodeChild(obj)
		if err != nil {
			log.Debug().Err(err).Str("leaf_selector", leaf.Name).Msg("Skipping leaf selector child")

			skipped++

			continue
		}

		if child.Kind == KindNodeBlock {
			blocks = append(blocks, child.NodeBlock)
		}
	}

	return blocks, skipped
}
