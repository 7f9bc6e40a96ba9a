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
	"fmt"
	"strconv"

	"github.com/carverauto/portradar/pkg/apic"
	"github.com/carverauto/portradar/pkg/dn"
	"github.com/carverauto/portradar/pkg/models"
)

// Highest values accepted in block ranges. Anything larger cannot name a
// real port or leaf node.
const (
	maxPortNumber = 1024
	maxNodeID     = 65535
)

// ChildKind tags a profile tree child with what it contributes to the join.
type ChildKind int

const (
	KindOther ChildKind = iota
	KindPortBlock
	KindPolicyGroupRef
	KindNodeBlock
	KindProfileLink
	KindLeafSelector
	KindPortSelector
)

func (k ChildKind) String() string {
	switch k {
	case KindPortBlock:
		return "port_block"
	case KindPolicyGroupRef:
		return "policy_group_ref"
	case KindNodeBlock:
		return "node_block"
	case KindProfileLink:
		return "profile_link"
	case KindLeafSelector:
		return "leaf_selector"
	case KindPortSelector:
		return "port_selector"
	case KindOther:
		return "other"
	}

	return "unknown"
}

// Child is a decoded profile tree child. Only the fields matching Kind are
// set.
type Child struct {
	Kind      ChildKind
	Object    *apic.Object
	Name      string
	PortBlock models.PortBlock
	NodeBlock models.NodeBlock
	// Target is the policy group name for KindPolicyGroupRef and the
	// interface profile name for KindProfileLink.
	Target string
}

// DecodeChild classifies obj once so tree walks can switch on Kind.
func DecodeChild(obj *apic.Object) (Child, error) {
	c := Child{Kind: KindOther, Object: obj, Name: obj.Name()}

	switch obj.Class {
	case apic.ClassPortBlock:
		from, to, err := parseRange(obj, "fromPort", "toPort", maxPortNumber)
		if err != nil {
			return c, err
		}

		c.Kind = KindPortBlock
		c.PortBlock = models.PortBlock{From: from, To: to}

	case apic.ClassNodeBlock:
		from, to, err := parseRange(obj, "from_", "to_", maxNodeID)
		if err != nil {
			return c, err
		}

		c.Kind = KindNodeBlock
		c.NodeBlock = models.NodeBlock{From: from, To: to}

	case apic.ClassPolicyGroupRef:
		name, err := dn.PolicyGroupFromTarget(obj.Attr("tDn"))
		if err != nil {
			return c, err
		}

		c.Kind = KindPolicyGroupRef
		c.Target = name

	case apic.ClassProfileLink:
		name, err := dn.InterfaceProfileFromTarget(obj.Attr("tDn"))
		if err != nil {
			return c, err
		}

		c.Kind = KindProfileLink
		c.Target = name

	case apic.ClassLeafSelector:
		c.Kind = KindLeafSelector

	case apic.ClassPortSelector:
		c.Kind = KindPortSelector
	}

	return c, nil
}

func parseRange(obj *apic.Object, fromAttr, toAttr string, limit int) (from, to int, err error) {
	from, err = parseBound(obj, fromAttr, limit)
	if err != nil {
		return 0, 0, err
	}

	to, err = parseBound(obj, toAttr, limit)
	if err != nil {
		return 0, 0, err
	}

	return from, to, nil
}

func parseBound(obj *apic.Object, attr string, limit int) (int, error) {
	v, err := strconv.Atoi(obj.Attr(attr))
	if err != nil || v < 0 || v > limit {
		return 0, fmt.Errorf("%w: %s %s=%q", ErrMalformedBlock, obj.DN, attr, obj.Attr(attr))
	}

	return v, nil
}
