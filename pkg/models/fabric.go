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

// Package models holds the fabric port domain types shared by the
// correlation engine, the decommission planner and the report sink.
package models

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultCard is the line card access ports are addressed on when
	// port blocks are expanded.
	DefaultCard = 1

	// UnboundEPG is the single DeployedEPGs entry of a port without bindings.
	UnboundEPG = "None (Unbound)"

	// NoPolicyGroup is used when a selector has no policy group relation.
	NoPolicyGroup = "None"

	// StatusNotAvailable is reported when no status object exists for a port.
	StatusNotAvailable = "N/A"

	// StatusNotFoundSFP is the status-only report's placeholder for ports
	// without a status object.
	StatusNotFoundSFP = "N/A (Not Found/SFP Missing)"

	// InterfacePrefix prefixes card/port pairs in interface names.
	InterfacePrefix = "eth"
)

// PortKey is the canonical join key for a physical port.
type PortKey struct {
	Node     string `json:"node"`
	CardPort string `json:"card_port"`
}

// NewPortKey builds a key for the given node, card and port numbers.
func NewPortKey(node string, card, port int) PortKey {
	return PortKey{Node: node, CardPort: fmt.Sprintf("%d/%d", card, port)}
}

// PortKeyFromInterface builds a key from an interface name such as "eth1/10".
func PortKeyFromInterface(node, iface string) PortKey {
	return PortKey{Node: node, CardPort: strings.TrimPrefix(iface, InterfacePrefix)}
}

// String renders the key as "<node>/<card>/<port>".
func (k PortKey) String() string {
	return k.Node + "/" + k.CardPort
}

// Interface returns the interface name of the key, e.g. "eth1/48".
func (k PortKey) Interface() string {
	return InterfacePrefix + k.CardPort
}

// OperStatus is the operational state of a physical port.
type OperStatus string

const (
	OperStatusUp   OperStatus = "up"
	OperStatusDown OperStatus = "down"
)

// ParseOperStatus normalizes a status string read from the controller or a report.
func ParseOperStatus(s string) OperStatus {
	return OperStatus(strings.ToLower(strings.TrimSpace(s)))
}

// IsUp reports whether the port is passing traffic.
func (s OperStatus) IsUp() bool {
	return s == OperStatusUp
}

// IsDown reports whether the port is operationally down.
func (s OperStatus) IsDown() bool {
	return s == OperStatusDown
}

// EndpointGroupBinding identifies an EPG statically bound to a port.
type EndpointGroupBinding struct {
	Tenant     string `json:"tenant"`
	AppProfile string `json:"app_profile"`
	EPG        string `json:"epg"`
}

// String renders the binding as "tenant/app-profile/epg".
func (b EndpointGroupBinding) String() string {
	return b.Tenant + "/" + b.AppProfile + "/" + b.EPG
}

// ParseEndpointGroup parses the "tenant/app-profile/epg" form used in reports.
func ParseEndpointGroup(s string) (EndpointGroupBinding, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return EndpointGroupBinding{}, fmt.Errorf("%w: %q", ErrMalformedEPGPath, s)
	}

	for _, p := range parts {
		if p == "" {
			return EndpointGroupBinding{}, fmt.Errorf("%w: %q", ErrMalformedEPGPath, s)
		}
	}

	return EndpointGroupBinding{Tenant: parts[0], AppProfile: parts[1], EPG: parts[2]}, nil
}

// PortBlock is an inclusive range of port numbers on card 1.
type PortBlock struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Ports expands the block. A reversed range yields nothing.
func (b PortBlock) Ports() []int {
	if b.From > b.To {
		return nil
	}

	ports := make([]int, 0, b.To-b.From+1)
	for p := b.From; p <= b.To; p++ {
		ports = append(ports, p)
	}

	return ports
}

// Selector is an interface selector owned by an interface profile.
type Selector struct {
	Name        string      `json:"name"`
	PolicyGroup string      `json:"policy_group"`
	Blocks      []PortBlock `json:"blocks"`
}

// InterfaceProfile groups selectors under one name.
type InterfaceProfile struct {
	Name      string     `json:"name"`
	Selectors []Selector `json:"selectors"`
}

// NodeBlock is an inclusive range of node IDs.
type NodeBlock struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Nodes expands the block into node IDs. A reversed range yields nothing.
func (b NodeBlock) Nodes() []string {
	if b.From > b.To {
		return nil
	}

	nodes := make([]string, 0, b.To-b.From+1)
	for n := b.From; n <= b.To; n++ {
		nodes = append(nodes, strconv.Itoa(n))
	}

	return nodes
}

// SwitchProfile binds a set of leaf nodes to interface profiles.
type SwitchProfile struct {
	Name              string      `json:"name"`
	NodeBlocks        []NodeBlock `json:"node_blocks"`
	InterfaceProfiles []string    `json:"interface_profiles"`
}

// Nodes expands every node block of the profile, in block order.
func (p *SwitchProfile) Nodes() []string {
	var nodes []string
	for _, b := range p.NodeBlocks {
		nodes = append(nodes, b.Nodes()...)
	}

	return nodes
}

// PortRecord is the flattened view of one port. Records are never mutated
// after the correlation engine emits them.
type PortRecord struct {
	Node             string   `json:"node"`
	Interface        string   `json:"interface"`
	Status           string   `json:"status"`
	DeployedEPGs     []string `json:"deployed_epgs"`
	InterfaceProfile string   `json:"interface_profile"`
	Selector         string   `json:"selector"`
	PolicyGroup      string   `json:"policy_group"`
	SwitchProfile    string   `json:"switch_profile"`
}

// Key returns the port key of the record.
func (r *PortRecord) Key() PortKey {
	return PortKeyFromInterface(r.Node, r.Interface)
}

// SelectorRef returns the identity of the selector that configures the port.
func (r *PortRecord) SelectorRef() SelectorRef {
	return SelectorRef{InterfaceProfile: r.InterfaceProfile, Name: r.Selector}
}

// IsUnbound reports whether no EPG is statically bound to the port.
func (r *PortRecord) IsUnbound() bool {
	return len(r.DeployedEPGs) == 0 || (len(r.DeployedEPGs) == 1 && r.DeployedEPGs[0] == UnboundEPG)
}

// SelectorRef identifies a selector globally.
type SelectorRef struct {
	InterfaceProfile string `json:"interface_profile"`
	Name             string `json:"selector"`
}

// String renders the reference as "<interface profile>/<selector>".
func (s SelectorRef) String() string {
	return s.InterfaceProfile + "/" + s.Name
}

// IsZero reports whether the reference does not point at any selector.
func (s SelectorRef) IsZero() bool {
	name := strings.TrimSpace(s.Name)
	profile := strings.TrimSpace(s.InterfaceProfile)

	return name == "" || profile == "" || strings.EqualFold(profile, NoPolicyGroup)
}
