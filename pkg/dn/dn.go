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

// Package dn parses and builds controller distinguished names. It is the
// only package that knows how the object hierarchy is encoded in strings;
// everything downstream works on models.PortKey and friends.
package dn

import (
	"fmt"
	"strings"

	"github.com/carverauto/portradar/pkg/models"
)

// RN prefixes used by the fabric object model.
const (
	prefixNode       = "node-"
	prefixPaths      = "paths-"
	prefixPhys       = "phys-"
	prefixPathEp     = "pathep-"
	prefixTenant     = "tn-"
	prefixAppProfile = "ap-"
	prefixEPG        = "epg-"
	prefixAccPortP   = "accportprof-"
	selectorSuffix   = "-typ-range"
)

// Split breaks a DN into its relative names. Slashes inside square brackets
// belong to the enclosing RN, so "sys/phys-[eth1/1]/phys" splits into
// "sys", "phys-[eth1/1]" and "phys".
func Split(dn string) []string {
	var (
		rns   []string
		depth int
		start int
	)

	for i := 0; i < len(dn); i++ {
		switch dn[i] {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case '/':
			if depth == 0 {
				if i > start {
					rns = append(rns, dn[start:i])
				}

				start = i + 1
			}
		}
	}

	if start < len(dn) {
		rns = append(rns, dn[start:])
	}

	return rns
}

// ParsePhysicalPort extracts the port key from a physical interface status
// DN such as "topology/pod-1/node-101/sys/phys-[eth1/48]/phys".
func ParsePhysicalPort(dn string) (models.PortKey, error) {
	rns := Split(dn)

	node, ok := numericValue(rns, prefixNode)
	if !ok {
		return models.PortKey{}, newParseError(dn, "missing node-<id>")
	}

	cardPort, ok := bracketedInterface(rns, prefixPhys)
	if !ok {
		return models.PortKey{}, newParseError(dn, "missing phys-[eth<card>/<port>]")
	}

	return models.PortKey{Node: node, CardPort: cardPort}, nil
}

// ParseBinding extracts the EPG from a static path binding DN and the port
// from its target DN. Both halves must parse for the binding to be usable.
func ParseBinding(dn, targetDN string) (models.EndpointGroupBinding, models.PortKey, error) {
	rns := Split(dn)

	tenant, okT := stringValue(rns, prefixTenant)
	app, okA := stringValue(rns, prefixAppProfile)
	epg, okE := stringValue(rns, prefixEPG)

	if !okT || !okA || !okE {
		return models.EndpointGroupBinding{}, models.PortKey{}, newParseError(dn, "missing tn-/ap-/epg- segments")
	}

	target := Split(targetDN)

	node, ok := numericValue(target, prefixPaths)
	if !ok {
		return models.EndpointGroupBinding{}, models.PortKey{}, newParseError(targetDN, "missing paths-<id>")
	}

	cardPort, ok := bracketedInterface(target, prefixPathEp)
	if !ok {
		return models.EndpointGroupBinding{}, models.PortKey{}, newParseError(targetDN, "missing pathep-[eth<card>/<port>]")
	}

	binding := models.EndpointGroupBinding{Tenant: tenant, AppProfile: app, EPG: epg}

	return binding, models.PortKey{Node: node, CardPort: cardPort}, nil
}

// InterfaceProfileFromTarget returns the interface profile name referenced
// by a switch profile's port profile relation, e.g. "uni/infra/accportprof-IP1".
func InterfaceProfileFromTarget(targetDN string) (string, error) {
	for _, rn := range Split(targetDN) {
		if name, ok := strings.CutPrefix(rn, prefixAccPortP); ok && name != "" {
			return name, nil
		}
	}

	return "", newParseError(targetDN, "missing accportprof-<name>")
}

// PolicyGroupFromTarget returns the policy group name referenced by a
// selector's base group relation, e.g.
// "uni/infra/funcprof/accportgrp-PG1" yields "PG1".
func PolicyGroupFromTarget(targetDN string) (string, error) {
	rns := Split(targetDN)
	if len(rns) == 0 {
		return "", newParseError(targetDN, "empty target")
	}

	last := rns[len(rns)-1]

	_, name, ok := strings.Cut(last, "-")
	if !ok || name == "" {
		return "", newParseError(targetDN, "missing policy group name")
	}

	return name, nil
}

// SelectorDN builds the DN of a range interface selector.
func SelectorDN(interfaceProfile, selector string) string {
	return fmt.Sprintf("uni/infra/%s%s/hports-%s%s", prefixAccPortP, interfaceProfile, selector, selectorSuffix)
}

// PhysicalPortDN builds the DN of a port's physical status object. iface is
// the full interface name, e.g. "eth1/10".
func PhysicalPortDN(pod, node, iface string) string {
	return fmt.Sprintf("topology/pod-%s/%s%s/sys/%s[%s]/phys", pod, prefixNode, node, prefixPhys, iface)
}

// PathDN builds the fabric path endpoint DN a static binding targets.
func PathDN(pod, node, iface string) string {
	return fmt.Sprintf("topology/pod-%s/%s%s/%s[%s]", pod, prefixPaths, node, prefixPathEp, iface)
}

// EPGDN builds the DN of an endpoint group.
func EPGDN(b models.EndpointGroupBinding) string {
	return fmt.Sprintf("uni/%s%s/%s%s/%s%s", prefixTenant, b.Tenant, prefixAppProfile, b.AppProfile, prefixEPG, b.EPG)
}

// BindingDN builds the DN of the static path binding of b onto the port.
func BindingDN(b models.EndpointGroupBinding, pod, node, iface string) string {
	return fmt.Sprintf("%s/rspathAtt-[%s]", EPGDN(b), PathDN(pod, node, iface))
}

func stringValue(rns []string, prefix string) (string, bool) {
	for _, rn := range rns {
		if v, ok := strings.CutPrefix(rn, prefix); ok && v != "" {
			return v, true
		}
	}

	return "", false
}

func numericValue(rns []string, prefix string) (string, bool) {
	v, ok := stringValue(rns, prefix)
	if !ok || !isDigits(v) {
		return "", false
	}

	return v, true
}

// bracketedInterface finds "<prefix>[eth<card>/<port>...]" and returns the
// part after "eth".
func bracketedInterface(rns []string, prefix string) (string, bool) {
	v, ok := stringValue(rns, prefix)
	if !ok || len(v) < 2 || v[0] != '[' || v[len(v)-1] != ']' {
		return "", false
	}

	cardPort, ok := strings.CutPrefix(v[1:len(v)-1], models.InterfacePrefix)
	if !ok {
		return "", false
	}

	card, port, ok := strings.Cut(cardPort, "/")
	if !ok || card == "" || port == "" {
		return "", false
	}

	return cardPort, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
