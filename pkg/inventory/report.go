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

// Package inventory reads and writes port reports and decision summaries.
package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/carverauto/portradar/pkg/models"
)

// Layout selects the report columns.
type Layout int

const (
	// LayoutFull is the port and EPG report.
	LayoutFull Layout = iota
	// LayoutStatus is the status and profile report without bindings.
	LayoutStatus
)

// Column names.
const (
	ColNode             = "Node"
	ColInterface        = "Interface"
	ColStatus           = "Status"
	ColPortStatus       = "Port_Status"
	ColDeployedEPGs     = "Deployed_EPGs"
	ColInterfaceProfile = "Interface_Profile"
	ColSelector         = "Selector"
	ColPolicyGroup      = "Policy_Group"
	ColSwitchProfile    = "Switch_Profile"
)

// EPGSeparator joins the EPGs of one port in a report cell.
const EPGSeparator = " | "

// Header returns the column names of a layout.
func (l Layout) Header() []string {
	if l == LayoutStatus {
		return []string{ColNode, ColSwitchProfile, ColInterfaceProfile, ColSelector, ColInterface, ColPortStatus, ColPolicyGroup}
	}

	return []string{ColNode, ColInterface, ColStatus, ColDeployedEPGs, ColInterfaceProfile, ColSelector, ColPolicyGroup, ColSwitchProfile}
}

func (l Layout) row(r *models.PortRecord) []string {
	if l == LayoutStatus {
		return []string{r.Node, r.SwitchProfile, r.InterfaceProfile, r.Selector, r.Interface, r.Status, r.PolicyGroup}
	}

	return []string{
		r.Node, r.Interface, r.Status, JoinEPGs(r.DeployedEPGs),
		r.InterfaceProfile, r.Selector, r.PolicyGroup, r.SwitchProfile,
	}
}

// JoinEPGs renders a DeployedEPGs cell.
func JoinEPGs(epgs []string) string {
	if len(epgs) == 0 {
		return models.UnboundEPG
	}

	return strings.Join(epgs, EPGSeparator)
}

// SplitEPGs parses a DeployedEPGs cell.
func SplitEPGs(cell string) []string {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return []string{models.UnboundEPG}
	}

	parts := strings.Split(cell, "|")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	if len(out) == 0 {
		return []string{models.UnboundEPG}
	}

	return out
}

// WriteReport writes records as CSV with a header row.
func WriteReport(w io.Writer, layout Layout, records []models.PortRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(layout.Header()); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	for i := range records {
		if err := cw.Write(layout.row(&records[i])); err != nil {
			return fmt.Errorf("failed to write report row %d: %w", i+1, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}

	return nil
}
