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

package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/carverauto/portradar/pkg/decommission"
)

var (
	decisionHeader = []string{"Selector_DN", "Interface_Profile", "Selector", "Decision", "Reason", "Member_Ports"}
	unbindHeader   = []string{"Node", "Interface", "EPG", "Binding_DN", "Decision"}
)

// WriteDecisions writes one row per selector group of a plan.
func WriteDecisions(w io.Writer, groups []decommission.GroupResult) error {
	rows := make([][]string, 0, len(groups)+1)
	rows = append(rows, decisionHeader)

	for i := range groups {
		g := &groups[i]

		members := make([]string, 0, len(g.Members))
		for _, m := range g.Members {
			members = append(members, fmt.Sprintf("%s/%s=%s", m.Port.Node, m.Port.Interface(), m.State))
		}

		rows = append(rows, []string{
			g.SelectorDN,
			g.Selector.InterfaceProfile,
			g.Selector.Name,
			string(g.Decision),
			g.Reason,
			strings.Join(members, EPGSeparator),
		})
	}

	return writeAll(w, rows)
}

// WriteUnbindResults writes one row per EPG binding of an unbind plan.
func WriteUnbindResults(w io.Writer, results []decommission.BindingResult) error {
	rows := make([][]string, 0, len(results)+1)
	rows = append(rows, unbindHeader)

	for _, r := range results {
		rows = append(rows, []string{r.Port.Node, r.Port.Interface(), r.EPG, r.DN, string(r.Decision)})
	}

	return writeAll(w, rows)
}

func writeAll(w io.Writer, rows [][]string) error {
	if err := csv.NewWriter(w).WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write decisions: %w", err)
	}

	return nil
}
