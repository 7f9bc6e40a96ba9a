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

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/carverauto/portradar/pkg/decommission"
	"github.com/carverauto/portradar/pkg/topology"
	"github.com/carverauto/portradar/pkg/version"
)

// RunSummary is what a run reports once it finishes, rendered as a styled
// box or as JSON.
type RunSummary struct {
	RunID      string       `json:"run_id"`
	Command    string       `json:"command"`
	Version    version.Info `json:"version"`
	Controller string       `json:"controller"`
	DryRun     bool         `json:"dry_run"`
	StartedAt  time.Time    `json:"started_at"`
	Elapsed    string       `json:"elapsed"`
	Input      string       `json:"input,omitempty"`
	Output     string       `json:"output,omitempty"`
	Records    int          `json:"records"`
	Error      string       `json:"error,omitempty"`

	Topology     *topology.Stats              `json:"topology,omitempty"`
	Decommission *decommission.Summary        `json:"decommission,omitempty"`
	Groups       []decommission.GroupResult   `json:"groups,omitempty"`
	Unbind       *decommission.UnbindSummary  `json:"unbind,omitempty"`
	Bindings     []decommission.BindingResult `json:"bindings,omitempty"`
	Commit       *decommission.CommitResult   `json:"commit,omitempty"`
}

// WriteSummary renders s in the requested format.
func WriteSummary(w io.Writer, format string, s *RunSummary) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(s)
	}

	_, err := fmt.Fprintln(w, renderSummary(s, newStyles()))

	return err
}

type summaryLine struct {
	key   string
	value string
	style lipgloss.Style
}

func renderSummary(s *RunSummary, st styles) string {
	mode := st.success.Render("execute")
	if s.DryRun {
		mode = st.warning.Render("dry run")
	}

	lines := []summaryLine{
		{"run", s.RunID, st.value},
		{"controller", s.Controller, st.value},
		{"elapsed", s.Elapsed, st.value},
	}

	if s.Input != "" {
		lines = append(lines, summaryLine{"input", s.Input, st.value})
	}

	if s.Output != "" {
		lines = append(lines, summaryLine{"output", s.Output, st.value})
	}

	lines = append(lines, summaryLine{"records", fmt.Sprint(s.Records), st.value})

	if t := s.Topology; t != nil {
		lines = append(lines,
			summaryLine{"switch profiles", fmt.Sprint(t.SwitchProfiles), st.value},
			summaryLine{"interface profiles", fmt.Sprint(t.InterfaceProfiles), st.value},
			summaryLine{"selectors", fmt.Sprint(t.Selectors), st.value},
			summaryLine{"skipped objects", fmt.Sprint(t.StatusSkipped+t.BindingsSkipped+t.ChildrenSkipped), st.warning},
		)
	}

	if d := s.Decommission; d != nil {
		lines = append(lines,
			summaryLine{"ports verified down", fmt.Sprint(d.PortsVerifiedDown), st.success},
			summaryLine{"ports skipped as up", fmt.Sprint(d.PortsSkippedAsUp), st.warning},
			summaryLine{"ports not found", fmt.Sprint(d.PortsNotFound), st.warning},
			summaryLine{"ports indeterminate", fmt.Sprint(d.PortsIndeterminate), st.warning},
			summaryLine{"selectors queued", fmt.Sprint(d.SelectorsQueued), st.success},
			summaryLine{"selectors already removed", fmt.Sprint(d.SelectorsAlreadyRemoved), st.value},
			summaryLine{"selectors rejected", fmt.Sprint(d.SelectorsRejected), st.danger},
		)
	}

	if u := s.Unbind; u != nil {
		lines = append(lines,
			summaryLine{"ports processed", fmt.Sprint(u.PortsProcessed), st.value},
			summaryLine{"ports skipped as up", fmt.Sprint(u.PortsSkippedAsUp), st.warning},
			summaryLine{"bindings queued", fmt.Sprint(u.BindingsQueued), st.success},
			summaryLine{"bindings already gone", fmt.Sprint(u.BindingsAlreadyGone), st.value},
			summaryLine{"bindings malformed", fmt.Sprint(u.BindingsMalformed), st.warning},
			summaryLine{"bindings failed", fmt.Sprint(u.BindingsFailed), st.danger},
		)
	}

	if c := s.Commit; c != nil {
		committed := st.help.Render("no")
		if c.Committed {
			committed = st.success.Render("yes")
		}

		lines = append(lines,
			summaryLine{"planned changes", fmt.Sprint(len(c.Intents)), st.value},
			summaryLine{"committed", committed, lipgloss.NewStyle()},
		)
	}

	width := 0
	for _, l := range lines {
		width = max(width, len(l.key))
	}

	var b strings.Builder

	b.WriteString(st.title.Render("portradar "+s.Command) + "  " + mode + "\n\n")

	for _, l := range lines {
		b.WriteString(st.key.Render(fmt.Sprintf("%-*s", width, l.key)))
		b.WriteString("  ")
		b.WriteString(l.style.Render(l.value))
		b.WriteString("\n")
	}

	if s.Error != "" {
		b.WriteString("\n" + st.err.Render("Error: "+s.Error) + "\n")
	}

	return st.box.Render(strings.TrimRight(b.String(), "\n"))
}
