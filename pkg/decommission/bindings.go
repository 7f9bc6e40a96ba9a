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

package decommission

import (
	"context"

	"github.com/sourcegraph/conc/pool"

	"github.com/carverauto/portradar/pkg/apic"
	"github.com/carverauto/portradar/pkg/dn"
	"github.com/carverauto/portradar/pkg/logger"
	"github.com/carverauto/portradar/pkg/models"
)

// BindingDecision is the outcome for one static EPG binding.
type BindingDecision string

const (
	BindingQueued       BindingDecision = "queued"
	BindingAlreadyGone  BindingDecision = "already_gone"
	BindingMalformed    BindingDecision = "malformed"
	BindingPortUp       BindingDecision = "port_up"
	BindingPortNotFound BindingDecision = "port_not_found"
	BindingLookupFailed BindingDecision = "lookup_failed"
)

// BindingCandidate is a port that is not up in the report and still has
// EPG bindings listed.
type BindingCandidate struct {
	Port         models.PortKey `json:"port"`
	ReportStatus string         `json:"report_status"`
	EPGs         []string       `json:"epgs"`
}

// BindingResult is the decision for one EPG path of a candidate.
type BindingResult struct {
	Port     models.PortKey  `json:"port"`
	EPG      string          `json:"epg"`
	DN       string          `json:"dn,omitempty"`
	Decision BindingDecision `json:"decision"`
}

// UnbindSummary holds the counters of an unbind pass.
type UnbindSummary struct {
	PortsProcessed      int `json:"ports_processed"`
	PortsSkippedAsUp    int `json:"ports_skipped_as_up"`
	BindingsQueued      int `json:"bindings_queued"`
	BindingsAlreadyGone int `json:"bindings_already_gone"`
	BindingsMalformed   int `json:"bindings_malformed"`
	BindingsFailed      int `json:"bindings_failed"`
}

// UnbindPlan is the output of one unbind pass.
type UnbindPlan struct {
	Results []BindingResult     `json:"results"`
	Summary UnbindSummary       `json:"summary"`
	Batch   *apic.ConfigRequest `json:"-"`
}

// BindingCandidatesFromRecords keeps records whose reported status is not
// up and that list at least one binding.
func BindingCandidatesFromRecords(records []models.PortRecord) []BindingCandidate {
	var (
		out  []BindingCandidate
		seen = make(map[models.PortKey]int)
	)

	for i := range records {
		r := &records[i]

		if models.ParseOperStatus(r.Status).IsUp() || r.IsUnbound() {
			continue
		}

		key := r.Key()
		if j, dup := seen[key]; dup {
			out[j].EPGs = appendUnique(out[j].EPGs, r.DeployedEPGs...)
			continue
		}

		seen[key] = len(out)
		out = append(out, BindingCandidate{
			Port:         key,
			ReportStatus: r.Status,
			EPGs:         appendUnique(nil, r.DeployedEPGs...),
		})
	}

	return out
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if v == models.UnboundEPG {
			continue
		}

		found := false

		for _, d := range dst {
			if d == v {
				found = true
				break
			}
		}

		if !found {
			dst = append(dst, v)
		}
	}

	return dst
}

// UnbindPlanner removes static EPG bindings from ports that are not up.
type UnbindPlanner struct {
	dir    apic.Directory
	config Config
	logger logger.Logger
}

// NewUnbindPlanner returns a planner reading live state from dir.
func NewUnbindPlanner(dir apic.Directory, cfg Config, log logger.Logger) *UnbindPlanner {
	return &UnbindPlanner{dir: dir, config: cfg.withDefaults(), logger: log.WithComponent("unbind")}
}

type portOutcome struct {
	skippedUp bool
	results   []BindingResult
	objects   []*apic.Object
}

// Plan re-checks each port live, then looks up every listed binding. A port
// that came back up keeps all of its bindings.
func (u *UnbindPlanner) Plan(ctx context.Context, candidates []BindingCandidate) (*UnbindPlan, error) {
	outcomes := make([]portOutcome, len(candidates))

	wp := pool.New().WithMaxGoroutines(u.config.Concurrency)

	for i := range candidates {
		i := i
		wp.Go(func() {
			outcomes[i] = u.evaluate(ctx, candidates[i])
		})
	}

	wp.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	plan := &UnbindPlan{Batch: apic.NewConfigRequest()}

	for i := range outcomes {
		o := &outcomes[i]

		plan.Summary.PortsProcessed++

		if o.skippedUp {
			plan.Summary.PortsSkippedAsUp++
		}

		for _, obj := range o.objects {
			plan.Batch.Delete(obj)
		}

		for _, r := range o.results {
			switch r.Decision {
			case BindingQueued:
				plan.Summary.BindingsQueued++
			case BindingAlreadyGone:
				plan.Summary.BindingsAlreadyGone++
			case BindingMalformed:
				plan.Summary.BindingsMalformed++
			case BindingLookupFailed:
				plan.Summary.BindingsFailed++
			case BindingPortUp, BindingPortNotFound:
			}
		}

		plan.Results = append(plan.Results, o.results...)
	}

	u.logger.Info().
		Int("ports", plan.Summary.PortsProcessed).
		Int("ports_skipped_as_up", plan.Summary.PortsSkippedAsUp).
		Int("bindings_queued", plan.Summary.BindingsQueued).
		Int("bindings_already_gone", plan.Summary.BindingsAlreadyGone).
		Msg("Unbind plan complete")

	return plan, nil
}

func (u *UnbindPlanner) evaluate(ctx context.Context, c BindingCandidate) portOutcome {
	var out portOutcome

	log := u.logger.WithFields(map[string]interface{}{"port": c.Port.String()})
	iface := c.Port.Interface()

	skipAll := func(decision BindingDecision) portOutcome {
		for _, epg := range c.EPGs {
			out.results = append(out.results, BindingResult{Port: c.Port, EPG: epg, Decision: decision})
		}

		return out
	}

	obj, ok, err := u.dir.LookupDN(ctx, dn.PhysicalPortDN(u.config.Pod, c.Port.Node, iface))

	switch {
	case err != nil:
		log.Error().Err(err).Msg("Port lookup failed, keeping its bindings")
		return skipAll(BindingLookupFailed)
	case ok && models.ParseOperStatus(obj.Attr("operSt")).IsUp():
		log.Warn().Str("report_status", c.ReportStatus).Msg("Port is now up, keeping its bindings")

		out.skippedUp = true

		return skipAll(BindingPortUp)
	case !ok && u.config.StrictNotFound:
		log.Warn().Msg("Port not found and strict mode is on, keeping its bindings")
		return skipAll(BindingPortNotFound)
	}

	for _, epg := range c.EPGs {
		res := BindingResult{Port: c.Port, EPG: epg}

		binding, err := models.ParseEndpointGroup(epg)
		if err != nil {
			log.Warn().Err(err).Msg("Skipping malformed EPG path")

			res.Decision = BindingMalformed
			out.results = append(out.results, res)

			continue
		}

		res.DN = dn.BindingDN(binding, u.config.Pod, c.Port.Node, iface)

		mo, found, err := u.dir.LookupDN(ctx, res.DN)

		switch {
		case err != nil:
			log.Error().Err(err).Str("dn", res.DN).Msg("Binding lookup failed")

			res.Decision = BindingLookupFailed
		case !found:
			log.Info().Str("epg", epg).Msg("Binding already gone")

			res.Decision = BindingAlreadyGone
		default:
			log.Info().Str("dn", res.DN).Msg("Binding identified for deletion")

			res.Decision = BindingQueued
			out.objects = append(out.objects, mo)
		}

		out.results = append(out.results, res)
	}

	return out
}
