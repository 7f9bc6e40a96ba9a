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

const defaultPod = "1"

// Config controls how a Planner verifies groups.
type Config struct {
	Pod string
	// Concurrency bounds how many groups are verified at once.
	Concurrency int
	// StrictNotFound rejects a group when any member's port object is
	// missing instead of leaving that member out of the check.
	StrictNotFound bool
}

func (c Config) withDefaults() Config {
	if c.Pod == "" {
		c.Pod = defaultPod
	}

	if c.Concurrency < 1 {
		c.Concurrency = 1
	}

	return c
}

// Planner re-verifies candidate ports live and decides per selector.
type Planner struct {
	dir    apic.Directory
	config Config
	logger logger.Logger
}

// NewPlanner returns a planner reading live state from dir.
func NewPlanner(dir apic.Directory, cfg Config, log logger.Logger) *Planner {
	return &Planner{dir: dir, config: cfg.withDefaults(), logger: log.WithComponent("planner")}
}

// Plan groups candidates by selector and evaluates every complete group.
// A selector is queued only when no member is up and at least one member
// was verified down. Lookup failures never make a group safe.
func (p *Planner) Plan(ctx context.Context, candidates []Candidate) (*Plan, error) {
	groups := partition(candidates)
	results := make([]GroupResult, len(groups))

	wp := pool.New().WithMaxGoroutines(p.config.Concurrency)

	for i := range groups {
		i := i
		wp.Go(func() {
			results[i] = p.evaluate(ctx, groups[i])
		})
	}

	wp.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	plan := &Plan{Groups: results, Batch: apic.NewConfigRequest()}

	for i := range results {
		r := &results[i]

		for _, m := range r.Members {
			switch m.State {
			case MemberDown:
				plan.Summary.PortsVerifiedDown++
			case MemberUp:
				plan.Summary.PortsSkippedAsUp++
			case MemberNotFound:
				plan.Summary.PortsNotFound++
			case MemberIndeterminate:
				plan.Summary.PortsIndeterminate++
			}
		}

		switch r.Decision {
		case DecisionSafeToDelete:
			if plan.Batch.Delete(r.object) {
				plan.Queued = append(plan.Queued, r.Selector)
				plan.Summary.SelectorsQueued++
			}
		case DecisionAlreadyRemoved:
			plan.Summary.SelectorsAlreadyRemoved++
		case DecisionRejected, DecisionPending:
			plan.Summary.SelectorsRejected++
		}
	}

	p.logger.Info().
		Int("groups", len(results)).
		Int("ports_verified_down", plan.Summary.PortsVerifiedDown).
		Int("ports_skipped_as_up", plan.Summary.PortsSkippedAsUp).
		Int("selectors_queued", plan.Summary.SelectorsQueued).
		Int("selectors_already_removed", plan.Summary.SelectorsAlreadyRemoved).
		Int("selectors_rejected", plan.Summary.SelectorsRejected).
		Msg("Decommission plan complete")

	return plan, nil
}

func (p *Planner) evaluate(ctx context.Context, g group) GroupResult {
	res := GroupResult{
		Selector:   g.selector,
		SelectorDN: dn.SelectorDN(g.selector.InterfaceProfile, g.selector.Name),
		Decision:   DecisionPending,
		Members:    make([]MemberResult, 0, len(g.ports)),
	}

	log := p.logger.WithFields(map[string]interface{}{"selector": g.selector.String()})

	var verified int

	for _, port := range g.ports {
		m := p.verifyPort(ctx, port, log)
		res.Members = append(res.Members, m)

		switch m.State {
		case MemberDown:
			verified++
		case MemberUp:
			p.reject(&res, ReasonPortUp)
		case MemberIndeterminate:
			p.reject(&res, ReasonIndeterminate)
		case MemberNotFound:
			if p.config.StrictNotFound {
				p.reject(&res, ReasonNotFoundStrict)
			}
		}
	}

	if res.Decision == DecisionRejected {
		log.Warn().Str("reason", res.Reason).Msg("Selector kept, group is not safe to delete")
		return res
	}

	if verified == 0 {
		p.reject(&res, ReasonNoVerifiedMember)
		log.Warn().Str("reason", res.Reason).Msg("Selector kept, group is not safe to delete")

		return res
	}

	obj, ok, err := p.dir.LookupDN(ctx, res.SelectorDN)

	switch {
	case err != nil:
		log.Error().Err(err).Msg("Selector lookup failed")
		p.reject(&res, ReasonSelectorLookup)
	case !ok:
		log.Info().Str("dn", res.SelectorDN).Msg("Selector already deleted")

		res.Decision = DecisionAlreadyRemoved
	default:
		log.Info().Str("dn", res.SelectorDN).Int("members", len(res.Members)).Msg("Selector safe to delete")

		res.Decision = DecisionSafeToDelete
		res.object = obj
	}

	return res
}

func (*Planner) reject(res *GroupResult, reason string) {
	if res.Decision == DecisionRejected {
		return
	}

	res.Decision = DecisionRejected
	res.Reason = reason
}

func (p *Planner) verifyPort(ctx context.Context, port models.PortKey, log logger.Logger) MemberResult {
	m := MemberResult{Port: port}

	obj, ok, err := p.dir.LookupDN(ctx, dn.PhysicalPortDN(p.config.Pod, port.Node, port.Interface()))
	if err != nil {
		log.Warn().Err(err).Str("port", port.String()).Msg("Port lookup failed, treating as not found")

		m.State = MemberNotFound

		return m
	}

	if !ok {
		log.Warn().Str("port", port.String()).Msg("Physical port does not exist in fabric")

		m.State = MemberNotFound

		return m
	}

	status := models.ParseOperStatus(obj.Attr("operSt"))
	m.LiveStatus = string(status)

	switch {
	case status.IsUp():
		log.Warn().Str("port", port.String()).Msg("Port was down in inventory but is now up")

		m.State = MemberUp
	case status.IsDown():
		log.Debug().Str("port", port.String()).Msg("Port verified down")

		m.State = MemberDown
	default:
		log.Warn().Str("port", port.String()).Str("status", m.LiveStatus).Msg("Port status is not up or down")

		m.State = MemberIndeterminate
	}

	return m
}
