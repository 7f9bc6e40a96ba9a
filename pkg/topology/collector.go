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

// Package topology builds flat port records from the fabric's status,
// binding and access policy trees.
package topology

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/carverauto/portradar/pkg/apic"
	"github.com/carverauto/portradar/pkg/logger"
)

// Mode selects which trees a collection fetches.
type Mode int

const (
	// ModeInventory fetches status, bindings and both profile trees.
	ModeInventory Mode = iota
	// ModeStatus skips the binding query.
	ModeStatus
)

func (m Mode) String() string {
	switch m {
	case ModeInventory:
		return "inventory"
	case ModeStatus:
		return "status"
	}

	return fmt.Sprintf("mode(%d)", int(m))
}

// Collector fetches the four trees from a directory and indexes them.
type Collector struct {
	dir    apic.Directory
	logger logger.Logger
}

// NewCollector returns a collector reading from dir.
func NewCollector(dir apic.Directory, log logger.Logger) *Collector {
	return &Collector{dir: dir, logger: log.WithComponent("topology")}
}

// Collect runs the class queries concurrently and builds a snapshot. Any
// failed query fails the whole collection; malformed objects do not.
func (c *Collector) Collect(ctx context.Context, mode Mode) (*Snapshot, error) {
	if mode != ModeInventory && mode != ModeStatus {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
	}

	start := time.Now()

	var status, bindings, interfaceProfiles, switchProfiles []*apic.Object

	p := pool.New().WithContext(ctx).WithCancelOnError()

	p.Go(c.query(apic.ClassPhysIfStatus, apic.SubtreeNone, &status))
	p.Go(c.query(apic.ClassInterfaceProfile, apic.SubtreeFull, &interfaceProfiles))
	p.Go(c.query(apic.ClassSwitchProfile, apic.SubtreeFull, &switchProfiles))

	if mode == ModeInventory {
		p.Go(c.query(apic.ClassPathBinding, apic.SubtreeNone, &bindings))
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}

	snap := &Snapshot{}

	snap.Status, snap.Stats.StatusSkipped = BuildStatusIndex(status, c.logger)
	snap.Stats.StatusParsed = len(snap.Status)

	var skipped int

	snap.Bindings, snap.Stats.BindingsSkipped = BuildBindingIndex(bindings, c.logger)
	snap.Stats.BindingsParsed = len(bindings) - snap.Stats.BindingsSkipped

	snap.Selectors, skipped = BuildSelectorIndex(interfaceProfiles, c.logger)
	snap.Stats.ChildrenSkipped += skipped
	snap.Stats.InterfaceProfiles = len(snap.Selectors)

	for _, sels := range snap.Selectors {
		snap.Stats.Selectors += len(sels)
	}

	snap.SwitchProfiles, skipped = BuildSwitchProfiles(switchProfiles, c.logger)
	snap.Stats.ChildrenSkipped += skipped
	snap.Stats.SwitchProfiles = len(snap.SwitchProfiles)

	c.logger.Info().
		Str("mode", mode.String()).
		Int("status_parsed", snap.Stats.StatusParsed).
		Int("status_skipped", snap.Stats.StatusSkipped).
		Int("bindings_parsed", snap.Stats.BindingsParsed).
		Int("bindings_skipped", snap.Stats.BindingsSkipped).
		Int("interface_profiles", snap.Stats.InterfaceProfiles).
		Int("switch_profiles", snap.Stats.SwitchProfiles).
		Dur("elapsed", time.Since(start)).
		Msg("Collected fabric snapshot")

	return snap, nil
}

func (c *Collector) query(class string, subtree apic.Subtree, dst *[]*apic.Object) func(context.Context) error {
	return func(ctx context.Context) error {
		objects, err := c.dir.QueryClass(ctx, class, subtree)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrQueryFailed, class, err)
		}

		c.logger.Debug().Str("class", class).Int("count", len(objects)).Msg("Fetched objects")

		*dst = objects

		return nil
	}
}
