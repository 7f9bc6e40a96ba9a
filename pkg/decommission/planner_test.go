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
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/portradar/pkg/apic"
	"github.com/carverauto/portradar/pkg/apic/apictest"
	"github.com/carverauto/portradar/pkg/dn"
	"github.com/carverauto/portradar/pkg/logger"
	"github.com/carverauto/portradar/pkg/models"
)

func record(node, iface, status, interfaceProfile, selector string) models.PortRecord {
	return models.PortRecord{
		Node:             node,
		Interface:        iface,
		Status:           status,
		DeployedEPGs:     []string{models.UnboundEPG},
		InterfaceProfile: interfaceProfile,
		Selector:         selector,
		PolicyGroup:      "PG",
		SwitchProfile:    "SW",
	}
}

func candidate(node string, port int, ip, sel string) Candidate {
	return Candidate{
		Port:     models.NewPortKey(node, models.DefaultCard, port),
		Selector: models.SelectorRef{InterfaceProfile: ip, Name: sel},
	}
}

func plan(t *testing.T, dir apic.Directory, cfg Config, candidates ...Candidate) *Plan {
	t.Helper()

	p, err := NewPlanner(dir, cfg, logger.NewTestLogger()).Plan(context.Background(), candidates)
	require.NoError(t, err)

	return p
}

func TestPlan_AllDownIsSafe(t *testing.T) {
	fabric := apictest.NewFabric()
	fabric.AddInterfaceProfile("IP1", apictest.Selector("SEL1", "PG1", models.PortBlock{From: 1, To: 2}))
	fabric.SetPortStatus("101", "eth1/1", "down")
	fabric.SetPortStatus("101", "eth1/2", "down")

	p := plan(t, fabric, Config{}, candidate("101", 1, "IP1", "SEL1"), candidate("101", 2, "IP1", "SEL1"))

	require.Len(t, p.Groups, 1)
	assert.Equal(t, DecisionSafeToDelete, p.Groups[0].Decision)
	assert.Equal(t, []models.SelectorRef{{InterfaceProfile: "IP1", Name: "SEL1"}}, p.Queued)
	assert.Equal(t, Summary{PortsVerifiedDown: 2, SelectorsQueued: 1}, p.Summary)

	intents := p.Batch.Intents()
	require.Len(t, intents, 1)
	assert.Equal(t, apic.MutationIntent{
		Class:  apic.ClassPortSelector,
		DN:     "uni/infra/accportprof-IP1/hports-SEL1-typ-range",
		Status: apic.StatusDeleted,
	}, intents[0])
}

func TestPlan_OneUpMemberRejectsGroup(t *testing.T) {
	fabric := apictest.NewFabric()
	fabric.AddInterfaceProfile("IP1", apictest.Selector("SEL1", "PG1", models.PortBlock{From: 1, To: 2}))
	fabric.SetPortStatus("101", "eth1/1", "down")
	// the inventory said down; the port came back since
	fabric.SetPortStatus("101", "eth1/2", "up")

	p := plan(t, fabric, Config{}, candidate("101", 1, "IP1", "SEL1"), candidate("101", 2, "IP1", "SEL1"))

	require.Len(t, p.Groups, 1)
	assert.Equal(t, DecisionRejected, p.Groups[0].Decision)
	assert.Equal(t, ReasonPortUp, p.Groups[0].Reason)
	assert.Equal(t, 1, p.Summary.PortsSkippedAsUp)
	assert.Equal(t, 0, p.Summary.SelectorsQueued)
	assert.Empty(t, p.Queued)
	assert.Zero(t, p.Batch.Len())
	assert.Zero(t, fabric.Lookups(dn.SelectorDN("IP1", "SEL1")), "a rejected selector is never looked up")
}

func TestPlan_SelectorAlreadyRemoved(t *testing.T) {
	fabric := apictest.NewFabric()
	fabric.SetPortStatus("101", "eth1/1", "down")

	p := plan(t, fabric, Config{}, candidate("101", 1, "IP1", "SEL1"))

	require.Len(t, p.Groups, 1)
	assert.Equal(t, DecisionAlreadyRemoved, p.Groups[0].Decision)
	assert.Equal(t, 0, p.Summary.SelectorsQueued)
	assert.Equal(t, 1, p.Summary.SelectorsAlreadyRemoved)
	assert.Zero(t, p.Batch.Len())
}

func TestPlan_UpMemberIsMonotonic(t *testing.T) {
	for size := 1; size <= 4; size++ {
		for upAt := 0; upAt < size; upAt++ {
			t.Run(fmt.Sprintf("size=%d/up=%d", size, upAt), func(t *testing.T) {
				fabric := apictest.NewFabric()
				fabric.AddInterfaceProfile("IP1", apictest.Selector("SEL1", "PG1", models.PortBlock{From: 1, To: size + 1}))

				candidates := make([]Candidate, 0, size+1)

				for port := 1; port <= size; port++ {
					fabric.SetPortStatus("101", fmt.Sprintf("eth1/%d", port), "down")
					candidates = append(candidates, candidate("101", port, "IP1", "SEL1"))
				}

				safe := plan(t, fabric, Config{}, candidates...)
				require.Equal(t, DecisionSafeToDelete, safe.Groups[0].Decision)

				fabric.SetPortStatus("101", fmt.Sprintf("eth1/%d", upAt+1), "up")

				unsafe := plan(t, fabric, Config{}, candidates...)
				assert.Equal(t, DecisionRejected, unsafe.Groups[0].Decision)
				assert.Zero(t, unsafe.Batch.Len())
				assert.Equal(t, size-1, unsafe.Summary.PortsVerifiedDown)
			})
		}
	}
}

func TestPlan_NotFoundMembers(t *testing.T) {
	newFabric := func() *apictest.Fabric {
		fabric := apictest.NewFabric()
		fabric.AddInterfaceProfile("IP1", apictest.Selector("SEL1", "PG1", models.PortBlock{From: 1, To: 2}))
		fabric.SetPortStatus("101", "eth1/1", "down")

		return fabric
	}

	members := []Candidate{candidate("101", 1, "IP1", "SEL1"), candidate("101", 2, "IP1", "SEL1")}

	t.Run("excluded from check", func(t *testing.T) {
		p := plan(t, newFabric(), Config{}, members...)
		assert.Equal(t, DecisionSafeToDelete, p.Groups[0].Decision)
		assert.Equal(t, 1, p.Summary.PortsNotFound)
		assert.Equal(t, MemberNotFound, p.Groups[0].Members[1].State)
	})

	t.Run("strict rejects", func(t *testing.T) {
		p := plan(t, newFabric(), Config{StrictNotFound: true}, members...)
		assert.Equal(t, DecisionRejected, p.Groups[0].Decision)
		assert.Equal(t, ReasonNotFoundStrict, p.Groups[0].Reason)
	})

	t.Run("lookup error counts as not found", func(t *testing.T) {
		fabric := newFabric()
		fabric.FailLookup(dn.PhysicalPortDN("1", "101", "eth1/2"), errors.New("timeout"))

		p := plan(t, fabric, Config{}, members...)
		assert.Equal(t, DecisionSafeToDelete, p.Groups[0].Decision)
		assert.Equal(t, 1, p.Summary.PortsNotFound)
	})

	t.Run("nothing verified", func(t *testing.T) {
		fabric := newFabric()
		fabric.RemovePort("101", "eth1/1")

		p := plan(t, fabric, Config{}, members...)
		assert.Equal(t, DecisionRejected, p.Groups[0].Decision)
		assert.Equal(t, ReasonNoVerifiedMember, p.Groups[0].Reason)
		assert.Equal(t, 2, p.Summary.PortsNotFound)
	})
}

func TestPlan_IndeterminateStatusRejects(t *testing.T) {
	fabric := apictest.NewFabric()
	fabric.AddInterfaceProfile("IP1", apictest.Selector("SEL1", "PG1", models.PortBlock{From: 1, To: 2}))
	fabric.SetPortStatus("101", "eth1/1", "down")
	fabric.SetPortStatus("101", "eth1/2", "link-up")

	p := plan(t, fabric, Config{}, candidate("101", 1, "IP1", "SEL1"), candidate("101", 2, "IP1", "SEL1"))

	assert.Equal(t, DecisionRejected, p.Groups[0].Decision)
	assert.Equal(t, ReasonIndeterminate, p.Groups[0].Reason)
	assert.Equal(t, 1, p.Summary.PortsIndeterminate)
	assert.Equal(t, "link-up", p.Groups[0].Members[1].LiveStatus)
}

func TestPlan_SelectorLookupErrorRejects(t *testing.T) {
	fabric := apictest.NewFabric()
	fabric.AddInterfaceProfile("IP1", apictest.Selector("SEL1", "PG1", models.PortBlock{From: 1, To: 1}))
	fabric.SetPortStatus("101", "eth1/1", "down")
	fabric.FailLookup(dn.SelectorDN("IP1", "SEL1"), errors.New("503"))

	p := plan(t, fabric, Config{}, candidate("101", 1, "IP1", "SEL1"))

	assert.Equal(t, DecisionRejected, p.Groups[0].Decision)
	assert.Equal(t, ReasonSelectorLookup, p.Groups[0].Reason)
	assert.Zero(t, p.Batch.Len())
}

func TestPlan_SharedSelectorAcrossNodes(t *testing.T) {
	fabric := apictest.NewFabric()
	fabric.AddInterfaceProfile("IP1", apictest.Selector("SEL1", "PG1", models.PortBlock{From: 5, To: 5}))
	fabric.SetPortStatus("101", "eth1/5", "down")
	fabric.SetPortStatus("102", "eth1/5", "down")

	p := plan(t, fabric, Config{},
		candidate("101", 5, "IP1", "SEL1"),
		candidate("102", 5, "IP1", "SEL1"),
		candidate("101", 5, "IP1", "SEL1"),
	)

	require.Len(t, p.Groups, 1)
	assert.Len(t, p.Groups[0].Members, 2)
	assert.Equal(t, 1, p.Batch.Len())
	assert.Equal(t, 1, fabric.Lookups(dn.SelectorDN("IP1", "SEL1")))
}

func TestPlan_ConcurrencyKeepsOrder(t *testing.T) {
	fabric := apictest.NewFabric()

	var (
		selectors  []apictest.SelectorSpec
		candidates []Candidate
	)

	for i := 1; i <= 12; i++ {
		name := fmt.Sprintf("SEL%02d", i)
		selectors = append(selectors, apictest.Selector(name, "PG", models.PortBlock{From: i, To: i}))
		candidates = append(candidates, candidate("101", i, "IP1", name))

		status := "down"
		if i%4 == 0 {
			status = "up"
		}

		fabric.SetPortStatus("101", fmt.Sprintf("eth1/%d", i), status)
	}

	fabric.AddInterfaceProfile("IP1", selectors...)

	serial := plan(t, fabric, Config{Concurrency: 1}, candidates...)
	parallel := plan(t, fabric, Config{Concurrency: 6}, candidates...)

	assert.Equal(t, serial.Groups, parallel.Groups)
	assert.Equal(t, serial.Queued, parallel.Queued)
	assert.Equal(t, serial.Summary, parallel.Summary)
	assert.Equal(t, 9, parallel.Summary.SelectorsQueued)
	assert.Equal(t, 3, parallel.Summary.SelectorsRejected)
}

func TestPlan_IdempotentAfterCommit(t *testing.T) {
	fabric := apictest.NewFabric()
	fabric.AddInterfaceProfile("IP1",
		apictest.Selector("SEL1", "PG1", models.PortBlock{From: 1, To: 1}),
		apictest.Selector("SEL2", "PG1", models.PortBlock{From: 2, To: 2}),
	)
	fabric.SetPortStatus("101", "eth1/1", "down")
	fabric.SetPortStatus("101", "eth1/2", "up")

	candidates := []Candidate{candidate("101", 1, "IP1", "SEL1"), candidate("101", 2, "IP1", "SEL2")}

	first := plan(t, fabric, Config{}, candidates...)
	assert.Equal(t, DecisionSafeToDelete, first.Groups[0].Decision)
	assert.Equal(t, DecisionRejected, first.Groups[1].Decision)

	_, err := NewCommitter(fabric, false, logger.NewTestLogger()).Apply(context.Background(), first.Batch)
	require.NoError(t, err)
	assert.False(t, fabric.Has(dn.SelectorDN("IP1", "SEL1")))

	second := plan(t, fabric, Config{}, candidates...)
	assert.Equal(t, DecisionAlreadyRemoved, second.Groups[0].Decision)
	assert.Equal(t, DecisionRejected, second.Groups[1].Decision)
	assert.Equal(t, 0, second.Summary.SelectorsQueued)
	assert.Equal(t, 1, second.Summary.SelectorsAlreadyRemoved)
}

func TestPlan_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPlanner(apictest.NewFabric(), Config{}, logger.NewTestLogger()).
		Plan(ctx, []Candidate{candidate("101", 1, "IP1", "SEL1")})
	require.ErrorIs(t, err, context.Canceled)
}

func TestCandidatesFromRecords(t *testing.T) {
	records := []models.PortRecord{
		record("101", "eth1/1", "down", "IP1", "SEL1"),
		record("101", "eth1/1", "down", "IP1", "SEL1"),
		record("101", "eth1/2", "DOWN ", "IP1", "SEL1"),
		record("101", "eth1/3", "up", "IP1", "SEL1"),
		record("101", "eth1/4", "N/A", "IP1", "SEL1"),
		record("101", "eth1/5", "down", "None", "SEL2"),
		record("101", "eth1/6", "down", "", "SEL2"),
		record("101", "eth1/7", "down", "IP1", ""),
		record("102", "eth1/1", "down", "IP1", "SEL1"),
	}

	got := CandidatesFromRecords(records, logger.NewTestLogger())

	assert.Equal(t, []Candidate{
		candidate("101", 1, "IP1", "SEL1"),
		candidate("101", 2, "IP1", "SEL1"),
		candidate("101", 3, "IP1", "SEL1"),
		candidate("101", 4, "IP1", "SEL1"),
		candidate("102", 1, "IP1", "SEL1"),
	}, got)
	assert.Equal(t, "eth1/2", got[1].Interface())
}

func TestCandidatesFromRecords_SelectorWithoutDownPortIsIgnored(t *testing.T) {
	records := []models.PortRecord{
		record("101", "eth1/1", "up", "IP1", "SEL1"),
		record("101", "eth1/2", "N/A", "IP1", "SEL1"),
	}

	assert.Empty(t, CandidatesFromRecords(records, logger.NewTestLogger()))
}

func TestPlan_ReportedUpPortOnSameSelectorRejects(t *testing.T) {
	fabric := apictest.NewFabric()
	fabric.AddInterfaceProfile("IP1", apictest.Selector("SEL1", "PG1", models.PortBlock{From: 1, To: 2}))
	fabric.SetPortStatus("101", "eth1/1", "down")
	fabric.SetPortStatus("101", "eth1/2", "up")

	records := []models.PortRecord{
		record("101", "eth1/1", "down", "IP1", "SEL1"),
		record("101", "eth1/2", "up", "IP1", "SEL1"),
	}

	p := plan(t, fabric, Config{}, CandidatesFromRecords(records, logger.NewTestLogger())...)

	require.Len(t, p.Groups, 1)
	assert.Len(t, p.Groups[0].Members, 2)
	assert.Equal(t, DecisionRejected, p.Groups[0].Decision)
	assert.Equal(t, ReasonPortUp, p.Groups[0].Reason)
	assert.Equal(t, 1, p.Summary.PortsSkippedAsUp)
	assert.Empty(t, p.Queued)
	assert.Zero(t, p.Batch.Len())
	assert.True(t, fabric.Has(dn.SelectorDN("IP1", "SEL1")))
}

func TestPlan_SelectorUpOnAnotherNodeRejects(t *testing.T) {
	fabric := apictest.NewFabric()
	fabric.AddInterfaceProfile("IP1", apictest.Selector("SEL1", "PG1", models.PortBlock{From: 1, To: 1}))
	fabric.SetPortStatus("101", "eth1/1", "down")
	fabric.SetPortStatus("102", "eth1/1", "up")

	records := []models.PortRecord{
		record("101", "eth1/1", "down", "IP1", "SEL1"),
		record("102", "eth1/1", "up", "IP1", "SEL1"),
	}

	p := plan(t, fabric, Config{}, CandidatesFromRecords(records, logger.NewTestLogger())...)

	require.Len(t, p.Groups, 1)
	assert.Equal(t, DecisionRejected, p.Groups[0].Decision)
	assert.Zero(t, p.Batch.Len())
}
