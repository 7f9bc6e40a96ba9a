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
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/portradar/pkg/apic"
	"github.com/carverauto/portradar/pkg/apic/apictest"
	"github.com/carverauto/portradar/pkg/logger"
	"github.com/carverauto/portradar/pkg/models"
)

func collect(t *testing.T, dir apic.Directory, mode Mode) *Snapshot {
	t.Helper()

	snap, err := NewCollector(dir, logger.NewTestLogger()).Collect(context.Background(), mode)
	require.NoError(t, err)

	return snap
}

func TestCorrelate_SingleSelector(t *testing.T) {
	fabric := apictest.NewFabric()
	fabric.AddSwitchProfile("SW1", []models.NodeBlock{{From: 101, To: 101}}, "IP1")
	fabric.AddInterfaceProfile("IP1", apictest.Selector("SEL1", "PG1", models.PortBlock{From: 1, To: 2}))
	fabric.SetPortStatus("101", "eth1/1", "down")

	records := Correlate(collect(t, fabric, ModeInventory), Options{})

	expected := []models.PortRecord{
		{
			Node:             "101",
			Interface:        "eth1/1",
			Status:           "down",
			DeployedEPGs:     []string{models.UnboundEPG},
			InterfaceProfile: "IP1",
			Selector:         "SEL1",
			PolicyGroup:      "PG1",
			SwitchProfile:    "SW1",
		},
		{
			Node:             "101",
			Interface:        "eth1/2",
			Status:           models.StatusNotAvailable,
			DeployedEPGs:     []string{models.UnboundEPG},
			InterfaceProfile: "IP1",
			Selector:         "SEL1",
			PolicyGroup:      "PG1",
			SwitchProfile:    "SW1",
		},
	}

	assert.Equal(t, expected, records)
}

func TestCorrelate_BindingsAndUnbound(t *testing.T) {
	fabric := apictest.NewFabric()
	fabric.AddSwitchProfile("SW1", []models.NodeBlock{{From: 101, To: 102}}, "IP1")
	fabric.AddInterfaceProfile("IP1", apictest.Selector("SEL1", "", models.PortBlock{From: 10, To: 11}))

	web := models.EndpointGroupBinding{Tenant: "Prod", AppProfile: "App", EPG: "Web"}
	db := models.EndpointGroupBinding{Tenant: "Prod", AppProfile: "App", EPG: "DB"}

	fabric.AddBinding(web, "101", "eth1/10")
	fabric.AddBinding(db, "101", "eth1/10")
	fabric.AddBinding(web, "102", "eth1/11")

	records := Correlate(collect(t, fabric, ModeInventory), Options{})
	require.Len(t, records, 4)

	byPort := make(map[string]models.PortRecord, len(records))
	for _, r := range records {
		byPort[r.Key().String()] = r
	}

	assert.Equal(t, []string{"Prod/App/DB", "Prod/App/Web"}, byPort["101/1/10"].DeployedEPGs)
	assert.Equal(t, []string{"Prod/App/Web"}, byPort["102/1/11"].DeployedEPGs)

	for _, key := range []string{"101/1/11", "102/1/10"} {
		r := byPort[key]
		assert.Equal(t, []string{models.UnboundEPG}, r.DeployedEPGs, key)
		assert.True(t, r.IsUnbound(), key)
	}

	assert.Equal(t, models.NoPolicyGroup, byPort["101/1/10"].PolicyGroup)
}

func TestCorrelate_UnboundInvariant(t *testing.T) {
	fabric := apictest.NewFabric()
	fabric.AddSwitchProfile("SW1", []models.NodeBlock{{From: 101, To: 104}}, "IP1")
	fabric.AddInterfaceProfile("IP1",
		apictest.Selector("A", "PG-A", models.PortBlock{From: 1, To: 8}),
		apictest.Selector("B", "PG-B", models.PortBlock{From: 9, To: 9}, models.PortBlock{From: 20, To: 24}),
	)

	bound := map[string]bool{}

	for i, port := range []string{"eth1/1", "eth1/9", "eth1/22"} {
		node := []string{"101", "103", "104"}[i]
		fabric.AddBinding(models.EndpointGroupBinding{Tenant: "T", AppProfile: "A", EPG: "E"}, node, port)
		bound[models.PortKeyFromInterface(node, port).String()] = true
	}

	records := Correlate(collect(t, fabric, ModeInventory), Options{})
	require.Len(t, records, 4*(8+1+5))

	for _, r := range records {
		require.NotEmpty(t, r.DeployedEPGs)

		if bound[r.Key().String()] {
			assert.Equal(t, []string{"T/A/E"}, r.DeployedEPGs)
		} else {
			assert.Equal(t, []string{models.UnboundEPG}, r.DeployedEPGs)
		}
	}
}

func TestCorrelate_SharedInterfaceProfile(t *testing.T) {
	fabric := apictest.NewFabric()
	fabric.AddSwitchProfile("SW-A", []models.NodeBlock{{From: 101, To: 101}}, "IP1")
	fabric.AddSwitchProfile("SW-B", []models.NodeBlock{{From: 201, To: 201}}, "IP1", "IP2")
	fabric.AddInterfaceProfile("IP1", apictest.Selector("SEL1", "PG1", models.PortBlock{From: 1, To: 1}))
	fabric.AddInterfaceProfile("IP2", apictest.Selector("SEL2", "PG2", models.PortBlock{From: 5, To: 5}))

	records := Correlate(collect(t, fabric, ModeInventory), Options{})

	var got []string
	for _, r := range records {
		got = append(got, r.SwitchProfile+":"+r.Key().String()+":"+r.SelectorRef().String())
	}

	assert.Equal(t, []string{
		"SW-A:101/1/1:IP1/SEL1",
		"SW-B:201/1/1:IP1/SEL1",
		"SW-B:201/1/5:IP2/SEL2",
	}, got)
}

func TestCorrelate_EmptyExpansions(t *testing.T) {
	fabric := apictest.NewFabric()
	fabric.AddSwitchProfile("NO-LINK", []models.NodeBlock{{From: 101, To: 101}})
	fabric.AddSwitchProfile("UNKNOWN", []models.NodeBlock{{From: 101, To: 101}}, "MISSING")
	fabric.AddSwitchProfile("REVERSED-NODES", []models.NodeBlock{{From: 105, To: 101}}, "IP1")
	fabric.AddSwitchProfile("OK", []models.NodeBlock{{From: 110, To: 110}}, "IP2")
	fabric.AddInterfaceProfile("IP1", apictest.Selector("SEL1", "PG1", models.PortBlock{From: 1, To: 4}))
	fabric.AddInterfaceProfile("IP2", apictest.Selector("SEL2", "PG2", models.PortBlock{From: 9, To: 3}))

	snap := collect(t, fabric, ModeInventory)
	assert.Empty(t, Correlate(snap, Options{}))
	assert.Equal(t, 4, snap.Stats.SwitchProfiles)
	assert.Equal(t, 2, snap.Stats.InterfaceProfiles)
}

func TestCorrelate_Deterministic(t *testing.T) {
	fabric := apictest.NewFabric()
	fabric.AddSwitchProfile("SW1", []models.NodeBlock{{From: 101, To: 102}}, "IP1")
	fabric.AddInterfaceProfile("IP1",
		apictest.Selector("SEL1", "PG1", models.PortBlock{From: 1, To: 3}),
		apictest.Selector("SEL2", "PG2", models.PortBlock{From: 4, To: 4}),
	)
	fabric.SetPortStatus("101", "eth1/1", "up")
	fabric.SetPortStatus("102", "eth1/4", "down")

	for _, epg := range []string{"Z", "A", "M"} {
		fabric.AddBinding(models.EndpointGroupBinding{Tenant: "T", AppProfile: "AP", EPG: epg}, "101", "eth1/2")
	}

	first := Correlate(collect(t, fabric, ModeInventory), Options{})
	second := Correlate(collect(t, fabric, ModeInventory), Options{})

	assert.Equal(t, first, second)
	assert.ElementsMatch(t, first, second)
}

func TestCorrelate_StatusFallback(t *testing.T) {
	fabric := apictest.NewFabric()
	fabric.AddSwitchProfile("SW1", []models.NodeBlock{{From: 101, To: 101}}, "IP1")
	fabric.AddInterfaceProfile("IP1", apictest.Selector("SEL1", "PG1", models.PortBlock{From: 7, To: 7}))

	records := Correlate(collect(t, fabric, ModeStatus), Options{StatusFallback: models.StatusNotFoundSFP})
	require.Len(t, records, 1)
	assert.Equal(t, models.StatusNotFoundSFP, records[0].Status)
}

func TestCollect_SkipsMalformedObjects(t *testing.T) {
	fabric := apictest.NewFabric()
	fabric.SetPortStatus("101", "eth1/1", "down")
	fabric.AddRawObject(apic.NewObject(apic.ClassPhysIfStatus, "topology/pod-1/node-abc/sys/phys-[eth1/2]/phys", map[string]string{"operSt": "up"}))
	fabric.AddRawObject(apic.NewObject(apic.ClassPhysIfStatus, "topology/pod-1/node-101/sys/phys-[po1]/phys", map[string]string{"operSt": "up"}))
	fabric.AddBinding(models.EndpointGroupBinding{Tenant: "T", AppProfile: "A", EPG: "E"}, "101", "eth1/1")
	fabric.AddRawObject(apic.NewObject(apic.ClassPathBinding,
		"uni/tn-T/ap-A/epg-E/rspathAtt-[topology/pod-1/protpaths-101-102/pathep-[vpc1]]",
		map[string]string{"tDn": "topology/pod-1/protpaths-101-102/pathep-[vpc1]"}))

	snap := collect(t, fabric, ModeInventory)

	assert.Equal(t, 1, snap.Stats.StatusParsed)
	assert.Equal(t, 2, snap.Stats.StatusSkipped)
	assert.Equal(t, 1, snap.Stats.BindingsParsed)
	assert.Equal(t, 1, snap.Stats.BindingsSkipped)
	assert.Equal(t, models.OperStatusDown, snap.Status[models.NewPortKey("101", 1, 1)])
}

func TestCollect_MalformedBlockIsSkipped(t *testing.T) {
	fabric := apictest.NewFabric()
	fabric.AddRawObject(apic.NewObject(apic.ClassInterfaceProfile, "uni/infra/accportprof-IP1", map[string]string{"name": "IP1"},
		apic.NewObject(apic.ClassPortSelector, "uni/infra/accportprof-IP1/hports-SEL1-typ-range", map[string]string{"name": "SEL1"},
			apic.NewObject(apic.ClassPortBlock, "uni/infra/accportprof-IP1/hports-SEL1-typ-range/portblk-b1",
				map[string]string{"fromPort": "x", "toPort": "2"}),
			apic.NewObject(apic.ClassPortBlock, "uni/infra/accportprof-IP1/hports-SEL1-typ-range/portblk-b2",
				map[string]string{"fromPort": "5", "toPort": "5"}),
		),
	))
	fabric.AddSwitchProfile("SW1", []models.NodeBlock{{From: 101, To: 101}}, "IP1")

	snap := collect(t, fabric, ModeInventory)
	assert.Equal(t, 1, snap.Stats.ChildrenSkipped)

	records := Correlate(snap, Options{})
	require.Len(t, records, 1)
	assert.Equal(t, "eth1/5", records[0].Interface)
}

func TestCollect_StatusModeSkipsBindings(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := apic.NewMockDirectory(ctrl)
	dir.EXPECT().QueryClass(gomock.Any(), apic.ClassPhysIfStatus, apic.SubtreeNone).Return(nil, nil).Times(1)
	dir.EXPECT().QueryClass(gomock.Any(), apic.ClassInterfaceProfile, apic.SubtreeFull).Return(nil, nil).Times(1)
	dir.EXPECT().QueryClass(gomock.Any(), apic.ClassSwitchProfile, apic.SubtreeFull).Return(nil, nil).Times(1)

	snap := collect(t, dir, ModeStatus)
	assert.Empty(t, snap.Bindings)
}

func TestCollect_QueryFailure(t *testing.T) {
	fabric := apictest.NewFabric()
	boom := errors.New("connection reset")
	fabric.FailQuery(apic.ClassSwitchProfile, boom)

	_, err := NewCollector(fabric, logger.NewTestLogger()).Collect(context.Background(), ModeInventory)
	require.ErrorIs(t, err, ErrQueryFailed)
	require.ErrorIs(t, err, boom)
}

func TestCollect_UnknownMode(t *testing.T) {
	_, err := NewCollector(apictest.NewFabric(), logger.NewTestLogger()).Collect(context.Background(), Mode(9))
	require.ErrorIs(t, err, ErrUnknownMode)
}
