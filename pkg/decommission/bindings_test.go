package decommission

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/portradar/pkg/apic/apictest"
	"github.com/carverauto/portradar/pkg/dn"
	"github.com/carverauto/portradar/pkg/logger"
	"github.com/carverauto/portradar/pkg/models"
)

func boundRecord(node, iface, status string, epgs ...string) models.PortRecord {
	r := record(node, iface, status, "IP1", "SEL1")
	r.DeployedEPGs = epgs

	return r
}

func TestBindingCandidatesFromRecords(t *testing.T) {
	records := []models.PortRecord{
		boundRecord("101", "eth1/1", "down", "T/A/Web", "T/A/DB"),
		boundRecord("101", "eth1/1", "down", "T/A/DB", "T/A/App"),
		boundRecord("101", "eth1/2", "up", "T/A/Web"),
		boundRecord("101", "eth1/3", "N/A", "T/A/Web"),
		boundRecord("101", "eth1/4", "down", models.UnboundEPG),
	}

	got := BindingCandidatesFromRecords(records)

	require.Len(t, got, 2)
	assert.Equal(t, models.NewPortKey("101", 1, 1), got[0].Port)
	assert.Equal(t, []string{"T/A/Web", "T/A/DB", "T/A/App"}, got[0].EPGs)
	assert.Equal(t, "N/A", got[1].ReportStatus)
}

func TestUnbindPlan(t *testing.T) {
	fabric := apictest.NewFabric()
	web := models.EndpointGroupBinding{Tenant: "T", AppProfile: "A", EPG: "Web"}

	fabric.SetPortStatus("101", "eth1/1", "down")
	webDN := fabric.AddBinding(web, "101", "eth1/1")

	fabric.SetPortStatus("101", "eth1/2", "up")
	fabric.AddBinding(web, "101", "eth1/2")

	candidates := BindingCandidatesFromRecords([]models.PortRecord{
		boundRecord("101", "eth1/1", "down", "T/A/Web", "T/A/Gone", "broken-path"),
		boundRecord("101", "eth1/2", "down", "T/A/Web"),
	})

	p, err := NewUnbindPlanner(fabric, Config{}, logger.NewTestLogger()).Plan(context.Background(), candidates)
	require.NoError(t, err)

	require.Len(t, p.Results, 4)
	assert.Equal(t, BindingQueued, p.Results[0].Decision)
	assert.Equal(t, webDN, p.Results[0].DN)
	assert.Equal(t, BindingAlreadyGone, p.Results[1].Decision)
	assert.Equal(t, BindingMalformed, p.Results[2].Decision)
	assert.Equal(t, BindingPortUp, p.Results[3].Decision)

	assert.Equal(t, UnbindSummary{
		PortsProcessed:      2,
		PortsSkippedAsUp:    1,
		BindingsQueued:      1,
		BindingsAlreadyGone: 1,
		BindingsMalformed:   1,
	}, p.Summary)

	intents := p.Batch.Intents()
	require.Len(t, intents, 1)
	assert.Equal(t, webDN, intents[0].DN)
}

func TestUnbindPlan_MissingPort(t *testing.T) {
	fabric := apictest.NewFabric()
	fabric.AddBinding(models.EndpointGroupBinding{Tenant: "T", AppProfile: "A", EPG: "Web"}, "101", "eth1/9")

	candidates := BindingCandidatesFromRecords([]models.PortRecord{boundRecord("101", "eth1/9", "N/A", "T/A/Web")})

	lenient, err := NewUnbindPlanner(fabric, Config{}, logger.NewTestLogger()).Plan(context.Background(), candidates)
	require.NoError(t, err)
	assert.Equal(t, 1, lenient.Summary.BindingsQueued)

	strict, err := NewUnbindPlanner(fabric, Config{StrictNotFound: true}, logger.NewTestLogger()).Plan(context.Background(), candidates)
	require.NoError(t, err)
	assert.Equal(t, BindingPortNotFound, strict.Results[0].Decision)
	assert.Zero(t, strict.Batch.Len())
}

func TestUnbindPlan_LookupFailure(t *testing.T) {
	fabric := apictest.NewFabric()
	fabric.SetPortStatus("101", "eth1/1", "down")

	binding := models.EndpointGroupBinding{Tenant: "T", AppProfile: "A", EPG: "Web"}
	fabric.FailLookup(dn.BindingDN(binding, "1", "101", "eth1/1"), errors.New("reset"))

	candidates := BindingCandidatesFromRecords([]models.PortRecord{boundRecord("101", "eth1/1", "down", "T/A/Web")})

	p, err := NewUnbindPlanner(fabric, Config{}, logger.NewTestLogger()).Plan(context.Background(), candidates)
	require.NoError(t, err)
	assert.Equal(t, BindingLookupFailed, p.Results[0].Decision)
	assert.Equal(t, 1, p.Summary.BindingsFailed)
	assert.Zero(t, p.Batch.Len())
}

func TestUnbindPlan_PortLookupFailureKeepsBindings(t *testing.T) {
	fabric := apictest.NewFabric()
	fabric.SetPortStatus("101", "eth1/1", "up")

	binding := models.EndpointGroupBinding{Tenant: "T", AppProfile: "A", EPG: "Web"}
	fabric.AddBinding(binding, "101", "eth1/1")
	fabric.FailLookup(dn.PhysicalPortDN("1", "101", "eth1/1"), errors.New("timeout"))

	candidates := BindingCandidatesFromRecords([]models.PortRecord{
		boundRecord("101", "eth1/1", "down", "T/A/Web", "T/A/Db"),
	})

	p, err := NewUnbindPlanner(fabric, Config{}, logger.NewTestLogger()).Plan(context.Background(), candidates)
	require.NoError(t, err)

	require.Len(t, p.Results, 2)
	for _, r := range p.Results {
		assert.Equal(t, BindingLookupFailed, r.Decision)
	}

	assert.Equal(t, 2, p.Summary.BindingsFailed)
	assert.Zero(t, p.Summary.BindingsQueued)
	assert.Zero(t, p.Batch.Len())
	assert.Zero(t, fabric.Lookups(dn.BindingDN(binding, "1", "101", "eth1/1")), "bindings are not looked up")
}
