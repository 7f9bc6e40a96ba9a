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

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortKey(t *testing.T) {
	key := NewPortKey("101", DefaultCard, 48)

	assert.Equal(t, PortKey{Node: "101", CardPort: "1/48"}, key)
	assert.Equal(t, "101/1/48", key.String())
	assert.Equal(t, "eth1/48", key.Interface())
	assert.Equal(t, key, PortKeyFromInterface("101", "eth1/48"))
}

func TestBlockExpansion(t *testing.T) {
	tests := []struct {
		name      string
		portBlock PortBlock
		nodeBlock NodeBlock
		wantPorts []int
		wantNodes []string
	}{
		{
			name:      "single",
			portBlock: PortBlock{From: 5, To: 5},
			nodeBlock: NodeBlock{From: 101, To: 101},
			wantPorts: []int{5},
			wantNodes: []string{"101"},
		},
		{
			name:      "range",
			portBlock: PortBlock{From: 1, To: 3},
			nodeBlock: NodeBlock{From: 101, To: 102},
			wantPorts: []int{1, 2, 3},
			wantNodes: []string{"101", "102"},
		},
		{
			name:      "reversed range is empty",
			portBlock: PortBlock{From: 4, To: 2},
			nodeBlock: NodeBlock{From: 104, To: 103},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantPorts, tt.portBlock.Ports())
			assert.Equal(t, tt.wantNodes, tt.nodeBlock.Nodes())
		})
	}
}

func TestSwitchProfileNodes(t *testing.T) {
	sp := SwitchProfile{
		Name:       "SW1",
		NodeBlocks: []NodeBlock{{From: 101, To: 102}, {From: 110, To: 109}, {From: 201, To: 201}},
	}

	assert.Equal(t, []string{"101", "102", "201"}, sp.Nodes())
}

func TestParseEndpointGroup(t *testing.T) {
	b, err := ParseEndpointGroup(" T1/AP1/EPG1 ")
	require.NoError(t, err)
	assert.Equal(t, EndpointGroupBinding{Tenant: "T1", AppProfile: "AP1", EPG: "EPG1"}, b)
	assert.Equal(t, "T1/AP1/EPG1", b.String())

	for _, bad := range []string{"", "T1/AP1", "T1//EPG1", "a/b/c/d", UnboundEPG} {
		_, err := ParseEndpointGroup(bad)
		require.ErrorIs(t, err, ErrMalformedEPGPath, bad)
	}
}

func TestParseOperStatus(t *testing.T) {
	assert.True(t, ParseOperStatus(" UP ").IsUp())
	assert.True(t, ParseOperStatus("down").IsDown())

	other := ParseOperStatus("link-up")
	assert.False(t, other.IsUp())
	assert.False(t, other.IsDown())
}

func TestPortRecordHelpers(t *testing.T) {
	rec := PortRecord{
		Node:             "101",
		Interface:        "eth1/7",
		DeployedEPGs:     []string{UnboundEPG},
		InterfaceProfile: "IP1",
		Selector:         "SEL1",
	}

	assert.Equal(t, PortKey{Node: "101", CardPort: "1/7"}, rec.Key())
	assert.Equal(t, SelectorRef{InterfaceProfile: "IP1", Name: "SEL1"}, rec.SelectorRef())
	assert.True(t, rec.IsUnbound())

	rec.DeployedEPGs = []string{"T/A/E"}
	assert.False(t, rec.IsUnbound())
}

func TestSelectorRefIsZero(t *testing.T) {
	assert.True(t, SelectorRef{}.IsZero())
	assert.True(t, SelectorRef{InterfaceProfile: "None", Name: "SEL1"}.IsZero())
	assert.True(t, SelectorRef{InterfaceProfile: "IP1"}.IsZero())
	assert.False(t, SelectorRef{InterfaceProfile: "IP1", Name: "SEL1"}.IsZero())
}

func TestDurationJSON(t *testing.T) {
	var cfg struct {
		Timeout Duration `json:"timeout"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"timeout":"45s"}`), &cfg))
	assert.Equal(t, Duration(45*time.Second), cfg.Timeout)

	require.NoError(t, json.Unmarshal([]byte(`{"timeout":1000000000}`), &cfg))
	assert.Equal(t, Duration(time.Second), cfg.Timeout)

	err := json.Unmarshal([]byte(`{"timeout":"soon"}`), &cfg)
	require.ErrorIs(t, err, ErrInvalidDuration)

	out, err := json.Marshal(Duration(90 * time.Second))
	require.NoError(t, err)
	assert.JSONEq(t, `"1m30s"`, string(out))
}
