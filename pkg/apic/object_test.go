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

package apic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const switchProfileResponse = `{
  "totalCount": "1",
  "imdata": [{
    "infraNodeP": {
      "attributes": {"dn": "uni/infra/nprof-SW1", "name": "SW1"},
      "children": [
        {"infraLeafS": {
          "attributes": {"rn": "leaves-L101-typ-range", "name": "L101"},
          "children": [
            {"infraNodeBlk": {"attributes": {"rn": "nodeblk-blk1", "from_": "101", "to_": "102"}}}
          ]
        }},
        {"infraRsAccPortP": {"attributes": {"rn": "rsaccPortP-[uni/infra/accportprof-IP1]", "tDn": "uni/infra/accportprof-IP1"}}}
      ]
    }
  }]
}`

func TestDecodeImdata_Subtree(t *testing.T) {
	objects, err := decodeImdata([]byte(switchProfileResponse), 200)
	require.NoError(t, err)
	require.Len(t, objects, 1)

	profile := objects[0]
	assert.Equal(t, ClassSwitchProfile, profile.Class)
	assert.Equal(t, "SW1", profile.Name())
	require.Len(t, profile.Children, 2)

	leaf := profile.Children[0]
	assert.Equal(t, ClassLeafSelector, leaf.Class)
	assert.Equal(t, "uni/infra/nprof-SW1/leaves-L101-typ-range", leaf.DN)
	require.Len(t, leaf.Children, 1)

	block := leaf.Children[0]
	assert.Equal(t, ClassNodeBlock, block.Class)
	assert.Equal(t, "101", block.Attr("from_"))
	assert.Equal(t, "uni/infra/nprof-SW1/leaves-L101-typ-range/nodeblk-blk1", block.DN)

	link := profile.Children[1]
	assert.Equal(t, "uni/infra/accportprof-IP1", link.Attr("tDn"))
}

func TestDecodeImdata_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
		wantErr  error
	}{
		{
			name:     "error entry",
			body:     `{"imdata":[{"error":{"attributes":{"code":"122","text":"unknown managed object class"}}}]}`,
			wantCode: "122",
		},
		{
			name:    "not json",
			body:    `<html>gateway timeout</html>`,
			wantErr: ErrInvalidResponse,
		},
		{
			name:    "missing imdata",
			body:    `{"totalCount":"0"}`,
			wantErr: ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeImdata([]byte(tt.body), 400)
			require.Error(t, err)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantCode, apiErr.Code)
		})
	}
}

func TestDecodeImdata_Empty(t *testing.T) {
	objects, err := decodeImdata([]byte(`{"totalCount":"0","imdata":[]}`), 200)
	require.NoError(t, err)
	assert.Empty(t, objects)
}

func TestObject_AttrOnNil(t *testing.T) {
	var o *Object
	assert.Empty(t, o.Attr("name"))
}

func TestConfigRequest(t *testing.T) {
	req := NewConfigRequest()

	_, err := req.Payload()
	require.ErrorIs(t, err, ErrEmptyBatch)

	sel := NewObject(ClassPortSelector, "uni/infra/accportprof-IP1/hports-SEL1-typ-range", map[string]string{"name": "SEL1"})

	assert.True(t, req.Delete(sel))
	assert.False(t, req.Delete(sel), "same DN twice is collapsed")
	assert.Equal(t, 1, req.Len())

	intents := req.Intents()
	require.Len(t, intents, 1)
	assert.Equal(t, MutationIntent{Class: ClassPortSelector, DN: sel.DN, Status: StatusDeleted}, intents[0])

	payload, err := req.Payload()
	require.NoError(t, err)
	assert.Equal(t, "uni", gjson.GetBytes(payload, "polUni.attributes.dn").String())
	assert.Equal(t, "deleted", gjson.GetBytes(payload, "polUni.children.0.infraHPortS.attributes.status").String())
}
