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
	"github.com/tidwall/gjson"
)

// Object classes read or written by portradar.
const (
	ClassPhysIfStatus     = "ethpmPhysIf"
	ClassPathBinding      = "fvRsPathAtt"
	ClassInterfaceProfile = "infraAccPortP"
	ClassPortSelector     = "infraHPortS"
	ClassPortBlock        = "infraPortBlk"
	ClassPolicyGroupRef   = "infraRsAccBaseGrp"
	ClassSwitchProfile    = "infraNodeP"
	ClassLeafSelector     = "infraLeafS"
	ClassNodeBlock        = "infraNodeBlk"
	ClassProfileLink      = "infraRsAccPortP"
	ClassUniverse         = "polUni"
)

// Object is a managed object decoded from the controller's imdata envelope.
type Object struct {
	Class      string
	DN         string
	Attributes map[string]string
	Children   []*Object
}

// NewObject builds an object with the given class and DN.
func NewObject(class, dn string, attrs map[string]string, children ...*Object) *Object {
	o := &Object{Class: class, DN: dn, Attributes: make(map[string]string, len(attrs)+1), Children: children}
	for k, v := range attrs {
		o.Attributes[k] = v
	}

	if dn != "" {
		o.Attributes["dn"] = dn
	}

	return o
}

// Attr returns an attribute value or "" when unset.
func (o *Object) Attr(name string) string {
	if o == nil || o.Attributes == nil {
		return ""
	}

	return o.Attributes[name]
}

// Name is shorthand for the "name" attribute.
func (o *Object) Name() string {
	return o.Attr("name")
}

// decodeImdata turns an APIC response body into objects. An "error" entry
// in imdata is returned as *APIError.
func decodeImdata(body []byte, statusCode int) ([]*Object, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrInvalidResponse
	}

	imdata := gjson.GetBytes(body, "imdata")
	if !imdata.Exists() || !imdata.IsArray() {
		return nil, ErrInvalidResponse
	}

	var (
		objects []*Object
		apiErr  *APIError
	)

	imdata.ForEach(func(_, item gjson.Result) bool {
		item.ForEach(func(class, mo gjson.Result) bool {
			if class.String() == "error" {
				apiErr = &APIError{
					StatusCode: statusCode,
					Code:       mo.Get("attributes.code").String(),
					Text:       mo.Get("attributes.text").String(),
				}

				return false
			}

			objects = append(objects, decodeObject(class.String(), mo, ""))

			return false
		})

		return apiErr == nil
	})

	if apiErr != nil {
		return nil, apiErr
	}

	return objects, nil
}

// decodeObject decodes one managed object. Subtree children usually carry
// only an rn, so their DN is derived from the parent.
func decodeObject(class string, mo gjson.Result, parentDN string) *Object {
	o := &Object{Class: class, Attributes: make(map[string]string)}

	mo.Get("attributes").ForEach(func(key, value gjson.Result) bool {
		o.Attributes[key.String()] = value.String()
		return true
	})

	o.DN = o.Attributes["dn"]
	if o.DN == "" && parentDN != "" && o.Attributes["rn"] != "" {
		o.DN = parentDN + "/" + o.Attributes["rn"]
	}

	mo.Get("children").ForEach(func(_, child gjson.Result) bool {
		child.ForEach(func(childClass, childMO gjson.Result) bool {
			o.Children = append(o.Children, decodeObject(childClass.String(), childMO, o.DN))
			return false
		})

		return true
	})

	return o
}
