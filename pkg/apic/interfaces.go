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

//go:generate mockgen -destination=mock_directory.go -package=apic github.com/carverauto/portradar/pkg/apic Directory

package apic

import "context"

// Subtree controls how much of an object's subtree a class query returns.
type Subtree string

const (
	SubtreeNone     Subtree = ""
	SubtreeChildren Subtree = "children"
	SubtreeFull     Subtree = "full"
)

// Directory is the part of the controller the correlation engine and the
// decommission planner depend on. Implementations must allow concurrent
// QueryClass and LookupDN calls.
type Directory interface {
	// QueryClass returns every object of the given class.
	QueryClass(ctx context.Context, class string, subtree Subtree) ([]*Object, error)

	// LookupDN returns the object with the given DN. ok is false when the
	// object does not exist.
	LookupDN(ctx context.Context, dn string) (obj *Object, ok bool, err error)

	// Commit applies every intent of the request in a single call.
	Commit(ctx context.Context, req *ConfigRequest) error
}
