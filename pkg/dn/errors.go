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

package dn

import (
	"errors"
	"fmt"
)

// ErrMalformedDN is wrapped by every ParseError.
var ErrMalformedDN = errors.New("malformed distinguished name")

// ParseError reports a DN that does not have the expected shape.
type ParseError struct {
	DN     string
	Reason string
}

func newParseError(dn, reason string) *ParseError {
	return &ParseError{DN: dn, Reason: reason}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrMalformedDN, e.DN, e.Reason)
}

func (*ParseError) Unwrap() error {
	return ErrMalformedDN
}
