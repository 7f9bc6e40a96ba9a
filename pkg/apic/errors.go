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
	"errors"
	"fmt"
)

var (
	ErrAddressRequired  = errors.New("controller address is required")
	ErrUsernameRequired = errors.New("controller username is required")
	ErrPasswordRequired = errors.New("controller password is required")
	ErrInvalidPod       = errors.New("pod must be a positive number")
	ErrLoginFailed      = errors.New("controller login failed")
	ErrNotLoggedIn      = errors.New("not logged in to controller")
	ErrInvalidResponse  = errors.New("invalid controller response")
	ErrEmptyBatch       = errors.New("config request is empty")
	ErrCommitRejected   = errors.New("controller rejected commit")
)

// APIError is an error entry returned by the controller.
type APIError struct {
	StatusCode int
	Code       string
	Text       string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("controller returned HTTP %d", e.StatusCode)
	}

	return fmt.Sprintf("controller returned HTTP %d: error %s: %s", e.StatusCode, e.Code, e.Text)
}
