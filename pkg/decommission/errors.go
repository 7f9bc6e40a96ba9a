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
	"errors"
	"fmt"
)

var (
	ErrCommitFailed = errors.New("commit failed")
	ErrNilBatch     = errors.New("nil config request")
)

// CommitError reports a batch the controller did not apply. Nothing in the
// batch is assumed to have been applied.
type CommitError struct {
	Intents int
	Err     error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit of %d change(s) failed: %v", e.Intents, e.Err)
}

func (e *CommitError) Unwrap() []error {
	return []error{ErrCommitFailed, e.Err}
}
