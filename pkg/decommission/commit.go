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
	"sync"

	"github.com/carverauto/portradar/pkg/apic"
	"github.com/carverauto/portradar/pkg/logger"
)

// CommitResult describes what Apply did with a batch.
type CommitResult struct {
	DryRun    bool                  `json:"dry_run"`
	Committed bool                  `json:"committed"`
	Intents   []apic.MutationIntent `json:"intents"`
}

// Committer gates a batch behind dry-run and sends it in one call.
type Committer struct {
	dir    apic.Directory
	dryRun bool
	logger logger.Logger

	mu sync.Mutex
}

// NewCommitter returns a committer. With dryRun set Apply never writes.
func NewCommitter(dir apic.Directory, dryRun bool, log logger.Logger) *Committer {
	return &Committer{dir: dir, dryRun: dryRun, logger: log.WithComponent("committer")}
}

// Apply commits req unless running dry or the batch is empty.
func (c *Committer) Apply(ctx context.Context, req *apic.ConfigRequest) (CommitResult, error) {
	if req == nil {
		return CommitResult{}, ErrNilBatch
	}

	res := CommitResult{DryRun: c.dryRun, Intents: req.Intents()}

	for _, in := range res.Intents {
		c.logger.Info().Str("class", in.Class).Str("dn", in.DN).Str("status", string(in.Status)).Bool("dry_run", c.dryRun).
			Msg("Planned change")
	}

	if c.dryRun {
		c.logger.Info().Int("intents", req.Len()).Msg("Dry run, nothing committed")
		return res, nil
	}

	if req.Len() == 0 {
		c.logger.Info().Msg("No matching configuration to delete, nothing committed")
		return res, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.dir.Commit(ctx, req); err != nil {
		c.logger.Error().Err(err).Int("intents", req.Len()).Msg("Commit failed")
		return res, &CommitError{Intents: req.Len(), Err: err}
	}

	res.Committed = true

	c.logger.Info().Int("intents", req.Len()).Msg("Changes committed")

	return res, nil
}
