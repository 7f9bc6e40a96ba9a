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

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/carverauto/portradar/pkg/config"
	"github.com/carverauto/portradar/pkg/logger"
	"github.com/carverauto/portradar/pkg/models"
)

// ResolveSettings loads the config file or environment named by cmd and
// layers explicitly set flags on top. Credentials may still be missing;
// callers prompt for them and validate afterwards.
func ResolveSettings(ctx context.Context, cmd *CmdConfig, loader *config.Config) (*Settings, error) {
	s := &Settings{}

	if loader.Enabled(cmd.ConfigFile) {
		if err := loader.Load(ctx, cmd.ConfigFile, s); err != nil {
			return nil, err
		}
	}

	applyFlags(cmd, s)

	if cmd.PasswordFile != "" {
		data, err := os.ReadFile(cmd.PasswordFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errPasswordFile, err)
		}

		s.Controller.Password = strings.TrimRight(string(data), "\r\n")
	}

	s.Controller.ApplyDefaults()

	if s.Concurrency == 0 {
		s.Concurrency = 1
	}

	if s.Format == "" {
		s.Format = FormatText
	}

	if needsInput(cmd.SubCmd) && s.Input == "" {
		return nil, errInputRequired
	}

	return s, nil
}

// applyFlags copies flags onto s. Flags left at their defaults only fill
// fields the loaded settings did not set.
func applyFlags(cmd *CmdConfig, s *Settings) {
	str := func(name, flagValue string, dst *string) {
		if cmd.IsSet(name) || (*dst == "" && flagValue != "") {
			*dst = flagValue
		}
	}

	str("apic", cmd.Address, &s.Controller.Address)
	str("username", cmd.Username, &s.Controller.Username)
	str("pod", cmd.Pod, &s.Controller.Pod)
	str("input", cmd.Input, &s.Input)
	str("output", cmd.Output, &s.Output)
	str("format", cmd.Format, &s.Format)

	if cmd.IsSet("insecure") {
		s.Controller.InsecureSkipVerify = cmd.Insecure
	}

	if cmd.IsSet("timeout") {
		s.Controller.Timeout = models.Duration(cmd.Timeout)
	}

	if cmd.IsSet("dry-run") || s.DryRun == nil {
		dry := cmd.DryRun || !cmd.IsSet("dry-run")
		s.DryRun = &dry
	}

	if cmd.IsSet("concurrency") || s.Concurrency == 0 {
		s.Concurrency = cmd.Concurrency
	}

	if cmd.IsSet("strict") {
		s.StrictNotFound = cmd.Strict
	}

	if cmd.IsSet("debug") {
		if s.Logging == nil {
			s.Logging = logger.DefaultConfig()
		}

		s.Logging.Debug = cmd.Debug
	}
}

func needsInput(subCmd string) bool {
	return subCmd == cmdCleanup || subCmd == cmdUnbind
}
