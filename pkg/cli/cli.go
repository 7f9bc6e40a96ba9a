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

// Package cli implements the portradar command line: flag parsing,
// settings resolution, the credential prompt and the subcommand runs.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

// SubcommandHandler defines the interface for parsing subcommand flags.
type SubcommandHandler interface {
	Parse(args []string, cfg *CmdConfig) error
}

// InventoryHandler handles flags for the inventory subcommand.
type InventoryHandler struct{}

// Parse processes the command-line arguments for the inventory subcommand.
func (InventoryHandler) Parse(args []string, cfg *CmdConfig) error {
	fs := newFlagSet(cmdInventory, cfg)
	fs.StringVar(&cfg.Output, "output", defaultInventoryFile, "report file, or - for stdout")

	return parseFlags(fs, args, cfg)
}

// StatusReportHandler handles flags for the status-report subcommand.
type StatusReportHandler struct{}

// Parse processes the command-line arguments for the status-report subcommand.
func (StatusReportHandler) Parse(args []string, cfg *CmdConfig) error {
	fs := newFlagSet(cmdStatusReport, cfg)
	fs.StringVar(&cfg.Output, "output", defaultStatusFile, "report file, or - for stdout")

	return parseFlags(fs, args, cfg)
}

// CleanupHandler handles flags for the cleanup-down-ports subcommand.
type CleanupHandler struct{}

// Parse processes the command-line arguments for the cleanup-down-ports subcommand.
func (CleanupHandler) Parse(args []string, cfg *CmdConfig) error {
	fs := newFlagSet(cmdCleanup, cfg)
	fs.StringVar(&cfg.Input, "input", "", "inventory CSV produced by inventory or status-report")
	fs.StringVar(&cfg.Output, "output", "", "optional CSV of per-selector decisions")
	fs.BoolVar(&cfg.DryRun, "dry-run", true, "plan only, never commit")
	fs.IntVar(&cfg.Concurrency, "concurrency", 1, "selector groups verified in parallel")
	fs.BoolVar(&cfg.Strict, "strict", false, "reject a selector when any member port is missing")

	return parseFlags(fs, args, cfg)
}

// UnbindHandler handles flags for the unbind-epgs subcommand.
type UnbindHandler struct{}

// Parse processes the command-line arguments for the unbind-epgs subcommand.
func (UnbindHandler) Parse(args []string, cfg *CmdConfig) error {
	fs := newFlagSet(cmdUnbind, cfg)
	fs.StringVar(&cfg.Input, "input", defaultInventoryFile, "full inventory CSV with Deployed_EPGs")
	fs.StringVar(&cfg.Output, "output", "", "optional CSV of per-binding decisions")
	fs.BoolVar(&cfg.DryRun, "dry-run", true, "plan only, never commit")
	fs.BoolVar(&cfg.Strict, "strict", false, "skip ports whose interface object is missing")

	return parseFlags(fs, args, cfg)
}

func handlers() map[string]SubcommandHandler {
	return map[string]SubcommandHandler{
		cmdInventory:    InventoryHandler{},
		cmdStatusReport: StatusReportHandler{},
		cmdCleanup:      CleanupHandler{},
		cmdUnbind:       UnbindHandler{},
	}
}

// ParseArgs parses os.Args[1:] into a CmdConfig.
func ParseArgs(args []string) (*CmdConfig, error) {
	cfg := &CmdConfig{set: make(map[string]bool)}

	if len(args) == 0 {
		return cfg, errSubcommandRequired
	}

	name := strings.ToLower(strings.TrimSpace(args[0]))

	switch name {
	case cmdHelp, "-h", "-help", "--help":
		cfg.Help = true
		cfg.SubCmd = cmdHelp

		return cfg, nil
	case cmdVersion, "-version", "--version":
		cfg.SubCmd = cmdVersion

		return cfg, nil
	}

	h, ok := handlers()[name]
	if !ok {
		return cfg, fmt.Errorf("%w: %q", errUnknownSubcommand, args[0])
	}

	cfg.SubCmd = name

	if err := h.Parse(args[1:], cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// newFlagSet registers the flags every controller subcommand shares.
func newFlagSet(name string, cfg *CmdConfig) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ConfigFile, "config", "", "path to a JSON settings file")
	fs.StringVar(&cfg.Address, "apic", "", "controller address (host or https URL)")
	fs.StringVar(&cfg.Username, "username", "", "controller username")
	fs.StringVar(&cfg.PasswordFile, "password-file", "", "file holding the controller password")
	fs.BoolVar(&cfg.Insecure, "insecure", false, "skip TLS certificate verification")
	fs.StringVar(&cfg.Pod, "pod", "", "fabric pod used in interface paths (default 1)")
	fs.DurationVar(&cfg.Timeout, "timeout", 0, "per-request timeout (default 30s)")
	fs.BoolVar(&cfg.Debug, "debug", false, "enable debug logging")
	fs.StringVar(&cfg.Format, "format", FormatText, "summary format: text or json")

	return fs
}

func parseFlags(fs *flag.FlagSet, args []string, cfg *CmdConfig) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			cfg.Help = true
			return nil
		}

		return fmt.Errorf("%w for %s: %w", errInvalidFlags, fs.Name(), err)
	}

	fs.Visit(func(f *flag.Flag) {
		cfg.set[f.Name] = true
	})

	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	cfg.Args = fs.Args()

	return nil
}
