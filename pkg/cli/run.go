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
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/portradar/pkg/apic"
	"github.com/carverauto/portradar/pkg/config"
	"github.com/carverauto/portradar/pkg/decommission"
	"github.com/carverauto/portradar/pkg/inventory"
	"github.com/carverauto/portradar/pkg/logger"
	"github.com/carverauto/portradar/pkg/models"
	"github.com/carverauto/portradar/pkg/topology"
	"github.com/carverauto/portradar/pkg/version"
)

const reportFilePerms = 0o644

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Session is a logged-in controller connection.
type Session interface {
	apic.Directory
	Logout(ctx context.Context) error
}

// Connector opens a Session for the given controller settings.
type Connector func(ctx context.Context, cfg *apic.Config, log logger.Logger) (Session, error)

// ConnectAPIC logs in to the controller over REST.
func ConnectAPIC(ctx context.Context, cfg *apic.Config, log logger.Logger) (Session, error) {
	client, err := apic.NewClient(cfg, log)
	if err != nil {
		return nil, err
	}

	if err := client.Login(ctx); err != nil {
		return nil, err
	}

	return client, nil
}

// App runs parsed commands.
type App struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Connect Connector
	Prompt  CredentialPrompt
	Loader  *config.Config
	// Logger, when set, is used instead of one built from the settings.
	Logger logger.Logger
	// NewRunID generates the identifier attached to logs and summaries.
	NewRunID func() string
}

// NewApp returns an App wired to the process streams and the REST client.
func NewApp() *App {
	return &App{
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Connect:  ConnectAPIC,
		Prompt:   NewTerminalPrompt(),
		Loader:   config.NewConfig(nil),
		NewRunID: uuid.NewString,
	}
}

// Execute runs one parsed command to completion.
func (a *App) Execute(ctx context.Context, cmd *CmdConfig) error {
	if cmd.Help || cmd.SubCmd == cmdHelp {
		ShowHelp(a.Stdout)
		return nil
	}

	if cmd.SubCmd == cmdVersion {
		_, err := fmt.Fprintln(a.Stdout, version.GetFullVersion())
		return err
	}

	s, err := ResolveSettings(ctx, cmd, a.Loader)
	if err != nil {
		return err
	}

	run := &RunSummary{
		RunID:     a.NewRunID(),
		Command:   cmd.SubCmd,
		Version:   version.GetInfo(),
		DryRun:    s.IsDryRun(),
		StartedAt: time.Now().UTC(),
		Input:     s.Input,
		Output:    s.Output,
	}

	log, err := a.logger(s)
	if err != nil {
		return err
	}

	log = log.WithFields(map[string]interface{}{"run_id": run.RunID, "command": cmd.SubCmd})

	var records []models.PortRecord

	if needsInput(cmd.SubCmd) {
		if records, err = inventory.ReadFile(s.Input, log); err != nil {
			return err
		}
	}

	if a.Prompt != nil {
		if err := a.Prompt.Prompt(s); err != nil {
			return err
		}
	}

	if err := config.ValidateConfig(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	run.Controller = s.Controller.BaseURL()

	sess, err := a.Connect(ctx, &s.Controller, log)
	if err != nil {
		return err
	}

	defer func() {
		if err := sess.Logout(context.WithoutCancel(ctx)); err != nil {
			log.Warn().Err(err).Msg("Logout failed")
		}
	}()

	log.Info().Str("controller", run.Controller).Bool("dry_run", run.DryRun).Msg("Run started")

	runErr := a.dispatch(ctx, cmd.SubCmd, s, sess, records, run, log)

	run.Elapsed = time.Since(run.StartedAt).Round(time.Millisecond).String()
	if runErr != nil {
		run.Error = runErr.Error()
	}

	summaryOut := a.Stdout
	if s.Output == stdoutPath {
		summaryOut = a.Stderr
	}

	if err := WriteSummary(summaryOut, s.Format, run); err != nil {
		log.Warn().Err(err).Msg("Failed to write summary")
	}

	return runErr
}

func (a *App) dispatch(ctx context.Context, subCmd string, s *Settings, sess Session,
	records []models.PortRecord, run *RunSummary, log logger.Logger) error {
	switch subCmd {
	case cmdInventory:
		return a.runReport(ctx, sess, topology.ModeInventory, s, run, log)
	case cmdStatusReport:
		return a.runReport(ctx, sess, topology.ModeStatus, s, run, log)
	case cmdCleanup:
		return a.runCleanup(ctx, sess, records, s, run, log)
	case cmdUnbind:
		return a.runUnbind(ctx, sess, records, s, run, log)
	}

	return fmt.Errorf("%w: %q", errUnknownSubcommand, subCmd)
}

func (a *App) runReport(ctx context.Context, dir apic.Directory, mode topology.Mode, s *Settings,
	run *RunSummary, log logger.Logger) error {
	snap, err := topology.NewCollector(dir, log).Collect(ctx, mode)
	if err != nil {
		return err
	}

	layout, opts := inventory.LayoutFull, topology.Options{}
	if mode == topology.ModeStatus {
		layout, opts = inventory.LayoutStatus, topology.Options{StatusFallback: models.StatusNotFoundSFP}
	}

	records := topology.Correlate(snap, opts)
	run.Records = len(records)
	run.Topology = &snap.Stats

	return a.writeTo(s.Output, func(w io.Writer) error {
		return inventory.WriteReport(w, layout, records)
	})
}

func (a *App) runCleanup(ctx context.Context, sess Session, records []models.PortRecord, s *Settings,
	run *RunSummary, log logger.Logger) error {
	candidates := decommission.CandidatesFromRecords(records, log)
	run.Records = len(records)

	plan, err := decommission.NewPlanner(sess, a.plannerConfig(s), log).Plan(ctx, candidates)
	if err != nil {
		return err
	}

	run.Decommission = &plan.Summary
	run.Groups = plan.Groups

	if s.Output != "" {
		if err := a.writeTo(s.Output, func(w io.Writer) error {
			return inventory.WriteDecisions(w, plan.Groups)
		}); err != nil {
			return err
		}
	}

	res, err := decommission.NewCommitter(sess, s.IsDryRun(), log).Apply(ctx, plan.Batch)
	run.Commit = &res

	return err
}

func (a *App) runUnbind(ctx context.Context, sess Session, records []models.PortRecord, s *Settings,
	run *RunSummary, log logger.Logger) error {
	candidates := decommission.BindingCandidatesFromRecords(records)
	run.Records = len(records)

	plan, err := decommission.NewUnbindPlanner(sess, a.plannerConfig(s), log).Plan(ctx, candidates)
	if err != nil {
		return err
	}

	run.Unbind = &plan.Summary
	run.Bindings = plan.Results

	if s.Output != "" {
		if err := a.writeTo(s.Output, func(w io.Writer) error {
			return inventory.WriteUnbindResults(w, plan.Results)
		}); err != nil {
			return err
		}
	}

	res, err := decommission.NewCommitter(sess, s.IsDryRun(), log).Apply(ctx, plan.Batch)
	run.Commit = &res

	return err
}

func (*App) plannerConfig(s *Settings) decommission.Config {
	return decommission.Config{
		Pod:            s.Controller.Pod,
		Concurrency:    s.Concurrency,
		StrictNotFound: s.StrictNotFound,
	}
}

// writeTo runs write against path, or stdout when path is "-".
func (a *App) writeTo(path string, write func(io.Writer) error) error {
	if path == stdoutPath {
		return write(a.Stdout)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, reportFilePerms)
	if err != nil {
		return fmt.Errorf("%w %s: %w", errOpenOutput, path, err)
	}

	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

func (a *App) logger(s *Settings) (logger.Logger, error) {
	if a.Logger != nil {
		return a.Logger, nil
	}

	// zerolog's global logger follows the run settings too.
	if err := logger.Init(s.Logging); err != nil {
		return nil, err
	}

	return logger.FromZerolog(logger.GetLogger()), nil
}

// ExitCode maps an Execute or ParseArgs error to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errSubcommandRequired),
		errors.Is(err, errUnknownSubcommand),
		errors.Is(err, errInvalidFlags),
		errors.Is(err, errInputRequired):
		return ExitUsage
	default:
		return ExitFailure
	}
}
