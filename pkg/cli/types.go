package cli

import (
	"time"

	"github.com/carverauto/portradar/pkg/apic"
	"github.com/carverauto/portradar/pkg/logger"
)

// Subcommand names.
const (
	cmdInventory    = "inventory"
	cmdStatusReport = "status-report"
	cmdCleanup      = "cleanup-down-ports"
	cmdUnbind       = "unbind-epgs"
	cmdVersion      = "version"
	cmdHelp         = "help"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// stdoutPath selects standard output for -output.
const stdoutPath = "-"

// Default report files, matching the names operators already feed back
// into the cleanup commands.
const (
	defaultInventoryFile = "aci_port_epg_report.csv"
	defaultStatusFile    = "aci_port_status_report.csv"
)

// CmdConfig holds parsed command-line configuration.
type CmdConfig struct {
	Help         bool
	SubCmd       string
	ConfigFile   string
	Address      string
	Username     string
	PasswordFile string
	Insecure     bool
	Pod          string
	Timeout      time.Duration
	Debug        bool
	Input        string
	Output       string
	Format       string
	DryRun       bool
	Concurrency  int
	Strict       bool
	Args         []string

	set map[string]bool
}

// IsSet reports whether the named flag was given on the command line.
func (c *CmdConfig) IsSet(name string) bool {
	return c.set[name]
}

// Settings is the resolved configuration of one run: the config file or
// environment first, then any explicitly set flags on top.
type Settings struct {
	Controller     apic.Config    `json:"controller"`
	Logging        *logger.Config `json:"logging,omitempty"`
	DryRun         *bool          `json:"dry_run,omitempty"`
	Concurrency    int            `json:"concurrency,omitempty"`
	StrictNotFound bool           `json:"strict_not_found,omitempty"`
	Input          string         `json:"input,omitempty"`
	Output         string         `json:"output,omitempty"`
	Format         string         `json:"format,omitempty"`
}

// Validate implements config.Validator.
func (s *Settings) Validate() error {
	if err := s.Controller.Validate(); err != nil {
		return err
	}

	switch s.Format {
	case "", FormatText, FormatJSON:
	default:
		return errInvalidFormat
	}

	if s.Concurrency < 0 {
		return errInvalidConcurrency
	}

	return nil
}

// IsDryRun reports whether changes must only be planned. Unset means dry.
func (s *Settings) IsDryRun() bool {
	return s.DryRun == nil || *s.DryRun
}
