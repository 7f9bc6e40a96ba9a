package cli

import (
	"fmt"
	"io"
)

// ShowHelp writes the usage message.
func ShowHelp(w io.Writer) {
	_, _ = fmt.Fprint(w, `portradar: fabric port inventory and safe decommission tool
Usage:
  portradar <command> [options]

Commands:
  inventory            Report every configured port with status and deployed EPGs
  status-report        Report configured ports with status only (no EPG bindings)
  cleanup-down-ports   Remove interface selectors whose ports are all verified down
  unbind-epgs          Remove static EPG bindings from ports that are not up
  version              Print the version
  help                 Show this help message

Common options:
  -config string         path to a JSON settings file (or CONFIG_SOURCE=env)
  -apic string           controller address (host or https URL)
  -username string       controller username
  -password-file string  file holding the controller password
  -insecure              skip TLS certificate verification
  -pod string            fabric pod used in interface paths (default "1")
  -timeout duration      per-request timeout (default 30s)
  -format string         summary format: text or json (default "text")
  -debug                 enable debug logging

Options for inventory and status-report:
  -output string         report file, or - for stdout
                         (defaults: aci_port_epg_report.csv, aci_port_status_report.csv)

Options for cleanup-down-ports:
  -input string          inventory CSV produced by inventory or status-report
  -output string         optional CSV of per-selector decisions
  -dry-run               plan only, never commit (default true)
  -concurrency int       selector groups verified in parallel (default 1)
  -strict                reject a selector when any member port is missing

Options for unbind-epgs:
  -input string          full inventory CSV (default "aci_port_epg_report.csv")
  -output string         optional CSV of per-binding decisions
  -dry-run               plan only, never commit (default true)
  -strict                skip ports whose interface object is missing

The password is prompted for on a terminal, or read from the first line of
piped stdin.

Examples:
  # Build the full report
  portradar inventory -apic apic1.example.net -username admin

  # Review what cleanup would delete, then apply it
  portradar cleanup-down-ports -input aci_port_status_report.csv
  portradar cleanup-down-ports -input aci_port_status_report.csv -dry-run=false

  # Non-interactive, machine-readable
  echo "$APIC_PASSWORD" | portradar unbind-epgs -apic apic1 -username admin -format json
`)
}
