package cli

import (
	"errors"
)

var (
	errSubcommandRequired = errors.New("a subcommand is required")
	errUnknownSubcommand  = errors.New("unknown subcommand")
	errInvalidFlags       = errors.New("invalid flags")
	errInputRequired      = errors.New("an -input inventory file is required")
	errInvalidFormat      = errors.New("format must be text or json")
	errInvalidConcurrency = errors.New("concurrency must not be negative")
	errPasswordFile       = errors.New("failed to read password file")
	errPromptCancelled    = errors.New("credential prompt cancelled")
	errEmptyPassword      = errors.New("password cannot be empty")
	errEmptyField         = errors.New("value cannot be empty")
	errOpenOutput         = errors.New("failed to open output")
)
