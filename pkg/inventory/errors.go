package inventory

import "errors"

var (
	ErrEmptyInventory     = errors.New("inventory file is empty")
	ErrMalformedInventory = errors.New("malformed inventory file")
	ErrMissingColumn      = errors.New("inventory is missing a required column")
)
