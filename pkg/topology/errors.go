package topology

import "errors"

var (
	ErrMalformedBlock = errors.New("malformed block range")
	ErrQueryFailed    = errors.New("fabric query failed")
	ErrUnknownMode    = errors.New("unknown collection mode")
)
