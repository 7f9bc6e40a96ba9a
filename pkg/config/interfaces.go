package config

import "context"

// ConfigLoader fills dst from some source. path is ignored by loaders that
// do not read files.
type ConfigLoader interface {
	Load(ctx context.Context, path string, dst interface{}) error
}

// Validator is implemented by configuration types that can check
// themselves after loading.
type Validator interface {
	Validate() error
}
