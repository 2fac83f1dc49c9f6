// internal/settings/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `loader.go` calls `validateStruct` immediately after it unmarshals
// the merged Koanf tree into a `Settings` instance.  Any tag mismatch
// aborts startup, ensuring the daemon never runs with partial or
// malformed bootstrap settings.  The rules in play are `required`,
// `required_if` on source blocks, `hostname_port` on the listen
// address, and `oneof` on the log level.
package settings

import "github.com/go-playground/validator/v10"

var v = validator.New()

// validateStruct returns the first validation error, or nil on success.
func validateStruct(s *Settings) error {
	return v.Struct(s)
}
