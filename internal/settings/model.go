// internal/settings/model.go
//
// Typed bootstrap settings for the confd daemon.
//
// Context
// -------
// These structs define the shape of the daemon's own configuration,
// source selection, connection parameters, and polling intervals, as
// distinct from the dynamic key space the daemon serves.  The loader in
// loader.go builds the tree from three overlay layers:
//
//   • optional `conf/.env`                     – dotenv values,
//   • `conf/confd.yaml`                        – primary static file,
//   • `DYNCONF_`-prefixed environment overrides – highest precedence.
//
// Any string value with the prefix `vault:` is resolved through the
// Vault client *before* unmarshalling, so the model never stores Vault
// URIs, only plain strings.
//
// Validation happens immediately after unmarshal; the daemon fails
// fast if required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • Oxford commas, two spaces after periods.
package settings

import "time"

// Server holds the admin HTTP surface tunables.
type Server struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
}

// FileSource configures the file-watched source.
type FileSource struct {
	Enabled  bool          `koanf:"enabled"`
	Path     string        `koanf:"path" validate:"required_if=Enabled true"`
	Interval time.Duration `koanf:"interval"`
}

// EnvSource configures the host environment property source.
type EnvSource struct {
	Enabled bool   `koanf:"enabled"`
	Prefix  string `koanf:"prefix"`
}

// RepoSource configures the repository-backed source.  The DSN password
// segment typically arrives through a `vault:` indirection.
type RepoSource struct {
	Enabled      bool          `koanf:"enabled"`
	DSN          string        `koanf:"dsn" validate:"required_if=Enabled true"`
	Table        string        `koanf:"table"`
	InitialDelay time.Duration `koanf:"initial_delay"`
	Interval     time.Duration `koanf:"interval"`
}

// Sources aggregates every source block.
type Sources struct {
	File FileSource `koanf:"file"`
	Env  EnvSource  `koanf:"env"`
	Repo RepoSource `koanf:"repo"`
}

// Log holds logger tunables.
type Log struct {
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
}

// Paths is resolved at runtime, never set in YAML or env.  The loader
// discovers Root so later code can build absolute file paths.
type Paths struct {
	Root string
}

// Settings is the immutable aggregate returned by Load and cached in an
// atomic.Pointer for lock-free reads for the daemon lifetime.
type Settings struct {
	Server  Server  `koanf:"server"`
	Sources Sources `koanf:"sources"`
	Log     Log     `koanf:"log"`
	Paths   Paths   `koanf:"-"`
}
