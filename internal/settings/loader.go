// internal/settings/loader.go
//
// Bootstrap settings loader.
//
// Context
// -------
// `Load()` builds one immutable `Settings` struct from three layers
// (highest precedence last):
//
//  1. Optional `<root>/conf/.env` dotenv file.
//  2. `conf/confd.yaml`.
//  3. Environment variables prefixed `DYNCONF_`, where `__` maps to "."
//     (e.g., `DYNCONF_SERVER__LISTEN_ADDR → server.listen_addr`).
//
// After merging, `vault:` indirections are resolved through the
// supplied SecretResolver, the tree is unmarshalled into strongly-typed
// structs, validated, enriched with the runtime root path, and cached
// in an `atomic.Pointer` for lock-free reads.
//
// Instrumentation
// ---------------
//   - DEBUG spans: root discovery, YAML read, env overlay.
//   - ERROR spans: YAML parse, unmarshal, and validation failures.
//   - Logs use the global sugared logger (`zap.S()`) so early boot
//     issues surface even before the file logger is installed.
//
// Notes
// -----
//   - `rootDir()` climbs the cwd tree until it finds `conf/confd.yaml`,
//     so `go run ./cmd/confd` works from any sub-directory.
//   - Oxford commas, two spaces after periods.
package settings

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// SecretResolver turns a `vault:path#key` reference into its plain
// value.  internal/vault.Client satisfies it.
type SecretResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

var current atomic.Pointer[Settings]

// rootDir resolves DYNCONF_ROOT or climbs directories until
// conf/confd.yaml is found.  Falls back to the executable heuristic for
// the production layout.
func rootDir() string {
	if r := os.Getenv("DYNCONF_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "confd.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

// Load reads .env, YAML, and env overrides, resolves secrets,
// validates, and caches Settings.  resolver may be nil when no vault
// indirections are expected; an unresolvable reference then fails load.
func Load(ctx context.Context, resolver SecretResolver) (*Settings, error) {
	root := rootDir()
	zap.S().Debugw("settings root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "confd.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("settings yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("settings yaml loaded", "file", yamlPath)

	// Env overrides: DYNCONF_SERVER__LISTEN_ADDR → server.listen_addr
	if err := k.Load(env.Provider("DYNCONF_", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, "DYNCONF_"), "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("settings env overlay failed", "err", err)
		return nil, err
	}

	if err := resolveSecrets(ctx, k, resolver); err != nil {
		zap.S().Errorw("settings secret resolution failed", "err", err)
		return nil, err
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		zap.S().Errorw("settings unmarshal failed", "err", err)
		return nil, err
	}

	s.Paths.Root = root
	if err := validateStruct(&s); err != nil {
		zap.S().Errorw("settings validation failed", "err", err)
		return nil, err
	}

	current.Store(&s)
	zap.S().Infow("settings loaded",
		"listen_addr", s.Server.ListenAddr,
		"file_source", s.Sources.File.Enabled,
		"repo_source", s.Sources.Repo.Enabled,
		"root", s.Paths.Root,
	)
	return &s, nil
}

// resolveSecrets replaces every `vault:` string value in the merged
// tree with its resolved secret before unmarshalling.
func resolveSecrets(ctx context.Context, k *koanf.Koanf, resolver SecretResolver) error {
	for key, raw := range k.All() {
		ref, ok := raw.(string)
		if !ok || !strings.HasPrefix(ref, "vault:") {
			continue
		}
		if resolver == nil {
			zap.S().Warnw("vault reference with no resolver configured", "key", key)
			continue
		}
		val, err := resolver.Resolve(ctx, ref)
		if err != nil {
			return err
		}
		if err := k.Set(key, val); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the last loaded Settings, or nil before the first Load.
func Get() *Settings { return current.Load() }
