// internal/source/file.go
//
// File-watched configuration source.
//
// Context
// -------
// Re-reads one designated YAML file on a fixed interval (default 30s)
// and reports its entire flattened content as the complete snapshot.
// A parse failure on reload fails that poll cycle (the composite store
// keeps the last-known-good snapshot and logs) but must never crash
// the process.
//
// Koanf's file provider and YAML parser do the reading; keys flatten
// with "." delimiters, so `tenant: {acme: {limit: 5}}` contributes
// "tenant.acme.limit".  Nested values also remain reachable as
// structural documents for MAP and OBJECT fields.
//
// Notes
// -----
//   - Oxford commas, two spaces after periods.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
)

// DefaultFileInterval matches the conventional 30s reload period for
// file-backed configuration.
const DefaultFileInterval = 30 * time.Second

// File polls a YAML file as a configuration source.
type File struct {
	name     string
	path     string
	interval time.Duration
}

// NewFile builds a file source over path.  interval <= 0 falls back to
// DefaultFileInterval.
func NewFile(name, path string, interval time.Duration) *File {
	if interval <= 0 {
		interval = DefaultFileInterval
	}
	return &File{name: name, path: path, interval: interval}
}

func (f *File) Name() string                { return f.name }
func (f *File) Interval() time.Duration     { return f.interval }
func (f *File) InitialDelay() time.Duration { return f.interval }

// Poll re-reads and re-parses the whole file.  Any read or parse error
// fails the cycle; the caller keeps the previous snapshot.
func (f *File) Poll(_ context.Context, _ bool) (map[string]any, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(f.path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("file source %s: %w", f.path, err)
	}
	return k.All(), nil
}
