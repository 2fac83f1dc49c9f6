// internal/source/file_test.go
//
// Unit-tests for the file and environment sources.
//
// Run: go test ./internal/source -v

package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFile_PollFlattensAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dynamic.yaml")
	writeFile(t, path, "tenant:\n  acme:\n    limit: 45\nfeature:\n  gate: true\n")

	f := NewFile("file", path, 0)
	if f.Interval() != DefaultFileInterval {
		t.Fatalf("interval = %v, want default", f.Interval())
	}

	snap, err := f.Poll(context.Background(), true)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if snap["tenant.acme.limit"] != 45 {
		t.Fatalf("flattened key missing: %v", snap)
	}

	// Edits appear wholesale on the next poll.
	writeFile(t, path, "tenant:\n  acme:\n    limit: 90\n")
	snap, err = f.Poll(context.Background(), false)
	if err != nil {
		t.Fatalf("re-poll: %v", err)
	}
	if snap["tenant.acme.limit"] != 90 {
		t.Fatalf("reload missed edit: %v", snap)
	}
	if _, ok := snap["feature.gate"]; ok {
		t.Fatal("poll is a total snapshot; removed key must be gone")
	}
}

func TestFile_ParseFailureFailsCycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dynamic.yaml")
	writeFile(t, path, "{::not yaml")

	f := NewFile("file", path, 0)
	if _, err := f.Poll(context.Background(), false); err == nil {
		t.Fatal("parse failure must fail the poll cycle")
	}
}

func TestEnv_PrefixMapping(t *testing.T) {
	t.Setenv("DCTEST_TENANT__ACME__LIMIT", "45")
	t.Setenv("DCTEST_FEATURE__GATE", "true")
	t.Setenv("UNRELATED", "x")

	e := NewEnv("env", "DCTEST_", 0)
	snap, err := e.Poll(context.Background(), true)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if snap["tenant.acme.limit"] != "45" {
		t.Fatalf("mapped key missing: %v", snap)
	}
	if snap["feature.gate"] != "true" {
		t.Fatalf("mapped key missing: %v", snap)
	}
	if _, ok := snap["unrelated"]; ok {
		t.Fatal("unprefixed variables must not leak into the snapshot")
	}
}
