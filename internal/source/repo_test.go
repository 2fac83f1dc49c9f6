// internal/source/repo_test.go
//
// Unit-tests for the repository source adapter.
//
// Run: go test ./internal/source -v

package source

import (
	"context"
	"errors"
	"testing"

	"github.com/yanizio/dynconf/internal/entry"
)

type fakeRepo struct {
	rows []entry.Entry
	err  error
}

func (f *fakeRepo) All(context.Context) ([]entry.Entry, error) { return f.rows, f.err }
func (f *fakeRepo) ByKey(context.Context, string) (*entry.Entry, error) {
	return nil, entry.ErrNotFound
}

func TestRepo_PollFoldsRecords(t *testing.T) {
	r := NewRepo("repo", &fakeRepo{rows: []entry.Entry{
		{ID: "1", Key: "tenant.acme.limit", Value: "45"},
		{ID: "2", Key: "feature.gate", Value: "true", Description: "rollout"},
	}}, 0, 0)

	if r.InitialDelay() != DefaultRepoInitialDelay || r.Interval() != DefaultRepoInterval {
		t.Fatalf("defaults not applied: %v / %v", r.InitialDelay(), r.Interval())
	}

	snap, err := r.Poll(context.Background(), true)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if snap["tenant.acme.limit"] != "45" || snap["feature.gate"] != "true" {
		t.Fatalf("fold = %v", snap)
	}
}

func TestRepo_ConnectivityErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	r := NewRepo("repo", &fakeRepo{err: boom}, 0, 0)

	_, err := r.Poll(context.Background(), false)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the repository error to propagate", err)
	}
}
