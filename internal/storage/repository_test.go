package storage

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/cardosoccc/bud/internal/core"
	"github.com/cardosoccc/bud/internal/log"
)

func testLogger() *log.Logger {
	return log.New(log.Config{Level: slog.LevelError})
}

func TestOpenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bud.db")

	repo, err := Open(path, testLogger())
	if err != nil {
		t.Fatalf("first open: %v", err)
	}

	project := core.Project{ID: "p1", Name: "personal"}
	if err := repo.Queries().InsertProject(ctx, project); err != nil {
		t.Fatalf("insert project: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopening must re-run migrations without error and keep the data.
	repo, err = Open(path, testLogger())
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer repo.Close()

	got, err := repo.Queries().GetProject(ctx, "p1")
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if got == nil || got.Name != "personal" {
		t.Error("data lost across reopen")
	}
}

func TestNilAccountSeededOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bud.db")

	for i := 0; i < 3; i++ {
		repo, err := Open(path, testLogger())
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		nilAcct, err := repo.Queries().GetNilAccount(ctx)
		if err != nil {
			t.Fatalf("get nil account: %v", err)
		}
		if nilAcct == nil {
			t.Fatal("nil account not seeded")
		}
		var n int
		if err := repo.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM accounts WHERE type = 'nil'").Scan(&n); err != nil {
			t.Fatalf("count nil accounts: %v", err)
		}
		if n != 1 {
			t.Fatalf("open %d: %d nil accounts, want exactly 1", i, n)
		}
		repo.Close()
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	repo, err := Open(filepath.Join(t.TempDir(), "bud.db"), testLogger())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer repo.Close()

	boom := &core.ConsistencyError{Entity: "test", Ref: "x", Detail: "boom"}
	err = repo.InTx(ctx, func(q *Queries) error {
		if err := q.InsertProject(ctx, core.Project{ID: "p1", Name: "doomed"}); err != nil {
			return err
		}
		return boom
	})
	if err == nil {
		t.Fatal("InTx swallowed the error")
	}

	got, err := repo.Queries().GetProject(ctx, "p1")
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if got != nil {
		t.Error("rolled-back insert is visible")
	}
}
