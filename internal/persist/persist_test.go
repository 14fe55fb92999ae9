package persist

import (
	"context"
	"path/filepath"
	"testing"
)

func TestLedgerRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	have, err := db.Has(ctx, 42, "42@acme.widgets")
	if err != nil {
		t.Fatal(err)
	}
	if have {
		t.Error("empty ledger claims to have a message")
	}

	if err := db.Record(ctx, 42, "42@acme.widgets"); err != nil {
		t.Fatal(err)
	}
	// Recording twice is fine.
	if err := db.Record(ctx, 42, "42@acme.widgets"); err != nil {
		t.Fatal(err)
	}

	have, err = db.Has(ctx, 42, "42@acme.widgets")
	if err != nil {
		t.Fatal(err)
	}
	if !have {
		t.Error("ledger lost a recorded message")
	}

	// Other issues are unaffected.
	have, err = db.Has(ctx, 43, "42@acme.widgets")
	if err != nil {
		t.Fatal(err)
	}
	if have {
		t.Error("ledger leaks records across issues")
	}

	if err := db.Forget(ctx, 42); err != nil {
		t.Fatal(err)
	}
	have, err = db.Has(ctx, 42, "42@acme.widgets")
	if err != nil {
		t.Fatal(err)
	}
	if have {
		t.Error("ledger kept a forgotten message")
	}
}

func TestDsnFromPath(t *testing.T) {
	dsn, err := dsnFromPath("/tmp/x.db", nil)
	if err != nil {
		t.Fatal(err)
	}
	if dsn != "file:///tmp/x.db" {
		t.Errorf("dsnFromPath = %q", dsn)
	}
}
