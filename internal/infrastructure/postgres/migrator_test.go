package postgres

import (
	"io/fs"
	"testing"

	"github.com/rs/zerolog"
)

func TestEmbeddedMigrationsPresent(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}

	var up, down int
	for _, e := range entries {
		switch {
		case len(e.Name()) > 7 && e.Name()[len(e.Name())-7:] == ".up.sql":
			up++
		case len(e.Name()) > 9 && e.Name()[len(e.Name())-9:] == ".down.sql":
			down++
		}
	}

	if up == 0 || up != down {
		t.Fatalf("expected matching up/down migrations, got up=%d down=%d", up, down)
	}
}

func TestMigrationsRejectUnknownDriver(t *testing.T) {
	const dbURL = "unknown-driver://localhost/ledger"

	if err := RunMigrations(dbURL, "", zerolog.Nop()); err == nil {
		t.Fatal("expected RunMigrations to fail")
	}
	if err := RunMigrationsDown(dbURL, "", zerolog.Nop()); err == nil {
		t.Fatal("expected RunMigrationsDown to fail")
	}
}
