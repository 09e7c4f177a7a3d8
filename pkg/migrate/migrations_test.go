package migrate_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gmchicks/storefront-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected one %s migration, found %d", suffix, len(matches))
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func assertContains(t *testing.T, content string, checks ...string) {
	t.Helper()
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestProductsMigrationGuardsStock(t *testing.T) {
	assertContains(t, readMigration(t, "create_products"),
		"CREATE TABLE IF NOT EXISTS products",
		"CHECK (quantity >= 0)",
		"CHECK (category IN ('chick', 'layer', 'broiler'))",
		"DROP TABLE IF EXISTS products",
	)
}

func TestUserCartsMigrationCarriesVersion(t *testing.T) {
	assertContains(t, readMigration(t, "create_user_carts"),
		"user_id uuid PRIMARY KEY",
		"version bigint NOT NULL DEFAULT 1",
		"DROP TABLE IF EXISTS user_carts",
	)
}

func TestOrdersMigrationContainsConstraints(t *testing.T) {
	assertContains(t, readMigration(t, "create_orders"),
		"CONSTRAINT orders_order_number_key UNIQUE (order_number)",
		"order_status IN ('pending', 'processing', 'shipped', 'delivered', 'cancelled')",
		"status_history jsonb",
		"DROP TABLE IF EXISTS orders",
	)
}

func TestVisitsMigrationContainsSlots(t *testing.T) {
	assertContains(t, readMigration(t, "create_visits"),
		"CREATE TABLE IF NOT EXISTS visit_slots",
		"PRIMARY KEY (visit_date, visit_time)",
		"CHECK (number_of_visitors BETWEEN 1 AND 20)",
	)
}

func TestValidateDir(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate: %v", err)
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatalf("expected invalid filename error")
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Delivery Fee!")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasSuffix(path, "_add_delivery_fee.sql") {
		t.Fatalf("unexpected filename %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
}

func TestEmbeddedMatchesDisk(t *testing.T) {
	embedded, err := fs.Glob(migrate.Embedded(), "migrations/*.sql")
	if err != nil {
		t.Fatalf("glob embedded: %v", err)
	}
	disk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	if err != nil {
		t.Fatalf("glob disk: %v", err)
	}
	if len(embedded) != len(disk) || len(disk) == 0 {
		t.Fatalf("embedded %d migrations, disk has %d", len(embedded), len(disk))
	}
}

func TestValidateEmbedded(t *testing.T) {
	if err := migrate.ValidateFS(migrate.Embedded(), migrate.EmbeddedDir); err != nil {
		t.Fatalf("embedded migrations invalid: %v", err)
	}
}

func TestValidateDirRejectsMissingDownSection(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "20260301090000_only_up.sql"), []byte("-- +goose Up\nSELECT 1;\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatalf("expected missing down section error")
	}
}
