package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q found", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestInitialSchemaContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_initial_schema.sql")

	checks := []string{
		"CREATE TABLE usuarios",
		"CREATE TABLE usuarios_temporales",
		"CREATE TABLE tokens_restablecimiento",
		"CREATE TABLE administradores",
		"CHECK (rol IN ('admin', 'super_admin'))",
		"CREATE TABLE productos",
		"CHECK (precio > 0)",
		"CHECK (stock >= 0)",
		"CREATE TABLE imagenes_producto",
		"REFERENCES productos(id) ON DELETE CASCADE",
		"CREATE TABLE pedidos",
		"CHECK (estado IN ('pendiente', 'pagado', 'enviado', 'entregado', 'cancelado'))",
		"CHECK (metodo_envio IN ('estandar', 'express'))",
		"CREATE TABLE items_pedido",
		"CHECK (cantidad > 0)",
		"CREATE TABLE cupones",
		"CHECK (tipo IN ('porcentaje', 'envio_gratis'))",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCouponSeedIsReversible(t *testing.T) {
	content := readMigration(t, "*_seed_coupons.sql")

	if !strings.Contains(content, "INSERT INTO cupones") {
		t.Error("missing coupon seed insert")
	}
	if !strings.Contains(content, "DELETE FROM cupones") {
		t.Error("seed migration must delete its rows on down")
	}
}
