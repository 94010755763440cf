package tuning

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talgya/hexhold/internal/world"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default tuning invalid: %v", err)
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := writeFile(t, `
seed: 99
field:
  cooldown: 4
server:
  port: 9090
`)
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	def := Default()
	if got.Seed != 99 || got.Field.Cooldown != 4 || got.Server.Port != 9090 {
		t.Fatalf("overrides not applied: %+v", got)
	}
	if got.Field.InitialCountdown != def.Field.InitialCountdown ||
		got.Field.Generation.Radius != def.Field.Generation.Radius ||
		got.Server.TickMs != def.Server.TickMs ||
		got.Economy.StartingBalance != def.Economy.StartingBalance {
		t.Fatal("unset keys lost their defaults")
	}
	if got.Server.TickInterval().Milliseconds() != 250 {
		t.Fatalf("tick interval = %v", got.Server.TickInterval())
	}
}

func TestLoadJoinsValidationErrors(t *testing.T) {
	path := writeFile(t, `
field:
  cooldown: 0
  solidity_threshold: 2
server:
  tick_ms: 0
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("invalid tuning loaded")
	}
	for _, want := range []string{"cooldown", "solidity_threshold", "tick_ms"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); !os.IsNotExist(err) {
		t.Fatalf("err = %v, want not-exist", err)
	}
}

func TestPriceTable(t *testing.T) {
	tu := Default()
	prices, err := tu.PriceTable()
	if err != nil {
		t.Fatal(err)
	}
	if cost, ok := prices.Cost(world.Anchor); !ok || cost != 10 {
		t.Fatalf("anchor cost = %d, %v", cost, ok)
	}

	tu.Economy.Prices = map[string]int{"tower": 5}
	if _, err := tu.PriceTable(); err == nil {
		t.Fatal("unknown structure name accepted")
	}
	tu.Economy.Prices = map[string]int{"anchor": -1}
	if _, err := tu.PriceTable(); err == nil {
		t.Fatal("negative cost accepted")
	}
}
