package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xtding233/enhance-sim/internal/enhance"
)

const defaultYAML = `version: "2026.1"
max_tier: 3
rates: {1: 0.5, 2: 0.3, 3: 0.1}
pity: {1: 0, 2: 3, 3: 10}
recovery:
  rate: 0.4
  scrolls_per_attempt: 200
valks:
  small: 1.1
  large: 1.5
  huge: 2.0
paths:
  - entry_tier: 2
    length: 5
    rate: 0.1
    pity: 17
    crystals_per_attempt: 15
market:
  prices:
    pristine_black_crystal: 34650000
  scroll_bundle:
    size: 200000
    price: 1000000000000
`

const profileYAML = `version: "2026.2"
rates: {3: 0.2}
recovery:
  rate: 0.5
`

func writeConfigs(t *testing.T, files map[string]string) string {
	t.Helper()
	base := t.TempDir()
	dir := filepath.Join(base, "profiles")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return base
}

func TestLoadMergedDefaultOnly(t *testing.T) {
	base := writeConfigs(t, map[string]string{"default.yaml": defaultYAML})
	l := NewLoader(base)

	raw, err := l.LoadMerged("")
	if err != nil {
		t.Fatal(err)
	}
	if raw.Version != "2026.1" || *raw.MaxTier != 3 {
		t.Fatalf("unexpected default config: %+v", raw)
	}
	if raw.Rates[2] != 0.3 || raw.Pity[3] != 10 {
		t.Fatalf("table entries off: %+v", raw)
	}
}

func TestLoadMergedProfileOverlay(t *testing.T) {
	base := writeConfigs(t, map[string]string{
		"default.yaml": defaultYAML,
		"season2.yaml": profileYAML,
	})
	l := NewLoader(base)

	raw, err := l.LoadMerged("season2")
	if err != nil {
		t.Fatal(err)
	}
	if raw.Version != "2026.2" {
		t.Fatalf("profile version must win; got %q", raw.Version)
	}
	if raw.Rates[3] != 0.2 {
		t.Fatalf("profile rate must override; got %v", raw.Rates[3])
	}
	if raw.Rates[1] != 0.5 || raw.Pity[2] != 3 {
		t.Fatalf("untouched entries must survive the merge; got %+v", raw)
	}
	if *raw.Recovery.Rate != 0.5 || *raw.Recovery.Scrolls != 200 {
		t.Fatalf("recovery merge off: rate=%v scrolls=%v", *raw.Recovery.Rate, *raw.Recovery.Scrolls)
	}
}

func TestLoadMergedMissingDefault(t *testing.T) {
	l := NewLoader(t.TempDir())
	if _, err := l.LoadMerged(""); err == nil {
		t.Fatal("missing default table must be an error")
	}
}

func TestLoaderCacheAndInvalidate(t *testing.T) {
	base := writeConfigs(t, map[string]string{"default.yaml": defaultYAML})
	l := NewLoader(base)

	if _, err := l.LoadMerged(""); err != nil {
		t.Fatal(err)
	}
	// rewrite the file; cached copy should still be served
	if err := os.WriteFile(l.Paths().DefaultPath(), []byte(strings.Replace(defaultYAML, "0.5", "0.9", 1)), 0o644); err != nil {
		t.Fatal(err)
	}
	raw, err := l.LoadMerged("")
	if err != nil {
		t.Fatal(err)
	}
	if raw.Rates[1] != 0.5 {
		t.Fatalf("expected cached rate 0.5; got %v", raw.Rates[1])
	}

	l.Invalidate()
	raw, err = l.LoadMerged("")
	if err != nil {
		t.Fatal(err)
	}
	if raw.Rates[1] != 0.9 {
		t.Fatalf("expected reloaded rate 0.9; got %v", raw.Rates[1])
	}
}

func TestEngineConfigConversion(t *testing.T) {
	base := writeConfigs(t, map[string]string{"default.yaml": defaultYAML})
	raw, err := NewLoader(base).LoadMerged("")
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := raw.EngineConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxTier != 3 || cfg.Rates[1] != 0.5 || cfg.Pity[3] != 10 {
		t.Fatalf("engine config off: %+v", cfg)
	}
	if cfg.Valks100Ratio != 2.0 || cfg.Recovery.Scrolls != 200 {
		t.Fatalf("engine config off: %+v", cfg)
	}
	if p := cfg.PathAt(2); p == nil || p.Length != 5 {
		t.Fatalf("path not converted: %+v", cfg.Paths)
	}
}

func TestEngineConfigMissingTierFailsFast(t *testing.T) {
	body := strings.Replace(defaultYAML, "rates: {1: 0.5, 2: 0.3, 3: 0.1}", "rates: {1: 0.5, 3: 0.1}", 1)
	base := writeConfigs(t, map[string]string{"default.yaml": body})
	raw, err := NewLoader(base).LoadMerged("")
	if err != nil {
		t.Fatal(err)
	}

	_, err = raw.EngineConfig()
	if !errors.Is(err, enhance.ErrInvalidConfig) {
		t.Fatalf("missing tier must be ErrInvalidConfig; got %v", err)
	}
	if !strings.Contains(err.Error(), "tier 2 is missing") {
		t.Fatalf("error should name the gap; got %q", err)
	}
}

func TestPriceTableConversion(t *testing.T) {
	base := writeConfigs(t, map[string]string{"default.yaml": defaultYAML})
	raw, err := NewLoader(base).LoadMerged("")
	if err != nil {
		t.Fatal(err)
	}

	tab := raw.PriceTable()
	if tab.Prices[enhance.ResourceCrystal] != 34_650_000 {
		t.Fatalf("crystal price off: %+v", tab.Prices)
	}
	if tab.ScrollBundle.Size != 200_000 {
		t.Fatalf("bundle off: %+v", tab.ScrollBundle)
	}
	if tab.UnitPrice(enhance.ResourceScroll) != 5_000_000 {
		t.Fatalf("scroll unit price = %d", tab.UnitPrice(enhance.ResourceScroll))
	}
}
