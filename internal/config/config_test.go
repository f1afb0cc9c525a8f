package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WHOPTRADER_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Account.Paper {
		t.Error("account.paper should default to true")
	}
	if cfg.Account.DryRun {
		t.Error("account.dry_run should default to false")
	}
	if cfg.Account.MaxOrderValue != 500.0 {
		t.Errorf("max_order_value = %v, want 500", cfg.Account.MaxOrderValue)
	}
	if cfg.UI.RefreshFPS != 10 {
		t.Errorf("refresh_fps = %d, want 10", cfg.UI.RefreshFPS)
	}
	if cfg.TagPolicyName() != "replace" {
		t.Errorf("tag policy = %q, want replace", cfg.TagPolicyName())
	}
	if !strings.HasSuffix(cfg.Records.Path, filepath.Join("whoptrader", "trades.db")) {
		t.Errorf("records.path = %q", cfg.Records.Path)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := []byte(`
[account]
paper = false
dry_run = true
max_order_value = 1200.5

[records]
path = "/tmp/trades.db"

[ui]
refresh_fps = 4
tag_policy = "reject"
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WHOPTRADER_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Account.Paper {
		t.Error("account.paper should be false")
	}
	if !cfg.Account.DryRun {
		t.Error("account.dry_run should be true")
	}
	if cfg.Account.MaxOrderValue != 1200.5 {
		t.Errorf("max_order_value = %v, want 1200.5", cfg.Account.MaxOrderValue)
	}
	if cfg.Records.Path != "/tmp/trades.db" {
		t.Errorf("records.path = %q", cfg.Records.Path)
	}
	if cfg.UI.RefreshFPS != 4 {
		t.Errorf("refresh_fps = %d, want 4", cfg.UI.RefreshFPS)
	}
	if cfg.TagPolicyName() != "reject" {
		t.Errorf("tag policy = %q, want reject", cfg.TagPolicyName())
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("WHOPTRADER_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("WHOPTRADER_ACCOUNT_MAX_ORDER_VALUE", "250")
	t.Setenv("WHOPTRADER_UI_TAG_POLICY", "reject")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Account.MaxOrderValue != 250 {
		t.Errorf("max_order_value = %v, want 250", cfg.Account.MaxOrderValue)
	}
	if cfg.TagPolicyName() != "reject" {
		t.Errorf("tag policy = %q, want reject", cfg.TagPolicyName())
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whoptrader", "config.toml")
	t.Setenv("WHOPTRADER_CONFIG", path)

	want := Config{
		Account: AccountConfig{Paper: true, DryRun: true, MaxOrderValue: 750},
		Records: RecordsConfig{Path: "/tmp/rt.db"},
		UI:      UIConfig{RefreshFPS: 8, TagPolicy: "replace"},
	}
	if err := Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestLinesIncludesDryRunWarning(t *testing.T) {
	cfg := Config{
		Account: AccountConfig{Paper: true, DryRun: true, MaxOrderValue: 500},
		Records: RecordsConfig{Path: "/tmp/trades.db"},
		UI:      UIConfig{RefreshFPS: 10, TagPolicy: "replace"},
	}
	lines := cfg.Lines()
	joined := strings.Join(lines, "\n")
	for _, want := range []string{
		"account: paper",
		"max order value: $500.00",
		"records: /tmp/trades.db",
		"refresh fps: 10",
		"tag policy: replace",
		"! dry run",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing %q in %q", want, joined)
		}
	}

	cfg.Account.DryRun = false
	cfg.Account.Paper = false
	joined = strings.Join(cfg.Lines(), "\n")
	if strings.Contains(joined, "dry run") {
		t.Error("dry run warning should be absent")
	}
	if !strings.Contains(joined, "account: live") {
		t.Error("live mode should be reported")
	}
}
