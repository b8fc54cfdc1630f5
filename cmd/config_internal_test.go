package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/khanhnv2901/assetwatch/internal/config"
)

func TestApplyStringOverride(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("result", "", "")

	applied := ""
	applyStringOverride(flags, "result", func(v string) {
		applied = v
	})
	if applied != "" {
		t.Fatalf("setter should not run for an unset flag, got %q", applied)
	}

	if err := flags.Set("result", "detect"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	applyStringOverride(flags, "result", func(v string) {
		applied = v
	})
	if applied != "detect" {
		t.Fatalf("expected setter to receive detect, got %q", applied)
	}
}

func TestNewViperReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "assetwatch.yaml")
	yaml := "pages:\n  inventory: assets\n  result: detect\nfields:\n  ip: IP\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	v, used, err := newViper(path)
	if err != nil {
		t.Fatalf("newViper: %v", err)
	}
	if used != path {
		t.Fatalf("expected config file %s, got %s", path, used)
	}

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("result", "", "")
	flags.Duration("target-interval", 0, "")
	flags.Bool("no-backup", false, "")
	if err := flags.Parse([]string{"--result", "today", "--target-interval", "3s", "--no-backup"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	applyFlagOverrides(flags, v)

	cfg, err := config.Load(v)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if cfg.Pages.Result != "today" || cfg.Pages.Inventory != "assets" {
		t.Fatalf("unexpected pages %+v", cfg.Pages)
	}
	if cfg.Fields.IP != "IP" {
		t.Fatalf("expected IP field from file, got %q", cfg.Fields.IP)
	}
	if cfg.Pacing.TargetInterval != 3*time.Second {
		t.Fatalf("expected flag interval, got %s", cfg.Pacing.TargetInterval)
	}
	if cfg.Backup.Enabled {
		t.Fatal("expected --no-backup to disable backups")
	}
}

func TestNewViperMissingExplicitFile(t *testing.T) {
	if _, _, err := newViper(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for a missing explicit config file")
	}
}
