package application

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/khanhnv2901/assetwatch/internal/config"
)

func loadConfig(t *testing.T, overrides map[string]any) config.Config {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	cfg, err := config.Load(v)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func TestNewContainer(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		file   string
	}{
		{"sqlite", config.StoreDriverSQLite, DefaultSQLiteFile},
		{"json", config.StoreDriverJSON, DefaultJSONFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dataDir := t.TempDir()
			cfg := loadConfig(t, map[string]any{
				"store.driver":    tt.driver,
				"pages.inventory": "assets",
				"pages.result":    "detect",
				"fields.ip":       "IP",
			})

			c, err := NewContainer(context.Background(), cfg, dataDir, nil, nil)
			if err != nil {
				t.Fatalf("NewContainer: %v", err)
			}
			defer c.Close()

			if c.CheckOrchestrator == nil || c.Workbook == nil || c.RunRepo == nil {
				t.Fatal("container is missing services")
			}
			if err := c.Workbook.CreatePage(context.Background(), "assets"); err != nil {
				t.Fatalf("CreatePage: %v", err)
			}
			if _, err := os.Stat(filepath.Join(dataDir, tt.file)); err != nil {
				t.Fatalf("workbook file not created: %v", err)
			}
		})
	}
}

func TestNewContainerWithKafkaMirror(t *testing.T) {
	cfg := loadConfig(t, map[string]any{
		"store.driver":    config.StoreDriverJSON,
		"pages.inventory": "assets",
		"pages.result":    "detect",
		"kafka.enabled":   true,
		"kafka.brokers":   []string{"localhost:9092"},
	})

	c, err := NewContainer(context.Background(), cfg, t.TempDir(), nil, nil)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if c.producer == nil {
		t.Fatal("expected kafka producer to be wired")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestOpenWorkbookUnknownDriver(t *testing.T) {
	if _, err := OpenWorkbook(context.Background(), config.StoreConfig{Driver: "xlsx"}, t.TempDir()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
