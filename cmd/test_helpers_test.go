package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/khanhnv2901/assetwatch/internal/config"
)

// setupTestAppContext installs an AppContext backed by a temporary data
// directory and a JSON workbook. overrides are applied on top of the defaults.
func setupTestAppContext(t *testing.T, overrides map[string]any) *AppContext {
	t.Helper()

	original := globalAppContext
	originalNoColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		globalAppContext = original
		color.NoColor = originalNoColor
	})

	dataDir := t.TempDir()
	t.Setenv(dataDirEnvVar, dataDir)

	v := viper.New()
	config.SetDefaults(v)
	v.Set("store.driver", config.StoreDriverJSON)
	for k, val := range overrides {
		v.Set(k, val)
	}

	appCtx := &AppContext{
		Logger:  zap.NewNop(),
		Viper:   v,
		DataDir: dataDir,
	}
	globalAppContext = appCtx
	return appCtx
}

// setFlag sets a command flag for the duration of the test.
func setFlag(t *testing.T, cmd *cobra.Command, name, value string) {
	t.Helper()
	flag := cmd.Flags().Lookup(name)
	if flag == nil {
		t.Fatalf("unknown flag %s", name)
	}
	original := flag.Value.String()
	if err := flag.Value.Set(value); err != nil {
		t.Fatalf("set flag %s: %v", name, err)
	}
	t.Cleanup(func() {
		_ = flag.Value.Set(original)
	})
}

// runCommand executes cmd's RunE directly with captured output.
func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetContext(context.Background())
	t.Cleanup(func() {
		cmd.SetOut(nil)
		cmd.SetErr(nil)
	})

	err := cmd.RunE(cmd, args)
	return buf.String(), err
}
