package cmd

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestStoreAndGetAppContext(t *testing.T) {
	original := globalAppContext
	defer func() {
		globalAppContext = original
	}()

	cmd := &cobra.Command{Use: "root"}
	appCtx := &AppContext{DataDir: "/tmp/assetwatch"}

	storeAppContext(cmd, appCtx)

	got := getAppContext(cmd)
	if got != appCtx {
		t.Fatalf("expected stored app context to be returned")
	}

	other := &cobra.Command{Use: "other"}
	if getAppContext(other) != appCtx {
		t.Fatalf("expected global app context as fallback")
	}
}
