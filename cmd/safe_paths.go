package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/khanhnv2901/assetwatch/internal/shared/security"
)

// validatePageTitle rejects titles that cannot be shown or typed back.
func validatePageTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return errors.New("page title is required")
	}
	if strings.IndexFunc(title, unicode.IsControl) >= 0 {
		return fmt.Errorf("page title %q contains control characters", title)
	}
	return nil
}

// resolveCSVPath cleans a user supplied CSV path and rejects traversal.
func resolveCSVPath(path string) (string, error) {
	if !security.IsValidPath(path) {
		return "", fmt.Errorf("invalid csv path %q", path)
	}
	return filepath.Clean(path), nil
}
