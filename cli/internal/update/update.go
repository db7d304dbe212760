package update

import (
	"fmt"
	"runtime"

	"github.com/hashicorp/go-version"

	"github.com/migforge/migforge/cli/internal/ui"
)

// CheckForUpdates checks if a newer version is available
func CheckForUpdates(currentVersion string) error {
	// This is a placeholder for update checking
	// In a real implementation, you would:
	// 1. Fetch the latest version from GitHub releases or your API
	// 2. Compare versions using go-version
	// 3. Notify the user if an update is available

	current, err := version.NewVersion(currentVersion)
	if err != nil {
		return fmt.Errorf("invalid version format: %w", err)
	}

	// Example: Check against a known latest version
	// In production, fetch this from an API
	latestVersionStr := "0.1.0" // This would come from an API call
	latest, err := version.NewVersion(latestVersionStr)
	if err != nil {
		return fmt.Errorf("invalid latest version format: %w", err)
	}

	if current.LessThan(latest) {
		ui.PrintWarning("A new version is available!")
		fmt.Printf("Current version: %s\n", currentVersion)
		fmt.Printf("Latest version:  %s\n", latestVersionStr)
		fmt.Printf("Download:        %s\n", GetDownloadURL(latestVersionStr))
		fmt.Printf("\nUpdate with: go install github.com/migforge/migforge/cli@latest\n")
		return nil
	}

	ui.PrintSuccess("You are on the latest version (%s)", currentVersion)
	return nil
}

// GetDownloadURL returns the download URL for the current platform
func GetDownloadURL(version string) string {
	os := runtime.GOOS
	arch := runtime.GOARCH

	return fmt.Sprintf("https://github.com/migforge/migforge/releases/download/v%s/migforge-%s-%s", version, os, arch)
}
