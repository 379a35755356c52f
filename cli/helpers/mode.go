package helpers

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/compozy/wrfconf/cli/tui/models"
	"github.com/compozy/wrfconf/pkg/config"
)

var ciVars = []string{
	"CI",
	"JENKINS_HOME",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"CIRCLECI",
	"TRAVIS",
	"BUILDKITE",
	"DRONE",
	"TF_BUILD",
	"TEAMCITY_VERSION",
	"CONTINUOUS_INTEGRATION",
}

// isRunningInCI checks if we're running in a CI/CD environment
func isRunningInCI() bool {
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// checkExplicitFormat maps the configured format onto a mode. The second
// result is false when the format asks for auto-detection.
func checkExplicitFormat(cfg *config.Config) (models.Mode, bool) {
	switch OutputFormat(cfg.CLI.Format) {
	case OutputFormatJSON, OutputFormatYAML, OutputFormatTable:
		return models.ModeJSON, true
	case OutputFormatTUI:
		return models.ModeTUI, true
	default:
		return models.ModeJSON, false
	}
}

// isInteractiveEnvironment checks if we're in an interactive environment
func isInteractiveEnvironment(cfg *config.Config) bool {
	if !cfg.CLI.Interactive || isRunningInCI() {
		return false
	}
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return false
	}
	term := os.Getenv("TERM")
	return term != "dumb" && term != ""
}

// DetectMode picks TUI or JSON output from configuration and the terminal
func DetectMode(cmd *cobra.Command) models.Mode {
	cfg := config.FromContext(cmd.Context())
	if mode, found := checkExplicitFormat(cfg); found {
		return mode
	}
	if isInteractiveEnvironment(cfg) {
		return models.ModeTUI
	}
	return models.ModeJSON
}

// ShouldUseColor determines if colored output should be used
func ShouldUseColor(cmd *cobra.Command) bool {
	cfg := config.FromContext(cmd.Context())
	if cfg.CLI.NoColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	if !isTerminal(os.Stdout) || isRunningInCI() {
		return false
	}
	term := os.Getenv("TERM")
	return term != "dumb" && term != ""
}

// ResolveFormat returns the data format for non-interactive output. Auto and
// tui resolve to table on a terminal and to json otherwise.
func ResolveFormat(cmd *cobra.Command) OutputFormat {
	switch f := OutputFormat(config.FromContext(cmd.Context()).CLI.Format); f {
	case OutputFormatJSON, OutputFormatYAML, OutputFormatTable:
		return f
	}
	if DetectMode(cmd) == models.ModeTUI {
		return OutputFormatTable
	}
	return OutputFormatJSON
}
