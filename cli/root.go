// Package cli wires the wrfconf command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/compozy/wrfconf/cli/cmd/config"
	"github.com/compozy/wrfconf/cli/cmd/document"
	"github.com/compozy/wrfconf/cli/cmd/generate"
	"github.com/compozy/wrfconf/cli/cmd/options"
	"github.com/compozy/wrfconf/cli/cmd/serve"
	"github.com/compozy/wrfconf/cli/cmd/wizard"
	pkgconfig "github.com/compozy/wrfconf/pkg/config"
	"github.com/compozy/wrfconf/pkg/logger"
	"github.com/compozy/wrfconf/pkg/version"
)

// RootCmd builds the wrfconf command tree.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "wrfconf",
		Short: "Configure WRF and WPS namelists",
		Long: `wrfconf edits a WRF model configuration section by section, validates it,
and renders namelist.input and namelist.wps once it is complete.`,
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return SetupGlobalConfig(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Path to a YAML configuration file")
	flags.String("env-file", ".env", "File of WRFCONF_ variables to export before loading the configuration")
	flags.String("log-level", "info", "Log level (debug, info, warn, error, disabled)")
	flags.Bool("log-json", false, "Emit logs as JSON")
	flags.Bool("log-source", false, "Include source locations in logs")
	flags.String("format", "auto", "Output format (auto, json, yaml, table, tui)")
	flags.Bool("no-color", false, "Disable colored output")
	flags.Bool("no-interactive", false, "Never start interactive prompts")
	flags.String("store-driver", "file", "Document store (file, sqlite, redis)")
	flags.String("store-path", "", "Directory or database file of the store")
	flags.String("store-key", "global_wrf_config", "Key the document is stored under")
	flags.String("redis-url", "", "Redis URL for the redis store")
	flags.String("generator", "local", "Namelist generator (local, remote)")
	flags.String("generator-url", "", "Base URL of the remote generation service")
	flags.String("output-dir", "", "Directory generated namelists are written to")
	flags.String("template-dir", "", "Directory with namelist template overrides")
	flags.Bool("single-domain", false, "Restrict the domain section to one grid")

	serveCmd := serve.NewServeCommand()
	serveCmd.Flags().String("host", "127.0.0.1", "Host to bind")
	serveCmd.Flags().Int("port", 5001, "Port to listen on")

	root.AddCommand(
		wizard.NewWizardCommand(),
		document.NewShowCommand(),
		document.NewSetCommand(),
		document.NewValidateCommand(),
		document.NewResetCommand(),
		document.NewImportCommand(),
		generate.NewGenerateCommand(),
		options.NewOptionsCommand(),
		config.NewConfigCommand(),
		serveCmd,
	)
	return root
}

// SetupGlobalConfig loads the configuration for cmd and attaches it, together
// with a configured logger, to the command context.
func SetupGlobalConfig(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := loadEnvFile(cmd); err != nil {
		return err
	}
	var sources []pkgconfig.Source
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	if configFile != "" {
		sources = append(sources, pkgconfig.NewYAMLProvider(configFile))
	}
	flags, err := changedFlags(cmd)
	if err != nil {
		return err
	}
	if len(flags) > 0 {
		sources = append(sources, pkgconfig.NewCLIProvider(flags))
	}
	service := pkgconfig.NewService()
	cfg, err := service.Load(ctx, sources...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log := logger.SetupLogger(cfg.Runtime.LogLevel, cfg.Runtime.LogJSON, cfg.Runtime.LogSource)
	ctx = pkgconfig.ContextWithConfig(ctx, cfg)
	ctx = pkgconfig.ContextWithService(ctx, service)
	ctx = logger.ContextWithLogger(ctx, log)
	cmd.SetContext(ctx)
	return nil
}

// loadEnvFile exports the variables of --env-file without overriding ones that
// are already set. A missing file is ignored.
func loadEnvFile(cmd *cobra.Command) error {
	path, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return fmt.Errorf("failed to get env-file flag: %w", err)
	}
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// changedFlags collects the configuration flags the user set explicitly.
func changedFlags(cmd *cobra.Command) (map[string]any, error) {
	flags := make(map[string]any)
	for name := range pkgconfig.FlagPaths {
		if !cmd.Flags().Changed(name) {
			continue
		}
		var (
			value any
			err   error
		)
		switch cmd.Flags().Lookup(name).Value.Type() {
		case "bool":
			value, err = cmd.Flags().GetBool(name)
		case "int":
			value, err = cmd.Flags().GetInt(name)
		default:
			value, err = cmd.Flags().GetString(name)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get %s flag: %w", name, err)
		}
		flags[name] = value
	}
	return flags, nil
}
