package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/compozy/wrfconf/cli/helpers"
	"github.com/compozy/wrfconf/cli/tui/models"
	"github.com/compozy/wrfconf/engine/generate"
	"github.com/compozy/wrfconf/engine/persist"
	"github.com/compozy/wrfconf/engine/schema"
	"github.com/compozy/wrfconf/engine/session"
	"github.com/compozy/wrfconf/pkg/config"
	"github.com/compozy/wrfconf/pkg/logger"
)

// CommandExecutor handles common setup and execution patterns for CLI commands:
// mode detection, opening the store and session, and error reporting.
type CommandExecutor struct {
	mode     models.Mode
	cfg      *config.Config
	registry *schema.Registry
	bridge   *persist.Bridge
	session  *session.Session
}

// HandlerFunc defines the signature for command handlers.
type HandlerFunc func(ctx context.Context, cmd *cobra.Command, executor *CommandExecutor, args []string) error

// ModeHandlers contains handlers for different execution modes.
type ModeHandlers struct {
	JSON HandlerFunc
	TUI  HandlerFunc
}

// ExecutorOptions allows customization of the command executor
type ExecutorOptions struct {
	// RequireSession opens the configured store and restores the document.
	RequireSession bool
}

// NewCommandExecutor creates a new command executor with all necessary setup.
func NewCommandExecutor(cmd *cobra.Command, opts ExecutorOptions) (*CommandExecutor, error) {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)
	cfg := config.FromContext(ctx)
	mode := helpers.DetectMode(cmd)
	log.Debug("detected execution mode", "mode", mode)
	executor := &CommandExecutor{
		mode:     mode,
		cfg:      cfg,
		registry: NewRegistry(cfg),
	}
	if !opts.RequireSession {
		return executor, nil
	}
	slot, err := persist.Open(ctx, StoreOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}
	executor.bridge = persist.NewBridge(slot, cfg.Store.Key, executor.registry)
	executor.session = session.Open(ctx, session.Deps{
		Registry: executor.registry,
		Store:    executor.bridge,
	})
	return executor, nil
}

// NewRegistry builds the section registry the configuration asks for.
func NewRegistry(cfg *config.Config) *schema.Registry {
	if cfg.Wizard.SingleDomain {
		return schema.New(schema.WithSingleDomain())
	}
	return schema.Default()
}

// StoreOptions resolves the persistence settings, filling the default location.
func StoreOptions(cfg *config.Config) persist.Options {
	opts := persist.Options{
		Driver:   persist.Driver(cfg.Store.Driver),
		Path:     cfg.Store.Path,
		RedisURL: cfg.Store.RedisURL.Value(),
	}
	if opts.Path != "" {
		return opts
	}
	switch opts.Driver {
	case persist.DriverSQLite:
		opts.Path = filepath.Join(persist.DefaultDir(), "wrfconf.db")
	case persist.DriverFile, "":
		opts.Path = persist.DefaultDir()
	}
	return opts
}

// NewGenerator builds the generator selected by the configuration.
func NewGenerator(cfg *config.Config) (generate.Generator, error) {
	if cfg.Generator.Mode == "remote" {
		return generate.NewRemoteGenerator(generate.RemoteOptions{
			BaseURL:    cfg.Generator.URL,
			Timeout:    cfg.Generator.Timeout,
			RetryCount: cfg.Generator.RetryCount,
			Debug:      cfg.Runtime.LogLevel == "debug",
		})
	}
	var opts []generate.LocalOption
	if cfg.Generator.TemplateDir != "" {
		opts = append(opts, generate.WithTemplateDir(cfg.Generator.TemplateDir))
	}
	return generate.NewLocalGenerator(opts...)
}

// Execute runs the appropriate handler based on the detected mode.
func (e *CommandExecutor) Execute(ctx context.Context, cmd *cobra.Command, handlers ModeHandlers, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	switch e.mode {
	case models.ModeJSON:
		if handlers.JSON == nil {
			return fmt.Errorf("JSON mode handler not implemented")
		}
		return handlers.JSON(ctx, cmd, e, args)
	case models.ModeTUI:
		if handlers.TUI != nil {
			return handlers.TUI(ctx, cmd, e, args)
		}
		if handlers.JSON == nil {
			return fmt.Errorf("TUI mode handler not implemented")
		}
		return handlers.JSON(ctx, cmd, e, args)
	default:
		return fmt.Errorf("unsupported mode: %s", e.mode)
	}
}

// Close releases the store.
func (e *CommandExecutor) Close() error {
	if e.bridge == nil {
		return nil
	}
	return e.bridge.Close()
}

// GetMode returns the detected execution mode.
func (e *CommandExecutor) GetMode() models.Mode {
	return e.mode
}

// Config returns the active configuration.
func (e *CommandExecutor) Config() *config.Config {
	return e.cfg
}

// Registry returns the section registry.
func (e *CommandExecutor) Registry() *schema.Registry {
	return e.registry
}

// Session returns the session, nil unless RequireSession was set.
func (e *CommandExecutor) Session() *session.Session {
	return e.session
}

// ExecuteCommand is a convenience function that combines executor creation and execution.
func ExecuteCommand(cmd *cobra.Command, opts ExecutorOptions, handlers ModeHandlers, args []string) error {
	executor, err := NewCommandExecutor(cmd, opts)
	if err != nil {
		return HandleCommonErrors(cmd, err, helpers.DetectMode(cmd))
	}
	defer executor.Close()
	err = executor.Execute(cmd.Context(), cmd, handlers, args)
	if executor.session != nil {
		log := logger.FromContext(cmd.Context())
		for _, w := range executor.session.Warnings() {
			log.Warn(w)
		}
	}
	return HandleCommonErrors(cmd, err, executor.GetMode())
}

// HandleCommonErrors reports err on the command's error stream and returns
// it in structured form when it is recognized.
func HandleCommonErrors(cmd *cobra.Command, err error, mode models.Mode) error {
	if err == nil {
		return nil
	}
	if cliErr := helpers.Categorize(err); cliErr != nil {
		err = cliErr
	}
	helpers.OutputError(cmd.ErrOrStderr(), err, mode)
	return err
}
