// Package serve runs the generation HTTP service.
package serve

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/compozy/wrfconf/cli/cmd"
	"github.com/compozy/wrfconf/cli/helpers"
	"github.com/compozy/wrfconf/pkg/logger"
	"github.com/compozy/wrfconf/pkg/version"
	"github.com/compozy/wrfconf/server"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		Short:   "Serve the validation and generation API",
		Long: `Start an HTTP server exposing /api/validate, /api/generate, /api/options and
/api/download. Generation uses the configured generator.`,
		Args: cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
				JSON: handleServe,
			}, args)
		},
	}
}

func handleServe(ctx context.Context, _ *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	cfg := executor.Config()
	if cfg.Generator.Mode == "remote" {
		logger.FromContext(ctx).Warn("Serving with a remote generator forwards every request", "url", cfg.Generator.URL)
	}
	if err := helpers.EnsurePortAvailable(ctx, cfg.Server.Host, cfg.Server.Port); err != nil {
		return err
	}
	generator, err := cmd.NewGenerator(cfg)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}
	gin.SetMode(gin.ReleaseMode)
	srv := server.NewServer(&server.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		CORSEnabled: cfg.Server.CORSEnabled,
		OutputRoot:  cfg.Generator.OutputDir,
	}, executor.Registry(), generator, version.GetVersion())
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}
