// Package config holds the commands that inspect the effective wrfconf configuration.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/compozy/wrfconf/cli/cmd"
	"github.com/compozy/wrfconf/cli/helpers"
	"github.com/compozy/wrfconf/cli/tui/styles"
	"github.com/compozy/wrfconf/pkg/config"
	"github.com/compozy/wrfconf/pkg/logger"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}
	c.AddCommand(
		NewConfigShowCommand(),
		NewConfigValidateCommand(),
	)
	return c
}

// NewConfigShowCommand creates the config show subcommand
func NewConfigShowCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration values",
		Long: `Display the configuration after defaults, the config file, environment
variables and flags were merged. Use --sources to see where each value came from.`,
		Args: cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
				JSON: handleShow,
			}, args)
		},
	}
	c.Flags().Bool("sources", false, "Show the source of each value")
	return c
}

// configTable renders flattened configuration keys.
type configTable struct {
	values  map[string]any
	sources map[string]config.SourceType
}

func (t configTable) keys() []string {
	return slices.Sorted(maps.Keys(t.values))
}

func (t configTable) Header() []string {
	if t.sources != nil {
		return []string{"KEY", "VALUE", "SOURCE"}
	}
	return []string{"KEY", "VALUE"}
}

func (t configTable) Rows() [][]string {
	rows := make([][]string, 0, len(t.values))
	for _, key := range t.keys() {
		row := []string{key, fmt.Sprint(t.values[key])}
		if t.sources != nil {
			row = append(row, string(t.sources[key]))
		}
		rows = append(rows, row)
	}
	return rows
}

func (t configTable) MarshalJSON() ([]byte, error) {
	if t.sources == nil {
		return json.Marshal(t.values)
	}
	type entry struct {
		Value  any               `json:"value"`
		Source config.SourceType `json:"source"`
	}
	out := make(map[string]entry, len(t.values))
	for key, value := range t.values {
		out[key] = entry{Value: value, Source: t.sources[key]}
	}
	return json.Marshal(out)
}

func handleShow(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	log := logger.FromContext(ctx)
	log.Debug("executing config show command")
	withSources, err := cobraCmd.Flags().GetBool("sources")
	if err != nil {
		return fmt.Errorf("failed to get sources flag: %w", err)
	}
	values, err := config.Flatten(executor.Config())
	if err != nil {
		return err
	}
	table := configTable{values: values}
	if withSources {
		service := config.ServiceFromContext(ctx)
		table.sources = make(map[string]config.SourceType, len(values))
		for key := range values {
			table.sources[key] = config.SourceDefault
			if service != nil {
				table.sources[key] = service.GetSource(key)
			}
		}
	}
	return helpers.NewOutputWriter(cobraCmd.OutOrStdout(), helpers.ResolveFormat(cobraCmd)).WriteData(table)
}

// NewConfigValidateCommand creates the config validate subcommand
func NewConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
				JSON: handleValidateJSON,
				TUI:  handleValidateTUI,
			}, args)
		},
	}
}

func validateConfig(ctx context.Context, cfg *config.Config) error {
	service := config.ServiceFromContext(ctx)
	if service == nil {
		service = config.NewService()
	}
	return service.Validate(cfg)
}

func handleValidateJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	result := map[string]any{"valid": true, "message": "Configuration is valid"}
	if err := validateConfig(ctx, executor.Config()); err != nil {
		result = map[string]any{"valid": false, "message": err.Error()}
	}
	return helpers.NewOutputWriter(cobraCmd.OutOrStdout(), helpers.OutputFormatJSON).WriteData(result)
}

func handleValidateTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	if err := validateConfig(ctx, executor.Config()); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	fmt.Fprintln(cobraCmd.OutOrStdout(), styles.SuccessStyle.Render("✓ Configuration is valid"))
	return nil
}
