// Package options lists the sections, fields and enumerations the
// configuration accepts.
package options

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/compozy/wrfconf/cli/cmd"
	"github.com/compozy/wrfconf/cli/helpers"
	"github.com/compozy/wrfconf/engine/schema"
)

// NewOptionsCommand creates the options command
func NewOptionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "options [enumeration]",
		Short: "List enumerations and section fields",
		Long: `Without arguments, list every enumeration with its codes and labels.
With a name, list only that enumeration. Use --format json for the full schema.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
				JSON: handleOptions,
			}, args)
		},
	}
}

type enumTable []*schema.Enum

func (t enumTable) Header() []string {
	return []string{"ENUMERATION", "CODE", "LABEL"}
}

func (t enumTable) Rows() [][]string {
	var rows [][]string
	for _, e := range t {
		for _, c := range e.Choices {
			rows = append(rows, []string{e.Name, c.Code, c.Label})
		}
	}
	return rows
}

func handleOptions(_ context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	all := schema.Enumerations()
	var enums enumTable
	if len(args) == 1 {
		e, ok := all[args[0]]
		if !ok {
			return helpers.NewCliError("UNKNOWN_ENUMERATION", fmt.Sprintf("no enumeration named %q", args[0])).
				WithContext("available", schema.EnumerationNames())
		}
		enums = enumTable{e}
	} else {
		for _, name := range schema.EnumerationNames() {
			enums = append(enums, all[name])
		}
	}
	format := helpers.ResolveFormat(cobraCmd)
	w := helpers.NewOutputWriter(cobraCmd.OutOrStdout(), format)
	if format == helpers.OutputFormatTable {
		return w.WriteData(enums)
	}
	if len(args) == 1 {
		return w.WriteData(enums[0])
	}
	return w.WriteData(map[string]any{
		"enumerations": []*schema.Enum(enums),
		"sections":     executor.Registry().Describe(),
	})
}
