// Package generate holds the command that produces namelist files.
package generate

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/compozy/wrfconf/cli/cmd"
	"github.com/compozy/wrfconf/cli/helpers"
	"github.com/compozy/wrfconf/cli/tui/styles"
	"github.com/compozy/wrfconf/engine/generate"
)

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "generate",
		Short: "Generate namelist.wps and namelist.input",
		Long: `Generate the namelist files from the stored configuration. Generation is
refused while any section fails validation; the configuration is never modified,
so a failed run can simply be retried.`,
		Args: cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{RequireSession: true}, cmd.ModeHandlers{
				JSON: handleGenerateJSON,
				TUI:  handleGenerateTUI,
			}, args)
		},
	}
	c.Flags().Bool("print", false, "Print the generated files instead of only listing them")
	c.Flags().String("copy", "", "Copy one generated file (namelist.wps or namelist.input) to the clipboard")
	return c
}

// copyFile puts the named generated file on the system clipboard.
func copyFile(cobraCmd *cobra.Command, resp *generate.Response) (string, error) {
	name, err := cobraCmd.Flags().GetString("copy")
	if err != nil {
		return "", fmt.Errorf("failed to get copy flag: %w", err)
	}
	if name == "" {
		return "", nil
	}
	text, ok := resp.FileContents[name]
	if !ok {
		return "", helpers.NewCliError("INVALID_ARGUMENT", fmt.Sprintf("no generated file named %q", name),
			"expected one of "+strings.Join(slices.Sorted(maps.Keys(resp.FileContents)), ", "))
	}
	if err := clipboard.WriteAll(text); err != nil {
		return "", fmt.Errorf("failed to copy %s to the clipboard: %w", name, err)
	}
	return name, nil
}

func run(ctx context.Context, executor *cmd.CommandExecutor) (*generate.Response, error) {
	cfg := executor.Config()
	generator, err := cmd.NewGenerator(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}
	s := executor.Session()
	svc := generate.NewService(s.Gate(), generator)
	return svc.Run(ctx, s.Document(), cfg.Generator.OutputDir)
}

func handleGenerateJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	resp, err := run(ctx, executor)
	if err != nil {
		return err
	}
	if _, err := copyFile(cobraCmd, resp); err != nil {
		return err
	}
	printFiles, err := cobraCmd.Flags().GetBool("print")
	if err != nil {
		return fmt.Errorf("failed to get print flag: %w", err)
	}
	if !printFiles && resp.OutputDir != "" {
		resp.FileContents = nil
	}
	return helpers.NewOutputWriter(cobraCmd.OutOrStdout(), helpers.ResolveFormat(cobraCmd)).WriteData(resp)
}

func handleGenerateTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	resp, err := run(ctx, executor)
	if err != nil {
		return err
	}
	printFiles, err := cobraCmd.Flags().GetBool("print")
	if err != nil {
		return fmt.Errorf("failed to get print flag: %w", err)
	}
	out := cobraCmd.OutOrStdout()
	fmt.Fprintln(out, styles.SuccessStyle.Render("✓ Namelists generated"))
	for _, msg := range resp.Messages {
		fmt.Fprintln(out, "  "+msg)
	}
	copied, err := copyFile(cobraCmd, resp)
	if err != nil {
		return err
	}
	if copied != "" {
		fmt.Fprintln(out, styles.HelpStyle.Render(copied+" copied to the clipboard"))
	}
	if printFiles || resp.OutputDir == "" {
		names := slices.Sorted(maps.Keys(resp.FileContents))
		for _, name := range names {
			fmt.Fprintln(out)
			fmt.Fprintln(out, styles.SectionTitleStyle.Render(name))
			fmt.Fprint(out, resp.FileContents[name])
		}
	}
	return nil
}
