// Package wizard runs the interactive step-by-step editor.
package wizard

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/compozy/wrfconf/cli/cmd"
	"github.com/compozy/wrfconf/cli/helpers"
	"github.com/compozy/wrfconf/cli/tui/components"
	"github.com/compozy/wrfconf/cli/tui/styles"
	"github.com/compozy/wrfconf/engine/gate"
	"github.com/compozy/wrfconf/engine/session"
	"github.com/compozy/wrfconf/engine/validate"
	"github.com/compozy/wrfconf/pkg/logger"
)

// NewWizardCommand creates the wizard command
func NewWizardCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "wizard",
		Short: "Edit the configuration step by step",
		Long: `Walk through time control, domain, physics, dynamics, boundary and quilting
settings, then review the configuration and generate the namelists. Every
accepted step is saved immediately.`,
		Args: cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{RequireSession: true}, cmd.ModeHandlers{
				JSON: handleWizardJSON,
				TUI:  handleWizardTUI,
			}, args)
		},
	}
	c.Flags().String("step", "time", "Step to start at (time, domain, physics, dynamics, boundary, quilt, review)")
	c.Flags().Bool("only", false, "Edit only the given step and exit")
	return c
}

func handleWizardJSON(context.Context, *cobra.Command, *cmd.CommandExecutor, []string) error {
	return helpers.NewCliError("INTERACTIVE_REQUIRED", "the wizard needs an interactive terminal",
		"use 'wrfconf set' and 'wrfconf show' from scripts, or pass --format tui")
}

func handleWizardTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	stepName, err := cobraCmd.Flags().GetString("step")
	if err != nil {
		return fmt.Errorf("failed to get step flag: %w", err)
	}
	step, err := gate.ParseStep(stepName)
	if err != nil {
		return helpers.NewCliError("INVALID_STEP", err.Error())
	}
	only, err := cobraCmd.Flags().GetBool("only")
	if err != nil {
		return fmt.Errorf("failed to get only flag: %w", err)
	}
	s := executor.Session()
	if only {
		return editSection(ctx, cobraCmd, s, step)
	}
	generator, err := cmd.NewGenerator(executor.Config())
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}
	model := NewModel(ctx, s, generator, executor.Config().Generator.OutputDir, step)
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}
	doc := s.Document()
	logger.FromContext(ctx).Debug("Wizard finished", "revision", doc.Revision())
	summary := fmt.Sprintf("Configuration saved (revision %d).", doc.Revision())
	if resp, genErr := model.Result(); resp != nil && genErr == nil {
		summary += " Namelists generated."
	} else if !s.CanGenerate() {
		summary += " Some sections still need attention; run 'wrfconf validate' for details."
	}
	fmt.Fprintln(cobraCmd.OutOrStdout(), styles.HelpStyle.Render(summary))
	return nil
}

// editSection runs a single section form until it validates or is canceled.
func editSection(ctx context.Context, cobraCmd *cobra.Command, s *session.Session, step gate.Step) error {
	name, ok := gate.SectionOf(step)
	if !ok {
		return helpers.NewCliError("INVALID_STEP", "--only needs a section step")
	}
	sec := s.Registry().MustSection(name)
	var errs validate.Result
	for {
		sf := components.NewSectionForm(sec, s.Document().Section(name), s.Validator(), errs)
		runner := components.NewFormRunner(ctx, sf.Form(), "ctrl+c to cancel")
		if _, err := tea.NewProgram(runner, tea.WithContext(ctx)).Run(); err != nil {
			return fmt.Errorf("form failed: %w", err)
		}
		if !runner.Submitted() {
			return context.Canceled
		}
		partial, err := sf.Partial()
		if err != nil {
			return err
		}
		res, err := s.Submit(ctx, name, partial)
		if err != nil {
			return err
		}
		if res.Valid() {
			fmt.Fprintln(cobraCmd.OutOrStdout(), styles.SuccessStyle.Render(fmt.Sprintf("✓ %s saved", sec.Title)))
			return nil
		}
		errs = res
	}
}
