// Package document holds the commands that inspect and edit the stored
// configuration document.
package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/compozy/wrfconf/cli/cmd"
	"github.com/compozy/wrfconf/cli/helpers"
	"github.com/compozy/wrfconf/cli/tui/components"
	"github.com/compozy/wrfconf/cli/tui/styles"
	"github.com/compozy/wrfconf/engine/document"
	"github.com/compozy/wrfconf/engine/schema"
	"github.com/compozy/wrfconf/pkg/logger"
)

func sectionsArg(reg *schema.Registry, name string) ([]schema.SectionName, error) {
	if name == "" {
		return schema.SectionNames(), nil
	}
	sec, err := schema.ParseSectionName(name)
	if err != nil {
		return nil, err
	}
	if _, err := reg.Section(sec); err != nil {
		return nil, err
	}
	return []schema.SectionName{sec}, nil
}

// NewShowCommand creates the show command
func NewShowCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "show",
		Short: "Show the current configuration",
		Long:  "Display the stored configuration document as JSON, YAML, or a table with enumeration labels.",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{RequireSession: true}, cmd.ModeHandlers{
				JSON: handleShowJSON,
				TUI:  handleShowTUI,
			}, args)
		},
	}
	c.Flags().String("section", "", "Only show one section")
	return c
}

func showTable(cobraCmd *cobra.Command, executor *cmd.CommandExecutor) (documentTable, error) {
	name, err := cobraCmd.Flags().GetString("section")
	if err != nil {
		return documentTable{}, fmt.Errorf("failed to get section flag: %w", err)
	}
	sections, err := sectionsArg(executor.Registry(), name)
	if err != nil {
		return documentTable{}, err
	}
	s := executor.Session()
	doc := s.Document()
	return documentTable{
		reg:      executor.Registry(),
		doc:      doc,
		report:   s.Validator().All(doc),
		sections: sections,
	}, nil
}

func handleShowJSON(_ context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	table, err := showTable(cobraCmd, executor)
	if err != nil {
		return err
	}
	return helpers.NewOutputWriter(cobraCmd.OutOrStdout(), helpers.ResolveFormat(cobraCmd)).WriteData(table)
}

func handleShowTUI(_ context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	table, err := showTable(cobraCmd, executor)
	if err != nil {
		return err
	}
	out := cobraCmd.OutOrStdout()
	for _, name := range table.sections {
		sec := table.reg.MustSection(name)
		fmt.Fprintln(out, components.RenderSection(sec, table.doc.Section(name), table.report[name]))
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, styles.HelpStyle.Render(fmt.Sprintf("revision %d", table.doc.Revision())))
	return nil
}

// NewSetCommand creates the set command
func NewSetCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "set <section> <field=value>...",
		Short: "Update fields of one section",
		Long: `Update fields of one section. Values are typed in each field's edit unit
(hours for output intervals, kilometres for grid spacing); sequences take one
comma separated value per domain. An empty value clears the field.`,
		Example: "  wrfconf set domain_setup map_proj=lambert dx=12 e_we=100,61",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{RequireSession: true}, cmd.ModeHandlers{
				JSON: handleSet,
			}, args)
		},
	}
	c.Flags().Bool("force", false, "Store the update even when the section does not validate")
	return c
}

// ParseAssignments turns field=value arguments into a section update.
func ParseAssignments(sec *schema.Section, args []string) (document.Section, error) {
	partial := make(document.Section, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, helpers.NewCliError("INVALID_ARGUMENT", fmt.Sprintf("expected field=value, got %q", arg))
		}
		name = strings.TrimSpace(name)
		f, known := sec.Field(name)
		if !known {
			return nil, &document.UnknownFieldError{Section: sec.Name, Field: name}
		}
		v, err := f.Parse(raw)
		if err != nil {
			return nil, &document.TypeError{Section: sec.Name, Field: f.Name, Err: err}
		}
		partial[f.Name] = v
	}
	return partial, nil
}

func handleSet(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	log := logger.FromContext(ctx)
	name, err := schema.ParseSectionName(args[0])
	if err != nil {
		return err
	}
	sec, err := executor.Registry().Section(name)
	if err != nil {
		return err
	}
	partial, err := ParseAssignments(sec, args[1:])
	if err != nil {
		return err
	}
	force, err := cobraCmd.Flags().GetBool("force")
	if err != nil {
		return fmt.Errorf("failed to get force flag: %w", err)
	}
	s := executor.Session()
	if force {
		if err := s.Apply(ctx, name, partial); err != nil {
			return err
		}
	} else {
		res, err := s.Submit(ctx, name, partial)
		if err != nil {
			return err
		}
		if !res.Valid() {
			return helpers.NewCliError("VALIDATION_FAILED", fmt.Sprintf("%s was not updated", name),
				"fix the listed fields or pass --force").WithContext("errors", res)
		}
	}
	doc := s.Document()
	log.Debug("Section updated", "section", name, "revision", doc.Revision())
	return helpers.NewOutputWriter(cobraCmd.OutOrStdout(), helpers.ResolveFormat(cobraCmd)).WriteData(map[string]any{
		"section":  name,
		"revision": doc.Revision(),
		"errors":   s.Validator().Section(doc, name),
	})
}

// NewValidateCommand creates the validate command
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate the stored configuration or a document file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{RequireSession: len(args) == 0}, cmd.ModeHandlers{
				JSON: handleValidate,
			}, args)
		},
	}
}

func handleValidate(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	reg := executor.Registry()
	var (
		doc      document.Document
		warnings []string
	)
	if len(args) == 1 {
		data, err := helpers.ReadInput(args[0])
		if err != nil {
			return err
		}
		doc, warnings, err = document.Decode(reg, data)
		if err != nil {
			return helpers.NewCliError("INVALID_DOCUMENT", "failed to decode document", err.Error())
		}
	} else {
		doc = executor.Session().Document()
	}
	s := executor.Session()
	if s == nil {
		s = newDetachedSession(reg)
	}
	report := s.Validator().All(doc)
	canGenerate := s.Gate().CanGenerate(doc)
	logger.FromContext(ctx).Debug("Document validated", "errors", report.Count(), "can_generate", canGenerate)
	if err := helpers.NewOutputWriter(cobraCmd.OutOrStdout(), helpers.ResolveFormat(cobraCmd)).WriteData(map[string]any{
		"valid":        report.Valid(),
		"can_generate": canGenerate,
		"errors":       report,
		"warnings":     warnings,
	}); err != nil {
		return err
	}
	if !report.Valid() {
		return helpers.NewCliError("VALIDATION_FAILED",
			fmt.Sprintf("%d field(s) need attention", report.Count()))
	}
	return nil
}

// NewResetCommand creates the reset command
func NewResetCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{RequireSession: true}, cmd.ModeHandlers{
				JSON: handleReset,
				TUI:  handleResetTUI,
			}, args)
		},
	}
	c.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	return c
}

func handleReset(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	s := executor.Session()
	s.Reset(ctx)
	return helpers.NewOutputWriter(cobraCmd.OutOrStdout(), helpers.ResolveFormat(cobraCmd)).WriteData(map[string]any{
		"revision": s.Document().Revision(),
	})
}

func handleResetTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	yes, err := cobraCmd.Flags().GetBool("yes")
	if err != nil {
		return fmt.Errorf("failed to get yes flag: %w", err)
	}
	if !yes {
		confirm := huh.NewConfirm().
			Title("Discard the current configuration and restore defaults?").
			Affirmative("Reset").
			Negative("Cancel").
			Value(&yes)
		if err := confirm.Run(); err != nil {
			return err
		}
	}
	if !yes {
		fmt.Fprintln(cobraCmd.OutOrStdout(), styles.HelpStyle.Render("Nothing changed."))
		return nil
	}
	return handleReset(ctx, cobraCmd, executor, args)
}

// NewImportCommand creates the import command
func NewImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the configuration with a document file",
		Long: `Load a whole configuration document, such as a saved template or an export
from an older version, and make it the current configuration. Legacy layouts are
migrated; fields that cannot be mapped are dropped with a warning.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{RequireSession: true}, cmd.ModeHandlers{
				JSON: handleImport,
			}, args)
		},
	}
}

func handleImport(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	data, err := helpers.ReadInput(args[0])
	if err != nil {
		return err
	}
	loaded, warnings, err := document.Decode(executor.Registry(), data)
	if err != nil {
		return helpers.NewCliError("INVALID_DOCUMENT", "failed to decode document", err.Error())
	}
	s := executor.Session()
	s.Replace(ctx, loaded)
	doc := s.Document()
	return helpers.NewOutputWriter(cobraCmd.OutOrStdout(), helpers.ResolveFormat(cobraCmd)).WriteData(map[string]any{
		"revision":     doc.Revision(),
		"can_generate": s.CanGenerate(),
		"warnings":     warnings,
	})
}
