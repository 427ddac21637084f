package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/seuros/jogo/internal/config"
	"github.com/seuros/jogo/internal/models"
	"github.com/seuros/jogo/internal/seed"
	"github.com/seuros/jogo/internal/store"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage the template catalogue",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var templateSeedCmd = &cobra.Command{
	Use:   "seed [--replace]",
	Short: "Load the built-in starter templates",
	Long: `Load the built-in starter templates into the store.

Without --replace the catalogue is only seeded when it is empty. With
--replace every existing template is deleted first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		replace, _ := cmd.Flags().GetBool("replace")
		return withStore(cmd.Context(), func(ctx context.Context, _ *config.Config, st store.Store) error {
			return runTemplateSeed(ctx, cmd, st, replace)
		})
	},
}

func runTemplateSeed(ctx context.Context, cmd *cobra.Command, templates store.Templates, replace bool) error {
	n, err := seed.Seed(ctx, templates, replace)
	if err != nil {
		return err
	}
	if n == 0 {
		cmd.Println("Catalogue already populated, nothing seeded (use --replace to reload)")
		return nil
	}
	cmd.Printf("✓ Seeded %d templates\n", n)
	return nil
}

var templateListCmd = &cobra.Command{
	Use:   "list [--format json|table]",
	Short: "List active templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		return withStore(cmd.Context(), func(ctx context.Context, _ *config.Config, st store.Store) error {
			return runTemplateList(ctx, st, format)
		})
	},
}

func runTemplateList(ctx context.Context, templates store.Templates, format string) error {
	list, _, err := templates.ListTemplates(ctx, store.TemplateFilter{})
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}

	switch format {
	case "json":
		return outputTemplatesJSON(list)
	case "table", "":
		return outputTemplatesTable(list)
	default:
		return fmt.Errorf("unknown format %q (want table or json)", format)
	}
}

func outputTemplatesJSON(templates []models.Template) error {
	if templates == nil {
		templates = []models.Template{}
	}
	data, err := json.MarshalIndent(templates, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func outputTemplatesTable(templates []models.Template) error {
	if len(templates) == 0 {
		fmt.Println("No templates found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	_, _ = fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tSTEPS\tDOWNLOADS\tFEATURED")
	_, _ = fmt.Fprintln(w, "--\t----\t--------\t-----\t---------\t--------")
	for _, t := range templates {
		featured := ""
		if t.Featured {
			featured = "yes"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			t.ID, t.Name, t.Category, len(t.Steps), t.Downloads, featured)
	}
	return nil
}

func init() {
	templateSeedCmd.Flags().Bool("replace", false, "Delete existing templates before seeding")
	templateListCmd.Flags().StringP("format", "f", "table", "Output format (table, json)")

	templateCmd.AddCommand(templateSeedCmd)
	templateCmd.AddCommand(templateListCmd)
	RootCmd.AddCommand(templateCmd)
}
