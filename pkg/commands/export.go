package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/outliner/pkg/commands/options"
)

func addExport(topLevel *cobra.Command) {
	dir := "."

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every page as a markdown file.",
		Example: `
outliner export --dir ~/notes
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			written, err := e.svc.Export(cmd.Context(), dir)
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				return oo.PrintJSON(written)
			}
			for _, path := range written {
				cmd.Println(path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", dir, "Directory to write into.")
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addMigrateMarkdown(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "migrate-markdown",
		Short: "Rewrite pages stored as JSON trees in markdown.",
		Long: options.Wrap80(`Rewrite every page whose value is a JSON document tree as markdown.
Each rewrite is a normal revisioned update, so the JSON value stays in the
page history.`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			res, err := e.svc.MigrateMarkdown(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				failed := make(map[string]string, len(res.Failed))
				for id, err := range res.Failed {
					failed[id] = err.Error()
				}
				return oo.PrintJSON(map[string]any{
					"converted": res.Converted,
					"skipped":   res.Skipped,
					"failed":    failed,
				})
			}
			cmd.Printf("converted %d, already markdown %d, failed %d\n", len(res.Converted), len(res.Skipped), len(res.Failed))
			for id, err := range res.Failed {
				cmd.PrintErrf("  %s: %v\n", id, err)
			}
			return nil
		},
	}
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
