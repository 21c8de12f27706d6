package commands

import (
	"os"

	"github.com/spf13/cobra"

	"tableflip.dev/outliner/pkg/commands/options"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about the configured store.",
		Example: `
outliner info
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			if override := os.Getenv("OUTLINER_CONFIG_PATH"); override != "" {
				cmd.Println("OUTLINER_CONFIG_PATH found on env, using", override)
			} else {
				cmd.Println("OUTLINER_CONFIG_PATH env var not set")
			}

			e, err := loadEnv()
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			pages, err := e.svc.Pages(cmd.Context(), true)
			if err != nil {
				return oo.HandleError(err)
			}
			journals, deleted := 0, 0
			for _, p := range pages {
				if p.IsJournal {
					journals++
				}
				if p.Deleted {
					deleted++
				}
			}
			info := map[string]any{
				"driver":   e.cfg.Driver(),
				"path":     e.cfg.BasePath(),
				"user":     e.cfg.User,
				"debounce": e.cfg.Debounce.String(),
				"pages":    len(pages),
				"journals": journals,
				"deleted":  deleted,
			}
			if oo.JSON {
				return oo.PrintJSON(info)
			}
			for _, k := range []string{"driver", "path", "user", "debounce", "pages", "journals", "deleted"} {
				cmd.Printf("%-9s %v\n", k+":", info[k])
			}
			return nil
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
