package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/outliner/pkg/commands/options"
	"tableflip.dev/outliner/pkg/printers"
	"tableflip.dev/outliner/pkg/timeutil"
)

func addAgenda(topLevel *cobra.Command) {
	wo := &options.WindowOptions{}
	var includeDone bool

	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Collect todo items across pages.",
		Example: `
outliner agenda
outliner agenda --window 1w --done
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			window, label, err := wo.Duration()
			if err != nil {
				return err
			}
			e, err := loadEnv()
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			now := time.Now()
			var since time.Time
			if window > 0 {
				since = timeutil.StartOfDay(now).Add(-window)
			}
			agenda, err := e.svc.Agenda(cmd.Context(), since, includeDone)
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				return oo.PrintJSON(agenda)
			}
			pp := printers.PrettyPrint{}
			if window > 0 {
				pp.Title("Agenda · " + printers.Since(label, since, now))
			} else {
				pp.Title("Agenda")
			}
			pp.Agenda(agenda)
			return nil
		},
	}
	options.AddWindowArg(cmd, wo, "")
	cmd.Flags().BoolVar(&includeDone, "done", false, "Include done items.")
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
