package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/outliner/pkg/commands/options"
	"tableflip.dev/outliner/pkg/printers"
)

func addLinks(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "links <page-id>",
		Short: "List the [[references]] on a page and the pages they resolve to.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			links, err := e.svc.Links(cmd.Context(), args[0])
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				return oo.PrintJSON(links)
			}
			pp := printers.PrettyPrint{}
			pp.Links(links...)
			return nil
		},
		ValidArgsFunction: pageCompletions,
	}
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addKey(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Show the todo statuses and how they cycle.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			pp := printers.PrettyPrint{}
			pp.Key()
		},
	}
	topLevel.AddCommand(cmd)
}
