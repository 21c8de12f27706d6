package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/outliner/pkg/commands/options"
)

var (
	oo = &options.OutputOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "outliner",
		Short: options.Wrap80("Outline pages, a daily journal and todo items on the command line."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level.")

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addPages(topLevel)
	addNew(topLevel)
	addShow(topLevel)
	addRename(topLevel)
	addDelete(topLevel)
	addHistory(topLevel)
	addJournal(topLevel)
	addTodo(topLevel)
	addListOps(topLevel)
	addAppend(topLevel)
	addEdit(topLevel)
	addLinks(topLevel)
	addAgenda(topLevel)
	addExport(topLevel)
	addMigrateMarkdown(topLevel)
	addWatch(topLevel)
	addKey(topLevel)
	addMCP(topLevel)
	addInfo(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}
