package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/outliner/pkg/command"
	"tableflip.dev/outliner/pkg/commands/options"
	"tableflip.dev/outliner/pkg/todo"
)

func addTodo(topLevel *cobra.Command) {
	var long strings.Builder
	long.WriteString("Change the todo marker of one list item.\n\n")
	long.WriteString("Actions:\n")
	long.WriteString("  add [STATUS]   mark the item, TODO by default\n")
	long.WriteString("  status STATUS  change the status keyword\n")
	long.WriteString("  done, undone   set or clear the done flag\n")
	long.WriteString("  cycle          TODO <-> DOING, NOW <-> LATER\n")
	long.WriteString("  remove         drop the marker\n\n")
	long.WriteString("Statuses: ")
	for i, s := range todo.Statuses {
		if i > 0 {
			long.WriteString(", ")
		}
		long.WriteString(string(s))
	}

	cmd := &cobra.Command{
		Use:   "todo <page-id> <line> <action> [status]",
		Short: "Change the todo marker of a list item.",
		Long:  long.String(),
		Example: `
outliner todo 3f2a 2 add NOW
outliner todo 3f2a 2 cycle
outliner todo 3f2a 2 done
`,
		Args:      cobra.RangeArgs(3, 4),
		ValidArgs: []string{"add", "status", "done", "undone", "cycle", "remove"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			item, rest, err := options.ParseItemArgs(args)
			if err != nil {
				return err
			}
			arg := ""
			if len(rest) > 1 {
				arg = strings.ToUpper(rest[1])
			}
			in, err := command.Parse(rest[0], arg)
			if err != nil {
				return err
			}
			return applyIntent(cmd, item, in)
		},
	}
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addListOps(topLevel *cobra.Command) {
	ops := []struct {
		name  string
		short string
	}{
		{"indent", "Nest an item under its previous sibling."},
		{"outdent", "Move an item out one level, after its parent's block."},
		{"up", "Swap an item with its previous sibling."},
		{"down", "Swap an item with its next sibling."},
		{"rm", "Delete an item and everything nested under it."},
	}
	for _, op := range ops {
		name := op.name
		cmd := &cobra.Command{
			Use:   name + " <page-id> <line>",
			Short: op.short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				cmd.SilenceUsage = true
				item, _, err := options.ParseItemArgs(args)
				if err != nil {
					return err
				}
				in, err := command.Parse(name, "")
				if err != nil {
					return err
				}
				return applyIntent(cmd, item, in)
			},
		}
		options.AddOutputArg(cmd, oo)
		topLevel.AddCommand(cmd)
	}
}

func applyIntent(cmd *cobra.Command, item options.ItemArgs, in command.Intent) error {
	e, err := loadEnv()
	if err != nil {
		return oo.HandleError(err)
	}
	defer e.Close()

	p, changed, err := e.svc.Apply(cmd.Context(), item.PageID, item.Line, in)
	if err != nil {
		return oo.HandleError(err)
	}
	if oo.JSON {
		return oo.PrintJSON(map[string]any{"page": p, "changed": changed})
	}
	if !changed {
		cmd.Printf("%s: nothing to do\n", in.Name())
		return nil
	}
	cmd.Printf("%s: revision %d\n", in.Name(), p.RevisionNumber)
	return nil
}

func addAppend(topLevel *cobra.Command) {
	var pageID string

	cmd := &cobra.Command{
		Use:   "append <text>...",
		Short: "Append an item to a page, today's journal page by default.",
		Example: `
outliner append TODO call the plumber
outliner append --page 3f2a "read [[Dune]]"
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			if pageID == "" {
				today, _, err := e.svc.Today(cmd.Context())
				if err != nil {
					return oo.HandleError(err)
				}
				pageID = today.ID
			}
			p, err := e.svc.AppendItem(cmd.Context(), pageID, strings.Join(args, " "))
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				return oo.PrintJSON(p)
			}
			cmd.Printf("%s: revision %d\n", p.Title, p.RevisionNumber)
			return nil
		},
	}
	cmd.Flags().StringVar(&pageID, "page", "", "Page id to append to.")
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
