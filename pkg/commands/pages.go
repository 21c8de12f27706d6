package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/outliner/pkg/commands/options"
	"tableflip.dev/outliner/pkg/printers"
)

func addPages(topLevel *cobra.Command) {
	var all bool
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "pages",
		Short: "List pages, most recently modified first.",
		Example: `
outliner pages
outliner pages --all --show-id
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			pages, err := e.svc.Pages(cmd.Context(), all)
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				return oo.PrintJSON(pages)
			}
			pp := printers.PrettyPrint{ShowID: io.ShowID}
			pp.TitleWithCount("Pages", len(pages), "page")
			pp.Pages(pages...)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include deleted pages.")
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addNew(topLevel *cobra.Command) {
	var value string

	cmd := &cobra.Command{
		Use:   "new <title>",
		Short: "Create a page.",
		Example: `
outliner new "Reading list" --value "- TODO Dune"
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			p, err := e.svc.Create(cmd.Context(), args[0], value)
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				return oo.PrintJSON(p)
			}
			cmd.Println(p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&value, "value", "", "Initial markdown content.")
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addShow(topLevel *cobra.Command) {
	var raw bool
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "show <page-id>",
		Short: "Print a page as an outline.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			p, err := e.svc.Page(cmd.Context(), args[0])
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				return oo.PrintJSON(p)
			}
			if raw {
				cmd.Println(p.Value)
				return nil
			}
			tree, err := e.svc.Tree(p)
			if err != nil {
				return err
			}
			pp := printers.PrettyPrint{ShowID: io.ShowID}
			pp.Title(p.Title)
			pp.Outline(tree)
			return nil
		},
		ValidArgsFunction: pageCompletions,
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the stored value unchanged.")
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addRename(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "rename <page-id> <title>",
		Short: "Change a page title.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			_, err = e.svc.Rename(cmd.Context(), args[0], args[1])
			return err
		},
	}
	topLevel.AddCommand(cmd)
}

func addDelete(topLevel *cobra.Command) {
	var restore bool

	cmd := &cobra.Command{
		Use:   "delete <page-id>",
		Short: "Soft-delete a page, or restore it with --restore.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			_, err = e.svc.SetDeleted(cmd.Context(), args[0], !restore)
			return err
		},
	}
	cmd.Flags().BoolVar(&restore, "restore", false, "Restore a deleted page.")
	topLevel.AddCommand(cmd)
}

func addHistory(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "history <page-id>",
		Short: "List the archived revisions of a page.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			entries, err := e.svc.History(cmd.Context(), args[0])
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				return oo.PrintJSON(entries)
			}
			pp := printers.PrettyPrint{}
			pp.TitleWithCount("History", len(entries), "revision")
			pp.History(entries...)
			return nil
		},
		ValidArgsFunction: pageCompletions,
	}
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
