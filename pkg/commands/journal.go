package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/outliner/pkg/commands/options"
	"tableflip.dev/outliner/pkg/journal"
	"tableflip.dev/outliner/pkg/page"
	"tableflip.dev/outliner/pkg/printers"
	"tableflip.dev/outliner/pkg/timeutil"
)

func addJournal(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Work with daily journal pages.",
	}

	addJournalToday(cmd)
	addJournalPrune(cmd)
	addJournalRecent(cmd)
	addJournalCalendar(cmd)
	topLevel.AddCommand(cmd)
}

func addJournalToday(parent *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show today's journal page, creating it if needed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			p, created, err := e.svc.Today(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				return oo.PrintJSON(map[string]any{"page": p, "created": created})
			}
			tree, err := e.svc.Tree(p)
			if err != nil {
				return err
			}
			pp := printers.PrettyPrint{ShowID: io.ShowID}
			pp.Title(p.Title)
			pp.Outline(tree)
			if io.ShowID {
				cmd.Println(p.ID)
			}
			return nil
		},
	}
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)
	parent.AddCommand(cmd)
}

func addJournalPrune(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete past journal pages nobody wrote in.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			ids, err := e.svc.PruneJournal(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				return oo.PrintJSON(map[string]any{"deleted": ids})
			}
			cmd.Printf("pruned %d journal page(s)\n", len(ids))
			return nil
		},
	}
	options.AddOutputArg(cmd, oo)
	parent.AddCommand(cmd)
}

func addJournalRecent(parent *cobra.Command) {
	wo := &options.WindowOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List journal pages from a recent window, newest day first.",
		Example: `
outliner journal recent
outliner journal recent --window 3d
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

			pages, err := e.svc.RecentJournal(cmd.Context(), window)
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				return oo.PrintJSON(pages)
			}
			now := time.Now()
			pp := printers.PrettyPrint{ShowID: io.ShowID}
			pp.Title("Journal · " + printers.Since(label, timeutil.StartOfDay(now).Add(-window), now))
			for _, p := range pages {
				tree, err := e.svc.Tree(p)
				if err != nil {
					e.log.WithError(err).WithField("page", p.ID).Warn("skipping page that failed to load")
					continue
				}
				pp.Title(p.Title)
				pp.Outline(tree)
			}
			return nil
		},
	}
	options.AddWindowArg(cmd, wo, timeutil.DefaultWindow)
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)
	parent.AddCommand(cmd)
}

func addJournalCalendar(parent *cobra.Command) {
	var month string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show which days of a month have a written journal page.",
		Example: `
outliner journal calendar
outliner journal calendar --month 2024-02
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			now := time.Now()
			then := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
			if month != "" {
				var err error
				if then, err = time.ParseInLocation("2006-01", month, time.Local); err != nil {
					return err
				}
			}
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			pages, err := e.svc.Pages(cmd.Context(), false)
			if err != nil {
				return err
			}
			pp := printers.PrettyPrint{}
			pp.JournalMonth(then, now, writtenDays(pages, then))
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "Month to show as YYYY-MM; defaults to this month.")
	parent.AddCommand(cmd)
}

// writtenDays marks the days of then's month whose journal page holds more
// than the default value.
func writtenDays(pages []page.Page, then time.Time) map[int]bool {
	out := make(map[int]bool)
	for _, p := range pages {
		if !p.IsJournal || p.Value == page.DefaultJournalValue {
			continue
		}
		day, err := journal.ParseTitle(p.Title, then.Location())
		if err != nil || day.Year() != then.Year() || day.Month() != then.Month() {
			continue
		}
		out[day.Day()] = true
	}
	return out
}
