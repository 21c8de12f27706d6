package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/outliner/pkg/store"
)

type watcher interface {
	Watch(ctx context.Context) (<-chan store.Event, error)
}

func addWatch(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print page changes made by other processes (diskv driver only).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			w, ok := e.store.(watcher)
			if !ok {
				return errors.New("watch needs the diskv driver")
			}
			events, err := w.Watch(cmd.Context())
			if err != nil {
				return err
			}
			for ev := range events {
				switch ev.Type {
				case store.EventPageChanged:
					p, err := e.svc.Page(cmd.Context(), ev.PageID)
					if err != nil {
						cmd.Printf("%s removed\n", ev.PageID)
						continue
					}
					cmd.Printf("%s %q revision %d\n", p.ID, p.Title, p.RevisionNumber)
				case store.EventPagesInvalidated:
					cmd.Println("pages changed")
				}
			}
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}
