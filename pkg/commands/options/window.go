package options

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/outliner/pkg/timeutil"
)

// WindowOptions selects a trailing time window such as 2w.
type WindowOptions struct {
	Window string
}

func AddWindowArg(cmd *cobra.Command, o *WindowOptions, def string) {
	cmd.Flags().StringVar(&o.Window, "window", def,
		"Time window to include, for example 3d, 1w or 1w3d.")
}

// Duration parses the window. An empty window is zero.
func (o *WindowOptions) Duration() (time.Duration, string, error) {
	if o.Window == "" {
		return 0, "", nil
	}
	return timeutil.ParseWindow(o.Window)
}
