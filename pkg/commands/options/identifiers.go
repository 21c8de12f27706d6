package options

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// IDOptions
type IDOptions struct {
	ShowID bool
}

func AddShowIDArgs(cmd *cobra.Command, o *IDOptions) {
	cmd.Flags().BoolVarP(&o.ShowID, "show-id", "k", false,
		"Show page ids and item line numbers.")
}

// ItemArgs names one list item: a page id and a 1-based line number.
type ItemArgs struct {
	PageID string
	Line   int
}

// ParseItemArgs reads `<page-id> <line>` from the front of args and returns
// the remainder.
func ParseItemArgs(args []string) (ItemArgs, []string, error) {
	if len(args) < 2 {
		return ItemArgs{}, nil, fmt.Errorf("expected <page-id> <line>, got %d args", len(args))
	}
	line, err := strconv.Atoi(args[1])
	if err != nil || line < 1 {
		return ItemArgs{}, nil, fmt.Errorf("line must be a positive number, got %q", args[1])
	}
	return ItemArgs{PageID: args[0], Line: line}, args[2:], nil
}
