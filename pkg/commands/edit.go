package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tableflip.dev/outliner/pkg/command"
	"tableflip.dev/outliner/pkg/editor"
	"tableflip.dev/outliner/pkg/page"
	"tableflip.dev/outliner/pkg/printers"
)

func addEdit(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "edit <page-id>",
		Short: "Edit a page interactively; changes save after a short pause.",
		Long: `Edit reads one command per line from stdin:

  <line> <action> [arg]   apply an action to list item <line>
                          (add, status, done, undone, cycle, remove,
                           indent, outdent, up, down, rm, insert-text)
  show                    print the page
  save                    write pending changes now
  quit                    save and exit

Changes are written once typing pauses for the configured debounce.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			sess, err := editor.Open(cmd.Context(), e.store, args[0], editor.Options{
				Delay: e.cfg.Debounce,
				Log:   e.log,
				OnConflict: func(current page.Page, err error) {
					cmd.PrintErrf("page changed elsewhere, reloaded revision %d\n", current.RevisionNumber)
				},
			})
			if err != nil {
				return err
			}
			defer func() {
				if err := sess.Close(cmd.Context()); err != nil {
					e.log.WithError(err).Error("final save failed")
				}
			}()
			interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
			return editLoop(cmd, sess, cmd.InOrStdin(), interactive)
		},
		ValidArgsFunction: pageCompletions,
	}
	topLevel.AddCommand(cmd)
}

func editLoop(cmd *cobra.Command, sess *editor.Session, in io.Reader, prompt bool) error {
	pp := printers.PrettyPrint{ShowID: true, Out: cmd.OutOrStdout()}
	scanner := bufio.NewScanner(in)
	for {
		if prompt {
			cmd.Print("> ")
		}
		if !scanner.Scan() {
			break
		}
		if err := sess.Err(); err != nil {
			cmd.PrintErrf("save failed: %v\n", err)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "quit", "exit":
			return nil
		case "show":
			pp.Title(sess.Page().Title)
			pp.Outline(sess.Tree())
			continue
		case "save":
			if err := sess.Flush(cmd.Context()); err != nil {
				cmd.PrintErrf("save failed: %v\n", err)
			}
			continue
		}
		if err := editLine(sess, scanner.Text()); err != nil {
			cmd.PrintErrln(err)
		}
	}
	return scanner.Err()
}

func editLine(sess *editor.Session, raw string) error {
	fields := strings.Fields(raw)
	if len(fields) < 2 {
		return fmt.Errorf("expected <line> <action> [arg]")
	}
	line, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("line must be a number, got %q", fields[0])
	}
	arg := strings.Join(fields[2:], " ")
	switch fields[1] {
	case "add", "status":
		arg = strings.ToUpper(arg)
	case "insert-text":
		// Keep the typed text verbatim, minus the separating space.
		rest := raw[strings.Index(raw, fields[1])+len(fields[1]):]
		arg = strings.TrimPrefix(rest, " ")
	}
	in, err := command.Parse(fields[1], arg)
	if err != nil {
		return err
	}
	items := sess.Tree().ListItems()
	if line < 1 || line > len(items) {
		return fmt.Errorf("no item %d, the page has %d", line, len(items))
	}
	offset := 0
	if _, ok := in.(command.InsertText); ok {
		// Type at the end of the item.
		offset = len(sess.Tree().PlainText(items[line-1]))
	}
	if !sess.Dispatch(command.Caret(items[line-1], offset), in) {
		return fmt.Errorf("%s: nothing to do", in.Name())
	}
	return nil
}
