package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/lineview/internal/engine/cursor"
	"github.com/dshills/lineview/internal/prompt"
	"github.com/dshills/lineview/internal/renderer"
	"github.com/dshills/lineview/internal/renderer/backend"
)

type renderOptions struct {
	prompt       string
	continuation string
	width        int
	tabWidth     int
	cursor       int
	escapes      bool
}

func newRenderCmd() *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render [text]",
		Short: "Print the terminal output for one command line",
		Long: `render lays out text behind the prompt at the given width and prints the
escape sequences a first refresh would write, followed by the rendered
screen, one row per line.`,
		Example: `  lineview render --width 10 'echo hello world'
  lineview render -e 'ls \x1b[31m-l\x1b[0m\nwc'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			if len(args) > 0 {
				text = args[0]
			}
			return runRender(cmd, opts, text)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.prompt, "prompt", "p", "$ ", "Primary prompt")
	flags.StringVar(&opts.continuation, "continuation", "> ", "Prompt for continuation lines")
	flags.IntVarP(&opts.width, "width", "w", 80, "Terminal width in columns")
	flags.IntVar(&opts.tabWidth, "tab-width", 8, "Tab stop interval")
	flags.IntVar(&opts.cursor, "cursor", -1, "Cursor byte offset (default: end of text)")
	flags.BoolVarP(&opts.escapes, "escapes", "e", false, `Interpret Go escapes such as \n and \x1b in text and prompts`)
	return cmd
}

func unescape(s string) (string, error) {
	out, err := strconv.Unquote(`"` + strings.ReplaceAll(s, `"`, `\"`) + `"`)
	if err != nil {
		return "", fmt.Errorf("invalid escapes in %q: %w", s, err)
	}
	return out, nil
}

func runRender(cmd *cobra.Command, opts *renderOptions, text string) error {
	promptText, cont := opts.prompt, opts.continuation
	if opts.escapes {
		var err error
		for _, s := range []*string{&text, &promptText, &cont} {
			if *s, err = unescape(*s); err != nil {
				return err
			}
		}
	}

	off := opts.cursor
	if off < 0 {
		off = len(text)
	}
	pos, err := cursor.FromByteOffset([]byte(text), off)
	if err != nil {
		return fmt.Errorf("cursor %d: %w", off, err)
	}

	sink := backend.NewNullSink(opts.width, 0)
	session := renderer.NewSession(sink, renderer.Options{
		Width:    opts.width,
		TabWidth: opts.tabWidth,
	})
	prompts := prompt.NewStatic(promptText, cont)
	frame := renderer.Frame{
		Prompt:   prompts.Primary(),
		Text:     []byte(text),
		Cursor:   pos,
		Prefixes: prompts.Prefixes([]byte(text)),
	}
	if err := session.Refresh(frame); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	screen := session.Screen()
	fmt.Fprintf(out, "output: %q\n", sink.Bytes())
	fmt.Fprintf(out, "cursor: row %d, col %d\n", screen.Cursor.Row, screen.Cursor.Col)
	for r := 0; r < screen.Rows(); r++ {
		fmt.Fprintf(out, "%3d |%s|\n", r, screen.Line(r).String())
	}
	return nil
}
