package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/scanless/scanless/core/result"
	"github.com/scanless/scanless/core/text"
	"github.com/scanless/scanless/runtime/parser"
)

func newReplCmd() *cobra.Command {
	var (
		grammarName string
		start       string
	)

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactively parse expressions and print their trees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dict, _, err := buildGrammar(grammarName)
			if err != nil {
				return err
			}
			nt, ok := dict.Lookup(start)
			if !ok {
				return usageErr("grammar %q has no non-terminal %q", grammarName, start)
			}

			line := liner.NewLiner()
			defer line.Close()
			line.SetCtrlCAborts(true)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "parsing %q; empty line or ctrl-d quits\n", start)
			for {
				input, err := line.Prompt("> ")
				if err == liner.ErrPromptAborted || err == io.EOF {
					return nil
				}
				if err != nil {
					return ioErr(err)
				}
				if strings.TrimSpace(input) == "" {
					return nil
				}
				line.AppendHistory(input)

				buf := text.NewString(input)
				p := parser.New(buf, parser.WithPackratCache())
				var res result.Value
				if p.ParseNT(nt, &res) && buf.End() {
					res.Print(out)
					fmt.Fprintln(out)
				} else {
					printReport(out, p.Expected())
				}
				res.Release()
			}
		},
	}

	cmd.Flags().StringVarP(&grammarName, "grammar", "g", "c", "grammar to use ("+grammarNames()+")")
	cmd.Flags().StringVarP(&start, "start", "s", "expr", "start non-terminal")
	return cmd
}
