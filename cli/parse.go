package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/scanless/scanless/core/result"
	"github.com/scanless/scanless/core/text"
	"github.com/scanless/scanless/runtime/parser"
)

func newParseCmd() *cobra.Command {
	var (
		grammarName string
		start       string
		noCache     bool
		trace       bool
		traceNT     bool
		tabSize     int
		telemetry   bool
	)

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a file (or stdin) and print the result",
		Long: "Parse reads the input, runs the selected grammar over it and prints the " +
			"resulting value. A failed parse prints where the parser got stuck and what " +
			"it expected there.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(args)
			if err != nil {
				return ioErr(err)
			}

			dict, defStart, err := buildGrammar(grammarName)
			if err != nil {
				return err
			}
			if start == "" {
				start = defStart
			}
			nt, ok := dict.Lookup(start)
			if !ok {
				return usageErr("grammar %q has no non-terminal %q", grammarName, start)
			}

			buf := text.New(input, text.WithTabSize(tabSize))
			opts := []parser.Option{}
			if !noCache {
				opts = append(opts, parser.WithPackratCache())
			}
			if trace || traceNT {
				l := logrus.New()
				l.SetOutput(cmd.ErrOrStderr())
				l.SetLevel(logrus.DebugLevel)
				if trace {
					opts = append(opts, parser.WithTrace(l))
				} else {
					opts = append(opts, parser.WithNTTrace(l))
				}
			}
			if telemetry {
				opts = append(opts, parser.WithTelemetryTiming())
			}

			p := parser.New(buf, opts...)
			var res result.Value
			began := time.Now()
			okParse := p.ParseNT(nt, &res)
			defer res.Release()

			if telemetry {
				if t := p.Telemetry(); t != nil {
					t.ParseTime = time.Since(began)
				}
				printTelemetry(cmd.ErrOrStderr(), p.Telemetry())
			}

			if !okParse || !buf.End() {
				printReport(cmd.ErrOrStderr(), p.Expected())
				return parseErr(fmt.Errorf("failed to parse %s as %q", inputName(args), start))
			}

			res.Print(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVarP(&grammarName, "grammar", "g", "c", "grammar to use ("+grammarNames()+")")
	cmd.Flags().StringVarP(&start, "start", "s", "", "start non-terminal (defaults per grammar)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the packrat cache")
	cmd.Flags().BoolVar(&trace, "trace", false, "trace every rule and element attempt")
	cmd.Flags().BoolVar(&traceNT, "trace-nt", false, "trace non-terminal entry and exit only")
	cmd.Flags().IntVar(&tabSize, "tab-size", text.DefaultTabSize, "tab stop width for column tracking")
	cmd.Flags().BoolVar(&telemetry, "telemetry", false, "report parse counters and timing")
	return cmd
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(args[0])
}

func inputName(args []string) string {
	if len(args) == 0 || args[0] == "-" {
		return "stdin"
	}
	return args[0]
}

func printTelemetry(w io.Writer, t *parser.Telemetry) {
	if t == nil {
		return
	}
	fmt.Fprintf(w, "non-terminals: %d  cache hits: %d  misses: %d  max depth: %d  time: %s\n",
		t.NTCount, t.CacheHits, t.CacheMisses, t.MaxDepth, t.ParseTime)
}
