package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scanless/scanless/core/grammar"
)

func newGrammarCmd() *cobra.Command {
	var grammarName string

	cmd := &cobra.Command{
		Use:   "grammar",
		Short: "Print a bundled grammar's rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dict, _, err := buildGrammar(grammarName)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, nt := range dict.NonTerminals() {
				fmt.Fprintf(out, "%s:\n", nt.Name)
				for r := nt.Normal; r != nil; r = r.Next {
					fmt.Fprintf(out, "\t%s\n", grammar.ElementString(r.Elements))
				}
				for r := nt.Recursive; r != nil; r = r.Next {
					fmt.Fprintf(out, "\t%s %s\n", nt.Name, grammar.ElementString(r.Elements))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&grammarName, "grammar", "g", "c", "grammar to print ("+grammarNames()+")")
	return cmd
}
