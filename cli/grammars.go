package cli

import (
	"sort"
	"strings"

	"github.com/scanless/scanless/core/grammar"
	"github.com/scanless/scanless/pkgs/intern"
	"github.com/scanless/scanless/pkgs/lang"
)

// grammarSpec wires a bundled grammar to its default start symbol.
type grammarSpec struct {
	start string
	build func(d *grammar.Dict, tbl *intern.Table)
}

var grammarSpecs = map[string]grammarSpec{
	"c": {start: "root", build: lang.C},
	"white_space": {start: "white_space", build: func(d *grammar.Dict, tbl *intern.Table) {
		lang.WhiteSpace(d)
	}},
	"number": {start: "number", build: func(d *grammar.Dict, tbl *intern.Table) {
		lang.Number(d)
	}},
	"ident": {start: "ident", build: func(d *grammar.Dict, tbl *intern.Table) {
		lang.Ident(d, tbl)
	}},
	"char": {start: "char", build: func(d *grammar.Dict, tbl *intern.Table) {
		lang.CharLit(d)
	}},
	"string": {start: "string", build: func(d *grammar.Dict, tbl *intern.Table) {
		lang.WhiteSpace(d)
		lang.StringLit(d)
	}},
	"int": {start: "int", build: func(d *grammar.Dict, tbl *intern.Table) {
		lang.IntLit(d)
	}},
}

func grammarNames() string {
	names := make([]string, 0, len(grammarSpecs))
	for name := range grammarSpecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// buildGrammar constructs the named bundled grammar in a fresh dictionary
// with its own symbol table, returning its default start symbol.
func buildGrammar(name string) (*grammar.Dict, string, error) {
	spec, ok := grammarSpecs[name]
	if !ok {
		return nil, "", usageErr("unknown grammar %q (have: %s)", name, grammarNames())
	}
	d := grammar.NewDict()
	spec.build(d, intern.NewTable())
	return d, spec.start, nil
}
