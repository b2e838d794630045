// Package lang defines the reference grammars that ship with the engine:
// white space, scalar literals (number, identifier, char, string, int),
// and a subset-of-C grammar that exercises groupings, keywords, chains and
// direct left recursion.
//
// Each constructor adds its non-terminals to a dictionary. The C grammar
// registers the grammars it builds on itself; StringLit refers to
// "white_space" but leaves registering WhiteSpace to the caller.
package lang

import (
	"github.com/scanless/scanless/core/grammar"
	"github.com/scanless/scanless/core/result"
	"github.com/scanless/scanless/pkgs/ast"
	"github.com/scanless/scanless/pkgs/intern"
)

// WhiteSpace defines "white_space": a possibly empty run of blanks, tabs
// and newlines, "//" line comments, and "/* */" comments. It produces no
// result.
func WhiteSpace(d *grammar.Dict) {
	r := grammar.Define(d, "white_space").Rule()
	g := r.Grouping()

	// the usual white space characters
	g.Rule().CharSet(grammar.Chars(" \t\n"))

	// the single line comment starting with two slashes
	line := g.Rule()
	line.Char('/')
	line.Char('/')
	line.CharSet(grammar.Range(' ', 255).Add('\t')).Sequence(nil, nil).Optional()
	line.Char('\n')

	// the traditional C comment, kept lazy with the avoid modifier
	block := g.Rule()
	block.Char('/')
	block.Char('*')
	block.CharSet(grammar.Range(' ', 255).Add('\t').Add('\n')).Sequence(nil, nil).Optional().Avoid()
	block.Char('*')
	block.Char('/')

	g.Sequence(nil, nil).Optional()
}

// Number defines "number": a digit run folded into a number payload.
func Number(d *grammar.Dict) {
	r := grammar.Define(d, "number").Rule()
	r.CharSet(grammar.Range('0', '9')).
		AddChar(ast.NumberAddChar).
		Sequence(nil, ast.UseSequenceResult)
}

// Ident defines "ident": a letter or underscore followed by letters,
// digits and underscores, interned into tbl and annotated with its start
// position.
func Ident(d *grammar.Dict, tbl *intern.Table) {
	first := grammar.Range('a', 'z').AddRange('A', 'Z').Add('_')
	rest := grammar.Range('a', 'z').AddRange('A', 'Z').Add('_').AddRange('0', '9')

	r := grammar.Define(d, "ident").Rule()
	r.CharSet(first).AddChar(ast.IdentAddChar).SetPos(ast.IdentSetPos)
	r.CharSet(rest).AddChar(ast.IdentAddChar).
		Sequence(ast.PassToSequence, ast.UseSequenceResult).Optional()
	r.EndWith(ast.MakeIdent, tbl)
}

// CharLit defines "char": a quoted character with the usual escapes.
func CharLit(d *grammar.Dict) {
	r := grammar.Define(d, "char").Rule()
	r.Char('\'').SetPos(ast.CharLitSetPos)

	g := r.Grouping()
	esc := g.Rule()
	esc.Char('\\')
	esc.CharSet(grammar.Chars(`0"'\abfnrtv`)).AddChar(ast.EscapedChar)
	norm := g.Rule()
	norm.CharSet(grammar.Range(' ', 126).Remove('\\').Remove('\'')).AddChar(ast.NormalChar)

	r.Char('\'')
	r.EndWith(ast.MakeChar, nil)
}

// StringLit defines "string": double-quoted literals with octal and simple
// escapes, where adjacent literals separated by white space concatenate.
// It references "white_space"; register WhiteSpace in the same dictionary.
func StringLit(d *grammar.Dict) {
	r := grammar.Define(d, "string").Rule()

	outer := r.Grouping()
	lit := outer.Rule()
	lit.Char('"').SetPos(ast.StringSetPos)

	inner := lit.Grouping()
	oct := inner.Rule()
	oct.Char('\\')
	oct.CharSet(grammar.Chars("01")).AddChar(ast.StringAddFirstOctal)
	oct.CharSet(grammar.Range('0', '7')).AddChar(ast.StringAddSecondOctal)
	oct.CharSet(grammar.Range('0', '7')).AddChar(ast.StringAddThirdOctal)
	esc := inner.Rule()
	esc.Char('\\')
	esc.CharSet(grammar.Chars(`0'"\nr`)).AddChar(ast.StringAddEscapedChar)
	norm := inner.Rule()
	norm.CharSet(grammar.Range(' ', 126).Remove('\\').Remove('"')).AddChar(ast.StringAddNormalChar)
	inner.Sequence(ast.PassToSequence, ast.UseSequenceResult).Optional()

	lit.Char('"')

	outer.Sequence(ast.PassToSequence, ast.UseSequenceResult).Chain().NT("white_space")
	r.EndWith(ast.MakeStr, nil)
}

// IntLit defines "int": signed decimal, octal ("0...") and hexadecimal
// ("0x...") literals with an optional U/L/L suffix.
func IntLit(d *grammar.Dict) {
	r := grammar.Define(d, "int").Rule()
	r.Char('-').AddChar(ast.IntAddChar).Optional().SetPos(ast.IntSetPos)

	g := r.Grouping()
	hex := g.Rule()
	hex.Char('0').AddChar(ast.IntAddChar).SetPos(ast.IntSetPos)
	hex.Char('x').AddChar(ast.IntAddChar)
	hex.CharSet(grammar.Range('0', '9').AddRange('A', 'F').AddRange('a', 'f')).
		AddChar(ast.IntAddChar).
		Sequence(ast.PassToSequence, ast.UseSequenceResult)
	oct := g.Rule()
	oct.Char('0').AddChar(ast.IntAddChar).SetPos(ast.IntSetPos)
	oct.CharSet(grammar.Range('0', '7')).AddChar(ast.IntAddChar).
		Sequence(ast.PassToSequence, ast.UseSequenceResult).Optional()
	dec := g.Rule()
	dec.CharSet(grammar.Range('1', '9')).AddChar(ast.IntAddChar).SetPos(ast.IntSetPos)
	dec.CharSet(grammar.Range('0', '9')).AddChar(ast.IntAddChar).
		Sequence(ast.PassToSequence, ast.UseSequenceResult).Optional()

	r.Char('U').Optional()
	r.Char('L').Optional()
	r.Char('L').Optional()
	r.EndWith(ast.MakeInt, nil)
}

// identIs accepts an identifier node equal to a specific (keyword) symbol.
func identIs(res *result.Value, arg any) bool {
	id, ok := res.Data.(*ast.Ident)
	return ok && id.Sym == arg.(*intern.Symbol)
}

// notKeyword accepts an identifier node that is not a keyword.
func notKeyword(res *result.Value, arg any) bool {
	id, ok := res.Data.(*ast.Ident)
	return ok && !id.IsKeyword
}
