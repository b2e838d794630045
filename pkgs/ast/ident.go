package ast

import (
	"io"

	"github.com/scanless/scanless/core/result"
	"github.com/scanless/scanless/core/text"
	"github.com/scanless/scanless/pkgs/intern"
)

// identKeep bounds how many bytes of an identifier are kept. The grammar
// keeps matching past this; longer identifiers intern to the same symbol
// as their 64-byte prefix.
const identKeep = 64

// IdentData accumulates the bytes of an identifier while it is parsed.
type IdentData struct {
	result.Base
	buf [identKeep]byte
	n   int
	pos text.Position
}

// IdentAddChar appends one byte to the identifier under construction.
func IdentAddChar(prev *result.Value, ch byte, out *result.Value) bool {
	if prev.Data == nil {
		d := &IdentData{}
		d.buf[0] = ch
		d.n = 1
		result.AssignCounted(out, d, nil)
		return true
	}
	out.Assign(prev)
	d := out.Data.(*IdentData)
	if d.n < identKeep {
		d.buf[d.n] = ch
		d.n++
	}
	return true
}

// IdentSetPos records the identifier's start position.
func IdentSetPos(res *result.Value, pos text.Position) {
	if res.Data != nil {
		res.Data.(*IdentData).pos = pos
	}
}

// Ident is the identifier tree node: an interned symbol plus whether it
// was a keyword at the time it was parsed.
type Ident struct {
	Node
	Sym       *intern.Symbol
	IsKeyword bool
}

// PrintIdent renders an identifier node as its name.
func PrintIdent(data any, w io.Writer) {
	io.WriteString(w, data.(*Ident).Sym.Name)
}

// IdentType is the type name of identifier nodes.
const IdentType = "ident"

// MakeIdent is a rule end callback producing an identifier node. The
// rule's end data is the *intern.Table to intern into.
func MakeIdent(ruleResult *result.Value, data any, out *result.Value) bool {
	d, ok := ruleResult.Data.(*IdentData)
	if !ok {
		return true
	}
	tbl := data.(*intern.Table)
	sym := tbl.Intern(string(d.buf[:d.n]))

	id := &Ident{Sym: sym, IsKeyword: sym.IsKeyword()}
	id.Node.TypeName = IdentType
	id.Node.SetPos(d.pos)
	result.AssignCounted(out, id, PrintIdent)
	return true
}
