package ast

import (
	"io"

	"github.com/scanless/scanless/core/result"
	"github.com/scanless/scanless/core/text"
)

// CharData accumulates a character literal while it is parsed.
type CharData struct {
	result.Base
	Ch  byte
	Pos text.Position
}

// PrintCharData renders the payload as "char 'c'".
func PrintCharData(data any, w io.Writer) {
	io.WriteString(w, "char '")
	printSingleChar(data.(*CharData).Ch, w)
	io.WriteString(w, "'")
}

// CharLitSetPos allocates the payload when the opening quote matches,
// recording its position.
func CharLitSetPos(res *result.Value, pos text.Position) {
	cd := &CharData{Pos: pos}
	result.AssignCounted(res, cd, PrintCharData)
}

// NormalChar stores a literal byte in the payload.
func NormalChar(prev *result.Value, ch byte, out *result.Value) bool {
	out.Assign(prev)
	out.Data.(*CharData).Ch = ch
	return true
}

// EscapedChar stores the byte an escape sequence denotes.
func EscapedChar(prev *result.Value, ch byte, out *result.Value) bool {
	return NormalChar(prev, unescape(ch), out)
}

func unescape(ch byte) byte {
	switch ch {
	case '0':
		return 0
	case 'a':
		return '\a'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'v':
		return '\v'
	default:
		return ch
	}
}

// Char is the character literal tree node.
type Char struct {
	Node
	Ch byte
}

// CharType is the type name of character literal nodes.
const CharType = "char"

// PrintChar renders a character node as "char 'c'".
func PrintChar(data any, w io.Writer) {
	io.WriteString(w, "char '")
	printSingleChar(data.(*Char).Ch, w)
	io.WriteString(w, "'")
}

// MakeChar is a rule end callback producing a character literal node.
func MakeChar(ruleResult *result.Value, data any, out *result.Value) bool {
	cd := ruleResult.Data.(*CharData)

	c := &Char{Ch: cd.Ch}
	c.Node.TypeName = CharType
	c.Node.SetPos(cd.Pos)
	result.AssignCounted(out, c, PrintChar)
	return true
}
