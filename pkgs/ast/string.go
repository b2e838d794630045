package ast

import (
	"io"

	"github.com/scanless/scanless/core/result"
	"github.com/scanless/scanless/core/text"
)

// StringData accumulates a string literal (possibly spliced from several
// adjacent literals) while it is parsed. The buffer carries an explicit
// length: an embedded NUL is an ordinary byte, not a terminator.
type StringData struct {
	result.Base
	buf   []byte
	octal byte
	pos   text.Position
}

// PrintStringData renders the payload accumulated so far.
func PrintStringData(data any, w io.Writer) {
	sd := data.(*StringData)
	io.WriteString(w, `string "`)
	for _, ch := range sd.buf {
		printSingleChar(ch, w)
	}
	io.WriteString(w, `"`)
}

// StringSetPos allocates the payload at the first opening quote. Later
// quotes of a concatenation leave the existing payload in place.
func StringSetPos(res *result.Value, pos text.Position) {
	if res.Data == nil {
		sd := &StringData{pos: pos}
		result.AssignCounted(res, sd, PrintStringData)
	}
}

// StringAddNormalChar appends one literal byte.
func StringAddNormalChar(prev *result.Value, ch byte, out *result.Value) bool {
	out.Assign(prev)
	sd := out.Data.(*StringData)
	sd.buf = append(sd.buf, ch)
	return true
}

// StringAddEscapedChar appends the byte a simple escape denotes.
func StringAddEscapedChar(prev *result.Value, ch byte, out *result.Value) bool {
	switch ch {
	case '0':
		ch = 0
	case 'n':
		ch = '\n'
	case 'r':
		ch = '\r'
	}
	return StringAddNormalChar(prev, ch, out)
}

// StringAddFirstOctal through StringAddThirdOctal assemble a three-digit
// octal escape; the byte is appended when the last digit arrives.
func StringAddFirstOctal(prev *result.Value, ch byte, out *result.Value) bool {
	out.Assign(prev)
	out.Data.(*StringData).octal = (ch - '0') << 6
	return true
}

func StringAddSecondOctal(prev *result.Value, ch byte, out *result.Value) bool {
	out.Assign(prev)
	sd := out.Data.(*StringData)
	sd.octal |= (ch - '0') << 3
	return true
}

func StringAddThirdOctal(prev *result.Value, ch byte, out *result.Value) bool {
	sd := prev.Data.(*StringData)
	return StringAddNormalChar(prev, sd.octal|(ch-'0'), out)
}

// Str is the string literal tree node. Value keeps its explicit length;
// embedded NUL bytes survive.
type Str struct {
	Node
	Value string
}

// StrType is the type name of string literal nodes.
const StrType = "string"

// PrintStr renders a string node as `string "..."`.
func PrintStr(data any, w io.Writer) {
	s := data.(*Str)
	io.WriteString(w, `string "`)
	for i := 0; i < len(s.Value); i++ {
		printSingleChar(s.Value[i], w)
	}
	io.WriteString(w, `"`)
}

// MakeStr is a rule end callback producing a string literal node.
func MakeStr(ruleResult *result.Value, data any, out *result.Value) bool {
	sd := ruleResult.Data.(*StringData)

	s := &Str{Value: string(sd.buf)}
	s.Node.TypeName = StrType
	s.Node.SetPos(sd.pos)
	result.AssignCounted(out, s, PrintStr)
	return true
}
