package ast

import (
	"fmt"
	"io"

	"github.com/scanless/scanless/core/result"
	"github.com/scanless/scanless/core/text"
)

// IntData accumulates an integer literal. A single callback handles every
// byte of the literal by keeping a small state machine in the payload:
// which branch of signed decimal / octal / hexadecimal the literal is in.
// Overflow wraps silently.
type IntData struct {
	result.Base
	Value int64
	Sign  int64
	state intState
	Pos   text.Position
}

type intState int

const (
	intStart   intState = iota // nothing consumed
	intSigned                  // after '-'
	intZero                    // after a leading '0'
	intHexOpen                 // after "0x", first hex digit pending
	intHex                     // inside hex digits
	intOctal                   // inside octal digits
	intDecimal                 // inside decimal digits
)

// PrintIntData renders the payload as "int N".
func PrintIntData(data any, w io.Writer) {
	d := data.(*IntData)
	fmt.Fprintf(w, "int %d", d.Sign*d.Value)
}

// IntSetPos records the literal's start position once; the grammar calls
// it on each of the alternative leading elements.
func IntSetPos(res *result.Value, pos text.Position) {
	if res.Data != nil {
		d := res.Data.(*IntData)
		if d.Pos.Line < 0 {
			d.Pos = pos
		}
	}
}

// IntAddChar consumes one byte of an integer literal, allocating the
// payload on the first byte. It rejects bytes that no continuation of the
// current branch allows, which vetoes the enclosing rule.
func IntAddChar(prev *result.Value, ch byte, out *result.Value) bool {
	if prev.Data == nil {
		d := &IntData{Sign: 1, Pos: text.Position{Line: -1}}
		result.AssignCounted(out, d, PrintIntData)
	} else {
		out.Assign(prev)
	}
	d := out.Data.(*IntData)

	switch d.state {
	case intStart:
		switch {
		case ch == '-':
			d.Sign = -1
			d.state = intSigned
		case ch == '0':
			d.state = intZero
		case '1' <= ch && ch <= '9':
			d.Value = int64(ch - '0')
			d.state = intDecimal
		default:
			return false
		}
	case intSigned:
		switch {
		case ch == '0':
			d.state = intZero
		case '1' <= ch && ch <= '9':
			d.Value = int64(ch - '0')
			d.state = intDecimal
		default:
			return false
		}
	case intZero:
		switch {
		case ch == 'x':
			d.state = intHexOpen
		case '0' <= ch && ch <= '7':
			d.Value = int64(ch - '0')
			d.state = intOctal
		default:
			return false
		}
	case intHexOpen, intHex:
		v, ok := hexDigit(ch)
		if !ok {
			return false
		}
		d.Value = 16*d.Value + v
		d.state = intHex
	case intOctal:
		if ch < '0' || ch > '7' {
			return false
		}
		d.Value = 8*d.Value + int64(ch-'0')
	case intDecimal:
		if ch < '0' || ch > '9' {
			return false
		}
		d.Value = 10*d.Value + int64(ch-'0')
	}
	return true
}

func hexDigit(ch byte) (int64, bool) {
	switch {
	case '0' <= ch && ch <= '9':
		return int64(ch - '0'), true
	case 'A' <= ch && ch <= 'F':
		return int64(ch-'A') + 10, true
	case 'a' <= ch && ch <= 'f':
		return int64(ch-'a') + 10, true
	}
	return 0, false
}

// Int is the integer literal tree node.
type Int struct {
	Node
	Value int64
}

// IntType is the type name of integer literal nodes.
const IntType = "int"

// PrintInt renders an integer node as "int N".
func PrintInt(data any, w io.Writer) {
	fmt.Fprintf(w, "int %d", data.(*Int).Value)
}

// MakeInt is a rule end callback producing an integer literal node.
func MakeInt(ruleResult *result.Value, data any, out *result.Value) bool {
	d := ruleResult.Data.(*IntData)

	n := &Int{Value: d.Sign * d.Value}
	n.Node.TypeName = IntType
	n.Node.SetPos(d.Pos)
	result.AssignCounted(out, n, PrintInt)
	return true
}
