package ast

import (
	"fmt"
	"io"

	"github.com/scanless/scanless/core/result"
)

// Number is the payload of the "number" grammar: a non-negative decimal
// value folded digit by digit.
type Number struct {
	result.Base
	Value int64
}

// PrintNumber renders a number payload.
func PrintNumber(data any, w io.Writer) {
	fmt.Fprintf(w, "number %d", data.(*Number).Value)
}

// NumberAddChar folds one digit into the number. The payload is allocated
// on the first digit and mutated in place afterwards; the grammar never
// back-tracks inside a digit run, so sharing the allocation is safe.
func NumberAddChar(prev *result.Value, ch byte, out *result.Value) bool {
	if prev.Data == nil {
		n := &Number{Value: int64(ch - '0')}
		result.AssignCounted(out, n, PrintNumber)
		return true
	}
	out.Assign(prev)
	n := out.Data.(*Number)
	n.Value = 10*n.Value + int64(ch-'0')
	return true
}
