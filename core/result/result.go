// Package result implements the opaque value protocol between the parser
// engine and the grammar callbacks that assemble parse results.
//
// The engine never interprets the values a grammar produces. It only moves
// them around and manages their lifetime through a pair of increment and
// decrement functions carried alongside the data. Payloads embed a Base
// header as their first field; the generic counting functions operate on
// that header.
//
// The discipline is strict: every Value that received a payload is released
// exactly once before it goes out of scope, on success paths and failure
// paths alike. Back-tracking discards whole subtrees of intermediate
// results this way.
package result

import (
	"io"
	"strings"
)

// PrintFunc renders a payload to a writer.
type PrintFunc func(data any, w io.Writer)

// Value is the opaque carrier the engine passes between callbacks. The zero
// Value is the null result: no data, no lifetime management.
type Value struct {
	// Data is the payload. Callbacks type-assert it; the engine never does.
	Data any

	inc   func(data any)
	dec   func(data any)
	print PrintFunc
}

// Empty reports whether the value carries no payload.
func (v *Value) Empty() bool { return v.Data == nil }

// Init resets the value to the null result without releasing the payload.
// Transfer uses it on the source; most callers want Release instead.
func (v *Value) Init() {
	v.Data = nil
	v.inc = nil
	v.dec = nil
	v.print = nil
}

// Assign makes trg refer to src's payload, incrementing the payload's count
// and releasing whatever trg held before. Self-assignment is safe.
func (trg *Value) Assign(src *Value) {
	oldDec := trg.dec
	oldData := trg.Data
	if src.inc != nil && src.Data != nil {
		src.inc(src.Data)
	}
	trg.Data = src.Data
	trg.inc = src.inc
	trg.dec = src.dec
	trg.print = src.print
	if oldDec != nil && oldData != nil {
		oldDec(oldData)
	}
}

// Transfer moves src's payload into trg without touching its count, then
// re-initializes src. Whatever trg held before is released.
func (trg *Value) Transfer(src *Value) {
	oldDec := trg.dec
	oldData := trg.Data
	trg.Data = src.Data
	trg.inc = src.inc
	trg.dec = src.dec
	trg.print = src.print
	src.Init()
	if oldDec != nil && oldData != nil {
		oldDec(oldData)
	}
}

// Release decrements the payload's count and resets the value to null.
func (v *Value) Release() {
	if v.dec != nil && v.Data != nil {
		v.dec(v.Data)
	}
	v.Init()
}

// Print renders the payload, or "<>" when there is nothing to show.
func (v *Value) Print(w io.Writer) {
	if v.print == nil || v.Data == nil {
		io.WriteString(w, "<>")
		return
	}
	v.print(v.Data, w)
}

func (v *Value) String() string {
	var sb strings.Builder
	v.Print(&sb)
	return sb.String()
}
