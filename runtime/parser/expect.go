package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/scanless/scanless/core/grammar"
	"github.com/scanless/scanless/core/text"
)

// Frame is one entry of the non-terminal call stack: which non-terminal was
// entered and where. Frames form a parent-linked chain; the expectation
// tracker snapshots them by pointer.
type Frame struct {
	Name   string
	Pos    text.Position
	Parent *Frame
}

// MaxExpected bounds the number of recorded expectations per position.
const MaxExpected = 200

type expectation struct {
	frame *Frame
	elem  *grammar.Element
}

// expectations tracks the deepest position any terminal element failed at,
// and which elements were expected there.
type expectations struct {
	highest text.Position
	entries []expectation
}

// record notes that elem failed to match at pos under the given call stack.
// Failures before the deepest position are ignored; a deeper failure resets
// the set; entries at the deepest position are deduplicated on (frame,
// element) identity.
func (x *expectations) record(pos text.Position, frame *Frame, elem *grammar.Element) {
	if pos.Offset < x.highest.Offset {
		return
	}
	if pos.Offset > x.highest.Offset || len(x.entries) == 0 {
		x.highest = pos
		x.entries = x.entries[:0]
	}
	for _, e := range x.entries {
		if e.frame == frame && e.elem == elem {
			return
		}
	}
	if len(x.entries) < MaxExpected {
		x.entries = append(x.entries, expectation{frame: frame, elem: elem})
	}
}

// FrameInfo is one level of a call-stack snapshot in a report.
type FrameInfo struct {
	Name string
	Pos  text.Position
}

// ReportEntry is one expected element with the call stack it failed under,
// innermost first.
type ReportEntry struct {
	Element string
	Stack   []FrameInfo
}

// Report is the diagnostic produced after a failed parse: the deepest
// position reached and what was expected there.
type Report struct {
	Pos     text.Position
	Entries []ReportEntry
}

// Expected builds the expectation report for the parse so far.
func (p *Parser) Expected() *Report {
	r := &Report{Pos: p.expect.highest}
	for _, e := range p.expect.entries {
		entry := ReportEntry{Element: e.elem.Describe()}
		for f := e.frame; f != nil; f = f.Parent {
			entry.Stack = append(entry.Stack, FrameInfo{Name: f.Name, Pos: f.Pos})
		}
		r.Entries = append(r.Entries, entry)
	}
	return r
}

// Print renders the report in the plain line-oriented form.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "Expect at %s:\n", r.Pos)
	for _, e := range r.Entries {
		fmt.Fprintf(w, "- expect %s\n", e.Element)
		for _, f := range e.Stack {
			fmt.Fprintf(w, "  in %s at %s\n", f.Name, f.Pos)
		}
	}
}

func (r *Report) String() string {
	var sb strings.Builder
	r.Print(&sb)
	return sb.String()
}
