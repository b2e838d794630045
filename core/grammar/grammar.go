// Package grammar holds the in-memory representation of a grammar: a
// dictionary of non-terminals, each owning a list of normal rules and a list
// of direct left-recursive rules, which in turn own chains of elements.
//
// A grammar is an extended BNF: elements can be optional, sequential (with
// an optional chain between the items), grouped, and marked avoid to prefer
// the rest of the rule over consuming them. The scanner is folded into the
// grammar, so terminals are single bytes, byte sets, end-of-input, or user
// scan functions.
//
// Grammars are built in Go code through the fluent builders in this package;
// there is no grammar file format.
package grammar

import (
	"github.com/scanless/scanless/core/result"
	"github.com/scanless/scanless/core/text"
)

// EndFunc is called when a rule's element chain has been fully parsed. It
// folds the rule result into the result returned for the rule; returning
// false fails the rule. data is the opaque value registered with the rule.
type EndFunc func(ruleResult *result.Value, data any, out *result.Value) bool

// RecStartFunc runs at the start of a left-recursive rule iteration. It
// folds the already-parsed left part into the starting result for the rule;
// returning false skips the rule for this iteration.
type RecStartFunc func(recResult *result.Value, out *result.Value) bool

// AddCharFunc folds a matched byte into the previous result.
type AddCharFunc func(prev *result.Value, ch byte, out *result.Value) bool

// ConditionFunc guards a parsed non-terminal; returning false rejects it.
type ConditionFunc func(res *result.Value, arg any) bool

// AddFunc folds an element result into the previous result.
type AddFunc func(prev, elem *result.Value, out *result.Value) bool

// AddSkipFunc folds the absence of a skipped optional element into the
// previous result.
type AddSkipFunc func(prev *result.Value, out *result.Value) bool

// BeginSeqFunc seeds the accumulator at the start of a sequence.
type BeginSeqFunc func(prev, seq *result.Value)

// AddSeqFunc folds a terminated sequence accumulator into the previous
// result.
type AddSeqFunc func(prev, seq *result.Value, out *result.Value) bool

// SetPosFunc annotates a result with the position an element started at.
type SetPosFunc func(res *result.Value, pos text.Position)

// TerminalFunc is a user-defined terminal scanner. It receives the
// unscanned tail of the input and a fresh result to fill in, and returns
// the number of bytes it consumed; zero means no match.
type TerminalFunc func(input []byte, res *result.Value) int

// NonTerminal is a named grammar symbol with its rules. Rules are tried in
// declaration order; Recursive holds the direct left-recursive rules stored
// without their leading self-reference.
type NonTerminal struct {
	Name      string
	Normal    *Rule
	Recursive *Rule
}

// Rule is one alternative for a non-terminal (or grouping): a chain of
// elements plus the callbacks that close it.
type Rule struct {
	Elements *Element

	End     EndFunc
	EndData any

	// RecStart is only meaningful on rules in a non-terminal's recursive
	// list. When nil, the already-parsed left part is discarded and the
	// rule starts from an empty result.
	RecStart RecStartFunc

	Next *Rule
}

// Dict is the non-terminal dictionary. Insertion order is preserved;
// referring to a name creates an empty non-terminal (which fails to parse
// until rules are added).
type Dict struct {
	byName map[string]*NonTerminal
	order  []*NonTerminal
}

// NewDict returns an empty dictionary.
func NewDict() *Dict {
	return &Dict{byName: make(map[string]*NonTerminal)}
}

// FindOrCreate returns the non-terminal with the given name, creating an
// empty one if it does not exist yet.
func (d *Dict) FindOrCreate(name string) *NonTerminal {
	if nt, ok := d.byName[name]; ok {
		return nt
	}
	nt := &NonTerminal{Name: name}
	d.byName[name] = nt
	d.order = append(d.order, nt)
	return nt
}

// Lookup returns the named non-terminal without creating it.
func (d *Dict) Lookup(name string) (*NonTerminal, bool) {
	nt, ok := d.byName[name]
	return nt, ok
}

// NonTerminals returns all non-terminals in insertion order.
func (d *Dict) NonTerminals() []*NonTerminal { return d.order }
