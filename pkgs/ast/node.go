// Package ast provides the result builders the sample grammars assemble
// their parse results with: reference-counted tree nodes with ordered
// children, and scalar payloads for numbers, identifiers, character
// literals, strings and integers.
//
// The parser engine never looks inside these types; they reach it only
// through the callback slots of grammar elements and rules.
package ast

import (
	"fmt"
	"io"

	"github.com/scanless/scanless/core/result"
	"github.com/scanless/scanless/core/text"
)

// Node is the common header of tree-shaped results: a type name plus the
// source position the node started at.
type Node struct {
	result.Base
	TypeName string
	Line     int
	Column   int
}

// SetPos records the node's start position.
func (n *Node) SetPos(pos text.Position) {
	n.Line = pos.Line
	n.Column = pos.Column
}

// Tree is a node with ordered children.
type Tree struct {
	Node
	Children []result.Value
}

func releaseTree(data any) {
	t := data.(*Tree)
	for i := range t.Children {
		t.Children[i].Release()
	}
	t.Children = nil
}

// PrintTree renders a tree as "name(child,child,...)".
func PrintTree(data any, w io.Writer) {
	t := data.(*Tree)
	io.WriteString(w, t.TypeName)
	io.WriteString(w, "(")
	for i := range t.Children {
		if i > 0 {
			io.WriteString(w, ",")
		}
		t.Children[i].Print(w)
	}
	io.WriteString(w, ")")
}

// ChildList accumulates rule results as a backwards-linked chain; the tree
// constructors walk it to materialize children in declaration order.
type ChildList struct {
	result.Base
	Prev  *ChildList
	Child result.Value
}

func releaseChildList(data any) {
	cl := data.(*ChildList)
	cl.Child.Release()
	if cl.Prev != nil {
		result.DecCounted(cl.Prev)
	}
}

func newChildList(prev *ChildList) *ChildList {
	cl := &ChildList{Prev: prev}
	cl.Base.Release = releaseChildList
	return cl
}

func childListOf(v *result.Value) *ChildList {
	if v.Data == nil {
		return nil
	}
	return v.Data.(*ChildList)
}

// newTreeWithChildren materializes a tree node from a child chain.
func newTreeWithChildren(name string, children *ChildList) *Tree {
	t := &Tree{}
	t.Node.TypeName = name
	t.Base.Release = releaseTree

	n := 0
	for c := children; c != nil; c = c.Prev {
		n++
	}
	t.Children = make([]result.Value, n)
	for c := children; c != nil; c = c.Prev {
		n--
		t.Children[n].Assign(&c.Child)
	}
	return t
}

// AddChild folds an element result onto the previous child chain.
func AddChild(prev, elem *result.Value, out *result.Value) bool {
	prevList := childListOf(prev)
	if prevList != nil {
		result.IncCounted(prevList)
	}
	cl := newChildList(prevList)
	cl.Child.Assign(elem)
	result.AssignCounted(out, cl, nil)
	return true
}

// RecAddChild starts a child chain from the already-parsed left part of a
// left-recursive rule.
func RecAddChild(rec *result.Value, out *result.Value) bool {
	cl := newChildList(nil)
	cl.Child.Assign(rec)
	result.AssignCounted(out, cl, nil)
	return true
}

// TakeChild forwards the element result, dropping the previous one.
func TakeChild(prev, elem *result.Value, out *result.Value) bool {
	out.Assign(elem)
	return true
}

// MakeTree is a rule end callback: it materializes a tree node from the
// rule's child chain. The rule's end data is the node's type name.
func MakeTree(ruleResult *result.Value, data any, out *result.Value) bool {
	name, _ := data.(string)
	t := newTreeWithChildren(name, childListOf(ruleResult))
	result.AssignCounted(out, t, PrintTree)
	return true
}

// PassTree is a rule end callback for single-child rules: it forwards the
// one accumulated child.
func PassTree(ruleResult *result.Value, data any, out *result.Value) bool {
	cl := childListOf(ruleResult)
	out.Transfer(&cl.Child)
	return true
}

// AddSeqAsList folds a terminated sequence onto the previous child chain
// as one "list" tree holding the sequence's items.
func AddSeqAsList(prev, seq *result.Value, out *result.Value) bool {
	prevList := childListOf(prev)
	if prevList != nil {
		result.IncCounted(prevList)
	}
	cl := newChildList(prevList)
	list := newTreeWithChildren("list", childListOf(seq))
	result.AssignCounted(&cl.Child, list, PrintTree)
	result.AssignCounted(out, cl, nil)
	return true
}

// PassToSequence seeds a sequence accumulator with the previous result.
func PassToSequence(prev, seq *result.Value) {
	seq.Assign(prev)
}

// UseSequenceResult adopts the accumulated sequence as the fold result.
func UseSequenceResult(prev, seq *result.Value, out *result.Value) bool {
	out.Assign(seq)
	return true
}

// printSingleChar renders a byte inside quoted output, escaping the few
// bytes that would garble it.
func printSingleChar(ch byte, w io.Writer) {
	switch ch {
	case 0:
		io.WriteString(w, `\0`)
	case '\'':
		io.WriteString(w, `\'`)
	case '\n':
		io.WriteString(w, `\n`)
	default:
		fmt.Fprintf(w, "%c", ch)
	}
}
