package grammar

// The builders below are the construction API for grammars. They append
// rules to non-terminals and elements to rules, keeping the declaration
// order that the parser's first-match semantics depend on.
//
// Typical shape:
//
//	g := grammar.NewDict()
//	def := grammar.Define(g, "number")
//	r := def.Rule()
//	r.CharSet(grammar.Range('0', '9')).AddChar(foldDigit).Sequence(nil, useSeq)
//
// Grouping returns a builder that adds nested rules and still exposes the
// element modifiers, so the grouping itself can be optional or a sequence.

// NTBuilder appends rules to one non-terminal.
type NTBuilder struct {
	dict       *Dict
	nt         *NonTerminal
	normalTail **Rule
	recTail    **Rule
}

// Define returns a builder for the named non-terminal, creating it when
// needed. Defining the same name twice appends to the existing rule lists.
func Define(d *Dict, name string) *NTBuilder {
	nt := d.FindOrCreate(name)
	b := &NTBuilder{dict: d, nt: nt, normalTail: &nt.Normal, recTail: &nt.Recursive}
	for *b.normalTail != nil {
		b.normalTail = &(*b.normalTail).Next
	}
	for *b.recTail != nil {
		b.recTail = &(*b.recTail).Next
	}
	return b
}

// NT returns the non-terminal under construction.
func (b *NTBuilder) NT() *NonTerminal { return b.nt }

// Rule appends a normal rule and returns its builder.
func (b *NTBuilder) Rule() *RuleBuilder {
	r := &Rule{}
	*b.normalTail = r
	b.normalTail = &r.Next
	return &RuleBuilder{dict: b.dict, rule: r, tail: &r.Elements}
}

// RecRule appends a left-recursive rule. The rule is stored without its
// leading self-reference; start folds the already-parsed left part into the
// rule's starting result (nil discards it).
func (b *NTBuilder) RecRule(start RecStartFunc) *RuleBuilder {
	r := &Rule{RecStart: start}
	*b.recTail = r
	b.recTail = &r.Next
	return &RuleBuilder{dict: b.dict, rule: r, tail: &r.Elements}
}

// RuleBuilder appends elements to one rule (or to a chain, which is a bare
// element list without an owning rule).
type RuleBuilder struct {
	dict *Dict
	rule *Rule // nil for chains
	tail **Element
}

func (r *RuleBuilder) append(e *Element) *ElemBuilder {
	*r.tail = e
	r.tail = &e.Next
	return &ElemBuilder{dict: r.dict, elem: e}
}

// NT appends a reference to the named non-terminal.
func (r *RuleBuilder) NT(name string) *ElemBuilder {
	e := NewElement(KindNonTerminal)
	e.NT = r.dict.FindOrCreate(name)
	return r.append(e)
}

// Char appends a literal byte element.
func (r *RuleBuilder) Char(ch byte) *ElemBuilder {
	e := NewElement(KindChar)
	e.Ch = ch
	return r.append(e)
}

// CharSet appends a byte-set element.
func (r *RuleBuilder) CharSet(set *CharSet) *ElemBuilder {
	e := NewElement(KindCharSet)
	e.Set = set
	return r.append(e)
}

// EndOfInput appends an end-of-input element.
func (r *RuleBuilder) EndOfInput() *ElemBuilder {
	return r.append(NewElement(KindEnd))
}

// Terminal appends a user terminal scan function element.
func (r *RuleBuilder) Terminal(fn TerminalFunc) *ElemBuilder {
	e := NewElement(KindTerminal)
	e.Terminal = fn
	return r.append(e)
}

// Grouping appends a grouping element; nested rules are added through the
// returned builder, which also carries the element modifiers.
func (r *RuleBuilder) Grouping() *GroupBuilder {
	e := NewElement(KindGrouping)
	eb := r.append(e)
	return &GroupBuilder{ElemBuilder: eb, tail: &e.Rules}
}

// EndWith registers the rule's end callback and its opaque data.
func (r *RuleBuilder) EndWith(fn EndFunc, data any) *RuleBuilder {
	if r.rule != nil {
		r.rule.End = fn
		r.rule.EndData = data
	}
	return r
}

// GroupBuilder builds the rule list of a grouping element. It embeds the
// element builder so modifiers apply to the grouping itself.
type GroupBuilder struct {
	*ElemBuilder
	tail **Rule
}

// Rule appends an alternative to the grouping.
func (g *GroupBuilder) Rule() *RuleBuilder {
	r := &Rule{}
	*g.tail = r
	g.tail = &r.Next
	return &RuleBuilder{dict: g.dict, rule: r, tail: &r.Elements}
}

// ElemBuilder sets modifiers and callbacks on one element.
type ElemBuilder struct {
	dict *Dict
	elem *Element
}

// Elem returns the element under construction.
func (e *ElemBuilder) Elem() *Element { return e.elem }

// Optional marks the element optional.
func (e *ElemBuilder) Optional() *ElemBuilder {
	e.elem.Optional = true
	return e
}

// Avoid marks the element avoided: the rest of the rule is preferred over
// consuming it.
func (e *ElemBuilder) Avoid() *ElemBuilder {
	e.elem.Avoid = true
	return e
}

// Sequence marks the element as a sequence with the given accumulator
// callbacks (either may be nil).
func (e *ElemBuilder) Sequence(begin BeginSeqFunc, add AddSeqFunc) *ElemBuilder {
	e.elem.Sequence = true
	e.elem.BeginSeq = begin
	e.elem.AddSeq = add
	return e
}

// BackTracking switches a sequence from greedy to back-tracking
// enumeration.
func (e *ElemBuilder) BackTracking() *ElemBuilder {
	e.elem.BackTracking = true
	return e
}

// Chain returns a builder for the chain elements parsed between the items
// of a sequence.
func (e *ElemBuilder) Chain() *RuleBuilder {
	return &RuleBuilder{dict: e.dict, tail: &e.elem.Chain}
}

// AddChar sets the byte-fold callback.
func (e *ElemBuilder) AddChar(fn AddCharFunc) *ElemBuilder {
	e.elem.AddChar = fn
	return e
}

// Cond sets the guard called after a non-terminal is parsed.
func (e *ElemBuilder) Cond(fn ConditionFunc, arg any) *ElemBuilder {
	e.elem.Condition = fn
	e.elem.ConditionArg = arg
	return e
}

// Add sets the element-fold callback.
func (e *ElemBuilder) Add(fn AddFunc) *ElemBuilder {
	e.elem.Add = fn
	return e
}

// AddSkip sets the callback applied when an optional element is skipped.
func (e *ElemBuilder) AddSkip(fn AddSkipFunc) *ElemBuilder {
	e.elem.AddSkip = fn
	return e
}

// SetPos sets the position-annotation callback.
func (e *ElemBuilder) SetPos(fn SetPosFunc) *ElemBuilder {
	e.elem.SetPos = fn
	return e
}

// Expect sets the message used for this element in expectation reports.
func (e *ElemBuilder) Expect(msg string) *ElemBuilder {
	e.elem.ExpectMsg = msg
	return e
}
