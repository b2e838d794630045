// Package parser implements the back-tracking recursive-descent interpreter
// that drives a grammar over a text buffer.
//
// The interpreter operates on the grammar graph directly: no code or tables
// are generated. Four mutually recursive functions do the work: ParseNT
// tries a non-terminal's rules (including its direct left-recursive rules),
// parseRule walks a rule's element chain, parseSeq enumerates back-tracking
// sequences, and parseElement matches one element.
//
// Failure is always local: a failing parse function rolls the cursor back
// to its entry position and returns false, and the caller tries the next
// alternative. Results flow through the callbacks of the grammar; every
// intermediate result is released on every exit path, which keeps payload
// reference counts balanced under arbitrary back-tracking.
package parser

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/scanless/scanless/core/grammar"
	"github.com/scanless/scanless/core/result"
	"github.com/scanless/scanless/core/text"
)

// Parser carries the state of one parse: the input cursor, the
// non-terminal call stack, the optional cache, and the expectation
// tracker. A Parser is single-use per input and not safe for concurrent
// use.
type Parser struct {
	buf       *text.Buffer
	stack     *Frame
	cache     Cache
	expect    expectations
	trace     *logrus.Logger
	ntTrace   *logrus.Logger
	telemetry *Telemetry
	depth     int
}

// New returns a parser over the given buffer.
func New(buf *text.Buffer, opts ...Option) *Parser {
	p := &Parser{buf: buf}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Buffer returns the parser's input buffer.
func (p *Parser) Buffer() *text.Buffer { return p.buf }

// Parse runs the named non-terminal of dict over input and requires the
// whole input to be consumed. It returns the produced result, the parser
// (for the expectation report and telemetry), and whether the parse
// succeeded.
func Parse(dict *grammar.Dict, start string, input []byte, opts ...Option) (result.Value, *Parser, bool) {
	buf := text.New(input)
	p := New(buf, opts...)
	nt := dict.FindOrCreate(start)

	var began time.Time
	if p.telemetry != nil && p.telemetry.mode >= TelemetryTiming {
		began = time.Now()
	}

	var res result.Value
	ok := p.ParseNT(nt, &res) && buf.End()

	if p.telemetry != nil && p.telemetry.mode >= TelemetryTiming {
		p.telemetry.ParseTime = time.Since(began)
	}
	return res, p, ok
}

// ParseNT parses non-terminal nt at the current position, storing the
// produced value in res on success. On failure the cursor is unchanged.
func (p *Parser) ParseNT(nt *grammar.NonTerminal, res *result.Value) bool {
	name := nt.Name

	if p.telemetry != nil {
		p.telemetry.NTCount++
		if p.depth+1 > p.telemetry.MaxDepth {
			p.telemetry.MaxDepth = p.depth + 1
		}
	}

	// The cache first. An unknown entry is seeded as failed before the
	// rules run, so a revisit of the same (position, nt) pair inside this
	// call fails instead of recursing forever.
	var item *CacheItem
	if p.cache != nil {
		item = p.cache.Hit(p.buf.Pos().Offset, name)
		if item != nil {
			switch item.Outcome {
			case Success:
				if p.telemetry != nil {
					p.telemetry.CacheHits++
				}
				if p.trace != nil {
					p.tracef(p.trace, "%s at %s: cached result %s", name, p.buf.Pos(), item.Result.String())
				}
				res.Assign(&item.Result)
				p.buf.SetPos(item.NextPos)
				return true
			case Fail:
				if p.telemetry != nil {
					p.telemetry.CacheHits++
				}
				p.tracef(p.trace, "%s at %s: cached failure", name, p.buf.Pos())
				return false
			}
			if p.telemetry != nil {
				p.telemetry.CacheMisses++
			}
			item.Outcome = Fail
		}
	}

	p.stack = &Frame{Name: name, Pos: p.buf.Pos(), Parent: p.stack}
	p.tracef(p.trace, "enter %s at %s", name, p.buf.Pos())
	p.tracef(p.ntTrace, "enter %s", name)
	p.depth++

	parsed := false
	for rule := nt.Normal; rule != nil; rule = rule.Next {
		var start result.Value
		if p.parseRule(rule.Elements, &start, rule, res) {
			start.Release()
			parsed = true
			break
		}
		start.Release()
	}

	if !parsed {
		p.depth--
		p.tracef(p.trace, "leave %s: failed", name)
		p.tracef(p.ntTrace, "failed %s", name)
		p.stack = p.stack.Parent
		return false
	}

	// A normal rule matched; now keep folding left-recursive rules over
	// the result until a full pass matches none.
	for again := true; again; {
		again = false
		for rule := nt.Recursive; rule != nil; rule = rule.Next {
			var start result.Value
			if rule.RecStart != nil {
				if !rule.RecStart(res, &start) {
					start.Release()
					continue
				}
			}
			var ruleRes result.Value
			if p.parseRule(rule.Elements, &start, rule, &ruleRes) {
				again = true
				res.Assign(&ruleRes)
				ruleRes.Release()
				start.Release()
				break
			}
			ruleRes.Release()
			start.Release()
		}
	}

	if item != nil {
		item.Result.Assign(res)
		item.Outcome = Success
		item.NextPos = p.buf.Pos()
	}

	p.depth--
	if p.trace != nil {
		p.tracef(p.trace, "leave %s = %s", name, res.String())
	}
	p.tracef(p.ntTrace, "parsed %s", name)
	p.stack = p.stack.Parent
	return true
}

// parseRule parses the remainder of a rule starting at elem, with prev as
// the result of the elements before it. At the end of the chain the owning
// rule's end callback closes the result. On failure the cursor is rolled
// back to its value on entry.
func (p *Parser) parseRule(elem *grammar.Element, prev *result.Value, rule *grammar.Rule, out *result.Value) bool {
	if elem == nil {
		if rule == nil || rule.End == nil {
			out.Assign(prev)
			return true
		}
		return rule.End(prev, rule.EndData, out)
	}

	if p.trace != nil {
		p.tracef(p.trace, "rule at %s: %s", p.buf.Pos(), grammar.ElementString(elem))
	}

	// An optional element marked avoid: try the rest of the rule without
	// it first.
	if elem.Optional && elem.Avoid {
		var skip result.Value
		if !p.applySkip(elem, prev, &skip) {
			skip.Release()
			return false
		}
		if p.parseRule(elem.Next, &skip, rule, out) {
			skip.Release()
			return true
		}
		skip.Release()
	}

	sp := p.buf.Pos()

	if elem.Sequence {
		var seqBegin result.Value
		if elem.BeginSeq != nil {
			elem.BeginSeq(prev, &seqBegin)
		}

		var seqElem result.Value
		if p.parseElement(elem, &seqBegin, &seqElem) {
			if elem.BackTracking {
				if p.parseSeq(elem, &seqElem, prev, rule, out) {
					seqElem.Release()
					seqBegin.Release()
					return true
				}
			} else if p.parseGreedySeq(elem, &seqElem, prev, rule, out) {
				seqElem.Release()
				seqBegin.Release()
				return true
			}
		}
		seqElem.Release()
		seqBegin.Release()
	} else {
		var elemRes result.Value
		if p.parseElement(elem, prev, &elemRes) {
			if p.parseRule(elem.Next, &elemRes, rule, out) {
				elemRes.Release()
				return true
			}
		}
		elemRes.Release()
	}

	p.buf.SetPos(sp)

	// An optional element without avoid: skip it and try the rest.
	if elem.Optional && !elem.Avoid {
		var skip result.Value
		if !p.applySkip(elem, prev, &skip) {
			skip.Release()
			return false
		}
		if p.parseRule(elem.Next, &skip, rule, out) {
			skip.Release()
			return true
		}
		skip.Release()
	}

	return false
}

// parseGreedySeq extends a non-back-tracking sequence for as long as the
// element (preceded by its chain, when present) keeps matching, then folds
// the accumulator and parses the rest of the rule. seqElem is the
// accumulator holding the items parsed so far; it is extended in place.
// With avoid set, terminating the sequence is attempted before every
// extension.
func (p *Parser) parseGreedySeq(elem *grammar.Element, seqElem, prev *result.Value, rule *grammar.Rule, out *result.Value) bool {
	for {
		if elem.Avoid {
			var folded result.Value
			if !p.foldSeq(elem, prev, seqElem, &folded) {
				folded.Release()
				break
			}
			if p.parseRule(elem.Next, &folded, rule, out) {
				folded.Release()
				return true
			}
			folded.Release()
		}

		itemStart := p.buf.Pos()

		if elem.Chain != nil {
			var chainPrev, chainRes result.Value
			ok := p.parseRule(elem.Chain, &chainPrev, nil, &chainRes)
			chainRes.Release()
			chainPrev.Release()
			if !ok {
				break
			}
		}

		var next result.Value
		if p.parseElement(elem, seqElem, &next) {
			seqElem.Assign(&next)
			next.Release()
		} else {
			p.buf.SetPos(itemStart)
			next.Release()
			break
		}
	}

	var folded result.Value
	if p.foldSeq(elem, prev, seqElem, &folded) {
		if p.parseRule(elem.Next, &folded, rule, out) {
			folded.Release()
			return true
		}
	}
	folded.Release()
	return false
}

// parseSeq enumerates a back-tracking sequence: each recursion level first
// tries to terminate (immediately with avoid, after failing to extend
// without), and otherwise extends the accumulator by one more item.
func (p *Parser) parseSeq(elem *grammar.Element, prevSeq, prev *result.Value, rule *grammar.Rule, out *result.Value) bool {
	if elem.Avoid {
		var folded result.Value
		if !p.foldSeq(elem, prev, prevSeq, &folded) {
			folded.Release()
			return false
		}
		if p.parseRule(elem.Next, &folded, rule, out) {
			folded.Release()
			return true
		}
		folded.Release()
	}

	sp := p.buf.Pos()

	extend := true
	if elem.Chain != nil {
		var chainPrev, chainRes result.Value
		extend = p.parseRule(elem.Chain, &chainPrev, nil, &chainRes)
		chainRes.Release()
		chainPrev.Release()
	}
	if extend {
		var seqElem result.Value
		if p.parseElement(elem, prevSeq, &seqElem) {
			if p.parseSeq(elem, &seqElem, prev, rule, out) {
				seqElem.Release()
				return true
			}
		}
		seqElem.Release()
	}

	p.buf.SetPos(sp)

	if !elem.Avoid {
		var folded result.Value
		if !p.foldSeq(elem, prev, prevSeq, &folded) {
			folded.Release()
			return false
		}
		if p.parseRule(elem.Next, &folded, rule, out) {
			folded.Release()
			return true
		}
		folded.Release()
	}

	return false
}

// parseElement matches a single element, ignoring its optional and
// sequence modifiers. On failure the cursor is rolled back to its value on
// entry; failing terminal elements are reported to the expectation
// tracker.
func (p *Parser) parseElement(elem *grammar.Element, prev *result.Value, out *result.Value) bool {
	sp := p.buf.Pos()

	switch elem.Kind {
	case grammar.KindNonTerminal:
		var ntRes result.Value
		if !p.ParseNT(elem.NT, &ntRes) {
			ntRes.Release()
			return false
		}
		if elem.Condition != nil && !elem.Condition(&ntRes, elem.ConditionArg) {
			ntRes.Release()
			p.buf.SetPos(sp)
			return false
		}
		if elem.Add == nil {
			out.Assign(prev)
		} else if !elem.Add(prev, &ntRes, out) {
			ntRes.Release()
			p.buf.SetPos(sp)
			return false
		}
		ntRes.Release()

	case grammar.KindGrouping:
		var ruleRes result.Value
		matched := false
		for rule := elem.Rules; rule != nil; rule = rule.Next {
			var start result.Value
			start.Assign(prev)
			if p.parseRule(rule.Elements, &start, rule, &ruleRes) {
				start.Release()
				matched = true
				break
			}
			start.Release()
		}
		if !matched {
			ruleRes.Release()
			return false
		}
		if elem.Add == nil {
			out.Assign(&ruleRes)
		} else if !elem.Add(prev, &ruleRes, out) {
			ruleRes.Release()
			p.buf.SetPos(sp)
			return false
		}
		ruleRes.Release()

	case grammar.KindEnd:
		if !p.buf.End() {
			p.expectElement(elem)
			return false
		}
		out.Assign(prev)

	case grammar.KindChar:
		if p.buf.End() || p.buf.Peek() != elem.Ch {
			p.expectElement(elem)
			return false
		}
		p.buf.Next()
		if elem.AddChar == nil {
			out.Assign(prev)
		} else if !elem.AddChar(prev, elem.Ch, out) {
			p.buf.SetPos(sp)
			return false
		}

	case grammar.KindCharSet:
		if p.buf.End() || !elem.Set.Contains(p.buf.Peek()) {
			p.expectElement(elem)
			return false
		}
		ch := p.buf.Peek()
		p.buf.Next()
		if elem.AddChar == nil {
			out.Assign(prev)
		} else if !elem.AddChar(prev, ch, out) {
			p.buf.SetPos(sp)
			return false
		}

	case grammar.KindTerminal:
		// The client function scans the unread tail and writes its
		// result directly; consuming nothing means no match.
		n := elem.Terminal(p.buf.Rest(), out)
		if n <= 0 {
			p.expectElement(elem)
			return false
		}
		for i := 0; i < n; i++ {
			p.buf.Next()
		}

	default:
		return false
	}

	if elem.SetPos != nil {
		elem.SetPos(out, sp)
	}
	return true
}

// applySkip produces the result for a skipped optional element: the
// element's add-skip callback, falling back to its add callback with an
// empty element result, falling back to passing prev through.
func (p *Parser) applySkip(elem *grammar.Element, prev, out *result.Value) bool {
	if elem.AddSkip != nil {
		return elem.AddSkip(prev, out)
	}
	if elem.Add != nil {
		var empty result.Value
		ok := elem.Add(prev, &empty, out)
		empty.Release()
		return ok
	}
	out.Assign(prev)
	return true
}

// foldSeq folds a terminated sequence accumulator into the previous
// result, passing prev through when no fold callback is set.
func (p *Parser) foldSeq(elem *grammar.Element, prev, seq, out *result.Value) bool {
	if elem.AddSeq == nil {
		out.Assign(prev)
		return true
	}
	return elem.AddSeq(prev, seq, out)
}

func (p *Parser) expectElement(elem *grammar.Element) {
	p.expect.record(p.buf.Pos(), p.stack, elem)
}

func (p *Parser) tracef(l *logrus.Logger, format string, args ...any) {
	if l == nil {
		return
	}
	l.Debugf("%*s%s", 2*p.depth, "", fmt.Sprintf(format, args...))
}
