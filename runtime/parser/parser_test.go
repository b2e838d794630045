package parser

import (
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/scanless/scanless/core/grammar"
	"github.com/scanless/scanless/core/result"
	"github.com/scanless/scanless/core/text"
)

// tok is a counted string payload for engine tests. Every fold allocates a
// fresh payload, so back-tracking discards are visible in the allocation
// counters.
type tok struct {
	result.Base
	s string
}

// allocTracker counts payload allocations and frees.
type allocTracker struct {
	made  int
	freed int
}

func (a *allocTracker) newTok(s string) *tok {
	a.made++
	tk := &tok{s: s}
	tk.Base.Release = func(any) { a.freed++ }
	return tk
}

func printTok(data any, w io.Writer) { io.WriteString(w, data.(*tok).s) }

func tokStr(v *result.Value) string {
	if v.Data == nil {
		return ""
	}
	return v.Data.(*tok).s
}

func (a *allocTracker) assign(out *result.Value, s string) {
	result.AssignCounted(out, a.newTok(s), printTok)
}

// appendChar folds a byte onto the accumulated string.
func (a *allocTracker) appendChar(prev *result.Value, ch byte, out *result.Value) bool {
	a.assign(out, tokStr(prev)+string(ch))
	return true
}

// take replaces the previous result with the element's.
func take(prev, elem *result.Value, out *result.Value) bool {
	out.Assign(elem)
	return true
}

// keepLeft passes the already-parsed left part into a recursive rule.
func keepLeft(rec *result.Value, out *result.Value) bool {
	out.Assign(rec)
	return true
}

// fold builds name(prev,elem) from a non-terminal element.
func (a *allocTracker) fold(name string) grammar.AddFunc {
	return func(prev, elem *result.Value, out *result.Value) bool {
		a.assign(out, name+"("+tokStr(prev)+","+tokStr(elem)+")")
		return true
	}
}

// parseString runs nt over input and returns (rendered result, consumed
// everything, parser).
func parseString(t *testing.T, d *grammar.Dict, start, input string, opts ...Option) (string, bool, *Parser) {
	t.Helper()
	res, p, ok := Parse(d, start, []byte(input), opts...)
	defer res.Release()
	return tokStr(&res), ok, p
}

func TestLiteralSequence(t *testing.T) {
	a := &allocTracker{}
	d := grammar.NewDict()
	r := grammar.Define(d, "word").Rule()
	r.Char('a').AddChar(a.appendChar)
	r.Char('b').AddChar(a.appendChar)
	r.EndOfInput()

	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"ab", "ab", true},
		{"ax", "", false},
		{"a", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok, _ := parseString(t, d, "word", tt.input)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("parse(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFirstMatchingRuleWins(t *testing.T) {
	a := &allocTracker{}
	d := grammar.NewDict()
	def := grammar.Define(d, "pick")
	first := def.Rule()
	first.Char('a').AddChar(func(prev *result.Value, ch byte, out *result.Value) bool {
		a.assign(out, "first")
		return true
	})
	second := def.Rule()
	second.CharSet(grammar.Chars("a")).AddChar(func(prev *result.Value, ch byte, out *result.Value) bool {
		a.assign(out, "second")
		return true
	})

	got, ok, _ := parseString(t, d, "pick", "a")
	if !ok || got != "first" {
		t.Errorf("parse = (%q, %v), want (%q, true)", got, ok, "first")
	}
}

func TestRollbackOnFailure(t *testing.T) {
	d := grammar.NewDict()
	r := grammar.Define(d, "pair").Rule()
	r.Char('a')
	r.Char('b')

	buf := text.NewString("ax")
	p := New(buf)
	var res result.Value
	if p.ParseNT(d.FindOrCreate("pair"), &res) {
		t.Fatal("parse should have failed")
	}
	res.Release()
	want := text.Position{Offset: 0, Line: 1, Column: 1}
	if diff := cmp.Diff(want, buf.Pos()); diff != "" {
		t.Errorf("cursor not rolled back (-want +got):\n%s", diff)
	}
}

func TestOptionalElement(t *testing.T) {
	a := &allocTracker{}
	d := grammar.NewDict()
	r := grammar.Define(d, "sign").Rule()
	r.Char('-').AddChar(a.appendChar).Optional()
	r.CharSet(grammar.Range('0', '9')).AddChar(a.appendChar)
	r.EndOfInput()

	tests := []struct {
		input string
		want  string
	}{
		{"-5", "-5"},
		{"5", "5"},
	}
	for _, tt := range tests {
		got, ok, _ := parseString(t, d, "sign", tt.input)
		if !ok || got != tt.want {
			t.Errorf("parse(%q) = (%q, %v), want (%q, true)", tt.input, got, ok, tt.want)
		}
	}
}

func TestAvoidPrefersSkipping(t *testing.T) {
	// The optional first element overlaps the second; with avoid the
	// engine must not consume it when the rest of the rule succeeds
	// without it.
	build := func(avoid bool, calls *int) *grammar.Dict {
		d := grammar.NewDict()
		r := grammar.Define(d, "x").Rule()
		eb := r.Char('a').AddChar(func(prev *result.Value, ch byte, out *result.Value) bool {
			*calls++
			out.Assign(prev)
			return true
		}).Optional()
		if avoid {
			eb.Avoid()
		}
		r.CharSet(grammar.Chars("ab"))
		r.EndOfInput()
		return d
	}

	var avoidCalls, plainCalls int
	if _, ok, _ := parseString(t, build(true, &avoidCalls), "x", "a"); !ok {
		t.Fatal("avoid grammar should accept \"a\"")
	}
	if avoidCalls != 0 {
		t.Errorf("avoid consumed the optional element (%d calls)", avoidCalls)
	}

	if _, ok, _ := parseString(t, build(false, &plainCalls), "x", "a"); !ok {
		t.Fatal("plain grammar should accept \"a\"")
	}
	if plainCalls == 0 {
		t.Error("without avoid the optional element should be tried first")
	}
}

func TestGreedySequence(t *testing.T) {
	a := &allocTracker{}
	d := grammar.NewDict()
	r := grammar.Define(d, "run").Rule()
	r.CharSet(grammar.Range('a', 'z')).AddChar(a.appendChar).Sequence(nil, useSeq(a))
	r.EndOfInput()

	got, ok, _ := parseString(t, d, "run", "abc")
	if !ok || got != "abc" {
		t.Errorf("parse = (%q, %v), want (\"abc\", true)", got, ok)
	}
}

// useSeq adopts the sequence accumulator as the fold result.
func useSeq(a *allocTracker) grammar.AddSeqFunc {
	return func(prev, seq *result.Value, out *result.Value) bool {
		out.Assign(seq)
		return true
	}
}

func TestGreedyVersusBackTrackingSequence(t *testing.T) {
	// A greedy [ab]+ swallows the final 'b' that the rule needs; only the
	// back-tracking sequence can give it back.
	build := func(backTracking bool) *grammar.Dict {
		a := &allocTracker{}
		d := grammar.NewDict()
		r := grammar.Define(d, "x").Rule()
		eb := r.CharSet(grammar.Chars("ab")).AddChar(a.appendChar).Sequence(nil, useSeq(a))
		if backTracking {
			eb.BackTracking()
		}
		r.Char('b')
		r.EndOfInput()
		return d
	}

	if _, ok, _ := parseString(t, build(false), "x", "ab"); ok {
		t.Error("greedy sequence should not accept \"ab\"")
	}
	got, ok, _ := parseString(t, build(true), "x", "ab")
	if !ok || got != "a" {
		t.Errorf("back-tracking parse = (%q, %v), want (\"a\", true)", got, ok)
	}
}

func TestSequenceChain(t *testing.T) {
	a := &allocTracker{}
	d := grammar.NewDict()
	r := grammar.Define(d, "list").Rule()
	eb := r.CharSet(grammar.Range('a', 'z')).AddChar(a.appendChar).Sequence(nil, useSeq(a))
	eb.Chain().Char(',')
	r.EndOfInput()

	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"a", "a", true},
		{"a,b,c", "abc", true},
		{"a,b,", "", false}, // trailing separator is not part of the list
		{"ab", "", false},   // items must be separated
	}
	for _, tt := range tests {
		got, ok, _ := parseString(t, d, "list", tt.input)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("parse(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

// subtraction builds the classic direct left-recursive grammar
// expr <- term | expr '-' term, folding to sub(...) trees.
func subtraction(a *allocTracker) *grammar.Dict {
	d := grammar.NewDict()

	r := grammar.Define(d, "term").Rule()
	r.CharSet(grammar.Range('a', 'z')).AddChar(a.appendChar)

	def := grammar.Define(d, "expr")
	r = def.Rule()
	r.NT("term").Add(take)
	rec := def.RecRule(keepLeft)
	rec.Char('-')
	rec.NT("term").Add(a.fold("sub"))

	r = grammar.Define(d, "top").Rule()
	r.NT("expr").Add(take)
	r.EndOfInput()
	return d
}

func TestDirectLeftRecursion(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"a", "a", true},
		{"a-b", "sub(a,b)", true},
		{"a-b-c", "sub(sub(a,b),c)", true}, // left associative
		{"a-", "", false},
		{"-a", "", false},
	}
	for _, tt := range tests {
		a := &allocTracker{}
		got, ok, _ := parseString(t, subtraction(a), "top", tt.input)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("parse(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRecStartVetoSkipsRule(t *testing.T) {
	a := &allocTracker{}
	d := grammar.NewDict()

	r := grammar.Define(d, "t").Rule()
	r.CharSet(grammar.Range('a', 'z')).AddChar(a.appendChar)

	def := grammar.Define(d, "e")
	r = def.Rule()
	r.NT("t").Add(take)
	rec := def.RecRule(func(rec, out *result.Value) bool { return false })
	rec.Char('-')
	rec.NT("t").Add(a.fold("sub"))

	// The recursive rule is vetoed every iteration, so only the plain
	// term parses and the tail stays unconsumed.
	res, p, ok := Parse(d, "e", []byte("a-b"))
	defer res.Release()
	if ok {
		t.Fatal("whole input should not have parsed")
	}
	if tokStr(&res) != "a" {
		t.Errorf("result = %q, want %q", tokStr(&res), "a")
	}
	if p.Buffer().Pos().Offset != 1 {
		t.Errorf("offset = %d, want 1", p.Buffer().Pos().Offset)
	}
}

func TestConditionVeto(t *testing.T) {
	a := &allocTracker{}
	d := grammar.NewDict()
	r := grammar.Define(d, "word").Rule()
	r.CharSet(grammar.Range('a', 'z')).AddChar(a.appendChar)

	notB := func(res *result.Value, arg any) bool { return tokStr(res) != "b" }
	r = grammar.Define(d, "nonB").Rule()
	r.NT("word").Add(take).Cond(notB, nil)
	r.EndOfInput()

	if _, ok, _ := parseString(t, d, "nonB", "a"); !ok {
		t.Error("\"a\" should pass the condition")
	}
	_, ok, p := parseString(t, d, "nonB", "b")
	if ok {
		t.Error("\"b\" should be vetoed")
	}
	if p.Buffer().Pos().Offset != 0 {
		t.Errorf("cursor not rolled back after veto (offset %d)", p.Buffer().Pos().Offset)
	}
}

func TestGroupingAlternatives(t *testing.T) {
	a := &allocTracker{}
	d := grammar.NewDict()
	r := grammar.Define(d, "q").Rule()
	g := r.Grouping()
	alt := g.Rule()
	alt.Char('a').AddChar(a.appendChar)
	alt.Char('x').AddChar(a.appendChar)
	alt2 := g.Rule()
	alt2.Char('a').AddChar(a.appendChar)
	alt2.Char('y').AddChar(a.appendChar)
	r.EndOfInput()

	got, ok, _ := parseString(t, d, "q", "ay")
	if !ok || got != "ay" {
		t.Errorf("parse = (%q, %v), want (\"ay\", true)", got, ok)
	}
}

func TestGroupingEndCallbacksPerAlternative(t *testing.T) {
	// Each grouping alternative closes with its own end callback.
	a := &allocTracker{}
	d := grammar.NewDict()
	r := grammar.Define(d, "g").Rule()
	g := r.Grouping()
	one := g.Rule()
	one.Char('1')
	one.EndWith(func(ruleResult *result.Value, data any, out *result.Value) bool {
		a.assign(out, "one")
		return true
	}, nil)
	two := g.Rule()
	two.Char('2')
	two.EndWith(func(ruleResult *result.Value, data any, out *result.Value) bool {
		a.assign(out, "two")
		return true
	}, nil)
	r.EndOfInput()

	for input, want := range map[string]string{"1": "one", "2": "two"} {
		got, ok, _ := parseString(t, d, "g", input)
		if !ok || got != want {
			t.Errorf("parse(%q) = (%q, %v), want (%q, true)", input, got, ok, want)
		}
	}
}

func TestUserTerminal(t *testing.T) {
	a := &allocTracker{}
	digits := func(input []byte, res *result.Value) int {
		n := 0
		for n < len(input) && input[n] >= '0' && input[n] <= '9' {
			n++
		}
		if n > 0 {
			a.assign(res, string(input[:n]))
		}
		return n
	}

	d := grammar.NewDict()
	r := grammar.Define(d, "num").Rule()
	r.Terminal(digits).Add(take)
	r.EndOfInput()

	got, ok, _ := parseString(t, d, "num", "1234")
	if !ok || got != "1234" {
		t.Errorf("parse = (%q, %v), want (\"1234\", true)", got, ok)
	}
	if _, ok, _ := parseString(t, d, "num", "x"); ok {
		t.Error("terminal consuming nothing must fail")
	}
}

func TestSkipFallsBackToAddWithEmptyResult(t *testing.T) {
	a := &allocTracker{}
	d := grammar.NewDict()
	r := grammar.Define(d, "x").Rule()
	r.Char('!').Add(func(prev, elem *result.Value, out *result.Value) bool {
		a.assign(out, "add["+tokStr(elem)+"]")
		return true
	}).Optional()
	r.EndOfInput()

	got, ok, _ := parseString(t, d, "x", "")
	if !ok || got != "add[]" {
		t.Errorf("parse = (%q, %v), want (\"add[]\", true)", got, ok)
	}
}

func TestCacheFidelity(t *testing.T) {
	// Two alternatives share the prefix nt A, so with a cache the second
	// replays A's memo. The outcome must match the uncached parse.
	build := func() (*grammar.Dict, *allocTracker) {
		a := &allocTracker{}
		d := grammar.NewDict()
		r := grammar.Define(d, "A").Rule()
		r.CharSet(grammar.Chars("a")).AddChar(a.appendChar)

		def := grammar.Define(d, "root")
		r = def.Rule()
		r.NT("A").Add(take)
		r.Char('x').AddChar(a.appendChar)
		r.EndOfInput()
		r = def.Rule()
		r.NT("A").Add(take)
		r.Char('y').AddChar(a.appendChar)
		r.EndOfInput()
		return d, a
	}

	dPlain, _ := build()
	plain, okPlain, _ := parseString(t, dPlain, "root", "ay")

	dCached, _ := build()
	cached, okCached, p := parseString(t, dCached, "root", "ay", WithPackratCache(), WithTelemetryBasic())

	if okPlain != okCached || plain != cached {
		t.Errorf("cached parse diverged: plain=(%q,%v) cached=(%q,%v)", plain, okPlain, cached, okCached)
	}
	if p.Telemetry().CacheHits == 0 {
		t.Error("expected at least one cache replay")
	}
}

func TestCacheReplayRestoresPosition(t *testing.T) {
	d := grammar.NewDict()
	r := grammar.Define(d, "A").Rule()
	r.Char('a')
	r.Char('b')

	buf := text.NewString("ab")
	p := New(buf, WithPackratCache())
	var res result.Value
	if !p.ParseNT(d.FindOrCreate("A"), &res) {
		t.Fatal("first parse failed")
	}
	res.Release()
	end := buf.Pos()

	buf.SetPos(text.Position{Offset: 0, Line: 1, Column: 1})
	var res2 result.Value
	if !p.ParseNT(d.FindOrCreate("A"), &res2) {
		t.Fatal("replay failed")
	}
	res2.Release()
	if diff := cmp.Diff(end, buf.Pos()); diff != "" {
		t.Errorf("replay position mismatch (-want +got):\n%s", diff)
	}
}

func TestIndirectLeftRecursionIsDefeated(t *testing.T) {
	// a -> b, b -> a | 'x'. The cache seeds a@0 as failed before parsing,
	// so the indirect cycle bottoms out instead of recursing forever.
	a := &allocTracker{}
	d := grammar.NewDict()
	grammar.Define(d, "a").Rule().NT("b").Add(take)
	def := grammar.Define(d, "b")
	def.Rule().NT("a").Add(take)
	def.Rule().Char('x').AddChar(a.appendChar)

	got, ok, _ := parseString(t, d, "a", "x", WithPackratCache())
	if !ok || got != "x" {
		t.Errorf("parse = (%q, %v), want (\"x\", true)", got, ok)
	}
}

func TestReferenceBalance(t *testing.T) {
	a := &allocTracker{}
	d := subtraction(a)

	buf := text.NewString("a-b-c-d")
	cache := NewPackratCache(buf.Len())
	p := New(buf, WithCache(cache))

	var res result.Value
	if !p.ParseNT(d.FindOrCreate("top"), &res) || !buf.End() {
		t.Fatal("parse failed")
	}
	res.Release()
	cache.Teardown()

	if a.made != a.freed {
		t.Errorf("reference imbalance: %d allocated, %d freed", a.made, a.freed)
	}
	if a.made == 0 {
		t.Error("test built nothing")
	}
}

func TestExpectationsReportDeepestFailure(t *testing.T) {
	d := grammar.NewDict()
	def := grammar.Define(d, "root")
	r := def.Rule()
	r.Char('a')
	r.Char('b')
	r = def.Rule()
	r.Char('z')

	_, ok, p := parseString(t, d, "root", "ac")
	if ok {
		t.Fatal("parse should fail")
	}
	rep := p.Expected()

	wantPos := text.Position{Offset: 1, Line: 1, Column: 2}
	if diff := cmp.Diff(wantPos, rep.Pos); diff != "" {
		t.Errorf("failure position (-want +got):\n%s", diff)
	}
	if len(rep.Entries) != 1 || rep.Entries[0].Element != "'b'" {
		t.Fatalf("entries = %+v, want exactly ['b']", rep.Entries)
	}
	// 'z' failed at offset 0, shallower than 'b'; it must not appear.
	stack := rep.Entries[0].Stack
	if len(stack) != 1 || stack[0].Name != "root" {
		t.Errorf("stack = %+v, want [root]", stack)
	}
}

func TestExpectationsDeduplicate(t *testing.T) {
	// Both root alternatives end in the same trailing element, reached at
	// the same position under the same call frame; it must be recorded
	// once.
	d := grammar.NewDict()
	def := grammar.Define(d, "root")
	def.Rule().Char('a')
	def.Rule().CharSet(grammar.Chars("a"))

	z := grammar.NewElement(grammar.KindChar)
	z.Ch = 'z'
	nt := d.FindOrCreate("root")
	nt.Normal.Elements.Next = z
	nt.Normal.Next.Elements.Next = z

	_, ok, p := parseString(t, d, "root", "aq")
	if ok {
		t.Fatal("parse should fail")
	}
	rep := p.Expected()
	if len(rep.Entries) != 1 || rep.Entries[0].Element != "'z'" {
		t.Errorf("entries = %+v, want exactly ['z']", rep.Entries)
	}
}

func TestReportRendering(t *testing.T) {
	d := grammar.NewDict()
	r := grammar.Define(d, "root").Rule()
	r.Char('a')
	r.Char('b').Expect("letter b")

	_, ok, p := parseString(t, d, "root", "ax")
	if ok {
		t.Fatal("parse should fail")
	}
	got := p.Expected().String()
	want := "Expect at 1.2:\n- expect letter b\n  in root at 1.1\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report (-want +got):\n%s", diff)
	}
}

func TestEndElementRequiresEndOfInput(t *testing.T) {
	d := grammar.NewDict()
	r := grammar.Define(d, "x").Rule()
	r.Char('a')
	r.EndOfInput()

	if _, ok, _ := parseString(t, d, "x", "ab"); ok {
		t.Error("end element matched before end of input")
	}
	if _, ok, _ := parseString(t, d, "x", "a"); !ok {
		t.Error("end element failed at end of input")
	}
}

func TestTelemetryCounters(t *testing.T) {
	a := &allocTracker{}
	d := subtraction(a)
	_, ok, p := parseString(t, d, "top", "a-b", WithPackratCache(), WithTelemetryBasic())
	if !ok {
		t.Fatal("parse failed")
	}
	tel := p.Telemetry()
	if tel == nil || tel.NTCount == 0 || tel.MaxDepth == 0 {
		t.Errorf("telemetry not collected: %+v", tel)
	}
}
