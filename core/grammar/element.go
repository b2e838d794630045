package grammar

// Kind discriminates the element variants.
type Kind int

const (
	KindNonTerminal Kind = iota // reference to another non-terminal
	KindGrouping                // nested list of rules
	KindChar                    // a single byte
	KindCharSet                 // a byte set
	KindEnd                     // end of input
	KindTerminal                // user-defined terminal scan function
)

// Element is one step in a rule's chain. The kind selects which of the
// kind-specific fields is meaningful; the modifiers and callbacks apply
// uniformly.
type Element struct {
	Kind Kind

	Optional     bool
	Sequence     bool
	BackTracking bool // sequence enumeration: back-tracking instead of greedy
	Avoid        bool // prefer the rest of the rule over consuming this

	// Chain is parsed between the items of a sequence (the comma of a
	// comma-separated list). Its results are discarded.
	Chain *Element

	// Kind-specific payloads.
	NT       *NonTerminal // KindNonTerminal
	Rules    *Rule        // KindGrouping
	Ch       byte         // KindChar
	Set      *CharSet     // KindCharSet
	Terminal TerminalFunc // KindTerminal

	// Callbacks. Any may be nil; a nil callback passes the previous
	// result through unchanged, discarding the element's own result. The
	// one exception is a grouping without Add: it yields the result of its
	// matching alternative, which started from the previous result.
	AddChar      AddCharFunc
	Condition    ConditionFunc
	ConditionArg any
	Add          AddFunc
	AddSkip      AddSkipFunc
	BeginSeq     BeginSeqFunc
	AddSeq       AddSeqFunc
	SetPos       SetPosFunc

	// ExpectMsg overrides the element's rendering in expectation reports.
	ExpectMsg string

	Next *Element
}

// NewElement returns an element of the given kind with no modifiers or
// callbacks set.
func NewElement(kind Kind) *Element {
	return &Element{Kind: kind}
}
