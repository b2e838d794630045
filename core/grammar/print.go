package grammar

import (
	"fmt"
	"io"
	"strings"
)

// WriteRules renders a rule list as alternatives separated by "|".
func WriteRules(w io.Writer, r *Rule) {
	first := true
	for ; r != nil; r = r.Next {
		if !first {
			io.WriteString(w, "|")
		}
		first = false
		WriteElement(w, r.Elements)
	}
}

// RulesString renders a rule list to a string.
func RulesString(r *Rule) string {
	var sb strings.Builder
	WriteRules(&sb, r)
	return sb.String()
}

// WriteElement renders an element and the rest of its chain, including
// modifiers, in the compact form used by trace output and expectation
// reports.
func WriteElement(w io.Writer, e *Element) {
	if e == nil {
		return
	}

	switch e.Kind {
	case KindNonTerminal:
		fmt.Fprintf(w, "%s ", e.NT.Name)
	case KindGrouping:
		io.WriteString(w, "(")
		WriteRules(w, e.Rules)
		io.WriteString(w, ")")
	case KindChar:
		fmt.Fprintf(w, "'%c' ", e.Ch)
	case KindCharSet:
		io.WriteString(w, "[")
		writeSet(w, e.Set)
		io.WriteString(w, "] ")
	case KindEnd:
		io.WriteString(w, "<eof> ")
	case KindTerminal:
		io.WriteString(w, "<term> ")
	}

	if e.Sequence {
		if e.Chain == nil {
			io.WriteString(w, "SEQ ")
		} else {
			io.WriteString(w, "CHAIN (")
			WriteElement(w, e.Chain)
			io.WriteString(w, ")")
		}
		if e.BackTracking {
			io.WriteString(w, "BACK_TRACKING ")
		}
	}
	if e.Optional {
		io.WriteString(w, "OPT ")
	}
	if e.Avoid {
		io.WriteString(w, "AVOID ")
	}
	WriteElement(w, e.Next)
}

// ElementString renders an element chain to a string.
func ElementString(e *Element) string {
	var sb strings.Builder
	WriteElement(&sb, e)
	return sb.String()
}

// Describe renders a single element for an expectation report, preferring
// its configured expect message.
func (e *Element) Describe() string {
	if e.ExpectMsg != "" {
		return e.ExpectMsg
	}
	head := *e
	head.Next = nil
	return strings.TrimSpace(ElementString(&head))
}

func writeSet(w io.Writer, set *CharSet) {
	for i := 0; i < 256; {
		if !set.Contains(byte(i)) {
			i++
			continue
		}
		first := i
		for i < 256 && set.Contains(byte(i)) {
			i++
		}
		last := i - 1
		writeSetChar(w, byte(first))
		if last == first+1 {
			writeSetChar(w, byte(last))
		} else if last > first {
			io.WriteString(w, "-")
			writeSetChar(w, byte(last))
		}
	}
}

func writeSetChar(w io.Writer, ch byte) {
	switch ch {
	case 0:
		io.WriteString(w, `\0`)
	case '\a':
		io.WriteString(w, `\a`)
	case '\b':
		io.WriteString(w, `\b`)
	case '\n':
		io.WriteString(w, `\n`)
	case '\r':
		io.WriteString(w, `\r`)
	case '\t':
		io.WriteString(w, `\t`)
	case '\v':
		io.WriteString(w, `\v`)
	case '\\':
		io.WriteString(w, `\\`)
	case '-':
		io.WriteString(w, `\-`)
	case ']':
		io.WriteString(w, `\]`)
	default:
		if ch < ' ' || ch >= 127 {
			fmt.Fprintf(w, `\%03o`, ch)
		} else {
			fmt.Fprintf(w, "%c", ch)
		}
	}
}
