// Package text provides the input buffer the parser scans over: an in-memory
// byte string with a cursor that tracks 1-based line and column numbers.
//
// The cursor is cheap to save and restore, which is what the back-tracking
// parser relies on: every failing parse attempt snapshots the position on
// entry and puts it back on exit.
package text

import "fmt"

// Position is a location in the input: a byte offset plus the 1-based line
// and column numbers belonging to it. Positions are value types; saving and
// restoring one is a plain copy.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d.%d", p.Line, p.Column)
}

// DefaultTabSize is the tab stop width used when none is configured.
const DefaultTabSize = 4

// Buffer is a random-access cursor over an input string.
type Buffer struct {
	src     []byte
	pos     Position
	tabSize int
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithTabSize sets the tab stop width used for column tracking.
func WithTabSize(n int) Option {
	return func(b *Buffer) {
		if n > 0 {
			b.tabSize = n
		}
	}
}

// New returns a buffer positioned at the start of src.
func New(src []byte, opts ...Option) *Buffer {
	b := &Buffer{
		src:     src,
		pos:     Position{Offset: 0, Line: 1, Column: 1},
		tabSize: DefaultTabSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewString returns a buffer over a string input.
func NewString(src string, opts ...Option) *Buffer {
	return New([]byte(src), opts...)
}

// Pos returns the current position.
func (b *Buffer) Pos() Position { return b.pos }

// Len returns the total input length in bytes.
func (b *Buffer) Len() int { return len(b.src) }

// End reports whether the cursor is at (or past) the end of the input.
func (b *Buffer) End() bool { return b.pos.Offset >= len(b.src) }

// Peek returns the byte at the cursor. It returns 0 at the end of input;
// callers that care must check End first.
func (b *Buffer) Peek() byte {
	if b.pos.Offset >= len(b.src) {
		return 0
	}
	return b.src[b.pos.Offset]
}

// Rest returns the unscanned tail of the input, starting at the cursor.
// User terminal functions scan this slice directly.
func (b *Buffer) Rest() []byte { return b.src[min(b.pos.Offset, len(b.src)):] }

// Next advances the cursor by one byte, updating line and column. Tabs move
// the column to the next tab stop, newlines start a new line at column 1.
// At the end of the input Next does nothing.
func (b *Buffer) Next() {
	if b.pos.Offset >= len(b.src) {
		return
	}
	switch b.src[b.pos.Offset] {
	case '\t':
		b.pos.Column += b.tabSize - (b.pos.Column-1)%b.tabSize
	case '\n':
		b.pos.Line++
		b.pos.Column = 1
	default:
		b.pos.Column++
	}
	b.pos.Offset++
}

// SetPos moves the cursor back (or forward) to a previously saved position.
// A position with the current offset is a no-op.
func (b *Buffer) SetPos(pos Position) {
	if b.pos.Offset == pos.Offset {
		return
	}
	b.pos = pos
}
