package text

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPositionTracking(t *testing.T) {
	tests := []struct {
		name  string
		input string
		steps int
		opts  []Option
		want  Position
	}{
		{
			name:  "advances column per byte",
			input: "abc",
			steps: 2,
			want:  Position{Offset: 2, Line: 1, Column: 3},
		},
		{
			name:  "newline starts a new line",
			input: "a\nb",
			steps: 2,
			want:  Position{Offset: 2, Line: 2, Column: 1},
		},
		{
			name:  "tab jumps to the next tab stop",
			input: "a\tb",
			steps: 2,
			want:  Position{Offset: 2, Line: 1, Column: 5},
		},
		{
			name:  "tab at a stop jumps a full width",
			input: "abcd\tx",
			steps: 5,
			want:  Position{Offset: 5, Line: 1, Column: 9},
		},
		{
			name:  "custom tab size",
			input: "a\tb",
			steps: 2,
			opts:  []Option{WithTabSize(8)},
			want:  Position{Offset: 2, Line: 1, Column: 9},
		},
		{
			name:  "next past the end is a no-op",
			input: "a",
			steps: 5,
			want:  Position{Offset: 1, Line: 1, Column: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewString(tt.input, tt.opts...)
			for i := 0; i < tt.steps; i++ {
				b.Next()
			}
			if diff := cmp.Diff(tt.want, b.Pos()); diff != "" {
				t.Errorf("position mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSetPosRestores(t *testing.T) {
	b := NewString("a\n\tbc")
	saved := b.Pos()
	for !b.End() {
		b.Next()
	}
	if !b.End() {
		t.Fatal("expected buffer at end")
	}
	b.SetPos(saved)
	if diff := cmp.Diff(saved, b.Pos()); diff != "" {
		t.Errorf("position not restored (-want +got):\n%s", diff)
	}
	if b.Peek() != 'a' {
		t.Errorf("Peek() = %q, want 'a'", b.Peek())
	}
}

func TestPeekAndRest(t *testing.T) {
	b := NewString("xyz")
	if b.Peek() != 'x' {
		t.Errorf("Peek() = %q, want 'x'", b.Peek())
	}
	b.Next()
	if got := string(b.Rest()); got != "yz" {
		t.Errorf("Rest() = %q, want %q", got, "yz")
	}
	b.Next()
	b.Next()
	if !b.End() {
		t.Error("expected End() after consuming all input")
	}
	if b.Peek() != 0 {
		t.Errorf("Peek() at end = %q, want 0", b.Peek())
	}
	if got := string(b.Rest()); got != "" {
		t.Errorf("Rest() at end = %q, want empty", got)
	}
}

func TestEmptyInput(t *testing.T) {
	b := NewString("")
	if !b.End() {
		t.Error("empty buffer should be at end")
	}
	want := Position{Offset: 0, Line: 1, Column: 1}
	if diff := cmp.Diff(want, b.Pos()); diff != "" {
		t.Errorf("start position mismatch (-want +got):\n%s", diff)
	}
}
