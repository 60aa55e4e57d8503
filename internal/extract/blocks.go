// Package extract finds JSON object blocks embedded in loosely formatted text
// (log prefixes, shell output) and turns them into strict JSON objects.
package extract

import "iter"

// Block is one candidate object: a brace-balanced span of the input.
// It is not validated as JSON.
type Block struct {
	Start int // byte offset of the opening brace
	End   int // byte offset just past the matching closing brace
	Text  string
}

// Blocks returns the maximal, non-overlapping, brace-balanced spans of text,
// left to right, in a single pass. Nesting depth is unbounded and braces
// inside double-quoted strings do not count while any brace is open.
//
// An opening brace without a partner is never emitted, but balanced spans
// inside it are, so blocks that follow a stray '{' are still found. Stray
// closing braces outside a block are ignored.
func Blocks(text string) iter.Seq[Block] {
	return func(yield func(Block) bool) {
		var (
			open    []int   // offsets of unclosed '{'
			pending []Block // closed spans whose enclosing '{' is still open
		)
		inString, escaped := false, false

		for i := 0; i < len(text); i++ {
			c := text[i]
			if inString {
				switch {
				case escaped:
					escaped = false
				case c == '\\':
					escaped = true
				case c == '"':
					inString = false
				}
				continue
			}

			switch c {
			case '"':
				inString = len(open) > 0
			case '{':
				open = append(open, i)
			case '}':
				if len(open) == 0 {
					continue
				}
				start := open[len(open)-1]
				open = open[:len(open)-1]
				b := Block{Start: start, End: i + 1, Text: text[start : i+1]}

				// b encloses every pending span that starts after it.
				for len(pending) > 0 && pending[len(pending)-1].Start > start {
					pending = pending[:len(pending)-1]
				}
				if len(open) > 0 {
					pending = append(pending, b)
					continue
				}
				if !yield(b) {
					return
				}
			}
		}

		for _, b := range pending {
			if !yield(b) {
				return
			}
		}
	}
}
