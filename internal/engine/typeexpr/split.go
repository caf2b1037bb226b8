package typeexpr

import "strings"

func isOpen(c byte) bool  { return c == '(' || c == '<' || c == '{' }
func isClose(c byte) bool { return c == ')' || c == '>' || c == '}' }

// SplitTopLevel splits text on sep wherever it is not nested in brackets.
// A single depth counter is shared by (), <> and {}, so mixed unbalanced
// bracket kinds produce a plausible but unspecified split. Parts are trimmed.
func SplitTopLevel(sep byte, text string) []string {
	parts := []string{}
	depth := 0
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case isOpen(c):
			depth++
		case isClose(c):
			depth--
		case c == sep && depth == 0:
			parts = append(parts, strings.TrimSpace(text[start:i]))
			start = i + 1
		}
	}
	return append(parts, strings.TrimSpace(text[start:]))
}

// matchingClose returns the index of the bracket closing the one opened at
// open, or -1.
func matchingClose(text string, open int) int {
	depth := 0
	for i := open; i < len(text); i++ {
		switch {
		case isOpen(text[i]):
			depth++
		case isClose(text[i]):
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// matchingOpen returns the index of the bracket opening the one closed at
// closeIdx, or -1.
func matchingOpen(text string, closeIdx int) int {
	depth := 0
	for i := closeIdx; i >= 0; i-- {
		switch {
		case isClose(text[i]):
			depth++
		case isOpen(text[i]):
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
