package interpreter

import "fmt"

// Split cuts text into the substrings separated by sep. Substrings never
// contain whitespace: blanks around a substring are dropped, and once a
// blank ends a substring the rest of it up to the next sep is ignored. An
// empty slot yields "". Blank text yields no substrings, any other text
// yields one more substring than it has separators. More than max
// substrings is an error.
func Split(text string, sep byte, max int) ([]string, error) {
	p := 0
	for p < len(text) && isSpace(text[p]) {
		p++
	}
	if p == len(text) {
		return nil, nil
	}

	var tokens []string
	start, end := -1, -1

	emit := func(at int) {
		switch {
		case start < 0:
			tokens = append(tokens, "")
		case end < 0:
			tokens = append(tokens, text[start:at])
		default:
			tokens = append(tokens, text[start:end])
		}
		start, end = -1, -1
	}

	for ; p < len(text); p++ {
		ch := text[p]
		switch {
		case ch == sep:
			emit(p)
			// a separator always opens one more substring
			if len(tokens) >= max {
				return nil, fmt.Errorf("%w: more than %d substrings", ErrTooManyTokens, max)
			}
		case isSpace(ch):
			if start >= 0 && end < 0 {
				end = p
			}
		default:
			if start < 0 {
				start = p
			}
		}
	}
	emit(len(text))

	if len(tokens) > max {
		return nil, fmt.Errorf("%w: more than %d substrings", ErrTooManyTokens, max)
	}
	return tokens, nil
}
