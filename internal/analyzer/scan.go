package analyzer

// Low-level scanning primitives shared by the expression and reference
// analyzers. Everything here is a pure function of its inputs; no matcher
// state survives a call, so concurrent analyses cannot interfere.

// exprKind identifies which Thymeleaf expression form a scanned region uses
type exprKind byte

const (
	kindVariable  exprKind = '$' // ${...}
	kindSelection exprKind = '*' // *{...}
	kindMessage   exprKind = '#' // #{...}
	kindLink      exprKind = '@' // @{...}
	kindFragment  exprKind = '~' // ~{...}
)

// exprRegion is one bracketed expression located in scanned text
type exprRegion struct {
	kind   exprKind
	source string // full expression including marker and braces
	body   string // text between the braces
	start  int    // byte offset of the marker in the scanned text
}

func isExprMarker(b byte) bool {
	switch b {
	case '$', '*', '#', '@', '~':
		return true
	}
	return false
}

// matchBrace returns the index of the '}' closing the '{' at open, or -1
// when the brace never closes. Nested braces are tracked and quoted
// sections (single or double) are opaque, including backslash escapes.
func matchBrace(text string, open int) int {
	depth := 0
	var quote byte
	for i := open; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// matchDelim returns the index of the close byte balancing the open byte at
// start, or -1. Used for parentheses and square brackets; quotes are opaque.
func matchDelim(text string, start int, open, close byte) int {
	depth := 0
	var quote byte
	for i := start; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// scanRegions locates every top-level bracketed expression in text,
// honoring the escape rule: a backslash immediately before the marker
// excludes the whole expression. Nested expressions inside a region are not
// reported; handlers recurse into region bodies as the grammar requires.
func scanRegions(text string) []exprRegion {
	var regions []exprRegion
	i := 0
	for i < len(text)-1 {
		if !isExprMarker(text[i]) || text[i+1] != '{' {
			i++
			continue
		}
		end := matchBrace(text, i+1)
		if end < 0 {
			// Unterminated expression, skip the marker
			i += 2
			continue
		}
		if i > 0 && text[i-1] == '\\' {
			// Escaped: the expression and everything inside it is inert
			i = end + 1
			continue
		}
		regions = append(regions, exprRegion{
			kind:   exprKind(text[i]),
			source: text[i : end+1],
			body:   text[i+2 : end],
			start:  i,
		})
		i = end + 1
	}
	return regions
}

// splitTopLevel splits s on the given single-byte separator at bracket
// depth zero, treating quoted sections as opaque.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	var quote byte
	last := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	parts = append(parts, s[last:])
	return parts
}

// indexTopLevel returns the index of the first occurrence of b at bracket
// depth zero outside quotes, or -1. An opening bracket is found at the
// depth it opens.
func indexTopLevel(s string, b byte) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		if c == b && depth == 0 {
			return i
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
	}
	return -1
}
