package analyzer

import "github.com/thkwag/thymelab-ls/internal/collections"

// chainSegment is one element of a dotted property/method chain, or a
// selection/projection step applied to the chain so far.
type chainSegment struct {
	name    string
	call    bool
	args    string // raw text inside the call parentheses
	index   string // raw text inside a [...] subscript
	filter  bool   // .?[...], .![...], .^[...], .$[...] or .{...}
	bracket string // raw filter/projection body
}

// wordOperators split an expression into independently analyzed operands,
// same as the symbolic comparison and arithmetic operators.
var wordOperators = collections.NewSet(
	"and", "or", "not", "gt", "ge", "lt", "le", "eq", "ne", "instanceof",
)

func isIdentStart(b byte) bool {
	return b == '_' || b == '$' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentChar(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

// parseChain parses a dotted identifier/method chain like a.b(x).c,
// users.?[active].name or #strings.isEmpty(v). Parsing is best-effort:
// trailing text that is not part of a chain terminates the walk and the
// segments read so far are returned.
func parseChain(s string) []chainSegment {
	var segs []chainSegment
	i := 0
	for i < len(s) {
		switch {
		case s[i] == '?' && i+1 < len(s) && s[i+1] == '[' && len(segs) > 0:
			end := matchDelim(s, i+1, '[', ']')
			if end < 0 {
				return segs
			}
			segs = append(segs, chainSegment{filter: true, bracket: s[i+2 : end]})
			i = end + 1
		case (s[i] == '!' || s[i] == '^' || s[i] == '$') && i+1 < len(s) && s[i+1] == '[' && len(segs) > 0:
			end := matchDelim(s, i+1, '[', ']')
			if end < 0 {
				return segs
			}
			segs = append(segs, chainSegment{filter: true, bracket: s[i+2 : end]})
			i = end + 1
		case s[i] == '{' && len(segs) > 0:
			end := matchBrace(s, i)
			if end < 0 {
				return segs
			}
			segs = append(segs, chainSegment{filter: true, bracket: s[i+1 : end]})
			i = end + 1
		default:
			start := i
			if s[i] == '#' {
				i++
			}
			if i >= len(s) || !isIdentStart(s[i]) {
				return segs
			}
			for i < len(s) && isIdentChar(s[i]) {
				i++
			}
			seg := chainSegment{name: s[start:i]}
			if i < len(s) && s[i] == '(' {
				end := matchDelim(s, i, '(', ')')
				if end < 0 {
					segs = append(segs, seg)
					return segs
				}
				seg.call = true
				seg.args = s[i+1 : end]
				i = end + 1
			}
			if i < len(s) && s[i] == '[' {
				end := matchDelim(s, i, '[', ']')
				if end < 0 {
					segs = append(segs, seg)
					return segs
				}
				seg.index = s[i+1 : end]
				i = end + 1
			}
			segs = append(segs, seg)
		}

		// Safe navigation a?.b reads like a.b
		if i+1 < len(s) && s[i] == '?' && s[i+1] == '.' {
			i++
		}
		if i >= len(s) || s[i] != '.' {
			return segs
		}
		i++
	}
	return segs
}

// splitOperands splits an expression body into operands at top-level
// logical, comparison, arithmetic and conditional operators. Quoted and
// bracketed sections are opaque. Each operand is analyzed independently.
func splitOperands(s string) []string {
	var operands []string
	depth := 0
	var quote byte
	last := 0
	i := 0

	cut := func(end, next int) {
		operands = append(operands, s[last:end])
		last = next
		i = next
	}

	for i < len(s) {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i += 2
				continue
			}
			if c == quote {
				quote = 0
			}
			i++
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
			i++
		case '(', '[', '{':
			depth++
			i++
		case ')', ']', '}':
			depth--
			i++
		default:
			if depth > 0 {
				i++
				continue
			}
			switch {
			case (c == '=' || c == '!' || c == '>' || c == '<') && i+1 < len(s) && s[i+1] == '=':
				cut(i, i+2)
			case c == '>' || c == '<' || c == '+' || c == '-' || c == '*' || c == '/' || c == '%':
				cut(i, i+1)
			case c == '?':
				// ?. is safe navigation and ?[ is a selection, not operators
				if i+1 < len(s) && (s[i+1] == '.' || s[i+1] == '[') {
					i++
					continue
				}
				if i+1 < len(s) && s[i+1] == ':' {
					cut(i, i+2)
				} else {
					cut(i, i+1)
				}
			case c == ':':
				cut(i, i+1)
			case isIdentStart(c):
				j := i
				for j < len(s) && isIdentChar(s[j]) {
					j++
				}
				if wordOperators.Has(s[i:j]) && !precededByDot(s, i) {
					cut(i, j)
				} else {
					i = j
				}
			default:
				i++
			}
		}
	}

	operands = append(operands, s[last:])
	return operands
}

// precededByDot reports whether the last non-space byte before pos is a dot
// or a utility marker, meaning the identifier at pos is a chain member
// rather than a standalone word.
func precededByDot(s string, pos int) bool {
	for k := pos - 1; k >= 0; k-- {
		switch s[k] {
		case ' ', '\t':
			continue
		case '.', '#':
			return true
		default:
			return false
		}
	}
	return false
}
