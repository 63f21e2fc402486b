package analyzer

import (
	"regexp"
	"strings"
)

// ExpressionMatch pairs a data-binding expression as it appears in source
// with one variable path found inside it. An expression containing a chain
// of N segments yields up to N matches sharing the same SourceText, one per
// non-empty prefix, shortest first.
type ExpressionMatch struct {
	SourceText   string
	VariablePath string
}

// attributeValuePattern matches the Thymeleaf attributes whose bodies are
// scanned individually, in addition to the generic whole-text scan, so an
// expression inside one of them survives even when attribute quoting
// confuses the generic bracket matcher.
var attributeValuePattern = regexp.MustCompile(
	`(?i)th:(?:each|if|unless|switch|case|with|object|field|attr|text|utext|value)\s*=\s*(?:"([^"]*)"|'([^']*)')`)

// fieldPathPattern recognizes a quoted #fields.hasErrors argument as a
// dotted field path rather than an ordinary string literal.
var fieldPathPattern = regexp.MustCompile(`^[A-Za-z_$][\w$]*(?:\.[A-Za-z_$][\w$]*)*$`)

// maxScanDepth bounds recursion into nested sub-expressions; malformed
// input must degrade to fewer matches, never to a stack overflow.
const maxScanDepth = 32

// FindAllVariableMatches scans text for every Thymeleaf data-binding
// expression form and returns the (sourceText, variablePath) pairs they
// contain. The input may be a single line or a whole buffer and need not be
// well formed; unrecognizable constructs contribute no matches. Expressions
// escaped with a backslash are excluded entirely. Results are order-stable
// and duplicate pairs are suppressed, first occurrence winning.
func FindAllVariableMatches(text string) []ExpressionMatch {
	c := &collector{seen: make(map[string]struct{})}
	c.scanText(text)
	for _, m := range attributeValuePattern.FindAllStringSubmatch(text, -1) {
		body := m[1]
		if body == "" {
			body = m[2]
		}
		c.scanText(body)
	}
	return c.matches
}

// collector accumulates matches for a single FindAllVariableMatches call.
// It is never shared between calls, so analyses from concurrent callers
// cannot observe each other's scan state.
type collector struct {
	matches []ExpressionMatch
	seen    map[string]struct{}
	depth   int
}

func (c *collector) emit(source, path string) {
	key := source + "\x00" + path
	if _, ok := c.seen[key]; ok {
		return
	}
	c.seen[key] = struct{}{}
	c.matches = append(c.matches, ExpressionMatch{SourceText: source, VariablePath: path})
}

// scanText locates expression regions in text and dispatches each to its
// form-specific handler.
func (c *collector) scanText(text string) {
	if c.depth >= maxScanDepth {
		return
	}
	c.depth++
	defer func() { c.depth-- }()

	for _, region := range scanRegions(text) {
		switch region.kind {
		case kindVariable, kindSelection:
			c.analyzeExpression(region.body, region.source)
		case kindMessage:
			c.analyzeMessage(region)
		case kindLink, kindFragment:
			// Only embedded ${...} parts of a link or fragment expression
			// denote variables; static paths and selectors do not.
			c.scanText(region.body)
		}
	}
}

// analyzeMessage handles #{key} and #{key(args)}: the key itself is a path
// (message keys complete against message bundles) and the arguments are
// scanned for embedded expressions. A computed key like #{${k}} is scanned
// instead of emitted.
func (c *collector) analyzeMessage(region exprRegion) {
	body := strings.TrimSpace(region.body)
	key := body
	args := ""
	if p := indexTopLevel(body, '('); p >= 0 {
		key = strings.TrimSpace(body[:p])
		if end := matchDelim(body, p, '(', ')'); end > p {
			args = body[p+1 : end]
		} else {
			args = body[p+1:]
		}
	}
	if strings.Contains(key, "${") {
		c.scanText(key)
	} else if key != "" && !strings.ContainsAny(key, " \t") {
		c.emit(region.source, key)
	}
	if args != "" {
		c.scanText(args)
	}
}

// analyzeExpression runs the path-chain extraction pipeline on a bracketed
// expression body. All resulting paths are attributed to source.
func (c *collector) analyzeExpression(body, source string) {
	if c.depth >= maxScanDepth {
		return
	}
	c.depth++
	defer func() { c.depth-- }()

	s := strings.TrimSpace(body)
	if s == "" {
		return
	}
	for _, operand := range splitOperands(s) {
		c.analyzeOperand(operand, source)
	}
}

// analyzeOperand handles a single operator-free operand: literals are
// dropped, parenthesized groups recurse, and identifier chains are emitted
// prefix by prefix.
func (c *collector) analyzeOperand(op, source string) {
	op = strings.TrimSpace(op)
	for strings.HasPrefix(op, "!") {
		op = strings.TrimSpace(op[1:])
	}
	if op == "" {
		return
	}

	if op[0] == '(' {
		if end := matchDelim(op, 0, '(', ')'); end == len(op)-1 {
			c.analyzeExpression(op[1:end], source)
			return
		}
	}

	// String and numeric literals are never variable paths
	if op[0] == '\'' || op[0] == '"' {
		return
	}
	if op[0] >= '0' && op[0] <= '9' {
		return
	}

	// A complete nested expression appearing as an operand (common in
	// preprocessed or concatenated attribute bodies)
	if len(op) > 1 && isExprMarker(op[0]) && op[1] == '{' {
		c.scanText(op)
		return
	}

	segs := parseChain(op)
	if len(segs) == 0 || segs[0].filter {
		return
	}

	head := segs[0].name
	if strings.HasPrefix(head, "#") {
		c.analyzeUtilityChain(segs, source)
		return
	}

	emitChain := !reservedWords.Has(head) && !securityFunctions.Has(head)
	c.emitChain(segs, source, emitChain)
}

// emitChain emits every successive prefix of a parsed chain and recurses
// into call arguments, subscripts and selection/projection bodies as
// independent sub-expressions attributed to the same source. Prefixes stop
// incorporating segments at a selection/projection step; a no-argument
// aggregate call terminating a filtered chain is dropped.
func (c *collector) emitChain(segs []chainSegment, source string, emitChain bool) {
	prefix := ""
	filterSeen := false
	for _, seg := range segs {
		if seg.filter {
			filterSeen = true
			if strings.TrimSpace(seg.bracket) != "" {
				c.analyzeExpression(seg.bracket, source)
			}
			continue
		}
		if seg.args != "" {
			for _, arg := range splitTopLevel(seg.args, ',') {
				c.analyzeExpression(arg, source)
			}
		}
		if seg.index != "" {
			c.analyzeExpression(seg.index, source)
		}
		if filterSeen && seg.call && strings.TrimSpace(seg.args) == "" && aggregateMethods.Has(seg.name) {
			continue
		}
		name := seg.name
		if seg.call {
			name += "()"
		}
		if prefix == "" {
			prefix = name
		} else {
			prefix = prefix + "." + name
		}
		if emitChain {
			c.emit(source, prefix)
		}
	}
}

// analyzeUtilityChain handles #utility.method(...) chains. The utility
// token is never a variable path; arguments are analyzed independently.
// Two utilities expose dotted paths of their own: #fields error lookups
// take a quoted field path, and #authentication.principal carries the
// authenticated principal's property chain.
func (c *collector) analyzeUtilityChain(segs []chainSegment, source string) {
	head := segs[0].name

	if head == "#fields" && len(segs) >= 2 && segs[1].call {
		if fieldPath := quotedFieldPath(segs[1].args); fieldPath != "" {
			c.emitDottedPrefixes(fieldPath, source)
		}
	}

	if head == "#authentication" && len(segs) >= 3 && segs[1].name == "principal" && !segs[1].call {
		prefix := "principal"
		for _, seg := range segs[2:] {
			if seg.filter {
				break
			}
			name := seg.name
			if seg.call {
				name += "()"
			}
			prefix = prefix + "." + name
			c.emit(source, prefix)
		}
	}

	for _, seg := range segs {
		if seg.filter {
			if strings.TrimSpace(seg.bracket) != "" {
				c.analyzeExpression(seg.bracket, source)
			}
			continue
		}
		if seg.args != "" {
			for _, arg := range splitTopLevel(seg.args, ',') {
				c.analyzeExpression(arg, source)
			}
		}
		if seg.index != "" {
			c.analyzeExpression(seg.index, source)
		}
	}
}

// emitDottedPrefixes emits every prefix of a plain dotted path
func (c *collector) emitDottedPrefixes(path, source string) {
	parts := strings.Split(path, ".")
	prefix := ""
	for _, part := range parts {
		if part == "" {
			return
		}
		if prefix == "" {
			prefix = part
		} else {
			prefix = prefix + "." + part
		}
		c.emit(source, prefix)
	}
}

// quotedFieldPath returns the dotted path inside a single quoted argument,
// or "" when the argument is not a simple quoted field path.
func quotedFieldPath(args string) string {
	s := strings.TrimSpace(args)
	if len(s) < 2 {
		return ""
	}
	if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
		inner := s[1 : len(s)-1]
		if fieldPathPattern.MatchString(inner) {
			return inner
		}
	}
	return ""
}

// stripQuotes removes one level of matching surrounding quotes
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
