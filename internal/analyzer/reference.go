package analyzer

import (
	"path"
	"regexp"
	"sort"
	"strings"
)

// TemplateReference is a template, fragment or static-resource reference
// found in scanned text. Path is normalized (quotes, expression wrappers,
// resolver prefixes and fragment selectors stripped); StartIndex is the
// byte offset of the path text in the scanned input, for building clickable
// ranges.
type TemplateReference struct {
	Path       string
	StartIndex int
}

// referenceAttrPattern captures the value of every attribute whose body
// names a template or fragment.
var referenceAttrPattern = regexp.MustCompile(
	`(?i)(?:th:replace|th:insert|th:include|th:substituteby|layout:decorate|layout:fragment)\s*=\s*(?:"([^"]*)"|'([^']*)')`)

// invalidPathChars can never appear in a resolvable template path
const invalidPathChars = `<>:"|?*`

// staticResourceExtensions is the ordered probe list for static references
// that lack a file extension.
var staticResourceExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".webp", ".avif",
}

// FindTemplateReferences scans text for every template, fragment and
// static-resource reference form and returns the normalized paths with
// their source offsets, in left-to-right order. Duplicate normalized paths
// are suppressed, first occurrence winning. Malformed references yield
// nothing; the function never fails on partial input.
func FindTemplateReferences(text string) []TemplateReference {
	type candidate struct {
		value  string
		offset int
	}
	var cands []candidate

	for _, idx := range referenceAttrPattern.FindAllStringSubmatchIndex(text, -1) {
		switch {
		case idx[2] >= 0:
			cands = append(cands, candidate{text[idx[2]:idx[3]], idx[2]})
		case idx[4] >= 0:
			cands = append(cands, candidate{text[idx[4]:idx[5]], idx[4]})
		}
	}

	// Bare link and fragment expressions outside the reference attributes
	// (th:src, th:href, th:with and inlined markup)
	for _, region := range scanRegions(text) {
		if region.kind == kindLink || region.kind == kindFragment {
			cands = append(cands, candidate{region.source, region.start})
		}
	}

	sort.SliceStable(cands, func(i, j int) bool { return cands[i].offset < cands[j].offset })

	r := &refCollector{seen: make(map[string]struct{})}
	for _, cand := range cands {
		r.parseValue(cand.value, cand.offset)
	}
	return r.refs
}

// ParseReferenceValue normalizes a single raw reference value (an attribute
// body or a bare @{...}/~{...} expression) the same way FindTemplateReferences
// does. Conditional values may yield more than one reference.
func ParseReferenceValue(value string) []TemplateReference {
	r := &refCollector{seen: make(map[string]struct{})}
	r.parseValue(value, 0)
	return r.refs
}

// ReferenceAt returns the raw reference value covering the byte offset in
// text, with its start offset, when the offset falls inside a reference
// attribute value or a bare link/fragment expression.
func ReferenceAt(text string, offset int) (string, int, bool) {
	for _, idx := range referenceAttrPattern.FindAllStringSubmatchIndex(text, -1) {
		for _, g := range []int{2, 4} {
			if idx[g] >= 0 && offset >= idx[g] && offset <= idx[g+1] {
				return text[idx[g]:idx[g+1]], idx[g], true
			}
		}
	}
	for _, region := range scanRegions(text) {
		if region.kind != kindLink && region.kind != kindFragment {
			continue
		}
		if offset >= region.start && offset <= region.start+len(region.source) {
			return region.source, region.start, true
		}
	}
	return "", 0, false
}

// GetPossibleStaticPaths returns the candidate file paths a static
// reference without an extension may resolve to, in probe order. A path
// that already carries an extension is returned unchanged.
func GetPossibleStaticPaths(base string) []string {
	if path.Ext(base) != "" {
		return []string{base}
	}
	out := make([]string, 0, len(staticResourceExtensions))
	for _, ext := range staticResourceExtensions {
		out = append(out, base+ext)
	}
	return out
}

type refCollector struct {
	refs []TemplateReference
	seen map[string]struct{}
}

func (r *refCollector) emit(normalized string, offset int) {
	if _, ok := r.seen[normalized]; ok {
		return
	}
	r.seen[normalized] = struct{}{}
	r.refs = append(r.refs, TemplateReference{Path: normalized, StartIndex: offset})
}

// parseValue extracts the reference from one attribute value or expression,
// tracking the offset of the surviving path text as wrappers are peeled.
func (r *refCollector) parseValue(value string, offset int) {
	v, off := trimWithOffset(value, offset)
	if v == "" {
		return
	}

	// Literal substitution wrapper
	if len(v) >= 2 && v[0] == '|' && v[len(v)-1] == '|' {
		v, off = trimWithOffset(v[1:len(v)-1], off+1)
	}

	// Expression wrappers @{...} and ~{...}, stripped before the
	// conditional handling so wrapped conditionals keep their branches
	if len(v) >= 3 && (v[0] == '@' || v[0] == '~') && v[1] == '{' && v[len(v)-1] == '}' {
		v, off = trimWithOffset(v[2:len(v)-1], off+2)
	}

	// Conditional reference: ${cond} ? 'a::f' : 'b::f', or Elvis
	// ${cond} ?: 'default::f'. Every non-noop literal branch contributes.
	if strings.HasPrefix(v, "${") {
		end := matchBrace(v, 1)
		if end < 0 {
			return
		}
		rest, restOff := trimWithOffset(v[end+1:], off+end+1)
		switch {
		case strings.HasPrefix(rest, "?:"):
			r.parseValue(rest[2:], restOff+2)
		case strings.HasPrefix(rest, "?"):
			branches := rest[1:]
			branchOff := restOff + 1
			if ci := indexTopLevel(branches, ':'); ci >= 0 {
				r.parseValue(branches[:ci], branchOff)
				r.parseValue(branches[ci+1:], branchOff+ci+1)
			} else {
				r.parseValue(branches, branchOff)
			}
		}
		// A bare ${...} value is a dynamic reference; nothing to resolve
		return
	}

	// Quoting
	if len(v) >= 2 && ((v[0] == '\'' && v[len(v)-1] == '\'') || (v[0] == '"' && v[len(v)-1] == '"')) {
		v, off = trimWithOffset(v[1:len(v)-1], off+1)
	}

	// The no-op token contributes nothing
	if v == "_" {
		return
	}

	// Link parameter list: @{/path(param=...)} drops the parameters
	if strings.HasSuffix(v, ")") {
		if p := indexTopLevel(v, '('); p >= 0 && matchDelim(v, p, '(', ')') == len(v)-1 {
			v = strings.TrimRight(v[:p], " \t")
		}
	}

	// Fragment selector: only the template-file portion is the reference
	if ci := strings.Index(v, "::"); ci >= 0 {
		v = strings.TrimRight(v[:ci], " \t")
	}
	if v == "" {
		return
	}

	// Resolver and context-relative prefixes
	for _, prefix := range []string{"classpath:", "file:"} {
		if strings.HasPrefix(v, prefix) {
			v = v[len(prefix):]
			off += len(prefix)
		}
	}
	if strings.HasPrefix(v, "~/") {
		v = v[2:]
		off += 2
	}
	if strings.HasPrefix(v, "/") {
		v = v[1:]
		off++
	}

	v, off = trimWithOffset(v, off)
	if v == "" {
		return
	}

	// References still containing an expression are dynamic
	if strings.Contains(v, "${") || strings.Contains(v, "*{") {
		return
	}

	normalized := NormalizePath(v)
	if strings.ContainsAny(normalized, invalidPathChars) {
		return
	}

	r.emit(normalized, off)
}

// trimWithOffset trims surrounding whitespace and advances the offset by
// the amount trimmed from the left.
func trimWithOffset(s string, off int) (string, int) {
	trimmed := strings.TrimLeft(s, " \t\r\n")
	off += len(s) - len(trimmed)
	return strings.TrimRight(trimmed, " \t\r\n"), off
}
