package analyzer

import (
	"regexp"
	"strings"
)

// FragmentReference is the parsed form of a template reference split on the
// :: separator. FragmentID is empty when the reference names a whole
// template file.
type FragmentReference struct {
	TemplateFile string
	FragmentID   string
}

var fragmentDefinitionPattern = regexp.MustCompile(`(?:th:fragment|layout:fragment)\s*=`)

var dynamicLinkPattern = regexp.MustCompile(`@\{\s*\$\{`)

// NormalizePath rewrites backslash separators to forward slashes
func NormalizePath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// NormalizeResourcePath strips a single leading slash so that absolute
// resource references compare equal to resource-root relative paths
func NormalizeResourcePath(p string) string {
	return strings.TrimPrefix(NormalizePath(p), "/")
}

// PathWithoutPrefix strips prefix from p when present, making workspace
// paths comparable to configured resource roots. Both arguments are
// normalized first.
func PathWithoutPrefix(p, prefix string) string {
	p = NormalizePath(p)
	prefix = NormalizePath(prefix)
	if prefix != "" && strings.HasPrefix(p, prefix) {
		return strings.TrimPrefix(p, prefix)
	}
	return p
}

// ParseFragmentReference splits a reference like
// "fragments/header :: header(title)" into its template file and fragment
// id. Fragment parameters are dropped; definition lookup matches on the
// fragment name alone.
func ParseFragmentReference(ref string) FragmentReference {
	parts := strings.SplitN(ref, "::", 2)
	out := FragmentReference{TemplateFile: strings.TrimSpace(parts[0])}
	if len(parts) == 2 {
		fragment := strings.TrimSpace(parts[1])
		if p := strings.IndexByte(fragment, '('); p >= 0 {
			fragment = strings.TrimSpace(fragment[:p])
		}
		out.FragmentID = fragment
	}
	return out
}

// IsFragmentDefinition reports whether a line declares a fragment rather
// than referencing one
func IsFragmentDefinition(line string) bool {
	return fragmentDefinitionPattern.MatchString(line)
}

// IsDynamicLink reports whether a line's link target is computed from a
// variable expression, so callers can skip resolving it to a file
func IsDynamicLink(line string) bool {
	return dynamicLinkPattern.MatchString(line)
}
