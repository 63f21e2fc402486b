package analyzer

import (
	"regexp"
	"strings"

	"github.com/thkwag/thymelab-ls/internal/collections"
)

// IteratorInfo describes every th:each binding found in a scanned text
// span: the loop item and status variable names, and which collection
// expression each of them iterates.
type IteratorInfo struct {
	// IteratorVars holds the item and status variable names
	IteratorVars collections.Set[string]
	// ParentVars maps an item variable to its collection expression text
	ParentVars map[string]string
	// StatVars maps a status variable to the same collection expression
	StatVars map[string]string
}

// eachAttributePattern captures the body of every th:each attribute
var eachAttributePattern = regexp.MustCompile(`(?i)th:each\s*=\s*(?:"([^"]*)"|'([^']*)')`)

// eachBindingPattern parses an attribute body of the form
// item[, stat] : <collection expression>
var eachBindingPattern = regexp.MustCompile(`^\s*([A-Za-z_][\w]*)\s*(?:,\s*([A-Za-z_][\w]*)\s*)?:\s*(.+?)\s*$`)

// FindIteratorVariables scans text (a line or a whole buffer) for th:each
// bindings and returns the iterator metadata they declare. The analyzer
// reports iterator variables literally and does not substitute them into
// variable matches; callers resolve item.property against the collection's
// element type using ParentVars.
func FindIteratorVariables(text string) IteratorInfo {
	info := IteratorInfo{
		IteratorVars: collections.NewSet[string](),
		ParentVars:   make(map[string]string),
		StatVars:     make(map[string]string),
	}

	for _, m := range eachAttributePattern.FindAllStringSubmatch(text, -1) {
		body := m[1]
		if body == "" {
			body = m[2]
		}
		binding := eachBindingPattern.FindStringSubmatch(body)
		if binding == nil {
			continue
		}
		itemVar, statVar, collection := binding[1], binding[2], binding[3]

		collection = unwrapExpression(collection)
		if collection == "" {
			continue
		}

		info.IteratorVars.Add(itemVar)
		if _, exists := info.ParentVars[itemVar]; !exists {
			info.ParentVars[itemVar] = collection
		}
		if statVar != "" {
			info.IteratorVars.Add(statVar)
			if _, exists := info.StatVars[statVar]; !exists {
				info.StatVars[statVar] = collection
			}
		}
	}

	return info
}

// unwrapExpression removes a single ${...} or *{...} wrapper from a
// collection expression, leaving the inner text for schema resolution
func unwrapExpression(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 3 && (s[0] == '$' || s[0] == '*') && s[1] == '{' && s[len(s)-1] == '}' {
		return strings.TrimSpace(s[2 : len(s)-1])
	}
	return s
}
