package completion

import (
	"regexp"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/thkwag/thymelab-ls/internal/analyzer"
	"github.com/thkwag/thymelab-ls/internal/collections"
	"github.com/thkwag/thymelab-ls/internal/position"
	"github.com/thkwag/thymelab-ls/lsp/types"
)

// statusProperties are the members of a th:each status variable
var statusProperties = []string{
	"index", "count", "size", "current", "even", "odd", "first", "last",
}

// partialReferencePattern matches an unterminated reference attribute value
// before the cursor, for fragment-name completion after "::".
var partialReferencePattern = regexp.MustCompile(
	`(?i)(?:th:replace|th:insert|th:include|th:substituteby|layout:decorate)\s*=\s*["']([^"']*)$`)

// Completion handles the textDocument/completion request. Inside an
// expression it completes variable paths from the schema manager, iterator
// variables, and utility objects after '#'. Inside a reference attribute it
// completes fragment names after '::'.
func Completion(ctx types.ServerContext, context *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc := ctx.Document(params.TextDocument.URI)
	if doc == nil || !doc.IsTemplate() {
		return nil, nil
	}

	lines := strings.Split(doc.Content(), "\n")
	row := int(params.Position.Line)
	if row < 0 || row >= len(lines) {
		return nil, nil
	}
	line := lines[row]
	col := position.UTF16ToByteOffset(line, int(params.Position.Character))
	before := line[:col]

	if items := fragmentItems(ctx, before); items != nil {
		return protocol.CompletionList{IsIncomplete: false, Items: items}, nil
	}

	partial, ok := expressionPrefix(before)
	if !ok {
		return nil, nil
	}
	token := currentToken(partial)

	if strings.HasPrefix(token, "#") {
		return protocol.CompletionList{IsIncomplete: false, Items: utilityItems(token)}, nil
	}

	items := variableItems(ctx, doc.Content(), token)
	if len(items) == 0 {
		return nil, nil
	}
	return protocol.CompletionList{IsIncomplete: false, Items: items}, nil
}

// fragmentItems completes fragment names once the cursor sits after a "::"
// selector in a reference attribute value.
func fragmentItems(ctx types.ServerContext, before string) []protocol.CompletionItem {
	m := partialReferencePattern.FindStringSubmatch(before)
	if m == nil {
		return nil
	}
	value := m[1]
	sel := strings.Index(value, "::")
	if sel < 0 {
		return nil
	}
	prefix := strings.TrimSpace(value[sel+2:])

	templatePart := strings.TrimSpace(value[:sel])
	templatePart = strings.TrimPrefix(templatePart, "~{")
	templatePart = strings.TrimPrefix(templatePart, "@{")
	refs := analyzer.ParseReferenceValue(templatePart)
	if len(refs) == 0 {
		return nil
	}

	kind := protocol.CompletionItemKindReference
	var items []protocol.CompletionItem
	for _, def := range ctx.Fragments().DefinitionsFor(refs[0].Path) {
		if !strings.HasPrefix(def.Name, prefix) {
			continue
		}
		name := def.Name
		items = append(items, protocol.CompletionItem{
			Label: name,
			Kind:  &kind,
		})
	}
	return items
}

// utilityItems completes the built-in '#' namespaces
func utilityItems(prefix string) []protocol.CompletionItem {
	kind := protocol.CompletionItemKindModule
	var items []protocol.CompletionItem
	for _, name := range analyzer.UtilityObjectNames() {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		items = append(items, protocol.CompletionItem{
			Label: name,
			Kind:  &kind,
		})
	}
	return items
}

// variableItems completes a dotted variable path against the schemas,
// resolving iterator and status variables through their collections.
func variableItems(ctx types.ServerContext, content, token string) []protocol.CompletionItem {
	base, prefix := splitToken(token)
	iter := analyzer.FindIteratorVariables(content)

	if base == "" {
		return topLevelItems(ctx, iter, prefix)
	}

	segments := strings.Split(base, ".")
	if parent, ok := iter.ParentVars[segments[0]]; ok {
		// item.x completes against the collection's element shape
		segments[0] = parent
		base = strings.Join(segments, ".")
	} else if _, ok := iter.StatVars[segments[0]]; ok && len(segments) == 1 {
		return statusItems(prefix)
	}

	kind := protocol.CompletionItemKindField
	var items []protocol.CompletionItem
	for _, child := range ctx.Schemas().Children(base) {
		if !strings.HasPrefix(child.Name, prefix) {
			continue
		}
		detail := child.Node.Kind().String()
		items = append(items, protocol.CompletionItem{
			Label:  child.Name,
			Kind:   &kind,
			Detail: &detail,
		})
	}
	return items
}

// topLevelItems completes the first path segment: schema variables plus
// any iterator variables declared in the document.
func topLevelItems(ctx types.ServerContext, iter analyzer.IteratorInfo, prefix string) []protocol.CompletionItem {
	varKind := protocol.CompletionItemKindVariable
	var items []protocol.CompletionItem
	seen := make(map[string]struct{})

	for _, child := range ctx.Schemas().TopLevel() {
		if !strings.HasPrefix(child.Name, prefix) {
			continue
		}
		seen[child.Name] = struct{}{}
		detail := child.Node.Kind().String()
		items = append(items, protocol.CompletionItem{
			Label:  child.Name,
			Kind:   &varKind,
			Detail: &detail,
		})
	}
	for _, name := range collections.SortedMembers(iter.IteratorVars) {
		if _, dup := seen[name]; dup || !strings.HasPrefix(name, prefix) {
			continue
		}
		detail := "iterator"
		if _, isStat := iter.StatVars[name]; isStat {
			detail = "iteration status"
		}
		items = append(items, protocol.CompletionItem{
			Label:  name,
			Kind:   &varKind,
			Detail: &detail,
		})
	}
	return items
}

func statusItems(prefix string) []protocol.CompletionItem {
	kind := protocol.CompletionItemKindProperty
	var items []protocol.CompletionItem
	for _, name := range statusProperties {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		items = append(items, protocol.CompletionItem{
			Label: name,
			Kind:  &kind,
		})
	}
	return items
}

// expressionPrefix returns the text between the innermost unclosed
// expression opener and the cursor. Escaped expressions complete nothing.
func expressionPrefix(before string) (string, bool) {
	for i := len(before) - 2; i >= 0; i-- {
		c := before[i]
		if c == '}' {
			return "", false
		}
		if isMarker(c) && before[i+1] == '{' {
			if i > 0 && before[i-1] == '\\' {
				return "", false
			}
			inner := before[i+2:]
			if strings.IndexByte(inner, '}') >= 0 {
				return "", false
			}
			return inner, true
		}
	}
	return "", false
}

func isMarker(b byte) bool {
	switch b {
	case '$', '*', '#', '@', '~':
		return true
	}
	return false
}

// currentToken cuts the expression prefix down to the dotted path being
// typed, dropping everything before the last operator or delimiter.
func currentToken(partial string) string {
	cut := strings.LastIndexAny(partial, " \t()[]+-*/%<>=!,|&'\"?:")
	return partial[cut+1:]
}

// splitToken splits the token under the cursor into the resolved base path
// and the partial final segment.
func splitToken(token string) (base, prefix string) {
	if idx := strings.LastIndexByte(token, '.'); idx >= 0 {
		return token[:idx], token[idx+1:]
	}
	return "", token
}
