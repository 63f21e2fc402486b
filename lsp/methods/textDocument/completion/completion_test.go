package completion

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/thkwag/thymelab-ls/lsp/testutil"
	"github.com/thkwag/thymelab-ls/lsp/types"
)

const testURI = "file:///workspace/src/main/resources/templates/page.html"

func newWorkspace(t *testing.T) *testutil.MockServerContext {
	t.Helper()
	root := t.TempDir()

	dataDir := filepath.Join(root, ".thymelab", "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "model.json"), []byte(`{
		"user": {
			"name": "Jane",
			"address": {"street": "Main St", "city": "Springfield"}
		},
		"items": [{"name": "Widget", "price": 9.99}]
	}`), 0o644))

	cardPath := filepath.Join(root, "templates", "fragments", "card.html")
	require.NoError(t, os.MkdirAll(filepath.Dir(cardPath), 0o755))
	require.NoError(t, os.WriteFile(cardPath,
		[]byte(`<div th:fragment="small">a</div><div th:fragment="large">b</div>`), 0o644))

	m := testutil.NewMockServerContext()
	m.SetRootPath(root)
	m.SetConfig(types.ServerConfig{
		TemplateRoot: "templates",
		StaticRoot:   "static",
		DataDirs:     []string{filepath.Join(".thymelab", "data")},
	})
	require.NoError(t, m.RescanWorkspace())
	return m
}

// complete opens content as a template and requests completion with the
// cursor placed right after the first occurrence of marker.
func complete(t *testing.T, m *testutil.MockServerContext, content, marker string) []protocol.CompletionItem {
	t.Helper()
	require.NoError(t, m.OpenTemplate(testURI, content))

	idx := strings.Index(content, marker)
	require.GreaterOrEqual(t, idx, 0, "marker %q not in content", marker)
	cursor := idx + len(marker)

	row := strings.Count(content[:cursor], "\n")
	lineStart := strings.LastIndexByte(content[:cursor], '\n') + 1

	res, err := Completion(m, nil, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
			Position: protocol.Position{
				Line:      uint32(row),
				Character: uint32(cursor - lineStart),
			},
		},
	})
	require.NoError(t, err)
	if res == nil {
		return nil
	}
	list, ok := res.(protocol.CompletionList)
	require.True(t, ok)
	return list.Items
}

func labels(items []protocol.CompletionItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Label)
	}
	return out
}

func TestCompletion_TopLevelVariables(t *testing.T) {
	m := newWorkspace(t)
	items := complete(t, m, `<span th:text="${u}"></span>`, "${u")

	assert.Equal(t, []string{"user"}, labels(items))
	require.NotNil(t, items[0].Detail)
	assert.Equal(t, "object", *items[0].Detail)
}

func TestCompletion_ObjectFields(t *testing.T) {
	m := newWorkspace(t)
	items := complete(t, m, `<span th:text="${user.ad}"></span>`, "${user.ad")

	assert.Equal(t, []string{"address"}, labels(items))
}

func TestCompletion_NestedFields(t *testing.T) {
	m := newWorkspace(t)
	items := complete(t, m, `<span th:text="${user.address.}"></span>`, "${user.address.")

	assert.Equal(t, []string{"city", "street"}, labels(items))
}

func TestCompletion_ArrayElementFields(t *testing.T) {
	m := newWorkspace(t)
	items := complete(t, m, `<span th:text="${items.}"></span>`, "${items.")

	assert.Equal(t, []string{"name", "price"}, labels(items))
}

func TestCompletion_IteratorVariableResolved(t *testing.T) {
	m := newWorkspace(t)
	content := `<li th:each="item : ${items}" th:text="${item.n}"></li>`
	items := complete(t, m, content, "${item.n")

	assert.Equal(t, []string{"name"}, labels(items))
}

func TestCompletion_IteratorVariableOffered(t *testing.T) {
	m := newWorkspace(t)
	content := `<li th:each="item : ${items}"><span th:text="${it}"></span></li>`
	items := complete(t, m, content, "${it")

	assert.Contains(t, labels(items), "item")
	assert.Contains(t, labels(items), "items")
}

func TestCompletion_StatusVariableProperties(t *testing.T) {
	m := newWorkspace(t)
	content := `<li th:each="item, stat : ${items}" th:text="${stat.}"></li>`
	items := complete(t, m, content, "${stat.")

	got := labels(items)
	assert.Contains(t, got, "index")
	assert.Contains(t, got, "first")
	assert.Contains(t, got, "last")
}

func TestCompletion_UtilityObjects(t *testing.T) {
	m := newWorkspace(t)
	items := complete(t, m, `<span th:text="${#st}"></span>`, "${#st")

	assert.Equal(t, []string{"#strings"}, labels(items))
}

func TestCompletion_InSelectionExpression(t *testing.T) {
	m := newWorkspace(t)
	items := complete(t, m, `<input th:field="*{user.}">`, "*{user.")

	got := labels(items)
	assert.Contains(t, got, "name")
	assert.Contains(t, got, "address")
}

func TestCompletion_AfterOperator(t *testing.T) {
	m := newWorkspace(t)
	items := complete(t, m, `<span th:text="${user.name + u}"></span>`, "+ u")

	assert.Equal(t, []string{"user"}, labels(items))
}

func TestCompletion_FragmentNames(t *testing.T) {
	m := newWorkspace(t)
	content := `<div th:replace="fragments/card :: ` // cursor at end, attr unterminated
	items := complete(t, m, content, ":: ")

	assert.Equal(t, []string{"small", "large"}, labels(items))
}

func TestCompletion_FragmentNamesFiltered(t *testing.T) {
	m := newWorkspace(t)
	items := complete(t, m, `<div th:replace="fragments/card :: sm`, ":: sm")

	assert.Equal(t, []string{"small"}, labels(items))
}

func TestCompletion_OutsideExpression(t *testing.T) {
	m := newWorkspace(t)
	assert.Empty(t, complete(t, m, `<span>plain text</span>`, "plain"))
}

func TestCompletion_ClosedExpression(t *testing.T) {
	m := newWorkspace(t)
	assert.Empty(t, complete(t, m, `<span th:text="${user.name}">after</span>`, "after"))
}

func TestCompletion_EscapedExpression(t *testing.T) {
	m := newWorkspace(t)
	assert.Empty(t, complete(t, m, `<span th:text="\${user.n}"></span>`, "${user.n"))
}

func TestCompletion_UnknownDocument(t *testing.T) {
	m := newWorkspace(t)
	res, err := Completion(m, nil, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///nope.html"},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestCompletion_NonTemplateDocument(t *testing.T) {
	m := newWorkspace(t)
	uri := "file:///script.js"
	require.NoError(t, m.DocumentManager().DidOpen(uri, "javascript", 1, `let x = "${user.}"`))

	res, err := Completion(m, nil, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: 0, Character: 17},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, res)
}
