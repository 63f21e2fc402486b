package integration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/thkwag/thymelab-ls/internal/uriutil"
	"github.com/thkwag/thymelab-ls/lsp"
	"github.com/thkwag/thymelab-ls/lsp/methods/lifecycle"
	"github.com/thkwag/thymelab-ls/lsp/methods/textDocument"
	"github.com/thkwag/thymelab-ls/lsp/methods/textDocument/completion"
	"github.com/thkwag/thymelab-ls/lsp/methods/textDocument/definition"
	documentlink "github.com/thkwag/thymelab-ls/lsp/methods/textDocument/documentLink"
)

// newInitializedServer builds a workspace on disk and runs the server
// through initialize and initialized against it.
func newInitializedServer(t *testing.T) (*lsp.Server, string) {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"src/main/resources/templates/index.html":            `<html></html>`,
		"src/main/resources/templates/fragments/header.html": `<div th:fragment="header">top</div>`,
		"src/main/resources/static/css/app.css":              `body{}`,
		".thymelab/data/model.json": `{
			"user": {"name": "Jane", "email": "jane@example.com"},
			"products": [{"title": "Widget", "price": 9.99}]
		}`,
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	server, err := lsp.NewServer()
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Close() })

	rootURI := uriutil.PathToURI(root)
	_, err = lifecycle.Initialize(server, nil, &protocol.InitializeParams{RootURI: &rootURI})
	require.NoError(t, err)
	require.NoError(t, lifecycle.Initialized(server, nil, &protocol.InitializedParams{}))

	return server, root
}

func openDocument(t *testing.T, server *lsp.Server, uri, content string) {
	t.Helper()
	require.NoError(t, textDocument.DidOpen(server, nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI: uri, LanguageID: "html", Version: 1, Text: content,
		},
	}))
}

func TestServer_CompletionAgainstWorkspaceSchemas(t *testing.T) {
	server, _ := newInitializedServer(t)

	uri := "file:///page.html"
	content := `<span th:text="${user.}"></span>`
	openDocument(t, server, uri, content)

	res, err := completion.Completion(server, nil, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: 0, Character: 22}, // after "${user."
		},
	})
	require.NoError(t, err)
	list, ok := res.(protocol.CompletionList)
	require.True(t, ok)

	labels := make([]string, 0, len(list.Items))
	for _, item := range list.Items {
		labels = append(labels, item.Label)
	}
	assert.Equal(t, []string{"email", "name"}, labels)
}

func TestServer_DefinitionAcrossTemplates(t *testing.T) {
	server, root := newInitializedServer(t)

	uri := "file:///page.html"
	content := `<div th:replace="fragments/header :: header"></div>`
	openDocument(t, server, uri, content)

	res, err := definition.Definition(server, nil, &protocol.DefinitionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: 0, Character: 20}, // inside the path
		},
	})
	require.NoError(t, err)

	loc, ok := res.(protocol.Location)
	require.True(t, ok)
	want := filepath.Join(root, "src", "main", "resources", "templates", "fragments", "header.html")
	assert.Equal(t, uriutil.PathToURI(want), loc.URI)
}

func TestServer_DocumentLinksResolve(t *testing.T) {
	server, _ := newInitializedServer(t)

	uri := "file:///page.html"
	content := `<div th:replace="fragments/header :: header"></div>` + "\n" +
		`<link th:href="@{/css/app.css}">`
	openDocument(t, server, uri, content)

	links, err := documentlink.DocumentLink(server, nil, &protocol.DocumentLinkParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Contains(t, *links[0].Target, "header.html")
	assert.Contains(t, *links[1].Target, "app.css")
}

func TestServer_IncrementalEditThenCompletion(t *testing.T) {
	server, _ := newInitializedServer(t)

	uri := "file:///page.html"
	openDocument(t, server, uri, `<span th:text="${}"></span>`)

	// Type "pro" inside the braces
	require.NoError(t, textDocument.DidChange(server, nil, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEvent{
				Range: &protocol.Range{
					Start: protocol.Position{Line: 0, Character: 17},
					End:   protocol.Position{Line: 0, Character: 17},
				},
				Text: "pro",
			},
		},
	}))

	res, err := completion.Completion(server, nil, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: 0, Character: 20},
		},
	})
	require.NoError(t, err)
	list, ok := res.(protocol.CompletionList)
	require.True(t, ok)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "products", list.Items[0].Label)
}
