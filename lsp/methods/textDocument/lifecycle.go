package textDocument

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/thkwag/thymelab-ls/internal/log"
	"github.com/thkwag/thymelab-ls/internal/uriutil"
	"github.com/thkwag/thymelab-ls/lsp/types"
)

// DidOpen handles the textDocument/didOpen notification
func DidOpen(ctx types.ServerContext, context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	log.Debug("Document opened: %s (language: %s, version: %d)",
		params.TextDocument.URI, params.TextDocument.LanguageID, int(params.TextDocument.Version))

	return ctx.DocumentManager().DidOpen(params.TextDocument.URI, params.TextDocument.LanguageID,
		int(params.TextDocument.Version), params.TextDocument.Text)
}

// DidChange handles the textDocument/didChange notification
func DidChange(ctx types.ServerContext, context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	version := int(params.TextDocument.Version)

	log.Debug("Document changed: %s (version: %d, changes: %d)", uri, version, len(params.ContentChanges))

	// Convert any[] to proper type, filtering out invalid entries
	changes := make([]protocol.TextDocumentContentChangeEvent, 0, len(params.ContentChanges))
	for _, change := range params.ContentChanges {
		if changeEvent, ok := change.(protocol.TextDocumentContentChangeEvent); ok {
			changes = append(changes, changeEvent)
		}
	}

	return ctx.DocumentManager().DidChange(uri, version, changes)
}

// DidClose handles the textDocument/didClose notification
func DidClose(ctx types.ServerContext, context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	log.Debug("Document closed: %s", params.TextDocument.URI)
	return ctx.DocumentManager().DidClose(params.TextDocument.URI)
}

// DidSave handles the textDocument/didSave notification. Saved templates
// are reindexed so fragment definitions stay current.
func DidSave(ctx types.ServerContext, context *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path := uriutil.URIToPath(params.TextDocument.URI)
	if err := ctx.Fragments().ScanFile(path); err != nil {
		log.Warn("reindex saved template %s: %v", path, err)
	}
	return nil
}
