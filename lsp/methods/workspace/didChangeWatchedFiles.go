package workspace

import (
	"path/filepath"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/thkwag/thymelab-ls/internal/log"
	"github.com/thkwag/thymelab-ls/internal/uriutil"
	"github.com/thkwag/thymelab-ls/lsp/types"
)

// DidChangeWatchedFiles handles the workspace/didChangeWatchedFiles
// notification: template changes reindex fragments, schema changes drop the
// cached parse.
func DidChangeWatchedFiles(ctx types.ServerContext, context *glsp.Context, params *protocol.DidChangeWatchedFilesParams) error {
	for _, change := range params.Changes {
		path := uriutil.URIToPath(change.URI)
		switch strings.ToLower(filepath.Ext(path)) {
		case ".html":
			if change.Type == protocol.FileChangeTypeDeleted {
				ctx.Fragments().Remove(path)
				continue
			}
			if err := ctx.Fragments().ScanFile(path); err != nil {
				log.Warn("reindex template %s: %v", path, err)
			}
		case ".json", ".yaml", ".yml":
			ctx.Schemas().Invalidate(path)
		}
	}
	return nil
}
