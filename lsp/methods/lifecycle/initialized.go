package lifecycle

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/thkwag/thymelab-ls/internal/log"
	"github.com/thkwag/thymelab-ls/lsp/types"
)

// Initialized handles the LSP initialized notification
func Initialized(ctx types.ServerContext, context *glsp.Context, params *protocol.InitializedParams) error {
	log.Info("Server initialized")

	// Store context for later use (client notifications)
	ctx.SetGLSPContext(context)

	// Index the workspace templates; a failed scan is not fatal, the index
	// fills in as files are saved.
	if err := ctx.RescanWorkspace(); err != nil {
		log.Warn("initial workspace scan: %v", err)
	}

	if err := ctx.RegisterFileWatchers(context); err != nil {
		log.Warn("file watcher registration: %v", err)
	}

	return nil
}
