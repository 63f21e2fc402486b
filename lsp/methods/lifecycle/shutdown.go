package lifecycle

import (
	"github.com/tliron/glsp"

	"github.com/thkwag/thymelab-ls/internal/fragments"
	"github.com/thkwag/thymelab-ls/internal/log"
	"github.com/thkwag/thymelab-ls/lsp/types"
)

// Shutdown handles the LSP shutdown request
func Shutdown(ctx types.ServerContext, context *glsp.Context) error {
	log.Info("Server shutting down")

	// Release the pooled HTML parsers; Close also does this but shutdown
	// can arrive without a Close on some clients.
	fragments.ClosePool()

	return nil
}
