package lifecycle

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/thkwag/thymelab-ls/internal/log"
	"github.com/thkwag/thymelab-ls/internal/uriutil"
	"github.com/thkwag/thymelab-ls/internal/version"
	"github.com/thkwag/thymelab-ls/lsp/methods/workspace"
	"github.com/thkwag/thymelab-ls/lsp/types"
)

// completionTriggers start or continue an expression and therefore trigger
// completion requests from the client.
var completionTriggers = []string{"$", "*", "#", "@", "~", "{", "."}

// Initialize handles the LSP initialize request
func Initialize(ctx types.ServerContext, context *glsp.Context, params *protocol.InitializeParams) (any, error) {
	clientName := "unknown"
	if params.ClientInfo != nil {
		clientName = params.ClientInfo.Name
	}
	log.Info("Initializing for client: %s", clientName)

	// Store the workspace root
	if params.RootURI != nil {
		ctx.SetRootURI(*params.RootURI)
		ctx.SetRootPath(uriutil.URIToPath(*params.RootURI))
	} else if params.RootPath != nil {
		ctx.SetRootPath(*params.RootPath)
		ctx.SetRootURI(uriutil.PathToURI(*params.RootPath))
	}
	log.Info("Workspace root: %s", ctx.RootPath())

	// Initialization options may carry the configuration up front
	cfg := workspace.ParseConfiguration(params.InitializationOptions)
	ctx.SetConfig(cfg)

	syncKind := protocol.TextDocumentSyncKindIncremental
	capabilities := protocol.ServerCapabilities{
		TextDocumentSync: protocol.TextDocumentSyncOptions{
			OpenClose: boolPtr(true),
			Change:    &syncKind,
			Save:      boolPtr(true),
		},
		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: completionTriggers,
		},
		DefinitionProvider: true,
		DocumentLinkProvider: &protocol.DocumentLinkOptions{
			ResolveProvider: boolPtr(false),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    "thymelab-language-server",
			Version: strPtr(version.GetVersion()),
		},
	}, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func strPtr(s string) *string {
	return &s
}
