package lsp

import (
	"path/filepath"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/thkwag/thymelab-ls/internal/documents"
	"github.com/thkwag/thymelab-ls/internal/fragments"
	"github.com/thkwag/thymelab-ls/internal/log"
	"github.com/thkwag/thymelab-ls/internal/schemas"
	"github.com/thkwag/thymelab-ls/lsp/methods/lifecycle"
	"github.com/thkwag/thymelab-ls/lsp/methods/textDocument"
	"github.com/thkwag/thymelab-ls/lsp/methods/textDocument/completion"
	"github.com/thkwag/thymelab-ls/lsp/methods/textDocument/definition"
	documentlink "github.com/thkwag/thymelab-ls/lsp/methods/textDocument/documentLink"
	"github.com/thkwag/thymelab-ls/lsp/methods/workspace"
	"github.com/thkwag/thymelab-ls/lsp/types"
)

// Verify that Server implements ServerContext interface
var _ types.ServerContext = (*Server)(nil)

// Server represents the ThymeLab Language Server
type Server struct {
	documents  *documents.Manager
	schemas    *schemas.Manager
	fragments  *fragments.Index
	glspServer *server.Server
	context    *glsp.Context
	rootURI    string
	rootPath   string
	config     types.ServerConfig
	configMu   sync.RWMutex // Protects config, context, rootURI and rootPath
}

// NewServer creates a new ThymeLab LSP server
func NewServer() (*Server, error) {
	s := &Server{
		documents: documents.NewManager(),
		schemas:   schemas.NewManager(),
		fragments: fragments.NewIndex(),
		config:    types.DefaultConfig(),
	}

	// Create the GLSP server with our handlers wrapped with middleware
	protocolHandler := protocol.Handler{
		Initialize:                      method(s, "initialize", lifecycle.Initialize),
		Initialized:                     notify(s, "initialized", lifecycle.Initialized),
		Shutdown:                        noParam(s, "shutdown", lifecycle.Shutdown),
		SetTrace:                        notify(s, "$/setTrace", lifecycle.SetTrace),
		WorkspaceDidChangeConfiguration: notify(s, "workspace/didChangeConfiguration", workspace.DidChangeConfiguration),
		WorkspaceDidChangeWatchedFiles:  notify(s, "workspace/didChangeWatchedFiles", workspace.DidChangeWatchedFiles),
		TextDocumentDidOpen:             notify(s, "textDocument/didOpen", textDocument.DidOpen),
		TextDocumentDidChange:           notify(s, "textDocument/didChange", textDocument.DidChange),
		TextDocumentDidClose:            notify(s, "textDocument/didClose", textDocument.DidClose),
		TextDocumentDidSave:             notify(s, "textDocument/didSave", textDocument.DidSave),
		TextDocumentCompletion:          method(s, "textDocument/completion", completion.Completion),
		TextDocumentDefinition:          method(s, "textDocument/definition", definition.Definition),
		TextDocumentDocumentLink:        method(s, "textDocument/documentLink", documentlink.DocumentLink),
	}

	s.glspServer = server.NewServer(&protocolHandler, "thymelab-language-server", false)

	return s, nil
}

// RunStdio starts the LSP server using stdio transport
func (s *Server) RunStdio() error {
	return s.glspServer.RunStdio()
}

// Close releases server resources including the HTML parser pool.
// It is safe to call Close multiple times.
func (s *Server) Close() error {
	fragments.ClosePool()
	return nil
}

// ServerContext interface implementation

// Document returns the document with the given URI
func (s *Server) Document(uri string) *documents.Document {
	return s.documents.Get(uri)
}

// DocumentManager returns the document manager
func (s *Server) DocumentManager() *documents.Manager {
	return s.documents
}

// AllDocuments returns all tracked documents
func (s *Server) AllDocuments() []*documents.Document {
	return s.documents.GetAll()
}

// Schemas returns the variable schema manager
func (s *Server) Schemas() *schemas.Manager {
	return s.schemas
}

// Fragments returns the fragment definition index
func (s *Server) Fragments() *fragments.Index {
	return s.fragments
}

// RootURI returns the workspace root URI
func (s *Server) RootURI() string {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.rootURI
}

// RootPath returns the workspace root path
func (s *Server) RootPath() string {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.rootPath
}

// SetRootURI sets the workspace root URI
func (s *Server) SetRootURI(uri string) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.rootURI = uri
}

// SetRootPath sets the workspace root path
func (s *Server) SetRootPath(path string) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.rootPath = path
}

// GetConfig returns a snapshot of the server configuration
func (s *Server) GetConfig() types.ServerConfig {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.config
}

// SetConfig replaces the server configuration and repoints the schema
// manager and fragment index at the configured directories. Callers rescan
// afterwards via RescanWorkspace.
func (s *Server) SetConfig(config types.ServerConfig) {
	s.configMu.Lock()
	s.config = config
	s.configMu.Unlock()

	s.schemas.SetDataDirs(s.dataDirPaths())
	s.schemas.SetPatterns(config.SchemaPatterns)
	s.fragments.SetTemplateRoot(s.TemplateRootPath())
}

// TemplateRootPath returns the configured template root resolved against
// the workspace root.
func (s *Server) TemplateRootPath() string {
	return s.resolvePath(s.GetConfig().TemplateRoot)
}

// StaticRootPath returns the configured static resource root resolved
// against the workspace root.
func (s *Server) StaticRootPath() string {
	return s.resolvePath(s.GetConfig().StaticRoot)
}

// dataDirPaths returns the configured schema directories resolved against
// the workspace root.
func (s *Server) dataDirPaths() []string {
	cfg := s.GetConfig()
	out := make([]string, 0, len(cfg.DataDirs))
	for _, dir := range cfg.DataDirs {
		if resolved := s.resolvePath(dir); resolved != "" {
			out = append(out, resolved)
		}
	}
	return out
}

func (s *Server) resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	root := s.RootPath()
	if root == "" {
		return p
	}
	return filepath.Join(root, p)
}

// RescanWorkspace rebuilds the fragment index and drops cached schema
// parses. Called after initialization and on configuration changes.
func (s *Server) RescanWorkspace() error {
	s.schemas.InvalidateAll()
	return s.fragments.ScanWorkspace()
}

// GLSPContext returns the GLSP context.
// Access is protected by configMu to prevent concurrent races.
func (s *Server) GLSPContext() *glsp.Context {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.context
}

// SetGLSPContext sets the GLSP context.
// Access is protected by configMu to prevent concurrent races.
func (s *Server) SetGLSPContext(ctx *glsp.Context) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.context = ctx
}

// RegisterFileWatchers registers file watchers for templates and variable
// schema files with the client.
func (s *Server) RegisterFileWatchers(context *glsp.Context) error {
	// Guard against nil or empty context (tests without a real connection)
	if context == nil || context.Call == nil {
		log.Info("Skipping file watcher registration (no client context)")
		return nil
	}

	var watchers []protocol.FileSystemWatcher
	if root := s.TemplateRootPath(); root != "" {
		watchers = append(watchers, protocol.FileSystemWatcher{
			GlobPattern: filepath.ToSlash(filepath.Join(root, "**", "*.html")),
		})
	}
	for _, dir := range s.dataDirPaths() {
		for _, ext := range []string{"json", "yaml", "yml"} {
			watchers = append(watchers, protocol.FileSystemWatcher{
				GlobPattern: filepath.ToSlash(filepath.Join(dir, "**", "*."+ext)),
			})
		}
	}
	if len(watchers) == 0 {
		log.Info("No file watchers to register")
		return nil
	}

	params := protocol.RegistrationParams{
		Registrations: []protocol.Registration{
			{
				ID:     "thymelab-file-watcher",
				Method: "workspace/didChangeWatchedFiles",
				RegisterOptions: protocol.DidChangeWatchedFilesRegistrationOptions{
					Watchers: watchers,
				},
			},
		},
	}

	// client/registerCapability is a request, and Call must not run on the
	// handler goroutine or the server deadlocks waiting for its own reader.
	go func(ctx *glsp.Context) {
		var result any
		ctx.Call("client/registerCapability", params, &result)
		log.Info("File watcher registration completed")
	}(context)

	log.Info("Sent file watcher registration request (%d watchers)", len(watchers))
	return nil
}
