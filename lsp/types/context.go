package types

import (
	"github.com/tliron/glsp"

	"github.com/thkwag/thymelab-ls/internal/documents"
	"github.com/thkwag/thymelab-ls/internal/fragments"
	"github.com/thkwag/thymelab-ls/internal/schemas"
)

// ServerContext provides all dependencies needed for LSP handlers.
// This unified context eliminates the need for handler-specific interfaces
// and enables dependency injection for testing.
type ServerContext interface {
	// Document operations
	Document(uri string) *documents.Document
	DocumentManager() *documents.Manager
	AllDocuments() []*documents.Document

	// Analysis data
	Schemas() *schemas.Manager
	Fragments() *fragments.Index

	// Workspace operations
	RootURI() string
	RootPath() string
	SetRootURI(uri string)
	SetRootPath(path string)

	// Configuration. TemplateRootPath and StaticRootPath are the
	// configured roots resolved against the workspace root.
	GetConfig() ServerConfig
	SetConfig(config ServerConfig)
	TemplateRootPath() string
	StaticRootPath() string

	// Workspace initialization and rescans
	RescanWorkspace() error
	RegisterFileWatchers(ctx *glsp.Context) error

	// LSP context (for client notifications outside a request)
	GLSPContext() *glsp.Context
	SetGLSPContext(ctx *glsp.Context)
}
