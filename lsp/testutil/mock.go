package testutil

import (
	"path/filepath"

	"github.com/tliron/glsp"

	"github.com/thkwag/thymelab-ls/internal/documents"
	"github.com/thkwag/thymelab-ls/internal/fragments"
	"github.com/thkwag/thymelab-ls/internal/schemas"
	"github.com/thkwag/thymelab-ls/lsp/types"
)

// MockServerContext implements types.ServerContext for testing.
// It provides a minimal implementation with configurable behavior via callback functions.
type MockServerContext struct {
	docs        *documents.Manager
	schemas     *schemas.Manager
	fragments   *fragments.Index
	rootURI     string
	rootPath    string
	config      types.ServerConfig
	glspContext *glsp.Context

	// Optional callbacks for custom behavior in tests
	RescanFunc           func() error
	RegisterWatchersFunc func(*glsp.Context) error

	// Tracking flags for tests that need to verify methods were called
	RescanCalled           bool
	RegisterWatchersCalled bool
}

// NewMockServerContext creates a new mock server context with default behavior
func NewMockServerContext() *MockServerContext {
	return &MockServerContext{
		docs:      documents.NewManager(),
		schemas:   schemas.NewManager(),
		fragments: fragments.NewIndex(),
		config:    types.DefaultConfig(),
	}
}

// OpenTemplate opens an HTML document in the mock's document manager
func (m *MockServerContext) OpenTemplate(uri, content string) error {
	return m.docs.DidOpen(uri, "html", 1, content)
}

// Document returns the document with the given URI
func (m *MockServerContext) Document(uri string) *documents.Document {
	return m.docs.Get(uri)
}

// DocumentManager returns the document manager
func (m *MockServerContext) DocumentManager() *documents.Manager {
	return m.docs
}

// AllDocuments returns all tracked documents
func (m *MockServerContext) AllDocuments() []*documents.Document {
	return m.docs.GetAll()
}

// Schemas returns the variable schema manager
func (m *MockServerContext) Schemas() *schemas.Manager {
	return m.schemas
}

// Fragments returns the fragment definition index
func (m *MockServerContext) Fragments() *fragments.Index {
	return m.fragments
}

// RootURI returns the workspace root URI
func (m *MockServerContext) RootURI() string {
	return m.rootURI
}

// RootPath returns the workspace root path
func (m *MockServerContext) RootPath() string {
	return m.rootPath
}

// SetRootURI sets the workspace root URI
func (m *MockServerContext) SetRootURI(uri string) {
	m.rootURI = uri
}

// SetRootPath sets the workspace root path
func (m *MockServerContext) SetRootPath(path string) {
	m.rootPath = path
}

// GetConfig returns the server configuration
func (m *MockServerContext) GetConfig() types.ServerConfig {
	return m.config
}

// SetConfig sets the server configuration and repoints the managers,
// mirroring the real server.
func (m *MockServerContext) SetConfig(config types.ServerConfig) {
	m.config = config
	dirs := make([]string, 0, len(config.DataDirs))
	for _, dir := range config.DataDirs {
		dirs = append(dirs, m.resolvePath(dir))
	}
	m.schemas.SetDataDirs(dirs)
	m.schemas.SetPatterns(config.SchemaPatterns)
	m.fragments.SetTemplateRoot(m.TemplateRootPath())
}

// TemplateRootPath returns the resolved template root
func (m *MockServerContext) TemplateRootPath() string {
	return m.resolvePath(m.config.TemplateRoot)
}

// StaticRootPath returns the resolved static resource root
func (m *MockServerContext) StaticRootPath() string {
	return m.resolvePath(m.config.StaticRoot)
}

func (m *MockServerContext) resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || m.rootPath == "" {
		return p
	}
	return filepath.Join(m.rootPath, p)
}

// RescanWorkspace records the call and defers to RescanFunc when set
func (m *MockServerContext) RescanWorkspace() error {
	m.RescanCalled = true
	if m.RescanFunc != nil {
		return m.RescanFunc()
	}
	m.schemas.InvalidateAll()
	return m.fragments.ScanWorkspace()
}

// RegisterFileWatchers records the call and defers to RegisterWatchersFunc when set
func (m *MockServerContext) RegisterFileWatchers(ctx *glsp.Context) error {
	m.RegisterWatchersCalled = true
	if m.RegisterWatchersFunc != nil {
		return m.RegisterWatchersFunc(ctx)
	}
	return nil
}

// GLSPContext returns the stored GLSP context
func (m *MockServerContext) GLSPContext() *glsp.Context {
	return m.glspContext
}

// SetGLSPContext stores the GLSP context
func (m *MockServerContext) SetGLSPContext(ctx *glsp.Context) {
	m.glspContext = ctx
}

// Verify interface compliance
var _ types.ServerContext = (*MockServerContext)(nil)
