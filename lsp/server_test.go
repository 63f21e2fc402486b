package lsp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thkwag/thymelab-ls/lsp/types"
)

func TestNewServer(t *testing.T) {
	s, err := NewServer()
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	assert.NotNil(t, s.DocumentManager())
	assert.NotNil(t, s.Schemas())
	assert.NotNil(t, s.Fragments())
	assert.Equal(t, types.DefaultConfig(), s.GetConfig())
}

func TestServer_RootAccessors(t *testing.T) {
	s, err := NewServer()
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	s.SetRootURI("file:///workspace")
	s.SetRootPath("/workspace")
	assert.Equal(t, "file:///workspace", s.RootURI())
	assert.Equal(t, "/workspace", s.RootPath())
}

func TestServer_ResolvesConfiguredPaths(t *testing.T) {
	s, err := NewServer()
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	root := t.TempDir()
	s.SetRootPath(root)
	s.SetConfig(types.ServerConfig{
		TemplateRoot: "templates",
		StaticRoot:   "static",
		DataDirs:     []string{"data"},
	})

	assert.Equal(t, filepath.Join(root, "templates"), s.TemplateRootPath())
	assert.Equal(t, filepath.Join(root, "static"), s.StaticRootPath())
	assert.Equal(t, filepath.Join(root, "templates"), s.Fragments().TemplateRoot())
}

func TestServer_AbsolutePathsKept(t *testing.T) {
	s, err := NewServer()
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	abs := t.TempDir()
	s.SetRootPath(t.TempDir())
	s.SetConfig(types.ServerConfig{TemplateRoot: abs, StaticRoot: abs})

	assert.Equal(t, abs, s.TemplateRootPath())
	assert.Equal(t, abs, s.StaticRootPath())
}

func TestServer_RescanWorkspace(t *testing.T) {
	s, err := NewServer()
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	root := t.TempDir()
	tpl := filepath.Join(root, "templates", "home.html")
	require.NoError(t, os.MkdirAll(filepath.Dir(tpl), 0o755))
	require.NoError(t, os.WriteFile(tpl, []byte(`<div th:fragment="hero">x</div>`), 0o644))

	s.SetRootPath(root)
	s.SetConfig(types.ServerConfig{TemplateRoot: "templates"})
	require.NoError(t, s.RescanWorkspace())

	_, ok := s.Fragments().Resolve("home", "hero")
	assert.True(t, ok)
}

func TestServer_RegisterFileWatchersWithoutClient(t *testing.T) {
	s, err := NewServer()
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	// Without a connected client there is nothing to register with
	assert.NoError(t, s.RegisterFileWatchers(nil))
}

func TestServer_DocumentLifecycle(t *testing.T) {
	s, err := NewServer()
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	uri := "file:///page.html"
	require.NoError(t, s.DocumentManager().DidOpen(uri, "html", 1, "<html></html>"))
	require.NotNil(t, s.Document(uri))
	assert.Len(t, s.AllDocuments(), 1)
	require.NoError(t, s.DocumentManager().DidClose(uri))
	assert.Nil(t, s.Document(uri))
}
