package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/thkwag/thymelab-ls/internal/uriutil"
	"github.com/thkwag/thymelab-ls/lsp/testutil"
	"github.com/thkwag/thymelab-ls/lsp/types"
)

func TestInitialize_StoresWorkspaceRoot(t *testing.T) {
	m := testutil.NewMockServerContext()
	root := t.TempDir()
	rootURI := uriutil.PathToURI(root)

	res, err := Initialize(m, nil, &protocol.InitializeParams{RootURI: &rootURI})
	require.NoError(t, err)

	assert.Equal(t, rootURI, m.RootURI())
	assert.Equal(t, root, m.RootPath())

	result, ok := res.(protocol.InitializeResult)
	require.True(t, ok)
	require.NotNil(t, result.ServerInfo)
	assert.Equal(t, "thymelab-language-server", result.ServerInfo.Name)
	require.NotNil(t, result.Capabilities.CompletionProvider)
	assert.Equal(t, completionTriggers, result.Capabilities.CompletionProvider.TriggerCharacters)
	assert.Equal(t, true, result.Capabilities.DefinitionProvider)
	assert.NotNil(t, result.Capabilities.DocumentLinkProvider)
}

func TestInitialize_RootPathFallback(t *testing.T) {
	m := testutil.NewMockServerContext()
	root := t.TempDir()

	_, err := Initialize(m, nil, &protocol.InitializeParams{RootPath: &root})
	require.NoError(t, err)

	assert.Equal(t, root, m.RootPath())
	assert.Equal(t, uriutil.PathToURI(root), m.RootURI())
}

func TestInitialize_AppliesInitializationOptions(t *testing.T) {
	m := testutil.NewMockServerContext()
	root := t.TempDir()
	rootURI := uriutil.PathToURI(root)

	_, err := Initialize(m, nil, &protocol.InitializeParams{
		RootURI: &rootURI,
		InitializationOptions: map[string]any{
			"thymelab": map[string]any{"templateRoot": "web"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "web", m.GetConfig().TemplateRoot)
}

func TestInitialize_DefaultConfigWithoutOptions(t *testing.T) {
	m := testutil.NewMockServerContext()
	_, err := Initialize(m, nil, &protocol.InitializeParams{})
	require.NoError(t, err)

	assert.Equal(t, types.DefaultConfig(), m.GetConfig())
}

func TestInitialized_ScansAndRegistersWatchers(t *testing.T) {
	m := testutil.NewMockServerContext()
	ctx := &glsp.Context{}

	require.NoError(t, Initialized(m, ctx, &protocol.InitializedParams{}))

	assert.True(t, m.RescanCalled)
	assert.True(t, m.RegisterWatchersCalled)
	assert.Same(t, ctx, m.GLSPContext())
}

func TestInitialized_ScanFailureNotFatal(t *testing.T) {
	m := testutil.NewMockServerContext()
	m.RescanFunc = func() error { return assert.AnError }

	assert.NoError(t, Initialized(m, nil, &protocol.InitializedParams{}))
	assert.True(t, m.RegisterWatchersCalled)
}

func TestShutdown(t *testing.T) {
	m := testutil.NewMockServerContext()
	assert.NoError(t, Shutdown(m, nil))
}

func TestSetTrace(t *testing.T) {
	m := testutil.NewMockServerContext()
	assert.NoError(t, SetTrace(m, nil, &protocol.SetTraceParams{Value: protocol.TraceValueVerbose}))
}
