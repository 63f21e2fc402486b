package schemas

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSchema(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestManager(t *testing.T, dirs ...string) *Manager {
	t.Helper()
	m := NewManager()
	m.SetDataDirs(dirs)
	return m
}

func TestManager_LookupObjectPath(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "user.json", `{
		"user": {
			"name": "Jane",
			"address": {"street": "Main St", "zip": "12345"}
		}
	}`)
	m := newTestManager(t, dir)

	node, ok := m.Lookup("user.address.street")
	require.True(t, ok)
	assert.Equal(t, KindString, node.Kind())

	node, ok = m.Lookup("user.address")
	require.True(t, ok)
	assert.Equal(t, KindObject, node.Kind())

	_, ok = m.Lookup("user.missing")
	assert.False(t, ok)
	_, ok = m.Lookup("nobody")
	assert.False(t, ok)
	_, ok = m.Lookup("")
	assert.False(t, ok)
}

func TestManager_ArrayElementResolution(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "items.json", `{
		"items": [
			{"name": "Widget", "price": 9.99}
		]
	}`)
	m := newTestManager(t, dir)

	node, ok := m.Lookup("items")
	require.True(t, ok)
	assert.Equal(t, KindArray, node.Kind())

	// th:each="item : ${items}" completes item.<field> through the
	// collection's element shape.
	node, ok = m.Lookup("items.price")
	require.True(t, ok)
	assert.Equal(t, KindNumber, node.Kind())

	children := m.Children("items")
	require.Len(t, children, 2)
	assert.Equal(t, "name", children[0].Name)
	assert.Equal(t, "price", children[1].Name)
}

func TestManager_JSONWithComments(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "page.json", `{
		// sample model for the landing page
		"page": {
			"title": "Home", /* shown in the tab */
		},
	}`)
	m := newTestManager(t, dir)

	node, ok := m.Lookup("page.title")
	require.True(t, ok)
	assert.Equal(t, KindString, node.Kind())
}

func TestManager_YAMLSchema(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "shop.yaml", `
cart:
  items:
    - sku: "A-1"
      qty: 2
  total: 19.98
`)
	m := newTestManager(t, dir)

	node, ok := m.Lookup("cart.items.qty")
	require.True(t, ok)
	assert.Equal(t, KindNumber, node.Kind())

	node, ok = m.Lookup("cart.total")
	require.True(t, ok)
	assert.Equal(t, KindNumber, node.Kind())
}

func TestManager_NestedDirectoriesDiscovered(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, filepath.Join("admin", "users.json"), `{"admins": ["root"]}`)
	m := newTestManager(t, dir)

	_, ok := m.Lookup("admins")
	assert.True(t, ok)
}

func TestManager_FirstFileWins(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "a.json", `{"greeting": {"first": true}}`)
	writeSchema(t, dir, "b.json", `{"greeting": "second"}`)
	m := newTestManager(t, dir)

	node, ok := m.Lookup("greeting")
	require.True(t, ok)
	assert.Equal(t, KindObject, node.Kind())
}

func TestManager_TopLevelMergedAndSorted(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "a.json", `{"zebra": 1, "apple": 2}`)
	writeSchema(t, dir, "b.yaml", "mango: hi\n")
	m := newTestManager(t, dir)

	children := m.TopLevel()
	require.Len(t, children, 3)
	assert.Equal(t, "apple", children[0].Name)
	assert.Equal(t, "mango", children[1].Name)
	assert.Equal(t, "zebra", children[2].Name)

	assert.Equal(t, children, m.Children(""))
}

func TestManager_MalformedFileSkipped(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "bad.json", `{broken`)
	writeSchema(t, dir, "good.json", `{"ok": true}`)
	m := newTestManager(t, dir)

	_, ok := m.Lookup("ok")
	assert.True(t, ok)
}

func TestManager_CacheHonorsTTL(t *testing.T) {
	dir := t.TempDir()
	path := writeSchema(t, dir, "data.json", `{"flag": false}`)
	m := newTestManager(t, dir)

	current := time.Now()
	m.now = func() time.Time { return current }

	_, ok := m.Lookup("flag")
	require.True(t, ok)

	// Within the TTL the old parse is served even after a rewrite.
	require.NoError(t, os.WriteFile(path, []byte(`{"replaced": true}`), 0o644))
	_, ok = m.Lookup("flag")
	assert.True(t, ok)
	_, ok = m.Lookup("replaced")
	assert.False(t, ok)

	// Past the TTL the file is reread.
	current = current.Add(cacheTTL + time.Second)
	_, ok = m.Lookup("replaced")
	assert.True(t, ok)
	_, ok = m.Lookup("flag")
	assert.False(t, ok)
}

func TestManager_InvalidateForcesReload(t *testing.T) {
	dir := t.TempDir()
	path := writeSchema(t, dir, "data.json", `{"old": 1}`)
	m := newTestManager(t, dir)

	_, ok := m.Lookup("old")
	require.True(t, ok)

	require.NoError(t, os.WriteFile(path, []byte(`{"new": 1}`), 0o644))
	m.Invalidate(path)

	_, ok = m.Lookup("new")
	assert.True(t, ok)
}

func TestManager_CustomPatterns(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "vars.json", `{"seen": 1}`)
	writeSchema(t, dir, "vars.yaml", "hidden: 1\n")
	m := newTestManager(t, dir)
	m.SetPatterns([]string{"**/*.json"})

	_, ok := m.Lookup("seen")
	assert.True(t, ok)
	_, ok = m.Lookup("hidden")
	assert.False(t, ok)
}

func TestManager_NoDirsConfigured(t *testing.T) {
	m := NewManager()

	_, ok := m.Lookup("anything")
	assert.False(t, ok)
	assert.Empty(t, m.TopLevel())
}

func TestNodeKinds(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "kinds.json", `{
		"s": "x", "n": 1.5, "b": true, "o": {}, "a": [1], "z": null
	}`)
	m := newTestManager(t, dir)

	for name, want := range map[string]Kind{
		"s": KindString, "n": KindNumber, "b": KindBool,
		"o": KindObject, "a": KindArray, "z": KindNull,
	} {
		node, ok := m.Lookup(name)
		require.True(t, ok, "variable %s", name)
		assert.Equal(t, want, node.Kind(), "variable %s", name)
	}

	assert.Equal(t, "object", KindObject.String())
	assert.Equal(t, "array", KindArray.String())
	assert.Equal(t, "boolean", KindBool.String())
}
