package schemas

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/thkwag/thymelab-ls/internal/log"
)

// DefaultPatterns are the glob patterns used to discover variable schema
// files under a data directory.
var DefaultPatterns = []string{"**/*.json", "**/*.yaml", "**/*.yml"}

// cacheTTL bounds how stale an on-disk schema parse may get before a lookup
// rereads the file.
const cacheTTL = 5 * time.Second

// Manager loads variable schema files from the configured data directories
// and answers dotted-path lookups against them. A schema file maps top-level
// variable names to sample values whose shapes drive completion.
//
// Parses are cached per file and refreshed when older than the TTL, so a
// burst of lookups during one completion request hits the disk at most once
// per file.
type Manager struct {
	mu       sync.RWMutex
	dirs     []string
	patterns []string
	files    map[string]*cachedFile
	now      func() time.Time
}

type cachedFile struct {
	vars     map[string]any
	loadedAt time.Time
}

// NewManager creates a manager with the default discovery patterns and no
// data directories configured.
func NewManager() *Manager {
	return &Manager{
		patterns: DefaultPatterns,
		files:    make(map[string]*cachedFile),
		now:      time.Now,
	}
}

// SetDataDirs replaces the data directories and drops every cached parse
func (m *Manager) SetDataDirs(dirs []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs = dirs
	m.files = make(map[string]*cachedFile)
}

// SetPatterns replaces the discovery globs and drops every cached parse
func (m *Manager) SetPatterns(patterns []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	m.patterns = patterns
	m.files = make(map[string]*cachedFile)
}

// Invalidate drops the cached parse for one file, typically on a
// didChangeWatchedFiles notification.
func (m *Manager) Invalidate(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, filepath.Clean(path))
}

// InvalidateAll drops every cached parse
func (m *Manager) InvalidateAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = make(map[string]*cachedFile)
}

// Lookup resolves a dotted variable path against the merged schemas. Array
// nodes are traversed through their element shape, so "users.name" resolves
// when "users" is an array of objects with a name field. Call-syntax
// segments never resolve.
func (m *Manager) Lookup(path string) (Node, bool) {
	segments := strings.Split(path, ".")
	if len(segments) == 0 || segments[0] == "" {
		return Node{}, false
	}

	node, ok := m.topLevel(segments[0])
	if !ok {
		return Node{}, false
	}
	for _, seg := range segments[1:] {
		if node.Kind() == KindArray {
			elem, ok := node.Element()
			if !ok {
				return Node{}, false
			}
			node = elem
		}
		next, ok := node.Field(seg)
		if !ok {
			return Node{}, false
		}
		node = next
	}
	return node, true
}

// Children lists the completion candidates under a dotted path. An empty
// path lists the top-level variables of every schema file.
func (m *Manager) Children(path string) []Child {
	if path == "" {
		return m.TopLevel()
	}
	node, ok := m.Lookup(path)
	if !ok {
		return nil
	}
	return node.children()
}

// TopLevel lists every top-level variable across the discovered schema
// files, sorted by name. When two files define the same variable the
// lexically first file wins, matching Lookup.
func (m *Manager) TopLevel() []Child {
	merged := make(map[string]any)
	for _, path := range m.discover() {
		vars, err := m.load(path)
		if err != nil {
			continue
		}
		for name, v := range vars {
			if _, exists := merged[name]; !exists {
				merged[name] = v
			}
		}
	}
	out := make([]Child, 0, len(merged))
	for name, v := range merged {
		out = append(out, Child{Name: name, Node: Node{value: v}})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// topLevel resolves one top-level variable name, first file wins
func (m *Manager) topLevel(name string) (Node, bool) {
	for _, path := range m.discover() {
		vars, err := m.load(path)
		if err != nil {
			continue
		}
		if v, ok := vars[name]; ok {
			return Node{value: v}, true
		}
	}
	return Node{}, false
}

// discover globs the configured directories for schema files, sorted for
// deterministic first-wins merging.
func (m *Manager) discover() []string {
	m.mu.RLock()
	dirs, patterns := m.dirs, m.patterns
	m.mu.RUnlock()

	seen := make(map[string]struct{})
	var paths []string
	for _, dir := range dirs {
		for _, pattern := range patterns {
			matches, err := doublestar.FilepathGlob(filepath.Join(dir, pattern))
			if err != nil {
				log.Warn("schema glob %q under %s: %v", pattern, dir, err)
				continue
			}
			for _, match := range matches {
				match = filepath.Clean(match)
				if _, dup := seen[match]; dup {
					continue
				}
				seen[match] = struct{}{}
				paths = append(paths, match)
			}
		}
	}
	sort.Strings(paths)
	return paths
}

// load returns the parsed variables of one schema file, rereading it when
// the cached parse is older than the TTL.
func (m *Manager) load(path string) (map[string]any, error) {
	m.mu.RLock()
	cached, ok := m.files[path]
	m.mu.RUnlock()
	if ok && m.now().Sub(cached.loadedAt) < cacheTTL {
		return cached.vars, nil
	}

	vars, err := parseFile(path)
	if err != nil {
		log.Warn("schema file %s: %v", path, err)
		return nil, err
	}

	m.mu.Lock()
	m.files[path] = &cachedFile{vars: vars, loadedAt: m.now()}
	m.mu.Unlock()
	return vars, nil
}

// parseFile reads and parses one schema file by extension. JSON files may
// carry comments and trailing commas.
func parseFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}

	vars := make(map[string]any)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &vars); err != nil {
			return nil, fmt.Errorf("parse yaml schema: %w", err)
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), &vars); err != nil {
			return nil, fmt.Errorf("parse json schema: %w", err)
		}
	}
	return vars, nil
}
