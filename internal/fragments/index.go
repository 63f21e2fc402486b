package fragments

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/thkwag/thymelab-ls/internal/analyzer"
	"github.com/thkwag/thymelab-ls/internal/log"
)

// Location is a resolved fragment definition: the file it lives in and the
// 0-based position of the declaration.
type Location struct {
	Path      string
	Line      uint32
	Character uint32
}

// Index records every fragment definition under the template root, keyed by
// the root-relative template name references use ("fragments/header" for
// <root>/fragments/header.html).
type Index struct {
	mu         sync.RWMutex
	root       string
	files      map[string]string       // template key -> absolute path
	byTemplate map[string][]Definition // template key -> declarations
}

// NewIndex creates an empty index
func NewIndex() *Index {
	return &Index{
		files:      make(map[string]string),
		byTemplate: make(map[string][]Definition),
	}
}

// SetTemplateRoot points the index at a template root and clears it.
// Callers rescan afterwards.
func (x *Index) SetTemplateRoot(root string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.root = root
	x.files = make(map[string]string)
	x.byTemplate = make(map[string][]Definition)
}

// TemplateRoot returns the configured template root
func (x *Index) TemplateRoot() string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.root
}

// ScanWorkspace indexes every template file under the root. Unreadable
// files are logged and skipped.
func (x *Index) ScanWorkspace() error {
	root := x.TemplateRoot()
	if root == "" {
		return nil
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(root, "**", "*.html"))
	if err != nil {
		return fmt.Errorf("scan templates under %s: %w", root, err)
	}

	parser := AcquireParser()
	defer ReleaseParser(parser)

	for _, match := range matches {
		if err := x.scanFile(parser, match); err != nil {
			log.Warn("index template %s: %v", match, err)
		}
	}
	log.Debug("fragment index scanned %d templates under %s", len(matches), root)
	return nil
}

// ScanFile reindexes one template file, typically on save or a watched-file
// change. Files outside the template root are ignored.
func (x *Index) ScanFile(path string) error {
	if _, ok := x.templateKey(path); !ok {
		return nil
	}
	parser := AcquireParser()
	defer ReleaseParser(parser)
	return x.scanFile(parser, path)
}

// Remove drops a deleted template file from the index
func (x *Index) Remove(path string) {
	key, ok := x.templateKey(path)
	if !ok {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.files, key)
	delete(x.byTemplate, key)
}

// Resolve maps a parsed reference to the definition location. An empty
// fragment id resolves to the top of the template file; a named fragment
// resolves to its declaration. The template file name is the reference form
// without extension.
func (x *Index) Resolve(templateFile, fragmentID string) (Location, bool) {
	key := strings.TrimSuffix(analyzer.NormalizeResourcePath(templateFile), ".html")

	x.mu.RLock()
	defer x.mu.RUnlock()

	path, ok := x.files[key]
	if !ok {
		return Location{}, false
	}
	if fragmentID == "" {
		return Location{Path: path}, true
	}
	for _, def := range x.byTemplate[key] {
		if def.Name == fragmentID {
			return Location{Path: path, Line: def.Line, Character: def.Character}, true
		}
	}
	return Location{}, false
}

// DefinitionsFor lists the fragments a template declares, for completion
// after a "::" selector.
func (x *Index) DefinitionsFor(templateFile string) []Definition {
	key := strings.TrimSuffix(analyzer.NormalizeResourcePath(templateFile), ".html")

	x.mu.RLock()
	defer x.mu.RUnlock()
	return append([]Definition(nil), x.byTemplate[key]...)
}

func (x *Index) scanFile(parser *Parser, path string) error {
	key, ok := x.templateKey(path)
	if !ok {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}
	defs := parser.ParseFragments(string(data))

	x.mu.Lock()
	defer x.mu.Unlock()
	x.files[key] = path
	x.byTemplate[key] = defs
	return nil
}

// templateKey converts an absolute template path to its root-relative
// reference form.
func (x *Index) templateKey(path string) (string, bool) {
	root := x.TemplateRoot()
	if root == "" {
		return "", false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	key := analyzer.NormalizePath(rel)
	if !strings.HasSuffix(key, ".html") {
		return "", false
	}
	return strings.TrimSuffix(key, ".html"), true
}
