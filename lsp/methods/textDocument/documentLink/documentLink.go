package documentlink

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/thkwag/thymelab-ls/internal/analyzer"
	"github.com/thkwag/thymelab-ls/internal/position"
	"github.com/thkwag/thymelab-ls/internal/uriutil"
	"github.com/thkwag/thymelab-ls/lsp/types"
)

// DocumentLink handles the textDocument/documentLink request. Every
// resolvable template or static-resource reference becomes a clickable
// link; dynamic and unresolvable references are left undecorated.
func DocumentLink(ctx types.ServerContext, context *glsp.Context, params *protocol.DocumentLinkParams) ([]protocol.DocumentLink, error) {
	doc := ctx.Document(params.TextDocument.URI)
	if doc == nil || !doc.IsTemplate() {
		return nil, nil
	}

	var links []protocol.DocumentLink
	for row, line := range strings.Split(doc.Content(), "\n") {
		for _, ref := range analyzer.FindTemplateReferences(line) {
			target, ok := resolveTarget(ctx, ref.Path)
			if !ok {
				continue
			}
			startChar := position.ByteOffsetToUTF16Uint32(line, ref.StartIndex)
			endChar := position.ByteOffsetToUTF16Uint32(line, ref.StartIndex+len(ref.Path))
			links = append(links, protocol.DocumentLink{
				Range: protocol.Range{
					Start: protocol.Position{Line: uint32(row), Character: startChar}, //nolint:gosec // G115: row bounded by document size
					End:   protocol.Position{Line: uint32(row), Character: endChar},   //nolint:gosec // G115: row bounded by document size
				},
				Target: &target,
			})
		}
	}
	return links, nil
}

// resolveTarget maps a normalized reference path to a file URI, first as a
// template under the template root, then as a static resource.
func resolveTarget(ctx types.ServerContext, refPath string) (string, bool) {
	if loc, ok := ctx.Fragments().Resolve(refPath, ""); ok {
		return uriutil.PathToURI(loc.Path), true
	}

	if root := ctx.TemplateRootPath(); root != "" {
		full := filepath.Join(root, filepath.FromSlash(refPath)+".html")
		if info, err := os.Stat(full); err == nil && !info.IsDir() {
			return uriutil.PathToURI(full), true
		}
	}

	if staticRoot := ctx.StaticRootPath(); staticRoot != "" {
		for _, candidate := range analyzer.GetPossibleStaticPaths(refPath) {
			full := filepath.Join(staticRoot, filepath.FromSlash(candidate))
			if info, err := os.Stat(full); err == nil && !info.IsDir() {
				return uriutil.PathToURI(full), true
			}
		}
	}

	return "", false
}
