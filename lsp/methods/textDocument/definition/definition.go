package definition

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

// Definition handles the textDocument/definition request: a template or
// fragment reference under the cursor jumps to the referenced file or the
// fragment declaration; a static-resource link jumps to the resource file.
func Definition(ctx types.ServerContext, context *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	doc := ctx.Document(params.TextDocument.URI)
	if doc == nil || !doc.IsTemplate() {
		return nil, nil
	}

	lines := strings.Split(doc.Content(), "\n")
	row := int(params.Position.Line)
	if row < 0 || row >= len(lines) {
		return nil, nil
	}
	line := lines[row]
	col := position.UTF16ToByteOffset(line, int(params.Position.Character))

	value, _, ok := analyzer.ReferenceAt(line, col)
	if !ok {
		return nil, nil
	}
	refs := analyzer.ParseReferenceValue(value)
	if len(refs) == 0 {
		return nil, nil
	}

	// The fragment id survives in the raw value; normalization strips it
	fragmentID := fragmentIDOf(value)

	if loc, ok := ctx.Fragments().Resolve(refs[0].Path, fragmentID); ok {
		return location(loc.Path, loc.Line, loc.Character), nil
	}

	// Not a template: probe the static resource root
	if staticRoot := ctx.StaticRootPath(); staticRoot != "" && fragmentID == "" {
		for _, candidate := range analyzer.GetPossibleStaticPaths(refs[0].Path) {
			full := filepath.Join(staticRoot, filepath.FromSlash(candidate))
			if info, err := os.Stat(full); err == nil && !info.IsDir() {
				return location(full, 0, 0), nil
			}
		}
	}

	return nil, nil
}

// fragmentIDOf extracts the fragment name from a raw reference value,
// tolerating wrappers and quotes that normalization removes.
func fragmentIDOf(value string) string {
	sel := strings.Index(value, "::")
	if sel < 0 {
		return ""
	}
	fragment := strings.TrimSpace(value[sel+2:])
	fragment = strings.TrimRight(fragment, "}\"' \t")
	if p := strings.IndexByte(fragment, '('); p >= 0 {
		fragment = strings.TrimSpace(fragment[:p])
	}
	return fragment
}

func location(path string, line, character uint32) protocol.Location {
	pos := protocol.Position{Line: line, Character: character}
	return protocol.Location{
		URI:   uriutil.PathToURI(path),
		Range: protocol.Range{Start: pos, End: pos},
	}
}
