package fragments

import (
	"fmt"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_html "github.com/tree-sitter/tree-sitter-html/bindings/go"
)

// Definition is one fragment declaration found in a template file.
// Positions are 0-based and point at the attribute value, so a definition
// jump lands on the fragment name.
type Definition struct {
	Name      string
	Line      uint32
	Character uint32
}

// fragmentAttributes are the attribute names that declare a fragment
var fragmentAttributes = map[string]struct{}{
	"th:fragment":     {},
	"layout:fragment": {},
}

// Parser extracts fragment declarations from saved template files. Live
// buffers go through the regex analyzers; tree-sitter is only used here,
// where input is well-formed HTML on disk and precise positions matter.
type Parser struct {
	parser    *sitter.Parser
	attrQuery *sitter.Query
}

var htmlLang = sitter.NewLanguage(tree_sitter_html.Language())

// parserPool is a pool of reusable HTML parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(htmlLang); err != nil {
			panic(fmt.Sprintf("failed to set HTML language: %v", err))
		}

		attrQuery, qerr := sitter.NewQuery(htmlLang, `
			(attribute
				(attribute_name) @attr_name
				(quoted_attribute_value (attribute_value) @attr_value))
		`)
		if qerr != nil {
			panic(fmt.Sprintf("failed to compile attribute query: %v", qerr))
		}

		return &Parser{
			parser:    parser,
			attrQuery: attrQuery,
		}
	},
}

// AcquireParser gets a parser from the pool
func AcquireParser() *Parser {
	p := parserPool.Get().(*Parser)
	p.parser.Reset()
	return p
}

// ReleaseParser returns a parser to the pool
func ReleaseParser(p *Parser) {
	if p != nil {
		parserPool.Put(p)
	}
}

// Close closes the parser and releases its resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
	if p.attrQuery != nil {
		p.attrQuery.Close()
	}
}

// ClosePool closes all parsers in the pool
func ClosePool() {
	for range 100 {
		if p, ok := parserPool.Get().(*Parser); ok && p != nil {
			p.Close()
		}
	}
}

// ParseFragments returns every fragment declaration in the source, in
// document order.
func (p *Parser) ParseFragments(source string) []Definition {
	sourceBytes := []byte(source)
	tree := p.parser.Parse(sourceBytes, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	var defs []Definition
	matches := cursor.Matches(p.attrQuery, tree.RootNode(), sourceBytes)
	for match := matches.Next(); match != nil; match = matches.Next() {
		var attrName string
		var valueNode *sitter.Node
		for _, capture := range match.Captures {
			node := capture.Node
			switch p.attrQuery.CaptureNames()[capture.Index] {
			case "attr_name":
				attrName = string(sourceBytes[node.StartByte():node.EndByte()])
			case "attr_value":
				valueNode = &node
			}
		}
		if valueNode == nil {
			continue
		}
		if _, ok := fragmentAttributes[strings.ToLower(attrName)]; !ok {
			continue
		}

		value := string(sourceBytes[valueNode.StartByte():valueNode.EndByte()])
		name := fragmentName(value)
		if name == "" {
			continue
		}
		defs = append(defs, Definition{
			Name:      name,
			Line:      uint32(valueNode.StartPosition().Row),      //nolint:gosec // G115: positions bounded by file size
			Character: uint32(valueNode.StartPosition().Column),   //nolint:gosec // G115: positions bounded by file size
		})
	}
	return defs
}

// fragmentName strips the parameter list from a declaration value,
// "card(title, body)" declares fragment "card".
func fragmentName(value string) string {
	if p := strings.IndexByte(value, '('); p >= 0 {
		value = value[:p]
	}
	return strings.TrimSpace(value)
}
