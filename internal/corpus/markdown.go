package corpus

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/dupecheck/dupecheck/internal/token"
)

// ExtractFences parses a markdown document and returns one source unit
// per fenced code block, in the fence's declared language. Documentation
// snippets copied from real source then show up against it in a scan.
func ExtractFences(path NormalizedPath, content []byte) []SourceFile {
	md := goldmark.New()
	doc := md.Parser().Parse(gmtext.NewReader(content))

	var files []SourceFile
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || node.Kind() != ast.KindFencedCodeBlock {
			return ast.WalkContinue, nil
		}
		fence := node.(*ast.FencedCodeBlock)

		lines := fence.Lines()
		if lines.Len() == 0 {
			return ast.WalkContinue, nil
		}

		var block bytes.Buffer
		for i := 0; i < lines.Len(); i++ {
			segment := lines.At(i)
			block.Write(segment.Value(content))
		}

		first := lines.At(0)
		blockContent := block.Bytes()
		files = append(files, SourceFile{
			Path:       path,
			Language:   token.LanguageForName(string(fence.Language(content))),
			Content:    blockContent,
			LineOffset: 1 + bytes.Count(content[:first.Start], []byte("\n")),
			Checksum:   Checksum(blockContent),
		})
		return ast.WalkContinue, nil
	})

	return files
}
