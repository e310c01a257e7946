// Package markdown implements codex.Source for local markdown corpora:
// a directory of .md files, each ingested as one document. Formatting is
// dropped through a goldmark AST walk so the chunker sees prose, not
// markup.
package markdown

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	codex "github.com/nevindra/codex"
)

// Source reads every .md file under a directory.
type Source struct {
	site string
	dir  string
}

var _ codex.Source = (*Source)(nil)

// New creates a markdown source rooted at dir.
func New(site, dir string) *Source {
	return &Source{site: site, dir: dir}
}

// Site returns the source name.
func (s *Source) Site() string { return s.site }

// Fetch walks the directory and returns one document per markdown file,
// in lexical path order so re-ingestion is reproducible.
func (s *Source) Fetch(_ context.Context) ([]codex.SourceDocument, error) {
	var paths []string
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".md", ".markdown":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, &codex.FetchError{Site: s.site, Err: err}
	}
	sort.Strings(paths)

	var docs []codex.SourceDocument
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, &codex.FetchError{Site: s.site, Document: filepath.Base(path), Err: err}
		}
		plain := PlainText(content)
		if strings.TrimSpace(plain) == "" {
			continue
		}
		rel, rerr := filepath.Rel(s.dir, path)
		if rerr != nil {
			rel = filepath.Base(path)
		}
		docs = append(docs, codex.SourceDocument{
			Name:  rel,
			Pages: []codex.Page{{Number: 1, Text: plain}},
		})
	}
	return docs, nil
}

// PlainText renders markdown to plain text by walking the goldmark AST:
// inline text and code are kept, block boundaries become blank lines,
// and all markers (emphasis, headings, list bullets, link targets) drop.
func PlainText(source []byte) string {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.AutoLink:
			b.Write(node.URL(source))
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(source))
			}
			b.WriteByte('\n')
		default:
			if n.Type() == ast.TypeBlock && b.Len() > 0 {
				b.WriteString("\n\n")
			}
		}
		return ast.WalkContinue, nil
	})

	return collapseBlankLines(b.String())
}

// collapseBlankLines squeezes runs of blank lines to one and trims edges.
func collapseBlankLines(s string) string {
	var out []string
	blank := 0
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimRight(line, " \t")
		if strings.TrimSpace(trimmed) == "" {
			blank++
			continue
		}
		if blank > 0 && len(out) > 0 {
			out = append(out, "")
		}
		blank = 0
		out = append(out, trimmed)
	}
	return strings.Join(out, "\n")
}
