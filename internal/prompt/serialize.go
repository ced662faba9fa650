// Package prompt flattens a document into the final prompt text and exports it.
package prompt

import (
	"strings"

	"github.com/csheth/promptasm/internal/document"
)

// DefaultBlockSeparator is written between paragraphs.
const DefaultBlockSeparator = "\n"

// Resolver maps a mentioned file name to its stored content.
type Resolver interface {
	Content(fileName string) (string, bool)
}

// Options tunes serialization.
type Options struct {
	// BlockSeparator is written between blocks. Empty concatenates blocks.
	BlockSeparator string
}

// Serialize walks the document in order: text runs are copied, mentions are
// replaced by the referenced content, and dangling mentions produce nothing.
func Serialize(doc *document.Document, resolver Resolver, opts Options) string {
	var b strings.Builder
	for i, block := range doc.Blocks() {
		if i > 0 {
			b.WriteString(opts.BlockSeparator)
		}
		for _, in := range block.Inlines {
			switch in.Kind {
			case document.KindText:
				b.WriteString(in.Text)
			case document.KindFileMention, document.KindURLMention:
				if resolver == nil {
					continue
				}
				if content, ok := resolver.Content(in.FileName); ok {
					b.WriteString(content)
				}
			}
		}
	}
	return b.String()
}

// Stats summarizes a document for status displays.
type Stats struct {
	Mentions   int
	Dangling   int
	Chars      int
	Paragraphs int
}

// Measure counts mentions, unresolved mentions and output size.
func Measure(doc *document.Document, resolver Resolver, opts Options) Stats {
	stats := Stats{Paragraphs: doc.BlockCount()}
	for _, in := range doc.Mentions() {
		stats.Mentions++
		if resolver == nil {
			stats.Dangling++
			continue
		}
		if _, ok := resolver.Content(in.FileName); !ok {
			stats.Dangling++
		}
	}
	stats.Chars = len([]rune(Serialize(doc, resolver, opts)))
	return stats
}
