// Package mention detects "@word" triggers before the caret and turns a picked
// file into an inline mention.
package mention

import (
	"regexp"

	"github.com/csheth/promptasm/internal/document"
)

var triggerPattern = regexp.MustCompile(`(?:^|\s)@(\w*)$`)

// Trigger is the transient picker state. Range is only meaningful while Active.
type Trigger struct {
	Active        bool
	Range         document.Range
	SearchTerm    string
	SelectedIndex int
}

// Detect evaluates the text run before a collapsed caret. A range selection or
// a broken pattern yields an inactive trigger.
func Detect(doc *document.Document, selection document.Range) Trigger {
	if !selection.Collapsed() {
		return Trigger{}
	}
	caret := doc.Clamp(selection.Focus)
	before := doc.TextBefore(caret)
	match := triggerPattern.FindStringSubmatch(before)
	if match == nil {
		return Trigger{}
	}
	word := match[1]
	// \w only matches ASCII, so byte length equals rune count.
	width := 1 + len(word)
	start := document.Point{Block: caret.Block, Offset: caret.Offset - width}
	return Trigger{
		Active:     true,
		Range:      document.Range{Anchor: start, Focus: caret},
		SearchTerm: word,
	}
}
