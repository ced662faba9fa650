package tui

import (
	"strings"

	"github.com/muesli/reflow/wrap"
)

type pageLayout struct {
	windowWidth   int
	windowHeight  int
	contentWidth  int
	editorHeight  int
	previewHeight int
}

func newPageLayout() pageLayout {
	return pageLayout{
		contentWidth:  76,
		editorHeight:  8,
		previewHeight: 16,
	}
}

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	innerWidth := width - viewportHorizontalPadding
	if innerWidth < minViewportWidth {
		innerWidth = minViewportWidth
	}
	l.contentWidth = innerWidth
	// hero, editor border, status line and meter
	const chrome = 14
	usable := height - chrome
	if usable < 6 {
		usable = 6
	}
	l.previewHeight = usable
	l.editorHeight = usable - maxPickerRows - 2
	if l.editorHeight < 3 {
		l.editorHeight = 3
	}
}

// textWidth is the wrap width inside a padded, bordered box.
func (l pageLayout) textWidth() int {
	width := l.contentWidth - 2
	if width < 20 {
		width = 20
	}
	return width
}

// hardWrap breaks s at exactly width printable cells, keeping spaces so that
// column arithmetic on the unwrapped line stays valid.
func hardWrap(s string, width int) []string {
	if s == "" {
		return []string{""}
	}
	w := wrap.NewWriter(width)
	w.PreserveSpace = true
	_, _ = w.Write([]byte(s))
	return strings.Split(w.String(), "\n")
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}
