package document

import (
	"strings"
	"unicode/utf8"
)

// Kind tags the variant held by an Inline.
type Kind int

const (
	KindText Kind = iota
	KindFileMention
	KindURLMention
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindFileMention:
		return "file-mention"
	case KindURLMention:
		return "url-mention"
	default:
		return "unknown"
	}
}

// Inline is one child of a Block: a text run or a mention of a stored file.
type Inline struct {
	Kind     Kind
	Text     string
	FileName string
	URL      string
}

// Text returns a plain text run.
func Text(value string) Inline {
	return Inline{Kind: KindText, Text: value}
}

// FileMention references a stored file by name.
func FileMention(fileName string) Inline {
	return Inline{Kind: KindFileMention, FileName: fileName}
}

// URLMention references a fetched page stored under fileName.
func URLMention(url, fileName string) Inline {
	return Inline{Kind: KindURLMention, URL: url, FileName: fileName}
}

// Atomic reports whether the inline is a void node that behaves as a single
// cursor stop with no editable interior.
func (in Inline) Atomic() bool {
	return in.Kind == KindFileMention || in.Kind == KindURLMention
}

// Units is the number of cursor stops the inline occupies.
func (in Inline) Units() int {
	if in.Atomic() {
		return 1
	}
	return utf8.RuneCountInString(in.Text)
}

// Block is a paragraph.
type Block struct {
	Inlines []Inline
}

// Len returns the number of units in the block.
func (b Block) Len() int {
	total := 0
	for _, in := range b.Inlines {
		total += in.Units()
	}
	return total
}

// Document is an ordered list of blocks. It always holds at least one block and
// every block holds at least one inline.
type Document struct {
	blocks []Block
}

// New returns a document with a single empty paragraph.
func New() *Document {
	return &Document{blocks: []Block{emptyBlock()}}
}

// FromBlocks builds a document from the provided blocks, normalizing them.
func FromBlocks(blocks ...Block) *Document {
	d := &Document{}
	for _, b := range blocks {
		d.blocks = append(d.blocks, normalize(b))
	}
	if len(d.blocks) == 0 {
		d.blocks = []Block{emptyBlock()}
	}
	return d
}

// Paragraph is a convenience constructor for a block.
func Paragraph(inlines ...Inline) Block {
	return Block{Inlines: inlines}
}

// Blocks returns a copy of the document blocks.
func (d *Document) Blocks() []Block {
	out := make([]Block, len(d.blocks))
	for i, b := range d.blocks {
		out[i] = Block{Inlines: append([]Inline(nil), b.Inlines...)}
	}
	return out
}

// BlockCount returns the number of blocks.
func (d *Document) BlockCount() int {
	return len(d.blocks)
}

// Block returns a copy of block i.
func (d *Document) Block(i int) Block {
	b := d.blocks[i]
	return Block{Inlines: append([]Inline(nil), b.Inlines...)}
}

// Mentions returns every atomic inline in document order.
func (d *Document) Mentions() []Inline {
	var out []Inline
	for _, b := range d.blocks {
		for _, in := range b.Inlines {
			if in.Atomic() {
				out = append(out, in)
			}
		}
	}
	return out
}

// Empty reports whether the document holds no text and no mentions.
func (d *Document) Empty() bool {
	for _, b := range d.blocks {
		if b.Len() > 0 {
			return false
		}
	}
	return true
}

// Start is the first point of the document.
func (d *Document) Start() Point {
	return Point{}
}

// End is the last point of the document.
func (d *Document) End() Point {
	last := len(d.blocks) - 1
	return Point{Block: last, Offset: d.blocks[last].Len()}
}

// Clamp moves p inside the document bounds.
func (d *Document) Clamp(p Point) Point {
	if p.Block < 0 {
		return d.Start()
	}
	if p.Block >= len(d.blocks) {
		return d.End()
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	if n := d.blocks[p.Block].Len(); p.Offset > n {
		p.Offset = n
	}
	return p
}

// TextBefore returns the text run that ends at p, scanning backwards until the
// start of the block or the nearest atomic inline.
func (d *Document) TextBefore(p Point) string {
	p = d.Clamp(p)
	units := explode(d.blocks[p.Block])
	start := p.Offset
	for start > 0 && units[start-1].inline == nil {
		start--
	}
	var b strings.Builder
	for _, u := range units[start:p.Offset] {
		b.WriteRune(u.r)
	}
	return b.String()
}

// InlineAt returns the atomic inline occupying the unit that starts at p.
func (d *Document) InlineAt(p Point) (Inline, bool) {
	p = d.Clamp(p)
	units := explode(d.blocks[p.Block])
	if p.Offset >= len(units) || units[p.Offset].inline == nil {
		return Inline{}, false
	}
	return *units[p.Offset].inline, true
}

// unit is a single cursor stop: a rune of text or an atomic inline.
type unit struct {
	r      rune
	inline *Inline
}

func explode(b Block) []unit {
	units := make([]unit, 0, b.Len())
	for i := range b.Inlines {
		in := b.Inlines[i]
		if in.Atomic() {
			copied := in
			units = append(units, unit{inline: &copied})
			continue
		}
		for _, r := range in.Text {
			units = append(units, unit{r: r})
		}
	}
	return units
}

func implode(units []unit) Block {
	var inlines []Inline
	var run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			inlines = append(inlines, Text(run.String()))
			run.Reset()
		}
	}
	for _, u := range units {
		if u.inline != nil {
			flush()
			inlines = append(inlines, *u.inline)
			continue
		}
		run.WriteRune(u.r)
	}
	flush()
	if len(inlines) == 0 {
		inlines = []Inline{Text("")}
	}
	return Block{Inlines: inlines}
}

func normalize(b Block) Block {
	return implode(explode(b))
}

func emptyBlock() Block {
	return Block{Inlines: []Inline{Text("")}}
}
