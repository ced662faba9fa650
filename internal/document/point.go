package document

import "fmt"

// Point addresses a gap between units: Offset units into block Block.
type Point struct {
	Block  int
	Offset int
}

// Compare returns -1, 0 or 1 depending on document order.
func (p Point) Compare(q Point) int {
	switch {
	case p.Block < q.Block:
		return -1
	case p.Block > q.Block:
		return 1
	case p.Offset < q.Offset:
		return -1
	case p.Offset > q.Offset:
		return 1
	default:
		return 0
	}
}

func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.Block, p.Offset)
}

// Range spans from Anchor to Focus. The focus is where the caret sits.
type Range struct {
	Anchor Point
	Focus  Point
}

// Caret returns a collapsed range at p.
func Caret(p Point) Range {
	return Range{Anchor: p, Focus: p}
}

// Collapsed reports whether the range is a caret.
func (r Range) Collapsed() bool {
	return r.Anchor == r.Focus
}

// Edges returns the range endpoints in document order.
func (r Range) Edges() (Point, Point) {
	if r.Anchor.Compare(r.Focus) <= 0 {
		return r.Anchor, r.Focus
	}
	return r.Focus, r.Anchor
}

// Contains reports whether p lies inside the range, start inclusive.
func (r Range) Contains(p Point) bool {
	start, end := r.Edges()
	return p.Compare(start) >= 0 && p.Compare(end) < 0
}
