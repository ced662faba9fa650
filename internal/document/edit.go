package document

import "strings"

// InsertText inserts value at p and returns the point right after it. Newlines
// in value split the current block.
func (d *Document) InsertText(p Point, value string) Point {
	p = d.Clamp(p)
	value = strings.ReplaceAll(value, "\r\n", "\n")
	value = strings.ReplaceAll(value, "\r", "\n")
	lines := strings.Split(value, "\n")
	for i, line := range lines {
		if i > 0 {
			p = d.SplitBlock(p)
		}
		if line == "" {
			continue
		}
		units := explode(d.blocks[p.Block])
		insert := make([]unit, 0, len(line))
		for _, r := range line {
			insert = append(insert, unit{r: r})
		}
		units = spliceUnits(units, p.Offset, p.Offset, insert)
		d.blocks[p.Block] = implode(units)
		p.Offset += len(insert)
	}
	return p
}

// InsertInline inserts an inline node at p and returns the point after it.
func (d *Document) InsertInline(p Point, in Inline) Point {
	if !in.Atomic() {
		return d.InsertText(p, in.Text)
	}
	p = d.Clamp(p)
	units := explode(d.blocks[p.Block])
	copied := in
	units = spliceUnits(units, p.Offset, p.Offset, []unit{{inline: &copied}})
	d.blocks[p.Block] = implode(units)
	return Point{Block: p.Block, Offset: p.Offset + 1}
}

// SplitBlock breaks the block at p and returns the start of the new block.
func (d *Document) SplitBlock(p Point) Point {
	p = d.Clamp(p)
	units := explode(d.blocks[p.Block])
	head := implode(append([]unit(nil), units[:p.Offset]...))
	tail := implode(append([]unit(nil), units[p.Offset:]...))
	blocks := make([]Block, 0, len(d.blocks)+1)
	blocks = append(blocks, d.blocks[:p.Block]...)
	blocks = append(blocks, head, tail)
	blocks = append(blocks, d.blocks[p.Block+1:]...)
	d.blocks = blocks
	return Point{Block: p.Block + 1}
}

// Delete removes the content covered by r and returns the collapsed point
// where it used to start.
func (d *Document) Delete(r Range) Point {
	start, end := r.Edges()
	start, end = d.Clamp(start), d.Clamp(end)
	if start == end {
		return start
	}
	if start.Block == end.Block {
		units := explode(d.blocks[start.Block])
		d.blocks[start.Block] = implode(spliceUnits(units, start.Offset, end.Offset, nil))
		return start
	}
	head := explode(d.blocks[start.Block])[:start.Offset]
	tail := explode(d.blocks[end.Block])[end.Offset:]
	merged := implode(append(append([]unit(nil), head...), tail...))
	blocks := make([]Block, 0, len(d.blocks)-(end.Block-start.Block))
	blocks = append(blocks, d.blocks[:start.Block]...)
	blocks = append(blocks, merged)
	blocks = append(blocks, d.blocks[end.Block+1:]...)
	d.blocks = blocks
	return start
}

// DeleteBackward removes the unit before p, joining blocks at a block start.
func (d *Document) DeleteBackward(p Point) Point {
	p = d.Clamp(p)
	if p.Offset == 0 && p.Block == 0 {
		return p
	}
	return d.Delete(Range{Anchor: d.Before(p), Focus: p})
}

// DeleteForward removes the unit after p, joining blocks at a block end.
func (d *Document) DeleteForward(p Point) Point {
	p = d.Clamp(p)
	if p == d.End() {
		return p
	}
	return d.Delete(Range{Anchor: p, Focus: d.After(p)})
}

// Before returns the point one unit to the left, crossing into the previous
// block when at a block start.
func (d *Document) Before(p Point) Point {
	p = d.Clamp(p)
	if p.Offset > 0 {
		return Point{Block: p.Block, Offset: p.Offset - 1}
	}
	if p.Block == 0 {
		return p
	}
	return Point{Block: p.Block - 1, Offset: d.blocks[p.Block-1].Len()}
}

// After returns the point one unit to the right.
func (d *Document) After(p Point) Point {
	p = d.Clamp(p)
	if p.Offset < d.blocks[p.Block].Len() {
		return Point{Block: p.Block, Offset: p.Offset + 1}
	}
	if p.Block == len(d.blocks)-1 {
		return p
	}
	return Point{Block: p.Block + 1}
}

// Above moves to the previous block keeping the offset when possible.
func (d *Document) Above(p Point) Point {
	p = d.Clamp(p)
	if p.Block == 0 {
		return Point{}
	}
	return d.Clamp(Point{Block: p.Block - 1, Offset: p.Offset})
}

// Below moves to the next block keeping the offset when possible.
func (d *Document) Below(p Point) Point {
	p = d.Clamp(p)
	if p.Block == len(d.blocks)-1 {
		return d.End()
	}
	return d.Clamp(Point{Block: p.Block + 1, Offset: p.Offset})
}

// LineStart returns the start of the block containing p.
func (d *Document) LineStart(p Point) Point {
	p = d.Clamp(p)
	return Point{Block: p.Block}
}

// LineEnd returns the end of the block containing p.
func (d *Document) LineEnd(p Point) Point {
	p = d.Clamp(p)
	return Point{Block: p.Block, Offset: d.blocks[p.Block].Len()}
}

func spliceUnits(units []unit, from, to int, insert []unit) []unit {
	out := make([]unit, 0, len(units)-(to-from)+len(insert))
	out = append(out, units[:from]...)
	out = append(out, insert...)
	out = append(out, units[to:]...)
	return out
}
