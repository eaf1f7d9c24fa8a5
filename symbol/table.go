package symbol

// Table is a catalogue of glyphs, keyed by code point and filled by Add. The
// built-in table is the default source a SymbolMap draws from; callers may
// also build a private Table to register user-supplied glyphs.
type Table struct {
	byCodePoint map[rune]*Glyph
	order       []rune // insertion order, for deterministic iteration
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{byCodePoint: make(map[rune]*Glyph)}
}

// NewBuiltinTable returns a Table pre-populated with chafa-go's built-in
// alphabet (ASCII ramp, block elements, box-drawing, geometric shapes,
// braille, sextants).
func NewBuiltinTable() *Table {
	t := NewTable()
	for _, g := range builtinGlyphs() {
		t.Add(g)
	}
	return t
}

// Add inserts or overwrites the glyph at g.CodePoint.
func (t *Table) Add(g *Glyph) {
	if _, exists := t.byCodePoint[g.CodePoint]; !exists {
		t.order = append(t.order, g.CodePoint)
	}
	t.byCodePoint[g.CodePoint] = g
}

// Get returns the glyph registered at cp, if any.
func (t *Table) Get(cp rune) (*Glyph, bool) {
	g, ok := t.byCodePoint[cp]
	return g, ok
}

// All returns every glyph in insertion order.
func (t *Table) All() []*Glyph {
	out := make([]*Glyph, 0, len(t.order))
	for _, cp := range t.order {
		out = append(out, t.byCodePoint[cp])
	}
	return out
}

// Len returns the number of glyphs in the table.
func (t *Table) Len() int { return len(t.order) }
