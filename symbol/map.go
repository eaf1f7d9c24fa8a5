package symbol

import "sync"

// SymbolMap is a mutable working alphabet: a set of code points drawn from
// the built-in Table plus any user-registered glyphs, together with a
// lazily-compiled fast-match index used by the canvas matching engine.
type SymbolMap struct {
	mu sync.Mutex

	builtin      *Table
	allowBuiltin bool
	userGlyphs   *Table

	selected map[rune]bool

	compiled      []*Glyph // sorted by (popcount, cover value), compiled on demand
	compiledDirty bool
}

// New returns an empty SymbolMap backed by the default built-in table, with
// nothing selected yet.
func New() *SymbolMap {
	return &SymbolMap{
		builtin:      NewBuiltinTable(),
		allowBuiltin: true,
		userGlyphs:   NewTable(),
		selected:     make(map[rune]bool),
	}
}

// Clone returns an independent copy sharing the same built-in Table (which
// is immutable) but with its own selection and user-glyph state.
func (m *SymbolMap) Clone() *SymbolMap {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := &SymbolMap{
		builtin:      m.builtin,
		allowBuiltin: m.allowBuiltin,
		userGlyphs:   NewTable(),
		selected:     make(map[rune]bool, len(m.selected)),
	}
	for cp := range m.selected {
		c.selected[cp] = true
	}
	for _, g := range m.userGlyphs.All() {
		cp := *g
		c.userGlyphs.Add(&cp)
	}
	return c
}

// SetAllowBuiltin toggles whether built-in glyphs participate in selection
// at all; when false, later AddByTags/AddByRange calls skip built-in
// glyphs, and Compile and GetGlyph ignore them. Built-in code points
// selected earlier still count for IsSelected and Len.
func (m *SymbolMap) SetAllowBuiltin(allow bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowBuiltin = allow
	m.compiledDirty = true
}

func (m *SymbolMap) glyphByCodePoint(cp rune) (*Glyph, bool) {
	if g, ok := m.userGlyphs.Get(cp); ok {
		return g, true
	}
	if m.allowBuiltin {
		if g, ok := m.builtin.Get(cp); ok {
			return g, true
		}
	}
	return nil, false
}

// AddByTags selects every glyph (builtin, and user glyphs) whose Tags
// intersect tags.
func (m *SymbolMap) AddByTags(tags Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forEachCandidate(func(g *Glyph) {
		if g.Tags&tags != 0 {
			m.selected[g.CodePoint] = true
		}
	})
	m.compiledDirty = true
}

// RemoveByTags deselects every glyph whose Tags intersect tags.
func (m *SymbolMap) RemoveByTags(tags Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for cp := range m.selected {
		g, ok := m.glyphByCodePoint(cp)
		if ok && g.Tags&tags != 0 {
			delete(m.selected, cp)
		}
	}
	m.compiledDirty = true
}

// AddByRange selects every known glyph with CodePoint in [lo, hi].
func (m *SymbolMap) AddByRange(lo, hi rune) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forEachCandidate(func(g *Glyph) {
		if g.CodePoint >= lo && g.CodePoint <= hi {
			m.selected[g.CodePoint] = true
		}
	})
	m.compiledDirty = true
}

// RemoveByRange deselects every selected glyph with CodePoint in [lo, hi].
func (m *SymbolMap) RemoveByRange(lo, hi rune) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for cp := range m.selected {
		if cp >= lo && cp <= hi {
			delete(m.selected, cp)
		}
	}
	m.compiledDirty = true
}

func (m *SymbolMap) forEachCandidate(fn func(g *Glyph)) {
	if m.allowBuiltin {
		for _, g := range m.builtin.All() {
			fn(g)
		}
	}
	for _, g := range m.userGlyphs.All() {
		fn(g)
	}
}

// AddUserGlyph registers a caller-supplied glyph (e.g. rasterized from a
// font) and selects it.
func (m *SymbolMap) AddUserGlyph(g *Glyph) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userGlyphs.Add(g)
	m.selected[g.CodePoint] = true
	m.compiledDirty = true
}

// GetGlyph returns the glyph at cp if it is known (selected or not).
func (m *SymbolMap) GetGlyph(cp rune) (*Glyph, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.glyphByCodePoint(cp)
}

// IsSelected reports whether cp is currently part of the working alphabet.
func (m *SymbolMap) IsSelected(cp rune) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected[cp]
}

// Len returns the number of selected glyphs.
func (m *SymbolMap) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.selected)
}

// Compile builds (or returns the cached) fast-match index: every selected
// glyph, sorted first by popcount and then by its raw bitmap value. The
// canvas matching engine walks this ordering outward from a target cover's
// own popcount, which is where the closest Hamming-distance candidates are
// most likely to cluster.
func (m *SymbolMap) Compile() []*Glyph {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.compiledDirty && m.compiled != nil {
		return m.compiled
	}

	out := make([]*Glyph, 0, len(m.selected))
	for cp := range m.selected {
		g, ok := m.glyphByCodePoint(cp)
		if !ok {
			continue
		}
		out = append(out, g)
	}
	sortGlyphs(out)
	m.compiled = out
	m.compiledDirty = false
	return out
}

func sortGlyphs(gs []*Glyph) {
	// Insertion sort is fine: alphabets are at most a few hundred glyphs
	// and Compile is memoized, so this runs once per config change.
	for i := 1; i < len(gs); i++ {
		j := i
		for j > 0 && glyphLess(gs[j], gs[j-1]) {
			gs[j], gs[j-1] = gs[j-1], gs[j]
			j--
		}
	}
}

func glyphLess(a, b *Glyph) bool {
	pa, pb := a.popcount(), b.popcount()
	if pa != pb {
		return pa < pb
	}
	if a.IsWide() != b.IsWide() {
		return !a.IsWide()
	}
	if a.IsWide() {
		av := uint64(a.WideCover[0])<<1 | uint64(a.WideCover[1])
		bv := uint64(b.WideCover[0])<<1 | uint64(b.WideCover[1])
		if av != bv {
			return av < bv
		}
	} else if a.Cover != b.Cover {
		return a.Cover < b.Cover
	}
	return a.CodePoint < b.CodePoint
}
