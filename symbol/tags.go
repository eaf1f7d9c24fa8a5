package symbol

// Tag is a bitmask of symbol categories, used to select or exclude groups
// of glyphs from a SymbolMap's working alphabet.
type Tag uint32

const (
	TagNone Tag = 0

	TagSpace     Tag = 1 << 0
	TagSolid     Tag = 1 << 1
	TagStipple   Tag = 1 << 2
	TagBlock     Tag = 1 << 3
	TagBorder    Tag = 1 << 4
	TagDiagonal  Tag = 1 << 5
	TagDot       Tag = 1 << 6
	TagQuad      Tag = 1 << 7
	TagHHalf     Tag = 1 << 8
	TagVHalf     Tag = 1 << 9
	TagInverted  Tag = 1 << 10
	TagBraille   Tag = 1 << 11
	TagTechnical Tag = 1 << 12
	TagGeometric Tag = 1 << 13
	TagASCII     Tag = 1 << 14
	TagAlpha     Tag = 1 << 15
	TagDigit     Tag = 1 << 16
	TagNarrow    Tag = 1 << 17
	TagWide      Tag = 1 << 18
	TagAmbiguous Tag = 1 << 19
	TagUgly      Tag = 1 << 20
	TagLegacy    Tag = 1 << 21
	TagSextant   Tag = 1 << 22
	TagWedge     Tag = 1 << 23
	TagLatin     Tag = 1 << 24
	TagExtra     Tag = 1 << 30

	TagHalf  = TagHHalf | TagVHalf
	TagAlnum = TagAlpha | TagDigit
	TagBad   = TagAmbiguous | TagUgly

	// TagAll is the default working set: everything except the glyphs
	// explicitly marked EXTRA (rarely-wanted additions) or BAD (ambiguous
	// width / visually noisy legacy glyphs).
	TagAll Tag = 0x1fffffff &^ (TagExtra | TagBad)

	// widthMask is exactly the tags that must partition every glyph
	// (spec §3 invariant: NARROW xor WIDE xor AMBIGUOUS).
	widthMask = TagNarrow | TagWide | TagAmbiguous
)

var tagNames = map[string]Tag{
	"space":     TagSpace,
	"solid":     TagSolid,
	"stipple":   TagStipple,
	"block":     TagBlock,
	"border":    TagBorder,
	"diagonal":  TagDiagonal,
	"dot":       TagDot,
	"quad":      TagQuad,
	"hhalf":     TagHHalf,
	"vhalf":     TagVHalf,
	"half":      TagHalf,
	"inverted":  TagInverted,
	"braille":   TagBraille,
	"technical": TagTechnical,
	"geometric": TagGeometric,
	"ascii":     TagASCII,
	"alpha":     TagAlpha,
	"digit":     TagDigit,
	"alnum":     TagAlnum,
	"narrow":    TagNarrow,
	"wide":      TagWide,
	"ambiguous": TagAmbiguous,
	"ugly":      TagUgly,
	"legacy":    TagLegacy,
	"sextant":   TagSextant,
	"wedge":     TagWedge,
	"latin":     TagLatin,
	"extra":     TagExtra,
	"bad":       TagBad,
	"all":       TagAll,
}

// hasExactlyOneWidthTag reports whether tags carries exactly one of
// {NARROW, WIDE, AMBIGUOUS}, the invariant every selected glyph must hold.
func hasExactlyOneWidthTag(t Tag) bool {
	w := t & widthMask
	return w != 0 && w&(w-1) == 0
}
