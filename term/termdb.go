package term

import (
	"strings"

	"github.com/chafago/chafa/symbol"
	"github.com/gdamore/tcell/v2/terminfo"
)

// TermDb is the built-in table of known terminals, keyed by the detection
// rule that identifies them (spec §4.4, §6.4).
type TermDb struct {
	entries []dbEntry
}

type dbEntry struct {
	name     string
	priority int // higher wins on a tie; "most specific key" per spec §6.4
	match    func(env map[string]string) bool
	build    func() *TermInfo
}

// NewTermDb returns the built-in detection table. Entries are evaluated in
// descending priority order; the first match wins.
func NewTermDb() *TermDb {
	db := &TermDb{}
	db.entries = []dbEntry{
		{name: "kitty", priority: 100, match: envEquals("TERM_PROGRAM", "kitty"), build: buildKitty},
		{name: "wezterm", priority: 100, match: envEquals("TERM_PROGRAM", "WezTerm"), build: buildTruecolorDirect("wezterm")},
		{name: "iterm2", priority: 100, match: envEquals("TERM_PROGRAM", "iTerm.app"), build: buildITerm2},
		{name: "vscode", priority: 90, match: envEquals("TERM_PROGRAM", "vscode"), build: buildTruecolorDirect("vscode")},
		{name: "windows-terminal", priority: 90, match: envSet("WT_SESSION"), build: buildTruecolorDirect("windows-terminal")},
		{name: "konsole", priority: 90, match: envSet("KONSOLE_VERSION"), build: buildTruecolorDirect("konsole")},
		{name: "vte", priority: 80, match: envSet("VTE_VERSION"), build: buildTruecolorDirect("vte")},
		{name: "truecolor-colorterm", priority: 70, match: envIn("COLORTERM", "truecolor", "24bit"), build: buildTruecolorDirect("truecolor")},
		{name: "xterm-256color", priority: 10, match: envEquals("TERM", "xterm-256color"), build: buildIndexed256("xterm-256color")},
		{name: "screen", priority: 5, match: envContains("TERM", "screen"), build: buildPassthrough(PassthroughScreen)},
	}
	return db
}

func envEquals(key, val string) func(map[string]string) bool {
	return func(env map[string]string) bool { return env[key] == val }
}
func envSet(key string) func(map[string]string) bool {
	return func(env map[string]string) bool { return env[key] != "" }
}
func envIn(key string, vals ...string) func(map[string]string) bool {
	return func(env map[string]string) bool {
		for _, v := range vals {
			if env[key] == v {
				return true
			}
		}
		return false
	}
}
func envContains(key, sub string) func(map[string]string) bool {
	return func(env map[string]string) bool { return strings.Contains(env[key], sub) }
}

func baseTruecolor(name string) *TermInfo {
	return &TermInfo{
		Name: name,
		Seqs: NewSeqDb(),
		CanvasModes: map[string]bool{
			"truecolor": true, "indexed256": true, "indexed16": true, "fgbg": true, "rep": true,
		},
		SafeSymbolTags: uint32(symbol.TagAll),
	}
}

func buildTruecolorDirect(name string) func() *TermInfo {
	return func() *TermInfo { return baseTruecolor(name) }
}

func buildKitty() *TermInfo {
	ti := baseTruecolor("kitty")
	ti.PixelModes = map[string]bool{"kitty": true, "sixel": true}
	return ti
}

func buildITerm2() *TermInfo {
	ti := baseTruecolor("iterm2")
	ti.PixelModes = map[string]bool{"iterm2": true}
	return ti
}

func buildIndexed256(name string) func() *TermInfo {
	return func() *TermInfo {
		ti := &TermInfo{
			Name: name,
			Seqs: NewSeqDb(),
			CanvasModes: map[string]bool{
				"indexed256": true, "indexed16": true, "fgbg": true,
			},
			SafeSymbolTags: uint32(symbol.TagAll &^ symbol.TagSextant),
		}
		return ti
	}
}

func buildPassthrough(pt PassthroughType) func() *TermInfo {
	return func() *TermInfo {
		ti := baseTruecolor("screen")
		ti.Passthrough = pt
		return ti
	}
}

// fallbackTermInfo is returned when nothing in the table matches: a
// conservative ANSI-16, no-pixel-mode profile that is safe on essentially
// any terminal emulator, per spec §4.4 "falling back to a conservative
// default".
func fallbackTermInfo() *TermInfo {
	return &TermInfo{
		Name: "fallback",
		Seqs: NewSeqDb(),
		CanvasModes: map[string]bool{
			"indexed16": true, "fgbg": true,
		},
		SafeSymbolTags: uint32(symbol.TagAll &^ (symbol.TagSextant | symbol.TagBraille)),
	}
}

// Detect returns the best-matching TermInfo for the given environment
// snapshot (caller passes a map built from os.Environ()), preferring the
// highest-priority match; ties fall back to table order. If tcell's
// terminfo database recognizes $TERM and reports fewer than 256 colors,
// the detected profile's indexed256 support is downgraded accordingly —
// detection here is env-variable-driven per spec §4.4/§6.4, with tcell's
// terminfo consulted only as a corroborating color-depth signal.
func (db *TermDb) Detect(env map[string]string) *TermInfo {
	var best *dbEntry
	for i := range db.entries {
		e := &db.entries[i]
		if !e.match(env) {
			continue
		}
		if best == nil || e.priority > best.priority {
			best = e
		}
	}
	var ti *TermInfo
	if best != nil {
		ti = best.build()
	} else {
		ti = fallbackTermInfo()
	}

	if term := env["TERM"]; term != "" {
		if real, err := terminfo.LookupTerminfo(term); err == nil && real.Colors < 256 {
			ti.CanvasModes["indexed256"] = false
		}
	}

	if env["TMUX"] != "" {
		return Chain(buildPassthrough(PassthroughTmux)(), ti)
	}
	if strings.Contains(env["TERM"], "screen") && env["STY"] != "" {
		return Chain(buildPassthrough(PassthroughScreen)(), ti)
	}
	return ti
}
