package editor

import "unicode/utf16"

// Cursor is what the text control reports when a toolbar action fires: its
// full text and the selected range [Start, End). Offsets count UTF-16 code
// units, as a browser textarea's selectionStart and selectionEnd do.
type Cursor struct {
	Text  string
	Start int
	End   int
}

// Splice replaces c.Text[c.Start:c.End] with markup and returns the new text
// together with the caret offset, in UTF-16 units, just past the inserted
// markup.
//
// Offsets are clamped into the text, and an End before Start collapses the
// range to an insertion point at Start. An offset inside a surrogate pair
// splits it; the orphaned half decodes to U+FFFD.
func Splice(markup string, c Cursor) (string, int) {
	text := utf16.Encode([]rune(c.Text))
	start := clamp(c.Start, 0, len(text))
	end := clamp(c.End, start, len(text))

	ins := utf16.Encode([]rune(markup))
	out := make([]uint16, 0, len(text)-(end-start)+len(ins))
	out = append(out, text[:start]...)
	out = append(out, ins...)
	out = append(out, text[end:]...)
	return string(utf16.Decode(out)), start + len(ins)
}

// UTF16Len returns the length of s as a textarea reports it.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
