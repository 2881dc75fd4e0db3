package mcpserver

import (
	"fmt"
	"strings"

	"github.com/starford/mdpad/internal/editor"
)

const toolbarIntro = `# mdpad Markdown Toolbar

The insert_format tool splices one of the markups below into the text at
[start, end), replacing any selected range. The result becomes the draft, the
selection is dropped and the returned caret sits right after the markup.
Offsets count UTF-16 code units, as a browser textarea does, and are
clamped to the text.

To change an existing note, select it, edit the returned draft and add it
as a new note; typing never rewrites a stored note in place.

| format | inserts |
|---|---|
`

// ToolbarGuide describes every toolbar format and the markup it inserts.
func ToolbarGuide() string {
	var b strings.Builder
	b.WriteString(toolbarIntro)
	for _, f := range editor.Formats() {
		markup, _ := f.Markup()
		fmt.Fprintf(&b, "| `%s` | %s |\n", f, codeSpan(strings.ReplaceAll(markup, "\n", `\n`)))
	}
	return b.String()
}

// codeSpan formats s as inline code. Markup containing a backtick needs a
// double-backtick fence padded with spaces.
func codeSpan(s string) string {
	if strings.Contains(s, "`") {
		return "`` " + s + " ``"
	}
	return "`" + s + "`"
}
