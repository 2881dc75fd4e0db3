package editor

import (
	"fmt"
	"strings"

	"github.com/starford/mdpad/internal/apperr"
)

// Format names a toolbar button.
type Format string

const (
	FormatBold          Format = "bold"
	FormatItalic        Format = "italic"
	FormatStrikethrough Format = "strikethrough"
	FormatCode          Format = "code"
	FormatQuote         Format = "quote"
	FormatImage         Format = "image"
	FormatOrderedList   Format = "ordered"
	FormatUnorderedList Format = "unordered"
)

// ListKind selects the list marker inserted by InsertList.
type ListKind string

const (
	ListOrdered   ListKind = "ordered"
	ListUnordered ListKind = "unordered"
)

var formatMarkup = map[Format]string{
	FormatBold:          "**",
	FormatItalic:        "*",
	FormatStrikethrough: "~~",
	FormatCode:          "`",
	FormatQuote:         "> ",
	FormatImage:         "![alt text](image-url)",
	FormatOrderedList:   "1. \n",
	FormatUnorderedList: "- \n",
}

// Formats lists every toolbar format in toolbar order.
func Formats() []Format {
	return []Format{
		FormatBold,
		FormatItalic,
		FormatStrikethrough,
		FormatCode,
		FormatQuote,
		FormatImage,
		FormatOrderedList,
		FormatUnorderedList,
	}
}

// Markup returns the text a format inserts.
func (f Format) Markup() (string, bool) {
	m, ok := formatMarkup[f]
	return m, ok
}

// ParseFormat resolves a toolbar format name, ignoring case and surrounding space.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := formatMarkup[f]; !ok {
		return "", fmt.Errorf("%w: %q", apperr.ErrUnknownFormat, name)
	}
	return f, nil
}

// ListMarkup returns the marker line for a list kind. Anything that is not
// ListOrdered gets the unordered marker.
func ListMarkup(kind ListKind) string {
	if kind == ListOrdered {
		return formatMarkup[FormatOrderedList]
	}
	return formatMarkup[FormatUnorderedList]
}
