// Package notes holds the ordered, index-addressed note collection.
package notes

import (
	"slices"
	"strings"
	"unicode"

	"github.com/starford/mdpad/internal/apperr"
)

// Store is the ordered note collection. A note's index is its only identity,
// so any index held outside the store goes stale after a Delete.
//
// Store is not safe for concurrent use; the service loop owns it.
type Store struct {
	notes []string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Add appends text and returns its index. Blank text is rejected with
// apperr.ErrEmptyNote and the collection is left unchanged.
func (s *Store) Add(text string) (int, error) {
	if isBlank(text) {
		return -1, apperr.ErrEmptyNote
	}
	s.notes = append(s.notes, text)
	return len(s.notes) - 1, nil
}

// Delete removes the note at index, shifting later notes down by one.
func (s *Store) Delete(index int) error {
	if !s.valid(index) {
		return apperr.ErrIndexOutOfRange
	}
	s.notes = slices.Delete(s.notes, index, index+1)
	return nil
}

// Commit overwrites the note at index with text.
func (s *Store) Commit(index int, text string) error {
	if !s.valid(index) {
		return apperr.ErrIndexOutOfRange
	}
	s.notes[index] = text
	return nil
}

// Get returns the note at index.
func (s *Store) Get(index int) (string, error) {
	if !s.valid(index) {
		return "", apperr.ErrIndexOutOfRange
	}
	return s.notes[index], nil
}

// Len returns the number of notes.
func (s *Store) Len() int {
	return len(s.notes)
}

// All returns a copy of the collection in index order.
func (s *Store) All() []string {
	return slices.Clone(s.notes)
}

// isBlank reports whether text holds nothing but whitespace, using the
// whitespace set of a browser's String.prototype.trim: Unicode Zs, tab, VT,
// FF, BOM and the line terminators LF, CR, U+2028 and U+2029. NEL (U+0085)
// is not whitespace here.
func isBlank(text string) bool {
	return strings.TrimFunc(text, isTrimSpace) == ""
}

func isTrimSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\ufeff', '\u2028', '\u2029':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

func (s *Store) valid(index int) bool {
	return index >= 0 && index < len(s.notes)
}
