// Package editor implements the editing session that sits between the text
// control and the note store: the draft buffer, the selection, markup
// insertion at the cursor, and the rule that writes drafts back into notes.
package editor

import (
	"github.com/starford/mdpad/internal/notes"
)

// NoSelection is the selection value when no note is loaded.
const NoSelection = -1

// Renderer turns markdown into HTML.
type Renderer interface {
	Render(markdown string) (string, error)
}

// State is a copy of the session's fields.
type State struct {
	Selection int
	Draft     string
	Editing   bool
	Preview   bool
}

// Selected reports whether a note is loaded.
func (s State) Selected() bool {
	return s.Selection != NoSelection
}

// Session is the editing state machine. Every mutating method finishes by
// running reconcile, so the order in which events are applied is the order
// in which commits happen.
//
// Session is not safe for concurrent use.
type Session struct {
	store *notes.Store

	selection int
	draft     string
	editing   bool
	preview   bool
}

// NewSession returns a session with nothing selected and an empty draft.
func NewSession(store *notes.Store) *Session {
	return &Session{store: store, selection: NoSelection}
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	return State{
		Selection: s.selection,
		Draft:     s.draft,
		Editing:   s.editing,
		Preview:   s.preview,
	}
}

// Store returns the note store the session edits.
func (s *Session) Store() *notes.Store {
	return s.store
}

// TextChanged handles a keystroke in the text control. Typing always detaches
// from the selected note and starts a new unsaved draft.
func (s *Session) TextChanged(text string) {
	s.editing = true
	s.selection = NoSelection
	s.draft = text
	s.reconcile()
}

// SelectNote loads the note at index into the draft and leaves preview mode.
// An index that does not name a note is ignored.
func (s *Session) SelectNote(index int) {
	text, err := s.store.Get(index)
	if err != nil {
		return
	}
	s.selection = index
	s.preview = false
	s.draft = text
	s.reconcile()
}

// AddNote saves the draft as a new note, selects it and clears the draft.
// It reports false, changing nothing, when the draft is blank.
func (s *Session) AddNote() (int, bool) {
	index, err := s.store.Add(s.draft)
	if err != nil {
		return NoSelection, false
	}
	s.selection = index
	s.draft = ""
	s.reconcile()
	return index, true
}

// DeleteNote removes the note at index. The selection and draft are cleared
// whichever note was deleted, and even when index named no note.
func (s *Session) DeleteNote(index int) {
	_ = s.store.Delete(index)
	s.selection = NoSelection
	s.draft = ""
	s.reconcile()
}

// TogglePreview flips preview mode.
func (s *Session) TogglePreview() {
	s.preview = !s.preview
}

// InsertMarkup splices markup into the cursor's text, replacing its selected
// range, and treats the result as typed text. It returns the caret offset the
// text control should move to.
func (s *Session) InsertMarkup(markup string, c Cursor) int {
	text, caret := Splice(markup, c)
	s.TextChanged(text)
	return caret
}

// InsertList inserts an ordered or unordered list marker line.
func (s *Session) InsertList(kind ListKind, c Cursor) int {
	return s.InsertMarkup(ListMarkup(kind), c)
}

// InsertFormat inserts the markup of a toolbar format.
func (s *Session) InsertFormat(f Format, c Cursor) (int, error) {
	f, err := ParseFormat(string(f))
	if err != nil {
		return 0, err
	}
	markup, _ := f.Markup()
	return s.InsertMarkup(markup, c), nil
}

// Preview renders the draft when preview mode is on and a note is selected.
// shown is false when the placeholder should be displayed instead.
func (s *Session) Preview(r Renderer) (html string, shown bool, err error) {
	if !s.preview || s.selection == NoSelection {
		return "", false, nil
	}
	html, err = r.Render(s.draft)
	if err != nil {
		return "", false, err
	}
	return html, true, nil
}

// reconcile writes the draft back into the selected note unless the user is
// typing. Typing clears the selection, so in practice this only commits while
// editing is false.
func (s *Session) reconcile() {
	if s.selection != NoSelection && !s.editing {
		_ = s.store.Commit(s.selection, s.draft)
	}
}
