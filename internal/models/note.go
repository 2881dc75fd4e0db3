// Package models defines the JSON shapes mdpad returns to clients.
package models

// NoteItem is one entry of the sidebar note list.
type NoteItem struct {
	Index    int      `json:"index"`
	Label    string   `json:"label"`
	Title    string   `json:"title"`
	Tags     []string `json:"tags"`
	Words    int      `json:"words"`
	Checksum string   `json:"checksum"`
}

// Session is a snapshot of the editing session and the note list.
type Session struct {
	Selection int        `json:"selection"`
	Draft     string     `json:"draft"`
	Editing   bool       `json:"editing"`
	Preview   bool       `json:"preview"`
	CanExport bool       `json:"can_export"`
	Notes     []NoteItem `json:"notes"`
}

// InsertResult is returned by toolbar insertions. The client moves its caret
// to Caret (a UTF-16 offset into Session.Draft).
type InsertResult struct {
	Caret   int     `json:"caret"`
	Session Session `json:"session"`
}

// AddResult is returned by add-note requests.
type AddResult struct {
	Added   bool    `json:"added"`
	Index   int     `json:"index"`
	Session Session `json:"session"`
}

// PreviewResult holds rendered HTML when the preview pane is shown.
type PreviewResult struct {
	Shown bool   `json:"shown"`
	HTML  string `json:"html,omitempty"`
}

// ExportResult describes a saved export.
type ExportResult struct {
	Filename string `json:"filename"`
	Bytes    int    `json:"bytes"`
	Checksum string `json:"checksum"`
	Notes    int    `json:"notes"`
}
