// Package parser derives sidebar summaries (title, tags, word count) from note markdown.
package parser

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const maxTitleLen = 80

var (
	tagRe    = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)
	markerRe = regexp.MustCompile(`^(?:(?:[>*+-]|\d+\.)\s+)+`)
)

// Summary describes a note for list views.
type Summary struct {
	Title string
	Tags  []string
	Words int
}

// Summarize reads optional YAML front matter and the markdown body of a note.
func Summarize(text string) Summary {
	fm, body := splitFrontmatter(text)
	return Summary{
		Title: deriveTitle(fm, body),
		Tags:  extractTags(body, fm),
		Words: len(strings.Fields(body)),
	}
}

// splitFrontmatter separates YAML front matter (between leading --- lines)
// from the body. Without valid front matter the whole text is body.
func splitFrontmatter(text string) (map[string]any, string) {
	const delim = "---"
	trimmed := strings.TrimLeft(text, "\n\r")
	if !strings.HasPrefix(trimmed, delim) {
		return nil, text
	}

	rest := trimmed[len(delim):]
	idx := strings.Index(rest, "\n"+delim)
	if idx < 0 {
		return nil, text
	}

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(rest[:idx]), &fm); err != nil {
		return nil, text
	}
	body := strings.TrimLeft(rest[idx+1+len(delim):], "\n\r")
	return fm, body
}

// extractTags collects tags from the front matter "tags" list, then inline #tags.
func extractTags(body string, fm map[string]any) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" {
			return
		}
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	if list, ok := fm["tags"].([]any); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	}
	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	return out
}

// deriveTitle prefers the front matter title, then the first heading of any
// level, then the first non-empty line with leading markup removed.
func deriveTitle(fm map[string]any, body string) string {
	if s, ok := fm["title"].(string); ok && strings.TrimSpace(s) != "" {
		return truncate(strings.TrimSpace(s))
	}

	first := ""
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if h := strings.TrimLeft(trimmed, "#"); h != trimmed && strings.HasPrefix(h, " ") {
			return truncate(strings.TrimSpace(h))
		}
		if first == "" {
			first = trimmed
		}
	}
	return truncate(strings.TrimSpace(markerRe.ReplaceAllString(first, "")))
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxTitleLen {
		return s
	}
	return string(r[:maxTitleLen-1]) + "…"
}
