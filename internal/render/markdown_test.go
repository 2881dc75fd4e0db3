package render

import (
	"strings"
	"testing"
)

func TestRender_Basics(t *testing.T) {
	r := New()
	out, err := r.Render("# Title\n\n**bold** and *italic* and `code`\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{"<h1", "Title</h1>", "<strong>bold</strong>", "<em>italic</em>", "<code>code</code>"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestRender_Lists(t *testing.T) {
	r := New()
	out, err := r.Render("1. one\n2. two\n\n- a\n- b\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "<ol>") || !strings.Contains(out, "<ul>") {
		t.Errorf("expected both list kinds: %s", out)
	}
}

func TestRender_SanitizesScript(t *testing.T) {
	in := "hi <script>alert(1)</script> [x](javascript:alert(1))"

	out, err := New().Render(in)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(out, "<script") || strings.Contains(out, "javascript:") {
		t.Errorf("sanitized output still dangerous: %s", out)
	}
}

func TestRender_EmptyInput(t *testing.T) {
	out, err := New().Render("")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Errorf("empty markdown rendered %q", out)
	}
}

func TestRender_UnsanitizedKeepsHTMLOmission(t *testing.T) {
	// goldmark drops raw HTML unless WithUnsafe is set, so even the
	// unsanitized renderer does not pass script tags through.
	out, err := New(WithSanitize(false)).Render("<script>x</script>\n\ntext")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("raw html leaked: %s", out)
	}
	if !strings.Contains(out, "<p>text</p>") {
		t.Errorf("missing paragraph: %s", out)
	}
}

func TestRender_Strikethrough(t *testing.T) {
	out, err := New(WithSanitize(false)).Render("~~gone~~")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "<del>gone</del>") {
		t.Errorf("missing strikethrough: %s", out)
	}
}
