package htmlsanitize_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/dalemusser/journalhub/internal/app/system/htmlsanitize"
)

func TestSanitize_Empty(t *testing.T) {
	if got := htmlsanitize.Sanitize(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestSanitize_SafeHTML(t *testing.T) {
	input := "<p><strong>Bold</strong> and <em>italic</em></p>"
	if got := htmlsanitize.Sanitize(input); got != input {
		t.Errorf("expected safe HTML preserved, got %q", got)
	}
}

func TestSanitize_RemovesScript(t *testing.T) {
	got := htmlsanitize.Sanitize("<p>Hello</p><script>alert('xss')</script>")
	if got != "<p>Hello</p>" {
		t.Errorf("expected script removed, got %q", got)
	}
}

func TestSanitize_RemovesEventHandlers(t *testing.T) {
	got := htmlsanitize.Sanitize(`<img src="https://cdn.example.com/a.png" onerror="alert(1)">`)
	if strings.Contains(got, "onerror") {
		t.Errorf("expected onerror removed, got %q", got)
	}
	if !strings.Contains(got, `src="https://cdn.example.com/a.png"`) {
		t.Errorf("expected image src kept, got %q", got)
	}
}

func TestSanitize_RemovesJavascriptHref(t *testing.T) {
	got := htmlsanitize.Sanitize(`<a href="javascript:alert('xss')">Click</a>`)
	if strings.Contains(got, "javascript:") {
		t.Errorf("expected javascript: href removed, got %q", got)
	}
}

func TestSanitize_KeepsEditorClasses(t *testing.T) {
	got := htmlsanitize.Sanitize(`<p class="ql-align-center">Centered</p><p class="evil">x</p>`)
	if !strings.Contains(got, `class="ql-align-center"`) {
		t.Errorf("expected editor class kept, got %q", got)
	}
	if strings.Contains(got, "evil") {
		t.Errorf("expected unknown class dropped, got %q", got)
	}
}

func TestHasContent(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"empty", "", false},
		{"empty paragraph", "<p><br></p>", false},
		{"nbsp only", "<p>&nbsp;</p>", false},
		{"text", "<p>Grateful today</p>", true},
		{"image only", `<p><img src="https://cdn.example.com/a.png"></p>`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.HasContent(tt.input); got != tt.want {
				t.Errorf("HasContent(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPlainText(t *testing.T) {
	if got := htmlsanitize.PlainText("<p>A &amp; B</p>"); got != "A & B" {
		t.Errorf("PlainText() = %q", got)
	}
}

func TestImageSources(t *testing.T) {
	in := `<p>x</p><img src="https://b.example.com/journal-images/u1/a"><img alt="y" src="https://b.example.com/p?a=1&amp;b=2">`
	want := []string{
		"https://b.example.com/journal-images/u1/a",
		"https://b.example.com/p?a=1&b=2",
	}
	if got := htmlsanitize.ImageSources(in); !reflect.DeepEqual(got, want) {
		t.Errorf("ImageSources() = %v, want %v", got, want)
	}
	if got := htmlsanitize.ImageSources("<p>none</p>"); len(got) != 0 {
		t.Errorf("expected no sources, got %v", got)
	}
}
