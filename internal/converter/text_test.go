package converter

import (
	"strings"
	"testing"
)

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   []string
	}{
		{
			name:   "paragraphs become lines",
			markup: `<p>first</p><p>second</p>`,
			want:   []string{"first", "second"},
		},
		{
			name:   "empty paragraphs are dropped",
			markup: `<p>first</p><p>  </p><p>second</p>`,
			want:   []string{"first", "second"},
		},
		{
			name:   "images are skipped",
			markup: `<p>text</p><p><img src="data:image/png;base64,AAAA"/></p>`,
			want:   []string{"text"},
		},
		{
			name:   "top level list items are plain lines",
			markup: `<ol><li>What is the answer?</li></ol>`,
			want:   []string{"What is the answer?"},
		},
		{
			name:   "nested list items get letters",
			markup: `<ol><li>Question text</li><ol><li>first choice</li><li>second choice</li></ol></ol>`,
			want:   []string{"Question text", "A. first choice", "B. second choice"},
		},
		{
			name:   "list nested inside an item also gets letters",
			markup: `<ol><li>Question text<ol><li>first choice</li><li>second choice</li></ol></li></ol>`,
			want:   []string{"Question text", "A. first choice", "B. second choice"},
		},
		{
			name:   "unordered parent also counts as nesting",
			markup: `<ul><li>stem</li><ol><li>alpha</li><li>beta</li></ol></ul>`,
			want:   []string{"stem", "A. alpha", "B. beta"},
		},
		{
			name:   "inline markup is flattened",
			markup: `<p>bold <b>words</b> here</p>`,
			want:   []string{"bold words here"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HTMLToText(tt.markup)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := strings.Join(tt.want, "\n")
			if got != want {
				t.Errorf("text mismatch:\ngot:\n%s\nwant:\n%s", got, want)
			}
		})
	}
}
