package extractor

import (
	"bytes"
	"encoding/base64"
	"testing"
)

func TestExtractImages(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte{0x89, 0x50, 0x4e, 0x47})

	tests := []struct {
		name            string
		markup          string
		wantIndices     []int
		wantOccurrences int
	}{
		{
			name:            "image directly after flag paragraph",
			markup:          `<p>Rationale: see diagram</p><p><img src="data:image/png;base64,` + payload + `"/></p>`,
			wantIndices:     []int{0},
			wantOccurrences: 1,
		},
		{
			name:            "empty paragraphs between flag and image are skipped",
			markup:          `<p>Rationale: below</p><p> </p><p></p><p><img src="data:image/png;base64,` + payload + `"/></p>`,
			wantIndices:     []int{0},
			wantOccurrences: 1,
		},
		{
			name:            "intervening text blocks the image",
			markup:          `<p>Rationale: text wins</p><p>some other paragraph</p><p><img src="data:image/png;base64,` + payload + `"/></p>`,
			wantIndices:     []int{},
			wantOccurrences: 1,
		},
		{
			name: "counter advances on imageless occurrence",
			markup: `<p>Rationale: first has no image</p>` +
				`<p>Rationale: second has one</p><p><img src="data:image/png;base64,` + payload + `"/></p>`,
			wantIndices:     []int{1},
			wantOccurrences: 2,
		},
		{
			name:            "external image is skipped",
			markup:          `<p>Rationale: linked</p><p><img src="https://example.com/img.png"/></p>`,
			wantIndices:     []int{},
			wantOccurrences: 1,
		},
		{
			name:            "non image data uri is skipped",
			markup:          `<p>Rationale: not an image</p><p><img src="data:application/pdf;base64,` + payload + `"/></p>`,
			wantIndices:     []int{},
			wantOccurrences: 1,
		},
		{
			name:            "paragraph not starting with flag is ignored",
			markup:          `<p>The Rationale: appears mid-sentence</p><p><img src="data:image/png;base64,` + payload + `"/></p>`,
			wantIndices:     []int{},
			wantOccurrences: 0,
		},
		{
			name:            "no rationale paragraphs at all",
			markup:          `<p>Just a question</p><p><img src="data:image/png;base64,` + payload + `"/></p>`,
			wantIndices:     []int{},
			wantOccurrences: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ExtractImages(tt.markup, "Rationale:")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.RationaleOccurrences != tt.wantOccurrences {
				t.Errorf("occurrences: got %d, want %d", result.RationaleOccurrences, tt.wantOccurrences)
			}
			if len(result.Images) != len(tt.wantIndices) {
				t.Fatalf("image count: got %d, want %d", len(result.Images), len(tt.wantIndices))
			}
			for i, wantIdx := range tt.wantIndices {
				if result.Images[i].RationaleIndex != wantIdx {
					t.Errorf("image %d index: got %d, want %d", i, result.Images[i].RationaleIndex, wantIdx)
				}
			}
		})
	}
}

func TestExtractImagesDecodesPayload(t *testing.T) {
	raw := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a}
	markup := `<p>Rationale: decoded</p><p><img src="data:image/png;base64,` +
		base64.StdEncoding.EncodeToString(raw) + `"/></p>`

	result, err := ExtractImages(markup, "Rationale:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Images) != 1 {
		t.Fatalf("expected one image, got %d", len(result.Images))
	}
	img := result.Images[0]
	if img.MIME != "image/png" {
		t.Errorf("mime: got %q, want image/png", img.MIME)
	}
	if !bytes.Equal(img.Data, raw) {
		t.Errorf("decoded payload mismatch: got %v, want %v", img.Data, raw)
	}
}

func TestExtractImagesEmptyFlag(t *testing.T) {
	result, err := ExtractImages(`<p>anything</p>`, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RationaleOccurrences != 0 || len(result.Images) != 0 {
		t.Errorf("empty flag should extract nothing, got %+v", result)
	}
}
