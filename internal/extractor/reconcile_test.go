package extractor

import "testing"

func TestReconcile(t *testing.T) {
	tests := []struct {
		name        string
		questions   []Question
		images      ImageResult
		textOccs    int
		wantMissing []int
		wantSlots   []RationaleSlot
	}{
		{
			name: "image fills the slot",
			questions: []Question{
				{Text: "Q1", Answer: "A"},
			},
			images: ImageResult{
				Images:               []ExtractedImage{{RationaleIndex: 0}},
				RationaleOccurrences: 1,
			},
			textOccs:    1,
			wantMissing: []int{},
			wantSlots: []RationaleSlot{
				{Position: 0, HasText: false, HasImage: true},
			},
		},
		{
			name: "text fills the slot",
			questions: []Question{
				{Text: "Q1", Answer: "A", Rationale: "because"},
			},
			images:      ImageResult{Images: []ExtractedImage{}, RationaleOccurrences: 1},
			textOccs:    1,
			wantMissing: []int{},
			wantSlots: []RationaleSlot{
				{Position: 0, HasText: true, HasImage: false},
			},
		},
		{
			name: "neither leaves the slot missing",
			questions: []Question{
				{Text: "Q1", Answer: "A", Rationale: "filled"},
				{Text: "Q2", Answer: "B"},
				{Text: "Q3", Answer: "C"},
			},
			images: ImageResult{
				Images:               []ExtractedImage{{RationaleIndex: 2}},
				RationaleOccurrences: 2,
			},
			textOccs:    2,
			wantMissing: []int{1},
			wantSlots: []RationaleSlot{
				{Position: 0, HasText: true, HasImage: false},
				{Position: 1, HasText: false, HasImage: false},
				{Position: 2, HasText: false, HasImage: true},
			},
		},
		{
			name: "both text and image are surfaced together",
			questions: []Question{
				{Text: "Q1", Answer: "A", Rationale: "textual"},
			},
			images: ImageResult{
				Images:               []ExtractedImage{{RationaleIndex: 0}},
				RationaleOccurrences: 1,
			},
			textOccs:    1,
			wantMissing: []int{},
			wantSlots: []RationaleSlot{
				{Position: 0, HasText: true, HasImage: true},
			},
		},
		{
			name: "whitespace rationale does not fill the slot",
			questions: []Question{
				{Text: "Q1", Answer: "A", Rationale: "   "},
			},
			images:      ImageResult{Images: []ExtractedImage{}},
			textOccs:    0,
			wantMissing: []int{0},
			wantSlots: []RationaleSlot{
				{Position: 0, HasText: false, HasImage: false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Reconcile(tt.questions, tt.images, tt.textOccs)
			if len(result.Slots) != len(tt.wantSlots) {
				t.Fatalf("slot count: got %d, want %d", len(result.Slots), len(tt.wantSlots))
			}
			for i, want := range tt.wantSlots {
				if result.Slots[i] != want {
					t.Errorf("slot %d: got %+v, want %+v", i, result.Slots[i], want)
				}
			}
			if len(result.Missing) != len(tt.wantMissing) {
				t.Fatalf("missing count: got %v, want %v", result.Missing, tt.wantMissing)
			}
			for i, want := range tt.wantMissing {
				if result.Missing[i] != want {
					t.Errorf("missing %d: got %d, want %d", i, result.Missing[i], want)
				}
			}
		})
	}
}

func TestReconcileOccurrenceMismatchDiagnostic(t *testing.T) {
	questions := []Question{{Text: "Q1", Answer: "A"}}
	images := ImageResult{Images: []ExtractedImage{}, RationaleOccurrences: 2}

	result := Reconcile(questions, images, 1)
	if len(result.Diagnostics) != 1 {
		t.Fatalf("expected one diagnostic, got %+v", result.Diagnostics)
	}

	aligned := Reconcile(questions, images, 2)
	if len(aligned.Diagnostics) != 0 {
		t.Errorf("expected no diagnostics for equal counts, got %+v", aligned.Diagnostics)
	}
}
