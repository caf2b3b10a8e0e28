package extractor

import (
	"strings"
	"testing"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name          string
		lines         []string
		answerFlag    string
		rationaleFlag string
		want          []Question
	}{
		{
			name: "single question with rationale",
			lines: []string{
				"Q1 text",
				"A. choice A text",
				"B. choice B text",
				"Answer: B.",
				"Rationale: because B is correct.",
			},
			answerFlag:    "Answer:",
			rationaleFlag: "Rationale:",
			want: []Question{
				{
					Text:      "Q1 text",
					Answer:    "B",
					Rationale: "because B is correct.",
					Choices: []Choice{
						{Letter: "A", Text: "choice A text"},
						{Letter: "B", Text: "choice B text"},
					},
				},
			},
		},
		{
			name: "multi paragraph question text",
			lines: []string{
				"First paragraph",
				"Second paragraph",
				"A. yes",
				"B. no",
				"Answer: A",
			},
			answerFlag: "Answer:",
			want: []Question{
				{
					Text:   "First paragraph\n\nSecond paragraph",
					Answer: "A",
					Choices: []Choice{
						{Letter: "A", Text: "yes"},
						{Letter: "B", Text: "no"},
					},
				},
			},
		},
		{
			name: "answer flag without choices emits nothing",
			lines: []string{
				"Orphan question",
				"Answer: C",
			},
			answerFlag: "Answer:",
			want:       []Question{},
		},
		{
			name: "answer flag without question text emits nothing",
			lines: []string{
				"A. only a choice",
				"Answer: A",
			},
			answerFlag: "Answer:",
			want:       []Question{},
		},
		{
			name: "empty answer after flag emits nothing",
			lines: []string{
				"Question",
				"A. choice",
				"Answer: .",
			},
			answerFlag: "Answer:",
			want:       []Question{},
		},
		{
			name: "rationale before any question is dropped",
			lines: []string{
				"Rationale: nothing to attach to",
				"Question",
				"A. choice",
				"Answer: A",
			},
			answerFlag:    "Answer:",
			rationaleFlag: "Rationale:",
			want: []Question{
				{
					Text:    "Question",
					Answer:  "A",
					Choices: []Choice{{Letter: "A", Text: "choice"}},
				},
			},
		},
		{
			name: "rationale attaches to the most recent question only",
			lines: []string{
				"First",
				"A. one",
				"Answer: A",
				"Second",
				"B. two",
				"Answer: B",
				"Rationale: belongs to the second",
			},
			answerFlag:    "Answer:",
			rationaleFlag: "Rationale:",
			want: []Question{
				{
					Text:    "First",
					Answer:  "A",
					Choices: []Choice{{Letter: "A", Text: "one"}},
				},
				{
					Text:      "Second",
					Answer:    "B",
					Rationale: "belongs to the second",
					Choices:   []Choice{{Letter: "B", Text: "two"}},
				},
			},
		},
		{
			name: "later rationale overwrites an earlier one",
			lines: []string{
				"Question",
				"A. choice",
				"Answer: A",
				"Rationale: first version",
				"Rationale: second version",
			},
			answerFlag:    "Answer:",
			rationaleFlag: "Rationale:",
			want: []Question{
				{
					Text:      "Question",
					Answer:    "A",
					Rationale: "second version",
					Choices:   []Choice{{Letter: "A", Text: "choice"}},
				},
			},
		},
		{
			name: "trailing question without answer flag is dropped",
			lines: []string{
				"Complete",
				"A. choice",
				"Answer: A",
				"Incomplete trailing question",
				"B. stranded choice",
			},
			answerFlag: "Answer:",
			want: []Question{
				{
					Text:    "Complete",
					Answer:  "A",
					Choices: []Choice{{Letter: "A", Text: "choice"}},
				},
			},
		},
		{
			name: "empty rationale flag never matches",
			lines: []string{
				"Question",
				"A. choice",
				"Answer: A",
			},
			answerFlag:    "Answer:",
			rationaleFlag: "",
			want: []Question{
				{
					Text:    "Question",
					Answer:  "A",
					Choices: []Choice{{Letter: "A", Text: "choice"}},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Segment(strings.Join(tt.lines, "\n"), tt.answerFlag, tt.rationaleFlag)
			if len(result.Questions) != len(tt.want) {
				t.Fatalf("question count: got %d, want %d", len(result.Questions), len(tt.want))
			}
			for i, want := range tt.want {
				got := result.Questions[i]
				if got.Text != want.Text {
					t.Errorf("question %d text: got %q, want %q", i, got.Text, want.Text)
				}
				if got.Answer != want.Answer {
					t.Errorf("question %d answer: got %q, want %q", i, got.Answer, want.Answer)
				}
				if got.Rationale != want.Rationale {
					t.Errorf("question %d rationale: got %q, want %q", i, got.Rationale, want.Rationale)
				}
				if len(got.Choices) != len(want.Choices) {
					t.Fatalf("question %d choice count: got %d, want %d", i, len(got.Choices), len(want.Choices))
				}
				for j, wc := range want.Choices {
					if got.Choices[j] != wc {
						t.Errorf("question %d choice %d: got %+v, want %+v", i, j, got.Choices[j], wc)
					}
				}
			}
		})
	}
}

func TestSegmentRationaleOccurrenceCount(t *testing.T) {
	content := strings.Join([]string{
		"Rationale: early occurrence",
		"Question",
		"A. choice",
		"Answer: A",
		"Rationale: attached",
	}, "\n")

	result := Segment(content, "Answer:", "Rationale:")
	if result.RationaleOccurrences != 2 {
		t.Errorf("rationale occurrences: got %d, want 2", result.RationaleOccurrences)
	}
}

func TestSegmentDiagnostics(t *testing.T) {
	content := strings.Join([]string{
		"Rationale: before anything",
		"Answer: A",
		"No answer follows this",
	}, "\n")

	result := Segment(content, "Answer:", "Rationale:")
	if len(result.Questions) != 0 {
		t.Fatalf("expected no questions, got %d", len(result.Questions))
	}
	if len(result.Diagnostics) != 3 {
		t.Fatalf("expected 3 diagnostics, got %d: %+v", len(result.Diagnostics), result.Diagnostics)
	}
}

func TestSegmentDuplicateChoiceLetterKeepsFirst(t *testing.T) {
	content := strings.Join([]string{
		"Question",
		"A. first",
		"A. second",
		"Answer: A",
	}, "\n")

	result := Segment(content, "Answer:", "")
	if len(result.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(result.Questions))
	}
	choices := result.Questions[0].Choices
	if len(choices) != 1 || choices[0].Text != "first" {
		t.Errorf("expected only the first choice to survive, got %+v", choices)
	}
	if len(result.Diagnostics) != 1 {
		t.Errorf("expected a duplicate-letter diagnostic, got %+v", result.Diagnostics)
	}
}
