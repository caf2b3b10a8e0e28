package handlers

import (
	"strings"
	"testing"

	"github.com/timmidel/flash/internal/models"
)

func question(position int, rationale string) models.Question {
	return models.Question{Position: position, Rationale: rationale}
}

func TestQuestionsNeedingRationale(t *testing.T) {
	tests := []struct {
		name         string
		questions    []models.Question
		imageIndices []int
		want         []int
	}{
		{
			name: "all satisfied means no candidates",
			questions: []models.Question{
				question(0, "has text"),
				question(1, ""),
			},
			imageIndices: []int{1},
			want:         nil,
		},
		{
			name: "blank and whitespace rationales are candidates",
			questions: []models.Question{
				question(0, ""),
				question(1, "   "),
				question(2, "kept"),
			},
			imageIndices: nil,
			want:         []int{0, 1},
		},
		{
			name: "image indices are excluded by position",
			questions: []models.Question{
				question(0, ""),
				question(1, ""),
				question(2, ""),
			},
			imageIndices: []int{0, 2},
			want:         []int{1},
		},
		{
			name:         "no questions",
			questions:    nil,
			imageIndices: []int{0},
			want:         nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := questionsNeedingRationale(tt.questions, tt.imageIndices)
			if len(got) != len(tt.want) {
				t.Fatalf("candidates: got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("candidate %d: got %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuildRationalePrompt(t *testing.T) {
	questions := []models.Question{
		{
			Position:     0,
			QuestionText: "What color is the sky?",
			Answer:       "A",
			Choices: []models.Choice{
				{Letter: "A", Text: "blue"},
				{Letter: "B", Text: "green"},
			},
		},
		{
			Position:     1,
			QuestionText: "Skipped question",
			Answer:       "B",
		},
		{
			Position:     2,
			QuestionText: "What is two plus two?",
			Answer:       "C",
			Choices: []models.Choice{
				{Letter: "C", Text: "four"},
			},
		},
	}

	prompt := buildRationalePrompt(questions, []int{0, 2})

	want := strings.Join([]string{
		"Question 1: What color is the sky?",
		"A. blue",
		"B. green",
		"Answer: A",
		"",
		"Question 2: What is two plus two?",
		"C. four",
		"Answer: C",
		"",
		"",
	}, "\n")
	if prompt != want {
		t.Errorf("prompt mismatch:\ngot:\n%q\nwant:\n%q", prompt, want)
	}
	if strings.Contains(prompt, "Skipped question") {
		t.Error("prompt should not include questions that were not picked")
	}
}
