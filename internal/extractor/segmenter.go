package extractor

import (
	"fmt"
	"regexp"
	"strings"
)

type Choice struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

type Question struct {
	Text      string   `json:"question_text"`
	Answer    string   `json:"answer"`
	Rationale string   `json:"rationale"`
	Choices   []Choice `json:"choices"`
}

// Diagnostic records a line or occurrence the extractor skipped and why.
// Extraction is best-effort; these let the caller surface quality instead
// of a bare success flag.
type Diagnostic struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type SegmentResult struct {
	Questions            []Question   `json:"questions"`
	RationaleOccurrences int          `json:"rationale_occurrences"`
	Diagnostics          []Diagnostic `json:"diagnostics"`
}

var choiceMarkerPattern = regexp.MustCompile(`^[A-Z]\.`)

// Segment walks the plain-text lines of a converted document and cuts them
// into question records. Free text accumulates into a pending buffer; a line
// carrying the answer flag closes the buffer out as a question together with
// the choice lines collected since the last one; a line carrying the
// rationale flag attaches its trailing text to the most recently closed
// question. The answer flag check runs before the rationale flag check, so a
// line matching both counts as an answer line.
func Segment(content, answerFlag, rationaleFlag string) SegmentResult {
	result := SegmentResult{Questions: []Question{}, Diagnostics: []Diagnostic{}}

	var currentQuestion strings.Builder
	var choices []Choice

	for i, line := range strings.Split(content, "\n") {
		lineNo := i + 1
		trimmedLine := strings.TrimSpace(line)

		switch {
		case choiceMarkerPattern.MatchString(trimmedLine):
			letter := trimmedLine[:1]
			text := strings.TrimSpace(trimmedLine[2:])
			if hasChoiceLetter(choices, letter) {
				result.Diagnostics = append(result.Diagnostics, Diagnostic{
					Line:   lineNo,
					Reason: fmt.Sprintf("duplicate choice letter %s, keeping the first", letter),
				})
				continue
			}
			choices = append(choices, Choice{Letter: letter, Text: text})

		case answerFlag != "" && strings.Contains(trimmedLine, answerFlag):
			question := strings.TrimSpace(currentQuestion.String())
			_, after, _ := strings.Cut(trimmedLine, answerFlag)
			answer := strings.TrimSuffix(strings.TrimSpace(after), ".")

			if question != "" && len(choices) > 0 && answer != "" {
				result.Questions = append(result.Questions, Question{
					Text:    question,
					Answer:  answer,
					Choices: choices,
				})
			} else {
				result.Diagnostics = append(result.Diagnostics, Diagnostic{
					Line:   lineNo,
					Reason: answerSkipReason(question, choices, answer),
				})
			}

			// Reset whether or not a question was emitted.
			currentQuestion.Reset()
			choices = nil

		case rationaleFlag != "" && strings.Contains(trimmedLine, rationaleFlag):
			result.RationaleOccurrences++
			_, after, _ := strings.Cut(trimmedLine, rationaleFlag)
			rationale := strings.TrimSpace(after)

			if len(result.Questions) == 0 {
				result.Diagnostics = append(result.Diagnostics, Diagnostic{
					Line:   lineNo,
					Reason: "rationale flag before any question, dropped",
				})
				continue
			}
			if rationale != "" {
				result.Questions[len(result.Questions)-1].Rationale = rationale
			}

		case trimmedLine != "":
			currentQuestion.WriteString(trimmedLine)
			currentQuestion.WriteString("\n\n")
		}
	}

	if strings.TrimSpace(currentQuestion.String()) != "" {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Line:   -1,
			Reason: "trailing question text without an answer flag, dropped",
		})
	}

	return result
}

func hasChoiceLetter(choices []Choice, letter string) bool {
	for _, c := range choices {
		if c.Letter == letter {
			return true
		}
	}
	return false
}

func answerSkipReason(question string, choices []Choice, answer string) string {
	switch {
	case question == "":
		return "answer flag with no preceding question text"
	case len(choices) == 0:
		return "answer flag with no choices"
	default:
		return "answer flag with an empty answer"
	}
}
