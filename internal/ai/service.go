package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"google.golang.org/genai"
)

const rationaleModel = "gemini-2.5-flash"

type Service struct {
	Client *genai.Client
}

func NewService(apiKey string) (*Service, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	log.Println("AI Service Initialized Successfully")
	return &Service{Client: client}, nil
}

// GenerateRationales sends one batched prompt covering every question that
// still needs a rationale and returns the model's answers in the same order.
// The response schema pins the output to a JSON array of strings so no
// cleanup pass over the raw text is needed.
func (s *Service) GenerateRationales(ctx context.Context, questionText string) ([]string, error) {
	prompt := fmt.Sprintf(`
Provide a clear and concise rationale or explanation as to why the given answer is correct for each question below in exactly one paragraph with at least 3 sentences each.
Return only a JSON array of strings, one rationale per question, in the same order as the questions.

"%s"
`, questionText)

	result, err := s.Client.Models.GenerateContent(
		ctx,
		rationaleModel,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			ThinkingConfig: &genai.ThinkingConfig{
				ThinkingBudget: genai.Ptr[int32](0),
			},
			ResponseMIMEType: "application/json",
			ResponseSchema: &genai.Schema{
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate rationales: %w", err)
	}

	text := result.Text()
	if text == "" {
		return nil, fmt.Errorf("no text content found in AI response")
	}

	var rationales []string
	if err := json.Unmarshal([]byte(text), &rationales); err != nil {
		return nil, fmt.Errorf("failed to parse AI response JSON: %w", err)
	}

	return rationales, nil
}
