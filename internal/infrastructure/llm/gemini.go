package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"google.golang.org/genai"

	"newsolvr/internal/config"
	"newsolvr/internal/domain"
	"newsolvr/internal/ports"
)

// defaultInstructions is the compiled-in analyst prompt; a config promptPath
// replaces it with an externally maintained template.
const defaultInstructions = `You are a startup-opportunity analyst. You receive the text of one news
article. Identify the single most significant real-world problem the article
describes and return exactly one JSON object with these fields:

- problem_summary: one sentence naming the problem.
- problem_statement: a detailed paragraph describing who has the problem,
  when it occurs, and why existing solutions fall short.
- meaningful_problem, pain_intensity, frequency, market_growth,
  willingness_to_pay, target_customer_clarity, problem_awareness,
  differentiation_potential, software_solution, ai_fit, speed_to_mvp,
  business_potential, time_relevancy: integer scores from 0 (absent/poor)
  to 5 (exceptional) rating the problem as a startup opportunity.
- problem_size: "niche" or "global".
- industry: one of healthcare, technology, manufacturing, financial_services,
  education, energy, government, other.

Score conservatively. If the article describes no real problem, use low
scores rather than inventing one.`

// Gemini implements ports.Analyzer on the Gemini structured-output API.
// Rate limiting is the orchestrator's responsibility, not the client's.
type Gemini struct {
	client       *genai.Client
	model        string
	instructions string
}

var _ ports.Analyzer = (*Gemini)(nil)

// NewGemini builds the analyzer from configuration.
func NewGemini(ctx context.Context, cfg config.GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	instructions := defaultInstructions
	if cfg.PromptPath != "" {
		raw, err := os.ReadFile(cfg.PromptPath)
		if err != nil {
			return nil, fmt.Errorf("read prompt template: %w", err)
		}
		instructions = string(raw)
	}

	return &Gemini{client: client, model: cfg.Model, instructions: instructions}, nil
}

// Analyze sends the article text and returns the validated problem report.
// Any parse or validation failure surfaces as an error for this article only.
func (g *Gemini) Analyze(ctx context.Context, articleText string) (domain.ProblemReport, error) {
	result, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(articleText),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: g.instructions}}},
			ResponseMIMEType:  "application/json",
			ResponseSchema:    reportSchema(),
		},
	)
	if err != nil {
		return domain.ProblemReport{}, fmt.Errorf("generate content: %w", err)
	}

	raw, err := result.Text()
	if err != nil {
		return domain.ProblemReport{}, fmt.Errorf("read response text: %w", err)
	}

	return parseReport(raw)
}

// parseReport decodes and validates one model response.
func parseReport(raw string) (domain.ProblemReport, error) {
	var report domain.ProblemReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return domain.ProblemReport{}, fmt.Errorf("decode report: %w", err)
	}
	if err := report.Validate(); err != nil {
		return domain.ProblemReport{}, err
	}
	return report, nil
}

// reportSchema constrains the model output to the exact report shape.
func reportSchema() *genai.Schema {
	integer := func() *genai.Schema {
		return &genai.Schema{Type: genai.TypeInteger}
	}

	properties := map[string]*genai.Schema{
		"problem_summary":   {Type: genai.TypeString},
		"problem_statement": {Type: genai.TypeString},
		"problem_size":      {Type: genai.TypeString, Enum: domain.ProblemSizes},
		"industry":          {Type: genai.TypeString, Enum: domain.Industries},
	}

	scoreFields := []string{
		"meaningful_problem",
		"pain_intensity",
		"frequency",
		"market_growth",
		"willingness_to_pay",
		"target_customer_clarity",
		"problem_awareness",
		"differentiation_potential",
		"software_solution",
		"ai_fit",
		"speed_to_mvp",
		"business_potential",
		"time_relevancy",
	}
	required := []string{"problem_summary", "problem_statement", "problem_size", "industry"}
	for _, name := range scoreFields {
		properties[name] = integer()
		required = append(required, name)
	}

	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: properties,
		Required:   required,
	}
}
