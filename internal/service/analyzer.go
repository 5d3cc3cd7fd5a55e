package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	conversationExcerptChars = 500
	promptExcerptChars       = 300
)

const analyzerSystemPrompt = `You are a project analysis assistant. Given the content of a project, produce a concise synthesis.

Return ONLY a JSON object with exactly these four keys:
- "summary": a paragraph summarizing what the project is about (string)
- "themes": recurring topics across the content (array of strings)
- "insights": notable observations about the project (array of strings)
- "recommendations": suggested next steps (array of strings)

No additional text before or after the JSON.`

// CompletionClient defines the interface for language generation
type CompletionClient interface {
	GenerateCompletion(ctx context.Context, system, user string) (string, error)
}

// Analysis is the structured result of one context analysis.
type Analysis struct {
	Summary         string   `json:"summary"`
	Themes          []string `json:"themes"`
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
}

// AnalyzerService asks the language-generation provider to synthesize a
// project-level summary from gathered content.
type AnalyzerService struct {
	client CompletionClient
}

// NewAnalyzerService creates a new AnalyzerService instance
func NewAnalyzerService(client CompletionClient) *AnalyzerService {
	return &AnalyzerService{client: client}
}

// Analyze builds a single prompt from the gathered content and requests a
// structured summary. A provider reply that is not valid JSON degrades to
// a summary-only Analysis with empty arrays rather than failing the run.
func (s *AnalyzerService) Analyze(ctx context.Context, content *ProjectContent) (*Analysis, error) {
	prompt := buildAnalysisPrompt(content)

	reply, err := s.client.GenerateCompletion(ctx, analyzerSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate analysis: %w", err)
	}

	return parseAnalysis(reply), nil
}

func buildAnalysisPrompt(content *ProjectContent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Conversations (%d):\n", len(content.Conversations))
	for _, c := range content.Conversations {
		title := c.Title
		if title == "" {
			title = c.ID
		}
		fmt.Fprintf(&b, "- %s: %s\n", title, truncate(c.Text, conversationExcerptChars))
	}

	fmt.Fprintf(&b, "\nKnowledge items (%d):\n", len(content.Knowledge))
	for _, k := range content.Knowledge {
		fmt.Fprintf(&b, "- %s: %s\n", k.Title, k.Description)
	}

	fmt.Fprintf(&b, "\nSaved prompts (%d):\n", len(content.Prompts))
	for _, p := range content.Prompts {
		fmt.Fprintf(&b, "- %s: %s\n", p.Name, truncate(p.CompiledText, promptExcerptChars))
	}

	return b.String()
}

// parseAnalysis decodes the provider reply, falling back to a
// summary-only structure when the reply is not the requested JSON.
func parseAnalysis(reply string) *Analysis {
	var analysis Analysis
	if err := json.Unmarshal([]byte(strings.TrimSpace(reply)), &analysis); err == nil {
		if analysis.Themes == nil {
			analysis.Themes = []string{}
		}
		if analysis.Insights == nil {
			analysis.Insights = []string{}
		}
		if analysis.Recommendations == nil {
			analysis.Recommendations = []string{}
		}
		return &analysis
	}

	summary := strings.TrimSpace(reply)
	if summary == "" {
		summary = "Analysis completed"
	}
	return &Analysis{
		Summary:         summary,
		Themes:          []string{},
		Insights:        []string{},
		Recommendations: []string{},
	}
}

// QualityScore is a completeness heuristic on [0, 100]: 20 points apiece
// for having any content, a substantial summary, and each non-empty
// array. It says nothing about whether the analysis is correct.
func QualityScore(content *ProjectContent, analysis *Analysis) int {
	score := 0
	if content.TotalItems() > 0 {
		score += 20
	}
	if len(analysis.Summary) > 100 {
		score += 20
	}
	if len(analysis.Themes) > 0 {
		score += 20
	}
	if len(analysis.Insights) > 0 {
		score += 20
	}
	if len(analysis.Recommendations) > 0 {
		score += 20
	}
	if score > 100 {
		score = 100
	}
	return score
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
