package domain

import "time"

// LearningMetadata records what a context analysis run covered.
type LearningMetadata struct {
	JobID                 string    `json:"job_id"`
	ConversationsAnalyzed int       `json:"conversations_analyzed"`
	KnowledgeAnalyzed     int       `json:"knowledge_analyzed"`
	PromptsAnalyzed       int       `json:"prompts_analyzed"`
	AnalysisDate          time.Time `json:"analysis_date"`
}

// ProjectContext is the synthesized summary of a project's content.
// At most one row exists per project; each successful analysis overwrites
// it atomically.
type ProjectContext struct {
	ProjectID        string
	ContextSummary   string
	KeyThemes        []string
	LearningMetadata LearningMetadata
	QualityScore     int
	Version          int
	UpdatedAt        time.Time
}
