package domain

// ChatResponse is what the core hands to a presentation collaborator.
type ChatResponse struct {
	Response          string         `json:"response"`
	RelevantDocuments []SearchResult `json:"relevant_documents"`
	ContextUsed       bool           `json:"context_used"`
	Query             string         `json:"query"`
}
