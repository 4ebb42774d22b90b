package llm

// Message represents a single message in a model conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ContentBlock is one block of model output. Only text blocks carry answer
// content; other block types are ignored.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
