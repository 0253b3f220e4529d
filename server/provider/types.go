package provider

// Part is a single piece of content. Only text parts are produced or read by the relay.
type Part struct {
	Text string `json:"text,omitempty"`
}

// Content is one turn of a conversation.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// GenerateRequest is the body of a generateContent call.
type GenerateRequest struct {
	Contents []Content `json:"contents"`
}

// Candidate is one generated alternative.
type Candidate struct {
	Content      *Content `json:"content,omitempty"`
	FinishReason string   `json:"finishReason,omitempty"`
}

// GenerateResponse is the subset of the generateContent response the relay reads.
type GenerateResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// NewGenerateRequest wraps message as a single user turn.
func NewGenerateRequest(message string) GenerateRequest {
	return GenerateRequest{
		Contents: []Content{
			{
				Role:  "user",
				Parts: []Part{{Text: message}},
			},
		},
	}
}

// FirstText returns candidates[0].content.parts[0].text, or "" if any step is missing.
func (r *GenerateResponse) FirstText() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	content := r.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return ""
	}
	return content.Parts[0].Text
}
