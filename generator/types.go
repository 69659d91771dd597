package generator

// GenerationRequest describes one post-generation job. Immutable once built.
type GenerationRequest struct {
	Prompt    string
	Tone      string
	Audience  string
	Platforms []string
	ImageURLs []string
}

// pipelineState is the working record threaded through the two generation
// steps. prompt starts as the user's raw text and is replaced by the
// polished prompt after step one.
type pipelineState struct {
	prompt    string
	imageURLs []string
}

// PolishResult is the structured output of the polish step.
type PolishResult struct {
	OriginalPrompt string `json:"original_prompt"`
	PolishedPrompt string `json:"polished_prompt"`
}

// FinalPost is the structured output of the final generation step.
type FinalPost struct {
	PostTitle    string   `json:"post_title"`
	PostText     string   `json:"post_text"`
	PostHashtags []string `json:"post_hashtags"`
}

// GenerationResult is what the pipeline hands back to callers.
type GenerationResult struct {
	Success        bool     `json:"success"`
	Platform       string   `json:"platform"`
	PolishedPrompt string   `json:"polished_prompt"`
	PostTitle      string   `json:"post_title"`
	PostText       string   `json:"post_text"`
	PostHashtags   []string `json:"post_hashtags"`
}
