package generator

import (
	"context"
	"strings"
)

// MockLLM is a canned-response client for local runs and tests; it never
// calls out. It tells the two pipeline steps apart by the JSON keys each
// prompt asks for.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt string) (string, error) {
	if strings.Contains(prompt, "post_title") {
		return `{"post_title":"Sample Post Title","post_text":"This is a sample post body produced without calling a model.","post_hashtags":["#herth","#sample"]}`, nil
	}
	return `{"original_prompt":"sample","polished_prompt":"A polished sample prompt for the posting agent."}`, nil
}
