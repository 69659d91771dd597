package generator

import (
	"fmt"
	"strings"
)

// buildPolishPrompt renders the step-one prompt: take the user's casual text
// and ask the model to tailor it for the target platform. Tone and audience
// lines are omitted entirely when blank so the template never shows empty
// placeholders.
func buildPolishPrompt(about, platform, tone, audience, userPrompt string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("The user is using an automated agent to post on %s about their platform herth.\n", platform))
	if about != "" {
		sb.WriteString("About herth:\n")
		sb.WriteString(about)
		sb.WriteString("\n\n")
	}
	sb.WriteString("The user has written a very casual prompt.\n")
	sb.WriteString(fmt.Sprintf("Your job: polish & tailor this prompt for %s so the posting agent can produce a professional final post.\n", platform))
	if tone != "" {
		sb.WriteString(fmt.Sprintf("Desired tone: %s.\n", tone))
	}
	if audience != "" {
		sb.WriteString(fmt.Sprintf("Target audience: %s.\n", audience))
	}
	sb.WriteString("\nUser's original prompt:\n")
	sb.WriteString(userPrompt)
	sb.WriteString("\n\nReturn a single JSON object with keys original_prompt and polished_prompt.\n")
	return sb.String()
}

// buildFinalPrompt renders the step-two prompt: turn the polished prompt
// into a finished post with title, body, and hashtags.
func buildFinalPrompt(platform, polishedPrompt string) string {
	var sb strings.Builder
	sb.WriteString("You are an expert social media content generator.\n\n")
	sb.WriteString(fmt.Sprintf("Write a final polished %s post based on the refined prompt below.\n", platform))
	sb.WriteString("Add:\n")
	sb.WriteString("- A short title (catchy, <8 words)\n")
	sb.WriteString("- A professional post body\n")
	sb.WriteString("- A list of 3-6 hashtags\n\n")
	sb.WriteString("Refined prompt:\n")
	sb.WriteString(polishedPrompt)
	sb.WriteString("\n\nReturn a single JSON object with keys post_title, post_text, and post_hashtags.\n")
	return sb.String()
}
