package prompt

import "fmt"

// DefaultSystemPrompt frames the assistant as a reflective journaling companion.
const DefaultSystemPrompt = `You are a supportive assistant helping the user think through the notes they write.
The conversation is taken from a markdown note. Turns written by the user are plain text;
your previous turns are included as assistant messages.

Guidelines:
- Ask clarifying questions when the situation is ambiguous.
- Help the user notice unhelpful thinking patterns and suggest balanced alternatives.
- Prefer small, concrete, actionable steps over general advice.
- Keep replies concise and formatted as markdown.
- You are not a substitute for professional care. If the user describes a crisis,
  encourage them to contact local emergency services or a crisis line.`

// SummaryDirective asks the model to condense the conversation instead of continuing it.
func SummaryDirective(language string) string {
	if language == "" {
		language = DefaultLanguage
	}
	return fmt.Sprintf(`Summarize the conversation above in %s.
Write the summary as a markdown table with the columns "Topic", "Key points" and "Next steps".
Do not continue the conversation and do not address the user directly.`, language)
}
