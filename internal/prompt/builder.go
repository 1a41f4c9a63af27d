package prompt

import (
	"fmt"

	"note-assistant/internal/transcript"
)

// DefaultLanguage is used when no response language is configured.
const DefaultLanguage = "English"

// BuildInput holds everything needed to assemble an outgoing message list.
type BuildInput struct {
	// Transcript is the decoded note, in document order.
	Transcript []transcript.Message
	// SystemPrompt is appended to the language directive in the system message.
	SystemPrompt string
	// Language is the natural language the model should answer in.
	Language string
	// Summarize appends the summary directive after the transcript.
	Summarize bool
	// Instruction is an optional ad-hoc prompt sent as the final user message.
	Instruction string
}

// LanguageDirective returns the first line of every system message.
func LanguageDirective(language string) string {
	if language == "" {
		language = DefaultLanguage
	}
	return fmt.Sprintf("Respond to the user in %s.\n", language)
}

// Build assembles the message list sent to the provider.
// The order is fixed: system, transcript, summary directive, instruction.
func Build(in BuildInput) []transcript.Message {
	msgs := make([]transcript.Message, 0, len(in.Transcript)+3)
	msgs = append(msgs, transcript.Message{
		Role:    transcript.RoleSystem,
		Content: LanguageDirective(in.Language) + in.SystemPrompt,
	})
	msgs = append(msgs, in.Transcript...)

	if in.Summarize {
		msgs = append(msgs, transcript.Message{
			Role:    transcript.RoleUser,
			Content: SummaryDirective(in.Language),
		})
	}
	if in.Instruction != "" {
		msgs = append(msgs, transcript.Message{
			Role:    transcript.RoleUser,
			Content: in.Instruction,
		})
	}
	return msgs
}
