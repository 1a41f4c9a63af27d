package transcript

import (
	"regexp"
	"strings"
)

// Roles understood by the chat completions API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	// Delimiter separates turns when a reply is written back to a note.
	Delimiter = "\n\n---\n\n"
	// Padding precedes replies that are appended without a marker (summaries).
	Padding = "\n\n"
	// DefaultAssistantName tags assistant turns when no name is configured.
	DefaultAssistantName = "Assistant"
)

// turnSplit matches three or more dashes. Shorter runs stay inside the turn.
var turnSplit = regexp.MustCompile(`-{3,}`)

// Message is a single role-tagged turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Marker returns the literal tag that opens an assistant turn, e.g. "**Assistant:**".
func Marker(assistantName string) string {
	if assistantName == "" {
		assistantName = DefaultAssistantName
	}
	return "**" + assistantName + ":**"
}

// Decode splits a note into turns and tags each one with a role.
// Every segment produces a message, so a delimiter at the start or end of the
// note yields an empty user message rather than being dropped.
func Decode(doc, assistantName string) []Message {
	marker := regexp.MustCompile("^" + regexp.QuoteMeta(Marker(assistantName)))

	segments := turnSplit.Split(doc, -1)
	messages := make([]Message, 0, len(segments))
	for _, segment := range segments {
		messages = append(messages, decodeTurn(strings.TrimSpace(segment), marker))
	}
	return messages
}

func decodeTurn(text string, marker *regexp.Regexp) Message {
	loc := marker.FindStringIndex(text)
	if loc == nil {
		return Message{Role: RoleUser, Content: text}
	}
	return Message{
		Role:    RoleAssistant,
		Content: strings.TrimSpace(text[loc[1]:]),
	}
}

// Encode wraps a reply in delimiters and the assistant marker so that
// appending it to a note and decoding again yields an assistant turn.
func Encode(reply, assistantName string) string {
	return Delimiter + Marker(assistantName) + " " + reply + Delimiter
}
