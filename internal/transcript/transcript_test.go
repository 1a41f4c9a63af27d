package transcript

import (
	"reflect"
	"strings"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name          string
		doc           string
		assistantName string
		want          []Message
	}{
		{
			name:          "user then assistant",
			doc:           "Hello\n\n---\n\n**Assistant:** Hi there",
			assistantName: "Assistant",
			want: []Message{
				{Role: RoleUser, Content: "Hello"},
				{Role: RoleAssistant, Content: "Hi there"},
			},
		},
		{
			name:          "empty document",
			doc:           "",
			assistantName: "Assistant",
			want:          []Message{{Role: RoleUser, Content: ""}},
		},
		{
			name:          "plain text is user",
			doc:           "  just a thought  \n",
			assistantName: "Assistant",
			want:          []Message{{Role: RoleUser, Content: "just a thought"}},
		},
		{
			name:          "short dash runs do not split",
			doc:           "pros -- cons\n\nx - y",
			assistantName: "Assistant",
			want:          []Message{{Role: RoleUser, Content: "pros -- cons\n\nx - y"}},
		},
		{
			name:          "long dash run splits",
			doc:           "one\n------\ntwo",
			assistantName: "Assistant",
			want: []Message{
				{Role: RoleUser, Content: "one"},
				{Role: RoleUser, Content: "two"},
			},
		},
		{
			name:          "leading and trailing delimiters keep empty turns",
			doc:           "---\nquestion\n---",
			assistantName: "Assistant",
			want: []Message{
				{Role: RoleUser, Content: ""},
				{Role: RoleUser, Content: "question"},
				{Role: RoleUser, Content: ""},
			},
		},
		{
			name:          "marker for another name stays user",
			doc:           "**Claude:** hello",
			assistantName: "Assistant",
			want:          []Message{{Role: RoleUser, Content: "**Claude:** hello"}},
		},
		{
			name:          "marker must be anchored",
			doc:           "quote: **Assistant:** hello",
			assistantName: "Assistant",
			want:          []Message{{Role: RoleUser, Content: "quote: **Assistant:** hello"}},
		},
		{
			name:          "marker is case sensitive",
			doc:           "**assistant:** hello",
			assistantName: "Assistant",
			want:          []Message{{Role: RoleUser, Content: "**assistant:** hello"}},
		},
		{
			name:          "only first marker stripped",
			doc:           "**Assistant:** one **Assistant:** two",
			assistantName: "Assistant",
			want:          []Message{{Role: RoleAssistant, Content: "one **Assistant:** two"}},
		},
		{
			name:          "name with regexp metacharacters",
			doc:           "**GPT-4 (beta)+:** answer\n\n---\n\n**GPT-4 (beta):** not me",
			assistantName: "GPT-4 (beta)+",
			want: []Message{
				{Role: RoleAssistant, Content: "answer"},
				{Role: RoleUser, Content: "**GPT-4 (beta):** not me"},
			},
		},
		{
			name:          "empty name falls back to default marker",
			doc:           "**Assistant:** hi",
			assistantName: "",
			want:          []Message{{Role: RoleAssistant, Content: "hi"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.doc, tt.assistantName)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decode() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	got := Encode("Sure!", "Assistant")
	want := "\n\n---\n\n**Assistant:** Sure!\n\n---\n\n"
	if got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	names := []string{"Assistant", "AI Chat Assistant", "Bot.*", "[x]"}
	replies := []string{"Sure!", "  padded reply  ", "multi\nline\n\nreply"}

	for _, name := range names {
		for _, reply := range replies {
			doc := "Question" + Encode(reply, name)
			msgs := Decode(doc, name)

			if len(msgs) != 3 {
				t.Fatalf("Decode(%q) returned %d messages, want 3", doc, len(msgs))
			}
			if msgs[0].Role != RoleUser || msgs[0].Content != "Question" {
				t.Errorf("first message = %#v", msgs[0])
			}
			got := msgs[1]
			if got.Role != RoleAssistant {
				t.Errorf("name %q reply %q: role = %s, want assistant", name, reply, got.Role)
			}
			if want := strings.TrimSpace(reply); got.Content != want {
				t.Errorf("name %q: content = %q, want %q", name, got.Content, want)
			}
			if msgs[2].Role != RoleUser || msgs[2].Content != "" {
				t.Errorf("trailing message = %#v, want empty user turn", msgs[2])
			}
		}
	}
}

func TestMarker(t *testing.T) {
	if got := Marker("Claude"); got != "**Claude:**" {
		t.Errorf("Marker() = %q", got)
	}
	if got := Marker(""); got != "**Assistant:**" {
		t.Errorf("Marker(\"\") = %q", got)
	}
}
