// Package webhook normalizes provider callback payloads into a single
// { from, body } shape. Provider-specific field-name guessing lives here and
// nowhere else.
package webhook

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// Message is a normalized inbound event.
type Message struct {
	From     string
	Body     string
	Provider string
}

// Candidate paths are probed in order; the first non-empty match wins.
// Flat Twilio-style payloads come first, then the Meta Cloud API envelope.
var (
	fromPaths = []string{
		"From",
		"from",
		"WaId",
		"wa_id",
		"sender",
		"entry.0.changes.0.value.messages.0.from",
	}
	bodyPaths = []string{
		"Body",
		"body",
		"text",
		"message",
		"entry.0.changes.0.value.messages.0.text.body",
	}
)

// Normalize extracts sender and body from a raw provider payload. ok is
// false when no sender could be identified; such events cannot be keyed and
// are ignored upstream.
func Normalize(payload []byte) (Message, bool) {
	if !gjson.ValidBytes(payload) {
		return Message{}, false
	}

	msg := Message{
		From:     firstString(payload, fromPaths),
		Body:     firstString(payload, bodyPaths),
		Provider: detectProvider(payload),
	}
	if msg.From == "" {
		return Message{}, false
	}
	return msg, true
}

func firstString(payload []byte, paths []string) string {
	for _, path := range paths {
		if v := gjson.GetBytes(payload, path); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

func detectProvider(payload []byte) string {
	switch {
	case gjson.GetBytes(payload, "entry").Exists():
		return "meta"
	case gjson.GetBytes(payload, "From").Exists():
		return "twilio"
	default:
		return "generic"
	}
}

// SessionID derives the conversation key from a phone number by stripping
// every non-digit character.
func SessionID(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var namePattern = regexp.MustCompile(`(?i)\bmy name is\s+([\p{L}][\p{L}'-]*)`)

// CaptureName extracts a self-reported name from a message body, e.g.
// "my name is Asha" yields "Asha".
func CaptureName(body string) (string, bool) {
	m := namePattern.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	return m[1], true
}
