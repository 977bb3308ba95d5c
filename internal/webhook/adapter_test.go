package webhook

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize_TwilioShape(t *testing.T) {
	msg, ok := Normalize([]byte(`{"From":"whatsapp:+91-98765","Body":"hello"}`))
	require.True(t, ok)
	require.Equal(t, "whatsapp:+91-98765", msg.From)
	require.Equal(t, "hello", msg.Body)
	require.Equal(t, "twilio", msg.Provider)
}

func TestNormalize_MetaCloudAPIShape(t *testing.T) {
	payload := []byte(`{
		"entry": [{"changes": [{"value": {"messages": [
			{"from": "919876500011", "text": {"body": "hi there"}}
		]}}]}
	]}`)
	msg, ok := Normalize(payload)
	require.True(t, ok)
	require.Equal(t, "919876500011", msg.From)
	require.Equal(t, "hi there", msg.Body)
	require.Equal(t, "meta", msg.Provider)
}

func TestNormalize_LowercaseGenericShape(t *testing.T) {
	msg, ok := Normalize([]byte(`{"from":"555","body":"yo"}`))
	require.True(t, ok)
	require.Equal(t, "555", msg.From)
	require.Equal(t, "yo", msg.Body)
	require.Equal(t, "generic", msg.Provider)
}

func TestNormalize_MissingSender(t *testing.T) {
	_, ok := Normalize([]byte(`{"Body":"hello"}`))
	require.False(t, ok)
}

func TestNormalize_InvalidJSON(t *testing.T) {
	_, ok := Normalize([]byte("not json at all"))
	require.False(t, ok)
}

func TestNormalize_EmptyBodyStillOK(t *testing.T) {
	msg, ok := Normalize([]byte(`{"From":"555"}`))
	require.True(t, ok)
	require.Empty(t, msg.Body)
}

func TestSessionID(t *testing.T) {
	require.Equal(t, "9198765", SessionID("+91-98765"))
	require.Equal(t, "9198765", SessionID("whatsapp:+91 98765"))
	require.Equal(t, "15551234567", SessionID("+1 (555) 123-4567"))
	require.Empty(t, SessionID("no digits here"))
	require.Empty(t, SessionID(""))
}

func TestCaptureName(t *testing.T) {
	name, ok := CaptureName("my name is Asha")
	require.True(t, ok)
	require.Equal(t, "Asha", name)

	name, ok = CaptureName("Hello, My Name Is Priya and I need help")
	require.True(t, ok)
	require.Equal(t, "Priya", name)

	_, ok = CaptureName("hello there")
	require.False(t, ok)

	_, ok = CaptureName("")
	require.False(t, ok)
}
