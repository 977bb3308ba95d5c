package model

import (
	"time"
)

// Role identifies the author of a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Entry is one turn of a session transcript held in the volatile store.
type Entry struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	Time time.Time `json:"time"`
}

// TranscriptResponse is the response for reading a session transcript.
type TranscriptResponse struct {
	SessionID string  `json:"session_id"`
	Entries   []Entry `json:"entries"`
}
