// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of the conversation transcript. The transcript only
// holds user and assistant turns; the system preamble is rebuilt for every
// request and never stored.
type Turn struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// ArchivedTurn is a Turn as recorded in the transcript archive.
type ArchivedTurn struct {
	Turn `yaml:",inline"`

	// SessionID is the UUID of the chat session that produced the turn.
	SessionID string `json:"session_id" yaml:"session_id"`

	// Seq is the position of the turn within its session, starting at 1.
	Seq int `json:"seq" yaml:"seq"`

	// CreatedAt is when the turn was appended to the transcript.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// SessionSummary describes one archived chat session.
type SessionSummary struct {
	SessionID string    `json:"session_id" yaml:"session_id"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	Turns     int       `json:"turns" yaml:"turns"`
}
