// Package codexlog reads Codex CLI session logs from disk and normalizes the
// two on-disk JSONL schemas (the pre-0.32.0 legacy layout and the rollout
// layout introduced with 0.32.0) into a single conversation model.
package codexlog

import (
	"encoding/json"
	"strings"
	"time"
)

// MessageType distinguishes who produced a message.
type MessageType string

const (
	MessageUser      MessageType = "user"
	MessageAssistant MessageType = "assistant"
)

// Part kinds carried by ContentPart.Type.
const (
	PartText       = "text"
	PartInputText  = "input_text"
	PartOutputText = "output_text"
	PartToolUse    = "tool_use"
	PartToolResult = "tool_result"
	PartThinking   = "thinking"
)

// ContentPart is one typed fragment of a message body.
type ContentPart struct {
	Type     string
	Text     string
	ToolName string
	ToolID   string
	// Input holds the raw JSON arguments of a tool_use part. Nil when the
	// arguments were absent or unparsable.
	Input json.RawMessage
}

// Message is a normalized record from either schema. Timestamp is either the
// log's own per-record timestamp (rollout) or synthesized from the session
// start time plus a monotonic counter, which keeps same-second bursts in a
// strict order.
type Message struct {
	SessionID     string
	Timestamp     time.Time
	Type          MessageType
	Parts         []ContentPart
	Cwd           string
	ToolUseResult string
}

// Conversation is one parsed session. A session whose file yields zero
// messages has no Conversation: the parsers return nil rather than an empty
// value. Messages are owned by the conversation and appear in chronological
// order.
type Conversation struct {
	SessionID    string
	SourcePath   string
	ProjectPath  string
	ProjectName  string
	GitBranch    string
	Messages     []Message
	FirstMessage string
	LastMessage  string
	StartTime    time.Time
	EndTime      time.Time
}

const unknownProject = "(unknown)"

// projectNameFromRepoURL derives an "owner/repo" display name from a git
// repository URL, stripping a trailing .git and taking the last two path
// segments. Returns a placeholder when the URL is empty or too short.
func projectNameFromRepoURL(url string) string {
	url = strings.TrimSpace(url)
	url = strings.TrimSuffix(url, "/")
	url = strings.TrimSuffix(url, ".git")
	if url == "" {
		return unknownProject
	}
	// Normalize scp-style remotes (git@host:owner/repo) to slash-separated.
	if strings.Contains(url, ":") && !strings.Contains(url, "://") {
		url = strings.ReplaceAll(url, ":", "/")
	}
	segs := strings.Split(url, "/")
	if len(segs) >= 2 {
		owner := segs[len(segs)-2]
		repo := segs[len(segs)-1]
		if owner != "" && repo != "" {
			return owner + "/" + repo
		}
	}
	if last := segs[len(segs)-1]; last != "" {
		return last
	}
	return unknownProject
}

// finishConversation derives the display fields that depend on the full
// message sequence. Returns nil when no messages survived parsing.
func finishConversation(c *Conversation) *Conversation {
	if c == nil || len(c.Messages) == 0 {
		return nil
	}
	first := c.Messages[0]
	last := c.Messages[len(c.Messages)-1]
	c.FirstMessage = ExtractText(first.Parts)
	c.LastMessage = ExtractText(last.Parts)
	if c.StartTime.IsZero() {
		c.StartTime = first.Timestamp
	}
	c.EndTime = last.Timestamp
	if c.EndTime.Before(c.StartTime) {
		c.EndTime = c.StartTime
	}
	return c
}
