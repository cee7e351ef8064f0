package codexlog

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"
)

// rolloutEnvelope is the outer structure of every line in a rollout-format
// file. Payload stays raw so heavy variants (reasoning, turn_context) are
// never fully decoded.
type rolloutEnvelope struct {
	Timestamp string          `json:"timestamp"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
}

type rolloutMetaPayload struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Cwd       string `json:"cwd"`
	Git       *struct {
		RepositoryURL string `json:"repository_url"`
		Branch        string `json:"branch"`
	} `json:"git"`
}

// rolloutItemPayload is a unified view of response_item payloads; which
// fields are populated depends on Type.
type rolloutItemPayload struct {
	Type      string          `json:"type"`
	Role      string          `json:"role"`
	Name      string          `json:"name"`
	CallID    string          `json:"call_id"`
	Arguments json.RawMessage `json:"arguments"`
	Input     json.RawMessage `json:"input"`
	Content   json.RawMessage `json:"content"`
	Action    json.RawMessage `json:"action"`
}

type rolloutAction struct {
	Command []string `json:"command"`
	Query   string   `json:"query"`
}

// ParseRolloutSession parses a rollout-format session file. The first line
// must be a session_meta record; anything else yields nil no matter what
// follows. Later lines skip individually on malformed input, and a file with
// zero surviving messages yields nil.
func ParseRolloutSession(path string) *Conversation {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	reader := bufio.NewReaderSize(f, 64*1024)
	metaLine, err := readLine(reader)
	if (err != nil && err != io.EOF) || len(metaLine) == 0 {
		return nil
	}

	var env rolloutEnvelope
	if json.Unmarshal(metaLine, &env) != nil || env.Type != "session_meta" {
		return nil
	}
	var meta rolloutMetaPayload
	if json.Unmarshal(env.Payload, &meta) != nil {
		return nil
	}

	sessionID := meta.ID
	if sessionID == "" {
		sessionID = sessionIDFromBase(path)
	}

	start := parseTimestamp(env.Timestamp)
	if start.IsZero() {
		start = parseTimestamp(meta.Timestamp)
	}
	if start.IsZero() {
		if st, err := os.Stat(path); err == nil {
			start = st.ModTime()
		}
	}

	conv := &Conversation{
		SessionID:   sessionID,
		SourcePath:  path,
		ProjectPath: strings.TrimSpace(meta.Cwd),
		ProjectName: unknownProject,
		StartTime:   start,
	}
	if meta.Git != nil {
		conv.ProjectName = projectNameFromRepoURL(meta.Git.RepositoryURL)
		conv.GitBranch = meta.Git.Branch
	}

	counter := 0
	for {
		line, err := readLine(reader)
		if len(line) > 0 {
			parseRolloutRecord(line, conv, start, &counter)
		}
		if err != nil {
			break
		}
	}

	if len(conv.Messages) == 0 {
		return nil
	}
	for i := range conv.Messages {
		conv.Messages[i].Cwd = conv.ProjectPath
	}
	return finishConversation(conv)
}

func parseRolloutRecord(line []byte, conv *Conversation, start time.Time, counter *int) {
	var env rolloutEnvelope
	if json.Unmarshal(line, &env) != nil {
		return
	}

	switch env.Type {
	case "event_msg":
		*counter++ // dropped, but keeps the ordering counter in step
		return
	case "response_item":
	default:
		return
	}

	var payload rolloutItemPayload
	if json.Unmarshal(env.Payload, &payload) != nil {
		return
	}

	// A record's own timestamp wins over synthesis.
	recordTime := func() time.Time {
		if ts := parseTimestamp(env.Timestamp); !ts.IsZero() {
			syntheticTimestamp(start, counter) // consume the slot regardless
			return ts
		}
		return syntheticTimestamp(start, counter)
	}

	switch strings.ToLower(payload.Type) {
	case "message":
		role := strings.ToLower(payload.Role)
		if role != string(MessageUser) && role != string(MessageAssistant) {
			return
		}
		parts := rolloutTextParts(payload.Content)
		text := ExtractText(parts)
		if strings.Contains(text, environmentContextTag) {
			*counter++
			return
		}
		conv.Messages = append(conv.Messages, Message{
			SessionID: conv.SessionID,
			Timestamp: recordTime(),
			Type:      MessageType(role),
			Parts:     parts,
		})

	case "function_call", "custom_tool_call":
		name := payload.Name
		input := payload.Arguments
		if strings.ToLower(payload.Type) == "custom_tool_call" {
			name = "custom:" + name
			input = payload.Input
		}
		conv.Messages = append(conv.Messages, Message{
			SessionID: conv.SessionID,
			Timestamp: recordTime(),
			Type:      MessageAssistant,
			Parts: []ContentPart{{
				Type:     PartToolUse,
				ToolName: name,
				ToolID:   payload.CallID,
				Input:    parseToolInput(input),
			}},
		})

	case "function_call_output", "custom_tool_call_output":
		// Unlike the legacy schema, raw stdout is not surfaced here.
		conv.Messages = append(conv.Messages, Message{
			SessionID:     conv.SessionID,
			Timestamp:     recordTime(),
			Type:          MessageAssistant,
			Parts:         []ContentPart{{Type: PartToolResult, ToolID: payload.CallID}},
			ToolUseResult: toolCompletedMarker,
		})

	case "local_shell_call":
		var action rolloutAction
		_ = json.Unmarshal(payload.Action, &action)
		conv.Messages = append(conv.Messages, Message{
			SessionID: conv.SessionID,
			Timestamp: recordTime(),
			Type:      MessageAssistant,
			Parts: []ContentPart{{
				Type:     PartToolUse,
				ToolName: "shell",
				ToolID:   payload.CallID,
				Input:    marshalInput(map[string]any{"command": action.Command}),
			}},
		})

	case "web_search_call":
		var action rolloutAction
		_ = json.Unmarshal(payload.Action, &action)
		conv.Messages = append(conv.Messages, Message{
			SessionID: conv.SessionID,
			Timestamp: recordTime(),
			Type:      MessageAssistant,
			Parts: []ContentPart{{
				Type:     PartToolUse,
				ToolName: "web_search",
				Input:    marshalInput(map[string]any{"query": action.Query}),
			}},
		})
	}
	// Other payload kinds (reasoning, turn_context, ...) are dropped.
}

// rolloutTextParts keeps only the textual part kinds a rollout message may
// carry; everything else is discarded.
func rolloutTextParts(raw json.RawMessage) []ContentPart {
	var items []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if json.Unmarshal(raw, &items) != nil {
		return nil
	}
	var parts []ContentPart
	for _, it := range items {
		switch it.Type {
		case PartInputText, PartOutputText, PartText:
			parts = append(parts, ContentPart{Type: it.Type, Text: it.Text})
		}
	}
	return parts
}

func marshalInput(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
