package codexlog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// toolCompletedMarker stands in for tool output that is not surfaced.
const toolCompletedMarker = "Tool execution completed"

const environmentContextTag = "<environment_context>"

var cwdMarkerRe = regexp.MustCompile(`<cwd>(.*?)</cwd>`)

// legacyMeta is the first line of a pre-0.32.0 session file. Every field is
// optional; missing values fall back to the filename and file mtime.
type legacyMeta struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Git       *struct {
		RepositoryURL string `json:"repository_url"`
		Branch        string `json:"branch"`
	} `json:"git"`
}

// legacyRecord is any line after the metadata line, discriminated by Type
// (or RecordType for state checkpoints).
type legacyRecord struct {
	Type       string          `json:"type"`
	RecordType string          `json:"record_type"`
	Role       string          `json:"role"`
	Content    json.RawMessage `json:"content"`
	Name       string          `json:"name"`
	Arguments  json.RawMessage `json:"arguments"`
	Output     string          `json:"output"`
	CallID     string          `json:"call_id"`
}

// ParseLegacySession parses a legacy-format session file into a normalized
// Conversation. Malformed lines are skipped individually; an unreadable file,
// an unparsable metadata line, or a file yielding zero messages all come back
// as nil.
func ParseLegacySession(path string) *Conversation {
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

	var meta legacyMeta
	if json.Unmarshal(metaLine, &meta) != nil {
		return nil
	}

	sessionID := meta.ID
	if sessionID == "" {
		sessionID = sessionIDFromBase(path)
	}

	start := parseTimestamp(meta.Timestamp)
	if start.IsZero() {
		if st, err := os.Stat(path); err == nil {
			start = st.ModTime()
		}
	}

	conv := &Conversation{
		SessionID:   sessionID,
		SourcePath:  path,
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
			parseLegacyRecord(line, conv, start, &counter)
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

func parseLegacyRecord(line []byte, conv *Conversation, start time.Time, counter *int) {
	var rec legacyRecord
	if json.Unmarshal(line, &rec) != nil {
		return
	}
	// State checkpoints and raw reasoning are framework noise, dropped
	// without consuming an ordering slot.
	if rec.RecordType == "state" || rec.Type == "reasoning" {
		return
	}

	switch rec.Type {
	case "message":
		role := strings.ToLower(rec.Role)
		if role != string(MessageUser) && role != string(MessageAssistant) {
			return
		}
		parts := decodeContentParts(rec.Content)
		text := ExtractText(parts)
		if role == string(MessageUser) && conv.ProjectPath == "" {
			if m := cwdMarkerRe.FindStringSubmatch(text); m != nil {
				conv.ProjectPath = strings.TrimSpace(m[1])
			}
		}
		if strings.Contains(text, environmentContextTag) {
			*counter++ // boilerplate still occupies an ordering slot
			return
		}
		conv.Messages = append(conv.Messages, Message{
			SessionID: conv.SessionID,
			Timestamp: syntheticTimestamp(start, counter),
			Type:      MessageType(role),
			Parts:     parts,
		})

	case "function_call":
		conv.Messages = append(conv.Messages, Message{
			SessionID: conv.SessionID,
			Timestamp: syntheticTimestamp(start, counter),
			Type:      MessageAssistant,
			Parts: []ContentPart{{
				Type:     PartToolUse,
				ToolName: rec.Name,
				ToolID:   rec.CallID,
				Input:    parseToolInput(rec.Arguments),
			}},
		})

	case "function_call_output":
		result := toolCompletedMarker
		if gjson.Valid(rec.Output) {
			if out := gjson.Get(rec.Output, "output"); out.Type == gjson.String && out.Str != "" {
				result = out.Str
			}
		}
		conv.Messages = append(conv.Messages, Message{
			SessionID:     conv.SessionID,
			Timestamp:     syntheticTimestamp(start, counter),
			Type:          MessageAssistant,
			Parts:         []ContentPart{{Type: PartToolResult, ToolID: rec.CallID}},
			ToolUseResult: result,
		})
	}
}

// syntheticTimestamp returns start advanced by the current counter value and
// increments the counter, keeping same-second bursts strictly ordered.
func syntheticTimestamp(start time.Time, counter *int) time.Time {
	ts := start.Add(time.Duration(*counter) * time.Millisecond)
	*counter++
	return ts
}

// parseToolInput normalizes tool arguments to raw JSON. Arguments arrive
// either as JSON proper or as a JSON string wrapping more JSON; anything
// undecodable is omitted rather than failing the record.
func parseToolInput(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		s = strings.TrimSpace(s)
		if s != "" && gjson.Valid(s) {
			return json.RawMessage(s)
		}
		return nil
	}
	if json.Valid(raw) {
		return raw
	}
	return nil
}

func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return time.Time{}
}

// sessionIDFromBase derives a session id from a file's base name: the
// trailing UUID when present, else the whole stem.
func sessionIDFromBase(path string) string {
	name := filepath.Base(path)
	if id := sessionIDFromFilename(name); id != "" {
		return id
	}
	return strings.TrimSuffix(name, ".jsonl")
}

// readLine returns the next line with surrounding whitespace trimmed. The
// returned error is io.EOF at end of input.
func readLine(r *bufio.Reader) ([]byte, error) {
	line, err := r.ReadBytes('\n')
	if err != nil && err != io.EOF {
		return nil, err
	}
	if err == io.EOF && len(line) == 0 {
		return nil, io.EOF
	}
	return bytes.TrimSpace(line), err
}
