package codexlog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseRolloutFixture(t *testing.T, lines ...string) *Conversation {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rollout.jsonl")
	writeSessionFile(t, path, lines...)
	return ParseRolloutSession(path)
}

func TestParseRolloutSession_Basic(t *testing.T) {
	conv := parseRolloutFixture(t,
		sessionMetaLine("sess-9", "2026-02-11T15:52:56Z", "/home/me/widgets"),
		rolloutUserLine("2026-02-11T15:53:00Z", "add a feature"),
		rolloutAssistantLine("2026-02-11T15:53:05Z", "sure"),
	)
	require.NotNil(t, conv)
	assert.Equal(t, "sess-9", conv.SessionID)
	assert.Equal(t, "/home/me/widgets", conv.ProjectPath)
	assert.Equal(t, "acme/widgets", conv.ProjectName)
	assert.Equal(t, "main", conv.GitBranch)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "add a feature", conv.FirstMessage)
	assert.Equal(t, "sure", conv.LastMessage)
	assert.True(t, conv.EndTime.Equal(time.Date(2026, 2, 11, 15, 53, 5, 0, time.UTC)))
	assert.Equal(t, "/home/me/widgets", conv.Messages[0].Cwd)
}

func TestParseRolloutSession_MissingSessionMetaIsNil(t *testing.T) {
	conv := parseRolloutFixture(t,
		rolloutUserLine("2026-02-11T15:53:00Z", "no header"),
		rolloutAssistantLine("2026-02-11T15:53:05Z", "still no header"),
	)
	assert.Nil(t, conv)
}

func TestParseRolloutSession_ZeroMessagesIsNil(t *testing.T) {
	conv := parseRolloutFixture(t,
		sessionMetaLine("sess-9", "2026-02-11T15:52:56Z", "/w"),
		`{"type":"event_msg","payload":{"type":"task_started"}}`,
	)
	assert.Nil(t, conv)
}

func TestParseRolloutSession_OnlyTextPartKindsRetained(t *testing.T) {
	conv := parseRolloutFixture(t,
		sessionMetaLine("s", "2026-02-11T15:52:56Z", "/w"),
		`{"type":"response_item","payload":{"type":"message","role":"assistant","content":[{"type":"output_text","text":"kept"},{"type":"refusal","text":"dropped"},{"type":"text","text":"also kept"}]}}`,
	)
	require.NotNil(t, conv)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, "kept\nalso kept", ExtractText(conv.Messages[0].Parts))
}

func TestParseRolloutSession_EnvironmentContextDropped(t *testing.T) {
	conv := parseRolloutFixture(t,
		sessionMetaLine("s", "2026-02-11T15:52:56Z", "/w"),
		rolloutUserLine("", "<environment_context>noise</environment_context>"),
		rolloutUserLine("", "real"),
	)
	require.NotNil(t, conv)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, "real", conv.FirstMessage)
	// One slot consumed by the dropped boilerplate.
	start := time.Date(2026, 2, 11, 15, 52, 56, 0, time.UTC)
	assert.True(t, conv.Messages[0].Timestamp.Equal(start.Add(time.Millisecond)))
}

func TestParseRolloutSession_ExplicitTimestampWins(t *testing.T) {
	conv := parseRolloutFixture(t,
		sessionMetaLine("s", "2026-02-11T15:52:56Z", "/w"),
		rolloutUserLine("2026-02-11T16:00:00Z", "question"),
	)
	require.NotNil(t, conv)
	want := time.Date(2026, 2, 11, 16, 0, 0, 0, time.UTC)
	assert.True(t, conv.Messages[0].Timestamp.Equal(want))
}

func TestParseRolloutSession_SynthesizedTimestampWhenAbsent(t *testing.T) {
	conv := parseRolloutFixture(t,
		sessionMetaLine("s", "2026-02-11T15:52:56Z", "/w"),
		rolloutUserLine("", "first"),
		rolloutUserLine("", "second"),
	)
	require.NotNil(t, conv)
	require.Len(t, conv.Messages, 2)
	assert.True(t, conv.Messages[1].Timestamp.After(conv.Messages[0].Timestamp))
}

func TestParseRolloutSession_FunctionCall(t *testing.T) {
	conv := parseRolloutFixture(t,
		sessionMetaLine("s", "2026-02-11T15:52:56Z", "/w"),
		`{"type":"response_item","payload":{"type":"function_call","name":"shell","call_id":"c1","arguments":"{\"command\":[\"ls\",\"-la\"]}"}}`,
	)
	require.NotNil(t, conv)
	require.Len(t, conv.Messages, 1)
	part := conv.Messages[0].Parts[0]
	assert.Equal(t, PartToolUse, part.Type)
	assert.Equal(t, "shell", part.ToolName)
	assert.Equal(t, "[Tool: shell] ls -la", RenderPart(part))
}

func TestParseRolloutSession_CustomToolCallPrefixed(t *testing.T) {
	conv := parseRolloutFixture(t,
		sessionMetaLine("s", "2026-02-11T15:52:56Z", "/w"),
		`{"type":"response_item","payload":{"type":"custom_tool_call","name":"lint","call_id":"c2","input":"{\"description\":\"run linters\"}"}}`,
	)
	require.NotNil(t, conv)
	part := conv.Messages[0].Parts[0]
	assert.Equal(t, "custom:lint", part.ToolName)
	assert.Equal(t, "[Tool: custom:lint] run linters", RenderPart(part))
}

func TestParseRolloutSession_OutputsUseGenericMarker(t *testing.T) {
	conv := parseRolloutFixture(t,
		sessionMetaLine("s", "2026-02-11T15:52:56Z", "/w"),
		`{"type":"response_item","payload":{"type":"function_call_output","call_id":"c1","output":"{\"output\":\"raw stdout that stays hidden\"}"}}`,
		`{"type":"response_item","payload":{"type":"custom_tool_call_output","call_id":"c2","output":"more stdout"}}`,
	)
	require.NotNil(t, conv)
	require.Len(t, conv.Messages, 2)
	for _, msg := range conv.Messages {
		assert.Equal(t, PartToolResult, msg.Parts[0].Type)
		assert.Equal(t, toolCompletedMarker, msg.ToolUseResult)
	}
}

func TestParseRolloutSession_LocalShellCall(t *testing.T) {
	conv := parseRolloutFixture(t,
		sessionMetaLine("s", "2026-02-11T15:52:56Z", "/w"),
		`{"type":"response_item","payload":{"type":"local_shell_call","call_id":"c3","action":{"type":"exec","command":["go","vet","./..."]}}}`,
	)
	require.NotNil(t, conv)
	part := conv.Messages[0].Parts[0]
	assert.Equal(t, "shell", part.ToolName)
	assert.Equal(t, "[Tool: shell] go vet ./...", RenderPart(part))
}

func TestParseRolloutSession_WebSearchCall(t *testing.T) {
	conv := parseRolloutFixture(t,
		sessionMetaLine("s", "2026-02-11T15:52:56Z", "/w"),
		`{"type":"response_item","payload":{"type":"web_search_call","action":{"type":"search","query":"golang bufio scanner token size"}}}`,
	)
	require.NotNil(t, conv)
	part := conv.Messages[0].Parts[0]
	assert.Equal(t, "web_search", part.ToolName)
	assert.Contains(t, string(part.Input), "golang bufio scanner token size")
}

func TestParseRolloutSession_CaseInsensitivePayloadType(t *testing.T) {
	conv := parseRolloutFixture(t,
		sessionMetaLine("s", "2026-02-11T15:52:56Z", "/w"),
		`{"type":"response_item","payload":{"type":"Message","role":"User","content":[{"type":"input_text","text":"mixed case"}]}}`,
	)
	require.NotNil(t, conv)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, MessageUser, conv.Messages[0].Type)
}

func TestParseRolloutSession_ReasoningAndUnknownDropped(t *testing.T) {
	conv := parseRolloutFixture(t,
		sessionMetaLine("s", "2026-02-11T15:52:56Z", "/w"),
		`{"type":"response_item","payload":{"type":"reasoning","summary":[{"type":"summary_text","text":"pondering"}]}}`,
		`{"type":"response_item","payload":{"type":"turn_context","cwd":"/elsewhere"}}`,
		rolloutUserLine("", "hello"),
	)
	require.NotNil(t, conv)
	require.Len(t, conv.Messages, 1)
}

func TestParseRolloutSession_MalformedLinesSkipped(t *testing.T) {
	conv := parseRolloutFixture(t,
		sessionMetaLine("s", "2026-02-11T15:52:56Z", "/w"),
		`{nope`,
		rolloutUserLine("", "survived"),
	)
	require.NotNil(t, conv)
	require.Len(t, conv.Messages, 1)
}
