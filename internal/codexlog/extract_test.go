package codexlog

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toolUsePart(name string, input string) ContentPart {
	p := ContentPart{Type: PartToolUse, ToolName: name}
	if input != "" {
		p.Input = json.RawMessage(input)
	}
	return p
}

func TestExtractContent_Empty(t *testing.T) {
	assert.Equal(t, "", ExtractContent(nil))
	assert.Equal(t, "", ExtractContent(json.RawMessage("")))
}

func TestExtractContent_PlainStringPassthrough(t *testing.T) {
	got := ExtractContent(json.RawMessage(`"plain"`))
	assert.Equal(t, "plain", got)
}

func TestExtractContent_PartArray(t *testing.T) {
	raw := json.RawMessage(`[{"type":"input_text","text":"hello"},{"type":"output_text","text":"world"}]`)
	assert.Equal(t, "hello\nworld", ExtractContent(raw))
}

func TestExtractText_SkipsEmptyAndUnknownParts(t *testing.T) {
	parts := []ContentPart{
		{Type: PartText, Text: "a"},
		{Type: PartText, Text: ""},
		{Type: "image", Text: "ignored"},
		{Type: PartOutputText, Text: "b"},
	}
	assert.Equal(t, "a\nb", ExtractText(parts))
}

func TestRenderPart_Markers(t *testing.T) {
	assert.Equal(t, "[Tool Result]", RenderPart(ContentPart{Type: PartToolResult}))
	assert.Equal(t, "[Thinking...]", RenderPart(ContentPart{Type: PartThinking}))
}

func TestRenderPart_ToolUseCommandString(t *testing.T) {
	p := toolUsePart("shell", `{"command":"ls -la"}`)
	assert.Equal(t, "[Tool: shell] ls -la", RenderPart(p))
}

func TestRenderPart_ToolUseCommandArray(t *testing.T) {
	p := toolUsePart("shell", `{"command":["git","status","--short"]}`)
	assert.Equal(t, "[Tool: shell] git status --short", RenderPart(p))
}

func TestRenderPart_ToolUseMixedArrayFallsBack(t *testing.T) {
	p := toolUsePart("shell", `{"command":["git",42],"description":"run git"}`)
	assert.Equal(t, "[Tool: shell] run git", RenderPart(p))
}

func TestRenderPart_ToolUseApplyPatch(t *testing.T) {
	patch := "*** Add File: a\n*** Update File: b\n"
	input, err := json.Marshal(map[string]any{"command": []string{"apply_patch", patch}})
	require.NoError(t, err)
	got := RenderPart(toolUsePart("shell", string(input)))
	assert.Equal(t, "[Tool: shell] apply_patch: [a, b] +1 ~1 -0", got)
}

func TestRenderPart_ToolUseApplyPatchManyFiles(t *testing.T) {
	patch := strings.Join([]string{
		"*** Add File: one.go",
		"*** Update File: two.go",
		"*** Update File: three.go",
		"*** Delete File: four.go",
		"*** Add File: five.go",
	}, "\n")
	input, err := json.Marshal(map[string]any{"command": []any{"apply_patch", patch}})
	require.NoError(t, err)
	got := RenderPart(toolUsePart("shell", string(input)))
	assert.Equal(t,
		"[Tool: shell] apply_patch: [one.go, two.go, three.go, +2 more] +2 ~2 -1",
		got)
}

func TestRenderPart_ToolUseDescription(t *testing.T) {
	p := toolUsePart("task", `{"description":"refactor parser"}`)
	assert.Equal(t, "[Tool: task] refactor parser", RenderPart(p))
}

func TestRenderPart_ToolUsePromptTruncated(t *testing.T) {
	prompt := strings.Repeat("x", 120)
	input, err := json.Marshal(map[string]string{"prompt": prompt})
	require.NoError(t, err)
	got := RenderPart(toolUsePart("agent", string(input)))
	assert.Equal(t, "[Tool: agent] "+strings.Repeat("x", 100)+"...", got)
}

func TestRenderPart_ToolUseShortPromptUntouched(t *testing.T) {
	p := toolUsePart("agent", `{"prompt":"short"}`)
	assert.Equal(t, "[Tool: agent] short", RenderPart(p))
}

func TestRenderPart_ToolUseNoInput(t *testing.T) {
	p := toolUsePart("mystery", "")
	assert.Equal(t, "[Tool: mystery]", RenderPart(p))
}
