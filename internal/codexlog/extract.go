package codexlog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	toolResultMarker = "[Tool Result]"
	thinkingMarker   = "[Thinking...]"
	maxPromptPreview = 100
)

// ExtractText flattens a message body into a single display string. Parts
// render in encounter order, joined with newlines; parts that render empty
// and parts of unknown type are skipped.
func ExtractText(parts []ContentPart) string {
	var out []string
	for _, p := range parts {
		if s := RenderPart(p); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "\n")
}

// ExtractContent renders raw JSON message content: either a plain string,
// which passes through unchanged, or an array of content parts.
func ExtractContent(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return ExtractText(decodeContentParts(raw))
}

// RenderPart renders one content part for display.
func RenderPart(p ContentPart) string {
	switch p.Type {
	case PartText, PartInputText, PartOutputText:
		return p.Text
	case PartToolUse:
		name := p.ToolName
		if name == "" {
			name = "unknown"
		}
		if desc := toolUseDescription(p.Input); desc != "" {
			return "[Tool: " + name + "] " + desc
		}
		return "[Tool: " + name + "]"
	case PartToolResult:
		return toolResultMarker
	case PartThinking:
		return thinkingMarker
	}
	return ""
}

// toolUseDescription summarizes tool_use arguments. Priority: a command
// string or all-string command array (apply_patch invocations get a patch
// summary), then a description field, then a prompt field shortened to 100
// characters.
func toolUseDescription(input json.RawMessage) string {
	if len(input) == 0 {
		return ""
	}
	args := gjson.ParseBytes(input)

	cmd := args.Get("command")
	switch {
	case cmd.Type == gjson.String:
		return cmd.Str
	case cmd.IsArray():
		elems := cmd.Array()
		if len(elems) >= 2 && elems[0].Str == "apply_patch" && elems[1].Type == gjson.String {
			return applyPatchSummary(elems[1].Str)
		}
		if joined, ok := joinStringArray(elems); ok {
			return joined
		}
	}

	if desc := args.Get("description"); desc.Type == gjson.String && desc.Str != "" {
		return desc.Str
	}
	if prompt := args.Get("prompt"); prompt.Type == gjson.String && prompt.Str != "" {
		return shorten(prompt.Str, maxPromptPreview)
	}
	return ""
}

func joinStringArray(elems []gjson.Result) (string, bool) {
	parts := make([]string, 0, len(elems))
	for _, e := range elems {
		if e.Type != gjson.String {
			return "", false
		}
		parts = append(parts, e.Str)
	}
	return strings.Join(parts, " "), true
}

// applyPatchSummary condenses an apply_patch payload into the touched file
// list (first three, then a +N more marker) and per-kind change counts.
func applyPatchSummary(patch string) string {
	var files []string
	var adds, updates, deletes int
	for _, line := range strings.Split(patch, "\n") {
		var prefix string
		switch {
		case strings.HasPrefix(line, "*** Add File: "):
			prefix = "*** Add File: "
			adds++
		case strings.HasPrefix(line, "*** Update File: "):
			prefix = "*** Update File: "
			updates++
		case strings.HasPrefix(line, "*** Delete File: "):
			prefix = "*** Delete File: "
			deletes++
		default:
			continue
		}
		if f := strings.TrimSpace(strings.TrimPrefix(line, prefix)); f != "" {
			files = append(files, f)
		}
	}

	listed := files
	extra := 0
	if len(files) > 3 {
		listed = files[:3]
		extra = len(files) - 3
	}
	fileList := strings.Join(listed, ", ")
	if extra > 0 {
		fileList += fmt.Sprintf(", +%d more", extra)
	}
	return fmt.Sprintf("apply_patch: [%s] +%d ~%d -%d", fileList, adds, updates, deletes)
}

// shorten cuts s to at most n characters, appending an ellipsis when cut.
// Counts runes, not columns; column-aware truncation lives in textwidth.
func shorten(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// decodeContentParts converts a raw JSON content array into text parts.
// Elements that are not objects with a string text field are dropped.
func decodeContentParts(raw json.RawMessage) []ContentPart {
	var items []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if json.Unmarshal(raw, &items) != nil {
		return nil
	}
	parts := make([]ContentPart, 0, len(items))
	for _, it := range items {
		typ := it.Type
		switch typ {
		case PartText, PartInputText, PartOutputText:
		default:
			if it.Text == "" {
				continue
			}
			typ = PartText
		}
		parts = append(parts, ContentPart{Type: typ, Text: it.Text})
	}
	return parts
}
