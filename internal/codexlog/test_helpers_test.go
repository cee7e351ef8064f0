package codexlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeSessionFile writes a JSONL file, creating parent directories.
func writeSessionFile(t *testing.T, path string, lines ...string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func sessionMetaLine(id, ts, cwd string) string {
	return `{"timestamp":"` + ts + `","type":"session_meta","payload":{"id":"` + id +
		`","timestamp":"` + ts + `","cwd":"` + cwd +
		`","git":{"repository_url":"https://github.com/acme/widgets.git","branch":"main"}}}`
}

func rolloutUserLine(ts, text string) string {
	return `{"timestamp":"` + ts + `","type":"response_item","payload":{"type":"message","role":"user","content":[{"type":"input_text","text":"` + text + `"}]}}`
}

func rolloutAssistantLine(ts, text string) string {
	return `{"timestamp":"` + ts + `","type":"response_item","payload":{"type":"message","role":"assistant","content":[{"type":"output_text","text":"` + text + `"}]}}`
}
