package codexlog

import (
	"os"
	"path/filepath"
	"strings"
)

// EnvCodexDir overrides the Codex home directory (default ~/.codex).
const EnvCodexDir = "CODEX_DIR"

// ResolveCodexDir picks the Codex home directory: an explicit override wins,
// then the CODEX_DIR environment variable, then ~/.codex.
func ResolveCodexDir(override string) (string, error) {
	if v := strings.TrimSpace(override); v != "" {
		return filepath.Clean(os.ExpandEnv(v)), nil
	}
	if v := strings.TrimSpace(os.Getenv(EnvCodexDir)); v != "" {
		return filepath.Clean(os.ExpandEnv(v)), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".codex"), nil
}

// SessionsDir returns the session log root under a Codex home directory.
func SessionsDir(codexDir string) string {
	return filepath.Join(codexDir, "sessions")
}

// HistoryFile returns the consolidated history artifact under a Codex home
// directory. Only rollout-era installations write it.
func HistoryFile(codexDir string) string {
	return filepath.Join(codexDir, "history.jsonl")
}
