package codexlog

import (
	"github.com/tidwall/gjson"

	"github.com/baaaaaaaka/codex-resume/internal/probe"
)

// RolloutThreshold is the Codex release that switched the on-disk schema to
// the rollout format.
const RolloutThreshold = "0.32.0"

// Detector decides whether an installation writes rollout-format or
// legacy-format session logs. Version holds the probed CLI version, empty
// when probing failed; in that case the decision falls back to inspecting
// the logs themselves.
type Detector struct {
	SessionsDir string
	// HistoryFile is the consolidated history artifact (~/.codex/history.jsonl)
	// that only rollout-era installations write.
	HistoryFile string
	Version     string
}

// IsNewFormat reports whether the installation produces rollout-format logs.
func (d Detector) IsNewFormat() bool {
	if d.Version != "" {
		return probe.CompareVersions(d.Version, RolloutThreshold) >= 0
	}
	return d.ProbeLocalLogs()
}

// ProbeLocalLogs guesses the format from on-disk evidence, used only when
// version detection failed. A present history file means rollout; otherwise
// the first line of the most recently written session file decides. Every
// error is swallowed and the inconclusive default is legacy, which degrades
// more gracefully on unexpected input than the rollout parser's strict
// header requirement.
func (d Detector) ProbeLocalLogs() bool {
	if isFile(d.HistoryFile) {
		return true
	}
	newest := newestSessionFile(d.SessionsDir)
	if newest == "" {
		return false
	}
	return IsNewFormatFile(newest)
}

// IsNewFormatFile reports whether a single session file is rollout-format by
// checking the session_meta discriminator on its first line. It never reads
// past that line, so directory scans can classify files cheaply.
func IsNewFormatFile(path string) bool {
	line, err := firstNonBlankLine(path)
	if err != nil || len(line) == 0 {
		return false
	}
	return gjson.GetBytes(line, "type").Str == "session_meta"
}
