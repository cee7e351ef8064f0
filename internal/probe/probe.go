// Package probe shells out to the Codex CLI to learn its version and which
// session flags it supports. Every probe is bounded by a short timeout and
// degrades to "unknown" rather than failing: the caller must work without a
// codex binary on PATH.
package probe

import (
	"context"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/mod/semver"
)

// DefaultBinary is the Codex executable name resolved via PATH.
const DefaultBinary = "codex"

const defaultTimeout = 2 * time.Second

var versionRe = regexp.MustCompile(`\d+\.\d+\.\d+(?:-[0-9A-Za-z.\-]+)?`)

// Capabilities reports which session-related flags the installed Codex CLI
// understands. The zero value is the maximally conservative answer.
type Capabilities struct {
	Resume    bool
	Continue  bool
	SessionID bool
}

// Prober runs the Codex binary to answer version and capability questions.
// Capability detection runs at most once per Prober; construct one and pass
// it around instead of relying on process-global state.
type Prober struct {
	Binary  string
	Timeout time.Duration

	capsOnce sync.Once
	caps     Capabilities
}

func New(binary string) *Prober {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Prober{Binary: binary}
}

// Version returns the installed Codex version, or "" when the binary is
// missing, times out, exits non-zero, or prints nothing version-shaped.
// It never returns an error.
func (p *Prober) Version(ctx context.Context) string {
	out, err := p.run(ctx, "--version")
	if err != nil {
		return ""
	}
	return ExtractVersion(out)
}

// Capabilities probes `codex --help` once and scans for the literal flag
// substrings. Any failure yields all-false.
func (p *Prober) Capabilities(ctx context.Context) Capabilities {
	p.capsOnce.Do(func() {
		out, err := p.run(ctx, "--help")
		if err != nil {
			return
		}
		p.caps = Capabilities{
			Resume:    strings.Contains(out, "resume"),
			Continue:  strings.Contains(out, "--continue"),
			SessionID: strings.Contains(out, "--session-id"),
		}
	})
	return p.caps
}

func (p *Prober) run(ctx context.Context, arg string) (string, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, p.Binary, arg)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ExtractVersion pulls the first semver-shaped token out of free-form
// version output ("codex-cli 0.34.0" -> "0.34.0").
func ExtractVersion(output string) string {
	return versionRe.FindString(output)
}

// CompareVersions compares two version strings numerically by
// major.minor.patch. Pre-release and build metadata are ignored and missing
// components count as zero, so "0.32" == "0.32.0" and
// "0.32.0-beta" == "0.32.0".
func CompareVersions(a, b string) int {
	return semver.Compare(canonicalBase(a), canonicalBase(b))
}

func canonicalBase(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "v")
	v = strings.TrimPrefix(v, "V")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	return "v" + v
}
