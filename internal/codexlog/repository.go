package codexlog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/baaaaaaaka/codex-resume/internal/probe"
)

// Repository lists normalized conversations from a Codex sessions directory
// laid out as <root>/<YYYY>/<MM>/<DD>/<uuid>.jsonl. It keeps no cache: every
// query walks the tree and re-parses from scratch, trading repeated I/O for
// correctness on logs that another process may be appending to.
type Repository struct {
	SessionsDir string
	HistoryFile string
	// Prober supplies the CLI version for format detection. Nil means
	// version unknown, which falls back to probing the logs themselves.
	Prober *probe.Prober
}

// Page is one slice of a filtered, sorted listing plus the exact total size
// of the filtered set.
type Page struct {
	Conversations []*Conversation
	Total         int
}

// GetAll returns every parseable conversation, newest first by end time.
// filterCwd, when non-empty, keeps only conversations whose project path
// matches exactly. A missing sessions directory is an empty result; a
// malformed file contributes nothing and never aborts the scan.
func (r *Repository) GetAll(ctx context.Context, filterCwd string) ([]*Conversation, error) {
	files, err := collectSessionFiles(r.SessionsDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	newFormat := r.detector(ctx).IsNewFormat()

	var out []*Conversation
	for _, path := range files {
		// Cheap first-line check so a scan never fully parses files
		// left behind by the other schema.
		if IsNewFormatFile(path) != newFormat {
			continue
		}
		var conv *Conversation
		if newFormat {
			conv = ParseRolloutSession(path)
		} else {
			conv = ParseLegacySession(path)
		}
		if conv == nil {
			continue
		}
		if filterCwd != "" && conv.ProjectPath != filterCwd {
			continue
		}
		out = append(out, conv)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EndTime.After(out[j].EndTime)
	})
	return out, nil
}

// GetPage runs the same collect, filter and sort pipeline as GetAll and
// returns the contiguous slice [offset, offset+limit) together with the
// total count of the filtered set.
func (r *Repository) GetPage(ctx context.Context, limit, offset int, filterCwd string) (Page, error) {
	all, err := r.GetAll(ctx, filterCwd)
	if err != nil {
		return Page{}, err
	}
	page := Page{Total: len(all)}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	if offset >= len(all) {
		return page, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	page.Conversations = all[offset:end]
	return page, nil
}

// Find returns the conversation with the given session id, or an error when
// no session matches.
func (r *Repository) Find(ctx context.Context, sessionID string) (*Conversation, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("empty session id")
	}
	all, err := r.GetAll(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, conv := range all {
		if conv.SessionID == sessionID {
			return conv, nil
		}
	}
	return nil, fmt.Errorf("session not found: %s", sessionID)
}

func (r *Repository) detector(ctx context.Context) Detector {
	version := ""
	if r.Prober != nil {
		version = r.Prober.Version(ctx)
	}
	return Detector{
		SessionsDir: r.SessionsDir,
		HistoryFile: r.HistoryFile,
		Version:     version,
	}
}
