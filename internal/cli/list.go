package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baaaaaaaka/codex-resume/internal/codexlog"
	"github.com/baaaaaaaka/codex-resume/internal/textwidth"
)

const (
	colSessionWidth = 36
	colTimeWidth    = 16
	colProjectWidth = 22
	colTitleWidth   = 60

	timeLayout = "2006-01-02 15:04"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var cwd string
	var limit int
	var offset int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded Codex sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, cfg, err := newRepository(opts)
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = cfg.EffectivePageSize()
			}
			page, err := repo.GetPage(cmd.Context(), limit, offset, cwd)
			if err != nil {
				return err
			}
			if asJSON {
				out, err := json.MarshalIndent(page, "", "  ")
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}
			renderSessionTable(cmd.OutOrStdout(), page, offset)
			return nil
		},
	}

	cmd.Flags().StringVar(&cwd, "cwd", "", "Only sessions whose working directory matches exactly")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max sessions to print (default: config page size)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Skip this many sessions")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func renderSessionTable(w io.Writer, page codexlog.Page, offset int) {
	if len(page.Conversations) == 0 {
		_, _ = fmt.Fprintln(w, "no sessions found")
		return
	}

	_, _ = fmt.Fprintf(w, "%s  %s  %s  %s\n",
		textwidth.Pad("SESSION", colSessionWidth),
		textwidth.Pad("LAST ACTIVE", colTimeWidth),
		textwidth.Pad("PROJECT", colProjectWidth),
		"TITLE",
	)
	for _, conv := range page.Conversations {
		_, _ = fmt.Fprintf(w, "%s  %s  %s  %s\n",
			textwidth.Pad(conv.SessionID, colSessionWidth),
			textwidth.Pad(conv.EndTime.Format(timeLayout), colTimeWidth),
			textwidth.Pad(textwidth.TruncateStrict(conv.ProjectName, colProjectWidth), colProjectWidth),
			textwidth.TruncateStrict(sessionTitle(conv), colTitleWidth),
		)
	}
	first := offset + 1
	last := offset + len(page.Conversations)
	_, _ = fmt.Fprintf(w, "showing %d-%d of %d\n", first, last, page.Total)
}

// sessionTitle picks a one-line label for a conversation.
func sessionTitle(conv *codexlog.Conversation) string {
	title := conv.FirstMessage
	if title == "" {
		title = conv.LastMessage
	}
	return strings.Join(strings.Fields(title), " ")
}
