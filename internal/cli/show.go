package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/baaaaaaaka/codex-resume/internal/codexlog"
)

func newShowCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print the full transcript of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, _, err := newRepository(opts)
			if err != nil {
				return err
			}
			conv, err := repo.Find(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderTranscript(cmd.OutOrStdout(), conv)
			return nil
		},
	}
	return cmd
}

func renderTranscript(w io.Writer, conv *codexlog.Conversation) {
	_, _ = fmt.Fprintf(w, "Session:  %s\n", conv.SessionID)
	if conv.ProjectPath != "" {
		_, _ = fmt.Fprintf(w, "Project:  %s (%s)\n", conv.ProjectName, conv.ProjectPath)
	}
	if conv.GitBranch != "" {
		_, _ = fmt.Fprintf(w, "Branch:   %s\n", conv.GitBranch)
	}
	_, _ = fmt.Fprintf(w, "Started:  %s\n", conv.StartTime.Format(timeLayout))
	_, _ = fmt.Fprintf(w, "Ended:    %s\n", conv.EndTime.Format(timeLayout))
	_, _ = fmt.Fprintln(w)

	for _, msg := range conv.Messages {
		text := codexlog.ExtractText(msg.Parts)
		if text == "" {
			continue
		}
		_, _ = fmt.Fprintf(w, "[%s] %s\n%s\n\n",
			msg.Timestamp.Format(timeLayout), msg.Type, text)
	}
}
