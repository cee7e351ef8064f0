package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baaaaaaaka/codex-resume/internal/codexlog"
	"github.com/baaaaaaaka/codex-resume/internal/probe"
)

func newResumeCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "resume <session-id>",
		Short: "Reopen a session in the Codex CLI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, cfg, err := newRepository(opts)
			if err != nil {
				return err
			}
			conv, err := repo.Find(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			codexPath := resolveCodexPath(opts, cfg)
			caps := repo.Prober.Capabilities(cmd.Context())
			resumeArgs, err := buildResumeArgs(caps, conv.SessionID)
			if err != nil {
				return err
			}
			cwd, err := resumeWorkingDir(conv)
			if err != nil {
				return err
			}

			if dryRun {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "cd %s && %s %s\n",
					cwd, codexPath, strings.Join(resumeArgs, " "))
				return nil
			}

			path := codexPath
			if !filepath.IsAbs(path) {
				resolved, err := exec.LookPath(path)
				if err != nil {
					return fmt.Errorf("codex CLI not found in PATH")
				}
				path = resolved
			}

			run := exec.CommandContext(cmd.Context(), path, resumeArgs...)
			run.Dir = cwd
			run.Stdin = os.Stdin
			run.Stdout = os.Stdout
			run.Stderr = os.Stderr
			run.Env = os.Environ()
			if opts.codexDir != "" || cfg.CodexDir != "" {
				dir, err := resolveCodexDir(opts, cfg)
				if err != nil {
					return err
				}
				run.Env = append(run.Env, codexlog.EnvCodexDir+"="+dir)
			}
			return run.Run()
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the command instead of executing it")
	return cmd
}

// buildResumeArgs picks the resume invocation the installed CLI supports,
// preferring the dedicated subcommand over the legacy flags.
func buildResumeArgs(caps probe.Capabilities, sessionID string) ([]string, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("missing session id")
	}
	switch {
	case caps.Resume:
		return []string{"resume", sessionID}, nil
	case caps.SessionID:
		return []string{"--session-id", sessionID}, nil
	case caps.Continue:
		return []string{"--continue"}, nil
	}
	return nil, fmt.Errorf("installed codex CLI does not support resuming sessions")
}

// resumeWorkingDir resolves the directory to launch Codex in: the session's
// recorded project path when it still exists, otherwise the current one.
func resumeWorkingDir(conv *codexlog.Conversation) (string, error) {
	cwd := strings.TrimSpace(conv.ProjectPath)
	if cwd == "" {
		return os.Getwd()
	}
	if !filepath.IsAbs(cwd) {
		cwd, _ = filepath.Abs(cwd)
	}
	st, err := os.Stat(cwd)
	if err != nil {
		return "", fmt.Errorf("working directory not found: %w", err)
	}
	if !st.IsDir() {
		return "", fmt.Errorf("working directory is not a directory: %s", cwd)
	}
	return cwd, nil
}
