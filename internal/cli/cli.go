package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baaaaaaaka/codex-resume/internal/codexlog"
	"github.com/baaaaaaaka/codex-resume/internal/config"
	"github.com/baaaaaaaka/codex-resume/internal/probe"
)

var (
	version = "v0.1.0"
	commit  = ""
	date    = ""
)

type rootOptions struct {
	configPath string
	codexDir   string
	codexPath  string
}

func Execute() int {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "codex-resume",
		Short:         "Browse and resume Codex CLI sessions",
		SilenceErrors: false,
		SilenceUsage:  true,
		Version:       buildVersion(),
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Override config file path (default: OS user config dir)")
	cmd.PersistentFlags().StringVar(&opts.codexDir, "codex-dir", "", "Override Codex data dir (default: ~/.codex)")
	cmd.PersistentFlags().StringVar(&opts.codexPath, "codex-path", "", "Override Codex CLI path (default: search PATH)")

	cmd.AddCommand(
		newListCmd(opts),
		newShowCmd(opts),
		newResumeCmd(opts),
	)

	return cmd
}

func buildVersion() string {
	v := version
	if commit != "" {
		v += " (" + commit + ")"
	}
	if date != "" {
		v += " " + date
	}
	return v
}

// loadConfig reads the persisted config, tolerating a missing file.
func loadConfig(opts *rootOptions) (config.Config, error) {
	store, err := config.NewStore(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}
	return store.Load()
}

// resolveCodexDir resolves the Codex home: flag, then CODEX_DIR, then the
// config file, then ~/.codex.
func resolveCodexDir(opts *rootOptions, cfg config.Config) (string, error) {
	override := opts.codexDir
	if override == "" && strings.TrimSpace(os.Getenv(codexlog.EnvCodexDir)) == "" {
		override = cfg.CodexDir
	}
	return codexlog.ResolveCodexDir(override)
}

func resolveCodexPath(opts *rootOptions, cfg config.Config) string {
	if opts.codexPath != "" {
		return opts.codexPath
	}
	if cfg.CodexPath != "" {
		return cfg.CodexPath
	}
	return probe.DefaultBinary
}

func newRepository(opts *rootOptions) (*codexlog.Repository, config.Config, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, config.Config{}, err
	}
	dir, err := resolveCodexDir(opts, cfg)
	if err != nil {
		return nil, config.Config{}, err
	}
	repo := &codexlog.Repository{
		SessionsDir: codexlog.SessionsDir(dir),
		HistoryFile: codexlog.HistoryFile(dir),
		Prober:      probe.New(resolveCodexPath(opts, cfg)),
	}
	return repo, cfg, nil
}
