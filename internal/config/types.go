package config

const CurrentVersion = 1

// DefaultPageSize applies when neither the config file nor a flag sets one.
const DefaultPageSize = 20

// Config is the persisted CLI configuration. All fields are optional; zero
// values defer to environment variables and built-in defaults.
type Config struct {
	Version int `json:"version"`
	// CodexPath overrides the Codex binary (default: search PATH).
	CodexPath string `json:"codexPath,omitempty"`
	// CodexDir overrides the Codex data dir (default: ~/.codex).
	CodexDir string `json:"codexDir,omitempty"`
	// PageSize is the number of sessions per listing page.
	PageSize int `json:"pageSize,omitempty"`
}

func (c Config) EffectivePageSize() int {
	if c.PageSize > 0 {
		return c.PageSize
	}
	return DefaultPageSize
}
