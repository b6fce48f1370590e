package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Rainmen-xia/rod-cli-sub001/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"

	// DefaultTimeout is the per-HTTP-attempt timeout.
	DefaultTimeout = 30 * time.Second
	// DefaultRetries is the number of retry attempts after the first request.
	DefaultRetries = 3
)

// Settings holds the process-wide template source configuration.
// It is read once at startup and never mutated afterwards.
type Settings struct {
	Owner       string
	Repo        string
	BaseURL     string
	UserAgent   string
	Token       string
	Timeout     time.Duration
	Retries     int
	WorkflowDir string
}

// Dir returns the path to the config directory (~/.rod/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.rod/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load reads the config file and environment and returns the resolved
// Settings. Branding defaults apply wherever nothing overrides them.
func Load() Settings {
	v := viper.New()
	v.SetConfigFile(FilePath())
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("template.owner", branding.TemplateOwner())
	v.SetDefault("template.repo", branding.TemplateRepo())
	v.SetDefault("template.base_url", branding.APIBaseURL())
	v.SetDefault("template.user_agent", branding.UserAgent())
	v.SetDefault("template.timeout_ms", int(DefaultTimeout/time.Millisecond))
	v.SetDefault("template.retries", DefaultRetries)
	v.SetDefault("template.workflow_dir", branding.WorkflowDir())

	// Ignore error if config file doesn't exist yet.
	_ = v.ReadInConfig()

	token := v.GetString("template.token")
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}

	return Settings{
		Owner:       v.GetString("template.owner"),
		Repo:        v.GetString("template.repo"),
		BaseURL:     v.GetString("template.base_url"),
		UserAgent:   v.GetString("template.user_agent"),
		Token:       token,
		Timeout:     time.Duration(v.GetInt("template.timeout_ms")) * time.Millisecond,
		Retries:     v.GetInt("template.retries"),
		WorkflowDir: v.GetString("template.workflow_dir"),
	}
}
