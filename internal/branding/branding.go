// Package branding provides compile-time identity values for the CLI.
//
// Forkers edit branding.yaml in this package before building; Go's
// //go:embed bakes it into the binary. Runtime overrides (config file,
// environment) are layered on top by internal/config.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName       string `yaml:"cli_name"`
	DisplayName   string `yaml:"display_name"`
	Description   string `yaml:"description"`
	HomeDir       string `yaml:"home_dir"`
	EnvPrefix     string `yaml:"env_prefix"`
	TemplateOwner string `yaml:"template_owner"`
	TemplateRepo  string `yaml:"template_repo"`
	APIBaseURL    string `yaml:"api_base_url"`
	UserAgent     string `yaml:"user_agent"`
	WorkflowDir   string `yaml:"workflow_dir"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:       "rod",
			DisplayName:   "Rod",
			Description:   "Scaffold spec-driven projects for AI coding assistants",
			HomeDir:       ".rod",
			EnvPrefix:     "ROD",
			TemplateOwner: "Rainmen-xia",
			TemplateRepo:  "rod-templates",
			APIBaseURL:    "https://api.github.com",
			UserAgent:     "rod-cli",
			WorkflowDir:   ".rod",
		}
		// Overlay with embedded YAML values.
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "rod").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name (e.g., "Rod").
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".rod").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "ROD").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// TemplateOwner returns the GitHub owner of the template repository.
func TemplateOwner() string { load(); return defaults.TemplateOwner }

// TemplateRepo returns the name of the template repository.
func TemplateRepo() string { load(); return defaults.TemplateRepo }

// APIBaseURL returns the GitHub API base URL.
func APIBaseURL() string { load(); return defaults.APIBaseURL }

// UserAgent returns the User-Agent value sent on outbound requests.
func UserAgent() string { load(); return defaults.UserAgent }

// WorkflowDir returns the directory name every template must contain
// (e.g., ".rod"), used to verify an extraction.
func WorkflowDir() string { load(); return defaults.WorkflowDir }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("TOKEN") → "ROD_TOKEN".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
