// Package config builds the immutable settings value the rest of the CLI
// reads. Defaults come from internal/branding; a config file (~/.rod/config.yaml)
// and ROD_* environment variables may override them. The resulting Settings
// struct is passed by value into constructors so tests can run isolated
// instances against mock endpoints.
package config
