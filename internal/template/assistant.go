package template

import (
	"fmt"
	"strings"
)

// Assistant identifies the AI coding tool a template configures.
type Assistant string

// Supported assistants.
const (
	AssistantClaude  Assistant = "claude"
	AssistantCopilot Assistant = "copilot"
	AssistantCursor  Assistant = "cursor"
	AssistantGemini  Assistant = "gemini"
)

// Assistants lists the supported assistants in display order.
func Assistants() []Assistant {
	return []Assistant{AssistantClaude, AssistantCopilot, AssistantCursor, AssistantGemini}
}

// ParseAssistant validates a user-supplied assistant identifier.
func ParseAssistant(s string) (Assistant, error) {
	a := Assistant(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Assistants() {
		if a == known {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown assistant %q (supported: %s)", s, joinIdents(Assistants()))
}

// ScriptType identifies the shell dialect of a template's automation scripts.
type ScriptType string

// Supported script types.
const (
	ScriptSh ScriptType = "sh"
	ScriptPs ScriptType = "ps"
)

// ScriptTypes lists the supported script types in display order.
func ScriptTypes() []ScriptType {
	return []ScriptType{ScriptSh, ScriptPs}
}

// ParseScriptType validates a user-supplied script type identifier.
func ParseScriptType(s string) (ScriptType, error) {
	st := ScriptType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ScriptTypes() {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown script type %q (supported: %s)", s, joinIdents(ScriptTypes()))
}

func joinIdents[T ~string](vals []T) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
