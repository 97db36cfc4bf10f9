package agents

import "strings"

// stripFences unwraps a markdown-fenced code block. Providers asked for bare
// JSON still wrap it in fences often enough that parsing must tolerate it.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	parts := strings.Split(s, "```")
	if len(parts) < 2 {
		return s
	}
	s = strings.TrimPrefix(parts[1], "json")
	return strings.TrimSpace(s)
}
