package registry

import "strings"

const maxNameLen = 64

// normalizeProjectName trims and caps a display name. Project names come
// from directory basenames, so anything goes content-wise; only length is
// bounded to keep snapshots and list output sane.
func normalizeProjectName(raw string) string {
	name := strings.TrimSpace(raw)
	runes := []rune(name)
	if len(runes) <= maxNameLen {
		return name
	}
	return string(runes[:maxNameLen])
}
