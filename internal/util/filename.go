package util

import (
	"path/filepath"
	"strings"
)

// RecordingFileName returns "{date}-{away}-{home}-{feed}.mp4".
func RecordingFileName(date, away, home, feed string) string {
	parts := []string{date, away, home, feed}
	for i, p := range parts {
		parts[i] = SanitizeFileNamePart(strings.TrimSpace(p))
	}
	return strings.Join(parts, "-") + ".mp4"
}

// RecordingPath returns "" when not recording, otherwise the recording file
// name joined onto dir.
func RecordingPath(record bool, dir, date, away, home, feed string) string {
	if !record {
		return ""
	}
	name := RecordingFileName(date, away, home, feed)
	if dir == "" || dir == "." {
		return name
	}
	return filepath.Join(dir, name)
}

// PlaylistFileName returns "playlist-{date}.m3u8".
func PlaylistFileName(date string) string {
	return "playlist-" + SanitizeFileNamePart(date) + ".m3u8"
}

// SanitizeFileNamePart removes characters invalid on common filesystems,
// collapses repeated separators/whitespace, and returns "unknown" for empty
// results.
func SanitizeFileNamePart(value string) string {
	replacer := strings.NewReplacer(
		"\\", "_",
		"/", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	s := replacer.Replace(value)
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	return s
}
