package utils

import (
	"regexp"
	"strings"
)

const maxFilenameLen = 255

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	unsafeCharRe  = regexp.MustCompile(`[^\w.\-]`)
	reservedStems = map[string]bool{
		"CON": true, "PRN": true, "AUX": true, "NUL": true,
		"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
		"COM6": true, "COM7": true, "COM8": true, "COM9": true,
		"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
		"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
	}
)

// SanitizeFilename makes an uploaded filename safe for use inside a blob key.
// Directory components are stripped, path separators, parent references, and
// whitespace become underscores, anything outside [\w.-] is removed, and
// Windows-reserved device stems are rewritten so the name never collides with
// a device file when synced to a local filesystem.
func SanitizeFilename(filename string) string {
	// Keep only the last path element, whichever separator was used.
	if i := strings.LastIndexAny(filename, "/\\"); i >= 0 {
		filename = filename[i+1:]
	}
	filename = strings.ReplaceAll(filename, "..", "_")
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")
	filename = whitespaceRe.ReplaceAllString(filename, "_")
	filename = unsafeCharRe.ReplaceAllString(filename, "")

	stem := filename
	if i := strings.Index(filename, "."); i >= 0 {
		stem = filename[:i]
	}
	if reservedStems[strings.ToUpper(stem)] {
		filename = "file_" + filename
	}

	if len(filename) > maxFilenameLen {
		filename = filename[:maxFilenameLen]
	}
	return filename
}
