package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilenameKeepsPlainNames(t *testing.T) {
	assert.Equal(t, "lecture-01_notes.pdf", SanitizeFilename("lecture-01_notes.pdf"))
}

func TestSanitizeFilenameStripsDirectories(t *testing.T) {
	assert.Equal(t, "syllabus.pdf", SanitizeFilename("/var/tmp/syllabus.pdf"))
	assert.Equal(t, "syllabus.pdf", SanitizeFilename(`C:\Users\prof\syllabus.pdf`))
	assert.Equal(t, "passwd", SanitizeFilename("../../etc/passwd"))
}

func TestSanitizeFilenameWhitespaceAndUnsafeChars(t *testing.T) {
	assert.Equal(t, "week_1_notes.pdf", SanitizeFilename("week 1  notes.pdf"))
	assert.Equal(t, "notes.pdf", SanitizeFilename("no#te$s.pdf"))
}

func TestSanitizeFilenameReservedStems(t *testing.T) {
	assert.Equal(t, "file_CON.pdf", SanitizeFilename("CON.pdf"))
	assert.Equal(t, "file_con.pdf", SanitizeFilename("con.pdf"))
	assert.Equal(t, "file_LPT1", SanitizeFilename("LPT1"))
	// Only the stem before the first dot counts.
	assert.Equal(t, "CONTENTS.pdf", SanitizeFilename("CONTENTS.pdf"))
}

func TestSanitizeFilenameTruncates(t *testing.T) {
	long := strings.Repeat("a", 300) + ".pdf"
	out := SanitizeFilename(long)
	assert.Len(t, out, 255)
}
