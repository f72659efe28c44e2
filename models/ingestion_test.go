package models

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCourseCode(t *testing.T) {
	code, err := NormalizeCourseCode("  cs-101 ")
	require.NoError(t, err)
	assert.Equal(t, "CS-101", code)
}

func TestNormalizeCourseCodeRejections(t *testing.T) {
	cases := []string{"", " ", "A", strings.Repeat("A", 21), "CS 101", "cs_101", "CS/101"}
	for _, code := range cases {
		t.Run(fmt.Sprintf("%q", code), func(t *testing.T) {
			_, err := NormalizeCourseCode(code)
			var valErr *ValidationError
			assert.ErrorAs(t, err, &valErr)
		})
	}
}

func TestValidateObjectID(t *testing.T) {
	assert.NoError(t, ValidateObjectID("a1b2c3d4-e5f6-7890-abcd-ef1234567890"))

	var valErr *ValidationError
	assert.ErrorAs(t, ValidateObjectID(""), &valErr)
	assert.ErrorAs(t, ValidateObjectID("short"), &valErr)
	assert.ErrorAs(t, ValidateObjectID(strings.Repeat("z", 36)), &valErr)
}

func TestStartIngestionRequestDefaults(t *testing.T) {
	req := &StartIngestionRequest{CourseCode: "cs-101"}
	require.NoError(t, req.Normalize())

	assert.Equal(t, "CS-101", req.CourseCode)
	assert.Equal(t, IngestionModeNew, req.Mode)
	require.NotNil(t, req.MaxRetries)
	assert.Equal(t, DefaultMaxRetries, *req.MaxRetries)
}

func TestStartIngestionRequestUnknownMode(t *testing.T) {
	req := &StartIngestionRequest{CourseCode: "CS-101", Mode: "SOMETIMES"}
	var valErr *ValidationError
	assert.ErrorAs(t, req.Normalize(), &valErr)
}

func TestStartIngestionRequestDocumentIDCap(t *testing.T) {
	makeIDs := func(n int) []string {
		ids := make([]string, n)
		for i := range ids {
			ids[i] = fmt.Sprintf("%08d-0000-0000-0000-000000000000", i)
		}
		return ids
	}

	atCap := &StartIngestionRequest{
		CourseCode: "CS-101", Mode: IngestionModeSelected, DocumentIDs: makeIDs(MaxSelectedDocuments),
	}
	require.NoError(t, atCap.Normalize())

	overCap := &StartIngestionRequest{
		CourseCode: "CS-101", Mode: IngestionModeSelected, DocumentIDs: makeIDs(MaxSelectedDocuments + 1),
	}
	var valErr *ValidationError
	assert.ErrorAs(t, overCap.Normalize(), &valErr)
}

func TestStartIngestionRequestBadDocumentID(t *testing.T) {
	req := &StartIngestionRequest{
		CourseCode: "CS-101", Mode: IngestionModeSelected, DocumentIDs: []string{"not-a-uuid"},
	}
	var valErr *ValidationError
	require.ErrorAs(t, req.Normalize(), &valErr)
	assert.Contains(t, valErr.Reason, "not-a-uuid")
}

func TestStartIngestionRequestMaxRetriesBounds(t *testing.T) {
	val := func(n int) *int { return &n }

	var valErr *ValidationError
	neg := &StartIngestionRequest{CourseCode: "CS-101", MaxRetries: val(-1)}
	assert.ErrorAs(t, neg.Normalize(), &valErr)

	over := &StartIngestionRequest{CourseCode: "CS-101", MaxRetries: val(MaxRetriesLimit + 1)}
	assert.ErrorAs(t, over.Normalize(), &valErr)

	zero := &StartIngestionRequest{CourseCode: "CS-101", MaxRetries: val(0)}
	require.NoError(t, zero.Normalize())
	assert.Equal(t, 0, *zero.MaxRetries)

	max := &StartIngestionRequest{CourseCode: "CS-101", MaxRetries: val(MaxRetriesLimit)}
	require.NoError(t, max.Normalize())
}

func TestJobIDRequestNormalize(t *testing.T) {
	req := &JobIDRequest{JobID: "  a1b2c3d4-e5f6-7890-abcd-ef1234567890  "}
	require.NoError(t, req.Normalize())
	assert.Equal(t, "a1b2c3d4-e5f6-7890-abcd-ef1234567890", req.JobID)

	bad := &JobIDRequest{JobID: "nope"}
	var valErr *ValidationError
	assert.ErrorAs(t, bad.Normalize(), &valErr)
}

func TestIngestionStatusIsTerminal(t *testing.T) {
	assert.False(t, IngestionStatusQueued.IsTerminal())
	assert.False(t, IngestionStatusRunning.IsTerminal())
	assert.True(t, IngestionStatusCompleted.IsTerminal())
	assert.True(t, IngestionStatusFailed.IsTerminal())
	assert.True(t, IngestionStatusCanceled.IsTerminal())
}
