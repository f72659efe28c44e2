package vectorstore

import (
	"testing"

	"course-material-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPointsPayloadContract(t *testing.T) {
	vectors := [][]float32{{0.1, 0.2}, {0.3, 0.4}}
	chunks := []string{"first chunk", "second chunk"}
	metadata := map[string]string{"filename": "notes.pdf", "uploaded_by": "prof@example.edu"}

	points, err := buildPoints("CS-101", "doc-1", vectors, chunks, metadata)
	require.NoError(t, err)
	require.Len(t, points, 2)

	for i, p := range points {
		require.NotNil(t, p.Id)
		assert.NotEmpty(t, p.Id.GetUuid())

		payload := p.Payload
		assert.Equal(t, "CS-101", payload["course_code"].GetStringValue())
		assert.Equal(t, "doc-1", payload["document_id"].GetStringValue())
		assert.Equal(t, int64(i), payload["chunk_index"].GetIntegerValue())
		assert.Equal(t, chunks[i], payload["chunk_text"].GetStringValue())
		assert.Equal(t, "notes.pdf", payload["filename"].GetStringValue())
		assert.Equal(t, "prof@example.edu", payload["uploaded_by"].GetStringValue())
	}

	// Every point gets a distinct id.
	assert.NotEqual(t, points[0].Id.GetUuid(), points[1].Id.GetUuid())
}

func TestBuildPointsLengthMismatch(t *testing.T) {
	_, err := buildPoints("CS-101", "doc-1", [][]float32{{0.1}}, []string{"a", "b"}, nil)
	var vsErr *models.VectorStoreError
	assert.ErrorAs(t, err, &vsErr)
}

func TestBuildPointsEmpty(t *testing.T) {
	points, err := buildPoints("CS-101", "doc-1", nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, points)
}
