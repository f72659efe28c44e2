package services

import (
	"bytes"
	"fmt"
	"strings"

	"course-material-service/models"

	"github.com/ledongthuc/pdf"
)

// ExtractText pulls plain text out of a PDF, page by page. Per-page text is
// joined with newlines and outer whitespace is trimmed.
func ExtractText(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", &models.PDFExtractionError{Reason: "failed to open PDF", Err: err}
	}

	var parts []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			return "", &models.PDFExtractionError{
				Reason: fmt.Sprintf("failed to extract text from page %d", i),
				Err:    err,
			}
		}
		if text != "" {
			parts = append(parts, text)
		}
	}

	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}

// ChunkText splits text into fixed-size chunks advancing by
// chunkSize-overlap characters per step; the final chunk may be shorter.
// Parameter violations return PDFExtractionError before producing any chunk.
// Empty text yields an empty slice.
func ChunkText(text string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, &models.PDFExtractionError{Reason: fmt.Sprintf("chunk_size must be positive, got %d", chunkSize)}
	}
	if overlap < 0 {
		return nil, &models.PDFExtractionError{Reason: fmt.Sprintf("overlap cannot be negative, got %d", overlap)}
	}
	if overlap >= chunkSize {
		return nil, &models.PDFExtractionError{
			Reason: fmt.Sprintf("overlap (%d) must be less than chunk_size (%d)", overlap, chunkSize),
		}
	}

	if text == "" {
		return []string{}, nil
	}

	// Character-based windows, not bytes.
	runes := []rune(text)
	chunks := []string{}
	for start := 0; start < len(runes); start += chunkSize - overlap {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks, nil
}

// ExtractAndChunk is the pipeline's extraction stage: PDF bytes in, overlapping
// text chunks out.
func ExtractAndChunk(content []byte, chunkSize, overlap int) ([]string, error) {
	text, err := ExtractText(content)
	if err != nil {
		return nil, err
	}
	return ChunkText(text, chunkSize, overlap)
}
