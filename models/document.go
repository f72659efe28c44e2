package models

import "time"

// DocumentStatus tracks where a document sits in the ingestion lifecycle.
type DocumentStatus string

const (
	DocumentStatusUploaded DocumentStatus = "UPLOADED"
	DocumentStatusIngested DocumentStatus = "INGESTED"
	DocumentStatusFailed   DocumentStatus = "FAILED"
)

// Document is the durable record of an uploaded course file.
type Document struct {
	DocumentID      string         `bson:"document_id" json:"document_id"`
	CourseCode      string         `bson:"course_code" json:"course_code"`
	Filename        string         `bson:"filename" json:"filename"`
	S3Key           string         `bson:"s3_key" json:"s3_key"`
	ContentType     string         `bson:"content_type" json:"content_type"`
	FileSize        int64          `bson:"file_size" json:"file_size"`
	UploadTimestamp time.Time      `bson:"upload_timestamp" json:"upload_timestamp"`
	UploadedBy      string         `bson:"uploaded_by" json:"uploaded_by"`
	Status          DocumentStatus `bson:"status" json:"status"`
}

// DocumentWithDownloadURL pairs a document with a presigned download link.
type DocumentWithDownloadURL struct {
	Document    Document `json:"document"`
	DownloadURL string   `json:"download_url"`
}

// DeleteDocumentRequest is the body of DELETE /documents.
type DeleteDocumentRequest struct {
	DocumentID string `json:"document_id" binding:"required"`
}
