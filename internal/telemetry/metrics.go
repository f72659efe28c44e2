package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	RequestCounter    metric.Int64Counter
	RequestDuration   metric.Float64Histogram
	IngestionJobs     metric.Int64Counter
	IngestionDuration metric.Float64Histogram
	DocumentsIngested metric.Int64Counter
	VectorsIndexed    metric.Int64Counter
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("course-material-service")

	requestCounter, err := meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	ingestionJobs, err := meter.Int64Counter(
		"ingestion.jobs.total",
		metric.WithDescription("Ingestion jobs processed, by outcome"),
	)
	if err != nil {
		return nil, err
	}

	ingestionDuration, err := meter.Float64Histogram(
		"ingestion.job.duration",
		metric.WithDescription("Ingestion job duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	documentsIngested, err := meter.Int64Counter(
		"ingestion.documents.total",
		metric.WithDescription("Documents run through the ingestion pipeline"),
	)
	if err != nil {
		return nil, err
	}

	vectorsIndexed, err := meter.Int64Counter(
		"ingestion.vectors.total",
		metric.WithDescription("Vectors upserted into the vector store"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCounter:    requestCounter,
		RequestDuration:   requestDuration,
		IngestionJobs:     ingestionJobs,
		IngestionDuration: ingestionDuration,
		DocumentsIngested: documentsIngested,
		VectorsIndexed:    vectorsIndexed,
	}, nil
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(method, path, status string, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.String("http.status", status),
	}

	m.RequestCounter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.RequestDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordIngestionJob records one job execution with its outcome
func (m *Metrics) RecordIngestionJob(outcome string, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("job.outcome", outcome),
	}

	m.IngestionJobs.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.IngestionDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordDocumentIngested records per-document pipeline results
func (m *Metrics) RecordDocumentIngested(status string, vectors int64) {
	attrs := []attribute.KeyValue{
		attribute.String("document.status", status),
	}

	m.DocumentsIngested.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	if vectors > 0 {
		m.VectorsIndexed.Add(context.Background(), vectors, metric.WithAttributes(attrs...))
	}
}
