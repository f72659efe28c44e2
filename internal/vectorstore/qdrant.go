package vectorstore

import (
	"context"

	"course-material-service/internal/config"
	"course-material-service/models"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// SearchResult is one nearest-neighbour hit.
type SearchResult struct {
	ID      string
	Score   float32
	Payload map[string]any
}

// VectorStore indexes embedded document chunks in a single collection.
// Deletion by document id must be idempotent: deleting a document with no
// points is a success.
type VectorStore interface {
	// EnsureCollection creates the collection and its payload indices if
	// absent. Safe to call repeatedly with the same dimension.
	EnsureCollection(ctx context.Context, dimension int) error

	// StoreDocumentChunks upserts one point per chunk and returns the number
	// of points written. vectors and chunks must be the same length.
	StoreDocumentChunks(ctx context.Context, courseCode, documentID string, vectors [][]float32, chunks []string, metadata map[string]string) (int, error)

	// DeleteByDocument removes every point whose payload document_id matches.
	DeleteByDocument(ctx context.Context, documentID string) error

	// Search runs cosine nearest-neighbour with an optional course filter.
	Search(ctx context.Context, queryVector []float32, courseCode string, limit int) ([]SearchResult, error)
}

// QdrantStore implements VectorStore on a Qdrant collection with cosine
// distance and keyword payload indices on course_code and document_id.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
}

func NewQdrantStore(cfg *config.Config) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.QdrantHost,
		Port:   cfg.QdrantPort,
		APIKey: cfg.QdrantAPIKey,
		UseTLS: cfg.QdrantUseTLS,
	})
	if err != nil {
		return nil, &models.VectorStoreError{Reason: "failed to connect to Qdrant", Err: err}
	}
	return &QdrantStore{client: client, collection: cfg.QdrantCollectionName}, nil
}

func (q *QdrantStore) EnsureCollection(ctx context.Context, dimension int) error {
	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return &models.VectorStoreError{Reason: "failed to check collection", Err: err}
	}
	if exists {
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return &models.VectorStoreError{Reason: "failed to create collection", Err: err}
	}

	for _, field := range []string{"course_code", "document_id"} {
		_, err = q.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: q.collection,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
			Wait:           qdrant.PtrOf(true),
		})
		if err != nil {
			return &models.VectorStoreError{Reason: "failed to create payload index on " + field, Err: err}
		}
	}
	return nil
}

func (q *QdrantStore) StoreDocumentChunks(ctx context.Context, courseCode, documentID string, vectors [][]float32, chunks []string, metadata map[string]string) (int, error) {
	points, err := buildPoints(courseCode, documentID, vectors, chunks, metadata)
	if err != nil {
		return 0, err
	}
	if len(points) == 0 {
		return 0, nil
	}

	_, err = q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, &models.VectorStoreError{Reason: "failed to store vectors", Err: err}
	}
	return len(points), nil
}

func (q *QdrantStore) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("document_id", documentID),
			},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return &models.VectorStoreError{Reason: "failed to delete document vectors", Err: err}
	}
	return nil
}

func (q *QdrantStore) Search(ctx context.Context, queryVector []float32, courseCode string, limit int) ([]SearchResult, error) {
	var filter *qdrant.Filter
	if courseCode != "" {
		filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("course_code", courseCode),
			},
		}
	}

	hits, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(queryVector...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, &models.VectorStoreError{Reason: "failed to search vectors", Err: err}
	}

	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		payload := make(map[string]any, len(hit.Payload))
		for k, v := range hit.Payload {
			payload[k] = valueToAny(v)
		}
		results = append(results, SearchResult{
			ID:      hit.Id.GetUuid(),
			Score:   hit.Score,
			Payload: payload,
		})
	}
	return results, nil
}

// buildPoints maps chunk texts and their vectors onto point structs with the
// payload contract: course_code, document_id, chunk_index, chunk_text plus
// caller metadata. Point ids are freshly generated UUIDs.
func buildPoints(courseCode, documentID string, vectors [][]float32, chunks []string, metadata map[string]string) ([]*qdrant.PointStruct, error) {
	if len(vectors) != len(chunks) {
		return nil, &models.VectorStoreError{Reason: "number of vectors must match number of chunks"}
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for i, vec := range vectors {
		payload := map[string]any{
			"course_code": courseCode,
			"document_id": documentID,
			"chunk_index": int64(i),
			"chunk_text":  chunks[i],
		}
		for k, v := range metadata {
			payload[k] = v
		}

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(uuid.NewString()),
			Vectors: qdrant.NewVectors(vec...),
			Payload: qdrant.NewValueMap(payload),
		})
	}
	return points, nil
}

func valueToAny(v *qdrant.Value) any {
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	default:
		return v.String()
	}
}
