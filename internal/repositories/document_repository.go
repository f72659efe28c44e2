package repositories

import (
	"context"

	"course-material-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DocumentRepository is the durable registry of uploaded documents.
type DocumentRepository interface {
	Insert(ctx context.Context, doc *models.Document) error

	// FindByID returns (nil, nil) when the document does not exist.
	FindByID(ctx context.Context, documentID string) (*models.Document, error)

	FindByCourse(ctx context.Context, courseCode string) ([]models.Document, error)

	// FindForIngestion resolves an ingestion job's mode and optional id list
	// to the concrete document set, in deterministic order.
	FindForIngestion(ctx context.Context, courseCode string, mode models.IngestionMode, documentIDs []string) ([]models.Document, error)

	SetStatus(ctx context.Context, documentID string, status models.DocumentStatus) error

	// Delete removes the registry row, reporting whether it existed.
	Delete(ctx context.Context, documentID string) (bool, error)
}

// MongoDocumentRepository implements DocumentRepository on the documents
// collection.
type MongoDocumentRepository struct {
	collection *mongo.Collection
}

func NewMongoDocumentRepository(db *mongo.Database) *MongoDocumentRepository {
	return &MongoDocumentRepository{collection: db.Collection("documents")}
}

func (r *MongoDocumentRepository) Insert(ctx context.Context, doc *models.Document) error {
	_, err := r.collection.InsertOne(ctx, doc)
	return err
}

func (r *MongoDocumentRepository) FindByID(ctx context.Context, documentID string) (*models.Document, error) {
	var doc models.Document
	err := r.collection.FindOne(ctx, bson.M{"document_id": documentID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *MongoDocumentRepository) FindByCourse(ctx context.Context, courseCode string) ([]models.Document, error) {
	return r.findSorted(ctx, bson.M{"course_code": courseCode})
}

func (r *MongoDocumentRepository) FindForIngestion(ctx context.Context, courseCode string, mode models.IngestionMode, documentIDs []string) ([]models.Document, error) {
	var filter bson.M
	switch mode {
	case models.IngestionModeNew:
		filter = bson.M{"course_code": courseCode, "status": models.DocumentStatusUploaded}
	case models.IngestionModeSelected:
		if len(documentIDs) == 0 {
			return nil, &models.IngestionJobError{Reason: "Document IDs required for SELECTED mode"}
		}
		filter = bson.M{"course_code": courseCode, "document_id": bson.M{"$in": documentIDs}}
	case models.IngestionModeAll:
		filter = bson.M{"course_code": courseCode}
	case models.IngestionModeReingest:
		filter = bson.M{"course_code": courseCode, "status": models.DocumentStatusIngested}
	default:
		return nil, &models.IngestionJobError{Reason: "Unknown ingestion mode: " + string(mode)}
	}
	return r.findSorted(ctx, filter)
}

func (r *MongoDocumentRepository) SetStatus(ctx context.Context, documentID string, status models.DocumentStatus) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"document_id": documentID},
		bson.M{"$set": bson.M{"status": status}},
	)
	return err
}

func (r *MongoDocumentRepository) Delete(ctx context.Context, documentID string) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"document_id": documentID})
	if err != nil {
		return false, err
	}
	return result.DeletedCount == 1, nil
}

// findSorted keeps selection order stable across calls: upload time, then id
// as a tiebreak.
func (r *MongoDocumentRepository) findSorted(ctx context.Context, filter bson.M) ([]models.Document, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "upload_timestamp", Value: 1},
		{Key: "document_id", Value: 1},
	})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := []models.Document{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
