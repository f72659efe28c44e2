package repositories

import (
	"context"
	"time"

	"course-material-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// JobRepository is the durable registry of ingestion jobs. Every mutating
// operation is a single atomic update; the conditional ones return whether
// the precondition matched so callers can distinguish "state moved on" from
// success without a second round trip racing the first.
type JobRepository interface {
	Create(ctx context.Context, job *models.IngestionJob) error

	// Get returns (nil, nil) when the job does not exist.
	Get(ctx context.Context, jobID string) (*models.IngestionJob, error)

	// ListByCourse returns jobs newest-first by created_at.
	ListByCourse(ctx context.Context, courseCode string) ([]models.IngestionJob, error)

	// Claim atomically moves QUEUED -> RUNNING. Exactly one concurrent
	// claimant wins; the rest observe false and must leave all stores
	// untouched.
	Claim(ctx context.Context, jobID string) (bool, error)

	// IsCanceled is the cooperative cancellation checkpoint read.
	IsCanceled(ctx context.Context, jobID string) (bool, error)

	// IncrementProgress adds to docs_done and vectors_created and touches
	// updated_at. Counters are monotonic; deltas are never negative.
	IncrementProgress(ctx context.Context, jobID string, docsDelta, vectorsDelta int) error

	// SetTerminalFromRunning moves RUNNING -> COMPLETED or RUNNING -> FAILED.
	// The status filter keeps a late terminal write from clobbering a
	// concurrent cancel. errorMessage is stored only for FAILED.
	SetTerminalFromRunning(ctx context.Context, jobID string, status models.IngestionStatus, errorMessage string) (bool, error)

	// Cancel moves QUEUED|RUNNING -> CANCELED.
	Cancel(ctx context.Context, jobID string) (bool, error)

	// Retry moves FAILED -> QUEUED when retry_count < max_retries,
	// incrementing retry_count and clearing error_message.
	Retry(ctx context.Context, jobID string) (bool, error)
}

// MongoJobRepository implements JobRepository on the ingestion_jobs
// collection.
type MongoJobRepository struct {
	collection *mongo.Collection
}

func NewMongoJobRepository(db *mongo.Database) *MongoJobRepository {
	return &MongoJobRepository{collection: db.Collection("ingestion_jobs")}
}

func (r *MongoJobRepository) Create(ctx context.Context, job *models.IngestionJob) error {
	_, err := r.collection.InsertOne(ctx, job)
	return err
}

func (r *MongoJobRepository) Get(ctx context.Context, jobID string) (*models.IngestionJob, error) {
	var job models.IngestionJob
	err := r.collection.FindOne(ctx, bson.M{"job_id": jobID}).Decode(&job)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *MongoJobRepository) ListByCourse(ctx context.Context, courseCode string) ([]models.IngestionJob, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"course_code": courseCode}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	jobs := []models.IngestionJob{}
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *MongoJobRepository) Claim(ctx context.Context, jobID string) (bool, error) {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"job_id": jobID, "status": models.IngestionStatusQueued},
		bson.M{"$set": bson.M{
			"status":     models.IngestionStatusRunning,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount == 1, nil
}

func (r *MongoJobRepository) IsCanceled(ctx context.Context, jobID string) (bool, error) {
	job, err := r.Get(ctx, jobID)
	if err != nil {
		return false, err
	}
	return job != nil && job.Status == models.IngestionStatusCanceled, nil
}

func (r *MongoJobRepository) IncrementProgress(ctx context.Context, jobID string, docsDelta, vectorsDelta int) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"job_id": jobID},
		bson.M{
			"$inc": bson.M{"docs_done": docsDelta, "vectors_created": vectorsDelta},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	return err
}

func (r *MongoJobRepository) SetTerminalFromRunning(ctx context.Context, jobID string, status models.IngestionStatus, errorMessage string) (bool, error) {
	set := bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if status == models.IngestionStatusFailed {
		set["error_message"] = errorMessage
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"job_id": jobID, "status": models.IngestionStatusRunning},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount == 1, nil
}

func (r *MongoJobRepository) Cancel(ctx context.Context, jobID string) (bool, error) {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{
			"job_id": jobID,
			"status": bson.M{"$in": bson.A{models.IngestionStatusQueued, models.IngestionStatusRunning}},
		},
		bson.M{"$set": bson.M{
			"status":     models.IngestionStatusCanceled,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount == 1, nil
}

func (r *MongoJobRepository) Retry(ctx context.Context, jobID string) (bool, error) {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{
			"job_id": jobID,
			"status": models.IngestionStatusFailed,
			"$expr":  bson.M{"$lt": bson.A{"$retry_count", "$max_retries"}},
		},
		bson.M{
			"$set": bson.M{
				"status":        models.IngestionStatusQueued,
				"error_message": "",
				"updated_at":    time.Now().UTC(),
			},
			"$inc": bson.M{"retry_count": 1},
		},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount == 1, nil
}
