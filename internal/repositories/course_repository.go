package repositories

import (
	"context"

	"course-material-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CourseRepository is the minimal course registry needed for the upload and
// job-creation foreign-key checks.
type CourseRepository interface {
	Insert(ctx context.Context, course *models.Course) error

	// FindByCode returns (nil, nil) when the course does not exist.
	FindByCode(ctx context.Context, code string) (*models.Course, error)

	List(ctx context.Context) ([]models.Course, error)
}

// MongoCourseRepository implements CourseRepository on the courses
// collection.
type MongoCourseRepository struct {
	collection *mongo.Collection
}

func NewMongoCourseRepository(db *mongo.Database) *MongoCourseRepository {
	return &MongoCourseRepository{collection: db.Collection("courses")}
}

func (r *MongoCourseRepository) Insert(ctx context.Context, course *models.Course) error {
	_, err := r.collection.InsertOne(ctx, course)
	return err
}

func (r *MongoCourseRepository) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	var course models.Course
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&course)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *MongoCourseRepository) List(ctx context.Context) ([]models.Course, error) {
	opts := options.Find().SetSort(bson.D{{Key: "code", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	courses := []models.Course{}
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}
