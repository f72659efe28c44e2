package services

import (
	"context"
	"time"

	"course-material-service/internal/logger"
	"course-material-service/internal/repositories"
	"course-material-service/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// CourseService manages the minimal course registry that uploads and
// ingestion jobs reference.
type CourseService struct {
	courses repositories.CourseRepository
}

func NewCourseService(courses repositories.CourseRepository) *CourseService {
	return &CourseService{courses: courses}
}

func (s *CourseService) Create(ctx context.Context, req *models.CreateCourseRequest, createdBy string) (*models.Course, error) {
	code, err := models.NormalizeCourseCode(req.Code)
	if err != nil {
		return nil, err
	}

	course := &models.Course{
		Code:      code,
		Title:     req.Title,
		CreatedAt: time.Now().UTC(),
		CreatedBy: createdBy,
	}
	if err := s.courses.Insert(ctx, course); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &models.ValidationError{Reason: "course with code " + code + " already exists"}
		}
		return nil, err
	}

	logger.Info("course created", "code", code, "created_by", createdBy)
	return course, nil
}

func (s *CourseService) GetByCode(ctx context.Context, code string) (*models.Course, error) {
	course, err := s.courses.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, &models.CourseNotFoundError{Code: code}
	}
	return course, nil
}

func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	return s.courses.List(ctx)
}
