package models

import "time"

// Course is the minimal course record documents and jobs reference.
type Course struct {
	Code      string    `bson:"code" json:"code"`
	Title     string    `bson:"title" json:"title"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	CreatedBy string    `bson:"created_by" json:"created_by"`
}

// CreateCourseRequest is the body of POST /courses.
type CreateCourseRequest struct {
	Code  string `json:"code" binding:"required"`
	Title string `json:"title" binding:"required"`
}
