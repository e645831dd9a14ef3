package lesson

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
)

var ErrNotFound = core.NewNotFoundError("lesson not found")

// Lesson is one scheduled meeting of a course class.
type Lesson struct {
	ID            int         `json:"id" db:"id"`
	CourseClassID int         `json:"course_class_id" db:"course_class_id"`
	Date          time.Time   `json:"date" db:"date"`
	Topic         null.String `json:"topic" db:"topic"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
	DeletedAt     null.Time   `json:"-" db:"deleted_at"`

	CourseClass *course.CourseClass `json:"course_class,omitempty" db:"-"`
}

type GetFilter struct {
	ID                 int
	IncludeCourseClass bool
	// ForUpdate locks the lesson row until the surrounding transaction ends.
	ForUpdate bool
}

type Repository interface {
	GetLesson(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Lesson, error)
}
