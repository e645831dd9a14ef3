package course

import (
	"context"

	"github.com/trezcool/darasa/core"
)

var ErrNotFound = core.NewNotFoundError("course class not found")

type GetFilter struct {
	ID            int
	IncludeCourse bool
}

// Repository resolves course classes. Soft-deleted classes are never returned.
type Repository interface {
	GetCourseClass(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (CourseClass, error)
}
