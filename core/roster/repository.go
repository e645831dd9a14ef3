package roster

import (
	"context"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
)

// Repository persists the class<->student and class<->teacher edges.
// Add* return (a wrapped) core.ErrUniqueViolation when the edge already exists.
// Remove* report whether an edge was deleted.
type Repository interface {
	QueryClassStudents(ctx context.Context, classID int, exec ...core.DBExecutor) ([]student.Student, error)
	AddClassStudent(ctx context.Context, classID, studentID int, exec ...core.DBExecutor) error
	RemoveClassStudent(ctx context.Context, classID, studentID int, exec ...core.DBExecutor) (bool, error)

	QueryClassTeachers(ctx context.Context, classID int, exec ...core.DBExecutor) ([]user.User, error)
	AddClassTeacher(ctx context.Context, classID, teacherID int, exec ...core.DBExecutor) error
	RemoveClassTeacher(ctx context.Context, classID, teacherID int, exec ...core.DBExecutor) (bool, error)
}
