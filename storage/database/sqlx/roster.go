package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/roster"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/storage/database"
)

type rosterRepository struct {
	executor
}

var _ roster.Repository = (*rosterRepository)(nil) // interface compliance check

func NewRosterRepository(db *sqlx.DB) *rosterRepository {
	return &rosterRepository{newExecutor(db)}
}

func (repo rosterRepository) QueryClassStudents(ctx context.Context, classID int, exec ...core.DBExecutor) ([]student.Student, error) {
	q := `SELECT s.id, s.name, s.birth_date, s.created_at, s.updated_at, s.deleted_at
		FROM student s
		JOIN course_class_student ccs ON ccs.student_id = s.id
		WHERE ccs.course_class_id = $1 AND s.deleted_at IS NULL
		ORDER BY s.id`
	students := make([]student.Student, 0)
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &students, q, classID); err != nil {
		return nil, errors.Wrap(err, "selecting class students")
	}
	return students, nil
}

func (repo rosterRepository) AddClassStudent(ctx context.Context, classID, studentID int, exec ...core.DBExecutor) error {
	q := "INSERT INTO course_class_student (course_class_id, student_id) VALUES ($1, $2)"
	_, err := repo.getExec(exec).ExecContext(ctx, q, classID, studentID)
	return database.TrapWriteErr(err, "inserting class student")
}

func (repo rosterRepository) RemoveClassStudent(ctx context.Context, classID, studentID int, exec ...core.DBExecutor) (bool, error) {
	q := "DELETE FROM course_class_student WHERE course_class_id = $1 AND student_id = $2"
	return repo.delete(ctx, repo.getExec(exec), q, classID, studentID)
}

func (repo rosterRepository) QueryClassTeachers(ctx context.Context, classID int, exec ...core.DBExecutor) ([]user.User, error) {
	q := `SELECT u.id, u.name, u.email, u.password_hash, u.created_at, u.updated_at
		FROM "user" u
		JOIN course_class_teacher cct ON cct.teacher_id = u.id
		WHERE cct.course_class_id = $1
		ORDER BY u.id`
	teachers := make([]user.User, 0)
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &teachers, q, classID); err != nil {
		return nil, errors.Wrap(err, "selecting class teachers")
	}
	return teachers, nil
}

func (repo rosterRepository) AddClassTeacher(ctx context.Context, classID, teacherID int, exec ...core.DBExecutor) error {
	q := "INSERT INTO course_class_teacher (course_class_id, teacher_id) VALUES ($1, $2)"
	_, err := repo.getExec(exec).ExecContext(ctx, q, classID, teacherID)
	return database.TrapWriteErr(err, "inserting class teacher")
}

func (repo rosterRepository) RemoveClassTeacher(ctx context.Context, classID, teacherID int, exec ...core.DBExecutor) (bool, error) {
	q := "DELETE FROM course_class_teacher WHERE course_class_id = $1 AND teacher_id = $2"
	return repo.delete(ctx, repo.getExec(exec), q, classID, teacherID)
}

func (repo rosterRepository) delete(ctx context.Context, db core.DBExecutor, q string, classID, memberID int) (bool, error) {
	res, err := db.ExecContext(ctx, q, classID, memberID)
	if err != nil {
		return false, errors.Wrap(err, "deleting roster edge")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "deleting roster edge")
	}
	return n > 0, nil
}
