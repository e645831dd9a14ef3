package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/lesson"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
)

const (
	courseColumns      = "id, name, created_at, updated_at, deleted_at"
	courseClassColumns = "id, course_id, name, status, start_date, end_date, created_at, updated_at, deleted_at"
	lessonColumns      = "id, course_class_id, date, topic, created_at, updated_at, deleted_at"
	studentColumns     = "id, name, birth_date, created_at, updated_at, deleted_at"
	userColumns        = "id, name, email, password_hash, created_at, updated_at"
)

type courseRepository struct {
	executor
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{newExecutor(db)}
}

func (repo courseRepository) GetCourseClass(ctx context.Context, filter course.GetFilter, exec ...core.DBExecutor) (course.CourseClass, error) {
	db := repo.getExec(exec)

	var cc course.CourseClass
	q := "SELECT " + courseClassColumns + " FROM course_class WHERE id = $1 AND deleted_at IS NULL"
	if err := sqlx.GetContext(ctx, db, &cc, q, filter.ID); err != nil {
		return course.CourseClass{}, trapNoRowsErr(err, course.ErrNotFound, "getting course class")
	}

	if filter.IncludeCourse {
		var c course.Course
		q = "SELECT " + courseColumns + " FROM course WHERE id = $1"
		if err := sqlx.GetContext(ctx, db, &c, q, cc.CourseID); err != nil {
			return course.CourseClass{}, trapNoRowsErr(err, course.ErrNotFound, "getting course")
		}
		cc.Course = &c
	}
	return cc, nil
}

type lessonRepository struct {
	executor
	classes *courseRepository
}

var _ lesson.Repository = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(db *sqlx.DB) *lessonRepository {
	return &lessonRepository{executor: newExecutor(db), classes: NewCourseRepository(db)}
}

func (repo lessonRepository) GetLesson(ctx context.Context, filter lesson.GetFilter, exec ...core.DBExecutor) (lesson.Lesson, error) {
	db := repo.getExec(exec)

	q := "SELECT " + lessonColumns + " FROM lesson WHERE id = $1 AND deleted_at IS NULL"
	if filter.ForUpdate {
		q += " FOR UPDATE"
	}
	var les lesson.Lesson
	if err := sqlx.GetContext(ctx, db, &les, q, filter.ID); err != nil {
		return lesson.Lesson{}, trapNoRowsErr(err, lesson.ErrNotFound, "getting lesson")
	}

	if filter.IncludeCourseClass {
		cc, err := repo.classes.GetCourseClass(ctx, course.GetFilter{ID: les.CourseClassID}, db)
		if err != nil {
			return lesson.Lesson{}, err
		}
		les.CourseClass = &cc
	}
	return les, nil
}

type studentRepository struct {
	executor
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{newExecutor(db)}
}

func (repo studentRepository) GetStudent(ctx context.Context, id int, exec ...core.DBExecutor) (student.Student, error) {
	var s student.Student
	q := "SELECT " + studentColumns + " FROM student WHERE id = $1 AND deleted_at IS NULL"
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &s, q, id); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "getting student")
	}
	return s, nil
}

type userRepository struct {
	executor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{newExecutor(db)}
}

func (repo userRepository) GetUser(ctx context.Context, id int, exec ...core.DBExecutor) (user.User, error) {
	var usr user.User
	q := "SELECT " + userColumns + ` FROM "user" WHERE id = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &usr, q, id); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "getting user")
	}
	return usr, nil
}
