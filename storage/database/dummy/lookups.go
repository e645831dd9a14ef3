package dummydb

import (
	"context"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/lesson"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) GetCourseClass(_ context.Context, filter course.GetFilter, _ ...core.DBExecutor) (course.CourseClass, error) {
	repo.db.courseClass.RLock()
	cc, ok := repo.db.courseClass.table[filter.ID]
	repo.db.courseClass.RUnlock()
	if !ok || cc.IsDeleted() {
		return course.CourseClass{}, course.ErrNotFound
	}

	class := *cc
	if filter.IncludeCourse {
		repo.db.course.RLock()
		if c, ok := repo.db.course.table[class.CourseID]; ok {
			c := *c
			class.Course = &c
		}
		repo.db.course.RUnlock()
	}
	return class, nil
}

type lessonRepository struct {
	db *DB
}

var _ lesson.Repository = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(db *DB) *lessonRepository {
	return &lessonRepository{db: db}
}

// GetLesson ignores filter.ForUpdate: DB.WithTx already serializes transactions.
func (repo *lessonRepository) GetLesson(ctx context.Context, filter lesson.GetFilter, _ ...core.DBExecutor) (lesson.Lesson, error) {
	repo.db.lesson.RLock()
	l, ok := repo.db.lesson.table[filter.ID]
	repo.db.lesson.RUnlock()
	if !ok || l.DeletedAt.Valid {
		return lesson.Lesson{}, lesson.ErrNotFound
	}

	les := *l
	if filter.IncludeCourseClass {
		cc, err := NewCourseRepository(repo.db).GetCourseClass(ctx, course.GetFilter{ID: les.CourseClassID})
		if err != nil {
			return lesson.Lesson{}, err
		}
		les.CourseClass = &cc
	}
	return les, nil
}

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) GetStudent(_ context.Context, id int, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.table[id]; ok && !s.DeletedAt.Valid {
		return *s, nil
	}
	return student.Student{}, student.ErrNotFound
}

// withDeleted also finds soft-deleted students, for historical records.
func (repo *studentRepository) withDeleted(id int) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.table[id]; ok {
		return *s, nil
	}
	return student.Student{}, student.ErrNotFound
}

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) GetUser(_ context.Context, id int, _ ...core.DBExecutor) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.table[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}
