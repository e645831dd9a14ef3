package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // "pgx" driver
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/lesson"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/storage/database"
)

const dbURLEnv = "DARASA_TEST_DATABASE_URL"

// PrepareDB opens the test database, migrates it & empties every table.
// Tests are skipped when DARASA_TEST_DATABASE_URL is not set.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dbURL := os.Getenv(dbURLEnv)
	if dbURL == "" {
		t.Skipf("%s not set", dbURLEnv)
	}

	db, err := sqlx.Open("pgx", dbURL)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	if err = database.Migrate(ctx, db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	ResetDB(t, db)
	return db
}

func ResetDB(t *testing.T, db *sqlx.DB) {
	t.Helper()
	q := `TRUNCATE attendance, course_class_student, course_class_teacher, lesson, course_class, course, student, "user"
		RESTART IDENTITY CASCADE`
	if _, err := db.Exec(q); err != nil {
		t.Fatalf("ResetDB() failed: %v", err)
	}
}

func CreateCourse(t *testing.T, db *sqlx.DB, name string) course.Course {
	t.Helper()
	var c course.Course
	q := "INSERT INTO course (name) VALUES ($1) RETURNING id, name, created_at, updated_at"
	if err := db.Get(&c, q, name); err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return c
}

func CreateCourseClass(t *testing.T, db *sqlx.DB, courseID int, name, status string) course.CourseClass {
	t.Helper()
	var cc course.CourseClass
	q := `INSERT INTO course_class (course_id, name, status, start_date) VALUES ($1, $2, $3, $4)
		RETURNING id, course_id, name, status, start_date, end_date, created_at, updated_at, deleted_at`
	if err := db.Get(&cc, q, courseID, name, status, time.Now().UTC().Truncate(24*time.Hour)); err != nil {
		t.Fatalf("CreateCourseClass() failed: %v", err)
	}
	return cc
}

func CreateLesson(t *testing.T, db *sqlx.DB, classID int, topic string) lesson.Lesson {
	t.Helper()
	var les lesson.Lesson
	q := `INSERT INTO lesson (course_class_id, date, topic) VALUES ($1, $2, $3)
		RETURNING id, course_class_id, date, topic, created_at, updated_at, deleted_at`
	if err := db.Get(&les, q, classID, time.Now().UTC().Truncate(24*time.Hour), topic); err != nil {
		t.Fatalf("CreateLesson() failed: %v", err)
	}
	return les
}

func CreateStudent(t *testing.T, db *sqlx.DB, name string) student.Student {
	t.Helper()
	var s student.Student
	q := `INSERT INTO student (name, birth_date) VALUES ($1, $2)
		RETURNING id, name, birth_date, created_at, updated_at, deleted_at`
	if err := db.Get(&s, q, name, time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}

func CreateUser(t *testing.T, db *sqlx.DB, name, email string) user.User {
	t.Helper()
	var u user.User
	q := `INSERT INTO "user" (name, email) VALUES ($1, $2)
		RETURNING id, name, email, password_hash, created_at, updated_at`
	if err := db.Get(&u, q, name, email); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return u
}

func Enroll(t *testing.T, db *sqlx.DB, classID int, studentIDs ...int) {
	t.Helper()
	for _, id := range studentIDs {
		if _, err := db.Exec("INSERT INTO course_class_student (course_class_id, student_id) VALUES ($1, $2)", classID, id); err != nil {
			t.Fatalf("Enroll() failed: %v", err)
		}
	}
}
