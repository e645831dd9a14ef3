package dummydb

import (
	"context"
	"sync"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/lesson"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
)

type (
	// DB is an in-memory stand-in for the relational database.
	DB struct {
		txMu sync.Mutex // one transaction at a time

		course       *courseTable
		courseClass  *courseClassTable
		lesson       *lessonTable
		student      *studentTable
		user         *userTable
		classStudent *edgeTable
		classTeacher *edgeTable
		attendance   *attendanceTable
	}

	courseTable struct {
		sync.RWMutex
		seq   int
		table map[int]*course.Course
	}

	courseClassTable struct {
		sync.RWMutex
		seq   int
		table map[int]*course.CourseClass
	}

	lessonTable struct {
		sync.RWMutex
		seq   int
		table map[int]*lesson.Lesson
	}

	studentTable struct {
		sync.RWMutex
		seq   int
		table map[int]*student.Student
	}

	userTable struct {
		sync.RWMutex
		seq   int
		table map[int]*user.User
	}

	edge struct {
		classID  int
		memberID int
	}

	edgeTable struct {
		sync.RWMutex
		table map[edge]struct{}
	}

	attendanceTable struct {
		sync.RWMutex
		seq       int
		table     map[int]*attendance.Attendance
		insertErr error
	}
)

var _ core.Transactor = (*DB)(nil) // interface compliance check

func Open() *DB {
	return &DB{
		course:       &courseTable{table: make(map[int]*course.Course)},
		courseClass:  &courseClassTable{table: make(map[int]*course.CourseClass)},
		lesson:       &lessonTable{table: make(map[int]*lesson.Lesson)},
		student:      &studentTable{table: make(map[int]*student.Student)},
		user:         &userTable{table: make(map[int]*user.User)},
		classStudent: &edgeTable{table: make(map[edge]struct{})},
		classTeacher: &edgeTable{table: make(map[edge]struct{})},
		attendance:   &attendanceTable{table: make(map[int]*attendance.Attendance)},
	}
}

func (db *DB) PingContext(context.Context) error { return nil }

// WithTx runs fn with a nil executor. Roster and attendance writes made by fn are undone if it fails.
// Only WithTx callers are serialized: a failed fn also discards writes made outside WithTx meanwhile.
func (db *DB) WithTx(_ context.Context, fn func(tx core.DBExecutor) error) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()

	classStudents := db.classStudent.snapshot()
	classTeachers := db.classTeacher.snapshot()
	attendances := db.attendance.snapshot()

	if err := fn(nil); err != nil {
		db.classStudent.restore(classStudents)
		db.classTeacher.restore(classTeachers)
		db.attendance.restore(attendances)
		return err
	}
	return nil
}

// FailAttendanceInserts makes every following attendance insert fail with err (nil resets).
func (db *DB) FailAttendanceInserts(err error) {
	db.attendance.Lock()
	defer db.attendance.Unlock()
	db.attendance.insertErr = err
}

func (t *edgeTable) snapshot() map[edge]struct{} {
	t.RLock()
	defer t.RUnlock()
	cp := make(map[edge]struct{}, len(t.table))
	for k := range t.table {
		cp[k] = struct{}{}
	}
	return cp
}

func (t *edgeTable) restore(table map[edge]struct{}) {
	t.Lock()
	defer t.Unlock()
	t.table = table
}

func (t *attendanceTable) snapshot() map[int]attendance.Attendance {
	t.RLock()
	defer t.RUnlock()
	cp := make(map[int]attendance.Attendance, len(t.table))
	for id, att := range t.table {
		cp[id] = *att
	}
	return cp
}

func (t *attendanceTable) restore(table map[int]attendance.Attendance) {
	t.Lock()
	defer t.Unlock()
	t.table = make(map[int]*attendance.Attendance, len(table))
	for id, att := range table {
		att := att
		t.table[id] = &att
	}
}

// Seeding helpers (the lookups are read-only through their repositories).

func (db *DB) CreateCourse(name string) course.Course {
	db.course.Lock()
	defer db.course.Unlock()

	now := time.Now().UTC()
	db.course.seq++
	c := course.Course{ID: db.course.seq, Name: name, CreatedAt: now, UpdatedAt: now}
	db.course.table[c.ID] = &c
	return c
}

func (db *DB) CreateCourseClass(courseID int, name, status string, startDate time.Time) course.CourseClass {
	db.courseClass.Lock()
	defer db.courseClass.Unlock()

	now := time.Now().UTC()
	db.courseClass.seq++
	cc := course.CourseClass{
		ID:        db.courseClass.seq,
		CourseID:  courseID,
		Name:      name,
		Status:    status,
		StartDate: startDate.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	db.courseClass.table[cc.ID] = &cc
	return cc
}

func (db *DB) CreateLesson(classID int, date time.Time, topic string) lesson.Lesson {
	db.lesson.Lock()
	defer db.lesson.Unlock()

	now := time.Now().UTC()
	db.lesson.seq++
	les := lesson.Lesson{
		ID:            db.lesson.seq,
		CourseClassID: classID,
		Date:          date.UTC(),
		Topic:         null.NewString(topic, topic != ""),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	db.lesson.table[les.ID] = &les
	return les
}

func (db *DB) CreateStudent(name string, birthDate time.Time) student.Student {
	db.student.Lock()
	defer db.student.Unlock()

	now := time.Now().UTC()
	db.student.seq++
	s := student.Student{ID: db.student.seq, Name: name, BirthDate: birthDate.UTC(), CreatedAt: now, UpdatedAt: now}
	db.student.table[s.ID] = &s
	return s
}

// DeleteStudent soft-deletes a student.
func (db *DB) DeleteStudent(id int) {
	db.student.Lock()
	defer db.student.Unlock()
	if s, ok := db.student.table[id]; ok {
		s.DeletedAt = null.TimeFrom(time.Now().UTC())
	}
}

func (db *DB) CreateUser(name, email string) user.User {
	db.user.Lock()
	defer db.user.Unlock()

	now := time.Now().UTC()
	db.user.seq++
	u := user.User{ID: db.user.seq, Name: name, Email: email, CreatedAt: now, UpdatedAt: now}
	db.user.table[u.ID] = &u
	return u
}

// EnrollStudent puts a student on a class roster.
func (db *DB) EnrollStudent(classID, studentID int) {
	_ = db.classStudent.add(classID, studentID)
}
