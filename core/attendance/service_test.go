package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/lesson"
	"github.com/trezcool/darasa/core/roster"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/storage/database/dummy"
	"github.com/trezcool/darasa/tests"
)

type fixture struct {
	db        *dummydb.DB
	svc       *attendance.Service
	rosterSvc *roster.Service
	class     course.CourseClass
	lesson    lesson.Lesson
	students  []student.Student // enrolled
	outsider  student.Student
}

func setup(t *testing.T, enrolled int) fixture {
	ctx := context.Background()
	db := dummydb.Open()
	logger := testutil.NewLogger(t)

	rosterSvc := roster.NewService(
		db,
		dummydb.NewRosterRepository(db),
		dummydb.NewCourseRepository(db),
		dummydb.NewStudentRepository(db),
		dummydb.NewUserRepository(db),
		logger,
	)
	svc := attendance.NewService(
		db,
		dummydb.NewAttendanceRepository(db),
		dummydb.NewLessonRepository(db),
		dummydb.NewStudentRepository(db),
		rosterSvc,
		logger,
	)

	c := db.CreateCourse("History")
	class := db.CreateCourseClass(c.ID, "History B", course.StatusInProgress, time.Now())
	les := db.CreateLesson(class.ID, time.Now(), "The Kongo kingdom")
	birth := time.Date(2011, 6, 1, 0, 0, 0, 0, time.UTC)

	f := fixture{db: db, svc: svc, rosterSvc: rosterSvc, class: class, lesson: les}
	for i := 0; i < enrolled; i++ {
		s := db.CreateStudent("Student", birth)
		require.NoError(t, rosterSvc.AddStudent(ctx, class.ID, s.ID))
		f.students = append(f.students, s)
	}
	f.outsider = db.CreateStudent("Outsider", birth)
	return f
}

func entry(s student.Student, present bool, notes ...string) attendance.Entry {
	e := attendance.Entry{StudentID: s.ID, Present: present}
	if len(notes) > 0 {
		e.Notes = null.StringFrom(notes[0])
	}
	return e
}

func assertInvalidIDs(t *testing.T, err error, ids ...int) {
	t.Helper()
	if assert.Error(t, err) {
		var opErr *core.InvalidOperationError
		if assert.True(t, errors.As(err, &opErr), "want InvalidOperationError, got %T: %v", err, err) {
			assert.Equal(t, ids, opErr.IDs)
		}
	}
}

func TestService_BulkCreate_completeness(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 3)
	s1, s2, s3 := f.students[0], f.students[1], f.students[2]

	tests := []struct {
		name    string
		entries []attendance.Entry
		wantIDs []int
		wantMsg string
	}{
		{
			name:    "missing roster student",
			entries: []attendance.Entry{entry(s1, true), entry(s2, true)},
			wantIDs: []int{s3.ID},
			wantMsg: "Missing attendance records for students with IDs: " + core.JoinIDs([]int{s3.ID}),
		},
		{
			name:    "student not in class",
			entries: []attendance.Entry{entry(s1, true), entry(s2, true), entry(s3, true), entry(f.outsider, true)},
			wantIDs: []int{f.outsider.ID},
			wantMsg: "Students with IDs " + core.JoinIDs([]int{f.outsider.ID}) + " do not belong to this course class",
		},
		{
			name:    "duplicate student",
			entries: []attendance.Entry{entry(s1, true), entry(s2, true), entry(s3, true), entry(s1, false)},
			wantIDs: []int{s1.ID},
			wantMsg: "Students with IDs " + core.JoinIDs([]int{s1.ID}) + " were submitted more than once",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.BulkCreate(ctx, f.lesson.ID, tt.entries)
			assertInvalidIDs(t, err, tt.wantIDs...)
			assert.Equal(t, tt.wantMsg, err.Error())

			atts, err := f.svc.FindAllByLesson(ctx, f.lesson.ID)
			require.NoError(t, err)
			assert.Empty(t, atts)
		})
	}

	atts, err := f.svc.BulkCreate(ctx, f.lesson.ID, []attendance.Entry{entry(s3, true), entry(s1, false, "sick"), entry(s2, true)})
	require.NoError(t, err)
	if assert.Len(t, atts, 3) {
		// returned in submission order
		assert.Equal(t, []int{s3.ID, s1.ID, s2.ID}, []int{atts[0].StudentID, atts[1].StudentID, atts[2].StudentID})
		assert.Equal(t, null.StringFrom("sick"), atts[1].Notes)
		assert.False(t, atts[1].Present)
		for _, att := range atts {
			assert.NotZero(t, att.ID)
			assert.Equal(t, f.lesson.ID, att.LessonID)
			if assert.NotNil(t, att.Student) {
				assert.Equal(t, att.StudentID, att.Student.ID)
			}
		}
	}
}

func TestService_BulkCreate_twice(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 2)
	entries := []attendance.Entry{entry(f.students[0], true), entry(f.students[1], true)}

	_, err := f.svc.BulkCreate(ctx, f.lesson.ID, entries)
	require.NoError(t, err)

	_, err = f.svc.BulkCreate(ctx, f.lesson.ID, entries)
	if assert.Error(t, err) {
		assert.True(t, core.IsInvalidOperation(err))
		assert.Equal(t, "Attendance records already exist for this lesson. Use PATCH to update.", err.Error())
	}
}

func TestService_lessonNotFound(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 1)
	entries := []attendance.Entry{entry(f.students[0], true)}

	ops := map[string]func() error{
		"BulkCreate": func() error { _, err := f.svc.BulkCreate(ctx, 999, entries); return err },
		"BulkUpdate": func() error { _, err := f.svc.BulkUpdate(ctx, 999, entries); return err },
		"BulkUpsert": func() error { _, err := f.svc.BulkUpsert(ctx, 999, entries); return err },
		"FindAll":    func() error { _, err := f.svc.FindAllByLesson(ctx, 999); return err },
		"RemoveAll":  func() error { return f.svc.RemoveAllByLesson(ctx, 999) },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			err := op()
			if assert.Error(t, err) {
				assert.True(t, core.IsNotFound(err))
				assert.Equal(t, "Lesson with ID 999 not found", err.Error())
			}
		})
	}
}

func TestService_scenario(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 2)
	s10, s11 := f.students[0], f.students[1]

	created, err := f.svc.BulkCreate(ctx, f.lesson.ID, []attendance.Entry{entry(s10, true), entry(s11, false, "absent")})
	require.NoError(t, err)
	require.Len(t, created, 2)

	atts, err := f.svc.FindAllByLesson(ctx, f.lesson.ID)
	require.NoError(t, err)
	assert.Len(t, atts, 2)

	updated, err := f.svc.BulkUpdate(ctx, f.lesson.ID, []attendance.Entry{entry(s10, false)})
	require.NoError(t, err)
	if assert.Len(t, updated, 1) {
		assert.Equal(t, created[0].ID, updated[0].ID)
		assert.False(t, updated[0].Present)
	}

	atts, err = f.svc.FindAllByLesson(ctx, f.lesson.ID)
	require.NoError(t, err)
	if assert.Len(t, atts, 2) {
		assert.False(t, atts[0].Present)
		assert.Equal(t, null.StringFrom("absent"), atts[1].Notes) // untouched
		assert.NotNil(t, atts[1].Student)
	}

	require.NoError(t, f.svc.RemoveAllByLesson(ctx, f.lesson.ID))
	atts, err = f.svc.FindAllByLesson(ctx, f.lesson.ID)
	require.NoError(t, err)
	assert.Empty(t, atts)

	// cleared records no longer block a new submission
	_, err = f.svc.BulkCreate(ctx, f.lesson.ID, []attendance.Entry{entry(s10, true), entry(s11, true)})
	assert.NoError(t, err)
}

func TestService_BulkUpdate_idempotent(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 2)
	_, err := f.svc.BulkCreate(ctx, f.lesson.ID, []attendance.Entry{entry(f.students[0], true), entry(f.students[1], true)})
	require.NoError(t, err)

	entries := []attendance.Entry{entry(f.students[1], false, "late")}
	first, err := f.svc.BulkUpdate(ctx, f.lesson.ID, entries)
	require.NoError(t, err)
	second, err := f.svc.BulkUpdate(ctx, f.lesson.ID, entries)
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[0].Present, second[0].Present)
	assert.Equal(t, first[0].Notes, second[0].Notes)

	atts, err := f.svc.FindAllByLesson(ctx, f.lesson.ID)
	require.NoError(t, err)
	assert.Len(t, atts, 2)
}

func TestService_BulkUpdate_rosterGrowth(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 1)
	_, err := f.svc.BulkCreate(ctx, f.lesson.ID, []attendance.Entry{entry(f.students[0], true)})
	require.NoError(t, err)

	_, err = f.svc.BulkUpdate(ctx, f.lesson.ID, []attendance.Entry{entry(f.outsider, true)})
	assertInvalidIDs(t, err, f.outsider.ID)

	require.NoError(t, f.rosterSvc.AddStudent(ctx, f.class.ID, f.outsider.ID))
	saved, err := f.svc.BulkUpdate(ctx, f.lesson.ID, []attendance.Entry{entry(f.outsider, true)})
	require.NoError(t, err)
	if assert.Len(t, saved, 1) {
		assert.Equal(t, f.outsider.ID, saved[0].StudentID)
	}

	atts, err := f.svc.FindAllByLesson(ctx, f.lesson.ID)
	require.NoError(t, err)
	assert.Len(t, atts, 2)
}

func TestService_writeFailures(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 1)
	s1 := f.students[0]
	boom := errors.New("connection reset")

	f.db.FailAttendanceInserts(boom)
	_, err := f.svc.BulkCreate(ctx, f.lesson.ID, []attendance.Entry{entry(s1, true)})
	if assert.Error(t, err) {
		var intErr *core.InternalError
		assert.True(t, errors.As(err, &intErr))
		assert.NotContains(t, err.Error(), "connection reset")
	}
	f.db.FailAttendanceInserts(nil)

	atts, err := f.svc.FindAllByLesson(ctx, f.lesson.ID)
	require.NoError(t, err)
	assert.Empty(t, atts)

	_, err = f.svc.BulkCreate(ctx, f.lesson.ID, []attendance.Entry{entry(s1, true)})
	require.NoError(t, err)

	// the update of s1 is undone when inserting the newcomer fails
	require.NoError(t, f.rosterSvc.AddStudent(ctx, f.class.ID, f.outsider.ID))
	f.db.FailAttendanceInserts(boom)
	_, err = f.svc.BulkUpdate(ctx, f.lesson.ID, []attendance.Entry{entry(s1, false), entry(f.outsider, true)})
	assert.Error(t, err)
	f.db.FailAttendanceInserts(nil)

	atts, err = f.svc.FindAllByLesson(ctx, f.lesson.ID)
	require.NoError(t, err)
	if assert.Len(t, atts, 1) {
		assert.True(t, atts[0].Present)
	}
}

func TestService_BulkUpsert(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 2)
	s1, s2 := f.students[0], f.students[1]

	_, err := f.svc.BulkUpsert(ctx, f.lesson.ID, []attendance.Entry{entry(s1, true)})
	assertInvalidIDs(t, err, s2.ID)

	first, err := f.svc.BulkUpsert(ctx, f.lesson.ID, []attendance.Entry{entry(s1, true), entry(s2, true)})
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := f.svc.BulkUpsert(ctx, f.lesson.ID, []attendance.Entry{entry(s2, false, "left early"), entry(s1, true)})
	require.NoError(t, err)
	if assert.Len(t, second, 2) {
		assert.Equal(t, first[1].ID, second[0].ID)
		assert.False(t, second[0].Present)
		assert.Equal(t, null.StringFrom("left early"), second[0].Notes)
	}

	atts, err := f.svc.FindAllByLesson(ctx, f.lesson.ID)
	require.NoError(t, err)
	assert.Len(t, atts, 2)
}

func TestService_single(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 1)
	s1 := f.students[0]
	notes := "front row"

	att, err := f.svc.Create(ctx, attendance.NewAttendance{LessonID: f.lesson.ID, StudentID: s1.ID, Present: true, Notes: &notes})
	require.NoError(t, err)
	assert.NotNil(t, att.Student)
	assert.NotNil(t, att.Lesson)

	// pair uniqueness
	_, err = f.svc.Create(ctx, attendance.NewAttendance{LessonID: f.lesson.ID, StudentID: s1.ID})
	if assert.Error(t, err) {
		assert.True(t, core.IsConflict(err))
		assert.Equal(t, "Attendance record for this student and lesson already exists.", err.Error())
	}

	_, err = f.svc.Create(ctx, attendance.NewAttendance{LessonID: f.lesson.ID, StudentID: f.outsider.ID})
	assertInvalidIDs(t, err, f.outsider.ID)

	_, err = f.svc.Create(ctx, attendance.NewAttendance{LessonID: f.lesson.ID, StudentID: 999})
	if assert.Error(t, err) {
		assert.Equal(t, "Student with ID 999 not found", err.Error())
	}

	got, err := f.svc.Get(ctx, att.ID)
	require.NoError(t, err)
	assert.Equal(t, att.ID, got.ID)
	assert.Equal(t, null.StringFrom(notes), got.Notes)

	absent := false
	upd, err := f.svc.Update(ctx, att.ID, attendance.UpdateAttendance{Present: &absent})
	require.NoError(t, err)
	assert.False(t, upd.Present)
	assert.Equal(t, null.StringFrom(notes), upd.Notes)

	cleared := ""
	upd, err = f.svc.Update(ctx, att.ID, attendance.UpdateAttendance{Notes: &cleared})
	require.NoError(t, err)
	assert.False(t, upd.Notes.Valid)
	assert.False(t, upd.Present)

	require.NoError(t, f.svc.Delete(ctx, att.ID))

	_, err = f.svc.Get(ctx, att.ID)
	assert.True(t, core.IsNotFound(err))
	err = f.svc.Delete(ctx, att.ID)
	if assert.Error(t, err) {
		assert.Equal(t, "Attendance record with ID "+core.JoinIDs([]int{att.ID})+" not found", err.Error())
	}
	_, err = f.svc.Update(ctx, att.ID, attendance.UpdateAttendance{Present: &absent})
	assert.True(t, core.IsNotFound(err))
}
