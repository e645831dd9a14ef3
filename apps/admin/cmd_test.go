package main

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/roster"
	"github.com/trezcool/darasa/storage/database/dummy"
	"github.com/trezcool/darasa/tests"
)

type fixture struct {
	cli    *commandLine
	out    *bytes.Buffer
	db     *dummydb.DB
	attSvc *attendance.Service
	class  course.CourseClass
}

func setup(t *testing.T) fixture {
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
	attSvc := attendance.NewService(
		db,
		dummydb.NewAttendanceRepository(db),
		dummydb.NewLessonRepository(db),
		dummydb.NewStudentRepository(db),
		rosterSvc,
		logger,
	)

	var out bytes.Buffer
	c := db.CreateCourse("Music")
	return fixture{
		cli:    &commandLine{rosterSvc: rosterSvc, attSvc: attSvc, out: &out},
		out:    &out,
		db:     db,
		attSvc: attSvc,
		class:  db.CreateCourseClass(c.ID, "Choir", course.StatusForming, time.Now()),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    string
}

func runCLITests(t *testing.T, f fixture, tests []cliTest) {
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			f.out.Reset()
			err := f.cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				if assert.Error(t, err) {
					assert.Equal(t, tt.wantErrStr, err.Error())
				}
			default:
				assert.NoError(t, err)
			}
			if tt.wantOut != "" {
				assert.Equal(t, tt.wantOut, f.out.String())
			}
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	f := setup(t)

	gooseRunFunc = func(_ context.Context, _ *sqlx.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	runCLITests(t, f, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "grades", "sql"}},
	})
}

func Test_commandLine_roster(t *testing.T) {
	f := setup(t)
	s := f.db.CreateStudent("Upendo", time.Date(2011, 2, 3, 0, 0, 0, 0, time.UTC))
	u := f.db.CreateUser("Mwalimu", "mwalimu@test.cd")
	class, sid, uid := strconv.Itoa(f.class.ID), strconv.Itoa(s.ID), strconv.Itoa(u.ID)

	runCLITests(t, f, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "enroll: no args", args: []string{"enroll"}, wantErr: errHelp},
		{name: "enroll: no member", args: []string{"enroll", "-class", class}, wantErr: errHelp},
		{name: "enroll: both members", args: []string{"enroll", "-class", class, "-student", sid, "-teacher", uid}, wantErr: errHelp},
		{name: "enroll: bad flag", args: []string{"enroll", "-class", "lol"}, wantErr: errHelp},
		{
			name: "enroll student", args: []string{"enroll", "-class", class, "-student", sid},
			wantOut: fmt.Sprintf("student %s enrolled in class %s\n", sid, class),
		},
		{
			name: "enroll student again", args: []string{"enroll", "-class", class, "-student", sid},
			wantErrStr: fmt.Sprintf("Student with ID %s is already in this class.", sid),
		},
		{name: "enroll unknown student", args: []string{"enroll", "-class", class, "-student", "999"}, wantErrStr: "Student with ID 999 not found"},
		{
			name: "enroll teacher", args: []string{"enroll", "-class", class, "-teacher", uid},
			wantOut: fmt.Sprintf("teacher %s assigned to class %s\n", uid, class),
		},
		{
			name: "roster", args: []string{"roster", "-class", class},
			wantOut: fmt.Sprintf("teachers (1):\n  %s\tMwalimu\tmwalimu@test.cd\nstudents (1):\n  %s\tUpendo\n", uid, sid),
		},
		{name: "roster: unknown class", args: []string{"roster", "-class", "999"}, wantErrStr: "Course class with ID 999 not found"},
		{name: "roster: no class", args: []string{"roster"}, wantErr: errHelp},
		{
			name: "unenroll student", args: []string{"unenroll", "-class", class, "-student", sid},
			wantOut: fmt.Sprintf("student %s removed from class %s\n", sid, class),
		},
		{
			name: "unenroll student again", args: []string{"unenroll", "-class", class, "-student", sid},
			wantErrStr: fmt.Sprintf("Student with ID %s not found in this class.", sid),
		},
		{name: "unenroll teacher", args: []string{"unenroll", "-class", class, "-teacher", uid}},
		{
			name: "roster: empty", args: []string{"roster", "-class", class},
			wantOut: "teachers (0):\nstudents (0):\n",
		},
	})
}

func Test_commandLine_clearAttendance(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	s := f.db.CreateStudent("Tumaini", time.Now())
	f.db.EnrollStudent(f.class.ID, s.ID)
	les := f.db.CreateLesson(f.class.ID, time.Now(), "Scales")

	_, err := f.attSvc.BulkCreate(ctx, les.ID, []attendance.Entry{{StudentID: s.ID, Present: true}})
	require.NoError(t, err)

	runCLITests(t, f, []cliTest{
		{name: "no lesson", args: []string{"clearattendance"}, wantErr: errHelp},
		{name: "unknown lesson", args: []string{"clearattendance", "-lesson", "999"}, wantErrStr: "Lesson with ID 999 not found"},
		{
			name: "clear", args: []string{"clearattendance", "-lesson", strconv.Itoa(les.ID)},
			wantOut: fmt.Sprintf("attendance of lesson %d cleared\n", les.ID),
		},
	})

	atts, err := f.attSvc.FindAllByLesson(ctx, les.ID)
	require.NoError(t, err)
	assert.Empty(t, atts)
	assert.True(t, core.IsNotFound(f.cli.run([]string{"admin", "clearattendance", "-lesson", "999"})))
}
