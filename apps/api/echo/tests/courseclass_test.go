package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
)

func Test_courseClassApi_students(t *testing.T) {
	app := setup(t, core.PolicyStrict)
	s1 := app.db.CreateStudent("Furaha", time.Now())
	s2 := app.db.CreateStudent("Jabari", time.Now())
	path := fmt.Sprintf("/api/course-classes/%d/students", app.class.ID)
	add := func(id int) []byte { return marshallObj(t, map[string]int{"student_id": id}) }

	tests := []httpTest{
		{name: "add", method: http.MethodPost, path: path, body: add(s1.ID), wantCode: http.StatusNoContent},
		{name: "add another", method: http.MethodPost, path: path, body: add(s2.ID), wantCode: http.StatusNoContent},
		{
			name: "add again", method: http.MethodPost, path: path, body: add(s1.ID), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{
				Error: fmt.Sprintf("Student with ID %d is already in this class.", s1.ID),
				IDs:   []int{s1.ID},
			}),
		},
		{
			name: "unknown student", method: http.MethodPost, path: path, body: add(999), wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "Student with ID 999 not found"}),
		},
		{
			name: "unknown class", method: http.MethodPost, path: "/api/course-classes/999/students", body: add(s1.ID),
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "Course class with ID 999 not found"}),
		},
		{
			name: "invalid payload", method: http.MethodPost, path: path, body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"student_id": "must be a valid id"}),
		},
		{name: "remove", method: http.MethodDelete, path: fmt.Sprintf("%s/%d", path, s1.ID), wantCode: http.StatusNoContent},
		{
			name: "remove non member", method: http.MethodDelete, path: fmt.Sprintf("%s/%d", path, s1.ID), wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: fmt.Sprintf("Student with ID %d not found in this class.", s1.ID)}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app.run(t, tt)
		})
	}

	rec := app.run(t, httpTest{path: path, wantCode: http.StatusOK})
	var students []student.Student
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &students))
	assert.Equal(t, []int{s2.ID}, student.IDs(students))
}

func Test_courseClassApi_teachers(t *testing.T) {
	app := setup(t, core.PolicyStrict)
	teacher := app.db.CreateUser("Bi Mwalimu", "mwalimu@test.cd")
	path := fmt.Sprintf("/api/course-classes/%d/teachers", app.class.ID)
	body := marshallObj(t, map[string]int{"teacher_id": teacher.ID})

	app.run(t, httpTest{method: http.MethodPost, path: path, body: body, wantCode: http.StatusNoContent})
	app.run(t, httpTest{
		method: http.MethodPost, path: path, body: body, wantCode: http.StatusBadRequest,
		wantData: marshallObj(t, httpErr{
			Error: fmt.Sprintf("Teacher with ID %d is already in this class.", teacher.ID),
			IDs:   []int{teacher.ID},
		}),
	})

	rec := app.run(t, httpTest{path: path, wantCode: http.StatusOK})
	var teachers []user.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &teachers))
	assert.Equal(t, []int{teacher.ID}, user.IDs(teachers))

	app.run(t, httpTest{method: http.MethodDelete, path: fmt.Sprintf("%s/%d", path, teacher.ID), wantCode: http.StatusNoContent})
	app.run(t, httpTest{method: http.MethodDelete, path: fmt.Sprintf("%s/%d", path, teacher.ID), wantCode: http.StatusNotFound})
}
