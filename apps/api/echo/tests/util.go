package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/roster"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/storage/database/dummy"
	"github.com/trezcool/darasa/tests"
)

type testApp struct {
	*Server
	db    *dummydb.DB
	class course.CourseClass
}

func setup(t *testing.T, policy string) *testApp {
	db := dummydb.Open()
	logger := testutil.NewLogger(t)

	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)

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

	conf := &core.Config{TestMode: true, Env: "test"}
	conf.Server.DisableReqLogs = true
	conf.Attendance.Policy = policy

	c := db.CreateCourse("Geography")
	return &testApp{
		Server: NewServer(ServerDeps{
			Conf:          conf,
			Logger:        logger,
			DB:            db,
			AttendanceSvc: attSvc,
			RosterSvc:     rosterSvc,
			Validate:      validate,
			Translator:    translator,
		}),
		db:    db,
		class: db.CreateCourseClass(c.ID, "Geo 1", course.StatusInProgress, time.Now()),
	}
}

// enroll creates n students on the class roster.
func (app *testApp) enroll(t *testing.T, n int) []student.Student {
	students := make([]student.Student, 0, n)
	for i := 0; i < n; i++ {
		s := app.db.CreateStudent("Student", time.Date(2010, 9, 1, 0, 0, 0, 0, time.UTC))
		app.db.EnrollStudent(app.class.ID, s.ID)
		students = append(students, s)
	}
	return students
}

type httpErr struct {
	Error string `json:"error"`
	IDs   []int  `json:"ids,omitempty"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func (app *testApp) run(t *testing.T, tt httpTest) *httptest.ResponseRecorder {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newRequest(method, tt.path, tt.body)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
	return rec
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, tt.wantCode, rec.Code, "body: %s", rec.Body.String())
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
