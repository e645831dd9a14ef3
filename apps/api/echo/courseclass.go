package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/roster"
)

var errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")

type (
	addStudentRequest struct {
		StudentID int `json:"student_id" validate:"id"`
	}

	addTeacherRequest struct {
		TeacherID int `json:"teacher_id" validate:"id"`
	}
)

type courseClassApi struct {
	svc      roster.ServiceInterface
	validate *validator.Validate
}

func registerCourseClassAPI(g *echo.Group, svc roster.ServiceInterface, validate *validator.Validate) {
	api := courseClassApi{
		svc:      svc,
		validate: validate,
	}

	cg := g.Group("/course-classes/:id")
	cg.GET("/students", api.queryStudents)
	cg.POST("/students", api.addStudent)
	cg.DELETE("/students/:memberId", api.removeStudent)
	cg.GET("/teachers", api.queryTeachers)
	cg.POST("/teachers", api.addTeacher)
	cg.DELETE("/teachers/:memberId", api.removeTeacher)
}

// Handlers

func (api *courseClassApi) queryStudents(ctx echo.Context) error {
	classID, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	students, err := api.svc.GetStudents(ctx.Request().Context(), classID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *courseClassApi) addStudent(ctx echo.Context) error {
	classID, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data addStudentRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to addStudentRequest")
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}
	if err = api.svc.AddStudent(ctx.Request().Context(), classID, data.StudentID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseClassApi) removeStudent(ctx echo.Context) error {
	classID, studentID, err := pathIDs(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.RemoveStudent(ctx.Request().Context(), classID, studentID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseClassApi) queryTeachers(ctx echo.Context) error {
	classID, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	teachers, err := api.svc.GetTeachers(ctx.Request().Context(), classID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *courseClassApi) addTeacher(ctx echo.Context) error {
	classID, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data addTeacherRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to addTeacherRequest")
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}
	if err = api.svc.AddTeacher(ctx.Request().Context(), classID, data.TeacherID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseClassApi) removeTeacher(ctx echo.Context) error {
	classID, teacherID, err := pathIDs(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.RemoveTeacher(ctx.Request().Context(), classID, teacherID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Helpers

// pathID parses a positive integer path param; anything else is a 404.
func pathID(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

func pathIDs(ctx echo.Context) (classID, memberID int, err error) {
	if classID, err = pathID(ctx, "id"); err != nil {
		return 0, 0, err
	}
	if memberID, err = pathID(ctx, "memberId"); err != nil {
		return 0, 0, err
	}
	return classID, memberID, nil
}
