package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/attendance"
)

type attendanceApi struct {
	svc      attendance.ServiceInterface
	validate *validator.Validate
}

// registerAttendanceAPI mounts the lesson (bulk) & single-record attendance endpoints.
// With upsert, POST merges a full-roster submission and there is no bulk PATCH.
func registerAttendanceAPI(g *echo.Group, svc attendance.ServiceInterface, validate *validator.Validate, upsert bool) {
	api := attendanceApi{
		svc:      svc,
		validate: validate,
	}

	lg := g.Group("/lessons/:id/attendances")
	lg.GET("", api.queryByLesson)
	lg.DELETE("", api.destroyByLesson)
	if upsert {
		lg.POST("", api.upsertBulk)
	} else {
		lg.POST("", api.createBulk)
		lg.PATCH("", api.updateBulk)
	}

	ag := g.Group("/attendances")
	ag.POST("", api.create)
	ag.GET("/:id", api.retrieve)
	ag.PATCH("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
}

// Handlers

func (api *attendanceApi) bindBulk(ctx echo.Context) (int, []attendance.Entry, error) {
	lessonID, err := pathID(ctx, "id")
	if err != nil {
		return 0, nil, err
	}
	var data attendance.BulkAttendance
	if err = ctx.Bind(&data); err != nil {
		return 0, nil, errors.Wrap(err, "binding to BulkAttendance")
	}
	if err = data.Validate(api.validate); err != nil {
		return 0, nil, err
	}
	return lessonID, data.Entries(), nil
}

func (api *attendanceApi) createBulk(ctx echo.Context) error {
	lessonID, entries, err := api.bindBulk(ctx)
	if err != nil {
		return err
	}
	atts, err := api.svc.BulkCreate(ctx.Request().Context(), lessonID, entries)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, atts)
}

func (api *attendanceApi) updateBulk(ctx echo.Context) error {
	lessonID, entries, err := api.bindBulk(ctx)
	if err != nil {
		return err
	}
	atts, err := api.svc.BulkUpdate(ctx.Request().Context(), lessonID, entries)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, atts)
}

func (api *attendanceApi) upsertBulk(ctx echo.Context) error {
	lessonID, entries, err := api.bindBulk(ctx)
	if err != nil {
		return err
	}
	atts, err := api.svc.BulkUpsert(ctx.Request().Context(), lessonID, entries)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, atts)
}

func (api *attendanceApi) queryByLesson(ctx echo.Context) error {
	lessonID, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	atts, err := api.svc.FindAllByLesson(ctx.Request().Context(), lessonID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, atts)
}

func (api *attendanceApi) destroyByLesson(ctx echo.Context) error {
	lessonID, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.RemoveAllByLesson(ctx.Request().Context(), lessonID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *attendanceApi) create(ctx echo.Context) error {
	var data attendance.NewAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAttendance")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	att, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, att)
}

func (api *attendanceApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	att, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, att)
}

func (api *attendanceApi) update(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data attendance.UpdateAttendance
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAttendance")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}
	att, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, att)
}

func (api *attendanceApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
