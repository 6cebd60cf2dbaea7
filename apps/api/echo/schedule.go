package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/asistente/core"
	"github.com/trezcool/asistente/core/course"
	"github.com/trezcool/asistente/core/schedule"
)

type scheduleApi struct {
	courses course.Service
}

func registerScheduleAPI(g *echo.Group, courses course.Service, authed ...echo.MiddlewareFunc) {
	api := scheduleApi{courses: courses}

	sg := g.Group("/schedules", authed...)
	sg.GET("", api.query)
	sg.GET("/grid", api.grid)
}

type (
	GridCell struct {
		schedule.Cell
		Schedules []schedule.Schedule `json:"schedules"`
	}

	GridResponse struct {
		Days      []int           `json:"days"`
		HourSlots []string        `json:"hourSlots"`
		Cells     []GridCell      `json:"cells"`
		Conflicts []schedule.Cell `json:"conflicts"`
	}
)

// Handlers

// query lists every session of the user, restricted to ?day= (1=Monday..7=Sunday) when given.
func (api *scheduleApi) query(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	schedules, err := api.courses.Schedules(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "querying schedules")
	}
	if d := ctx.QueryParam("day"); d != "" {
		day, err := strconv.Atoi(d)
		if err != nil || day < 1 || day > 7 {
			return core.NewValidationError(schedule.ErrDayOutOfWeek, core.FieldError{Field: "day", Error: schedule.ErrDayOutOfWeek.Error()})
		}
		schedules = schedule.ForDay(schedules, day)
	}
	if schedules == nil {
		schedules = []schedule.Schedule{}
	}
	return ctx.JSON(http.StatusOK, schedules)
}

func (api *scheduleApi) grid(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	schedules, err := api.courses.Schedules(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "querying schedules")
	}

	days, slots := schedule.DefaultDays(), schedule.DefaultHourSlots()
	grid := schedule.BuildGrid(schedules, days, slots)
	cells := grid.Cells()

	resp := GridResponse{
		Days:      days,
		HourSlots: slots,
		Cells:     make([]GridCell, 0, len(cells)),
		Conflicts: grid.Conflicts(),
	}
	for _, c := range cells {
		resp.Cells = append(resp.Cells, GridCell{Cell: c, Schedules: grid[c]})
	}
	return ctx.JSON(http.StatusOK, resp)
}
