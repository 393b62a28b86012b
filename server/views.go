package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/existflow/dayboard/internal/aggregate"
	"github.com/existflow/dayboard/internal/cache"
	"github.com/existflow/dayboard/internal/calendar"
	"github.com/existflow/dayboard/internal/dateutil"
	"github.com/existflow/dayboard/internal/model"
	"github.com/existflow/dayboard/internal/preview"
)

// CalendarView is the month grid with its range
type CalendarView struct {
	Today string        `json:"today"`
	Start string        `json:"start"`
	End   string        `json:"end"`
	Grid  calendar.Grid `json:"grid"`
}

// DayView is everything shown for one selected date
type DayView struct {
	Date      string            `json:"date"`
	Label     dateutil.Label    `json:"d_day"`
	Daily     []model.Task      `json:"daily"`
	Day       []model.Task      `json:"day"`
	Due       []model.Task      `json:"due"`
	Schedules []model.Schedule  `json:"schedules"`
	Counter   aggregate.Counter `json:"counter"`
}

func (s *Server) handleCalendar(c echo.Context) error {
	month, err := dateutil.ParseMonth(c.Param("month"), s.loc)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	view, err := cache.View(c.Request().Context(), s.cache, "calendar:"+c.Param("month"),
		func(ctx context.Context) (CalendarView, error) {
			return s.buildCalendar(ctx, month)
		})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) buildCalendar(ctx context.Context, month time.Time) (CalendarView, error) {
	start, end := dateutil.MonthBounds(month)
	today := s.today()

	day, err := s.gw.FetchTasksInRange(ctx, model.TypeDay, start, end)
	if err != nil {
		return CalendarView{}, err
	}
	due, err := s.gw.FetchTasksInRange(ctx, model.TypeDue, start, end)
	if err != nil {
		return CalendarView{}, err
	}
	schedules, err := s.gw.FetchSchedulesInRange(ctx, start, end)
	if err != nil {
		return CalendarView{}, err
	}

	res := aggregate.Build(aggregate.Input{
		Day:       day,
		Due:       due,
		Schedules: schedules,
		Start:     start,
		End:       end,
		Today:     today,
	})
	return CalendarView{
		Today: today,
		Start: start,
		End:   end,
		Grid:  calendar.BuildGrid(month, res, today, ""),
	}, nil
}

func (s *Server) handleDay(c echo.Context) error {
	date := c.Param("date")
	if !dateutil.ValidKey(date) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "expected YYYY-MM-DD"})
	}

	view, err := cache.View(c.Request().Context(), s.cache, "day:"+date,
		func(ctx context.Context) (DayView, error) {
			return s.buildDay(ctx, date)
		})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) buildDay(ctx context.Context, date string) (DayView, error) {
	daily, err := s.gw.FetchDailyTasks(ctx)
	if err != nil {
		return DayView{}, err
	}
	day, err := s.gw.FetchTasksByDate(ctx, date, model.TypeDay)
	if err != nil {
		return DayView{}, err
	}
	due, err := s.gw.FetchTasksByDate(ctx, date, model.TypeDue)
	if err != nil {
		return DayView{}, err
	}
	schedules, err := s.gw.FetchSchedulesInRange(ctx, date, date)
	if err != nil {
		return DayView{}, err
	}

	res := aggregate.Build(aggregate.Input{
		Daily:     daily,
		Day:       day,
		Due:       due,
		Schedules: schedules,
		Start:     date,
		End:       date,
	})
	bucket := res.Bucket(date)
	label, err := dateutil.RelativeDayLabel(s.today(), date)
	if err != nil {
		return DayView{}, err
	}

	view := DayView{
		Date:      date,
		Label:     label,
		Daily:     nonNil(res.Daily),
		Day:       nonNil(bucket.Day),
		Due:       nonNil(bucket.Due),
		Schedules: res.Schedules[date],
		Counter:   aggregate.CountDay(bucket.Day),
	}
	if view.Schedules == nil {
		view.Schedules = []model.Schedule{}
	}
	return view, nil
}

func (s *Server) handleUpcoming(c echo.Context) error {
	limit := preview.DefaultMax
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
		}
		limit = n
	}

	panel, err := cache.View(c.Request().Context(), s.cache, "upcoming:"+strconv.Itoa(limit),
		func(ctx context.Context) (preview.Panel, error) {
			today := s.today()
			schedules, err := s.gw.FetchSchedulesFrom(ctx, today, limit)
			if err != nil {
				return preview.Panel{}, err
			}
			due, err := s.gw.FetchTasksFrom(ctx, model.TypeDue, today)
			if err != nil {
				return preview.Panel{}, err
			}
			return preview.Build(schedules, due, today, limit), nil
		})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, panel)
}

func nonNil(tasks []model.Task) []model.Task {
	if tasks == nil {
		return []model.Task{}
	}
	return tasks
}
