package server

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"

	"github.com/existflow/dayboard/internal/gateway"
	"github.com/existflow/dayboard/internal/logger"
)

func collectionParam(c echo.Context) (string, bool) {
	name := c.Param("collection")
	return name, gateway.KnownCollection(name)
}

func decodeRow(c echo.Context) (gateway.Row, error) {
	var row gateway.Row
	if err := sonic.ConfigStd.NewDecoder(c.Request().Body).Decode(&row); err != nil {
		return nil, err
	}
	return row, nil
}

// respondError maps gateway errors onto HTTP statuses
func respondError(c echo.Context, err error) error {
	switch gateway.KindOf(err) {
	case gateway.KindValidation:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case gateway.KindNotFound:
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	case gateway.KindMalformed:
		logger.Error("Malformed row in store", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "malformed row"})
	default:
		logger.Error("Store request failed", logger.F("error", err))
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "store unavailable"})
	}
}

// handleSelect returns raw rows for a filtered, ordered query
func (s *Server) handleSelect(c echo.Context) error {
	name, ok := collectionParam(c)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown collection"})
	}

	q, err := gateway.ParseQuery(c.QueryParams())
	if err == nil {
		err = q.Check(name)
	}
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	rows, err := s.cache.Select(c.Request().Context(), name, q)
	if err != nil {
		return respondError(c, err)
	}
	if rows == nil {
		rows = []gateway.Row{}
	}
	return c.JSON(http.StatusOK, rows)
}

// handleInsert validates and stores a new row
func (s *Server) handleInsert(c echo.Context) error {
	name, ok := collectionParam(c)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown collection"})
	}
	row, err := decodeRow(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	ctx := c.Request().Context()
	switch name {
	case gateway.CollectionTasks:
		t, err := gateway.TaskFromPayload(row)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		created, err := s.gw.CreateTask(ctx, t)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusCreated, created)
	default:
		sc, err := gateway.ScheduleFromPayload(row)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		created, err := s.gw.CreateSchedule(ctx, sc)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusCreated, created)
	}
}

// handleUpdate applies a partial update. Explicit nulls clear columns.
func (s *Server) handleUpdate(c echo.Context) error {
	name, ok := collectionParam(c)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown collection"})
	}
	row, err := decodeRow(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	ctx := c.Request().Context()
	id := c.Param("id")
	switch name {
	case gateway.CollectionTasks:
		patch, err := gateway.TaskPatchFromRow(row)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		updated, err := s.gw.UpdateTask(ctx, id, patch)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, updated)
	default:
		patch, err := gateway.SchedulePatchFromRow(row)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		updated, err := s.gw.UpdateSchedule(ctx, id, patch)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, updated)
	}
}

// handleDelete removes a row
func (s *Server) handleDelete(c echo.Context) error {
	name, ok := collectionParam(c)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown collection"})
	}

	var err error
	if name == gateway.CollectionTasks {
		err = s.gw.DeleteTask(c.Request().Context(), c.Param("id"))
	} else {
		err = s.gw.DeleteSchedule(c.Request().Context(), c.Param("id"))
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
