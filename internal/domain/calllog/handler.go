package calllog

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/potlako/follow/internal/platform/auth"
	"github.com/potlako/follow/internal/platform/query"
	"github.com/potlako/follow/internal/platform/urls"
	"github.com/potlako/follow/internal/platform/validation"
	"github.com/potlako/follow/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleNavigator, auth.RoleResearchAssistant, auth.RoleAuditor))
	read.GET("/calls", h.ListCalls)
	read.GET("/calls/:id", h.GetCall)
	read.GET("/logs", h.ListLogs)
	read.GET("/logs/:id", h.GetLog)
	read.GET("/log-entries", h.ListLogEntries)
	read.GET("/log-entries/:id", h.GetLogEntry)

	write := api.Group("", auth.RequireRole(auth.RoleNavigator, auth.RoleResearchAssistant))
	write.POST("/calls", h.CreateCall)
	write.PUT("/calls/:id", h.UpdateCall)
	write.DELETE("/calls/:id", h.DeleteCall)
	write.POST("/logs", h.CreateLog)
	write.PUT("/logs/:id", h.UpdateLog)
	write.DELETE("/logs/:id", h.DeleteLog)
	write.POST("/log-entries", h.CreateLogEntry)
	write.PUT("/log-entries/:id", h.UpdateLogEntry)
	write.DELETE("/log-entries/:id", h.DeleteLogEntry)
}

// httpError maps service errors onto status codes.
func httpError(err error, notFound string) error {
	if he, ok := validation.HTTPError(err); ok {
		return he
	}
	var rerr *urls.NextURLRedirectError
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	case errors.As(err, &rerr):
		return echo.NewHTTPError(http.StatusInternalServerError, rerr.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func searchParams(c echo.Context) (SearchParams, error) {
	p := SearchParams{
		Query:             c.QueryParam("q"),
		SubjectIdentifier: c.QueryParam("subject_identifier"),
		CallStatus:        c.QueryParam("call_status"),
	}
	for name, dst := range map[string]*uuid.UUID{"call_id": &p.CallID, "log_id": &p.LogID} {
		if raw := c.QueryParam(name); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return p, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
			}
			*dst = id
		}
	}
	d, err := query.ParseDateHierarchy(c.QueryParams(), "modified")
	if err != nil {
		return p, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.Modified = d
	return p, nil
}

// -- Call --

func (h *Handler) CreateCall(c echo.Context) error {
	var call Call
	if err := c.Bind(&call); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateCall(c.Request().Context(), &call); err != nil {
		return httpError(err, "call not found")
	}
	return c.JSON(http.StatusCreated, call)
}

func (h *Handler) GetCall(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	call, err := h.svc.GetCall(c.Request().Context(), id)
	if err != nil {
		return httpError(err, "call not found")
	}
	return c.JSON(http.StatusOK, call)
}

func (h *Handler) ListCalls(c echo.Context) error {
	pg := pagination.FromContext(c)
	params, err := searchParams(c)
	if err != nil {
		return err
	}
	items, total, err := h.svc.SearchCalls(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateCall(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var call Call
	if err := c.Bind(&call); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	call.ID = id
	if err := h.svc.UpdateCall(c.Request().Context(), &call); err != nil {
		return httpError(err, "call not found")
	}
	return c.JSON(http.StatusOK, call)
}

func (h *Handler) DeleteCall(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteCall(c.Request().Context(), id); err != nil {
		return httpError(err, "call not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Log --

func (h *Handler) CreateLog(c echo.Context) error {
	var l Log
	if err := c.Bind(&l); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateLog(c.Request().Context(), &l); err != nil {
		return httpError(err, "log not found")
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *Handler) GetLog(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	l, err := h.svc.GetLog(c.Request().Context(), id)
	if err != nil {
		return httpError(err, "log not found")
	}
	return c.JSON(http.StatusOK, l)
}

func (h *Handler) ListLogs(c echo.Context) error {
	pg := pagination.FromContext(c)
	params, err := searchParams(c)
	if err != nil {
		return err
	}
	items, total, err := h.svc.SearchLogs(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateLog(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var l Log
	if err := c.Bind(&l); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	l.ID = id
	if err := h.svc.UpdateLog(c.Request().Context(), &l); err != nil {
		return httpError(err, "log not found")
	}
	return c.JSON(http.StatusOK, l)
}

func (h *Handler) DeleteLog(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteLog(c.Request().Context(), id); err != nil {
		return httpError(err, "log not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// -- LogEntry --

// CreateLogEntry answers with the saved entry and where the client should
// go next.
func (h *Handler) CreateLogEntry(c echo.Context) error {
	var e LogEntry
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateLogEntry(c.Request().Context(), &e); err != nil {
		return httpError(err, "log entry not found")
	}
	redirect, err := h.svc.RedirectURL(c.QueryParams(), &e)
	if err != nil {
		return httpError(err, "log entry not found")
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"entry":        e,
		"redirect_url": redirect,
	})
}

func (h *Handler) GetLogEntry(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	e, err := h.svc.GetLogEntry(c.Request().Context(), id)
	if err != nil {
		return httpError(err, "log entry not found")
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) ListLogEntries(c echo.Context) error {
	pg := pagination.FromContext(c)
	params, err := searchParams(c)
	if err != nil {
		return err
	}
	items, total, err := h.svc.SearchLogEntries(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateLogEntry(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var e LogEntry
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	e.ID = id
	if err := h.svc.UpdateLogEntry(c.Request().Context(), &e); err != nil {
		return httpError(err, "log entry not found")
	}
	redirect, err := h.svc.RedirectURL(c.QueryParams(), &e)
	if err != nil {
		return httpError(err, "log entry not found")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"entry":        e,
		"redirect_url": redirect,
	})
}

func (h *Handler) DeleteLogEntry(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteLogEntry(c.Request().Context(), id); err != nil {
		return httpError(err, "log entry not found")
	}
	return c.NoContent(http.StatusNoContent)
}
