package worklist

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/potlako/follow/internal/platform/auth"
	"github.com/potlako/follow/internal/platform/query"
	"github.com/potlako/follow/internal/platform/validation"
	"github.com/potlako/follow/pkg/pagination"
)

type Handler struct {
	worklists  *kindHandler
	navigation *kindHandler
	board      *ListboardService
}

func NewHandler(worklists, navigation *Service, board *ListboardService) *Handler {
	return &Handler{
		worklists:  &kindHandler{svc: worklists, board: board},
		navigation: &kindHandler{svc: navigation, board: board},
		board:      board,
	}
}

// RegisterRoutes mounts the work-list API under api (/api/v1).
func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleNavigator, auth.RoleResearchAssistant, auth.RoleAuditor))
	write := api.Group("", auth.RequireRole(auth.RoleNavigator, auth.RoleResearchAssistant))

	write.POST("/navigation-worklists/_sync", h.Sync)
	for _, k := range []*kindHandler{h.worklists, h.navigation} {
		path := k.svc.Kind().Path[len("/api/v1"):]
		read.GET(path, k.List)
		read.GET(path+"/:id", k.Get)
		write.POST(path, k.Create)
		write.PUT(path+"/:id", k.Update)
		write.DELETE(path+"/:id", k.Delete)
	}
}

// RegisterListboard mounts the navigation listboard. It needs a logged-in
// user but no particular role.
func (h *Handler) RegisterListboard(e *echo.Echo) {
	g := e.Group("/listboard", auth.RequireAuthenticated())
	g.GET("/navigation", h.Listboard)
	g.GET("/navigation/:subject_identifier", h.Listboard)
}

func (h *Handler) Sync(c echo.Context) error {
	res, err := h.board.reconciler.Sync(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

// Listboard answers ?q=<term>&f=<filter>&page=<n>.
func (h *Handler) Listboard(c echo.Context) error {
	q := ListboardQuery{
		SubjectIdentifier: c.Param("subject_identifier"),
		Search:            c.QueryParam("q"),
		Filter:            c.QueryParam("f"),
		Page:              pagination.FromContext(c),
		BasePath:          c.Request().URL.Path,
		Query:             c.QueryParams(),
	}
	board, err := h.board.Listboard(c.Request().Context(), q)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, board)
}

func httpError(err error) error {
	if he, ok := validation.HTTPError(err); ok {
		return he
	}
	var ferr *FilterError
	switch {
	case errors.As(err, &ferr):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "work list not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// kindHandler serves CRUD for one work-list table.
type kindHandler struct {
	svc   *Service
	board *ListboardService
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (k *kindHandler) Create(c echo.Context) error {
	var w WorkList
	if err := c.Bind(&w); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := k.svc.Create(c.Request().Context(), &w); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, w)
}

func (k *kindHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	w, err := k.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, w)
}

func (k *kindHandler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	d, err := query.ParseDateHierarchy(c.QueryParams(), "modified")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	params := SearchParams{
		Query:             c.QueryParam("q"),
		SubjectIdentifier: c.QueryParam("subject_identifier"),
		Filter:            c.QueryParam("f"),
		Modified:          d,
	}
	items, total, err := k.svc.Search(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (k *kindHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var w WorkList
	if err := c.Bind(&w); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	w.ID = id
	if err := k.svc.Update(c.Request().Context(), &w); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, w)
}

// Delete answers with the listboard to return to.
func (k *kindHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := k.svc.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	redirect, err := k.board.ListboardURL()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"redirect_url": redirect})
}
