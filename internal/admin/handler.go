package admin

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/potlako/follow/internal/platform/auth"
	"github.com/potlako/follow/internal/platform/query"
	"github.com/potlako/follow/pkg/pagination"
)

type Handler struct {
	site *Site
}

func NewHandler(site *Site) *Handler {
	return &Handler{site: site}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/admin", auth.RequireRole(auth.RoleNavigator, auth.RoleResearchAssistant, auth.RoleAuditor))
	g.GET("", h.ListModels)
	g.GET("/:model", h.ChangeList)
	g.GET("/:model/form", h.Form)
}

func httpError(err error) error {
	if errors.Is(err, ErrUnknownModel) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// ListModels returns every registered admin definition.
func (h *Handler) ListModels(c echo.Context) error {
	reg := h.site.Registry()
	out := make([]*ModelAdmin, 0)
	for _, name := range reg.Models() {
		m, _ := reg.Get(name)
		out = append(out, m)
	}
	return c.JSON(http.StatusOK, out)
}

// Form answers ?subject_identifier=<id>&log=<log id>.
func (h *Handler) Form(c echo.Context) error {
	var logID uuid.UUID
	if raw := c.QueryParam("log"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid log id")
		}
		logID = id
	}
	form, err := h.site.FormDescriptor(c.Request().Context(), c.Param("model"), c.QueryParam("subject_identifier"), logID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, form)
}

func (h *Handler) ChangeList(c echo.Context) error {
	d, err := query.ParseDateHierarchy(c.QueryParams(), "modified")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	q := ChangeListQuery{
		Search:   c.QueryParam("q"),
		Modified: d,
		Page:     pagination.FromContext(c),
	}
	list, err := h.site.ChangeList(c.Request().Context(), c.Param("model"), q)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, list)
}
