package subject

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/potlako/follow/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleNavigator, auth.RoleResearchAssistant, auth.RoleAuditor))
	read.GET("/subjects/:subject_identifier/phone-choices", h.PhoneChoices)
	read.GET("/subjects/:subject_identifier/road-map", h.RoadMap)
}

func (h *Handler) PhoneChoices(c echo.Context) error {
	choices, err := h.svc.PhoneChoices(c.Request().Context(), c.Param("subject_identifier"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if choices == nil {
		choices = []Choice{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"choices": choices})
}

// RoadMap answers ?models=cliniciancallenrollment,navigationsummaryandplan.
func (h *Handler) RoadMap(c echo.Context) error {
	raw := c.QueryParam("models")
	if raw == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "models is required")
	}
	roadMap, err := h.svc.BaselineRoadMap(c.Request().Context(), c.Param("subject_identifier"), strings.Split(raw, ","))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, roadMap)
}
