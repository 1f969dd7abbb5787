package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ecocollect/identity-service/internal/core/ports"
)

// UserHandler serves the role-gated resources. The routes are mounted
// behind Authenticate + RBAC, so by the time a handler runs the bearer is
// known to hold the required role.
type UserHandler struct {
	svc ports.IdentityService
}

func NewUserHandler(svc ports.IdentityService) *UserHandler {
	return &UserHandler{svc: svc}
}

// CivilianHome is the civilian-only landing resource.
//
// @Summary      Civilian area
// @Tags         user
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  errorResponse
// @Router       /civilian [get]
func (h *UserHandler) CivilianHome(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "welcome, civilian"})
}

// CorporateHome is the corporate-only landing resource.
//
// @Summary      Corporate area
// @Tags         user
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  errorResponse
// @Router       /corporate [get]
func (h *UserHandler) CorporateHome(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "welcome, corporate"})
}

// AwardPoints credits reward points to the authenticated civilian.
//
// @Summary      Award reward points
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      awardPointsRequest  true  "Points to credit"
// @Success      200   {object}  pointsResponse
// @Failure      422   {object}  errorResponse
// @Router       /civilian/points [post]
func (h *UserHandler) AwardPoints(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var req awardPointsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	total, err := h.svc.AwardPoints(c.Request().Context(), userID, req.Points)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pointsResponse{Points: total})
}
