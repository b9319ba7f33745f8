package handler

import (
	"net/http"
	"strconv"

	"foodcourt/internal/middleware"
	"foodcourt/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 設定と取り分プレビュー
type SettingsHandler struct {
	store *usecase.SettingsStore
	split *usecase.SplitUsecase
}

func NewSettingsHandler(store *usecase.SettingsStore, split *usecase.SplitUsecase) *SettingsHandler {
	return &SettingsHandler{store: store, split: split}
}

type UpdateSettingRequest struct {
	Value string `json:"value"`
}

func (h *SettingsHandler) RegisterRoutes(g *echo.Group) {
	admin := middleware.RoleGuard()

	g.GET("/settings", h.list, admin)
	g.PUT("/settings/:key", h.update, admin)
	g.GET("/split/preview", h.preview, middleware.RoleGuard(middleware.RoleTenant, middleware.RoleKasir))
}

func (h *SettingsHandler) list(c echo.Context) error {
	out, err := h.store.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SettingsHandler) update(c echo.Context) error {
	var req UpdateSettingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	actorID, _ := getUserIDFromContext(c)
	out, err := h.store.Update(c.Request().Context(), actorID, c.Param("key"), req.Value)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SettingsHandler) preview(c echo.Context) error {
	gross, err := strconv.ParseInt(c.QueryParam("gross"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid gross")
	}
	out, err := h.split.ComputeSplit(c.Request().Context(), gross)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
