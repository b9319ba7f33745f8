package handler

import (
	"net/http"

	"foodcourt/internal/middleware"
	"foodcourt/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CounterHandler struct {
	uc *usecase.CounterUsecase
}

func NewCounterHandler(uc *usecase.CounterUsecase) *CounterHandler {
	return &CounterHandler{uc: uc}
}

type AssignRequest struct {
	// ADMIN が代理で入れるときだけ使う。KASIR は自分のIDになる。
	CashierID int64 `json:"cashier_id"`
}

func (h *CounterHandler) RegisterRoutes(g *echo.Group) {
	kasir := middleware.RoleGuard(middleware.RoleKasir)

	g.POST("/counters", h.create, middleware.RoleGuard())
	g.GET("/counters", h.list)
	g.GET("/counters/:id", h.detail)
	g.POST("/counters/:id/sessions", h.assign, kasir)
	g.POST("/sessions/:id/release", h.release, kasir)
}

func (h *CounterHandler) create(c echo.Context) error {
	var req usecase.CreateCounterInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.Create(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *CounterHandler) list(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CounterHandler) detail(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CounterHandler) assign(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req AssignRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	cashierID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	if getRoleFromContext(c) == middleware.RoleAdmin && req.CashierID > 0 {
		cashierID = req.CashierID
	}

	out, err := h.uc.Assign(c.Request().Context(), id, cashierID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *CounterHandler) release(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	callerID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	ctx := c.Request().Context()

	// KASIR は自分のセッションだけ閉じられる
	if getRoleFromContext(c) != middleware.RoleAdmin {
		s, err := h.uc.Session(ctx, id)
		if err != nil {
			return writeError(c, err)
		}
		if s.CashierID != callerID {
			return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
		}
	}

	out, err := h.uc.Release(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
