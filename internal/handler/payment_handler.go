package handler

import (
	"net/http"

	"foodcourt/internal/middleware"
	"foodcourt/internal/usecase"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	uc *usecase.PaymentUsecase
}

func NewPaymentHandler(uc *usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

type FailPaymentRequest struct {
	Reason string `json:"reason"`
}

func (h *PaymentHandler) RegisterRoutes(g *echo.Group) {
	kasir := middleware.RoleGuard(middleware.RoleKasir)

	g.POST("/payments", h.record, kasir)
	g.POST("/payments/:id/settle", h.settle, kasir)
	g.POST("/payments/:id/fail", h.fail, kasir)
	g.GET("/payments/:id/revenue-share", h.revenueShare, middleware.RoleGuard(middleware.RoleTenant))
	g.GET("/tenants/:id/revenue", h.tenantRevenue, middleware.RoleGuard(middleware.RoleTenant))
}

func (h *PaymentHandler) record(c echo.Context) error {
	var req usecase.RecordPaymentInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	//キャッシャーは自分として記録する
	if id, ok := getUserIDFromContext(c); ok && getRoleFromContext(c) == middleware.RoleKasir {
		req.CashierID = id
	}

	out, err := h.uc.Record(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *PaymentHandler) settle(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	actorID, _ := getUserIDFromContext(c)
	out, err := h.uc.Settle(c.Request().Context(), actorID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PaymentHandler) fail(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req FailPaymentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.Fail(c.Request().Context(), id, req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PaymentHandler) revenueShare(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.uc.RevenueShare(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PaymentHandler) tenantRevenue(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	from, ok := timeQuery(c, "from")
	if !ok {
		return badRequest(c, "invalid from")
	}
	to, ok := timeQuery(c, "to")
	if !ok {
		return badRequest(c, "invalid to")
	}
	out, err := h.uc.TenantRevenueReport(c.Request().Context(), id, from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
