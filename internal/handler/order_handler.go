package handler

import (
	"net/http"
	"strconv"

	"foodcourt/internal/domain/model"
	"foodcourt/internal/middleware"
	"foodcourt/internal/repository"
	"foodcourt/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc  *usecase.OrderUsecase
	qr  *usecase.QRUsecase
	pay *usecase.PaymentUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase, qr *usecase.QRUsecase, pay *usecase.PaymentUsecase) *OrderHandler {
	return &OrderHandler{uc: uc, qr: qr, pay: pay}
}

type TransitionRequest struct {
	Event string `json:"event"`
}

type RedeemRequest struct {
	Token string `json:"token"`
}

func (h *OrderHandler) RegisterRoutes(g *echo.Group) {
	front := middleware.RoleGuard(middleware.RoleTenant, middleware.RoleKasir)
	kitchen := middleware.RoleGuard(middleware.RoleTenant, middleware.RoleKitchen)

	g.POST("/orders", h.submit, front)
	g.GET("/orders", h.list, middleware.RoleGuard(middleware.RoleTenant))
	g.GET("/orders/:id", h.detail)
	g.GET("/orders/by-number/:number", h.byNumber)
	g.POST("/orders/:id/transitions", h.transition, kitchen)
	g.POST("/orders/:id/qr", h.issueQR, front)
	g.GET("/orders/:id/payments", h.payments, front)
	g.POST("/qr/redeem", h.redeemQR, middleware.RoleGuard(middleware.RoleKasir))
}

func (h *OrderHandler) submit(c echo.Context) error {
	var req usecase.SubmitOrderInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.Submit(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	f := repository.OrderListFilter{Status: c.QueryParam("status")}
	if v := c.QueryParam("tenant_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return badRequest(c, "invalid tenant_id")
		}
		f.TenantID = &id
	}
	var ok bool
	if f.From, ok = timeQuery(c, "from"); !ok {
		return badRequest(c, "invalid from")
	}
	if f.To, ok = timeQuery(c, "to"); !ok {
		return badRequest(c, "invalid to")
	}
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid limit")
		}
		f.Limit = l
	}

	out, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
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

func (h *OrderHandler) byNumber(c echo.Context) error {
	out, err := h.uc.GetByNumber(c.Request().Context(), c.Param("number"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) transition(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req TransitionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ev, ok := model.ParseOrderEvent(req.Event)
	if !ok {
		return badRequest(c, "unknown event")
	}
	//支払い系のイベントは支払い台帳からだけ
	if ev == model.EventPaymentSucceeded || ev == model.EventPaymentFailed {
		return badRequest(c, "payment events are applied by settle / fail")
	}

	actorID, _ := getUserIDFromContext(c)
	out, err := h.uc.Transition(c.Request().Context(), actorID, id, ev)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) issueQR(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.qr.Issue(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) redeemQR(c echo.Context) error {
	var req RedeemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.qr.Redeem(c.Request().Context(), req.Token)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) payments(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.pay.ListOrderPayments(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
