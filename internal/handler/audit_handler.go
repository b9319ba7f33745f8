package handler

import (
	"net/http"
	"strconv"
	"strings"

	"foodcourt/internal/domain/model"
	"foodcourt/internal/middleware"
	"foodcourt/internal/repository"
	"foodcourt/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AuditHandler struct {
	uc *usecase.AuditUsecase
}

func NewAuditHandler(uc *usecase.AuditUsecase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

func (h *AuditHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/audit-logs", h.list, middleware.RoleGuard())
}

// GET /audit-logs?action=A,B&actor_id=&resource_type=&resource_id=&from=&to=&limit=&offset=
func (h *AuditHandler) list(c echo.Context) error {
	f := repository.AuditLogFilter{
		ResourceType: model.AuditResourceType(c.QueryParam("resource_type")),
		ResourceID:   c.QueryParam("resource_id"),
	}
	for _, a := range strings.Split(c.QueryParam("action"), ",") {
		if a = strings.TrimSpace(a); a != "" {
			f.Actions = append(f.Actions, model.AuditAction(strings.ToUpper(a)))
		}
	}
	if v := c.QueryParam("actor_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id < 0 {
			return badRequest(c, "invalid actor_id")
		}
		f.ActorUserID = &id
	}

	var ok bool
	if f.From, ok = timeQuery(c, "from"); !ok {
		return badRequest(c, "invalid from")
	}
	if f.To, ok = timeQuery(c, "to"); !ok {
		return badRequest(c, "invalid to")
	}
	for name, dst := range map[string]*int{"limit": &f.Limit, "offset": &f.Offset} {
		if v := c.QueryParam(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return badRequest(c, "invalid "+name)
			}
			*dst = n
		}
	}

	out, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
