package server

import (
	"log/slog"
	"net/http"
	"time"

	"foodcourt/internal/handler"
	"foodcourt/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type Deps struct {
	Logger    *slog.Logger
	JWTSecret string
	// SSE 以外のAPIに掛けるタイムアウト。0なら掛けない。
	RequestTimeout time.Duration

	Orders   *handler.OrderHandler
	Counters *handler.CounterHandler
	Payments *handler.PaymentHandler
	Settings *handler.SettingsHandler
	Events   *handler.EventHandler
	Audits   *handler.AuditHandler
}

// NewRouter はルーティング済みの echo を返す
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID(), middleware.RequestLogger(d.Logger))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	authed := e.Group("/api/v1", middleware.AuthJWT(d.JWTSecret))
	d.Events.RegisterRoutes(authed)

	api := authed.Group("")
	if d.RequestTimeout > 0 {
		api.Use(echomw.ContextTimeout(d.RequestTimeout))
	}
	d.Orders.RegisterRoutes(api)
	d.Counters.RegisterRoutes(api)
	d.Payments.RegisterRoutes(api)
	d.Settings.RegisterRoutes(api)
	d.Audits.RegisterRoutes(api)

	return e
}
