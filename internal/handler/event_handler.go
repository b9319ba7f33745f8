package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"foodcourt/internal/notify"

	"github.com/labstack/echo/v4"
)

// Server-Sent Events で Hub のトピックを流す。
// 切断中のイベントは失われる。再接続すれば新しい購読になる。
type EventHandler struct {
	hub       *notify.Hub
	heartbeat time.Duration

	done      chan struct{}
	closeOnce sync.Once
}

func NewEventHandler(hub *notify.Hub, heartbeat time.Duration) *EventHandler {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	return &EventHandler{hub: hub, heartbeat: heartbeat, done: make(chan struct{})}
}

// Close は流れているストリームを全部終わらせる。以降の接続もすぐ返る。
func (h *EventHandler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func (h *EventHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/events/:topic", h.stream)
}

func (h *EventHandler) stream(c echo.Context) error {
	topic := c.Param("topic")
	if !notify.ValidTopic(topic) {
		return badRequest(c, "invalid topic")
	}

	sub := h.hub.Subscribe(topic)
	defer sub.Close()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	fmt.Fprintf(res, ": subscribed %s\n\n", topic)
	res.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-h.done:
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": ping\n\n"); err != nil {
				return nil
			}
			res.Flush()
		case ev, ok := <-sub.C:
			if !ok {
				return nil
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
