package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cafe/internal/domain/model"
	"cafe/internal/invalidation"

	"github.com/labstack/echo/v4"
)

// /events: 変更のあったキャッシュキーをSSEで流す
type EventsHandler struct {
	bus       invalidation.Bus
	heartbeat time.Duration
}

func NewEventsHandler(bus invalidation.Bus) *EventsHandler {
	return &EventsHandler{bus: bus, heartbeat: 15 * time.Second}
}

func (h *EventsHandler) RegisterRoutes(e *echo.Echo, authed ...echo.MiddlewareFunc) {
	e.GET("/events", h.stream, authed...)
}

func (h *EventsHandler) stream(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	sess, _ := getSession(c)

	sub := h.bus.Subscribe()
	defer sub.Close()

	w := c.Response()
	headers := w.Header()
	headers.Set(echo.HeaderContentType, "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if _, err := io.WriteString(w, "retry: 2000\n\n"); err != nil {
		return nil
	}
	w.Flush()

	ctx := c.Request().Context()
	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-sub.Events():
			//他人の注文のキーは流さない（ロールは変わりうるので毎回見る）
			admin := sess != nil && sess.RoleState() == model.RoleStateAdmin
			if !invalidation.Visible(ev.Key, userID, admin) {
				continue
			}
			if err := writeInvalidationEvent(w, ev); err != nil {
				return nil
			}
			w.Flush()
		case <-heartbeat.C:
			if _, err := io.WriteString(w, ": heartbeat\n\n"); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}

func writeInvalidationEvent(w io.Writer, ev invalidation.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: invalidate\ndata: %s\n\n", data)
	return err
}
