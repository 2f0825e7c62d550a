package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cafe/internal/domain/model"
	"cafe/internal/invalidation"
	"cafe/internal/middleware"
	"cafe/internal/session"
	"cafe/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"usecase error", usecase.NewHTTPError(http.StatusConflict, "table name already exists"), http.StatusConflict, "table name already exists"},
		{"wrapped", fmt.Errorf("outer: %w", usecase.NewHTTPError(http.StatusNotFound, "not found")), http.StatusNotFound, "not found"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			require.NoError(t, writeError(c, tc.err))
			assert.Equal(t, tc.status, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.msg, body.Error)
		})
	}
}

func TestPathID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")

	c.SetParamValues("123")
	_, ok := pathID(c, "id")
	assert.False(t, ok)

	c.SetParamValues("0b9c3a44-5d2f-4f55-9d77-0c5f3c7b8a11")
	id, ok := pathID(c, "id")
	assert.True(t, ok)
	assert.Equal(t, "0b9c3a44-5d2f-4f55-9d77-0c5f3c7b8a11", id)
}

func TestEventsStream_FiltersOtherUsersOrders(t *testing.T) {
	hub := invalidation.NewHub()
	h := NewEventsHandler(hub)
	h.heartbeat = time.Hour

	e := echo.New()
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxUserIDKey, "u1")

	done := make(chan error, 1)
	go func() { done <- h.stream(c) }()

	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	hub.Publish(context.Background(),
		invalidation.MyOrders("u2"),
		invalidation.MyOrders("u1"),
		invalidation.OrderDetails("u2", "o2"),
		invalidation.OrderDetails("u1", "o1"),
		invalidation.KeyProducts,
	)

	// 書き出しを待つ
	time.Sleep(100 * time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 0, hub.Subscribers())

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, strings.HasPrefix(body, "retry: 2000\n\n"))
	assert.Contains(t, body, `"key":"myOrders:u1"`)
	assert.Contains(t, body, `"key":"products"`)
	assert.Contains(t, body, `"key":"orderDetails:u1:o1"`)
	assert.NotContains(t, body, "myOrders:u2")
	assert.NotContains(t, body, "orderDetails:u2")
}

func TestEventsStream_AdminSeesAllOrderKeys(t *testing.T) {
	hub := invalidation.NewHub()
	h := NewEventsHandler(hub)
	h.heartbeat = time.Hour

	store := session.NewStore(func(context.Context, string) model.RoleState { return model.RoleStateAdmin }, time.Second)
	sess := store.Get("admin1")
	state, err := sess.AwaitRole(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.RoleStateAdmin, state)

	e := echo.New()
	ctx, cancel := context.WithCancel(context.Background())
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx), rec)
	c.Set(middleware.CtxUserIDKey, "admin1")
	c.Set(middleware.CtxSessionKey, sess)

	done := make(chan error, 1)
	go func() { done <- h.stream(c) }()
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	hub.Publish(context.Background(), invalidation.OrderDetails("u2", "o2"))

	time.Sleep(100 * time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Contains(t, rec.Body.String(), `"key":"orderDetails:u2:o2"`)
}

func TestEventsStream_RequiresUser(t *testing.T) {
	h := NewEventsHandler(invalidation.NewHub())
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/events", nil), rec)

	require.NoError(t, h.stream(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
