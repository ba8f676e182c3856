package wsrouter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveRouter(t *testing.T, router *WSRouter, onError func(ctx context.Context, conn *websocket.Conn, err error)) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		router.ServeConn(r.Context(), conn, onError)
	}))
	t.Cleanup(srv.Close)

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

func TestServeConnDispatch(t *testing.T) {
	router := New()

	// the middleware sees the event name on the context before the handler runs
	events := make(chan string, 4)
	router.Use(func(next HandlerFunc[any]) HandlerFunc[any] {
		return func(ctx context.Context, conn *websocket.Conn, payload any) error {
			events <- GetEventFromCtx(ctx)
			return next(ctx, conn, payload)
		}
	})

	type pingPayload struct {
		Value int `json:"value"`
	}
	values := make(chan int, 4)
	router.Handle("ping", Typed(func(ctx context.Context, conn *websocket.Conn, payload pingPayload) error {
		values <- payload.Value
		return nil
	}))

	errs := make(chan error, 4)
	conn := serveRouter(t, router, func(ctx context.Context, conn *websocket.Conn, err error) {
		errs <- err
	})

	require.NoError(t, conn.WriteJSON(map[string]any{
		"event":   "ping",
		"payload": map[string]any{"value": 7},
	}))

	select {
	case v := <-values:
		assert.Equal(t, 7, v)
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not dispatched")
	}
	assert.Equal(t, "ping", <-events)

	require.NoError(t, conn.WriteJSON(map[string]any{"event": "nope"}))

	select {
	case err := <-errs:
		assert.ErrorContains(t, err, "unknown event")
	case <-time.After(5 * time.Second):
		t.Fatal("no error reported for an unknown event")
	}
}

func TestGetEventFromCtx(t *testing.T) {
	assert.Empty(t, GetEventFromCtx(context.Background()))

	ctx := context.WithValue(context.Background(), eventKey, "ping")
	assert.Equal(t, "ping", GetEventFromCtx(ctx))
}
