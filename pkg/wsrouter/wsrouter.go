package wsrouter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
)

type message struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc[T any] func(ctx context.Context, conn *websocket.Conn, payload T) error

type Middleware func(next HandlerFunc[any]) HandlerFunc[any]

type WSRouter struct {
	routes      map[string]HandlerFunc[json.RawMessage]
	middlewares []Middleware
}

func New() *WSRouter {
	return &WSRouter{routes: make(map[string]HandlerFunc[json.RawMessage])}
}

func (r *WSRouter) Use(mw Middleware) {
	r.middlewares = append(r.middlewares, mw)
}

func (r *WSRouter) Handle(event string, handler HandlerFunc[json.RawMessage]) {
	r.routes[event] = handler
}

// Typed adapts a handler with a concrete payload type by unmarshalling
// the raw payload before dispatch.
func Typed[T any](handler HandlerFunc[T]) HandlerFunc[json.RawMessage] {
	return func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		var input T
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &input); err != nil {
				return fmt.Errorf("failed to unmarshal payload: %w", err)
			}
		}

		return handler(ctx, conn, input)
	}
}

// ServeConn reads messages from the connection until it fails and routes
// each one to the handler registered for its event name. Handler errors
// are returned to the caller via the onError callback without closing
// the connection.
func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn, onError func(ctx context.Context, conn *websocket.Conn, err error)) error {
	defer conn.Close()

	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		handler, ok := r.routes[msg.Event]
		if !ok {
			onError(ctx, conn, fmt.Errorf("unknown event: %s", msg.Event))
			continue
		}

		msgCtx := context.WithValue(ctx, eventKey, msg.Event)

		wrapped := func(ctx context.Context, conn *websocket.Conn, payload any) error {
			return handler(ctx, conn, payload.(json.RawMessage))
		}
		for i := len(r.middlewares) - 1; i >= 0; i-- {
			wrapped = r.middlewares[i](wrapped)
		}

		if err := wrapped(msgCtx, conn, msg.Payload); err != nil {
			onError(msgCtx, conn, err)
		}
	}
}
