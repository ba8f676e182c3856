package controller

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
)

type Output struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// writeLockFor returns the write mutex for the connection, gorilla supports
// only one concurrent writer per conn.
func (c controller) writeLockFor(conn *websocket.Conn) *sync.Mutex {
	mu, _ := c.writeLocks.LoadOrStore(conn, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// broadcastToRoom writes the output to every connection currently in the
// session room, skipping exclude when set. Write failures are logged and
// skipped; the failing connection cleans itself up when its read loop ends.
func (c controller) broadcastToRoom(ctx context.Context, sessionId string, exclude *websocket.Conn, output *Output) {
	for _, conn := range c.connRepo.GetRoomConns(sessionId) {
		if conn == exclude {
			continue
		}

		mu := c.writeLockFor(conn)
		mu.Lock()
		err := conn.WriteJSON(output)
		mu.Unlock()
		if err != nil {
			c.logger.DebugContext(ctx, "failed to write to conn", "session_id", sessionId, "error", err)
		}
	}
}

func (c controller) writeToConn(ctx context.Context, conn *websocket.Conn, output *Output) {
	mu := c.writeLockFor(conn)
	mu.Lock()
	err := conn.WriteJSON(output)
	mu.Unlock()
	if err != nil {
		c.logger.DebugContext(ctx, "failed to write to conn", "error", err)
	}
}

func (c controller) writeWSError(ctx context.Context, conn *websocket.Conn, message string) {
	c.writeToConn(ctx, conn, &Output{
		Event:   "error",
		Payload: map[string]any{"message": message},
	})
}
