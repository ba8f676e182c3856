package inmemory

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/watchparty/server/internal/repository/connection"
)

type client struct {
	userId   string
	sessions map[string]struct{}
}

// repo tracks live websocket connections and the session rooms each one
// has joined. Join/leave mutate the registry under a single lock so
// concurrent connects and disconnects cannot race.
type repo struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]*client
	rooms map[string]map[*websocket.Conn]struct{}
}

func NewRepo() *repo {
	return &repo{
		conns: make(map[*websocket.Conn]*client),
		rooms: make(map[string]map[*websocket.Conn]struct{}),
	}
}

func (r *repo) Add(conn *websocket.Conn, userId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[conn]; ok {
		return connection.ErrAlreadyExists
	}

	r.conns[conn] = &client{
		userId:   userId,
		sessions: make(map[string]struct{}),
	}

	return nil
}

// Remove drops the connection from every room it joined and returns the
// user id and the rooms left so the caller can broadcast departures.
func (r *repo) Remove(conn *websocket.Conn) (string, []string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[conn]
	if !ok {
		return "", nil, connection.ErrNotFound
	}

	sessionIds := make([]string, 0, len(c.sessions))
	for sessionId := range c.sessions {
		r.removeFromRoom(sessionId, conn)
		sessionIds = append(sessionIds, sessionId)
	}

	delete(r.conns, conn)

	return c.userId, sessionIds, nil
}

func (r *repo) JoinRoom(sessionId string, conn *websocket.Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[conn]
	if !ok {
		return connection.ErrNotFound
	}

	room, ok := r.rooms[sessionId]
	if !ok {
		room = make(map[*websocket.Conn]struct{})
		r.rooms[sessionId] = room
	}

	room[conn] = struct{}{}
	c.sessions[sessionId] = struct{}{}

	return nil
}

func (r *repo) LeaveRoom(sessionId string, conn *websocket.Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[conn]
	if !ok {
		return connection.ErrNotFound
	}

	delete(c.sessions, sessionId)
	r.removeFromRoom(sessionId, conn)

	return nil
}

func (r *repo) GetUserId(conn *websocket.Conn) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conns[conn]
	if !ok {
		return "", connection.ErrNotFound
	}

	return c.userId, nil
}

func (r *repo) GetRoomConns(sessionId string) []*websocket.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[sessionId]
	conns := make([]*websocket.Conn, 0, len(room))
	for conn := range room {
		conns = append(conns, conn)
	}

	return conns
}

func (r *repo) IsInRoom(sessionId string, conn *websocket.Conn) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.rooms[sessionId][conn]
	return ok
}

// caller must hold mu
func (r *repo) removeFromRoom(sessionId string, conn *websocket.Conn) {
	room, ok := r.rooms[sessionId]
	if !ok {
		return
	}

	delete(room, conn)
	if len(room) == 0 {
		delete(r.rooms, sessionId)
	}
}
