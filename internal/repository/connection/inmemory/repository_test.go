package inmemory

import (
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchparty/server/internal/repository/connection"
)

func TestConnectionRegistry(t *testing.T) {
	repo := NewRepo()
	conn1 := &websocket.Conn{}
	conn2 := &websocket.Conn{}

	require.NoError(t, repo.Add(conn1, "user-1"))
	require.NoError(t, repo.Add(conn2, "user-2"))
	assert.ErrorIs(t, repo.Add(conn1, "user-1"), connection.ErrAlreadyExists)

	userId, err := repo.GetUserId(conn1)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userId)

	require.NoError(t, repo.JoinRoom("session-a", conn1))
	require.NoError(t, repo.JoinRoom("session-a", conn2))
	require.NoError(t, repo.JoinRoom("session-b", conn1))

	assert.True(t, repo.IsInRoom("session-a", conn1))
	assert.False(t, repo.IsInRoom("session-b", conn2))
	assert.Len(t, repo.GetRoomConns("session-a"), 2)
	assert.Len(t, repo.GetRoomConns("session-b"), 1)

	require.NoError(t, repo.LeaveRoom("session-a", conn1))
	assert.False(t, repo.IsInRoom("session-a", conn1))
	assert.Len(t, repo.GetRoomConns("session-a"), 1)

	// removing the connection drops it from every room it was still in
	userId, sessionIds, err := repo.Remove(conn1)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userId)
	assert.Equal(t, []string{"session-b"}, sessionIds)
	assert.Empty(t, repo.GetRoomConns("session-b"))

	_, _, err = repo.Remove(conn1)
	assert.ErrorIs(t, err, connection.ErrNotFound)

	_, err = repo.GetUserId(conn1)
	assert.ErrorIs(t, err, connection.ErrNotFound)

	assert.ErrorIs(t, repo.JoinRoom("session-a", conn1), connection.ErrNotFound)
}
