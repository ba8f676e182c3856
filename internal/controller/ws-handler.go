package controller

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/watchparty/server/internal/service/session"
	"github.com/watchparty/server/pkg/rest"
)

// handleWS authenticates the handshake with the same bearer token scheme as
// HTTP and refuses the connection before upgrading when it fails. The read
// loop then serves events until the connection drops.
func (c controller) handleWS(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		rest.WriteError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	userId, err := c.authService.ParseToken(token)
	if err != nil {
		rest.WriteError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.InfoContext(r.Context(), "failed to upgrade connection", "error", err)
		return
	}

	if err := c.connRepo.Add(conn, userId); err != nil {
		c.logger.InfoContext(r.Context(), "failed to register connection", "error", err)
		conn.Close()
		return
	}
	defer c.disconnect(r.Context(), conn)

	c.getWSRouter().ServeConn(r.Context(), conn, func(ctx context.Context, conn *websocket.Conn, err error) {
		c.writeWSError(ctx, conn, err.Error())
	})
}

// disconnect drops the connection from the registry and notifies every room
// it was still in.
func (c controller) disconnect(ctx context.Context, conn *websocket.Conn) {
	defer c.writeLocks.Delete(conn)

	userId, sessionIds, err := c.connRepo.Remove(conn)
	if err != nil {
		return
	}

	for _, sessionId := range sessionIds {
		c.broadcastToRoom(ctx, sessionId, nil, &Output{
			Event: "userLeft",
			Payload: map[string]any{
				"session_id": sessionId,
				"user_id":    userId,
			},
		})
	}
}

type WSJoinSessionInput struct {
	SessionId string `json:"session_id"`
}

func (c controller) handleWSJoinSession(ctx context.Context, conn *websocket.Conn, input WSJoinSessionInput) error {
	userId, err := c.connRepo.GetUserId(conn)
	if err != nil {
		return fmt.Errorf("failed to get user id: %w", err)
	}

	ok, err := c.sessionService.IsParticipant(ctx, input.SessionId, userId)
	if err != nil {
		return fmt.Errorf("failed to check participant: %w", err)
	}
	if !ok {
		return session.ErrNotParticipant
	}

	if err := c.connRepo.JoinRoom(input.SessionId, conn); err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	c.broadcastToRoom(ctx, input.SessionId, conn, &Output{
		Event: "userJoined",
		Payload: map[string]any{
			"session_id": input.SessionId,
			"user_id":    userId,
		},
	})

	return nil
}

type WSLeaveSessionInput struct {
	SessionId string `json:"session_id"`
}

func (c controller) handleWSLeaveSession(ctx context.Context, conn *websocket.Conn, input WSLeaveSessionInput) error {
	userId, err := c.connRepo.GetUserId(conn)
	if err != nil {
		return fmt.Errorf("failed to get user id: %w", err)
	}

	if err := c.connRepo.LeaveRoom(input.SessionId, conn); err != nil {
		return fmt.Errorf("failed to leave room: %w", err)
	}

	c.broadcastToRoom(ctx, input.SessionId, conn, &Output{
		Event: "userLeft",
		Payload: map[string]any{
			"session_id": input.SessionId,
			"user_id":    userId,
		},
	})

	return nil
}

type WSMediaStateUpdateInput struct {
	SessionId    string   `json:"session_id"`
	Position     *float64 `json:"position"`
	IsPlaying    *bool    `json:"is_playing"`
	Volume       *float64 `json:"volume"`
	PlaybackRate *float64 `json:"playback_rate"`
}

func (c controller) handleWSMediaStateUpdate(ctx context.Context, conn *websocket.Conn, input WSMediaStateUpdateInput) error {
	userId, err := c.connRepo.GetUserId(conn)
	if err != nil {
		return fmt.Errorf("failed to get user id: %w", err)
	}

	if !c.connRepo.IsInRoom(input.SessionId, conn) {
		return session.ErrNotParticipant
	}

	state, err := c.sessionService.UpdateMediaState(ctx, &session.UpdateMediaStateParams{
		SessionId:    input.SessionId,
		SenderId:     userId,
		Position:     input.Position,
		IsPlaying:    input.IsPlaying,
		Volume:       input.Volume,
		PlaybackRate: input.PlaybackRate,
	})
	if err != nil {
		return err
	}

	c.broadcastToRoom(ctx, input.SessionId, conn, &Output{
		Event: "mediaStateChanged",
		Payload: map[string]any{
			"session_id":  input.SessionId,
			"media_state": state,
		},
	})

	return nil
}

type WSSeekToInput struct {
	SessionId string  `json:"session_id"`
	Position  float64 `json:"position"`
}

// handleWSSeekTo relays scrubbing feedback without persisting it. Only a
// mediaStateUpdate moves the authoritative state.
func (c controller) handleWSSeekTo(ctx context.Context, conn *websocket.Conn, input WSSeekToInput) error {
	userId, err := c.connRepo.GetUserId(conn)
	if err != nil {
		return fmt.Errorf("failed to get user id: %w", err)
	}

	if !c.connRepo.IsInRoom(input.SessionId, conn) {
		return session.ErrNotParticipant
	}

	c.broadcastToRoom(ctx, input.SessionId, conn, &Output{
		Event: "seeked",
		Payload: map[string]any{
			"session_id": input.SessionId,
			"user_id":    userId,
			"position":   input.Position,
		},
	})

	return nil
}

type WSSendMessageInput struct {
	SessionId string `json:"session_id"`
	Message   string `json:"message"`
}

// chat is relayed only, nothing is stored
func (c controller) handleWSSendMessage(ctx context.Context, conn *websocket.Conn, input WSSendMessageInput) error {
	userId, err := c.connRepo.GetUserId(conn)
	if err != nil {
		return fmt.Errorf("failed to get user id: %w", err)
	}

	if !c.connRepo.IsInRoom(input.SessionId, conn) {
		return session.ErrNotParticipant
	}

	if input.Message == "" {
		return fmt.Errorf("message must not be empty")
	}

	c.broadcastToRoom(ctx, input.SessionId, conn, &Output{
		Event: "newMessage",
		Payload: map[string]any{
			"session_id": input.SessionId,
			"user_id":    userId,
			"message":    input.Message,
			"sent_at":    time.Now().UnixMilli(),
		},
	})

	return nil
}

type WSTypingInput struct {
	SessionId string `json:"session_id"`
}

func (c controller) handleWSStartTyping(ctx context.Context, conn *websocket.Conn, input WSTypingInput) error {
	return c.relayTyping(ctx, conn, input.SessionId, "userTyping")
}

func (c controller) handleWSStopTyping(ctx context.Context, conn *websocket.Conn, input WSTypingInput) error {
	return c.relayTyping(ctx, conn, input.SessionId, "userStoppedTyping")
}

func (c controller) relayTyping(ctx context.Context, conn *websocket.Conn, sessionId, event string) error {
	userId, err := c.connRepo.GetUserId(conn)
	if err != nil {
		return fmt.Errorf("failed to get user id: %w", err)
	}

	if !c.connRepo.IsInRoom(sessionId, conn) {
		return session.ErrNotParticipant
	}

	c.broadcastToRoom(ctx, sessionId, conn, &Output{
		Event: event,
		Payload: map[string]any{
			"session_id": sessionId,
			"user_id":    userId,
		},
	})

	return nil
}
