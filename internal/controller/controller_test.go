package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchparty/server/internal/repository/connection/inmemory"
	"github.com/watchparty/server/internal/repository/gormdb"
	videoredis "github.com/watchparty/server/internal/repository/videocache/redis"
	"github.com/watchparty/server/internal/service/auth"
	"github.com/watchparty/server/internal/service/relationship"
	"github.com/watchparty/server/internal/service/session"
	"github.com/watchparty/server/internal/service/video"
)

type fakeFetcher struct{}

func (f fakeFetcher) FetchVideo(ctx context.Context, videoId string) (video.Metadata, error) {
	return video.Metadata{VideoId: videoId, Title: "title of " + videoId, Duration: 60}, nil
}

func (f fakeFetcher) SearchVideos(ctx context.Context, query string) ([]video.Metadata, error) {
	return []video.Metadata{{VideoId: "result1", Title: query}}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := gormdb.Open(":memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, gormdb.AutoMigrate(db))

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	logger := slog.Default()
	dbRepo := gormdb.NewRepo(db, logger)
	cacheRepo := videoredis.NewRepo(rc, time.Hour, logger)
	connRepo := inmemory.NewRepo()

	authService := auth.NewService(dbRepo, &auth.Config{Secret: "test-secret", TokenTTL: time.Hour}, logger)
	videoService := video.NewService(cacheRepo, fakeFetcher{}, 1000, logger)
	sessionService := session.NewService(dbRepo, videoService, logger)
	relationshipService := relationship.NewService(dbRepo, logger)

	ctrl := NewController(
		authService,
		sessionService,
		relationshipService,
		videoService,
		connRepo,
		&Config{FrontendURL: "http://localhost:3000", IsDev: true},
		logger,
	)

	srv := httptest.NewServer(ctrl.Mux())
	t.Cleanup(srv.Close)

	return srv
}

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))

	return resp.StatusCode, env
}

func signUp(t *testing.T, srv *httptest.Server, name string) (string, string) {
	t.Helper()

	status, env := doJSON(t, srv, http.MethodPost, "/auth/signup", "", map[string]any{
		"email":    name + "@example.com",
		"name":     name,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "success", env.Status)

	var data struct {
		User  struct{ Id string }
		Token string
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))

	return data.User.Id, data.Token
}

func TestAuthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	_, token := signUp(t, srv, "alice")

	// protected routes refuse requests without a bearer token
	status, env := doJSON(t, srv, http.MethodGet, "/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "error", env.Status)
	assert.NotEmpty(t, env.Message)

	status, env = doJSON(t, srv, http.MethodGet, "/auth/profile", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", env.Status)

	status, env = doJSON(t, srv, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "error", env.Status)

	status, _ = doJSON(t, srv, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, status)

	// malformed payloads are rejected before the service runs
	status, env = doJSON(t, srv, http.MethodPost, "/auth/signup", "", map[string]any{
		"email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "error", env.Status)
}

func createSession(t *testing.T, srv *httptest.Server, token string) string {
	t.Helper()

	status, env := doJSON(t, srv, http.MethodPost, "/sessions", token, map[string]any{
		"title":      "movie night",
		"media_url":  "https://youtube.com/watch?v=abc",
		"media_type": "youtube",
	})
	require.Equal(t, http.StatusCreated, status)

	var data struct {
		Session struct{ Id string }
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))

	return data.Session.Id
}

func TestSessionEndpoints(t *testing.T) {
	srv := newTestServer(t)

	_, hostToken := signUp(t, srv, "host")
	_, guestToken := signUp(t, srv, "guest")

	sessionId := createSession(t, srv, hostToken)

	status, _ := doJSON(t, srv, http.MethodPost, "/sessions/"+sessionId+"/join", guestToken, nil)
	assert.Equal(t, http.StatusOK, status)

	// only the host may end the session
	status, env := doJSON(t, srv, http.MethodPost, "/sessions/"+sessionId+"/end", guestToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "error", env.Status)

	status, _ = doJSON(t, srv, http.MethodPost, "/sessions/"+sessionId+"/queue", guestToken, map[string]any{
		"video_id": "abc123",
	})
	assert.Equal(t, http.StatusCreated, status)

	status, _ = doJSON(t, srv, http.MethodPost, "/sessions/"+sessionId+"/end", hostToken, nil)
	assert.Equal(t, http.StatusOK, status)
}

func dialWS(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

type wsMessage struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func readEvent(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))

	return msg
}

func TestWSHandshakeRequiresToken(t *testing.T) {
	srv := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err, "the connection must be refused before the upgrade")
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWSMediaStateRelay(t *testing.T) {
	srv := newTestServer(t)

	hostId, hostToken := signUp(t, srv, "host")
	_, guestToken := signUp(t, srv, "guest")

	sessionId := createSession(t, srv, hostToken)
	status, _ := doJSON(t, srv, http.MethodPost, "/sessions/"+sessionId+"/join", guestToken, nil)
	require.Equal(t, http.StatusOK, status)

	guestConn := dialWS(t, srv, guestToken)
	require.NoError(t, guestConn.WriteJSON(map[string]any{
		"event":   "joinSession",
		"payload": map[string]any{"session_id": sessionId},
	}))

	// the guest has to be in the room before the host joins, otherwise it
	// cannot observe the join notification below
	time.Sleep(100 * time.Millisecond)

	hostConn := dialWS(t, srv, hostToken)
	require.NoError(t, hostConn.WriteJSON(map[string]any{
		"event":   "joinSession",
		"payload": map[string]any{"session_id": sessionId},
	}))

	joined := readEvent(t, guestConn)
	require.Equal(t, "userJoined", joined.Event)
	assert.Contains(t, string(joined.Payload), hostId)

	require.NoError(t, hostConn.WriteJSON(map[string]any{
		"event": "mediaStateUpdate",
		"payload": map[string]any{
			"session_id": sessionId,
			"position":   42.5,
			"is_playing": true,
		},
	}))

	changed := readEvent(t, guestConn)
	require.Equal(t, "mediaStateChanged", changed.Event)

	var payload struct {
		MediaState struct {
			Position  float64 `json:"position"`
			IsPlaying bool    `json:"is_playing"`
			UpdatedAt int64   `json:"updated_at"`
		} `json:"media_state"`
	}
	require.NoError(t, json.Unmarshal(changed.Payload, &payload))
	assert.Equal(t, 42.5, payload.MediaState.Position)
	assert.True(t, payload.MediaState.IsPlaying)
	assert.NotZero(t, payload.MediaState.UpdatedAt)

	// chat is relayed to the other room members without being stored
	require.NoError(t, hostConn.WriteJSON(map[string]any{
		"event": "sendMessage",
		"payload": map[string]any{
			"session_id": sessionId,
			"message":    "hello",
		},
	}))

	message := readEvent(t, guestConn)
	require.Equal(t, "newMessage", message.Event)
	assert.Contains(t, string(message.Payload), "hello")
}

func TestWSJoinRequiresMembership(t *testing.T) {
	srv := newTestServer(t)

	_, hostToken := signUp(t, srv, "host")
	_, strangerToken := signUp(t, srv, "stranger")

	sessionId := createSession(t, srv, hostToken)

	strangerConn := dialWS(t, srv, strangerToken)
	require.NoError(t, strangerConn.WriteJSON(map[string]any{
		"event":   "joinSession",
		"payload": map[string]any{"session_id": sessionId},
	}))

	msg := readEvent(t, strangerConn)
	assert.Equal(t, "error", msg.Event)
}

func TestWriteToConnSerializesWrites(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	ctrl := NewController(nil, nil, nil, nil, nil, &Config{}, slog.Default())

	// gorilla panics on concurrent writers, writeToConn must serialize them
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				ctrl.writeToConn(context.Background(), conn, &Output{Event: "ping"})
			}
		}()
	}
	wg.Wait()
}

func TestSearchEndpoint(t *testing.T) {
	srv := newTestServer(t)

	_, token := signUp(t, srv, "alice")

	status, env := doJSON(t, srv, http.MethodGet, "/youtube/search?q=cats", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", env.Status)
	assert.Contains(t, string(env.Data), "result1")

	status, _ = doJSON(t, srv, http.MethodGet, "/youtube/search", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
