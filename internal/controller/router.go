package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/watchparty/server/pkg/rest"
)

func (c controller) Mux() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{c.frontendURL},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		rest.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", c.handleSignUp)
		r.Post("/login", c.handleLogIn)
		r.Post("/logout", c.handleLogOut)
		r.Get("/{provider}", c.handleOAuthRedirect)
		r.Get("/{provider}/callback", c.handleOAuthCallback)

		r.Group(func(r chi.Router) {
			r.Use(c.authMw)
			r.Post("/change-password", c.handleChangePassword)
			r.Get("/profile", c.handleGetProfile)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(c.authMw)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", c.handleCreateSession)
			r.Get("/", c.handleListSessions)
			r.Get("/{session-id}", c.handleGetSession)
			r.Patch("/{session-id}", c.handleUpdateSession)
			r.Post("/{session-id}/end", c.handleEndSession)
			r.Post("/{session-id}/join", c.handleJoinSession)
			r.Post("/{session-id}/leave", c.handleLeaveSession)
			r.Patch("/{session-id}/media-state", c.handleUpdateMediaState)

			r.Get("/{session-id}/queue", c.handleGetQueue)
			r.Post("/{session-id}/queue", c.handleAddVideo)
			r.Delete("/{session-id}/queue/{index}", c.handleRemoveVideo)
			r.Post("/{session-id}/queue/reorder", c.handleMoveVideo)
		})

		r.Post("/requests", c.handleSendRequest)
		r.Get("/requests/pending", c.handleListPending)
		r.Post("/requests/{relationship-id}/respond", c.handleRespond)
		r.Get("/friends", c.handleListFriends)
		r.Delete("/friends/{user-id}", c.handleRemoveFriend)
		r.Post("/block/{user-id}", c.handleBlock)

		r.Group(func(r chi.Router) {
			r.Use(c.searchRateLimitMw)
			r.Get("/youtube/search", c.handleSearchVideos)
		})
	})

	// the websocket handshake carries its own token, it cannot use authMw
	r.HandleFunc("/ws", c.handleWS)

	return r
}
