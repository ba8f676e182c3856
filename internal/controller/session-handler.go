package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/watchparty/server/internal/service/session"
	"github.com/watchparty/server/pkg/rest"
)

type CreateSessionInput struct {
	Title           string `json:"title" validate:"required,min=1,max=200"`
	Description     string `json:"description" validate:"max=2000"`
	MediaUrl        string `json:"media_url" validate:"required,max=500"`
	MediaType       string `json:"media_type" validate:"required,oneof=youtube video audio"`
	MaxParticipants int    `json:"max_participants" validate:"gte=0"`
	IsPrivate       bool   `json:"is_private"`
	Password        string `json:"password" validate:"max=72"`
}

func (c controller) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var input CreateSessionInput
	if err := rest.ReadJSON(r, &input); err != nil {
		rest.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.writeValidationError(w, validationErrors)
		return
	}

	created, err := c.sessionService.CreateSession(r.Context(), &session.CreateSessionParams{
		HostId:          c.getUserIdFromCtx(r.Context()),
		Title:           input.Title,
		Description:     input.Description,
		MediaUrl:        input.MediaUrl,
		MediaType:       input.MediaType,
		MaxParticipants: input.MaxParticipants,
		IsPrivate:       input.IsPrivate,
		Password:        input.Password,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteSuccess(w, http.StatusCreated, map[string]any{"session": created})
}

func (c controller) handleListSessions(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	switch filter {
	case "", session.FilterHosted, session.FilterParticipated, session.FilterAll:
	default:
		rest.WriteError(w, http.StatusBadRequest, "filter must be one of: hosted, participated, all")
		return
	}

	sessions, err := c.sessionService.ListSessions(r.Context(), &session.ListSessionsParams{
		UserId: c.getUserIdFromCtx(r.Context()),
		Filter: filter,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteSuccess(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (c controller) handleGetSession(w http.ResponseWriter, r *http.Request) {
	found, err := c.sessionService.GetSession(r.Context(), &session.GetSessionParams{
		SessionId: chi.URLParam(r, "session-id"),
		UserId:    c.getUserIdFromCtx(r.Context()),
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteSuccess(w, http.StatusOK, map[string]any{"session": found})
}

type UpdateSessionInput struct {
	Title           *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description     *string `json:"description" validate:"omitempty,max=2000"`
	MediaUrl        *string `json:"media_url" validate:"omitempty,max=500"`
	MediaType       *string `json:"media_type" validate:"omitempty,oneof=youtube video audio"`
	MaxParticipants *int    `json:"max_participants" validate:"omitempty,gte=0"`
	IsPrivate       *bool   `json:"is_private"`
	Password        *string `json:"password" validate:"omitempty,max=72"`
}

func (c controller) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var input UpdateSessionInput
	if err := rest.ReadJSON(r, &input); err != nil {
		rest.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.writeValidationError(w, validationErrors)
		return
	}

	updated, err := c.sessionService.UpdateSession(r.Context(), &session.UpdateSessionParams{
		SessionId:       chi.URLParam(r, "session-id"),
		SenderId:        c.getUserIdFromCtx(r.Context()),
		Title:           input.Title,
		Description:     input.Description,
		MediaUrl:        input.MediaUrl,
		MediaType:       input.MediaType,
		MaxParticipants: input.MaxParticipants,
		IsPrivate:       input.IsPrivate,
		Password:        input.Password,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteSuccess(w, http.StatusOK, map[string]any{"session": updated})
}

func (c controller) handleEndSession(w http.ResponseWriter, r *http.Request) {
	ended, err := c.sessionService.EndSession(r.Context(), &session.EndSessionParams{
		SessionId: chi.URLParam(r, "session-id"),
		SenderId:  c.getUserIdFromCtx(r.Context()),
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteSuccess(w, http.StatusOK, map[string]any{"session": ended})
}

type JoinSessionInput struct {
	Password string `json:"password" validate:"max=72"`
}

func (c controller) handleJoinSession(w http.ResponseWriter, r *http.Request) {
	var input JoinSessionInput
	if r.ContentLength > 0 {
		if err := rest.ReadJSON(r, &input); err != nil {
			rest.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	joined, err := c.sessionService.JoinSession(r.Context(), &session.JoinSessionParams{
		SessionId: chi.URLParam(r, "session-id"),
		UserId:    c.getUserIdFromCtx(r.Context()),
		Password:  input.Password,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteSuccess(w, http.StatusOK, map[string]any{"session": joined})
}

func (c controller) handleLeaveSession(w http.ResponseWriter, r *http.Request) {
	if err := c.sessionService.LeaveSession(r.Context(), &session.LeaveSessionParams{
		SessionId: chi.URLParam(r, "session-id"),
		UserId:    c.getUserIdFromCtx(r.Context()),
	}); err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteSuccess(w, http.StatusOK, nil)
}

type UpdateMediaStateInput struct {
	Position     *float64 `json:"position" validate:"omitempty,gte=0"`
	IsPlaying    *bool    `json:"is_playing"`
	Volume       *float64 `json:"volume" validate:"omitempty,gte=0,lte=1"`
	PlaybackRate *float64 `json:"playback_rate" validate:"omitempty,gt=0"`
}

func (c controller) handleUpdateMediaState(w http.ResponseWriter, r *http.Request) {
	var input UpdateMediaStateInput
	if err := rest.ReadJSON(r, &input); err != nil {
		rest.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.writeValidationError(w, validationErrors)
		return
	}

	sessionId := chi.URLParam(r, "session-id")
	state, err := c.sessionService.UpdateMediaState(r.Context(), &session.UpdateMediaStateParams{
		SessionId:    sessionId,
		SenderId:     c.getUserIdFromCtx(r.Context()),
		Position:     input.Position,
		IsPlaying:    input.IsPlaying,
		Volume:       input.Volume,
		PlaybackRate: input.PlaybackRate,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	c.broadcastToRoom(r.Context(), sessionId, nil, &Output{
		Event:   "mediaStateChanged",
		Payload: map[string]any{"media_state": state},
	})

	rest.WriteSuccess(w, http.StatusOK, map[string]any{"media_state": state})
}
