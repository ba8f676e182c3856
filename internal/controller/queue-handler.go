package controller

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/watchparty/server/internal/service/session"
	"github.com/watchparty/server/pkg/rest"
)

func (c controller) handleGetQueue(w http.ResponseWriter, r *http.Request) {
	queue, err := c.sessionService.GetQueue(r.Context(), &session.GetQueueParams{
		SessionId: chi.URLParam(r, "session-id"),
		UserId:    c.getUserIdFromCtx(r.Context()),
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteSuccess(w, http.StatusOK, map[string]any{"queue": queue})
}

type AddVideoInput struct {
	VideoId string `json:"video_id" validate:"required,min=1,max=32"`
}

func (c controller) handleAddVideo(w http.ResponseWriter, r *http.Request) {
	var input AddVideoInput
	if err := rest.ReadJSON(r, &input); err != nil {
		rest.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.writeValidationError(w, validationErrors)
		return
	}

	resp, err := c.sessionService.AddVideo(r.Context(), &session.AddVideoParams{
		SessionId: chi.URLParam(r, "session-id"),
		SenderId:  c.getUserIdFromCtx(r.Context()),
		VideoId:   input.VideoId,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteSuccess(w, http.StatusCreated, map[string]any{
		"added_item": resp.AddedItem,
		"queue":      resp.Queue,
	})
}

func (c controller) handleRemoveVideo(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "index must be an integer")
		return
	}

	queue, err := c.sessionService.RemoveVideo(r.Context(), &session.RemoveVideoParams{
		SessionId: chi.URLParam(r, "session-id"),
		SenderId:  c.getUserIdFromCtx(r.Context()),
		Index:     index,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteSuccess(w, http.StatusOK, map[string]any{"queue": queue})
}

type MoveVideoInput struct {
	From int `json:"from" validate:"gte=0"`
	To   int `json:"to" validate:"gte=0"`
}

func (c controller) handleMoveVideo(w http.ResponseWriter, r *http.Request) {
	var input MoveVideoInput
	if err := rest.ReadJSON(r, &input); err != nil {
		rest.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.writeValidationError(w, validationErrors)
		return
	}

	queue, err := c.sessionService.MoveVideo(r.Context(), &session.MoveVideoParams{
		SessionId: chi.URLParam(r, "session-id"),
		SenderId:  c.getUserIdFromCtx(r.Context()),
		From:      input.From,
		To:        input.To,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteSuccess(w, http.StatusOK, map[string]any{"queue": queue})
}

func (c controller) handleSearchVideos(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		rest.WriteError(w, http.StatusBadRequest, "q is required")
		return
	}

	results, err := c.videoService.Search(r.Context(), query)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteSuccess(w, http.StatusOK, map[string]any{"results": results})
}
