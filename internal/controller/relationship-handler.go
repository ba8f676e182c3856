package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/watchparty/server/internal/service/relationship"
	"github.com/watchparty/server/pkg/rest"
)

type SendRequestInput struct {
	RecipientId string `json:"recipient_id" validate:"required"`
}

func (c controller) handleSendRequest(w http.ResponseWriter, r *http.Request) {
	var input SendRequestInput
	if err := rest.ReadJSON(r, &input); err != nil {
		rest.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.writeValidationError(w, validationErrors)
		return
	}

	created, err := c.relationshipService.SendRequest(r.Context(), &relationship.SendRequestParams{
		RequesterId: c.getUserIdFromCtx(r.Context()),
		RecipientId: input.RecipientId,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteSuccess(w, http.StatusCreated, map[string]any{"request": created})
}

type RespondInput struct {
	Action string `json:"action" validate:"required,oneof=accept reject"`
}

func (c controller) handleRespond(w http.ResponseWriter, r *http.Request) {
	var input RespondInput
	if err := rest.ReadJSON(r, &input); err != nil {
		rest.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.writeValidationError(w, validationErrors)
		return
	}

	resp, err := c.relationshipService.Respond(r.Context(), &relationship.RespondParams{
		RelationshipId: chi.URLParam(r, "relationship-id"),
		SenderId:       c.getUserIdFromCtx(r.Context()),
		Action:         input.Action,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	if input.Action == relationship.ActionReject {
		rest.WriteSuccess(w, http.StatusOK, nil)
		return
	}

	rest.WriteSuccess(w, http.StatusOK, map[string]any{"friend": resp})
}

func (c controller) handleListFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := c.relationshipService.ListFriends(r.Context(), c.getUserIdFromCtx(r.Context()))
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteSuccess(w, http.StatusOK, map[string]any{"friends": friends})
}

func (c controller) handleListPending(w http.ResponseWriter, r *http.Request) {
	pending, err := c.relationshipService.ListPending(r.Context(), c.getUserIdFromCtx(r.Context()))
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteSuccess(w, http.StatusOK, map[string]any{"requests": pending})
}

func (c controller) handleRemoveFriend(w http.ResponseWriter, r *http.Request) {
	if err := c.relationshipService.RemoveFriend(r.Context(), &relationship.RemoveFriendParams{
		SenderId: c.getUserIdFromCtx(r.Context()),
		FriendId: chi.URLParam(r, "user-id"),
	}); err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteSuccess(w, http.StatusOK, nil)
}

func (c controller) handleBlock(w http.ResponseWriter, r *http.Request) {
	blocked, err := c.relationshipService.Block(r.Context(), &relationship.BlockParams{
		SenderId: c.getUserIdFromCtx(r.Context()),
		TargetId: chi.URLParam(r, "user-id"),
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteSuccess(w, http.StatusOK, map[string]any{"relationship": blocked})
}
