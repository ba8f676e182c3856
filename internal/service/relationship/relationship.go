package relationship

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/watchparty/server/internal/repository"
)

type SendRequestParams struct {
	RequesterId string
	RecipientId string
}

func (s service) SendRequest(ctx context.Context, params *SendRequestParams) (Relationship, error) {
	if params.RequesterId == params.RecipientId {
		return Relationship{}, ErrSelfRelationship
	}

	recipient, err := s.relationshipRepo.GetUserById(ctx, params.RecipientId)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return Relationship{}, ErrUserNotFound
		}
		return Relationship{}, fmt.Errorf("failed to get recipient: %w", err)
	}

	existing, err := s.relationshipRepo.GetRelationshipBetween(ctx, params.RequesterId, params.RecipientId)
	if err == nil {
		if existing.Status == repository.RelationshipStatusBlocked {
			return Relationship{}, ErrBlocked
		}
		return Relationship{}, ErrAlreadyExists
	}
	if !errors.Is(err, repository.ErrRelationshipNotFound) {
		return Relationship{}, fmt.Errorf("failed to get relationship: %w", err)
	}

	relationshipId := uuid.NewString()
	if err := s.relationshipRepo.CreateRelationship(ctx, &repository.CreateRelationshipParams{
		RelationshipId: relationshipId,
		RequesterId:    params.RequesterId,
		RecipientId:    params.RecipientId,
		Status:         repository.RelationshipStatusPending,
	}); err != nil {
		s.logger.InfoContext(ctx, "failed to create relationship", "error", err)
		return Relationship{}, fmt.Errorf("failed to create relationship: %w", err)
	}

	record, err := s.relationshipRepo.GetRelationshipById(ctx, relationshipId)
	if err != nil {
		return Relationship{}, fmt.Errorf("failed to get relationship: %w", err)
	}

	return Relationship{
		Id:        record.Id,
		User:      toUser(recipient),
		Status:    string(record.Status),
		CreatedAt: record.CreatedAt,
	}, nil
}

type RespondParams struct {
	RelationshipId string
	SenderId       string
	Action         string
}

// Respond accepts or rejects a pending request. Rejection deletes the record
// so the requester may ask again later.
func (s service) Respond(ctx context.Context, params *RespondParams) (Relationship, error) {
	record, err := s.getRelationship(ctx, params.RelationshipId)
	if err != nil {
		return Relationship{}, err
	}

	if record.RecipientId != params.SenderId {
		return Relationship{}, ErrNotRecipient
	}

	if record.Status != repository.RelationshipStatusPending {
		return Relationship{}, ErrInvalidTransition
	}

	if params.Action == ActionReject {
		if err := s.relationshipRepo.DeleteRelationship(ctx, record.Id); err != nil {
			s.logger.InfoContext(ctx, "failed to delete relationship", "error", err)
			return Relationship{}, fmt.Errorf("failed to delete relationship: %w", err)
		}
		return Relationship{}, nil
	}

	if err := s.relationshipRepo.UpdateRelationship(ctx, &repository.UpdateRelationshipParams{
		RelationshipId: record.Id,
		RequesterId:    record.RequesterId,
		RecipientId:    record.RecipientId,
		Status:         repository.RelationshipStatusAccepted,
	}); err != nil {
		s.logger.InfoContext(ctx, "failed to update relationship", "error", err)
		return Relationship{}, fmt.Errorf("failed to update relationship: %w", err)
	}

	record.Status = repository.RelationshipStatusAccepted

	return s.toRelationship(ctx, record, params.SenderId)
}

func (s service) ListFriends(ctx context.Context, userId string) ([]Relationship, error) {
	records, err := s.relationshipRepo.ListRelationships(ctx, userId, repository.RelationshipStatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to list relationships: %w", err)
	}

	return s.toRelationships(ctx, records, userId)
}

func (s service) ListPending(ctx context.Context, userId string) ([]Relationship, error) {
	records, err := s.relationshipRepo.ListPendingForRecipient(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}

	return s.toRelationships(ctx, records, userId)
}

type RemoveFriendParams struct {
	SenderId string
	FriendId string
}

func (s service) RemoveFriend(ctx context.Context, params *RemoveFriendParams) error {
	record, err := s.getRelationshipBetween(ctx, params.SenderId, params.FriendId)
	if err != nil {
		return err
	}

	if record.Status != repository.RelationshipStatusAccepted {
		return ErrInvalidTransition
	}

	if err := s.relationshipRepo.DeleteRelationship(ctx, record.Id); err != nil {
		s.logger.InfoContext(ctx, "failed to delete relationship", "error", err)
		return fmt.Errorf("failed to delete relationship: %w", err)
	}

	return nil
}

type BlockParams struct {
	SenderId string
	TargetId string
}

// Block marks the pair blocked with the record oriented towards the blocker.
// An existing pending or accepted relationship transitions in place; blocking
// a stranger creates a fresh record.
func (s service) Block(ctx context.Context, params *BlockParams) (Relationship, error) {
	if params.SenderId == params.TargetId {
		return Relationship{}, ErrSelfRelationship
	}

	if _, err := s.relationshipRepo.GetUserById(ctx, params.TargetId); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return Relationship{}, ErrUserNotFound
		}
		return Relationship{}, fmt.Errorf("failed to get user: %w", err)
	}

	record, err := s.relationshipRepo.GetRelationshipBetween(ctx, params.SenderId, params.TargetId)
	if err != nil {
		if !errors.Is(err, repository.ErrRelationshipNotFound) {
			return Relationship{}, fmt.Errorf("failed to get relationship: %w", err)
		}

		relationshipId := uuid.NewString()
		if err := s.relationshipRepo.CreateRelationship(ctx, &repository.CreateRelationshipParams{
			RelationshipId: relationshipId,
			RequesterId:    params.SenderId,
			RecipientId:    params.TargetId,
			Status:         repository.RelationshipStatusBlocked,
		}); err != nil {
			s.logger.InfoContext(ctx, "failed to create relationship", "error", err)
			return Relationship{}, fmt.Errorf("failed to create relationship: %w", err)
		}

		record, err = s.relationshipRepo.GetRelationshipById(ctx, relationshipId)
		if err != nil {
			return Relationship{}, fmt.Errorf("failed to get relationship: %w", err)
		}

		return s.toRelationship(ctx, record, params.SenderId)
	}

	if record.Status == repository.RelationshipStatusBlocked {
		return Relationship{}, ErrAlreadyExists
	}

	if err := s.relationshipRepo.UpdateRelationship(ctx, &repository.UpdateRelationshipParams{
		RelationshipId: record.Id,
		RequesterId:    params.SenderId,
		RecipientId:    params.TargetId,
		Status:         repository.RelationshipStatusBlocked,
	}); err != nil {
		s.logger.InfoContext(ctx, "failed to update relationship", "error", err)
		return Relationship{}, fmt.Errorf("failed to update relationship: %w", err)
	}

	record.RequesterId = params.SenderId
	record.RecipientId = params.TargetId
	record.Status = repository.RelationshipStatusBlocked

	return s.toRelationship(ctx, record, params.SenderId)
}

func (s service) getRelationship(ctx context.Context, relationshipId string) (repository.Relationship, error) {
	record, err := s.relationshipRepo.GetRelationshipById(ctx, relationshipId)
	if err != nil {
		if errors.Is(err, repository.ErrRelationshipNotFound) {
			return repository.Relationship{}, ErrNotFound
		}
		return repository.Relationship{}, fmt.Errorf("failed to get relationship: %w", err)
	}

	return record, nil
}

func (s service) getRelationshipBetween(ctx context.Context, userId, otherId string) (repository.Relationship, error) {
	record, err := s.relationshipRepo.GetRelationshipBetween(ctx, userId, otherId)
	if err != nil {
		if errors.Is(err, repository.ErrRelationshipNotFound) {
			return repository.Relationship{}, ErrNotFound
		}
		return repository.Relationship{}, fmt.Errorf("failed to get relationship: %w", err)
	}

	return record, nil
}

func (s service) toRelationship(ctx context.Context, record repository.Relationship, viewerId string) (Relationship, error) {
	otherId := record.RequesterId
	if otherId == viewerId {
		otherId = record.RecipientId
	}

	other, err := s.relationshipRepo.GetUserById(ctx, otherId)
	if err != nil {
		return Relationship{}, fmt.Errorf("failed to get user: %w", err)
	}

	return Relationship{
		Id:        record.Id,
		User:      toUser(other),
		Status:    string(record.Status),
		CreatedAt: record.CreatedAt,
	}, nil
}

func (s service) toRelationships(ctx context.Context, records []repository.Relationship, viewerId string) ([]Relationship, error) {
	otherIds := make([]string, len(records))
	for i, record := range records {
		otherIds[i] = record.RequesterId
		if otherIds[i] == viewerId {
			otherIds[i] = record.RecipientId
		}
	}

	users, err := s.relationshipRepo.GetUsersByIds(ctx, otherIds)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	byId := make(map[string]repository.User, len(users))
	for _, user := range users {
		byId[user.Id] = user
	}

	relationships := make([]Relationship, len(records))
	for i, record := range records {
		relationships[i] = Relationship{
			Id:        record.Id,
			User:      toUser(byId[otherIds[i]]),
			Status:    string(record.Status),
			CreatedAt: record.CreatedAt,
		}
	}

	return relationships, nil
}

func toUser(user repository.User) User {
	return User{
		Id:    user.Id,
		Name:  user.Name,
		Email: user.Email,
	}
}
