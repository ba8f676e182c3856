package gormdb

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/watchparty/server/internal/repository"
)

func (r repo) CreateRelationship(ctx context.Context, params *repository.CreateRelationshipParams) error {
	relationship := repository.Relationship{
		Id:          params.RelationshipId,
		RequesterId: params.RequesterId,
		RecipientId: params.RecipientId,
		Status:      params.Status,
	}

	if err := r.db.WithContext(ctx).Create(&relationship).Error; err != nil {
		r.logger.DebugContext(ctx, "failed to create relationship", "error", err)
		return err
	}

	return nil
}

func (r repo) GetRelationshipById(ctx context.Context, relationshipId string) (repository.Relationship, error) {
	var relationship repository.Relationship
	err := r.db.WithContext(ctx).First(&relationship, "id = ?", relationshipId).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.Relationship{}, repository.ErrRelationshipNotFound
		}
		return repository.Relationship{}, err
	}

	return relationship, nil
}

// GetRelationshipBetween looks the pair up in both orientations, enforcing
// the one-record-per-unordered-pair invariant at the service boundary.
func (r repo) GetRelationshipBetween(ctx context.Context, userId, otherId string) (repository.Relationship, error) {
	var relationship repository.Relationship
	err := r.db.WithContext(ctx).
		Where("(requester_id = ? AND recipient_id = ?) OR (requester_id = ? AND recipient_id = ?)",
			userId, otherId, otherId, userId).
		First(&relationship).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.Relationship{}, repository.ErrRelationshipNotFound
		}
		return repository.Relationship{}, err
	}

	return relationship, nil
}

func (r repo) UpdateRelationship(ctx context.Context, params *repository.UpdateRelationshipParams) error {
	res := r.db.WithContext(ctx).Model(&repository.Relationship{}).
		Where("id = ?", params.RelationshipId).
		Updates(map[string]any{
			"requester_id": params.RequesterId,
			"recipient_id": params.RecipientId,
			"status":       params.Status,
		})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return repository.ErrRelationshipNotFound
	}

	return nil
}

func (r repo) DeleteRelationship(ctx context.Context, relationshipId string) error {
	res := r.db.WithContext(ctx).Delete(&repository.Relationship{}, "id = ?", relationshipId)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return repository.ErrRelationshipNotFound
	}

	return nil
}

func (r repo) ListRelationships(ctx context.Context, userId string, status repository.RelationshipStatus) ([]repository.Relationship, error) {
	var relationships []repository.Relationship
	err := r.db.WithContext(ctx).
		Where("(requester_id = ? OR recipient_id = ?) AND status = ?", userId, userId, status).
		Order("created_at ASC").
		Find(&relationships).Error
	if err != nil {
		return nil, err
	}

	return relationships, nil
}

func (r repo) ListPendingForRecipient(ctx context.Context, userId string) ([]repository.Relationship, error) {
	var relationships []repository.Relationship
	err := r.db.WithContext(ctx).
		Where("recipient_id = ? AND status = ?", userId, repository.RelationshipStatusPending).
		Order("created_at ASC").
		Find(&relationships).Error
	if err != nil {
		return nil, err
	}

	return relationships, nil
}
