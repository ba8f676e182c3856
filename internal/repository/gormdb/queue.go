package gormdb

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/watchparty/server/internal/repository"
)

func (r repo) GetQueue(ctx context.Context, sessionId string) (repository.Queue, error) {
	var queue repository.Queue
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("queue_items.position ASC")
		}).
		First(&queue, "session_id = ?", sessionId).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.Queue{}, repository.ErrQueueNotFound
		}
		return repository.Queue{}, err
	}

	return queue, nil
}

func (r repo) CreateQueue(ctx context.Context, sessionId string) (repository.Queue, error) {
	queue := repository.Queue{
		SessionId:    sessionId,
		CurrentIndex: 0,
	}

	if err := r.db.WithContext(ctx).Create(&queue).Error; err != nil {
		r.logger.DebugContext(ctx, "failed to create queue", "error", err)
		return repository.Queue{}, err
	}

	return queue, nil
}

func (r repo) AppendQueueItem(ctx context.Context, params *repository.AppendQueueItemParams) (repository.QueueItem, error) {
	item := repository.QueueItem{
		QueueId:   params.QueueId,
		Position:  params.Position,
		VideoId:   params.VideoId,
		Title:     params.Title,
		Duration:  params.Duration,
		Thumbnail: params.Thumbnail,
		AddedById: params.AddedById,
		AddedAt:   params.AddedAt,
	}

	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		r.logger.DebugContext(ctx, "failed to append queue item", "error", err)
		return repository.QueueItem{}, err
	}

	return item, nil
}

func (r repo) RemoveQueueItem(ctx context.Context, itemId uint) error {
	res := r.db.WithContext(ctx).Delete(&repository.QueueItem{}, itemId)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return repository.ErrQueueItemNotFound
	}

	return nil
}

func (r repo) SetQueueOrder(ctx context.Context, params *repository.SetQueueOrderParams) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for position, itemId := range params.OrderedItemIds {
			err := tx.Model(&repository.QueueItem{}).
				Where("id = ? AND queue_id = ?", itemId, params.QueueId).
				Update("position", position).Error
			if err != nil {
				return err
			}
		}

		return tx.Model(&repository.Queue{}).
			Where("id = ?", params.QueueId).
			Update("current_index", params.CurrentIndex).Error
	})
}
