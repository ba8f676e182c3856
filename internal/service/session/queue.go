package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/watchparty/server/internal/repository"
)

type AddVideoParams struct {
	SessionId string
	SenderId  string
	VideoId   string
}

type AddVideoResponse struct {
	AddedItem QueueItem
	Queue     Queue
}

func (s service) AddVideo(ctx context.Context, params *AddVideoParams) (AddVideoResponse, error) {
	record, err := s.getSession(ctx, params.SessionId)
	if err != nil {
		return AddVideoResponse{}, err
	}

	if !s.isParticipantRecord(record, params.SenderId) {
		return AddVideoResponse{}, ErrNotParticipant
	}

	metadata, err := s.videoProvider.Lookup(ctx, params.VideoId)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to look up video", "video_id", params.VideoId, "error", err)
		return AddVideoResponse{}, fmt.Errorf("failed to look up video: %w", err)
	}

	queue, err := s.sessionRepo.GetQueue(ctx, params.SessionId)
	if err != nil {
		if !errors.Is(err, repository.ErrQueueNotFound) {
			return AddVideoResponse{}, fmt.Errorf("failed to get queue: %w", err)
		}

		// queue is created lazily on the first add
		queue, err = s.sessionRepo.CreateQueue(ctx, params.SessionId)
		if err != nil {
			return AddVideoResponse{}, fmt.Errorf("failed to create queue: %w", err)
		}
	}

	item, err := s.sessionRepo.AppendQueueItem(ctx, &repository.AppendQueueItemParams{
		QueueId:   queue.Id,
		Position:  len(queue.Items),
		VideoId:   metadata.VideoId,
		Title:     metadata.Title,
		Duration:  metadata.Duration,
		Thumbnail: metadata.Thumbnail,
		AddedById: params.SenderId,
		AddedAt:   time.Now(),
	})
	if err != nil {
		s.logger.InfoContext(ctx, "failed to append queue item", "error", err)
		return AddVideoResponse{}, fmt.Errorf("failed to append queue item: %w", err)
	}

	queue.Items = append(queue.Items, item)

	return AddVideoResponse{
		AddedItem: s.toQueueItem(item),
		Queue:     s.toQueue(queue),
	}, nil
}

type RemoveVideoParams struct {
	SessionId string
	SenderId  string
	Index     int
}

func (s service) RemoveVideo(ctx context.Context, params *RemoveVideoParams) (Queue, error) {
	record, err := s.getSession(ctx, params.SessionId)
	if err != nil {
		return Queue{}, err
	}

	queue, err := s.getQueue(ctx, params.SessionId)
	if err != nil {
		return Queue{}, err
	}

	if params.Index < 0 || params.Index >= len(queue.Items) {
		return Queue{}, ErrIndexOutOfRange
	}

	removed := queue.Items[params.Index]
	if params.SenderId != record.HostId && params.SenderId != removed.AddedById {
		return Queue{}, ErrPermissionDenied
	}

	if err := s.sessionRepo.RemoveQueueItem(ctx, removed.Id); err != nil {
		s.logger.InfoContext(ctx, "failed to remove queue item", "error", err)
		return Queue{}, fmt.Errorf("failed to remove queue item: %w", err)
	}

	remaining := slices.Delete(slices.Clone(queue.Items), params.Index, params.Index+1)

	currentIndex := queue.CurrentIndex
	if params.Index < currentIndex {
		currentIndex--
	}
	if len(remaining) == 0 {
		currentIndex = 0
	} else if currentIndex >= len(remaining) {
		currentIndex = len(remaining) - 1
	}

	if err := s.sessionRepo.SetQueueOrder(ctx, &repository.SetQueueOrderParams{
		QueueId:        queue.Id,
		OrderedItemIds: itemIds(remaining),
		CurrentIndex:   currentIndex,
	}); err != nil {
		return Queue{}, fmt.Errorf("failed to set queue order: %w", err)
	}

	queue.Items = remaining
	queue.CurrentIndex = currentIndex

	return s.toQueue(queue), nil
}

type MoveVideoParams struct {
	SessionId string
	SenderId  string
	From      int
	To        int
}

func (s service) MoveVideo(ctx context.Context, params *MoveVideoParams) (Queue, error) {
	record, err := s.getSession(ctx, params.SessionId)
	if err != nil {
		return Queue{}, err
	}

	if record.HostId != params.SenderId {
		return Queue{}, ErrNotHost
	}

	queue, err := s.getQueue(ctx, params.SessionId)
	if err != nil {
		return Queue{}, err
	}

	length := len(queue.Items)
	if params.From < 0 || params.From >= length || params.To < 0 || params.To >= length {
		return Queue{}, ErrIndexOutOfRange
	}

	if params.From == params.To {
		return s.toQueue(queue), nil
	}

	items := slices.Clone(queue.Items)
	moved := items[params.From]
	items = slices.Delete(items, params.From, params.From+1)
	items = slices.Insert(items, params.To, moved)

	// the current pointer follows the item it referred to
	currentIndex := queue.CurrentIndex
	switch {
	case params.From == currentIndex:
		currentIndex = params.To
	case params.From < currentIndex && params.To >= currentIndex:
		currentIndex--
	case params.From > currentIndex && params.To <= currentIndex:
		currentIndex++
	}

	if err := s.sessionRepo.SetQueueOrder(ctx, &repository.SetQueueOrderParams{
		QueueId:        queue.Id,
		OrderedItemIds: itemIds(items),
		CurrentIndex:   currentIndex,
	}); err != nil {
		return Queue{}, fmt.Errorf("failed to set queue order: %w", err)
	}

	queue.Items = items
	queue.CurrentIndex = currentIndex

	return s.toQueue(queue), nil
}

type GetQueueParams struct {
	SessionId string
	UserId    string
}

func (s service) GetQueue(ctx context.Context, params *GetQueueParams) (Queue, error) {
	if _, err := s.getSession(ctx, params.SessionId); err != nil {
		return Queue{}, err
	}

	queue, err := s.sessionRepo.GetQueue(ctx, params.SessionId)
	if err != nil {
		if errors.Is(err, repository.ErrQueueNotFound) {
			return Queue{Items: []QueueItem{}}, nil
		}
		return Queue{}, fmt.Errorf("failed to get queue: %w", err)
	}

	return s.toQueue(queue), nil
}

func (s service) getQueue(ctx context.Context, sessionId string) (repository.Queue, error) {
	queue, err := s.sessionRepo.GetQueue(ctx, sessionId)
	if err != nil {
		if errors.Is(err, repository.ErrQueueNotFound) {
			return repository.Queue{}, ErrQueueNotFound
		}
		return repository.Queue{}, fmt.Errorf("failed to get queue: %w", err)
	}

	return queue, nil
}

func itemIds(items []repository.QueueItem) []uint {
	ids := make([]uint, len(items))
	for i, item := range items {
		ids[i] = item.Id
	}

	return ids
}
