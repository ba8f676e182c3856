package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/watchparty/server/internal/repository"
)

func (s service) getSession(ctx context.Context, sessionId string) (repository.Session, error) {
	record, err := s.sessionRepo.GetSession(ctx, sessionId)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return repository.Session{}, ErrSessionNotFound
		}
		s.logger.InfoContext(ctx, "failed to get session", "error", err)
		return repository.Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	return record, nil
}

func (s service) getSessionDTO(ctx context.Context, sessionId string) (Session, error) {
	record, err := s.getSession(ctx, sessionId)
	if err != nil {
		return Session{}, err
	}

	return s.toSession(ctx, record)
}

func (s service) toSession(ctx context.Context, record repository.Session) (Session, error) {
	userIds := make([]string, len(record.Participants))
	for i, participant := range record.Participants {
		userIds[i] = participant.UserId
	}

	users, err := s.sessionRepo.GetUsersByIds(ctx, userIds)
	if err != nil {
		return Session{}, fmt.Errorf("failed to get participant users: %w", err)
	}

	names := make(map[string]string, len(users))
	for _, user := range users {
		names[user.Id] = user.Name
	}

	participants := make([]Participant, len(record.Participants))
	for i, participant := range record.Participants {
		participants[i] = Participant{
			Id:       participant.UserId,
			Name:     names[participant.UserId],
			JoinedAt: participant.JoinedAt,
		}
	}

	return Session{
		Id:              record.Id,
		Title:           record.Title,
		Description:     record.Description,
		HostId:          record.HostId,
		MediaUrl:        record.MediaUrl,
		MediaType:       record.MediaType,
		MediaState:      s.toMediaState(record.MediaState),
		IsActive:        record.IsActive,
		EndedAt:         record.EndedAt,
		MaxParticipants: record.MaxParticipants,
		IsPrivate:       record.IsPrivate,
		Participants:    participants,
		CreatedAt:       record.CreatedAt,
	}, nil
}

func (s service) isParticipantRecord(record repository.Session, userId string) bool {
	for _, participant := range record.Participants {
		if participant.UserId == userId {
			return true
		}
	}

	return false
}

func (s service) toQueueItem(item repository.QueueItem) QueueItem {
	return QueueItem{
		VideoId:   item.VideoId,
		Title:     item.Title,
		Duration:  item.Duration,
		Thumbnail: item.Thumbnail,
		AddedById: item.AddedById,
		AddedAt:   item.AddedAt,
	}
}

func (s service) toQueue(queue repository.Queue) Queue {
	items := make([]QueueItem, len(queue.Items))
	for i, item := range queue.Items {
		items[i] = s.toQueueItem(item)
	}

	return Queue{
		Items:        items,
		CurrentIndex: queue.CurrentIndex,
	}
}
