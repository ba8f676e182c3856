package gormdb

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/watchparty/server/internal/repository"
)

func (r repo) CreateSession(ctx context.Context, params *repository.CreateSessionParams) error {
	session := repository.Session{
		Id:              params.SessionId,
		Title:           params.Title,
		Description:     params.Description,
		HostId:          params.HostId,
		MediaUrl:        params.MediaUrl,
		MediaType:       params.MediaType,
		MediaState:      params.MediaState,
		IsActive:        true,
		MaxParticipants: params.MaxParticipants,
		IsPrivate:       params.IsPrivate,
		PasswordHash:    params.PasswordHash,
	}

	// host joins its own session in the same transaction
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&session).Error; err != nil {
			return err
		}

		return tx.Create(&repository.Participant{
			SessionId: params.SessionId,
			UserId:    params.HostId,
			JoinedAt:  time.Now(),
		}).Error
	})
}

func (r repo) GetSession(ctx context.Context, sessionId string) (repository.Session, error) {
	var session repository.Session
	err := r.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("participants.joined_at ASC, participants.id ASC")
		}).
		First(&session, "id = ?", sessionId).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.Session{}, repository.ErrSessionNotFound
		}
		return repository.Session{}, err
	}

	return session, nil
}

func (r repo) ListHostedSessions(ctx context.Context, userId string) ([]repository.Session, error) {
	var sessions []repository.Session
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Order("created_at DESC").
		Find(&sessions, "host_id = ?", userId).Error
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r repo) ListParticipatedSessions(ctx context.Context, userId string) ([]repository.Session, error) {
	var sessions []repository.Session
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Joins("JOIN participants ON participants.session_id = sessions.id AND participants.user_id = ?", userId).
		Order("sessions.created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r repo) UpdateSessionFields(ctx context.Context, sessionId string, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&repository.Session{}).
		Where("id = ?", sessionId).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return repository.ErrSessionNotFound
	}

	return nil
}

func (r repo) EndSession(ctx context.Context, sessionId string, endedAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&repository.Session{}).
		Where("id = ? AND is_active = ?", sessionId, true).
		Updates(map[string]any{
			"is_active": false,
			"ended_at":  endedAt,
		})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return repository.ErrSessionNotFound
	}

	return nil
}

// UpdateMediaState writes the whole embedded state. Last write wins.
func (r repo) UpdateMediaState(ctx context.Context, sessionId string, state repository.MediaState) error {
	res := r.db.WithContext(ctx).Model(&repository.Session{}).
		Where("id = ?", sessionId).
		Updates(map[string]any{
			"state_position":      state.Position,
			"state_is_playing":    state.IsPlaying,
			"state_volume":        state.Volume,
			"state_playback_rate": state.PlaybackRate,
			"state_updated_at":    state.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return repository.ErrSessionNotFound
	}

	return nil
}

func (r repo) AddParticipant(ctx context.Context, params *repository.AddParticipantParams) error {
	participant := repository.Participant{
		SessionId: params.SessionId,
		UserId:    params.UserId,
		JoinedAt:  params.JoinedAt,
	}

	if err := r.db.WithContext(ctx).Create(&participant).Error; err != nil {
		r.logger.DebugContext(ctx, "failed to add participant", "error", err)
		return err
	}

	return nil
}

func (r repo) RemoveParticipant(ctx context.Context, params *repository.RemoveParticipantParams) error {
	res := r.db.WithContext(ctx).
		Where("session_id = ? AND user_id = ?", params.SessionId, params.UserId).
		Delete(&repository.Participant{})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return repository.ErrParticipantNotFound
	}

	return nil
}

func (r repo) IsParticipant(ctx context.Context, sessionId, userId string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&repository.Participant{}).
		Where("session_id = ? AND user_id = ?", sessionId, userId).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r repo) CountParticipants(ctx context.Context, sessionId string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&repository.Participant{}).
		Where("session_id = ?", sessionId).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return int(count), nil
}
