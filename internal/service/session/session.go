package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/watchparty/server/internal/repository"
)

type CreateSessionParams struct {
	HostId          string
	Title           string
	Description     string
	MediaUrl        string
	MediaType       string
	MaxParticipants int
	IsPrivate       bool
	Password        string
}

func (s service) CreateSession(ctx context.Context, params *CreateSessionParams) (Session, error) {
	var passwordHash string
	if params.IsPrivate && params.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
		if err != nil {
			return Session{}, fmt.Errorf("failed to hash password: %w", err)
		}
		passwordHash = string(hash)
	}

	sessionId := uuid.NewString()
	if err := s.sessionRepo.CreateSession(ctx, &repository.CreateSessionParams{
		SessionId:       sessionId,
		Title:           params.Title,
		Description:     params.Description,
		HostId:          params.HostId,
		MediaUrl:        params.MediaUrl,
		MediaType:       params.MediaType,
		MediaState: repository.MediaState{
			Position:     0,
			IsPlaying:    false,
			Volume:       1,
			PlaybackRate: 1,
			UpdatedAt:    time.Now().UnixMilli(),
		},
		MaxParticipants: params.MaxParticipants,
		IsPrivate:       params.IsPrivate,
		PasswordHash:    passwordHash,
	}); err != nil {
		s.logger.InfoContext(ctx, "failed to create session", "error", err)
		return Session{}, fmt.Errorf("failed to create session: %w", err)
	}

	return s.getSessionDTO(ctx, sessionId)
}

type ListSessionsParams struct {
	UserId string
	Filter string
}

func (s service) ListSessions(ctx context.Context, params *ListSessionsParams) ([]Session, error) {
	var (
		records []repository.Session
		err     error
	)

	switch params.Filter {
	case FilterHosted:
		records, err = s.sessionRepo.ListHostedSessions(ctx, params.UserId)
	case FilterParticipated:
		var participated []repository.Session
		participated, err = s.sessionRepo.ListParticipatedSessions(ctx, params.UserId)
		if err == nil {
			// joined sessions only, hosted ones are covered by "hosted"
			records = make([]repository.Session, 0, len(participated))
			for _, record := range participated {
				if record.HostId != params.UserId {
					records = append(records, record)
				}
			}
		}
	default:
		records, err = s.sessionRepo.ListParticipatedSessions(ctx, params.UserId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]Session, 0, len(records))
	for _, record := range records {
		dto, err := s.toSession(ctx, record)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, dto)
	}

	return sessions, nil
}

type GetSessionParams struct {
	SessionId string
	UserId    string
}

func (s service) GetSession(ctx context.Context, params *GetSessionParams) (Session, error) {
	record, err := s.getSession(ctx, params.SessionId)
	if err != nil {
		return Session{}, err
	}

	if record.IsPrivate && !s.isParticipantRecord(record, params.UserId) {
		return Session{}, ErrNotParticipant
	}

	return s.toSession(ctx, record)
}

type UpdateSessionParams struct {
	SessionId       string
	SenderId        string
	Title           *string
	Description     *string
	MediaUrl        *string
	MediaType       *string
	MaxParticipants *int
	IsPrivate       *bool
	Password        *string
}

func (s service) UpdateSession(ctx context.Context, params *UpdateSessionParams) (Session, error) {
	record, err := s.getSession(ctx, params.SessionId)
	if err != nil {
		return Session{}, err
	}

	if record.HostId != params.SenderId {
		return Session{}, ErrNotHost
	}

	fields := make(map[string]any)
	if params.Title != nil {
		fields["title"] = *params.Title
	}
	if params.Description != nil {
		fields["description"] = *params.Description
	}
	if params.MediaUrl != nil {
		fields["media_url"] = *params.MediaUrl
	}
	if params.MediaType != nil {
		fields["media_type"] = *params.MediaType
	}
	if params.MaxParticipants != nil {
		fields["max_participants"] = *params.MaxParticipants
	}
	if params.IsPrivate != nil {
		fields["is_private"] = *params.IsPrivate
	}
	if params.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*params.Password), bcrypt.DefaultCost)
		if err != nil {
			return Session{}, fmt.Errorf("failed to hash password: %w", err)
		}
		fields["password_hash"] = string(hash)
	}

	if len(fields) > 0 {
		if err := s.sessionRepo.UpdateSessionFields(ctx, params.SessionId, fields); err != nil {
			s.logger.InfoContext(ctx, "failed to update session", "error", err)
			return Session{}, fmt.Errorf("failed to update session: %w", err)
		}
	}

	return s.getSessionDTO(ctx, params.SessionId)
}

type EndSessionParams struct {
	SessionId string
	SenderId  string
}

func (s service) EndSession(ctx context.Context, params *EndSessionParams) (Session, error) {
	record, err := s.getSession(ctx, params.SessionId)
	if err != nil {
		return Session{}, err
	}

	if record.HostId != params.SenderId {
		return Session{}, ErrNotHost
	}

	if !record.IsActive {
		return Session{}, ErrSessionEnded
	}

	if err := s.sessionRepo.EndSession(ctx, params.SessionId, time.Now()); err != nil {
		s.logger.InfoContext(ctx, "failed to end session", "error", err)
		return Session{}, fmt.Errorf("failed to end session: %w", err)
	}

	return s.getSessionDTO(ctx, params.SessionId)
}

type JoinSessionParams struct {
	SessionId string
	UserId    string
	Password  string
}

func (s service) JoinSession(ctx context.Context, params *JoinSessionParams) (Session, error) {
	record, err := s.getSession(ctx, params.SessionId)
	if err != nil {
		return Session{}, err
	}

	if !record.IsActive {
		return Session{}, ErrSessionEnded
	}

	// joining twice is a no-op returning the unchanged session
	if s.isParticipantRecord(record, params.UserId) {
		return s.toSession(ctx, record)
	}

	if record.IsPrivate && record.PasswordHash != "" {
		if bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(params.Password)) != nil {
			return Session{}, ErrBadPassword
		}
	}

	if record.MaxParticipants > 0 {
		count, err := s.sessionRepo.CountParticipants(ctx, params.SessionId)
		if err != nil {
			return Session{}, fmt.Errorf("failed to count participants: %w", err)
		}
		if count >= record.MaxParticipants {
			return Session{}, ErrCapacityExceeded
		}
	}

	if err := s.sessionRepo.AddParticipant(ctx, &repository.AddParticipantParams{
		SessionId: params.SessionId,
		UserId:    params.UserId,
		JoinedAt:  time.Now(),
	}); err != nil {
		s.logger.InfoContext(ctx, "failed to add participant", "error", err)
		return Session{}, fmt.Errorf("failed to add participant: %w", err)
	}

	return s.getSessionDTO(ctx, params.SessionId)
}

type LeaveSessionParams struct {
	SessionId string
	UserId    string
}

func (s service) LeaveSession(ctx context.Context, params *LeaveSessionParams) error {
	record, err := s.getSession(ctx, params.SessionId)
	if err != nil {
		return err
	}

	if record.HostId == params.UserId {
		return ErrHostCannotLeave
	}

	if err := s.sessionRepo.RemoveParticipant(ctx, &repository.RemoveParticipantParams{
		SessionId: params.SessionId,
		UserId:    params.UserId,
	}); err != nil {
		// leaving a session you are not in is a no-op
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return nil
		}
		s.logger.InfoContext(ctx, "failed to remove participant", "error", err)
		return fmt.Errorf("failed to remove participant: %w", err)
	}

	return nil
}

// IsParticipant is used by the websocket layer to verify room joins.
func (s service) IsParticipant(ctx context.Context, sessionId, userId string) (bool, error) {
	return s.sessionRepo.IsParticipant(ctx, sessionId, userId)
}
