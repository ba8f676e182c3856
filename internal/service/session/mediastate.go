package session

import (
	"context"
	"fmt"
	"time"

	"github.com/watchparty/server/internal/repository"
)

type UpdateMediaStateParams struct {
	SessionId    string
	SenderId     string
	Position     *float64
	IsPlaying    *bool
	Volume       *float64
	PlaybackRate *float64
}

// UpdateMediaState merges the partial update into the stored state and
// stamps the update time. The host is the sole writer; concurrent host
// updates overwrite each other in arrival order with no reconciliation.
func (s service) UpdateMediaState(ctx context.Context, params *UpdateMediaStateParams) (MediaState, error) {
	record, err := s.getSession(ctx, params.SessionId)
	if err != nil {
		return MediaState{}, err
	}

	if record.HostId != params.SenderId {
		return MediaState{}, ErrNotHost
	}

	if !record.IsActive {
		return MediaState{}, ErrSessionEnded
	}

	state := record.MediaState
	if params.Position != nil {
		state.Position = *params.Position
	}
	if params.IsPlaying != nil {
		state.IsPlaying = *params.IsPlaying
	}
	if params.Volume != nil {
		state.Volume = *params.Volume
	}
	if params.PlaybackRate != nil {
		state.PlaybackRate = *params.PlaybackRate
	}

	// the stamp must move forward even for writes within the same millisecond
	updatedAt := time.Now().UnixMilli()
	if updatedAt <= state.UpdatedAt {
		updatedAt = state.UpdatedAt + 1
	}
	state.UpdatedAt = updatedAt

	if err := s.sessionRepo.UpdateMediaState(ctx, params.SessionId, state); err != nil {
		s.logger.InfoContext(ctx, "failed to update media state", "error", err)
		return MediaState{}, fmt.Errorf("failed to update media state: %w", err)
	}

	return s.toMediaState(state), nil
}

func (s service) toMediaState(state repository.MediaState) MediaState {
	return MediaState{
		Position:     state.Position,
		IsPlaying:    state.IsPlaying,
		Volume:       state.Volume,
		PlaybackRate: state.PlaybackRate,
		UpdatedAt:    state.UpdatedAt,
	}
}
