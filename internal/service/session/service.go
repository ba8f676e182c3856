package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/watchparty/server/internal/repository"
	"github.com/watchparty/server/internal/service/video"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionEnded     = errors.New("session has ended")
	ErrNotHost          = errors.New("only the host may do this")
	ErrNotParticipant   = errors.New("not a session participant")
	ErrCapacityExceeded = errors.New("session is full")
	ErrBadPassword      = errors.New("wrong session password")
	ErrHostCannotLeave  = errors.New("host cannot leave the session")
	ErrQueueNotFound    = errors.New("queue not found")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrPermissionDenied = errors.New("permission denied")
)

type iSessionRepo interface {
	// session
	CreateSession(context.Context, *repository.CreateSessionParams) error
	GetSession(context.Context, string) (repository.Session, error)
	ListHostedSessions(context.Context, string) ([]repository.Session, error)
	ListParticipatedSessions(context.Context, string) ([]repository.Session, error)
	UpdateSessionFields(ctx context.Context, sessionId string, fields map[string]any) error
	EndSession(ctx context.Context, sessionId string, endedAt time.Time) error
	UpdateMediaState(ctx context.Context, sessionId string, state repository.MediaState) error
	// participants
	AddParticipant(context.Context, *repository.AddParticipantParams) error
	RemoveParticipant(context.Context, *repository.RemoveParticipantParams) error
	IsParticipant(ctx context.Context, sessionId, userId string) (bool, error)
	CountParticipants(ctx context.Context, sessionId string) (int, error)
	// queue
	GetQueue(context.Context, string) (repository.Queue, error)
	CreateQueue(context.Context, string) (repository.Queue, error)
	AppendQueueItem(context.Context, *repository.AppendQueueItemParams) (repository.QueueItem, error)
	RemoveQueueItem(ctx context.Context, itemId uint) error
	SetQueueOrder(context.Context, *repository.SetQueueOrderParams) error
	// users
	GetUsersByIds(context.Context, []string) ([]repository.User, error)
}

type iVideoProvider interface {
	Lookup(ctx context.Context, videoId string) (video.Metadata, error)
}

type service struct {
	sessionRepo   iSessionRepo
	videoProvider iVideoProvider
	logger        *slog.Logger
}

func NewService(sessionRepo iSessionRepo, videoProvider iVideoProvider, logger *slog.Logger) *service {
	return &service{
		sessionRepo:   sessionRepo,
		videoProvider: videoProvider,
		logger:        logger,
	}
}
