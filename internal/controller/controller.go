package controller

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/watchparty/server/internal/service/auth"
	"github.com/watchparty/server/internal/service/relationship"
	"github.com/watchparty/server/internal/service/session"
	"github.com/watchparty/server/internal/service/video"
	"github.com/watchparty/server/pkg/randstr"
	"github.com/watchparty/server/pkg/validator"
)

type iAuthService interface {
	SignUp(context.Context, *auth.SignUpParams) (auth.AuthResponse, error)
	LogIn(context.Context, *auth.LogInParams) (auth.AuthResponse, error)
	ChangePassword(context.Context, *auth.ChangePasswordParams) error
	GetProfile(ctx context.Context, userId string) (auth.User, error)
	ParseToken(token string) (string, error)
	AuthCodeURL(provider, state string) (string, error)
	ExchangeCode(context.Context, *auth.ExchangeCodeParams) (auth.AuthResponse, error)
}

type iSessionService interface {
	CreateSession(context.Context, *session.CreateSessionParams) (session.Session, error)
	ListSessions(context.Context, *session.ListSessionsParams) ([]session.Session, error)
	GetSession(context.Context, *session.GetSessionParams) (session.Session, error)
	UpdateSession(context.Context, *session.UpdateSessionParams) (session.Session, error)
	EndSession(context.Context, *session.EndSessionParams) (session.Session, error)
	JoinSession(context.Context, *session.JoinSessionParams) (session.Session, error)
	LeaveSession(context.Context, *session.LeaveSessionParams) error
	IsParticipant(ctx context.Context, sessionId, userId string) (bool, error)
	UpdateMediaState(context.Context, *session.UpdateMediaStateParams) (session.MediaState, error)
	AddVideo(context.Context, *session.AddVideoParams) (session.AddVideoResponse, error)
	RemoveVideo(context.Context, *session.RemoveVideoParams) (session.Queue, error)
	MoveVideo(context.Context, *session.MoveVideoParams) (session.Queue, error)
	GetQueue(context.Context, *session.GetQueueParams) (session.Queue, error)
}

type iRelationshipService interface {
	SendRequest(context.Context, *relationship.SendRequestParams) (relationship.Relationship, error)
	Respond(context.Context, *relationship.RespondParams) (relationship.Relationship, error)
	ListFriends(ctx context.Context, userId string) ([]relationship.Relationship, error)
	ListPending(ctx context.Context, userId string) ([]relationship.Relationship, error)
	RemoveFriend(context.Context, *relationship.RemoveFriendParams) error
	Block(context.Context, *relationship.BlockParams) (relationship.Relationship, error)
}

type iVideoService interface {
	Search(ctx context.Context, query string) ([]video.Metadata, error)
}

type iConnRepo interface {
	Add(conn *websocket.Conn, userId string) error
	Remove(conn *websocket.Conn) (userId string, sessionIds []string, err error)
	JoinRoom(sessionId string, conn *websocket.Conn) error
	LeaveRoom(sessionId string, conn *websocket.Conn) error
	GetUserId(conn *websocket.Conn) (string, error)
	GetRoomConns(sessionId string) []*websocket.Conn
	IsInRoom(sessionId string, conn *websocket.Conn) bool
}

type Config struct {
	FrontendURL string
	IsDev       bool
}

type controller struct {
	authService         iAuthService
	sessionService      iSessionService
	relationshipService iRelationshipService
	videoService        iVideoService
	connRepo            iConnRepo
	writeLocks          *sync.Map
	upgrader            websocket.Upgrader
	validate            *validator.Validator
	searchLimiter       *keyLimiter
	stateGen            *randstr.Generator
	logger              *slog.Logger
	frontendURL         string
	isDev               bool
}

func NewController(
	authService iAuthService,
	sessionService iSessionService,
	relationshipService iRelationshipService,
	videoService iVideoService,
	connRepo iConnRepo,
	cfg *Config,
	logger *slog.Logger,
) *controller {
	return &controller{
		authService:         authService,
		sessionService:      sessionService,
		relationshipService: relationshipService,
		videoService:        videoService,
		connRepo:            connRepo,
		writeLocks:          &sync.Map{},
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate:      validator.NewValidator(),
		searchLimiter: newKeyLimiter(searchRateLimit, searchRateWindow),
		stateGen:      randstr.New([]byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")),
		logger:        logger,
		frontendURL:   cfg.FrontendURL,
		isDev:         cfg.IsDev,
	}
}
