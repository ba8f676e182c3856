package relationship

import (
	"context"
	"errors"
	"log/slog"

	"github.com/watchparty/server/internal/repository"
)

var (
	ErrSelfRelationship  = errors.New("cannot create a relationship with yourself")
	ErrAlreadyExists     = errors.New("relationship already exists")
	ErrNotFound          = errors.New("relationship not found")
	ErrNotRecipient      = errors.New("only the recipient may respond")
	ErrInvalidTransition = errors.New("invalid relationship transition")
	ErrBlocked           = errors.New("relationship is blocked")
	ErrUserNotFound      = errors.New("user not found")
)

type iRelationshipRepo interface {
	CreateRelationship(context.Context, *repository.CreateRelationshipParams) error
	GetRelationshipById(context.Context, string) (repository.Relationship, error)
	GetRelationshipBetween(ctx context.Context, userId, otherId string) (repository.Relationship, error)
	UpdateRelationship(context.Context, *repository.UpdateRelationshipParams) error
	DeleteRelationship(context.Context, string) error
	ListRelationships(context.Context, string, repository.RelationshipStatus) ([]repository.Relationship, error)
	ListPendingForRecipient(context.Context, string) ([]repository.Relationship, error)
	GetUserById(context.Context, string) (repository.User, error)
	GetUsersByIds(context.Context, []string) ([]repository.User, error)
}

type service struct {
	relationshipRepo iRelationshipRepo
	logger           *slog.Logger
}

func NewService(relationshipRepo iRelationshipRepo, logger *slog.Logger) *service {
	return &service{
		relationshipRepo: relationshipRepo,
		logger:           logger,
	}
}
