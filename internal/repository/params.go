package repository

import "time"

type CreateUserParams struct {
	UserId       string
	Email        string
	Name         string
	PasswordHash string
}

type AddIdentityParams struct {
	UserId   string
	Provider string
	Subject  string
	Email    string
}

type CreateSessionParams struct {
	SessionId       string
	Title           string
	Description     string
	HostId          string
	MediaUrl        string
	MediaType       string
	MediaState      MediaState
	MaxParticipants int
	IsPrivate       bool
	PasswordHash    string
}

type AddParticipantParams struct {
	SessionId string
	UserId    string
	JoinedAt  time.Time
}

type RemoveParticipantParams struct {
	SessionId string
	UserId    string
}

type AppendQueueItemParams struct {
	QueueId   uint
	Position  int
	VideoId   string
	Title     string
	Duration  int
	Thumbnail string
	AddedById string
	AddedAt   time.Time
}

// SetQueueOrderParams rewrites item positions to match OrderedItemIds and
// stores the recomputed current index in the same transaction.
type SetQueueOrderParams struct {
	QueueId        uint
	OrderedItemIds []uint
	CurrentIndex   int
}

type CreateRelationshipParams struct {
	RelationshipId string
	RequesterId    string
	RecipientId    string
	Status         RelationshipStatus
}

// UpdateRelationshipParams overwrites the pair orientation together with the
// status so blocking can point the record at the blocker.
type UpdateRelationshipParams struct {
	RelationshipId string
	RequesterId    string
	RecipientId    string
	Status         RelationshipStatus
}
