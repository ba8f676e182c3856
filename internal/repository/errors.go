package repository

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrIdentityNotFound     = errors.New("identity not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrQueueNotFound        = errors.New("queue not found")
	ErrQueueItemNotFound    = errors.New("queue item not found")
	ErrRelationshipNotFound = errors.New("relationship not found")
)
