package repository

import "time"

type RelationshipStatus string

const (
	RelationshipStatusPending  RelationshipStatus = "pending"
	RelationshipStatusAccepted RelationshipStatus = "accepted"
	RelationshipStatusBlocked  RelationshipStatus = "blocked"
)

// User is the persisted account record. OAuth logins attach Identity rows
// instead of a password hash; both may be present for linked accounts.
type User struct {
	Id           string     `gorm:"primaryKey;type:text"`
	Email        string     `gorm:"uniqueIndex;size:320;not null"`
	Name         string     `gorm:"size:120"`
	PasswordHash string     `gorm:"size:255"`
	Identities   []Identity `gorm:"foreignKey:UserId"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string { return "users" }

// Identity links a user to one external OAuth provider account.
type Identity struct {
	Id       uint   `gorm:"primaryKey"`
	UserId   string `gorm:"index;not null"`
	Provider string `gorm:"size:32;not null;uniqueIndex:idx_provider_subject"`
	Subject  string `gorm:"size:128;not null;uniqueIndex:idx_provider_subject"`
	Email    string `gorm:"size:320"`
}

func (Identity) TableName() string { return "identities" }

// MediaState is the shared playback state of a session. UpdatedAt is a unix
// millisecond stamp set on every write; concurrent writers overwrite each
// other in arrival order.
type MediaState struct {
	Position     float64 `json:"position"`
	IsPlaying    bool    `json:"is_playing"`
	Volume       float64 `json:"volume"`
	PlaybackRate float64 `json:"playback_rate"`
	UpdatedAt    int64   `json:"updated_at"`
}

type Session struct {
	Id              string     `gorm:"primaryKey;type:text"`
	Title           string     `gorm:"size:200;not null"`
	Description     string     `gorm:"size:2000"`
	HostId          string     `gorm:"index;not null"`
	MediaUrl        string     `gorm:"size:500"`
	MediaType       string     `gorm:"size:32"`
	MediaState      MediaState `gorm:"embedded;embeddedPrefix:state_"`
	IsActive        bool
	EndedAt         *time.Time
	MaxParticipants int
	IsPrivate       bool
	PasswordHash    string        `gorm:"size:255"`
	Participants    []Participant `gorm:"foreignKey:SessionId"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Session) TableName() string { return "sessions" }

type Participant struct {
	Id        uint   `gorm:"primaryKey"`
	SessionId string `gorm:"not null;uniqueIndex:idx_session_participant"`
	UserId    string `gorm:"not null;uniqueIndex:idx_session_participant;index"`
	JoinedAt  time.Time
}

func (Participant) TableName() string { return "participants" }

// Queue is created lazily on the first add. CurrentIndex stays within
// [0, len) and is 0 while the queue is empty.
type Queue struct {
	Id           uint   `gorm:"primaryKey"`
	SessionId    string `gorm:"uniqueIndex;not null"`
	CurrentIndex int
	Items        []QueueItem `gorm:"foreignKey:QueueId"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Queue) TableName() string { return "queues" }

type QueueItem struct {
	Id        uint   `gorm:"primaryKey"`
	QueueId   uint   `gorm:"index;not null"`
	Position  int    `gorm:"not null"`
	VideoId   string `gorm:"size:32;not null"`
	Title     string `gorm:"size:300"`
	Duration  int
	Thumbnail string `gorm:"size:500"`
	AddedById string `gorm:"size:64"`
	AddedAt   time.Time
}

func (QueueItem) TableName() string { return "queue_items" }

// Relationship is the single record per user pair. The requester/recipient
// orientation is reoriented towards the blocker when a pair is blocked.
type Relationship struct {
	Id          string             `gorm:"primaryKey;type:text"`
	RequesterId string             `gorm:"not null;index"`
	RecipientId string             `gorm:"not null;index"`
	Status      RelationshipStatus `gorm:"type:varchar(20);default:'pending'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Relationship) TableName() string { return "relationships" }
