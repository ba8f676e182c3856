package relationship

import "time"

const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

type User struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Relationship is the caller-oriented view of a pair record: User is always
// the other party.
type Relationship struct {
	Id        string    `json:"id"`
	User      User      `json:"user"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
