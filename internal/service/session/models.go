package session

import "time"

const (
	FilterHosted       = "hosted"
	FilterParticipated = "participated"
	FilterAll          = "all"
)

type MediaState struct {
	Position     float64 `json:"position"`
	IsPlaying    bool    `json:"is_playing"`
	Volume       float64 `json:"volume"`
	PlaybackRate float64 `json:"playback_rate"`
	UpdatedAt    int64   `json:"updated_at"`
}

type Participant struct {
	Id       string    `json:"id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joined_at"`
}

type Session struct {
	Id              string        `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	HostId          string        `json:"host_id"`
	MediaUrl        string        `json:"media_url"`
	MediaType       string        `json:"media_type"`
	MediaState      MediaState    `json:"media_state"`
	IsActive        bool          `json:"is_active"`
	EndedAt         *time.Time    `json:"ended_at,omitempty"`
	MaxParticipants int           `json:"max_participants,omitempty"`
	IsPrivate       bool          `json:"is_private"`
	Participants    []Participant `json:"participants"`
	CreatedAt       time.Time     `json:"created_at"`
}

type QueueItem struct {
	VideoId   string    `json:"video_id"`
	Title     string    `json:"title"`
	Duration  int       `json:"duration"`
	Thumbnail string    `json:"thumbnail"`
	AddedById string    `json:"added_by_id"`
	AddedAt   time.Time `json:"added_at"`
}

type Queue struct {
	Items        []QueueItem `json:"items"`
	CurrentIndex int         `json:"current_index"`
}
