package video

import "github.com/watchparty/server/internal/repository/videocache"

// Metadata is the external video metadata served to callers, either from
// the cache or from a fetcher.
type Metadata struct {
	VideoId    string `json:"video_id"`
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
	Duration   int    `json:"duration"`
	Thumbnail  string `json:"thumbnail"`
}

// aliases keep the cache repository out of consumer interfaces
type (
	Video          = videocache.Video
	SetVideoParams = videocache.SetVideoParams
)
