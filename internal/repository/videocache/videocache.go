package videocache

import "errors"

var ErrCacheMiss = errors.New("cache miss")

// Video is a cached external-metadata record. Entries expire per key with
// a fixed TTL set by the repository.
type Video struct {
	VideoId    string `redis:"video_id"`
	Title      string `redis:"title"`
	AuthorName string `redis:"author_name"`
	Duration   int    `redis:"duration"`
	Thumbnail  string `redis:"thumbnail"`
}

type SetVideoParams struct {
	VideoId    string
	Title      string
	AuthorName string
	Duration   int
	Thumbnail  string
}
