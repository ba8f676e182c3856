package video

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sosodev/duration"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/watchparty/server/pkg/ytvideodata"
)

const searchMaxResults = 10

// apiFetcher resolves metadata through the YouTube Data API. It is the
// fetcher of choice when an API key is configured.
type apiFetcher struct {
	yt *youtube.Service
}

func NewAPIFetcher(apiKey string) (*apiFetcher, error) {
	yt, err := youtube.NewService(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}

	return &apiFetcher{yt: yt}, nil
}

func (f apiFetcher) FetchVideo(ctx context.Context, videoId string) (Metadata, error) {
	resp, err := f.yt.Videos.List([]string{"snippet", "contentDetails"}).Id(videoId).Context(ctx).Do()
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to list videos: %w", err)
	}

	if len(resp.Items) == 0 {
		return Metadata{}, ErrVideoNotFound
	}

	item := resp.Items[0]

	return Metadata{
		VideoId:    item.Id,
		Title:      item.Snippet.Title,
		AuthorName: item.Snippet.ChannelTitle,
		Duration:   parseDuration(item.ContentDetails.Duration),
		Thumbnail:  pickThumbnail(item.Snippet.Thumbnails),
	}, nil
}

func (f apiFetcher) SearchVideos(ctx context.Context, query string) ([]Metadata, error) {
	resp, err := f.yt.Search.List([]string{"id", "snippet"}).
		Q(query).
		Type("video").
		MaxResults(searchMaxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search videos: %w", err)
	}

	if len(resp.Items) == 0 {
		return []Metadata{}, nil
	}

	ids := make([]string, len(resp.Items))
	for i, item := range resp.Items {
		ids[i] = item.Id.VideoId
	}

	// search results carry no duration, a second call fills them in
	videosResp, err := f.yt.Videos.List([]string{"contentDetails"}).Id(strings.Join(ids, ",")).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}

	durations := make(map[string]int, len(videosResp.Items))
	for _, item := range videosResp.Items {
		durations[item.Id] = parseDuration(item.ContentDetails.Duration)
	}

	results := make([]Metadata, len(resp.Items))
	for i, item := range resp.Items {
		results[i] = Metadata{
			VideoId:    item.Id.VideoId,
			Title:      item.Snippet.Title,
			AuthorName: item.Snippet.ChannelTitle,
			Duration:   durations[item.Id.VideoId],
			Thumbnail:  pickThumbnail(item.Snippet.Thumbnails),
		}
	}

	return results, nil
}

func parseDuration(iso string) int {
	d, err := duration.Parse(iso)
	if err != nil {
		return 0
	}

	return int(d.Seconds) + int(d.Minutes)*60 + int(d.Hours)*3600
}

func pickThumbnail(thumbnails *youtube.ThumbnailDetails) string {
	if thumbnails == nil {
		return ""
	}

	switch {
	case thumbnails.Medium != nil:
		return thumbnails.Medium.Url
	case thumbnails.High != nil:
		return thumbnails.High.Url
	case thumbnails.Default != nil:
		return thumbnails.Default.Url
	}

	return ""
}

// scrapeFetcher resolves metadata from public YouTube pages without an API
// key. Search is not supported this way.
type scrapeFetcher struct{}

func NewScrapeFetcher() *scrapeFetcher {
	return &scrapeFetcher{}
}

func (f scrapeFetcher) FetchVideo(ctx context.Context, videoId string) (Metadata, error) {
	videoData, err := ytvideodata.Get(videoId)
	if err != nil {
		if errors.Is(err, ytvideodata.ErrVideoNotFound) {
			return Metadata{}, ErrVideoNotFound
		}
		return Metadata{}, err
	}

	return Metadata{
		VideoId:    videoData.VideoId,
		Title:      videoData.Title,
		AuthorName: videoData.AuthorName,
		Duration:   videoData.Duration,
		Thumbnail:  videoData.ThumbnailUrl,
	}, nil
}

func (f scrapeFetcher) SearchVideos(ctx context.Context, query string) ([]Metadata, error) {
	return nil, ErrSearchUnavailable
}
