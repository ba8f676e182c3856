package ytvideodata

import (
	"errors"
	"fmt"
)

type VideoData struct {
	VideoId      string `json:"video_id"`
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailUrl string `json:"thumbnail_url"`
	Duration     int    `json:"duration"`
}

// Get resolves public metadata for a YouTube video id without an API key.
// It tries the oEmbed endpoint first and falls back to scraping the watch
// page for videos with embedding disabled. oEmbed carries no duration, so
// the watch page microdata supplies it on both paths.
func Get(videoId string) (*VideoData, error) {
	videoData, err := getVideoWithEmbed(videoId)
	if err != nil {
		if !errors.Is(err, ErrVideoNotEmbeddable) {
			return nil, fmt.Errorf("failed to get video data with embed: %w", err)
		}

		videoData, err = getFromPage(videoId)
		if err != nil {
			return nil, fmt.Errorf("failed to get video data from page: %w", err)
		}

		return videoData, nil
	}

	videoData.VideoId = videoId
	if d, err := getDurationFromPage(videoId); err == nil {
		videoData.Duration = d
	}

	return videoData, nil
}
