package video

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/watchparty/server/internal/repository/videocache"
)

// Lookup returns metadata for a video id, serving from the cache when
// possible. External fetches count against the daily quota.
func (s service) Lookup(ctx context.Context, videoId string) (Metadata, error) {
	cached, err := s.cacheRepo.GetVideo(ctx, videoId)
	if err == nil {
		return Metadata{
			VideoId:    cached.VideoId,
			Title:      cached.Title,
			AuthorName: cached.AuthorName,
			Duration:   cached.Duration,
			Thumbnail:  cached.Thumbnail,
		}, nil
	}
	if !errors.Is(err, videocache.ErrCacheMiss) {
		s.logger.InfoContext(ctx, "video cache unavailable", "error", err)
	}

	if err := s.spendQuota(ctx); err != nil {
		return Metadata{}, err
	}

	metadata, err := s.fetcher.FetchVideo(ctx, videoId)
	if err != nil {
		if errors.Is(err, ErrVideoNotFound) {
			return Metadata{}, ErrVideoNotFound
		}
		s.logger.InfoContext(ctx, "failed to fetch video", "video_id", videoId, "error", err)
		return Metadata{}, fmt.Errorf("failed to fetch video: %w", err)
	}

	if err := s.cacheRepo.SetVideo(ctx, &SetVideoParams{
		VideoId:    metadata.VideoId,
		Title:      metadata.Title,
		AuthorName: metadata.AuthorName,
		Duration:   metadata.Duration,
		Thumbnail:  metadata.Thumbnail,
	}); err != nil {
		// a failed cache write only costs the next lookup a fetch
		s.logger.InfoContext(ctx, "failed to cache video", "error", err)
	}

	return metadata, nil
}

func (s service) Search(ctx context.Context, query string) ([]Metadata, error) {
	payload, err := s.cacheRepo.GetSearch(ctx, query)
	if err == nil {
		var results []Metadata
		if err := json.Unmarshal([]byte(payload), &results); err == nil {
			return results, nil
		}
		s.logger.InfoContext(ctx, "failed to decode cached search", "error", err)
	} else if !errors.Is(err, videocache.ErrCacheMiss) {
		s.logger.InfoContext(ctx, "video cache unavailable", "error", err)
	}

	if err := s.spendQuota(ctx); err != nil {
		return nil, err
	}

	results, err := s.fetcher.SearchVideos(ctx, query)
	if err != nil {
		if errors.Is(err, ErrSearchUnavailable) {
			return nil, ErrSearchUnavailable
		}
		s.logger.InfoContext(ctx, "failed to search videos", "error", err)
		return nil, fmt.Errorf("failed to search videos: %w", err)
	}

	if encoded, err := json.Marshal(results); err == nil {
		if err := s.cacheRepo.SetSearch(ctx, query, string(encoded)); err != nil {
			s.logger.InfoContext(ctx, "failed to cache search", "error", err)
		}
	}

	return results, nil
}

func (s service) spendQuota(ctx context.Context) error {
	if s.dailyQuota <= 0 {
		return nil
	}

	count, err := s.cacheRepo.IncrQuota(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("failed to increment quota: %w", err)
	}

	if count > s.dailyQuota {
		return ErrQuotaExceeded
	}

	return nil
}
