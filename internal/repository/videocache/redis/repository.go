package redis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/watchparty/server/internal/repository/videocache"
)

type repo struct {
	rc     *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRepo(rc *redis.Client, ttl time.Duration, logger *slog.Logger) *repo {
	return &repo{
		rc:     rc,
		ttl:    ttl,
		logger: logger,
	}
}

func (r repo) getVideoKey(videoId string) string {
	return "video:" + videoId
}

func (r repo) getSearchKey(query string) string {
	return "search:" + query
}

func (r repo) getQuotaKey(day string) string {
	return "quota:" + day
}

func (r repo) GetVideo(ctx context.Context, videoId string) (videocache.Video, error) {
	var video videocache.Video
	if err := r.rc.HGetAll(ctx, r.getVideoKey(videoId)).Scan(&video); err != nil {
		r.logger.DebugContext(ctx, "failed to get cached video", "error", err)
		return videocache.Video{}, err
	}

	if video.VideoId == "" {
		return videocache.Video{}, videocache.ErrCacheMiss
	}

	return video, nil
}

func (r repo) SetVideo(ctx context.Context, params *videocache.SetVideoParams) error {
	video := videocache.Video{
		VideoId:    params.VideoId,
		Title:      params.Title,
		AuthorName: params.AuthorName,
		Duration:   params.Duration,
		Thumbnail:  params.Thumbnail,
	}

	key := r.getVideoKey(params.VideoId)
	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, key, video)
	pipe.Expire(ctx, key, r.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.DebugContext(ctx, "failed to cache video", "error", err)
		return err
	}

	return nil
}

func (r repo) GetSearch(ctx context.Context, query string) (string, error) {
	payload, err := r.rc.Get(ctx, r.getSearchKey(query)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", videocache.ErrCacheMiss
		}
		return "", err
	}

	return payload, nil
}

func (r repo) SetSearch(ctx context.Context, query, payload string) error {
	return r.rc.Set(ctx, r.getSearchKey(query), payload, r.ttl).Err()
}

// IncrQuota counts external API calls for the given day. The counter key
// expires at the next UTC midnight so the quota resets on the day boundary.
func (r repo) IncrQuota(ctx context.Context, now time.Time) (int64, error) {
	day := now.UTC().Format("2006-01-02")
	key := r.getQuotaKey(day)

	count, err := r.rc.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}

	if count == 1 {
		midnight := now.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
		if err := r.rc.ExpireAt(ctx, key, midnight).Err(); err != nil {
			r.logger.DebugContext(ctx, "failed to set quota expiry", "error", err)
		}
	}

	return count, nil
}
