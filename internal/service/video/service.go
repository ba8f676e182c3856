package video

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var (
	ErrVideoNotFound     = errors.New("video not found")
	ErrQuotaExceeded     = errors.New("daily video lookup quota exceeded")
	ErrSearchUnavailable = errors.New("video search unavailable")
)

type iCacheRepo interface {
	GetVideo(ctx context.Context, videoId string) (Video, error)
	SetVideo(ctx context.Context, params *SetVideoParams) error
	GetSearch(ctx context.Context, query string) (string, error)
	SetSearch(ctx context.Context, query, payload string) error
	IncrQuota(ctx context.Context, now time.Time) (int64, error)
}

type iFetcher interface {
	FetchVideo(ctx context.Context, videoId string) (Metadata, error)
	SearchVideos(ctx context.Context, query string) ([]Metadata, error)
}

type service struct {
	cacheRepo  iCacheRepo
	fetcher    iFetcher
	dailyQuota int64
	logger     *slog.Logger
}

func NewService(cacheRepo iCacheRepo, fetcher iFetcher, dailyQuota int64, logger *slog.Logger) *service {
	return &service{
		cacheRepo:  cacheRepo,
		fetcher:    fetcher,
		dailyQuota: dailyQuota,
		logger:     logger,
	}
}
