package video

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	videoredis "github.com/watchparty/server/internal/repository/videocache/redis"
)

type fakeFetcher struct {
	fetches  int
	searches int
}

func (f *fakeFetcher) FetchVideo(ctx context.Context, videoId string) (Metadata, error) {
	f.fetches++
	if videoId == "missing" {
		return Metadata{}, ErrVideoNotFound
	}

	return Metadata{
		VideoId:    videoId,
		Title:      "title of " + videoId,
		AuthorName: "author",
		Duration:   131,
		Thumbnail:  "thumb",
	}, nil
}

func (f *fakeFetcher) SearchVideos(ctx context.Context, query string) ([]Metadata, error) {
	f.searches++
	return []Metadata{
		{VideoId: "result1", Title: query + " one", Duration: 60},
		{VideoId: "result2", Title: query + " two", Duration: 120},
	}, nil
}

func newTestService(t *testing.T, dailyQuota int64) (*service, *fakeFetcher) {
	t.Helper()

	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})

	logger := slog.Default()
	fetcher := &fakeFetcher{}
	cacheRepo := videoredis.NewRepo(rc, time.Hour, logger)

	return NewService(cacheRepo, fetcher, dailyQuota, logger), fetcher
}

func TestLookupServesFromCache(t *testing.T) {
	svc, fetcher := newTestService(t, 100)
	ctx := context.Background()

	first, err := svc.Lookup(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "title of abc123", first.Title)
	assert.Equal(t, 131, first.Duration)
	assert.Equal(t, 1, fetcher.fetches)

	second, err := svc.Lookup(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetcher.fetches, "the second lookup must hit the cache")
}

func TestLookupNotFound(t *testing.T) {
	svc, _ := newTestService(t, 100)

	_, err := svc.Lookup(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrVideoNotFound)
}

func TestLookupQuota(t *testing.T) {
	svc, fetcher := newTestService(t, 2)
	ctx := context.Background()

	_, err := svc.Lookup(ctx, "video1")
	require.NoError(t, err)
	_, err = svc.Lookup(ctx, "video2")
	require.NoError(t, err)

	_, err = svc.Lookup(ctx, "video3")
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, 2, fetcher.fetches, "a lookup over quota must not reach the fetcher")

	// cached entries keep serving after the quota runs out
	cached, err := svc.Lookup(ctx, "video1")
	require.NoError(t, err)
	assert.Equal(t, "title of video1", cached.Title)
}

func TestSearchServesFromCache(t *testing.T) {
	svc, fetcher := newTestService(t, 100)
	ctx := context.Background()

	first, err := svc.Search(ctx, "cats")
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "cats one", first[0].Title)
	assert.Equal(t, 1, fetcher.searches)

	second, err := svc.Search(ctx, "cats")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetcher.searches, "the second search must hit the cache")

	_, err = svc.Search(ctx, "dogs")
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.searches)
}

func TestSearchUnavailableWithoutAPIKey(t *testing.T) {
	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})
	svc := NewService(videoredis.NewRepo(rc, time.Hour, slog.Default()), NewScrapeFetcher(), 100, slog.Default())

	_, err := svc.Search(context.Background(), "cats")
	assert.ErrorIs(t, err, ErrSearchUnavailable)
}
