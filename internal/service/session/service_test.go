package session

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchparty/server/internal/repository"
	"github.com/watchparty/server/internal/repository/gormdb"
	"github.com/watchparty/server/internal/service/video"
)

type fakeVideoProvider struct {
	lookups int
}

func (f *fakeVideoProvider) Lookup(ctx context.Context, videoId string) (video.Metadata, error) {
	f.lookups++
	return video.Metadata{
		VideoId:    videoId,
		Title:      "title of " + videoId,
		AuthorName: "author",
		Duration:   212,
		Thumbnail:  "https://i.ytimg.com/vi/" + videoId + "/mqdefault.jpg",
	}, nil
}

type fixture struct {
	t    *testing.T
	repo interface {
		iSessionRepo
		CreateUser(context.Context, *repository.CreateUserParams) error
	}
}

// newTestService wires the service against a fresh in-memory database.
func newTestService(t *testing.T) (*service, *fixture) {
	t.Helper()

	db, err := gormdb.Open(":memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, gormdb.AutoMigrate(db))

	logger := slog.Default()
	repo := gormdb.NewRepo(db, logger)

	fx := &fixture{t: t}
	fx.repo = repo

	return NewService(repo, &fakeVideoProvider{}, logger), fx
}

func (f *fixture) createUser(name string) string {
	f.t.Helper()

	userId := uuid.NewString()
	err := f.repo.CreateUser(context.Background(), &repository.CreateUserParams{
		UserId: userId,
		Email:  name + "@example.com",
		Name:   name,
	})
	require.NoError(f.t, err)

	return userId
}

func TestCreateSessionHostIsParticipant(t *testing.T) {
	svc, fx := newTestService(t)
	ctx := context.Background()
	hostId := fx.createUser("host")

	created, err := svc.CreateSession(ctx, &CreateSessionParams{
		HostId:    hostId,
		Title:     "movie night",
		MediaUrl:  "https://youtube.com/watch?v=abc",
		MediaType: "youtube",
	})
	require.NoError(t, err)

	assert.Equal(t, hostId, created.HostId)
	assert.True(t, created.IsActive)
	require.Len(t, created.Participants, 1)
	assert.Equal(t, hostId, created.Participants[0].Id)
	assert.Equal(t, 1.0, created.MediaState.Volume)
	assert.Equal(t, 1.0, created.MediaState.PlaybackRate)
	assert.False(t, created.MediaState.IsPlaying)
	assert.NotZero(t, created.MediaState.UpdatedAt)
}

func TestJoinSessionIsIdempotent(t *testing.T) {
	svc, fx := newTestService(t)
	ctx := context.Background()
	hostId := fx.createUser("host")
	guestId := fx.createUser("guest")

	created, err := svc.CreateSession(ctx, &CreateSessionParams{
		HostId:    hostId,
		Title:     "movie night",
		MediaUrl:  "https://youtube.com/watch?v=abc",
		MediaType: "youtube",
	})
	require.NoError(t, err)

	first, err := svc.JoinSession(ctx, &JoinSessionParams{SessionId: created.Id, UserId: guestId})
	require.NoError(t, err)
	assert.Len(t, first.Participants, 2)

	second, err := svc.JoinSession(ctx, &JoinSessionParams{SessionId: created.Id, UserId: guestId})
	require.NoError(t, err)
	assert.Len(t, second.Participants, 2, "joining twice must not change the participant set")
}

func TestLeaveSession(t *testing.T) {
	svc, fx := newTestService(t)
	ctx := context.Background()
	hostId := fx.createUser("host")
	guestId := fx.createUser("guest")

	created, err := svc.CreateSession(ctx, &CreateSessionParams{
		HostId:    hostId,
		Title:     "movie night",
		MediaUrl:  "https://youtube.com/watch?v=abc",
		MediaType: "youtube",
	})
	require.NoError(t, err)

	_, err = svc.JoinSession(ctx, &JoinSessionParams{SessionId: created.Id, UserId: guestId})
	require.NoError(t, err)

	err = svc.LeaveSession(ctx, &LeaveSessionParams{SessionId: created.Id, UserId: hostId})
	assert.ErrorIs(t, err, ErrHostCannotLeave)

	err = svc.LeaveSession(ctx, &LeaveSessionParams{SessionId: created.Id, UserId: guestId})
	require.NoError(t, err)

	// leaving again is a no-op
	err = svc.LeaveSession(ctx, &LeaveSessionParams{SessionId: created.Id, UserId: guestId})
	require.NoError(t, err)

	after, err := svc.GetSession(ctx, &GetSessionParams{SessionId: created.Id, UserId: hostId})
	require.NoError(t, err)
	require.Len(t, after.Participants, 1)
	assert.Equal(t, hostId, after.Participants[0].Id)
}

func TestJoinSessionCapacity(t *testing.T) {
	svc, fx := newTestService(t)
	ctx := context.Background()
	hostId := fx.createUser("host")
	guestId := fx.createUser("guest")
	thirdId := fx.createUser("third")

	created, err := svc.CreateSession(ctx, &CreateSessionParams{
		HostId:          hostId,
		Title:           "movie night",
		MediaUrl:        "https://youtube.com/watch?v=abc",
		MediaType:       "youtube",
		MaxParticipants: 2,
	})
	require.NoError(t, err)

	joined, err := svc.JoinSession(ctx, &JoinSessionParams{SessionId: created.Id, UserId: guestId})
	require.NoError(t, err)
	assert.Len(t, joined.Participants, 2)

	_, err = svc.JoinSession(ctx, &JoinSessionParams{SessionId: created.Id, UserId: thirdId})
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestJoinPrivateSessionPassword(t *testing.T) {
	svc, fx := newTestService(t)
	ctx := context.Background()
	hostId := fx.createUser("host")
	guestId := fx.createUser("guest")

	created, err := svc.CreateSession(ctx, &CreateSessionParams{
		HostId:    hostId,
		Title:     "movie night",
		MediaUrl:  "https://youtube.com/watch?v=abc",
		MediaType: "youtube",
		IsPrivate: true,
		Password:  "secret1",
	})
	require.NoError(t, err)

	_, err = svc.JoinSession(ctx, &JoinSessionParams{SessionId: created.Id, UserId: guestId})
	assert.ErrorIs(t, err, ErrBadPassword)

	_, err = svc.JoinSession(ctx, &JoinSessionParams{SessionId: created.Id, UserId: guestId, Password: "wrong"})
	assert.ErrorIs(t, err, ErrBadPassword)

	joined, err := svc.JoinSession(ctx, &JoinSessionParams{SessionId: created.Id, UserId: guestId, Password: "secret1"})
	require.NoError(t, err)
	assert.Len(t, joined.Participants, 2)
}

func TestEndSession(t *testing.T) {
	svc, fx := newTestService(t)
	ctx := context.Background()
	hostId := fx.createUser("host")
	guestId := fx.createUser("guest")

	created, err := svc.CreateSession(ctx, &CreateSessionParams{
		HostId:    hostId,
		Title:     "movie night",
		MediaUrl:  "https://youtube.com/watch?v=abc",
		MediaType: "youtube",
	})
	require.NoError(t, err)

	_, err = svc.EndSession(ctx, &EndSessionParams{SessionId: created.Id, SenderId: guestId})
	assert.ErrorIs(t, err, ErrNotHost)

	ended, err := svc.EndSession(ctx, &EndSessionParams{SessionId: created.Id, SenderId: hostId})
	require.NoError(t, err)
	assert.False(t, ended.IsActive)
	require.NotNil(t, ended.EndedAt)

	_, err = svc.EndSession(ctx, &EndSessionParams{SessionId: created.Id, SenderId: hostId})
	assert.ErrorIs(t, err, ErrSessionEnded)

	_, err = svc.JoinSession(ctx, &JoinSessionParams{SessionId: created.Id, UserId: guestId})
	assert.ErrorIs(t, err, ErrSessionEnded)
}

func TestUpdateSessionHostOnly(t *testing.T) {
	svc, fx := newTestService(t)
	ctx := context.Background()
	hostId := fx.createUser("host")
	guestId := fx.createUser("guest")

	created, err := svc.CreateSession(ctx, &CreateSessionParams{
		HostId:    hostId,
		Title:     "movie night",
		MediaUrl:  "https://youtube.com/watch?v=abc",
		MediaType: "youtube",
	})
	require.NoError(t, err)

	_, err = svc.JoinSession(ctx, &JoinSessionParams{SessionId: created.Id, UserId: guestId})
	require.NoError(t, err)

	newTitle := "anime night"
	_, err = svc.UpdateSession(ctx, &UpdateSessionParams{
		SessionId: created.Id,
		SenderId:  guestId,
		Title:     &newTitle,
	})
	assert.ErrorIs(t, err, ErrNotHost)

	updated, err := svc.UpdateSession(ctx, &UpdateSessionParams{
		SessionId: created.Id,
		SenderId:  hostId,
		Title:     &newTitle,
	})
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)
	assert.Equal(t, created.MediaUrl, updated.MediaUrl, "untouched fields must survive a partial update")
}

func TestUpdateMediaState(t *testing.T) {
	svc, fx := newTestService(t)
	ctx := context.Background()
	hostId := fx.createUser("host")
	guestId := fx.createUser("guest")

	created, err := svc.CreateSession(ctx, &CreateSessionParams{
		HostId:    hostId,
		Title:     "movie night",
		MediaUrl:  "https://youtube.com/watch?v=abc",
		MediaType: "youtube",
	})
	require.NoError(t, err)

	_, err = svc.JoinSession(ctx, &JoinSessionParams{SessionId: created.Id, UserId: guestId})
	require.NoError(t, err)

	position := 42.5
	isPlaying := true
	_, err = svc.UpdateMediaState(ctx, &UpdateMediaStateParams{
		SessionId: created.Id,
		SenderId:  guestId,
		Position:  &position,
	})
	assert.ErrorIs(t, err, ErrNotHost, "only the host writes media state")

	before := created.MediaState.UpdatedAt
	state, err := svc.UpdateMediaState(ctx, &UpdateMediaStateParams{
		SessionId: created.Id,
		SenderId:  hostId,
		Position:  &position,
		IsPlaying: &isPlaying,
	})
	require.NoError(t, err)
	assert.Equal(t, position, state.Position)
	assert.True(t, state.IsPlaying)
	assert.Equal(t, 1.0, state.Volume, "unset fields keep their stored value")
	assert.Greater(t, state.UpdatedAt, before, "update stamp must be strictly later")

	// a second write in the same millisecond still moves the stamp forward
	second, err := svc.UpdateMediaState(ctx, &UpdateMediaStateParams{
		SessionId: created.Id,
		SenderId:  hostId,
		Position:  &position,
	})
	require.NoError(t, err)
	assert.Greater(t, second.UpdatedAt, state.UpdatedAt)
}

func TestGetPrivateSessionRequiresMembership(t *testing.T) {
	svc, fx := newTestService(t)
	ctx := context.Background()
	hostId := fx.createUser("host")
	strangerId := fx.createUser("stranger")

	created, err := svc.CreateSession(ctx, &CreateSessionParams{
		HostId:    hostId,
		Title:     "movie night",
		MediaUrl:  "https://youtube.com/watch?v=abc",
		MediaType: "youtube",
		IsPrivate: true,
		Password:  "secret1",
	})
	require.NoError(t, err)

	_, err = svc.GetSession(ctx, &GetSessionParams{SessionId: created.Id, UserId: strangerId})
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = svc.GetSession(ctx, &GetSessionParams{SessionId: created.Id, UserId: hostId})
	require.NoError(t, err)
}

func TestListSessions(t *testing.T) {
	svc, fx := newTestService(t)
	ctx := context.Background()
	hostId := fx.createUser("host")
	guestId := fx.createUser("guest")

	hosted, err := svc.CreateSession(ctx, &CreateSessionParams{
		HostId:    hostId,
		Title:     "hosted by host",
		MediaUrl:  "https://youtube.com/watch?v=abc",
		MediaType: "youtube",
	})
	require.NoError(t, err)

	other, err := svc.CreateSession(ctx, &CreateSessionParams{
		HostId:    guestId,
		Title:     "hosted by guest",
		MediaUrl:  "https://youtube.com/watch?v=def",
		MediaType: "youtube",
	})
	require.NoError(t, err)

	_, err = svc.JoinSession(ctx, &JoinSessionParams{SessionId: other.Id, UserId: hostId})
	require.NoError(t, err)

	hostedList, err := svc.ListSessions(ctx, &ListSessionsParams{UserId: hostId, Filter: FilterHosted})
	require.NoError(t, err)
	require.Len(t, hostedList, 1)
	assert.Equal(t, hosted.Id, hostedList[0].Id)

	participatedList, err := svc.ListSessions(ctx, &ListSessionsParams{UserId: hostId, Filter: FilterParticipated})
	require.NoError(t, err)
	require.Len(t, participatedList, 1)
	assert.Equal(t, other.Id, participatedList[0].Id)

	allList, err := svc.ListSessions(ctx, &ListSessionsParams{UserId: hostId, Filter: FilterAll})
	require.NoError(t, err)
	assert.Len(t, allList, 2)
}
