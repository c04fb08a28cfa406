package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/seohyun-lee/bookduck-backend/internal/errors"
	"github.com/seohyun-lee/bookduck-backend/internal/events"
)

func TestRegisterAndLogin(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	res, err := env.auth.Register(ctx, RegisterRequest{Email: " Reader@Example.com ", Password: "long enough", Nickname: "reader"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "Reader@Example.com", res.User.Email)
	assert.NotEmpty(t, res.User.PasswordHash)

	l := env.ledger(t, res.User.ID)
	assert.Equal(t, 1, l.Level)
	assert.Equal(t, int64(0), l.CumulativeExperience)

	_, err = env.auth.Register(ctx, RegisterRequest{Email: "reader@example.com", Password: "long enough", Nickname: "again"})
	requireCode(t, err, domainerrors.CodeConflict)
	_, err = env.auth.Register(ctx, RegisterRequest{Email: "not-an-email", Password: "long enough", Nickname: "x"})
	requireCode(t, err, domainerrors.CodeInvalidArgument)
	_, err = env.auth.Register(ctx, RegisterRequest{Email: "short@example.com", Password: "short", Nickname: "x"})
	requireCode(t, err, domainerrors.CodeInvalidArgument)

	login, err := env.auth.Login(ctx, LoginRequest{Email: "reader@example.com", Password: "long enough"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	_, err = env.auth.Login(ctx, LoginRequest{Email: "reader@example.com", Password: "wrong password"})
	requireCode(t, err, domainerrors.CodeInvalidCredentials)
	_, err = env.auth.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "long enough"})
	requireCode(t, err, domainerrors.CodeInvalidCredentials)

	user, err := env.auth.VerifyAccessToken(ctx, login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, user.ID)

	_, err = env.auth.VerifyAccessToken(ctx, "v4.local.garbage")
	requireCode(t, err, domainerrors.CodeUnauthenticated)
}

func TestProfile(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	me := env.register(t, "me")
	item := env.addVolume(t, me.ID, "vol-1")
	_, err := env.archives.Create(ctx, me.ID, CreateArchiveRequest{
		AssociationID: item.Association.ID,
		Review:        &ReviewInput{Content: "good"},
	})
	require.NoError(t, err)

	p, err := env.accounts.Profile(ctx, me.ID)
	require.NoError(t, err)
	assert.Equal(t, me.ID, p.User.ID)
	assert.Equal(t, int64(30), p.Ledger.CumulativeExperience)
	assert.Equal(t, int64(70), p.Next)
	require.Len(t, p.Unlocks, 1)
	assert.Equal(t, "review-1", p.Unlocks[0].BadgeID)

	_, err = env.accounts.Profile(ctx, "user-missing")
	requireCode(t, err, domainerrors.CodeNotFound)
}

func TestDeleteAccount_Cascades(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	me := env.register(t, "me")
	other := env.register(t, "other")

	shared := env.addVolume(t, me.ID, "vol-1")
	theirs := env.addVolume(t, other.ID, "vol-1")
	custom, err := env.library.CreateCustomBook(ctx, me.ID, CustomBookRequest{Title: "Mine"})
	require.NoError(t, err)

	_, err = env.onelines.Create(ctx, me.ID, CreateOneLineRequest{AssociationID: shared.Association.ID, Content: "bye"})
	require.NoError(t, err)
	_, err = env.archives.Create(ctx, me.ID, CreateArchiveRequest{
		AssociationID: custom.Association.ID,
		Excerpt:       &ExcerptInput{Content: "a line"},
	})
	require.NoError(t, err)
	_, err = env.onelines.Create(ctx, other.ID, CreateOneLineRequest{AssociationID: theirs.Association.ID, Content: "stay"})
	require.NoError(t, err)

	require.NoError(t, env.accounts.Delete(ctx, me.ID))

	_, err = env.accounts.Profile(ctx, me.ID)
	requireCode(t, err, domainerrors.CodeNotFound)
	_, err = env.catalog.AverageRating(ctx, custom.Entry.ID)
	requireCode(t, err, domainerrors.CodeNotFound)

	count, err := env.index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count, "only the other user's note remains indexed")

	// The shared remote entry survives for other readers.
	avg, err := env.catalog.AverageRating(ctx, shared.Entry.ID)
	require.NoError(t, err)
	assert.False(t, avg.Present())

	assert.Len(t, env.events.OfType(events.TypeAccountDeleted), 1)
	requireCode(t, env.accounts.Delete(ctx, me.ID), domainerrors.CodeNotFound)
}
