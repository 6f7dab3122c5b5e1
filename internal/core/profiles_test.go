package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reader := env.createUser(t, "reader")
	author := env.createUser(t, "author")

	for range 2 {
		_, err := env.core.FollowUser(ctx, reader, "author")
		require.NoError(t, err)
	}

	following, err := env.core.GetFollowingUserList(ctx, reader.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, author.ID, following[0].ID)
}

func TestUnfollowTwiceLeavesNoEdge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reader := env.createUser(t, "reader")
	env.createUser(t, "author")

	_, err := env.core.FollowUser(ctx, reader, "author")
	require.NoError(t, err)

	for range 2 {
		_, err := env.core.UnfollowUser(ctx, reader, "author")
		require.NoError(t, err)
	}

	following, err := env.core.GetFollowingUserList(ctx, reader.ID)
	require.NoError(t, err)
	assert.Empty(t, following)
}

func TestSelfFollowIsNoop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "narcissus")

	author, err := env.core.FollowUser(ctx, user, "narcissus")
	require.NoError(t, err)
	assert.Equal(t, user.ID, author.ID)

	following, err := env.core.GetFollowingUserList(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, following)
}

func TestFollowUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	reader := env.createUser(t, "reader")

	_, err := env.core.FollowUser(context.Background(), reader, "ghost")
	assert.ErrorIs(t, err, NoRecordFound)

	_, err = env.core.UnfollowUser(context.Background(), reader, "ghost")
	assert.ErrorIs(t, err, NoRecordFound)
}

func TestGetProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reader := env.createUser(t, "reader")
	author := env.createUser(t, "author")
	env.createPosts(t, author, 2, nil)

	profile, err := env.core.GetProfile(ctx, "author", reader)
	require.NoError(t, err)
	assert.False(t, profile.Following)
	assert.Equal(t, int64(2), profile.PostsCount)
	assert.Equal(t, author.ID, profile.Author.ID)

	_, err = env.core.FollowUser(ctx, reader, "author")
	require.NoError(t, err)

	profile, err = env.core.GetProfile(ctx, "author", reader)
	require.NoError(t, err)
	assert.True(t, profile.Following)

	anonymous, err := env.core.GetProfile(ctx, "author", nil)
	require.NoError(t, err)
	assert.False(t, anonymous.Following)

	_, err = env.core.GetProfile(ctx, "ghost", nil)
	assert.ErrorIs(t, err, NoRecordFound)
}
