package services

import (
	"testing"

	"yatube/app/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowService(t *testing.T) {
	env := setupServices(t)
	u := env.register(t, "reader")
	a := env.register(t, "writer")

	t.Run("follow twice yields one edge", func(t *testing.T) {
		require.NoError(t, env.Follows.Follow(u.ID, a.ID))
		require.NoError(t, env.Follows.Follow(u.ID, a.ID))

		followers, following, err := env.Follows.Counts(a.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, followers)
		assert.Equal(t, 0, following)

		ok, err := env.Follows.IsFollowing(u.ID, a.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("unfollow", func(t *testing.T) {
		require.NoError(t, env.Follows.Unfollow(u.ID, a.ID))
		ok, err := env.Follows.IsFollowing(u.ID, a.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		assert.NoError(t, env.Follows.Unfollow(u.ID, a.ID), "absent edge is fine")
	})

	t.Run("self follow is a no-op", func(t *testing.T) {
		require.NoError(t, env.Follows.Follow(u.ID, u.ID))
		ok, err := env.Follows.IsFollowing(u.ID, u.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		ids, err := env.Follows.FollowingIDs(u.ID)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("unknown author", func(t *testing.T) {
		assert.ErrorIs(t, env.Follows.Follow(u.ID, 9999), errs.NotFound)
	})
}
