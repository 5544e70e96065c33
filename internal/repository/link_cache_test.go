package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"shortlink-go/constant"
	"shortlink-go/internal/model"
	"shortlink-go/internal/repository"
	"shortlink-go/internal/testutil"
)

func TestRedisLinkCacheRoundTripKeepsPasswordHash(t *testing.T) {
	ctx := context.Background()
	mr, pool := testutil.NewTestRedis(t)
	cache := repository.NewRedisLinkCache(pool, time.Minute, time.Second, zap.NewNop())

	hash := "$2a$10$abcdefghijklmnopqrstuv"
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	link := newLink("acc-1", "cached")
	link.ID = "link-1"
	link.PasswordHash = &hash
	link.ExpiresAt = &expires

	_, _, hit := cache.Get(ctx, "cached")
	assert.False(t, hit)

	cache.Set(ctx, link)
	assert.True(t, mr.Exists(constant.GetShortCodeKey("cached")))

	got, found, hit := cache.Get(ctx, "cached")
	require.True(t, hit)
	require.True(t, found)
	assert.Equal(t, "link-1", got.ID)
	assert.True(t, got.HasPassword())
	assert.Equal(t, hash, *got.PasswordHash)
	assert.True(t, got.ExpiresAt.Equal(expires))

	cache.Invalidate(ctx, "cached")
	_, _, hit = cache.Get(ctx, "cached")
	assert.False(t, hit)
}

func TestRedisLinkCacheNegativeEntryExpires(t *testing.T) {
	ctx := context.Background()
	mr, pool := testutil.NewTestRedis(t)
	cache := repository.NewRedisLinkCache(pool, time.Minute, 5*time.Second, zap.NewNop())

	cache.SetMissing(ctx, "ghost")
	link, found, hit := cache.Get(ctx, "ghost")
	assert.True(t, hit)
	assert.False(t, found)
	assert.Nil(t, link)

	mr.FastForward(6 * time.Second)
	_, _, hit = cache.Get(ctx, "ghost")
	assert.False(t, hit)
}

func TestRedisLinkCacheDegradesWhenRedisDown(t *testing.T) {
	ctx := context.Background()
	mr, pool := testutil.NewTestRedis(t)
	cache := repository.NewRedisLinkCache(pool, time.Minute, time.Second, zap.NewNop())
	mr.Close()

	cache.Set(ctx, &model.Link{ShortCode: "x"})
	_, _, hit := cache.Get(ctx, "x")
	assert.False(t, hit)
	cache.Invalidate(ctx, "x")
}

func TestRedisVisitCounter(t *testing.T) {
	ctx := context.Background()
	_, pool := testutil.NewTestRedis(t)
	counter := repository.NewRedisVisitCounter(pool, zap.NewNop())

	at := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	date := constant.GetDateKey(at)
	require.NoError(t, counter.RecordVisit(ctx, "l1", "1.1.1.1", at))
	require.NoError(t, counter.RecordVisit(ctx, "l1", "1.1.1.1", at))
	require.NoError(t, counter.RecordVisit(ctx, "l1", "2.2.2.2", at))
	require.NoError(t, counter.RecordVisit(ctx, "l2", "", at))

	pvs, err := counter.DailyPVs(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"l1": 3, "l2": 1}, pvs)

	uv, err := counter.DailyUV(ctx, "l1", date)
	require.NoError(t, err)
	assert.EqualValues(t, 2, uv)

	total, err := counter.TotalUV(ctx, "l2")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	empty, err := counter.DailyPVs(ctx, "19990101")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
