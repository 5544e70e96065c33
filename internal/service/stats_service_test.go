package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"shortlink-go/internal/model"
	"shortlink-go/internal/repository"
	dbutil "shortlink-go/internal/testutil"
)

func TestSyncDailyWritesSnapshots(t *testing.T) {
	db := dbutil.NewTestDB(t)
	_, pool := dbutil.NewTestRedis(t)
	ctx := context.Background()

	links := repository.NewLinkStore(db)
	stats := repository.NewDailyStatStore(db)
	visits := repository.NewRedisVisitCounter(pool, zap.NewNop())

	now := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)
	svc := NewStatsService(links, stats, visits, zap.NewNop())
	svc.now = func() time.Time { return now }

	link := &model.Link{AccountID: "acc-1", DestinationURL: "https://example.com", ShortCode: "stat", IsActive: true}
	require.NoError(t, links.Create(ctx, link))

	yesterday := now.AddDate(0, 0, -1)
	require.NoError(t, visits.RecordVisit(ctx, link.ID, "1.1.1.1", yesterday))
	require.NoError(t, visits.RecordVisit(ctx, link.ID, "1.1.1.1", now))
	require.NoError(t, visits.RecordVisit(ctx, link.ID, "2.2.2.2", now))
	require.NoError(t, visits.RecordVisit(ctx, link.ID, "2.2.2.2", now))
	// 已删除的短链不同步
	require.NoError(t, visits.RecordVisit(ctx, "deleted-link", "3.3.3.3", now))

	n, err := svc.SyncDaily(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := svc.DailyStats(ctx, "acc-1", link.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-03-02", rows[0].Date)
	assert.EqualValues(t, 3, rows[0].PV)
	assert.EqualValues(t, 2, rows[0].UV)
	assert.Equal(t, "2024-03-01", rows[1].Date)
	assert.EqualValues(t, 1, rows[1].PV)

	stored, err := links.GetByID(ctx, link.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stored.TotalUV)

	// 重复同步覆盖而不是累加
	require.NoError(t, visits.RecordVisit(ctx, link.ID, "4.4.4.4", now))
	_, err = svc.SyncDaily(ctx)
	require.NoError(t, err)
	rows, err = svc.DailyStats(ctx, "acc-1", link.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.EqualValues(t, 4, rows[0].PV)
	assert.EqualValues(t, 3, rows[0].UV)
}

func TestSyncDailyWithoutRedis(t *testing.T) {
	db := dbutil.NewTestDB(t)
	svc := NewStatsService(repository.NewLinkStore(db), repository.NewDailyStatStore(db), nil, zap.NewNop())

	n, err := svc.SyncDaily(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
