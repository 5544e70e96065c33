package service

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"shortlink-go/internal/apperrors"
	"shortlink-go/internal/metrics"
	"shortlink-go/internal/model"
	"shortlink-go/internal/repository"
	dbutil "shortlink-go/internal/testutil"
)

func TestRecordTruncatesAndDefaults(t *testing.T) {
	db := dbutil.NewTestDB(t)
	links := repository.NewLinkStore(db)
	clicks := repository.NewClickStore(db)
	ctx := context.Background()

	link := &model.Link{AccountID: "acc-1", DestinationURL: "https://example.com", ShortCode: "trunc", IsActive: true}
	require.NoError(t, links.Create(ctx, link))

	recorder := NewClickRecorder(clicks, links, nil, nil, zap.NewNop())
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600))
	recorder.now = func() time.Time { return fixed }

	require.NoError(t, recorder.Record(ctx, link.ID, RequestContext{
		UserAgent: strings.Repeat("a", 800),
		Referrer:  strings.Repeat("r", 600),
	}))

	events, err := clicks.ListByLink(ctx, link.ID, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	e := events[0]
	require.NotNil(t, e.UserAgent)
	assert.Len(t, *e.UserAgent, 500)
	require.NotNil(t, e.Referrer)
	assert.Len(t, *e.Referrer, 500)
	assert.Nil(t, e.IPAddress)
	assert.Nil(t, e.Country)
	assert.True(t, e.Timestamp.Equal(fixed))
	assert.Equal(t, time.UTC, e.Timestamp.Location())
}

func TestRecordMissingLinkReportsIncrementFailure(t *testing.T) {
	db := dbutil.NewTestDB(t)
	m := metrics.New(nil)
	recorder := NewClickRecorder(repository.NewClickStore(db), repository.NewLinkStore(db), nil, m, zap.NewNop())

	err := recorder.Record(context.Background(), "missing", RequestContext{})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, http.StatusNotFound))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ClickCountIncrementFails))
}

func TestRecordUpdatesVisitCounters(t *testing.T) {
	db := dbutil.NewTestDB(t)
	mr, pool := dbutil.NewTestRedis(t)
	links := repository.NewLinkStore(db)
	ctx := context.Background()

	link := &model.Link{AccountID: "acc-1", DestinationURL: "https://example.com", ShortCode: "pvuv", IsActive: true}
	require.NoError(t, links.Create(ctx, link))

	m := metrics.New(nil)
	visits := repository.NewRedisVisitCounter(pool, zap.NewNop())
	recorder := NewClickRecorder(repository.NewClickStore(db), links, visits, m, zap.NewNop())
	require.NoError(t, recorder.Record(ctx, link.ID, RequestContext{IPAddress: "9.9.9.9"}))

	uv, err := visits.TotalUV(ctx, link.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, uv)

	// Redis 故障只计数，不影响结果
	mr.Close()
	require.NoError(t, recorder.Record(ctx, link.ID, RequestContext{IPAddress: "9.9.9.9"}))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VisitCounterFailures))

	stored, err := links.GetByID(ctx, link.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stored.ClickCount)
}
