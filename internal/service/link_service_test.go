package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"shortlink-go/internal/apperrors"
	"shortlink-go/internal/config"
	"shortlink-go/internal/dto"
	"shortlink-go/internal/repository"
	dbutil "shortlink-go/internal/testutil"
)

// sequenceGenerator 按顺序返回预设短码，用完后报错
type sequenceGenerator struct {
	mu    sync.Mutex
	codes []string
}

func (g *sequenceGenerator) Generate(int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.codes) == 0 {
		return "zzzzzz", nil
	}
	code := g.codes[0]
	g.codes = g.codes[1:]
	return code, nil
}

func newLinkService(t *testing.T, gen CodeGenerator, cfg config.ShortCodeConfig) (*LinkService, *repository.GormLinkStore, *repository.GormClickStore) {
	t.Helper()
	db := dbutil.NewTestDB(t)
	links := repository.NewLinkStore(db)
	clicks := repository.NewClickStore(db)
	if gen == nil {
		gen = NewCodeGenerator(cfg.Reserved)
	}
	svc := NewLinkService(links, nil, gen, NewBcryptHasher(bcrypt.MinCost), cfg, zap.NewNop())
	return svc, links, clicks
}

func TestCreateGeneratedCode(t *testing.T) {
	svc, _, _ := newLinkService(t, nil, config.ShortCodeConfig{Length: 7})

	link, err := svc.Create(context.Background(), "acc-1", &dto.CreateLinkRequest{
		DestinationURL: "https://example.com/a/very/long/path/that/goes/on/and/on/for/quite/a/while",
	})
	require.NoError(t, err)
	assert.Len(t, link.ShortCode, 7)
	assert.True(t, link.IsActive)
	assert.False(t, link.HasPassword())
	require.NotNil(t, link.Title)
	assert.Equal(t, "https://example.com/a/very/long/path/that/goes/on/", *link.Title)
}

func TestCreateCustomCodeConflict(t *testing.T) {
	svc, _, _ := newLinkService(t, nil, config.ShortCodeConfig{})
	ctx := context.Background()

	_, err := svc.Create(ctx, "acc-1", &dto.CreateLinkRequest{DestinationURL: "https://a.example", CustomCode: "promo"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, "acc-2", &dto.CreateLinkRequest{DestinationURL: "https://b.example", CustomCode: "promo"})
	assert.True(t, apperrors.IsCode(err, http.StatusConflict))
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, _, _ := newLinkService(t, nil, config.ShortCodeConfig{Reserved: []string{"api"}})
	ctx := context.Background()

	cases := []dto.CreateLinkRequest{
		{DestinationURL: "ftp://example.com"},
		{DestinationURL: ""},
		{DestinationURL: "https://example.com", CustomCode: "bad code"},
		{DestinationURL: "https://example.com", CustomCode: "api-docs"},
	}
	for _, req := range cases {
		req := req
		_, err := svc.Create(ctx, "acc-1", &req)
		assert.True(t, apperrors.IsCode(err, http.StatusBadRequest), "request %+v", req)
	}
}

func TestCreateRetriesOnCollision(t *testing.T) {
	gen := &sequenceGenerator{codes: []string{"taken1", "taken1", "free01"}}
	svc, _, _ := newLinkService(t, gen, config.ShortCodeConfig{MaxRetries: 5})
	ctx := context.Background()

	first, err := svc.Create(ctx, "acc-1", &dto.CreateLinkRequest{DestinationURL: "https://a.example"})
	require.NoError(t, err)
	assert.Equal(t, "taken1", first.ShortCode)

	second, err := svc.Create(ctx, "acc-1", &dto.CreateLinkRequest{DestinationURL: "https://b.example"})
	require.NoError(t, err)
	assert.Equal(t, "free01", second.ShortCode)
}

func TestCreateExhaustsRetries(t *testing.T) {
	gen := &sequenceGenerator{}
	svc, _, _ := newLinkService(t, gen, config.ShortCodeConfig{MaxRetries: 3})
	ctx := context.Background()

	_, err := svc.Create(ctx, "acc-1", &dto.CreateLinkRequest{DestinationURL: "https://a.example"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, "acc-1", &dto.CreateLinkRequest{DestinationURL: "https://b.example"})
	assert.True(t, apperrors.IsCode(err, http.StatusServiceUnavailable))
}

func TestConcurrentCreateUniqueCodes(t *testing.T) {
	svc, _, _ := newLinkService(t, nil, config.ShortCodeConfig{})

	const n = 20
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		codes = map[string]struct{}{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			link, err := svc.Create(context.Background(), "acc-1", &dto.CreateLinkRequest{DestinationURL: "https://example.com"})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			codes[link.ShortCode] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, codes, n)
}

func TestUpdateAndOwnership(t *testing.T) {
	svc, _, _ := newLinkService(t, nil, config.ShortCodeConfig{})
	ctx := context.Background()

	expires := time.Now().Add(24 * time.Hour)
	link, err := svc.Create(ctx, "acc-1", &dto.CreateLinkRequest{
		DestinationURL: "https://example.com",
		Password:       "pw",
		ExpiresAt:      &expires,
	})
	require.NoError(t, err)
	require.True(t, link.HasPassword())

	_, err = svc.Get(ctx, "acc-2", link.ID)
	assert.True(t, apperrors.IsCode(err, http.StatusNotFound))

	inactive := false
	empty := ""
	target := "https://example.org/new"
	updated, err := svc.Update(ctx, "acc-1", link.ID, &dto.UpdateLinkRequest{
		DestinationURL: &target,
		Password:       &empty,
		ClearExpiresAt: true,
		IsActive:       &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, target, updated.DestinationURL)
	assert.False(t, updated.HasPassword())
	assert.Nil(t, updated.ExpiresAt)
	assert.False(t, updated.IsActive)

	bad := "notaurl"
	_, err = svc.Update(ctx, "acc-1", link.ID, &dto.UpdateLinkRequest{DestinationURL: &bad})
	assert.True(t, apperrors.IsCode(err, http.StatusBadRequest))

	_, err = svc.Update(ctx, "acc-2", link.ID, &dto.UpdateLinkRequest{IsActive: &inactive})
	assert.True(t, apperrors.IsCode(err, http.StatusNotFound))
}

func TestDeleteRemovesClicks(t *testing.T) {
	svc, links, clicks := newLinkService(t, nil, config.ShortCodeConfig{})
	ctx := context.Background()

	link, err := svc.Create(ctx, "acc-1", &dto.CreateLinkRequest{DestinationURL: "https://example.com"})
	require.NoError(t, err)

	recorder := NewClickRecorder(clicks, links, nil, nil, zap.NewNop())
	require.NoError(t, recorder.Record(ctx, link.ID, RequestContext{}))

	require.NoError(t, svc.Delete(ctx, "acc-1", link.ID))

	n, err := clicks.CountByLink(ctx, link.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = svc.Get(ctx, "acc-1", link.ID)
	assert.True(t, apperrors.IsCode(err, http.StatusNotFound))
}

func TestMutationsInvalidateCache(t *testing.T) {
	db := dbutil.NewTestDB(t)
	mr, pool := dbutil.NewTestRedis(t)
	links := repository.NewLinkStore(db)
	cache := repository.NewRedisLinkCache(pool, time.Hour, time.Minute, zap.NewNop())
	svc := NewLinkService(links, cache, NewCodeGenerator(nil), NewBcryptHasher(bcrypt.MinCost), config.ShortCodeConfig{}, zap.NewNop())
	svc.reinvalidateDelay = 0
	resolver := NewResolver(links, cache, NewClickRecorder(repository.NewClickStore(db), links, nil, nil, zap.NewNop()),
		NewBcryptHasher(bcrypt.MinCost), nil, zap.NewNop())
	ctx := context.Background()

	// 创建前访问过，负缓存需要被清掉
	_, err := resolver.Resolve(ctx, "launch", RequestContext{})
	require.True(t, apperrors.IsCode(err, http.StatusNotFound))

	link, err := svc.Create(ctx, "acc-1", &dto.CreateLinkRequest{DestinationURL: "https://example.com", CustomCode: "launch"})
	require.NoError(t, err)

	_, err = resolver.Resolve(ctx, "launch", RequestContext{})
	require.NoError(t, err)
	require.True(t, mr.Exists("redirect:shortcode:launch"))

	inactive := false
	_, err = svc.Update(ctx, "acc-1", link.ID, &dto.UpdateLinkRequest{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, mr.Exists("redirect:shortcode:launch"))

	_, err = resolver.Resolve(ctx, "launch", RequestContext{})
	assert.True(t, apperrors.IsCode(err, http.StatusGone))
}

func TestUpdateClearsStaleCacheWrittenAfterInvalidate(t *testing.T) {
	db := dbutil.NewTestDB(t)
	mr, pool := dbutil.NewTestRedis(t)
	links := repository.NewLinkStore(db)
	cache := repository.NewRedisLinkCache(pool, time.Hour, time.Minute, zap.NewNop())
	svc := NewLinkService(links, cache, NewCodeGenerator(nil), NewBcryptHasher(bcrypt.MinCost), config.ShortCodeConfig{}, zap.NewNop())
	svc.reinvalidateDelay = 50 * time.Millisecond
	resolver := NewResolver(links, cache, NewClickRecorder(repository.NewClickStore(db), links, nil, nil, zap.NewNop()),
		NewBcryptHasher(bcrypt.MinCost), nil, zap.NewNop())
	ctx := context.Background()

	link, err := svc.Create(ctx, "acc-1", &dto.CreateLinkRequest{DestinationURL: "https://example.com", CustomCode: "racy"})
	require.NoError(t, err)

	// 解析请求在停用之前读到了启用状态的行
	stale, err := links.GetByCode(ctx, "racy")
	require.NoError(t, err)

	inactive := false
	_, err = svc.Update(ctx, "acc-1", link.ID, &dto.UpdateLinkRequest{IsActive: &inactive})
	require.NoError(t, err)

	// 旧行在第一次删除之后才写回缓存
	cache.Set(ctx, stale)
	require.True(t, mr.Exists("redirect:shortcode:racy"))

	require.Eventually(t, func() bool {
		return !mr.Exists("redirect:shortcode:racy")
	}, 2*time.Second, 10*time.Millisecond)

	_, err = resolver.Resolve(ctx, "racy", RequestContext{})
	assert.True(t, apperrors.IsCode(err, http.StatusGone))
}
