package service

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"shortlink-go/internal/apperrors"
	"shortlink-go/internal/metrics"
	"shortlink-go/internal/model"
	"shortlink-go/internal/repository"
	"shortlink-go/pkg/utils"
)

// Outcome 解析成功时的结果类型，失败以 AppError 返回（NotFound / Gone / Unauthorized / StorageUnavailable）
type Outcome string

const (
	OutcomeRedirect         Outcome = "redirect"
	OutcomePasswordRequired Outcome = "password_required"
)

// ResolutionResult 重定向或需要密码。需要密码时不包含目标地址
type ResolutionResult struct {
	Outcome        Outcome
	LinkID         string
	DestinationURL string
}

// clickRecorder 由 ClickRecorder 实现
type clickRecorder interface {
	Record(ctx context.Context, linkID string, req RequestContext) error
}

// Resolver 短码解析状态机：查找 → 是否启用 → 是否过期 → 是否需要密码 → 记录点击 → 重定向
type Resolver struct {
	links    repository.LinkStore
	cache    repository.LinkCache
	recorder clickRecorder
	hasher   PasswordHasher
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

func NewResolver(links repository.LinkStore, cache repository.LinkCache, recorder clickRecorder,
	hasher PasswordHasher, m *metrics.Metrics, logger *zap.Logger) *Resolver {
	if cache == nil {
		cache = repository.NopLinkCache{}
	}
	if m == nil {
		m = metrics.New(nil)
	}
	return &Resolver{
		links:    links,
		cache:    cache,
		recorder: recorder,
		hasher:   hasher,
		metrics:  m,
		logger:   logger.Named("resolver"),
		now:      time.Now,
	}
}

// Resolve 解析短码。成功重定向时恰好记录一次点击；NotFound、Gone、需要密码时不记录
func (r *Resolver) Resolve(ctx context.Context, code string, req RequestContext) (*ResolutionResult, error) {
	link, err := r.lookup(ctx, code)
	if err != nil {
		return nil, r.fail(err)
	}

	if err := r.checkState(link); err != nil {
		return nil, r.fail(err)
	}

	if link.HasPassword() {
		r.metrics.ObserveResolution(metrics.OutcomePasswordRequired)
		return &ResolutionResult{Outcome: OutcomePasswordRequired, LinkID: link.ID}, nil
	}

	return r.redirect(ctx, link, req), nil
}

// VerifyAndResolve 校验访问密码后重定向。
// 总是直接读存储而不是缓存，并重新执行启用/过期检查，两次请求之间短链状态可能已变化
func (r *Resolver) VerifyAndResolve(ctx context.Context, code, password string, req RequestContext) (*ResolutionResult, error) {
	if err := utils.ValidateShortCode(code); err != nil {
		return nil, r.fail(apperrors.NotFound("error.link_not_found"))
	}

	link, err := r.links.GetByCode(ctx, code)
	if err != nil {
		return nil, r.fail(err)
	}

	if err := r.checkState(link); err != nil {
		return nil, r.fail(err)
	}

	// 未设置密码按公开短链处理
	if link.HasPassword() && !r.hasher.Verify(*link.PasswordHash, password) {
		r.logger.Info("Wrong link password", zap.String("link_id", link.ID))
		return nil, r.fail(apperrors.Unauthorized("error.wrong_password"))
	}

	return r.redirect(ctx, link, req), nil
}

func (r *Resolver) lookup(ctx context.Context, code string) (*model.Link, error) {
	if err := utils.ValidateShortCode(code); err != nil {
		return nil, apperrors.NotFound("error.link_not_found")
	}

	if link, found, hit := r.cache.Get(ctx, code); hit {
		if !found {
			return nil, apperrors.NotFound("error.link_not_found")
		}
		return link, nil
	}

	link, err := r.links.GetByCode(ctx, code)
	if err != nil {
		if apperrors.IsCode(err, http.StatusNotFound) {
			r.cache.SetMissing(ctx, code)
		}
		return nil, err
	}
	r.cache.Set(ctx, link)
	return link, nil
}

func (r *Resolver) checkState(link *model.Link) error {
	if !link.IsActive {
		return apperrors.Gone(apperrors.ReasonDeactivated)
	}
	if link.IsExpired(r.now()) {
		return apperrors.Gone(apperrors.ReasonExpired)
	}
	return nil
}

// redirect 记录点击失败不影响跳转，失败已由 ClickRecorder 记日志和计数
func (r *Resolver) redirect(ctx context.Context, link *model.Link, req RequestContext) *ResolutionResult {
	if err := r.recorder.Record(ctx, link.ID, req); err != nil {
		r.logger.Warn("Serving redirect despite click recording failure",
			zap.String("link_id", link.ID),
			zap.Error(err))
	}
	r.metrics.ObserveResolution(metrics.OutcomeRedirect)
	return &ResolutionResult{
		Outcome:        OutcomeRedirect,
		LinkID:         link.ID,
		DestinationURL: link.DestinationURL,
	}
}

func (r *Resolver) fail(err error) error {
	switch {
	case apperrors.IsCode(err, http.StatusNotFound):
		r.metrics.ObserveResolution(metrics.OutcomeNotFound)
	case apperrors.IsCode(err, http.StatusGone):
		r.metrics.ObserveResolution(metrics.OutcomeGone)
	case apperrors.IsCode(err, http.StatusUnauthorized):
		r.metrics.ObserveResolution(metrics.OutcomeUnauthorized)
	default:
		r.metrics.ObserveResolution(metrics.OutcomeError)
		r.logger.Error("Resolution failed", zap.Error(err))
	}
	return err
}
