package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"shortlink-go/internal/metrics"
	"shortlink-go/internal/model"
	"shortlink-go/internal/repository"
	"shortlink-go/pkg/uaparser"
	"shortlink-go/pkg/utils"
)

// maxHeaderValueLength user agent / referrer 入库前截断
const maxHeaderValueLength = 500

// defaultRecordTimeout 客户端断开后仍允许点击写入完成的时间
const defaultRecordTimeout = 3 * time.Second

// RequestContext 一次访问的请求元数据，全部可选
type RequestContext struct {
	IPAddress string
	UserAgent string
	Referrer  string
	Country   string
	City      string
}

// ClickRecorder 写入点击事件并原子递增 click_count
type ClickRecorder struct {
	clicks  repository.ClickStore
	links   repository.LinkStore
	visits  repository.VisitCounter
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
	timeout time.Duration
}

// NewClickRecorder visits 可以为 nil（未启用 Redis）
func NewClickRecorder(clicks repository.ClickStore, links repository.LinkStore, visits repository.VisitCounter,
	m *metrics.Metrics, logger *zap.Logger) *ClickRecorder {
	if m == nil {
		m = metrics.New(nil)
	}
	return &ClickRecorder{
		clicks:  clicks,
		links:   links,
		visits:  visits,
		metrics: m,
		logger:  logger.Named("click_recorder"),
		now:     time.Now,
		timeout: defaultRecordTimeout,
	}
}

// Record 依次尝试写事件、递增计数、更新 PV/UV。
// 事件写入和计数递增互不依赖，任何一步失败都会记录日志和指标，返回合并后的错误
func (r *ClickRecorder) Record(ctx context.Context, linkID string, req RequestContext) error {
	// 请求被取消时点击仍要落库
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	event := r.buildEvent(linkID, req)

	var errs []error
	if err := r.clicks.Create(ctx, event); err != nil {
		r.metrics.ClicksDropped.Inc()
		r.logger.Error("Click event dropped",
			zap.String("link_id", linkID),
			zap.String("click_id", event.ID),
			zap.Error(err))
		errs = append(errs, err)
	} else {
		r.metrics.ClicksRecorded.Inc()
	}

	if err := r.links.IncrementClickCount(ctx, linkID); err != nil {
		r.metrics.ClickCountIncrementFails.Inc()
		r.logger.Error("Failed to increment click_count",
			zap.String("link_id", linkID),
			zap.Error(err))
		errs = append(errs, err)
	}

	if r.visits != nil {
		if err := r.visits.RecordVisit(ctx, linkID, req.IPAddress, event.Timestamp); err != nil {
			r.metrics.VisitCounterFailures.Inc()
			r.logger.Warn("Failed to record PV/UV",
				zap.String("link_id", linkID),
				zap.Error(err))
		}
	}

	return errors.Join(errs...)
}

func (r *ClickRecorder) buildEvent(linkID string, req RequestContext) *model.ClickEvent {
	info := uaparser.Parse(req.UserAgent)

	event := &model.ClickEvent{
		ID:         uuid.NewString(),
		LinkID:     linkID,
		Timestamp:  r.now().UTC(),
		DeviceType: info.DeviceType,
		Browser:    utils.TruncateRunes(info.Browser, 64),
		OS:         utils.TruncateRunes(info.OS, 64),
		IPAddress:  optional(req.IPAddress, 64),
		UserAgent:  optional(req.UserAgent, maxHeaderValueLength),
		Referrer:   optional(req.Referrer, maxHeaderValueLength),
		Country:    optional(req.Country, 64),
		City:       optional(req.City, 128),
	}
	return event
}

func optional(value string, max int) *string {
	if value == "" {
		return nil
	}
	v := utils.Truncate(value, max)
	return &v
}
