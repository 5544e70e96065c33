package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"shortlink-go/internal/apperrors"
	"shortlink-go/internal/config"
	"shortlink-go/internal/dto"
	"shortlink-go/internal/model"
	"shortlink-go/internal/repository"
	"shortlink-go/pkg/utils"
)

// defaultTitleLength 未指定标题时截取目标地址的前 50 个字符
const defaultTitleLength = 50

// defaultReinvalidateDelay 修改后再次删除缓存的延迟。
// 修改前已读到旧行的解析请求可能在第一次删除之后才写回缓存
const defaultReinvalidateDelay = time.Second

// LinkService 短链的增删改查。每次修改都会清除对应短码的缓存
type LinkService struct {
	links     repository.LinkStore
	cache     repository.LinkCache
	generator CodeGenerator
	hasher    PasswordHasher
	cfg       config.ShortCodeConfig
	logger    *zap.Logger
	now       func() time.Time

	reinvalidateDelay time.Duration
}

func NewLinkService(links repository.LinkStore, cache repository.LinkCache, generator CodeGenerator,
	hasher PasswordHasher, cfg config.ShortCodeConfig, logger *zap.Logger) *LinkService {
	if cache == nil {
		cache = repository.NopLinkCache{}
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 100
	}
	if cfg.Length <= 0 {
		cfg.Length = DefaultCodeLength
	}
	return &LinkService{
		links:     links,
		cache:     cache,
		generator: generator,
		hasher:    hasher,
		cfg:       cfg,
		logger:    logger.Named("link_service"),
		now:       time.Now,

		reinvalidateDelay: defaultReinvalidateDelay,
	}
}

// Create 创建短链。指定短码被占用返回 Conflict；随机短码冲突时重新生成，超过重试次数返回 503
func (s *LinkService) Create(ctx context.Context, accountID string, req *dto.CreateLinkRequest) (*model.Link, error) {
	if err := utils.ValidateTargetURL(req.DestinationURL); err != nil {
		return nil, apperrors.InvalidRequestError(err.Error())
	}

	link := &model.Link{
		AccountID:      accountID,
		DestinationURL: req.DestinationURL,
		IsActive:       true,
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = utils.TruncateRunes(req.DestinationURL, defaultTitleLength)
	}
	link.Title = &title

	if req.Password != "" {
		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			return nil, apperrors.SystemError("error.system").WithCause(err)
		}
		link.PasswordHash = &hash
	}

	if req.ExpiresAt != nil {
		expiresAt := req.ExpiresAt.UTC()
		link.ExpiresAt = &expiresAt
	}

	if req.CustomCode != "" {
		if err := s.createWithCustomCode(ctx, link, req.CustomCode); err != nil {
			return nil, err
		}
	} else if err := s.createWithGeneratedCode(ctx, link); err != nil {
		return nil, err
	}

	// 之前可能缓存过该短码不存在
	s.invalidate(ctx, link.ShortCode)

	s.logger.Info("Link created",
		zap.String("link_id", link.ID),
		zap.String("short_code", link.ShortCode),
		zap.String("account_id", accountID))
	return link, nil
}

func (s *LinkService) createWithCustomCode(ctx context.Context, link *model.Link, code string) error {
	if err := utils.ValidateShortCode(code); err != nil {
		return apperrors.InvalidRequestError(err.Error())
	}
	if utils.IsReserved(code, s.cfg.Reserved) {
		return apperrors.InvalidRequestError("error.shortcode_reserved")
	}

	exists, err := s.links.ExistsByCode(ctx, code)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.Conflict("error.shortcode_taken")
	}

	// 并发创建同一短码时由唯一索引兜底
	link.ShortCode = code
	return s.links.Create(ctx, link)
}

func (s *LinkService) createWithGeneratedCode(ctx context.Context, link *model.Link) error {
	for attempt := 1; attempt <= s.cfg.MaxRetries; attempt++ {
		code, err := s.generator.Generate(s.cfg.Length)
		if err != nil {
			return apperrors.SystemError("error.system").WithCause(err)
		}

		exists, err := s.links.ExistsByCode(ctx, code)
		if err != nil {
			return err
		}
		if exists {
			s.logger.Debug("Generated short code collision", zap.String("short_code", code), zap.Int("attempt", attempt))
			continue
		}

		link.ShortCode = code
		err = s.links.Create(ctx, link)
		if err == nil {
			return nil
		}
		if !apperrors.IsCode(err, http.StatusConflict) {
			return err
		}
		s.logger.Debug("Generated short code taken concurrently", zap.String("short_code", code), zap.Int("attempt", attempt))
		link.ID = ""
	}

	s.logger.Error("Short code space exhausted", zap.Int("max_retries", s.cfg.MaxRetries), zap.Int("length", s.cfg.Length))
	return apperrors.BusinessError(http.StatusServiceUnavailable, "error.code_space_exhausted")
}

// Get 返回账户自己的短链，不属于该账户时和不存在一样返回 NotFound
func (s *LinkService) Get(ctx context.Context, accountID, id string) (*model.Link, error) {
	return ownedLink(ctx, s.links, accountID, id)
}

// List 分页列出账户下的短链，最新的在前
func (s *LinkService) List(ctx context.Context, accountID string, page, size int) ([]model.Link, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 10
	}
	return s.links.ListByAccount(ctx, accountID, page, size)
}

// Update 只修改请求中非 nil 的字段
func (s *LinkService) Update(ctx context.Context, accountID, id string, req *dto.UpdateLinkRequest) (*model.Link, error) {
	link, err := ownedLink(ctx, s.links, accountID, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.DestinationURL != nil {
		if err := utils.ValidateTargetURL(*req.DestinationURL); err != nil {
			return nil, apperrors.InvalidRequestError(err.Error())
		}
		fields["destination_url"] = *req.DestinationURL
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			fields["title"] = nil
		} else {
			fields["title"] = title
		}
	}
	if req.Password != nil {
		if *req.Password == "" {
			fields["password_hash"] = nil
		} else {
			hash, err := s.hasher.Hash(*req.Password)
			if err != nil {
				return nil, apperrors.SystemError("error.system").WithCause(err)
			}
			fields["password_hash"] = hash
		}
	}
	switch {
	case req.ClearExpiresAt:
		fields["expires_at"] = nil
	case req.ExpiresAt != nil:
		fields["expires_at"] = req.ExpiresAt.UTC()
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}

	if len(fields) == 0 {
		return link, nil
	}
	fields["updated_at"] = s.now().UTC()

	if err := s.links.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	s.invalidate(ctx, link.ShortCode)

	return s.links.GetByID(ctx, id)
}

// Delete 删除短链及其点击事件和每日统计
func (s *LinkService) Delete(ctx context.Context, accountID, id string) error {
	link, err := ownedLink(ctx, s.links, accountID, id)
	if err != nil {
		return err
	}
	if err := s.links.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, link.ShortCode)

	s.logger.Info("Link deleted", zap.String("link_id", id), zap.String("short_code", link.ShortCode))
	return nil
}

// invalidate 立即删除缓存，并在 reinvalidateDelay 后再删一次，清掉并发解析写回的旧值
func (s *LinkService) invalidate(ctx context.Context, code string) {
	s.cache.Invalidate(ctx, code)
	if s.reinvalidateDelay <= 0 {
		return
	}
	detached := context.WithoutCancel(ctx)
	time.AfterFunc(s.reinvalidateDelay, func() {
		s.cache.Invalidate(detached, code)
	})
}

// ownedLink accountID 为空表示不校验归属
func ownedLink(ctx context.Context, links repository.LinkStore, accountID, id string) (*model.Link, error) {
	link, err := links.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if accountID != "" && link.AccountID != accountID {
		return nil, apperrors.NotFound("error.link_not_found")
	}
	return link, nil
}
