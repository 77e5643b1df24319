package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/instructor-companion-api/internal/dto"
	"github.com/noah-isme/instructor-companion-api/internal/models"
)

const linkSettingsCacheKey = "settings:links"

type configurationReader interface {
	ListByKeys(ctx context.Context, keys []string) ([]models.Configuration, error)
}

// SettingsService resolves toolkit link settings from the platform
// configuration table, falling back to environment defaults per key.
type SettingsService struct {
	repo     configurationReader
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	defaults models.LinkSettings
	ttl      time.Duration
}

// SettingsServiceParams groups constructor dependencies.
type SettingsServiceParams struct {
	Repo     configurationReader
	Cache    *CacheService
	Metrics  *MetricsService
	Logger   *zap.Logger
	Defaults models.LinkSettings
	CacheTTL time.Duration
}

// NewSettingsService constructs SettingsService.
func NewSettingsService(params SettingsServiceParams) *SettingsService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{
		repo:     params.Repo,
		cache:    params.Cache,
		metrics:  params.Metrics,
		logger:   logger,
		defaults: params.Defaults,
		ttl:      params.CacheTTL,
	}
}

// LinkSettings returns the effective link settings. The boolean is true when
// the configuration table could not be read and defaults were used instead.
func (s *SettingsService) LinkSettings(ctx context.Context) (models.LinkSettings, bool) {
	var cached models.LinkSettings
	if hit, _ := s.cache.Get(ctx, linkSettingsCacheKey, &cached); hit {
		return cached, false
	}

	settings := s.defaults
	if s.repo == nil {
		return settings, false
	}

	start := time.Now()
	rows, err := s.repo.ListByKeys(ctx, models.LinkSettingKeys)
	s.metrics.ObserveDBQuery("link_settings", time.Since(start), err)
	if err != nil {
		s.logger.Warn("link settings unavailable, using defaults",
			zap.String("component", dto.WidgetSettings),
			zap.Error(err),
		)
		s.metrics.RecordDegraded(dto.WidgetSettings)
		return settings, true
	}
	for _, row := range rows {
		settings.Set(row.Key, row.Value)
	}

	_ = s.cache.Set(ctx, linkSettingsCacheKey, settings, s.ttl)
	return settings, false
}

// InvalidateLinkSettings drops the cached settings so the next read hits the table.
func (s *SettingsService) InvalidateLinkSettings(ctx context.Context) error {
	return s.cache.Invalidate(ctx, linkSettingsCacheKey)
}
