package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/noah-isme/instructor-companion-api/internal/models"
	appErrors "github.com/noah-isme/instructor-companion-api/pkg/errors"
)

type stubCacheRepo struct {
	store map[string][]byte
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if s.store == nil {
		return appErrors.ErrCacheMiss
	}
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.store, key)
	}
	return nil
}

type stubConfigurationRepo struct {
	rows  []models.Configuration
	err   error
	calls int
	keys  []string
}

func (s *stubConfigurationRepo) ListByKeys(_ context.Context, keys []string) ([]models.Configuration, error) {
	s.calls++
	s.keys = keys
	return s.rows, s.err
}

func TestSettingsServiceOverridesDefaults(t *testing.T) {
	repo := &stubConfigurationRepo{rows: []models.Configuration{
		{Key: models.SettingLogHoursURL, Value: "/hours"},
		{Key: models.SettingPaymentStatusURL, Value: "https://pay.example.org"},
		{Key: "unrelated_setting", Value: "ignored"},
	}}
	svc := NewSettingsService(SettingsServiceParams{
		Repo:     repo,
		Logger:   zap.NewNop(),
		Defaults: models.LinkSettings{LogHours: "/env-hours", InstructorHandbook: "/handbook"},
	})

	settings, degraded := svc.LinkSettings(context.Background())
	assert.False(t, degraded)
	assert.Equal(t, models.LinkSettingKeys, repo.keys)
	assert.Equal(t, models.LinkSettings{
		InstructorHandbook: "/handbook",
		LogHours:           "/hours",
		PaymentStatus:      "https://pay.example.org",
	}, settings)
}

func TestSettingsServiceFallsBackToDefaultsOnError(t *testing.T) {
	repo := &stubConfigurationRepo{err: errors.New("configurations table missing")}
	defaults := models.LinkSettings{EmergencyProcedures: "/emergency"}
	svc := NewSettingsService(SettingsServiceParams{Repo: repo, Defaults: defaults})

	settings, degraded := svc.LinkSettings(context.Background())
	assert.True(t, degraded)
	assert.Equal(t, defaults, settings)
}

func TestSettingsServiceUsesCache(t *testing.T) {
	repo := &stubConfigurationRepo{rows: []models.Configuration{{Key: models.SettingLogHoursURL, Value: "/hours"}}}
	cacheRepo := &stubCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewSettingsService(SettingsServiceParams{Repo: repo, Cache: cache, CacheTTL: time.Minute})
	ctx := context.Background()

	first, _ := svc.LinkSettings(ctx)
	second, _ := svc.LinkSettings(ctx)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, "/hours", second.LogHours)

	assert.NoError(t, svc.InvalidateLinkSettings(ctx))
	_, _ = svc.LinkSettings(ctx)
	assert.Equal(t, 2, repo.calls)
}

func TestSettingsServiceDisabledCacheAlwaysReads(t *testing.T) {
	repo := &stubConfigurationRepo{}
	cache := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop(), false)
	svc := NewSettingsService(SettingsServiceParams{Repo: repo, Cache: cache})

	_, _ = svc.LinkSettings(context.Background())
	_, _ = svc.LinkSettings(context.Background())
	assert.Equal(t, 2, repo.calls)
}
