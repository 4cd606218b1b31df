package settings

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/library/backend/internal/domain/lending"
	"github.com/library/backend/internal/domain/shared/valueobject"
	"github.com/library/backend/internal/infrastructure/config"
	"github.com/library/backend/internal/infrastructure/persistence/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const cacheKey = "lending:fine_settings"

// DBSettingsProvider implements lending.SettingsProvider on top of the
// settings table, with an optional Redis cache in front. Missing or
// malformed rows fall back to the built-in defaults, so a partially seeded
// table never blocks the accrual run.
type DBSettingsProvider struct {
	db     *gorm.DB
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewDBSettingsProvider creates a settings provider. The Redis client is
// optional; pass nil to read straight from the database on every call.
func NewDBSettingsProvider(db *gorm.DB, redisClient *redis.Client, ttl time.Duration, logger *zap.Logger) *DBSettingsProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBSettingsProvider{
		db:     db,
		redis:  redisClient,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the current fine settings
func (p *DBSettingsProvider) Get(ctx context.Context) (lending.FineSettings, error) {
	if cached, ok := p.fromCache(ctx); ok {
		return cached, nil
	}

	var rows []models.SettingModel
	if err := p.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return lending.FineSettings{}, err
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}

	settings := lending.DefaultFineSettings()
	if raw, ok := values[lending.SettingFinePerDay]; ok {
		if money, err := valueobject.NewMoneyUSDFromString(raw); err == nil {
			settings.FinePerDay = money
		} else {
			p.logger.Warn("Invalid setting value, using default",
				zap.String("key", lending.SettingFinePerDay), zap.String("value", raw))
		}
	}
	if raw, ok := values[lending.SettingCreditLimit]; ok {
		if money, err := valueobject.NewMoneyUSDFromString(raw); err == nil {
			settings.CreditLimit = money
		} else {
			p.logger.Warn("Invalid setting value, using default",
				zap.String("key", lending.SettingCreditLimit), zap.String("value", raw))
		}
	}
	if raw, ok := values[lending.SettingMaxOverdueDays]; ok {
		if days, err := strconv.Atoi(raw); err == nil && days > 0 {
			settings.MaxOverdueDays = days
		} else {
			p.logger.Warn("Invalid setting value, using default",
				zap.String("key", lending.SettingMaxOverdueDays), zap.String("value", raw))
		}
	}
	if raw, ok := values[lending.SettingBanDurationDays]; ok {
		if days, err := strconv.Atoi(raw); err == nil && days > 0 {
			settings.BanDurationDays = days
		} else {
			p.logger.Warn("Invalid setting value, using default",
				zap.String("key", lending.SettingBanDurationDays), zap.String("value", raw))
		}
	}

	p.toCache(ctx, settings)
	return settings, nil
}

// Invalidate drops the cached settings so the next Get rereads the table
func (p *DBSettingsProvider) Invalidate(ctx context.Context) error {
	if p.redis == nil {
		return nil
	}
	return p.redis.Del(ctx, cacheKey).Err()
}

// Seed inserts the configured defaults for any setting key that does not
// exist yet. Existing rows are never overwritten.
func (p *DBSettingsProvider) Seed(ctx context.Context, cfg config.LendingConfig) error {
	defaults := []models.SettingModel{
		{Key: lending.SettingFinePerDay, Value: cfg.FinePerDay, Description: "Daily fine rate per overdue loan"},
		{Key: lending.SettingMaxOverdueDays, Value: strconv.Itoa(cfg.MaxOverdueDays), Description: "Days overdue before an automatic ban"},
		{Key: lending.SettingCreditLimit, Value: cfg.CreditLimit, Description: "Outstanding fines above this trigger a warning"},
		{Key: lending.SettingBanDurationDays, Value: strconv.Itoa(cfg.BanDurationDays), Description: "Length of an automatic ban in days"},
	}

	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, setting := range defaults {
			var existing models.SettingModel
			err := tx.First(&existing, "key = ?", setting.Key).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err := tx.Create(&setting).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

type cachedSettings struct {
	FinePerDay      valueobject.Money `json:"fine_per_day"`
	MaxOverdueDays  int               `json:"max_overdue_days"`
	CreditLimit     valueobject.Money `json:"credit_limit"`
	BanDurationDays int               `json:"ban_duration_days"`
}

func (p *DBSettingsProvider) fromCache(ctx context.Context) (lending.FineSettings, bool) {
	if p.redis == nil {
		return lending.FineSettings{}, false
	}
	raw, err := p.redis.Get(ctx, cacheKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			p.logger.Warn("Settings cache read failed", zap.Error(err))
		}
		return lending.FineSettings{}, false
	}

	var cached cachedSettings
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		p.logger.Warn("Settings cache entry corrupt, rereading", zap.Error(err))
		return lending.FineSettings{}, false
	}
	return lending.FineSettings{
		FinePerDay:      cached.FinePerDay,
		MaxOverdueDays:  cached.MaxOverdueDays,
		CreditLimit:     cached.CreditLimit,
		BanDurationDays: cached.BanDurationDays,
	}, true
}

func (p *DBSettingsProvider) toCache(ctx context.Context, settings lending.FineSettings) {
	if p.redis == nil {
		return
	}
	payload, err := json.Marshal(cachedSettings{
		FinePerDay:      settings.FinePerDay,
		MaxOverdueDays:  settings.MaxOverdueDays,
		CreditLimit:     settings.CreditLimit,
		BanDurationDays: settings.BanDurationDays,
	})
	if err != nil {
		return
	}
	if err := p.redis.Set(ctx, cacheKey, payload, p.ttl).Err(); err != nil {
		p.logger.Warn("Settings cache write failed", zap.Error(err))
	}
}

// Ensure DBSettingsProvider implements the interface
var _ lending.SettingsProvider = (*DBSettingsProvider)(nil)
