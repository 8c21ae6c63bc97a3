package persist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cocktail-recommender/internal/infrastructure/config"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// PersistedDomain 持久化資料表
type PersistedDomain struct {
	Domain    string `gorm:"primaryKey;size:255"`
	Payload   []byte `gorm:"not null"`
	ExpiresAt *time.Time
	UpdatedAt time.Time
}

// TableName 指定資料表名稱
func (PersistedDomain) TableName() string {
	return "persisted_domains"
}

// GormStore 以 SQL 資料庫保存網域資料
type GormStore struct {
	db  *gorm.DB
	ttl time.Duration
}

// NewGormStore 依設定開啟 sqlite 或 postgres
func NewGormStore(cfg config.PersistConfig) (*GormStore, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("database DSN must not be empty")
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.PersistPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		dialector = sqlite.Open(cfg.DSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return NewGormStoreWithDB(db, cfg.TTL)
}

// NewGormStoreWithDB 使用既有的連線並建立資料表
func NewGormStoreWithDB(db *gorm.DB, ttl time.Duration) (*GormStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is nil")
	}
	if err := db.AutoMigrate(&PersistedDomain{}); err != nil {
		return nil, fmt.Errorf("migrate persisted domains: %w", err)
	}
	return &GormStore{db: db, ttl: ttl}, nil
}

// Load 讀取網域資料
func (s *GormStore) Load(ctx context.Context, domain string, v any) (bool, error) {
	var row PersistedDomain
	err := s.db.WithContext(ctx).Where("domain = ?", domain).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load domain %q: %w", domain, err)
	}

	if row.ExpiresAt != nil && time.Now().UTC().After(*row.ExpiresAt) {
		return false, nil
	}

	if err := decode(domain, row.Payload, v); err != nil {
		return false, err
	}
	return true, nil
}

// Save 寫入網域資料
func (s *GormStore) Save(ctx context.Context, domain string, v any) error {
	data, err := encode(v)
	if err != nil {
		return err
	}

	row := PersistedDomain{Domain: domain, Payload: data}
	if s.ttl > 0 {
		expires := time.Now().UTC().Add(s.ttl)
		row.ExpiresAt = &expires
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "domain"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "expires_at", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save domain %q: %w", domain, err)
	}
	return nil
}

// Delete 刪除網域資料
func (s *GormStore) Delete(ctx context.Context, domain string) error {
	if err := s.db.WithContext(ctx).Where("domain = ?", domain).Delete(&PersistedDomain{}).Error; err != nil {
		return fmt.Errorf("delete domain %q: %w", domain, err)
	}
	return nil
}

// Close 關閉連線
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
