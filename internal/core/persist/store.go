// Package persist 提供依網域名稱存取的持久化快取
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cocktail-recommender/internal/infrastructure/config"
	"cocktail-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// ErrEncode 資料無法序列化
var ErrEncode = errors.New("persist: cannot encode value")

// Store 持久化策略
type Store interface {
	// Load 讀取網域資料到 v，不存在時回傳 false
	Load(ctx context.Context, domain string, v any) (bool, error)
	// Save 寫入網域資料
	Save(ctx context.Context, domain string, v any) error
	// Delete 刪除網域資料
	Delete(ctx context.Context, domain string) error
}

// New 依設定建立持久化策略
func New(cfg config.PersistConfig) (Store, error) {
	switch cfg.Driver {
	case config.PersistMemory:
		return NewMemoryStore(cfg.MaxSize, cfg.TTL), nil
	case config.PersistRedis:
		return NewRedisStore(cfg)
	case config.PersistSQLite, config.PersistPostgres:
		return NewGormStore(cfg)
	case config.PersistNone, "":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown persist driver %q", cfg.Driver)
	}
}

// Nop 不保存任何資料
type Nop struct{}

func (Nop) Load(context.Context, string, any) (bool, error) { return false, nil }
func (Nop) Save(context.Context, string, any) error         { return nil }
func (Nop) Delete(context.Context, string) error            { return nil }

func encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return data, nil
}

func decode(domain string, data []byte, v any) error {
	if err := common.ParseJSONBytesStrict(data, v); err != nil {
		return fmt.Errorf("persist: decode domain %q: %w", domain, err)
	}
	return nil
}

// LoadOrWarn 讀取網域資料，讀取或解析失敗時記錄警告並視為不存在
func LoadOrWarn(ctx context.Context, store Store, domain string, v any) bool {
	if store == nil {
		return false
	}
	found, err := store.Load(ctx, domain, v)
	if err != nil {
		common.LogWarn("讀取持久化資料失敗，捨棄並重新計算",
			zap.String("domain", domain),
			zap.Error(err),
		)
		return false
	}
	if found {
		common.LogDebug("讀取持久化資料成功", zap.String("domain", domain))
	}
	return found
}

// SaveOrWarn 寫入網域資料，只有序列化錯誤會回傳
func SaveOrWarn(ctx context.Context, store Store, domain string, v any) error {
	if store == nil {
		return nil
	}
	if err := store.Save(ctx, domain, v); err != nil {
		if errors.Is(err, ErrEncode) {
			return err
		}
		common.LogWarn("寫入持久化資料失敗",
			zap.String("domain", domain),
			zap.Error(err),
		)
	}
	return nil
}
