package validate

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachedLookup 带 TTL 缓存的历史决算查询
// 同一单位一轮校验会对几十个 key 查同一年份，批内命中率很高；
// 决算锁定后极少变动，短 TTL 已足够安全。
type CachedLookup struct {
	inner ActualLookup
	cache *gocache.Cache
}

// NewCachedLookup 包装底层查询
func NewCachedLookup(inner ActualLookup, ttl time.Duration) *CachedLookup {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedLookup{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// GetFinalActual 实现 ActualLookup
func (l *CachedLookup) GetFinalActual(unitID string, year int, key string) (*float64, error) {
	cacheKey := fmt.Sprintf("%s|%d|%s", unitID, year, key)
	if v, ok := l.cache.Get(cacheKey); ok {
		if v == nil {
			return nil, nil
		}
		return v.(*float64), nil
	}

	v, err := l.inner.GetFinalActual(unitID, year, key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		l.cache.Set(cacheKey, nil, gocache.DefaultExpiration)
		return nil, nil
	}
	copied := *v
	l.cache.Set(cacheKey, &copied, gocache.DefaultExpiration)
	return &copied, nil
}
