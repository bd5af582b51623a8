package db

import (
	"log"
	"sync"

	"github.com/dgraph-io/ristretto"
)

// Cache keys are tracked per type so a mutation can blow away every cached
// list of that type without touching the others.
var (
	Cache         *ristretto.Cache
	HintCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
	CategoryCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
	LineItemCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
)

func InitCache() {
	var err error
	Cache, err = ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		log.Fatalf("failed to initialize cache: %v", err)
	}
}

// Event Hint Cache Functions
func SetHintCache(cacheKey string, value interface{}) {
	HintCacheKeys.Lock()
	HintCacheKeys.m[cacheKey] = struct{}{}
	HintCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

func DelHintCache(cacheKey string) {
	HintCacheKeys.Lock()
	delete(HintCacheKeys.m, cacheKey)
	HintCacheKeys.Unlock()
	Cache.Del(cacheKey)
}

func ClearAllHintCaches() {
	HintCacheKeys.Lock()
	for key := range HintCacheKeys.m {
		Cache.Del(key)
	}
	HintCacheKeys.m = make(map[string]struct{})
	HintCacheKeys.Unlock()
}

// Category Cache Functions
func SetCategoryCache(cacheKey string, value interface{}) {
	CategoryCacheKeys.Lock()
	CategoryCacheKeys.m[cacheKey] = struct{}{}
	CategoryCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

func DelCategoryCache(cacheKey string) {
	CategoryCacheKeys.Lock()
	delete(CategoryCacheKeys.m, cacheKey)
	CategoryCacheKeys.Unlock()
	Cache.Del(cacheKey)
}

func ClearAllCategoryCaches() {
	CategoryCacheKeys.Lock()
	for key := range CategoryCacheKeys.m {
		Cache.Del(key)
	}
	CategoryCacheKeys.m = make(map[string]struct{})
	CategoryCacheKeys.Unlock()
}

// Line Item Cache Functions
func SetLineItemCache(cacheKey string, value interface{}) {
	LineItemCacheKeys.Lock()
	LineItemCacheKeys.m[cacheKey] = struct{}{}
	LineItemCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

func DelLineItemCache(cacheKey string) {
	LineItemCacheKeys.Lock()
	delete(LineItemCacheKeys.m, cacheKey)
	LineItemCacheKeys.Unlock()
	Cache.Del(cacheKey)
}

func ClearAllLineItemCaches() {
	LineItemCacheKeys.Lock()
	for key := range LineItemCacheKeys.m {
		Cache.Del(key)
	}
	LineItemCacheKeys.m = make(map[string]struct{})
	LineItemCacheKeys.Unlock()
}
