package auth

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// PermissionCache 权限缓存
type PermissionCache struct {
	cache *sync.Map
	ttl   time.Duration
}

// cacheEntry 缓存条目
type cacheEntry struct {
	value     bool
	expiresAt time.Time
}

// NewPermissionCache 创建权限缓存
func NewPermissionCache(ttl time.Duration) *PermissionCache {
	return &PermissionCache{
		cache: &sync.Map{},
		ttl:   ttl,
	}
}

// Get 获取缓存
func (c *PermissionCache) Get(key string) (bool, bool) {
	val, found := c.cache.Load(key)
	if !found {
		return false, false
	}

	entry := val.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.cache.Delete(key)
		return false, false
	}

	return entry.value, true
}

// Set 设置缓存
func (c *PermissionCache) Set(key string, value bool) {
	c.cache.Store(key, &cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// Delete 删除单个缓存
func (c *PermissionCache) Delete(key string) {
	c.cache.Delete(key)
}

func permissionKey(userID, relation, objectType, objectID string) string {
	return fmt.Sprintf("user:%s:%s:%s:%s", userID, relation, objectType, objectID)
}

// CachedRelationStore 带缓存的关系存储
// 只缓存 CheckPermission 结果,写操作会清除对应条目
type CachedRelationStore struct {
	store RelationStore
	cache *PermissionCache
}

// NewCachedRelationStore 创建带缓存的关系存储
func NewCachedRelationStore(store RelationStore, cache *PermissionCache) *CachedRelationStore {
	return &CachedRelationStore{store: store, cache: cache}
}

// CheckPermission 检查权限(带缓存)
func (c *CachedRelationStore) CheckPermission(ctx context.Context, userID, relation, objectType, objectID string) (bool, error) {
	key := permissionKey(userID, relation, objectType, objectID)
	if value, found := c.cache.Get(key); found {
		return value, nil
	}

	allowed, err := c.store.CheckPermission(ctx, userID, relation, objectType, objectID)
	if err != nil {
		return false, err
	}

	c.cache.Set(key, allowed)
	return allowed, nil
}

// SetRelation 设置权限关系(清除相关缓存)
func (c *CachedRelationStore) SetRelation(ctx context.Context, userID, relation, objectType, objectID string) error {
	if err := c.store.SetRelation(ctx, userID, relation, objectType, objectID); err != nil {
		return err
	}
	c.cache.Delete(permissionKey(userID, relation, objectType, objectID))
	return nil
}
