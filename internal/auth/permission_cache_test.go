package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/mautops/request-gin/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRelationStore struct {
	tuples map[string]bool
	checks int
}

func newFakeRelationStore() *fakeRelationStore {
	return &fakeRelationStore{tuples: map[string]bool{}}
}

func (f *fakeRelationStore) key(userID, relation, objectType, objectID string) string {
	return userID + "|" + relation + "|" + objectType + "|" + objectID
}

func (f *fakeRelationStore) CheckPermission(ctx context.Context, userID, relation, objectType, objectID string) (bool, error) {
	f.checks++
	return f.tuples[f.key(userID, relation, objectType, objectID)], nil
}

func (f *fakeRelationStore) SetRelation(ctx context.Context, userID, relation, objectType, objectID string) error {
	f.tuples[f.key(userID, relation, objectType, objectID)] = true
	return nil
}

// TestPermissionCache_Expiration 测试缓存过期
func TestPermissionCache_Expiration(t *testing.T) {
	cache := auth.NewPermissionCache(50 * time.Millisecond)
	cache.Set("k", true)

	value, found := cache.Get("k")
	assert.True(t, found)
	assert.True(t, value)

	time.Sleep(80 * time.Millisecond)
	_, found = cache.Get("k")
	assert.False(t, found)
}

// TestCachedRelationStore 测试缓存命中与写入失效
func TestCachedRelationStore(t *testing.T) {
	ctx := context.Background()
	store := newFakeRelationStore()
	cached := auth.NewCachedRelationStore(store, auth.NewPermissionCache(time.Minute))

	allowed, err := cached.CheckPermission(ctx, "u1", auth.RelationCreator, auth.ObjectTypeRequest, "req-1")
	require.NoError(t, err)
	assert.False(t, allowed)

	_, _ = cached.CheckPermission(ctx, "u1", auth.RelationCreator, auth.ObjectTypeRequest, "req-1")
	assert.Equal(t, 1, store.checks, "second check should hit the cache")

	require.NoError(t, cached.SetRelation(ctx, "u1", auth.RelationCreator, auth.ObjectTypeRequest, "req-1"))
	allowed, err = cached.CheckPermission(ctx, "u1", auth.RelationCreator, auth.ObjectTypeRequest, "req-1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 2, store.checks)
}

// TestPermissionModel 测试授权模型包含请求类型
func TestPermissionModel(t *testing.T) {
	assert.Contains(t, auth.PermissionModel, "type request")
	assert.Contains(t, auth.PermissionModel, "define creator: [user]")
}
