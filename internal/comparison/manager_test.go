// internal/comparison/manager_test.go
package comparison_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackpick/stackpick-backend/internal/cache"
	"github.com/stackpick/stackpick-backend/internal/comparison"
	"github.com/stackpick/stackpick-backend/internal/models"
)

func TestManagerReturnsSameStorePerSession(t *testing.T) {
	manager := comparison.NewManager(cache.NewMemoryStore(), testLogger())
	ctx := context.Background()

	a := manager.StoreFor(ctx, "session-a")
	assert.Same(t, a, manager.StoreFor(ctx, "session-a"))
	assert.NotSame(t, a, manager.StoreFor(ctx, "session-b"))
}

func TestManagerEvictReloadsPersistedState(t *testing.T) {
	kv := cache.NewMemoryStore()
	manager := comparison.NewManager(kv, testLogger())
	ctx := context.Background()

	store := manager.StoreFor(ctx, "session-a")
	p := summary(models.CategoryHR, "PeopleHub")
	require.Equal(t, comparison.ResultAdded, store.Add(ctx, p))

	manager.Evict("session-a")

	reloaded := manager.StoreFor(ctx, "session-a")
	assert.NotSame(t, store, reloaded)
	require.Len(t, reloaded.State().ProductsByCategory[models.CategoryHR], 1)
	assert.Equal(t, p.ID, reloaded.State().ProductsByCategory[models.CategoryHR][0].ID)
}
