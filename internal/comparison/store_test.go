// internal/comparison/store_test.go
package comparison_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackpick/stackpick-backend/internal/cache"
	"github.com/stackpick/stackpick-backend/internal/comparison"
	"github.com/stackpick/stackpick-backend/internal/models"
)

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(log)
}

func newTestStore(t *testing.T) *comparison.Store {
	t.Helper()
	return comparison.NewStore(context.Background(), cache.NewMemoryStore(), "comparison:test", testLogger())
}

func summary(category models.CategoryKey, name string) comparison.ProductSummary {
	return comparison.ProductSummary{
		ID:       uuid.New(),
		Name:     name,
		Price:    4900,
		Category: category,
		Rating:   4.5,
	}
}

func TestAddActivatesCategory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := summary(models.CategoryHR, "PeopleHub")
	require.Equal(t, comparison.ResultAdded, store.Add(ctx, p))

	state := store.State()
	require.NotNil(t, state.ActiveCategory)
	assert.Equal(t, models.CategoryHR, *state.ActiveCategory)
	require.Len(t, state.ProductsByCategory[models.CategoryHR], 1)
	assert.Equal(t, p.ID, state.ProductsByCategory[models.CategoryHR][0].ID)
}

func TestAddDuplicateReportsExists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := summary(models.CategoryLegal, "ClauseWorks")
	require.Equal(t, comparison.ResultAdded, store.Add(ctx, p))
	assert.Equal(t, comparison.ResultExists, store.Add(ctx, p))
	assert.Len(t, store.State().ProductsByCategory[models.CategoryLegal], 1)
}

func TestAddEnforcesCategoryCapacity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < comparison.MaxPerCategory; i++ {
		require.Equal(t, comparison.ResultAdded, store.Add(ctx, summary(models.CategoryDevTools, "tool")))
	}
	assert.Equal(t, comparison.ResultFull, store.Add(ctx, summary(models.CategoryDevTools, "one too many")))

	// Capacity is per category: another category still accepts products.
	assert.Equal(t, comparison.ResultAdded, store.Add(ctx, summary(models.CategoryMarketing, "CampaignKit")))
}

func TestAddRejectsUnknownCategory(t *testing.T) {
	store := newTestStore(t)

	result := store.Add(context.Background(), comparison.ProductSummary{ID: uuid.New(), Category: "gaming"})
	assert.Equal(t, comparison.ResultNoCategory, result)
	assert.Nil(t, store.State().ActiveCategory)
}

func TestRemoveSwitchesActiveToFirstNonEmpty(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	hr := summary(models.CategoryHR, "PeopleHub")
	dev := summary(models.CategoryDevTools, "ShipFast")
	require.Equal(t, comparison.ResultAdded, store.Add(ctx, hr))
	require.Equal(t, comparison.ResultAdded, store.Add(ctx, dev))

	// devtools is active; emptying it moves the cursor to hr, the first
	// non-empty category in stable order.
	require.True(t, store.Remove(ctx, dev.ID))

	state := store.State()
	require.NotNil(t, state.ActiveCategory)
	assert.Equal(t, models.CategoryHR, *state.ActiveCategory)
}

func TestRemoveLastProductClearsActive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := summary(models.CategoryHR, "PeopleHub")
	require.Equal(t, comparison.ResultAdded, store.Add(ctx, p))
	require.True(t, store.Remove(ctx, p.ID))

	assert.Nil(t, store.State().ActiveCategory)
}

func TestRemoveUnknownProduct(t *testing.T) {
	store := newTestStore(t)
	assert.False(t, store.Remove(context.Background(), uuid.New()))
}

func TestClearResetsEverything(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.Equal(t, comparison.ResultAdded, store.Add(ctx, summary(models.CategoryHR, "a")))
	require.Equal(t, comparison.ResultAdded, store.Add(ctx, summary(models.CategoryLegal, "b")))

	store.Clear(ctx)

	state := store.State()
	assert.Nil(t, state.ActiveCategory)
	for _, cat := range models.AllCategories {
		assert.Empty(t, state.ProductsByCategory[cat])
	}
}

func TestClearCategoryKeepsActiveCursor(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.Equal(t, comparison.ResultAdded, store.Add(ctx, summary(models.CategoryMarketing, "CampaignKit")))
	store.ClearCategory(ctx, models.CategoryMarketing)

	state := store.State()
	assert.Empty(t, state.ProductsByCategory[models.CategoryMarketing])
	require.NotNil(t, state.ActiveCategory)
	assert.Equal(t, models.CategoryMarketing, *state.ActiveCategory)
}

func TestSetActiveCategoryAllowsEmptyTab(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.SetActiveCategory(ctx, models.CategoryLegal)

	state := store.State()
	require.NotNil(t, state.ActiveCategory)
	assert.Equal(t, models.CategoryLegal, *state.ActiveCategory)
	assert.Empty(t, state.ProductsByCategory[models.CategoryLegal])
}

func TestStatePersistsAcrossStores(t *testing.T) {
	kv := cache.NewMemoryStore()
	ctx := context.Background()

	first := comparison.NewStore(ctx, kv, "comparison:session", testLogger())
	hr := summary(models.CategoryHR, "PeopleHub")
	dev := summary(models.CategoryDevTools, "ShipFast")
	require.Equal(t, comparison.ResultAdded, first.Add(ctx, hr))
	require.Equal(t, comparison.ResultAdded, first.Add(ctx, dev))

	// A new store over the same key reconstructs the exact selection.
	second := comparison.NewStore(ctx, kv, "comparison:session", testLogger())
	state := second.State()
	require.NotNil(t, state.ActiveCategory)
	assert.Equal(t, models.CategoryDevTools, *state.ActiveCategory)
	require.Len(t, state.ProductsByCategory[models.CategoryHR], 1)
	assert.Equal(t, hr.ID, state.ProductsByCategory[models.CategoryHR][0].ID)
	require.Len(t, state.ProductsByCategory[models.CategoryDevTools], 1)
	assert.Equal(t, dev.ID, state.ProductsByCategory[models.CategoryDevTools][0].ID)
}

func TestMalformedPersistedStateStartsFresh(t *testing.T) {
	kv := cache.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "comparison:bad", []byte("{not json")))

	store := comparison.NewStore(ctx, kv, "comparison:bad", testLogger())
	state := store.State()
	assert.Nil(t, state.ActiveCategory)
	for _, cat := range models.AllCategories {
		assert.Empty(t, state.ProductsByCategory[cat])
	}
}

// failingKV rejects writes; mutations must still succeed against it.
type failingKV struct{}

func (failingKV) Get(context.Context, string) ([]byte, error) {
	return nil, comparison.ErrNotFound
}

func (failingKV) Set(context.Context, string, []byte) error {
	return errors.New("storage down")
}

func TestPersistenceFailureDoesNotFailMutation(t *testing.T) {
	store := comparison.NewStore(context.Background(), failingKV{}, "comparison:down", testLogger())

	result := store.Add(context.Background(), summary(models.CategoryHR, "PeopleHub"))
	assert.Equal(t, comparison.ResultAdded, result)
	assert.Len(t, store.State().ProductsByCategory[models.CategoryHR], 1)
}

func TestObserversReceiveSnapshots(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var snapshots []comparison.State
	store.Subscribe(func(s comparison.State) {
		snapshots = append(snapshots, s)
	})

	p := summary(models.CategoryHR, "PeopleHub")
	require.Equal(t, comparison.ResultAdded, store.Add(ctx, p))
	require.True(t, store.Remove(ctx, p.ID))

	require.Len(t, snapshots, 2)
	assert.Len(t, snapshots[0].ProductsByCategory[models.CategoryHR], 1)
	assert.Empty(t, snapshots[1].ProductsByCategory[models.CategoryHR])
}

func TestStateReturnsDeepCopy(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.Equal(t, comparison.ResultAdded, store.Add(ctx, summary(models.CategoryHR, "PeopleHub")))

	state := store.State()
	state.ProductsByCategory[models.CategoryHR][0].Name = "mutated"
	*state.ActiveCategory = models.CategoryLegal

	fresh := store.State()
	assert.Equal(t, "PeopleHub", fresh.ProductsByCategory[models.CategoryHR][0].Name)
	assert.Equal(t, models.CategoryHR, *fresh.ActiveCategory)
}

func TestRevisionIncrementsOnMutation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	before := store.Revision()
	require.Equal(t, comparison.ResultAdded, store.Add(ctx, summary(models.CategoryHR, "a")))
	after := store.Revision()
	assert.Greater(t, after, before)

	// Rejected adds are not mutations.
	assert.Equal(t, comparison.ResultNoCategory, store.Add(ctx, comparison.ProductSummary{ID: uuid.New()}))
	assert.Equal(t, after, store.Revision())
}
