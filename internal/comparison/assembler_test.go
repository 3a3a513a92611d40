// internal/comparison/assembler_test.go
package comparison_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackpick/stackpick-backend/internal/comparison"
	"github.com/stackpick/stackpick-backend/internal/models"
)

// fakeFetcher answers from a fixed score table and can run a hook before
// returning, to simulate a selection changing while a fetch is in flight.
type fakeFetcher struct {
	scores     map[uuid.UUID]int
	err        error
	calls      int
	beforeDone func(call int)
}

func (f *fakeFetcher) EnrichedByIDs(_ context.Context, ids []uuid.UUID) ([]comparison.EnrichedSummary, error) {
	f.calls++
	if f.beforeDone != nil {
		f.beforeDone(f.calls)
	}
	if f.err != nil {
		return nil, f.err
	}

	out := make([]comparison.EnrichedSummary, 0, len(ids))
	for _, id := range ids {
		score, ok := f.scores[id]
		if !ok {
			continue
		}
		out = append(out, comparison.EnrichedSummary{ID: id, OverallScore: score})
	}
	return out, nil
}

func (f *fakeFetcher) CategoryMetrics(context.Context, models.CategoryKey, []uuid.UUID) (*comparison.MetricTable, error) {
	return &comparison.MetricTable{
		Definitions: []comparison.MetricColumn{},
		Values:      map[uuid.UUID]map[string]comparison.MetricCell{},
	}, nil
}

func TestAssembleEmptySelection(t *testing.T) {
	assembler := comparison.NewAssembler(&fakeFetcher{}, testLogger())
	store := newTestStore(t)

	view := assembler.Assemble(context.Background(), store)
	assert.Empty(t, view.Products)
	assert.False(t, view.Degraded)
}

func TestAssemblePreservesSelectionOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := summary(models.CategoryHR, "first")
	second := summary(models.CategoryHR, "second")
	require.Equal(t, comparison.ResultAdded, store.Add(ctx, first))
	require.Equal(t, comparison.ResultAdded, store.Add(ctx, second))

	fetcher := &fakeFetcher{scores: map[uuid.UUID]int{first.ID: 80, second.ID: 95}}
	view := comparison.NewAssembler(fetcher, testLogger()).Assemble(ctx, store)

	assert.Equal(t, models.CategoryHR, view.Category)
	require.Len(t, view.Products, 2)
	assert.Equal(t, first.ID, view.Products[0].ID)
	assert.Equal(t, second.ID, view.Products[1].ID)
	assert.Equal(t, 80, view.Products[0].OverallScore)
	assert.NotNil(t, view.Metrics)
}

func TestAssembleDropsUnresolvedIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	kept := summary(models.CategoryLegal, "kept")
	gone := summary(models.CategoryLegal, "deleted meanwhile")
	require.Equal(t, comparison.ResultAdded, store.Add(ctx, kept))
	require.Equal(t, comparison.ResultAdded, store.Add(ctx, gone))

	fetcher := &fakeFetcher{scores: map[uuid.UUID]int{kept.ID: 70}}
	view := comparison.NewAssembler(fetcher, testLogger()).Assemble(ctx, store)

	require.Len(t, view.Products, 1)
	assert.Equal(t, kept.ID, view.Products[0].ID)
}

func TestAssembleDiscardsSupersededFetch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	stays := summary(models.CategoryDevTools, "stays")
	removed := summary(models.CategoryDevTools, "removed mid-fetch")
	require.Equal(t, comparison.ResultAdded, store.Add(ctx, stays))
	require.Equal(t, comparison.ResultAdded, store.Add(ctx, removed))

	fetcher := &fakeFetcher{scores: map[uuid.UUID]int{stays.ID: 88, removed.ID: 42}}
	fetcher.beforeDone = func(call int) {
		// The user removes a product while the first fetch is in flight.
		if call == 1 {
			require.True(t, store.Remove(ctx, removed.ID))
		}
	}

	view := comparison.NewAssembler(fetcher, testLogger()).Assemble(ctx, store)

	// The stale first response never reaches the view; the retry sees only
	// the surviving product.
	assert.Equal(t, 2, fetcher.calls)
	assert.False(t, view.Degraded)
	require.Len(t, view.Products, 1)
	assert.Equal(t, stays.ID, view.Products[0].ID)
}

func TestAssembleDegradesOnFetchError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := summary(models.CategoryMarketing, "CampaignKit")
	require.Equal(t, comparison.ResultAdded, store.Add(ctx, p))

	fetcher := &fakeFetcher{err: errors.New("catalog unavailable")}
	view := comparison.NewAssembler(fetcher, testLogger()).Assemble(ctx, store)

	assert.True(t, view.Degraded)
	assert.Equal(t, models.CategoryMarketing, view.Category)
	require.Len(t, view.Summaries, 1)
	assert.Equal(t, p.ID, view.Summaries[0].ID)
	assert.Empty(t, view.Products)
}

func TestAssembleGivesUpAfterRepeatedSupersession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := summary(models.CategoryHR, "PeopleHub")
	require.Equal(t, comparison.ResultAdded, store.Add(ctx, p))

	fetcher := &fakeFetcher{scores: map[uuid.UUID]int{p.ID: 75}}
	fetcher.beforeDone = func(int) {
		// Every fetch is superseded by another mutation.
		store.SetActiveCategory(ctx, models.CategoryHR)
	}

	view := comparison.NewAssembler(fetcher, testLogger()).Assemble(ctx, store)

	assert.True(t, view.Degraded)
	require.Len(t, view.Summaries, 1)
	assert.Equal(t, p.ID, view.Summaries[0].ID)
}
