// internal/comparison/assembler.go
package comparison

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stackpick/stackpick-backend/internal/models"
)

// EnrichedSummary is one column of the comparison table: base product fields
// plus current scores, fetched fresh at render time.
type EnrichedSummary struct {
	ID               uuid.UUID          `json:"id"`
	Name             string             `json:"name"`
	Tagline          string             `json:"tagline,omitempty"`
	PriceCents       int64              `json:"price_cents"`
	Category         models.CategoryKey `json:"category"`
	AverageRating    float64            `json:"average_rating"`
	ReviewCount      int64              `json:"review_count"`
	FitScore         int                `json:"fit_score"`
	FeatureScore     int                `json:"feature_score"`
	IntegrationScore int                `json:"integration_score"`
	ReviewScore      int                `json:"review_score"`
	OverallScore     int                `json:"overall_score"`
}

// MetricColumn describes one row of the comparison table.
type MetricColumn struct {
	Code     string                `json:"code"`
	Label    string                `json:"label"`
	Unit     string                `json:"unit,omitempty"`
	DataType models.MetricDataType `json:"data_type"`
}

// MetricCell is one product's value for one metric.
type MetricCell struct {
	Value    interface{}           `json:"value"`
	Label    string                `json:"label"`
	Unit     string                `json:"unit,omitempty"`
	DataType models.MetricDataType `json:"data_type"`
}

// MetricTable is a category's ordered definitions plus per-product cells.
type MetricTable struct {
	Definitions []MetricColumn                     `json:"definitions"`
	Values      map[uuid.UUID]map[string]MetricCell `json:"values"`
}

// Fetcher supplies up-to-date scores and metrics for a set of product IDs.
// Unknown IDs are omitted from results, not errored.
type Fetcher interface {
	EnrichedByIDs(ctx context.Context, ids []uuid.UUID) ([]EnrichedSummary, error)
	CategoryMetrics(ctx context.Context, category models.CategoryKey, ids []uuid.UUID) (*MetricTable, error)
}

// View is the assembled side-by-side table for the active category.
type View struct {
	Category   models.CategoryKey   `json:"category,omitempty"`
	Products   []EnrichedSummary    `json:"products"`
	Metrics    *MetricTable         `json:"metrics,omitempty"`
	// Degraded reports that enrichment failed and Summaries carries the raw
	// selection instead, so the table still renders without scores.
	Degraded  bool             `json:"degraded,omitempty"`
	Summaries []ProductSummary `json:"summaries,omitempty"`
}

// Assembler joins the comparison store's selection with freshly fetched
// scores and metrics. It never trusts data captured at add-time: scores are
// re-fetched for the selected IDs at render time.
type Assembler struct {
	fetcher Fetcher
	log     *logrus.Entry
}

func NewAssembler(fetcher Fetcher, log *logrus.Entry) *Assembler {
	return &Assembler{fetcher: fetcher, log: log}
}

// Assemble builds the view for the store's active category. A fetch whose
// selection changed while it was in flight is discarded and retried against
// the new selection, so the table never transiently shows products that are
// no longer selected. A fetch that errors falls back to the raw summaries.
func (a *Assembler) Assemble(ctx context.Context, store *Store) *View {
	const maxAttempts = 3

	for attempt := 0; attempt < maxAttempts; attempt++ {
		revision := store.Revision()
		state := store.State()

		if state.ActiveCategory == nil {
			return &View{Products: []EnrichedSummary{}}
		}
		category := *state.ActiveCategory
		summaries := state.ProductsByCategory[category]
		if len(summaries) == 0 {
			return &View{Category: category, Products: []EnrichedSummary{}}
		}

		ids := make([]uuid.UUID, len(summaries))
		for i, s := range summaries {
			ids[i] = s.ID
		}

		enriched, err := a.fetcher.EnrichedByIDs(ctx, ids)
		var table *MetricTable
		if err == nil {
			table, err = a.fetcher.CategoryMetrics(ctx, category, ids)
		}
		if err != nil {
			a.log.WithError(err).WithField("category", category).
				Warn("comparison enrichment failed, serving raw summaries")
			return &View{Category: category, Degraded: true, Summaries: summaries}
		}

		// The selection changed while the fetch was in flight: the response
		// is stale, discard it and assemble against the current selection.
		if store.Revision() != revision {
			continue
		}

		return &View{
			Category: category,
			Products: orderBySelection(summaries, enriched),
			Metrics:  table,
		}
	}

	// Mutations kept superseding the fetch; serve the raw selection rather
	// than loop forever.
	state := store.State()
	view := &View{Degraded: true}
	if state.ActiveCategory != nil {
		view.Category = *state.ActiveCategory
		view.Summaries = state.ProductsByCategory[view.Category]
	}
	return view
}

// orderBySelection returns enriched products in the order the user selected
// them. IDs the fetch did not resolve are dropped.
func orderBySelection(summaries []ProductSummary, enriched []EnrichedSummary) []EnrichedSummary {
	byID := make(map[uuid.UUID]EnrichedSummary, len(enriched))
	for _, e := range enriched {
		byID[e.ID] = e
	}

	ordered := make([]EnrichedSummary, 0, len(summaries))
	for _, s := range summaries {
		if e, ok := byID[s.ID]; ok {
			ordered = append(ordered, e)
		}
	}
	return ordered
}
