// internal/comparison/store.go
package comparison

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stackpick/stackpick-backend/internal/models"
)

// MaxPerCategory caps each category's comparison list. The side-by-side table
// renders at most three columns.
const MaxPerCategory = 3

// ErrNotFound is returned by KeyValue implementations when a key has no
// stored value.
var ErrNotFound = errors.New("comparison: key not found")

// KeyValue is the durable store behind comparison state. Implementations are
// expected to be best-effort: the comparison store logs and swallows their
// failures.
type KeyValue interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// ProductSummary holds just enough of a product to render a comparison card
// without refetching.
type ProductSummary struct {
	ID       uuid.UUID          `json:"id"`
	Name     string             `json:"name"`
	Price    int64              `json:"price"`
	Category models.CategoryKey `json:"category"`
	Rating   float64            `json:"rating"`
}

// State is the persisted shape of a comparison selection.
type State struct {
	ProductsByCategory map[models.CategoryKey][]ProductSummary `json:"productsByCategory"`
	ActiveCategory     *models.CategoryKey                     `json:"activeCategory"`
}

func emptyState() State {
	byCategory := make(map[models.CategoryKey][]ProductSummary, len(models.AllCategories))
	for _, cat := range models.AllCategories {
		byCategory[cat] = []ProductSummary{}
	}
	return State{ProductsByCategory: byCategory}
}

// AddResult is the discriminated outcome of Store.Add. Rejections are result
// values, not errors: callers branch on them to show a user-facing message.
type AddResult string

const (
	ResultAdded      AddResult = "added"
	ResultExists     AddResult = "exists"
	ResultFull       AddResult = "full"
	ResultNoCategory AddResult = "no_category"
)

// Observer receives a snapshot of the state after every mutation.
type Observer func(State)

// Store is one session's comparison selection: up to MaxPerCategory products
// per category plus an active-category cursor. Every mutation writes the full
// state through the KeyValue store synchronously, so a reload reconstructs
// the exact prior selection. Writes that fail are logged and swallowed; the
// in-memory state stays authoritative for the session.
//
// Concurrent requests against the same Store are serialized by its mutex.
// Two sessions sharing a storage key are not coordinated: last writer wins on
// the persisted value, and neither observes the other's mutations until it
// reloads. That is a documented consistency gap, not a bug.
type Store struct {
	mu        sync.Mutex
	state     State
	revision  uint64
	kv        KeyValue
	key       string
	log       *logrus.Entry
	observers []Observer
}

// NewStore loads any prior state persisted under key. An absent key or a
// value that fails to parse yields a fresh empty state, never an error.
func NewStore(ctx context.Context, kv KeyValue, key string, log *logrus.Entry) *Store {
	s := &Store{
		state: emptyState(),
		kv:    kv,
		key:   key,
		log:   log.WithField("comparison_key", key),
	}
	s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) {
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.WithError(err).Warn("failed to load comparison state, starting fresh")
		}
		return
	}

	var loaded State
	if err := json.Unmarshal(raw, &loaded); err != nil {
		s.log.WithError(err).Warn("discarding malformed comparison state")
		return
	}
	if loaded.ProductsByCategory == nil {
		s.log.Warn("discarding comparison state with missing category map")
		return
	}

	state := emptyState()
	for _, cat := range models.AllCategories {
		list := loaded.ProductsByCategory[cat]
		if len(list) > MaxPerCategory {
			list = list[:MaxPerCategory]
		}
		state.ProductsByCategory[cat] = append([]ProductSummary{}, list...)
	}
	if loaded.ActiveCategory != nil && loaded.ActiveCategory.Valid() {
		active := *loaded.ActiveCategory
		state.ActiveCategory = &active
	}
	s.state = state
}

// Add appends the product to its category's list and makes that category
// active. Products without a resolvable category are rejected: metrics are
// category-specific, so comparison has no meaning without one.
func (s *Store) Add(ctx context.Context, product ProductSummary) AddResult {
	s.mu.Lock()

	if !product.Category.Valid() {
		s.mu.Unlock()
		return ResultNoCategory
	}

	list := s.state.ProductsByCategory[product.Category]
	for _, existing := range list {
		if existing.ID == product.ID {
			s.mu.Unlock()
			return ResultExists
		}
	}
	if len(list) >= MaxPerCategory {
		s.mu.Unlock()
		return ResultFull
	}

	s.state.ProductsByCategory[product.Category] = append(list, product)
	active := product.Category
	s.state.ActiveCategory = &active
	snapshot := s.mutated(ctx)
	s.mu.Unlock()

	s.notify(snapshot)
	return ResultAdded
}

// Remove scans every category for the ID. If removal empties the active
// category, the cursor moves to the first non-empty category in stable order
// so the UI never shows an empty table while other comparisons exist.
func (s *Store) Remove(ctx context.Context, productID uuid.UUID) bool {
	s.mu.Lock()

	removed := false
	for _, cat := range models.AllCategories {
		list := s.state.ProductsByCategory[cat]
		for i, p := range list {
			if p.ID == productID {
				s.state.ProductsByCategory[cat] = append(list[:i:i], list[i+1:]...)
				removed = true
				break
			}
		}
	}
	if !removed {
		s.mu.Unlock()
		return false
	}

	if s.state.ActiveCategory != nil && len(s.state.ProductsByCategory[*s.state.ActiveCategory]) == 0 {
		s.state.ActiveCategory = s.firstNonEmptyLocked()
	}
	snapshot := s.mutated(ctx)
	s.mu.Unlock()

	s.notify(snapshot)
	return true
}

// ClearCategory empties one category's list. The active cursor is left alone.
func (s *Store) ClearCategory(ctx context.Context, category models.CategoryKey) {
	if !category.Valid() {
		return
	}

	s.mu.Lock()
	s.state.ProductsByCategory[category] = []ProductSummary{}
	snapshot := s.mutated(ctx)
	s.mu.Unlock()

	s.notify(snapshot)
}

// Clear empties every list and resets the active category to none.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.state = emptyState()
	snapshot := s.mutated(ctx)
	s.mu.Unlock()

	s.notify(snapshot)
}

// SetActiveCategory records explicit user navigation. It deliberately does
// not require the category to have entries; navigating to an empty tab is a
// valid action.
func (s *Store) SetActiveCategory(ctx context.Context, category models.CategoryKey) {
	if !category.Valid() {
		return
	}

	s.mu.Lock()
	active := category
	s.state.ActiveCategory = &active
	snapshot := s.mutated(ctx)
	s.mu.Unlock()

	s.notify(snapshot)
}

// State returns a deep copy of the current selection.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// Revision increments on every mutation. The view assembler uses it to
// detect that a selection changed while a fetch was in flight.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Subscribe registers a callback invoked with a state snapshot after each
// mutation.
func (s *Store) Subscribe(obs Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, obs)
}

func (s *Store) firstNonEmptyLocked() *models.CategoryKey {
	for _, cat := range models.AllCategories {
		if len(s.state.ProductsByCategory[cat]) > 0 {
			active := cat
			return &active
		}
	}
	return nil
}

// mutated bumps the revision and persists; must hold the lock. Returns a
// snapshot for observer notification after unlock.
func (s *Store) mutated(ctx context.Context) State {
	s.revision++
	s.persistLocked(ctx)
	return s.copyLocked()
}

func (s *Store) persistLocked(ctx context.Context) {
	raw, err := json.Marshal(s.state)
	if err != nil {
		s.log.WithError(err).Warn("failed to encode comparison state")
		return
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		// Persistence is a convenience, not a correctness requirement: the
		// in-memory state stays authoritative and the operation succeeds.
		s.log.WithError(err).Warn("failed to persist comparison state")
	}
}

func (s *Store) copyLocked() State {
	copied := State{
		ProductsByCategory: make(map[models.CategoryKey][]ProductSummary, len(s.state.ProductsByCategory)),
	}
	for cat, list := range s.state.ProductsByCategory {
		copied.ProductsByCategory[cat] = append([]ProductSummary{}, list...)
	}
	if s.state.ActiveCategory != nil {
		active := *s.state.ActiveCategory
		copied.ActiveCategory = &active
	}
	return copied
}

func (s *Store) notify(snapshot State) {
	s.mu.Lock()
	observers := append([]Observer{}, s.observers...)
	s.mu.Unlock()

	for _, obs := range observers {
		obs(snapshot)
	}
}
