// Package catalog loads the product and rule documents once and serves
// memoized, read-only views of them.
package catalog

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/FrameCalc/internal/logger"
	"github.com/piwi3910/FrameCalc/internal/model"
)

// State is the load state of a Store.
type State int

const (
	StateUninitialized State = iota // Load not called yet
	StateLoading                    // Load in flight
	StateReady                      // Both documents loaded
	StateFailed                     // Load failed; terminal
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "Loading"
	case StateReady:
		return "Ready"
	case StateFailed:
		return "Failed"
	default:
		return "Uninitialized"
	}
}

// StaticDataNotifier is told once when the catalog becomes ready.
type StaticDataNotifier interface {
	NotifyStaticData()
}

// Store holds the catalog for the process lifetime.
//
// Filtered views are computed on first access after the store is ready and
// then served from cache until Invalidate is called. Before the store is
// ready every view is empty and FrameLimit reports ok=false.
type Store struct {
	source   Source
	notifier StaticDataNotifier
	log      *logger.Logger

	mu       sync.Mutex
	state    State
	loadErr  error
	products []model.Product
	rules    []model.CalculationRule

	productViews map[model.ObjectType]*cell[[]model.Product]
	ruleViews    map[model.ObjectType]*cell[[]model.CalculationRule]
	frameLimit   cell[model.FrameLimit]
}

func NewStore(src Source, notifier StaticDataNotifier, log *logger.Logger) *Store {
	return &Store{
		source:       src,
		notifier:     notifier,
		log:          logger.OrNop(log).With("component", "catalog"),
		productViews: map[model.ObjectType]*cell[[]model.Product]{},
		ruleViews:    map[model.ObjectType]*cell[[]model.CalculationRule]{},
	}
}

// Load fetches both documents and, on success, notifies static-data listeners.
// It may be called once; later calls return ErrAlreadyLoaded. A failure leaves
// the store in StateFailed.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateUninitialized {
		s.mu.Unlock()
		return ErrAlreadyLoaded
	}
	s.state = StateLoading
	s.mu.Unlock()

	var (
		products []model.Product
		rules    []model.CalculationRule
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.source.FetchProducts(gctx)
		if err != nil {
			return &LoadError{Document: DocumentProducts, Err: err}
		}
		products = p
		return nil
	})
	g.Go(func() error {
		r, err := s.source.FetchRules(gctx)
		if err != nil {
			return &LoadError{Document: DocumentRules, Err: err}
		}
		rules = r
		return nil
	})

	if err := g.Wait(); err != nil {
		s.mu.Lock()
		s.state = StateFailed
		s.loadErr = err
		s.mu.Unlock()
		s.log.Error("catalog load failed", "error", err)
		return err
	}

	s.mu.Lock()
	s.products = products
	s.rules = rules
	s.state = StateReady
	s.mu.Unlock()

	s.log.Info("catalog loaded", "products", len(products), "rules", len(rules))
	if s.notifier != nil {
		s.notifier.NotifyStaticData()
	}
	return nil
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) lastLoadError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// ProductsByType returns the memoized products of type t. Callers must not modify the slice.
func (s *Store) ProductsByType(t model.ObjectType) []model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.productViews[t]
	if !ok {
		c = &cell[[]model.Product]{}
		s.productViews[t] = c
	}
	return c.get(func() ([]model.Product, bool) {
		if s.state != StateReady {
			return []model.Product{}, false
		}
		out := []model.Product{}
		for _, p := range s.products {
			if p.Type == t {
				out = append(out, p)
			}
		}
		return out, len(out) > 0
	})
}

// RulesByType returns the memoized rules of type t. Callers must not modify the slice.
func (s *Store) RulesByType(t model.ObjectType) []model.CalculationRule {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.ruleViews[t]
	if !ok {
		c = &cell[[]model.CalculationRule]{}
		s.ruleViews[t] = c
	}
	return c.get(func() ([]model.CalculationRule, bool) {
		if s.state != StateReady {
			return []model.CalculationRule{}, false
		}
		out := []model.CalculationRule{}
		for _, r := range s.rules {
			if r.Type == t {
				out = append(out, r)
			}
		}
		return out, len(out) > 0
	})
}

func (s *Store) Sheets() []model.Product {
	return s.ProductsByType(model.TypeSheet)
}

func (s *Store) Pipes() []model.Product {
	return s.ProductsByType(model.TypePipe)
}

func (s *Store) Strengths() []model.CalculationRule {
	return s.RulesByType(model.TypeFrame)
}

// FrameLimit returns the size bounds built from SIZE rules. ok is false
// before the store is ready, after a failed load, or when a bound is missing.
func (s *Store) FrameLimit() (model.FrameLimit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fl := s.frameLimit.get(func() (model.FrameLimit, bool) {
		if s.state != StateReady {
			return model.FrameLimit{}, false
		}
		var out model.FrameLimit
		for _, r := range s.rules {
			if r.Type != model.TypeSize {
				continue
			}
			rng := &model.Range{}
			if r.Min != nil {
				rng.Min = *r.Min
			}
			if r.Max != nil {
				rng.Max = *r.Max
			}
			switch r.Key {
			case model.KeyLength:
				out.Length = rng
			case model.KeyWidth:
				out.Width = rng
			}
		}
		return out, true
	})
	return fl, fl.Complete()
}

// RuleByTypeAndKey returns the first rule matching t and key.
func (s *Store) RuleByTypeAndKey(t model.ObjectType, key string) (model.CalculationRule, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rules {
		if r.Type == t && r.Key == key {
			return r, true
		}
	}
	return model.CalculationRule{}, false
}

// RuleByTypeAndName returns the first rule of type t named name, using the memoized view.
func (s *Store) RuleByTypeAndName(t model.ObjectType, name string) (model.CalculationRule, bool) {
	for _, r := range s.RulesByType(t) {
		if r.Name == name {
			return r, true
		}
	}
	return model.CalculationRule{}, false
}

// ProductByTypeAndName returns the first product of type t named name, using the memoized view.
func (s *Store) ProductByTypeAndName(t model.ObjectType, name string) (model.Product, bool) {
	for _, p := range s.ProductsByType(t) {
		if p.Name == name {
			return p, true
		}
	}
	return model.Product{}, false
}

// FirstProductByType returns the first product of type t.
func (s *Store) FirstProductByType(t model.ObjectType) (model.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.Type == t {
			return p, true
		}
	}
	return model.Product{}, false
}

// Documents returns copies of the loaded product and rule lists. Both are
// empty until the store is ready.
func (s *Store) Documents() ([]model.Product, []model.CalculationRule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	products := append([]model.Product{}, s.products...)
	rules := append([]model.CalculationRule{}, s.rules...)
	return products, rules
}

// Invalidate drops every memoized view. The loaded documents are kept.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.productViews {
		c.reset()
	}
	for _, c := range s.ruleViews {
		c.reset()
	}
	s.frameLimit.reset()
	s.log.Debug("catalog views invalidated")
}
