package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/FrameCalc/internal/model"
)

type countingNotifier struct {
	calls int
}

func (n *countingNotifier) NotifyStaticData() { n.calls++ }

// fakeSource serves fixed documents. When gate is non-nil both fetches
// block on it after signalling started.
type fakeSource struct {
	products   []model.Product
	rules      []model.CalculationRule
	productErr error
	ruleErr    error
	started    chan struct{}
	gate       chan struct{}
}

func (f *fakeSource) wait(ctx context.Context) error {
	if f.gate == nil {
		return nil
	}
	select {
	case f.started <- struct{}{}:
	default:
	}
	select {
	case <-f.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeSource) FetchProducts(ctx context.Context) ([]model.Product, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.products, f.productErr
}

func (f *fakeSource) FetchRules(ctx context.Context) ([]model.CalculationRule, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.rules, f.ruleErr
}

func testdataSource() *FileSource {
	return NewFileSource(filepath.Join("testdata", "products.json"), filepath.Join("testdata", "rules.json"), nil)
}

func loadedStore(t *testing.T) (*Store, *countingNotifier) {
	t.Helper()
	n := &countingNotifier{}
	s := NewStore(testdataSource(), n, nil)
	require.NoError(t, s.Load(context.Background()))
	return s, n
}

func TestStoreBeforeLoad(t *testing.T) {
	s := NewStore(testdataSource(), nil, nil)

	assert.Equal(t, StateUninitialized, s.State())
	assert.NotEqual(t, StateReady, s.State())
	assert.Empty(t, s.Sheets())
	assert.Empty(t, s.Pipes())
	assert.Empty(t, s.Strengths())

	var fl model.FrameLimit
	var ok bool
	assert.NotPanics(t, func() { fl, ok = s.FrameLimit() })
	assert.False(t, ok)
	assert.False(t, fl.Contains(5, 5))

	_, found := s.RuleByTypeAndKey(model.TypeScrew, "plastic")
	assert.False(t, found)
}

func TestStoreLoadNotifiesOnce(t *testing.T) {
	s, n := loadedStore(t)

	assert.Equal(t, StateReady, s.State())
	assert.Equal(t, 1, n.calls)
	assert.NoError(t, s.lastLoadError())

	err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyLoaded)
	assert.Equal(t, 1, n.calls, "a rejected second load must not notify")
}

func TestStoreViews(t *testing.T) {
	s, _ := loadedStore(t)

	sheets := s.Sheets()
	require.Len(t, sheets, 2)
	assert.Equal(t, "Polycarbonate 1.2", sheets[0].Name)
	assert.Equal(t, "plastic", *sheets[0].Material)

	pipes := s.Pipes()
	require.Len(t, pipes, 2)
	assert.Equal(t, 20.0, *pipes[0].Width)

	strengths := s.Strengths()
	require.Len(t, strengths, 3)
	assert.Equal(t, []string{"Light", "Medium", "Strong"}, []string{strengths[0].Name, strengths[1].Name, strengths[2].Name})

	assert.Empty(t, s.ProductsByType("UNKNOWN"))
}

func TestStoreViewsAreMemoized(t *testing.T) {
	s, _ := loadedStore(t)

	first := s.Sheets()
	second := s.Sheets()
	require.NotEmpty(t, first)
	assert.Same(t, &first[0], &second[0], "second call must return the cached slice")
	assert.True(t, s.productViews[model.TypeSheet].cached())
}

func TestStoreEmptyViewBeforeLoadIsNotCached(t *testing.T) {
	s := NewStore(testdataSource(), nil, nil)
	assert.Empty(t, s.Sheets())
	assert.False(t, s.productViews[model.TypeSheet].cached())

	require.NoError(t, s.Load(context.Background()))
	assert.Len(t, s.Sheets(), 2)
}

func TestStoreInvalidateRecomputes(t *testing.T) {
	s, _ := loadedStore(t)

	before := s.Sheets()
	_, _ = s.FrameLimit()
	require.True(t, s.frameLimit.cached())

	s.Invalidate()
	assert.False(t, s.productViews[model.TypeSheet].cached())
	assert.False(t, s.frameLimit.cached())

	after := s.Sheets()
	assert.Equal(t, before, after)
	assert.NotSame(t, &before[0], &after[0])
}

func TestStoreFrameLimit(t *testing.T) {
	s, _ := loadedStore(t)

	fl, ok := s.FrameLimit()
	require.True(t, ok)
	assert.Equal(t, model.Range{Min: 1, Max: 50}, *fl.Length)
	assert.Equal(t, model.Range{Min: 1, Max: 20}, *fl.Width)
}

func TestStoreFrameLimitIncomplete(t *testing.T) {
	src := &fakeSource{
		rules: []model.CalculationRule{
			{Type: model.TypeSize, Key: model.KeyLength, Min: model.FloatPtr(1), Max: model.FloatPtr(10)},
		},
	}
	s := NewStore(src, nil, nil)
	require.NoError(t, s.Load(context.Background()))

	fl, ok := s.FrameLimit()
	assert.False(t, ok)
	require.NotNil(t, fl.Length)
	assert.Nil(t, fl.Width)
}

func TestStoreLookups(t *testing.T) {
	s, _ := loadedStore(t)

	rule, ok := s.RuleByTypeAndKey(model.TypeScrew, "metal")
	require.True(t, ok)
	assert.Equal(t, 10.0, *rule.Value)

	_, ok = s.RuleByTypeAndKey(model.TypeScrew, "wood")
	assert.False(t, ok)

	strength, ok := s.RuleByTypeAndName(model.TypeFrame, "Strong")
	require.True(t, ok)
	assert.Equal(t, 0.3, *strength.Step)

	pipe, ok := s.ProductByTypeAndName(model.TypePipe, "Pipe 15x15")
	require.True(t, ok)
	assert.Equal(t, 4.0, pipe.Price)

	_, ok = s.ProductByTypeAndName(model.TypeSheet, "Pipe 15x15")
	assert.False(t, ok, "names resolve within their own type")

	screw, ok := s.FirstProductByType(model.TypeScrew)
	require.True(t, ok)
	assert.Equal(t, "Screw 3.5x25", screw.Name)
}

func TestStoreLoadFailure(t *testing.T) {
	boom := errors.New("boom")
	n := &countingNotifier{}
	s := NewStore(&fakeSource{ruleErr: boom}, n, nil)

	err := s.Load(context.Background())
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, DocumentRules, loadErr.Document)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, StateFailed, s.State())
	assert.Equal(t, err, s.lastLoadError())
	assert.Equal(t, 0, n.calls)

	_, ok := s.FrameLimit()
	assert.False(t, ok)
	assert.Empty(t, s.Sheets())

	assert.ErrorIs(t, s.Load(context.Background()), ErrAlreadyLoaded, "failed state is terminal")
}

func TestStoreLoadingState(t *testing.T) {
	src := &fakeSource{
		products: []model.Product{{Type: model.TypeSheet, Name: "S"}},
		rules: []model.CalculationRule{
			{Type: model.TypeSize, Key: model.KeyLength, Min: model.FloatPtr(1), Max: model.FloatPtr(10)},
			{Type: model.TypeSize, Key: model.KeyWidth, Min: model.FloatPtr(1), Max: model.FloatPtr(10)},
		},
		started: make(chan struct{}, 2),
		gate:    make(chan struct{}),
	}
	s := NewStore(src, nil, nil)

	done := make(chan error, 1)
	go func() { done <- s.Load(context.Background()) }()

	select {
	case <-src.started:
	case <-time.After(time.Second):
		t.Fatal("source was never called")
	}

	assert.Equal(t, StateLoading, s.State())
	assert.Empty(t, s.Sheets())
	_, ok := s.FrameLimit()
	assert.False(t, ok)
	assert.ErrorIs(t, s.Load(context.Background()), ErrAlreadyLoaded)

	close(src.gate)
	require.NoError(t, <-done)

	assert.Equal(t, StateReady, s.State())
	assert.Len(t, s.Sheets(), 1)
	_, ok = s.FrameLimit()
	assert.True(t, ok)
}

func TestStoreLoadCancelled(t *testing.T) {
	src := &fakeSource{started: make(chan struct{}, 2), gate: make(chan struct{})}
	s := NewStore(src, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Load(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateFailed, s.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Uninitialized", StateUninitialized.String())
	assert.Equal(t, "Loading", StateLoading.String())
	assert.Equal(t, "Ready", StateReady.String())
	assert.Equal(t, "Failed", StateFailed.String())
}

func TestStoreDocuments(t *testing.T) {
	s := NewStore(testdataSource(), nil, nil)
	products, rules := s.Documents()
	assert.Empty(t, products)
	assert.Empty(t, rules)

	require.NoError(t, s.Load(context.Background()))
	products, rules = s.Documents()
	assert.Len(t, products, 5)
	assert.Len(t, rules, 7)

	products[0].Name = "changed"
	assert.Equal(t, "Polycarbonate 1.2", s.Sheets()[0].Name, "documents are copies")
}
