package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/piwi3910/FrameCalc/internal/logger"
	"github.com/piwi3910/FrameCalc/internal/model"
)

func TestFileSourceJSON(t *testing.T) {
	src := testdataSource()

	products, err := src.FetchProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 5)
	assert.Equal(t, model.TypeSheet, products[0].Type)
	assert.Nil(t, products[4].Width, "screws carry no width")

	rules, err := src.FetchRules(context.Background())
	require.NoError(t, err)
	assert.Len(t, rules, 7)
}

func TestFileSourceYAML(t *testing.T) {
	src := NewFileSource(filepath.Join("testdata", "products.yaml"), filepath.Join("testdata", "rules.yml"), nil)

	products, err := src.FetchProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "plastic", *products[0].Material)
	assert.Equal(t, 20.0, *products[1].Width)

	rules, err := src.FetchRules(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 4)
	assert.Equal(t, 0.3, *rules[2].Step)
}

func TestFileSourceNotArray(t *testing.T) {
	src := NewFileSource(filepath.Join("testdata", "object.json"), filepath.Join("testdata", "object.yaml"), nil)

	_, err := src.FetchProducts(context.Background())
	assert.ErrorIs(t, err, ErrNotArray)

	_, err = src.FetchRules(context.Background())
	assert.ErrorIs(t, err, ErrNotArray)
}

func TestFileSourceMissingFile(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "missing.json"), "", nil)

	_, err := src.FetchProducts(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileSourceMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("[{"), 0644))

	_, err := NewFileSource(path, path, nil).FetchProducts(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotArray)
}

func TestFileSourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testdataSource().FetchRules(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewSourcePrefersFiles(t *testing.T) {
	cfg := model.DefaultAppConfig()
	assert.IsType(t, &HTTPSource{}, NewSource(cfg, nil))

	cfg.ProductsFile = "p.json"
	assert.IsType(t, &HTTPSource{}, NewSource(cfg, nil), "both paths are required")

	cfg.RulesFile = "r.json"
	assert.IsType(t, &FileSource{}, NewSource(cfg, nil))
}

func TestFileSourceCSV(t *testing.T) {
	src := NewFileSource(filepath.Join("testdata", "products.csv"), filepath.Join("testdata", "rules.csv"), nil)
	s := NewStore(src, nil, nil)
	require.NoError(t, s.Load(context.Background()))

	sheets := s.Sheets()
	require.Len(t, sheets, 1)
	assert.Equal(t, 1.2, *sheets[0].Width)
	assert.Equal(t, "plastic", *sheets[0].Material)

	fl, ok := s.FrameLimit()
	require.True(t, ok)
	assert.Equal(t, 20.0, fl.Width.Max)

	rule, ok := s.RuleByTypeAndKey(model.TypeScrew, "plastic")
	require.True(t, ok)
	assert.Equal(t, 2.0, *rule.Value)
}

func TestFileSourceLogsImportWarnings(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	path := filepath.Join("testdata", "products.csv")
	_, err := NewFileSource(path, "", log).FetchProducts(context.Background())
	require.NoError(t, err)

	entries := logs.FilterMessage("catalog import warning").All()
	require.NotEmpty(t, entries)
	fields := entries[0].ContextMap()
	assert.Equal(t, path, fields["path"])
	assert.Equal(t, "catalog.file", fields["component"])
	assert.Contains(t, fields["warning"], "semicolon")
}

func TestFileSourceCSVWithBadRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")
	require.NoError(t, os.WriteFile(path, []byte("type,name,price\nSHEET,Steel,cheap\n"), 0644))

	_, err := NewFileSource(path, "", nil).FetchProducts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Row 2")
}
