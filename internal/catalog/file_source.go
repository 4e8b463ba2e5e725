package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/FrameCalc/internal/importer"
	"github.com/piwi3910/FrameCalc/internal/logger"
	"github.com/piwi3910/FrameCalc/internal/model"
)

// FileSource reads the catalog from local documents. JSON and YAML files
// hold arrays of entries; CSV and Excel files hold one entry per row.
type FileSource struct {
	ProductsPath string
	RulesPath    string
	log          *logger.Logger
}

func NewFileSource(productsPath, rulesPath string, log *logger.Logger) *FileSource {
	return &FileSource{
		ProductsPath: productsPath,
		RulesPath:    rulesPath,
		log:          logger.OrNop(log).With("component", "catalog.file"),
	}
}

func (s *FileSource) FetchProducts(ctx context.Context) ([]model.Product, error) {
	if importer.IsTabular(s.ProductsPath) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := importer.ImportProducts(s.ProductsPath)
		s.warn(s.ProductsPath, res.Warnings)
		return res.Products, res.Err()
	}
	return readDocument[model.Product](ctx, s.ProductsPath)
}

func (s *FileSource) FetchRules(ctx context.Context) ([]model.CalculationRule, error) {
	if importer.IsTabular(s.RulesPath) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := importer.ImportRules(s.RulesPath)
		s.warn(s.RulesPath, res.Warnings)
		return res.Rules, res.Err()
	}
	return readDocument[model.CalculationRule](ctx, s.RulesPath)
}

func (s *FileSource) warn(path string, warnings []string) {
	for _, w := range warnings {
		s.log.Warn("catalog import warning", "path", path, "warning", w)
	}
}

func readDocument[T any](ctx context.Context, path string) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return decodeYAMLSequence[T](data)
	default:
		return decodeJSONArray[T](data)
	}
}
