package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/piwi3910/FrameCalc/internal/logger"
	"github.com/piwi3910/FrameCalc/internal/model"
)

// Document names used in load errors and logs.
const (
	DocumentProducts = "products"
	DocumentRules    = "rules"
)

var (
	ErrAlreadyLoaded = errors.New("catalog: load already attempted")
	ErrNotArray      = errors.New("catalog: document is not an array")
)

// Source provides the two catalog documents.
type Source interface {
	FetchProducts(ctx context.Context) ([]model.Product, error)
	FetchRules(ctx context.Context) ([]model.CalculationRule, error)
}

// LoadError reports a failure to fetch or parse one catalog document.
type LoadError struct {
	Document string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("catalog: load %s: %v", e.Document, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewSource picks a FileSource when both file paths are configured, an HTTPSource otherwise.
func NewSource(cfg model.AppConfig, log *logger.Logger) Source {
	if cfg.UsesFiles() {
		return NewFileSource(cfg.ProductsFile, cfg.RulesFile, log)
	}
	return NewHTTPSource(cfg, log)
}

func decodeJSONArray[T any](data []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotArray
	}
	var out []T
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeYAMLSequence[T any](data []byte) ([]T, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.SequenceNode {
		return nil, ErrNotArray
	}
	var out []T
	if err := doc.Content[0].Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
