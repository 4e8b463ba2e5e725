package project

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/FrameCalc/internal/model"
)

// SnapshotVersion is written into every exported snapshot.
const SnapshotVersion = "1.0.0"

// Snapshot is a calculation saved together with the catalog it was computed
// from, so it can be reproduced without the live catalog source.
type Snapshot struct {
	Version     string                  `json:"version"`
	CreatedAt   string                  `json:"created_at"`
	Calculation model.Calculation       `json:"calculation"`
	Products    []model.Product         `json:"products"`
	Rules       []model.CalculationRule `json:"rules"`
}

// NewSnapshot bundles calc with the catalog documents.
func NewSnapshot(calc model.Calculation, products []model.Product, rules []model.CalculationRule) Snapshot {
	return Snapshot{
		Version:     SnapshotVersion,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		Calculation: calc,
		Products:    products,
		Rules:       rules,
	}
}

// ExportSnapshot writes snap as indented JSON, creating parent directories.
func ExportSnapshot(exportPath string, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	if err := os.WriteFile(exportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	return nil
}

// ImportSnapshot reads a snapshot file written by ExportSnapshot.
func ImportSnapshot(importPath string) (Snapshot, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to parse snapshot file: %w", err)
	}
	if snap.Version == "" {
		return Snapshot{}, fmt.Errorf("invalid snapshot file: missing version field")
	}
	if snap.Products == nil {
		snap.Products = []model.Product{}
	}
	if snap.Rules == nil {
		snap.Rules = []model.CalculationRule{}
	}
	return snap, nil
}

// SnapshotSource serves the catalog documents saved in a snapshot file.
// It satisfies catalog.Source.
type SnapshotSource struct {
	Path string
}

func (s SnapshotSource) FetchProducts(ctx context.Context) ([]model.Product, error) {
	snap, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Products, nil
}

func (s SnapshotSource) FetchRules(ctx context.Context) ([]model.CalculationRule, error) {
	snap, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Rules, nil
}

func (s SnapshotSource) read(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	return ImportSnapshot(s.Path)
}
