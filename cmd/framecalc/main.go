// FrameCalc - frame material calculator
//
// Loads the product and rule catalog, checks the requested frame against
// the catalog's size limits and prints the sheets, pipe and screws needed
// with their cost. Results can be exported to XLSX, PDF, DXF or a JSON
// snapshot that also carries the catalog.
//
// Build:
//   go build -o framecalc ./cmd/framecalc
//
// Example:
//   framecalc -list
//   framecalc -sheet "Polycarbonate 1.2" -pipe "Pipe 20x20" -strength Strong -length 4 -width 2 -pdf quote.pdf

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/piwi3910/FrameCalc/internal/catalog"
	"github.com/piwi3910/FrameCalc/internal/config"
	"github.com/piwi3910/FrameCalc/internal/engine"
	"github.com/piwi3910/FrameCalc/internal/export"
	"github.com/piwi3910/FrameCalc/internal/gate"
	"github.com/piwi3910/FrameCalc/internal/logger"
	"github.com/piwi3910/FrameCalc/internal/model"
	"github.com/piwi3910/FrameCalc/internal/observer"
	"github.com/piwi3910/FrameCalc/internal/project"
)

type options struct {
	configPath   string
	envFile      string
	productsFile string
	rulesFile    string
	fromSnapshot string
	logMode      string
	list         bool

	raw model.RawUserFormData

	xlsxPath     string
	pdfPath      string
	dxfPath      string
	snapshotPath string
}

func main() {
	must(run(context.Background(), os.Args[1:], os.Stdout))
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("framecalc", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "config file (default ~/.framecalc/config.json)")
	fs.StringVar(&o.envFile, "env", "", "env file to load instead of ./.env")
	fs.StringVar(&o.productsFile, "products", "", "local products document (JSON, YAML, CSV or XLSX)")
	fs.StringVar(&o.rulesFile, "rules", "", "local rules document (JSON, YAML, CSV or XLSX)")
	fs.StringVar(&o.fromSnapshot, "from-snapshot", "", "load the catalog from a snapshot file")
	fs.StringVar(&o.logMode, "log-mode", "", "development|production")
	fs.BoolVar(&o.list, "list", false, "print the available sheets, pipes, strengths and size limits")

	fs.StringVar(&o.raw.Sheet, "sheet", "", "sheet name")
	fs.StringVar(&o.raw.Pipe, "pipe", "", "pipe name")
	fs.StringVar(&o.raw.Strength, "strength", "", "strength name")
	fs.StringVar(&o.raw.Length, "length", "", "frame length in meters (integer)")
	fs.StringVar(&o.raw.Width, "width", "", "frame width in meters (integer)")

	fs.StringVar(&o.xlsxPath, "xlsx", "", "write results to an XLSX file")
	fs.StringVar(&o.pdfPath, "pdf", "", "write a PDF quote")
	fs.StringVar(&o.dxfPath, "dxf", "", "write the pipe grid as DXF")
	fs.StringVar(&o.snapshotPath, "snapshot", "", "write a JSON snapshot of the result and catalog")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return o, nil
}

func run(ctx context.Context, args []string, out io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}

	var envFiles []string
	if o.envFile != "" {
		envFiles = append(envFiles, o.envFile)
	}
	configPath := o.configPath
	if configPath == "" {
		configPath = project.DefaultConfigPath()
	}
	cfg, err := config.Load(configPath, envFiles...)
	if err != nil {
		return err
	}
	if o.productsFile != "" {
		cfg.ProductsFile = o.productsFile
	}
	if o.rulesFile != "" {
		cfg.RulesFile = o.rulesFile
	}
	if o.logMode != "" {
		cfg.LogMode = o.logMode
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	var src catalog.Source
	if o.fromSnapshot != "" {
		src = project.SnapshotSource{Path: o.fromSnapshot}
	} else {
		if !cfg.UsesFiles() {
			if err := config.Require("products url", cfg.ProductsURL); err != nil {
				return err
			}
			if err := config.Require("rules url", cfg.RulesURL); err != nil {
				return err
			}
		}
		src = catalog.NewSource(cfg, log)
	}

	registry := observer.NewRegistry()
	store := catalog.NewStore(src, registry, log)
	inputGate := gate.New(store, log)
	calculator := engine.New(store, registry, log)

	registry.RegisterStaticDataListener(observer.StaticDataListenerFunc(func() {
		log.Info("catalog ready", "sheets", len(store.Sheets()), "pipes", len(store.Pipes()), "strengths", len(store.Strengths()))
	}))
	if o.list {
		registry.RegisterStaticDataListener(observer.StaticDataListenerFunc(func() {
			printOptions(out, store)
		}))
	}
	registry.RegisterResultsListener(observer.ResultsListenerFunc(func(c model.Calculation) {
		printResults(out, c)
	}))

	loadCtx := ctx
	if cfg.RequestTimeoutMs > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, time.Duration(cfg.RequestTimeoutMs)*time.Millisecond)
		defer cancel()
	}
	if err := store.Load(loadCtx); err != nil {
		return err
	}

	if o.list && o.raw == (model.RawUserFormData{}) {
		return nil
	}

	if !inputGate.Evaluate(o.raw) {
		return rejection(o.raw, store)
	}

	calc, err := calculator.CalculateRaw(o.raw)
	if err != nil {
		return err
	}

	exported, err := writeExports(o, cfg, calc, store)
	if err != nil {
		return err
	}
	if len(exported) > 0 {
		for _, p := range exported {
			cfg.AddRecentExport(p, project.RecentExportLimit)
			fmt.Fprintf(out, "exported %s\n", p)
		}
		if err := project.SaveAppConfig(configPath, cfg); err != nil {
			log.Warn("could not record recent exports", "path", configPath, "error", err)
		}
	}
	return nil
}

// rejection explains why the gate stayed closed.
func rejection(raw model.RawUserFormData, store *catalog.Store) error {
	if !raw.Complete() {
		return fmt.Errorf("-sheet, -pipe, -strength, -length and -width are all required")
	}
	fl, ok := store.FrameLimit()
	if !ok {
		return fmt.Errorf("catalog defines no frame size limits")
	}
	return fmt.Errorf("frame %sx%s m is outside the allowed size: length %g-%g m, width %g-%g m",
		raw.Length, raw.Width, fl.Length.Min, fl.Length.Max, fl.Width.Min, fl.Width.Max)
}

func writeExports(o options, cfg model.AppConfig, calc model.Calculation, store *catalog.Store) ([]string, error) {
	var written []string
	targets := []struct {
		path  string
		write func(string) error
	}{
		{o.xlsxPath, func(p string) error { return export.ExportXLSX(p, calc) }},
		{o.pdfPath, func(p string) error { return export.ExportPDF(p, calc) }},
		{o.dxfPath, func(p string) error { return export.ExportDXF(p, calc) }},
		{o.snapshotPath, func(p string) error {
			products, rules := store.Documents()
			return project.ExportSnapshot(p, project.NewSnapshot(calc, products, rules))
		}},
	}
	for _, t := range targets {
		if t.path == "" {
			continue
		}
		p := resolveExportPath(cfg.ExportDir, t.path)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return written, err
		}
		if err := t.write(p); err != nil {
			return written, fmt.Errorf("export %s: %w", p, err)
		}
		written = append(written, p)
	}
	return written, nil
}

// resolveExportPath places bare file names in the export directory.
func resolveExportPath(dir, path string) string {
	if dir == "" || filepath.IsAbs(path) || filepath.Base(path) != path {
		return path
	}
	return filepath.Join(dir, path)
}

func printOptions(out io.Writer, store *catalog.Store) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Type", "Name", "Details"})
	for _, s := range store.Sheets() {
		details := ""
		if s.Width != nil && s.Material != nil {
			details = fmt.Sprintf("%g m wide, %s, %.2f/%s", *s.Width, *s.Material, s.Price, s.Unit)
		}
		table.Append([]string{"sheet", s.Name, details})
	}
	for _, p := range store.Pipes() {
		details := ""
		if p.Width != nil {
			details = fmt.Sprintf("%g mm, %.2f/%s", *p.Width, p.Price, p.Unit)
		}
		table.Append([]string{"pipe", p.Name, details})
	}
	for _, r := range store.Strengths() {
		details := ""
		if r.Step != nil {
			details = fmt.Sprintf("step %g m", *r.Step)
		}
		table.Append([]string{"strength", r.Name, details})
	}
	if fl, ok := store.FrameLimit(); ok {
		table.Append([]string{"size", "length", fmt.Sprintf("%g-%g m", fl.Length.Min, fl.Length.Max)})
		table.Append([]string{"size", "width", fmt.Sprintf("%g-%g m", fl.Width.Min, fl.Width.Max)})
	}
	table.Render()
}

func printResults(out io.Writer, c model.Calculation) {
	mf := c.Product.MiniFrame
	fmt.Fprintf(out, "Frame %g x %g m (%.2f m²), mini-frame %.3f x %.3f m\n",
		c.Input.Length, c.Input.Width, c.Product.FrameArea, mf.Length, mf.Width)

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Material", "Unit", "Quantity", "Cost"})
	for _, row := range c.Materials {
		table.Append([]string{row.Name, row.Unit, fmt.Sprintf("%d", row.OverallMaterial), fmt.Sprintf("%.2f", row.TotalCost)})
	}
	table.SetFooter([]string{"", "", "Total", fmt.Sprintf("%.2f", c.Product.TotalCost)})
	table.Render()
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
