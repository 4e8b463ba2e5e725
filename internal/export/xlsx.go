package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/FrameCalc/internal/model"
)

// Sheet names of the XLSX export.
const (
	MaterialsSheet = "Materials"
	LayoutSheet    = "Layout"
)

// ExportXLSX writes the material rows and total of calc to one sheet and
// the unrounded layout values to another.
func ExportXLSX(path string, calc model.Calculation) error {
	if len(calc.Materials) == 0 {
		return fmt.Errorf("no materials to export")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), MaterialsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headers := []string{"material", "unit", "quantity", "total_cost"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(MaterialsSheet, cell, h)
	}

	for i, row := range calc.Materials {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(MaterialsSheet, cell, value)
		}
		set(1, row.Name)
		set(2, row.Unit)
		set(3, row.OverallMaterial)
		set(4, row.TotalCost)
	}

	totalRow := len(calc.Materials) + 2
	labelCell, _ := excelize.CoordinatesToCellName(3, totalRow)
	totalCell, _ := excelize.CoordinatesToCellName(4, totalRow)
	_ = f.SetCellValue(MaterialsSheet, labelCell, "total")
	_ = f.SetCellValue(MaterialsSheet, totalCell, calc.Product.TotalCost)

	if _, err := f.NewSheet(LayoutSheet); err != nil {
		return fmt.Errorf("create layout sheet: %w", err)
	}

	l := calc.Layout
	values := []struct {
		name  string
		value any
	}{
		{"id", calc.ID},
		{"length_m", calc.Input.Length},
		{"width_m", calc.Input.Width},
		{"frame_area_m2", calc.Product.FrameArea},
		{"pipe_width_m", l.PipeWidth},
		{"sheet_length_m", l.SheetLength},
		{"step_m", l.Step},
		{"mini_frames_per_sheet", l.MiniFramesPerSheet},
		{"mini_frame_length_m", calc.Product.MiniFrame.Length},
		{"mini_frame_width_m", calc.Product.MiniFrame.Width},
		{"mini_frame_size_m2", l.MiniFrameSize},
		{"number_mini_frames", l.NumberMiniFrames},
		{"number_sheets", l.NumberSheets},
		{"vertical_lines", l.VerticalLines},
		{"horizontal_lines", l.HorizontalLines},
		{"vertical_line_length_m", l.VerticalLineLength},
		{"horizontal_line_length_m", l.HorizontalLineLength},
		{"overall_pipe_length_m", l.OverallPipeLength},
		{"overall_screws", l.OverallScrews},
	}
	for i, v := range values {
		nameCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+1)
		_ = f.SetCellValue(LayoutSheet, nameCell, v.name)
		_ = f.SetCellValue(LayoutSheet, valueCell, v.value)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
