package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"

	"github.com/piwi3910/FrameCalc/internal/model"
)

// DXF layer names. Coordinates are written in millimeters.
const (
	LayerOutline = "FRAME_OUTLINE"
	LayerPipes   = "PIPE_GRID"
)

// ExportDXF draws the pipe grid of calc. The frame edge goes on the outline
// layer and the inner pipe lines on the grid layer.
func ExportDXF(path string, calc model.Calculation) error {
	grid, err := NewGrid(calc)
	if err != nil {
		return err
	}

	d := dxf.NewDrawing()
	w := grid.Width * 1000
	h := grid.Length * 1000

	if _, err := d.AddLayer(LayerOutline, color.Red, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("add layer %s: %w", LayerOutline, err)
	}
	outline := [][4]float64{
		{0, 0, w, 0},
		{w, 0, w, h},
		{w, h, 0, h},
		{0, h, 0, 0},
	}
	for _, seg := range outline {
		if _, err := d.Line(seg[0], seg[1], 0, seg[2], seg[3], 0); err != nil {
			return fmt.Errorf("draw outline: %w", err)
		}
	}

	if _, err := d.AddLayer(LayerPipes, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("add layer %s: %w", LayerPipes, err)
	}
	for _, x := range inner(grid.Xs) {
		if _, err := d.Line(x*1000, 0, 0, x*1000, h, 0); err != nil {
			return fmt.Errorf("draw grid: %w", err)
		}
	}
	for _, y := range inner(grid.Ys) {
		if _, err := d.Line(0, y*1000, 0, w, y*1000, 0); err != nil {
			return fmt.Errorf("draw grid: %w", err)
		}
	}

	return d.SaveAs(path)
}

// inner drops the first and last positions, which lie on the frame edge.
func inner(positions []float64) []float64 {
	if len(positions) <= 2 {
		return nil
	}
	return positions[1 : len(positions)-1]
}
