// Package export writes calculation results to XLSX, PDF and DXF files.
package export

import (
	"errors"
	"math"

	"github.com/piwi3910/FrameCalc/internal/model"
)

// Grid is the pipe layout of a frame in meters with the origin at one
// corner. Width runs along X and length along Y.
type Grid struct {
	Width  float64
	Length float64
	Xs     []float64 // Positions of the lines running along the length
	Ys     []float64 // Positions of the lines running along the width
}

// NewGrid places lines every sheet length across the width and every step
// along the length, closing both directions with the frame edge.
func NewGrid(calc model.Calculation) (Grid, error) {
	l := calc.Layout
	if l.SheetLength <= 0 || l.Step <= 0 {
		return Grid{}, errors.New("calculation has no layout")
	}
	return Grid{
		Width:  calc.Input.Width,
		Length: calc.Input.Length,
		Xs:     linePositions(calc.Input.Width, l.SheetLength),
		Ys:     linePositions(calc.Input.Length, l.Step),
	}, nil
}

func linePositions(total, pitch float64) []float64 {
	n := int(math.Ceil(total/pitch - 1e-9))
	out := make([]float64, 0, n+1)
	for i := 0; i < n; i++ {
		out = append(out, float64(i)*pitch)
	}
	return append(out, total)
}

// QuoteSummary is the compact description of a result encoded into the PDF QR code.
type QuoteSummary struct {
	ID        string       `json:"id"`
	Sheet     string       `json:"sheet"`
	Pipe      string       `json:"pipe"`
	Strength  string       `json:"strength"`
	Length    float64      `json:"length_m"`
	Width     float64      `json:"width_m"`
	Materials []SummaryRow `json:"materials"`
	TotalCost float64      `json:"total_cost"`
}

// SummaryRow is one material line of a QuoteSummary.
type SummaryRow struct {
	Name     string  `json:"name"`
	Quantity int     `json:"qty"`
	Unit     string  `json:"unit"`
	Cost     float64 `json:"cost"`
}

// Summarize builds the QR payload for calc.
func Summarize(calc model.Calculation) QuoteSummary {
	s := QuoteSummary{
		ID:        calc.ID,
		Sheet:     calc.Input.Sheet,
		Pipe:      calc.Input.Pipe,
		Strength:  calc.Input.Strength,
		Length:    calc.Input.Length,
		Width:     calc.Input.Width,
		TotalCost: calc.Product.TotalCost,
	}
	for _, m := range calc.Materials {
		s.Materials = append(s.Materials, SummaryRow{Name: m.Name, Quantity: m.OverallMaterial, Unit: m.Unit, Cost: m.TotalCost})
	}
	return s
}
