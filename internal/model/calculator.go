package model

import (
	"time"

	"github.com/google/uuid"
)

// RawUserFormData is the string-keyed form record handed over by the presentation layer.
type RawUserFormData struct {
	Sheet    string `json:"sheet"`
	Pipe     string `json:"pipe"`
	Length   string `json:"length"`
	Width    string `json:"width"`
	Strength string `json:"strength"`
}

// Complete reports whether every field is non-empty.
func (r RawUserFormData) Complete() bool {
	return r.Sheet != "" && r.Pipe != "" && r.Length != "" && r.Width != "" && r.Strength != ""
}

// UserDataToCalculate is the typed calculation input.
// Length and Width are meters; NaN marks a value that failed integer coercion.
type UserDataToCalculate struct {
	Sheet    string  `json:"sheet"`
	Pipe     string  `json:"pipe"`
	Strength string  `json:"strength"`
	Length   float64 `json:"length"`
	Width    float64 `json:"width"`
}

// MaterialCalculationResult is one row of the material table.
type MaterialCalculationResult struct {
	Name            string  `json:"name"`
	Unit            string  `json:"unit"`
	OverallMaterial int     `json:"overall_material"` // Quantity rounded up to whole units
	TotalCost       float64 `json:"total_cost"`       // Cost of the unrounded quantity, 2 dp
}

// MiniFrame is the net size of one tiled cell in meters.
type MiniFrame struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
}

// Area returns the cell area in m².
func (mf MiniFrame) Area() float64 {
	return mf.Length * mf.Width
}

// ProductData is the aggregate summary of a calculation.
type ProductData struct {
	FrameArea float64   `json:"frame_area"` // m²
	MiniFrame MiniFrame `json:"mini_frame"`
	TotalCost float64   `json:"total_cost"` // Sum of row costs, 2 dp
}

// FrameLayout holds the unrounded intermediate values of the tiling.
// Lengths are meters, MiniFrameSize is m². Step is already clamped to the
// sheet width. VerticalLines is not rounded while HorizontalLines is.
type FrameLayout struct {
	PipeWidth            float64 `json:"pipe_width"`
	SheetLength          float64 `json:"sheet_length"`
	Step                 float64 `json:"step"`
	MiniFramesPerSheet   float64 `json:"mini_frames_per_sheet"`
	MiniFrameSize        float64 `json:"mini_frame_size"`
	NumberMiniFrames     float64 `json:"number_mini_frames"`
	NumberSheets         float64 `json:"number_sheets"`
	VerticalLines        float64 `json:"vertical_lines"`
	HorizontalLines      float64 `json:"horizontal_lines"`
	VerticalLineLength   float64 `json:"vertical_line_length"`
	HorizontalLineLength float64 `json:"horizontal_line_length"`
	OverallPipeLength    float64 `json:"overall_pipe_length"`
	OverallScrews        float64 `json:"overall_screws"`
}

// Calculation is one complete result set produced by the engine.
type Calculation struct {
	ID        string                      `json:"id"`
	CreatedAt time.Time                   `json:"created_at"`
	Input     UserDataToCalculate         `json:"input"`
	Product   ProductData                 `json:"product"`
	Materials []MaterialCalculationResult `json:"materials"`
	Layout    FrameLayout                 `json:"layout"`
}

// NewCalculationID returns a short random identifier for a result set.
func NewCalculationID() string {
	return uuid.New().String()[:8]
}
