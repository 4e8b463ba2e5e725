package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/piwi3910/FrameCalc/internal/gate"
	"github.com/piwi3910/FrameCalc/internal/logger"
	"github.com/piwi3910/FrameCalc/internal/model"
)

// sheetLength is the reference sheet length in meters.
const sheetLength = 1.0

// Catalog resolves the names and keys a calculation refers to.
type Catalog interface {
	ProductByTypeAndName(t model.ObjectType, name string) (model.Product, bool)
	FirstProductByType(t model.ObjectType) (model.Product, bool)
	RuleByTypeAndName(t model.ObjectType, name string) (model.CalculationRule, bool)
	RuleByTypeAndKey(t model.ObjectType, key string) (model.CalculationRule, bool)
}

// ResultsNotifier receives each completed calculation.
type ResultsNotifier interface {
	NotifyResults(c model.Calculation)
}

// Calculator computes the material list and cost of a frame.
type Calculator struct {
	catalog  Catalog
	notifier ResultsNotifier
	log      *logger.Logger

	last *model.Calculation
	now  func() time.Time
}

func New(catalog Catalog, notifier ResultsNotifier, log *logger.Logger) *Calculator {
	return &Calculator{
		catalog:  catalog,
		notifier: notifier,
		log:      logger.OrNop(log).With("component", "engine"),
		now:      time.Now,
	}
}

// selection is the set of catalog entries one calculation uses.
type selection struct {
	sheet     model.Product
	pipe      model.Product
	screw     model.Product
	strength  model.CalculationRule
	screwRule model.CalculationRule

	sheetWidth float64 // m
	pipeWidth  float64 // mm
	step       float64 // m
	density    float64 // screws per m²
}

func (c *Calculator) resolve(in model.UserDataToCalculate) (selection, error) {
	var sel selection
	var ok bool

	if sel.sheet, ok = c.catalog.ProductByTypeAndName(model.TypeSheet, in.Sheet); !ok {
		return sel, notFound(model.TypeSheet, in.Sheet)
	}
	if sel.pipe, ok = c.catalog.ProductByTypeAndName(model.TypePipe, in.Pipe); !ok {
		return sel, notFound(model.TypePipe, in.Pipe)
	}
	if sel.strength, ok = c.catalog.RuleByTypeAndName(model.TypeFrame, in.Strength); !ok {
		return sel, notFound(model.TypeFrame, in.Strength)
	}
	if sel.screw, ok = c.catalog.FirstProductByType(model.TypeScrew); !ok {
		return sel, notFound(model.TypeScrew, "")
	}
	if sel.sheet.Material == nil {
		return sel, missing(model.TypeSheet, sel.sheet.Name, "material")
	}
	if sel.screwRule, ok = c.catalog.RuleByTypeAndKey(model.TypeScrew, *sel.sheet.Material); !ok {
		return sel, notFound(model.TypeScrew, *sel.sheet.Material)
	}

	if sel.sheet.Width == nil {
		return sel, missing(model.TypeSheet, sel.sheet.Name, "width")
	}
	if sel.pipe.Width == nil {
		return sel, missing(model.TypePipe, sel.pipe.Name, "width")
	}
	if sel.strength.Step == nil {
		return sel, missing(model.TypeFrame, sel.strength.Name, "step")
	}
	if sel.screwRule.Value == nil {
		return sel, missing(model.TypeScrew, sel.screwRule.Key, "value")
	}
	if *sel.sheet.Width <= 0 {
		return sel, missing(model.TypeSheet, sel.sheet.Name, "positive width")
	}
	if *sel.strength.Step <= 0 {
		return sel, missing(model.TypeFrame, sel.strength.Name, "positive step")
	}
	if *sel.pipe.Width < 0 {
		return sel, missing(model.TypePipe, sel.pipe.Name, "non-negative width")
	}
	sel.sheetWidth = *sel.sheet.Width
	sel.pipeWidth = *sel.pipe.Width
	sel.step = *sel.strength.Step
	sel.density = *sel.screwRule.Value

	// Both sides of a cell must stay positive once the pipe is taken off.
	pipe := sel.pipeWidth / 1000
	if math.Min(sel.step, sel.sheetWidth)-2*pipe <= 0 || sheetLength-2*pipe <= 0 {
		return sel, missing(model.TypePipe, sel.pipe.Name, "width below half the frame step")
	}
	return sel, nil
}

// Calculate computes the frame layout, the three material rows and the
// total cost for in. On error nothing is stored and no listener is notified.
//
// Costs are taken from the unrounded quantities and rounded to cents; the
// row quantities are rounded up to whole units afterwards.
func (c *Calculator) Calculate(in model.UserDataToCalculate) (model.Calculation, error) {
	if !validDimension(in.Length) || !validDimension(in.Width) {
		return model.Calculation{}, fmt.Errorf("%w: length=%v width=%v", ErrInvalidDimension, in.Length, in.Width)
	}

	sel, err := c.resolve(in)
	if err != nil {
		c.log.Warn("calculation rejected", "error", err)
		return model.Calculation{}, err
	}

	layout := computeLayout(sel, in.Length, in.Width)
	if !layoutFinite(layout, in.Length*in.Width, layout.NumberSheets*sel.sheet.Price,
		layout.OverallPipeLength*sel.pipe.Price, layout.OverallScrews*sel.screw.Price) {
		err := fmt.Errorf("%w: length=%v width=%v overflows the layout", ErrInvalidDimension, in.Length, in.Width)
		c.log.Warn("calculation rejected", "error", err)
		return model.Calculation{}, err
	}

	sheetCost := round2(layout.NumberSheets * sel.sheet.Price)
	pipeCost := round2(layout.OverallPipeLength * sel.pipe.Price)
	screwCost := round2(layout.OverallScrews * sel.screw.Price)

	materials := []model.MaterialCalculationResult{
		{Name: sel.sheet.Name, Unit: sel.sheet.Unit, OverallMaterial: ceilQuantity(layout.NumberSheets), TotalCost: sheetCost},
		{Name: sel.pipe.Name, Unit: sel.pipe.Unit, OverallMaterial: ceilQuantity(layout.OverallPipeLength), TotalCost: pipeCost},
		{Name: sel.screw.Name, Unit: sel.screw.Unit, OverallMaterial: ceilQuantity(layout.OverallScrews), TotalCost: screwCost},
	}

	calc := model.Calculation{
		ID:        model.NewCalculationID(),
		CreatedAt: c.now(),
		Input:     in,
		Product: model.ProductData{
			FrameArea: in.Length * in.Width,
			MiniFrame: model.MiniFrame{
				Length: sheetLength - 2*layout.PipeWidth,
				Width:  layout.Step - 2*layout.PipeWidth,
			},
			TotalCost: sumCosts(sheetCost, pipeCost, screwCost),
		},
		Materials: materials,
		Layout:    layout,
	}

	c.last = &calc
	c.log.Info("calculation complete", "id", calc.ID, "sheets", materials[0].OverallMaterial, "total_cost", calc.Product.TotalCost)

	if c.notifier != nil {
		c.notifier.NotifyResults(calc)
	}
	return calc, nil
}

// CalculateRaw converts raw form input and calculates it. Callers should
// have checked raw with a gate first.
func (c *Calculator) CalculateRaw(raw model.RawUserFormData) (model.Calculation, error) {
	return c.Calculate(gate.Transform(raw))
}

func computeLayout(sel selection, length, width float64) model.FrameLayout {
	pipeWidth := sel.pipeWidth / 1000
	step := math.Min(sel.step, sel.sheetWidth)
	perSheet := math.Floor(sel.sheetWidth / step)

	miniFrameSize := (sheetLength - 2*pipeWidth) * (step - 2*pipeWidth)
	numberMiniFrames := length * width / miniFrameSize
	numberSheets := numberMiniFrames / perSheet

	// Vertical lines are not rounded up, horizontal lines are.
	vertical := width/sheetLength + 1
	horizontal := math.Ceil(length/step) + 1

	verticalLength := length - horizontal*pipeWidth
	horizontalLength := width - vertical*pipeWidth

	return model.FrameLayout{
		PipeWidth:            pipeWidth,
		SheetLength:          sheetLength,
		Step:                 step,
		MiniFramesPerSheet:   perSheet,
		MiniFrameSize:        miniFrameSize,
		NumberMiniFrames:     numberMiniFrames,
		NumberSheets:         numberSheets,
		VerticalLines:        vertical,
		HorizontalLines:      horizontal,
		VerticalLineLength:   verticalLength,
		HorizontalLineLength: horizontalLength,
		OverallPipeLength:    verticalLength*vertical + horizontalLength*horizontal,
		OverallScrews:        numberMiniFrames * miniFrameSize * sel.density,
	}
}

// Results returns the material rows of the last calculation, or nil.
func (c *Calculator) Results() []model.MaterialCalculationResult {
	if c.last == nil {
		return nil
	}
	return c.last.Materials
}

// MiniFrame returns the cell size of the last calculation.
func (c *Calculator) MiniFrame() (model.MiniFrame, bool) {
	if c.last == nil {
		return model.MiniFrame{}, false
	}
	return c.last.Product.MiniFrame, true
}

// ProductDataResult returns the summary of the last calculation.
func (c *Calculator) ProductDataResult() (model.ProductData, bool) {
	if c.last == nil {
		return model.ProductData{}, false
	}
	return c.last.Product, true
}

// Last returns the last calculation.
func (c *Calculator) Last() (model.Calculation, bool) {
	if c.last == nil {
		return model.Calculation{}, false
	}
	return *c.last, true
}

func validDimension(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

func layoutFinite(l model.FrameLayout, extra ...float64) bool {
	values := append([]float64{
		l.MiniFrameSize, l.NumberMiniFrames, l.NumberSheets,
		l.VerticalLines, l.HorizontalLines,
		l.VerticalLineLength, l.HorizontalLineLength,
		l.OverallPipeLength, l.OverallScrews,
	}, extra...)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// round2 rounds v to two decimals, halves away from zero.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func sumCosts(costs ...float64) float64 {
	total := decimal.Zero
	for _, c := range costs {
		total = total.Add(decimal.NewFromFloat(c))
	}
	return total.Round(2).InexactFloat64()
}

func ceilQuantity(v float64) int {
	return int(math.Ceil(v))
}
