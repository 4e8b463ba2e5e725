package model

import "math"

// ObjectType is the category tag carried by both products and calculation rules.
type ObjectType string

const (
	TypeSheet ObjectType = "SHEET" // Sheet panel product
	TypePipe  ObjectType = "PIPE"  // Perimeter pipe product
	TypeScrew ObjectType = "SCREW" // Fastener product, or fastener density rule keyed by sheet material
	TypeFrame ObjectType = "FRAME" // Strength rule selecting the tiling step
	TypeSize  ObjectType = "SIZE"  // Frame size limit rule keyed by "length" or "width"
)

// Size rule keys.
const (
	KeyLength = "length"
	KeyWidth  = "width"
)

// Product is a single catalog entry.
type Product struct {
	Type     ObjectType `json:"type" yaml:"type"`
	Name     string     `json:"name" yaml:"name"`
	Material *string    `json:"material,omitempty" yaml:"material,omitempty"` // Key into SCREW rules
	Unit     string     `json:"unit" yaml:"unit"`
	Width    *float64   `json:"width,omitempty" yaml:"width,omitempty"` // m for sheets, mm for pipes
	Price    float64    `json:"price" yaml:"price"`                     // Cost per unit
}

// CalculationRule is a single configuration entry.
type CalculationRule struct {
	Type  ObjectType `json:"type" yaml:"type"`
	Key   string     `json:"key" yaml:"key"`
	Name  string     `json:"name" yaml:"name"`
	Min   *float64   `json:"min,omitempty" yaml:"min,omitempty"`     // SIZE rules
	Max   *float64   `json:"max,omitempty" yaml:"max,omitempty"`     // SIZE rules
	Step  *float64   `json:"step,omitempty" yaml:"step,omitempty"`   // FRAME rules, tiling pitch in m
	Value *float64   `json:"value,omitempty" yaml:"value,omitempty"` // SCREW rules, screws per m²
}

// Range is an inclusive [Min, Max] window.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies inside the window. NaN is never contained.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// FrameLimit holds the permissible length and width of the frame.
// An axis is nil when no SIZE rule defines it.
type FrameLimit struct {
	Length *Range `json:"length,omitempty"`
	Width  *Range `json:"width,omitempty"`
}

// Complete reports whether both axes are defined.
func (fl FrameLimit) Complete() bool {
	return fl.Length != nil && fl.Width != nil
}

// Contains reports whether length and width both lie inside their windows.
func (fl FrameLimit) Contains(length, width float64) bool {
	if !fl.Complete() {
		return false
	}
	if math.IsNaN(length) || math.IsNaN(width) {
		return false
	}
	return fl.Length.Contains(length) && fl.Width.Contains(width)
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// FloatPtr returns a pointer to f.
func FloatPtr(f float64) *float64 {
	return &f
}
