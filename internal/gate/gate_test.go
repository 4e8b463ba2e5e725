package gate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/piwi3910/FrameCalc/internal/model"
)

type staticLimits struct {
	fl model.FrameLimit
	ok bool
}

func (s staticLimits) FrameLimit() (model.FrameLimit, bool) { return s.fl, s.ok }

func loadedLimits() staticLimits {
	return staticLimits{
		fl: model.FrameLimit{
			Length: &model.Range{Min: 1, Max: 50},
			Width:  &model.Range{Min: 1, Max: 20},
		},
		ok: true,
	}
}

func validInput() model.RawUserFormData {
	return model.RawUserFormData{
		Sheet:    "Polycarbonate 1.2",
		Pipe:     "Pipe 20x20",
		Length:   "2",
		Width:    "1",
		Strength: "Strong",
	}
}

func TestEvaluateValid(t *testing.T) {
	g := New(loadedLimits(), nil)
	assert.True(t, g.Evaluate(validInput()))
}

func TestEvaluateMissingField(t *testing.T) {
	g := New(loadedLimits(), nil)

	blank := []func(*model.RawUserFormData){
		func(r *model.RawUserFormData) { r.Sheet = "" },
		func(r *model.RawUserFormData) { r.Pipe = "" },
		func(r *model.RawUserFormData) { r.Length = "" },
		func(r *model.RawUserFormData) { r.Width = "" },
		func(r *model.RawUserFormData) { r.Strength = "" },
	}
	for i, clear := range blank {
		raw := validInput()
		clear(&raw)
		assert.False(t, g.Evaluate(raw), "field %d blank", i)
	}
	assert.False(t, g.Evaluate(model.RawUserFormData{}))
}

func TestEvaluateBounds(t *testing.T) {
	g := New(loadedLimits(), nil)

	tests := []struct {
		name   string
		length string
		width  string
		want   bool
	}{
		{"length min", "1", "5", true},
		{"length max", "50", "5", true},
		{"width min", "5", "1", true},
		{"width max", "5", "20", true},
		{"both corners", "50", "20", true},
		{"length below", "0", "5", false},
		{"length above", "51", "5", false},
		{"width below", "5", "0", false},
		{"width above", "5", "21", false},
		{"negative", "-3", "5", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validInput()
			raw.Length = tt.length
			raw.Width = tt.width
			assert.Equal(t, tt.want, g.Evaluate(raw))
		})
	}
}

func TestEvaluateNonNumeric(t *testing.T) {
	g := New(loadedLimits(), nil)

	for _, v := range []string{"abc", "x12", " ", ".5", "-"} {
		raw := validInput()
		raw.Length = v
		assert.False(t, g.Evaluate(raw), "length %q", v)

		raw = validInput()
		raw.Width = v
		assert.False(t, g.Evaluate(raw), "width %q", v)
	}
}

func TestEvaluateTruncatesLikeIntegerParse(t *testing.T) {
	g := New(loadedLimits(), nil)

	raw := validInput()
	raw.Length = "50.9"
	assert.True(t, g.Evaluate(raw), "fraction is dropped before the bound check")

	raw.Length = "0.9"
	assert.False(t, g.Evaluate(raw))
}

func TestEvaluateBeforeLoad(t *testing.T) {
	g := New(staticLimits{}, nil)
	assert.False(t, g.Evaluate(validInput()))

	half := staticLimits{fl: model.FrameLimit{Length: &model.Range{Min: 1, Max: 50}}}
	assert.False(t, New(half, nil).Evaluate(validInput()))
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"42", 42},
		{"  7", 7},
		{"\t\n9", 9},
		{"+3", 3},
		{"-3", -3},
		{"12.5", 12},
		{"7m", 7},
		{"007", 7},
		{"99999999999999999999", 1e20},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseInt(tt.in), tt.in)
	}

	for _, in := range []string{"", "abc", "+", "-x", ".5", "m7", "--1"} {
		assert.True(t, math.IsNaN(ParseInt(in)), in)
	}
}

func TestTransform(t *testing.T) {
	raw := validInput()
	raw.Width = "1.2"

	got := Transform(raw)
	assert.Equal(t, "Polycarbonate 1.2", got.Sheet)
	assert.Equal(t, "Pipe 20x20", got.Pipe)
	assert.Equal(t, "Strong", got.Strength)
	assert.Equal(t, 2.0, got.Length)
	assert.Equal(t, 1.0, got.Width)

	raw.Length = "abc"
	assert.True(t, math.IsNaN(Transform(raw).Length))
}
