// Package gate decides whether raw form input may be submitted for calculation.
package gate

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/piwi3910/FrameCalc/internal/logger"
	"github.com/piwi3910/FrameCalc/internal/model"
)

// LimitSource provides the permissible frame size. ok is false until the
// catalog is ready or when a bound is missing.
type LimitSource interface {
	FrameLimit() (model.FrameLimit, bool)
}

// Gate evaluates raw form input against the catalog's frame limits.
// It holds no state of its own.
type Gate struct {
	limits LimitSource
	log    *logger.Logger
}

func New(limits LimitSource, log *logger.Logger) *Gate {
	return &Gate{limits: limits, log: logger.OrNop(log).With("component", "gate")}
}

// Evaluate reports whether raw is complete and its length and width lie
// inside the frame limits, bounds inclusive. A non-numeric dimension or an
// unloaded catalog keeps the gate closed.
func (g *Gate) Evaluate(raw model.RawUserFormData) bool {
	if !raw.Complete() {
		g.log.Debug("gate closed", "reason", "incomplete")
		return false
	}

	fl, ok := g.limits.FrameLimit()
	if !ok {
		g.log.Debug("gate closed", "reason", "limits not loaded")
		return false
	}

	length := ParseInt(raw.Length)
	width := ParseInt(raw.Width)
	if !fl.Contains(length, width) {
		g.log.Debug("gate closed", "reason", "out of range", "length", raw.Length, "width", raw.Width)
		return false
	}
	return true
}

// Transform converts raw form input into calculation input. Dimensions that
// are not integers become NaN.
func Transform(raw model.RawUserFormData) model.UserDataToCalculate {
	return model.UserDataToCalculate{
		Sheet:    raw.Sheet,
		Pipe:     raw.Pipe,
		Strength: raw.Strength,
		Length:   ParseInt(raw.Length),
		Width:    ParseInt(raw.Width),
	}
}

// ParseInt reads a base-10 integer prefix of s. Leading whitespace and a
// single sign are accepted and anything after the digits is ignored, so
// "12.5" is 12 and "7m" is 7. It returns NaN when s has no leading digits.
func ParseInt(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	sign := ""
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = "-"
		}
		s = s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return math.NaN()
	}

	// Digit runs past int64 range still parse, as a float.
	v, err := strconv.ParseFloat(sign+s[:end], 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
