package engine

import (
	"fmt"
	"math"
	"strings"
)

const (
	// GateCount is the number of gates on the wheel.
	GateCount = 64

	// LinesPerGate is the number of lines inside each gate.
	LinesPerGate = 6

	// GateWidth is the arc covered by one gate: 360/64 = 5.625 degrees.
	GateWidth = 360.0 / GateCount

	// LineWidth is the arc covered by one line: 5.625/6 = 0.9375 degrees.
	LineWidth = GateWidth / LinesPerGate
)

// MapDegree maps an absolute zodiac degree to its gate and line.
//
// The wheel is split uniformly into 64 half-open intervals [i*5.625, (i+1)*5.625),
// so a degree exactly on a boundary belongs to the gate (and line) starting there.
// Degrees at or above 360 wrap around; negative degrees are rejected.
func MapDegree(d float64) (Gate, Line, error) {
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0, 0, NewOutOfRangeDegreeError(d).WithOperation("map_degree")
	}
	if d >= 360 {
		d = math.Mod(d, 360)
	}

	gateIndex := clamp(int(math.Floor(d/GateWidth)), 0, GateCount-1)
	gateStart := float64(gateIndex) * GateWidth

	lineIndex := clamp(int(math.Floor((d-gateStart)/LineWidth)), 0, LinesPerGate-1)

	return Gate(gateIndex + 1), Line(lineIndex + 1), nil
}

// GateStart returns the first degree covered by g.
func GateStart(g Gate) float64 {
	return float64(g-1) * GateWidth
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NormalizeDegree reduces d into [0, 360).
func NormalizeDegree(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	// math.Mod of a tiny negative value can round up to exactly 360.
	if d >= 360 {
		d = 0
	}
	return d
}

// AngularDistance is the shortest arc between two longitudes, in [0, 180].
func AngularDistance(a, b float64) float64 {
	diff := math.Abs(a - b)
	return math.Min(diff, 360-diff)
}

var zodiacSigns = [12]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// zodiacIndex accepts both full names and the three-letter forms some ephemerides use.
var zodiacIndex = func() map[string]int {
	idx := make(map[string]int, 24)
	for i, name := range zodiacSigns {
		idx[strings.ToLower(name)] = i
		idx[strings.ToLower(name[:3])] = i
	}
	return idx
}()

// ZodiacSign returns the sign containing an absolute degree.
func ZodiacSign(d float64) string {
	d = NormalizeDegree(d)
	return zodiacSigns[int(d/30)%12]
}

// AbsoluteLongitude converts a sign-relative position to an absolute zodiac degree.
func AbsoluteLongitude(sign string, degreeInSign float64) (float64, error) {
	i, ok := zodiacIndex[strings.ToLower(strings.TrimSpace(sign))]
	if !ok {
		return 0, NewProviderError(fmt.Sprintf("unknown zodiac sign: %q", sign), nil).
			WithDetail("sign", sign)
	}
	if math.IsNaN(degreeInSign) || degreeInSign < 0 || degreeInSign > 30 {
		return 0, NewProviderError(fmt.Sprintf("degree %v outside sign %s", degreeInSign, sign), nil).
			WithDetail("sign", sign).
			WithDetail("degree_in_sign", degreeInSign)
	}
	return NormalizeDegree(float64(i)*30 + degreeInSign), nil
}

// PositionAt returns the sign-relative position of an absolute degree.
func PositionAt(d float64) Position {
	d = NormalizeDegree(d)
	i := int(d/30) % 12
	return Position{DegreeInSign: d - float64(i)*30, Sign: zodiacSigns[i]}
}
