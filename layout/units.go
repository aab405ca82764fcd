package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for length and line-height.

// Unit represents the original unit of a length value as written in a style or element.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers, treated as mm for absolute lengths
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
)

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

var unitSuffixes = []struct {
	s string
	u Unit
}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}}

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// ToMM converts the length to millimeters. Unit-less values are already millimeters.
func (l Length) ToMM() float64 {
	switch l.Unit {
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * 25.4
	case UnitPT:
		return l.Value * PtToMm
	default:
		return l.Value
	}
}

func (l Length) ToPT() float64 { return l.ToMM() * MmToPt }

// ParseRawLengthStr parses a length string preserving its unit.
func ParseRawLengthStr(value string) Length {
	lower := strings.ToLower(strings.TrimSpace(value))
	if lower == "" {
		return Length{}
	}
	unit := UnitNone
	num := lower
	for _, suf := range unitSuffixes {
		if strings.HasSuffix(lower, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(lower, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}
	}
	return Length{Value: f, Unit: unit}
}

// ParseLength returns the length in mm, or 0 when value cannot be parsed.
func ParseLength(value string) float64 {
	return ParseRawLengthStr(value).ToMM()
}

// ParseDimension is ParseLength plus percentages of reference.
func ParseDimension(value string, reference float64) float64 {
	v := strings.TrimSpace(value)
	if num, ok := strings.CutSuffix(v, "%"); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(num), 64); err == nil {
			return reference * f / 100
		}
		return 0
	}
	return ParseLength(v)
}

// LineHeightKind distinguishes factor-based vs absolute line-height specification.
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightAbsolute
)

// LineHeightSpec preserves original author intent: either a factor (e.g., 1.2x) or an absolute length (e.g., 18pt).
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// DefaultLineHeight is 1.4x of the font size.
var DefaultLineHeight = LineHeightSpec{Kind: LineHeightFactor, Factor: 1.4}

// ParseLineHeight accepts "1.2x" or an absolute length; ok is false for empty or invalid input.
func ParseLineHeight(value string) (LineHeightSpec, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return LineHeightSpec{}, false
	}
	if factor, ok := strings.CutSuffix(v, "x"); ok {
		f, err := strconv.ParseFloat(factor, 64)
		if err != nil || f <= 0 {
			return LineHeightSpec{}, false
		}
		return LineHeightSpec{Kind: LineHeightFactor, Factor: f}, true
	}
	l := ParseRawLengthStr(v)
	if l.Value <= 0 {
		return LineHeightSpec{}, false
	}
	return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}, true
}

// ResolveMM computes the absolute line height in mm for a font size given in mm.
func (s LineHeightSpec) ResolveMM(fontSizeMM float64) float64 {
	switch s.Kind {
	case LineHeightAbsolute:
		return s.Len.ToMM()
	default:
		if s.Factor <= 0 {
			return fontSizeMM * DefaultLineHeight.Factor
		}
		return fontSizeMM * s.Factor
	}
}

// JSON returns the debug representation of the spec.
func (s LineHeightSpec) JSON() *RawLineHeightJSON {
	if s.Kind == LineHeightAbsolute {
		return &RawLineHeightJSON{Kind: "absolute", Value: s.Len.Value, Unit: UnitToString(s.Len.Unit)}
	}
	return &RawLineHeightJSON{Kind: "factor", Factor: s.Factor}
}
