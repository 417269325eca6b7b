package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FieldKind is the scalar type of a House column.
type FieldKind string

const (
	// KindString columns hold text.
	KindString FieldKind = "string"
	// KindFloat columns hold float64 values.
	KindFloat FieldKind = "float"
	// KindInt columns hold integers; integral decimals are accepted on input.
	KindInt FieldKind = "int"
)

// Field describes one House column (every column except id). Exactly one of
// the accessors is set, matching Kind.
type Field struct {
	Name string
	Kind FieldKind

	str  func(*House) *string
	flt  func(*House) *float64
	intg func(*House) *int
}

// Fields lists the House columns in source column order.
var Fields = []Field{
	stringField("date", func(h *House) *string { return &h.Date }),
	floatField("price", func(h *House) *float64 { return &h.Price }),
	floatField("bedrooms", func(h *House) *float64 { return &h.Bedrooms }),
	floatField("bathrooms", func(h *House) *float64 { return &h.Bathrooms }),
	intField("sqft_living", func(h *House) *int { return &h.SqftLiving }),
	intField("sqft_lot", func(h *House) *int { return &h.SqftLot }),
	floatField("floors", func(h *House) *float64 { return &h.Floors }),
	intField("waterfront", func(h *House) *int { return &h.Waterfront }),
	intField("view", func(h *House) *int { return &h.View }),
	intField("condition", func(h *House) *int { return &h.Condition }),
	intField("sqft_above", func(h *House) *int { return &h.SqftAbove }),
	intField("sqft_basement", func(h *House) *int { return &h.SqftBasement }),
	intField("yr_built", func(h *House) *int { return &h.YrBuilt }),
	intField("yr_renovated", func(h *House) *int { return &h.YrRenovated }),
	stringField("street", func(h *House) *string { return &h.Street }),
	stringField("city", func(h *House) *string { return &h.City }),
	stringField("statezip", func(h *House) *string { return &h.StateZip }),
	stringField("country", func(h *House) *string { return &h.Country }),
}

func stringField(name string, fn func(*House) *string) Field {
	return Field{Name: name, Kind: KindString, str: fn}
}

func floatField(name string, fn func(*House) *float64) Field {
	return Field{Name: name, Kind: KindFloat, flt: fn}
}

func intField(name string, fn func(*House) *int) Field {
	return Field{Name: name, Kind: KindInt, intg: fn}
}

// FieldNames returns the column names in source order.
func FieldNames() []string {
	names := make([]string, len(Fields))
	for i, f := range Fields {
		names[i] = f.Name
	}
	return names
}

// Dest returns a pointer to the field inside h, suitable for sql.Rows.Scan.
func (f Field) Dest(h *House) any {
	switch f.Kind {
	case KindString:
		return f.str(h)
	case KindFloat:
		return f.flt(h)
	default:
		return f.intg(h)
	}
}

// Value returns the field value of h.
func (f Field) Value(h House) any {
	switch f.Kind {
	case KindString:
		return *f.str(&h)
	case KindFloat:
		return *f.flt(&h)
	default:
		return *f.intg(&h)
	}
}

// Format renders the field of h as text, the inverse of Parse.
func (f Field) Format(h House) string {
	switch f.Kind {
	case KindString:
		return *f.str(&h)
	case KindFloat:
		return strconv.FormatFloat(*f.flt(&h), 'f', -1, 64)
	default:
		return strconv.Itoa(*f.intg(&h))
	}
}

// Parse coerces raw text into the field of h. Integer columns accept
// integral floats such as "3.0".
func (f Field) Parse(h *House, raw string) error {
	switch f.Kind {
	case KindString:
		*f.str(h) = raw
		return nil
	case KindFloat:
		v, err := ParseFloat(raw)
		if err != nil {
			return err
		}
		*f.flt(h) = v
		return nil
	default:
		v, err := ParseInt(raw)
		if err != nil {
			return err
		}
		*f.intg(h) = v
		return nil
	}
}

// ParseFloat parses a finite decimal value, ignoring surrounding whitespace.
// NaN and infinities are rejected.
func ParseFloat(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("value is not a valid float: %q", raw)
	}
	return v, nil
}

// ParseInt parses an integer value; integral decimals are accepted.
func ParseInt(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if v, err := strconv.Atoi(trimmed); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) || f >= 1<<63 || f < -(1<<63) {
		return 0, fmt.Errorf("value is not a valid integer: %q", raw)
	}
	return int(f), nil
}
