package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PriceKind tags which variant a Price holds.
type PriceKind string

const (
	PriceFixed PriceKind = "fixed"
	PriceRange PriceKind = "range"
)

var (
	ErrPriceNotPositive = errors.New("price must be greater than zero")
	ErrPriceRangeOrder  = errors.New("price range minimum must not exceed maximum")
	ErrPriceNotFinite   = errors.New("price must be a finite number")
)

// Price is either a single amount or a {min,max} range. The zero value means
// "no price" and encodes to JSON null.
type Price struct {
	kind PriceKind
	min  float64
	max  float64
}

// Fixed returns a single-amount price.
func Fixed(amount float64) Price {
	return Price{kind: PriceFixed, min: amount, max: amount}
}

// Range returns a price range.
func Range(min, max float64) Price {
	return Price{kind: PriceRange, min: min, max: max}
}

// PriceFromParts rebuilds a Price from its storage columns.
func PriceFromParts(kind string, min, max float64) (Price, error) {
	switch PriceKind(kind) {
	case PriceFixed:
		return Fixed(min), nil
	case PriceRange:
		return Range(min, max), nil
	case "":
		return Price{}, nil
	default:
		return Price{}, fmt.Errorf("unknown price kind %q", kind)
	}
}

// Parts returns the storage columns for p.
func (p Price) Parts() (kind string, min, max float64) {
	return string(p.kind), p.min, p.max
}

func (p Price) Kind() PriceKind { return p.kind }
func (p Price) IsZero() bool    { return p.kind == "" }
func (p Price) IsRange() bool   { return p.kind == PriceRange }

// Amount is the fixed amount, or the lower bound for a range.
func (p Price) Amount() float64 { return p.min }

func (p Price) Bounds() (min, max float64) { return p.min, p.max }

// Midpoint is the amount used for order totals.
func (p Price) Midpoint() float64 {
	switch p.kind {
	case PriceFixed:
		return p.min
	case PriceRange:
		return (p.min + p.max) / 2
	}
	return 0
}

func (p Price) Validate() error {
	if !finite(p.min) || !finite(p.max) {
		return ErrPriceNotFinite
	}
	switch p.kind {
	case PriceFixed:
		if !(p.min > 0) {
			return ErrPriceNotPositive
		}
	case PriceRange:
		if !(p.min > 0) || !(p.max > 0) {
			return ErrPriceNotPositive
		}
		if p.min > p.max {
			return ErrPriceRangeOrder
		}
	default:
		return ErrPriceNotPositive
	}
	return nil
}

// DisplayValue renders the price in rupees with en-IN digit grouping.
func (p Price) DisplayValue() string {
	switch p.kind {
	case PriceFixed:
		return "₹" + FormatINR(p.min)
	case PriceRange:
		return "₹" + FormatINR(p.min) + " - ₹" + FormatINR(p.max)
	}
	return "₹0"
}

func (p Price) String() string { return p.DisplayValue() }

func (p Price) MarshalJSON() ([]byte, error) {
	switch p.kind {
	case PriceFixed:
		return json.Marshal(p.min)
	case PriceRange:
		return json.Marshal(struct {
			Min float64 `json:"min"`
			Max float64 `json:"max"`
		}{p.min, p.max})
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts a number, a numeric string, {"min","max"} or null.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = Price{}
		return nil
	}
	switch data[0] {
	case '{':
		var r struct {
			Min *float64 `json:"min"`
			Max *float64 `json:"max"`
		}
		if err := json.Unmarshal(data, &r); err != nil {
			return fmt.Errorf("price: %w", err)
		}
		if r.Min == nil || r.Max == nil {
			return errors.New("price: range needs both min and max")
		}
		*p = Range(*r.Min, *r.Max)
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("price: %w", err)
		}
		if strings.TrimSpace(s) == "" {
			*p = Price{}
			return nil
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("price: %w", err)
		}
		if !finite(v) {
			return fmt.Errorf("price: %w", ErrPriceNotFinite)
		}
		*p = Fixed(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("price: %w", err)
	}
	*p = Fixed(v)
	return nil
}

func finite(v float64) bool { return !math.IsInf(v, 0) && !math.IsNaN(v) }

// FormatINR groups digits the Indian way (12,34,567) and keeps at most two
// decimals.
func FormatINR(v float64) string {
	neg := v < 0
	v = math.Abs(v)
	s := strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	var grouped string
	if len(intPart) <= 3 {
		grouped = intPart
	} else {
		head, tail := intPart[:len(intPart)-3], intPart[len(intPart)-3:]
		var parts []string
		for len(head) > 2 {
			parts = append([]string{head[len(head)-2:]}, parts...)
			head = head[:len(head)-2]
		}
		if head != "" {
			parts = append([]string{head}, parts...)
		}
		grouped = strings.Join(parts, ",") + "," + tail
	}
	if frac != "" {
		grouped += "." + frac
	}
	if neg {
		grouped = "-" + grouped
	}
	return grouped
}
