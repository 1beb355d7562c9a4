package main

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrBadQuantity is returned for option values that are not a number with a known length unit.
var ErrBadQuantity = errors.New("bad length quantity")

// Millimetres per unit. Bare numbers are already millimetres.
var lengthUnits = map[string]float64{
	"":    1,
	"nm":  1e-6,
	"um":  1e-3,
	"µm":  1e-3,
	"mm":  1,
	"cm":  10,
	"m":   1000,
	"mil": 0.0254,
	"in":  25.4,
}

var quantityPattern = regexp.MustCompile(`^([-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?)\s*([a-zA-Zµ]*)$`)

// Quantity is an unparsed option value such as "0.25mm", "200um", "cpw_width" or 3.
type Quantity string

// UnmarshalJSON accepts both strings and bare numbers.
func (q *Quantity) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("quantity %s: %w", s, err)
		}
		*q = Quantity(unquoted)
		return nil
	}
	if s == "null" {
		*q = ""
		return nil
	}
	*q = Quantity(s)
	return nil
}

// UnmarshalYAML accepts any scalar.
func (q *Quantity) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: quantity must be a scalar: %w", value.Line, ErrBadQuantity)
	}
	*q = Quantity(value.Value)
	return nil
}

// LengthParser resolves quantities to millimetres. Vars maps design variable
// names (cpw_width, ...) to their own quantities.
type LengthParser struct {
	Vars map[string]string
}

// defaultVariables are the design variables every route can refer to.
var defaultVariables = map[string]string{
	"cpw_width": "10um",
	"cpw_gap":   "6um",
}

// Parse converts q to millimetres. An empty quantity yields fallback.
func (p LengthParser) Parse(q Quantity, fallback float64) (float64, error) {
	return p.parse(string(q), fallback, 0)
}

func (p LengthParser) parse(s string, fallback float64, depth int) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	if depth > 8 {
		return 0, fmt.Errorf("%q: variable chain too deep: %w", s, ErrBadQuantity)
	}

	if v, ok := p.lookup(s); ok {
		return p.parse(v, fallback, depth+1)
	}

	m := quantityPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%q: %w", s, ErrBadQuantity)
	}
	scale, ok := lengthUnits[strings.ToLower(m[2])]
	if !ok {
		return 0, fmt.Errorf("%q: unknown unit %q: %w", s, m[2], ErrBadQuantity)
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, ErrBadQuantity)
	}
	return value * scale, nil
}

func (p LengthParser) lookup(name string) (string, bool) {
	if v, ok := p.Vars[name]; ok {
		return v, true
	}
	v, ok := defaultVariables[name]
	return v, ok
}
