package filters

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

var (
	ErrUnknownFilter = errors.New("unknown filter")
	ErrInvalidValue  = errors.New("invalid filter value")
)

// FilterDescriptor is one filter's current setting and its valid range.
// All fields are decimal text so they bind straight into range inputs.
type FilterDescriptor struct {
	Value string `json:"value"`
	Min   string `json:"min"`
	Max   string `json:"max"`
	Step  string `json:"step"`
}

// Float returns the numeric value, or 0 if Value is not a number.
func (d FilterDescriptor) Float() float64 {
	v, _ := strconv.ParseFloat(d.Value, 64)
	return v
}

// FilterSet maps a registry filter name to its descriptor.
type FilterSet map[string]FilterDescriptor

// Clone returns a copy that shares nothing with s.
func (s FilterSet) Clone() FilterSet {
	out := make(FilterSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// IsDefault reports whether every filter holds its registry default value.
func (s FilterSet) IsDefault() bool {
	for _, def := range registry {
		if s[def.Name].Value != def.Default.Value {
			return false
		}
	}
	return true
}

// Store holds the filter state of one editing session. It is not safe for
// concurrent use; the owning session serializes access.
type Store struct {
	set FilterSet
}

// NewStore returns a store initialized with the registry defaults.
func NewStore() *Store {
	return &Store{set: Defaults()}
}

// Get returns a copy of the current filter set.
func (s *Store) Get() FilterSet {
	return s.set.Clone()
}

// Update replaces the value of name, keeping its bounds. Unknown names and
// non-numeric values leave the store untouched. Numeric values are clamped
// into [min, max] and snapped to the step grid.
func (s *Store) Update(name, value string) bool {
	if err := s.Set(name, value); err != nil {
		slog.Debug("filter update ignored", "filter", name, "value", value, "error", err)
		return false
	}
	return true
}

// Set is Update with the rejection reason returned.
func (s *Store) Set(name, value string) error {
	cur, ok := s.set[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFilter, name)
	}
	normalized, err := Normalize(cur, value)
	if err != nil {
		return err
	}
	cur.Value = normalized
	s.set[name] = cur
	return nil
}

// Reset restores registry defaults.
func (s *Store) Reset() {
	s.set = Defaults()
}

// Normalize validates value against the bounds of d and returns its
// canonical text: clamped into [min, max], snapped to the step grid.
func Normalize(d FilterDescriptor, value string) (string, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidValue, value)
	}
	lo, err := strconv.ParseFloat(d.Min, 64)
	if err != nil {
		return "", fmt.Errorf("parse min %q: %w", d.Min, err)
	}
	hi, err := strconv.ParseFloat(d.Max, 64)
	if err != nil {
		return "", fmt.Errorf("parse max %q: %w", d.Max, err)
	}
	step, err := strconv.ParseFloat(d.Step, 64)
	if err != nil || step <= 0 {
		return "", fmt.Errorf("parse step %q: %w", d.Step, ErrInvalidValue)
	}

	v = math.Max(lo, math.Min(hi, v))
	v = lo + math.Round((v-lo)/step)*step
	v = math.Max(lo, math.Min(hi, v))

	// Drop the float noise the step arithmetic leaves behind (0.1*3 etc.).
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', stepDecimals(d.Step), 64), 64)
	if rounded == 0 {
		rounded = 0 // normalizes -0
	}
	return FmtNum(rounded), nil
}

func stepDecimals(step string) int {
	if i := strings.IndexByte(step, '.'); i >= 0 {
		return len(step) - i - 1
	}
	return 0
}
