package canvas

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/gogpu/gg/scene"
)

// ErrInvalidFilter is returned for filter expressions the surface cannot
// interpret.
var ErrInvalidFilter = errors.New("invalid filter expression")

var (
	termRe   = regexp.MustCompile(`^([a-z-]+)\(\s*([^()]*?)\s*\)`)
	amountRe = regexp.MustCompile(`^([+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)([a-z%]*)$`)
)

// ParseFilter turns a filter expression such as
// "blur(2px) brightness(1.1) hue-rotate(90deg)" into a filter chain in
// left-to-right order. "none" and the empty string yield no filters.
func ParseFilter(expr string) ([]scene.Filter, error) {
	rest := strings.TrimSpace(expr)
	if rest == "" || rest == "none" {
		return nil, nil
	}

	var out []scene.Filter
	for rest != "" {
		m := termRe.FindStringSubmatch(rest)
		if m == nil {
			return nil, fmt.Errorf("%w: unexpected %q", ErrInvalidFilter, rest)
		}
		f, err := parseTerm(m[1], m[2])
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFilter, m[0], err)
		}
		out = append(out, f)

		next := rest[len(m[0]):]
		trimmed := strings.TrimLeft(next, " \t\n")
		if trimmed != "" && len(trimmed) == len(next) {
			return nil, fmt.Errorf("%w: missing separator before %q", ErrInvalidFilter, trimmed)
		}
		rest = trimmed
	}
	return out, nil
}

func parseTerm(fn, arg string) (scene.Filter, error) {
	switch fn {
	case "blur":
		px, err := parseLength(arg)
		if err != nil {
			return nil, err
		}
		return &GaussianBlur{Sigma: px}, nil
	case "hue-rotate":
		deg, err := parseAngle(arg)
		if err != nil {
			return nil, err
		}
		return HueRotate(deg), nil
	case "brightness":
		v, err := parseAmount(arg, false)
		if err != nil {
			return nil, err
		}
		return Brightness(v), nil
	case "contrast":
		v, err := parseAmount(arg, false)
		if err != nil {
			return nil, err
		}
		return Contrast(v), nil
	case "saturate":
		v, err := parseAmount(arg, false)
		if err != nil {
			return nil, err
		}
		return Saturate(v), nil
	case "sepia":
		v, err := parseAmount(arg, true)
		if err != nil {
			return nil, err
		}
		return Sepia(v), nil
	case "grayscale":
		v, err := parseAmount(arg, true)
		if err != nil {
			return nil, err
		}
		return Grayscale(v), nil
	case "invert":
		v, err := parseAmount(arg, true)
		if err != nil {
			return nil, err
		}
		return Invert(v), nil
	case "opacity":
		v, err := parseAmount(arg, true)
		if err != nil {
			return nil, err
		}
		return Opacity(v), nil
	default:
		return nil, fmt.Errorf("unknown function %q", fn)
	}
}

func splitNumber(arg string) (float64, string, error) {
	m := amountRe.FindStringSubmatch(arg)
	if m == nil {
		return 0, "", fmt.Errorf("bad argument %q", arg)
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, "", fmt.Errorf("bad number %q", m[1])
	}
	return v, m[2], nil
}

// parseAmount reads a plain number or a percentage. Omitted arguments mean
// 1, negatives are rejected, and unit amounts are capped at 1 when clamp01
// is set.
func parseAmount(arg string, clamp01 bool) (float64, error) {
	if arg == "" {
		return 1, nil
	}
	v, unit, err := splitNumber(arg)
	if err != nil {
		return 0, err
	}
	switch unit {
	case "":
	case "%":
		v /= 100
	default:
		return 0, fmt.Errorf("unexpected unit %q", unit)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative amount %q", arg)
	}
	if clamp01 && v > 1 {
		v = 1
	}
	return v, nil
}

func parseLength(arg string) (float64, error) {
	if arg == "" {
		return 0, nil
	}
	v, unit, err := splitNumber(arg)
	if err != nil {
		return 0, err
	}
	if unit != "px" && !(unit == "" && v == 0) {
		return 0, fmt.Errorf("expected px length, got %q", arg)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative radius %q", arg)
	}
	return v, nil
}

func parseAngle(arg string) (float64, error) {
	if arg == "" {
		return 0, nil
	}
	v, unit, err := splitNumber(arg)
	if err != nil {
		return 0, err
	}
	switch unit {
	case "deg":
		return v, nil
	case "rad":
		return v * 180 / math.Pi, nil
	case "grad":
		return v * 0.9, nil
	case "turn":
		return v * 360, nil
	case "":
		if v == 0 {
			return 0, nil
		}
	}
	return 0, fmt.Errorf("expected angle, got %q", arg)
}
