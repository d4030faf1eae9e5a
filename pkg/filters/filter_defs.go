package filters

import (
	"fmt"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FilterControlType describes the kind of input control for a filter.
type FilterControlType string

const (
	FilterControlRange    FilterControlType = "range"
	FilterControlCheckbox FilterControlType = "checkbox"
)

// Filter names. The order of registry below is the order filters are
// composed in, and the order controls are rendered in.
const (
	Blur       = "blur"
	Brightness = "brightness"
	Contrast   = "contrast"
	HueRotate  = "hue-rotate"
	Sepia      = "sepia"
	Saturate   = "saturate"
	Invert     = "invert"
)

// FilterDef is one registry row: a filter name, the unit its value is
// written with in a filter expression, and its default descriptor.
type FilterDef struct {
	Name    string
	Unit    string
	Default FilterDescriptor
}

var registry = []FilterDef{
	{Name: Blur, Unit: "px", Default: FilterDescriptor{Value: "0", Min: "0", Max: "10", Step: "0.1"}},
	{Name: Brightness, Default: FilterDescriptor{Value: "1", Min: "0.5", Max: "1.5", Step: "0.01"}},
	{Name: Contrast, Default: FilterDescriptor{Value: "1", Min: "0.5", Max: "1.5", Step: "0.01"}},
	{Name: HueRotate, Unit: "deg", Default: FilterDescriptor{Value: "0", Min: "0", Max: "360", Step: "1"}},
	{Name: Sepia, Default: FilterDescriptor{Value: "0", Min: "0", Max: "1", Step: "0.01"}},
	{Name: Saturate, Default: FilterDescriptor{Value: "1", Min: "0", Max: "2", Step: "0.01"}},
	{Name: Invert, Default: FilterDescriptor{Value: "0", Min: "0", Max: "1", Step: "1"}},
}

var registryIndex = func() map[string]int {
	idx := make(map[string]int, len(registry))
	for i, def := range registry {
		idx[def.Name] = i
	}
	return idx
}()

// Names returns the filter names in registry order.
func Names() []string {
	names := make([]string, len(registry))
	for i, def := range registry {
		names[i] = def.Name
	}
	return names
}

// Lookup returns the registry row for name.
func Lookup(name string) (FilterDef, bool) {
	i, ok := registryIndex[name]
	if !ok {
		return FilterDef{}, false
	}
	return registry[i], true
}

// Known reports whether name is a registry filter.
func Known(name string) bool {
	_, ok := registryIndex[name]
	return ok
}

// Defaults returns a fresh FilterSet holding every registry default.
func Defaults() FilterSet {
	set := make(FilterSet, len(registry))
	for _, def := range registry {
		set[def.Name] = def.Default
	}
	return set
}

// ---------------------------------------------------------------------------
// Template helpers
// ---------------------------------------------------------------------------

// ControlFor returns the input control used for a descriptor. A 0..1 range
// with step 1 is an on/off toggle.
func ControlFor(d FilterDescriptor) FilterControlType {
	if d.Min == "0" && d.Max == "1" && d.Step == "1" {
		return FilterControlCheckbox
	}
	return FilterControlRange
}

// FmtNum formats a float for use in HTML attributes (no trailing zeros).
func FmtNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var labelCaser = cases.Title(language.English)

// LabelForFilter returns the human-readable label for a filter name.
func LabelForFilter(name string) string {
	if name == HueRotate {
		return "Hue Rotate"
	}
	return labelCaser.String(name)
}

// IconForFilter returns the Font-Awesome icon name for a filter.
func IconForFilter(name string) string {
	icons := map[string]string{
		Blur: "droplet", Brightness: "sun", Contrast: "circle-half-stroke",
		HueRotate: "palette", Sepia: "image", Saturate: "swatchbook", Invert: "repeat",
	}
	if v, ok := icons[name]; ok {
		return v
	}
	return "sliders"
}

// ReadoutForFilter formats the current value with its unit for display
// next to a slider ("2.5px", "90deg", "1.15").
func ReadoutForFilter(name string, d FilterDescriptor) string {
	def, _ := Lookup(name)
	return d.Value + def.Unit
}

// FilterUpdateURL returns the endpoint that updates a single filter value.
func FilterUpdateURL(name string) string {
	return "/api/editor/filters/" + name
}

// FilterRangeExpr returns the DataStar expression posted on slider input.
func FilterRangeExpr(name string) string {
	return fmt.Sprintf("@post('%s?value=' + encodeURIComponent(evt.target.value))", FilterUpdateURL(name))
}

// FilterCheckboxExpr returns the DataStar expression posted on checkbox change.
func FilterCheckboxExpr(name string) string {
	return fmt.Sprintf("@post('%s?value=' + (evt.target.checked ? '1' : '0'))", FilterUpdateURL(name))
}
