package filters

import (
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestCompose_Defaults(t *testing.T) {
	require.Equal(t,
		"blur(0px) brightness(1) contrast(1) hue-rotate(0deg) sepia(0) saturate(1) invert(0)",
		Compose(Defaults()),
	)
}

func TestCompose_OneTermPerFilterInRegistryOrder(t *testing.T) {
	termRe := regexp.MustCompile(`^([a-z-]+)\(([0-9.]+)(px|deg)?\)$`)

	s := NewStore()
	require.True(t, s.Update(Blur, "2.5"))
	require.True(t, s.Update(HueRotate, "90"))
	require.True(t, s.Update(Saturate, "1.4"))

	terms := strings.Split(Compose(s.Get()), " ")
	require.Len(t, terms, len(Names()))

	for i, name := range Names() {
		m := termRe.FindStringSubmatch(terms[i])
		require.NotNil(t, m, "term %q", terms[i])
		require.Equal(t, name, m[1])
		switch name {
		case Blur:
			require.Equal(t, "px", m[3])
		case HueRotate:
			require.Equal(t, "deg", m[3])
		default:
			require.Empty(t, m[3])
		}
	}
}

func TestCompose_MissingFilterUsesDefault(t *testing.T) {
	set := Defaults()
	delete(set, Sepia)
	require.Contains(t, Compose(set), "sepia(0)")
}

func TestStore_UpdateBlur(t *testing.T) {
	s := NewStore()
	require.True(t, s.Update(Blur, "5"))

	out := Compose(s.Get())
	require.Equal(t, 1, strings.Count(out, "blur("))
	require.Contains(t, strings.Fields(out), "blur(5px)")
}

func TestStore_ToggleInvert(t *testing.T) {
	s := NewStore()
	require.True(t, s.Update(Invert, "1"))
	require.Equal(t, "1", s.Get()[Invert].Value)
	require.Contains(t, strings.Fields(Compose(s.Get())), "invert(1)")

	require.True(t, s.Update(Invert, "0"))
	require.Contains(t, strings.Fields(Compose(s.Get())), "invert(0)")
}

func TestStore_UpdateKeepsBounds(t *testing.T) {
	s := NewStore()
	require.True(t, s.Update(Brightness, "1.2"))

	got := s.Get()[Brightness]
	require.Equal(t, FilterDescriptor{Value: "1.2", Min: "0.5", Max: "1.5", Step: "0.01"}, got)
}

func TestStore_UnknownFilterIsNoop(t *testing.T) {
	s := NewStore()
	before := s.Get()

	require.False(t, s.Update("grayscale", "1"))
	require.ErrorIs(t, s.Set("grayscale", "1"), ErrUnknownFilter)

	if diff := cmp.Diff(before, s.Get()); diff != "" {
		t.Fatalf("store changed (-before +after):\n%s", diff)
	}
}

func TestStore_RejectsNonNumeric(t *testing.T) {
	s := NewStore()
	for _, v := range []string{"", "abc", "NaN", "Inf", "1e400"} {
		require.ErrorIs(t, s.Set(Contrast, v), ErrInvalidValue, "value %q", v)
	}
	require.Equal(t, "1", s.Get()[Contrast].Value)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		desc  FilterDescriptor
		value string
		want  string
	}{
		{"in range", registry[1].Default, "1.25", "1.25"},
		{"clamp high", registry[1].Default, "9", "1.5"},
		{"clamp low", registry[1].Default, "-3", "0.5"},
		{"snap to step", registry[1].Default, "1.234", "1.23"},
		{"step noise", registry[0].Default, "0.3", "0.3"},
		{"integer step", registry[3].Default, "89.6", "90"},
		{"whitespace", registry[3].Default, " 45 ", "45"},
		{"negative zero", registry[0].Default, "-0", "0"},
		{"checkbox snaps", registry[6].Default, "0.7", "1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Normalize(tc.desc, tc.value)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestStore_ResetRestoresDefaults(t *testing.T) {
	s := NewStore()
	for _, name := range Names() {
		def, _ := Lookup(name)
		require.True(t, s.Update(name, def.Default.Max))
	}
	require.False(t, s.Get().IsDefault())

	s.Reset()

	if diff := cmp.Diff(Defaults(), s.Get()); diff != "" {
		t.Fatalf("reset mismatch (-want +got):\n%s", diff)
	}
	require.True(t, s.Get().IsDefault())
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := NewStore()
	set := s.Get()
	set[Blur] = FilterDescriptor{Value: "9"}
	require.Equal(t, "0", s.Get()[Blur].Value)
}

func TestRegistryDefaultsSatisfyBounds(t *testing.T) {
	for _, name := range Names() {
		def, ok := Lookup(name)
		require.True(t, ok)
		got, err := Normalize(def.Default, def.Default.Value)
		require.NoError(t, err, name)
		require.Equal(t, def.Default.Value, got, name)
	}
}

func TestControlFor(t *testing.T) {
	require.Equal(t, FilterControlCheckbox, ControlFor(Defaults()[Invert]))
	require.Equal(t, FilterControlRange, ControlFor(Defaults()[Sepia]))
	require.Equal(t, FilterControlRange, ControlFor(Defaults()[Blur]))
}

func TestLabelForFilter(t *testing.T) {
	require.Equal(t, "Blur", LabelForFilter(Blur))
	require.Equal(t, "Hue Rotate", LabelForFilter(HueRotate))
	require.Equal(t, "Saturate", LabelForFilter(Saturate))
}

func TestFilterExprs(t *testing.T) {
	require.Equal(t, "/api/editor/filters/hue-rotate", FilterUpdateURL(HueRotate))
	require.Contains(t, FilterRangeExpr(Blur), "@post('/api/editor/filters/blur?value='")
	require.Contains(t, FilterCheckboxExpr(Invert), "evt.target.checked ? '1' : '0'")
}
