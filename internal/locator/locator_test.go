package locator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Tier
		wantErr bool
	}{
		{in: "", want: Lite},
		{in: "lite", want: Lite},
		{in: " PRO ", want: Pro},
		{in: "enterprise", wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseTier(test.in)
			if test.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestLocatorGating(t *testing.T) {
	t.Parallel()

	base := NewCSS(Admin, "admin.withdraw.limit", `[name="withdraw_limit"]`)
	assert.False(t, base.Gated())
	assert.Equal(t, Lite, base.Tier)

	pro := base.ProOnly()
	assert.True(t, pro.Gated())
	assert.Equal(t, Pro, pro.Tier)
	assert.Equal(t, Lite, base.Tier, "ProOnly must not mutate the receiver")

	mod := base.RequiresModule("store_support")
	assert.Equal(t, Pro, mod.Tier)
	assert.Equal(t, "store_support", mod.Module)
}

func TestWithin(t *testing.T) {
	t.Parallel()

	form := NewCSS(Admin, "form", "#settings-form")
	field := NewCSS(Admin, "field", `[name="x"]`)
	assert.Equal(t, `#settings-form [name="x"]`, field.Within(form).Query)

	text := NewText(Admin, "save", "button", "^Save$")
	assert.Equal(t, "#settings-form button", text.Within(form).Query)

	assert.Panics(t, func() {
		NewXPath(Admin, "x", "//a").Within(form)
	})
}

func TestString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `a(css "#a")`, NewCSS(Guest, "a", "#a").String())
	assert.Equal(t, `b(xpath "//b")`, NewXPath(Guest, "b", "//b").String())
	assert.Equal(t, `c(text "p" /^Hi/)`, NewText(Guest, "c", "p", "^Hi").String())
}

func TestCollect(t *testing.T) {
	t.Parallel()

	registry := struct {
		First  Locator
		Param  Param
		Nested struct {
			Second Locator
		}
		List   []Locator
		hidden Locator
	}{
		First: NewCSS(Admin, "first", "#first"),
		Param: func(v string) Locator { return NewCSS(Admin, "param", "#"+v) },
		List:  []Locator{NewCSS(Admin, "third", "#third")},
	}
	registry.Nested.Second = NewCSS(Admin, "second", "#second")
	registry.hidden = NewCSS(Admin, "hidden", "#hidden")

	got := Collect(registry, &registry.Nested, nil)
	names := make([]string, 0, len(got))
	for _, loc := range got {
		names = append(names, loc.Name)
	}
	assert.Equal(t, []string{"first", "second", "third", "second"}, names)
}
