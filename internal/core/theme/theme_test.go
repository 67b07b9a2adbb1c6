package theme

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{
		"light", "dark", "modern-light", "modern-dark",
		"blue", "green", "purple", "orange",
	}, Names())
}

func TestTable_Valid(t *testing.T) {
	for _, cfg := range All() {
		t.Run(cfg.Name, func(t *testing.T) {
			require.NoError(t, cfg.Validate())

			for _, key := range []string{"primary", "background", "text", "success", "warning", "error"} {
				_, ok := cfg.Color(key)
				assert.True(t, ok, "missing color %s", key)
			}
		})
	}
}

func TestGet(t *testing.T) {
	cfg, ok := Get(Default)
	require.True(t, ok)
	assert.Equal(t, "Modern Light", cfg.Label)
	assert.NotEmpty(t, cfg.Typography)

	_, ok = Get("neon")
	assert.False(t, ok)
	assert.False(t, Exists("neon"))
	assert.True(t, Exists("dark"))
}

func TestAll_ReturnsCopy(t *testing.T) {
	all := All()
	all[0].Name = "mutated"

	assert.Equal(t, "light", Names()[0])
}

func TestClassName(t *testing.T) {
	assert.Equal(t, "theme-modern-dark", ClassName("modern-dark"))
}

func TestVariables_BasicTheme(t *testing.T) {
	cfg, _ := Get("light")
	vars := Variables(cfg)

	require.Len(t, vars, len(cfg.Colors))
	assert.Equal(t, Variable{Name: "--color-primary", Value: "#3b82f6"}, vars[0])

	for _, v := range vars {
		assert.True(t, strings.HasPrefix(v.Name, "--color-"), v.Name)
	}
}

func TestVariables_ExtendedTheme(t *testing.T) {
	cfg, _ := Get("modern-light")
	vars := Variables(cfg)

	lookup := make(map[string]string, len(vars))
	for _, v := range vars {
		lookup[v.Name] = v.Value
	}

	assert.Equal(t, "#3B82F6", lookup["--color-primary"])
	assert.Contains(t, lookup["--font-fontFamily"], "Inter")
	assert.Equal(t, "1.5rem", lookup["--font-fontSize-2xl"])
	assert.Equal(t, "700", lookup["--font-fontWeight-bold"])
	assert.Equal(t, "1.25", lookup["--font-lineHeight-tight"])
	assert.Equal(t, "1rem", lookup["--spacing-md"])

	var groups = map[string]bool{}
	for name := range lookup {
		for _, p := range []string{"--radius-", "--shadow-", "--transition-"} {
			if strings.HasPrefix(name, p) {
				groups[p] = true
			}
		}
	}
	assert.Len(t, groups, 3)
}

func TestVariables_OrderFollowsGroups(t *testing.T) {
	cfg, _ := Get("modern-dark")
	vars := Variables(cfg)

	rank := func(name string) int {
		for i, p := range []string{"--color-", "--font-", "--spacing-", "--radius-", "--shadow-", "--transition-"} {
			if strings.HasPrefix(name, p) {
				return i
			}
		}
		return -1
	}

	last := 0
	for _, v := range vars {
		r := rank(v.Name)
		require.GreaterOrEqual(t, r, last, "variable %s out of order", v.Name)
		last = r
	}
}

func TestValidate_BadColor(t *testing.T) {
	cfg := Config{
		Name:  "broken",
		Label: "Broken",
		Colors: Tokens{
			{Key: "primary", Value: "#zzzzzz"},
		},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "primary")

	cfg.Colors = Tokens{{Key: "overlay", Value: "rgba(0, 0, 0, 0.5)"}}
	assert.NoError(t, cfg.Validate())

	assert.Error(t, Config{Label: "x"}.Validate())
	assert.Error(t, Config{Name: "x", Label: "x"}.Validate())
}

func TestTokens_UnmarshalPreservesOrder(t *testing.T) {
	src := `
zeta: 1
alpha: "two"
nested:
  b: x
  a: y
`
	var ts Tokens
	require.NoError(t, yaml.Unmarshal([]byte(src), &ts))

	require.Len(t, ts, 3)
	assert.Equal(t, "zeta", ts[0].Key)
	assert.Equal(t, "1", ts[0].Value)
	assert.Equal(t, "alpha", ts[1].Key)

	nested, ok := ts.Group("nested")
	require.True(t, ok)
	assert.Equal(t, "b", nested[0].Key)
	assert.Equal(t, "a", nested[1].Key)

	_, ok = ts.Get("nested")
	assert.False(t, ok, "groups are not scalar values")
}

func TestTokens_UnmarshalRejectsSequence(t *testing.T) {
	var ts Tokens
	err := yaml.Unmarshal([]byte("colors: [a, b]"), &ts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sequence")
}

func TestWriteCSS(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSS(&buf, "dark"))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, ":root.theme-dark {\n"))
	assert.Contains(t, out, "  --color-background: #0f172a;\n")
	assert.True(t, strings.HasSuffix(out, "}\n"))

	err := WriteCSS(&buf, "neon")
	assert.ErrorIs(t, err, ErrUnknownTheme)
}

func TestMemorySink_Apply(t *testing.T) {
	sink := NewMemorySink()

	modern, _ := Get("modern-light")
	Apply(sink, modern)
	assert.Equal(t, "theme-modern-light", sink.Class())

	v, ok := sink.Property("--spacing-md")
	require.True(t, ok)
	assert.Equal(t, "1rem", v)

	light, _ := Get("light")
	Apply(sink, light)

	assert.Equal(t, "theme-light", sink.Class())
	v, _ = sink.Property("--color-primary")
	assert.Equal(t, "#3b82f6", v)

	// groups absent from the new theme keep their previous values
	_, ok = sink.Property("--spacing-md")
	assert.True(t, ok)

	props := sink.Properties()
	assert.Equal(t, "--color-primary", props[0].Name)
}
